package app

import (
	"context"
	"sort"
	"sync"

	"evaluation-console/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DashboardSource serves the three independent dashboard panels.
type DashboardSource interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	RecentEvaluations(ctx context.Context) ([]domain.Evaluation, error)
	RecentCourses(ctx context.Context) ([]domain.Course, error)
}

// Dashboard panel names.
const (
	PanelStats       = "stats"
	PanelEvaluations = "evaluations"
	PanelCourses     = "courses"
)

// DashboardView is a dashboard with the panels that loaded and the notices
// raised by the ones that did not.
type DashboardView struct {
	domain.Dashboard
	Loaded  []string `json:"loaded"`
	Notices []Notice `json:"notices,omitempty"`
}

// Complete reports whether every panel loaded.
func (v DashboardView) Complete() bool { return len(v.Loaded) == 3 }

type DashboardService struct {
	source  DashboardSource
	notices Notices
}

func NewDashboardService(source DashboardSource, notices Notices) *DashboardService {
	return &DashboardService{source: source, notices: notices}
}

// Load fetches the panels concurrently. A failing panel does not cancel the
// others: the view holds whatever loaded, together with the first error.
func (s *DashboardService) Load(ctx context.Context) (DashboardView, error) {
	var (
		view DashboardView
		mu   sync.Mutex
		g    errgroup.Group
	)
	panel := func(name string, load func() error) {
		g.Go(func() error {
			err := load()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				view.Notices = append(view.Notices, s.notices.PushError(err))
				return err
			}
			view.Loaded = append(view.Loaded, name)
			return nil
		})
	}
	panel(PanelStats, func() (err error) {
		view.Stats, err = s.source.DashboardStats(ctx)
		return err
	})
	panel(PanelEvaluations, func() (err error) {
		view.RecentEvaluations, err = s.source.RecentEvaluations(ctx)
		return err
	})
	panel(PanelCourses, func() (err error) {
		view.RecentCourses, err = s.source.RecentCourses(ctx)
		return err
	})
	err := g.Wait()
	sort.Strings(view.Loaded)
	return view, err
}
