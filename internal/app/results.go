package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"evaluation-console/internal/domain"
	"evaluation-console/internal/logging"
)

// ResultKind tells what a results page is about.
type ResultKind string

const (
	ResultsByEvaluation ResultKind = "evaluation"
	ResultsByStudent    ResultKind = "etudiant"
)

// ResultSource is the subset of the REST client serving results.
type ResultSource interface {
	ResultsByEvaluation(ctx context.Context, evaluation string) (domain.ResultSnapshot, error)
	ResultsByStudent(ctx context.Context, studentID string) (domain.ResultSnapshot, error)
}

// SnapshotStore archives ranked snapshots for offline consultation.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, kind string, snap domain.ResultSnapshot) error
	LoadSnapshot(ctx context.Context, kind, subject string) (domain.ResultSnapshot, error)
}

// ResultView is the user-controlled part of a results page.
type ResultView struct {
	Filter string    `json:"filter"`
	Sort   SortState `json:"sort"`
}

// ResultPage is a ranked, display-ready results table.
type ResultPage struct {
	Kind      ResultKind           `json:"kind"`
	Subject   string               `json:"subject"`
	Title     string               `json:"title"`
	View      ResultView           `json:"view"`
	Rows      []domain.ResultRow   `json:"rows"`
	Summary   domain.ResultSummary `json:"summary"`
	FetchedAt time.Time            `json:"fetchedAt"`
}

type ResultsService struct {
	source  ResultSource
	archive SnapshotStore
	ranker  *Ranker
	notices Notices
	logger  logging.Logger
}

// NewResultsService builds the service; archive may be nil.
func NewResultsService(source ResultSource, archive SnapshotStore, ranker *Ranker, notices Notices, logger logging.Logger) *ResultsService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ResultsService{source: source, archive: archive, ranker: ranker, notices: notices, logger: logger}
}

// ResultsPage owns the snapshot of one page load. Rendering with another
// view re-ranks the resident snapshot without fetching.
type ResultsPage struct {
	service  *ResultsService
	kind     ResultKind
	subject  string
	snapshot *Loadable[domain.ResultSnapshot]

	mu   sync.Mutex
	view ResultView
}

// Open loads the snapshot of subject from the backend. The returned page is
// usable even when loading failed; its State reports the failure.
func (s *ResultsService) Open(ctx context.Context, kind ResultKind, subject string) (*ResultsPage, error) {
	page := &ResultsPage{
		service:  s,
		kind:     kind,
		subject:  subject,
		snapshot: NewLoadable[domain.ResultSnapshot](),
		view:     ResultView{Sort: DefaultSort()},
	}
	return page, page.Reload(ctx)
}

// OpenArchived loads the last archived snapshot of subject instead of
// calling the backend.
func (s *ResultsService) OpenArchived(ctx context.Context, kind ResultKind, subject string) (*ResultsPage, error) {
	page := &ResultsPage{
		service:  s,
		kind:     kind,
		subject:  subject,
		snapshot: NewLoadable[domain.ResultSnapshot](),
		view:     ResultView{Sort: DefaultSort()},
	}
	if s.archive == nil {
		return page, domain.ErrSnapshotNotFound
	}
	_, err := page.snapshot.Load(ctx, func(ctx context.Context) (domain.ResultSnapshot, error) {
		return s.archive.LoadSnapshot(ctx, string(kind), subject)
	})
	if err != nil {
		s.notices.PushError(err)
	}
	return page, err
}

func (s *ResultsService) fetch(ctx context.Context, kind ResultKind, subject string) (domain.ResultSnapshot, error) {
	switch kind {
	case ResultsByEvaluation:
		return s.source.ResultsByEvaluation(ctx, subject)
	case ResultsByStudent:
		return s.source.ResultsByStudent(ctx, subject)
	}
	return domain.ResultSnapshot{}, fmt.Errorf("unknown result kind %q", kind)
}

// Reload replaces the snapshot with a fresh one. Archival failures are
// logged, not returned.
func (p *ResultsPage) Reload(ctx context.Context) error {
	s := p.service
	snap, err := p.snapshot.Load(ctx, func(ctx context.Context) (domain.ResultSnapshot, error) {
		return s.fetch(ctx, p.kind, p.subject)
	})
	if err != nil {
		s.notices.PushError(err)
		return err
	}
	if s.archive != nil {
		if err := s.archive.SaveSnapshot(ctx, string(p.kind), snap); err != nil {
			s.logger.Warn("archive result snapshot", p.subject, err)
		}
	}
	return nil
}

func (p *ResultsPage) State() LoadState {
	return p.snapshot.State()
}

// SetFilter changes the filter text of the page.
func (p *ResultsPage) SetFilter(filter string) {
	p.mu.Lock()
	p.view.Filter = filter
	p.mu.Unlock()
}

// SetSort replaces the ordering of the page.
func (p *ResultsPage) SetSort(sort SortState) {
	p.mu.Lock()
	p.view.Sort = sort
	p.mu.Unlock()
}

// View returns the filter and ordering currently applied.
func (p *ResultsPage) View() ResultView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// ToggleSort applies the sort header click semantics.
func (p *ResultsPage) ToggleSort(field SortField) SortState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.Sort = p.view.Sort.Toggle(field)
	return p.view.Sort
}

// Render ranks the resident snapshot with the page's current view.
func (p *ResultsPage) Render() (ResultPage, error) {
	p.mu.Lock()
	view := p.view
	p.mu.Unlock()
	return p.RenderView(view)
}

// RenderView ranks the resident snapshot with view.
func (p *ResultsPage) RenderView(view ResultView) (ResultPage, error) {
	snap, err := p.snapshot.Value()
	if err != nil {
		return ResultPage{Kind: p.kind, Subject: p.subject, View: view}, err
	}
	ranker := p.service.ranker
	ranked := ranker.Apply(snap.Records, view.Filter, view.Sort)
	return ResultPage{
		Kind:      p.kind,
		Subject:   p.subject,
		Title:     snap.Title,
		View:      view,
		Rows:      ranker.Rows(ranked),
		Summary:   Summarize(snap.Records),
		FetchedAt: snap.FetchedAt,
	}, nil
}
