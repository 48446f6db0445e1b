package http

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"evaluation-console/internal/domain"
)

type staticOptions map[string][]domain.Option

func (s staticOptions) Options(_ context.Context, _ int, parent string) ([]domain.Option, error) {
	opts, ok := s[parent]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return opts, nil
}

func sampleOptions() staticOptions {
	return staticOptions{
		"":      {{Key: "CLS-1", Label: "Terminale A"}, {Key: "CLS-2", Label: "Terminale B"}},
		"CLS-1": {{Key: "MAT-7", Label: "Maths"}},
		"CLS-2": {{Key: "MAT-9", Label: "Histoire"}},
		"MAT-7": {{Key: "EVAL-42", Label: "Contrôle 1"}},
	}
}

type fakeQuestions struct{}

func (fakeQuestions) Question(_ context.Context, matricule string) (domain.Question, error) {
	if matricule != "Q-1" {
		return domain.Question{}, domain.ErrNotFound
	}
	return domain.Question{
		Matricule: "Q-1",
		Statement: "2 + 2 ?",
		Type:      domain.QuestionText,
		Points:    1,
		Evaluation: &domain.Evaluation{
			Matricule: "EVAL-42",
			Matiere: &domain.Matiere{
				Matricule: "MAT-7",
				Classroom: &domain.Classroom{Matricule: "CLS-1"},
			},
		},
	}, nil
}

func (fakeQuestions) QuestionsByEvaluation(_ context.Context, evaluation string) (domain.Evaluation, []domain.Question, error) {
	return domain.Evaluation{Matricule: evaluation}, []domain.Question{
		{Matricule: "Q-1", Statement: "2 + 2 ?"},
		{Matricule: "Q-2", Statement: "Capitale du Sénégal ?"},
	}, nil
}

func (fakeQuestions) CreateQuestion(_ context.Context, d domain.QuestionDraft) (domain.Question, error) {
	if d.Statement == "doublon" {
		return domain.Question{}, &domain.ValidationError{Fields: map[string]string{"enonce": "Cette question existe déjà"}}
	}
	return domain.Question{Matricule: "Q-3", Statement: d.Statement}, nil
}

func (fakeQuestions) UpdateQuestion(_ context.Context, d domain.QuestionDraft) (domain.Question, error) {
	return domain.Question{Matricule: d.Matricule, Statement: d.Statement}, nil
}

func (fakeQuestions) DeleteQuestion(context.Context, string) error { return nil }

// slowOptions delays the options of one parent, honouring cancellation.
type slowOptions struct {
	staticOptions
	slow  string
	delay time.Duration
}

func (s slowOptions) Options(ctx context.Context, level int, parent string) ([]domain.Option, error) {
	if parent == s.slow {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.staticOptions.Options(ctx, level, parent)
}

type fakeCatalog struct {
	mu       sync.Mutex
	uploaded map[string]string
}

func (f *fakeCatalog) ToggleEvaluationStatus(_ context.Context, matricule string) (domain.Evaluation, error) {
	if matricule != "EVAL-42" {
		return domain.Evaluation{}, domain.ErrNotFound
	}
	return domain.Evaluation{
		Matricule: matricule,
		Status:    domain.EvaluationRunning,
		Matiere:   &domain.Matiere{Matricule: "MAT-7"},
	}, nil
}

func (f *fakeCatalog) UploadCourseImage(_ context.Context, course, filename string, image io.Reader) (domain.Course, error) {
	raw, err := io.ReadAll(image)
	if err != nil {
		return domain.Course{}, err
	}
	f.mu.Lock()
	f.uploaded[course] = filename + ":" + string(raw)
	f.mu.Unlock()
	return domain.Course{Matricule: course, ImageURL: "/img/" + filename}, nil
}

func (f *fakeCatalog) upload(course string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploaded[course]
}

type recordingInvalidator struct {
	mu      sync.Mutex
	dropped []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, level int, parent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, strconv.Itoa(level)+":"+parent)
	return nil
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dropped...)
}

type fakeResults struct{}

func (fakeResults) ResultsByEvaluation(_ context.Context, evaluation string) (domain.ResultSnapshot, error) {
	if evaluation != "EVAL-42" {
		return domain.ResultSnapshot{}, domain.ErrNotFound
	}
	return domain.ResultSnapshot{
		Subject: evaluation,
		Title:   "Contrôle 1",
		Records: []domain.ResultRecord{
			{StudentID: "ETU-1", DisplayName: "Élodie Martin", Rank: 1, ScorePercent: 92},
			{StudentID: "ETU-2", DisplayName: "bruno Petit", Rank: 2, ScorePercent: 61},
			{StudentID: "ETU-3", DisplayName: "Alice Durand", Rank: 3, ScorePercent: 35},
		},
		FetchedAt: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (fakeResults) ResultsByStudent(context.Context, string) (domain.ResultSnapshot, error) {
	return domain.ResultSnapshot{}, domain.ErrNotFound
}

type fakeDashboard struct{}

func (fakeDashboard) DashboardStats(context.Context) (domain.DashboardStats, error) {
	return domain.DashboardStats{Classrooms: 2}, nil
}

func (fakeDashboard) RecentEvaluations(context.Context) ([]domain.Evaluation, error) {
	return nil, &domain.APIError{Status: 500}
}

func (fakeDashboard) RecentCourses(context.Context) ([]domain.Course, error) {
	return []domain.Course{}, nil
}
