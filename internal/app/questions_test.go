package app_test

import (
	"context"
	"errors"
	"testing"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
)

type fakeQuestions struct {
	created []domain.QuestionDraft
	updated []domain.QuestionDraft
	deleted []string
	saveErr error
}

func (f *fakeQuestions) Question(_ context.Context, matricule string) (domain.Question, error) {
	if matricule != "Q-1" {
		return domain.Question{}, domain.ErrNotFound
	}
	return domain.Question{
		Matricule: "Q-1",
		Statement: "Combien font 2 + 2 ?",
		Evaluation: &domain.Evaluation{
			Matricule: "EVAL-42",
			Matiere: &domain.Matiere{
				Matricule: "MAT-7",
				Classroom: &domain.Classroom{Matricule: "CLS-1"},
			},
		},
	}, nil
}

func (f *fakeQuestions) QuestionsByEvaluation(context.Context, string) (domain.Evaluation, []domain.Question, error) {
	return domain.Evaluation{Matricule: "EVAL-42"}, []domain.Question{
		{Matricule: "Q-1", Statement: "Combien font 2 + 2 ?"},
		{Matricule: "Q-2", Statement: "Quelle est la capitale du Sénégal ?"},
	}, nil
}

func (f *fakeQuestions) CreateQuestion(_ context.Context, d domain.QuestionDraft) (domain.Question, error) {
	if f.saveErr != nil {
		return domain.Question{}, f.saveErr
	}
	f.created = append(f.created, d)
	return domain.Question{Matricule: "Q-NEW", Statement: d.Statement}, nil
}

func (f *fakeQuestions) UpdateQuestion(_ context.Context, d domain.QuestionDraft) (domain.Question, error) {
	f.updated = append(f.updated, d)
	return domain.Question{Matricule: d.Matricule, Statement: d.Statement}, nil
}

func (f *fakeQuestions) DeleteQuestion(_ context.Context, m string) error {
	f.deleted = append(f.deleted, m)
	return nil
}

func validQCM() domain.QuestionDraft {
	return domain.QuestionDraft{
		Evaluation: "EVAL-42",
		Statement:  "Combien font 2 + 2 ?",
		Type:       domain.QuestionQCM,
		Points:     2,
		Choices: []domain.Choice{
			{Label: "A", Text: "3"},
			{Label: "B", Text: "4", Correct: true},
		},
	}
}

func TestSaveCreatesOrUpdates(t *testing.T) {
	backend := &fakeQuestions{}
	svc := app.NewQuestionService(backend, app.NewValidator(), &recordingNotices{})

	if _, err := svc.Save(context.Background(), validQCM()); err != nil {
		t.Fatalf("create: %v", err)
	}
	draft := validQCM()
	draft.Matricule = "Q-1"
	if _, err := svc.Save(context.Background(), draft); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(backend.created) != 1 || len(backend.updated) != 1 {
		t.Fatalf("expected one create and one update, got %d/%d", len(backend.created), len(backend.updated))
	}
}

func TestSaveValidatesQCMLocally(t *testing.T) {
	backend := &fakeQuestions{}
	svc := app.NewQuestionService(backend, app.NewValidator(), &recordingNotices{})

	cases := map[string]func(*domain.QuestionDraft){
		"options": func(d *domain.QuestionDraft) { d.Choices = d.Choices[:1] },
		"enonce":  func(d *domain.QuestionDraft) { d.Statement = "   " },
		"points":  func(d *domain.QuestionDraft) { d.Points = 0 },
		"options.1.texte": func(d *domain.QuestionDraft) {
			d.Choices[1].Text = ""
		},
	}
	for field, mutate := range cases {
		draft := validQCM()
		mutate(&draft)
		_, err := svc.Save(context.Background(), draft)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		if verr.Fields[field] == "" {
			t.Fatalf("%s: expected field error, got %+v", field, verr.Fields)
		}
	}

	twoCorrect := validQCM()
	twoCorrect.Choices[0].Correct = true
	_, err := svc.Save(context.Background(), twoCorrect)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["options"] == "" {
		t.Fatalf("expected single-correct rule, got %v", err)
	}
	if len(backend.created) != 0 {
		t.Fatalf("invalid drafts must not reach the backend")
	}
}

func TestSaveSurfacesBackendFieldErrors(t *testing.T) {
	backend := &fakeQuestions{saveErr: &domain.ValidationError{Fields: map[string]string{"enonce": "déjà utilisé"}}}
	notices := &recordingNotices{}
	svc := app.NewQuestionService(backend, app.NewValidator(), notices)

	_, err := svc.Save(context.Background(), validQCM())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["enonce"] != "déjà utilisé" {
		t.Fatalf("expected backend field error, got %v", err)
	}
	if notices.count(app.NoticeError) != 1 {
		t.Fatalf("expected error notice")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend := &fakeQuestions{}
	svc := app.NewQuestionService(backend, app.NewValidator(), &recordingNotices{})

	if err := svc.Delete(context.Background(), "Q-1", false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("delete issued without confirmation")
	}
	if err := svc.Delete(context.Background(), "Q-1", true); err != nil || len(backend.deleted) != 1 {
		t.Fatalf("expected delete, got %v", err)
	}
}

func TestEditHydratesSelector(t *testing.T) {
	loader := newFakeLoader()
	selector := app.NewSelector(loader, &recordingNotices{})
	notices := &recordingNotices{}
	svc := app.NewQuestionService(&fakeQuestions{}, app.NewValidator(), notices)

	if _, err := svc.Edit(context.Background(), "Q-1", selector); err != nil {
		t.Fatalf("edit: %v", err)
	}
	chain := selector.Chain()
	if chain[2].SelectedKey != "EVAL-42" {
		t.Fatalf("expected hydrated evaluation, got %+v", chain)
	}
	loader.drain()

	if _, err := svc.Edit(context.Background(), "Q-404", selector); domain.Classify(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if notices.count(app.NoticeError) != 1 {
		t.Fatalf("expected a notice for the failed question fetch")
	}
}

func TestByEvaluationFilters(t *testing.T) {
	svc := app.NewQuestionService(&fakeQuestions{}, app.NewValidator(), &recordingNotices{})
	_, qs, err := svc.ByEvaluation(context.Background(), "EVAL-42", "SÉNÉGAL")
	if err != nil || len(qs) != 1 || qs[0].Matricule != "Q-2" {
		t.Fatalf("unexpected filter result %+v %v", qs, err)
	}
}
