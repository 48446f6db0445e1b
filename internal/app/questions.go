package app

import (
	"context"
	"strings"

	"evaluation-console/internal/domain"
	"golang.org/x/text/cases"
)

// QuestionBackend is the subset of the REST client used for authoring.
type QuestionBackend interface {
	Question(ctx context.Context, matricule string) (domain.Question, error)
	QuestionsByEvaluation(ctx context.Context, evaluation string) (domain.Evaluation, []domain.Question, error)
	CreateQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error)
	UpdateQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error)
	DeleteQuestion(ctx context.Context, matricule string) error
}

type QuestionService struct {
	backend   QuestionBackend
	validator *Validator
	notices   Notices
}

func NewQuestionService(backend QuestionBackend, validator *Validator, notices Notices) *QuestionService {
	return &QuestionService{backend: backend, validator: validator, notices: notices}
}

// Edit loads a question and hydrates selector with its classroom, matiere
// and evaluation.
func (s *QuestionService) Edit(ctx context.Context, matricule string, selector *Selector) (domain.Question, error) {
	q, err := s.backend.Question(ctx, matricule)
	if err != nil {
		if ctx.Err() == nil {
			s.notices.PushError(err)
		}
		return domain.Question{}, err
	}
	selector.Hydrate(ctx, q)
	return q, nil
}

// Save validates draft locally, then creates it (no matricule) or updates it.
// Validation errors, local or from the backend, keep their field keys.
func (s *QuestionService) Save(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	if err := s.validator.Struct(draft); err != nil {
		s.notices.PushError(err)
		return domain.Question{}, err
	}

	var (
		q   domain.Question
		err error
	)
	if draft.Matricule == "" {
		q, err = s.backend.CreateQuestion(ctx, draft)
	} else {
		q, err = s.backend.UpdateQuestion(ctx, draft)
	}
	if err != nil {
		s.notices.PushError(err)
		return domain.Question{}, err
	}
	s.notices.Push(NoticeSuccess, "Question enregistrée")
	return q, nil
}

// Delete removes a question once the user confirmed it. There is no undo.
func (s *QuestionService) Delete(ctx context.Context, matricule string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := s.backend.DeleteQuestion(ctx, matricule); err != nil {
		s.notices.PushError(err)
		return err
	}
	s.notices.Push(NoticeSuccess, "Question supprimée")
	return nil
}

// ByEvaluation lists the questions of an evaluation whose statement
// contains filter, case-insensitively.
func (s *QuestionService) ByEvaluation(ctx context.Context, evaluation, filter string) (domain.Evaluation, []domain.Question, error) {
	ev, questions, err := s.backend.QuestionsByEvaluation(ctx, evaluation)
	if err != nil {
		s.notices.PushError(err)
		return domain.Evaluation{}, nil, err
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter))
	if needle == "" {
		return ev, questions, nil
	}
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if strings.Contains(fold.String(q.Statement), needle) || strings.Contains(fold.String(q.Matricule), needle) {
			out = append(out, q)
		}
	}
	return ev, out, nil
}
