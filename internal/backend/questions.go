package backend

import (
	"context"
	"net/http"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

type questionEnvelope struct {
	Question domain.Question `json:"question"`
}

type questionsEnvelope struct {
	Evaluation domain.Evaluation `json:"evaluation"`
	Questions  []domain.Question `json:"questions"`
}

// Question fetches a question with its evaluation, matiere and classroom.
func (c *Client) Question(ctx context.Context, matricule string) (domain.Question, error) {
	var env questionEnvelope
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("questions", matricule), nil, &env); err != nil {
		return domain.Question{}, errors.Wrapf(err, "get question %s", matricule)
	}
	return env.Question, nil
}

func (c *Client) QuestionsByEvaluation(ctx context.Context, evaluation string) (domain.Evaluation, []domain.Question, error) {
	var env questionsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("evaluations", evaluation, "questions"), nil, &env); err != nil {
		return domain.Evaluation{}, nil, errors.Wrapf(err, "list questions of %s", evaluation)
	}
	return env.Evaluation, env.Questions, nil
}

func (c *Client) CreateQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	var env questionEnvelope
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("questions"), draft, &env); err != nil {
		return domain.Question{}, errors.Wrap(err, "create question")
	}
	return env.Question, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	var env questionEnvelope
	if err := c.doJSON(ctx, http.MethodPatch, c.endpoint("questions", draft.Matricule), draft, &env); err != nil {
		return domain.Question{}, errors.Wrapf(err, "update question %s", draft.Matricule)
	}
	return env.Question, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, matricule string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.endpoint("questions", matricule), nil, nil); err != nil {
		return errors.Wrapf(err, "delete question %s", matricule)
	}
	return nil
}
