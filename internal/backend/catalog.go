package backend

import (
	"context"
	"net/http"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

// Selection levels served by Options.
const (
	LevelClassroom = iota
	LevelMatiere
	LevelEvaluation
)

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) Classrooms(ctx context.Context) ([]domain.Classroom, error) {
	var env dataEnvelope[[]domain.Classroom]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("classrooms"), nil, &env); err != nil {
		return nil, errors.Wrap(err, "list classrooms")
	}
	return env.Data, nil
}

func (c *Client) Matieres(ctx context.Context, classroom string) ([]domain.Matiere, error) {
	var env dataEnvelope[[]domain.Matiere]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("classrooms", classroom, "matieres"), nil, &env); err != nil {
		return nil, errors.Wrapf(err, "list matieres of %s", classroom)
	}
	return env.Data, nil
}

func (c *Client) Evaluations(ctx context.Context, matiere string) ([]domain.Evaluation, error) {
	var env dataEnvelope[[]domain.Evaluation]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("matieres", matiere, "evaluations"), nil, &env); err != nil {
		return nil, errors.Wrapf(err, "list evaluations of %s", matiere)
	}
	return env.Data, nil
}

// ToggleEvaluationStatus asks the backend to move an evaluation to its next
// status and returns the updated entity.
func (c *Client) ToggleEvaluationStatus(ctx context.Context, matricule string) (domain.Evaluation, error) {
	var env dataEnvelope[domain.Evaluation]
	if err := c.doJSON(ctx, http.MethodPatch, c.endpoint("evaluations", matricule, "status"), nil, &env); err != nil {
		return domain.Evaluation{}, errors.Wrapf(err, "toggle status of %s", matricule)
	}
	return env.Data, nil
}

// Options loads the dropdown entries of a selection level. parent is ignored
// for the classroom level.
func (c *Client) Options(ctx context.Context, level int, parent string) ([]domain.Option, error) {
	switch level {
	case LevelClassroom:
		items, err := c.Classrooms(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]domain.Option, 0, len(items))
		for _, it := range items {
			opts = append(opts, domain.Option{Key: it.Matricule, Label: it.Name})
		}
		return opts, nil
	case LevelMatiere:
		items, err := c.Matieres(ctx, parent)
		if err != nil {
			return nil, err
		}
		opts := make([]domain.Option, 0, len(items))
		for _, it := range items {
			opts = append(opts, domain.Option{Key: it.Matricule, Label: it.Name})
		}
		return opts, nil
	case LevelEvaluation:
		items, err := c.Evaluations(ctx, parent)
		if err != nil {
			return nil, err
		}
		opts := make([]domain.Option, 0, len(items))
		for _, it := range items {
			opts = append(opts, domain.Option{Key: it.Matricule, Label: it.Title})
		}
		return opts, nil
	}
	return nil, domain.ErrInvalidLevel
}
