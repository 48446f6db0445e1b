package backend

import (
	"context"
	"net/http"
	"time"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

type evaluationResultsEnvelope struct {
	Evaluation domain.Evaluation     `json:"evaluation"`
	Results    []domain.ResultRecord `json:"resultats"`
}

type student struct {
	ID   string `json:"id"`
	Name string `json:"nom_complet"`
}

type studentResultsEnvelope struct {
	Student student               `json:"etudiant"`
	Results []domain.ResultRecord `json:"resultats"`
}

// ResultsByEvaluation returns the results of every participant of an evaluation.
func (c *Client) ResultsByEvaluation(ctx context.Context, evaluation string) (domain.ResultSnapshot, error) {
	var env evaluationResultsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("evaluations", evaluation, "resultats"), nil, &env); err != nil {
		return domain.ResultSnapshot{}, errors.Wrapf(err, "results of evaluation %s", evaluation)
	}
	return domain.ResultSnapshot{
		Subject:   evaluation,
		Title:     env.Evaluation.Title,
		Records:   env.Results,
		FetchedAt: time.Now(),
	}, nil
}

// ResultsByStudent returns one student's results across evaluations.
func (c *Client) ResultsByStudent(ctx context.Context, studentID string) (domain.ResultSnapshot, error) {
	var env studentResultsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("etudiants", studentID, "resultats"), nil, &env); err != nil {
		return domain.ResultSnapshot{}, errors.Wrapf(err, "results of student %s", studentID)
	}
	return domain.ResultSnapshot{
		Subject:   studentID,
		Title:     env.Student.Name,
		Records:   env.Results,
		FetchedAt: time.Now(),
	}, nil
}
