package backend

import (
	"context"
	"net/http"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var env dataEnvelope[domain.DashboardStats]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("dashboard", "stats"), nil, &env); err != nil {
		return domain.DashboardStats{}, errors.Wrap(err, "dashboard stats")
	}
	return env.Data, nil
}

func (c *Client) RecentEvaluations(ctx context.Context) ([]domain.Evaluation, error) {
	var env dataEnvelope[[]domain.Evaluation]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("dashboard", "evaluations"), nil, &env); err != nil {
		return nil, errors.Wrap(err, "recent evaluations")
	}
	return env.Data, nil
}

func (c *Client) RecentCourses(ctx context.Context) ([]domain.Course, error) {
	var env dataEnvelope[[]domain.Course]
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("dashboard", "courses"), nil, &env); err != nil {
		return nil, errors.Wrap(err, "recent courses")
	}
	return env.Data, nil
}
