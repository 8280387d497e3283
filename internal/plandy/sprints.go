package plandy

import (
	"context"
	"fmt"
	"net/http"
)

// ListSprints fetches a team's sprints.
func (c *Client) ListSprints(ctx context.Context, teamID int64) ([]Sprint, error) {
	var sprints []Sprint
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/teams/%d/sprints", teamID), nil, nil, &sprints); err != nil {
		return nil, err
	}
	return sprints, nil
}

// CreateSprint creates a sprint for a team.
func (c *Client) CreateSprint(ctx context.Context, teamID int64, sprint NewSprint) (*Sprint, error) {
	var created Sprint
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/teams/%d/sprints", teamID), nil, sprint, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetSprint fetches a single sprint.
func (c *Client) GetSprint(ctx context.Context, id int64) (*Sprint, error) {
	var sprint Sprint
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sprints/%d", id), nil, nil, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// UpdateSprint applies a partial update to a sprint.
func (c *Client) UpdateSprint(ctx context.Context, id int64, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/sprints/%d", id), nil, fields, nil)
}

// DeleteSprint removes a sprint.
func (c *Client) DeleteSprint(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/sprints/%d", id), nil, nil, nil)
}

// ActivateSprint moves a sprint from planning to active.
func (c *Client) ActivateSprint(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sprints/%d/activate", id), nil, nil, nil)
}

// CompleteSprint closes an active sprint.
func (c *Client) CompleteSprint(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sprints/%d/complete", id), nil, nil, nil)
}

// SprintDashboard fetches the aggregated dashboard for a sprint.
func (c *Client) SprintDashboard(ctx context.Context, id int64) (*SprintDashboard, error) {
	var dash SprintDashboard
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sprints/%d/dashboard", id), nil, nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
