package plandy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListWorkLifeScores fetches all weekly scores, newest first.
func (c *Client) ListWorkLifeScores(ctx context.Context) ([]WorkLifeScore, error) {
	var scores []WorkLifeScore
	if err := c.do(ctx, http.MethodGet, "/worklife/scores", nil, nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// WorkLifeScoreByWeek fetches the score for one week (YYYY-MM-DD of the
// week's first day).
func (c *Client) WorkLifeScoreByWeek(ctx context.Context, weekStart string) (*WorkLifeScore, error) {
	var score WorkLifeScore
	if err := c.do(ctx, http.MethodGet, "/worklife/scores/week/"+weekStart, nil, nil, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// CreateWorkLifeScore records a weekly score.
func (c *Client) CreateWorkLifeScore(ctx context.Context, score NewWorkLifeScore) error {
	return c.do(ctx, http.MethodPost, "/worklife/scores", nil, score, nil)
}

// ListHabitLogs fetches habit logs, optionally narrowed by date or type.
func (c *Client) ListHabitLogs(ctx context.Context, filter HabitFilter) ([]HabitLog, error) {
	values := url.Values{}
	if filter.Date != "" {
		values.Set("date", filter.Date)
	}
	if filter.HabitType != "" {
		values.Set("habit_type", filter.HabitType)
	}

	var logs []HabitLog
	if err := c.do(ctx, http.MethodGet, "/worklife/habits", values, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateHabitLog records a habit entry for today.
func (c *Client) CreateHabitLog(ctx context.Context, log NewHabitLog) error {
	return c.do(ctx, http.MethodPost, "/worklife/habits", nil, log, nil)
}

// UpdateHabitLog applies a partial update to a habit log.
func (c *Client) UpdateHabitLog(ctx context.Context, id int64, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/worklife/habits/%d", id), nil, fields, nil)
}
