package plandy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListTasks fetches tasks, optionally narrowed by status, priority or date.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	values := url.Values{}
	if filter.Status != "" {
		values.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		values.Set("priority", filter.Priority)
	}
	if filter.Date != "" {
		values.Set("date", filter.Date)
	}

	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", values, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the created entity.
func (c *Client) CreateTask(ctx context.Context, task NewTask) (*Task, error) {
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.Labels == nil {
		task.Labels = []string{}
	}
	var created Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask applies a partial update. Only the keys present in fields are
// sent; the backend leaves everything else untouched.
func (c *Client) UpdateTask(ctx context.Context, id int64, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), nil, fields, nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil, nil)
}
