package plandy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListSchedule fetches schedule blocks, optionally bounded by a date range.
func (c *Client) ListSchedule(ctx context.Context, startDate, endDate string) ([]ScheduleBlock, error) {
	values := url.Values{}
	if startDate != "" {
		values.Set("start_date", startDate)
	}
	if endDate != "" {
		values.Set("end_date", endDate)
	}

	var blocks []ScheduleBlock
	if err := c.do(ctx, http.MethodGet, "/schedule", values, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ScheduleByDate fetches the blocks for a single day (YYYY-MM-DD).
func (c *Client) ScheduleByDate(ctx context.Context, date string) ([]ScheduleBlock, error) {
	var blocks []ScheduleBlock
	if err := c.do(ctx, http.MethodGet, "/schedule/date/"+date, nil, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// CreateScheduleBlock creates a schedule block and returns the created entity.
func (c *Client) CreateScheduleBlock(ctx context.Context, block NewScheduleBlock) (*ScheduleBlock, error) {
	var created ScheduleBlock
	if err := c.do(ctx, http.MethodPost, "/schedule", nil, block, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateScheduleBlock applies a partial update using the presentation
// vocabulary (start_time/end_time/title/description). The payload is
// translated to the backend's schedule schema before sending.
func (c *Client) UpdateScheduleBlock(ctx context.Context, id int64, fields map[string]any) error {
	payload := translateSchedulePatch(fields)
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/schedule/%d", id), nil, payload, nil)
}

// DeleteScheduleBlock removes a schedule block.
func (c *Client) DeleteScheduleBlock(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/schedule/%d", id), nil, nil, nil)
}

// translateSchedulePatch adapts an update payload from the presentation
// vocabulary to the backend's: start_time/end_time become starts_at/ends_at,
// and title/description are dropped outright because schedule entities do
// not carry them (they live on the linked task).
func translateSchedulePatch(fields map[string]any) map[string]any {
	payload := make(map[string]any, len(fields))
	for key, value := range fields {
		switch key {
		case "start_time":
			payload["starts_at"] = value
		case "end_time":
			payload["ends_at"] = value
		case "title", "description":
			// dropped
		default:
			payload[key] = value
		}
	}
	return payload
}
