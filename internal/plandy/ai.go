package plandy

import (
	"context"
	"net/http"
)

// ChatContext is the optional situational summary attached to an AI chat
// message so the assistant can ground its answer in today's data.
type ChatContext struct {
	CurrentTasks    int     `json:"current_tasks"`
	TodayTasks      int     `json:"today_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	TodaySchedule   int     `json:"today_schedule_count"`
	WorkLifeScore   float64 `json:"worklife_score"`
	StressLevel     int     `json:"stress_level"`
	TodayHabits     int     `json:"today_habits"`
	CompletedHabits int     `json:"completed_habits"`
}

type chatRequest struct {
	Message   string       `json:"message"`
	Context   *ChatContext `json:"context,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
	Stream    bool         `json:"stream,omitempty"`
}

// SendChat sends a chat message and waits for the complete reply. Use
// StreamChat for incremental delivery.
func (c *Client) SendChat(ctx context.Context, message string, chatCtx *ChatContext) (*ChatReply, error) {
	body := chatRequest{Message: message, Context: chatCtx}
	var reply ChatReply
	if err := c.do(ctx, http.MethodPost, "/ai/chat", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// AnalyzeWorkLife requests an AI work-life analysis over the given period
// ("week" or "month").
func (c *Client) AnalyzeWorkLife(ctx context.Context, period string, includeSuggestions bool) (*WorkLifeAnalysis, error) {
	if period == "" {
		period = "week"
	}
	body := map[string]any{
		"period":              period,
		"include_suggestions": includeSuggestions,
	}
	var analysis WorkLifeAnalysis
	if err := c.do(ctx, http.MethodPost, "/ai/analyze-worklife", nil, body, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// OptimizeSchedule asks the assistant to rearrange the given day's blocks.
func (c *Client) OptimizeSchedule(ctx context.Context, date string) (*ChatReply, error) {
	body := map[string]string{"date": date}
	var reply ChatReply
	if err := c.do(ctx, http.MethodPost, "/ai/optimize-schedule", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// RequestReschedule asks the assistant to move a task, with a reason the
// model can weigh.
func (c *Client) RequestReschedule(ctx context.Context, taskID int64, reason string) (*ChatReply, error) {
	body := map[string]any{
		"task_id": taskID,
		"reason":  reason,
	}
	var reply ChatReply
	if err := c.do(ctx, http.MethodPost, "/ai/reschedule", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
