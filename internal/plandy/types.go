package plandy

import (
	"encoding/json"
	"time"
)

// envelope is the wrapper every non-streaming Plandy response uses.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// User is the authenticated account returned by /auth/me and login.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// authData mirrors the payload of /auth/login and /auth/register.
type authData struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Task mirrors a task entity owned by the backend.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline"`
	Labels      []string `json:"labels"`
	SprintID    int64    `json:"sprint_id"`
	AssigneeID  int64    `json:"assignee_id"`
	CreatedAt   string   `json:"created_at"`
}

// ParsedDeadline returns the deadline as time.Time when possible.
func (t Task) ParsedDeadline() time.Time {
	return parseTime(t.Deadline)
}

// ParsedCreatedAt returns the creation timestamp when possible.
func (t Task) ParsedCreatedAt() time.Time {
	return parseTime(t.CreatedAt)
}

// TaskFilter selects optional query parameters for ListTasks.
type TaskFilter struct {
	Status   string
	Priority string
	Date     string
}

// NewTask is the create payload for POST /tasks.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline,omitempty"`
	Labels      []string `json:"labels"`
}

// ScheduleBlock mirrors a schedule entity in the presentation vocabulary:
// start_time/end_time plus the linked task's title and description. The
// backend stores starts_at/ends_at and keeps title/description on the task;
// the client translates on update (see translateSchedulePatch).
type ScheduleBlock struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	State       string `json:"state"`
	TaskID      int64  `json:"task_id"`
}

// ParsedStart returns the block's start as time.Time when possible.
func (b ScheduleBlock) ParsedStart() time.Time {
	return parseTime(b.StartTime)
}

// ParsedEnd returns the block's end as time.Time when possible.
func (b ScheduleBlock) ParsedEnd() time.Time {
	return parseTime(b.EndTime)
}

// NewScheduleBlock is the create payload for POST /schedule.
type NewScheduleBlock struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TaskID      int64  `json:"task_id,omitempty"`
}

// TeamMember is one membership row inside a Team.
type TeamMember struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	User   *User  `json:"user"`
}

// DisplayName returns the member's name, falling back through the nested
// user record.
func (m TeamMember) DisplayName() string {
	if m.User != nil && m.User.Name != "" {
		return m.User.Name
	}
	return ""
}

// Team mirrors a team entity including the caller's own role.
type Team struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InviteCode  string       `json:"invite_code"`
	MyRole      string       `json:"my_role"`
	Members     []TeamMember `json:"members"`
}

// Sprint mirrors a sprint entity owned by a team.
type Sprint struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// NewSprint is the create payload for POST /teams/{id}/sprints.
type NewSprint struct {
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SprintDashboard mirrors /sprints/{id}/dashboard.
type SprintDashboard struct {
	Sprint      Sprint         `json:"sprint"`
	TotalTasks  int            `json:"total_tasks"`
	ByStatus    map[string]int `json:"by_status"`
	ByAssignee  map[string]int `json:"by_assignee"`
	DaysLeft    int            `json:"days_left"`
	Completion  float64        `json:"completion"`
	BurndownRaw map[string]int `json:"burndown"`
}

// WorkLifeScore mirrors one weekly work-life balance entry.
type WorkLifeScore struct {
	ID           int64   `json:"id"`
	WeekStart    string  `json:"week_start"`
	OverallScore float64 `json:"overall_score"`
	WorkScore    float64 `json:"work_score"`
	LifeScore    float64 `json:"life_score"`
	StressLevel  int     `json:"stress_level"`
	Satisfaction int     `json:"satisfaction"`
}

// NewWorkLifeScore is the create payload for POST /worklife/scores.
type NewWorkLifeScore struct {
	WeekStart    string  `json:"week_start"`
	OverallScore float64 `json:"overall_score"`
	WorkScore    float64 `json:"work_score"`
	LifeScore    float64 `json:"life_score"`
	StressLevel  int     `json:"stress_level"`
	Satisfaction int     `json:"satisfaction"`
}

// HabitLog mirrors one habit log entry.
type HabitLog struct {
	ID        int64  `json:"id"`
	HabitType string `json:"habit_type"`
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
	Date      string `json:"date"`
}

// HabitFilter selects optional query parameters for ListHabitLogs.
type HabitFilter struct {
	Date      string
	HabitType string
}

// NewHabitLog is the create payload for POST /worklife/habits.
type NewHabitLog struct {
	HabitType string `json:"habit_type"`
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
}

// Suggestion is one actionable item attached to an AI reply.
type Suggestion struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatReply mirrors the data payload of the non-streaming /ai/chat call.
type ChatReply struct {
	Response    string       `json:"response"`
	Suggestions []Suggestion `json:"suggestions"`
	SessionID   string       `json:"session_id"`
}

// WorkLifeAnalysis mirrors /ai/analyze-worklife.
type WorkLifeAnalysis struct {
	Summary     string       `json:"summary"`
	Insights    []string     `json:"insights"`
	Suggestions []Suggestion `json:"suggestions"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
