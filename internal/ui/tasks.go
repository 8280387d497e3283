package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plandy-app/flandy/internal/plandy"
)

// TaskFilterMode selects which tasks the list shows.
type TaskFilterMode int

const (
	TaskFilterAll TaskFilterMode = iota
	TaskFilterPending
	TaskFilterInProgress
	TaskFilterCompleted
)

var taskPriorities = []string{"low", "medium", "high", "urgent"}

// tasksState holds the task list and the create form.
type tasksState struct {
	selectedRow int
	filterMode  TaskFilterMode

	creating      bool
	titleInput    textinput.Model
	deadlineInput textinput.Model
	priorityIdx   int
	formFocus     int // 0 = title, 1 = deadline, 2 = priority

	rescheduling    bool
	rescheduleID    int64
	rescheduleTitle string
	reasonInput     textinput.Model
}

func newTasksState() tasksState {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	deadline := textinput.New()
	deadline.Placeholder = "Deadline YYYY-MM-DD (optional)"
	deadline.CharLimit = 10

	reason := textinput.New()
	reason.Placeholder = "Why should this move?"
	reason.CharLimit = 200

	return tasksState{
		titleInput:    title,
		deadlineInput: deadline,
		priorityIdx:   1, // medium
		reasonInput:   reason,
	}
}

func (s tasksState) filterLabel() string {
	switch s.filterMode {
	case TaskFilterPending:
		return "Pending"
	case TaskFilterInProgress:
		return "Active"
	case TaskFilterCompleted:
		return "Done"
	default:
		return "All"
	}
}

// visibleTasks returns the filtered, sorted task list for display.
func (m Model) visibleTasks() []plandy.Task {
	return sortTasks(filterTasks(m.snapshot.Tasks, m.tasks.filterMode))
}

// filterTasks keeps tasks matching the filter mode.
func filterTasks(tasks []plandy.Task, mode TaskFilterMode) []plandy.Task {
	if mode == TaskFilterAll {
		return tasks
	}
	var want string
	switch mode {
	case TaskFilterPending:
		want = "pending"
	case TaskFilterInProgress:
		want = "in_progress"
	case TaskFilterCompleted:
		want = "completed"
	}
	out := make([]plandy.Task, 0, len(tasks))
	for _, task := range tasks {
		if strings.EqualFold(strings.TrimSpace(task.Status), want) {
			out = append(out, task)
		}
	}
	return out
}

// sortTasks orders tasks by status (active first), then priority, then deadline.
func sortTasks(tasks []plandy.Task) []plandy.Task {
	sorted := make([]plandy.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if a, b := statusRank(sorted[i].Status), statusRank(sorted[j].Status); a != b {
			return a < b
		}
		if a, b := priorityRank(sorted[i].Priority), priorityRank(sorted[j].Priority); a != b {
			return a < b
		}
		di, dj := sorted[i].ParsedDeadline(), sorted[j].ParsedDeadline()
		if di.IsZero() != dj.IsZero() {
			return !di.IsZero() // dated tasks before undated
		}
		return di.Before(dj)
	})
	return sorted
}

func statusRank(status string) int {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "in_progress":
		return 0
	case "pending":
		return 1
	case "completed":
		return 2
	default:
		return 3
	}
}

func priorityRank(priority string) int {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "urgent":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	default:
		return 4
	}
}

// nextStatus advances a task through its lifecycle, wrapping back to pending.
func nextStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending":
		return "in_progress"
	case "in_progress":
		return "completed"
	default:
		return "pending"
	}
}

func (m *Model) clampTaskSelection() {
	n := len(m.visibleTasks())
	if n == 0 {
		m.tasks.selectedRow = 0
		return
	}
	if m.tasks.selectedRow >= n {
		m.tasks.selectedRow = n - 1
	}
}

// handleTasksKey processes keyboard input for the tasks view.
func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.visibleTasks()

	switch msg.String() {
	case "j", "down":
		if m.tasks.selectedRow < len(tasks)-1 {
			m.tasks.selectedRow++
		}
	case "k", "up":
		if m.tasks.selectedRow > 0 {
			m.tasks.selectedRow--
		}
	case "home":
		m.tasks.selectedRow = 0
	case "end":
		if len(tasks) > 0 {
			m.tasks.selectedRow = len(tasks) - 1
		}

	case "f":
		m.tasks.filterMode = (m.tasks.filterMode + 1) % 4
		m.tasks.selectedRow = 0

	case "n":
		m.tasks.creating = true
		m.tasks.formFocus = 0
		m.tasks.titleInput.Focus()
		m.tasks.deadlineInput.Blur()

	case " ", "space":
		if m.tasks.selectedRow < len(tasks) {
			task := tasks[m.tasks.selectedRow]
			return m, advanceTaskCmd(m.ctx, m.client, task.ID, nextStatus(task.Status))
		}

	case "R":
		if m.tasks.selectedRow < len(tasks) {
			task := tasks[m.tasks.selectedRow]
			m.tasks.rescheduling = true
			m.tasks.rescheduleID = task.ID
			m.tasks.rescheduleTitle = task.Title
			m.tasks.reasonInput.Reset()
			m.tasks.reasonInput.Focus()
		}

	case "x":
		if m.tasks.selectedRow < len(tasks) {
			return m, deleteTaskCmd(m.ctx, m.client, tasks[m.tasks.selectedRow].ID)
		}
	}

	return m, nil
}

// handleTaskFormKey processes keys while the create form is open.
func (m Model) handleTaskFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tasks.creating = false
		m.tasks.titleInput.Reset()
		m.tasks.deadlineInput.Reset()
		return m, nil

	case "tab", "shift+tab":
		dir := 1
		if msg.String() == "shift+tab" {
			dir = 2 // +2 mod 3 walks backward
		}
		m.tasks.formFocus = (m.tasks.formFocus + dir) % 3
		m.tasks.titleInput.Blur()
		m.tasks.deadlineInput.Blur()
		switch m.tasks.formFocus {
		case 0:
			m.tasks.titleInput.Focus()
		case 1:
			m.tasks.deadlineInput.Focus()
		}
		return m, nil

	case "left", "right":
		if m.tasks.formFocus == 2 {
			dir := 1
			if msg.String() == "left" {
				dir = len(taskPriorities) - 1
			}
			m.tasks.priorityIdx = (m.tasks.priorityIdx + dir) % len(taskPriorities)
			return m, nil
		}

	case "enter":
		title := strings.TrimSpace(m.tasks.titleInput.Value())
		if title == "" {
			m.errorMsg = "Task title is required"
			return m, nil
		}
		task := plandy.NewTask{
			Title:    title,
			Priority: taskPriorities[m.tasks.priorityIdx],
			Deadline: strings.TrimSpace(m.tasks.deadlineInput.Value()),
		}
		m.tasks.creating = false
		m.tasks.titleInput.Reset()
		m.tasks.deadlineInput.Reset()
		return m, createTaskCmd(m.ctx, m.client, task)
	}

	var cmd tea.Cmd
	switch m.tasks.formFocus {
	case 0:
		m.tasks.titleInput, cmd = m.tasks.titleInput.Update(msg)
	case 1:
		m.tasks.deadlineInput, cmd = m.tasks.deadlineInput.Update(msg)
	}
	return m, cmd
}

// handleRescheduleKey processes keys while the reschedule prompt is open.
func (m Model) handleRescheduleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tasks.rescheduling = false
		m.tasks.reasonInput.Reset()
		return m, nil

	case "enter":
		reason := strings.TrimSpace(m.tasks.reasonInput.Value())
		if reason == "" {
			m.errorMsg = "A reason is required"
			return m, nil
		}
		id := m.tasks.rescheduleID
		m.tasks.rescheduling = false
		m.tasks.reasonInput.Reset()
		m.statusMsg = "Asking the assistant to reschedule..."
		return m, rescheduleTaskCmd(m.ctx, m.client, id, reason)
	}

	var cmd tea.Cmd
	m.tasks.reasonInput, cmd = m.tasks.reasonInput.Update(msg)
	return m, cmd
}

func (m Model) handleTaskAction(msg taskActionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.errorMsg = ""
	m.statusMsg = msg.note
	return m, fetchTasksCmd(m.ctx, m.client, plandy.TaskFilter{})
}

// renderTasks renders the task list or the create form.
func (m Model) renderTasks() string {
	if m.tasks.creating {
		return m.renderTaskForm()
	}
	if m.tasks.rescheduling {
		return m.renderRescheduleForm()
	}

	styles := m.theme.Styles()
	tasks := m.visibleTasks()

	var b strings.Builder

	if len(tasks) == 0 {
		b.WriteString("\n  ")
		b.WriteString(styles.MutedText.Render("No tasks"))
		if m.tasks.filterMode != TaskFilterAll {
			b.WriteString(styles.FaintText.Render("  (filter: " + m.tasks.filterLabel() + ")"))
		}
		b.WriteString(styles.FaintText.Render("  Press n to create one."))
		return b.String()
	}

	maxRows := m.contentHeight() - 1
	titleWidth := m.width - 40
	if titleWidth < 20 {
		titleWidth = 20
	}

	for i, task := range tasks {
		if i >= maxRows {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("  ... %d more", len(tasks)-maxRows)))
			break
		}

		cursor := "  "
		if i == m.tasks.selectedRow {
			cursor = styles.AccentText.Render("> ")
		}

		badge := styles.StatusStyle(strings.ToLower(task.Status)).Render(titleCase(task.Status))
		priority := styles.PriorityStyle(strings.ToLower(task.Priority)).Render(padRight(task.Priority, 6))

		title := truncate(task.Title, titleWidth)
		if i == m.tasks.selectedRow {
			title = styles.Selected.Render(padRight(title, titleWidth))
		} else {
			title = styles.Text.Render(padRight(title, titleWidth))
		}

		line := cursor + title + " " + priority + " " + badge
		if deadline := task.ParsedDeadline(); !deadline.IsZero() {
			line += " " + styles.MutedText.Render(deadline.Format("Jan 02"))
		}
		if len(task.Labels) > 0 {
			line += " " + styles.FaintText.Render(truncate(strings.Join(task.Labels, ","), 24))
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderTaskForm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("New task"))
	b.WriteString("\n\n  ")
	b.WriteString(m.tasks.titleInput.View())
	b.WriteString("\n  ")
	b.WriteString(m.tasks.deadlineInput.View())
	b.WriteString("\n\n  ")

	b.WriteString(styles.MutedText.Render("Priority: "))
	for i, p := range taskPriorities {
		if i == m.tasks.priorityIdx {
			marker := ternary(m.tasks.formFocus == 2, "[%s]", "(%s)")
			b.WriteString(styles.PriorityStyle(p).Bold(true).Render(fmt.Sprintf(marker, p)))
		} else {
			b.WriteString(styles.FaintText.Render(" " + p + " "))
		}
	}

	b.WriteString("\n\n  ")
	b.WriteString(styles.FaintText.Render("tab: next field   left/right: priority   enter: create   esc: cancel"))
	return b.String()
}

func (m Model) renderRescheduleForm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Reschedule"))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(truncate(m.tasks.rescheduleTitle, 50)))
	b.WriteString("\n\n  ")
	b.WriteString(m.tasks.reasonInput.View())
	b.WriteString("\n\n  ")
	b.WriteString(styles.FaintText.Render("enter: ask the assistant   esc: cancel"))
	return b.String()
}

// Commands

func createTaskCmd(ctx context.Context, client *plandy.Client, task plandy.NewTask) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.CreateTask(ctx, task); err != nil {
			return taskActionMsg{err: err}
		}
		return taskActionMsg{note: "Task created"}
	}
}

func advanceTaskCmd(ctx context.Context, client *plandy.Client, id int64, status string) tea.Cmd {
	return func() tea.Msg {
		if err := client.UpdateTask(ctx, id, map[string]any{"status": status}); err != nil {
			return taskActionMsg{err: err}
		}
		return taskActionMsg{note: "Moved to " + titleCase(status)}
	}
}

func rescheduleTaskCmd(ctx context.Context, client *plandy.Client, id int64, reason string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.RequestReschedule(ctx, id, reason)
		if err != nil {
			return taskActionMsg{err: err}
		}
		return taskActionMsg{note: truncate(reply.Response, 80)}
	}
}

func deleteTaskCmd(ctx context.Context, client *plandy.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteTask(ctx, id); err != nil {
			return taskActionMsg{err: err}
		}
		return taskActionMsg{note: "Task deleted"}
	}
}
