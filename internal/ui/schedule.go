package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plandy-app/flandy/internal/plandy"
)

// scheduleState holds the timeline cursor and the new-block form.
type scheduleState struct {
	row int

	creating   bool
	formFocus  int // 0 = title, 1 = start, 2 = end
	titleInput textinput.Model
	startInput textinput.Model
	endInput   textinput.Model
}

func newScheduleState() scheduleState {
	title := textinput.New()
	title.Placeholder = "Block title"
	title.CharLimit = 200

	start := textinput.New()
	start.Placeholder = "Start HH:MM"
	start.CharLimit = 5

	end := textinput.New()
	end.Placeholder = "End HH:MM"
	end.CharLimit = 5

	return scheduleState{
		titleInput: title,
		startInput: start,
		endInput:   end,
	}
}

// scheduleMsg carries a fresh fetch of today's blocks, bypassing the
// polling cycle so mutations show up immediately.
type scheduleMsg struct {
	blocks []plandy.ScheduleBlock
	err    error
}

// sortedScheduleBlocks orders today's blocks by start time.
func sortedScheduleBlocks(blocks []plandy.ScheduleBlock) []plandy.ScheduleBlock {
	sorted := make([]plandy.ScheduleBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ParsedStart().Before(sorted[j].ParsedStart())
	})
	return sorted
}

// combineDayTime anchors an HH:MM clock time on the given day.
func combineDayTime(day time.Time, clock string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return "", fmt.Errorf("parse clock time %q: %w", clock, err)
	}
	combined := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
	return combined.Format("2006-01-02T15:04:05"), nil
}

// handleScheduleKey processes keyboard input for the schedule view.
func (m Model) handleScheduleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	blocks := sortedScheduleBlocks(m.snapshot.Today)

	switch msg.String() {
	case "j", "down":
		if m.schedule.row < len(blocks)-1 {
			m.schedule.row++
		}
	case "k", "up":
		if m.schedule.row > 0 {
			m.schedule.row--
		}

	case "n":
		m.schedule.creating = true
		m.schedule.formFocus = 0
		m.schedule.titleInput.Focus()
		m.schedule.startInput.Blur()
		m.schedule.endInput.Blur()
		now := time.Now()
		m.schedule.startInput.SetValue(now.Format("15:04"))
		m.schedule.endInput.SetValue(now.Add(time.Hour).Format("15:04"))
		return m, nil

	case "o":
		m.statusMsg = "Asking the assistant to optimize today..."
		return m, optimizeScheduleCmd(m.ctx, m.client, time.Now().Format("2006-01-02"))

	case "x":
		if m.schedule.row < len(blocks) {
			return m, deleteBlockCmd(m.ctx, m.client, blocks[m.schedule.row].ID)
		}

	case "d":
		if m.schedule.row < len(blocks) {
			block := blocks[m.schedule.row]
			return m, markBlockDoneCmd(m.ctx, m.client, block.ID)
		}
	}

	return m, nil
}

// handleScheduleFormKey processes keys while the new-block form is open.
func (m Model) handleScheduleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.schedule.creating = false
		m.schedule.titleInput.Reset()
		m.schedule.startInput.Reset()
		m.schedule.endInput.Reset()
		return m, nil

	case "tab", "shift+tab":
		dir := 1
		if msg.String() == "shift+tab" {
			dir = 2 // +2 mod 3 walks backward
		}
		m.schedule.formFocus = (m.schedule.formFocus + dir) % 3
		m.schedule.titleInput.Blur()
		m.schedule.startInput.Blur()
		m.schedule.endInput.Blur()
		switch m.schedule.formFocus {
		case 0:
			m.schedule.titleInput.Focus()
		case 1:
			m.schedule.startInput.Focus()
		case 2:
			m.schedule.endInput.Focus()
		}
		return m, nil

	case "enter":
		title := strings.TrimSpace(m.schedule.titleInput.Value())
		if title == "" {
			m.errorMsg = "Block title is required"
			return m, nil
		}
		today := time.Now()
		start, err := combineDayTime(today, m.schedule.startInput.Value())
		if err != nil {
			m.errorMsg = "Times must be HH:MM"
			return m, nil
		}
		end, err := combineDayTime(today, m.schedule.endInput.Value())
		if err != nil {
			m.errorMsg = "Times must be HH:MM"
			return m, nil
		}
		block := plandy.NewScheduleBlock{
			Title:     title,
			StartTime: start,
			EndTime:   end,
		}
		m.schedule.creating = false
		m.schedule.titleInput.Reset()
		m.schedule.startInput.Reset()
		m.schedule.endInput.Reset()
		return m, createBlockCmd(m.ctx, m.client, block)
	}

	var cmd tea.Cmd
	switch m.schedule.formFocus {
	case 0:
		m.schedule.titleInput, cmd = m.schedule.titleInput.Update(msg)
	case 1:
		m.schedule.startInput, cmd = m.schedule.startInput.Update(msg)
	case 2:
		m.schedule.endInput, cmd = m.schedule.endInput.Update(msg)
	}
	return m, cmd
}

// renderSchedule renders today's schedule blocks as a timeline.
func (m Model) renderSchedule() string {
	if m.schedule.creating {
		return m.renderScheduleForm()
	}

	styles := m.theme.Styles()
	blocks := sortedScheduleBlocks(m.snapshot.Today)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Today  " + time.Now().Format("Mon Jan 02")))
	b.WriteString("\n\n")

	if len(blocks) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render("Nothing scheduled today."))
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render("Press n to add a block, or o to let the assistant plan your day."))
		return b.String()
	}

	titleWidth := m.width - 36
	if titleWidth < 20 {
		titleWidth = 20
	}

	for i, block := range blocks {
		cursor := "  "
		if i == m.schedule.row {
			cursor = styles.AccentText.Render("> ")
		}

		window := formatBlockWindow(block)
		title := truncate(block.Title, titleWidth)
		if i == m.schedule.row {
			title = styles.Selected.Render(title)
		} else {
			title = styles.Text.Render(title)
		}

		line := cursor + styles.InfoText.Render(window) + "  " + title
		if block.State != "" {
			line += "  " + styles.StatusStyle(strings.ToLower(block.State)).Render(titleCase(block.State))
		}
		if block.TaskID != 0 {
			line += "  " + styles.FaintText.Render(fmt.Sprintf("task #%d", block.TaskID))
		}

		b.WriteString(line)
		b.WriteString("\n")

		if i == m.schedule.row && block.Description != "" {
			b.WriteString("       ")
			b.WriteString(styles.MutedText.Render(truncate(block.Description, m.width-10)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderScheduleForm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("New block  " + time.Now().Format("Mon Jan 02")))
	b.WriteString("\n\n  ")
	b.WriteString(m.schedule.titleInput.View())
	b.WriteString("\n  ")
	b.WriteString(m.schedule.startInput.View())
	b.WriteString("\n  ")
	b.WriteString(m.schedule.endInput.View())
	b.WriteString("\n\n  ")
	b.WriteString(styles.FaintText.Render("tab: next field   enter: create   esc: cancel"))
	return b.String()
}

// formatBlockWindow formats the start-end window of a block.
func formatBlockWindow(block plandy.ScheduleBlock) string {
	start, end := block.ParsedStart(), block.ParsedEnd()
	if start.IsZero() {
		return "--:--        "
	}
	if end.IsZero() {
		return start.Format("15:04") + "        "
	}
	return start.Format("15:04") + " - " + end.Format("15:04")
}

// Commands

func fetchScheduleCmd(ctx context.Context, client *plandy.Client) tea.Cmd {
	return func() tea.Msg {
		blocks, err := client.ScheduleByDate(ctx, time.Now().Format("2006-01-02"))
		return scheduleMsg{blocks: blocks, err: err}
	}
}

func createBlockCmd(ctx context.Context, client *plandy.Client, block plandy.NewScheduleBlock) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.CreateScheduleBlock(ctx, block); err != nil {
			return scheduleActionMsg{err: err}
		}
		return scheduleActionMsg{note: "Block added"}
	}
}

func optimizeScheduleCmd(ctx context.Context, client *plandy.Client, date string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.OptimizeSchedule(ctx, date)
		if err != nil {
			return scheduleActionMsg{err: err}
		}
		return scheduleActionMsg{note: truncate(reply.Response, 80)}
	}
}

func deleteBlockCmd(ctx context.Context, client *plandy.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteScheduleBlock(ctx, id); err != nil {
			return scheduleActionMsg{err: err}
		}
		return scheduleActionMsg{note: "Block removed"}
	}
}

func markBlockDoneCmd(ctx context.Context, client *plandy.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.UpdateScheduleBlock(ctx, id, map[string]any{"state": "completed"}); err != nil {
			return scheduleActionMsg{err: err}
		}
		return scheduleActionMsg{note: "Block completed"}
	}
}
