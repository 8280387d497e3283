package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/state"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	compact := m.width < 100

	var parts []string

	// Logo
	parts = append(parts, bg.Render("flandy", styles.Logo))

	// Backend status indicator
	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText.Bold(true)))
	case m.snapshot.Healthy:
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● OFF", styles.DangerText))
	}

	// Who is signed in
	if m.session.User != nil {
		name := m.session.User.Name
		if name == "" {
			name = m.session.User.Email
		}
		parts = append(parts, bg.Render(truncate(name, 24), styles.AccentText))
	}

	// Task counts
	pending, inProgress, completed := countTaskStatuses(m.snapshot.Tasks)
	if compact {
		parts = append(parts,
			bg.Render("P:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", pending), styles.Text)+
				sep+bg.Render("A:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", inProgress), styles.InfoText)+
				sep+bg.Render("D:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", completed), styles.SuccessText),
		)
	} else {
		parts = append(parts,
			bg.Render("Pending:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", pending), styles.Text)+
				sep+bg.Render("Active:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", inProgress), styles.InfoText)+
				sep+bg.Render("Done:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", completed), styles.SuccessText),
		)
	}

	// Today's schedule block count
	if n := len(m.snapshot.Today); n > 0 {
		parts = append(parts,
			bg.Render("Today:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d blocks", n), styles.Text))
	}

	// Latest work-life score
	if score, ok := latestScore(m.snapshot); ok {
		style := styles.SuccessText
		if score < 4 {
			style = styles.DangerText
		} else if score < 7 {
			style = styles.WarningText
		}
		parts = append(parts,
			bg.Render("Balance:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%.1f", score), style))
	}

	// Timestamp with relative time
	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	// Poll error indicator
	if m.snapshot.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		errText := truncate(classifyConnectionError(m.snapshot.LastError), maxErr)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(errText, styles.DangerText))
	}

	// Transient messages from the last UI action
	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.errorMsg, styles.WarningText))
	} else if m.statusMsg != "" {
		parts = append(parts, bg.Render(m.statusMsg, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// countTaskStatuses tallies tasks by lifecycle status.
func countTaskStatuses(tasks []plandy.Task) (pending, inProgress, completed int) {
	for _, task := range tasks {
		switch strings.ToLower(strings.TrimSpace(task.Status)) {
		case "pending":
			pending++
		case "in_progress":
			inProgress++
		case "completed":
			completed++
		}
	}
	return
}

// latestScore returns the most recent work-life overall score.
func latestScore(snap state.Snapshot) (float64, bool) {
	if len(snap.Scores) == 0 {
		return 0, false
	}
	latest := snap.Scores[0]
	for _, score := range snap.Scores[1:] {
		if score.WeekStart > latest.WeekStart {
			latest = score
		}
	}
	return latest.OverallScore, true
}

// formatTimestamp formats the last update time with a relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "backend offline"
	case strings.Contains(msg, "no such host"):
		return "host not found"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	default:
		return msg
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewSchedule:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"n", "New"},
			{"o", "Optimize"},
			{"x", "Delete"},
			{"t", "Tasks"},
			{"?", "More"},
		}
	case ViewTeams:
		switch m.teams.mode {
		case teamsModeSprints:
			commands = []cmd{
				{"j/k", "Navigate"},
				{"n", "New"},
				{"a", "Activate"},
				{"C", "Complete"},
				{"enter", "Dashboard"},
				{"?", "More"},
			}
		case teamsModeMembers:
			commands = []cmd{
				{"j/k", "Navigate"},
				{"p", "Role"},
				{"x", "Remove"},
				{"backspace", "Back"},
				{"?", "More"},
			}
		default:
			commands = []cmd{
				{"j/k", "Navigate"},
				{"enter", "Sprints"},
				{"n", "New"},
				{"J", "Join"},
				{"m", "Members"},
				{"?", "More"},
			}
		}
	case ViewWorkLife:
		commands = []cmd{
			{"n", "Score"},
			{"a", "Analyze"},
			{"e/m/b", "Habits"},
			{"t", "Tasks"},
			{"?", "More"},
		}
	case ViewChat:
		commands = []cmd{
			{"enter", "Send"},
			{"esc", "Tasks"},
			{"ctrl+u", "Clear"},
			{"?", "More"},
		}
	default: // ViewTasks
		commands = []cmd{
			{"f", m.tasks.filterLabel()}, // Shows current filter state
			{"n", "New"},
			{"space", "Advance"},
			{"x", "Delete"},
			{"j/k", "Navigate"},
			{"s/g/w/c", "Views"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
