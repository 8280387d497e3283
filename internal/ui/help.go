package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"t/1", "Tasks"},
				{"s/2", "Schedule"},
				{"g/3", "Teams"},
				{"w/4", "Work-life"},
				{"c/5", "Chat"},
				{"esc", "Back to tasks"},
			},
		},
		{
			title: "Tasks",
			items: []helpItem{
				{"j/k", "Move up/down"},
				{"f", "Cycle filter"},
				{"n", "New task"},
				{"space", "Advance status"},
				{"R", "Ask to reschedule"},
				{"x", "Delete"},
			},
		},
		{
			title: "Schedule",
			items: []helpItem{
				{"n", "New block"},
				{"o", "Optimize day"},
				{"d", "Mark block done"},
				{"x", "Delete block"},
			},
		},
		{
			title: "Teams",
			items: []helpItem{
				{"n", "New team/sprint"},
				{"J", "Join with code"},
				{"m", "Members"},
				{"p", "Change role"},
				{"a/C", "Activate/complete"},
				{"x", "Leave/remove"},
			},
		},
		{
			title: "Work-life",
			items: []helpItem{
				{"n", "Weekly score"},
				{"e/m/b", "Toggle habit"},
				{"a", "Analyze"},
			},
		},
		{
			title: "Chat",
			items: []helpItem{
				{"enter", "Send message"},
				{"pgup/pgdn", "Scroll history"},
				{"ctrl+u", "Clear conversation"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"L", "Sign out"},
				{"?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(40)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
