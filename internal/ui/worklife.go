package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plandy-app/flandy/internal/plandy"
)

// scoreFieldLabels names the weekly score form fields in focus order.
var scoreFieldLabels = [5]string{"Overall", "Work", "Life", "Stress", "Satisfaction"}

// worklifeState holds habits for today, the weekly score form, and the
// latest AI analysis.
type worklifeState struct {
	habitsLoaded bool
	habits       []plandy.HabitLog

	scoring     bool
	scoreFocus  int
	scoreInputs [5]textinput.Model // overall, work, life, stress, satisfaction

	analyzing bool
	analysis  *plandy.WorkLifeAnalysis
}

func newWorklifeState() worklifeState {
	var s worklifeState
	for i := range s.scoreInputs {
		input := textinput.New()
		input.Placeholder = scoreFieldLabels[i] + " 0-10"
		input.CharLimit = 4
		s.scoreInputs[i] = input
	}
	s.scoreInputs[3].Placeholder = "Stress 1-10"
	s.scoreInputs[4].Placeholder = "Satisfaction 1-10"
	return s
}

type habitsMsg struct {
	habits []plandy.HabitLog
	err    error
}

type analysisMsg struct {
	analysis *plandy.WorkLifeAnalysis
	err      error
}

// scoresMsg carries a fresh score list fetched right after saving one, so
// the new week shows without waiting for the next poll.
type scoresMsg struct {
	scores []plandy.WorkLifeScore
	err    error
}

type worklifeActionMsg struct {
	note string
	err  error
}

// habitKeys maps quick-toggle keys to habit types.
var habitKeys = map[string]string{
	"e": "exercise",
	"m": "meditation",
	"b": "break",
}

// habitByType finds today's log for a habit type.
func habitByType(logs []plandy.HabitLog, habitType string) (plandy.HabitLog, bool) {
	for _, log := range logs {
		if strings.EqualFold(log.HabitType, habitType) {
			return log, true
		}
	}
	return plandy.HabitLog{}, false
}

// weekStartDate returns the Monday of t's week as YYYY-MM-DD.
func weekStartDate(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

// parseScoreValue reads a 0-10 score, accepting decimals.
func parseScoreValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < 0 || v > 10 {
		return 0, fmt.Errorf("score %v out of range 0-10", v)
	}
	return v, nil
}

// parseScoreLevel reads a 1-10 whole-number level.
func parseScoreLevel(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	if v < 1 || v > 10 {
		return 0, fmt.Errorf("level %d out of range 1-10", v)
	}
	return v, nil
}

// parseWeeklyScore builds the create payload from the five form fields,
// anchored to the Monday of now's week.
func parseWeeklyScore(values [5]string, now time.Time) (plandy.NewWorkLifeScore, error) {
	score := plandy.NewWorkLifeScore{WeekStart: weekStartDate(now)}
	var err error
	if score.OverallScore, err = parseScoreValue(values[0]); err != nil {
		return score, err
	}
	if score.WorkScore, err = parseScoreValue(values[1]); err != nil {
		return score, err
	}
	if score.LifeScore, err = parseScoreValue(values[2]); err != nil {
		return score, err
	}
	if score.StressLevel, err = parseScoreLevel(values[3]); err != nil {
		return score, err
	}
	if score.Satisfaction, err = parseScoreLevel(values[4]); err != nil {
		return score, err
	}
	return score, nil
}

func (m Model) handleHabitsMsg(msg habitsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.worklife.habitsLoaded = true
	m.worklife.habits = msg.habits
	return m, nil
}

func (m Model) handleAnalysisMsg(msg analysisMsg) (tea.Model, tea.Cmd) {
	m.worklife.analyzing = false
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.worklife.analysis = msg.analysis
	return m, nil
}

func (m Model) handleWorklifeAction(msg worklifeActionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.errorMsg = ""
	m.statusMsg = msg.note
	return m, fetchScoresCmd(m.ctx, m.client)
}

// handleWorkLifeKey processes keyboard input for the work-life view.
func (m Model) handleWorkLifeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if habit, ok := habitKeys[key]; ok {
		return m, toggleHabitCmd(m.ctx, m.client, habit, m.worklife.habits)
	}

	switch key {
	case "n":
		m.worklife.scoring = true
		m.worklife.scoreFocus = 0
		for i := range m.worklife.scoreInputs {
			m.worklife.scoreInputs[i].Reset()
			m.worklife.scoreInputs[i].Blur()
		}
		m.worklife.scoreInputs[0].Focus()
		return m, nil

	case "a":
		if m.worklife.analyzing {
			return m, nil
		}
		m.worklife.analyzing = true
		return m, analyzeWorkLifeCmd(m.ctx, m.client)

	case "r":
		return m, fetchHabitsCmd(m.ctx, m.client, time.Now().Format("2006-01-02"))
	}

	return m, nil
}

// handleScoreFormKey processes keys while the weekly score form is open.
func (m Model) handleScoreFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.worklife.scoring = false
		return m, nil

	case "tab", "shift+tab":
		n := len(m.worklife.scoreInputs)
		dir := 1
		if msg.String() == "shift+tab" {
			dir = n - 1
		}
		m.worklife.scoreFocus = (m.worklife.scoreFocus + dir) % n
		for i := range m.worklife.scoreInputs {
			if i == m.worklife.scoreFocus {
				m.worklife.scoreInputs[i].Focus()
			} else {
				m.worklife.scoreInputs[i].Blur()
			}
		}
		return m, nil

	case "enter":
		var values [5]string
		for i := range m.worklife.scoreInputs {
			values[i] = m.worklife.scoreInputs[i].Value()
		}
		score, err := parseWeeklyScore(values, time.Now())
		if err != nil {
			m.errorMsg = truncate(err.Error(), 60)
			return m, nil
		}
		m.worklife.scoring = false
		return m, createScoreCmd(m.ctx, m.client, score)
	}

	var cmd tea.Cmd
	focus := m.worklife.scoreFocus
	m.worklife.scoreInputs[focus], cmd = m.worklife.scoreInputs[focus].Update(msg)
	return m, cmd
}

// renderWorkLife renders scores, today's habits, and any analysis.
func (m Model) renderWorkLife() string {
	if m.worklife.scoring {
		return m.renderScoreForm()
	}

	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Work-life balance"))
	b.WriteString("\n\n")

	scores := sortedScores(m.snapshot.Scores)
	if len(scores) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render("No weekly scores yet."))
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render("Press n to record this week."))
		b.WriteString("\n")
	} else {
		shown := scores
		if len(shown) > 6 {
			shown = shown[:6]
		}
		for i, score := range shown {
			label := score.WeekStart
			if i == 0 {
				label += "  (latest)"
			}
			b.WriteString("  ")
			b.WriteString(styles.MutedText.Render(padRight(label, 24)))
			b.WriteString(renderScoreBar(score.OverallScore, styles))
			b.WriteString(styles.Text.Render(fmt.Sprintf(" %.1f", score.OverallScore)))
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("  work %.1f / life %.1f  stress %d", score.WorkScore, score.LifeScore, score.StressLevel)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Today's habits"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render("e: exercise   m: meditation   b: break"))
	b.WriteString("\n\n")

	if len(m.worklife.habits) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render("Nothing logged today."))
		b.WriteString("\n")
	} else {
		for _, habit := range m.worklife.habits {
			mark := ternary(habit.Completed, styles.SuccessText.Render("✓"), styles.FaintText.Render("·"))
			b.WriteString("  ")
			b.WriteString(mark)
			b.WriteString(" ")
			b.WriteString(styles.Text.Render(titleCase(habit.HabitType)))
			if habit.Note != "" {
				b.WriteString(styles.FaintText.Render("  " + truncate(habit.Note, 40)))
			}
			b.WriteString("\n")
		}
	}

	if m.worklife.analyzing {
		b.WriteString("\n  ")
		b.WriteString(styles.WarningText.Render("Analyzing..."))
		b.WriteString("\n")
	} else if analysis := m.worklife.analysis; analysis != nil {
		b.WriteString("\n  ")
		b.WriteString(styles.Text.Bold(true).Render("Assistant analysis"))
		b.WriteString("\n\n  ")
		b.WriteString(styles.Text.Render(truncate(analysis.Summary, m.width*2)))
		b.WriteString("\n")
		for _, insight := range analysis.Insights {
			b.WriteString("   - ")
			b.WriteString(styles.MutedText.Render(truncate(insight, m.width-8)))
			b.WriteString("\n")
		}
		for _, suggestion := range analysis.Suggestions {
			b.WriteString("   ")
			b.WriteString(styles.InfoText.Render("→ " + truncate(suggestion.Content, m.width-8)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderScoreForm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Weekly score  week of " + weekStartDate(time.Now())))
	b.WriteString("\n\n")

	for i, input := range m.worklife.scoreInputs {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(padRight(scoreFieldLabels[i], 14)))
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(styles.FaintText.Render("tab: next field   enter: save   esc: cancel"))
	return b.String()
}

// sortedScores orders scores newest week first.
func sortedScores(scores []plandy.WorkLifeScore) []plandy.WorkLifeScore {
	sorted := make([]plandy.WorkLifeScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeekStart > sorted[j].WeekStart
	})
	return sorted
}

// renderScoreBar renders a 10-cell bar for a 0-10 score.
func renderScoreBar(score float64, styles Styles) string {
	filled := int(score + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	style := styles.SuccessText
	if score < 4 {
		style = styles.DangerText
	} else if score < 7 {
		style = styles.WarningText
	}
	return style.Render(strings.Repeat("█", filled)) +
		styles.FaintText.Render(strings.Repeat("░", 10-filled))
}

// Commands

func fetchHabitsCmd(ctx context.Context, client *plandy.Client, date string) tea.Cmd {
	return func() tea.Msg {
		habits, err := client.ListHabitLogs(ctx, plandy.HabitFilter{Date: date})
		return habitsMsg{habits: habits, err: err}
	}
}

func fetchScoresCmd(ctx context.Context, client *plandy.Client) tea.Cmd {
	return func() tea.Msg {
		scores, err := client.ListWorkLifeScores(ctx)
		return scoresMsg{scores: scores, err: err}
	}
}

// toggleHabitCmd flips today's log for a habit type, creating it on first
// press, then re-lists today's habits.
func toggleHabitCmd(ctx context.Context, client *plandy.Client, habitType string, logs []plandy.HabitLog) tea.Cmd {
	return func() tea.Msg {
		var err error
		if log, ok := habitByType(logs, habitType); ok {
			err = client.UpdateHabitLog(ctx, log.ID, map[string]any{"completed": !log.Completed})
		} else {
			err = client.CreateHabitLog(ctx, plandy.NewHabitLog{HabitType: habitType, Completed: true})
		}
		if err != nil {
			return habitsMsg{err: err}
		}
		habits, err := client.ListHabitLogs(ctx, plandy.HabitFilter{Date: time.Now().Format("2006-01-02")})
		return habitsMsg{habits: habits, err: err}
	}
}

func createScoreCmd(ctx context.Context, client *plandy.Client, score plandy.NewWorkLifeScore) tea.Cmd {
	return func() tea.Msg {
		if err := client.CreateWorkLifeScore(ctx, score); err != nil {
			return worklifeActionMsg{err: err}
		}
		return worklifeActionMsg{note: "Weekly score saved"}
	}
}

func analyzeWorkLifeCmd(ctx context.Context, client *plandy.Client) tea.Cmd {
	return func() tea.Msg {
		analysis, err := client.AnalyzeWorkLife(ctx, "month", true)
		return analysisMsg{analysis: analysis, err: err}
	}
}
