package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/state"
	"github.com/plandy-app/flandy/internal/transcript"
)

// chatState holds the conversation, the live stream, and the input line.
type chatState struct {
	messages []transcript.Message
	partial  string // assistant text accumulated mid-stream

	vp      viewport.Model
	vpReady bool
	input   textinput.Model
	spin    spinner.Model

	streaming   bool
	stream      *plandy.ChatStream
	sessionID   string
	suggestions []plandy.Suggestion

	transcriptPath string
}

func newChatState() chatState {
	input := textinput.New()
	input.Placeholder = "Ask the assistant..."
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return chatState{
		input:          input,
		spin:           spin,
		transcriptPath: transcript.DefaultPath(),
	}
}

// Messages

type transcriptMsg struct {
	messages []transcript.Message
}

type streamReadyMsg struct {
	stream *plandy.ChatStream
}

type chatDeltaMsg plandy.ChatDelta

type chatDoneMsg struct{}

type chatErrMsg struct {
	err error
}

type chatReplyMsg struct {
	reply *plandy.ChatReply
	err   error
}

// initChatViewport sets up the scrollback once the terminal size is known.
func (m *Model) initChatViewport() {
	m.chat.vp = viewport.New(m.width, m.chatViewportHeight())
	m.chat.vpReady = true
	m.refreshChatViewport()
}

func (m *Model) resizeChatViewport() {
	if !m.chat.vpReady {
		return
	}
	m.chat.vp.Width = m.width
	m.chat.vp.Height = m.chatViewportHeight()
	m.refreshChatViewport()
}

// chatViewportHeight leaves room for the input line and suggestions.
func (m Model) chatViewportHeight() int {
	h := m.contentHeight() - 3
	if len(m.chat.suggestions) > 0 {
		h -= len(m.chat.suggestions) + 1
	}
	if h < 3 {
		h = 3
	}
	return h
}

// handleChatKey processes keyboard input for the chat view.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chat.input.Blur()
		m.currentView = ViewTasks
		return m, nil

	case "ctrl+u":
		m.chat.messages = nil
		m.chat.suggestions = nil
		m.chat.sessionID = ""
		_ = transcript.Clear(m.chat.transcriptPath)
		m.refreshChatViewport()
		return m, nil

	case "pgup":
		m.chat.vp.HalfViewUp()
		return m, nil

	case "pgdown":
		m.chat.vp.HalfViewDown()
		return m, nil

	case "enter":
		return m.submitChat()
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m Model) submitChat() (tea.Model, tea.Cmd) {
	if m.chat.streaming {
		return m, nil
	}
	message := strings.TrimSpace(m.chat.input.Value())
	if message == "" {
		return m, nil
	}

	m.chat.input.Reset()
	m.chat.suggestions = nil
	m.chat.streaming = true
	m.chat.partial = ""

	userMsg := transcript.Message{Role: "user", Content: message, Time: time.Now()}
	m.chat.messages = append(m.chat.messages, userMsg)
	_ = transcript.Append(m.chat.transcriptPath, userMsg)
	m.refreshChatViewport()

	chatCtx := buildChatContext(m.snapshot, m.worklife.habits)
	return m, tea.Batch(
		m.chat.spin.Tick,
		startStreamCmd(m.ctx, m.client, message, chatCtx, m.chat.sessionID),
	)
}

// buildChatContext summarizes the current snapshot for the assistant.
func buildChatContext(snap state.Snapshot, habits []plandy.HabitLog) *plandy.ChatContext {
	pending, inProgress, completed := countTaskStatuses(snap.Tasks)

	today := time.Now().Format("2006-01-02")
	todayTasks := 0
	for _, task := range snap.Tasks {
		if deadline := task.ParsedDeadline(); !deadline.IsZero() && deadline.Format("2006-01-02") == today {
			todayTasks++
		}
	}

	completedHabits := 0
	for _, habit := range habits {
		if habit.Completed {
			completedHabits++
		}
	}

	chatCtx := &plandy.ChatContext{
		CurrentTasks:    len(snap.Tasks),
		TodayTasks:      todayTasks,
		PendingTasks:    pending,
		InProgressTasks: inProgress,
		CompletedTasks:  completed,
		TodaySchedule:   len(snap.Today),
		TodayHabits:     len(habits),
		CompletedHabits: completedHabits,
	}

	if score, ok := latestScore(snap); ok {
		chatCtx.WorkLifeScore = score
		chatCtx.StressLevel = latestStressLevel(snap)
	}
	return chatCtx
}

func latestStressLevel(snap state.Snapshot) int {
	scores := sortedScores(snap.Scores)
	if len(scores) == 0 {
		return 0
	}
	return scores[0].StressLevel
}

func (m Model) handleStreamReady(msg streamReadyMsg) (tea.Model, tea.Cmd) {
	m.chat.stream = msg.stream
	return m, readDeltaCmd(msg.stream)
}

func (m Model) handleChatDelta(msg chatDeltaMsg) (tea.Model, tea.Cmd) {
	if msg.AIResponse != "" {
		m.chat.partial += msg.AIResponse
		m.refreshChatViewport()
	}
	if msg.SessionID != "" {
		m.chat.sessionID = msg.SessionID
	}
	return m, readDeltaCmd(m.chat.stream)
}

func (m Model) handleChatDone() (tea.Model, tea.Cmd) {
	m.finishStream()
	answer := strings.TrimSpace(m.chat.partial)
	m.chat.partial = ""
	if answer == "" {
		m.errorMsg = "The assistant returned an empty reply"
		m.refreshChatViewport()
		return m, nil
	}

	reply := transcript.Message{Role: "assistant", Content: answer, Time: time.Now()}
	m.chat.messages = append(m.chat.messages, reply)
	_ = transcript.Append(m.chat.transcriptPath, reply)
	m.refreshChatViewport()
	return m, nil
}

func (m Model) handleChatErr(msg chatErrMsg) (tea.Model, tea.Cmd) {
	m.finishStream()
	m.chat.partial = ""

	// If streaming is not available, retry once over the plain endpoint.
	if errors.Is(msg.err, plandy.ErrUnavailable) || errors.Is(msg.err, plandy.ErrRequestFailed) {
		if len(m.chat.messages) > 0 {
			last := m.chat.messages[len(m.chat.messages)-1]
			if last.Role == "user" {
				m.chat.streaming = true
				return m, sendChatCmd(m.ctx, m.client, last.Content, buildChatContext(m.snapshot, m.worklife.habits))
			}
		}
	}

	m.errorMsg = truncate(msg.err.Error(), 60)
	return m, nil
}

func (m Model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	m.finishStream()
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}

	reply := transcript.Message{Role: "assistant", Content: msg.reply.Response, Time: time.Now()}
	m.chat.messages = append(m.chat.messages, reply)
	_ = transcript.Append(m.chat.transcriptPath, reply)
	m.chat.suggestions = msg.reply.Suggestions
	if msg.reply.SessionID != "" {
		m.chat.sessionID = msg.reply.SessionID
	}
	m.resizeChatViewport()
	return m, nil
}

func (m *Model) finishStream() {
	m.chat.streaming = false
	if m.chat.stream != nil {
		m.chat.stream.Close()
		m.chat.stream = nil
	}
}

// updateChatComponents forwards unhandled messages to the spinner.
func (m Model) updateChatComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && m.chat.streaming {
		var cmd tea.Cmd
		m.chat.spin, cmd = m.chat.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refreshChatViewport re-renders the scrollback and pins it to the bottom.
func (m *Model) refreshChatViewport() {
	if !m.chat.vpReady {
		return
	}
	m.chat.vp.SetContent(m.renderChatMessages())
	m.chat.vp.GotoBottom()
}

func (m Model) renderChatMessages() string {
	styles := m.theme.Styles()
	wrap := lipgloss.NewStyle().Width(m.width - 4)

	var b strings.Builder
	for _, msg := range m.chat.messages {
		if msg.Role == "user" {
			b.WriteString(styles.AccentText.Bold(true).Render("you"))
		} else {
			b.WriteString(styles.SuccessText.Render("assistant"))
		}
		if !msg.Time.IsZero() {
			b.WriteString(styles.FaintText.Render("  " + msg.Time.Format("15:04")))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(msg.Content))
		b.WriteString("\n\n")
	}

	if partial := m.chat.partial; partial != "" {
		b.WriteString(styles.SuccessText.Render("assistant"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(partial))
		b.WriteString("\n")
	}

	return b.String()
}

// renderChat renders the conversation, suggestions, and the input line.
func (m Model) renderChat() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.chat.vp.View())
	b.WriteString("\n")

	if len(m.chat.suggestions) > 0 {
		b.WriteString(styles.MutedText.Render("  Suggestions:"))
		b.WriteString("\n")
		for _, suggestion := range m.chat.suggestions {
			b.WriteString("   ")
			b.WriteString(styles.InfoText.Render("→ " + truncate(suggestion.Content, m.width-8)))
			b.WriteString("\n")
		}
	}

	if m.chat.streaming {
		b.WriteString("  ")
		b.WriteString(m.chat.spin.View())
		b.WriteString(styles.MutedText.Render(" thinking..."))
		b.WriteString("\n")
	}

	b.WriteString("  ")
	b.WriteString(m.chat.input.View())
	return b.String()
}

// Commands

func loadTranscriptCmd(path string) tea.Cmd {
	return func() tea.Msg {
		messages, err := transcript.Load(path, 200)
		if err != nil {
			return transcriptMsg{}
		}
		return transcriptMsg{messages: messages}
	}
}

func startStreamCmd(ctx context.Context, client *plandy.Client, message string, chatCtx *plandy.ChatContext, sessionID string) tea.Cmd {
	return func() tea.Msg {
		stream, err := client.StreamChat(ctx, message, chatCtx, sessionID)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return streamReadyMsg{stream: stream}
	}
}

func readDeltaCmd(stream *plandy.ChatStream) tea.Cmd {
	return func() tea.Msg {
		if stream == nil {
			return chatDoneMsg{}
		}
		if stream.Next() {
			return chatDeltaMsg(stream.Delta())
		}
		if err := stream.Err(); err != nil {
			return chatErrMsg{err: err}
		}
		return chatDoneMsg{}
	}
}

func sendChatCmd(ctx context.Context, client *plandy.Client, message string, chatCtx *plandy.ChatContext) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.SendChat(ctx, message, chatCtx)
		return chatReplyMsg{reply: reply, err: err}
	}
}
