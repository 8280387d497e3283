package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plandy-app/flandy/internal/config"
	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/prefs"
	"github.com/plandy-app/flandy/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewTasks View = iota
	ViewSchedule
	ViewTeams
	ViewWorkLife
	ViewChat
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    *plandy.Client
	Store     *state.Store
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    *plandy.Client
	store     *state.Store
	config    *config.Config
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	session     state.Session
	lastUpdated time.Time

	// Transient status line, cleared on the next successful action
	errorMsg  string
	statusMsg string

	// Per-view state
	login    loginState
	tasks    tasksState
	schedule scheduleState
	teams    teamsState
	worklife worklifeState
	chat     chatState

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		config:      opts.Config,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		theme:       GetTheme(themeName),
		currentView: ViewTasks,
	}
	m.login = newLoginState()
	m.tasks = newTasksState()
	m.schedule = newScheduleState()
	m.teams = newTeamsState()
	m.worklife = newWorklifeState()
	m.chat = newChatState()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		loadTranscriptCmd(m.chat.transcriptPath),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initChatViewport()
		}
		m.ready = true
		m.resizeChatViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.session = msg.session
		m.lastUpdated = time.Now()
		return m, nil

	case authMsg:
		return m.handleAuthResult(msg)

	case signedOutMsg:
		m.session = state.Session{}
		m.statusMsg = "Signed out"
		return m, nil

	case tasksMsg:
		if msg.err != nil {
			m.errorMsg = truncate(msg.err.Error(), 60)
			return m, nil
		}
		m.snapshot.Tasks = msg.tasks
		m.clampTaskSelection()
		return m, nil

	case taskActionMsg:
		return m.handleTaskAction(msg)

	case scheduleActionMsg:
		if msg.err != nil {
			m.errorMsg = truncate(msg.err.Error(), 60)
			return m, nil
		}
		m.statusMsg = msg.note
		return m, fetchScheduleCmd(m.ctx, m.client)

	case scheduleMsg:
		if msg.err != nil {
			m.errorMsg = truncate(msg.err.Error(), 60)
			return m, nil
		}
		m.snapshot.Today = msg.blocks
		if m.schedule.row >= len(msg.blocks) {
			m.schedule.row = 0
		}
		return m, nil

	case teamsMsg:
		return m.handleTeamsMsg(msg)

	case sprintsMsg:
		return m.handleSprintsMsg(msg)

	case dashboardMsg:
		return m.handleDashboardMsg(msg)

	case teamActionMsg:
		return m.handleTeamAction(msg)

	case habitsMsg:
		return m.handleHabitsMsg(msg)

	case analysisMsg:
		return m.handleAnalysisMsg(msg)

	case scoresMsg:
		if msg.err != nil {
			m.errorMsg = truncate(msg.err.Error(), 60)
			return m, nil
		}
		m.snapshot.Scores = msg.scores
		return m, nil

	case worklifeActionMsg:
		return m.handleWorklifeAction(msg)

	case transcriptMsg:
		m.chat.messages = msg.messages
		m.refreshChatViewport()
		return m, nil

	case streamReadyMsg:
		return m.handleStreamReady(msg)

	case chatDeltaMsg:
		return m.handleChatDelta(msg)

	case chatDoneMsg:
		return m.handleChatDone()

	case chatErrMsg:
		return m.handleChatErr(msg)

	case chatReplyMsg:
		return m.handleChatReply(msg)

	default:
		return m.updateChatComponents(msg)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if !m.session.Authenticated() {
		return m.renderLogin()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	// ctrl+c always quits, even mid-form
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.session.Authenticated() {
		return m.handleLoginKey(msg)
	}

	// Views with active text entry swallow everything else first
	if m.currentView == ViewChat && m.chat.input.Focused() {
		return m.handleChatKey(msg)
	}
	if m.currentView == ViewTasks && m.tasks.creating {
		return m.handleTaskFormKey(msg)
	}
	if m.currentView == ViewTasks && m.tasks.rescheduling {
		return m.handleRescheduleKey(msg)
	}
	if m.currentView == ViewSchedule && m.schedule.creating {
		return m.handleScheduleFormKey(msg)
	}
	if m.currentView == ViewTeams && m.teams.form != teamsFormNone {
		return m.handleTeamFormKey(msg)
	}
	if m.currentView == ViewWorkLife && m.worklife.scoring {
		return m.handleScoreFormKey(msg)
	}

	// Global keys
	switch msg.String() {
	case "?":
		m.showHelp = true
		return m, nil

	case "T":
		// Cycle theme, keep the saved token
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Token: m.session.Token})
		}
		return m, nil

	case "L":
		return m, signOutCmd(m.ctx, m.client, m.store, m.prefsPath, m.theme.Name)

	case "t", "1":
		m.currentView = ViewTasks
		return m, nil

	case "s", "2":
		m.currentView = ViewSchedule
		return m, nil

	case "g", "3":
		m.currentView = ViewTeams
		if !m.teams.loaded {
			return m, fetchTeamsCmd(m.ctx, m.client)
		}
		return m, nil

	case "w", "4":
		m.currentView = ViewWorkLife
		if !m.worklife.habitsLoaded {
			return m, fetchHabitsCmd(m.ctx, m.client, time.Now().Format("2006-01-02"))
		}
		return m, nil

	case "c", "5":
		m.currentView = ViewChat
		m.chat.input.Focus()
		return m, nil

	case "esc":
		m.currentView = ViewTasks
		return m, nil
	}

	// View-specific keys
	switch m.currentView {
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewSchedule:
		return m.handleScheduleKey(msg)
	case ViewTeams:
		return m.handleTeamsKey(msg)
	case ViewWorkLife:
		return m.handleWorkLifeKey(msg)
	case ViewChat:
		return m.handleChatKey(msg)
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.chat.streaming {
		cmds = append(cmds, m.chat.spin.Tick)
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) handleAuthResult(msg authMsg) (tea.Model, tea.Cmd) {
	m.login.submitting = false
	if msg.err != nil {
		m.login.setError(msg.err)
		return m, nil
	}
	m.session = state.Session{Token: msg.token, User: msg.user}
	m.login = newLoginState()
	m.statusMsg = ""
	m.errorMsg = ""
	m.currentView = ViewTasks
	// The poller may be mid-interval; fetch tasks right away so the first
	// screen after login is not empty.
	return m, tea.Batch(
		fetchSnapshotCmd(m.store),
		fetchTasksCmd(m.ctx, m.client, plandy.TaskFilter{}),
	)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewTasks:
		return m.renderTasks()
	case ViewSchedule:
		return m.renderSchedule()
	case ViewTeams:
		return m.renderTeams()
	case ViewWorkLife:
		return m.renderWorkLife()
	case ViewChat:
		return m.renderChat()
	default:
		return ""
	}
}

// contentHeight is the number of rows left for the active view.
func (m Model) contentHeight() int {
	h := m.height - 2 // header + command bar
	if h < 1 {
		return 1
	}
	return h
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	session  state.Session
}

type authMsg struct {
	token string
	user  *plandy.User
	err   error
}

type signedOutMsg struct{}

type tasksMsg struct {
	tasks []plandy.Task
	err   error
}

type taskActionMsg struct {
	note string
	err  error
}

type scheduleActionMsg struct {
	note string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snapshot: store.Snapshot(), session: store.Session()}
	}
}

func fetchTasksCmd(ctx context.Context, client *plandy.Client, filter plandy.TaskFilter) tea.Cmd {
	return func() tea.Msg {
		tasks, err := client.ListTasks(ctx, filter)
		return tasksMsg{tasks: tasks, err: err}
	}
}

func signOutCmd(ctx context.Context, client *plandy.Client, store *state.Store, prefsPath, themeName string) tea.Cmd {
	return func() tea.Msg {
		_ = client.Logout(ctx)
		store.ClearSession()
		if prefsPath != "" {
			_ = prefs.Save(prefsPath, prefs.Prefs{Theme: themeName})
		}
		return signedOutMsg{}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
