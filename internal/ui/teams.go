package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plandy-app/flandy/internal/plandy"
)

// teamsMode selects what the teams view shows.
type teamsMode int

const (
	teamsModeList teamsMode = iota
	teamsModeMembers
	teamsModeSprints
)

// teamsForm identifies which input form, if any, is open on the teams view.
type teamsForm int

const (
	teamsFormNone teamsForm = iota
	teamsFormCreate
	teamsFormJoin
	teamsFormSprint
)

// teamsState holds teams, their members, sprints, and the sprint dashboard.
type teamsState struct {
	loaded   bool
	loading  bool
	teams    []plandy.Team
	selected int

	mode           teamsMode
	memberSelected int

	sprintsTeamID  int64
	sprints        []plandy.Sprint
	sprintSelected int
	dashboard      *plandy.SprintDashboard

	// Form inputs. nameInput and descInput double as the sprint form's
	// name and goal fields; placeholders are reset on open.
	form       teamsForm
	formFocus  int
	nameInput  textinput.Model
	descInput  textinput.Model
	codeInput  textinput.Model
	startInput textinput.Model
	endInput   textinput.Model
}

func newTeamsState() teamsState {
	name := textinput.New()
	name.CharLimit = 100

	desc := textinput.New()
	desc.CharLimit = 200

	code := textinput.New()
	code.Placeholder = "Invite code"
	code.CharLimit = 32

	start := textinput.New()
	start.Placeholder = "Start YYYY-MM-DD"
	start.CharLimit = 10

	end := textinput.New()
	end.Placeholder = "End YYYY-MM-DD"
	end.CharLimit = 10

	return teamsState{
		nameInput:  name,
		descInput:  desc,
		codeInput:  code,
		startInput: start,
		endInput:   end,
	}
}

func (s teamsState) selectedTeam() (plandy.Team, bool) {
	if s.selected < len(s.teams) {
		return s.teams[s.selected], true
	}
	return plandy.Team{}, false
}

type teamsMsg struct {
	teams []plandy.Team
	err   error
}

type sprintsMsg struct {
	teamID  int64
	sprints []plandy.Sprint
	err     error
}

type dashboardMsg struct {
	dashboard *plandy.SprintDashboard
	err       error
}

// teamActionMsg reports a team or sprint mutation. A non-zero teamID means
// the sprints list is what changed and should be refetched.
type teamActionMsg struct {
	note   string
	teamID int64
	err    error
}

func (m Model) handleTeamsMsg(msg teamsMsg) (tea.Model, tea.Cmd) {
	m.teams.loading = false
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.teams.loaded = true
	m.teams.teams = msg.teams
	if m.teams.selected >= len(msg.teams) {
		m.teams.selected = 0
	}
	if team, ok := m.teams.selectedTeam(); ok {
		if m.teams.memberSelected >= len(team.Members) {
			m.teams.memberSelected = 0
		}
	} else if m.teams.mode == teamsModeMembers {
		m.teams.mode = teamsModeList
	}
	return m, nil
}

func (m Model) handleSprintsMsg(msg sprintsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.teams.mode = teamsModeSprints
	m.teams.sprintsTeamID = msg.teamID
	m.teams.sprints = msg.sprints
	m.teams.sprintSelected = activeSprintIndex(msg.sprints)
	m.teams.dashboard = nil

	// Preload the dashboard for the active sprint, if any
	for _, sprint := range msg.sprints {
		if strings.EqualFold(sprint.Status, "active") {
			return m, fetchDashboardCmd(m.ctx, m.client, sprint.ID)
		}
	}
	return m, nil
}

func (m Model) handleDashboardMsg(msg dashboardMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.teams.dashboard = msg.dashboard
	return m, nil
}

func (m Model) handleTeamAction(msg teamActionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = truncate(msg.err.Error(), 60)
		return m, nil
	}
	m.errorMsg = ""
	m.statusMsg = msg.note
	if msg.teamID != 0 {
		return m, fetchSprintsCmd(m.ctx, m.client, msg.teamID)
	}
	return m, fetchTeamsCmd(m.ctx, m.client)
}

// activeSprintIndex returns the index of the first active sprint, or 0.
func activeSprintIndex(sprints []plandy.Sprint) int {
	for i, sprint := range sprints {
		if strings.EqualFold(sprint.Status, "active") {
			return i
		}
	}
	return 0
}

// nextRole flips a membership between the two roles the backend knows.
func nextRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), "admin") {
		return "member"
	}
	return "admin"
}

// sprintWindow returns the default two-week sprint range starting today.
func sprintWindow(now time.Time) (string, string) {
	return now.Format("2006-01-02"), now.AddDate(0, 0, 14).Format("2006-01-02")
}

// handleTeamsKey processes keyboard input for the teams view.
func (m Model) handleTeamsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.teams.mode {
	case teamsModeMembers:
		return m.handleMembersKey(msg)
	case teamsModeSprints:
		return m.handleSprintsKey(msg)
	}

	switch msg.String() {
	case "j", "down":
		if m.teams.selected < len(m.teams.teams)-1 {
			m.teams.selected++
		}
	case "k", "up":
		if m.teams.selected > 0 {
			m.teams.selected--
		}

	case "r":
		m.teams.loading = true
		return m, fetchTeamsCmd(m.ctx, m.client)

	case "n":
		m = m.openTeamForm(teamsFormCreate)
		return m, nil

	case "J":
		m = m.openTeamForm(teamsFormJoin)
		return m, nil

	case "m":
		if team, ok := m.teams.selectedTeam(); ok && len(team.Members) > 0 {
			m.teams.mode = teamsModeMembers
			m.teams.memberSelected = 0
		}

	case "x":
		if team, ok := m.teams.selectedTeam(); ok {
			return m, leaveTeamCmd(m.ctx, m.client, team.ID)
		}

	case "enter":
		if team, ok := m.teams.selectedTeam(); ok {
			return m, fetchSprintsCmd(m.ctx, m.client, team.ID)
		}
	}

	return m, nil
}

func (m Model) handleMembersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	team, ok := m.teams.selectedTeam()
	if !ok {
		m.teams.mode = teamsModeList
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.teams.memberSelected < len(team.Members)-1 {
			m.teams.memberSelected++
		}
	case "k", "up":
		if m.teams.memberSelected > 0 {
			m.teams.memberSelected--
		}

	case "p":
		if m.teams.memberSelected < len(team.Members) {
			member := team.Members[m.teams.memberSelected]
			return m, changeMemberRoleCmd(m.ctx, m.client, team.ID, member.UserID, nextRole(member.Role))
		}

	case "x":
		if m.teams.memberSelected < len(team.Members) {
			member := team.Members[m.teams.memberSelected]
			return m, removeMemberCmd(m.ctx, m.client, team.ID, member.UserID)
		}

	case "backspace":
		m.teams.mode = teamsModeList
	}

	return m, nil
}

func (m Model) handleSprintsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.teams.sprintSelected < len(m.teams.sprints)-1 {
			m.teams.sprintSelected++
		}
	case "k", "up":
		if m.teams.sprintSelected > 0 {
			m.teams.sprintSelected--
		}

	case "n":
		m = m.openTeamForm(teamsFormSprint)
		return m, nil

	case "a":
		if m.teams.sprintSelected < len(m.teams.sprints) {
			sprint := m.teams.sprints[m.teams.sprintSelected]
			return m, activateSprintCmd(m.ctx, m.client, m.teams.sprintsTeamID, sprint.ID)
		}

	case "C":
		if m.teams.sprintSelected < len(m.teams.sprints) {
			sprint := m.teams.sprints[m.teams.sprintSelected]
			return m, completeSprintCmd(m.ctx, m.client, m.teams.sprintsTeamID, sprint.ID)
		}

	case "enter":
		if m.teams.sprintSelected < len(m.teams.sprints) {
			sprint := m.teams.sprints[m.teams.sprintSelected]
			return m, fetchDashboardCmd(m.ctx, m.client, sprint.ID)
		}

	case "backspace":
		m.teams.mode = teamsModeList
		m.teams.dashboard = nil
	}

	return m, nil
}

// openTeamForm resets the inputs and opens the requested form.
func (m Model) openTeamForm(form teamsForm) Model {
	m.teams.form = form
	m.teams.formFocus = 0
	m.teams.nameInput.Reset()
	m.teams.descInput.Reset()
	m.teams.codeInput.Reset()
	m.teams.startInput.Reset()
	m.teams.endInput.Reset()

	switch form {
	case teamsFormCreate:
		m.teams.nameInput.Placeholder = "Team name"
		m.teams.descInput.Placeholder = "Description (optional)"
		m.teams.nameInput.Focus()
	case teamsFormJoin:
		m.teams.codeInput.Focus()
	case teamsFormSprint:
		m.teams.nameInput.Placeholder = "Sprint name"
		m.teams.descInput.Placeholder = "Goal (optional)"
		start, end := sprintWindow(time.Now())
		m.teams.startInput.SetValue(start)
		m.teams.endInput.SetValue(end)
		m.teams.nameInput.Focus()
	}
	return m
}

func (m Model) closeTeamForm() Model {
	m.teams.form = teamsFormNone
	m.teams.nameInput.Blur()
	m.teams.descInput.Blur()
	m.teams.codeInput.Blur()
	m.teams.startInput.Blur()
	m.teams.endInput.Blur()
	return m
}

// teamFormInputs lists the active form's inputs in focus order.
func (m *Model) teamFormInputs() []*textinput.Model {
	switch m.teams.form {
	case teamsFormCreate:
		return []*textinput.Model{&m.teams.nameInput, &m.teams.descInput}
	case teamsFormJoin:
		return []*textinput.Model{&m.teams.codeInput}
	case teamsFormSprint:
		return []*textinput.Model{&m.teams.nameInput, &m.teams.descInput, &m.teams.startInput, &m.teams.endInput}
	}
	return nil
}

// handleTeamFormKey processes keys while a teams-view form is open.
func (m Model) handleTeamFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inputs := m.teamFormInputs()

	switch msg.String() {
	case "esc":
		return m.closeTeamForm(), nil

	case "tab", "shift+tab":
		dir := 1
		if msg.String() == "shift+tab" {
			dir = len(inputs) - 1
		}
		m.teams.formFocus = (m.teams.formFocus + dir) % len(inputs)
		for i, input := range inputs {
			if i == m.teams.formFocus {
				input.Focus()
			} else {
				input.Blur()
			}
		}
		return m, nil

	case "enter":
		return m.submitTeamForm()
	}

	var cmd tea.Cmd
	if m.teams.formFocus < len(inputs) {
		*inputs[m.teams.formFocus], cmd = inputs[m.teams.formFocus].Update(msg)
	}
	return m, cmd
}

func (m Model) submitTeamForm() (tea.Model, tea.Cmd) {
	switch m.teams.form {
	case teamsFormCreate:
		name := strings.TrimSpace(m.teams.nameInput.Value())
		if name == "" {
			m.errorMsg = "Team name is required"
			return m, nil
		}
		desc := strings.TrimSpace(m.teams.descInput.Value())
		return m.closeTeamForm(), createTeamCmd(m.ctx, m.client, name, desc)

	case teamsFormJoin:
		code := strings.TrimSpace(m.teams.codeInput.Value())
		if code == "" {
			m.errorMsg = "Invite code is required"
			return m, nil
		}
		return m.closeTeamForm(), joinTeamCmd(m.ctx, m.client, code)

	case teamsFormSprint:
		name := strings.TrimSpace(m.teams.nameInput.Value())
		if name == "" {
			m.errorMsg = "Sprint name is required"
			return m, nil
		}
		start := strings.TrimSpace(m.teams.startInput.Value())
		end := strings.TrimSpace(m.teams.endInput.Value())
		for _, day := range []string{start, end} {
			if _, err := time.Parse("2006-01-02", day); err != nil {
				m.errorMsg = "Sprint dates must be YYYY-MM-DD"
				return m, nil
			}
		}
		sprint := plandy.NewSprint{
			Name:      name,
			Goal:      strings.TrimSpace(m.teams.descInput.Value()),
			StartDate: start,
			EndDate:   end,
		}
		return m.closeTeamForm(), createSprintCmd(m.ctx, m.client, m.teams.sprintsTeamID, sprint)
	}

	return m, nil
}

// renderTeams renders the team list, a member roster, sprints, or an open form.
func (m Model) renderTeams() string {
	styles := m.theme.Styles()

	if m.teams.form != teamsFormNone {
		return m.renderTeamForm()
	}

	if m.teams.loading {
		return "\n  " + styles.MutedText.Render("Loading teams...")
	}

	switch m.teams.mode {
	case teamsModeMembers:
		return m.renderMembers()
	case teamsModeSprints:
		return m.renderSprints()
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Teams"))
	b.WriteString("\n\n")

	if len(m.teams.teams) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render("You are not in any team yet."))
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render("Press n to create one or J to join with a code."))
		return b.String()
	}

	for i, team := range m.teams.teams {
		cursor := "  "
		name := styles.Text.Render(team.Name)
		if i == m.teams.selected {
			cursor = styles.AccentText.Render("> ")
			name = styles.Selected.Render(team.Name)
		}

		line := cursor + name +
			"  " + styles.MutedText.Render(fmt.Sprintf("%d members", len(team.Members)))
		if team.MyRole != "" {
			line += "  " + styles.InfoText.Render(team.MyRole)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == m.teams.selected {
			for _, member := range team.Members {
				label := member.DisplayName()
				if label == "" {
					label = fmt.Sprintf("user #%d", member.UserID)
				}
				b.WriteString("       ")
				b.WriteString(styles.FaintText.Render(label + "  " + member.Role))
				b.WriteString("\n")
			}
			if team.InviteCode != "" {
				b.WriteString("       ")
				b.WriteString(styles.MutedText.Render("invite code: " + team.InviteCode))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func (m Model) renderMembers() string {
	styles := m.theme.Styles()
	team, ok := m.teams.selectedTeam()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render(team.Name + " members"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render("p: change role   x: remove   backspace: back"))
	b.WriteString("\n\n")

	for i, member := range team.Members {
		cursor := "  "
		label := member.DisplayName()
		if label == "" {
			label = fmt.Sprintf("user #%d", member.UserID)
		}
		name := styles.Text.Render(label)
		if i == m.teams.memberSelected {
			cursor = styles.AccentText.Render("> ")
			name = styles.Selected.Render(label)
		}

		b.WriteString(cursor)
		b.WriteString(name)
		b.WriteString("  ")
		b.WriteString(styles.InfoText.Render(member.Role))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderSprints() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render("Sprints"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render("n: new   a: activate   C: complete   backspace: back"))
	b.WriteString("\n\n")

	if len(m.teams.sprints) == 0 {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render("No sprints for this team."))
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render("Press n to plan one."))
		return b.String()
	}

	for i, sprint := range m.teams.sprints {
		cursor := "  "
		name := styles.Text.Render(sprint.Name)
		if i == m.teams.sprintSelected {
			cursor = styles.AccentText.Render("> ")
			name = styles.Selected.Render(sprint.Name)
		}

		line := cursor + name +
			"  " + styles.StatusStyle(strings.ToLower(sprint.Status)).Render(titleCase(sprint.Status)) +
			"  " + styles.MutedText.Render(sprint.StartDate+" to "+sprint.EndDate)
		b.WriteString(line)
		b.WriteString("\n")
	}

	if dash := m.teams.dashboard; dash != nil {
		b.WriteString("\n  ")
		b.WriteString(styles.Text.Bold(true).Render(dash.Sprint.Name + " dashboard"))
		b.WriteString("\n\n  ")
		b.WriteString(styles.MutedText.Render("Tasks: "))
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d", dash.TotalTasks)))
		b.WriteString(styles.MutedText.Render("   Completion: "))
		b.WriteString(styles.SuccessText.Render(fmt.Sprintf("%.0f%%", dash.Completion)))
		b.WriteString(styles.MutedText.Render("   Days left: "))
		b.WriteString(styles.Text.Render(fmt.Sprintf("%d", dash.DaysLeft)))
		b.WriteString("\n")

		if len(dash.ByStatus) > 0 {
			b.WriteString("\n")
			for _, status := range []string{"pending", "in_progress", "completed"} {
				if count, ok := dash.ByStatus[status]; ok {
					b.WriteString("  ")
					b.WriteString(styles.StatusStyle(status).Render(titleCase(status)))
					b.WriteString(" ")
					b.WriteString(styles.Text.Render(fmt.Sprintf("%d", count)))
				}
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderTeamForm() string {
	styles := m.theme.Styles()

	var title string
	switch m.teams.form {
	case teamsFormCreate:
		title = "New team"
	case teamsFormJoin:
		title = "Join team"
	case teamsFormSprint:
		title = "New sprint"
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for _, input := range m.teamFormInputs() {
		b.WriteString("  ")
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(styles.FaintText.Render("tab: next field   enter: submit   esc: cancel"))
	return b.String()
}

// Commands

func fetchTeamsCmd(ctx context.Context, client *plandy.Client) tea.Cmd {
	return func() tea.Msg {
		teams, err := client.ListTeams(ctx)
		return teamsMsg{teams: teams, err: err}
	}
}

func fetchSprintsCmd(ctx context.Context, client *plandy.Client, teamID int64) tea.Cmd {
	return func() tea.Msg {
		sprints, err := client.ListSprints(ctx, teamID)
		return sprintsMsg{teamID: teamID, sprints: sprints, err: err}
	}
}

func fetchDashboardCmd(ctx context.Context, client *plandy.Client, sprintID int64) tea.Cmd {
	return func() tea.Msg {
		dashboard, err := client.SprintDashboard(ctx, sprintID)
		return dashboardMsg{dashboard: dashboard, err: err}
	}
}

func createTeamCmd(ctx context.Context, client *plandy.Client, name, description string) tea.Cmd {
	return func() tea.Msg {
		team, err := client.CreateTeam(ctx, name, description)
		if err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Created " + team.Name}
	}
}

func joinTeamCmd(ctx context.Context, client *plandy.Client, inviteCode string) tea.Cmd {
	return func() tea.Msg {
		team, err := client.JoinTeam(ctx, inviteCode)
		if err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Joined " + team.Name}
	}
}

func leaveTeamCmd(ctx context.Context, client *plandy.Client, teamID int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.LeaveTeam(ctx, teamID); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Left team"}
	}
}

func changeMemberRoleCmd(ctx context.Context, client *plandy.Client, teamID, userID int64, role string) tea.Cmd {
	return func() tea.Msg {
		if err := client.UpdateMemberRole(ctx, teamID, userID, role); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Role changed to " + role}
	}
}

func removeMemberCmd(ctx context.Context, client *plandy.Client, teamID, userID int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.RemoveMember(ctx, teamID, userID); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Member removed"}
	}
}

func createSprintCmd(ctx context.Context, client *plandy.Client, teamID int64, sprint plandy.NewSprint) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.CreateSprint(ctx, teamID, sprint); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Sprint created", teamID: teamID}
	}
}

func activateSprintCmd(ctx context.Context, client *plandy.Client, teamID, sprintID int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.ActivateSprint(ctx, sprintID); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Sprint activated", teamID: teamID}
	}
}

func completeSprintCmd(ctx context.Context, client *plandy.Client, teamID, sprintID int64) tea.Cmd {
	return func() tea.Msg {
		if err := client.CompleteSprint(ctx, sprintID); err != nil {
			return teamActionMsg{err: err}
		}
		return teamActionMsg{note: "Sprint completed", teamID: teamID}
	}
}
