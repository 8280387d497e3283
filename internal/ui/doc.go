// Package ui implements the Flandy terminal interface with Bubble Tea.
//
// # Overview
//
// The UI is a single Bubble Tea model with one view enum and per-view state
// structs. Views cover the sign-in form, the task list, today's schedule,
// teams and sprints, work-life balance, and the AI chat. A background poller
// (internal/app) keeps a state.Store fresh; the UI reads immutable snapshots
// from it on every tick and never blocks on the network in Update.
//
// # Architecture
//
//   - app.go: root Model, Update loop, global key routing, tick handling
//   - header.go: status bar and per-view command bar
//   - login.go: sign-in / sign-up form, validation error display
//   - tasks.go: task list with filter, sort, create form, status advance
//   - schedule.go: today's timeline, assistant-driven optimization
//   - teams.go: team list, sprints, sprint dashboard
//   - worklife.go: weekly scores, habit quick-logging, AI analysis
//   - chat.go: streaming conversation with transcript persistence
//   - theme.go: color palettes and lipgloss style construction
//
// # Data Flow
//
// Slow operations run in tea.Cmd closures and come back as typed messages.
// The chat stream follows the same rule one increment at a time: a command
// reads one delta from the ChatStream and returns it as a message, and the
// Update handler issues the next read command, so the interface stays
// responsive while tokens arrive.
//
// # Themes
//
// Three palettes are built in (Nightfox, Kanagawa, Slate). T cycles them at
// runtime and the choice persists to prefs, alongside the session token.
package ui
