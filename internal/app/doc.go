// Package app provides the orchestration layer for the Flandy application.
//
// # Overview
//
// This package wires together configuration, polling, state management, and the UI
// to create the complete Flandy TUI experience. It serves as the composition root
// where all dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load Flandy configuration from ~/.config/flandy/config.toml
//  2. Load user preferences (theme, saved session token)
//  3. Initialize HTTP client for the Plandy backend API
//  4. Restore and validate the saved session, if one exists
//  5. Launch background poller goroutine for continuous updates
//  6. Start the TUI and block until user exits or context cancels
//
// # Polling Behavior
//
// The poller runs continuously in the background at a configurable interval
// (default: 30 seconds). On each tick:
//
//   - Probes backend health
//   - When signed in, fetches tasks, today's schedule, and work-life scores
//   - Updates the shared state.Store atomically
//   - Logs errors but continues polling on failure
//
// Consecutive failures stretch the interval with exponential backoff, capped
// at five minutes, so an unreachable backend is not hammered. The first
// successful refresh snaps the cadence back to the configured base interval.
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Client initialization failure (malformed API base URL)
//
// Recoverable errors (logged, polling continues):
//   - Periodic fetch failures and network timeouts
//   - Session expiry: the store's session is cleared and the UI drops
//     back to the login screen, no restart needed
//
// Unlike the backend health probe (which only flips a flag), an expired
// session is acted on immediately so the user never stares at stale data
// behind a dead token.
package app
