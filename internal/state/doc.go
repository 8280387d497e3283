// Package state provides thread-safe session and data state for Flandy.
//
// # Overview
//
// The Store is the coordination point between the background poller and the
// UI. It holds two things: the authenticated session (token plus user) and
// the latest data snapshot (tasks, today's schedule, work-life scores,
// backend health). The Plandy client stays stateless apart from its bearer
// token; everything the UI remembers between renders lives here or in the
// UI model itself, never in ambient globals.
//
// # Concurrency model
//
// A readers-writer lock guards both session and snapshot. The poller is the
// single snapshot writer; the UI reads snapshots at its own refresh rate.
// Session writes happen from the UI (login/logout) and from 401 handling.
// All reads return copies so neither side can mutate the other's view.
//
// # Update semantics
//
// Update with a nil error replaces the snapshot wholesale and resets the
// failure counter. Update with an error keeps the previous data, records
// the error, and counts the failure; IsOffline trips after two consecutive
// failures so a single hiccup never flashes an offline banner.
//
// ClearSession drops the data snapshot along with the session: cached tasks
// belong to the identity that fetched them.
package state
