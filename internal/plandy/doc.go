// Package plandy provides the HTTP client for the Plandy backend API.
//
// # Overview
//
// This package mediates between the Flandy UI and the remote Plandy
// service. It performs one HTTP request per domain operation, attaches the
// standard headers and bearer token, interprets the response envelope, and
// exposes one streaming consumer for incremental AI chat replies.
//
// # Architecture
//
//   - client.go: request machinery, envelope decoding, error mapping
//   - errors.go: typed failure taxonomy
//   - types.go: data structures mirroring the Plandy API schema
//   - auth.go, tasks.go, schedule.go, teams.go, sprints.go, worklife.go,
//     ai.go: thin per-domain wrappers over the generic request helper
//   - stream.go: the event-tagged chat stream consumer
//
// # Envelope contract
//
// Every non-streaming response is wrapped in a JSON envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "errors": {"email": ["taken"]}}
//
// Wrapper methods decode the data payload into typed structs and never
// expose the envelope itself.
//
// # Error handling
//
// Failures map to a small typed taxonomy callers branch on with errors.Is
// and errors.As:
//
//   - ErrUnavailable: connection-level failure before any response
//   - ErrSessionExpired: HTTP 401; the stored token is cleared first
//   - *ValidationError: HTTP 422 with field-level messages
//   - *StatusError: any other non-2xx status with the raw body
//   - ErrRequestFailed: a 2xx envelope carrying success=false
//
// Anything else (malformed JSON, request construction) is wrapped with
// fmt.Errorf context. Nothing in this package panics or calls os.Exit.
//
// # Session credential
//
// The bearer token is the client's only mutable state. Login and Register
// set it, Logout and any 401 clear it, and SetToken installs a persisted
// session from a previous run. Access is mutex-guarded so a background
// poller and the UI can share one client.
//
// # Field translation
//
// Schedule updates accept the presentation vocabulary (start_time,
// end_time, title, description) and translate it to the backend's schema:
// start_time/end_time become starts_at/ends_at, and title/description are
// dropped because schedule entities do not carry them. This is a deliberate
// schema-adapter responsibility of the client, not the caller.
//
// # Streaming
//
// StreamChat returns a ChatStream consumed in bufio.Scanner style. The body
// is a sequence of event-tagged text lines:
//
//	event: ai_response
//	data: {"ai_response":"Here is your plan..."}
//
//	event: complete
//	data: {"ai_response":"Here is your plan...","session_id":"abc"}
//
//	data: [DONE]
//
// The consumer yields the answer exactly once per stream (first wins, with
// the complete event as a fallback), yields session identifiers whenever a
// payload carries one, skips malformed data lines, and treats [DONE] as a
// clean end. The duplicate-answer suppression mirrors the current backend's
// habit of re-sending the final answer on the complete event; it is a
// compatibility rule of this client, not a protocol guarantee.
//
// # Network assumptions
//
// Requests carry a 10 second client timeout except streaming (long-lived by
// design, cancelled via context) and the health check (3 seconds, errors
// swallowed to false). There are no retries and no deduplication: a retried
// mutation duplicates server-side effects unless the backend is idempotent.
package plandy
