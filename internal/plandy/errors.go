package plandy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnavailable indicates the backend could not be reached at all: the
// request failed before any HTTP response arrived.
var ErrUnavailable = errors.New("plandy backend unreachable")

// ErrSessionExpired indicates the backend rejected the bearer token. The
// client clears its stored token before returning this, so the caller only
// needs to drop its own cached identity and re-authenticate.
var ErrSessionExpired = errors.New("session expired")

// ErrRequestFailed indicates a well-formed response whose envelope carried
// success=false without field-level validation errors.
var ErrRequestFailed = errors.New("request failed")

// ValidationError carries the field→messages map from a 422 response.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages returns one formatted message per field, sorted by field name.
// Each entry is suitable for direct display as a user-facing notice.
func (e *ValidationError) Messages() []string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, field := range names {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], ", ")))
	}
	return msgs
}

// StatusError carries a non-2xx status that is neither a 401 nor a 422,
// along with the raw response text.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, truncateBody(body))
}

func truncateBody(body string) string {
	const limit = 200
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
