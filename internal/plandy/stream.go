package plandy

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ChatDelta is one increment yielded by a chat stream. Exactly one field is
// set per delta: either a piece of answer text or a session identifier the
// caller should carry into the next message.
type ChatDelta struct {
	AIResponse string
	SessionID  string
}

// ChatStream consumes the event-tagged chat response line by line, in the
// style of bufio.Scanner:
//
//	stream, err := client.StreamChat(ctx, "plan my day", nil, "")
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//	    delta := stream.Delta()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Each Next call is a suspension point: the caller may render between
// increments and resume whenever it likes. Stopping early is done by
// Close, which tears down the underlying connection.
type ChatStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	// Parser state. currentEvent holds the event name from the most recent
	// "event:" line and applies to data lines until the next one. A single
	// data line can produce more than one delta (answer plus session id),
	// so surplus deltas wait in pending until the caller asks again.
	currentEvent  string
	pending       []ChatDelta
	delta         ChatDelta
	emittedAnswer bool

	done bool
	err  error
}

// streamPayload is the JSON shape carried by data lines. Pointers mark key
// presence: an absent key and an empty value are different things here.
type streamPayload struct {
	AIResponse *string `json:"ai_response"`
	SessionID  *string `json:"session_id"`
}

// StreamChat sends a chat message in stream mode and returns a consumer for
// the incremental response. A non-2xx initial status is mapped through the
// same error taxonomy as every other call; no increments are yielded then.
func (c *Client) StreamChat(ctx context.Context, message string, chatCtx *ChatContext, sessionID string) (*ChatStream, error) {
	body := chatRequest{Message: message, Context: chatCtx, SessionID: sessionID, Stream: true}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/ai/chat", nil), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, c.decodeResponse(resp, nil)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ChatStream{body: resp.Body, scanner: scanner}, nil
}

// Next advances to the next increment. It returns false when the stream is
// exhausted, the [DONE] sentinel arrives, or transport fails mid-stream;
// check Err afterwards to tell the last case apart.
func (s *ChatStream) Next() bool {
	if len(s.pending) > 0 {
		s.delta = s.pending[0]
		s.pending = s.pending[1:]
		return true
	}
	if s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case strings.TrimSpace(line) == "":
			// Frame separator. The current event name deliberately
			// survives it: the backend splits one logical event across
			// several data lines.
			continue

		case strings.HasPrefix(line, "event:"):
			s.currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

		case strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
			// Recognized but carry no semantics for this protocol.
			continue

		case strings.HasPrefix(line, "data:"):
			raw := strings.TrimPrefix(line, "data:")
			raw = strings.TrimPrefix(raw, " ")
			if raw == "[DONE]" {
				s.done = true
				return false
			}
			if s.handleData(raw) {
				s.delta = s.pending[0]
				s.pending = s.pending[1:]
				return true
			}
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("read stream: %w", err)
	}
	return false
}

// handleData parses one data payload and queues the deltas it produces.
// Returns true when at least one delta is ready.
func (s *ChatStream) handleData(raw string) bool {
	var payload streamPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// Malformed payloads are skipped, not fatal.
		return false
	}

	switch s.currentEvent {
	case "ai_response":
		// The backend sometimes re-sends the answer on the final chunk;
		// only the first one counts.
		if payload.AIResponse != nil && !s.emittedAnswer {
			s.pending = append(s.pending, ChatDelta{AIResponse: *payload.AIResponse})
			s.emittedAnswer = true
		}
	case "complete":
		// Fallback for streams where no ai_response event ever carried
		// the answer.
		if !s.emittedAnswer && payload.AIResponse != nil && *payload.AIResponse != "" {
			s.pending = append(s.pending, ChatDelta{AIResponse: *payload.AIResponse})
			s.emittedAnswer = true
		}
	}

	// Session identifiers ride along on any event. Presence of the key is
	// what counts, not the value.
	if payload.SessionID != nil {
		s.pending = append(s.pending, ChatDelta{SessionID: *payload.SessionID})
	}

	return len(s.pending) > 0
}

// Delta returns the increment produced by the last successful Next call.
func (s *ChatStream) Delta() ChatDelta {
	return s.delta
}

// Err returns the first transport error hit mid-stream, or nil on a clean
// end (including the [DONE] sentinel).
func (s *ChatStream) Err() error {
	return s.err
}

// Close releases the underlying connection. Safe to call more than once.
func (s *ChatStream) Close() error {
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}
