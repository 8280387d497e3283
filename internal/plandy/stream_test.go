package plandy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func streamServer(t *testing.T, body string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func collect(t *testing.T, s *ChatStream) []ChatDelta {
	t.Helper()
	defer func() { _ = s.Close() }()

	var deltas []ChatDelta
	for s.Next() {
		deltas = append(deltas, s.Delta())
	}
	return deltas
}

func TestChatStream_AnswerThenSessionID(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: ai_response\n"+
		"data: {\"ai_response\":\"Hi\"}\n"+
		"\n"+
		"event: complete\n"+
		"data: {\"ai_response\":\"Hi\",\"session_id\":\"abc\"}\n"+
		"\n"+
		"data: [DONE]\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	want := []ChatDelta{{AIResponse: "Hi"}, {SessionID: "abc"}}
	if len(deltas) != len(want) {
		t.Fatalf("deltas = %#v, want %#v", deltas, want)
	}
	for i := range want {
		if deltas[i] != want[i] {
			t.Fatalf("delta[%d] = %#v, want %#v", i, deltas[i], want[i])
		}
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil after [DONE]", err)
	}
}

func TestChatStream_CompleteFallbackWhenNoAnswerEvent(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: complete\n"+
		"data: {\"ai_response\":\"Fallback answer\",\"session_id\":\"s1\"}\n"+
		"\n"+
		"data: [DONE]\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	if len(deltas) != 2 || deltas[0].AIResponse != "Fallback answer" || deltas[1].SessionID != "s1" {
		t.Fatalf("deltas = %#v, want fallback answer then session id", deltas)
	}
}

func TestChatStream_CompleteWithEmptyAnswerYieldsNothing(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: complete\n"+
		"data: {\"ai_response\":\"\"}\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	if deltas := collect(t, stream); len(deltas) != 0 {
		t.Fatalf("deltas = %#v, want none for an empty complete answer", deltas)
	}
}

func TestChatStream_MalformedPayloadSkipped(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: ai_response\n"+
		"data: {not json at all\n"+
		"data: {\"ai_response\":\"Recovered\"}\n"+
		"\n"+
		"data: [DONE]\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	if len(deltas) != 1 || deltas[0].AIResponse != "Recovered" {
		t.Fatalf("deltas = %#v, want the malformed line skipped", deltas)
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil; malformed lines are not fatal", err)
	}
}

func TestChatStream_IDAndRetryLinesIgnored(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "id: 17\n"+
		"retry: 3000\n"+
		"event: ai_response\n"+
		"data: {\"ai_response\":\"Hi\"}\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	if len(deltas) != 1 || deltas[0].AIResponse != "Hi" {
		t.Fatalf("deltas = %#v, want id/retry lines to carry no effect", deltas)
	}
}

func TestChatStream_DuplicateAnswerSuppressed(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: ai_response\n"+
		"data: {\"ai_response\":\"First\"}\n"+
		"data: {\"ai_response\":\"Second\"}\n"+
		"\n"+
		"event: ai_response\n"+
		"data: {\"ai_response\":\"Third\"}\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	if len(deltas) != 1 || deltas[0].AIResponse != "First" {
		t.Fatalf("deltas = %#v, want only the first answer", deltas)
	}
}

func TestChatStream_SessionIDRidesAnyEvent(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: status\n"+
		"data: {\"session_id\":\"xyz\"}\n"+
		"\n"+
		"data: [DONE]\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	if len(deltas) != 1 || deltas[0].SessionID != "xyz" {
		t.Fatalf("deltas = %#v, want a session id delta from a status event", deltas)
	}
}

func TestChatStream_EmptySessionIDStillYieldsDelta(t *testing.T) {
	t.Parallel()

	c := streamServer(t, "event: status\n"+
		"data: {\"session_id\":\"\"}\n"+
		"\n"+
		"data: [DONE]\n")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	deltas := collect(t, stream)

	// The key being present is enough; an absent key would yield nothing.
	if len(deltas) != 1 || deltas[0].SessionID != "" || deltas[0].AIResponse != "" {
		t.Fatalf("deltas = %#v, want one empty session id delta", deltas)
	}
}

func TestStreamChat_NonOKStatusYieldsErrorNotChunks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetToken("stale")

	stream, err := c.StreamChat(context.Background(), "hello", nil, "")
	if stream != nil {
		t.Fatalf("stream = %#v, want nil on non-200", stream)
	}
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("StreamChat error = %v, want ErrSessionExpired", err)
	}
	if c.Token() != "" {
		t.Fatalf("token = %q, want cleared by streaming 401 too", c.Token())
	}
}

func TestStreamChat_UnreachableBackend(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.StreamChat(context.Background(), "hello", nil, "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("StreamChat error = %v, want ErrUnavailable", err)
	}
}

func TestStreamChat_SendsStreamFlagAndSession(t *testing.T) {
	t.Parallel()

	done := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		done <- body
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	stream, err := c.StreamChat(context.Background(), "plan my day", nil, "sess-1")
	if err != nil {
		t.Fatalf("StreamChat returned error: %v", err)
	}
	collect(t, stream)

	body := <-done
	if body["message"] != "plan my day" || body["stream"] != true || body["session_id"] != "sess-1" {
		t.Fatalf("request body = %#v, want message, stream flag and session id", body)
	}
}
