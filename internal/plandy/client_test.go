package plandy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIBase {
		t.Fatalf("base = %q, want %q", u.String(), defaultAPIBase)
	}

	u, err = parseBaseURL("example.com:8000/api")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:8000" || u.Path != "/api" {
		t.Fatalf("base not normalized: %q", u.String())
	}

	u, err = parseBaseURL("https://example.com/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("base not normalized: %q", u.String())
	}
}

func TestClient_HeadersAndEnvelopeDecode(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAccept, gotContentType, gotRequestID, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":7,"title":"write report","status":"pending","priority":"high"}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetToken("tok-123")

	tasks, err := c.ListTasks(context.Background(), TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 7 || tasks[0].Title != "write report" {
		t.Fatalf("ListTasks = %#v, want the payload passed through", tasks)
	}

	if gotPath != "/api/tasks" {
		t.Fatalf("path = %q, want /api/tasks", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotAccept != "application/json" || gotContentType != "application/json" {
		t.Fatalf("Accept/Content-Type = %q/%q, want application/json", gotAccept, gotContentType)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID not set")
	}
}

func TestClient_TaskFilterQueryEncoding(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.ListTasks(context.Background(), TaskFilter{Status: "pending", Priority: "high", Date: "2026-09-01"}); err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	for _, want := range []string{"status=pending", "priority=high", "date=2026-09-01"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query = %q, want it to contain %q", gotQuery, want)
		}
	}
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
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

	_, err = c.ListTeams(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("ListTeams error = %v, want ErrSessionExpired", err)
	}
	if c.Token() != "" {
		t.Fatalf("token = %q, want cleared after 401", c.Token())
	}
}

func TestClient_ValidationErrorFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"errors":{"email":["taken"]}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, _, err = c.Register(context.Background(), "a@b.c", "pw", "", "A")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Register error = %v, want *ValidationError", err)
	}
	msgs := vErr.Messages()
	if len(msgs) != 1 || msgs[0] != "email: taken" {
		t.Fatalf("Messages() = %v, want exactly [email: taken]", msgs)
	}
}

func TestClient_StatusErrorCarriesCodeAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "spilled", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.DeleteTask(context.Background(), 9)
	var sErr *StatusError
	if !errors.As(err, &sErr) {
		t.Fatalf("DeleteTask error = %v, want *StatusError", err)
	}
	if sErr.Code != http.StatusInternalServerError || !strings.Contains(sErr.Body, "spilled") {
		t.Fatalf("StatusError = %#v, want code 500 with body", sErr)
	}
}

func TestClient_EnvelopeFailureWithoutErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"sprint already active"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = c.ActivateSprint(context.Background(), 3)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("ActivateSprint error = %v, want ErrRequestFailed", err)
	}
	if !strings.Contains(err.Error(), "sprint already active") {
		t.Fatalf("error = %v, want the envelope message carried through", err)
	}
}

func TestClient_UnreachableBackend(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.ListTasks(context.Background(), TaskFilter{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ListTasks error = %v, want ErrUnavailable", err)
	}
}

func TestClient_LoginStoresAndReturnsToken(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"fresh-token","user":{"id":1,"name":"Dana","email":"dana@plandy.app"}}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	token, user, err := c.Login(context.Background(), "dana@plandy.app", "hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "fresh-token" || c.Token() != "fresh-token" {
		t.Fatalf("token = %q, stored = %q, want fresh-token for both", token, c.Token())
	}
	if user == nil || user.Name != "Dana" {
		t.Fatalf("user = %#v, want Dana", user)
	}
	if gotBody["email"] != "dana@plandy.app" || gotBody["password"] != "hunter2" {
		t.Fatalf("login body = %v, want email and password", gotBody)
	}
}

func TestClient_RegisterDefaultsConfirmation(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"t"}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, _, err := c.Register(context.Background(), "a@b.c", "pw", "", "A"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if gotBody["password_confirmation"] != "pw" {
		t.Fatalf("password_confirmation = %q, want defaulted to password", gotBody["password_confirmation"])
	}
}

func TestClient_LogoutClearsTokenEvenOnFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetToken("live")

	if err := c.Logout(context.Background()); err == nil {
		t.Fatalf("Logout error = nil, want the backend failure surfaced")
	}
	if c.Token() != "" {
		t.Fatalf("token = %q, want cleared after logout", c.Token())
	}
}

func TestClient_HealthCheck(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if !c.Health(context.Background()) {
		t.Fatalf("Health = false, want true for 200")
	}

	// A refused connection must swallow into false, never raise.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := dead.URL
	dead.Close()

	c2, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c2.Health(context.Background()) {
		t.Fatalf("Health = true, want false for refused connection")
	}
}

func TestClient_NullDataLeavesDestZero(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":null}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	scores, err := c.ListWorkLifeScores(context.Background())
	if err != nil {
		t.Fatalf("ListWorkLifeScores returned error: %v", err)
	}
	if scores != nil {
		t.Fatalf("scores = %#v, want nil for null data", scores)
	}
}
