package plandy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingServer captures the method, path, and JSON body of each request
// and answers with a canned envelope.
func recordingServer(t *testing.T, reply string) (*Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.body = nil
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c, rec
}

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func TestCreateTeam_Request(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true,"data":{"id":3,"name":"platform"}}`)

	team, err := c.CreateTeam(context.Background(), "platform", "infra work")
	if err != nil {
		t.Fatalf("CreateTeam returned error: %v", err)
	}
	if team.ID != 3 || team.Name != "platform" {
		t.Fatalf("team = %+v, want ID 3 named platform", team)
	}

	if rec.method != http.MethodPost || rec.path != "/teams" {
		t.Fatalf("request = %s %s, want POST /teams", rec.method, rec.path)
	}
	if rec.body["name"] != "platform" || rec.body["description"] != "infra work" {
		t.Fatalf("body = %#v, want name and description", rec.body)
	}
}

func TestJoinTeam_SendsInviteCode(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true,"data":{"id":9,"name":"design"}}`)

	team, err := c.JoinTeam(context.Background(), "WELCOME1")
	if err != nil {
		t.Fatalf("JoinTeam returned error: %v", err)
	}
	if team.Name != "design" {
		t.Fatalf("team = %+v, want design", team)
	}

	if rec.method != http.MethodPost || rec.path != "/teams/join" {
		t.Fatalf("request = %s %s, want POST /teams/join", rec.method, rec.path)
	}
	if rec.body["invite_code"] != "WELCOME1" {
		t.Fatalf("body = %#v, want invite_code", rec.body)
	}
}

func TestLeaveTeam_Path(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true}`)

	if err := c.LeaveTeam(context.Background(), 5); err != nil {
		t.Fatalf("LeaveTeam returned error: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/teams/5/leave" {
		t.Fatalf("request = %s %s, want POST /teams/5/leave", rec.method, rec.path)
	}
}

func TestUpdateMemberRole_Request(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true}`)

	if err := c.UpdateMemberRole(context.Background(), 5, 12, "admin"); err != nil {
		t.Fatalf("UpdateMemberRole returned error: %v", err)
	}
	if rec.method != http.MethodPut || rec.path != "/teams/5/members/12" {
		t.Fatalf("request = %s %s, want PUT /teams/5/members/12", rec.method, rec.path)
	}
	if rec.body["role"] != "admin" {
		t.Fatalf("body = %#v, want role admin", rec.body)
	}
}

func TestRemoveMember_Path(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true}`)

	if err := c.RemoveMember(context.Background(), 5, 12); err != nil {
		t.Fatalf("RemoveMember returned error: %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/teams/5/members/12" {
		t.Fatalf("request = %s %s, want DELETE /teams/5/members/12", rec.method, rec.path)
	}
}

func TestCreateSprint_Request(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true,"data":{"id":7,"name":"Sprint 1","status":"planning"}}`)

	sprint, err := c.CreateSprint(context.Background(), 5, NewSprint{
		Name:      "Sprint 1",
		Goal:      "ship onboarding",
		StartDate: "2026-09-01",
		EndDate:   "2026-09-15",
	})
	if err != nil {
		t.Fatalf("CreateSprint returned error: %v", err)
	}
	if sprint.ID != 7 {
		t.Fatalf("sprint = %+v, want ID 7", sprint)
	}

	if rec.method != http.MethodPost || rec.path != "/teams/5/sprints" {
		t.Fatalf("request = %s %s, want POST /teams/5/sprints", rec.method, rec.path)
	}
	if rec.body["name"] != "Sprint 1" || rec.body["goal"] != "ship onboarding" {
		t.Fatalf("body = %#v, want name and goal", rec.body)
	}
	if rec.body["start_date"] != "2026-09-01" || rec.body["end_date"] != "2026-09-15" {
		t.Fatalf("body = %#v, want start_date and end_date", rec.body)
	}
}

func TestSprintLifecycle_Paths(t *testing.T) {
	t.Parallel()

	c, rec := recordingServer(t, `{"success":true}`)

	if err := c.ActivateSprint(context.Background(), 7); err != nil {
		t.Fatalf("ActivateSprint returned error: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/sprints/7/activate" {
		t.Fatalf("request = %s %s, want POST /sprints/7/activate", rec.method, rec.path)
	}

	if err := c.CompleteSprint(context.Background(), 7); err != nil {
		t.Fatalf("CompleteSprint returned error: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/sprints/7/complete" {
		t.Fatalf("request = %s %s, want POST /sprints/7/complete", rec.method, rec.path)
	}
}
