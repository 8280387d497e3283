package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/plandy-app/flandy/internal/plandy"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	tasks := []plandy.Task{{ID: 1, Title: "write report"}, {ID: 2, Title: "review PR"}}
	today := []plandy.ScheduleBlock{{ID: 10, Title: "standup"}}

	before := time.Now()
	s.Update(tasks, today, nil, true, nil)

	snap := s.Snapshot()
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != 1 {
		t.Fatalf("snapshot tasks = %#v, want 2 tasks", snap.Tasks)
	}
	if len(snap.Today) != 1 || snap.Today[0].ID != 10 {
		t.Fatalf("snapshot today = %#v, want 1 block", snap.Today)
	}
	if !snap.Healthy {
		t.Fatalf("Healthy = false, want true")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Tasks[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Tasks[0].ID != 1 {
		t.Fatalf("Snapshot should clone tasks; got id %d want 1", snap2.Tasks[0].ID)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]plandy.Task{{ID: 1}}, nil, nil, true, nil)

	origErr := errors.New("boom")
	s.Update(nil, nil, nil, false, origErr)

	snap := s.Snapshot()
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 1 {
		t.Fatalf("tasks changed on error: got %#v", snap.Tasks)
	}
	if snap.Healthy {
		t.Fatalf("Healthy = true, want false after failed poll")
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(nil, nil, nil, false, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v, want 1/false", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, nil, nil, false, errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, nil, nil, true, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v, want 0/false", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_SessionLifecycle(t *testing.T) {
	var s Store

	if s.Session().Authenticated() {
		t.Fatal("Authenticated() = true, want false before login")
	}

	user := &plandy.User{ID: 1, Name: "Dana", Email: "dana@plandy.app"}
	s.SetSession("tok", user)

	sess := s.Session()
	if !sess.Authenticated() || sess.Token != "tok" {
		t.Fatalf("session = %#v, want token tok", sess)
	}
	if sess.User == nil || sess.User.Name != "Dana" {
		t.Fatalf("session user = %#v, want Dana", sess.User)
	}

	// Returned session should be independent of the stored one.
	sess.User.Name = "Eve"
	if s.Session().User.Name != "Dana" {
		t.Fatalf("Session should clone user; got %q want Dana", s.Session().User.Name)
	}

	s.Update([]plandy.Task{{ID: 1}}, nil, nil, true, nil)
	s.ClearSession()

	if s.Session().Authenticated() {
		t.Fatal("Authenticated() = true, want false after ClearSession")
	}
	if snap := s.Snapshot(); len(snap.Tasks) != 0 {
		t.Fatalf("snapshot tasks = %#v, want cleared with session", snap.Tasks)
	}
}
