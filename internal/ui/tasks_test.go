package ui

import (
	"testing"

	"github.com/plandy-app/flandy/internal/plandy"
)

func TestFilterTasks(t *testing.T) {
	tasks := []plandy.Task{
		{ID: 1, Status: "pending"},
		{ID: 2, Status: "in_progress"},
		{ID: 3, Status: "completed"},
		{ID: 4, Status: "Pending"}, // status match is case-insensitive
	}

	if got := filterTasks(tasks, TaskFilterAll); len(got) != 4 {
		t.Fatalf("TaskFilterAll kept %d tasks, want 4", len(got))
	}

	pending := filterTasks(tasks, TaskFilterPending)
	if len(pending) != 2 || pending[0].ID != 1 || pending[1].ID != 4 {
		t.Fatalf("TaskFilterPending = %v, want IDs 1 and 4", pending)
	}

	active := filterTasks(tasks, TaskFilterInProgress)
	if len(active) != 1 || active[0].ID != 2 {
		t.Fatalf("TaskFilterInProgress = %v, want ID 2", active)
	}

	done := filterTasks(tasks, TaskFilterCompleted)
	if len(done) != 1 || done[0].ID != 3 {
		t.Fatalf("TaskFilterCompleted = %v, want ID 3", done)
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []plandy.Task{
		{ID: 1, Status: "completed", Priority: "urgent"},
		{ID: 2, Status: "pending", Priority: "low"},
		{ID: 3, Status: "in_progress", Priority: "medium"},
		{ID: 4, Status: "pending", Priority: "urgent"},
		{ID: 5, Status: "in_progress", Priority: "high"},
	}

	got := sortTasks(tasks)
	wantOrder := []int64{5, 3, 4, 2, 1} // active first, then priority
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("sortTasks position %d = ID %d, want %d (full order %v)", i, got[i].ID, want, ids(got))
		}
	}

	// Input must not be reordered in place
	if tasks[0].ID != 1 {
		t.Fatal("sortTasks mutated its input")
	}
}

func TestSortTasksDeadlinesBeforeUndated(t *testing.T) {
	tasks := []plandy.Task{
		{ID: 1, Status: "pending", Priority: "medium"},
		{ID: 2, Status: "pending", Priority: "medium", Deadline: "2026-09-10"},
		{ID: 3, Status: "pending", Priority: "medium", Deadline: "2026-09-03"},
	}

	got := sortTasks(tasks)
	wantOrder := []int64{3, 2, 1} // earliest deadline first, undated last
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("sortTasks position %d = ID %d, want %d (full order %v)", i, got[i].ID, want, ids(got))
		}
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pending", "in_progress"},
		{"in_progress", "completed"},
		{"completed", "pending"},
		{"  Pending ", "in_progress"},
		{"weird", "pending"},
	}
	for _, tt := range tests {
		if got := nextStatus(tt.in); got != tt.want {
			t.Errorf("nextStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusRankOrdering(t *testing.T) {
	if !(statusRank("in_progress") < statusRank("pending") && statusRank("pending") < statusRank("completed")) {
		t.Fatal("statusRank does not order in_progress < pending < completed")
	}
}

func TestPriorityRankOrdering(t *testing.T) {
	order := []string{"urgent", "high", "medium", "low"}
	for i := 1; i < len(order); i++ {
		if priorityRank(order[i-1]) >= priorityRank(order[i]) {
			t.Fatalf("priorityRank(%s) should sort before %s", order[i-1], order[i])
		}
	}
}

func ids(tasks []plandy.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
