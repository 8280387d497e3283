package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	messages, err := Load(path, 10)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if len(messages) != 0 {
		t.Fatalf("len(messages) = %d, want 0", len(messages))
	}
}

func TestAppendLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	now := time.Now().UTC().Truncate(time.Second)

	want := []Message{
		{Role: "user", Content: "what's on my plate today?", Time: now},
		{Role: "assistant", Content: "Three tasks and a standup.", Time: now.Add(time.Second)},
	}
	for _, msg := range want {
		if err := Append(path, msg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := Load(path, 10)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].Content != want[i].Content {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].Time.Equal(want[i].Time) {
			t.Errorf("message %d time = %v, want %v", i, got[i].Time, want[i].Time)
		}
	}
}

func TestLoadKeepsTail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	contents := []string{"one", "two", "three", "four", "five"}
	for _, content := range contents {
		if err := Append(path, Message{Role: "user", Content: content}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := Load(path, 3)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"three", "four", "five"}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Content != want[i] {
			t.Errorf("message %d content = %q, want %q", i, got[i].Content, want[i])
		}
	}
}

func TestLoadSkipsCorruptLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	data := `{"role":"user","content":"hello"}
not json at all
{"role":"assistant","content":"hi there"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := Load(path, 10)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Content != "hello" || got[1].Content != "hi there" {
		t.Fatalf("got = %+v, want hello/hi there", got)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	if err := Append(path, Message{Role: "user", Content: "bye"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := Clear(path); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, err := Load(path, 10)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(got) = %d after Clear, want 0", len(got))
	}
}

func TestClearMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat.jsonl")
	if err := Clear(path); err != nil {
		t.Fatalf("Clear() on missing file error = %v, want nil", err)
	}
}
