// Package transcript persists the AI chat history between runs.
//
// Messages append to a JSON-lines file under the user's data directory
// (~/.local/share/flandy/chat.jsonl by default). On startup the UI reloads
// the tail of the file so a restart does not lose the conversation. Lines
// that fail to parse are skipped: a torn write from a crash must not make
// the whole history unreadable.
package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Message is one chat transcript entry.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

const defaultPath = "~/.local/share/flandy/chat.jsonl"

// DefaultPath returns the default transcript file path.
func DefaultPath() string {
	return defaultPath
}

// Append writes one message to the end of the transcript file, creating
// the file and its directory as needed.
func Append(path string, msg Message) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve transcript path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Load returns at most maxMessages from the end of the transcript file.
// A missing file yields no messages and no error.
func Load(path string, maxMessages int) ([]Message, error) {
	if maxMessages <= 0 {
		return nil, nil
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve transcript path: %w", err)
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	ring := make([]Message, maxMessages)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			continue
		}
		ring[idx] = msg
		idx = (idx + 1) % maxMessages
		if count < maxMessages {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	messages := make([]Message, count)
	if count == maxMessages {
		for i := 0; i < count; i++ {
			messages[i] = ring[(idx+i)%maxMessages]
		}
	} else {
		copy(messages, ring[:count])
	}
	return messages, nil
}

// Clear truncates the transcript file. A missing file is fine.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve transcript path: %w", err)
	}
	err = os.Truncate(resolved, 0)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
