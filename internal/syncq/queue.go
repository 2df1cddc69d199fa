// Package syncq keeps mutations the CLI could not deliver so they can be
// replayed later in order.
package syncq

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Command struct {
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	Body           map[string]any `json:"body,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// Queue is a JSON file of pending commands.
type Queue struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Queue {
	return &Queue{path: path}
}

func (q *Queue) Path() string {
	return q.path
}

func (q *Queue) Load() ([]Command, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadLocked()
}

func (q *Queue) loadLocked() ([]Command, error) {
	raw, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse queue %s: %w", q.path, err)
	}
	return out, nil
}

func (q *Queue) Save(commands []Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.saveLocked(commands)
}

func (q *Queue) saveLocked(commands []Command) error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o700); err != nil {
		return err
	}
	if commands == nil {
		commands = []Command{}
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(q.path, raw, 0o600)
}

func (q *Queue) Push(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	commands, err := q.loadLocked()
	if err != nil {
		return err
	}
	return q.saveLocked(append(commands, cmd))
}

// ErrRejected marks a send failure that retrying cannot fix. Replay drops
// such commands instead of keeping them queued.
var ErrRejected = errors.New("command rejected")

// Report summarizes one Replay.
type Report struct {
	Sent    int
	Dropped []error
	Kept    []error
}

// Replay sends every queued command through send in order. Commands whose
// error wraps ErrRejected are dropped, other failures stay queued, and the
// rest are removed as sent.
func (q *Queue) Replay(send func(Command) error) (Report, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var report Report
	commands, err := q.loadLocked()
	if err != nil {
		return report, err
	}
	remaining := make([]Command, 0, len(commands))
	for _, c := range commands {
		sendErr := send(c)
		switch {
		case sendErr == nil:
			report.Sent++
		case errors.Is(sendErr, ErrRejected):
			report.Dropped = append(report.Dropped, fmt.Errorf("%s %s: %w", c.Method, c.Path, sendErr))
		default:
			remaining = append(remaining, c)
			report.Kept = append(report.Kept, fmt.Errorf("%s %s: %w", c.Method, c.Path, sendErr))
		}
	}
	return report, q.saveLocked(remaining)
}
