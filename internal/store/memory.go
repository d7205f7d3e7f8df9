package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu          sync.RWMutex
	seen        map[string]struct{}
	checkpoints map[string]time.Time
	closed      bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		seen:        make(map[string]struct{}),
		checkpoints: make(map[string]time.Time),
	}
}

func (m *Memory) HasSeen(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ErrClosed
	}
	_, ok := m.seen[id]
	return ok, nil
}

func (m *Memory) MarkSeen(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.seen[id] = struct{}{}
	return nil
}

func (m *Memory) LastChecked(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return time.Time{}, false, ErrClosed
	}
	t, ok := m.checkpoints[key]
	return t, ok, nil
}

func (m *Memory) SetLastChecked(_ context.Context, key string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.checkpoints[key] = t
	return nil
}

// Len returns the number of seen IDs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
