package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// snapshot is the on-disk layout of a File store.
type snapshot struct {
	Seen        []string             `json:"seen"`
	Checkpoints map[string]time.Time `json:"checkpoints"`
}

// File is a Store backed by a JSON snapshot. Every change rewrites the
// snapshot through a temp file and rename.
type File struct {
	path string
	mem  *Memory
	mu   sync.Mutex
}

// OpenFile loads the snapshot at path, or starts empty if it does not exist.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("store file path is empty")
	}
	f := &File{path: path, mem: NewMemory()}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return f, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode store file %s: %w", path, err)
	}
	for _, id := range snap.Seen {
		f.mem.seen[id] = struct{}{}
	}
	for k, t := range snap.Checkpoints {
		f.mem.checkpoints[k] = t
	}
	return f, nil
}

func (f *File) HasSeen(ctx context.Context, id string) (bool, error) {
	return f.mem.HasSeen(ctx, id)
}

func (f *File) MarkSeen(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seen, err := f.mem.HasSeen(ctx, id); err != nil || seen {
		return err
	}
	if err := f.mem.MarkSeen(ctx, id); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) LastChecked(ctx context.Context, key string) (time.Time, bool, error) {
	return f.mem.LastChecked(ctx, key)
}

func (f *File) SetLastChecked(ctx context.Context, key string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.SetLastChecked(ctx, key, t); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) Close() error {
	return f.mem.Close()
}

// flush writes the snapshot atomically. Callers hold f.mu.
func (f *File) flush() error {
	f.mem.mu.RLock()
	snap := snapshot{
		Seen:        make([]string, 0, len(f.mem.seen)),
		Checkpoints: make(map[string]time.Time, len(f.mem.checkpoints)),
	}
	for id := range f.mem.seen {
		snap.Seen = append(snap.Seen, id)
	}
	for k, t := range f.mem.checkpoints {
		snap.Checkpoints[k] = t
	}
	f.mem.mu.RUnlock()
	sort.Strings(snap.Seen)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".invitebooker-store-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store snapshot: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set store file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
