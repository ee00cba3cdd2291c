package syncer

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/khoj-ai/khoj-sync/internal/client/config"
)

// SyncState is the durable record of what the server is believed to hold: a
// JSON object mapping each slash-normalized relative path to the RFC3339
// time of its last confirmed upload (with fractional seconds), or "never".
//
// The store is the sole writer of its artifact. A companion flock guards
// against a second khoj-sync process pointed at the same directory.
type SyncState struct {
	path    string
	lock    *flock.Flock
	entries map[string]string
}

// OpenState loads the state artifact at path, taking the writer lock. A
// missing artifact means nothing was ever synced; a corrupt one is treated
// the same way, since the worst outcome of empty state is re-uploading.
func OpenState(path string) (*SyncState, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock state file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("state file %s is locked by another khoj-sync process", path)
	}

	s := &SyncState{
		path:    path,
		lock:    lock,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, nil
	}
	if err := jsonUnmarshal(data, &s.entries); err != nil {
		slog.Warn("state file unreadable, starting from empty", "path", path, "error", err)
		s.entries = make(map[string]string)
	}
	return s, nil
}

// Close releases the writer lock. It does not save.
func (s *SyncState) Close() error {
	return s.lock.Unlock()
}

// Save writes the full state artifact. The engine calls this after every
// batch exchange, so a crash loses at most one in-flight batch's progress.
func (s *SyncState) Save() error {
	data, err := jsonMarshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Get returns the raw recorded value for a path, "never" when absent.
func (s *SyncState) Get(path string) string {
	if v, ok := s.entries[path]; ok && v != "" {
		return v
	}
	return config.NeverSynced
}

// LastSync returns the recorded last-sync time for a path. ok is false when
// the path was never confirmed on the server.
func (s *SyncState) LastSync(path string) (time.Time, bool) {
	v := s.Get(path)
	if v == config.NeverSynced {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		slog.Warn("unparsable timestamp in state, treating as never synced", "path", path, "value", v)
		return time.Time{}, false
	}
	return t, true
}

// Set records a confirmed upload time. Full precision is kept: the recorded
// time is compared against file mtimes, and truncating to seconds would make
// a file written in the same second look modified again.
func (s *SyncState) Set(path string, t time.Time) {
	s.entries[path] = t.Format(time.RFC3339Nano)
}

func (s *SyncState) Remove(path string) {
	delete(s.entries, path)
}

func (s *SyncState) Has(path string) bool {
	_, ok := s.entries[path]
	return ok
}

// Paths returns every recorded path, sorted for deterministic iteration.
func (s *SyncState) Paths() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *SyncState) Len() int {
	return len(s.entries)
}
