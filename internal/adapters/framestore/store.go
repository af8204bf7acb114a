package framestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists captured frames for one process lifetime. It keeps at most
// keepLast frames on disk while the pipeline runs and removes everything it
// wrote on CleanupAll, mirroring the session-scoped screenshot directory the
// automation host expects.
type Store struct {
	mu       sync.Mutex
	dir      string
	keepLast int
	saved    []string
	seq      uint64
}

// New creates dir if needed. keepLast <= 0 disables pruning.
func New(dir string, keepLast int) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("frame dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &Store{dir: dir, keepLast: keepLast}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes one PNG frame and returns its absolute path. Older frames
// beyond keepLast are deleted; a failed delete is ignored, the next prune
// retries it.
func (s *Store) Save(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	name := fmt.Sprintf("frame_%d_%06d.png", time.Now().UnixMilli(), s.seq)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write frame: %w", err)
	}
	s.saved = append(s.saved, path)
	s.pruneLocked()
	return path, nil
}

func (s *Store) pruneLocked() {
	if s.keepLast <= 0 || len(s.saved) <= s.keepLast {
		return
	}
	excess := s.saved[:len(s.saved)-s.keepLast]
	remaining := make([]string, 0, s.keepLast+len(excess))
	for _, p := range excess {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			remaining = append(remaining, p)
		}
	}
	s.saved = append(remaining, s.saved[len(s.saved)-s.keepLast:]...)
}

// Count reports how many saved frames are still tracked on disk.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// CleanupAll removes every frame this store wrote. Called at shutdown.
func (s *Store) CleanupAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, p := range s.saved {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	s.saved = nil
	return firstErr
}
