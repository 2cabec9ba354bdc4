package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/grifflux/pennywatch/internal/rank"
)

// FileStore writes the latest leaderboard to a single JSON file, replaced
// wholesale each run. The no-database default.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the leaderboard at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveLeaderboard replaces the file with this run's leaderboard.
func (s *FileStore) SaveLeaderboard(_ context.Context, lb rank.Leaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(lb, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create leaderboard dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write leaderboard temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace leaderboard file: %w", err)
	}
	return nil
}

// LatestLeaderboard reads the stored leaderboard, or nil when absent.
func (s *FileStore) LatestLeaderboard(_ context.Context) (*rank.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard file: %w", err)
	}
	var lb rank.Leaderboard
	if err := json.Unmarshal(raw, &lb); err != nil {
		return nil, fmt.Errorf("decode leaderboard file: %w", err)
	}
	return &lb, nil
}
