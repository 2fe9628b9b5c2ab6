package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/repo"
)

var _ repo.UptimeStore = (*Store)(nil)

// Store keeps counters in a single JSON document:
//
//	{"web": {"up": 10, "total": 12}, "app": {"up": 12, "total": 12}}
//
// The file is rewritten in full on every Save.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (map[string]domain.UptimeCounter, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.UptimeCounter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read uptime file: %w", err)
	}
	out := map[string]domain.UptimeCounter{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse uptime file %s: %w", s.path, err)
	}
	return out, nil
}

// Save writes to a temporary sibling and renames it over the target, so a
// crash mid-write leaves the previous file intact.
func (s *Store) Save(ctx context.Context, counters map[string]domain.UptimeCounter) error {
	raw, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return fmt.Errorf("encode uptime: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uptime dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp uptime file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write uptime file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close uptime file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace uptime file: %w", err)
	}
	return nil
}
