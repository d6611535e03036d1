// Package localfs keeps downloaded hotel images on the local file system.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Store struct{ dir string }

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("localfs: images dir must be set")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes data to <dir>/<name>, replacing any existing file.
func (s *Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("localfs: invalid file name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("localfs: create %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("localfs: write %s: %w", path, err)
	}
	return path, nil
}
