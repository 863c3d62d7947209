package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// File persists blobs as plain files under a base directory; the locator is
// the filename. Writes go through write-temp-then-rename, so a crash mid-save
// never leaves a torn blob behind.
type File struct {
	dir string
}

var _ Store = (*File)(nil)

// NewFile creates a file store rooted at dir. The directory itself is created
// lazily by EnsureContainer, not here.
func NewFile(dir string) *File { return &File{dir: dir} }

func (s *File) path(locator string) string { return filepath.Join(s.dir, locator) }

func (s *File) Read(_ context.Context, locator string) ([]byte, error) {
	b, err := os.ReadFile(s.path(locator))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %q: %w", locator, err)
	}
	return b, nil
}

func (s *File) Write(_ context.Context, locator string, data []byte) error {
	if err := atomic.WriteFile(s.path(locator), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store: write %q: %w", locator, err)
	}
	return nil
}

func (s *File) EnsureContainer(_ context.Context, locator string) error {
	if err := os.MkdirAll(filepath.Dir(s.path(locator)), 0o755); err != nil {
		return fmt.Errorf("store: ensure dir for %q: %w", locator, err)
	}
	return nil
}

func (s *File) Close(_ context.Context) error { return nil }
