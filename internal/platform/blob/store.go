// Package blob stores captured page content as one file per page path.
package blob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/spf13/afero"
)

const tmpSuffix = ".tmp"

// Store implements store.BlobStore on an afero filesystem rooted at dir.
type Store struct {
	fs  afero.Fs
	dir string
}

var _ store.BlobStore = (*Store)(nil)

// NewStore creates a Store writing under dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// NewOsStore creates a Store on the operating system filesystem.
func NewOsStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

// Dir returns the directory holding the blobs.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid blob name %q", store.ErrInvalidEntity, name)
	}
	return filepath.Join(s.dir, name), nil
}

// GetFile returns the content stored under name, or nil if it does not exist.
func (s *Store) GetFile(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	return data, nil
}

// SaveFile writes content to a temporary file and renames it over name, so
// readers never observe a partial blob.
func (s *Store) SaveFile(name string, content []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory %s: %w", s.dir, err)
	}

	tmp := path + tmpSuffix
	if err := afero.WriteFile(s.fs, tmp, content, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write blob %s: %w", name, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to commit blob %s: %w", name, err)
	}
	return nil
}

// RemoveFile deletes the blob stored under name. A missing blob is not an
// error.
func (s *Store) RemoveFile(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob %s: %w", name, err)
	}
	return nil
}
