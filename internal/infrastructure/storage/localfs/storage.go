package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Save streams data to a temp file and renames it into place, so a
// failed upload never leaves a complete-looking object behind. The
// byte count lets callers detect empty uploads without buffering.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	final := s.pathFor(key)

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return written, fmt.Errorf("write upload: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return written, fmt.Errorf("finalize upload: %w", err)
	}
	return written, nil
}

// Delete removes a stored object. Deleting a missing object is not an
// error.
func (s *Storage) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.pathFor(key))
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// pathFor flattens the key to its base name so callers cannot escape
// the storage directory.
func (s *Storage) pathFor(key string) string {
	return filepath.Join(s.basePath, filepath.Base(key))
}
