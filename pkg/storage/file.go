package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

// DumpFileName is the file FileStore writes in its directory.
const DumpFileName = "dump"

// FileStore keeps the dump in a single file that every Write recreates.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing dir/dump. dir is created if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StatusError{Op: "open", Path: dir, Err: err}
	}
	return &FileStore{path: filepath.Join(dir, DumpFileName)}, nil
}

// Path returns the dump file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Write(p []byte) error {
	if err := os.WriteFile(s.path, p, 0o644); err != nil {
		return &StatusError{Op: "write", Path: s.path, Err: err}
	}
	logger.Logf("store", "wrote %d bytes to %s", len(p), s.path)
	return nil
}

func (s *FileStore) Read(p []byte) (int, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, &StatusError{Op: "read", Path: s.path, Err: ErrEmpty}
	}
	if err != nil {
		return 0, &StatusError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	n, err := io.ReadFull(f, p)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, &StatusError{Op: "read", Path: s.path, Err: err}
	}
	logger.Logf("store", "read %d bytes from %s", n, s.path)
	return n, nil
}

func (s *FileStore) Close() error {
	return nil
}
