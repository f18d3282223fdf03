// Package storage persists dump data between scans.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Store keeps the most recent dump. Implementations report failures as
// *StatusError.
type Store interface {
	// Write replaces the stored dump with p.
	Write(p []byte) error
	// Read copies the stored dump into p and returns the number of bytes
	// copied. A stored dump longer than p is truncated.
	Read(p []byte) (int, error)
	Close() error
}

// ErrEmpty is returned by Read when nothing has been written yet.
var ErrEmpty = errors.New("storage: nothing stored")

// StatusError is a failed storage operation.
type StatusError struct {
	Op   string
	Path string
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Kind names a Store implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// ParseKind accepts a Kind name in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFile, KindSQLite:
		return k, nil
	}
	return "", fmt.Errorf("storage: unknown store %q (want file or sqlite)", s)
}

// Open opens the store of the given kind at path. For KindFile path is a
// directory, for KindSQLite a database file.
func Open(kind Kind, path string) (Store, error) {
	switch kind {
	case KindFile:
		return NewFileStore(path)
	case KindSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("storage: unknown store %q", kind)
}
