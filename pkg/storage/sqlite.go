package storage

import (
	"database/sql"
	"errors"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

// Record describes one stored dump.
type Record struct {
	ID        string
	CreatedAt time.Time
	Size      int
}

// SQLiteStore keeps every dump as a row. Read returns the newest one.
type SQLiteStore struct {
	*sql.DB

	path   string
	insert *sql.Stmt
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &StatusError{Op: "open", Path: path, Err: err}
	}
	s := &SQLiteStore{DB: db, path: path}

	if err := s.createTable(); err != nil {
		db.Close()
		return nil, &StatusError{Op: "open", Path: path, Err: err}
	}
	s.insert, err = db.Prepare(`INSERT INTO dumps (id, created_at, size, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, &StatusError{Op: "open", Path: path, Err: err}
	}
	return s, nil
}

func (s *SQLiteStore) createTable() error {
	_, err := s.Exec(`
		CREATE TABLE IF NOT EXISTS dumps (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			size       INTEGER NOT NULL,
			data       BLOB
		)`)
	return err
}

func (s *SQLiteStore) Write(p []byte) error {
	id := xid.New().String()
	if _, err := s.insert.Exec(id, time.Now().UnixNano(), len(p), p); err != nil {
		return &StatusError{Op: "write", Path: s.path, Err: err}
	}
	logger.Logf("store", "stored %d bytes as %s", len(p), id)
	return nil
}

func (s *SQLiteStore) Read(p []byte) (int, error) {
	var data []byte
	err := s.QueryRow(`SELECT data FROM dumps ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &StatusError{Op: "read", Path: s.path, Err: ErrEmpty}
	}
	if err != nil {
		return 0, &StatusError{Op: "read", Path: s.path, Err: err}
	}
	n := copy(p, data)
	logger.Logf("store", "read %d bytes", n)
	return n, nil
}

// Get returns the data of the dump with the given id.
func (s *SQLiteStore) Get(id string) ([]byte, error) {
	var data []byte
	err := s.QueryRow(`SELECT data FROM dumps WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &StatusError{Op: "get " + id, Path: s.path, Err: ErrEmpty}
	}
	if err != nil {
		return nil, &StatusError{Op: "get " + id, Path: s.path, Err: err}
	}
	return data, nil
}

// List returns every stored dump, newest first.
func (s *SQLiteStore) List() ([]Record, error) {
	rows, err := s.Query(`SELECT id, created_at, size FROM dumps ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, &StatusError{Op: "list", Path: s.path, Err: err}
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r    Record
			nano int64
		)
		if err := rows.Scan(&r.ID, &nano, &r.Size); err != nil {
			return nil, &StatusError{Op: "list", Path: s.path, Err: err}
		}
		r.CreatedAt = time.Unix(0, nano)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StatusError{Op: "list", Path: s.path, Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.DB.Close()
}
