package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names accepted by OpenSQLite.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

// SQLiteBackend implements Backend on the slots table of a SQLite database.
type SQLiteBackend struct {
	db    *sql.DB
	ownDB bool

	getSlot   *sql.Stmt
	setSlot   *sql.Stmt
	listSlots *sql.Stmt
}

// OpenSQLite opens the database at path with the given driver, creating the
// parent directory when needed, and runs all migrations. The pool is pinned
// to a single connection so ":memory:" databases behave as one database.
func OpenSQLite(driver, path string) (*sql.DB, error) {
	switch driver {
	case "":
		driver = DriverCGO
	case DriverCGO, DriverPureGo:
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// NewSQLiteBackend creates a SQLiteBackend from an already-opened and migrated database.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	s := &SQLiteBackend{db: db}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.getSlot, err = s.db.Prepare(`SELECT value FROM slots WHERE key = ?`)
	if err != nil {
		return err
	}

	s.setSlot, err = s.db.Prepare(`
		INSERT INTO slots (key, value, byte_size, writes, updated_at)
		VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			byte_size  = excluded.byte_size,
			writes     = slots.writes + 1,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	s.listSlots, err = s.db.Prepare(`
		SELECT key, byte_size, writes, updated_at FROM slots ORDER BY key
	`)
	return err
}

func (s *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.getSlot.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	if _, err := s.setSlot.ExecContext(ctx, key, value, len(value)); err != nil {
		return fmt.Errorf("set slot %q: %w", key, err)
	}
	return nil
}

// Slots lists every stored key with its size and write count.
func (s *SQLiteBackend) Slots(ctx context.Context) ([]Slot, error) {
	rows, err := s.listSlots.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var sl Slot
		var updated string
		if err := rows.Scan(&sl.Key, &sl.ByteSize, &sl.Writes, &updated); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		sl.UpdatedAt, _ = parseTimestamp(updated)
		slots = append(slots, sl)
	}
	return slots, rows.Err()
}

// Close releases the prepared statements. The underlying *sql.DB is only
// closed when the backend opened it itself (see Open).
func (s *SQLiteBackend) Close() error {
	for _, stmt := range []*sql.Stmt{s.getSlot, s.setSlot, s.listSlots} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownDB {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp tries the formats SQLite drivers hand back for DATETIME columns.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
