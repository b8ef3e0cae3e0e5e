package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresBackend implements Backend on a PostgreSQL table. Useful when the
// tracking process runs next to an existing database and should not keep a
// local file.
type PostgresBackend struct {
	db    *sql.DB
	ownDB bool
}

// NewPostgresBackend opens dsn, verifies connectivity and ensures the
// activity_slots table exists.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &PostgresBackend{db: db, ownDB: true}
	if err := p.CreateTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return p, nil
}

// CreateTable creates the activity_slots table if it does not exist.
func (p *PostgresBackend) CreateTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_slots (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			byte_size  BIGINT NOT NULL DEFAULT 0,
			writes     BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM activity_slots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %q: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO activity_slots (key, value, byte_size, writes, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (key) DO UPDATE SET
			value      = EXCLUDED.value,
			byte_size  = EXCLUDED.byte_size,
			writes     = activity_slots.writes + 1,
			updated_at = now()
	`, key, value, len(value))
	if err != nil {
		return fmt.Errorf("set slot %q: %w", key, err)
	}
	return nil
}

// Slots lists every stored key with its size and write count.
func (p *PostgresBackend) Slots(ctx context.Context) ([]Slot, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT key, byte_size, writes, updated_at FROM activity_slots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := []Slot{}
	for rows.Next() {
		var sl Slot
		if err := rows.Scan(&sl.Key, &sl.ByteSize, &sl.Writes, &sl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, sl)
	}
	return slots, rows.Err()
}

func (p *PostgresBackend) Close() error {
	if p.ownDB {
		return p.db.Close()
	}
	return nil
}
