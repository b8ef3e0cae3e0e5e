package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend kinds accepted by Open.
const (
	KindSQLite   = "sqlite"
	KindMemory   = "memory"
	KindPostgres = "postgres"
)

// Options selects and configures the backend built by Open.
type Options struct {
	Kind        string
	Driver      string // SQLite driver: DriverCGO or DriverPureGo
	Path        string // SQLite database file, or ":memory:"
	PostgresDSN string

	// Breaker wraps the backend in a circuit breaker when non-nil.
	Breaker *BreakerConfig
	Logger  *slog.Logger
}

// Open builds the backend described by opts. The returned Backend owns any
// database handle it opened; closing it releases everything.
func Open(ctx context.Context, opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)

	switch opts.Kind {
	case KindSQLite, "":
		b, err = openSQLiteBackend(opts.Driver, opts.Path)
	case KindMemory:
		b = NewMemoryBackend()
	case KindPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		b, err = NewPostgresBackend(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
	if err != nil {
		return nil, err
	}

	if opts.Breaker != nil {
		b = NewBreakerBackend(b, *opts.Breaker, opts.Logger)
	}
	return b, nil
}

func openSQLiteBackend(driver, path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend requires a path")
	}
	db, err := OpenSQLite(driver, path)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLiteBackend(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownDB = true
	return s, nil
}
