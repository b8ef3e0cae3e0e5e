package activity

import (
	"context"
	"log/slog"
)

// Tracker is the recording and query facade over a Store. Unlike the store
// it never returns errors: tracking is advisory, so storage failures are
// logged and the visit is dropped.
type Tracker struct {
	store  *Store
	logger *slog.Logger
}

func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store, logger: store.logger}
}

// Store returns the underlying store.
func (t *Tracker) Store() *Store { return t.store }

// Track records a visit to route. It reports the stored record and true,
// or false when the path was empty, excluded, or could not be stored.
func (t *Tracker) Track(ctx context.Context, route Route) (Record, bool) {
	path := NormalizePath(route.Path)
	if path == "" {
		t.logger.Debug("ignoring visit without path")
		return Record{}, false
	}

	rec, ok, err := t.store.Upsert(ctx, path, route.meta())
	if err != nil {
		t.logger.Warn("dropping visit", "path", path, "error", err)
		return Record{}, false
	}
	if !ok {
		t.logger.Debug("visit excluded", "path", path)
		return Record{}, false
	}
	return rec, true
}

// Query returns the scope selected by selector (see ParseSelector).
func (t *Tracker) Query(selector string) *Scope {
	return &Scope{store: t.store, sel: ParseSelector(selector)}
}
