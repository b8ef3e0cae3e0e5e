package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/runnerr0/trail/internal/storage"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates a Store over a fresh in-memory backend.
func newTestStore(t *testing.T, clock *fakeClock, opts Options) (*Store, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	opts.Now = clock.Now
	opts.Logger = quietLogger()
	return NewStore(backend, opts), backend
}

func newTestTracker(t *testing.T, clock *fakeClock, opts Options) *Tracker {
	t.Helper()
	s, _ := newTestStore(t, clock, opts)
	return NewTracker(s)
}

var errBroken = errors.New("backend broken")

// brokenBackend fails reads and counts write attempts.
type brokenBackend struct {
	failGet bool
	failSet bool
	value   string
	sets    int
}

func (b *brokenBackend) Get(_ context.Context, _ string) (string, bool, error) {
	if b.failGet {
		return "", false, errBroken
	}
	return b.value, b.value != "", nil
}

func (b *brokenBackend) Set(_ context.Context, _ string, value string) error {
	b.sets++
	if b.failSet {
		return errBroken
	}
	b.value = value
	return nil
}
