// Package storage provides the key-value backends that hold trail's
// serialized activity slots.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a backend cannot currently serve requests,
// either because it was closed or because its circuit breaker is open.
var ErrUnavailable = errors.New("storage backend unavailable")

// Backend is a string key-value store. A slot that was never written is
// reported with ok == false and a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Slot describes one stored key, as reported by backends that can list them.
type Slot struct {
	Key       string
	ByteSize  int64
	Writes    int64
	UpdatedAt time.Time
}

// SlotLister is implemented by backends that can enumerate their keys.
type SlotLister interface {
	Slots(ctx context.Context) ([]Slot, error)
}
