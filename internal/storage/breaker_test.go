package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBackend fails every call while broken is set and counts calls.
type flakyBackend struct {
	*MemoryBackend
	broken bool
	calls  int
}

var errDisk = errors.New("disk I/O error")

func (f *flakyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	f.calls++
	if f.broken {
		return "", false, errDisk
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key, value string) error {
	f.calls++
	if f.broken {
		return errDisk
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestBreakerBackend_PassesThrough(t *testing.T) {
	inner := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	b := NewBreakerBackend(inner, BreakerConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "activity", "{}"))
	v, ok, err := b.Get(ctx, "activity")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", v)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerBackend_MissingSlotIsNotAFailure(t *testing.T) {
	inner := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	b := NewBreakerBackend(inner, BreakerConfig{MaxFailures: 1}, nil)

	for i := 0; i < 5; i++ {
		_, ok, err := b.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreakerBackend_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyBackend{MemoryBackend: NewMemoryBackend(), broken: true}
	b := NewBreakerBackend(inner, BreakerConfig{MaxFailures: 3, Timeout: time.Hour}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := b.Get(ctx, "activity")
		assert.ErrorIs(t, err, errDisk)
	}
	assert.Equal(t, "open", b.State())
	assert.Equal(t, 3, inner.calls)

	// Open circuit short-circuits without reaching the backend.
	_, _, err := b.Get(ctx, "activity")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, b.Set(ctx, "activity", "{}"), ErrUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerBackend_HalfOpenRecovers(t *testing.T) {
	inner := &flakyBackend{MemoryBackend: NewMemoryBackend(), broken: true}
	b := NewBreakerBackend(inner, BreakerConfig{MaxFailures: 1, Timeout: 10 * time.Millisecond}, nil)
	ctx := context.Background()

	_, _, err := b.Get(ctx, "activity")
	require.Error(t, err)
	assert.Equal(t, "open", b.State())

	inner.broken = false
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, b.Set(ctx, "activity", "{}"))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerBackend_Slots(t *testing.T) {
	inner := NewMemoryBackend()
	b := NewBreakerBackend(inner, BreakerConfig{}, nil)
	require.NoError(t, b.Set(context.Background(), "activity", "{}"))

	slots, err := b.Slots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "activity", slots[0].Key)
}
