package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postgresTestDSN returns the DSN for the test database.
// If POSTGRES_TEST_DSN is not set, tests are skipped.
func postgresTestDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set; skipping PostgreSQL integration tests")
	}
	return dsn
}

func TestPostgresBackend_Roundtrip(t *testing.T) {
	dsn := postgresTestDSN(t)
	ctx := context.Background()

	b, err := NewPostgresBackend(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		b.db.ExecContext(ctx, `DELETE FROM activity_slots WHERE key = 'trail-test'`) //nolint:errcheck
		b.Close()
	})

	_, ok, err := b.Get(ctx, "trail-test")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "trail-test", "one"))
	require.NoError(t, b.Set(ctx, "trail-test", "two"))

	v, ok, err := b.Get(ctx, "trail-test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	slots, err := b.Slots(ctx)
	require.NoError(t, err)
	for _, s := range slots {
		if s.Key == "trail-test" {
			assert.Equal(t, int64(2), s.Writes)
			return
		}
	}
	t.Fatal("trail-test slot not listed")
}
