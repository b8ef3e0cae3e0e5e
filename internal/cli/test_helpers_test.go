package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runnerr0/trail/internal/activity"
	"github.com/runnerr0/trail/internal/config"
	"github.com/runnerr0/trail/internal/storage"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr captures stderr during fn execution and returns it as a string.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeTestConfig writes a config whose SQLite database lives in a temp dir.
// Port 1 keeps the server health check from finding anything.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	return writeTestConfigWithDriver(t, storage.DriverCGO, extra)
}

func writeTestConfigWithDriver(t *testing.T, driver, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n" +
		"  backend: sqlite\n" +
		"  driver: " + driver + "\n" +
		"  path: " + dir + "\n" +
		"  sqlite_file: trail.db\n" +
		"server:\n" +
		"  port: 1\n" +
		"logging:\n" +
		"  level: error\n" +
		extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// testSession returns a session over a fresh in-memory backend.
func testSession(t *testing.T) *session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = storage.KindMemory
	cfg.Server.Port = 1
	backend := storage.NewMemoryBackend()
	t.Cleanup(func() { backend.Close() })
	return &session{cfg: cfg, backend: backend, tracker: newTracker(cfg, backend)}
}

// seedRecords stores records directly, bypassing the clock.
func seedRecords(t *testing.T, tracker *activity.Tracker, visits map[string]time.Time) {
	t.Helper()
	recs := activity.Records{}
	for p, ts := range visits {
		group, typ := activity.Classify(p)
		recs[p] = activity.Record{Path: p, Count: 1, LastVisited: ts, Group: group, Type: typ}
	}
	require.NoError(t, tracker.Store().Save(context.Background(), recs))
}
