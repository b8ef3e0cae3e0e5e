package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"15m", 15 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "d", "10", "10y", "-5d", "abcd"} {
		_, err := parseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDurationHuman(t *testing.T) {
	assert.Equal(t, "1 day", formatDurationHuman(24*time.Hour))
	assert.Equal(t, "7 days", formatDurationHuman(7*24*time.Hour))
	assert.Equal(t, "1 hour", formatDurationHuman(time.Hour))
	assert.Equal(t, "5 hours", formatDurationHuman(5*time.Hour))
	assert.Equal(t, "30m0s", formatDurationHuman(30*time.Minute))
}

var pruneNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPrune_RemovesStaleRecords(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()
	seedRecords(t, sess.tracker, map[string]time.Time{
		"/old":    pruneNow.Add(-100 * 24 * time.Hour),
		"/older":  pruneNow.Add(-200 * 24 * time.Hour),
		"/recent": pruneNow.Add(-24 * time.Hour),
	})

	cmd := &PruneCommand{OlderThan: "90d", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(ctx, sess.tracker, pruneNow))
	})

	assert.Contains(t, output, "Pruned 2 records not visited in 90 days.")
	assert.Equal(t, []string{"/recent"}, sess.tracker.Query("").IDs(ctx, 0))
}

func TestPrune_DryRunKeepsRecords(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()
	seedRecords(t, sess.tracker, map[string]time.Time{
		"/old":    pruneNow.Add(-10 * 24 * time.Hour),
		"/recent": pruneNow.Add(-time.Hour),
	})

	cmd := &PruneCommand{OlderThan: "1w", DryRun: true, globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(ctx, sess.tracker, pruneNow))
	})

	assert.Contains(t, output, "Would prune 1 record not visited in 7 days:")
	assert.Contains(t, output, "  /old")
	assert.Equal(t, 2, sess.tracker.Query("").Count(ctx))
}

func TestPrune_NothingToPrune(t *testing.T) {
	sess := testSession(t)
	seedRecords(t, sess.tracker, map[string]time.Time{"/a": pruneNow})

	cmd := &PruneCommand{OlderThan: "1d", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(context.Background(), sess.tracker, pruneNow))
	})
	assert.Contains(t, output, "Nothing to prune")
}

func TestPrune_JSON(t *testing.T) {
	sess := testSession(t)
	seedRecords(t, sess.tracker, map[string]time.Time{
		"/b": pruneNow.Add(-48 * time.Hour),
		"/a": pruneNow.Add(-72 * time.Hour),
	})

	cmd := &PruneCommand{OlderThan: "24h", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(context.Background(), sess.tracker, pruneNow))
	})

	var out struct {
		Matched []string `json:"matched"`
		Removed int      `json:"removed"`
		DryRun  bool     `json:"dry_run"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, []string{"/a", "/b"}, out.Matched)
	assert.Equal(t, 2, out.Removed)
	assert.False(t, out.DryRun)
}

func TestPrune_InvalidDuration(t *testing.T) {
	sess := testSession(t)
	cmd := &PruneCommand{OlderThan: "soon", globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(context.Background(), sess.tracker, pruneNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--older-than")
}
