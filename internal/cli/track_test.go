package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCommand_RecordsVisit(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()

	cmd := &TrackCommand{Name: "blog-id", Params: []string{"id=1"}, globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(ctx, sess.tracker, []string{"/blog/1/"}))
	})

	assert.Contains(t, output, "Tracked /blog/1")
	assert.Contains(t, output, "Visits: 1")
	assert.Contains(t, output, "Group:  blog")
	assert.Contains(t, output, "Type:   show")

	got := sess.tracker.Query("/blog/1").Get(ctx, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "blog-id", got[0].Meta.Name)
	assert.Equal(t, "1", got[0].Meta.Params["id"])
}

func TestTrackCommand_URLKeepsQuery(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()

	cmd := &TrackCommand{globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(ctx, sess.tracker, []string{"https://example.com/search?q=go&q=rust"}))
	})

	got := sess.tracker.Query("/search").Get(ctx, 0)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"go", "rust"}, got[0].Meta.Query["q"])
}

func TestTrackCommand_Excluded(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()

	cmd := &TrackCommand{globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(ctx, sess.tracker, []string{"/auth/callback"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excluded by exclusion rules")
	assert.Equal(t, 0, sess.tracker.Query("").Count(ctx))
}

func TestTrackCommand_InvalidParam(t *testing.T) {
	sess := testSession(t)
	cmd := &TrackCommand{Params: []string{"novalue"}, globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(context.Background(), sess.tracker, []string{"/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")
}

func TestTrackCommand_StorageUnavailable(t *testing.T) {
	sess := testSession(t)
	require.NoError(t, sess.backend.Close())

	cmd := &TrackCommand{globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(context.Background(), sess.tracker, []string{"/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not recorded (0 of 1 recorded)")
}

func TestTrackCommand_LaterExcludedArgRecordsNothing(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()

	cmd := &TrackCommand{globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(ctx, sess.tracker, []string{"/a", "/auth/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"/auth/x" is excluded`)
	assert.Equal(t, 0, sess.tracker.Query("").Count(ctx))
}

func TestTrackCommand_LaterInvalidArgRecordsNothing(t *testing.T) {
	sess := testSession(t)
	ctx := context.Background()

	cmd := &TrackCommand{globals: &GlobalFlags{}}
	err := cmd.executeWithTracker(ctx, sess.tracker, []string{"/a", "?only=query"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path")
	assert.Equal(t, 0, sess.tracker.Query("").Count(ctx))
}

func TestTrackCommand_JSON(t *testing.T) {
	sess := testSession(t)
	cmd := &TrackCommand{globals: &GlobalFlags{JSON: true}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithTracker(context.Background(), sess.tracker, []string{"/a", "/a", "/b/new"}))
	})

	var out struct {
		Count   int `json:"count"`
		Records []struct {
			Path  string `json:"path"`
			Count int    `json:"count"`
			Type  string `json:"type"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	require.Equal(t, 3, out.Count)
	assert.Equal(t, 2, out.Records[1].Count)
	assert.Equal(t, "create", out.Records[2].Type)
}
