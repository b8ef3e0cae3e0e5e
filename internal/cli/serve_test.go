package cli

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/runnerr0/trail/internal/activity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_ServerTracksIntoSession(t *testing.T) {
	sess := testSession(t)
	cmd := &ServeCommand{Port: 9999, globals: &GlobalFlags{}}
	h := cmd.newServer(sess).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/visits", strings.NewReader(`{"path":"/blog/7"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"/blog/7"}, sess.tracker.Query("blog").IDs(req.Context(), 0))
}

func TestServeCommand_LogLevelReachesTracker(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	// The config file says error; --log-level debug must win for the store too.
	cfgPath := writeTestConfig(t, "")
	cmd := &ServeCommand{LogLevel: "debug", globals: &GlobalFlags{Config: cfgPath}}
	ctx := context.Background()

	stderr := captureStderr(t, func() {
		sess, err := cmd.openSession(ctx)
		require.NoError(t, err)
		defer sess.Close()

		_, ok := sess.tracker.Track(ctx, activity.Route{Path: "/auth/callback"})
		assert.False(t, ok)
	})

	assert.Contains(t, stderr, "visit excluded")
}

func TestServeCommand_InvalidLogLevel(t *testing.T) {
	cmd := &ServeCommand{LogLevel: "loud", globals: &GlobalFlags{Config: writeTestConfig(t, "")}}
	_, err := cmd.openSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}
