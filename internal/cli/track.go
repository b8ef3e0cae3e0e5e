package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/trail/internal/activity"
)

// Execute implements the go-flags Commander interface for TrackCommand.
func (c *TrackCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("track requires at least one path or URL")
	}

	ctx := context.Background()
	sess, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithTracker(ctx, sess.tracker, args)
}

// executeWithTracker runs the track logic against a provided tracker (used by tests).
func (c *TrackCommand) executeWithTracker(ctx context.Context, tracker *activity.Tracker, args []string) error {
	params, err := parseParams(c.Params)
	if err != nil {
		return err
	}

	// Check every argument before recording any, so a bad one leaves the store untouched.
	routes := make([]activity.Route, 0, len(args))
	for _, raw := range args {
		route := activity.ParseRoute(raw)
		route.Name = c.Name
		route.Params = params

		path := activity.NormalizePath(route.Path)
		if path == "" {
			return fmt.Errorf("invalid path: %q", raw)
		}
		// The store skips excluded paths silently; the CLI user gets an explicit error.
		if tracker.Store().Excluded(path) {
			return fmt.Errorf("path %q is excluded by exclusion rules", path)
		}
		routes = append(routes, route)
	}

	var tracked []activity.Record
	for _, route := range routes {
		rec, ok := tracker.Track(ctx, route)
		if !ok {
			return fmt.Errorf("visit to %q was not recorded (%d of %d recorded): storage unavailable",
				activity.NormalizePath(route.Path), len(tracked), len(routes))
		}
		tracked = append(tracked, rec)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"count":   len(tracked),
			"records": tracked,
		})
	}

	for _, rec := range tracked {
		fmt.Printf("Tracked %s (%s)\n", rec.Path, rec.LastVisited.Format(time.RFC3339))
		fmt.Printf("  Visits: %d\n", rec.Count)
		fmt.Printf("  Group:  %s\n", rec.Group)
		fmt.Printf("  Type:   %s\n", rec.Type)
	}
	return nil
}

// parseParams turns repeated key=value flags into a map.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		params[k] = v
	}
	return params, nil
}
