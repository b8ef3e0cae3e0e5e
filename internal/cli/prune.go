package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/trail/internal/activity"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithTracker(ctx, sess.tracker, time.Now())
}

// executeWithTracker prunes records last visited before now minus --older-than.
func (c *PruneCommand) executeWithTracker(ctx context.Context, tracker *activity.Tracker, now time.Time) error {
	age, err := parseDuration(c.OlderThan)
	if err != nil {
		return fmt.Errorf("invalid --older-than value: %w", err)
	}
	cutoff := now.Add(-age)

	store := tracker.Store()
	stale := []string{}
	for path, r := range store.Load(ctx) {
		if r.LastVisited.Before(cutoff) {
			stale = append(stale, path)
		}
	}
	sort.Strings(stale)

	removed := 0
	if !c.DryRun && len(stale) > 0 {
		removed, err = store.Remove(ctx, stale)
		if err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"older_than": c.OlderThan,
			"cutoff":     cutoff.UTC().Format(time.RFC3339),
			"dry_run":    c.DryRun,
			"matched":    stale,
			"removed":    removed,
		})
	}

	if len(stale) == 0 {
		fmt.Printf("Nothing to prune: no records older than %s.\n", formatDurationHuman(age))
		return nil
	}
	if c.DryRun {
		fmt.Printf("Would prune %d %s not visited in %s:\n", len(stale), plural(len(stale), "record", "records"), formatDurationHuman(age))
		for _, p := range stale {
			fmt.Printf("  %s\n", p)
		}
		return nil
	}
	fmt.Printf("Pruned %d %s not visited in %s.\n", removed, plural(removed, "record", "records"), formatDurationHuman(age))
	return nil
}
