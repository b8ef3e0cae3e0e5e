package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/trail/internal/activity"
)

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	if err := c.validate(args); err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithTracker(ctx, sess.tracker, args)
}

func (c *RemoveCommand) validate(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("remove takes at most one selector, got %d", len(args))
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		if !c.All {
			return fmt.Errorf("removing every record requires the --all flag")
		}
	}
	return nil
}

// executeWithTracker runs the removal against a provided tracker (for testing).
func (c *RemoveCommand) executeWithTracker(ctx context.Context, tracker *activity.Tracker, args []string) error {
	if err := c.validate(args); err != nil {
		return err
	}
	selector := strings.Join(args, "")

	scope := tracker.Query(selector)
	if scope.Selector().Kind == activity.SelectNone {
		return fmt.Errorf("unrecognized selector %q", selector)
	}

	matched := scope.Count(ctx)
	if matched == 0 {
		return c.report(selector, 0)
	}

	if !c.Force {
		if err := c.confirm(selector, matched); err != nil {
			return err
		}
	}

	return c.report(selector, scope.Remove(ctx))
}

func (c *RemoveCommand) confirm(selector string, matched int) error {
	what := "ALL trail records"
	if selector != "" {
		what = fmt.Sprintf("records matching %q", selector)
	}
	fmt.Printf("\u26a0 WARNING: This will permanently delete %s (%d %s).\n", what, matched, plural(matched, "record", "records"))
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "REMOVE" to confirm: `)

	var in io.Reader = os.Stdin
	if c.in != nil {
		in = c.in
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "REMOVE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	fmt.Println()
	return nil
}

func (c *RemoveCommand) report(selector string, removed int) error {
	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"selector": selector,
			"removed":  removed,
		})
	}
	fmt.Printf("Removed %d %s.\n", removed, plural(removed, "record", "records"))
	return nil
}
