package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/trail/internal/activity"
)

// Execute implements the go-flags Commander interface for QueryCommand.
func (c *QueryCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithTracker(ctx, sess.tracker, args)
}

// executeWithTracker runs the query against a provided tracker (for testing).
func (c *QueryCommand) executeWithTracker(ctx context.Context, tracker *activity.Tracker, args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	if len(args) > 1 {
		return fmt.Errorf("query takes at most one selector, got %d", len(args))
	}
	selector := strings.Join(args, "")

	scope := tracker.Query(selector)
	if scope.Selector().Kind == activity.SelectNone {
		return fmt.Errorf("unrecognized selector %q (use \"\", group, @type, group@type or /path)", selector)
	}
	results := scope.Get(ctx, c.Limit)

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(selector, results)
	}
	if c.IDs {
		for _, r := range results {
			fmt.Println(r.Path)
		}
		return nil
	}
	return c.printHuman(selector, results)
}

func (c *QueryCommand) printHuman(selector string, results []activity.Record) error {
	label := "all pages"
	if selector != "" {
		label = fmt.Sprintf("%q", selector)
	}

	if len(results) == 0 {
		fmt.Printf("No visits found for %s\n", label)
		return nil
	}

	fmt.Printf("Found %d %s for %s\n\n", len(results), plural(len(results), "page", "pages"), label)
	for i, r := range results {
		fmt.Printf("%d. %s\n", i+1, r.Path)
		meta := fmt.Sprintf("%s@%s \u00b7 %d %s \u00b7 score %.2f", r.Group, r.Type, r.Count, plural(r.Count, "visit", "visits"), r.Score)
		fmt.Printf("   %s\n", meta)
		fmt.Printf("   last visited %s\n", r.LastVisited.Local().Format("2006-01-02 15:04"))
		if i < len(results)-1 {
			fmt.Println()
		}
	}
	return nil
}

type jsonRecord struct {
	Path        string            `json:"path"`
	Count       int               `json:"count"`
	Score       float64           `json:"score"`
	Group       string            `json:"group"`
	Type        string            `json:"type"`
	LastVisited string            `json:"last_visited"`
	Name        string            `json:"name,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

type jsonQueryOutput struct {
	Count    int          `json:"count"`
	Selector string       `json:"selector"`
	Records  []jsonRecord `json:"records"`
}

func (c *QueryCommand) printJSON(selector string, results []activity.Record) error {
	out := jsonQueryOutput{
		Count:    len(results),
		Selector: selector,
		Records:  make([]jsonRecord, len(results)),
	}

	for i, r := range results {
		out.Records[i] = jsonRecord{
			Path:        r.Path,
			Count:       r.Count,
			Score:       r.Score,
			Group:       r.Group,
			Type:        r.Type,
			LastVisited: r.LastVisited.UTC().Format(time.RFC3339),
			Name:        r.Meta.Name,
			Params:      r.Meta.Params,
		}
	}

	return printJSON(out)
}
