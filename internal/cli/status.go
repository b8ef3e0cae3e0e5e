package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/runnerr0/trail/internal/activity"
	"github.com/runnerr0/trail/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string           `json:"version"`
	Backend       string           `json:"backend"`
	DatabasePath  string           `json:"database_path,omitempty"`
	DatabaseBytes int64            `json:"database_size_bytes"`
	Breaker       string           `json:"breaker,omitempty"`
	Key           string           `json:"key"`
	TotalRecords  int              `json:"total_records"`
	MaxRecords    int              `json:"max_records"`
	TotalVisits   int64            `json:"total_visits"`
	OldestVisit   string           `json:"oldest_visit,omitempty"`
	NewestVisit   string           `json:"newest_visit,omitempty"`
	HalfLifeHours float64          `json:"half_life_hours"`
	ExcludeRules  int              `json:"exclude_rules"`
	Groups        []groupCountJSON `json:"groups"`
	Slots         []slotJSON       `json:"slots,omitempty"`
	ServerAddr    string           `json:"server_addr"`
	ServerRunning bool             `json:"server_running"`
}

type groupCountJSON struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

type slotJSON struct {
	Key       string `json:"key"`
	Bytes     int64  `json:"bytes"`
	Writes    int64  `json:"writes"`
	UpdatedAt string `json:"updated_at"`
}

// statusReport gathers everything status prints.
type statusReport struct {
	stats    activity.Stats
	slots    []storage.Slot
	dbPath   string
	dbSize   int64
	breaker  string
	serverUp bool
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithSession(ctx, sess)
}

// executeWithSession runs status against a provided session (for testing).
func (c *StatusCommand) executeWithSession(ctx context.Context, sess *session) error {
	rep := statusReport{
		stats:    sess.tracker.Store().Stats(ctx),
		serverUp: checkServer(sess.cfg.Server.Addr()),
	}

	if lister, ok := sess.backend.(storage.SlotLister); ok {
		slots, err := lister.Slots(ctx)
		if err != nil {
			return fmt.Errorf("list slots: %w", err)
		}
		rep.slots = slots
	}
	if b, ok := sess.backend.(*storage.BreakerBackend); ok {
		rep.breaker = b.State()
	}
	if sess.cfg.Storage.Backend == storage.KindSQLite {
		path, err := sess.cfg.Storage.DatabasePath()
		if err == nil {
			rep.dbPath = path
			rep.dbSize = fileSize(path)
		}
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(sess, rep)
	}
	return c.printStatusHuman(sess, rep)
}

func (c *StatusCommand) printStatusHuman(sess *session, rep statusReport) error {
	cfg := sess.cfg
	st := rep.stats

	fmt.Println("Trail Status")
	fmt.Println("============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Backend:       %s\n", cfg.Storage.Backend)
	if rep.dbPath != "" {
		fmt.Printf("Database:      %s (%s)\n", rep.dbPath, formatBytes(rep.dbSize))
	}
	if rep.breaker != "" {
		fmt.Printf("Breaker:       %s\n", rep.breaker)
	}
	fmt.Printf("Key:           %s\n", sess.tracker.Store().Key())

	if st.Max > 0 {
		fmt.Printf("Records:       %s / %s\n", formatNumber(int64(st.Total)), formatNumber(int64(st.Max)))
	} else {
		fmt.Printf("Records:       %s (unlimited)\n", formatNumber(int64(st.Total)))
	}
	fmt.Printf("Visits:        %s\n", formatNumber(st.Visits))

	if st.Total > 0 {
		fmt.Printf("Oldest:        %s\n", st.OldestVisit.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Newest:        %s\n", st.NewestVisit.Local().Format("2006-01-02 15:04"))
	}

	fmt.Printf("Half-life:     %s\n", formatDurationHuman(cfg.Activity.HalfLife()))
	fmt.Printf("Exclusions:    %d rules\n", len(sess.tracker.Store().ExcludeRules()))

	if len(st.Groups) > 0 {
		fmt.Println()
		fmt.Println("Groups:")
		for _, g := range st.Groups {
			fmt.Printf("  %-20s %s\n", g.Group, formatNumber(int64(g.Count)))
		}
	}

	if len(rep.slots) > 0 {
		fmt.Println()
		fmt.Println("Slots:")
		for _, s := range rep.slots {
			fmt.Printf("  %-20s %s, %s writes\n", s.Key, formatBytes(s.ByteSize), formatNumber(s.Writes))
		}
	}

	fmt.Println()
	if rep.serverUp {
		fmt.Printf("Server:        running on %s\n", cfg.Server.Addr())
	} else {
		fmt.Println("Server:        not running")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(sess *session, rep statusReport) error {
	cfg := sess.cfg
	st := rep.stats

	out := statusJSON{
		Version:       c.version,
		Backend:       cfg.Storage.Backend,
		DatabasePath:  rep.dbPath,
		DatabaseBytes: rep.dbSize,
		Breaker:       rep.breaker,
		Key:           sess.tracker.Store().Key(),
		TotalRecords:  st.Total,
		MaxRecords:    st.Max,
		TotalVisits:   st.Visits,
		HalfLifeHours: cfg.Activity.HalfLifeHours,
		ExcludeRules:  len(sess.tracker.Store().ExcludeRules()),
		Groups:        make([]groupCountJSON, len(st.Groups)),
		ServerAddr:    cfg.Server.Addr(),
		ServerRunning: rep.serverUp,
	}

	if st.Total > 0 {
		out.OldestVisit = st.OldestVisit.UTC().Format(time.RFC3339)
		out.NewestVisit = st.NewestVisit.UTC().Format(time.RFC3339)
	}
	for i, g := range st.Groups {
		out.Groups[i] = groupCountJSON{Group: g.Group, Count: g.Count}
	}
	for _, s := range rep.slots {
		out.Slots = append(out.Slots, slotJSON{
			Key:       s.Key,
			Bytes:     s.ByteSize,
			Writes:    s.Writes,
			UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return printJSON(out)
}

// fileSize returns the size of the database file plus its WAL, or 0.
func fileSize(path string) int64 {
	var total int64
	for _, p := range []string{path, path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

// checkServer reports whether an ingest server answers on addr within 1 second.
func checkServer(addr string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get("http://" + addr + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
