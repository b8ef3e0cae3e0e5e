package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/trail/internal/activity"
	"github.com/runnerr0/trail/internal/config"
	"github.com/runnerr0/trail/internal/logger"
	"github.com/runnerr0/trail/internal/storage"
)

// session is what a command works against once config is loaded.
type session struct {
	cfg     *config.Config
	backend storage.Backend
	tracker *activity.Tracker
}

func (s *session) Close() error {
	return s.backend.Close()
}

// openSession loads config, sets up logging and opens the configured backend.
func openSession(ctx context.Context, globals *GlobalFlags) (*session, error) {
	return openSessionWith(ctx, globals, nil)
}

// openSessionWith is openSession with command flag overrides applied to the
// loaded config before logging, storage and tracker are built from it.
func openSessionWith(ctx context.Context, globals *GlobalFlags, override func(*config.Config)) (*session, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := setupLogging(cfg.Logging, globals != nil && globals.Verbose); err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	return &session{
		cfg:     cfg,
		backend: backend,
		tracker: newTracker(cfg, backend),
	}, nil
}

// loadConfig reads --config, or the default path, writing defaults on first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		cfg, err = config.LoadOrCreateAt(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setupLogging(lc config.LoggingConfig, verbose bool) error {
	level, err := logger.ParseLevel(lc.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger.Init(logger.Config{Level: level, Format: lc.Format, Output: os.Stderr})
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	opts := storage.Options{
		Kind:        cfg.Storage.Backend,
		Driver:      cfg.Storage.Driver,
		PostgresDSN: cfg.Storage.PostgresDSN,
		Logger:      logger.ForComponent("storage"),
	}
	if opts.Kind == storage.KindSQLite {
		path, err := cfg.Storage.DatabasePath()
		if err != nil {
			return nil, err
		}
		opts.Path = path
	}
	if bc := cfg.Storage.Breaker; bc.Enabled {
		opts.Breaker = &storage.BreakerConfig{
			MaxFailures: uint32(bc.MaxFailures),
			Timeout:     bc.Timeout(),
		}
	}
	return storage.Open(ctx, opts)
}

func newTracker(cfg *config.Config, backend storage.Backend) *activity.Tracker {
	store := activity.NewStore(backend, activity.Options{
		Key:      cfg.Activity.Key,
		Max:      cfg.Activity.Max,
		Exclude:  cfg.Activity.Exclude,
		HalfLife: cfg.Activity.HalfLife(),
		Logger:   slog.Default(),
	})
	return activity.NewTracker(store)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var result strings.Builder
	if neg {
		result.WriteString("-")
	}
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
