package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/trail/internal/config"
	"github.com/runnerr0/trail/internal/logger"
	"github.com/runnerr0/trail/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.newServer(sess).Run(ctx)
}

// openSession opens the session with --log-level applied, so the store and
// tracker log through the overridden logger.
func (c *ServeCommand) openSession(ctx context.Context) (*session, error) {
	var override func(*config.Config)
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
		override = func(cfg *config.Config) { cfg.Logging.Level = c.LogLevel }
	}
	return openSessionWith(ctx, c.globals, override)
}

// newServer applies flag overrides to the configured server settings.
func (c *ServeCommand) newServer(sess *session) *server.Server {
	sc := sess.cfg.Server
	if c.Host != "" {
		sc.Host = c.Host
	}
	if c.Port != 0 {
		sc.Port = c.Port
	}

	return server.New(sess.tracker, server.Config{
		Addr:              sc.Addr(),
		RequestsPerSecond: sc.RequestsPerSecond,
		Burst:             sc.Burst,
		MaxRequestSize:    sc.MaxRequestSize,
		Logger:            slog.Default(),
	})
}
