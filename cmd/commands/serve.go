package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/config"
	"github.com/dohr-michael/pal/internal/gateway"
	"github.com/dohr-michael/pal/internal/heartbeat"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the pal web gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd, os.Stderr, slog.LevelInfo)

	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.withAssistant(ctx); err != nil {
		return err
	}

	info := a.gemini.Info()
	if !info.Configured {
		fmt.Fprintln(os.Stderr, "⚠️  Warning: GEMINI_API_KEY not set.")
		fmt.Fprintln(os.Stderr, "   AI features will not work until you set your API key.")
		fmt.Fprintln(os.Stderr, "   Run `pal auth set <key>` or add GEMINI_API_KEY to", config.DotenvPath())
	} else {
		fmt.Fprintf(os.Stderr, "✓ AI Model: %s\n", info.Model)
	}

	server := gateway.NewServer(gateway.Deps{
		Bus:       a.bus,
		Assistant: a.assistant,
		Tasks:     a.tasks,
		History:   a.history,
		Stats:     a.db,
		Model:     info,
	}, cfg.Gateway.Host, cfg.Gateway.Port)

	addr := net.JoinHostPort(cfg.Gateway.Host, strconv.Itoa(cfg.Gateway.Port))
	hb := heartbeat.NewWriter(config.HeartbeatPath(), addr, info.Model, heartbeat.DefaultInterval)
	hb.Start()
	defer hb.Stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for signal or error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
