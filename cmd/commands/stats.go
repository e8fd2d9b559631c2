package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/storage"
)

// NewStatsCommand returns the stats subcommand.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show task, conversation and model usage counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print as JSON",
			},
		},
		Action: runStats,
	}
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(a *app) error {
		stats, err := a.db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}
		usage, err := a.db.Usage(ctx)
		if err != nil {
			return fmt.Errorf("read usage: %w", err)
		}

		// No model call is made; configured only reflects credential presence.
		_, authErr := models.ResolveAuth(a.cfg.Model)
		info := models.Info{Model: a.cfg.Model.Name, Configured: authErr == nil}

		if cmd.Bool("json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				storage.Stats
				Model string          `json:"model"`
				Usage []storage.Usage `json:"usage"`
			}{stats, info.Model, usage})
		}
		return writeStats(os.Stdout, stats, usage, info)
	})
}
