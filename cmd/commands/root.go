package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "pal",
		Usage: "A personal task assistant backed by Gemini",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the SQLite database (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewChatCommand(),
			NewAskCommand(),
			NewServeCommand(),
			NewTasksCommand(),
			NewHistoryCommand(),
			NewStatsCommand(),
			NewStatusCommand(),
			NewMCPServeCommand(),
			NewAuthCommand(),
		},
		DefaultCommand: "chat",
	}
}
