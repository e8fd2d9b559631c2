package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// NewHistoryCommand returns the history subcommand.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect the conversation history",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the retained messages",
				Action: runHistoryShow,
			},
			{
				Name:   "clear",
				Usage:  "Forget the conversation",
				Action: runHistoryClear,
			},
		},
		DefaultCommand: "show",
	}
}

func runHistoryShow(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(a *app) error {
		msgs, err := a.history.History(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		writeHistory(os.Stdout, msgs)
		return nil
	})
}

func runHistoryClear(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd, func(a *app) error {
		if err := a.history.Clear(withRequestID(ctx, "cli")); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("Conversation history cleared.")
		return nil
	})
}
