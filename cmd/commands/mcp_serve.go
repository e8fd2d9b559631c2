package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	palmcp "github.com/dohr-michael/pal/internal/mcp"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp-serve",
		Usage: "Expose the task functions as an MCP server (stdio)",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "filter",
				UsageText: "Comma-separated function names to expose (empty = all)",
			},
		},
		Action: runMCPServe,
	}
}

func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP stdio transport
	setupLogging(cmd, os.Stderr, slog.LevelWarn)

	a, err := openApp(ctx, loadConfig(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	filter := cmd.StringArg("filter")
	slog.Debug("starting MCP server", "filter", filter, "db", a.db.Path())

	server := palmcp.NewMCPServer(a.dispatcher, filter)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
