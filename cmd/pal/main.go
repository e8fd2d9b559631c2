package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dohr-michael/pal/cmd/commands"
	"github.com/dohr-michael/pal/internal/config"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/secrets"
)

func main() {
	if err := config.LoadDotenv(config.DotenvPath()); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	// A project-local .env fills whatever the pal home did not set.
	if err := config.LoadDotenv(".env"); err != nil {
		slog.Warn("failed to load local .env", "error", err)
	}
	if err := secrets.UnsealEnv(secrets.KeyPath(), models.CredentialEnvVars...); err != nil {
		slog.Warn("failed to decrypt credentials", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := commands.NewRootCommand()
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
