package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/config"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/secrets"
)

const apiKeyEnv = "GEMINI_API_KEY"

// NewAuthCommand returns the auth subcommand.
func NewAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Gemini API key",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store the API key in the pal .env file",
				ArgsUsage: "<api_key>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "encrypt",
						Usage: "Encrypt the key with the pal age identity",
					},
				},
				Action: runAuthSet,
			},
			{
				Name:   "status",
				Usage:  "Report whether an API key is available",
				Action: runAuthStatus,
			},
		},
		DefaultCommand: "status",
	}
}

func runAuthSet(_ context.Context, cmd *cli.Command) error {
	key := strings.TrimSpace(cmd.Args().First())
	if key == "" {
		return fmt.Errorf("usage: pal auth set <api_key>")
	}

	path := config.DotenvPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create pal dir: %w", err)
	}

	value := key
	if cmd.Bool("encrypt") {
		kr, err := secrets.LoadOrCreate(secrets.KeyPath())
		if err != nil {
			return err
		}
		if value, err = kr.Seal(key); err != nil {
			return fmt.Errorf("encrypt api key: %w", err)
		}
	}

	if err := config.SetDotenvEntry(path, apiKeyEnv, value); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}

	if cmd.Bool("encrypt") {
		fmt.Printf("%s saved encrypted to %s (key: %s)\n", apiKeyEnv, path, secrets.KeyPath())
		return nil
	}
	fmt.Printf("%s saved to %s\n", apiKeyEnv, path)
	return nil
}

func runAuthStatus(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	if _, err := models.ResolveAuth(cfg.Model); err != nil {
		fmt.Println(models.NotConfigured)
		return nil
	}
	fmt.Printf("API key configured for %s\n", cfg.Model.Name)
	return nil
}
