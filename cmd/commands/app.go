package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/assistant"
	"github.com/dohr-michael/pal/internal/config"
	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/memory"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/storage"
	"github.com/dohr-michael/pal/internal/tasks"
)

// setupLogging installs the default slog handler on w. --debug always wins
// over level.
func setupLogging(cmd *cli.Command, w io.Writer, level slog.Level) {
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads --config, falling back to defaults, and applies --db.
func loadConfig(cmd *cli.Command) *config.Config {
	configPath := cmd.String("config")
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("config not found, using defaults", "path", configPath)
		} else {
			slog.Warn("invalid config, using defaults", "path", configPath, "error", err)
		}
	}
	if cmd.IsSet("db") {
		cfg.Storage.Path = cmd.String("db")
	}
	return cfg
}

// app holds the collaborators shared by the local commands.
type app struct {
	cfg     *config.Config
	bus     *events.Bus
	db      *storage.DB
	tasks   *tasks.Registry
	history *memory.Buffer

	gemini     *models.Gemini
	dispatcher *assistant.Dispatcher
	assistant  *assistant.Assistant

	eventLog *storage.EventLogger
	usage    *storage.UsageTracker
}

// openApp opens the store and wires the registry and the conversation buffer.
// The model gateway is attached separately by withAssistant.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	bus := events.NewBus(cfg.Events.BufferSize)

	db, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	slog.Debug("storage opened", "path", db.Path())

	registry := tasks.NewRegistry(db, bus)
	return &app{
		cfg:        cfg,
		bus:        bus,
		db:         db,
		tasks:      registry,
		history:    memory.NewBuffer(db, cfg.Memory.MaxMessages, bus),
		dispatcher: assistant.NewDispatcher(registry, bus),
		eventLog:   storage.NewEventLogger(cfg.Events.LogDir, bus),
		usage:      storage.NewUsageTracker(bus, db),
	}, nil
}

// withAssistant creates the Gemini gateway and the dispatch loop on top of it.
func (a *app) withAssistant(ctx context.Context) error {
	gemini, err := models.NewGemini(ctx, a.cfg.Model, a.bus)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	a.gemini = gemini
	a.assistant = assistant.New(gemini, a.history, a.dispatcher, a.bus)
	return nil
}

// Close releases the store and stops the event subscribers.
func (a *app) Close() {
	a.usage.Close()
	a.eventLog.Close()
	a.bus.Close()
	if err := a.db.Close(); err != nil {
		slog.Warn("close storage", "error", err)
	}
}

// withRequestID tags ctx so every event of one CLI turn shares an ID.
func withRequestID(ctx context.Context, prefix string) context.Context {
	return events.ContextWithRequestID(ctx, prefix+"_"+uuid.NewString()[:8])
}
