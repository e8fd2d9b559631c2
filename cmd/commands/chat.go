package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/pal/internal/assistant"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/tasks"
)

const chatHelp = `Commands:
  /tasks     list tasks
  /history   show the conversation history
  /clear     clear the conversation history
  /stats     show task and message counts
  /help      show this help
  quit       leave the chat`

// NewChatCommand returns the chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Chat with the assistant interactively",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	// Keep the REPL free of routine log lines.
	setupLogging(cmd, os.Stderr, slog.LevelError)

	a, err := openApp(ctx, loadConfig(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.withAssistant(ctx); err != nil {
		return err
	}

	out := newPrinter(os.Stdout)
	info := a.gemini.Info()
	if info.Configured {
		out.Info(fmt.Sprintf("pal (%s). Type /help for commands, quit to leave.", info.Model))
	} else {
		out.Warn(models.NotConfigured)
	}

	return chatLoop(ctx, a, os.Stdin, out)
}

// chatLoop reads one message per line until quit, EOF or cancellation.
func chatLoop(ctx context.Context, a *app, in io.Reader, out *printer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		out.Prompt()

		var line string
		select {
		case <-ctx.Done():
			out.Println("")
			return nil
		case l, ok := <-lines:
			if !ok {
				out.Println("")
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			out.Println("Goodbye!")
			return nil
		case strings.HasPrefix(line, "/"):
			if err := runSlashCommand(ctx, a, line, out); err != nil {
				out.Error(err)
			}
			continue
		}

		reply, err := a.assistant.Chat(withRequestID(ctx, "cli"), line)
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyMessage) {
				continue
			}
			out.Error(err)
			continue
		}
		out.Reply(reply)
	}
}

func runSlashCommand(ctx context.Context, a *app, line string, out *printer) error {
	switch line {
	case "/tasks":
		list, err := a.tasks.List(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		out.Println(tasks.Format(list))

	case "/history":
		msgs, err := a.history.History(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		writeHistory(out.w, msgs)

	case "/clear":
		if err := a.history.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		out.Info("Conversation history cleared.")

	case "/stats":
		stats, err := a.db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}
		usage, err := a.db.Usage(ctx)
		if err != nil {
			return fmt.Errorf("read usage: %w", err)
		}
		return writeStats(out.w, stats, usage, a.gemini.Info())

	case "/help":
		out.Println(chatHelp)

	default:
		out.Warn(fmt.Sprintf("Unknown command: %s (try /help)", line))
	}
	return nil
}
