package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	wsclient "github.com/dohr-michael/pal/clients/ws"
	"github.com/dohr-michael/pal/internal/events"
	wsprotocol "github.com/dohr-michael/pal/internal/gateway/ws"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a single message to the assistant and print the reply",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gateway",
				Usage: "Send through a running gateway (e.g. ws://127.0.0.1:5000/api/ws) instead of the local store",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Response timeout in seconds",
				Value: 120,
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("usage: pal ask <message>")
	}

	setupLogging(cmd, os.Stderr, slog.LevelWarn)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cmd.Int("timeout"))*time.Second)
	defer cancel()

	if url := cmd.String("gateway"); url != "" {
		return askGateway(ctx, url, message, os.Stdout, os.Stderr)
	}

	a, err := openApp(ctx, loadConfig(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.withAssistant(ctx); err != nil {
		return err
	}

	reply, err := a.assistant.Chat(withRequestID(ctx, "cli"), message)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	fmt.Fprintln(os.Stdout, reply)
	return nil
}

// askGateway sends message over the gateway WebSocket. Tool calls made on the
// server are echoed to progress as they are broadcast.
func askGateway(ctx context.Context, url, message string, out, progress io.Writer) error {
	client, err := wsclient.Dial(ctx, url)
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer client.Close()

	client.OnEvent(func(f wsprotocol.Frame) {
		if events.EventType(f.Event) != events.EventToolCall {
			return
		}
		var payload map[string]any
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			return
		}
		if p, ok := events.GetToolCallPayload(events.Event{Payload: payload}); ok {
			fmt.Fprintf(progress, "→ %s (%s)\n", p.Name, p.Status)
		}
	})

	reply, err := client.SendMessage(message)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("timeout waiting for response")
		}
		return fmt.Errorf("send message: %w", err)
	}
	fmt.Fprintln(out, reply)
	return nil
}
