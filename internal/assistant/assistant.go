// Package assistant runs a conversation turn: it records the user message,
// asks the model, executes a requested function and records the reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/memory"
	"github.com/dohr-michael/pal/internal/models"
)

// ErrEmptyMessage is returned by Chat for blank input.
var ErrEmptyMessage = errors.New("empty message")

// NoReply is returned when the model produced neither text nor a call.
const NoReply = "I'm not sure how to respond to that."

// Gateway sends a message with prior history to the model.
type Gateway interface {
	Send(ctx context.Context, message string, history []memory.Message) models.Response
}

// Assistant ties the model gateway, the conversation buffer and the dispatcher together.
type Assistant struct {
	gateway    Gateway
	buffer     *memory.Buffer
	dispatcher *Dispatcher
	bus        *events.Bus
}

// New creates an assistant. bus may be nil.
func New(gateway Gateway, buffer *memory.Buffer, dispatcher *Dispatcher, bus *events.Bus) *Assistant {
	return &Assistant{
		gateway:    gateway,
		buffer:     buffer,
		dispatcher: dispatcher,
		bus:        bus,
	}
}

// Chat runs one full turn and returns the reply shown to the user.
// Errors are returned only for empty input and storage failures.
func (a *Assistant) Chat(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	a.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceAssistant, events.UserMessagePayload{Content: text}))

	history, err := a.buffer.Append(ctx, memory.RoleUser, text)
	if err != nil {
		return "", fmt.Errorf("record user message: %w", err)
	}
	// The model receives the new message separately.
	prior := history
	if n := len(prior); n > 0 {
		prior = prior[:n-1]
	}

	reply, err := a.Process(ctx, a.gateway.Send(ctx, text, prior))
	if err != nil {
		return "", err
	}

	if _, err := a.buffer.Append(ctx, memory.RoleModel, reply); err != nil {
		return "", fmt.Errorf("record reply: %w", err)
	}

	a.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceAssistant, events.AssistantMessagePayload{Content: reply}))
	return reply, nil
}

// Process turns a model response into reply text. A function call is
// executed, then the result is sent back to the model for a natural-language
// summary; the raw result is used when the summary is empty.
func (a *Assistant) Process(ctx context.Context, resp models.Response) (string, error) {
	if resp.IsCall() {
		result := a.dispatcher.Execute(ctx, resp.Call.Name, resp.Call.Args)

		history, err := a.buffer.History(ctx)
		if err != nil {
			return "", fmt.Errorf("load history: %w", err)
		}
		followUp := a.gateway.Send(ctx, "Function executed. Result: "+result, history)
		if followUp.Text != "" {
			return followUp.Text, nil
		}
		return result, nil
	}

	if resp.Text != "" {
		return resp.Text, nil
	}
	return NoReply, nil
}
