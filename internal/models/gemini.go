// Package models is the gateway to the hosted language model.
package models

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/dohr-michael/pal/internal/config"
	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/memory"
)

// NotConfigured is the reply when no API key is available.
const NotConfigured = "API not configured. Please set GEMINI_API_KEY."

// contentGenerator is the subset of genai.Models used by Gemini.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Info describes the configured model.
type Info struct {
	Model      string `json:"model_name"`
	Configured bool   `json:"configured"`
}

// Gemini sends conversations to the Gemini API. A Gemini without credentials
// is valid: every Send answers with NotConfigured.
type Gemini struct {
	gen         contentGenerator
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
	bus         *events.Bus
}

// NewGemini creates the gateway from cfg. A missing credential yields an
// unconfigured gateway, not an error.
func NewGemini(ctx context.Context, cfg config.ModelConfig, bus *events.Bus) (*Gemini, error) {
	g := newGemini(nil, cfg, bus)

	apiKey, err := ResolveAuth(cfg)
	if err != nil {
		slog.Warn("model gateway not configured", "model", g.model, "error", err)
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.gen = client.Models
	return g, nil
}

func newGemini(gen contentGenerator, cfg config.ModelConfig, bus *events.Bus) *Gemini {
	g := &Gemini{
		gen:         gen,
		model:       cfg.Name,
		temperature: config.DefaultTemperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout.Duration(),
		bus:         bus,
	}
	if g.model == "" {
		g.model = config.DefaultModel
	}
	if cfg.Temperature != nil {
		g.temperature = *cfg.Temperature
	}
	if g.maxTokens == 0 {
		g.maxTokens = config.DefaultMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = config.DefaultTimeout
	}
	return g
}

// Configured reports whether the gateway holds credentials.
func (g *Gemini) Configured() bool {
	return g.gen != nil
}

// Info returns the model name and configuration status.
func (g *Gemini) Info() Info {
	return Info{Model: g.model, Configured: g.Configured()}
}

// Send submits history followed by message as the final user turn.
// It never fails: transport and API errors are reported as text.
func (g *Gemini) Send(ctx context.Context, message string, history []memory.Message) Response {
	if !g.Configured() {
		return TextResponse(NotConfigured)
	}

	contents := toContents(history)
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	g.publish(ctx, events.LLMCallPayload{Phase: "request", Model: g.model, MessageCount: len(contents)})

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
		Tools:           tools(),
	})
	duration := time.Since(start)

	if err != nil {
		err = HandleError(err)
		slog.Error("model call failed", "model", g.model, "duration", duration, "error", err)
		g.publish(ctx, events.LLMCallPayload{Phase: "error", Model: g.model, Duration: duration, Error: err.Error()})
		return TextResponse(fmt.Sprintf("Error communicating with Gemini: %v", err))
	}

	payload := events.LLMCallPayload{Phase: "response", Model: g.model, Duration: duration}
	if u := resp.UsageMetadata; u != nil {
		payload.TokensInput = int(u.PromptTokenCount)
		payload.TokensOutput = int(u.CandidatesTokenCount)
	}
	g.publish(ctx, payload)
	slog.Debug("model call", "model", g.model, "duration", duration,
		"tokens_in", payload.TokensInput, "tokens_out", payload.TokensOutput)

	return parseResponse(resp)
}

func (g *Gemini) publish(ctx context.Context, payload events.LLMCallPayload) {
	g.bus.Publish(events.NewTypedEventFromContext(ctx, events.SourceModel, payload))
}

// toContents maps stored messages to genai contents. Anything that is not a
// user turn is sent as a model turn.
func toContents(history []memory.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if m.Role == memory.RoleUser {
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		} else {
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	return contents
}
