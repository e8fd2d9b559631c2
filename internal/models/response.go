package models

import (
	"strings"

	"google.golang.org/genai"
)

// FunctionCall is a model request to run a local function.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Response is either free text or a function call, never both.
type Response struct {
	Text string        `json:"text,omitempty"`
	Call *FunctionCall `json:"call,omitempty"`
}

// IsCall reports whether the model requested a function.
func (r Response) IsCall() bool {
	return r.Call != nil
}

// TextResponse builds a text-only Response.
func TextResponse(text string) Response {
	return Response{Text: text}
}

// parseResponse inspects the first candidate. The first part carrying a named
// function call wins; otherwise text parts are concatenated and trimmed.
func parseResponse(resp *genai.GenerateContentResponse) Response {
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return Response{}
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		if fc := part.FunctionCall; fc != nil && fc.Name != "" {
			args := fc.Args
			if args == nil {
				args = map[string]any{}
			}
			return Response{Call: &FunctionCall{Name: fc.Name, Args: args}}
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return Response{Text: strings.TrimSpace(text.String())}
}
