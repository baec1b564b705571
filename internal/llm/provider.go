// Package llm talks to hosted language models. Every provider returns
// JSON; when a request carries a Schema the content is validated against
// it before it is handed back.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is implemented by each model backend and by the middleware
// that wraps them (retry, journal, timeout).
type Provider interface {
	// Generate sends req and returns the model's content. With req.Schema
	// set the content is a JSON object conforming to it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier the provider was configured with.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means free text, returned as
	// raw bytes in Response.Content.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]; zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the common single-turn request.
func UserPrompt(system, prompt string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is sent as the schema/tool name, kebab-case.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response holds a model's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns raw provider output into a Response. Truncated structured
// output is reported as ErrMaxTokensExceeded since it cannot be valid
// JSON; anything else is validated against the request schema.
func finish(req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full IDs can be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
