package llm

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry.MaxAttempts = 1
	cfg.Timeout = time.Second

	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("unexpected model: %q", p.ModelID())
	}

	// An empty mock has nothing to serve.
	_, err = p.Generate(context.Background(), UserPrompt("", "hi", nil, 10))
	if !IsUnavailable(err) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"unknown provider", Config{Provider: "carrier-pigeon"}, "unknown LLM provider"},
		{"missing key", Config{Provider: "anthropic"}, "WMVIEW_ANTHROPIC_API_KEY"},
		{"missing openrouter key", Config{Provider: "openrouter"}, "WMVIEW_OPENROUTER_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.cfg, nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewProvider_Backends(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		model string
	}{
		{"anthropic", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k", Model: "claude-haiku"}}, "claude-haiku-4-5-20251001"},
		{"openai", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "k", Model: "gpt-mini"}}, "gpt-4.1-mini"},
		{"openrouter", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k", Model: "openai/gpt-4.1"}}, "openai/gpt-4.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg, nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.model {
				t.Fatalf("expected model %q, got %q", tt.model, p.ModelID())
			}
		})
	}
}
