package llm

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // pass-through
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(testSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", s.Type)
	}
	if len(s.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(s.Properties))
	}
	answer := s.Properties["answer"]
	if answer.Type != genai.TypeArray || answer.Items.Type != genai.TypeInteger {
		t.Fatalf("unexpected answer schema: %+v", answer)
	}
	if answer.Items.Minimum == nil || *answer.Items.Minimum != 1 || *answer.Items.Maximum != 10 {
		t.Fatalf("bounds not converted: %+v", answer.Items)
	}
	if len(s.Properties["confidence"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(s.Properties["confidence"].Enum))
	}
	if len(s.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(s.Required))
	}
}

func TestGeminiSchema_GoSlices(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type":     "object",
		"required": []string{"a"},
		"properties": map[string]any{
			"a": map[string]any{"type": "mystery"},
		},
	})
	if len(s.Required) != 1 {
		t.Fatalf("expected []string required to convert, got %v", s.Required)
	}
	if s.Properties["a"].Type != genai.TypeString {
		t.Fatalf("unknown types should fall back to STRING, got %s", s.Properties["a"].Type)
	}
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	if !errors.As(mapGeminiError(genai.APIError{Code: http.StatusTooManyRequests}), &rl) {
		t.Fatal("429 should map to ErrRateLimit")
	}
	if !IsUnavailable(mapGeminiError(genai.APIError{Code: http.StatusServiceUnavailable})) {
		t.Fatal("503 should map to ErrProviderUnavailable")
	}
	if !IsUnavailable(mapGeminiError(errors.New("dial tcp: refused"))) {
		t.Fatal("network errors should map to ErrProviderUnavailable")
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
