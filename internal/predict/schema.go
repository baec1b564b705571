package predict

import "github.com/abhisek/wmview/internal/llm"

// PredictionSchema is the structured response requested from the model.
// Answer values are not range-checked here; the verifier rejects them the
// same way it rejects a user's input.
var PredictionSchema = &llm.Schema{
	Name:        "frame-ordering",
	Description: "A predicted frame ordering with a short rationale",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reasoning": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the chosen order",
			},
			"answer": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "The answer as a sequence of option numbers, e.g. [2, 1, 3]",
			},
		},
		"required":             []any{"reasoning", "answer"},
		"additionalProperties": false,
	},
}
