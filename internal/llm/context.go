package llm

import "context"

// Purposes recorded with each request in the journal.
const (
	PurposePredict = "predict"
	PurposeEval    = "eval"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label to the context for the journal.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// HasPurpose reports whether a purpose label is attached to ctx.
func HasPurpose(ctx context.Context) bool {
	_, ok := ctx.Value(purposeKey).(string)
	return ok
}
