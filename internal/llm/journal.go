package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/logging"
	"github.com/abhisek/wmview/internal/store"
)

// JournalProvider records every request it forwards as an LLM request
// event, including the rendered prompt and the raw response.
type JournalProvider struct {
	inner    Provider
	provider string
	repo     store.EventRepo
	logger   *zap.Logger
}

// WithJournal wraps p so each call is appended to repo. A nil repo only
// logs.
func WithJournal(p Provider, providerName string, repo store.EventRepo, logger *zap.Logger) Provider {
	return &JournalProvider{inner: p, provider: providerName, repo: repo, logger: logging.OrNop(logger)}
}

func (j *JournalProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := j.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    j.provider,
		Model:       j.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	j.logger.Debug("llm request",
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", data.Purpose),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
		zap.Error(err))

	// A journal failure must not fail the request.
	if j.repo != nil {
		if logErr := j.repo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			j.logger.Warn("failed to journal LLM request", zap.Error(logErr))
		}
	}

	return resp, err
}

func (j *JournalProvider) ModelID() string {
	return j.inner.ModelID()
}

// renderRequest is the readable form shown by `wmview llm view`.
func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
