// Package predict asks a language model to answer dataset samples and
// checks the answers with the same verifier used for user input.
package predict

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/store"
	"github.com/abhisek/wmview/internal/verify"
)

// Config holds generation parameters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the defaults used by the viewer and eval.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0}
}

// Predictor answers samples with an LLM provider.
type Predictor struct {
	provider llm.Provider
	config   Config
}

// New creates a Predictor.
func New(provider llm.Provider, cfg Config) *Predictor {
	return &Predictor{provider: provider, config: cfg}
}

// Model returns the provider's model ID.
func (p *Predictor) Model() string {
	return p.provider.ModelID()
}

// Prediction is a model's answer to one sample. A prediction whose answer
// breaks the input rules is still a prediction; VerifyErr says why.
type Prediction struct {
	SampleID  string
	Model     string
	Reasoning string

	// Raw is the answer exactly as the model returned it.
	Raw string

	Result    verify.Result
	VerifyErr error
}

// Correct reports whether the answer verified and matched.
func (p *Prediction) Correct() bool {
	return p.VerifyErr == nil && p.Result.Correct
}

// Source is the attempt source recorded for this model.
func (p *Prediction) Source() string {
	return Source(p.Model)
}

// Source names the attempt source for a model ID.
func Source(model string) string {
	return "model:" + model
}

// Attempt converts the prediction into a journal entry.
func (p *Prediction) Attempt(sessionID string, s dataset.Sample) store.AttemptData {
	return store.AttemptData{
		SessionID: sessionID,
		SampleID:  s.ID,
		Task:      s.TaskName,
		Setting:   string(s.Setting()),
		StepCount: s.StepCount(),
		Source:    p.Source(),
		RawInput:  p.Raw,
		Correct:   p.Correct(),
		ErrorKind: verify.Kind(p.VerifyErr),
	}
}

type predictionOutput struct {
	Reasoning string `json:"reasoning"`
}

// Predict asks the model to answer s. An error means no answer was
// obtained; verification failures are reported on the Prediction. The
// request is journaled as a prediction unless ctx already carries a
// purpose.
func (p *Predictor) Predict(ctx context.Context, s dataset.Sample) (*Prediction, error) {
	if !llm.HasPurpose(ctx) {
		ctx = llm.WithPurpose(ctx, llm.PurposePredict)
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(s)},
		},
		Schema:      PredictionSchema,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
	}

	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", s.ID, err)
	}

	var out predictionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse prediction for %s: %w", s.ID, err)
	}

	pred := &Prediction{
		SampleID:  s.ID,
		Model:     p.provider.ModelID(),
		Reasoning: out.Reasoning,
		Raw:       gjson.GetBytes(resp.Content, "answer").Raw,
	}
	pred.Result, pred.VerifyErr = verify.Verify(pred.Raw, s.GTAnswer)
	return pred, nil
}
