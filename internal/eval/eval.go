// Package eval runs model predictions over a list of samples and
// aggregates accuracy.
package eval

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/logging"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/store"
)

// DefaultConcurrency bounds in-flight predictions when none is configured.
const DefaultConcurrency = 4

// Options configures a Runner.
type Options struct {
	Concurrency int

	// Attempts receives one journal entry per answered sample. Optional.
	Attempts store.AttemptRepo
	Logger   *zap.Logger

	// OnResult is called after each sample, from the worker goroutine.
	OnResult func(Result)
}

// Runner evaluates a predictor over samples.
type Runner struct {
	predictor *predict.Predictor
	opts      Options
	logger    *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(p *predict.Predictor, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Runner{predictor: p, opts: opts, logger: logging.OrNop(opts.Logger)}
}

// Result is the outcome for one sample. Err is set when the model could
// not be asked; Prediction is nil then.
type Result struct {
	Sample     dataset.Sample
	Prediction *predict.Prediction
	Err        error
}

// TaskAccuracy aggregates results for one task.
type TaskAccuracy struct {
	Task    string
	Total   int
	Correct int
}

// Rate returns the fraction answered correctly.
func (t TaskAccuracy) Rate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Report summarizes a run. Results are in input order.
type Report struct {
	RunID   string
	Model   string
	Results []Result

	Total   int
	Correct int
	// Invalid counts answers rejected by the verifier.
	Invalid int
	// Failed counts samples with no answer from the model.
	Failed int

	ByTask []TaskAccuracy
}

// Accuracy returns Correct over Total.
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Run predicts every sample with at most Concurrency requests in flight.
// A failed prediction is recorded and the run continues; only context
// cancellation stops it early.
func (r *Runner) Run(ctx context.Context, samples []dataset.Sample) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Model:   r.predictor.Model(),
		Results: make([]Result, len(samples)),
	}
	r.logger.Info("eval started",
		zap.String("run_id", report.RunID),
		zap.String("model", report.Model),
		zap.Int("samples", len(samples)),
		zap.Int("concurrency", r.opts.Concurrency))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(llm.WithPurpose(ctx, llm.PurposeEval))
	g.SetLimit(r.opts.Concurrency)

	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := r.evaluate(gctx, report.RunID, s)
			if res.Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			mu.Lock()
			report.Results[i] = res
			mu.Unlock()
			if r.opts.OnResult != nil {
				r.opts.OnResult(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.tally()
	r.logger.Info("eval finished",
		zap.String("run_id", report.RunID),
		zap.Int("correct", report.Correct),
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (r *Runner) evaluate(ctx context.Context, runID string, s dataset.Sample) Result {
	pred, err := r.predictor.Predict(ctx, s)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Warn("prediction failed", zap.String("sample_id", s.ID), zap.Error(err))
		}
		return Result{Sample: s, Err: err}
	}
	if r.opts.Attempts != nil {
		if _, err := r.opts.Attempts.Append(ctx, pred.Attempt(runID, s)); err != nil {
			r.logger.Warn("failed to journal attempt", zap.String("sample_id", s.ID), zap.Error(err))
		}
	}
	return Result{Sample: s, Prediction: pred}
}

func (r *Report) tally() {
	byTask := map[string]*TaskAccuracy{}
	for _, res := range r.Results {
		r.Total++
		ta := byTask[res.Sample.TaskName]
		if ta == nil {
			ta = &TaskAccuracy{Task: res.Sample.TaskName}
			byTask[res.Sample.TaskName] = ta
		}
		ta.Total++

		switch {
		case res.Err != nil:
			r.Failed++
		case res.Prediction.VerifyErr != nil:
			r.Invalid++
		case res.Prediction.Correct():
			r.Correct++
			ta.Correct++
		}
	}

	r.ByTask = make([]TaskAccuracy, 0, len(byTask))
	for _, ta := range byTask {
		r.ByTask = append(r.ByTask, *ta)
	}
	sort.Slice(r.ByTask, func(i, j int) bool { return r.ByTask[i].Task < r.ByTask[j].Task })
}
