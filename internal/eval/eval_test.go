package eval

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/store"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, which starts a process-lifetime worker.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeAttemptRepo struct {
	store.AttemptRepo

	mu       sync.Mutex
	attempts []store.AttemptData
}

func (f *fakeAttemptRepo) Append(_ context.Context, data store.AttemptData) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, data)
	return int64(len(f.attempts)), nil
}

func sample(id, task, question string) dataset.Sample {
	return dataset.Sample{
		ID:       id,
		Type:     "inverse_dynamics",
		TaskName: task,
		Question: question,
		GTAnswer: dataset.Seq(1, 2),
	}
}

// answerByQuestion replies according to a marker in the question text.
func answerByQuestion(req llm.Request) llm.MockResponse {
	msg := req.Messages[0].Content
	switch {
	case strings.Contains(msg, "right"):
		return llm.MockResponse{Content: json.RawMessage(`{"reasoning":"r","answer":[1,2]}`)}
	case strings.Contains(msg, "wrong"):
		return llm.MockResponse{Content: json.RawMessage(`{"reasoning":"r","answer":[2,1]}`)}
	case strings.Contains(msg, "invalid"):
		return llm.MockResponse{Content: json.RawMessage(`{"reasoning":"r","answer":[0]}`)}
	default:
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}
	}
}

func TestRun_Report(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.Respond = answerByQuestion
	repo := &fakeAttemptRepo{}
	r := NewRunner(predict.New(mock, predict.DefaultConfig()), Options{Concurrency: 3, Attempts: repo})

	samples := []dataset.Sample{
		sample("a1", "taskA", "right"),
		sample("a2", "taskA", "wrong"),
		sample("b1", "taskB", "right"),
		sample("b2", "taskB", "invalid"),
		sample("b3", "taskB", "offline"),
	}
	report, err := r.Run(context.Background(), samples)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "mock", report.Model)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.Correct)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.Failed)
	assert.InDelta(t, 0.4, report.Accuracy(), 1e-9)

	require.Len(t, report.Results, 5)
	for i, res := range report.Results {
		assert.Equal(t, samples[i].ID, res.Sample.ID, "results keep input order")
	}
	assert.Nil(t, report.Results[4].Prediction)
	assert.Error(t, report.Results[4].Err)

	assert.Equal(t, []TaskAccuracy{
		{Task: "taskA", Total: 2, Correct: 1},
		{Task: "taskB", Total: 3, Correct: 1},
	}, report.ByTask)
	assert.InDelta(t, 0.5, report.ByTask[0].Rate(), 1e-9)

	// Failed predictions are not journaled.
	require.Len(t, repo.attempts, 4)
	for _, a := range repo.attempts {
		assert.Equal(t, report.RunID, a.SessionID)
		assert.Equal(t, "model:mock", a.Source)
		assert.Equal(t, "inverse", a.Setting)
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	mock := llm.NewMockProvider()
	mock.Respond = func(req llm.Request) llm.MockResponse {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return answerByQuestion(req)
	}

	var samples []dataset.Sample
	for i := 0; i < 20; i++ {
		samples = append(samples, sample("s", "t", "right"))
	}

	var seen atomic.Int32
	r := NewRunner(predict.New(mock, predict.DefaultConfig()), Options{
		Concurrency: 2,
		OnResult:    func(Result) { seen.Add(1) },
	})
	report, err := r.Run(context.Background(), samples)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Correct)
	assert.Equal(t, int32(20), seen.Load())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	mock := llm.NewMockProvider()
	mock.Respond = func(req llm.Request) llm.MockResponse {
		if calls.Add(1) == 3 {
			cancel()
		}
		return answerByQuestion(req)
	}

	var samples []dataset.Sample
	for i := 0; i < 50; i++ {
		samples = append(samples, sample("s", "t", "right"))
	}

	r := NewRunner(predict.New(mock, predict.DefaultConfig()), Options{Concurrency: 1})
	_, err := r.Run(ctx, samples)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(50))
}

func TestRun_Empty(t *testing.T) {
	r := NewRunner(predict.New(llm.NewMockProvider(), predict.DefaultConfig()), Options{})
	report, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Zero(t, report.Accuracy())
	assert.Empty(t, report.ByTask)
}

func TestNewRunner_DefaultConcurrency(t *testing.T) {
	r := NewRunner(predict.New(llm.NewMockProvider(), predict.DefaultConfig()), Options{Concurrency: -1})
	assert.Equal(t, DefaultConcurrency, r.opts.Concurrency)
}
