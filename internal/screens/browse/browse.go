package browse

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/logging"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/router"
	"github.com/abhisek/wmview/internal/screen"
	"github.com/abhisek/wmview/internal/screens/history"
	"github.com/abhisek/wmview/internal/store"
	"github.com/abhisek/wmview/internal/ui/components"
	"github.com/abhisek/wmview/internal/ui/layout"
	"github.com/abhisek/wmview/internal/verify"
	"github.com/abhisek/wmview/internal/viewer"
)

// snapshotsKept bounds the position snapshots left after a save.
const snapshotsKept = 5

// snapshotVersion is written into every saved position.
const snapshotVersion = 1

// UserSource is the attempt source for answers typed into the viewer.
const UserSource = "user"

// Options configures the browse screen. Only Source is required.
type Options struct {
	Source string

	// Load reads the dataset; dataset.Load when nil.
	Load func(ctx context.Context, src string) (*dataset.Dataset, error)

	Attempts  store.AttemptRepo
	Snapshots store.SnapshotRepo
	Predictor *predict.Predictor

	// Resume restores the newest saved position for Source.
	Resume bool
	Logger *zap.Logger
}

// BrowseScreen is the dataset viewer. It forwards key presses to the
// viewer handlers and renders the returned view state.
type BrowseScreen struct {
	opts   Options
	logger *zap.Logger

	session viewer.Session
	view    viewer.ViewState
	loaded  bool
	loadErr bool

	input components.TextInput

	predicting bool
	// predictSeq numbers prediction requests; only the newest is accepted.
	predictSeq int
	prediction *predict.Prediction
	predictErr string
}

var _ screen.Screen = (*BrowseScreen)(nil)
var _ screen.KeyHintProvider = (*BrowseScreen)(nil)
var _ screen.StatusProvider = (*BrowseScreen)(nil)
var _ screen.Closer = (*BrowseScreen)(nil)

// New creates a BrowseScreen.
func New(opts Options) *BrowseScreen {
	if opts.Load == nil {
		opts.Load = dataset.Load
	}
	return &BrowseScreen{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		input:  components.NewTextInput("[1, 2, 3]", 64),
	}
}

func (s *BrowseScreen) Init() tea.Cmd {
	return s.loadDataset()
}

func (s *BrowseScreen) Title() string {
	return "Browse"
}

// Status shows the position in the filtered list.
func (s *BrowseScreen) Status() string {
	if !s.loaded || s.view.Empty() {
		return ""
	}
	return positionLabel(s.view)
}

func (s *BrowseScreen) KeyHints() []layout.KeyHint {
	if !s.loaded {
		return []layout.KeyHint{{Key: "q", Description: "Quit"}}
	}
	if s.input.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Verify"},
			{Key: "Esc", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
		{Key: "s", Description: "Setting"},
		{Key: "t/T", Description: "Task"},
		{Key: "c/C", Description: "Steps"},
		{Key: "r", Description: "Reveal"},
		{Key: "a", Description: "Answer"},
		{Key: "m", Description: "Model"},
		{Key: "h", Description: "History"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *BrowseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case datasetLoadedMsg:
		return s.handleLoaded(msg)

	case predictionMsg:
		return s.handlePrediction(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// loadDataset reads the dataset and, when resuming, the newest snapshot
// taken over the same source.
func (s *BrowseScreen) loadDataset() tea.Cmd {
	opts := s.opts
	return func() tea.Msg {
		ctx := context.Background()

		ds, err := opts.Load(ctx, opts.Source)
		if err != nil {
			return datasetLoadedMsg{Err: err}
		}

		msg := datasetLoadedMsg{Dataset: ds}
		if opts.Resume && opts.Snapshots != nil {
			snap, err := opts.Snapshots.Latest(ctx)
			if err == nil && snap != nil && snap.Data.Dataset == ds.Source {
				msg.Position = &viewer.Position{
					Setting:  snap.Data.Setting,
					Task:     snap.Data.Task,
					Steps:    snap.Data.Steps,
					SampleID: snap.Data.SampleID,
				}
			}
		}
		return msg
	}
}

func (s *BrowseScreen) handleLoaded(msg datasetLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.loadErr = true
		s.logger.Error("failed to load dataset", zap.String("source", s.opts.Source), zap.Error(msg.Err))
		return s, nil
	}

	s.session = viewer.New(msg.Dataset)
	if msg.Position != nil {
		s.session = s.session.Restore(*msg.Position)
	}
	s.view = s.session.View()
	s.logger.Info("dataset loaded",
		zap.String("source", msg.Dataset.Source),
		zap.Int("samples", msg.Dataset.Len()),
		zap.String("session_id", s.session.ID()),
		zap.Bool("resumed", msg.Position != nil))
	return s, nil
}

func (s *BrowseScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if !s.loaded || s.loadErr {
		if key == "q" {
			return s, quit
		}
		return s, nil
	}

	if s.input.Focused() {
		switch key {
		case "enter":
			s.submitAnswer()
			return s, nil
		case "esc":
			s.input.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch key {
	case "right", "n":
		s.apply(s.session.OnNext())
	case "left", "p":
		s.apply(s.session.OnPrevious())
	case "s":
		s.apply(s.session.OnSettingChange(s.view.CycleSetting()))
	case "t":
		s.apply(s.session.OnTaskChange(s.view.CycleTask(1)))
	case "T":
		s.apply(s.session.OnTaskChange(s.view.CycleTask(-1)))
	case "c":
		s.apply(s.session.OnStepChange(s.view.CycleSteps(1)))
	case "C":
		s.apply(s.session.OnStepChange(s.view.CycleSteps(-1)))
	case "r":
		s.apply(s.session.OnToggleReveal())
	case "a", "enter":
		if !s.view.Empty() {
			return s, s.input.Focus()
		}
	case "m":
		return s, s.requestPrediction()
	case "h":
		if !s.view.Empty() {
			attempts, sample := s.opts.Attempts, *s.view.Sample
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(attempts, sample)}
			}
		}
	case "q":
		return s, quit
	}
	return s, nil
}

// apply installs the result of a viewer handler. Moving to another sample
// drops everything tied to the previous one.
func (s *BrowseScreen) apply(next viewer.Session, v viewer.ViewState) {
	if !sameSample(v, s.view) {
		s.input.Reset()
		s.prediction = nil
		s.predictErr = ""
		s.predicting = false
		s.predictSeq++
	}
	s.session, s.view = next, v
}

// submitAnswer verifies the typed answer and journals the attempt.
func (s *BrowseScreen) submitAnswer() {
	raw := s.input.Value()
	if raw == "" || s.view.Empty() {
		return
	}
	s.apply(s.session.OnVerify(raw))

	out := s.view.Outcome
	s.input.Submit(out != nil && out.Err == nil && out.Result.Correct)
	if out == nil {
		return
	}

	sample := *s.view.Sample
	s.journal(store.AttemptData{
		SessionID: s.session.ID(),
		SampleID:  sample.ID,
		Task:      sample.TaskName,
		Setting:   string(sample.Setting()),
		StepCount: sample.StepCount(),
		Source:    UserSource,
		RawInput:  raw,
		Correct:   out.Err == nil && out.Result.Correct,
		ErrorKind: verify.Kind(out.Err),
	})
}

func (s *BrowseScreen) requestPrediction() tea.Cmd {
	if s.view.Empty() || s.predicting {
		return nil
	}
	if s.opts.Predictor == nil {
		s.predictErr = "No model configured. Set llm.provider in the config file."
		return nil
	}

	s.predicting = true
	s.prediction = nil
	s.predictErr = ""
	s.predictSeq++

	p := s.opts.Predictor
	seq, sample := s.predictSeq, *s.view.Sample
	return func() tea.Msg {
		pred, err := p.Predict(context.Background(), sample)
		return predictionMsg{Seq: seq, SampleID: sample.ID, Prediction: pred, Err: err}
	}
}

func (s *BrowseScreen) handlePrediction(msg predictionMsg) (screen.Screen, tea.Cmd) {
	// The user may have moved on while the model was thinking, or asked
	// again after coming back to this sample.
	if msg.Seq != s.predictSeq || msg.SampleID != sampleID(s.view) {
		return s, nil
	}
	s.predicting = false

	if msg.Err != nil {
		s.logger.Warn("prediction failed", zap.String("sample_id", msg.SampleID), zap.Error(msg.Err))
		var rl *llm.ErrRateLimit
		switch {
		case errors.As(msg.Err, &rl):
			s.predictErr = "Model is rate limited. Try again shortly."
		case llm.IsUnavailable(msg.Err):
			s.predictErr = "Model unavailable."
		default:
			s.predictErr = "Model returned an unusable answer."
		}
		return s, nil
	}

	s.prediction = msg.Prediction
	s.journal(msg.Prediction.Attempt(s.session.ID(), *s.view.Sample))
	return s, nil
}

func (s *BrowseScreen) journal(a store.AttemptData) {
	if s.opts.Attempts == nil {
		return
	}
	if _, err := s.opts.Attempts.Append(context.Background(), a); err != nil {
		s.logger.Warn("failed to journal attempt", zap.String("sample_id", a.SampleID), zap.Error(err))
	}
}

// Close saves the current position so --resume can restore it.
func (s *BrowseScreen) Close() {
	if !s.loaded || s.loadErr || s.opts.Snapshots == nil {
		return
	}
	ctx := context.Background()
	pos := s.session.Position()
	snap := &store.Snapshot{
		Data: store.SnapshotData{
			Version:  snapshotVersion,
			Dataset:  s.session.Dataset().Source,
			Setting:  pos.Setting,
			Task:     pos.Task,
			Steps:    pos.Steps,
			SampleID: pos.SampleID,
		},
	}
	if err := s.opts.Snapshots.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to save position", zap.Error(err))
		return
	}
	if err := s.opts.Snapshots.Prune(ctx, snapshotsKept); err != nil {
		s.logger.Warn("failed to prune snapshots", zap.Error(err))
	}
}

func quit() tea.Msg { return router.QuitMsg{} }

func sameSample(a, b viewer.ViewState) bool {
	return sampleID(a) == sampleID(b) && a.Index == b.Index && a.Total == b.Total
}

func sampleID(v viewer.ViewState) string {
	if v.Sample == nil {
		return ""
	}
	return v.Sample.ID
}
