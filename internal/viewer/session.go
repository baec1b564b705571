// Package viewer holds the render-independent state of a viewing session:
// the filter selectors, the derived option lists, the position in the
// filtered list and the reveal/verification state of the current sample.
//
// Session is a value. Every transition returns a new Session and leaves
// the receiver untouched, so handlers can be tested without a UI.
package viewer

import (
	"slices"

	"github.com/google/uuid"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/verify"
)

// Outcome is the result of the last verification on the current sample.
type Outcome struct {
	Input  string
	Result verify.Result
	Err    error
}

// Session is the complete viewer state.
type Session struct {
	id       string
	ds       *dataset.Dataset
	filter   Filter
	steps    []int // available step lengths for filter.Setting + filter.Task
	filtered []int // load positions matching filter
	index    int
	revealed bool
	outcome  *Outcome
}

// New starts a session over ds with no filters applied.
func New(ds *dataset.Dataset) Session {
	s := Session{
		id:     uuid.New().String(),
		ds:     ds,
		filter: NoFilter(),
	}
	return s.recomputeSteps().refilter()
}

// ID identifies the session in the attempt journal.
func (s Session) ID() string { return s.id }

// Dataset returns the underlying dataset.
func (s Session) Dataset() *dataset.Dataset { return s.ds }

// Filter returns the active filter.
func (s Session) Filter() Filter { return s.filter }

// Index returns the position within the filtered list.
func (s Session) Index() int { return s.index }

// Len returns the length of the filtered list.
func (s Session) Len() int { return len(s.filtered) }

// StepLengths returns the step counts available for the current setting
// and task.
func (s Session) StepLengths() []int { return s.steps }

// Revealed reports whether the ground truth is shown.
func (s Session) Revealed() bool { return s.revealed }

// Outcome returns the last verification outcome, or nil.
func (s Session) Outcome() *Outcome { return s.outcome }

// Current returns the sample under the cursor. ok is false when the
// filtered list is empty.
func (s Session) Current() (dataset.Sample, bool) {
	if s.index < 0 || s.index >= len(s.filtered) {
		return dataset.Sample{}, false
	}
	return s.ds.At(s.filtered[s.index]), true
}

// WithSetting selects a setting. The step count is cleared and the cursor
// returns to the first sample.
func (s Session) WithSetting(setting dataset.Setting) Session {
	s.filter.Setting = setting
	s.filter.Steps = AnyStep
	return s.recomputeSteps().refilter().seekStart()
}

// WithTask selects a task; "" selects every task. Unknown names are
// treated as "". The step count is cleared and the cursor returns to the
// first sample.
func (s Session) WithTask(task string) Session {
	if task != "" && !slices.Contains(s.ds.TaskNames(), task) {
		task = ""
	}
	s.filter.Task = task
	s.filter.Steps = AnyStep
	return s.recomputeSteps().refilter().seekStart()
}

// WithSteps selects a step count. A value that is not available for the
// current setting and task clears the selection.
func (s Session) WithSteps(n int) Session {
	if !slices.Contains(s.steps, n) {
		n = AnyStep
	}
	s.filter.Steps = n
	return s.refilter().seekStart()
}

// ToggleReveal shows or hides the ground truth.
func (s Session) ToggleReveal() Session {
	s.revealed = !s.revealed
	return s
}

// Verify checks raw against the current sample's ground truth and records
// the outcome. Without a current sample the session is returned as is.
func (s Session) Verify(raw string) Session {
	sample, ok := s.Current()
	if !ok {
		return s
	}
	res, err := verify.Verify(raw, sample.GTAnswer)
	s.outcome = &Outcome{Input: raw, Result: res, Err: err}
	return s
}

// Seek moves the cursor to the sample with the given ID if it is in the
// filtered list; otherwise the session is returned as is.
func (s Session) Seek(sampleID string) Session {
	pos, ok := s.ds.IndexOf(sampleID)
	if !ok {
		return s
	}
	i := slices.Index(s.filtered, pos)
	if i < 0 || i == s.index {
		return s
	}
	s.index = i
	return s.clearSampleState()
}

func (s Session) recomputeSteps() Session {
	s.steps = StepLengths(s.ds.Samples(), s.filter)
	return s
}

func (s Session) refilter() Session {
	s.filtered = ApplyFilter(s.ds.Samples(), s.filter)
	return s
}

func (s Session) seekStart() Session {
	s.index = 0
	return s.clearSampleState()
}

func (s Session) seekEnd() Session {
	s.index = max(len(s.filtered)-1, 0)
	return s.clearSampleState()
}

// clearSampleState hides the answer and drops the verification outcome;
// both belong to the sample that was under the cursor.
func (s Session) clearSampleState() Session {
	s.revealed = false
	s.outcome = nil
	return s
}
