package viewer

import (
	"strconv"
	"strings"

	"github.com/abhisek/wmview/internal/dataset"
)

// ViewState is a render-ready snapshot of a session.
type ViewState struct {
	SessionID string

	// Sample is nil when no sample matches the filters.
	Sample *dataset.Sample
	Index  int
	Total  int

	Setting dataset.Setting
	Task    string
	Steps   int

	TaskNames   []string
	StepLengths []int

	Revealed bool
	Outcome  *Outcome
}

// View builds the snapshot for the current state.
func (s Session) View() ViewState {
	v := ViewState{
		SessionID:   s.id,
		Index:       s.index,
		Total:       len(s.filtered),
		Setting:     s.filter.Setting,
		Task:        s.filter.Task,
		Steps:       s.filter.Steps,
		TaskNames:   s.ds.TaskNames(),
		StepLengths: s.steps,
		Revealed:    s.revealed,
		Outcome:     s.outcome,
	}
	if sample, ok := s.Current(); ok {
		v.Sample = &sample
	}
	return v
}

// Empty reports whether no sample matches the filters.
func (v ViewState) Empty() bool { return v.Sample == nil }

// TaskLabel is the task selector's display value.
func (v ViewState) TaskLabel() string {
	if v.Task == "" {
		return "all"
	}
	return v.Task
}

// StepsLabel is the step selector's display value.
func (v ViewState) StepsLabel() string {
	if v.Steps == AnyStep {
		return "all"
	}
	return strconv.Itoa(v.Steps)
}

// Position is the serializable part of a session: enough to restore the
// filters and the cursor after a restart.
type Position struct {
	Setting  string `json:"setting"`
	Task     string `json:"task"`
	Steps    int    `json:"steps"`
	SampleID string `json:"sample_id"`
}

// Position captures the current filters and sample.
func (s Session) Position() Position {
	p := Position{
		Setting: string(s.filter.Setting),
		Task:    s.filter.Task,
		Steps:   s.filter.Steps,
	}
	if sample, ok := s.Current(); ok {
		p.SampleID = sample.ID
	}
	return p
}

// Restore replays a saved position through the regular handlers, so any
// part that no longer applies to the dataset is dropped.
func (s Session) Restore(p Position) Session {
	setting, err := dataset.ParseSetting(p.Setting)
	if err != nil {
		setting = dataset.SettingNone
	}
	s = s.WithSetting(setting).WithTask(strings.TrimSpace(p.Task))
	if p.Steps != AnyStep {
		s = s.WithSteps(p.Steps)
	}
	if p.SampleID != "" {
		s = s.Seek(p.SampleID)
	}
	return s
}
