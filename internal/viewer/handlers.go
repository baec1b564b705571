package viewer

import (
	"strconv"
	"strings"

	"github.com/abhisek/wmview/internal/dataset"
)

// The handlers below are the entry points for a rendering layer. Each
// takes a raw control value, applies the transition and returns the new
// session with its view state.

// OnSettingChange handles the setting selector. Unknown values leave the
// session unchanged.
func (s Session) OnSettingChange(value string) (Session, ViewState) {
	setting, err := dataset.ParseSetting(value)
	if err != nil {
		return s, s.View()
	}
	next := s.WithSetting(setting)
	return next, next.View()
}

// OnTaskChange handles the task selector; "" or "all" selects every task.
func (s Session) OnTaskChange(value string) (Session, ViewState) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		value = ""
	}
	next := s.WithTask(value)
	return next, next.View()
}

// OnStepChange handles the step-count selector; "" or "all" clears it.
// Non-numeric values leave the session unchanged.
func (s Session) OnStepChange(value string) (Session, ViewState) {
	value = strings.TrimSpace(value)
	n := AnyStep
	if value != "" && !strings.EqualFold(value, "all") {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return s, s.View()
		}
		n = parsed
	}
	next := s.WithSteps(n)
	return next, next.View()
}

// OnNext handles the next control.
func (s Session) OnNext() (Session, ViewState) {
	next := s.Next()
	return next, next.View()
}

// OnPrevious handles the previous control.
func (s Session) OnPrevious() (Session, ViewState) {
	next := s.Prev()
	return next, next.View()
}

// OnToggleReveal handles the reveal/hide control.
func (s Session) OnToggleReveal() (Session, ViewState) {
	next := s.ToggleReveal()
	return next, next.View()
}

// OnVerify handles an answer submission.
func (s Session) OnVerify(raw string) (Session, ViewState) {
	next := s.Verify(raw)
	return next, next.View()
}

// CycleSetting returns the selector value after the current setting,
// wrapping around.
func (v ViewState) CycleSetting() string {
	i := indexOf(dataset.Settings, v.Setting)
	return string(dataset.Settings[(i+1)%len(dataset.Settings)])
}

// CycleTask returns the task selector value dir steps away from the
// current one, treating "all" as the first option and wrapping around.
func (v ViewState) CycleTask(dir int) string {
	opts := append([]string{""}, v.TaskNames...)
	return opts[wrap(indexOf(opts, v.Task)+dir, len(opts))]
}

// CycleSteps is CycleTask for the step-count selector.
func (v ViewState) CycleSteps(dir int) string {
	opts := make([]string, 0, len(v.StepLengths)+1)
	opts = append(opts, "")
	cur := 0
	for i, n := range v.StepLengths {
		opts = append(opts, strconv.Itoa(n))
		if n == v.Steps {
			cur = i + 1
		}
	}
	return opts[wrap(cur+dir, len(opts))]
}

// indexOf returns the position of x in xs, or 0 when absent.
func indexOf[T comparable](xs []T, x T) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
