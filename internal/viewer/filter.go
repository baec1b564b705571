package viewer

import (
	"slices"

	"github.com/abhisek/wmview/internal/dataset"
)

// AnyStep is the Steps value that matches every step count.
const AnyStep = -1

// Filter selects samples along the setting > task > step hierarchy.
type Filter struct {
	// Setting restricts by derived setting; SettingNone matches all.
	Setting dataset.Setting

	// Task restricts by task name; "" matches all.
	Task string

	// Steps restricts by key frame count; AnyStep matches all.
	Steps int
}

// NoFilter matches every sample.
func NoFilter() Filter {
	return Filter{Steps: AnyStep}
}

// HasTask reports whether a task is selected.
func (f Filter) HasTask() bool { return f.Task != "" }

// HasSteps reports whether a step count is selected.
func (f Filter) HasSteps() bool { return f.Steps != AnyStep }

// Matches reports whether s satisfies all three dimensions.
func (f Filter) Matches(s dataset.Sample) bool {
	return f.matchesCategory(s) && (!f.HasSteps() || s.StepCount() == f.Steps)
}

func (f Filter) matchesCategory(s dataset.Sample) bool {
	if f.Setting != dataset.SettingNone && s.Setting() != f.Setting {
		return false
	}
	if f.HasTask() && s.TaskName != f.Task {
		return false
	}
	return true
}

// ApplyFilter returns the load positions of every matching sample, in
// load order.
func ApplyFilter(samples []dataset.Sample, f Filter) []int {
	var out []int
	for i, s := range samples {
		if f.Matches(s) {
			out = append(out, i)
		}
	}
	return out
}

// StepLengths returns the sorted distinct step counts among samples that
// match the filter's setting and task. The filter's own Steps is ignored.
func StepLengths(samples []dataset.Sample, f Filter) []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range samples {
		if !f.matchesCategory(s) {
			continue
		}
		n := s.StepCount()
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
