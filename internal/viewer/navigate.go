package viewer

import (
	"slices"

	"github.com/abhisek/wmview/internal/dataset"
)

// Navigation treats setting > task > step > item as one ordered sequence.
// Paging past either end of the filtered list moves to the adjacent
// category, skipping categories with no samples. At the global ends the
// move is a no-op.

// Next advances to the next sample, crossing into the next non-empty
// category at the end of the list.
func (s Session) Next() Session {
	if s.index < len(s.filtered)-1 {
		s.index++
		return s.clearSampleState()
	}
	return s.moveToNextCategory()
}

// Prev steps back to the previous sample, crossing into the last sample
// of the previous non-empty category at the start of the list.
func (s Session) Prev() Session {
	if s.index > 0 && s.index < len(s.filtered) {
		s.index--
		return s.clearSampleState()
	}
	return s.moveToPreviousCategory()
}

func (s Session) moveToNextCategory() Session {
	cur := s
	for {
		next, ok := cur.nextCategory()
		if !ok {
			return s
		}
		if len(next.filtered) > 0 {
			return next.seekStart()
		}
		cur = next
	}
}

func (s Session) moveToPreviousCategory() Session {
	cur := s
	for {
		prev, ok := cur.prevCategory()
		if !ok {
			return s
		}
		if len(prev.filtered) > 0 {
			return prev.seekEnd()
		}
		cur = prev
	}
}

// nextCategory moves one category forward: next step count, else next
// task, else next setting. Each move strictly increases the
// (setting, task, step) position, so repeated calls terminate.
func (s Session) nextCategory() (Session, bool) {
	if s.filter.HasSteps() {
		if i := slices.Index(s.steps, s.filter.Steps); i >= 0 && i+1 < len(s.steps) {
			s.filter.Steps = s.steps[i+1]
			return s.refilter(), true
		}
	}

	tasks := s.ds.TaskNames()
	if s.filter.HasTask() {
		if i := slices.Index(tasks, s.filter.Task); i >= 0 && i+1 < len(tasks) {
			return s.selectCategory(s.filter.Setting, tasks[i+1]), true
		}
	}

	if i := slices.Index(dataset.Settings, s.filter.Setting); i+1 < len(dataset.Settings) {
		task := ""
		if s.filter.HasTask() {
			task = tasks[0]
		}
		return s.selectCategory(dataset.Settings[i+1], task), true
	}

	return s, false
}

// prevCategory mirrors nextCategory.
func (s Session) prevCategory() (Session, bool) {
	if s.filter.HasSteps() {
		if i := slices.Index(s.steps, s.filter.Steps); i > 0 {
			s.filter.Steps = s.steps[i-1]
			return s.refilter(), true
		}
	}

	tasks := s.ds.TaskNames()
	if s.filter.HasTask() {
		if i := slices.Index(tasks, s.filter.Task); i > 0 {
			return s.selectCategory(s.filter.Setting, tasks[i-1]), true
		}
	}

	if i := slices.Index(dataset.Settings, s.filter.Setting); i > 0 {
		task := ""
		if s.filter.HasTask() {
			task = tasks[len(tasks)-1]
		}
		return s.selectCategory(dataset.Settings[i-1], task), true
	}

	return s, false
}

// selectCategory switches setting and task, clears the step count and
// recomputes everything derived from them. The cursor is left to the
// caller.
func (s Session) selectCategory(setting dataset.Setting, task string) Session {
	s.filter = Filter{Setting: setting, Task: task, Steps: AnyStep}
	return s.recomputeSteps().refilter()
}
