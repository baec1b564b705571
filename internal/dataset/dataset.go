package dataset

import "sort"

// Dataset is the full, immutable list of samples in load order.
type Dataset struct {
	// Source is the path or URL the samples were read from.
	Source string

	samples   []Sample
	taskNames []string
	byID      map[string]int
}

// New builds a Dataset and precomputes the sorted task names.
func New(source string, samples []Sample) *Dataset {
	byID := make(map[string]int, len(samples))
	seen := make(map[string]bool)
	var names []string
	for i, s := range samples {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = i
		}
		if s.TaskName != "" && !seen[s.TaskName] {
			seen[s.TaskName] = true
			names = append(names, s.TaskName)
		}
	}
	sort.Strings(names)

	return &Dataset{
		Source:    source,
		samples:   samples,
		taskNames: names,
		byID:      byID,
	}
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.samples)
}

// At returns the sample at position i in load order.
func (d *Dataset) At(i int) Sample {
	return d.samples[i]
}

// Samples returns all samples. Callers must not modify the slice.
func (d *Dataset) Samples() []Sample {
	return d.samples
}

// TaskNames returns the sorted distinct non-empty task names.
// Callers must not modify the slice.
func (d *Dataset) TaskNames() []string {
	return d.taskNames
}

// IndexOf returns the load position of the first sample with the given ID.
func (d *Dataset) IndexOf(id string) (int, bool) {
	i, ok := d.byID[id]
	return i, ok
}
