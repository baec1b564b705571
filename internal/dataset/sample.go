package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Setting is the world-modeling variant a sample belongs to.
type Setting string

const (
	SettingNone    Setting = ""
	SettingForward Setting = "forward"
	SettingInverse Setting = "inverse"
)

// Settings lists every setting in navigation order.
var Settings = []Setting{SettingNone, SettingForward, SettingInverse}

// ParseSetting maps a selector value to a Setting. The empty string,
// "all" and "none" select no setting.
func ParseSetting(s string) (Setting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "none":
		return SettingNone, nil
	case "forward":
		return SettingForward, nil
	case "inverse":
		return SettingInverse, nil
	default:
		return SettingNone, fmt.Errorf("unknown setting %q", s)
	}
}

// Label returns the display name of the setting.
func (s Setting) Label() string {
	if s == SettingNone {
		return "all"
	}
	return string(s)
}

// Sample is a single question/answer record from the dataset.
// Samples are immutable once loaded.
type Sample struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	TaskName    string            `json:"task_name"`
	KeyFrameIDs []json.RawMessage `json:"key_frame_ids"`
	Images      []string          `json:"images"`
	Question    string            `json:"question"`
	GTAnswer    Answer            `json:"gt_answer"`
}

// Setting derives the sample's setting from its type.
func (s Sample) Setting() Setting {
	switch {
	case strings.Contains(s.Type, "forward"):
		return SettingForward
	case strings.Contains(s.Type, "inverse"):
		return SettingInverse
	default:
		return SettingNone
	}
}

// StepCount is the number of key frames; 0 when the field is absent.
func (s Sample) StepCount() int {
	return len(s.KeyFrameIDs)
}

// Answer is a ground-truth answer. Most samples carry a sequence of
// integers; a bare number is kept as a scalar and never equals a sequence.
type Answer struct {
	Values []int
	Scalar bool
}

// Seq builds a sequence answer.
func Seq(values ...int) Answer {
	return Answer{Values: values}
}

// UnmarshalJSON accepts an array of integers, a single integer or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	switch {
	case r.IsArray():
		elems := r.Array()
		values := make([]int, 0, len(elems))
		for i, e := range elems {
			n, ok := Integral(e)
			if !ok {
				return fmt.Errorf("gt_answer[%d]: %s is not an integer", i, e.Raw)
			}
			values = append(values, n)
		}
		*a = Answer{Values: values}
	case r.Type == gjson.Number:
		n, ok := Integral(r)
		if !ok {
			return fmt.Errorf("gt_answer: %s is not an integer", r.Raw)
		}
		*a = Answer{Values: []int{n}, Scalar: true}
	case r.Type == gjson.Null:
		*a = Answer{}
	default:
		return fmt.Errorf("gt_answer: unsupported value %s", r.Raw)
	}
	return nil
}

// MarshalJSON writes the answer back in its original shape.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Scalar && len(a.Values) == 1 {
		return []byte(strconv.Itoa(a.Values[0])), nil
	}
	if a.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Values)
}

func (a Answer) String() string {
	b, _ := a.MarshalJSON()
	return string(b)
}

// Equal reports whether the sequence matches exactly, element by element.
func (a Answer) Equal(values []int) bool {
	if a.Scalar || len(a.Values) != len(values) {
		return false
	}
	for i, v := range values {
		if a.Values[i] != v {
			return false
		}
	}
	return true
}

// Integral returns the integer value of a JSON number. Integral floats
// such as 2.0 qualify; anything else does not.
func Integral(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	if math.IsInf(r.Num, 0) || math.IsNaN(r.Num) || r.Num != math.Trunc(r.Num) {
		return 0, false
	}
	if r.Num > math.MaxInt32 || r.Num < math.MinInt32 {
		return 0, false
	}
	return int(r.Num), true
}
