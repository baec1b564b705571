// Package verify checks a submitted answer against a sample's ground truth.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/wmview/internal/dataset"
)

// Answer elements must fall within [MinValue, MaxValue].
const (
	MinValue = 1
	MaxValue = 10
)

var (
	// ErrMalformedInput means the input is not valid JSON.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNotASequence means the input parsed but is not a JSON array.
	ErrNotASequence = errors.New("answer must be a sequence")

	// ErrOutOfRange means an element is not an integer in [1, 10].
	ErrOutOfRange = errors.New("answer values must be integers between 1 and 10")
)

// Result is the outcome of a successful verification. A wrong answer is
// still a successful verification.
type Result struct {
	Correct bool
	Answer  []int
}

// Verify parses raw as a JSON array of integers in [1, 10] and compares it
// element-wise with the ground truth. Range checks run before the
// comparison, so an out-of-range answer is an error even when it equals
// the ground truth.
func Verify(raw string, gt dataset.Answer) (Result, error) {
	answer, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Correct: gt.Equal(answer), Answer: answer}, nil
}

// Parse validates raw and returns the answer sequence.
func Parse(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: %q is not valid JSON", ErrMalformedInput, raw)
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: got %s", ErrNotASequence, kind(parsed))
	}

	elems := parsed.Array()
	answer := make([]int, 0, len(elems))
	for i, e := range elems {
		n, ok := dataset.Integral(e)
		if !ok || n < MinValue || n > MaxValue {
			return nil, fmt.Errorf("%w: element %d is %s", ErrOutOfRange, i, e.Raw)
		}
		answer = append(answer, n)
	}
	return answer, nil
}

// Kind names the error class for journaling: "malformed", "not_sequence",
// "out_of_range", or "" for nil.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "malformed"
	case errors.Is(err, ErrNotASequence):
		return "not_sequence"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	default:
		return "unknown"
	}
}

func kind(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}
