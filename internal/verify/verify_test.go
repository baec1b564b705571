package verify

import (
	"errors"
	"testing"

	"github.com/abhisek/wmview/internal/dataset"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		gt          dataset.Answer
		wantCorrect bool
		wantErr     error
	}{
		{"exact match", "[1,2,3]", dataset.Seq(1, 2, 3), true, nil},
		{"whitespace", "  [1, 2, 3]\n", dataset.Seq(1, 2, 3), true, nil},
		{"length mismatch", "[1,2]", dataset.Seq(1, 2, 3), false, nil},
		{"order matters", "[3,2,1]", dataset.Seq(1, 2, 3), false, nil},
		{"integral float", "[1.0,2]", dataset.Seq(1, 2), true, nil},
		{"bounds inclusive", "[1,10]", dataset.Seq(1, 10), true, nil},
		{"empty sequence", "[]", dataset.Seq(), true, nil},
		{"scalar ground truth", "[4]", dataset.Answer{Values: []int{4}, Scalar: true}, false, nil},
		{"not json", "not json", dataset.Seq(1), false, ErrMalformedInput},
		{"empty input", "", dataset.Seq(1), false, ErrMalformedInput},
		{"trailing garbage", "[1,2", dataset.Seq(1, 2), false, ErrMalformedInput},
		{"object", "{}", dataset.Seq(1), false, ErrNotASequence},
		{"bare number", "3", dataset.Seq(3), false, ErrNotASequence},
		{"string", `"[1]"`, dataset.Seq(1), false, ErrNotASequence},
		{"range before compare", "[1,11]", dataset.Seq(1, 11), false, ErrOutOfRange},
		{"zero", "[0]", dataset.Seq(0), false, ErrOutOfRange},
		{"fraction", "[1.5]", dataset.Seq(1), false, ErrOutOfRange},
		{"string element", `["1"]`, dataset.Seq(1), false, ErrOutOfRange},
		{"nested", "[[1]]", dataset.Seq(1), false, ErrOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Verify(tc.input, tc.gt)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Verify(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify(%q) unexpected error: %v", tc.input, err)
			}
			if got.Correct != tc.wantCorrect {
				t.Errorf("Verify(%q, %s).Correct = %v, want %v", tc.input, tc.gt, got.Correct, tc.wantCorrect)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrMalformedInput, "malformed"},
		{ErrNotASequence, "not_sequence"},
		{ErrOutOfRange, "out_of_range"},
		{errors.New("other"), "unknown"},
	}
	for _, tc := range tests {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}

	_, err := Verify("[99]", dataset.Seq(1))
	if Kind(err) != "out_of_range" {
		t.Errorf("Kind(wrapped) = %q, want out_of_range", Kind(err))
	}
}
