package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultSource is the well-known dataset location, relative to the
// working directory.
const DefaultSource = "data/samples.jsonl"

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 16 << 20

// LoadError describes why a dataset could not be read.
type LoadError struct {
	Source string
	Line   int // 0 when the failure is not tied to a line
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a JSONL dataset from a local path or an http(s) URL.
func Load(ctx context.Context, src string) (*Dataset, error) {
	if src == "" {
		src = DefaultSource
	}

	var r io.ReadCloser
	if isURL(src) {
		body, err := fetch(ctx, src)
		if err != nil {
			return nil, &LoadError{Source: src, Err: err}
		}
		r = body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, &LoadError{Source: src, Err: err}
		}
		r = f
	}
	defer r.Close()

	return Parse(r, src)
}

// Parse decodes newline-delimited sample records. Blank lines are skipped;
// any other undecodable line fails the whole load.
func Parse(r io.Reader, source string) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var samples []Sample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if err := validateRecord(line); err != nil {
			return nil, &LoadError{Source: source, Line: lineNo, Err: err}
		}

		var s Sample
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, &LoadError{Source: source, Line: lineNo, Err: err}
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	return New(source, samples), nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

var httpClient = &http.Client{Timeout: 2 * time.Minute}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
