package dataset

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// sampleSchema constrains the shape of a record. Fields may be missing;
// when present they must have the right type.
var sampleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":            map[string]any{"type": "string"},
		"type":          map[string]any{"type": "string"},
		"task_name":     map[string]any{"type": "string"},
		"key_frame_ids": map[string]any{"type": "array"},
		"images": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"question": map[string]any{"type": "string"},
		"gt_answer": map[string]any{
			"type":  []any{"array", "integer", "null"},
			"items": map[string]any{"type": "integer"},
		},
	},
}

const sampleSchemaURL = "schema://wmview/sample.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func recordSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(sampleSchemaURL, sampleSchema); err != nil {
			compileErr = fmt.Errorf("add sample schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(sampleSchemaURL)
	})
	return compiled, compileErr
}

// validateRecord parses one JSONL line and checks it against the sample
// schema. A syntax error and a schema violation are both reported.
func validateRecord(line []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(line))
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	sch, err := recordSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}
