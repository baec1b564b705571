package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Every journal row carries the global sequence so rows from different
// tables can be ordered against each other.

var (
	// AttemptsColumns holds the columns for the "verify_attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "sample_id", Type: field.TypeString},
		{Name: "task", Type: field.TypeString},
		{Name: "setting", Type: field.TypeString},
		{Name: "step_count", Type: field.TypeInt},
		{Name: "source", Type: field.TypeString},
		{Name: "raw_input", Type: field.TypeString, Size: 2147483647},
		{Name: "correct", Type: field.TypeBool},
		{Name: "error_kind", Type: field.TypeString, Default: ""},
	}
	// AttemptsTable holds the schema information for the "verify_attempts" table.
	AttemptsTable = &schema.Table{
		Name:       "verify_attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "verifyattempt_sample_id", Columns: []*schema.Column{AttemptsColumns[4]}},
			{Name: "verifyattempt_session_id", Columns: []*schema.Column{AttemptsColumns[3]}},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
	}

	// SnapshotsColumns holds the columns for the "view_snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	// SnapshotsTable holds the schema information for the "view_snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       "view_snapshots",
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		AttemptsTable,
		LLMRequestEventsTable,
		SnapshotsTable,
	}
)
