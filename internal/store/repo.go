package store

import (
	"context"
	"time"
)

// QueryOpts configures journal queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	SessionID string // exact match when set
	SampleID  string // exact match when set
	Source    string // exact match when set
	Purpose   string // LLM events only; exact match when set
}

// AttemptData describes one verification attempt.
type AttemptData struct {
	SessionID string
	SampleID  string
	Task      string
	Setting   string
	StepCount int

	// Source is "user" or "model:<model id>".
	Source string

	RawInput  string
	Correct   bool
	ErrorKind string
}

// Attempt is a journaled AttemptData.
type Attempt struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptData
}

// SourceAccuracy aggregates attempts for one source.
type SourceAccuracy struct {
	Source   string
	Attempts int
	Correct  int
}

// Rate returns Correct/Attempts, or 0 with no attempts.
func (a SourceAccuracy) Rate() float64 {
	if a.Attempts == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Attempts)
}

// AttemptRepo journals verification attempts.
type AttemptRepo interface {
	// Append records an attempt and returns its sequence number.
	Append(ctx context.Context, data AttemptData) (int64, error)

	// List returns matching attempts, newest first.
	List(ctx context.Context, opts QueryOpts) ([]Attempt, error)

	// AccuracyBySource groups matching attempts by source. Limit is ignored.
	AccuracyBySource(ctx context.Context, opts QueryOpts) ([]SourceAccuracy, error)
}

// SnapshotData captures the viewer position at a point in time.
type SnapshotData struct {
	Version  int    `json:"version"`
	Dataset  string `json:"dataset"`
	Setting  string `json:"setting"`
	Task     string `json:"task"`
	Steps    int    `json:"steps"`
	SampleID string `json:"sample_id"`
}

// Snapshot represents a saved viewer position.
type Snapshot struct {
	ID        int
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages viewer position snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a journaled LLMRequestEventData.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates token usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns recent LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
