package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// attemptRepo implements AttemptRepo on the verify_attempts table.
type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) Append(ctx context.Context, data AttemptData) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(AttemptsTable.Name).
		Columns("sequence", "timestamp", "session_id", "sample_id", "task", "setting",
			"step_count", "source", "raw_input", "correct", "error_kind").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.SampleID, data.Task, data.Setting,
			data.StepCount, data.Source, data.RawInput, data.Correct, data.ErrorKind).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save verify attempt: %w", err)
	}
	return seqNum, nil
}

func (r *attemptRepo) List(ctx context.Context, opts QueryOpts) ([]Attempt, error) {
	sel := builder().
		Select("id", "sequence", "timestamp", "session_id", "sample_id", "task", "setting",
			"step_count", "source", "raw_input", "correct", "error_kind").
		From(entsql.Table(AttemptsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verify attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.Sequence, &a.Timestamp, &a.SessionID, &a.SampleID,
			&a.Task, &a.Setting, &a.StepCount, &a.Source, &a.RawInput, &a.Correct,
			&a.ErrorKind); err != nil {
			return nil, fmt.Errorf("scan verify attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) AccuracyBySource(ctx context.Context, opts QueryOpts) ([]SourceAccuracy, error) {
	sel := builder().
		Select("source", entsql.Count("*"), entsql.Sum("correct")).
		From(entsql.Table(AttemptsTable.Name)).
		GroupBy("source").
		OrderBy("source")
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt accuracy: %w", err)
	}
	defer rows.Close()

	var out []SourceAccuracy
	for rows.Next() {
		var (
			a       SourceAccuracy
			correct sql.NullInt64
		)
		if err := rows.Scan(&a.Source, &a.Attempts, &correct); err != nil {
			return nil, fmt.Errorf("scan attempt accuracy: %w", err)
		}
		a.Correct = int(correct.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}
