package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"verify_attempts", "llm_request_events", "view_snapshots", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AttemptRepo().Append(ctx, AttemptData{SampleID: "a", Source: "user"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	seq, err := s.AttemptRepo().Append(ctx, AttemptData{SampleID: "b", Source: "user"})
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if seq != 2 {
		t.Errorf("sequence after reopen = %d, want 2", seq)
	}

	got, err := s.AttemptRepo().List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("attempts after reopen = %d, want 2", len(got))
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAttemptAppendAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	attempts := []AttemptData{
		{SessionID: "s1", SampleID: "f1", Task: "pour", Setting: "forward", StepCount: 2, Source: "user", RawInput: "[1,2]", Correct: true},
		{SessionID: "s1", SampleID: "f1", Task: "pour", Setting: "forward", StepCount: 2, Source: "user", RawInput: "[2", ErrorKind: "malformed"},
		{SessionID: "s2", SampleID: "i1", Task: "stack", Setting: "inverse", StepCount: 3, Source: "model:mock", RawInput: "[3,2,1]", Correct: true},
	}
	for i, a := range attempts {
		seq, err := repo.Append(ctx, a)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if seq != int64(i+1) {
			t.Errorf("append %d sequence = %d, want %d", i, seq, i+1)
		}
	}

	all, err := repo.List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list len = %d, want 3", len(all))
	}
	if all[0].SampleID != "i1" || all[2].RawInput != "[1,2]" {
		t.Errorf("list not newest first: %+v", all)
	}
	if !all[2].Correct || all[1].Correct {
		t.Errorf("correct flags not round-tripped: %+v", all)
	}
	if all[1].ErrorKind != "malformed" {
		t.Errorf("error kind = %q, want malformed", all[1].ErrorKind)
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	bySample, err := repo.List(ctx, QueryOpts{SampleID: "f1", Limit: 1})
	if err != nil {
		t.Fatalf("list by sample: %v", err)
	}
	if len(bySample) != 1 || bySample[0].Sequence != 2 {
		t.Errorf("list by sample = %+v, want only sequence 2", bySample)
	}

	bySession, err := repo.List(ctx, QueryOpts{SessionID: "s1", After: 1})
	if err != nil {
		t.Fatalf("list by session: %v", err)
	}
	if len(bySession) != 1 || bySession[0].Sequence != 2 {
		t.Errorf("list by session = %+v, want only sequence 2", bySession)
	}
}

func TestAttemptAccuracyBySource(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	for _, a := range []AttemptData{
		{SampleID: "a", Source: "user", Correct: true},
		{SampleID: "a", Source: "user", Correct: false},
		{SampleID: "b", Source: "user", Correct: true},
		{SampleID: "a", Source: "model:mock", Correct: false},
	} {
		if _, err := repo.Append(ctx, a); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.AccuracyBySource(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("sources = %d, want 2", len(got))
	}
	if got[0].Source != "model:mock" || got[0].Attempts != 1 || got[0].Correct != 0 {
		t.Errorf("model accuracy = %+v", got[0])
	}
	if got[1].Source != "user" || got[1].Attempts != 3 || got[1].Correct != 2 {
		t.Errorf("user accuracy = %+v", got[1])
	}

	got, err = repo.AccuracyBySource(ctx, QueryOpts{SampleID: "a"})
	if err != nil {
		t.Fatalf("accuracy by sample: %v", err)
	}
	if len(got) != 2 || got[1].Attempts != 2 || got[1].Correct != 1 {
		t.Errorf("accuracy by sample = %+v", got)
	}
	if rate := got[1].Rate(); rate != 0.5 {
		t.Errorf("rate = %v, want 0.5", rate)
	}
}

func TestLLMRequestEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "predict",
		InputTokens: 10, OutputTokens: 5, LatencyMs: 12, Success: true,
		RequestBody: "[user]\nwhich order?", ResponseBody: `{"answer":[1,2]}`,
	})
	if err != nil {
		t.Fatalf("append ok: %v", err)
	}
	err = repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m2", Purpose: "eval", LatencyMs: 30, ErrorMessage: "boom",
	})
	if err != nil {
		t.Fatalf("append failure: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Success || events[0].ErrorMessage != "boom" {
		t.Errorf("newest event = %+v", events[0])
	}
	if !events[1].Success || events[1].InputTokens != 10 || events[1].LatencyMs != 12 {
		t.Errorf("oldest event = %+v", events[1])
	}

	evalOnly, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "eval"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(evalOnly) != 1 || evalOnly[0].Model != "m2" {
		t.Errorf("eval events = %+v", evalOnly)
	}

	e, err := repo.GetLLMEvent(ctx, events[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != `{"answer":[1,2]}` {
		t.Errorf("get = %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, d := range []LLMRequestEventData{
		{Model: "m1", Purpose: "predict", InputTokens: 10, OutputTokens: 2, LatencyMs: 10, Success: true},
		{Model: "m1", Purpose: "predict", InputTokens: 20, OutputTokens: 4, LatencyMs: 30, Success: true},
		{Model: "m2", Purpose: "eval", InputTokens: 5, OutputTokens: 1, LatencyMs: 7, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	p := byPurpose[1]
	if p.Purpose != "predict" || p.Calls != 2 || p.InputTokens != 30 || p.OutputTokens != 6 || p.AvgLatencyMs != 20 {
		t.Errorf("predict usage = %+v", p)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "m1" || byModel[0].Calls != 2 || byModel[1].InputTokens != 5 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().UTC().Truncate(time.Second)
	err = repo.Save(ctx, &Snapshot{
		Timestamp: now,
		Data: SnapshotData{
			Version: 1, Dataset: "data/samples.jsonl",
			Setting: "forward", Task: "pour", Steps: 3, SampleID: "f2",
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Data.SampleID != "f2" || snap.Data.Steps != 3 || snap.Data.Setting != "forward" {
		t.Errorf("data = %+v", snap.Data)
	}
	if !snap.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", snap.Timestamp, now)
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: i + 1},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Data.Version != 3 {
		t.Errorf("data.version = %d, want 3", snap.Data.Version)
	}
}

func countSnapshots(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM view_snapshots").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := repo.Save(ctx, &Snapshot{Data: SnapshotData{Version: i + 1}}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	// Prune to keep 5.
	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n := countSnapshots(t, s); n != 5 {
		t.Errorf("remaining snapshots = %d, want 5", n)
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Data.Version != 7 {
		t.Errorf("latest version = %d, want 7", snap.Data.Version)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.Save(ctx, &Snapshot{Data: SnapshotData{Version: 1}}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	// Prune with keep=5 should be a no-op.
	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n := countSnapshots(t, s); n != 2 {
		t.Errorf("remaining snapshots = %d, want 2", n)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("WMVIEW_DB", filepath.Join(dir, "env", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("env path: %v", err)
	}
	if p != filepath.Join(dir, "env", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("WMVIEW_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("xdg path: %v", err)
	}
	if p != filepath.Join(dir, "wmview", "wmview.db") {
		t.Errorf("path = %q", p)
	}
}
