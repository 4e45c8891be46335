package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// #region fixture-tests

// runFixture loads a fixture, replays it and fails on any mismatch.
func runFixture(t *testing.T, name string) []ReplayResult {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results := Replay(f.PuzzleConfig(), f.Start(), f.ToRequests(), f.Config.ToReplayConfig())
	for _, m := range f.Compare(results) {
		t.Errorf("%s: %s", name, m)
	}
	return results
}

// TestFixture_Classic replays the shortest 8/5/3 solution.
func TestFixture_Classic(t *testing.T) {
	results := runFixture(t, "classic_853.json")
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
}

// TestFixture_MixedSession covers no-ops and gate rejects between commits.
func TestFixture_MixedSession(t *testing.T) {
	runFixture(t, "mixed_session.json")
}

// TestFixture_CorruptStart covers eval rejection from an invalid archived state.
func TestFixture_CorruptStart(t *testing.T) {
	runFixture(t, "corrupt_start.json")
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// TestWriteFixture_RoundTrip builds a fixture from a run, writes it and
// replays the loaded copy with no mismatches.
func TestWriteFixture_RoundTrip(t *testing.T) {
	cfg := puzzle.Config{Capacities: []int{8, 5, 3}, Target: 4}
	requests := []Request{
		{StepID: "a", From: 0, To: 1},
		{StepID: "b", From: 2, To: 1},
		{StepID: "c", From: 1, To: 2},
	}
	f := NewFixture("round trip", cfg, puzzle.InitialFill(cfg.Capacities), requests, DefaultReplayConfig())

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	if loaded.ExpectTargetReached == nil || *loaded.ExpectTargetReached {
		t.Fatal("expected expect_target_reached=false")
	}
	if loaded.ExpectedResults[1].Action != ActionNoOp {
		t.Fatalf("expected step b to be a no-op, got %s", loaded.ExpectedResults[1].Action)
	}
	results := Replay(loaded.PuzzleConfig(), loaded.Start(), loaded.ToRequests(), loaded.Config.ToReplayConfig())
	if mismatches := loaded.Compare(results); len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %v", mismatches)
	}
}

// TestCompare_ReportsDrift verifies that a changed expectation is caught.
func TestCompare_ReportsDrift(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "classic_853.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	f.ExpectedResults[2].Action = ActionNoOp
	f.ExpectedResults[4].Amounts = []int{0, 0, 8}
	unreached := false
	f.ExpectTargetReached = &unreached

	results := Replay(f.PuzzleConfig(), f.Start(), f.ToRequests(), f.Config.ToReplayConfig())
	mismatches := f.Compare(results)
	if len(mismatches) != 3 {
		t.Fatalf("expected 3 mismatches, got %d: %v", len(mismatches), mismatches)
	}
	if mismatches[0].Index != 2 || mismatches[1].Index != 4 || mismatches[2].Index != -1 {
		t.Fatalf("unexpected mismatch order: %v", mismatches)
	}
}

// #endregion fixture-tests
