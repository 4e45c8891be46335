package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

func testConfig() puzzle.Config {
	return puzzle.Config{Capacities: []int{8, 5, 3}, Target: 4}
}

func TestEvalPassesLegalPour(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{8, 0, 0}, puzzle.State{3, 5, 0})

	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Reason)
	}
	if result.Reason != "all checks passed" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
	// jars + 3 per-jar bounds + volume + changed
	if len(result.Metrics) != 6 {
		t.Fatalf("expected 6 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalFailsOverflow(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{8, 0, 0}, puzzle.State{2, 0, 6})

	if result.Passed {
		t.Fatal("expected failure on overflow")
	}
	if !strings.Contains(result.Reason, "jar 3 holds 6") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvalFailsConservation(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{8, 0, 0}, puzzle.State{3, 4, 0})

	if result.Passed {
		t.Fatal("expected failure on lost volume")
	}
	if !strings.Contains(result.Reason, "total volume changed by -1") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvalFailsThreeJarChange(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{4, 2, 2}, puzzle.State{5, 1, 2})
	if !result.Passed {
		t.Fatalf("two-jar change should pass: %s", result.Reason)
	}

	result = h.Run(testConfig(), puzzle.State{4, 2, 2}, puzzle.State{6, 1, 1})
	if result.Passed {
		t.Fatal("expected failure when three jars change")
	}
}

func TestEvalMultipleFailuresCounted(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{8, 0, 0}, puzzle.State{9, 5, 3})

	if result.Passed {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(result.Reason, "eval failed: 3 checks:") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvalShapeMismatch(t *testing.T) {
	h := NewEvalHarness()
	result := h.Run(testConfig(), puzzle.State{8, 0, 0}, puzzle.State{8, 0})

	if result.Passed {
		t.Fatal("expected failure on shape mismatch")
	}
	if len(result.Metrics) != 1 {
		t.Fatalf("expected early return with 1 metric, got %d", len(result.Metrics))
	}
}
