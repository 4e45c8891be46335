package gate

import (
	"testing"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

func classicConfig() puzzle.Config {
	return puzzle.Config{Capacities: []int{8, 5, 3}, Target: 4}
}

func TestGateAcceptsLegalPour(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(classicConfig(), puzzle.State{8, 0, 0}, 0, 1)

	if decision.Action != ActionAccept {
		t.Fatalf("expected accept, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
	if decision.Quantity != 5 {
		t.Fatalf("expected predicted quantity 5, got %d", decision.Quantity)
	}
}

func TestGateRejectsOutOfRange(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(classicConfig(), puzzle.State{8, 0, 0}, 3, -1)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if !decision.Vetoed {
		t.Fatal("should be vetoed")
	}
	if len(decision.VetoSignals) != 2 {
		t.Fatalf("expected 2 veto signals, got %d", len(decision.VetoSignals))
	}
	for _, v := range decision.VetoSignals {
		if v.Type != VetoOutOfRange {
			t.Fatalf("expected VetoOutOfRange, got %s", v.Type)
		}
	}
}

func TestGateRejectsStateMismatch(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(classicConfig(), puzzle.State{8, 0}, 0, 1)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoStateMismatch {
		t.Fatalf("expected VetoStateMismatch, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateSelfPourIsNoOpByDefault(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(classicConfig(), puzzle.State{8, 0, 0}, 0, 0)

	if decision.Action != ActionNoOp {
		t.Fatalf("expected no_op, got %s", decision.Action)
	}
	if decision.Reason != "jar 1 poured into itself" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestGateSelfPourVetoedWhenConfigured(t *testing.T) {
	g := NewGate(GateConfig{RejectSelfPour: true})

	decision := g.Evaluate(classicConfig(), puzzle.State{8, 0, 0}, 1, 1)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoSelfPour {
		t.Fatalf("expected VetoSelfPour, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateNoOpReasons(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	cfg := classicConfig()

	tests := []struct {
		amounts  puzzle.State
		from, to int
		reason   string
	}{
		{puzzle.State{8, 0, 0}, 1, 0, "jar 2 is empty"},
		{puzzle.State{3, 5, 0}, 0, 1, "jar 2 is full"},
	}
	for _, tt := range tests {
		decision := g.Evaluate(cfg, tt.amounts, tt.from, tt.to)
		if decision.Action != ActionNoOp {
			t.Fatalf("%v %d->%d: expected no_op, got %s", tt.amounts, tt.from, tt.to, decision.Action)
		}
		if decision.Reason != tt.reason {
			t.Fatalf("expected reason %q, got %q", tt.reason, decision.Reason)
		}
	}
}
