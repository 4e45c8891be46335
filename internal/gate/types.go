package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoOutOfRange    VetoType = "out_of_range"
	VetoStateMismatch VetoType = "state_mismatch"
	VetoSelfPour      VetoType = "self_pour"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig controls how strictly pour requests are screened.
type GateConfig struct {
	RejectSelfPour bool // veto from == to instead of treating it as a no-op
}

// DefaultGateConfig treats self-pours as harmless no-ops.
func DefaultGateConfig() GateConfig {
	return GateConfig{}
}

// #endregion gate-config

// #region gate-decision
// Decision actions.
const (
	ActionAccept = "accept"
	ActionNoOp   = "no_op"
	ActionReject = "reject"
)

// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "accept" | "no_op" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	Quantity    int          // predicted transfer when accepted
}

// #endregion gate-decision
