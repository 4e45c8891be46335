package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region types
// StateView is the session state returned by Setup, Reset and State.
type StateView struct {
	SessionID  string
	Capacities []int
	Target     int
	Amounts    []int
	Solved     bool
}

// PourView is the outcome of a Pour call.
type PourView struct {
	Quantity    int
	Description string
	Moved       bool
	Amounts     []int
	Solved      bool
}

// SolveView is the outcome of a Solve call.
type SolveView struct {
	Found    bool
	Explored int
	Actions  []puzzle.Action
}

// ApplyView is the outcome of an Apply call.
type ApplyView struct {
	Found   bool
	Applied int
	Amounts []int
	Solved  bool
}

// HistoryEntry is one history snapshot as seen by a client.
type HistoryEntry struct {
	ID          string
	Index       int
	Amounts     []int
	Description string
	CreatedAt   time.Time
}

// #endregion types

// #region client-struct
// Client wraps a gRPC connection to a puzzle server.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to the puzzle gRPC server at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection.
// Used for testing with an in-memory listener.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down the gRPC connection if the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// Setup starts a new session.
func (c *Client) Setup(ctx context.Context, capacities []int, target int) (StateView, error) {
	resp, err := c.invoke(ctx, "Setup", message(map[string]*structpb.Value{
		"capacities": intsValue(capacities),
		"target":     numberValue(target),
	}))
	if err != nil {
		return StateView{}, err
	}
	return stateView(resp)
}

// Pour moves liquid between 0-based jars.
func (c *Client) Pour(ctx context.Context, from, to int) (PourView, error) {
	resp, err := c.invoke(ctx, "Pour", message(map[string]*structpb.Value{
		"from": numberValue(from),
		"to":   numberValue(to),
	}))
	if err != nil {
		return PourView{}, err
	}
	q, err := intField(resp, "quantity")
	if err != nil {
		return PourView{}, fmt.Errorf("pour: %w", err)
	}
	amounts, err := intsField(resp, "amounts")
	if err != nil {
		return PourView{}, fmt.Errorf("pour: %w", err)
	}
	return PourView{
		Quantity:    q,
		Description: stringField(resp, "description"),
		Moved:       boolField(resp, "moved"),
		Amounts:     amounts,
		Solved:      boolField(resp, "solved"),
	}, nil
}

// Reset restores the initial fill.
func (c *Client) Reset(ctx context.Context) (StateView, error) {
	resp, err := c.invoke(ctx, "Reset", message(nil))
	if err != nil {
		return StateView{}, err
	}
	return stateView(resp)
}

// Solve asks the server for the shortest solution from the current state.
func (c *Client) Solve(ctx context.Context) (SolveView, error) {
	resp, err := c.invoke(ctx, "Solve", message(nil))
	if err != nil {
		return SolveView{}, err
	}
	explored, err := intField(resp, "explored")
	if err != nil {
		return SolveView{}, fmt.Errorf("solve: %w", err)
	}
	view := SolveView{Found: boolField(resp, "found"), Explored: explored, Actions: []puzzle.Action{}}
	for _, v := range resp.GetFields()["actions"].GetListValue().GetValues() {
		a, err := actionFromValue(v)
		if err != nil {
			return SolveView{}, fmt.Errorf("solve: %w", err)
		}
		view.Actions = append(view.Actions, a)
	}
	return view, nil
}

// Apply solves and replays the solution server-side. A negative pace uses
// the server default.
func (c *Client) Apply(ctx context.Context, pace time.Duration) (ApplyView, error) {
	fields := map[string]*structpb.Value{}
	if pace >= 0 {
		fields["pace_ms"] = numberValue(int(pace / time.Millisecond))
	}
	resp, err := c.invoke(ctx, "Apply", message(fields))
	if err != nil {
		return ApplyView{}, err
	}
	applied, err := intField(resp, "applied")
	if err != nil {
		return ApplyView{}, fmt.Errorf("apply: %w", err)
	}
	amounts, err := intsField(resp, "amounts")
	if err != nil {
		return ApplyView{}, fmt.Errorf("apply: %w", err)
	}
	return ApplyView{
		Found:   boolField(resp, "found"),
		Applied: applied,
		Amounts: amounts,
		Solved:  boolField(resp, "solved"),
	}, nil
}

// Rollback restores history entry index and returns it.
func (c *Client) Rollback(ctx context.Context, index int) (HistoryEntry, error) {
	resp, err := c.invoke(ctx, "Rollback", message(map[string]*structpb.Value{
		"index": numberValue(index),
	}))
	if err != nil {
		return HistoryEntry{}, err
	}
	entry, err := entryFromValue(resp.GetFields()["entry"])
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("rollback: %w", err)
	}
	return entry, nil
}

// State returns the server's current session state.
func (c *Client) State(ctx context.Context) (StateView, error) {
	resp, err := c.invoke(ctx, "State", message(nil))
	if err != nil {
		return StateView{}, err
	}
	return stateView(resp)
}

// History returns the server's history log.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	resp, err := c.invoke(ctx, "History", message(nil))
	if err != nil {
		return nil, err
	}
	values := resp.GetFields()["entries"].GetListValue().GetValues()
	entries := make([]HistoryEntry, 0, len(values))
	for _, v := range values {
		e, err := entryFromValue(v)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// #endregion calls

// #region helpers
func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out); err != nil {
		return nil, fmt.Errorf("%s: %w", strings.ToLower(method), err)
	}
	return out, nil
}

func stateView(resp *structpb.Struct) (StateView, error) {
	caps, err := intsField(resp, "capacities")
	if err != nil {
		return StateView{}, err
	}
	target, err := intField(resp, "target")
	if err != nil {
		return StateView{}, err
	}
	amounts, err := intsField(resp, "amounts")
	if err != nil {
		return StateView{}, err
	}
	return StateView{
		SessionID:  stringField(resp, "session_id"),
		Capacities: caps,
		Target:     target,
		Amounts:    amounts,
		Solved:     boolField(resp, "solved"),
	}, nil
}

// #endregion helpers
