package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/jugs/internal/engine"
	"github.com/danielpatrickdp/jugs/internal/gate"
	"github.com/danielpatrickdp/jugs/internal/history"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"github.com/danielpatrickdp/jugs/internal/session"
	"github.com/danielpatrickdp/jugs/internal/solver"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region server
// ServerConfig controls request screening and solution replay.
type ServerConfig struct {
	GateConfig gate.GateConfig
	ReplayPace time.Duration // default delay between replayed pours
}

// Server implements PuzzleServiceServer on top of one session. Jar indices on
// the wire are 0-based.
type Server struct {
	sess   *session.Session
	gate   *gate.Gate
	pace   time.Duration
	logger *slog.Logger
}

var _ PuzzleServiceServer = (*Server)(nil)

// NewServer wraps sess.
func NewServer(sess *session.Session, cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sess:   sess,
		gate:   gate.NewGate(cfg.GateConfig),
		pace:   cfg.ReplayPace,
		logger: logger,
	}
}

// #endregion server

// #region handlers
// Setup validates {capacities, target} and starts a new session.
func (s *Server) Setup(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caps, err := intsField(req, "capacities")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	target, err := intField(req, "target")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, err := s.sess.Setup(caps, target); err != nil {
		return nil, toStatus(err)
	}
	return s.stateMessage()
}

// Pour screens {from, to} through the gate and applies it.
func (s *Server) Pour(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, err := intField(req, "from")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	to, err := intField(req, "to")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.sess.PourIf(from, to, func(cfg puzzle.Config, amounts puzzle.State) error {
		if d := s.gate.Evaluate(cfg, amounts, from, to); d.Action == gate.ActionReject {
			s.logger.Debug("pour rejected by gate", "from", from, "to", to, "reason", d.Reason)
			return errors.New(d.Reason)
		}
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	after, err := s.sess.CurrentState()
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]*structpb.Value{
		"quantity":    numberValue(res.Action.Quantity),
		"description": structpb.NewStringValue(res.Description),
		"moved":       structpb.NewBoolValue(res.Moved()),
		"amounts":     intsValue(after),
		"solved":      structpb.NewBoolValue(s.sess.Solved()),
	}), nil
}

// Reset restores the initial fill.
func (s *Server) Reset(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.sess.Reset(); err != nil {
		return nil, toStatus(err)
	}
	return s.stateMessage()
}

// Solve returns the shortest pour sequence from the current state.
func (s *Server) Solve(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.sess.Solve(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return solveMessage(res), nil
}

// Apply solves and replays the solution, pausing pace_ms between pours.
func (s *Server) Apply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	paceMS, err := optionalIntField(req, "pace_ms", int(s.pace/time.Millisecond))
	if err != nil || paceMS < 0 {
		return nil, status.Error(codes.InvalidArgument, "pace_ms must be a non-negative integer")
	}

	res, applied, err := s.sess.SolveAndApply(ctx, time.Duration(paceMS)*time.Millisecond)
	if err != nil {
		return nil, toStatus(err)
	}
	amounts, err := s.sess.CurrentState()
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]*structpb.Value{
		"found":   structpb.NewBoolValue(res.Solved),
		"applied": numberValue(applied),
		"amounts": intsValue(amounts),
		"solved":  structpb.NewBoolValue(s.sess.Solved()),
	}), nil
}

// Rollback restores history entry {index}.
func (s *Server) Rollback(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	index, err := intField(req, "index")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	entry, err := s.sess.Rollback(index)
	if err != nil {
		return nil, toStatus(err)
	}
	return message(map[string]*structpb.Value{
		"entry":          entryValue(index, entry),
		"history_length": numberValue(len(s.sess.History())),
	}), nil
}

// State returns the configuration and live amounts.
func (s *Server) State(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.stateMessage()
}

// History returns every history entry in order.
func (s *Server) History(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	entries := s.sess.History()
	vals := make([]*structpb.Value, len(entries))
	for i, e := range entries {
		vals[i] = entryValue(i, e)
	}
	return message(map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(s.sess.ID()),
		"entries":    structpb.NewListValue(&structpb.ListValue{Values: vals}),
	}), nil
}

// #endregion handlers

// #region helpers
func (s *Server) stateMessage() (*structpb.Struct, error) {
	snap, err := s.sess.Snapshot()
	if err != nil {
		return nil, toStatus(err)
	}
	amounts := snap.Entries[len(snap.Entries)-1].Amounts
	return message(map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(snap.SessionID),
		"capacities": intsValue(snap.Config.Capacities),
		"target":     numberValue(snap.Config.Target),
		"amounts":    intsValue(amounts),
		"solved":     structpb.NewBoolValue(snap.Solved),
	}), nil
}

func solveMessage(res solver.Result) *structpb.Struct {
	actions := make([]*structpb.Value, len(res.Actions))
	for i, a := range res.Actions {
		actions[i] = actionValue(a)
	}
	return message(map[string]*structpb.Value{
		"found":    structpb.NewBoolValue(res.Solved),
		"explored": numberValue(res.Explored),
		"actions":  structpb.NewListValue(&structpb.ListValue{Values: actions}),
	})
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, puzzle.ErrInvalidConfig), errors.Is(err, engine.ErrInvalidPour),
		errors.Is(err, session.ErrRejected):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, history.ErrOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, session.ErrNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrReplayDiverged):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, solver.ErrStateLimit):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion helpers
