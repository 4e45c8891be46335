package rpc

import (
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/jugs/internal/history"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"google.golang.org/protobuf/types/known/structpb"
)

// Largest integer a float64 Struct number carries exactly.
const maxExactInt = 1 << 53

// #region encode
func numberValue(n int) *structpb.Value {
	return structpb.NewNumberValue(float64(n))
}

func intsValue(xs []int) *structpb.Value {
	vals := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		vals[i] = numberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func actionValue(a puzzle.Action) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"from":        numberValue(a.From),
		"to":          numberValue(a.To),
		"quantity":    numberValue(a.Quantity),
		"description": structpb.NewStringValue(a.Description()),
	}})
}

func entryValue(index int, e history.Entry) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":          structpb.NewStringValue(e.ID),
		"index":       numberValue(index),
		"amounts":     intsValue(e.Amounts),
		"description": structpb.NewStringValue(e.Description),
		"created_at":  structpb.NewStringValue(e.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}})
}

func message(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}

// #endregion encode

// #region decode
func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	return toInt(key, v)
}

func optionalIntField(s *structpb.Struct, key string, fallback int) (int, error) {
	if _, ok := s.GetFields()[key]; !ok {
		return fallback, nil
	}
	return intField(s, key)
}

func intsField(s *structpb.Struct, key string) ([]int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("field %q is not a list", key)
	}
	out := make([]int, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		n, err := toInt(fmt.Sprintf("%s[%d]", key, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func toInt(key string, v *structpb.Value) (int, error) {
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", key)
	}
	f := num.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("field %q is not an integer: %v", key, f)
	}
	return int(f), nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolField(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func actionFromValue(v *structpb.Value) (puzzle.Action, error) {
	s := v.GetStructValue()
	if s == nil {
		return puzzle.Action{}, fmt.Errorf("action is not an object")
	}
	var a puzzle.Action
	var err error
	if a.From, err = intField(s, "from"); err != nil {
		return puzzle.Action{}, err
	}
	if a.To, err = intField(s, "to"); err != nil {
		return puzzle.Action{}, err
	}
	if a.Quantity, err = intField(s, "quantity"); err != nil {
		return puzzle.Action{}, err
	}
	return a, nil
}

func entryFromValue(v *structpb.Value) (HistoryEntry, error) {
	s := v.GetStructValue()
	if s == nil {
		return HistoryEntry{}, fmt.Errorf("history entry is not an object")
	}
	index, err := intField(s, "index")
	if err != nil {
		return HistoryEntry{}, err
	}
	amounts, err := intsField(s, "amounts")
	if err != nil {
		return HistoryEntry{}, err
	}
	created, _ := time.Parse(time.RFC3339Nano, stringField(s, "created_at"))
	return HistoryEntry{
		ID:          stringField(s, "id"),
		Index:       index,
		Amounts:     amounts,
		Description: stringField(s, "description"),
		CreatedAt:   created,
	}, nil
}

// #endregion decode
