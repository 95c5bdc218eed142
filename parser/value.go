package parser

import (
	"math"
	"strconv"
	"strings"

	"frogc/types"
)

// Value is the tagged payload of a literal: int, float, bool or string
type Value struct {
	Kind  types.Kind
	Int   int32
	Float float64
	Bool  bool
	Str   string
}

func IntValue(v int32) Value     { return Value{Kind: types.KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: types.KindFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: types.KindBool, Bool: v} }
func StringValue(v string) Value { return Value{Kind: types.KindString, Str: v} }

// Type returns the value's type
func (v Value) Type() types.Type {
	return types.Type{Kind: v.Kind}
}

// IsZero reports whether v is the numeric literal 0 (int or float)
func (v Value) IsZero() bool {
	return (v.Kind == types.KindInt && v.Int == 0) || (v.Kind == types.KindFloat && v.Float == 0)
}

// IsOne reports whether v is the numeric literal 1 (int or float)
func (v Value) IsOne() bool {
	return (v.Kind == types.KindInt && v.Int == 1) || (v.Kind == types.KindFloat && v.Float == 1)
}

// Equal compares kind and payload. Floats compare by bit pattern.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case types.KindInt:
		return v.Int == o.Int
	case types.KindFloat:
		return math.Float64bits(v.Float) == math.Float64bits(o.Float)
	case types.KindBool:
		return v.Bool == o.Bool
	case types.KindString:
		return v.Str == o.Str
	}
	return true
}

// String renders the value in source syntax
func (v Value) String() string {
	switch v.Kind {
	case types.KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case types.KindFloat:
		return FormatFloat(v.Float)
	case types.KindBool:
		return strconv.FormatBool(v.Bool)
	case types.KindString:
		return quote(v.Str)
	}
	return "<invalid>"
}

// FormatFloat renders a float so that it always reads as a float
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEN") || strings.Contains(s, "Inf") {
		return s
	}
	return s + ".0"
}
