package optimizer

import (
	"frogc/parser"
	"frogc/types"
)

// foldUnary evaluates -lit and !lit
func foldUnary(op parser.TokenType, v parser.Value) (parser.Value, bool) {
	switch op {
	case parser.TOKEN_MINUS:
		switch v.Kind {
		case types.KindInt:
			return parser.IntValue(-v.Int), true
		case types.KindFloat:
			return parser.FloatValue(-v.Float), true
		}
	case parser.TOKEN_NOT:
		if v.Kind == types.KindBool {
			return parser.BoolValue(!v.Bool), true
		}
	}
	return parser.Value{}, false
}

// foldBinary evaluates lit op lit. Integer arithmetic wraps at 32 bits;
// integer division or modulo by zero is left for the VM to report.
func foldBinary(op parser.TokenType, a, b parser.Value) (parser.Value, bool) {
	if a.Kind != b.Kind {
		return parser.Value{}, false
	}

	switch op {
	case parser.TOKEN_PLUS, parser.TOKEN_MINUS, parser.TOKEN_STAR, parser.TOKEN_SLASH, parser.TOKEN_PERCENT:
		switch a.Kind {
		case types.KindInt:
			return foldInt(op, a.Int, b.Int)
		case types.KindFloat:
			return foldFloat(op, a.Float, b.Float)
		case types.KindString:
			if op == parser.TOKEN_PLUS {
				return parser.StringValue(a.Str + b.Str), true
			}
		}
		return parser.Value{}, false

	case parser.TOKEN_EQ, parser.TOKEN_NE, parser.TOKEN_LT, parser.TOKEN_LE, parser.TOKEN_GT, parser.TOKEN_GE:
		c, ok := compare(a, b)
		if !ok {
			return parser.Value{}, false
		}
		return parser.BoolValue(c.holds(op)), true

	case parser.TOKEN_AND:
		if a.Kind == types.KindBool {
			return parser.BoolValue(a.Bool && b.Bool), true
		}
	case parser.TOKEN_OR:
		if a.Kind == types.KindBool {
			return parser.BoolValue(a.Bool || b.Bool), true
		}
	}
	return parser.Value{}, false
}

func foldInt(op parser.TokenType, a, b int32) (parser.Value, bool) {
	switch op {
	case parser.TOKEN_PLUS:
		return parser.IntValue(a + b), true
	case parser.TOKEN_MINUS:
		return parser.IntValue(a - b), true
	case parser.TOKEN_STAR:
		return parser.IntValue(a * b), true
	case parser.TOKEN_SLASH:
		if b == 0 {
			return parser.Value{}, false
		}
		return parser.IntValue(a / b), true
	case parser.TOKEN_PERCENT:
		if b == 0 {
			return parser.Value{}, false
		}
		return parser.IntValue(a % b), true
	}
	return parser.Value{}, false
}

func foldFloat(op parser.TokenType, a, b float64) (parser.Value, bool) {
	switch op {
	case parser.TOKEN_PLUS:
		return parser.FloatValue(a + b), true
	case parser.TOKEN_MINUS:
		return parser.FloatValue(a - b), true
	case parser.TOKEN_STAR:
		return parser.FloatValue(a * b), true
	case parser.TOKEN_SLASH:
		return parser.FloatValue(a / b), true
	}
	return parser.Value{}, false
}

// comparison is the outcome of comparing two literals
type comparison struct {
	less, equal, unordered bool
}

func (c comparison) holds(op parser.TokenType) bool {
	switch op {
	case parser.TOKEN_EQ:
		return c.equal
	case parser.TOKEN_NE:
		return !c.equal
	case parser.TOKEN_LT:
		return c.less
	case parser.TOKEN_LE:
		return c.less || c.equal
	case parser.TOKEN_GT:
		return !c.less && !c.equal && !c.unordered
	case parser.TOKEN_GE:
		return !c.less && !c.unordered
	}
	return false
}

// compare orders two literals of the same kind. Floats follow IEEE rules:
// NaN is unordered and unequal to everything, -0.0 equals 0.0.
func compare(a, b parser.Value) (comparison, bool) {
	switch a.Kind {
	case types.KindInt:
		return comparison{less: a.Int < b.Int, equal: a.Int == b.Int}, true
	case types.KindFloat:
		if a.Float != a.Float || b.Float != b.Float {
			return comparison{unordered: true}, true
		}
		return comparison{less: a.Float < b.Float, equal: a.Float == b.Float}, true
	case types.KindString:
		return comparison{less: a.Str < b.Str, equal: a.Str == b.Str}, true
	case types.KindBool:
		return comparison{less: !a.Bool && b.Bool, equal: a.Bool == b.Bool}, true
	}
	return comparison{}, false
}
