package optimizer

import (
	"frogc/parser"
	"frogc/types"
)

// simplify applies algebraic identities to a binary expression whose
// children are already optimized:
//
//	x+0, 0+x, x-0, x*1, 1*x, x/1  ->  x
//	x*0, 0*x                      ->  0   (only when x is side-effect free)
func simplify(e *parser.BinaryExpr) parser.Expr {
	l, lok := e.Left.(*parser.LiteralExpr)
	r, rok := e.Right.(*parser.LiteralExpr)

	switch e.Operator {
	case parser.TOKEN_PLUS:
		if rok && r.Value.IsZero() {
			return e.Left
		}
		if lok && l.Value.IsZero() {
			return e.Right
		}
	case parser.TOKEN_MINUS:
		if rok && r.Value.IsZero() {
			return e.Left
		}
	case parser.TOKEN_STAR:
		if rok && r.Value.IsOne() {
			return e.Left
		}
		if lok && l.Value.IsOne() {
			return e.Right
		}
		if rok && r.Value.IsZero() && sideEffectFree(e.Left) {
			return e.Right
		}
		if lok && l.Value.IsZero() && sideEffectFree(e.Right) {
			return e.Left
		}
	case parser.TOKEN_SLASH:
		if rok && r.Value.IsOne() {
			return e.Left
		}
	}
	return e
}

// sideEffectFree reports whether evaluating e can neither change state nor
// fail at run time. Calls, assignments, indexing and integer division all
// disqualify an expression.
func sideEffectFree(e parser.Expr) bool {
	switch n := e.(type) {
	case *parser.LiteralExpr, *parser.VarExpr:
		return true
	case *parser.UnaryExpr:
		return sideEffectFree(n.Operand)
	case *parser.BinaryExpr:
		if (n.Operator == parser.TOKEN_SLASH || n.Operator == parser.TOKEN_PERCENT) && n.Typ.Kind == types.KindInt {
			return false
		}
		return sideEffectFree(n.Left) && sideEffectFree(n.Right)
	case *parser.ArrayLitExpr:
		for _, el := range n.Elements {
			if !sideEffectFree(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
