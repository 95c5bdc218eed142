package parser

import (
	"strings"
	"testing"

	"frogc/types"
)

// exprDecls declares the variables the expression tests refer to
const exprDecls = "var int x; var int y; var int z; var float f; var float g; var bool a; var bool b; var bool c; var bool d; var array<int> xs;"

// parseExpr parses input as an expression statement after exprDecls
func parseExpr(t *testing.T, input string) Expr {
	t.Helper()
	prog, err := ParseSource(exprDecls + "\n" + input + ";")
	if err != nil {
		t.Fatalf("failed to parse %q: %v", input, err)
	}
	stmt, ok := prog.Stmts[len(prog.Stmts)-1].(*ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Stmts[len(prog.Stmts)-1])
	}
	return stmt.Expr
}

// sexpr renders the tree shape of an expression, e.g. (+ 1 (* 2 3))
func sexpr(e Expr) string {
	switch e := e.(type) {
	case *LiteralExpr:
		return e.Value.String()
	case *VarExpr:
		return e.Name
	case *UnaryExpr:
		return "(" + unparseUnaryOp(e.Operator) + " " + sexpr(e.Operand) + ")"
	case *BinaryExpr:
		return "(" + unparseBinaryOp(e.Operator) + " " + sexpr(e.Left) + " " + sexpr(e.Right) + ")"
	case *AssignExpr:
		return "(= " + e.Name + " " + sexpr(e.Value) + ")"
	case *IndexExpr:
		return "([] " + sexpr(e.Array) + " " + sexpr(e.Index) + ")"
	case *CallExpr:
		parts := []string{e.Callee}
		for _, arg := range e.Args {
			parts = append(parts, sexpr(arg))
		}
		return "(call " + strings.Join(parts, " ") + ")"
	case *ArrayLitExpr:
		parts := []string{"array"}
		for _, el := range e.Elements {
			parts = append(parts, sexpr(el))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "?"
}

func TestParseUnaryMinus(t *testing.T) {
	tests := []struct {
		input string
		want  string
		typ   types.Type
	}{
		{"-5", "(- 5)", types.Int},
		{"-x", "(- x)", types.Int},
		{"-1.5", "(- 1.5)", types.Float},
		{"--x", "(- (- x))", types.Int},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			if _, ok := expr.(*UnaryExpr); !ok {
				t.Fatalf("expected UnaryExpr, got %T", expr)
			}
			if got := sexpr(expr); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !expr.Type().Equal(tt.typ) {
				t.Errorf("expected type %s, got %s", tt.typ, expr.Type())
			}
		})
	}
}

func TestParseLogicalNot(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"!a", "(! a)"},
		{"!true", "(! true)"},
		{"!!b", "(! (! b))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			if got := sexpr(expr); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !expr.Type().Equal(types.Bool) {
				t.Errorf("expected bool, got %s", expr.Type())
			}
		})
	}
}

func TestUnaryOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-x * y", "(* (- x) y)"},
		{"-x + y", "(+ (- x) y)"},
		{"!a && b", "(&& (! a) b)"},
		{"!a == b", "(== (! a) b)"},
		{"-xs[0]", "(- ([] xs 0))"},
		{"-(x + y)", "(- (+ x y))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.input)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseIntegerLiteralExpr(t *testing.T) {
	expr := parseExpr(t, "2147483647")
	lit, ok := expr.(*LiteralExpr)
	if !ok {
		t.Fatalf("expected LiteralExpr, got %T", expr)
	}
	if lit.Value.Kind != types.KindInt || lit.Value.Int != 2147483647 {
		t.Errorf("expected INT 2147483647, got %s", lit.Value)
	}

	if _, err := ParseSource("2147483648;"); err == nil {
		t.Error("expected error for integer literal outside int32")
	}
}

func TestParseIdentifierExpr(t *testing.T) {
	expr := parseExpr(t, "f")
	v, ok := expr.(*VarExpr)
	if !ok {
		t.Fatalf("expected VarExpr, got %T", expr)
	}
	if v.Name != "f" {
		t.Errorf("expected name f, got %s", v.Name)
	}
	if !v.Type().Equal(types.Float) {
		t.Errorf("expected float, got %s", v.Type())
	}
}

func TestParseParenExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(x)", "x"},
		{"((x))", "x"},
		{"(x + y) * z", "(* (+ x y) z)"},
		{"x * (y + z)", "(* x (+ y z))"},
		{"((x + y) * (z - x))", "(* (+ x y) (- z x))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.input)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParsePostfixAndCalls(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"xs[x + 1]", "([] xs (+ x 1))"},
		{"len(xs) - 1", "(- (call len xs) 1)"},
		{"push_int({1, 2}, x)[0]", "([] (call push_int (array 1 2) x) 0)"},
		{"x = y = 3", "(= x (= y 3))"},
		{"x = y + 1", "(= x (+ y 1))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.input)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
