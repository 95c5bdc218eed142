package parser

import (
	"testing"

	"frogc/types"

	"github.com/nalgeon/be"
)

func TestASTNodes(t *testing.T) {
	var _ Expr = &LiteralExpr{}
	var _ Expr = &VarExpr{}
	var _ Expr = &AssignExpr{}
	var _ Expr = &UnaryExpr{}
	var _ Expr = &BinaryExpr{}
	var _ Expr = &CallExpr{}
	var _ Expr = &IndexExpr{}
	var _ Expr = &ArrayLitExpr{}

	var _ Stmt = &VarDeclStmt{}
	var _ Stmt = &ExprStmt{}
	var _ Stmt = &BlockStmt{}
	var _ Stmt = &IfStmt{}
	var _ Stmt = &WhileStmt{}
	var _ Stmt = &ForStmt{}
	var _ Stmt = &ReturnStmt{}
	var _ Stmt = &BreakStmt{}
	var _ Stmt = &ContinueStmt{}
	var _ Stmt = &IndexAssignStmt{}
	var _ Stmt = &FuncDecl{}
}

func TestLiteralExprType(t *testing.T) {
	pos := Position{Line: 1, Column: 5, Offset: 4}
	expr := &LiteralExpr{Pos: pos, Value: FloatValue(2.5)}
	be.Equal(t, expr.Position(), pos)
	be.True(t, expr.Type().Equal(types.Float))
}

func TestAlwaysReturns(t *testing.T) {
	ret := &ReturnStmt{}
	other := &ExprStmt{}

	tests := []struct {
		name string
		stmt Stmt
		want bool
	}{
		{"return", ret, true},
		{"expression", other, false},
		{"empty block", &BlockStmt{}, false},
		{"block with late return", &BlockStmt{Body: []Stmt{other, ret}}, true},
		{"if without else", &IfStmt{Then: ret}, false},
		{"if with both branches", &IfStmt{Then: ret, Else: &BlockStmt{Body: []Stmt{ret}}}, true},
		{"if with one branch", &IfStmt{Then: ret, Else: other}, false},
		{"while", &WhileStmt{Body: ret}, false},
		{"for", &ForStmt{Body: ret}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, AlwaysReturns(tt.stmt), tt.want)
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{IntValue(-7), "-7"},
		{FloatValue(70), "70.0"},
		{FloatValue(0.25), "0.25"},
		{FloatValue(1.5e300), "1.5e+300"},
		{BoolValue(true), "true"},
		{StringValue("a\"b\n"), `"a\"b\n"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			be.Equal(t, tt.v.String(), tt.want)
		})
	}
}

func TestValueZeroOne(t *testing.T) {
	be.True(t, IntValue(0).IsZero())
	be.True(t, FloatValue(0).IsZero())
	be.True(t, !StringValue("").IsZero())
	be.True(t, IntValue(1).IsOne())
	be.True(t, FloatValue(1).IsOne())
	be.True(t, !BoolValue(true).IsOne())
}
