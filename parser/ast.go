package parser

import (
	"frogc/types"
)

// Node is the base interface for all AST nodes
type Node interface {
	Position() Position
}

// Expr represents an expression node. Every expression carries the type
// the parser resolved for it.
type Expr interface {
	Node
	Type() types.Type
	exprNode()
}

// Stmt represents a statement node
type Stmt interface {
	Node
	stmtNode()
}

// Program is a whole compilation unit
type Program struct {
	Funcs []*FuncDecl
	Stmts []Stmt
}

// LiteralExpr is a constant value
type LiteralExpr struct {
	Pos   Position
	Value Value
}

func (e *LiteralExpr) Position() Position { return e.Pos }
func (e *LiteralExpr) Type() types.Type   { return e.Value.Type() }
func (e *LiteralExpr) exprNode()          {}

// VarExpr represents a variable reference
type VarExpr struct {
	Pos  Position
	Name string
	Typ  types.Type
}

func (e *VarExpr) Position() Position { return e.Pos }
func (e *VarExpr) Type() types.Type   { return e.Typ }
func (e *VarExpr) exprNode()          {}

// AssignExpr represents name = value; its type is the variable's type
type AssignExpr struct {
	Pos   Position
	Name  string
	Value Expr
	Typ   types.Type
}

func (e *AssignExpr) Position() Position { return e.Pos }
func (e *AssignExpr) Type() types.Type   { return e.Typ }
func (e *AssignExpr) exprNode()          {}

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	Pos      Position
	Operator TokenType // TOKEN_MINUS, TOKEN_NOT
	Operand  Expr
	Typ      types.Type
}

func (e *UnaryExpr) Position() Position { return e.Pos }
func (e *UnaryExpr) Type() types.Type   { return e.Typ }
func (e *UnaryExpr) exprNode()          {}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	Pos      Position
	Left     Expr
	Operator TokenType
	Right    Expr
	Typ      types.Type
}

func (e *BinaryExpr) Position() Position { return e.Pos }
func (e *BinaryExpr) Type() types.Type   { return e.Typ }
func (e *BinaryExpr) exprNode()          {}

// CallExpr represents a call by function name
type CallExpr struct {
	Pos    Position
	Callee string
	Args   []Expr
	Typ    types.Type
}

func (e *CallExpr) Position() Position { return e.Pos }
func (e *CallExpr) Type() types.Type   { return e.Typ }
func (e *CallExpr) exprNode()          {}

// IndexExpr represents array[index]
type IndexExpr struct {
	Pos   Position
	Array Expr
	Index Expr
	Typ   types.Type
}

func (e *IndexExpr) Position() Position { return e.Pos }
func (e *IndexExpr) Type() types.Type   { return e.Typ }
func (e *IndexExpr) exprNode()          {}

// ArrayLitExpr represents {a, b, c}
type ArrayLitExpr struct {
	Pos      Position
	Elements []Expr
	Typ      types.Type
}

func (e *ArrayLitExpr) Position() Position { return e.Pos }
func (e *ArrayLitExpr) Type() types.Type   { return e.Typ }
func (e *ArrayLitExpr) exprNode()          {}

// VarDeclStmt represents var <type> name [size] = init;
type VarDeclStmt struct {
	Pos  Position
	Type types.Type
	Name string
	Init Expr // Can be nil
	Size Expr // Can be nil; always an int literal when set
}

func (s *VarDeclStmt) Position() Position { return s.Pos }
func (s *VarDeclStmt) stmtNode()          {}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Pos  Position
	Expr Expr
}

func (s *ExprStmt) Position() Position { return s.Pos }
func (s *ExprStmt) stmtNode()          {}

// BlockStmt is a braced statement list with its own scope
type BlockStmt struct {
	Pos  Position
	Body []Stmt
}

func (s *BlockStmt) Position() Position { return s.Pos }
func (s *BlockStmt) stmtNode()          {}

// IfStmt represents if/else
type IfStmt struct {
	Pos       Position
	Condition Expr
	Then      Stmt
	Else      Stmt // Can be nil
}

func (s *IfStmt) Position() Position { return s.Pos }
func (s *IfStmt) stmtNode()          {}

// WhileStmt represents while (cond) body
type WhileStmt struct {
	Pos       Position
	Condition Expr
	Body      Stmt
}

func (s *WhileStmt) Position() Position { return s.Pos }
func (s *WhileStmt) stmtNode()          {}

// ForStmt represents for (init; cond; post) body. Every header part is optional.
type ForStmt struct {
	Pos       Position
	Init      Stmt
	Condition Expr
	Post      Expr
	Body      Stmt
}

func (s *ForStmt) Position() Position { return s.Pos }
func (s *ForStmt) stmtNode()          {}

// ReturnStmt represents return [value];
type ReturnStmt struct {
	Pos      Position
	Value    Expr       // Can be nil
	Expected types.Type // Result type of the enclosing function
}

func (s *ReturnStmt) Position() Position { return s.Pos }
func (s *ReturnStmt) stmtNode()          {}

// BreakStmt represents break;
type BreakStmt struct {
	Pos Position
}

func (s *BreakStmt) Position() Position { return s.Pos }
func (s *BreakStmt) stmtNode()          {}

// ContinueStmt represents continue;
type ContinueStmt struct {
	Pos Position
}

func (s *ContinueStmt) Position() Position { return s.Pos }
func (s *ContinueStmt) stmtNode()          {}

// IndexAssignStmt represents array[index] = value;
type IndexAssignStmt struct {
	Pos    Position
	Target *IndexExpr
	Value  Expr
}

func (s *IndexAssignStmt) Position() Position { return s.Pos }
func (s *IndexAssignStmt) stmtNode()          {}

// Param is a typed function parameter
type Param struct {
	Name string
	Type types.Type
}

// FuncDecl represents func <result> name(params) { body }
type FuncDecl struct {
	Pos    Position
	Name   string
	Params []Param
	Result types.Type
	Body   *BlockStmt
}

func (s *FuncDecl) Position() Position { return s.Pos }
func (s *FuncDecl) stmtNode()          {}

// AlwaysReturns reports whether every control path through stmt ends in
// a return. Loops never count, even when their condition is constant.
func AlwaysReturns(stmt Stmt) bool {
	switch s := stmt.(type) {
	case *ReturnStmt:
		return true
	case *BlockStmt:
		for _, inner := range s.Body {
			if AlwaysReturns(inner) {
				return true
			}
		}
		return false
	case *IfStmt:
		return s.Else != nil && AlwaysReturns(s.Then) && AlwaysReturns(s.Else)
	default:
		return false
	}
}
