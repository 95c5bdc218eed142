// Package optimizer rewrites a typed program into a smaller equivalent one.
// It never modifies its input: every changed node is rebuilt.
package optimizer

import (
	"frogc/diag"
	"frogc/parser"
	"frogc/types"
)

// Optimize folds constants, simplifies algebraic identities, removes dead
// branches and loops, and drops statements that follow a return
func Optimize(prog *parser.Program) (*parser.Program, error) {
	out := &parser.Program{}

	for _, fn := range prog.Funcs {
		body, err := optimizeBlock(fn.Body)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, &parser.FuncDecl{
			Pos:    fn.Pos,
			Name:   fn.Name,
			Params: fn.Params,
			Result: fn.Result,
			Body:   body,
		})
	}

	stmts, err := optimizeStmts(prog.Stmts)
	if err != nil {
		return nil, err
	}
	out.Stmts = stmts
	return out, nil
}

// optimizeStmts optimizes a statement list, dropping removed statements and
// everything after a statement that always returns
func optimizeStmts(stmts []parser.Stmt) ([]parser.Stmt, error) {
	var out []parser.Stmt
	for _, stmt := range stmts {
		opt, err := optimizeStmt(stmt)
		if err != nil {
			return nil, err
		}
		if opt == nil {
			continue
		}
		out = append(out, opt)
		if parser.AlwaysReturns(opt) {
			break
		}
	}
	return out, nil
}

func optimizeBlock(b *parser.BlockStmt) (*parser.BlockStmt, error) {
	body, err := optimizeStmts(b.Body)
	if err != nil {
		return nil, err
	}
	return &parser.BlockStmt{Pos: b.Pos, Body: body}, nil
}

// orEmpty keeps a branch or loop body present after its statement was removed
func orEmpty(stmt parser.Stmt, pos parser.Position) parser.Stmt {
	if stmt == nil {
		return &parser.BlockStmt{Pos: pos}
	}
	return stmt
}

// boolLiteral reports the value of a condition that folded to a literal
func boolLiteral(e parser.Expr) (value bool, ok bool) {
	lit, isLit := e.(*parser.LiteralExpr)
	if !isLit || lit.Value.Kind != types.KindBool {
		return false, false
	}
	return lit.Value.Bool, true
}

// optimizeStmt returns the rewritten statement, or nil when it is removed
func optimizeStmt(stmt parser.Stmt) (parser.Stmt, error) {
	switch s := stmt.(type) {
	case *parser.VarDeclStmt:
		out := &parser.VarDeclStmt{Pos: s.Pos, Type: s.Type, Name: s.Name, Size: s.Size}
		if s.Init != nil {
			init, err := optimizeExpr(s.Init)
			if err != nil {
				return nil, err
			}
			out.Init = init
		}
		return out, nil

	case *parser.ExprStmt:
		expr, err := optimizeExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return &parser.ExprStmt{Pos: s.Pos, Expr: expr}, nil

	case *parser.IndexAssignStmt:
		target, err := optimizeIndex(s.Target)
		if err != nil {
			return nil, err
		}
		value, err := optimizeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &parser.IndexAssignStmt{Pos: s.Pos, Target: target, Value: value}, nil

	case *parser.BlockStmt:
		return optimizeBlock(s)

	case *parser.IfStmt:
		cond, err := optimizeExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if value, ok := boolLiteral(cond); ok {
			taken, dropped := s.Then, s.Else
			if !value {
				taken, dropped = s.Else, s.Then
			}
			if !declaresOutward(dropped) {
				if taken == nil {
					return nil, nil
				}
				return optimizeStmt(taken)
			}
		}

		then, err := optimizeStmt(s.Then)
		if err != nil {
			return nil, err
		}
		out := &parser.IfStmt{Pos: s.Pos, Condition: cond, Then: orEmpty(then, s.Then.Position())}
		if s.Else != nil {
			els, err := optimizeStmt(s.Else)
			if err != nil {
				return nil, err
			}
			if els != nil {
				out.Else = els
			}
		}
		return out, nil

	case *parser.WhileStmt:
		cond, err := optimizeExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if value, ok := boolLiteral(cond); ok && !value && !declaresOutward(s.Body) {
			return nil, nil
		}
		body, err := optimizeStmt(s.Body)
		if err != nil {
			return nil, err
		}
		return &parser.WhileStmt{Pos: s.Pos, Condition: cond, Body: orEmpty(body, s.Body.Position())}, nil

	case *parser.ForStmt:
		var init parser.Stmt
		if s.Init != nil {
			var err error
			if init, err = optimizeStmt(s.Init); err != nil {
				return nil, err
			}
		}
		var cond parser.Expr
		if s.Condition != nil {
			var err error
			if cond, err = optimizeExpr(s.Condition); err != nil {
				return nil, err
			}
			if value, ok := boolLiteral(cond); ok && !value {
				// The body never runs; only the initializer's effects remain
				return init, nil
			}
		}
		var post parser.Expr
		if s.Post != nil {
			var err error
			if post, err = optimizeExpr(s.Post); err != nil {
				return nil, err
			}
		}
		body, err := optimizeStmt(s.Body)
		if err != nil {
			return nil, err
		}
		return &parser.ForStmt{
			Pos:       s.Pos,
			Init:      init,
			Condition: cond,
			Post:      post,
			Body:      orEmpty(body, s.Body.Position()),
		}, nil

	case *parser.ReturnStmt:
		out := &parser.ReturnStmt{Pos: s.Pos, Expected: s.Expected}
		if s.Value != nil {
			value, err := optimizeExpr(s.Value)
			if err != nil {
				return nil, err
			}
			out.Value = value
		}
		return out, nil

	case *parser.BreakStmt:
		return &parser.BreakStmt{Pos: s.Pos}, nil

	case *parser.ContinueStmt:
		return &parser.ContinueStmt{Pos: s.Pos}, nil

	default:
		return nil, diag.At(diag.KindCodegen, stmt.Position().Line, stmt.Position().Column, "",
			"optimizer: unexpected statement %T", stmt)
	}
}

// declaresOutward reports whether stmt declares a variable in the enclosing
// scope, as an unbraced declaration used as an if or while body does. Such a
// statement is kept even when it can never run, so later uses still resolve.
func declaresOutward(stmt parser.Stmt) bool {
	switch s := stmt.(type) {
	case *parser.VarDeclStmt:
		return true
	case *parser.IfStmt:
		return declaresOutward(s.Then) || (s.Else != nil && declaresOutward(s.Else))
	case *parser.WhileStmt:
		return declaresOutward(s.Body)
	default:
		return false
	}
}

// optimizeExpr optimizes children first, then folds or simplifies the node
func optimizeExpr(expr parser.Expr) (parser.Expr, error) {
	if !expr.Type().IsValid() {
		pos := expr.Position()
		return nil, diag.At(diag.KindCodegen, pos.Line, pos.Column, "", "optimizer: untyped %T", expr)
	}

	switch e := expr.(type) {
	case *parser.LiteralExpr, *parser.VarExpr:
		return e, nil

	case *parser.AssignExpr:
		value, err := optimizeExpr(e.Value)
		if err != nil {
			return nil, err
		}
		return &parser.AssignExpr{Pos: e.Pos, Name: e.Name, Value: value, Typ: e.Typ}, nil

	case *parser.UnaryExpr:
		operand, err := optimizeExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		if lit, ok := operand.(*parser.LiteralExpr); ok {
			if v, ok := foldUnary(e.Operator, lit.Value); ok {
				return &parser.LiteralExpr{Pos: e.Pos, Value: v}, nil
			}
		}
		return &parser.UnaryExpr{Pos: e.Pos, Operator: e.Operator, Operand: operand, Typ: e.Typ}, nil

	case *parser.BinaryExpr:
		left, err := optimizeExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := optimizeExpr(e.Right)
		if err != nil {
			return nil, err
		}
		l, lok := left.(*parser.LiteralExpr)
		r, rok := right.(*parser.LiteralExpr)
		if lok && rok {
			if v, ok := foldBinary(e.Operator, l.Value, r.Value); ok {
				return &parser.LiteralExpr{Pos: e.Pos, Value: v}, nil
			}
		}
		out := &parser.BinaryExpr{Pos: e.Pos, Left: left, Operator: e.Operator, Right: right, Typ: e.Typ}
		return simplify(out), nil

	case *parser.CallExpr:
		args := make([]parser.Expr, len(e.Args))
		for i, arg := range e.Args {
			opt, err := optimizeExpr(arg)
			if err != nil {
				return nil, err
			}
			args[i] = opt
		}
		return &parser.CallExpr{Pos: e.Pos, Callee: e.Callee, Args: args, Typ: e.Typ}, nil

	case *parser.IndexExpr:
		return optimizeIndex(e)

	case *parser.ArrayLitExpr:
		elems := make([]parser.Expr, len(e.Elements))
		for i, el := range e.Elements {
			opt, err := optimizeExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = opt
		}
		return &parser.ArrayLitExpr{Pos: e.Pos, Elements: elems, Typ: e.Typ}, nil

	default:
		pos := expr.Position()
		return nil, diag.At(diag.KindCodegen, pos.Line, pos.Column, "", "optimizer: unexpected expression %T", expr)
	}
}

func optimizeIndex(e *parser.IndexExpr) (*parser.IndexExpr, error) {
	if !e.Typ.IsValid() {
		return nil, diag.At(diag.KindCodegen, e.Pos.Line, e.Pos.Column, "", "optimizer: untyped index expression")
	}
	array, err := optimizeExpr(e.Array)
	if err != nil {
		return nil, err
	}
	index, err := optimizeExpr(e.Index)
	if err != nil {
		return nil, err
	}
	return &parser.IndexExpr{Pos: e.Pos, Array: array, Index: index, Typ: e.Typ}, nil
}
