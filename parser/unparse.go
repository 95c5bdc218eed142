package parser

import (
	"strings"
)

// Operator precedence levels (higher = tighter binding)
const (
	precedenceLowest = iota
	precedenceAssign     // =
	precedenceOr         // ||
	precedenceAnd        // &&
	precedenceEquality   // == !=
	precedenceComparison // < <= > >=
	precedenceAdditive   // + -
	precedenceMultiply   // * / %
	precedenceUnary      // - !
	precedencePostfix    // [] and calls
)

// UnparseProgram renders a program back to source, one top-level item
// per entry. Functions come first, as they are hoisted.
func UnparseProgram(prog *Program) []string {
	lines := []string{}
	for _, fn := range prog.Funcs {
		lines = append(lines, unparseStmt(fn, 0))
	}
	for _, stmt := range prog.Stmts {
		lines = append(lines, unparseStmt(stmt, 0))
	}
	return lines
}

// Unparse renders a whole program as one string
func Unparse(prog *Program) string {
	lines := UnparseProgram(prog)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// unparseStmt converts a statement to source code
func unparseStmt(stmt Stmt, indent int) string {
	indentStr := strings.Repeat("  ", indent)

	switch s := stmt.(type) {
	case *VarDeclStmt:
		var sb strings.Builder
		sb.WriteString(indentStr + "var " + s.Type.String() + " " + s.Name)
		if s.Size != nil {
			sb.WriteString("[" + unparseExpr(s.Size, precedenceLowest) + "]")
		}
		if s.Init != nil {
			sb.WriteString(" = " + unparseExpr(s.Init, precedenceLowest))
		}
		sb.WriteString(";")
		return sb.String()

	case *ExprStmt:
		return indentStr + unparseExpr(s.Expr, precedenceLowest) + ";"

	case *IndexAssignStmt:
		return indentStr + unparseExpr(s.Target, precedenceLowest) + " = " + unparseExpr(s.Value, precedenceLowest) + ";"

	case *BlockStmt:
		return indentStr + unparseBlock(s, indent)

	case *IfStmt:
		result := indentStr + "if (" + unparseExpr(s.Condition, precedenceLowest) + ")" + unparseBody(s.Then, indent)
		if s.Else != nil {
			if _, ok := s.Then.(*BlockStmt); ok {
				result += " else"
			} else {
				result += "\n" + indentStr + "else"
			}
			result += unparseBody(s.Else, indent)
		}
		return result

	case *WhileStmt:
		return indentStr + "while (" + unparseExpr(s.Condition, precedenceLowest) + ")" + unparseBody(s.Body, indent)

	case *ForStmt:
		var sb strings.Builder
		sb.WriteString(indentStr + "for (")
		if s.Init != nil {
			sb.WriteString(unparseStmt(s.Init, 0))
		} else {
			sb.WriteString(";")
		}
		if s.Condition != nil {
			sb.WriteString(" " + unparseExpr(s.Condition, precedenceLowest))
		}
		sb.WriteString(";")
		if s.Post != nil {
			sb.WriteString(" " + unparseExpr(s.Post, precedenceLowest))
		}
		sb.WriteString(")" + unparseBody(s.Body, indent))
		return sb.String()

	case *ReturnStmt:
		if s.Value == nil {
			return indentStr + "return;"
		}
		return indentStr + "return " + unparseExpr(s.Value, precedenceLowest) + ";"

	case *BreakStmt:
		return indentStr + "break;"

	case *ContinueStmt:
		return indentStr + "continue;"

	case *FuncDecl:
		params := make([]string, len(s.Params))
		for i, param := range s.Params {
			params[i] = param.Type.String() + " " + param.Name
		}
		return indentStr + "func " + s.Result.String() + " " + s.Name + "(" + strings.Join(params, ", ") + ") " +
			unparseBlock(s.Body, indent)

	default:
		return indentStr + "/* unknown statement */"
	}
}

// unparseBlock renders { ... } without leading indentation
func unparseBlock(b *BlockStmt, indent int) string {
	if len(b.Body) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, stmt := range b.Body {
		sb.WriteString(unparseStmt(stmt, indent+1) + "\n")
	}
	sb.WriteString(strings.Repeat("  ", indent) + "}")
	return sb.String()
}

// unparseBody renders the body of if/while/for after its header
func unparseBody(stmt Stmt, indent int) string {
	if b, ok := stmt.(*BlockStmt); ok {
		return " " + unparseBlock(b, indent)
	}
	return "\n" + unparseStmt(stmt, indent+1)
}

// unparseExpr converts an expression to source code, adding parentheses
// only where precedence requires them
func unparseExpr(expr Expr, parentPrecedence int) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value.String()

	case *VarExpr:
		return e.Name

	case *AssignExpr:
		result := e.Name + " = " + unparseExpr(e.Value, precedenceAssign)
		if precedenceAssign < parentPrecedence {
			return "(" + result + ")"
		}
		return result

	case *UnaryExpr:
		result := unparseUnaryOp(e.Operator) + unparseExpr(e.Operand, precedenceUnary)
		if precedenceUnary < parentPrecedence {
			return "(" + result + ")"
		}
		return result

	case *BinaryExpr:
		return unparseBinaryExpr(e, parentPrecedence)

	case *CallExpr:
		return e.Callee + "(" + unparseArgs(e.Args) + ")"

	case *IndexExpr:
		base := unparseExpr(e.Array, precedencePostfix)
		index := unparseExpr(e.Index, precedenceLowest)
		return base + "[" + index + "]"

	case *ArrayLitExpr:
		return "{" + unparseArgs(e.Elements) + "}"

	default:
		return "/* unknown expression */"
	}
}

func unparseBinaryExpr(e *BinaryExpr, parentPrecedence int) string {
	prec := binaryPrecedence(e.Operator)
	left := unparseExpr(e.Left, prec)
	right := unparseExpr(e.Right, prec+1) // left-associative: same level on the right needs parens
	op := unparseBinaryOp(e.Operator)

	result := left + " " + op + " " + right

	if prec < parentPrecedence {
		return "(" + result + ")"
	}
	return result
}

// binaryPrecedence returns the precedence level for a binary operator
func binaryPrecedence(op TokenType) int {
	switch op {
	case TOKEN_OR:
		return precedenceOr
	case TOKEN_AND:
		return precedenceAnd
	case TOKEN_EQ, TOKEN_NE:
		return precedenceEquality
	case TOKEN_LT, TOKEN_LE, TOKEN_GT, TOKEN_GE:
		return precedenceComparison
	case TOKEN_PLUS, TOKEN_MINUS:
		return precedenceAdditive
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT:
		return precedenceMultiply
	default:
		return precedenceLowest
	}
}

// unparseBinaryOp converts a token type to its string representation
func unparseBinaryOp(op TokenType) string {
	switch op {
	case TOKEN_PLUS:
		return "+"
	case TOKEN_MINUS:
		return "-"
	case TOKEN_STAR:
		return "*"
	case TOKEN_SLASH:
		return "/"
	case TOKEN_PERCENT:
		return "%"
	case TOKEN_EQ:
		return "=="
	case TOKEN_NE:
		return "!="
	case TOKEN_LT:
		return "<"
	case TOKEN_LE:
		return "<="
	case TOKEN_GT:
		return ">"
	case TOKEN_GE:
		return ">="
	case TOKEN_AND:
		return "&&"
	case TOKEN_OR:
		return "||"
	default:
		return "?"
	}
}

func unparseUnaryOp(op TokenType) string {
	switch op {
	case TOKEN_MINUS:
		return "-"
	case TOKEN_NOT:
		return "!"
	default:
		return "?"
	}
}

func unparseArgs(args []Expr) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = unparseExpr(arg, precedenceLowest)
	}
	return strings.Join(parts, ", ")
}
