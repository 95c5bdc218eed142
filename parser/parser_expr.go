package parser

import (
	"strconv"

	"frogc/types"
)

// Operator precedence, lowest to highest:
//   =  ||  &&  == !=  < <= > >=  + -  * / %  unary  call/index/primary

// parseExpression parses a full expression
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// operand rejects expressions that cannot be used as values on their own.
// An empty array literal only gets a type from an enclosing declaration.
func (p *Parser) operand(expr Expr, tok Token) error {
	if lit, ok := expr.(*ArrayLitExpr); ok && len(lit.Elements) == 0 && !lit.Typ.IsValid() {
		return p.errorf(tok, "empty array literal needs an array-typed variable declaration")
	}
	return nil
}

// parseAssignment parses name = value (right-associative)
func (p *Parser) parseAssignment() (Expr, error) {
	if p.current.Type == TOKEN_IDENTIFIER && p.peek.Type == TOKEN_ASSIGN {
		nameTok := p.current
		p.nextToken() // consume name
		p.nextToken() // consume '='

		valueTok := p.current
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if err := p.operand(value, valueTok); err != nil {
			return nil, err
		}

		v, err := p.resolveVar(nameTok)
		if err != nil {
			return nil, err
		}
		if !v.Type.AssignableFrom(value.Type()) {
			return nil, p.errorf(valueTok, "cannot assign a value of type %s to '%s' of type %s",
				value.Type(), v.Name, v.Type)
		}
		return &AssignExpr{Pos: nameTok.Position, Name: v.Name, Value: value, Typ: v.Type}, nil
	}

	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type == TOKEN_ASSIGN {
		return nil, p.errorf(p.current, "invalid assignment target")
	}
	return left, nil
}

// parseBinaryLevel parses a left-associative chain of the given operators
func (p *Parser) parseBinaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		opTok := p.current
		found := false
		for _, op := range ops {
			if opTok.Type == op {
				found = true
				break
			}
		}
		if !found {
			return left, nil
		}
		p.nextToken() // consume operator

		right, err := next()
		if err != nil {
			return nil, err
		}
		typ, err := p.binaryType(opTok, left, right)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: left.Position(), Left: left, Operator: opTok.Type, Right: right, Typ: typ}
	}
}

func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, TOKEN_OR)
}

func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, TOKEN_AND)
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, TOKEN_EQ, TOKEN_NE)
}

func (p *Parser) parseRelational() (Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, TOKEN_LT, TOKEN_LE, TOKEN_GT, TOKEN_GE)
}

func (p *Parser) parseAdditive() (Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, TOKEN_PLUS, TOKEN_MINUS)
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT)
}

// binaryType checks operand types and returns the result type
func (p *Parser) binaryType(opTok Token, left, right Expr) (types.Type, error) {
	if err := p.operand(left, opTok); err != nil {
		return types.Type{}, err
	}
	if err := p.operand(right, opTok); err != nil {
		return types.Type{}, err
	}
	lt, rt := left.Type(), right.Type()

	switch opTok.Type {
	case TOKEN_PLUS:
		if lt.Kind == types.KindString && rt.Kind == types.KindString {
			return types.String, nil
		}
		fallthrough
	case TOKEN_MINUS, TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT:
		if !lt.IsNumeric() || !lt.Equal(rt) {
			return types.Type{}, p.errorf(opTok, "operator '%s' requires numeric operands of the same type, got %s and %s",
				opTok.Value, lt, rt)
		}
		return lt, nil

	case TOKEN_LT, TOKEN_LE, TOKEN_GT, TOKEN_GE:
		if !lt.IsNumeric() || !lt.Equal(rt) {
			return types.Type{}, p.errorf(opTok, "operator '%s' requires numeric operands of the same type, got %s and %s",
				opTok.Value, lt, rt)
		}
		return types.Bool, nil

	case TOKEN_EQ, TOKEN_NE:
		if lt.Kind == types.KindVoid || rt.Kind == types.KindVoid {
			return types.Type{}, p.errorf(opTok, "cannot compare void values")
		}
		if !lt.Equal(rt) {
			return types.Type{}, p.errorf(opTok, "operator '%s' requires operands of the same type, got %s and %s",
				opTok.Value, lt, rt)
		}
		return types.Bool, nil

	case TOKEN_AND, TOKEN_OR:
		if lt.Kind != types.KindBool || rt.Kind != types.KindBool {
			return types.Type{}, p.errorf(opTok, "operator '%s' requires bool operands, got %s and %s",
				opTok.Value, lt, rt)
		}
		return types.Bool, nil
	}

	return types.Type{}, p.errorf(opTok, "unknown binary operator")
}

// parseUnary parses !x and -x
func (p *Parser) parseUnary() (Expr, error) {
	opTok := p.current
	if opTok.Type != TOKEN_NOT && opTok.Type != TOKEN_MINUS {
		return p.parsePostfix()
	}
	p.nextToken() // consume operator

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if err := p.operand(operand, opTok); err != nil {
		return nil, err
	}

	typ := operand.Type()
	if opTok.Type == TOKEN_NOT && typ.Kind != types.KindBool {
		return nil, p.errorf(opTok, "operator '!' requires a bool operand, got %s", typ)
	}
	if opTok.Type == TOKEN_MINUS && !typ.IsNumeric() {
		return nil, p.errorf(opTok, "operator '-' requires a numeric operand, got %s", typ)
	}
	return &UnaryExpr{Pos: opTok.Position, Operator: opTok.Type, Operand: operand, Typ: typ}, nil
}

// parsePostfix parses a primary followed by any number of [index] suffixes
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TOKEN_LBRACKET {
		bracketTok := p.current
		p.nextToken() // consume '['

		indexTok := p.current
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RBRACKET, "']' after index"); err != nil {
			return nil, err
		}

		if err := p.operand(expr, bracketTok); err != nil {
			return nil, err
		}
		if !expr.Type().IsArray() {
			return nil, p.errorf(bracketTok, "cannot index a value of type %s", expr.Type())
		}
		if err := p.operand(index, indexTok); err != nil {
			return nil, err
		}
		if index.Type().Kind != types.KindInt {
			return nil, p.errorf(indexTok, "array index must be int, got %s", index.Type())
		}
		expr = &IndexExpr{Pos: expr.Position(), Array: expr, Index: index, Typ: expr.Type().ElemType()}
	}

	return expr, nil
}

// parsePrimary parses literals, names, calls, groupings and array literals
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current

	switch tok.Type {
	case TOKEN_INT:
		v, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return nil, p.errorf(tok, "integer literal out of range")
		}
		p.nextToken()
		return &LiteralExpr{Pos: tok.Position, Value: IntValue(int32(v))}, nil

	case TOKEN_FLOAT:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok, "float literal out of range")
		}
		p.nextToken()
		return &LiteralExpr{Pos: tok.Position, Value: FloatValue(v)}, nil

	case TOKEN_STRING:
		p.nextToken()
		return &LiteralExpr{Pos: tok.Position, Value: StringValue(tok.Literal)}, nil

	case TOKEN_TRUE, TOKEN_FALSE:
		p.nextToken()
		return &LiteralExpr{Pos: tok.Position, Value: BoolValue(tok.Type == TOKEN_TRUE)}, nil

	case TOKEN_IDENTIFIER:
		if p.peek.Type == TOKEN_LPAREN {
			return p.parseCall()
		}
		p.nextToken()
		v, err := p.resolveVar(tok)
		if err != nil {
			return nil, err
		}
		return &VarExpr{Pos: tok.Position, Name: v.Name, Typ: v.Type}, nil

	case TOKEN_LPAREN:
		p.nextToken() // consume '('
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RPAREN, "')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case TOKEN_LBRACE:
		return p.parseArrayLiteral()

	default:
		return nil, p.errorf(tok, "expected expression")
	}
}

// resolveVar looks up a variable name
func (p *Parser) resolveVar(tok Token) (*types.VarSymbol, error) {
	sym, ok := p.symbols.Resolve(tok.Value)
	if !ok {
		return nil, p.errorf(tok, "undeclared variable '%s'", tok.Value)
	}
	v, ok := sym.(*types.VarSymbol)
	if !ok {
		return nil, p.errorf(tok, "'%s' is a function, not a variable", tok.Value)
	}
	return v, nil
}

// parseCall parses name(args) and checks the arguments against the signature
func (p *Parser) parseCall() (Expr, error) {
	nameTok := p.current
	p.nextToken() // consume name
	p.nextToken() // consume '('

	var args []Expr
	var argToks []Token
	if p.current.Type != TOKEN_RPAREN {
		for {
			argToks = append(argToks, p.current)
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(TOKEN_RPAREN, "')' after arguments"); err != nil {
		return nil, err
	}

	sym, ok := p.symbols.Resolve(nameTok.Value)
	if !ok {
		return nil, p.errorf(nameTok, "undeclared function '%s'", nameTok.Value)
	}
	fn, ok := sym.(*types.FuncSymbol)
	if !ok {
		return nil, p.errorf(nameTok, "'%s' is not a function", nameTok.Value)
	}
	if len(args) != len(fn.Params) {
		return nil, p.errorf(nameTok, "function '%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	for i, arg := range args {
		if err := p.operand(arg, argToks[i]); err != nil {
			return nil, err
		}
		if fn.Accepts(i, arg.Type()) {
			continue
		}
		switch fn.Relax {
		case types.RelaxAnyScalar:
			return nil, p.errorf(argToks[i], "argument %d of '%s' must be int, float, bool or string, got %s",
				i+1, fn.Name, arg.Type())
		case types.RelaxAnyArray:
			return nil, p.errorf(argToks[i], "argument %d of '%s' must be an array, got %s",
				i+1, fn.Name, arg.Type())
		default:
			return nil, p.errorf(argToks[i], "argument %d of '%s' must be %s, got %s",
				i+1, fn.Name, fn.Params[i], arg.Type())
		}
	}

	return &CallExpr{Pos: nameTok.Position, Callee: fn.Name, Args: args, Typ: fn.Result}, nil
}

// parseArrayLiteral parses {a, b, ...}. Elements must share one type.
func (p *Parser) parseArrayLiteral() (Expr, error) {
	tok := p.current
	p.nextToken() // consume '{'

	lit := &ArrayLitExpr{Pos: tok.Position}
	var elemType types.Type
	if p.current.Type != TOKEN_RBRACE {
		for {
			elemTok := p.current
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.operand(elem, elemTok); err != nil {
				return nil, err
			}
			typ := elem.Type()
			if typ.Kind == types.KindVoid {
				return nil, p.errorf(elemTok, "array elements cannot be void")
			}
			if len(lit.Elements) == 0 {
				elemType = typ
			} else if !elemType.AssignableFrom(typ) {
				return nil, p.errorf(elemTok, "array literal elements must all be %s, got %s", elemType, typ)
			}
			lit.Elements = append(lit.Elements, elem)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(TOKEN_RBRACE, "'}' after array elements"); err != nil {
		return nil, err
	}

	if len(lit.Elements) > 0 {
		lit.Typ = types.ArrayOf(elemType)
	}
	return lit, nil
}
