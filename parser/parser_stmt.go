package parser

import (
	"frogc/types"
)

// parseStatement parses a single statement
func (p *Parser) parseStatement() (Stmt, error) {
	switch p.current.Type {
	case TOKEN_VAR:
		return p.parseVarDecl()
	case TOKEN_LBRACE:
		return p.parseBlock()
	case TOKEN_IF:
		return p.parseIfStatement()
	case TOKEN_WHILE:
		return p.parseWhileStatement()
	case TOKEN_FOR:
		return p.parseForStatement()
	case TOKEN_RETURN:
		return p.parseReturnStatement()
	case TOKEN_BREAK:
		return p.parseBreakStatement()
	case TOKEN_CONTINUE:
		return p.parseContinueStatement()
	case TOKEN_FUNC:
		return nil, p.errorf(p.current, "functions may only be declared at the top level")
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlock parses { statements } in a new scope
func (p *Parser) parseBlock() (*BlockStmt, error) {
	pos := p.current.Position
	if _, err := p.expect(TOKEN_LBRACE, "'{'"); err != nil {
		return nil, err
	}

	p.symbols.Push()
	defer p.symbols.Pop()

	block := &BlockStmt{Pos: pos}
	for p.current.Type != TOKEN_RBRACE {
		if p.current.Type == TOKEN_EOF {
			return nil, p.errorf(p.current, "expected '}' to close block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Body = append(block.Body, stmt)
	}
	p.nextToken() // consume '}'

	return block, nil
}

// parseCondition parses ( expr ) and requires a bool
func (p *Parser) parseCondition(keyword string) (Expr, error) {
	if _, err := p.expect(TOKEN_LPAREN, "'(' after '"+keyword+"'"); err != nil {
		return nil, err
	}
	condTok := p.current
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN, "')' after condition"); err != nil {
		return nil, err
	}
	if err := p.requireBool(cond, condTok, keyword); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) requireBool(cond Expr, tok Token, keyword string) error {
	if err := p.operand(cond, tok); err != nil {
		return err
	}
	if cond.Type().Kind != types.KindBool {
		return p.errorf(tok, "%s condition must be bool, got %s", keyword, cond.Type())
	}
	return nil
}

// parseIfStatement parses if (cond) stmt [else stmt]
func (p *Parser) parseIfStatement() (Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'if'

	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Pos: pos, Condition: cond, Then: then}
	if p.match(TOKEN_ELSE) {
		stmt.Else, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseLoopBody parses a loop body with break and continue enabled
func (p *Parser) parseLoopBody() (Stmt, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseStatement()
}

// parseWhileStatement parses while (cond) stmt
func (p *Parser) parseWhileStatement() (Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'while'

	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Pos: pos, Condition: cond, Body: body}, nil
}

// parseForStatement parses for ([init]; [cond]; [post]) stmt. The loop
// header opens a scope so its variable is local to the loop.
func (p *Parser) parseForStatement() (Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'for'
	if _, err := p.expect(TOKEN_LPAREN, "'(' after 'for'"); err != nil {
		return nil, err
	}

	p.symbols.Push()
	defer p.symbols.Pop()

	stmt := &ForStmt{Pos: pos}
	var err error

	switch p.current.Type {
	case TOKEN_SEMICOLON:
		p.nextToken()
	case TOKEN_VAR:
		if stmt.Init, err = p.parseVarDecl(); err != nil {
			return nil, err
		}
	default:
		if stmt.Init, err = p.parseExpressionStatement(); err != nil {
			return nil, err
		}
	}

	if p.current.Type != TOKEN_SEMICOLON {
		condTok := p.current
		if stmt.Condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if err := p.requireBool(stmt.Condition, condTok, "for"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after for condition"); err != nil {
		return nil, err
	}

	if p.current.Type != TOKEN_RPAREN {
		postTok := p.current
		if stmt.Post, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if err := p.operand(stmt.Post, postTok); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TOKEN_RPAREN, "')' after for clauses"); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseLoopBody(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseReturnStatement parses return [value];
func (p *Parser) parseReturnStatement() (Stmt, error) {
	tok := p.current
	p.nextToken() // consume 'return'

	if p.fn == nil {
		return nil, p.errorf(tok, "return outside of a function")
	}

	stmt := &ReturnStmt{Pos: tok.Position, Expected: p.fn.Result}
	got := types.Void
	if p.current.Type != TOKEN_SEMICOLON {
		valueTok := p.current
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.operand(value, valueTok); err != nil {
			return nil, err
		}
		stmt.Value = value
		got = value.Type()
		if got.Kind == types.KindVoid {
			return nil, p.errorf(valueTok, "cannot return the result of a void call")
		}
	}

	if !p.fn.Result.Equal(got) {
		return nil, p.errorf(tok, "function '%s' must return %s, got %s", p.fn.Name, p.fn.Result, got)
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after return"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseBreakStatement parses break;
func (p *Parser) parseBreakStatement() (Stmt, error) {
	tok := p.current
	p.nextToken() // consume 'break'
	if p.loopDepth == 0 {
		return nil, p.errorf(tok, "'break' outside of a loop")
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after 'break'"); err != nil {
		return nil, err
	}
	return &BreakStmt{Pos: tok.Position}, nil
}

// parseContinueStatement parses continue;
func (p *Parser) parseContinueStatement() (Stmt, error) {
	tok := p.current
	p.nextToken() // consume 'continue'
	if p.loopDepth == 0 {
		return nil, p.errorf(tok, "'continue' outside of a loop")
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after 'continue'"); err != nil {
		return nil, err
	}
	return &ContinueStmt{Pos: tok.Position}, nil
}

// parseExpressionStatement parses expr; or the element assignment a[i] = v;
func (p *Parser) parseExpressionStatement() (Stmt, error) {
	if p.current.Type == TOKEN_IDENTIFIER && p.peek.Type == TOKEN_LBRACKET {
		stmt, err := p.tryIndexAssign()
		if err != nil || stmt != nil {
			return stmt, err
		}
	}

	tok := p.current
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operand(expr, tok); err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after expression"); err != nil {
		return nil, err
	}
	return &ExprStmt{Pos: tok.Position, Expr: expr}, nil
}

// tryIndexAssign parses name[...]... = value; and returns nil (with the
// cursor restored) when the statement turns out to be something else
func (p *Parser) tryIndexAssign() (Stmt, error) {
	start := p.pos
	tok := p.current

	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	index, ok := target.(*IndexExpr)
	if !ok || p.current.Type != TOKEN_ASSIGN {
		p.seek(start)
		return nil, nil
	}
	p.nextToken() // consume '='

	valueTok := p.current
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.operand(value, valueTok); err != nil {
		return nil, err
	}
	if !index.Typ.AssignableFrom(value.Type()) {
		return nil, p.errorf(valueTok, "cannot store a value of type %s into an element of type %s",
			value.Type(), index.Typ)
	}
	if _, err := p.expect(TOKEN_SEMICOLON, "';' after assignment"); err != nil {
		return nil, err
	}
	return &IndexAssignStmt{Pos: tok.Position, Target: index, Value: value}, nil
}
