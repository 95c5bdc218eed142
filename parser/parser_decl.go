package parser

import (
	"frogc/types"
)

// ParseProgram parses a complete program: top-level functions, variable
// declarations and statements in any order
func (p *Parser) ParseProgram() (*Program, error) {
	if err := p.declareFunctions(); err != nil {
		return nil, err
	}

	prog := &Program{}
	for p.current.Type != TOKEN_EOF {
		if p.current.Type == TOKEN_FUNC {
			fn, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}

	return prog, nil
}

// signature is a parsed function header
type signature struct {
	nameTok Token
	params  []Param
	sym     *types.FuncSymbol
}

// declareFunctions scans the top level for function headers and declares
// them before any body is parsed, so calls may precede the callee
func (p *Parser) declareFunctions() error {
	depth := 0
	for i := 0; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TOKEN_LBRACE:
			depth++
		case TOKEN_RBRACE:
			if depth > 0 {
				depth--
			}
		case TOKEN_FUNC:
			if depth > 0 {
				continue
			}
			p.seek(i + 1) // past 'func'
			sig, err := p.parseSignature()
			if err != nil {
				return err
			}
			if err := p.symbols.Declare(sig.sym); err != nil {
				return p.errorf(sig.nameTok, "%v", err)
			}
			i = p.pos - 1
		}
	}
	p.seek(0)
	return nil
}

// parseSignature parses <type> name(<type> a, ...) with current just past 'func'
func (p *Parser) parseSignature() (*signature, error) {
	result, err := p.parseType(true)
	if err != nil {
		return nil, err
	}

	nameTok, err := p.expect(TOKEN_IDENTIFIER, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LPAREN, "'(' after function name"); err != nil {
		return nil, err
	}

	sig := &signature{nameTok: nameTok}
	seen := make(map[string]bool)
	if p.current.Type != TOKEN_RPAREN {
		for {
			typ, err := p.parseType(false)
			if err != nil {
				return nil, err
			}
			paramTok, err := p.expect(TOKEN_IDENTIFIER, "parameter name")
			if err != nil {
				return nil, err
			}
			if seen[paramTok.Value] {
				return nil, p.errorf(paramTok, "duplicate parameter '%s'", paramTok.Value)
			}
			seen[paramTok.Value] = true
			sig.params = append(sig.params, Param{Name: paramTok.Value, Type: typ})

			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(TOKEN_RPAREN, "')' after parameters"); err != nil {
		return nil, err
	}

	paramTypes := make([]types.Type, len(sig.params))
	for i, param := range sig.params {
		paramTypes[i] = param.Type
	}
	sig.sym = &types.FuncSymbol{Name: nameTok.Value, Result: result, Params: paramTypes}
	return sig, nil
}

// parseFuncDecl parses a whole function; its symbol was declared by
// declareFunctions
func (p *Parser) parseFuncDecl() (*FuncDecl, error) {
	pos := p.current.Position
	p.nextToken() // consume 'func'

	sig, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	sym, ok := p.symbols.Resolve(sig.nameTok.Value)
	fnSym, isFunc := sym.(*types.FuncSymbol)
	if !ok || !isFunc {
		return nil, p.errorf(sig.nameTok, "function '%s' was not declared", sig.nameTok.Value)
	}

	if p.current.Type != TOKEN_LBRACE {
		return nil, p.errorf(p.current, "expected '{' before function body")
	}

	// Parameters live in their own scope around the body block
	p.symbols.Push()
	for _, param := range sig.params {
		if err := p.symbols.Declare(&types.VarSymbol{Name: param.Name, Type: param.Type}); err != nil {
			return nil, p.errorf(sig.nameTok, "%v", err)
		}
	}
	p.fn = fnSym
	body, err := p.parseBlock()
	p.fn = nil
	p.symbols.Pop()
	if err != nil {
		return nil, err
	}

	if fnSym.Result.Kind != types.KindVoid && !AlwaysReturns(body) {
		return nil, p.errorf(sig.nameTok, "function '%s' must return a value of type %s on every path",
			fnSym.Name, fnSym.Result)
	}

	return &FuncDecl{
		Pos:    pos,
		Name:   fnSym.Name,
		Params: sig.params,
		Result: fnSym.Result,
		Body:   body,
	}, nil
}

// parseType parses int, float, bool, string, array<T> and, where allowed, void
func (p *Parser) parseType(allowVoid bool) (types.Type, error) {
	tok := p.current
	switch tok.Type {
	case TOKEN_TYPE_INT:
		p.nextToken()
		return types.Int, nil
	case TOKEN_TYPE_FLOAT:
		p.nextToken()
		return types.Float, nil
	case TOKEN_TYPE_BOOL:
		p.nextToken()
		return types.Bool, nil
	case TOKEN_TYPE_STRING:
		p.nextToken()
		return types.String, nil
	case TOKEN_TYPE_VOID:
		if !allowVoid {
			return types.Type{}, p.errorf(tok, "type void is only allowed as a function result")
		}
		p.nextToken()
		return types.Void, nil
	case TOKEN_TYPE_ARRAY:
		p.nextToken() // consume 'array'
		if _, err := p.expect(TOKEN_LT, "'<' after 'array'"); err != nil {
			return types.Type{}, err
		}
		elem, err := p.parseType(false)
		if err != nil {
			return types.Type{}, err
		}
		if _, err := p.expect(TOKEN_GT, "'>' to close array type"); err != nil {
			return types.Type{}, err
		}
		return types.ArrayOf(elem), nil
	default:
		return types.Type{}, p.errorf(tok, "expected type")
	}
}

// parseVarDecl parses var <type> name [size] = init;
func (p *Parser) parseVarDecl() (Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'var'

	typ, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TOKEN_IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	decl := &VarDeclStmt{Pos: pos, Type: typ, Name: nameTok.Value}

	if p.current.Type == TOKEN_LBRACKET {
		sizeTok := p.peek
		p.nextToken() // consume '['
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_RBRACKET, "']' after array size"); err != nil {
			return nil, err
		}
		if !typ.IsArray() {
			return nil, p.errorf(nameTok, "array size given for non-array variable '%s' of type %s", decl.Name, typ)
		}
		lit, ok := size.(*LiteralExpr)
		if !ok || lit.Value.Kind != types.KindInt {
			return nil, p.errorf(sizeTok, "array size must be an integer literal")
		}
		decl.Size = size
	}

	if p.current.Type == TOKEN_ASSIGN {
		initTok := p.peek
		p.nextToken() // consume '='
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if lit, ok := init.(*ArrayLitExpr); ok {
			if decl.Size != nil {
				return nil, p.errorf(initTok, "cannot combine an array size with an array literal initializer")
			}
			if len(lit.Elements) == 0 && typ.IsArray() {
				lit.Typ = typ
			}
		}
		if err := p.operand(init, initTok); err != nil {
			return nil, err
		}
		if !typ.AssignableFrom(init.Type()) {
			return nil, p.errorf(initTok, "cannot initialize '%s' of type %s with a value of type %s",
				decl.Name, typ, init.Type())
		}
		decl.Init = init
	}

	if _, err := p.expect(TOKEN_SEMICOLON, "';' after variable declaration"); err != nil {
		return nil, err
	}
	if err := p.symbols.Declare(&types.VarSymbol{Name: decl.Name, Type: typ}); err != nil {
		return nil, p.errorf(nameTok, "%v", err)
	}
	return decl, nil
}
