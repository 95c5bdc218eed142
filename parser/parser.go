package parser

import (
	"frogc/diag"
	"frogc/types"
)

// Parser parses a token stream into a typed AST, checking types and
// resolving names as it goes. It stops at the first error.
type Parser struct {
	tokens  []Token
	pos     int // index of current in tokens
	current Token
	peek    Token

	symbols   *types.SymbolTable
	fn        *types.FuncSymbol // enclosing function, nil at top level
	loopDepth int
}

// NewParser creates a Parser over tokens produced by Tokenize. The stream
// must end with an EOF token.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TOKEN_EOF {
		var end Position
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Position
		}
		tokens = append(tokens, Token{Type: TOKEN_EOF, Position: end})
	}
	p := &Parser{
		tokens:  tokens,
		symbols: types.NewSymbolTable(),
	}
	p.seek(0)
	return p
}

// Parse builds the typed AST for a whole program
func Parse(tokens []Token) (*Program, error) {
	return NewParser(tokens).ParseProgram()
}

// ParseSource tokenizes and parses src
func ParseSource(src string) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// seek moves the cursor to token index i
func (p *Parser) seek(i int) {
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	p.pos = i
	p.current = p.tokens[i]
	if i+1 < len(p.tokens) {
		p.peek = p.tokens[i+1]
	} else {
		p.peek = p.tokens[i]
	}
}

// nextToken advances to the next token. EOF is sticky.
func (p *Parser) nextToken() {
	p.seek(p.pos + 1)
}

// match consumes the current token if it has type tt
func (p *Parser) match(tt TokenType) bool {
	if p.current.Type != tt {
		return false
	}
	p.nextToken()
	return true
}

// expect consumes a token of type tt or fails with "expected <what>"
func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.current
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s", what)
	}
	p.nextToken()
	return tok, nil
}

// errorf reports a parse or semantic error at tok
func (p *Parser) errorf(tok Token, format string, args ...interface{}) error {
	return diag.At(diag.KindParse, tok.Position.Line, tok.Position.Column, tok.describe(), format, args...)
}
