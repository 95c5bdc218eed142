package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"frogc/diag"
)

// tokenPattern recognizes one kind of token at the start of the remaining
// input. match returns the length of the lexeme, or 0 for no match.
type tokenPattern struct {
	typ   TokenType
	match func(s string) int
}

// word matches a reserved word only when it is not followed by another
// identifier character, so "trueish" stays one identifier
func word(w string) func(string) int {
	return func(s string) int {
		if !strings.HasPrefix(s, w) {
			return 0
		}
		if len(s) > len(w) && isIdentChar(s[len(w)]) {
			return 0
		}
		return len(w)
	}
}

// literal matches a fixed operator or delimiter
func literal(lit string) func(string) int {
	return func(s string) int {
		if strings.HasPrefix(s, lit) {
			return len(lit)
		}
		return 0
	}
}

// pattern matches an anchored regular expression
func pattern(expr string) func(string) int {
	re := regexp.MustCompile(`^(?:` + expr + `)`)
	return func(s string) int {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return 0
		}
		return loc[1]
	}
}

// patterns is tried top to bottom; the first match wins
var patterns = []tokenPattern{
	{TOKEN_VAR, word("var")},
	{TOKEN_FUNC, word("func")},
	{TOKEN_RETURN, word("return")},
	{TOKEN_IF, word("if")},
	{TOKEN_ELSE, word("else")},
	{TOKEN_FOR, word("for")},
	{TOKEN_WHILE, word("while")},
	{TOKEN_BREAK, word("break")},
	{TOKEN_CONTINUE, word("continue")},

	{TOKEN_TYPE_INT, word("int")},
	{TOKEN_TYPE_FLOAT, word("float")},
	{TOKEN_TYPE_BOOL, word("bool")},
	{TOKEN_TYPE_STRING, word("string")},
	{TOKEN_TYPE_ARRAY, word("array")},
	{TOKEN_TYPE_VOID, word("void")},

	{TOKEN_TRUE, word("true")},
	{TOKEN_FALSE, word("false")},

	{TOKEN_FLOAT, pattern(`[0-9]+\.[0-9]+([eE][+-]?[0-9]+)?`)},
	{TOKEN_INT, pattern(`[0-9]+`)},
	{TOKEN_STRING, pattern(`"(?:\\.|[^"\\])*"`)},
	{TOKEN_IDENTIFIER, pattern(`[A-Za-z_][A-Za-z0-9_]*`)},

	{TOKEN_COMMENT, pattern(`//[^\r\n]*`)},

	{TOKEN_EQ, literal("==")},
	{TOKEN_NE, literal("!=")},
	{TOKEN_LE, literal("<=")},
	{TOKEN_GE, literal(">=")},
	{TOKEN_AND, literal("&&")},
	{TOKEN_OR, literal("||")},

	{TOKEN_ASSIGN, literal("=")},
	{TOKEN_LT, literal("<")},
	{TOKEN_GT, literal(">")},
	{TOKEN_NOT, literal("!")},
	{TOKEN_PLUS, literal("+")},
	{TOKEN_MINUS, literal("-")},
	{TOKEN_STAR, literal("*")},
	{TOKEN_SLASH, literal("/")},
	{TOKEN_PERCENT, literal("%")},

	{TOKEN_LPAREN, literal("(")},
	{TOKEN_RPAREN, literal(")")},
	{TOKEN_LBRACE, literal("{")},
	{TOKEN_RBRACE, literal("}")},
	{TOKEN_LBRACKET, literal("[")},
	{TOKEN_RBRACKET, literal("]")},
	{TOKEN_SEMICOLON, literal(";")},
	{TOKEN_COMMA, literal(",")},
}

// Lexer tokenizes Frogito source code
type Lexer struct {
	input    string
	position int // byte offset of the next unread character
	line     int
	column   int
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// Tokenize converts the whole input into tokens, ending with exactly one EOF
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			return tokens, nil
		}
	}
}

// advance consumes n bytes, tracking line and column
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.position++
	}
}

// skipWhitespace skips over whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.position < len(l.input) {
		switch l.input[l.position] {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// NextToken returns the next token from the input. Comments are skipped.
func (l *Lexer) NextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.position >= len(l.input) {
			return Token{Type: TOKEN_EOF, Position: l.pos()}, nil
		}

		rest := l.input[l.position:]
		tok := Token{Position: l.pos()}
		matched := false
		for _, p := range patterns {
			n := p.match(rest)
			if n == 0 {
				continue
			}
			tok.Type = p.typ
			tok.Value = rest[:n]
			matched = true
			break
		}

		if !matched {
			r, _ := utf8.DecodeRuneInString(rest)
			ch := printableRune(r)
			return Token{}, diag.At(diag.KindLex, l.line, l.column, ch, "Unexpected character: '%s'", ch)
		}

		l.advance(len(tok.Value))
		if tok.Type == TOKEN_COMMENT {
			continue
		}
		if tok.Type == TOKEN_STRING {
			tok.Literal = unquote(tok.Value)
		}
		return tok, nil
	}
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}

// printableRune renders control characters in escaped form for messages
func printableRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf(`\x%02x`, r)
	}
	return string(r)
}
