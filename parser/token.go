package parser

import "fmt"

// TokenType represents different types of lexical tokens
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota
	TOKEN_COMMENT // never emitted

	// Literals
	TOKEN_INT    // 42
	TOKEN_FLOAT  // 3.14, 1.5e10
	TOKEN_STRING // "hello"

	// Keywords
	TOKEN_VAR
	TOKEN_FUNC
	TOKEN_RETURN
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_FOR
	TOKEN_WHILE
	TOKEN_BREAK
	TOKEN_CONTINUE
	TOKEN_TRUE
	TOKEN_FALSE

	// Type keywords
	TOKEN_TYPE_INT
	TOKEN_TYPE_FLOAT
	TOKEN_TYPE_BOOL
	TOKEN_TYPE_STRING
	TOKEN_TYPE_ARRAY
	TOKEN_TYPE_VOID

	// Identifiers
	TOKEN_IDENTIFIER

	// Operators
	TOKEN_PLUS    // +
	TOKEN_MINUS   // -
	TOKEN_STAR    // *
	TOKEN_SLASH   // /
	TOKEN_PERCENT // %

	TOKEN_EQ // ==
	TOKEN_NE // !=
	TOKEN_LT // <
	TOKEN_GT // >
	TOKEN_LE // <=
	TOKEN_GE // >=

	TOKEN_AND // &&
	TOKEN_OR  // ||
	TOKEN_NOT // !

	TOKEN_ASSIGN // =

	// Delimiters
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
)

// Position represents a position in the source code
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders the position as line:column
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Value    string
	Literal  string // Decoded string value (for TOKEN_STRING)
	Position Position
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:         "EOF",
	TOKEN_COMMENT:     "COMMENT",
	TOKEN_INT:         "INT_LITERAL",
	TOKEN_FLOAT:       "FLOAT_LITERAL",
	TOKEN_STRING:      "STRING_LITERAL",
	TOKEN_VAR:         "VAR",
	TOKEN_FUNC:        "FUNC",
	TOKEN_RETURN:      "RETURN",
	TOKEN_IF:          "IF",
	TOKEN_ELSE:        "ELSE",
	TOKEN_FOR:         "FOR",
	TOKEN_WHILE:       "WHILE",
	TOKEN_BREAK:       "BREAK",
	TOKEN_CONTINUE:    "CONTINUE",
	TOKEN_TRUE:        "BOOL_TRUE",
	TOKEN_FALSE:       "BOOL_FALSE",
	TOKEN_TYPE_INT:    "TYPE_INT",
	TOKEN_TYPE_FLOAT:  "TYPE_FLOAT",
	TOKEN_TYPE_BOOL:   "TYPE_BOOL",
	TOKEN_TYPE_STRING: "TYPE_STRING",
	TOKEN_TYPE_ARRAY:  "TYPE_ARRAY",
	TOKEN_TYPE_VOID:   "TYPE_VOID",
	TOKEN_IDENTIFIER:  "IDENT",
	TOKEN_PLUS:        "PLUS",
	TOKEN_MINUS:       "MINUS",
	TOKEN_STAR:        "STAR",
	TOKEN_SLASH:       "SLASH",
	TOKEN_PERCENT:     "PERCENT",
	TOKEN_EQ:          "EQ",
	TOKEN_NE:          "NEQ",
	TOKEN_LT:          "LT",
	TOKEN_GT:          "GT",
	TOKEN_LE:          "LE",
	TOKEN_GE:          "GE",
	TOKEN_AND:         "AND",
	TOKEN_OR:          "OR",
	TOKEN_NOT:         "NOT",
	TOKEN_ASSIGN:      "ASSIGN",
	TOKEN_LPAREN:      "LPAREN",
	TOKEN_RPAREN:      "RPAREN",
	TOKEN_LBRACE:      "LBRACE",
	TOKEN_RBRACE:      "RBRACE",
	TOKEN_LBRACKET:    "LBRACKET",
	TOKEN_RBRACKET:    "RBRACKET",
	TOKEN_COMMA:       "COMMA",
	TOKEN_SEMICOLON:   "SEMICOLON",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// IsTypeKeyword reports whether the token starts a type
func (t TokenType) IsTypeKeyword() bool {
	return t >= TOKEN_TYPE_INT && t <= TOKEN_TYPE_VOID
}

// String renders the token for debugging
func (t Token) String() string {
	if t.Type == TOKEN_EOF {
		return fmt.Sprintf("EOF@%s", t.Position)
	}
	return fmt.Sprintf("%s(%s)@%s", t.Type, t.Value, t.Position)
}

// describe returns the text used in error messages for the token
func (t Token) describe() string {
	if t.Type == TOKEN_EOF {
		return "end of input"
	}
	return t.Value
}
