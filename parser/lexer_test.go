package parser

import (
	"testing"

	"frogc/diag"

	"github.com/nalgeon/be"
)

func tokenTypes(t *testing.T, input string) []TokenType {
	t.Helper()
	toks, err := Tokenize(input)
	be.Err(t, err, nil)
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexerNumberTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []Token
	}{
		{"42", []Token{{Type: TOKEN_INT, Value: "42"}, {Type: TOKEN_EOF}}},
		{"0", []Token{{Type: TOKEN_INT, Value: "0"}, {Type: TOKEN_EOF}}},
		{"3.14", []Token{{Type: TOKEN_FLOAT, Value: "3.14"}, {Type: TOKEN_EOF}}},
		{"1.5e10", []Token{{Type: TOKEN_FLOAT, Value: "1.5e10"}, {Type: TOKEN_EOF}}},
		{"2.0E-3", []Token{{Type: TOKEN_FLOAT, Value: "2.0E-3"}, {Type: TOKEN_EOF}}},
		{
			"-5",
			[]Token{{Type: TOKEN_MINUS, Value: "-"}, {Type: TOKEN_INT, Value: "5"}, {Type: TOKEN_EOF}},
		},
		{
			"7 8.25",
			[]Token{{Type: TOKEN_INT, Value: "7"}, {Type: TOKEN_FLOAT, Value: "8.25"}, {Type: TOKEN_EOF}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			be.Err(t, err, nil)
			be.Equal(t, len(toks), len(tt.want))
			for i, want := range tt.want {
				if toks[i].Type != want.Type {
					t.Errorf("token[%d] type = %s, want %s", i, toks[i].Type, want.Type)
				}
				if toks[i].Value != want.Value {
					t.Errorf("token[%d] value = %s, want %s", i, toks[i].Value, want.Value)
				}
			}
		})
	}
}

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"var", TOKEN_VAR},
		{"func", TOKEN_FUNC},
		{"return", TOKEN_RETURN},
		{"if", TOKEN_IF},
		{"else", TOKEN_ELSE},
		{"for", TOKEN_FOR},
		{"while", TOKEN_WHILE},
		{"break", TOKEN_BREAK},
		{"continue", TOKEN_CONTINUE},
		{"int", TOKEN_TYPE_INT},
		{"float", TOKEN_TYPE_FLOAT},
		{"bool", TOKEN_TYPE_BOOL},
		{"string", TOKEN_TYPE_STRING},
		{"array", TOKEN_TYPE_ARRAY},
		{"void", TOKEN_TYPE_VOID},
		{"true", TOKEN_TRUE},
		{"false", TOKEN_FALSE},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, tokenTypes(t, tt.input), []TokenType{tt.want, TOKEN_EOF})
		})
	}
}

func TestLexerKeywordBoundary(t *testing.T) {
	tests := []string{"trueValue", "true_", "true1", "iffy", "integer", "variable", "formal", "arrays", "voidness", "falsey"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			toks, err := Tokenize(input)
			be.Err(t, err, nil)
			be.Equal(t, len(toks), 2)
			be.Equal(t, toks[0].Type, TOKEN_IDENTIFIER)
			be.Equal(t, toks[0].Value, input)
		})
	}
}

func TestLexerOperators(t *testing.T) {
	input := "== != <= >= && || = < > ! + - * / % ( ) { } [ ] ; ,"
	want := []TokenType{
		TOKEN_EQ, TOKEN_NE, TOKEN_LE, TOKEN_GE, TOKEN_AND, TOKEN_OR,
		TOKEN_ASSIGN, TOKEN_LT, TOKEN_GT, TOKEN_NOT,
		TOKEN_PLUS, TOKEN_MINUS, TOKEN_STAR, TOKEN_SLASH, TOKEN_PERCENT,
		TOKEN_LPAREN, TOKEN_RPAREN, TOKEN_LBRACE, TOKEN_RBRACE,
		TOKEN_LBRACKET, TOKEN_RBRACKET, TOKEN_SEMICOLON, TOKEN_COMMA,
		TOKEN_EOF,
	}
	be.Equal(t, tokenTypes(t, input), want)
}

func TestLexerTwoCharOperatorsNeedNoSpaces(t *testing.T) {
	be.Equal(t, tokenTypes(t, "a<=b"), []TokenType{TOKEN_IDENTIFIER, TOKEN_LE, TOKEN_IDENTIFIER, TOKEN_EOF})
	be.Equal(t, tokenTypes(t, "!=="), []TokenType{TOKEN_NE, TOKEN_ASSIGN, TOKEN_EOF})
	be.Equal(t, tokenTypes(t, "x=-1"), []TokenType{TOKEN_IDENTIFIER, TOKEN_ASSIGN, TOKEN_MINUS, TOKEN_INT, TOKEN_EOF})
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input   string
		value   string
		literal string
	}{
		{`"hello"`, `"hello"`, "hello"},
		{`""`, `""`, ""},
		{`"a\nb"`, `"a\nb"`, "a\nb"},
		{`"tab\there"`, `"tab\there"`, "tab\there"},
		{`"say \"hi\""`, `"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `"back\\slash"`, `back\slash`},
		{`"keep \q"`, `"keep \q"`, `keep \q`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			be.Err(t, err, nil)
			be.Equal(t, toks[0].Type, TOKEN_STRING)
			be.Equal(t, toks[0].Value, tt.value)
			be.Equal(t, toks[0].Literal, tt.literal)
		})
	}
}

func TestLexerCommentsSkipped(t *testing.T) {
	input := "var // the keyword\n// a whole line\nx"
	be.Equal(t, tokenTypes(t, input), []TokenType{TOKEN_VAR, TOKEN_IDENTIFIER, TOKEN_EOF})
}

func TestLexerPositions(t *testing.T) {
	input := "var int x;\n  x = 10;\n"
	toks, err := Tokenize(input)
	be.Err(t, err, nil)

	want := []struct {
		typ       TokenType
		line, col int
	}{
		{TOKEN_VAR, 1, 1},
		{TOKEN_TYPE_INT, 1, 5},
		{TOKEN_IDENTIFIER, 1, 9},
		{TOKEN_SEMICOLON, 1, 10},
		{TOKEN_IDENTIFIER, 2, 3},
		{TOKEN_ASSIGN, 2, 5},
		{TOKEN_INT, 2, 7},
		{TOKEN_SEMICOLON, 2, 9},
		{TOKEN_EOF, 3, 1},
	}
	be.Equal(t, len(toks), len(want))
	for i, w := range want {
		be.Equal(t, toks[i].Type, w.typ)
		be.Equal(t, toks[i].Position.Line, w.line)
		be.Equal(t, toks[i].Position.Column, w.col)
	}
}

func TestLexerNewlineInsideString(t *testing.T) {
	toks, err := Tokenize("\"a\nb\" x")
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Literal, "a\nb")
	be.Equal(t, toks[1].Position.Line, 2)
	be.Equal(t, toks[1].Position.Column, 4)
}

func TestLexerEmptyInput(t *testing.T) {
	toks, err := Tokenize("  \n\t ")
	be.Err(t, err, nil)
	be.Equal(t, len(toks), 1)
	be.Equal(t, toks[0].Type, TOKEN_EOF)
	be.Equal(t, toks[0].Position.Line, 2)
	be.Equal(t, toks[0].Position.Column, 3)
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		line, col int
		want      string
	}{
		{"at sign", "var int x = @;", 1, 13, "error at 1:13 near '@': Unexpected character: '@'"},
		{"second line", "x;\n  #", 2, 3, "error at 2:3 near '#': Unexpected character: '#'"},
		{"single ampersand", "a & b", 1, 3, "error at 1:3 near '&': Unexpected character: '&'"},
		{"unterminated string", `"abc`, 1, 1, `error at 1:1 near '"': Unexpected character: '"'`},
		{"trailing dot", "1.", 1, 2, "error at 1:2 near '.': Unexpected character: '.'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			be.Err(t, err)
			kind, ok := diag.KindOf(err)
			be.True(t, ok)
			be.Equal(t, kind, diag.KindLex)
			de := err.(*diag.Error)
			be.Equal(t, de.Line, tt.line)
			be.Equal(t, de.Column, tt.col)
			be.Equal(t, err.Error(), tt.want)
		})
	}
}
