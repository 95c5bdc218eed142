package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"var int x = 1;", false},
		{"func int f() {", true},
		{"func int f() {\n  return 1;\n}", false},
		{"print(1 +", true},
		{"var int x = @; {", false},
		{"}", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			be.Equal(t, incomplete(tt.src), tt.want)
		})
	}
}

func TestSessionKeepsCompiledEntries(t *testing.T) {
	s := &session{}

	listing, err := s.eval("var int x = 2;")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(listing, `STORE_GLOBAL "x"`))

	_, err = s.eval("print(y);")
	be.Err(t, err, "undeclared variable 'y'")
	be.Equal(t, s.entries, []string{"var int x = 2;"})

	listing, err = s.eval("print(x * 3);")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(listing, `LOAD_GLOBAL "x"`))
	be.True(t, strings.Contains(listing, "CALL print@0, 1"))

	var out strings.Builder
	be.True(t, !s.command(&out, ":source"))
	be.Equal(t, out.String(), "var int x = 2;\nprint(x * 3);\n")

	out.Reset()
	be.True(t, !s.command(&out, ":reset"))
	be.Equal(t, len(s.entries), 0)

	out.Reset()
	be.True(t, !s.command(&out, ":help"))
	be.True(t, strings.HasPrefix(out.String(), "unknown command"))
	be.True(t, s.command(&out, ":quit"))
}
