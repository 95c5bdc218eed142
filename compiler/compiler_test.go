package compiler

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"frogc/bytecode"
	"frogc/diag"
	"frogc/parser"
	"frogc/trace"

	"github.com/nalgeon/be"
)

func TestCompile(t *testing.T) {
	res, err := Compile("var int x = (10 + 10 + 20 + 30);", Options{})
	be.Err(t, err, nil)
	be.Equal(t, len(res.Tokens), 15)
	be.Equal(t, res.Tokens[len(res.Tokens)-1].Type, parser.TOKEN_EOF)
	be.Equal(t, bytecode.DisassembleString(res.Module),
		"=== CODE (disasm) ===\n0000  PUSH_CONST INT(70)\n0001  STORE_GLOBAL \"x\"\n")
}

func TestCompileWithoutOptimizer(t *testing.T) {
	res, err := Compile("var int y = 2 + 3 * 4;", Options{DisableOptimizer: true})
	be.Err(t, err, nil)
	be.True(t, res.AST == res.Optimized)

	ops := make([]bytecode.OpCode, len(res.Module.Code))
	for i, in := range res.Module.Code {
		ops[i] = in.Op
	}
	be.Equal(t, ops, []bytecode.OpCode{
		bytecode.OP_PUSH_CONST, bytecode.OP_PUSH_CONST, bytecode.OP_PUSH_CONST,
		bytecode.OP_MUL, bytecode.OP_ADD, bytecode.OP_STORE_GLOBAL,
	})
}

func TestAnalyzeKeepsBothTrees(t *testing.T) {
	res, err := Analyze("var int y = 2 + 3 * 4;", Options{})
	be.Err(t, err, nil)
	be.Equal(t, res.Module, (*bytecode.Module)(nil))
	be.Equal(t, parser.Unparse(res.AST), "var int y = 2 + 3 * 4;\n")
	be.Equal(t, parser.Unparse(res.Optimized), "var int y = 14;\n")
}

func TestCompileDeadUnbracedDeclaration(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"if false", "if (false) var int g = 1; print(g);"},
		{"dropped else", "if (true) print(1); else var int g = 2; print(g);"},
		{"while false", "while (false) var int g = 1; print(g);"},
		{"in function", "func void f() { if (false) var int g = 1; print(g); } f();"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, disable := range []bool{true, false} {
				res, err := Compile(tt.src, Options{DisableOptimizer: disable})
				be.Err(t, err, nil)
				be.True(t, len(res.Module.Code) > 0)
			}

			res, err := Compile(tt.src, Options{})
			be.Err(t, err, nil)
			listing := bytecode.DisassembleString(res.Module)
			be.True(t, strings.Contains(listing, "print@0, 1"))
			if !strings.Contains(tt.src, "func") {
				be.True(t, strings.Contains(listing, `LOAD_GLOBAL "g"`))
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
		want string
	}{
		{"lex", "var int x = @;", diag.KindLex, "error at 1:13 near '@': Unexpected character: '@'"},
		{"parse", "print(y);", diag.KindParse, "error at 1:7 near 'y': undeclared variable 'y'"},
		{"codegen", "var array<string> s[2];", diag.KindCodegen, "arrays of string cannot be created with a size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, Options{})
			be.Err(t, err, tt.want)
			kind, ok := diag.KindOf(err)
			be.True(t, ok)
			be.Equal(t, kind, tt.kind)
		})
	}
}

func TestCompileTrace(t *testing.T) {
	var out strings.Builder
	tr := trace.New(true, nil, &out)

	_, err := Compile("var int x = 1 + 2;", Options{Tracer: tr})
	be.Err(t, err, nil)
	be.Equal(t, out.String(), strings.Join([]string{
		"[TRACE] PHASE lex 9 tokens",
		"[TRACE] PHASE parse 0 functions, 1 statements",
		"[TRACE] PHASE optimize 0 functions, 1 statements",
		"[TRACE] PHASE generate 7 constants, 5 functions, 2 instructions",
	}, "\n")+"\n")

	out.Reset()
	tr = trace.New(true, []string{"parse"}, &out)
	_, err = Compile("var int x = ;", Options{Tracer: tr})
	be.Err(t, err, "expected expression")
	be.True(t, strings.HasPrefix(out.String(), "[TRACE] FAIL parse error at 1:13"))
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "nope.frog"), Options{})
	be.Err(t, err, "read source")
	kind, _ := diag.KindOf(err)
	be.Equal(t, kind, diag.KindIO)
}

// Compilations share no state, so concurrent runs must match a serial run.
func TestCompileConcurrently(t *testing.T) {
	const workers = 16
	src := func(i int) string {
		return fmt.Sprintf(`
func int scale(int v) { return v * %d; }
var int total = 0;
for (var int i = 0; i < 10; i = i + 1) { total = total + scale(i); }
print(total);
`, i)
	}

	want := make([]string, workers)
	for i := range want {
		res, err := Compile(src(i), Options{})
		be.Err(t, err, nil)
		want[i] = bytecode.DisassembleString(res.Module)
	}

	got := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Compile(src(i), Options{})
			if err != nil {
				errs[i] = err
				return
			}
			got[i] = bytecode.DisassembleString(res.Module)
		}(i)
	}
	wg.Wait()

	for i := range got {
		be.Err(t, errs[i], nil)
		be.Equal(t, got[i], want[i])
	}
}
