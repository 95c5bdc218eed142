package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"frogc/objfile"

	"github.com/nalgeon/be"
)

// frogc runs the command line in dir with a config file that does not exist
func frogc(t *testing.T, dir string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-config", filepath.Join(dir, "missing.yaml")}, args...)
	code = run(context.Background(), full, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestBuildDisasmHash(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "var int x = (10 + 10 + 20 + 30);\n")

	code, stdout, stderr := frogc(t, dir, "build", src)
	be.Equal(t, code, 0)
	be.Equal(t, stderr, "")
	out := filepath.Join(dir, "prog.frogc")
	be.True(t, strings.HasPrefix(stdout, "OK: wrote "+out+"\n"))

	code, stdout, _ = frogc(t, dir, "disasm", out)
	be.Equal(t, code, 0)
	be.Equal(t, stdout, "=== CODE (disasm) ===\n0000  PUSH_CONST INT(70)\n0001  STORE_GLOBAL \"x\"\n")

	data, err := os.ReadFile(out)
	be.Err(t, err, nil)
	m, err := objfile.Unmarshal(data)
	be.Err(t, err, nil)
	sum, err := objfile.Fingerprint(m)
	be.Err(t, err, nil)

	code, stdout, _ = frogc(t, dir, "hash", out)
	be.Equal(t, code, 0)
	be.Equal(t, stdout, sum+"  "+out+"\n")
}

func TestBuildOutputFlag(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "print(1);")
	out := filepath.Join(dir, "nested", "out.frogc")

	code, stdout, _ := frogc(t, dir, "build", src, "-o", out)
	be.Equal(t, code, 0)
	be.True(t, strings.Contains(stdout, "OK: wrote "+out))
	_, err := os.Stat(out)
	be.Err(t, err, nil)
}

func TestScriptForm(t *testing.T) {
	dir := t.TempDir()

	out := filepath.Join(dir, "a.frogc")
	code, _, stderr := frogc(t, dir, "var int a = 1;", out)
	be.Equal(t, code, 0)
	be.Equal(t, stderr, "")
	_, err := os.Stat(out)
	be.Err(t, err, nil)

	out = filepath.Join(dir, "b.frogc")
	code, _, _ = frogc(t, dir, "'var int b = 2;' "+out)
	be.Equal(t, code, 0)
	_, err = os.Stat(out)
	be.Err(t, err, nil)
}

func TestPrintTrees(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "var int y = 2 + 3 * 4;")

	code, stdout, _ := frogc(t, dir, "ast", src)
	be.Equal(t, code, 0)
	be.Equal(t, stdout, "var int y = 2 + 3 * 4;\n")

	code, stdout, _ = frogc(t, dir, "opt-ast", src)
	be.Equal(t, code, 0)
	be.Equal(t, stdout, "var int y = 14;\n")
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "bad.frog"), "var int x = @;")
	junk := writeFile(t, filepath.Join(dir, "junk.frogc"), "not a module")

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"compile error", []string{"build", bad}, 1, "error at 1:13 near '@': Unexpected character: '@'\n"},
		{"missing source", []string{"build", filepath.Join(dir, "nope.frog")}, 2, "io error: read source: open "},
		{"bad module", []string{"disasm", junk}, 2, "error: bad magic"},
		{"missing module", []string{"hash", filepath.Join(dir, "nope.frogc")}, 2, "io error: open "},
		{"unknown command", []string{"frobnicate"}, 2, "unknown command: frobnicate"},
		{"no command", nil, 2, "Usage:"},
		{"missing argument", []string{"disasm"}, 2, "Usage: frogc disasm"},
		{"extra argument", []string{"build", bad, bad}, 2, "Usage: frogc build"},
		{"unknown run flag", []string{"run", bad, "--turbo"}, 2, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := frogc(t, dir, tt.args...)
			be.Equal(t, code, tt.code)
			be.True(t, strings.Contains(stderr, tt.stderr))
		})
	}
}

func TestTraceFlag(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "var int x = 1;")

	code, _, stderr := frogc(t, dir, "-trace", "-trace-filter", "gen*", "build", src)
	be.Equal(t, code, 0)
	be.Equal(t, stderr, "[TRACE] PHASE generate 7 constants, 5 functions, 2 instructions\n")
}

func TestRunUsesConfiguredVM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake VM is a shell script")
	}
	dir := t.TempDir()
	vm := filepath.Join(dir, "frogvm")
	writeFile(t, vm, "#!/bin/sh\necho \"$@\"\nexit 4\n")
	be.Err(t, os.Chmod(vm, 0o755), nil)

	cfg := writeFile(t, filepath.Join(dir, "frogc.yaml"), "vm:\n  path: "+vm+"\n  flags: [--gc-log]\n")
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "print(1);")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "run", src, "--trace"}, &out, &errOut)
	be.Equal(t, code, 4)
	be.Equal(t, out.String(), "run "+filepath.Join(dir, "prog.frogc")+" --gc-log --trace\n")
}

func TestRunMissingVM(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "prog.frog"), "print(1);")
	cfg := writeFile(t, filepath.Join(dir, "frogc.yaml"), "vm:\n  path: "+filepath.Join(dir, "no-vm")+"\n")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "run", src}, &out, &errOut)
	be.Equal(t, code, 1)
	be.True(t, strings.HasPrefix(errOut.String(), "runtime error: "))
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, filepath.Join(dir, "frogc.yaml"), "optimise: false\n")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "repl"}, &out, &errOut)
	be.Equal(t, code, 2)
	be.True(t, strings.HasPrefix(errOut.String(), "frogc: parse config: "))
}

func TestScriptInvocation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		out  string
		ok   bool
	}{
		{"two args", []string{"print(1);", "o.frogc"}, "print(1);", "o.frogc", true},
		{"command name", []string{"disasm", "o.frogc"}, "", "", false},
		{"wrong extension", []string{"print(1);", "o.bin"}, "", "", false},
		{"single arg", []string{`"print(1);" o.frogc`}, "print(1);", "o.frogc", true},
		{"single arg single quotes", []string{"'var int x = 1;'   out/x.frogc "}, "var int x = 1;", "out/x.frogc", true},
		{"single arg without space", []string{"o.frogc"}, "", "", false},
		{"three args", []string{"a", "b", "c.frogc"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, ok := scriptInvocation(tt.args)
			be.Equal(t, ok, tt.ok)
			be.Equal(t, code, tt.code)
			be.Equal(t, out, tt.out)
		})
	}
}

func TestDeriveOutputPath(t *testing.T) {
	be.Equal(t, deriveOutputPath("prog.frog"), "prog.frogc")
	be.Equal(t, deriveOutputPath(filepath.Join("src", "prog.frog")), filepath.Join("src", "prog.frogc"))
	be.Equal(t, deriveOutputPath("prog"), "prog.frogc")
}
