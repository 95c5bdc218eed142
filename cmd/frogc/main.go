package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"unicode"

	"frogc/bytecode"
	"frogc/compiler"
	"frogc/config"
	"frogc/diag"
	"frogc/engine"
	"frogc/objfile"
	"frogc/parser"
	"frogc/trace"
)

const usage = `Usage:
  frogc [flags] <code-string> <output.frogc>
  frogc [flags] build <input.frog> [-o <output.frogc>]
  frogc [flags] run <input.frog> [--trace] [--jit-log] [--gc-log]
  frogc [flags] disasm <input.frogc>
  frogc [flags] ast <input.frog>
  frogc [flags] opt-ast <input.frog>
  frogc [flags] hash <input.frogc>
  frogc [flags] repl

Flags:
`

// Exit codes
const (
	exitOK      = 0
	exitCompile = 1
	exitUsage   = 2
)

var commands = map[string]func(*app, []string) int{
	"build":   (*app).cmdBuild,
	"run":     (*app).cmdRun,
	"disasm":  (*app).cmdDisasm,
	"ast":     (*app).cmdAST,
	"opt-ast": (*app).cmdOptAST,
	"hash":    (*app).cmdHash,
	"repl":    (*app).cmdRepl,
}

// app carries the settings and streams shared by every command
type app struct {
	ctx    context.Context
	cfg    *config.Config
	opts   compiler.Options
	stdout io.Writer
	stderr io.Writer
	log    *log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one frogc invocation and returns its exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "frogc: ", 0)

	fs := flag.NewFlagSet("frogc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", config.DefaultFile, "Settings file")
	noOpt := fs.Bool("no-opt", false, "Disable the optimizer")
	traceEnabled := fs.Bool("trace", false, "Trace compilation phases to stderr")
	traceFilter := fs.String("trace-filter", "", "Trace filter pattern (glob over phase names, e.g. 'lex,parse')")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}

	a := &app{ctx: ctx, cfg: cfg, stdout: stdout, stderr: stderr, log: logger}
	a.opts.DisableOptimizer = *noOpt || !cfg.OptimizeEnabled()

	filters := cfg.Trace.Filters
	if *traceFilter != "" {
		filters = splitList(*traceFilter)
	}
	if *traceEnabled || cfg.Trace.Enabled {
		a.opts.Tracer = trace.New(true, filters, stderr)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	if code, out, ok := scriptInvocation(rest); ok {
		return a.compileToFile(code, out)
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	return cmd(a, rest[1:])
}

// splitList splits a comma separated flag value
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// report prints err the way the compiler formats it and returns the
// matching exit code
func (a *app) report(err error) int {
	var de *diag.Error
	if errors.As(err, &de) && de.Kind == diag.KindIO {
		fmt.Fprintf(a.stderr, "io error: %s\n", de.Msg)
		return exitUsage
	}
	fmt.Fprintln(a.stderr, err)
	if kind, ok := diag.KindOf(err); ok && kind == diag.KindFormat {
		return exitUsage
	}
	return exitCompile
}

// parseInterspersed parses flags that may follow positional arguments
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (a *app) newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: frogc %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// oneFile parses a command that takes exactly one file argument
func (a *app) oneFile(name string, args []string) (string, bool) {
	fs := a.newFlagSet(name, "<file>")
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return "", false
	}
	if len(files) != 1 {
		fs.Usage()
		return "", false
	}
	return files[0], true
}

func (a *app) cmdBuild(args []string) int {
	fs := a.newFlagSet("build", "<input.frog> [-o <output.frogc>]")
	output := fs.String("o", "", "Output file (default: input with a .frogc extension)")
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(files) != 1 {
		fs.Usage()
		return exitUsage
	}

	out := *output
	if out == "" {
		out = deriveOutputPath(files[0])
	}
	res, err := compiler.CompileFile(files[0], a.opts)
	if err != nil {
		return a.report(err)
	}
	if err := writeModule(out, res.Module); err != nil {
		return a.report(err)
	}
	sum, err := objfile.Fingerprint(res.Module)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.stdout, "OK: wrote %s\n", out)
	fmt.Fprintf(a.stdout, "blake2b-256: %s\n", sum)
	return exitOK
}

func (a *app) cmdRun(args []string) int {
	fs := a.newFlagSet("run", "<input.frog> [--trace] [--jit-log] [--gc-log]")
	vmTrace := fs.Bool("trace", false, "Ask the VM to trace execution")
	jitLog := fs.Bool("jit-log", false, "Ask the VM to log JIT activity")
	gcLog := fs.Bool("gc-log", false, "Ask the VM to log garbage collection")
	files, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(files) != 1 {
		fs.Usage()
		return exitUsage
	}

	res, err := compiler.CompileFile(files[0], a.opts)
	if err != nil {
		return a.report(err)
	}
	out := deriveOutputPath(files[0])
	if err := writeModule(out, res.Module); err != nil {
		return a.report(err)
	}

	flags := append([]string(nil), a.cfg.VM.Flags...)
	for _, f := range []struct {
		set  bool
		name string
	}{{*vmTrace, "--trace"}, {*jitLog, "--jit-log"}, {*gcLog, "--gc-log"}} {
		if f.set {
			flags = append(flags, f.name)
		}
	}

	code, err := engine.Run(a.ctx, engine.Options{
		VMPath: a.cfg.VM.Path,
		Flags:  flags,
		Stdout: a.stdout,
		Stderr: a.stderr,
	}, out)
	if err != nil {
		if errors.Is(err, engine.ErrVMNotFound) {
			fmt.Fprintf(a.stderr, "runtime error: %v\n", err)
			return exitCompile
		}
		return a.report(err)
	}
	return code
}

func (a *app) cmdDisasm(args []string) int {
	path, ok := a.oneFile("disasm", args)
	if !ok {
		return exitUsage
	}
	m, err := readModule(path)
	if err != nil {
		return a.report(err)
	}
	if err := bytecode.Disassemble(a.stdout, m); err != nil {
		return a.report(diag.Wrap(diag.KindIO, err, "write listing"))
	}
	return exitOK
}

func (a *app) cmdAST(args []string) int {
	return a.printTree("ast", args, func(res *compiler.Result) *parser.Program { return res.AST })
}

func (a *app) cmdOptAST(args []string) int {
	return a.printTree("opt-ast", args, func(res *compiler.Result) *parser.Program { return res.Optimized })
}

// printTree analyzes a source file and prints one of its trees as source
func (a *app) printTree(name string, args []string, pick func(*compiler.Result) *parser.Program) int {
	path, ok := a.oneFile(name, args)
	if !ok {
		return exitUsage
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return a.report(diag.Wrap(diag.KindIO, err, "read source"))
	}

	opts := a.opts
	if name == "opt-ast" {
		opts.DisableOptimizer = false
	}
	res, err := compiler.Analyze(string(src), opts)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprint(a.stdout, parser.Unparse(pick(res)))
	return exitOK
}

func (a *app) cmdHash(args []string) int {
	path, ok := a.oneFile("hash", args)
	if !ok {
		return exitUsage
	}
	m, err := readModule(path)
	if err != nil {
		return a.report(err)
	}
	sum, err := objfile.Fingerprint(m)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.stdout, "%s  %s\n", sum, path)
	return exitOK
}

// compileToFile handles the script form: source text and an output path
func (a *app) compileToFile(src, out string) int {
	res, err := compiler.Compile(src, a.opts)
	if err != nil {
		return a.report(err)
	}
	if err := writeModule(out, res.Module); err != nil {
		return a.report(err)
	}
	return exitOK
}

// scriptInvocation recognizes `frogc '<code>' out.frogc`, also when a shell
// passed both parts as a single argument
func scriptInvocation(args []string) (code, out string, ok bool) {
	switch len(args) {
	case 2:
		if _, known := commands[args[0]]; known || !strings.HasSuffix(args[1], ".frogc") {
			return "", "", false
		}
		return args[0], args[1], true
	case 1:
		s := strings.TrimSpace(args[0])
		if !strings.Contains(s, ".frogc") || !strings.ContainsFunc(s, unicode.IsSpace) {
			return "", "", false
		}
		boundary := strings.LastIndexFunc(s, unicode.IsSpace)
		code = stripQuotes(strings.TrimSpace(s[:boundary]))
		out = stripQuotes(strings.TrimSpace(s[boundary:]))
		return code, out, code != "" && out != ""
	}
	return "", "", false
}

func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// deriveOutputPath replaces the input's extension with .frogc
func deriveOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".frogc"
}

// writeModule serializes m to path, creating parent directories
func writeModule(path string, m *bytecode.Module) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return diag.Wrap(diag.KindIO, err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return diag.Wrap(diag.KindIO, err, "create %s", path)
	}
	if err := objfile.Write(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return diag.Wrap(diag.KindIO, err, "close %s", path)
	}
	return nil
}

// readModule loads a compiled module from path
func readModule(path string) (*bytecode.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, err, "open %s", path)
	}
	defer f.Close()
	return objfile.Read(f)
}
