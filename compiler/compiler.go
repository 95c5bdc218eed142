// Package compiler runs the whole pipeline: lex, parse and check, optimize,
// generate. Every call builds its own state, so independent compilations may
// run concurrently.
package compiler

import (
	"os"

	"frogc/bytecode"
	"frogc/diag"
	"frogc/optimizer"
	"frogc/parser"
	"frogc/trace"
)

// Options configures one compilation
type Options struct {
	DisableOptimizer bool
	Tracer           *trace.Tracer // nil disables tracing
}

// Result holds the output of every stage that ran
type Result struct {
	Tokens    []parser.Token
	AST       *parser.Program // as checked by the parser
	Optimized *parser.Program // same as AST when the optimizer is disabled
	Module    *bytecode.Module
}

// Analyze runs the front end and optimizer without generating code
func Analyze(src string, opts Options) (*Result, error) {
	tr := opts.Tracer

	tokens, err := parser.Tokenize(src)
	if err != nil {
		tr.Failure("lex", err)
		return nil, err
	}
	tr.Phase("lex", "%d tokens", len(tokens))

	prog, err := parser.Parse(tokens)
	if err != nil {
		tr.Failure("parse", err)
		return nil, err
	}
	tr.Phase("parse", "%d functions, %d statements", len(prog.Funcs), len(prog.Stmts))

	res := &Result{Tokens: tokens, AST: prog, Optimized: prog}
	if opts.DisableOptimizer {
		tr.Phase("optimize", "skipped")
		return res, nil
	}

	opt, err := optimizer.Optimize(prog)
	if err != nil {
		tr.Failure("optimize", err)
		return nil, err
	}
	tr.Phase("optimize", "%d functions, %d statements", len(opt.Funcs), len(opt.Stmts))
	res.Optimized = opt
	return res, nil
}

// Compile turns source text into a validated module
func Compile(src string, opts Options) (*Result, error) {
	res, err := Analyze(src, opts)
	if err != nil {
		return nil, err
	}

	m, err := bytecode.Generate(res.Optimized)
	if err != nil {
		opts.Tracer.Failure("generate", err)
		return nil, err
	}
	opts.Tracer.Phase("generate", "%d constants, %d functions, %d instructions",
		len(m.Constants), len(m.Functions), len(m.Code))
	res.Module = m
	return res, nil
}

// CompileFile compiles the source file at path
func CompileFile(path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, err, "read source")
	}
	return Compile(string(src), opts)
}
