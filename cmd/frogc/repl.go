package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"frogc/bytecode"
	"frogc/compiler"
	"frogc/parser"

	"github.com/peterh/liner"
)

const (
	historyFile = ".frogc_history"
	promptMain  = "frog> "
	promptCont  = "  ... "
)

// session accumulates the entries that compiled, so later entries can use
// earlier declarations
type session struct {
	opts    compiler.Options
	entries []string
}

// eval compiles the session plus entry and returns the listing. The entry
// is kept only if compilation succeeds.
func (s *session) eval(entry string) (string, error) {
	src := strings.Join(append(append([]string(nil), s.entries...), entry), "\n")
	res, err := compiler.Compile(src, s.opts)
	if err != nil {
		return "", err
	}
	s.entries = append(s.entries, entry)
	return bytecode.DisassembleString(res.Module), nil
}

func (s *session) reset() {
	s.entries = nil
}

// command handles a ":" command; done reports whether the REPL should exit
func (s *session) command(w io.Writer, line string) (done bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.reset()
		fmt.Fprintln(w, "session cleared")
	case ":source":
		for _, e := range s.entries {
			fmt.Fprintln(w, e)
		}
	default:
		fmt.Fprintln(w, "unknown command. Commands: :source, :reset, :quit")
	}
	return false
}

// incomplete reports whether src has unclosed braces or parentheses. Source
// that does not lex is complete, so the error surfaces immediately.
func incomplete(src string) bool {
	tokens, err := parser.Tokenize(src)
	if err != nil {
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case parser.TOKEN_LBRACE, parser.TOKEN_LPAREN:
			depth++
		case parser.TOKEN_RBRACE, parser.TOKEN_RPAREN:
			depth--
		}
	}
	return depth > 0
}

func (a *app) cmdRepl(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(a.stderr, "Usage: frogc repl")
		return exitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		f, err := os.Create(histPath)
		if err != nil {
			a.log.Printf("save history: %v", err)
			return
		}
		_, _ = ln.WriteHistory(f)
		f.Close()
	}()

	fmt.Fprintln(a.stdout, "Frogito REPL. Each entry is compiled with the ones before it. :quit exits.")
	s := &session{opts: a.opts}
	for {
		entry, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(a.stdout)
			return exitOK
		}
		if strings.TrimSpace(entry) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(entry), ":") {
			if s.command(a.stdout, entry) {
				return exitOK
			}
			continue
		}

		listing, err := s.eval(entry)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			continue
		}
		fmt.Fprint(a.stdout, listing)
	}
}

// readEntry reads lines until braces and parentheses balance. ok is false
// at end of input.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}
