package diag

import (
	"errors"
	"fmt"
)

// Kind classifies a compile error
type Kind int

const (
	KindLex     Kind = iota // unexpected character
	KindParse               // syntax and semantic errors share one channel
	KindCodegen             // generator-level fatal or internal invariant
	KindFormat              // malformed binary container
	KindIO                  // reading or writing files
)

// String returns the kind's display name
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindParse:
		return "ParseError"
	case KindCodegen:
		return "CodegenError"
	case KindFormat:
		return "FormatError"
	case KindIO:
		return "IOError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error value every compilation stage reports.
// Line and Column are 1-based; zero means the error has no source position.
type Error struct {
	Kind   Kind
	Msg    string
	Line   int
	Column int
	Lexeme string
	Err    error // optional cause
}

// Error formats the error the way the command line prints it
func (e *Error) Error() string {
	if e.Line == 0 {
		return "error: " + e.Msg
	}
	if e.Lexeme == "" {
		return fmt.Sprintf("error at %d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("error at %d:%d near '%s': %s", e.Line, e.Column, e.Lexeme, e.Msg)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error without a source position
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At creates an error positioned at line:col near lexeme
func At(kind Kind, line, col int, lexeme string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   kind,
		Msg:    fmt.Sprintf(format, args...),
		Line:   line,
		Column: col,
		Lexeme: lexeme,
	}
}

// Wrap attaches kind and message to an underlying error. A wrapped *Error
// contributes its message without the "error:" prefix.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	cause := err.Error()
	if de, ok := err.(*Error); ok {
		cause = de.Msg
	}
	return &Error{Kind: kind, Msg: msg + ": " + cause, Err: err}
}

// KindOf reports the kind of err, or false if err is not a *Error
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
