// Package kerr defines the typed error kinds carried through every compiler
// phase (spec §7). Exactly one kind is produced per failure; each carries a
// source position where one is meaningful. No phase recovers from another
// phase's error — compiler.Compile returns the first error encountered.
package kerr

import (
	"errors"
	"fmt"
)

// Kind classifies a compiler error into one of the buckets spec.md §7 names.
type Kind string

const (
	KindIO           Kind = "io"
	KindInclude      Kind = "include"
	KindLex          Kind = "lex"
	KindParse        Kind = "parse"
	KindVariable     Kind = "variable"
	KindSemantic     Kind = "semantic"
	KindStyle        Kind = "style"
	KindComponent    Kind = "component"
	KindScript       Kind = "script"
	KindCodegen      Kind = "codegen"
	KindLimitExceeded Kind = "limit_exceeded"
	KindInvalidFormat Kind = "invalid_format"
)

// Error is the single error type returned by every phase. Phases construct
// it with the constructor helpers below (IO, Include, Lex, ...) rather than
// building it by hand, so the
// Kind/message shape stays consistent.
type Error struct {
	Kind     Kind
	File     string
	Line     int
	Column   int
	Message  string
	Wrapped  error
}

func (e *Error) Error() string {
	if e.File == "" && e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// KindOf returns the Kind of err if it is (or wraps) a *kerr.Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind, true
	}
	return "", false
}

func newf(kind Kind, file string, line, col int, format string, args ...any) *Error {
	return &Error{Kind: kind, File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func IO(format string, args ...any) *Error {
	return newf(KindIO, "", 0, 0, format, args...)
}

func IOWrap(err error, format string, args ...any) *Error {
	e := newf(KindIO, "", 0, 0, format, args...)
	e.Wrapped = err
	return e
}

func Include(file string, line int, format string, args ...any) *Error {
	return newf(KindInclude, file, line, 0, format, args...)
}

func Lex(file string, line, col int, format string, args ...any) *Error {
	return newf(KindLex, file, line, col, format, args...)
}

func Parse(file string, line, col int, format string, args ...any) *Error {
	return newf(KindParse, file, line, col, format, args...)
}

func Variable(file string, line int, format string, args ...any) *Error {
	return newf(KindVariable, file, line, 0, format, args...)
}

func Semantic(file string, line int, format string, args ...any) *Error {
	return newf(KindSemantic, file, line, 0, format, args...)
}

func Style(file string, line int, format string, args ...any) *Error {
	return newf(KindStyle, file, line, 0, format, args...)
}

func Component(file string, line int, format string, args ...any) *Error {
	return newf(KindComponent, file, line, 0, format, args...)
}

func Script(file string, line int, format string, args ...any) *Error {
	return newf(KindScript, file, line, 0, format, args...)
}

func Codegen(format string, args ...any) *Error {
	return newf(KindCodegen, "", 0, 0, format, args...)
}

func LimitExceeded(file string, line int, format string, args ...any) *Error {
	return newf(KindLimitExceeded, file, line, 0, format, args...)
}

func InvalidFormat(format string, args ...any) *Error {
	return newf(KindInvalidFormat, "", 0, 0, format, args...)
}
