// Package diagnostics defines the error taxonomy shared by the lexer, parser, type
// checker and evaluator, and renders errors against their source text.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

type Kind string

const (
	KindToken    Kind = "TokenError"
	KindParser   Kind = "ParserError"
	KindType     Kind = "TypeError"
	KindRuntime  Kind = "RuntimeError"
	KindInternal Kind = "InternalError"
)

// Error is a fatal error with an optional source span.
type Error struct {
	Kind    Kind
	Message string
	Span    ast.Span
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, span ast.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

func Runtime(node ast.Node, format string, args ...any) *Error {
	return New(KindRuntime, spanOf(node), format, args...)
}

func Type(node ast.Node, format string, args ...any) *Error {
	return New(KindType, spanOf(node), format, args...)
}

func spanOf(node ast.Node) ast.Span {
	if node == nil {
		return ast.Span{}
	}
	return node.Span()
}

// List carries several errors of one phase, typically the type checker's.
type List []*Error

func (l List) Error() string {
	parts := make([]string, 0, len(l))
	for _, err := range l {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n")
}

func (l List) Unwrap() []error {
	out := make([]error, len(l))
	for i, err := range l {
		out[i] = err
	}
	return out
}

// Wrap converts any error into the taxonomy. Errors that are not already
// diagnostics become InternalError with an empty span.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var diag *Error
	if errors.As(err, &diag) {
		return diag
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Cause: err}
}

// Flatten returns the individual errors carried by err.
func Flatten(err error) []*Error {
	if err == nil {
		return nil
	}
	var list List
	if errors.As(err, &list) {
		return list
	}
	return []*Error{Wrap(err)}
}

// IsKind reports whether err (or any error it carries) has the given kind.
func IsKind(err error, kind Kind) bool {
	for _, diag := range Flatten(err) {
		if diag.Kind == kind {
			return true
		}
	}
	return false
}
