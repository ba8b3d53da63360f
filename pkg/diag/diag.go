// Package diag defines the fatal error kinds raised while translating JAL.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUndeclared           = errors.New("undeclared identifier")
	ErrUnmappedType         = errors.New("type has no C mapping")
	ErrCallMismatch         = errors.New("call does not match declaration")
	ErrConstantReassignment = errors.New("assignment to constant")
	ErrNotConstant          = errors.New("not a constant expression")
	ErrReservedName         = errors.New("reserved identifier")
	ErrInvalidStatement     = errors.New("invalid statement")
)

// Error is a fatal translation error with enough context to report it.
type Error struct {
	Kind   error
	Name   string // offending identifier, if any
	Scope  string // scope description, e.g. "global" or "procedure bump"
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Name != "" {
		fmt.Fprintf(&b, " '%s'", e.Name)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " in %s", e.Scope)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// New builds an Error.
func New(kind error, name, scope string) *Error {
	return &Error{Kind: kind, Name: name, Scope: scope}
}

// Errorf builds an Error with a formatted detail.
func Errorf(kind error, name, scope, format string, args ...any) *Error {
	return &Error{Kind: kind, Name: name, Scope: scope, Detail: fmt.Sprintf(format, args...)}
}
