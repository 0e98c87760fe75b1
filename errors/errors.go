// Package errors provides the error types for bffl. It includes all of the stdlib's
// functions and types.
//
// Every failure raised by a layout or a bound field is an *Error carrying a Kind,
// the dotted path of the field involved and the offending value:
//
//	err := f.SetValue(700.0)
//	if errors.Is(err, errors.ErrRange) {
//		...
//	}
package errors

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=Category -linecomment

// Category represents the category of the error.
type Category uint32

func (c Category) Category() string {
	return c.String()
}

const (
	// CatUnknown represents an unknown category. This should not be used.
	CatUnknown Category = Category(0) // Unknown
	// CatUser represents an error that is caused by bad user input.
	CatUser Category = Category(1) // User
	// CatInternal represents an internal error.
	CatInternal Category = Category(2) // Internal
)

//go:generate stringer -type=Kind -linecomment

// Kind represents the kind of the error.
type Kind uint16

const (
	// KindUnknown represents an unknown kind.
	KindUnknown Kind = Kind(0) // unknown
	// KindLayout is a malformed layout detected at construction time: a bad size,
	// a reserved or duplicate member name, an enum code that does not fit.
	KindLayout Kind = Kind(1) // layout
	// KindRange is a numeric value outside of what a fixed point field can represent.
	KindRange Kind = Kind(2) // range
	// KindType is a value whose Go type cannot be assigned to a field, or an
	// operation a field kind does not support.
	KindType Kind = Kind(3) // type
	// KindValue is a malformed value: a bin/hex/json string that does not parse,
	// an undefined enum label, a length mismatch.
	KindValue Kind = Kind(4) // value
	// KindIndex is an index outside of an array's dimension.
	KindIndex Kind = Kind(5) // index
	// KindKey is an unknown struct member.
	KindKey Kind = Kind(6) // key
	// KindExpr is an expression that failed to compile or evaluate.
	KindExpr Kind = Kind(7) // expr
	// KindBug represents a bug in this package, for example a switch that does
	// not cover a layout kind.
	KindBug Kind = Kind(8) // bug
)

// Category reports if the Kind is caused by user input or by bffl itself.
func (k Kind) Category() Category {
	switch k {
	case KindUnknown:
		return CatUnknown
	case KindBug:
		return CatInternal
	}
	return CatUser
}

// Sentinels for use with Is(). They match any *Error of the same Kind.
var (
	ErrLayout = &Error{Kind: KindLayout}
	ErrRange  = &Error{Kind: KindRange}
	ErrType   = &Error{Kind: KindType}
	ErrValue  = &Error{Kind: KindValue}
	ErrIndex  = &Error{Kind: KindIndex}
	ErrKey    = &Error{Kind: KindKey}
	ErrExpr   = &Error{Kind: KindExpr}
	ErrBug    = &Error{Kind: KindBug}
)

// Error is the error type for this module.
type Error struct {
	// Kind is the kind of failure.
	Kind Kind
	// Path is the dotted path of the field or layout the error is about, e.g. "pkt.hdr.len".
	Path string
	// Value is the offending value, if there was one.
	Value any
	// Detail is a human readable description.
	Detail string
	// Cause is an underlying error.
	Cause error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(e.Kind.String())
	b.WriteByte(']')

	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// E creates a new *Error. Detail is formatted with fmt.Sprintf() if args are provided.
func E(k Kind, path string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Kind: k, Path: path, Detail: detail}
}

// WithValue records the offending value and returns e.
func (e *Error) WithValue(v any) *Error {
	e.Value = v
	return e
}

// Wrap wraps cause in an *Error of Kind k.
func Wrap(k Kind, path string, cause error, detail string, args ...any) *Error {
	e := E(k, path, detail, args...)
	e.Cause = cause
	return e
}

// Layout creates a KindLayout error.
func Layout(path string, detail string, args ...any) *Error {
	return E(KindLayout, path, detail, args...)
}

// Range creates a KindRange error for value v.
func Range(path string, v any, min, max float64) *Error {
	return E(KindRange, path, "value %v out of range %v <= value <= %v", v, min, max).WithValue(v)
}

// Type creates a KindType error for a value whose Go type a field cannot accept.
func Type(path string, v any, want string) *Error {
	return E(KindType, path, "cannot assign %T(%v), want %s", v, v, want).WithValue(v)
}

// Unsupported creates a KindType error for an operation a field kind does not support.
func Unsupported(path string, what string) *Error {
	return E(KindType, path, "%s", what)
}

// Value creates a KindValue error.
func Value(path string, v any, detail string, args ...any) *Error {
	return E(KindValue, path, detail, args...).WithValue(v)
}

// Index creates a KindIndex error.
func Index(path string, index, length int) *Error {
	return E(KindIndex, path, "index %d out of range (length %d)", index, length).WithValue(index)
}

// Key creates a KindKey error for an unknown member name.
func Key(path string, name string) *Error {
	return E(KindKey, path, "undefined subfield %q", name).WithValue(name)
}

// Bug creates a KindBug error.
func Bug(path string, detail string, args ...any) *Error {
	return E(KindBug, path, detail, args...)
}
