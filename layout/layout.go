// Package layout describes bit field layouts: fixed width unsigned, signed, fixed point
// and decimal numbers, structs, arrays, slices of arrays, UTF-8 strings and computed
// fields.
//
// A layout is an immutable value built once, at schema definition time, and shared by
// any number of bindings (see package field). A layout never holds data.
//
//	pt := layout.Must(layout.Struct("pt",
//		layout.M("x", layout.Must(layout.Sint(8, nil))),
//		layout.M("y", layout.Must(layout.Sint(8, nil))),
//	))
//
// Struct members are packed first declared = most significant: in pt above, x occupies
// bits 8..15 and y bits 0..7.
package layout

import (
	"strings"
	"unicode"

	"github.com/bearlytools/bffl/errors"
)

//go:generate stringer -type=Kind -linecomment

// Kind is the variant of a layout Type.
type Kind uint8

const (
	KindUnknown  Kind = 0 // unknown
	KindUint     Kind = 1 // uint
	KindSint     Kind = 2 // sint
	KindFixed    Kind = 3 // fixed
	KindDecimal  Kind = 4 // decimal
	KindStruct   Kind = 5 // struct
	KindArray    Kind = 6 // array
	KindSlice    Kind = 7 // slice
	KindUTF8     Kind = 8 // utf8
	KindComputed Kind = 9 // computed
)

// Type is a layout. Implementations are the *XxxType types of this package.
type Type interface {
	// Kind is the variant of the layout.
	Kind() Kind
	// Size is the width of the layout in bits.
	Size() int
	// Name is the declared name of the layout, or "" for anonymous layouts.
	Name() string
	// String is the representation of the layout, e.g. "uint[4]" or "decimal(16, 2)".
	String() string

	isType()
}

// Dimensioned is implemented by layouts that hold Dim() elements of the same Type.
type Dimensioned interface {
	Type
	// Elem is the layout of each element.
	Elem() Type
	// Dim is the number of elements.
	Dim() int
}

// Must panics if err != nil, else it returns t. It is meant for layouts declared in
// package level variables.
func Must[T Type](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

// label returns the name of t if it has one, otherwise its representation.
func label(t Type) string {
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// IsIdentifier reports if s is a valid member name: a letter or underscore followed by
// letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// validMemberName returns an error if name cannot be used for a struct member.
// Names with a leading or trailing underscore are reserved for array elements and
// field metadata.
func validMemberName(owner, name string) error {
	if !IsIdentifier(name) {
		return errors.Layout(owner, "member name %q is not an identifier", name)
	}
	if strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return errors.Layout(owner, "member name %q must not start or end with _", name)
	}
	return nil
}

func validSize(what string, size int) error {
	if size <= 0 {
		return errors.Layout(what, "expected positive integer size, got %d", size)
	}
	return nil
}
