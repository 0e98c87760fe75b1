// Package bffl describes fixed width binary layouts once and binds them over a single
// arbitrary precision integer to get typed, mutable, bounds checked views of its bits.
//
// Layouts live in the layout package, bound fields in the field package and schema files
// in the schema package. This package re-exports the names most programs need:
//
//	pt := bffl.Must(bffl.Struct("pt", bffl.M("x", bffl.Must(bffl.Sint(8))), bffl.M("y", bffl.Must(bffl.Sint(8)))))
//	f, err := bffl.Bind(pt, bffl.WithValue(bffl.Record{{Name: "x", Value: -5}, {Name: "y", Value: 10}}))
//	if err != nil {
//		// Do something
//	}
//	fmt.Println(f.Bin()) // 1111101100001010
package bffl

import (
	"github.com/gostdlib/base/context"

	"github.com/bearlytools/bffl/field"
	"github.com/bearlytools/bffl/layout"
	"github.com/bearlytools/bffl/schema"
)

type (
	// Type is the layout of a field. See layout.Type.
	Type = layout.Type
	// Kind is the kind of a layout.
	Kind = layout.Kind
	// Enum maps labels to integer codes.
	Enum = layout.Enum
	// Span selects elements of an array.
	Span = layout.Span
	// Member is a named struct member layout.
	Member = layout.Member
	// Field is a layout bound to a backing integer.
	Field = field.Field
	// Record is the value of a struct field.
	Record = field.Record
	// Schema is a set of named layouts read from a schema file.
	Schema = schema.Schema
)

const (
	KindUint     = layout.KindUint
	KindSint     = layout.KindSint
	KindFixed    = layout.KindFixed
	KindDecimal  = layout.KindDecimal
	KindStruct   = layout.KindStruct
	KindArray    = layout.KindArray
	KindSlice    = layout.KindSlice
	KindUTF8     = layout.KindUTF8
	KindComputed = layout.KindComputed
)

// Must panics if err != nil and otherwise returns t.
func Must[T Type](t T, err error) T {
	return layout.Must(t, err)
}

// Uint is an unsigned integer layout of size bits with an optional enum.
func Uint(size int, enum ...*Enum) (*layout.IntType, error) {
	return layout.Uint(size, first(enum))
}

// Sint is a two's complement integer layout of size bits with an optional enum.
func Sint(size int, enum ...*Enum) (*layout.IntType, error) {
	return layout.Sint(size, first(enum))
}

func first(enum []*Enum) *Enum {
	if len(enum) == 0 {
		return nil
	}
	return enum[0]
}

// Enumerate creates an Enum where labels[i] has code i.
func Enumerate(name string, labels ...string) (*Enum, error) {
	return layout.Enumerate(name, labels...)
}

// M is a struct member called name.
func M(name string, t Type) Member {
	return layout.M(name, t)
}

// Struct creates a struct layout. The first member is the most significant.
func Struct(name string, members ...Member) (*layout.StructType, error) {
	return layout.Struct(name, members...)
}

// Array creates nested arrays of elem with the outermost dimension first.
func Array(elem Type, dims ...int) (Type, error) {
	return layout.Dims(elem, dims...)
}

// Option is an option for Bind().
type Option = field.Option

// WithValue sets the initial value of a bound field.
func WithValue(v any) Option {
	return field.WithValue(v)
}

// Bind allocates t over a new backing integer.
func Bind(t Type, opts ...Option) (*Field, error) {
	return field.Bind(t, opts...)
}

// Load reads a schema file, see schema.Load().
func Load(ctx context.Context, path string, opts ...schema.Option) (*Schema, error) {
	return schema.Load(ctx, path, opts...)
}
