// Package field binds layouts to storage. A bound *Field is a live, typed view of
// a range of bits of a single arbitrary precision integer that is shared by every
// field descending from the same root binding.
//
//	pt := layout.Must(layout.Struct("pt",
//		layout.M("x", layout.Must(layout.Sint(8, nil))),
//		layout.M("y", layout.Must(layout.Sint(8, nil))),
//	))
//
//	f, err := field.Bind(pt, field.WithValue(field.Record{{"x", -5}, {"y", 10}}))
//	if err != nil {
//		// Do something
//	}
//	fmt.Println(f.Bin()) // 1111101100001010
//
//	x, _ := f.Member("x")
//	x.SetValue(7) // f.Raw() is now 0x070a
//
// Reading and writing a field never copies: a member, an element or a slice of a
// field reads and writes the same backing integer as the field itself.
//
// Concurrency: a root binding and all of its descendants must be used from a single
// goroutine at a time, or be guarded by the caller. Distinct root bindings share
// nothing and can be used concurrently. Layouts are immutable and can be shared freely.
package field

import (
	"fmt"
	"math/big"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/expr"
	"github.com/bearlytools/bffl/internal/bits"
	"github.com/bearlytools/bffl/layout"
)

// cell is the storage shared by a root field and all of its descendants.
type cell struct {
	n        big.Int
	compiler expr.Compiler
}

// Field is a layout bound to a range of bits of a backing integer.
type Field struct {
	t      layout.Type
	name   string
	offset int
	mask   *big.Int
	parent *Field
	cell   *cell

	// members are the struct members in declared order.
	members []*Field
	byName  map[string]*Field
	// elems are the elements of array, slice and utf8 fields.
	elems []*Field

	slices map[string]*Field
	exprs  map[string]*Field
}

type options struct {
	name     string
	value    any
	hasValue bool
	raw      *big.Int
	compiler expr.Compiler
}

// Option is an optional argument to Bind().
type Option func(o *options)

// WithValue sets the initial value of the field with SetValue().
func WithValue(v any) Option {
	return func(o *options) {
		o.value = v
		o.hasValue = true
	}
}

// WithRaw sets the initial raw value of the field with SetRaw(). It is applied
// before WithValue().
func WithRaw(n *big.Int) Option {
	return func(o *options) {
		o.raw = n
	}
}

// WithName sets the name of the root field. Descendants are named after it, as in
// "name.member._2". The default is "_root".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithCompiler sets the expression compiler used by Member() and ExprField(). The
// default is expr.Default.
func WithCompiler(c expr.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// Bind allocates t over a new backing integer, initially 0, and returns the root field.
func Bind(t layout.Type, opts ...Option) (*Field, error) {
	o := options{name: "_root", compiler: expr.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.compiler == nil {
		o.compiler = expr.Default
	}

	f, err := allocate(t, o.name, nil, 0, &cell{compiler: o.compiler})
	if err != nil {
		return nil, err
	}
	if o.raw != nil {
		f.SetRaw(o.raw)
	}
	if o.hasValue {
		if err := f.SetValue(o.value); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Allocate binds t at offset bits of the backing integer of parent, naming it name.
// If parent is nil, a new backing integer is created. Struct members are allocated
// from the last declared member at offset upwards, so the first declared member holds
// the most significant bits. Array element i is allocated at offset + i*elemSize and
// named name._i. Slice layouts do not allocate: they reuse the element fields of
// parent, which must be bound to the slice's source layout.
func Allocate(t layout.Type, name string, parent *Field, offset int) (*Field, error) {
	c := &cell{compiler: expr.Default}
	if parent != nil {
		c = parent.cell
	}
	return allocate(t, name, parent, offset, c)
}

func allocate(t layout.Type, name string, parent *Field, offset int, c *cell) (*Field, error) {
	if t == nil {
		return nil, errors.Layout(name, "cannot allocate a nil layout")
	}
	if offset < 0 {
		return nil, errors.Layout(name, "offset must be >= 0, got %d", offset)
	}

	f := &Field{
		t:      t,
		name:   name,
		offset: offset,
		mask:   bits.Mask(t.Size()),
		parent: parent,
		cell:   c,
	}

	switch x := t.(type) {
	case *layout.StructType:
		members := x.Members()
		f.members = make([]*Field, len(members))
		f.byName = make(map[string]*Field, len(members))
		z := offset
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			child, err := allocate(m.Type, name+"."+m.Name, f, z, c)
			if err != nil {
				return nil, err
			}
			f.members[i] = child
			f.byName[m.Name] = child
			z += m.Type.Size()
		}
	case *layout.ArrayType:
		if err := f.allocElems(x.Elem(), x.Dim()); err != nil {
			return nil, err
		}
	case *layout.UTF8Type:
		if err := f.allocElems(x.Elem(), x.Dim()); err != nil {
			return nil, err
		}
	case *layout.SliceType:
		if parent == nil {
			return nil, errors.Layout(name, "slice %s must be allocated under the field it slices", x)
		}
		if len(parent.elems) != x.Source().Dim() {
			return nil, errors.Layout(name, "slice %s does not match %s", x, parent.t)
		}
		f.elems = make([]*Field, 0, x.Dim())
		for _, j := range x.Indices() {
			f.elems = append(f.elems, parent.elems[j])
		}
		if len(f.elems) > 0 {
			f.offset = f.elems[0].offset
		}
	}
	return f, nil
}

func (f *Field) allocElems(elem layout.Type, dim int) error {
	f.elems = make([]*Field, dim)
	size := elem.Size()
	for i := 0; i < dim; i++ {
		child, err := allocate(elem, fmt.Sprintf("%s._%d", f.name, i), f, f.offset+i*size, f.cell)
		if err != nil {
			return err
		}
		f.elems[i] = child
	}
	return nil
}

// Layout is the layout the field was bound with.
func (f *Field) Layout() layout.Type {
	return f.t
}

// Kind is the kind of the field's layout.
func (f *Field) Kind() layout.Kind {
	return f.t.Kind()
}

// Name is the dotted path of the field from its root, e.g. "_root.hdr._2".
func (f *Field) Name() string {
	return f.name
}

// Offset is the position of the least significant bit of the field in the backing
// integer. For slices it is the offset of the first element.
func (f *Field) Offset() int {
	return f.offset
}

// Mask returns (1 << Size()) - 1.
func (f *Field) Mask() *big.Int {
	return new(big.Int).Set(f.mask)
}

// Size is the width of the field in bits.
func (f *Field) Size() int {
	return f.t.Size()
}

// Parent is the field this field was allocated under, nil for a root.
func (f *Field) Parent() *Field {
	return f.parent
}

// Root is the top most ancestor of the field.
func (f *Field) Root() *Field {
	r := f
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Raw returns the unsigned bit pattern of the field. Slices gather their elements, so
// element i of a slice is in bits i*elemSize of the result. Computed fields return the
// result of their expression, or 0 if it cannot be evaluated.
func (f *Field) Raw() *big.Int {
	switch f.t.Kind() {
	case layout.KindSlice:
		out := new(big.Int)
		for i := len(f.elems) - 1; i >= 0; i-- {
			out.Lsh(out, uint(f.elems[i].Size()))
			out.Or(out, f.elems[i].Raw())
		}
		return out
	case layout.KindComputed:
		n, err := f.eval()
		if err != nil {
			return new(big.Int)
		}
		return n
	}
	return bits.GetValue(&f.cell.n, f.mask, f.offset)
}

// SetRaw stores the low Size() bits of n in the field. Other bits are silently
// dropped. Negative values are stored as two's complement. SetRaw on a computed field
// does nothing.
func (f *Field) SetRaw(n *big.Int) {
	switch f.t.Kind() {
	case layout.KindSlice:
		v := new(big.Int).And(n, f.mask)
		for _, e := range f.elems {
			e.SetRaw(v)
			v.Rsh(v, uint(e.Size()))
		}
		return
	case layout.KindComputed:
		return
	}
	bits.SetValue(&f.cell.n, n, f.mask, f.offset)
}

// Uint64 returns the low 64 bits of Raw().
func (f *Field) Uint64() uint64 {
	r := f.Raw()
	return new(big.Int).And(r, bits.Mask(64)).Uint64()
}

// SetUint64 is SetRaw() for uint64 values.
func (f *Field) SetUint64(n uint64) {
	f.SetRaw(new(big.Int).SetUint64(n))
}

// eval evaluates a computed field against the whole backing integer.
func (f *Field) eval() (*big.Int, error) {
	ct := f.t.(*layout.ComputedType)
	n, err := ct.Executable().Eval(&f.cell.n)
	if err != nil {
		return nil, f.pathed(err)
	}
	return n, nil
}

// pathed sets the path of a bffl error without one to the name of f.
func (f *Field) pathed(err error) error {
	var e *errors.Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = f.name
	}
	return err
}
