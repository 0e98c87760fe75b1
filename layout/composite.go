package layout

import (
	"fmt"
	"strings"

	"github.com/bearlytools/bffl/errors"
)

// Member is a named member of a struct layout.
type Member struct {
	Name string
	Type Type
}

// M is shorthand for Member{Name: name, Type: t}.
func M(name string, t Type) Member {
	return Member{Name: name, Type: t}
}

// StructType is an ordered set of named members. The first declared member occupies
// the most significant bits, the last declared member the least significant bits.
type StructType struct {
	name    string
	members []Member
	index   map[string]int
	size    int
}

// Struct creates a struct layout. Member names must be unique identifiers that do not
// start or end with an underscore.
func Struct(name string, members ...Member) (*StructType, error) {
	t := &StructType{
		name:    name,
		members: make([]Member, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}
	owner := name
	if owner == "" {
		owner = "struct"
	}
	for _, m := range members {
		if err := validMemberName(owner, m.Name); err != nil {
			return nil, err
		}
		if _, ok := t.index[m.Name]; ok {
			return nil, errors.Layout(owner, "duplicate member name %q", m.Name)
		}
		if err := storable(owner+"."+m.Name, m.Type); err != nil {
			return nil, err
		}
		t.index[m.Name] = len(t.members)
		t.members = append(t.members, m)
		t.size += m.Type.Size()
	}
	return t, nil
}

// storable returns an error if t cannot be a struct member or array element.
func storable(owner string, t Type) error {
	if t == nil {
		return errors.Layout(owner, "layout is nil")
	}
	switch t.Kind() {
	case KindComputed, KindSlice:
		return errors.Layout(owner, "%s layouts cannot be members or elements", t.Kind())
	}
	return nil
}

func (t *StructType) isType() {}

// Kind implements Type.Kind().
func (t *StructType) Kind() Kind { return KindStruct }

// Size implements Type.Size().
func (t *StructType) Size() int { return t.size }

// Name implements Type.Name().
func (t *StructType) Name() string { return t.name }

// Len is the number of members.
func (t *StructType) Len() int { return len(t.members) }

// Members returns the members in declared order.
func (t *StructType) Members() []Member {
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// Member returns the member called name.
func (t *StructType) Member(name string) (Member, bool) {
	i, ok := t.index[name]
	if !ok {
		return Member{}, false
	}
	return t.members[i], true
}

// String implements Type.String().
func (t *StructType) String() string {
	parts := make([]string, 0, len(t.members))
	for _, m := range t.members {
		parts = append(parts, m.Name+" "+label(m.Type))
	}
	return fmt.Sprintf("struct %s{%s}", t.name, strings.Join(parts, "; "))
}

// ArrayType holds Dim() elements of the same layout. Element i occupies the bits
// starting at i*Elem().Size().
type ArrayType struct {
	name string
	elem Type
	dim  int
}

// Array creates an array layout of dim elements. dim may be 0.
func Array(elem Type, dim int) (*ArrayType, error) {
	if err := storable("array", elem); err != nil {
		return nil, err
	}
	if dim < 0 {
		return nil, errors.Layout(label(elem), "array dimension must be >= 0, got %d", dim)
	}
	return &ArrayType{elem: elem, dim: dim}, nil
}

// Dims creates nested arrays with the outermost dimension first: Dims(uint8, 2, 3) is
// an array of 2 arrays of 3 uint8.
func Dims(elem Type, dims ...int) (Type, error) {
	t := elem
	for i := len(dims) - 1; i >= 0; i-- {
		a, err := Array(t, dims[i])
		if err != nil {
			return nil, err
		}
		t = a
	}
	return t, nil
}

// Named returns a copy of t with name.
func (t *ArrayType) Named(name string) *ArrayType {
	c := *t
	c.name = name
	return &c
}

func (t *ArrayType) isType() {}

// Kind implements Type.Kind().
func (t *ArrayType) Kind() Kind { return KindArray }

// Size implements Type.Size().
func (t *ArrayType) Size() int { return t.elem.Size() * t.dim }

// Name implements Type.Name().
func (t *ArrayType) Name() string { return t.name }

// Elem implements Dimensioned.Elem().
func (t *ArrayType) Elem() Type { return t.elem }

// Dim implements Dimensioned.Dim().
func (t *ArrayType) Dim() int { return t.dim }

// String implements Type.String().
func (t *ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", label(t.elem), t.dim)
}

// SliceType is a view of some elements of another Dimensioned layout, selected by a
// Span. Bound slice fields share the element fields of the source binding.
type SliceType struct {
	source  Dimensioned
	span    Span
	indices []int
}

// Slice creates a slice layout over source.
func Slice(source Dimensioned, span Span) (*SliceType, error) {
	if source == nil {
		return nil, errors.Layout("slice", "source layout is nil")
	}
	idx, err := span.Indices(source.Dim())
	if err != nil {
		return nil, err
	}
	return &SliceType{source: source, span: span, indices: idx}, nil
}

func (t *SliceType) isType() {}

// Kind implements Type.Kind().
func (t *SliceType) Kind() Kind { return KindSlice }

// Size implements Type.Size().
func (t *SliceType) Size() int { return t.source.Elem().Size() * len(t.indices) }

// Name implements Type.Name().
func (t *SliceType) Name() string { return "" }

// Elem implements Dimensioned.Elem().
func (t *SliceType) Elem() Type { return t.source.Elem() }

// Dim implements Dimensioned.Dim().
func (t *SliceType) Dim() int { return len(t.indices) }

// Source is the sliced layout.
func (t *SliceType) Source() Dimensioned { return t.source }

// Span is the span the slice was created with.
func (t *SliceType) Span() Span { return t.span }

// Indices returns the source index of each element of the slice.
func (t *SliceType) Indices() []int {
	out := make([]int, len(t.indices))
	copy(out, t.indices)
	return out
}

// String implements Type.String().
func (t *SliceType) String() string {
	return fmt.Sprintf("%s[%s]", t.source, t.span)
}

// UTF8Type is a fixed length byte array holding UTF-8 text, optionally null terminated.
type UTF8Type struct {
	length int
	nult   bool
}

var byteType = Must(Uint(8, nil))

// UTF8 creates a string layout of length bytes. If nullTerminated is set, decoding
// stops at the first NUL byte.
func UTF8(length int, nullTerminated bool) (*UTF8Type, error) {
	if length < 0 {
		return nil, errors.Layout("utf8", "length must be >= 0, got %d", length)
	}
	return &UTF8Type{length: length, nult: nullTerminated}, nil
}

func (t *UTF8Type) isType() {}

// Kind implements Type.Kind().
func (t *UTF8Type) Kind() Kind { return KindUTF8 }

// Size implements Type.Size().
func (t *UTF8Type) Size() int { return 8 * t.length }

// Name implements Type.Name().
func (t *UTF8Type) Name() string { return "" }

// Elem implements Dimensioned.Elem(). It is always uint[8].
func (t *UTF8Type) Elem() Type { return byteType }

// Dim implements Dimensioned.Dim().
func (t *UTF8Type) Dim() int { return t.length }

// NullTerminated reports if decoding stops at the first NUL.
func (t *UTF8Type) NullTerminated() bool { return t.nult }

// String implements Type.String().
func (t *UTF8Type) String() string {
	return fmt.Sprintf("utf8(%d)", t.length)
}
