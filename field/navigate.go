package field

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/expr"
	"github.com/bearlytools/bffl/layout"
	"go.uber.org/zap"
)

// Len is the number of elements of an array, slice or utf8 field, the number of
// members of a struct field and 0 for anything else.
func (f *Field) Len() int {
	if f.t.Kind() == layout.KindStruct {
		return len(f.members)
	}
	return len(f.elems)
}

// Fields yields the members of a struct field in declared order, or the elements of
// an array, slice or utf8 field named _0, _1, ...
func (f *Field) Fields() iter.Seq2[string, *Field] {
	return func(yield func(string, *Field) bool) {
		if f.t.Kind() == layout.KindStruct {
			for i, m := range f.t.(*layout.StructType).Members() {
				if !yield(m.Name, f.members[i]) {
					return
				}
			}
			return
		}
		for i, e := range f.elems {
			if !yield("_"+strconv.Itoa(i), e) {
				return
			}
		}
	}
}

// Elems yields the elements of an array, slice or utf8 field.
func (f *Field) Elems() iter.Seq2[int, *Field] {
	return func(yield func(int, *Field) bool) {
		for i, e := range f.elems {
			if !yield(i, e) {
				return
			}
		}
	}
}

func (f *Field) dimensioned() bool {
	_, ok := f.t.(layout.Dimensioned)
	return ok
}

// Index returns element i of an array, slice or utf8 field.
func (f *Field) Index(i int) (*Field, error) {
	if !f.dimensioned() {
		return nil, errors.Unsupported(f.name, fmt.Sprintf("%s fields do not support integer indices", f.t.Kind()))
	}
	if i < 0 || i >= len(f.elems) {
		return nil, errors.Index(f.name, i, len(f.elems))
	}
	return f.elems[i], nil
}

// SetIndex is Index(i) followed by SetValue(v).
func (f *Field) SetIndex(i int, v any) error {
	e, err := f.Index(i)
	if err != nil {
		return err
	}
	return e.SetValue(v)
}

// Slice returns a view of the elements selected by span. The view shares its element
// fields with f. Slices are cached per span.
func (f *Field) Slice(span layout.Span) (*Field, error) {
	d, ok := f.t.(layout.Dimensioned)
	if !ok {
		return nil, errors.Unsupported(f.name, fmt.Sprintf("%s fields do not support slices", f.t.Kind()))
	}
	key := span.String()
	if s, ok := f.slices[key]; ok {
		return s, nil
	}

	st, err := layout.Slice(d, span)
	if err != nil {
		return nil, f.pathed(err)
	}
	s, err := allocate(st, fmt.Sprintf("%s[%s]", f.name, key), f, f.offset, f.cell)
	if err != nil {
		return nil, err
	}
	if f.slices == nil {
		f.slices = map[string]*Field{}
	}
	f.slices[key] = s
	Logger().Debug("slice allocated", zap.String("field", f.name), zap.String("span", key), zap.Int("len", s.Len()))
	return s, nil
}

// Member returns the struct member called name. Array elements can be named _i.
// If name is not a member and not an identifier, it is compiled as an expression over
// the members (see ExprField()) and the resulting computed field is cached under name.
func (f *Field) Member(name string) (*Field, error) {
	if c, ok := f.child(name); ok {
		return c, nil
	}
	if !f.dimensioned() && f.t.Kind() != layout.KindStruct {
		return nil, errors.Unsupported(f.name, fmt.Sprintf("%s fields do not have members", f.t.Kind()))
	}
	if layout.IsIdentifier(name) {
		return nil, errors.Key(f.name, name)
	}

	if c, ok := f.exprs[name]; ok {
		return c, nil
	}
	c, err := f.ExprField(name, 0)
	if err != nil {
		return nil, err
	}
	if f.exprs == nil {
		f.exprs = map[string]*Field{}
	}
	f.exprs[name] = c
	return c, nil
}

// child returns a struct member or an element named _i.
func (f *Field) child(name string) (*Field, bool) {
	if c, ok := f.byName[name]; ok {
		return c, true
	}
	if strings.HasPrefix(name, "_") && len(f.elems) > 0 {
		i, err := strconv.Atoi(name[1:])
		if err == nil && i >= 0 && i < len(f.elems) && "_"+strconv.Itoa(i) == name {
			return f.elems[i], true
		}
	}
	return nil, false
}

// SetMember is Member(name) followed by SetValue(v).
func (f *Field) SetMember(name string, v any) error {
	m, err := f.Member(name)
	if err != nil {
		return err
	}
	return m.SetValue(v)
}

// Get looks up key: an int is passed to Index(), a layout.Span to Slice() and a string
// to Member().
func (f *Field) Get(key any) (*Field, error) {
	switch k := key.(type) {
	case int:
		return f.Index(k)
	case layout.Span:
		return f.Slice(k)
	case string:
		return f.Member(k)
	}
	return nil, errors.Unsupported(f.name, fmt.Sprintf("%s fields do not support %T keys", f.t.Kind(), key))
}

// Resolve returns the descendant at path, such as "hdr.len", "samples[2]" or
// "rows[1][0].x". An empty path resolves to f.
func (f *Field) Resolve(path string) (*Field, error) {
	cur := f
	rest := strings.TrimSpace(path)
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, errors.Value(f.name, path, "unterminated index in %q", path)
			}
			inner := strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
			var err error
			if strings.Contains(inner, ":") {
				var sp layout.Span
				if sp, err = layout.ParseSpan(inner); err != nil {
					return nil, f.pathed(err)
				}
				cur, err = cur.Slice(sp)
			} else {
				i, convErr := strconv.Atoi(inner)
				if convErr != nil {
					return nil, errors.Value(f.name, path, "bad index %q in %q", inner, path)
				}
				cur, err = cur.Index(i)
			}
			if err != nil {
				return nil, err
			}
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := strings.TrimSpace(rest[:end])
			rest = rest[end:]
			c, ok := cur.child(name)
			if !ok {
				return nil, errors.Key(cur.name, name)
			}
			cur = c
		}
	}
	return cur, nil
}

// Bits returns the bits hi down to lo of an svreg field as a uint field, with bit 0
// being the least significant bit of the field.
func (f *Field) Bits(hi, lo int) (*Field, error) {
	t, ok := f.t.(*layout.IntType)
	if !ok || !t.SV() {
		return nil, errors.Unsupported(f.name, fmt.Sprintf("%s fields do not support bit selection", f.t))
	}
	if lo < 0 || hi < lo || hi >= t.Size() {
		return nil, errors.E(errors.KindIndex, f.name, "bit range [%d:%d] out of range [%d:0]", hi, lo, t.Size()-1)
	}
	sub, err := layout.Uint(hi-lo+1, nil)
	if err != nil {
		return nil, err
	}
	return allocate(sub, fmt.Sprintf("%s[%d:%d]", f.name, hi, lo), f, f.offset+lo, f.cell)
}

// SetBits is Bits(hi, lo) followed by SetValue(v).
func (f *Field) SetBits(hi, lo int, v any) error {
	b, err := f.Bits(hi, lo)
	if err != nil {
		return err
	}
	return b.SetValue(v)
}

// Lookup finds name first among the field's own children (members, elements, cached
// slices and expressions) and field attributes ("offset", "mask", "path"), then among
// the metadata of its layout (see layout.Attr()).
func (f *Field) Lookup(name string) (any, bool) {
	if c, ok := f.child(name); ok {
		return c, true
	}
	if s, ok := f.slices[name]; ok {
		return s, true
	}
	if e, ok := f.exprs[name]; ok {
		return e, true
	}
	switch name {
	case "offset":
		return f.offset, true
	case "mask":
		return f.Mask(), true
	case "path":
		return f.name, true
	}
	return layout.Attr(f.t, name)
}

// Expr returns the low level source of an expression over the backing integer n.
// An empty expression is the field itself. Names in expression resolve relative to f.
// If wordSize > 0, results wrap to wordSize bits.
func (f *Field) Expr(expression string, wordSize int) (string, error) {
	exec, err := f.compile(expression, wordSize)
	if err != nil {
		return "", err
	}
	return exec.Source(), nil
}

// ExprField compiles expression, with names resolved relative to f, into a read only
// computed field sharing f's backing integer.
func (f *Field) ExprField(expression string, wordSize int) (*Field, error) {
	exec, err := f.compile(expression, wordSize)
	if err != nil {
		return nil, err
	}
	ct, err := layout.Computed(exec)
	if err != nil {
		return nil, err
	}
	Logger().Debug("expression compiled", zap.String("field", f.name), zap.String("expr", expression), zap.String("source", exec.Source()))
	return allocate(ct, fmt.Sprintf("%s[%q]", f.name, expression), f, f.offset, f.cell)
}

func (f *Field) compile(expression string, wordSize int) (expr.Executable, error) {
	if strings.TrimSpace(expression) == "" {
		if f.t.Kind() == layout.KindComputed {
			return f.t.(*layout.ComputedType).Executable(), nil
		}
		if f.t.Kind() == layout.KindSlice {
			return nil, errors.E(errors.KindExpr, f.name, "slices are not contiguous and have no expression")
		}
		return expr.RefExecutable(expr.Ref{Offset: f.offset, Size: f.Size()}, wordSize), nil
	}

	resolve := func(name string) (expr.Ref, error) {
		c, err := f.Resolve(name)
		if err != nil {
			return expr.Ref{}, err
		}
		switch c.t.Kind() {
		case layout.KindComputed, layout.KindSlice:
			return expr.Ref{}, errors.E(errors.KindExpr, c.name, "%s fields cannot be expression operands", c.t.Kind())
		}
		return expr.Ref{Offset: c.offset, Size: c.Size()}, nil
	}
	exec, err := f.cell.compiler.Compile(expression, resolve, wordSize)
	if err != nil {
		return nil, f.pathed(err)
	}
	return exec, nil
}
