package field

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bearlytools/bffl/codec"
	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/internal/conversions"
	"github.com/bearlytools/bffl/layout"
)

// Member is a named value of a Record.
type Member struct {
	Name  string
	Value any
}

// Record is the value of a struct field: its members in declared order.
type Record []Member

// Get returns the value of the member called name.
func (r Record) Get(name string) (any, bool) {
	for _, m := range r {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Map converts the Record, and any Record it holds, to maps.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, mem := range r {
		m[mem.Name] = plain(mem.Value)
	}
	return m
}

func plain(v any) any {
	switch x := v.(type) {
	case Record:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// Value returns the decoded value of the field:
//
//	uint      enum label (string), uint64, or *big.Int if wider than 64 bits
//	sint      enum label (string), int64, or *big.Int if it does not fit an int64
//	fixed     float64
//	decimal   float64
//	struct    Record
//	array     []any
//	slice     []any
//	utf8      string, nil if the bytes are not valid UTF-8 (see Eval())
//	computed  int64 or *big.Int, nil if the expression fails (see Eval())
func (f *Field) Value() any {
	v, _ := f.Eval()
	return v
}

// Eval is Value() that returns the error of a failed computed field or of utf8 bytes
// that are not valid UTF-8.
func (f *Field) Eval() (any, error) {
	switch x := f.t.(type) {
	case *layout.IntType:
		n := f.Raw()
		if x.Signed() {
			n = codec.DecodeSigned(n, x.Size())
		}
		if e := x.Enum(); e != nil {
			if l, ok := e.LabelOf(n); ok {
				return l, nil
			}
		}
		return codec.Narrow(n, x.Signed()), nil
	case *layout.FixedType:
		return codec.DecodeFixed(f.Raw(), x.Size(), x.Divisor()), nil
	case *layout.StructType:
		r := make(Record, 0, len(f.members))
		for i, m := range x.Members() {
			r = append(r, Member{Name: m.Name, Value: f.members[i].Value()})
		}
		return r, nil
	case *layout.UTF8Type:
		return f.text()
	case *layout.ArrayType, *layout.SliceType:
		out := make([]any, 0, len(f.elems))
		for _, e := range f.elems {
			out = append(out, e.Value())
		}
		return out, nil
	case *layout.ComputedType:
		n, err := f.eval()
		if err != nil {
			return nil, err
		}
		return codec.Narrow(n, true), nil
	}
	return nil, errors.Bug(f.name, "unsupported layout %T", f.t)
}

func (f *Field) text() (any, error) {
	b := make([]byte, len(f.elems))
	for i, e := range f.elems {
		b[i] = byte(e.Uint64())
	}
	if f.t.(*layout.UTF8Type).NullTerminated() {
		if i := bytes.IndexByte(b, 0); i > -1 {
			b = b[:i]
		}
	}
	if !utf8.Valid(b) {
		return nil, errors.Value(f.name, b, "invalid UTF-8 in % x", b)
	}
	return conversions.ByteSlice2String(b), nil
}

// SetValue stores v in the field. The Go types accepted depend on the layout:
//
//	uint, sint         integers, *big.Int, bool, an enum label or a base 10 integer string
//	fixed, decimal     floats, integers, *big.Int, *big.Float, *big.Rat
//	struct             Record, a map with string keys, or an integer (raw)
//	array, slice       a slice or array of element values, or an integer (raw)
//	utf8               string, []byte, or an integer (raw)
//
// Any layout also accepts a *Field, whose value is copied. Computed fields cannot be set.
// SetValue is all or nothing: if it returns an error, the backing integer is unchanged.
func (f *Field) SetValue(v any) error {
	snapshot := new(big.Int).Set(&f.cell.n)
	if err := f.setValue(v); err != nil {
		f.cell.n.Set(snapshot)
		return err
	}
	return nil
}

func (f *Field) setValue(v any) error {
	if other, ok := v.(*Field); ok {
		return f.setField(other)
	}

	switch x := f.t.(type) {
	case *layout.IntType:
		return f.setInt(x, v)
	case *layout.FixedType:
		raw, err := codec.EncodeFixed(v, x.Size(), x.Divisor(), x.Min(), x.Max())
		if err != nil {
			return f.pathed(err)
		}
		f.SetRaw(raw)
		return nil
	case *layout.StructType:
		return f.setStruct(v)
	case *layout.UTF8Type:
		return f.setText(v)
	case *layout.ArrayType, *layout.SliceType:
		return f.setElems(v)
	case *layout.ComputedType:
		return errors.Unsupported(f.name, "computed fields are read only")
	}
	return errors.Bug(f.name, "unsupported layout %T", f.t)
}

func (f *Field) setField(other *Field) error {
	if other == nil {
		return errors.Type(f.name, other, f.t.String())
	}
	switch f.t.Kind() {
	case layout.KindUint, layout.KindSint:
		return f.setValue(other.Int())
	case layout.KindFixed, layout.KindDecimal:
		return f.setValue(other.Float())
	case layout.KindComputed:
		return errors.Unsupported(f.name, "computed fields are read only")
	}
	f.SetRaw(other.Raw())
	return nil
}

func (f *Field) setInt(t *layout.IntType, v any) error {
	if s, ok := v.(string); ok {
		if e := t.Enum(); e != nil {
			if code, ok := e.Code(s); ok {
				f.SetRaw(big.NewInt(code))
				return nil
			}
		}
		n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return errors.Value(f.name, s, "undefined enum %q", s)
		}
		f.SetRaw(n)
		return nil
	}

	n, ok := codec.ToBig(v)
	if !ok {
		return errors.Type(f.name, v, "an integer or enum label")
	}
	if t.Signed() {
		n = codec.EncodeSigned(n, t.Size())
	}
	f.SetRaw(n)
	return nil
}

func (f *Field) setStruct(v any) error {
	if n, ok := codec.ToBig(v); ok {
		f.SetRaw(n)
		return nil
	}

	switch x := v.(type) {
	case Record:
		for _, m := range x {
			if err := f.setMember(m.Name, m.Value); err != nil {
				return err
			}
		}
		return nil
	}
	if m, ok := mapping(v); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := f.setMember(k, m[k]); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Type(f.name, v, "a Record, a map with string keys or an integer")
}

// mapping converts maps with string keys to map[string]any.
func mapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func (f *Field) setMember(name string, v any) error {
	m, ok := f.byName[name]
	if !ok {
		return errors.Key(f.name, name)
	}
	return m.setValue(v)
}

func (f *Field) setElems(v any) error {
	if n, ok := codec.ToBig(v); ok {
		f.SetRaw(n)
		return nil
	}

	vals, ok := sequence(v)
	if !ok {
		return errors.Type(f.name, v, "a slice or an integer")
	}
	if len(vals) != len(f.elems) {
		return errors.Value(f.name, v, "got %d values for %d elements", len(vals), len(f.elems))
	}
	for i, e := range f.elems {
		if err := e.setValue(vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// sequence converts slices and arrays, other than strings, to []any.
func sequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func (f *Field) setText(v any) error {
	var b []byte
	switch x := v.(type) {
	case string:
		b = conversions.UnsafeGetBytes(x)
	case []byte:
		b = x
	default:
		n, ok := codec.ToBig(v)
		if !ok {
			return errors.Type(f.name, v, "a string, []byte or integer")
		}
		f.SetRaw(n)
		return nil
	}

	for i, e := range f.elems {
		var c byte
		if i < len(b) {
			c = b[i]
		}
		e.SetRaw(big.NewInt(int64(c)))
	}
	return nil
}

// Int returns the field as an integer: sign extended for sint, the truncated value for
// fixed and decimal, the result for computed fields and Raw() for anything else.
func (f *Field) Int() *big.Int {
	switch x := f.t.(type) {
	case *layout.IntType:
		if x.Signed() {
			return codec.DecodeSigned(f.Raw(), x.Size())
		}
	case *layout.FixedType:
		n := codec.DecodeSigned(f.Raw(), x.Size())
		return n.Quo(n, x.Divisor())
	}
	return f.Raw()
}

// Float returns the field as a float64.
func (f *Field) Float() float64 {
	if x, ok := f.t.(*layout.FixedType); ok {
		return codec.DecodeFixed(f.Raw(), x.Size(), x.Divisor())
	}
	fl, _ := new(big.Float).SetInt(f.Int()).Float64()
	return fl
}

// IsZero reports if every bit of the field is 0.
func (f *Field) IsZero() bool {
	return f.Raw().Sign() == 0
}

// String returns the value of the field. Composite values are rendered as JSON.
func (f *Field) String() string {
	switch f.t.Kind() {
	case layout.KindStruct, layout.KindArray, layout.KindSlice:
		s, err := f.JSON()
		if err != nil {
			return fmt.Sprintf("<%s>", err)
		}
		return s
	}
	return fmt.Sprint(f.Value())
}
