package field

import (
	"reflect"

	"github.com/bearlytools/bffl/codec"
	"github.com/bearlytools/bffl/layout"
)

// Equal compares the field to other, which may be another *Field or a plain value:
//
//   - *Field: the raw bit patterns are equal.
//   - string: String() equals other.
//   - integers: Int() equals other. Fixed point fields compare Float().
//   - floats: Float() equals other.
//   - Record, maps with string keys: every member is Equal to the value of the same name.
//   - slices and arrays: same length and every element is Equal by position.
//
// Offsets, masks and identity are never compared.
func (f *Field) Equal(other any) bool {
	switch x := other.(type) {
	case nil:
		return false
	case *Field:
		if x == nil {
			return false
		}
		return f.Raw().Cmp(x.Raw()) == 0
	case string:
		return f.String() == x
	case float64, float32:
		fl, _ := codec.ToFloat(x)
		return f.Float() == fl
	case Record:
		if f.t.Kind() != layout.KindStruct || len(x) != len(f.members) {
			return false
		}
		for _, m := range x {
			c, ok := f.byName[m.Name]
			if !ok || !c.Equal(m.Value) {
				return false
			}
		}
		return true
	}

	if m, ok := mapping(other); ok {
		if f.t.Kind() != layout.KindStruct || len(m) != len(f.members) {
			return false
		}
		for k, v := range m {
			c, ok := f.byName[k]
			if !ok || !c.Equal(v) {
				return false
			}
		}
		return true
	}

	if n, ok := codec.ToBig(other); ok {
		switch f.t.Kind() {
		case layout.KindFixed, layout.KindDecimal:
			fl, _ := codec.ToFloat(n)
			return f.Float() == fl
		}
		return f.Int().Cmp(n) == 0
	}

	if vals, ok := sequence(other); ok {
		if !f.dimensioned() || len(vals) != len(f.elems) {
			return false
		}
		for i, e := range f.elems {
			if !e.Equal(vals[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(f.Value(), other)
}
