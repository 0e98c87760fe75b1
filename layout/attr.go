package layout

// Attr returns the layout level metadata called name:
//
//	kind       Kind          all layouts
//	size       int           all layouts
//	name       string        all layouts
//	signed     bool          uint, sint
//	enum       *Enum         uint, sint (only when one is attached)
//	precision  int           fixed, decimal
//	base       int           fixed, decimal
//	divisor    *big.Int      fixed, decimal
//	min, max   float64       fixed, decimal
//	elem       Type          array, slice, utf8
//	dim        int           array, slice, utf8
//	members    []Member      struct
//	indices    []int         slice
//	nult       bool          utf8
//	source     string        computed
//
// It reports false when t has no such metadata.
func Attr(t Type, name string) (any, bool) {
	if t == nil {
		return nil, false
	}
	switch name {
	case "kind":
		return t.Kind(), true
	case "size":
		return t.Size(), true
	case "name":
		return t.Name(), true
	}

	switch x := t.(type) {
	case *IntType:
		switch name {
		case "signed":
			return x.signed, true
		case "enum":
			if x.enum == nil {
				return nil, false
			}
			return x.enum, true
		}
	case *FixedType:
		switch name {
		case "precision":
			return x.precision, true
		case "base":
			return x.base, true
		case "divisor":
			return x.Divisor(), true
		case "min":
			return x.min, true
		case "max":
			return x.max, true
		}
	case *StructType:
		if name == "members" {
			return x.Members(), true
		}
	case *SliceType:
		if name == "indices" {
			return x.Indices(), true
		}
	case *UTF8Type:
		if name == "nult" {
			return x.nult, true
		}
	case *ComputedType:
		if name == "source" {
			return x.exec.Source(), true
		}
	}

	if d, ok := t.(Dimensioned); ok {
		switch name {
		case "elem":
			return d.Elem(), true
		case "dim":
			return d.Dim(), true
		}
	}
	return nil, false
}
