// Package codec converts signed, unsigned and fixed point values to and from the
// unsigned bit patterns stored in a bit field. All functions are pure.
package codec

import (
	"math"
	"math/big"
	"reflect"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/internal/bits"
	"golang.org/x/exp/constraints"
)

// DecodeUnsigned returns a copy of raw. raw must already be masked to size bits;
// it is the canonical raw representation of every field.
func DecodeUnsigned(raw *big.Int, size int) *big.Int {
	return new(big.Int).Set(raw)
}

// DecodeSigned interprets the low size bits of raw as a two's complement number.
func DecodeSigned(raw *big.Int, size int) *big.Int {
	v := new(big.Int).Set(raw)
	if size > 0 && raw.Bit(size-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(size)))
	}
	return v
}

// EncodeSigned returns v & ((1<<size)-1). Values that do not fit wrap silently.
func EncodeSigned(v *big.Int, size int) *big.Int {
	return new(big.Int).And(v, bits.Mask(size))
}

// DecodeFixed returns DecodeSigned(raw, size) / divisor as the nearest float64.
func DecodeFixed(raw *big.Int, size int, divisor *big.Int) float64 {
	r := new(big.Rat).SetFrac(DecodeSigned(raw, size), divisor)
	f, _ := r.Float64()
	return f
}

// EncodeFixed converts v to the raw pattern of a fixed point field. v must be numeric
// (KindType error otherwise) and within [min, max] (KindRange error otherwise). The
// scaled value v*divisor is truncated toward zero.
func EncodeFixed(v any, size int, divisor *big.Int, min, max float64) (*big.Int, error) {
	f, ok := ToFloat(v)
	if !ok {
		return nil, errors.Type("", v, "a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < min || f > max {
		return nil, errors.Range("", v, min, max)
	}

	d, _ := new(big.Float).SetInt(divisor).Float64()
	n, _ := big.NewFloat(f * d).Int(nil) // Int() truncates toward zero.
	return EncodeSigned(n, size), nil
}

// Int converts any Go integer to a *big.Int.
func Int[I constraints.Integer](v I) *big.Int {
	if v < 0 {
		return big.NewInt(int64(v))
	}
	return new(big.Int).SetUint64(uint64(v))
}

// ToBig converts Go integers, bools and *big.Int to a new *big.Int. It reports false
// for any other type, including floats and strings.
func ToBig(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return new(big.Int).Set(x), true
	case bool:
		if x {
			return big.NewInt(1), true
		}
		return new(big.Int), true
	case int:
		return Int(x), true
	case int8:
		return Int(x), true
	case int16:
		return Int(x), true
	case int32:
		return Int(x), true
	case int64:
		return Int(x), true
	case uint:
		return Int(x), true
	case uint8:
		return Int(x), true
	case uint16:
		return Int(x), true
	case uint32:
		return Int(x), true
	case uint64:
		return Int(x), true
	case uintptr:
		return Int(x), true
	}

	// Named integer types, e.g. a user's "type Color uint8".
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), true
	}
	return nil, false
}

// ToFloat converts Go numbers and *big.Int to a float64. It reports false for
// non-numeric types.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case *big.Float:
		if x == nil {
			return 0, false
		}
		f, _ := x.Float64()
		return f, true
	case *big.Rat:
		if x == nil {
			return 0, false
		}
		f, _ := x.Float64()
		return f, true
	case bool:
		return 0, false
	}
	if n, ok := ToBig(v); ok {
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		return rv.Float(), true
	}
	return 0, false
}

// Narrow returns n as an int64 when signed is set and n fits, as a uint64 when
// signed is not set and n fits, else n itself.
func Narrow(n *big.Int, signed bool) any {
	if signed {
		if n.IsInt64() {
			return n.Int64()
		}
		return n
	}
	if n.IsUint64() {
		return n.Uint64()
	}
	return n
}
