package layout

import (
	"fmt"
	"math/big"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/internal/bits"
)

// IntType is an unsigned or signed integer layout with an optional Enum.
type IntType struct {
	size   int
	signed bool
	sv     bool
	enum   *Enum
}

// Uint creates an unsigned integer layout of size bits. enum may be nil.
func Uint(size int, enum *Enum) (*IntType, error) {
	return newInt(size, false, false, enum)
}

// Sint creates a two's complement signed integer layout of size bits. enum may be nil.
func Sint(size int, enum *Enum) (*IntType, error) {
	return newInt(size, true, false, enum)
}

// SVReg creates an unsigned integer layout of size bits whose bound fields support
// SystemVerilog style [hi:lo] bit selection (see field.Field.Bits()).
func SVReg(size int) (*IntType, error) {
	return newInt(size, false, true, nil)
}

func newInt(size int, signed, sv bool, enum *Enum) (*IntType, error) {
	t := &IntType{size: size, signed: signed, sv: sv, enum: enum}
	if err := validSize(t.String(), size); err != nil {
		return nil, err
	}
	if enum != nil {
		if err := enum.fits(t.String(), size, signed); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *IntType) isType() {}

// Kind implements Type.Kind().
func (t *IntType) Kind() Kind {
	if t.signed {
		return KindSint
	}
	return KindUint
}

// Size implements Type.Size().
func (t *IntType) Size() int { return t.size }

// Name implements Type.Name(). Integer layouts are anonymous.
func (t *IntType) Name() string { return "" }

// Signed reports if the layout is two's complement.
func (t *IntType) Signed() bool { return t.signed }

// SV reports if the layout supports SystemVerilog bit selection.
func (t *IntType) SV() bool { return t.sv }

// Enum returns the Enum attached to the layout, or nil.
func (t *IntType) Enum() *Enum { return t.enum }

// String implements Type.String().
func (t *IntType) String() string {
	switch {
	case t.sv:
		return fmt.Sprintf("svreg[%d]", t.size)
	case t.signed:
		return fmt.Sprintf("sint[%d]", t.size)
	}
	return fmt.Sprintf("uint[%d]", t.size)
}

// FixedType is a fixed point number stored as a signed integer with a constant divisor
// of base**precision. Decoded values are float64.
type FixedType struct {
	size      int
	precision int
	base      int
	decimal   bool

	divisor  *big.Int
	min, max float64
}

// Fixed creates a fixed point layout of size bits with precision fractional digits in base.
func Fixed(size, precision, base int) (*FixedType, error) {
	return newFixed(size, precision, base, false)
}

// Decimal creates a fixed point layout with precision decimal places. For example
// Decimal(16, 2) stores values in -655.35 <= v <= 655.35.
func Decimal(size, precision int) (*FixedType, error) {
	return newFixed(size, precision, 10, true)
}

func newFixed(size, precision, base int, decimal bool) (*FixedType, error) {
	t := &FixedType{size: size, precision: precision, base: base, decimal: decimal}
	if err := validSize(t.String(), size); err != nil {
		return nil, err
	}
	if precision < 0 {
		return nil, errors.Layout(t.String(), "precision must be >= 0, got %d", precision)
	}
	if base < 2 {
		return nil, errors.Layout(t.String(), "base must be >= 2, got %d", base)
	}

	t.divisor = new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(precision)), nil)
	t.max, _ = new(big.Rat).SetFrac(bits.Mask(size), t.divisor).Float64()
	t.min = -t.max
	return t, nil
}

func (t *FixedType) isType() {}

// Kind implements Type.Kind().
func (t *FixedType) Kind() Kind {
	if t.decimal {
		return KindDecimal
	}
	return KindFixed
}

// Size implements Type.Size().
func (t *FixedType) Size() int { return t.size }

// Name implements Type.Name(). Fixed point layouts are anonymous.
func (t *FixedType) Name() string { return "" }

// Precision is the number of fractional digits.
func (t *FixedType) Precision() int { return t.precision }

// Base is the base of the fractional digits.
func (t *FixedType) Base() int { return t.base }

// Divisor returns base**precision.
func (t *FixedType) Divisor() *big.Int { return new(big.Int).Set(t.divisor) }

// Min is the smallest value that can be assigned.
func (t *FixedType) Min() float64 { return t.min }

// Max is the largest value that can be assigned.
func (t *FixedType) Max() float64 { return t.max }

// String implements Type.String().
func (t *FixedType) String() string {
	if t.decimal {
		return fmt.Sprintf("decimal(%d, %d)", t.size, t.precision)
	}
	return fmt.Sprintf("fixed(%d, %d, %d)", t.size, t.precision, t.base)
}
