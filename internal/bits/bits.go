// Package bits holds the shift and mask primitives used to read and write bit ranges
// of an arbitrary precision backing integer.
package bits

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/exp/constraints"
)

var one = big.NewInt(1)

// Mask creates a mask of size bits set to 1: (1<<size)-1. A size of 0 yields 0.
// If size < 0, this panics.
func Mask(size int) *big.Int {
	if size < 0 {
		panic(fmt.Sprintf("Mask() cannot have a negative size: %d", size))
	}
	m := new(big.Int).Lsh(one, uint(size))
	return m.Sub(m, one)
}

// GetValue retrieves the bits stored in "store" at "offset" covered by "mask":
// (store >> offset) & mask. store is not modified.
func GetValue(store *big.Int, mask *big.Int, offset int) *big.Int {
	v := new(big.Int).Rsh(store, uint(offset))
	return v.And(v, mask)
}

// SetValue stores "val" in "store" at "offset". val is truncated to mask, bits of
// store outside of mask<<offset are left untouched. val is not modified.
func SetValue(store *big.Int, val *big.Int, mask *big.Int, offset int) {
	shifted := new(big.Int).Lsh(mask, uint(offset))
	store.AndNot(store, shifted)

	v := new(big.Int).And(val, mask)
	v.Lsh(v, uint(offset))
	store.Or(store, v)
}

// GetBit gets a single bit value from "store" in position "pos". true if set, false if not.
func GetBit(store *big.Int, pos int) bool {
	return store.Bit(pos) == 1
}

// SetBit sets a single bit in "store" at position "pos" to value "val".
func SetBit(store *big.Int, pos int, val bool) {
	var b uint
	if val {
		b = 1
	}
	store.SetBit(store, pos, b)
}

// Width returns the number of digits of base 2^digitBits needed for size bits, at least 1.
func Width[I constraints.Integer](size I, digitBits I) I {
	w := (size + digitBits - 1) / digitBits
	if w < 1 {
		return 1
	}
	return w
}

// Pad left pads s with '0' to width characters, or keeps only the low width
// characters if s is longer.
func Pad(s string, width int) string {
	switch {
	case len(s) < width:
		return strings.Repeat("0", width-len(s)) + s
	case len(s) > width:
		return s[len(s)-width:]
	}
	return s
}

// Binary renders the low size bits of n as a zero padded binary string with no prefix.
func Binary(n *big.Int, size int) string {
	if size == 0 {
		return ""
	}
	return Pad(n.Text(2), size)
}

// Hex renders the low size bits of n as a zero padded hex string with no prefix.
func Hex(n *big.Int, size int) string {
	if size == 0 {
		return ""
	}
	return Pad(n.Text(16), Width(size, 4))
}
