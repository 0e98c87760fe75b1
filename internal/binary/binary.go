// Package binary converts backing integers to and from fixed length byte slices in big
// or little endian order.
package binary

import (
	"math/big"
	"slices"

	"github.com/bearlytools/bffl/internal/bits"
)

// Len is the number of bytes needed to hold size bits.
func Len(size int) int {
	return (size + 7) / 8
}

// BigEndian returns the low size bits of n as Len(size) bytes, most significant byte first.
func BigEndian(n *big.Int, size int) []byte {
	b := make([]byte, Len(size))
	v := new(big.Int).And(n, bits.Mask(size))
	return v.FillBytes(b)
}

// LittleEndian returns the low size bits of n as Len(size) bytes, least significant byte first.
func LittleEndian(n *big.Int, size int) []byte {
	b := BigEndian(n, size)
	slices.Reverse(b)
	return b
}

// FromBigEndian returns the unsigned integer held in b, most significant byte first.
func FromBigEndian(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// FromLittleEndian returns the unsigned integer held in b, least significant byte first.
// b is not modified.
func FromLittleEndian(b []byte) *big.Int {
	r := slices.Clone(b)
	slices.Reverse(r)
	return new(big.Int).SetBytes(r)
}
