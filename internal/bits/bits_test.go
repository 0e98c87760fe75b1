package bits

import (
	"math/big"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		size int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{8, "ff"},
		{12, "fff"},
		{65, "1ffffffffffffffff"},
	}

	for _, test := range tests {
		if got := Mask(test.size).Text(16); got != test.want {
			t.Errorf("TestMask(%d): got %s, want %s", test.size, got, test.want)
		}
	}
}

func TestGetSetValue(t *testing.T) {
	tests := []struct {
		desc   string
		store  int64
		val    int64
		size   int
		offset int
		want   int64
	}{
		{desc: "low byte into zero", store: 0, val: 0xAB, size: 8, offset: 0, want: 0xAB},
		{desc: "high byte keeps low byte", store: 0x00CD, val: 0xAB, size: 8, offset: 8, want: 0xABCD},
		{desc: "overwrite middle nibble", store: 0xFFF, val: 0x0, size: 4, offset: 4, want: 0xF0F},
		{desc: "truncates overflow", store: 0, val: 0x1FF, size: 8, offset: 0, want: 0xFF},
		{desc: "negative is two's complement", store: 0, val: -1, size: 4, offset: 4, want: 0xF0},
	}

	for _, test := range tests {
		store := big.NewInt(test.store)
		mask := Mask(test.size)
		SetValue(store, big.NewInt(test.val), mask, test.offset)
		if store.Int64() != test.want {
			t.Errorf("TestGetSetValue(%s): store got %#x, want %#x", test.desc, store.Int64(), test.want)
			continue
		}
		got := GetValue(store, mask, test.offset)
		want := new(big.Int).And(big.NewInt(test.val), mask)
		if got.Cmp(want) != 0 {
			t.Errorf("TestGetSetValue(%s): GetValue() got %s, want %s", test.desc, got, want)
		}
	}
}

func TestBit(t *testing.T) {
	store := new(big.Int)
	SetBit(store, 70, true)
	if !GetBit(store, 70) {
		t.Errorf("TestBit: bit 70 not set")
	}
	SetBit(store, 70, false)
	if GetBit(store, 70) || store.Sign() != 0 {
		t.Errorf("TestBit: bit 70 not cleared, store = %s", store)
	}
}

func TestBinaryHex(t *testing.T) {
	n := big.NewInt(0xFB0A)
	if got := Binary(n, 16); got != "1111101100001010" {
		t.Errorf("TestBinaryHex: Binary() got %s", got)
	}
	if got := Binary(big.NewInt(1), 4); got != "0001" {
		t.Errorf("TestBinaryHex: Binary() padded got %s", got)
	}
	if got := Hex(n, 16); got != "fb0a" {
		t.Errorf("TestBinaryHex: Hex() got %s", got)
	}
	if got := Hex(big.NewInt(5), 9); got != "005" {
		t.Errorf("TestBinaryHex: Hex() odd width got %s", got)
	}
	if got := Width(9, 4); got != 3 {
		t.Errorf("TestBinaryHex: Width(9, 4) got %d", got)
	}
}
