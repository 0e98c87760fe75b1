package expr

import (
	"math/big"
	"testing"

	"github.com/bearlytools/bffl/errors"
)

// resolver lays out a 16 bit word: hi in bits 8..15, lo in bits 0..7, arr[0] and arr[1]
// in bits 0..3 and 4..7.
func resolver(name string) (Ref, error) {
	switch name {
	case "hi":
		return Ref{Offset: 8, Size: 8}, nil
	case "lo":
		return Ref{Offset: 0, Size: 8}, nil
	case "arr[0]":
		return Ref{Offset: 0, Size: 4}, nil
	case "arr[1]":
		return Ref{Offset: 4, Size: 4}, nil
	case "hdr.len":
		return Ref{Offset: 4, Size: 12}, nil
	}
	return Ref{}, errors.Key("", name)
}

func TestRefSource(t *testing.T) {
	if got := (Ref{Offset: 0, Size: 8}).Source(); got != "(n & 0xff)" {
		t.Errorf("TestRefSource(offset 0): got %q", got)
	}
	if got := (Ref{Offset: 8, Size: 4}).Source(); got != "((n >> 8) & 0xf)" {
		t.Errorf("TestRefSource(offset 8): got %q", got)
	}
}

func TestCompile(t *testing.T) {
	n := big.NewInt(0x1234) // hi == 0x12, lo == 0x34

	tests := []struct {
		desc     string
		expr     string
		wordSize int
		want     int64
		err      error
	}{
		{desc: "literal", expr: "42", want: 42},
		{desc: "hex literal", expr: "0x1f", want: 31},
		{desc: "field", expr: "hi", want: 0x12},
		{desc: "index path", expr: "arr[1]", want: 3},
		{desc: "selector path", expr: "hdr.len", want: 0x123},
		{desc: "sum", expr: "hi + lo", want: 0x46},
		{desc: "precedence", expr: "hi + lo * 2", want: 0x12 + 0x68},
		{desc: "parens", expr: "(hi + lo) * 2", want: 0x8c},
		{desc: "shift", expr: "hi << 8 | lo", want: 0x1234},
		{desc: "and not", expr: "lo &^ 0x0f", want: 0x30},
		{desc: "negate", expr: "-lo", want: -0x34},
		{desc: "bitwise not wrapped", expr: "^lo", wordSize: 8, want: 0xcb},
		{desc: "logical not", expr: "!lo", want: 0},
		{desc: "comparison", expr: "hi < lo", want: 1},
		{desc: "logical and", expr: "hi > 0 && lo == 0x34", want: 1},
		{desc: "logical or", expr: "hi == 0 || lo == 0", want: 0},
		{desc: "truncating division", expr: "-7 / 2", want: -3},
		{desc: "remainder", expr: "lo % 5", want: 2},
		{desc: "wraps to word size", expr: "hi + 0xff", wordSize: 8, want: 0x11},
		{desc: "unknown name", expr: "nope + 1", err: errors.ErrKey},
		{desc: "syntax error", expr: "hi +", err: errors.ErrExpr},
		{desc: "string literal", expr: `"hi"`, err: errors.ErrExpr},
		{desc: "call", expr: "len(hi)", err: errors.ErrExpr},
		{desc: "variable index", expr: "arr[hi]", err: errors.ErrExpr},
		{desc: "negative word size", expr: "1", wordSize: -1, err: errors.ErrExpr},
	}

	for _, test := range tests {
		exec, err := Default.Compile(test.expr, resolver, test.wordSize)
		switch {
		case err == nil && test.err != nil:
			t.Errorf("TestCompile(%s): got err == nil, want err != nil", test.desc)
			continue
		case err != nil && test.err == nil:
			t.Errorf("TestCompile(%s): got err == %s, want err == nil", test.desc, err)
			continue
		case err != nil:
			if !errors.Is(err, test.err) {
				t.Errorf("TestCompile(%s): got err %s, want kind %s", test.desc, err, test.err)
			}
			continue
		}

		got, err := exec.Eval(n)
		if err != nil {
			t.Errorf("TestCompile(%s): Eval() got err == %s", test.desc, err)
			continue
		}
		if got.Cmp(big.NewInt(test.want)) != 0 {
			t.Errorf("TestCompile(%s): Eval() got %s, want %d (source %s)", test.desc, got, test.want, exec.Source())
		}
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		desc string
		expr string
	}{
		{desc: "division by zero", expr: "hi / (lo - 0x34)"},
		{desc: "remainder by zero", expr: "hi % 0"},
		{desc: "negative shift", expr: "hi << -1"},
		{desc: "huge shift", expr: "1 << 100000000"},
	}

	for _, test := range tests {
		exec, err := Default.Compile(test.expr, resolver, 0)
		if err != nil {
			t.Errorf("TestEvalErrors(%s): Compile() got err == %s", test.desc, err)
			continue
		}
		if _, err := exec.Eval(big.NewInt(0x1234)); !errors.Is(err, errors.ErrExpr) {
			t.Errorf("TestEvalErrors(%s): got err == %v, want expr error", test.desc, err)
		}
	}
}

func TestSource(t *testing.T) {
	exec, err := Default.Compile("hi + 1", resolver, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := "((((n >> 8) & 0xff) + 1) & 0xff)"
	if got := exec.Source(); got != want {
		t.Errorf("TestSource: got %q, want %q", got, want)
	}

	if got := RefExecutable(Ref{Offset: 4, Size: 4}, 0).Source(); got != "((n >> 4) & 0xf)" {
		t.Errorf("TestSource(RefExecutable): got %q", got)
	}
}
