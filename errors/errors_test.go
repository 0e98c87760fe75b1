package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		desc     string
		err      *Error
		contains []string
	}{
		{
			desc:     "range error",
			err:      Range("pkt.price", 700.0, -655.35, 655.35),
			contains: []string{"[range]", "pkt.price", "value 700 out of range -655.35 <= value <= 655.35"},
		},
		{
			desc:     "key error",
			err:      Key("pt", "z"),
			contains: []string{"[key]", "pt", `undefined subfield "z"`},
		},
		{
			desc:     "wrapped error",
			err:      Wrap(KindExpr, "pt", New("boom"), "could not compile %q", "x +"),
			contains: []string{"[expr]", `could not compile "x +"`, "caused by: boom"},
		},
		{
			desc:     "no path",
			err:      Layout("", "size must be > 0, got 0"),
			contains: []string{"[layout]: size must be > 0, got 0"},
		},
	}

	for _, test := range tests {
		got := test.err.Error()
		for _, want := range test.contains {
			if !strings.Contains(got, want) {
				t.Errorf("TestErrorString(%s): got %q, want it to contain %q", test.desc, got, want)
			}
		}
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		desc   string
		err    error
		target error
		want   bool
	}{
		{desc: "same kind", err: Index("a", 3, 2), target: ErrIndex, want: true},
		{desc: "different kind", err: Index("a", 3, 2), target: ErrKey, want: false},
		{desc: "wrapped by fmt", err: fmt.Errorf("outer: %w", Type("a", "x", "int")), target: ErrType, want: true},
		{desc: "joined", err: Join(New("other"), Value("a", "zz", "bad")), target: ErrValue, want: true},
		{desc: "plain error", err: New("plain"), target: ErrValue, want: false},
	}

	for _, test := range tests {
		if got := Is(test.err, test.target); got != test.want {
			t.Errorf("TestIs(%s): got %v, want %v", test.desc, got, test.want)
		}
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", Range("f", 1.5, -1, 1))

	var e *Error
	if !As(err, &e) {
		t.Fatalf("TestAs: As() returned false")
	}
	if e.Value != 1.5 {
		t.Errorf("TestAs: got Value %v, want 1.5", e.Value)
	}
	if e.Kind.Category() != CatUser {
		t.Errorf("TestAs: got Category %v, want %v", e.Kind.Category(), CatUser)
	}
	if KindBug.Category() != CatInternal {
		t.Errorf("TestAs: KindBug Category %v, want %v", KindBug.Category(), CatInternal)
	}
}
