package bffl

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestPoint(t *testing.T) {
	s8 := Must(Sint(8))
	pt := Must(Struct("pt", M("x", s8), M("y", s8)))

	f, err := Bind(pt, WithValue(map[string]any{"x": -5, "y": 10}))
	if err != nil {
		t.Fatalf("TestPoint: %s", err)
	}
	want := Record{{Name: "x", Value: int64(-5)}, {Name: "y", Value: int64(10)}}
	if diff := pretty.Compare(want, f.Value()); diff != "" {
		t.Errorf("TestPoint: -want/+got:\n%s", diff)
	}
	if got := f.Bin(); got != "11111011"+"00001010" {
		t.Errorf("TestPoint: Bin() got %q", got)
	}
}

func TestEnum(t *testing.T) {
	e, err := Enumerate("color", "RED", "GREEN", "BLUE")
	if err != nil {
		t.Fatal(err)
	}

	f, err := Bind(Must(Uint(4, e)))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetValue("GREEN"); err != nil {
		t.Fatal(err)
	}
	if f.Raw().Int64() != 1 || f.Value() != "GREEN" {
		t.Errorf("TestEnum: got raw %s value %v, want 1 GREEN", f.Raw(), f.Value())
	}
	if err := f.SetValue(3); err != nil {
		t.Fatal(err)
	}
	if f.Value() != uint64(3) {
		t.Errorf("TestEnum: got %v (%T), want uint64(3)", f.Value(), f.Value())
	}
}

func TestArray(t *testing.T) {
	grid := Must(Array(Must(Uint(8)), 2, 3))
	if grid.Kind() != KindArray || grid.Size() != 48 {
		t.Errorf("TestArray: got %s of %d bits", grid.Kind(), grid.Size())
	}
}
