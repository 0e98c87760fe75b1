package schema

import (
	"strings"
	"testing"

	jsonv2 "github.com/go-json-experiment/json"
	memfs "github.com/gopherfs/fs/io/mem/simple"
	"github.com/gostdlib/base/context"
	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/field"
	"github.com/bearlytools/bffl/layout"
)

const frameText = `// Test layouts.
enum opcode {
	NOP 0
	LOAD        // 1
	STORE 0x10
}

struct pt {
	x sint 8
	y sint 8
}

struct frame {
	op     uint 8 opcode
	points pt [3]
	rows   uint 8 [2][4] // two rows of four
	price  decimal 16 2
	ratio  fixed 12 4 2
	label  utf8 6 nonult
	ctl    svreg 16
}
`

const frameClassdef = `enum opcode {
	NOP 0
	LOAD 1
	STORE 16
}

struct pt {
	x sint 8
	y sint 8
}

struct frame {
	op uint 8 opcode
	points pt [3]
	rows uint 8 [2][4]
	price decimal 16 2
	ratio fixed 12 4 2
	label utf8 6 nonult
	ctl svreg 16
}
`

const frameYAML = `
enums:
  opcode: {NOP: 0, LOAD: 1, STORE: 0x10}
structs:
  pt:
    x: sint 8
    y: sint 8
  frame:
    op: uint 8 opcode
    points: pt [3]
    rows: uint 8 [2][4]
    price: decimal 16 2
    ratio: fixed 12 4 2
    label: utf8 6 nonult
    ctl: svreg 16
`

func mustParse(t *testing.T, text string) *Schema {
	t.Helper()
	s, err := ParseText(context.Background(), text)
	if err != nil {
		t.Fatalf("ParseText: %s", err)
	}
	return s
}

func TestParseText(t *testing.T) {
	s := mustParse(t, frameText)

	if diff := pretty.Compare([]string{"opcode", "pt", "frame"}, s.Names()); diff != "" {
		t.Errorf("TestParseText: Names() -want/+got:\n%s", diff)
	}
	frame, ok := s.Struct("frame")
	if !ok {
		t.Fatalf("TestParseText: Struct(frame) not found")
	}
	if got := frame.Size(); got != 8+48+64+16+12+48+16 {
		t.Errorf("TestParseText: frame.Size() got %d", got)
	}
	if _, ok := s.Struct("opcode"); ok {
		t.Errorf("TestParseText: Struct(opcode) found an enum")
	}
	e, ok := s.Enum("opcode")
	if !ok {
		t.Fatalf("TestParseText: Enum(opcode) not found")
	}
	want := []layout.EnumEntry{{Label: "NOP", Code: 0}, {Label: "LOAD", Code: 1}, {Label: "STORE", Code: 16}}
	if diff := pretty.Compare(want, e.Entries()); diff != "" {
		t.Errorf("TestParseText: opcode entries -want/+got:\n%s", diff)
	}

	got, err := s.Text()
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(frameClassdef, got); diff != "" {
		t.Errorf("TestParseText: Text() -want/+got:\n%s", diff)
	}
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		desc    string
		text    string
		errText string
	}{
		{desc: "Keyword case", text: "Struct pt {\n}\n", errText: "required to be"},
		{desc: "Missing brace", text: "struct pt\n", errText: "want 'struct NAME {'"},
		{desc: "EOF in struct", text: "struct pt {\n\tx sint 8\n", errText: "EOF reached"},
		{desc: "EOF in enum", text: "enum color {\n\tRED\n", errText: "EOF reached"},
		{desc: "Undefined type", text: "struct pt {\n\tx point\n}\n", errText: "undefined type"},
		{desc: "Undefined enum", text: "struct pt {\n\tx uint 2 color\n}\n", errText: "undefined enum"},
		{desc: "Use before definition", text: "struct a {\n\tp pt\n}\nstruct pt {\n\tx sint 8\n}\n", errText: "undefined type"},
		{desc: "Duplicate definition", text: "struct pt {\n}\nenum pt {\n}\n", errText: "already defined"},
		{desc: "Keyword name", text: "struct uint {\n}\n", errText: "keyword"},
		{desc: "Reserved member name", text: "struct pt {\n\t_x sint 8\n}\n", errText: "_x"},
		{desc: "Bad size", text: "struct pt {\n\tx sint eight\n}\n", errText: "want an integer"},
		{desc: "Extra args", text: "struct pt {\n\tx svreg 8 9\n}\n", errText: "want 'svreg SIZE'"},
		{desc: "Bad nult", text: "struct pt {\n\ts utf8 8 yes\n}\n", errText: "nonult"},
		{desc: "Enum code does not fit", text: "enum color {\n\tRED 4\n}\nstruct pt {\n\tc uint 2 color\n}\n", errText: "does not fit"},
		{desc: "Duplicate label", text: "enum color {\n\tRED\n\tRED\n}\n", errText: "duplicate"},
		{desc: "Junk after brace", text: "struct pt {\n} x\n", errText: "unexpected"},
		{desc: "Unknown block", text: "union pt {\n}\n", errText: "want 'enum NAME {'"},
	}

	for _, test := range tests {
		_, err := ParseText(context.Background(), test.text)
		switch {
		case err == nil:
			t.Errorf("TestParseTextErrors(%s): got err == nil, want err != nil", test.desc)
			continue
		case !errors.Is(err, errors.ErrLayout):
			t.Errorf("TestParseTextErrors(%s): got err %v, want a layout error", test.desc, err)
		case !strings.Contains(err.Error(), test.errText):
			t.Errorf("TestParseTextErrors(%s): got err %q, want it to contain %q", test.desc, err, test.errText)
		}
	}
}

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte(frameYAML))
	if err != nil {
		t.Fatalf("TestParseYAML: %s", err)
	}
	got, err := s.Text()
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(frameClassdef, got); diff != "" {
		t.Errorf("TestParseYAML: Text() -want/+got:\n%s", diff)
	}

	seq, err := ParseYAML([]byte("enums:\n  color: [RED, GREEN]\nstructs:\n  empty:\n"))
	if err != nil {
		t.Fatalf("TestParseYAML: %s", err)
	}
	e, _ := seq.Enum("color")
	if code, ok := e.Code("GREEN"); !ok || code != 1 {
		t.Errorf("TestParseYAML: color.Code(GREEN) got %d, %v", code, ok)
	}
	if st, ok := seq.Struct("empty"); !ok || st.Size() != 0 {
		t.Errorf("TestParseYAML: empty struct not defined")
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		desc string
		yaml string
	}{
		{desc: "Not YAML", yaml: "structs: [\n"},
		{desc: "Not a mapping", yaml: "- a\n- b\n"},
		{desc: "Unknown key", yaml: "unions:\n  a: {}\n"},
		{desc: "Bad enum", yaml: "enums:\n  color: RED\n"},
		{desc: "Bad code", yaml: "enums:\n  color: {RED: one}\n"},
		{desc: "Bad member", yaml: "structs:\n  pt:\n    x: [sint, 8]\n"},
		{desc: "Undefined type", yaml: "structs:\n  pt:\n    x: point\n"},
	}

	for _, test := range tests {
		_, err := ParseYAML([]byte(test.yaml))
		switch {
		case err == nil:
			t.Errorf("TestParseYAMLErrors(%s): got err == nil, want err != nil", test.desc)
		case !errors.Is(err, errors.ErrLayout):
			t.Errorf("TestParseYAMLErrors(%s): got err %v, want a layout error", test.desc, err)
		}
	}
}

func TestClassdef(t *testing.T) {
	opcode := mustEnum(layout.NewEnum("opcode",
		layout.EnumEntry{Label: "NOP", Code: 0},
		layout.EnumEntry{Label: "LOAD", Code: 1},
		layout.EnumEntry{Label: "STORE", Code: 16},
	))
	s8 := layout.Must(layout.Sint(8, nil))
	pt := layout.Must(layout.Struct("pt", layout.M("x", s8), layout.M("y", s8)))
	frame := layout.Must(layout.Struct(
		"frame",
		layout.M("op", layout.Must(layout.Uint(8, opcode))),
		layout.M("points", layout.Must(layout.Array(pt, 3))),
		layout.M("rows", layout.Must(layout.Dims(layout.Must(layout.Uint(8, nil)), 2, 4))),
		layout.M("price", layout.Must(layout.Decimal(16, 2))),
		layout.M("ratio", layout.Must(layout.Fixed(12, 4, 2))),
		layout.M("label", layout.Must(layout.UTF8(6, false))),
		layout.M("ctl", layout.Must(layout.SVReg(16))),
	))

	got, err := Classdef(frame)
	if err != nil {
		t.Fatalf("TestClassdef: %s", err)
	}
	if diff := pretty.Compare(frameClassdef, got); diff != "" {
		t.Errorf("TestClassdef: -want/+got:\n%s", diff)
	}

	// The rendered text reads back into a layout that renders the same way.
	back := mustParse(t, got)
	st, _ := back.Struct("frame")
	if st.String() != frame.String() {
		t.Errorf("TestClassdef: round trip got %s, want %s", st, frame)
	}
	again, err := Classdef(st)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Errorf("TestClassdef: second round trip differs:\n%s", again)
	}
}

func TestClassdefErrors(t *testing.T) {
	anon := mustEnum(layout.Enumerate("", "A", "B"))
	spaced := mustEnum(layout.Enumerate("spaced", "A B"))
	s8 := layout.Must(layout.Sint(8, nil))
	inner := layout.Must(layout.Struct("pt", layout.M("x", s8)))
	other := layout.Must(layout.Struct("pt", layout.M("y", s8)))

	tests := []struct {
		desc string
		st   *layout.StructType
	}{
		{desc: "Anonymous enum", st: layout.Must(layout.Struct("a", layout.M("c", layout.Must(layout.Uint(1, anon)))))},
		{desc: "Label with space", st: layout.Must(layout.Struct("a", layout.M("c", layout.Must(layout.Uint(1, spaced)))))},
		{desc: "Anonymous struct", st: layout.Must(layout.Struct("", layout.M("x", s8)))},
		{desc: "Two structs with one name", st: layout.Must(layout.Struct("a", layout.M("p", inner), layout.M("q", other)))},
		{desc: "nil", st: nil},
	}

	for _, test := range tests {
		if _, err := Classdef(test.st); err == nil {
			t.Errorf("TestClassdefErrors(%s): got err == nil, want err != nil", test.desc)
		}
	}
}

func TestLoad(t *testing.T) {
	testFS := memfs.New()
	files := map[string]string{
		"/schemas/frame.bffl": frameText,
		"/schemas/frame.yaml": frameYAML,
		"/schemas/bad.yml":    "structs:\n  pt:\n    x: point\n",
	}
	for p, content := range files {
		if err := testFS.WriteFile(p, []byte(content), 0600); err != nil {
			panic(err)
		}
	}

	tests := []struct {
		desc string
		path string
		err  bool
	}{
		{desc: "Text file", path: "/schemas/frame.bffl"},
		{desc: "YAML file", path: "/schemas/frame.yaml"},
		{desc: "Invalid schema", path: "/schemas/bad.yml", err: true},
		{desc: "No such file", path: "/schemas/none.bffl", err: true},
	}

	for _, test := range tests {
		s, err := Load(context.Background(), test.path, WithFS(testFS))
		switch {
		case err == nil && test.err:
			t.Errorf("TestLoad(%s): got err == nil, want err != nil", test.desc)
			continue
		case err != nil && !test.err:
			t.Errorf("TestLoad(%s): got err == %s, want err == nil", test.desc, err)
			continue
		case err != nil:
			continue
		}

		got, err := s.Text()
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Compare(frameClassdef, got); diff != "" {
			t.Errorf("TestLoad(%s): -want/+got:\n%s", test.desc, diff)
		}
	}
}

func TestBind(t *testing.T) {
	s := mustParse(t, frameText)

	f, err := s.Bind("pt", field.WithValue(field.Record{{Name: "x", Value: -5}, {Name: "y", Value: 10}}))
	if err != nil {
		t.Fatalf("TestBind: %s", err)
	}
	if got := f.Bin(); got != "1111101100001010" {
		t.Errorf("TestBind: Bin() got %q", got)
	}
	if f.Name() != "pt" {
		t.Errorf("TestBind: Name() got %q, want %q", f.Name(), "pt")
	}

	frame, err := s.Bind("frame")
	if err != nil {
		t.Fatal(err)
	}
	if err := frame.SetMember("op", "STORE"); err != nil {
		t.Fatal(err)
	}
	op, err := frame.Resolve("op")
	if err != nil {
		t.Fatal(err)
	}
	if op.Value() != "STORE" || op.Raw().Int64() != 16 {
		t.Errorf("TestBind: op got %v (%s)", op.Value(), op.Raw())
	}

	if _, err := s.Bind("opcode"); !errors.Is(err, errors.ErrKey) {
		t.Errorf("TestBind: Bind(opcode) got err %v, want a key error", err)
	}
}

func TestJSON(t *testing.T) {
	s := mustParse(t, "enum color {\n\tRED\n\tGREEN\n}\nstruct px {\n\tc uint 4 color\n\tv decimal 8 1\n\tn utf8 2\n}\n")
	b, err := s.JSON()
	if err != nil {
		t.Fatal(err)
	}

	var got []jsonDef
	if err := jsonv2.Unmarshal(b, &got); err != nil {
		t.Fatalf("TestJSON: %s\n%s", err, b)
	}
	one, nult := 1, true
	want := []jsonDef{
		{Name: "color", Kind: "enum", Entries: []jsonEntry{{Label: "RED", Code: 0}, {Label: "GREEN", Code: 1}}},
		{
			Name: "px",
			Kind: "struct",
			Size: 28,
			Members: []jsonMember{
				{Name: "c", Kind: "uint", Type: "uint[4]", Offset: 24, Size: 4, Enum: "color"},
				{Name: "v", Kind: "decimal", Type: "decimal(8, 1)", Offset: 16, Size: 8, Precision: &one, Base: 10},
				{Name: "n", Kind: "utf8", Type: "utf8(2)", Offset: 0, Size: 16, Nult: &nult},
			},
		},
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("TestJSON: -want/+got:\n%s", diff)
	}
}

func mustEnum(e *layout.Enum, err error) *layout.Enum {
	if err != nil {
		panic(err)
	}
	return e
}
