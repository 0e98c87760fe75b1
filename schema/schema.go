// Package schema loads bffl layouts from schema files and renders layouts back as schema
// text.
//
// A schema is an ordered set of named enums and structs. Definitions may only refer to
// definitions that precede them. The text form is:
//
//	// Comments start with // and run to the end of the line.
//	enum opcode {
//		NOP 0
//		LOAD        // 1, one more than the previous code
//		STORE 0x10
//	}
//
//	struct pt {
//		x sint 8
//		y sint 8
//	}
//
//	struct frame {
//		op     uint 4 opcode
//		points pt [3]
//		rows   uint 8 [2][4]
//		price  decimal 16 2
//		ratio  fixed 12 4 2
//		label  utf8 6 nonult
//		ctl    svreg 16
//	}
//
// Member types are one of:
//
//	uint SIZE [ENUM]
//	sint SIZE [ENUM]
//	svreg SIZE
//	fixed SIZE PRECISION BASE
//	decimal SIZE PRECISION
//	utf8 LENGTH [nonult]
//	STRUCT
//
// optionally followed by array dimensions, outermost first.
//
// The same definitions can be written in YAML, see ParseYAML().
package schema

import (
	"fmt"
	"io/fs"
	"slices"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.uber.org/zap"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/expr"
	"github.com/bearlytools/bffl/field"
	"github.com/bearlytools/bffl/layout"
)

// keywords cannot be used as definition names.
var keywords = map[string]bool{
	"enum":    true,
	"struct":  true,
	"uint":    true,
	"sint":    true,
	"svreg":   true,
	"fixed":   true,
	"decimal": true,
	"utf8":    true,
	"nonult":  true,
}

type def struct {
	name string
	enum *layout.Enum
	st   *layout.StructType
}

// Schema is an ordered set of named enums and structs. A Schema is not safe for
// concurrent modification, but once built it can be read from many goroutines.
type Schema struct {
	defs   []def
	byName map[string]int

	log      *zap.Logger
	fsys     fs.ReadFileFS
	compiler expr.Compiler
}

// Option is an option for New(), ParseText(), ParseYAML() and Load().
type Option func(s *Schema)

// WithLogger sets the logger used to report definitions and loaded files.
func WithLogger(l *zap.Logger) Option {
	return func(s *Schema) {
		s.log = l
	}
}

// WithFS sets the file system Load() reads from. Defaults to the local file system.
func WithFS(fsys fs.ReadFileFS) Option {
	return func(s *Schema) {
		s.fsys = fsys
	}
}

// WithCompiler sets the expression compiler of fields created with Bind().
func WithCompiler(c expr.Compiler) Option {
	return func(s *Schema) {
		s.compiler = c
	}
}

// New creates an empty Schema.
func New(opts ...Option) *Schema {
	s := &Schema{
		byName: map[string]int{},
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Len is the number of definitions.
func (s *Schema) Len() int {
	return len(s.defs)
}

// Names returns the names of all definitions in the order they were defined.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d.name)
	}
	return out
}

// Enum returns the enum called name.
func (s *Schema) Enum(name string) (*layout.Enum, bool) {
	i, ok := s.byName[name]
	if !ok || s.defs[i].enum == nil {
		return nil, false
	}
	return s.defs[i].enum, true
}

// Struct returns the struct called name.
func (s *Schema) Struct(name string) (*layout.StructType, bool) {
	i, ok := s.byName[name]
	if !ok || s.defs[i].st == nil {
		return nil, false
	}
	return s.defs[i].st, true
}

// Enums returns the enums in the order they were defined.
func (s *Schema) Enums() []*layout.Enum {
	var out []*layout.Enum
	for _, d := range s.defs {
		if d.enum != nil {
			out = append(out, d.enum)
		}
	}
	return out
}

// Structs returns the structs in the order they were defined.
func (s *Schema) Structs() []*layout.StructType {
	var out []*layout.StructType
	for _, d := range s.defs {
		if d.st != nil {
			out = append(out, d.st)
		}
	}
	return out
}

// AddEnum adds a named enum to the schema.
func (s *Schema) AddEnum(e *layout.Enum) error {
	if e == nil {
		return errors.Layout("schema", "enum is nil")
	}
	if err := s.checkName(e.Name()); err != nil {
		return err
	}
	s.add(def{name: e.Name(), enum: e})
	s.log.Debug("enum defined", zap.String("enum", e.Name()), zap.Int("labels", e.Len()))
	return nil
}

// AddStruct adds a named struct to the schema. Any enum or struct used by its members
// must already be defined.
func (s *Schema) AddStruct(t *layout.StructType) error {
	if t == nil {
		return errors.Layout("schema", "struct is nil")
	}
	if err := s.checkName(t.Name()); err != nil {
		return err
	}
	for _, d := range dependencies(t) {
		if err := s.defined(t.Name(), d); err != nil {
			return err
		}
	}
	s.add(def{name: t.Name(), st: t})
	s.log.Debug("struct defined", zap.String("struct", t.Name()), zap.Int("size", t.Size()))
	return nil
}

// checkName checks that name can be used for a new definition.
func (s *Schema) checkName(name string) error {
	if !layout.IsIdentifier(name) {
		return errors.Layout("schema", "definition name %q is not an identifier", name)
	}
	if keywords[name] {
		return errors.Layout("schema", "definition name %q is a keyword", name)
	}
	if _, ok := s.byName[name]; ok {
		return errors.Layout("schema", "%q is already defined", name)
	}
	return nil
}

func (s *Schema) add(d def) {
	s.byName[d.name] = len(s.defs)
	s.defs = append(s.defs, d)
}

// defined checks that the definition d used by owner is the one in the schema.
func (s *Schema) defined(owner string, d def) error {
	i, ok := s.byName[d.name]
	if !ok {
		return errors.Layout(owner, "%q is used before it is defined", d.name)
	}
	got := s.defs[i]
	if got.enum != d.enum || got.st != d.st {
		return errors.Layout(owner, "uses a different layout named %q than the one defined", d.name)
	}
	return nil
}

// Bind allocates the struct called name over a new backing integer. The field is named
// after the struct unless opts contain field.WithName().
func (s *Schema) Bind(name string, opts ...field.Option) (*field.Field, error) {
	t, ok := s.Struct(name)
	if !ok {
		return nil, errors.Key("schema", name)
	}
	base := []field.Option{field.WithName(name)}
	if s.compiler != nil {
		base = append(base, field.WithCompiler(s.compiler))
	}
	return field.Bind(t, append(base, opts...)...)
}

type jsonEntry struct {
	Label string `json:"label"`
	Code  int64  `json:"code"`
}

type jsonMember struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Offset    int    `json:"offset"`
	Size      int    `json:"size"`
	Dims      []int  `json:"dims,omitempty"`
	Enum      string `json:"enum,omitempty"`
	Struct    string `json:"struct,omitempty"`
	Precision *int   `json:"precision,omitempty"`
	Base      int    `json:"base,omitzero"`
	Nult      *bool  `json:"nult,omitempty"`
}

type jsonDef struct {
	Name    string       `json:"name"`
	Kind    string       `json:"kind"`
	Size    int          `json:"size,omitzero"`
	Entries []jsonEntry  `json:"entries,omitempty"`
	Members []jsonMember `json:"members,omitempty"`
}

// JSON describes every definition as JSON, including the bit offset of each struct
// member within its struct.
func (s *Schema) JSON() ([]byte, error) {
	out := make([]jsonDef, 0, len(s.defs))
	for _, d := range s.defs {
		if d.enum != nil {
			jd := jsonDef{Name: d.name, Kind: "enum"}
			for _, e := range d.enum.Entries() {
				jd.Entries = append(jd.Entries, jsonEntry{Label: e.Label, Code: e.Code})
			}
			out = append(out, jd)
			continue
		}
		out = append(out, jsonDef{Name: d.name, Kind: "struct", Size: d.st.Size(), Members: jsonMembers(d.st)})
	}
	b, err := jsonv2.Marshal(out, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Wrap(errors.KindBug, "schema", err, "cannot encode schema as JSON")
	}
	return b, nil
}

func jsonMembers(t *layout.StructType) []jsonMember {
	members := t.Members()
	out := make([]jsonMember, len(members))
	offset := 0
	// The last declared member is at offset 0.
	for i, m := range slices.Backward(members) {
		jm := jsonMember{Name: m.Name, Type: m.Type.String(), Offset: offset, Size: m.Type.Size()}
		offset += m.Type.Size()

		elem := m.Type
		for {
			a, ok := elem.(*layout.ArrayType)
			if !ok {
				break
			}
			jm.Dims = append(jm.Dims, a.Dim())
			elem = a.Elem()
		}
		jm.Kind = elem.Kind().String()
		switch x := elem.(type) {
		case *layout.IntType:
			if x.Enum() != nil {
				jm.Enum = x.Enum().Name()
			}
		case *layout.FixedType:
			p := x.Precision()
			jm.Precision = &p
			jm.Base = x.Base()
		case *layout.UTF8Type:
			n := x.NullTerminated()
			jm.Nult = &n
		case *layout.StructType:
			jm.Struct = x.Name()
		}
		out[i] = jm
	}
	return out
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema%v", s.Names())
}
