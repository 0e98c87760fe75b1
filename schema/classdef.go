package schema

import (
	"fmt"
	"strings"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/layout"
)

// Classdef renders t as schema text that ParseText() reads back into an equal layout.
// The enums and structs used by t are rendered before it.
func Classdef(t *layout.StructType) (string, error) {
	if t == nil {
		return "", errors.Layout("schema", "struct is nil")
	}
	s := New()
	for _, d := range dependencies(t) {
		if err := s.addDef(d); err != nil {
			return "", err
		}
	}
	if err := s.AddStruct(t); err != nil {
		return "", err
	}
	return s.Text()
}

func (s *Schema) addDef(d def) error {
	if d.enum != nil {
		return s.AddEnum(d.enum)
	}
	return s.AddStruct(d.st)
}

// Text renders every definition as schema text, in the order they were defined.
func (s *Schema) Text() (string, error) {
	var b strings.Builder
	for i, d := range s.defs {
		if i > 0 {
			b.WriteString("\n")
		}
		var err error
		if d.enum != nil {
			err = writeEnum(&b, d.enum)
		} else {
			err = writeStruct(&b, d.st)
		}
		if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeEnum(b *strings.Builder, e *layout.Enum) error {
	fmt.Fprintf(b, "enum %s {\n", e.Name())
	for _, entry := range e.Entries() {
		if !layout.IsIdentifier(entry.Label) {
			return errors.Layout(e.Name(), "enum label %q is not an identifier", entry.Label)
		}
		fmt.Fprintf(b, "\t%s %d\n", entry.Label, entry.Code)
	}
	b.WriteString("}\n")
	return nil
}

func writeStruct(b *strings.Builder, t *layout.StructType) error {
	fmt.Fprintf(b, "struct %s {\n", t.Name())
	for _, m := range t.Members() {
		tt, err := typeText(m.Type)
		if err != nil {
			return errors.Wrap(errors.KindLayout, t.Name()+"."+m.Name, err, "cannot render member")
		}
		fmt.Fprintf(b, "\t%s %s\n", m.Name, tt)
	}
	b.WriteString("}\n")
	return nil
}
