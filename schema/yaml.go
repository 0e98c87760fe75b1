package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/layout"
)

// ParseYAML parses a schema written in YAML. Top level "enums" and "structs" keys hold
// mappings of definitions, read in the order they appear in the document:
//
//	enums:
//	  color: [RED, GREEN, BLUE]   # codes 0, 1, 2
//	  opcode: {NOP: 0, STORE: 0x10}
//	structs:
//	  pt:
//	    x: sint 8
//	    y: sint 8
//	  frame:
//	    op: uint 4 opcode
//	    points: pt [3]
//
// Member types use the same words as schema text.
func ParseYAML(data []byte, opts ...Option) (*Schema, error) {
	s := New(opts...)
	if err := s.parseYAML(data); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) parseYAML(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.Wrap(errors.KindLayout, "schema", err, "cannot parse schema YAML")
	}
	if err := s.readYAML(&root); err != nil {
		return errors.Wrap(errors.KindLayout, "schema", err, "invalid schema YAML")
	}
	return nil
}

func (s *Schema) readYAML(root *yaml.Node) error {
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: want a mapping with 'enums' and 'structs' keys", node.Line)
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var err error
		switch key.Value {
		case "enums":
			err = pairs(val, s.readEnum)
		case "structs":
			err = pairs(val, s.readStruct)
		default:
			err = fmt.Errorf("line %d: unknown key %q, want 'enums' or 'structs'", key.Line, key.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pairs calls fn with every key and value of the mapping node, in document order.
// A null node is an empty mapping.
func pairs(node *yaml.Node, fn func(key, val *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: want a mapping", node.Line)
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: want a name", key.Line)
		}
		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// readEnum reads an enum that is either a sequence of labels or a mapping of labels
// to codes.
func (s *Schema) readEnum(key, val *yaml.Node) error {
	var entries []layout.EnumEntry
	switch val.Kind {
	case yaml.SequenceNode:
		for i, n := range val.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: enum %s: want a label", n.Line, key.Value)
			}
			entries = append(entries, layout.EnumEntry{Label: n.Value, Code: int64(i)})
		}
	case yaml.MappingNode:
		err := pairs(val, func(label, code *yaml.Node) error {
			c, err := strconv.ParseInt(code.Value, 0, 64)
			if err != nil || code.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: enum %s: label %s: want an integer code, got %q", code.Line, key.Value, label.Value, code.Value)
			}
			entries = append(entries, layout.EnumEntry{Label: label.Value, Code: c})
			return nil
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: enum %s: want a list of labels or a mapping of labels to codes", val.Line, key.Value)
	}

	e, err := layout.NewEnum(key.Value, entries...)
	if err != nil {
		return fmt.Errorf("line %d: %w", key.Line, err)
	}
	if err := s.AddEnum(e); err != nil {
		return fmt.Errorf("line %d: %w", key.Line, err)
	}
	return nil
}

// readStruct reads a struct as a mapping of member names to member types.
func (s *Schema) readStruct(key, val *yaml.Node) error {
	var members []layout.Member
	err := pairs(val, func(name, typ *yaml.Node) error {
		if typ.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: member %s.%s: want a type such as 'uint 8'", typ.Line, key.Value, name.Value)
		}
		t, err := s.typeOf(strings.Fields(typ.Value))
		if err != nil {
			return fmt.Errorf("line %d: member %s.%s: %w", typ.Line, key.Value, name.Value, err)
		}
		members = append(members, layout.M(name.Value, t))
		return nil
	})
	if err != nil {
		return err
	}

	st, err := layout.Struct(key.Value, members...)
	if err != nil {
		return fmt.Errorf("line %d: %w", key.Line, err)
	}
	if err := s.AddStruct(st); err != nil {
		return fmt.Errorf("line %d: %w", key.Line, err)
	}
	return nil
}
