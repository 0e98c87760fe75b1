package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"

	"github.com/bearlytools/bffl/layout"
)

var (
	dimsRE = regexp.MustCompile(`^(\[\d+\])+$`)
	dimRE  = regexp.MustCompile(`\[(\d+)\]`)
)

// typeOf builds the layout described by the words of a member type, such as
// ["uint", "4", "opcode"] or ["pt", "[2][3]"]. Enums and structs are looked up in s.
func (s *Schema) typeOf(words []string) (layout.Type, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("missing member type")
	}

	var dims []int
	if last := words[len(words)-1]; dimsRE.MatchString(last) {
		for _, m := range dimRE.FindAllStringSubmatch(last, -1) {
			d, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("bad array dimension %q", m[0])
			}
			dims = append(dims, d)
		}
		words = words[:len(words)-1]
		if len(words) == 0 {
			return nil, fmt.Errorf("array dimensions %q without an element type", last)
		}
	}

	t, err := s.baseType(words)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return t, nil
	}
	return layout.Dims(t, dims...)
}

func (s *Schema) baseType(words []string) (layout.Type, error) {
	kw, args := words[0], words[1:]
	want := func(usage string, min, max int) error {
		if len(args) < min || len(args) > max {
			return fmt.Errorf("want '%s', got %q", usage, strings.Join(words, " "))
		}
		return nil
	}

	switch kw {
	case "uint", "sint":
		if err := want(kw+" SIZE [ENUM]", 1, 2); err != nil {
			return nil, err
		}
		size, err := number(args[0])
		if err != nil {
			return nil, err
		}
		var e *layout.Enum
		if len(args) == 2 {
			var ok bool
			if e, ok = s.Enum(args[1]); !ok {
				return nil, fmt.Errorf("undefined enum %q", args[1])
			}
		}
		if kw == "sint" {
			return layout.Sint(size, e)
		}
		return layout.Uint(size, e)
	case "svreg":
		if err := want("svreg SIZE", 1, 1); err != nil {
			return nil, err
		}
		size, err := number(args[0])
		if err != nil {
			return nil, err
		}
		return layout.SVReg(size)
	case "fixed":
		if err := want("fixed SIZE PRECISION BASE", 3, 3); err != nil {
			return nil, err
		}
		n, err := numbers(args)
		if err != nil {
			return nil, err
		}
		return layout.Fixed(n[0], n[1], n[2])
	case "decimal":
		if err := want("decimal SIZE PRECISION", 2, 2); err != nil {
			return nil, err
		}
		n, err := numbers(args)
		if err != nil {
			return nil, err
		}
		return layout.Decimal(n[0], n[1])
	case "utf8":
		if err := want("utf8 LENGTH [nonult]", 1, 2); err != nil {
			return nil, err
		}
		length, err := number(args[0])
		if err != nil {
			return nil, err
		}
		nult := true
		if len(args) == 2 {
			if args[1] != "nonult" {
				return nil, fmt.Errorf("want 'nonult' after the utf8 length, got %q", args[1])
			}
			nult = false
		}
		return layout.UTF8(length, nult)
	}

	if len(args) != 0 {
		return nil, fmt.Errorf("struct type %q does not take arguments, got %q", kw, strings.Join(args, " "))
	}
	t, ok := s.Struct(kw)
	if !ok {
		return nil, fmt.Errorf("undefined type %q", kw)
	}
	return t, nil
}

func number(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("want an integer, got %q", s)
	}
	return n, nil
}

func numbers(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := number(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// typeText renders t as the words of a member type, the inverse of typeOf().
func typeText(t layout.Type) (string, error) {
	var dims strings.Builder
	for {
		a, ok := t.(*layout.ArrayType)
		if !ok {
			break
		}
		fmt.Fprintf(&dims, "[%d]", a.Dim())
		t = a.Elem()
	}

	var base string
	switch x := t.(type) {
	case *layout.IntType:
		switch {
		case x.SV():
			base = fmt.Sprintf("svreg %d", x.Size())
		case x.Signed():
			base = fmt.Sprintf("sint %d", x.Size())
		default:
			base = fmt.Sprintf("uint %d", x.Size())
		}
		if e := x.Enum(); e != nil && !x.SV() {
			if !layout.IsIdentifier(e.Name()) {
				return "", fmt.Errorf("enum %q must be named by an identifier", e.Name())
			}
			base += " " + e.Name()
		}
	case *layout.FixedType:
		if x.Kind() == layout.KindDecimal {
			base = fmt.Sprintf("decimal %d %d", x.Size(), x.Precision())
		} else {
			base = fmt.Sprintf("fixed %d %d %d", x.Size(), x.Precision(), x.Base())
		}
	case *layout.UTF8Type:
		base = fmt.Sprintf("utf8 %d", x.Dim())
		if !x.NullTerminated() {
			base += " nonult"
		}
	case *layout.StructType:
		if !layout.IsIdentifier(x.Name()) {
			return "", fmt.Errorf("struct %q must be named by an identifier", x.Name())
		}
		base = x.Name()
	default:
		return "", fmt.Errorf("%s layouts cannot be written as member types", t.Kind())
	}

	if dims.Len() > 0 {
		return base + " " + dims.String(), nil
	}
	return base, nil
}

// dependencies returns the enums and structs used by the members of t, in the order
// they must be defined. t itself is not included.
func dependencies(t *layout.StructType) []def {
	var out []def
	seen := map[any]bool{}
	var walk func(t layout.Type)
	walk = func(t layout.Type) {
		switch x := t.(type) {
		case *layout.ArrayType:
			walk(x.Elem())
		case *layout.IntType:
			if e := x.Enum(); e != nil && !seen[e] {
				seen[e] = true
				out = append(out, def{name: e.Name(), enum: e})
			}
		case *layout.StructType:
			if seen[x] {
				return
			}
			seen[x] = true
			for _, m := range x.Members() {
				walk(m.Type)
			}
			out = append(out, def{name: x.Name(), st: x})
		}
	}
	for _, m := range t.Members() {
		walk(m.Type)
	}
	return out
}
