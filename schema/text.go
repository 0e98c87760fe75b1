package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gostdlib/base/context"
	"github.com/johnsiilver/halfpike"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/layout"
)

// ParseText parses schema text, as described in the package documentation.
func ParseText(ctx context.Context, text string, opts ...Option) (*Schema, error) {
	s := New(opts...)
	if err := s.parseText(ctx, text); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) parseText(ctx context.Context, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	tp := &textParser{s: s}
	if err := halfpike.Parse(ctx, text, tp); err != nil {
		return errors.Wrap(errors.KindLayout, "schema", err, "cannot parse schema text")
	}
	return nil
}

// textParser implements halfpike.Validator for schema text.
type textParser struct {
	s   *Schema
	err error
}

// Validate implements halfpike.Validator.
func (t *textParser) Validate() error {
	return t.err
}

// Start is the start point for reading schema text.
func (t *textParser) Start(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	return t.findNext
}

// words returns the items of line that are not blank, up to a comment.
func words(line halfpike.Line) []string {
	var out []string
	for _, item := range line.Items {
		if strings.HasPrefix(item.Val, "//") {
			break
		}
		if strings.TrimSpace(item.Val) == "" {
			continue
		}
		out = append(out, item.Val)
	}
	return out
}

// next returns the next line that is not blank or a comment. It returns false at the
// end of the input.
func (t *textParser) next(p *halfpike.Parser) (halfpike.Line, []string, bool) {
	for {
		line := p.Next()
		if w := words(line); len(w) > 0 {
			return line, w, true
		}
		if p.EOF(line) {
			return line, nil, false
		}
	}
}

func (t *textParser) findNext(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	line, w, ok := t.next(p)
	if !ok {
		return nil
	}

	switch w[0] {
	case "enum":
		t.err = t.parseEnum(p, line, w)
	case "struct":
		t.err = t.parseStruct(p, line, w)
	default:
		if kw := strings.ToLower(w[0]); kw == "enum" || kw == "struct" {
			t.err = fmt.Errorf("[Line %d] error: %w", line.LineNum, caseSensitiveCheck(kw, w[0]))
			return nil
		}
		t.err = fmt.Errorf("[Line %d] error: want 'enum NAME {' or 'struct NAME {', got %q", line.LineNum, strings.Join(w, " "))
	}
	if t.err != nil {
		return nil
	}
	return t.findNext
}

// header checks a line of the form: KEYWORD NAME {
func header(line halfpike.Line, w []string) (string, error) {
	if len(w) != 3 || w[2] != "{" {
		return "", fmt.Errorf("[Line %d] error: want '%s NAME {', got %q", line.LineNum, w[0], strings.Join(w, " "))
	}
	return w[1], nil
}

// parseEnum parses an enum block. An entry without a code is one more than the entry
// before it, or 0 for the first entry.
func (t *textParser) parseEnum(p *halfpike.Parser, line halfpike.Line, w []string) error {
	name, err := header(line, w)
	if err != nil {
		return err
	}

	var (
		entries []layout.EnumEntry
		code    int64
	)
	for {
		line, w, ok := t.next(p)
		if !ok {
			return fmt.Errorf("[Line %d] error: enum %q: EOF reached before closing '}'", line.LineNum, name)
		}
		if w[0] == "}" {
			if len(w) > 1 {
				return fmt.Errorf("[Line %d] error: got %q after '}', which was unexpected", line.LineNum, strings.Join(w[1:], " "))
			}
			break
		}
		if len(w) > 2 {
			return fmt.Errorf("[Line %d] error: want 'LABEL [CODE]', got %q", line.LineNum, strings.Join(w, " "))
		}
		if !layout.IsIdentifier(w[0]) {
			return fmt.Errorf("[Line %d] error: enum label %q is not an identifier", line.LineNum, w[0])
		}
		if len(w) == 2 {
			code, err = strconv.ParseInt(w[1], 0, 64)
			if err != nil {
				return fmt.Errorf("[Line %d] error: enum label %s: want an integer code, got %q", line.LineNum, w[0], w[1])
			}
		}
		entries = append(entries, layout.EnumEntry{Label: w[0], Code: code})
		code++
	}

	e, err := layout.NewEnum(name, entries...)
	if err != nil {
		return fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	if err := t.s.AddEnum(e); err != nil {
		return fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	return nil
}

// parseStruct parses a struct block with one member per line: NAME TYPE...
func (t *textParser) parseStruct(p *halfpike.Parser, line halfpike.Line, w []string) error {
	name, err := header(line, w)
	if err != nil {
		return err
	}

	var members []layout.Member
	for {
		line, w, ok := t.next(p)
		if !ok {
			return fmt.Errorf("[Line %d] error: struct %q: EOF reached before closing '}'", line.LineNum, name)
		}
		if w[0] == "}" {
			if len(w) > 1 {
				return fmt.Errorf("[Line %d] error: got %q after '}', which was unexpected", line.LineNum, strings.Join(w[1:], " "))
			}
			break
		}
		if len(w) < 2 {
			return fmt.Errorf("[Line %d] error: want 'NAME TYPE', got %q", line.LineNum, w[0])
		}
		mt, err := t.s.typeOf(w[1:])
		if err != nil {
			return fmt.Errorf("[Line %d] error: member %s.%s: %w", line.LineNum, name, w[0], err)
		}
		members = append(members, layout.M(w[0], mt))
	}

	st, err := layout.Struct(name, members...)
	if err != nil {
		return fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	if err := t.s.AddStruct(st); err != nil {
		return fmt.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	return nil
}

func caseSensitiveCheck(want string, item string) error {
	if item != want {
		if strings.EqualFold(item, want) {
			return fmt.Errorf("%q keyword found, but it is required to be %q", item, want)
		}
		return fmt.Errorf("got: %q, want: %q", item, want)
	}
	return nil
}
