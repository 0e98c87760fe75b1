package field

import (
	"bytes"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/internal/binary"
	"github.com/bearlytools/bffl/internal/bits"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/grafana/regexp"
)

// The bin and hex setters accept the usual prefixes and suffixes of C, Python and
// assembler literals: 0x1fUL, 1fh, 0b101, 101LL.
var (
	binRE = regexp.MustCompile(`^\s*(?:0b|0B)?([01]+)(?:[Uu]?[Ll]{1,2})?\s*$`)
	hexRE = regexp.MustCompile(`^\s*(?:0x|0X)?([0-9a-fA-F]+)(?:[Uu]?[Ll]{1,2}|[Hh])?\s*$`)
)

// Bin returns Raw() as a binary string of exactly Size() digits with no prefix.
func (f *Field) Bin() string {
	return bits.Binary(f.Raw(), f.Size())
}

// SetBin parses a binary string and stores it with SetRaw(). Excess bits are dropped.
func (f *Field) SetBin(s string) error {
	m := binRE.FindStringSubmatch(s)
	if m == nil {
		return errors.Value(f.name, s, "expected binary string, got %q", s)
	}
	n, _ := new(big.Int).SetString(m[1], 2)
	f.SetRaw(n)
	return nil
}

// Hex returns Raw() as a hex string of (Size()+3)/4 digits with no prefix.
func (f *Field) Hex() string {
	return bits.Hex(f.Raw(), f.Size())
}

// SetHex parses a hex string and stores it with SetRaw(). Excess bits are dropped.
func (f *Field) SetHex(s string) error {
	m := hexRE.FindStringSubmatch(s)
	if m == nil {
		return errors.Value(f.name, s, "expected hex string, got %q", s)
	}
	n, _ := new(big.Int).SetString(m[1], 16)
	f.SetRaw(n)
	return nil
}

// Bytes returns Raw() as (Size()+7)/8 bytes, most significant byte first.
func (f *Field) Bytes() []byte {
	return binary.BigEndian(f.Raw(), f.Size())
}

// SetBytes stores b, most significant byte first, with SetRaw(). Excess bits are dropped.
func (f *Field) SetBytes(b []byte) {
	f.SetRaw(binary.FromBigEndian(b))
}

// LittleEndian returns Raw() as (Size()+7)/8 bytes, least significant byte first.
func (f *Field) LittleEndian() []byte {
	return binary.LittleEndian(f.Raw(), f.Size())
}

// SetLittleEndian stores b, least significant byte first, with SetRaw(). Excess bits
// are dropped.
func (f *Field) SetLittleEndian(b []byte) {
	f.SetRaw(binary.FromLittleEndian(b))
}

// JSON returns Value() encoded as JSON. Struct members keep their declared order.
func (f *Field) JSON() (string, error) {
	return f.encode()
}

// Pretty returns Value() as indented JSON.
func (f *Field) Pretty() string {
	s, err := f.encode(jsontext.WithIndent("  "))
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func (f *Field) encode(opts ...jsontext.Options) (string, error) {
	v, err := f.Eval()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := writeJSON(enc, v); err != nil {
		return "", f.pathed(err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func writeJSON(enc *jsontext.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)
	case bool:
		return enc.WriteToken(jsontext.Bool(x))
	case string:
		return enc.WriteToken(jsontext.String(x))
	case int64:
		return enc.WriteToken(jsontext.Int(x))
	case uint64:
		return enc.WriteToken(jsontext.Uint(x))
	case float64:
		return enc.WriteToken(jsontext.Float(x))
	case *big.Int:
		return enc.WriteValue(jsontext.Value(x.String()))
	case Record:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range x {
			if err := enc.WriteToken(jsontext.String(m.Name)); err != nil {
				return err
			}
			if err := writeJSON(enc, m.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case []any:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, e := range x {
			if err := writeJSON(enc, e); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	}
	return errors.Bug("", "cannot encode %T as JSON", v)
}

// SetJSON decodes s and stores it with SetValue(). Objects decode to Record, arrays to
// []any, integers to *big.Int and other numbers to float64.
func (f *Field) SetJSON(s string) error {
	dec := jsontext.NewDecoder(strings.NewReader(s))
	v, err := readJSON(dec)
	if err != nil {
		return errors.Wrap(errors.KindValue, f.name, err, "expected JSON, got %q", s)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		return errors.Value(f.name, s, "expected a single JSON value, got %q", s)
	}
	return f.SetValue(v)
}

func readJSON(dec *jsontext.Decoder) (any, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '0':
		return number(tok.String())
	case '{':
		var r Record
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// name is invalid after the next read.
			key := name.String()
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			r = append(r, Member{Name: key, Value: v})
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return r, nil
	case '[':
		out := []any{}
		for dec.PeekKind() != ']' {
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, errors.Value("", tok.String(), "unexpected JSON token %s", tok)
}

func number(s string) (any, error) {
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, nil
	}
	return strconv.ParseFloat(s, 64)
}
