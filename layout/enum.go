package layout

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/bearlytools/bffl/errors"
)

// EnumEntry is a single label of an Enum.
type EnumEntry struct {
	// Label is the name of the value.
	Label string
	// Code is the integer stored in the field.
	Code int64
}

// Enum is a bijective mapping of labels to integer codes that can be attached to a
// Uint or Sint layout. An Enum is immutable.
type Enum struct {
	name    string
	entries []EnumEntry
	byLabel map[string]int64
	byCode  map[int64]string
}

// NewEnum creates an Enum from entries, in the order given. Labels and codes must be unique.
func NewEnum(name string, entries ...EnumEntry) (*Enum, error) {
	e := &Enum{
		name:    name,
		entries: make([]EnumEntry, 0, len(entries)),
		byLabel: make(map[string]int64, len(entries)),
		byCode:  make(map[int64]string, len(entries)),
	}
	for _, entry := range entries {
		if entry.Label == "" {
			return nil, errors.Layout(name, "enum label cannot be empty")
		}
		if _, ok := e.byLabel[entry.Label]; ok {
			return nil, errors.Layout(name, "duplicate enum label %q", entry.Label)
		}
		if other, ok := e.byCode[entry.Code]; ok {
			return nil, errors.Layout(name, "enum labels %q and %q share code %d", other, entry.Label, entry.Code)
		}
		e.byLabel[entry.Label] = entry.Code
		e.byCode[entry.Code] = entry.Label
		e.entries = append(e.entries, entry)
	}
	return e, nil
}

// Enumerate creates an Enum where labels[i] has code i.
func Enumerate(name string, labels ...string) (*Enum, error) {
	entries := make([]EnumEntry, 0, len(labels))
	for i, l := range labels {
		entries = append(entries, EnumEntry{Label: l, Code: int64(i)})
	}
	return NewEnum(name, entries...)
}

// EnumFromMap creates an Enum from a label to code map. Entries are ordered by code.
func EnumFromMap(name string, m map[string]int64) (*Enum, error) {
	entries := make([]EnumEntry, 0, len(m))
	for l, c := range m {
		entries = append(entries, EnumEntry{Label: l, Code: c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return NewEnum(name, entries...)
}

// Name is the name of the Enum, which may be "".
func (e *Enum) Name() string {
	return e.name
}

// Len reports the number of labels.
func (e *Enum) Len() int {
	return len(e.entries)
}

// Entries returns the entries in declared order.
func (e *Enum) Entries() []EnumEntry {
	out := make([]EnumEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Code returns the code for label.
func (e *Enum) Code(label string) (int64, bool) {
	c, ok := e.byLabel[label]
	return c, ok
}

// Label returns the label for code.
func (e *Enum) Label(code int64) (string, bool) {
	l, ok := e.byCode[code]
	return l, ok
}

// LabelOf returns the label for code n, if n fits in an int64 and is defined.
func (e *Enum) LabelOf(n *big.Int) (string, bool) {
	if !n.IsInt64() {
		return "", false
	}
	return e.Label(n.Int64())
}

// String renders the enum as {RED:0, GREEN:1}.
func (e *Enum) String() string {
	parts := make([]string, 0, len(e.entries))
	for _, entry := range e.entries {
		parts = append(parts, fmt.Sprintf("%s:%d", entry.Label, entry.Code))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// fits returns an error if any code cannot be stored in size bits.
func (e *Enum) fits(owner string, size int, signed bool) error {
	var lo, hi *big.Int
	if signed {
		hi = new(big.Int).Lsh(big.NewInt(1), uint(size-1))
		lo = new(big.Int).Neg(hi)
	} else {
		lo = new(big.Int)
		hi = new(big.Int).Lsh(big.NewInt(1), uint(size))
	}
	for _, entry := range e.entries {
		c := big.NewInt(entry.Code)
		if c.Cmp(lo) < 0 || c.Cmp(hi) >= 0 {
			return errors.Layout(owner, "enum %s code %d does not fit in %d bits", entry.Label, entry.Code, size)
		}
	}
	return nil
}
