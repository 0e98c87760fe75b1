// Package expr defines the interface between bound fields and the compiler of
// computed field expressions, and provides a small reference compiler.
//
// A computed field evaluates an integer expression over the raw values of other fields
// of the same binding. The compiler never sees fields: it asks a Resolver for the
// position (Ref) of every name in the expression, and produces an Executable that reads
// those positions from the backing integer n.
package expr

import (
	"fmt"
	"math/big"

	"github.com/bearlytools/bffl/internal/bits"
)

// Ref is the position of a field inside the backing integer. Its value is
// (n >> Offset) & ((1 << Size) - 1).
type Ref struct {
	Offset int
	Size   int
}

// Source renders the Ref as an expression over n.
func (r Ref) Source() string {
	mask := "0x" + bits.Mask(r.Size).Text(16)
	if r.Offset == 0 {
		return fmt.Sprintf("(n & %s)", mask)
	}
	return fmt.Sprintf("((n >> %d) & %s)", r.Offset, mask)
}

// Eval reads the Ref from n.
func (r Ref) Eval(n *big.Int) *big.Int {
	return bits.GetValue(n, bits.Mask(r.Size), r.Offset)
}

// Resolver returns the Ref for a field name. Names may be dotted or indexed paths,
// such as "hdr.len" or "samples[2]".
type Resolver func(name string) (Ref, error)

// Executable is a compiled expression.
type Executable interface {
	// Source is low level source code for the expression over the backing integer n.
	Source() string
	// Eval evaluates the expression against the backing integer n.
	Eval(n *big.Int) (*big.Int, error)
}

// Compiler compiles expressions. wordSize > 0 requests that results wrap to wordSize bits.
type Compiler interface {
	Compile(expression string, resolve Resolver, wordSize int) (Executable, error)
}

// Default is the Compiler used when none is configured.
var Default Compiler = GoCompiler{}

// RefExecutable returns an Executable that reads r, wrapped to wordSize bits if wordSize > 0.
func RefExecutable(r Ref, wordSize int) Executable {
	return &program{root: refNode{r}, wordSize: wordSize}
}
