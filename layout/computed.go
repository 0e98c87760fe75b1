package layout

import (
	"fmt"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/expr"
)

// ComputedType is a field with no storage whose value is derived by an expression
// over other fields of the same binding. Computed layouts are created by bound fields
// (see field.Field.ExprField()) once the positions of the operands are known.
type ComputedType struct {
	exec expr.Executable
}

// Computed creates a computed layout from a compiled expression.
func Computed(exec expr.Executable) (*ComputedType, error) {
	if exec == nil {
		return nil, errors.Layout("computed", "executable is nil")
	}
	return &ComputedType{exec: exec}, nil
}

func (t *ComputedType) isType() {}

// Kind implements Type.Kind().
func (t *ComputedType) Kind() Kind { return KindComputed }

// Size implements Type.Size(). Computed layouts occupy no bits.
func (t *ComputedType) Size() int { return 0 }

// Name implements Type.Name().
func (t *ComputedType) Name() string { return "" }

// Executable is the compiled expression.
func (t *ComputedType) Executable() expr.Executable { return t.exec }

// String implements Type.String().
func (t *ComputedType) String() string {
	return fmt.Sprintf("expr(%s)", t.exec.Source())
}
