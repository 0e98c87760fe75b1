package expr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math/big"

	"github.com/bearlytools/bffl/errors"
	"github.com/bearlytools/bffl/internal/bits"
)

// maxShift bounds shift counts so a bad expression cannot allocate without limit.
const maxShift = 1 << 16

// GoCompiler compiles integer expressions written in Go syntax:
//
//	literals:   10, 0x1f, 0b101, 0o17
//	operands:   x, hdr.len, samples[2]
//	unary:      - + ^ (bitwise not) ! (1 if zero else 0)
//	binary:     * / % << >> & &^ + - | ^
//	comparison: == != < <= > >= && || (yield 1 or 0)
//
// Division and remainder truncate toward zero, as in Go.
type GoCompiler struct{}

// Compile implements Compiler.Compile().
func (GoCompiler) Compile(expression string, resolve Resolver, wordSize int) (Executable, error) {
	if wordSize < 0 {
		return nil, errors.E(errors.KindExpr, "", "word size must be >= 0, got %d", wordSize)
	}
	tree, err := parser.ParseExpr(expression)
	if err != nil {
		return nil, errors.Wrap(errors.KindExpr, "", err, "cannot parse %q", expression)
	}
	root, err := build(tree, resolve)
	if err != nil {
		return nil, err
	}
	return &program{root: root, wordSize: wordSize}, nil
}

func build(e ast.Expr, resolve Resolver) (node, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return build(x.X, resolve)
	case *ast.BasicLit:
		if x.Kind != token.INT {
			return nil, errors.E(errors.KindExpr, "", "only integer literals are supported, got %s", x.Value)
		}
		n, ok := new(big.Int).SetString(x.Value, 0)
		if !ok {
			return nil, errors.E(errors.KindExpr, "", "bad integer literal %s", x.Value)
		}
		return constNode{n}, nil
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr:
		name, ok := pathOf(e)
		if !ok {
			return nil, errors.E(errors.KindExpr, "", "unsupported operand %T", e)
		}
		if resolve == nil {
			return nil, errors.E(errors.KindExpr, "", "no resolver for name %q", name)
		}
		r, err := resolve(name)
		if err != nil {
			return nil, err
		}
		return refNode{r}, nil
	case *ast.UnaryExpr:
		switch x.Op {
		case token.SUB, token.ADD, token.XOR, token.NOT:
		default:
			return nil, errors.E(errors.KindExpr, "", "unsupported unary operator %s", x.Op)
		}
		operand, err := build(x.X, resolve)
		if err != nil {
			return nil, err
		}
		return unaryNode{op: x.Op, x: operand}, nil
	case *ast.BinaryExpr:
		if _, ok := binaryOps[x.Op]; !ok {
			return nil, errors.E(errors.KindExpr, "", "unsupported binary operator %s", x.Op)
		}
		l, err := build(x.X, resolve)
		if err != nil {
			return nil, err
		}
		r, err := build(x.Y, resolve)
		if err != nil {
			return nil, err
		}
		return binaryNode{op: x.Op, x: l, y: r}, nil
	}
	return nil, errors.E(errors.KindExpr, "", "unsupported expression %T", e)
}

// pathOf converts identifiers, selectors and constant index expressions to a path
// such as "a.b[2].c".
func pathOf(e ast.Expr) (string, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name, true
	case *ast.SelectorExpr:
		p, ok := pathOf(x.X)
		if !ok {
			return "", false
		}
		return p + "." + x.Sel.Name, true
	case *ast.IndexExpr:
		p, ok := pathOf(x.X)
		if !ok {
			return "", false
		}
		lit, ok := x.Index.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return "", false
		}
		return fmt.Sprintf("%s[%s]", p, lit.Value), true
	}
	return "", false
}

type node interface {
	eval(n *big.Int) (*big.Int, error)
	source() string
}

type program struct {
	root     node
	wordSize int
}

// Source implements Executable.Source().
func (p *program) Source() string {
	if p.wordSize > 0 {
		return fmt.Sprintf("(%s & 0x%s)", p.root.source(), bits.Mask(p.wordSize).Text(16))
	}
	return p.root.source()
}

// Eval implements Executable.Eval().
func (p *program) Eval(n *big.Int) (*big.Int, error) {
	v, err := p.root.eval(n)
	if err != nil {
		return nil, err
	}
	if p.wordSize > 0 {
		v.And(v, bits.Mask(p.wordSize))
	}
	return v, nil
}

type constNode struct {
	v *big.Int
}

func (c constNode) eval(*big.Int) (*big.Int, error) { return new(big.Int).Set(c.v), nil }
func (c constNode) source() string                  { return c.v.String() }

type refNode struct {
	r Ref
}

func (r refNode) eval(n *big.Int) (*big.Int, error) { return r.r.Eval(n), nil }
func (r refNode) source() string                    { return r.r.Source() }

type unaryNode struct {
	op token.Token
	x  node
}

func (u unaryNode) eval(n *big.Int) (*big.Int, error) {
	v, err := u.x.eval(n)
	if err != nil {
		return nil, err
	}
	switch u.op {
	case token.SUB:
		return v.Neg(v), nil
	case token.XOR:
		return v.Not(v), nil
	case token.NOT:
		return truth(v.Sign() == 0), nil
	}
	return v, nil
}

func (u unaryNode) source() string {
	return fmt.Sprintf("(%s%s)", u.op, u.x.source())
}

type binaryNode struct {
	op   token.Token
	x, y node
}

var binaryOps = map[token.Token]func(x, y *big.Int) (*big.Int, error){
	token.ADD:     func(x, y *big.Int) (*big.Int, error) { return x.Add(x, y), nil },
	token.SUB:     func(x, y *big.Int) (*big.Int, error) { return x.Sub(x, y), nil },
	token.MUL:     func(x, y *big.Int) (*big.Int, error) { return x.Mul(x, y), nil },
	token.QUO:     divide(func(x, y *big.Int) *big.Int { return x.Quo(x, y) }),
	token.REM:     divide(func(x, y *big.Int) *big.Int { return x.Rem(x, y) }),
	token.AND:     func(x, y *big.Int) (*big.Int, error) { return x.And(x, y), nil },
	token.OR:      func(x, y *big.Int) (*big.Int, error) { return x.Or(x, y), nil },
	token.XOR:     func(x, y *big.Int) (*big.Int, error) { return x.Xor(x, y), nil },
	token.AND_NOT: func(x, y *big.Int) (*big.Int, error) { return x.AndNot(x, y), nil },
	token.SHL:     shift(func(x *big.Int, s uint) *big.Int { return x.Lsh(x, s) }),
	token.SHR:     shift(func(x *big.Int, s uint) *big.Int { return x.Rsh(x, s) }),
	token.EQL:     compare(func(c int) bool { return c == 0 }),
	token.NEQ:     compare(func(c int) bool { return c != 0 }),
	token.LSS:     compare(func(c int) bool { return c < 0 }),
	token.LEQ:     compare(func(c int) bool { return c <= 0 }),
	token.GTR:     compare(func(c int) bool { return c > 0 }),
	token.GEQ:     compare(func(c int) bool { return c >= 0 }),
	token.LAND:    func(x, y *big.Int) (*big.Int, error) { return truth(x.Sign() != 0 && y.Sign() != 0), nil },
	token.LOR:     func(x, y *big.Int) (*big.Int, error) { return truth(x.Sign() != 0 || y.Sign() != 0), nil },
}

func divide(f func(x, y *big.Int) *big.Int) func(x, y *big.Int) (*big.Int, error) {
	return func(x, y *big.Int) (*big.Int, error) {
		if y.Sign() == 0 {
			return nil, errors.E(errors.KindExpr, "", "division by zero")
		}
		return f(x, y), nil
	}
}

func shift(f func(x *big.Int, s uint) *big.Int) func(x, y *big.Int) (*big.Int, error) {
	return func(x, y *big.Int) (*big.Int, error) {
		if y.Sign() < 0 || !y.IsInt64() || y.Int64() > maxShift {
			return nil, errors.E(errors.KindExpr, "", "shift count %s out of range [0, %d]", y, maxShift)
		}
		return f(x, uint(y.Int64())), nil
	}
}

func compare(f func(c int) bool) func(x, y *big.Int) (*big.Int, error) {
	return func(x, y *big.Int) (*big.Int, error) {
		return truth(f(x.Cmp(y))), nil
	}
}

func truth(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return new(big.Int)
}

func (b binaryNode) eval(n *big.Int) (*big.Int, error) {
	x, err := b.x.eval(n)
	if err != nil {
		return nil, err
	}
	y, err := b.y.eval(n)
	if err != nil {
		return nil, err
	}
	return binaryOps[b.op](x, y)
}

func (b binaryNode) source() string {
	return fmt.Sprintf("(%s %s %s)", b.x.source(), b.op, b.y.source())
}
