package lower

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/ir"
)

// lowerExpr translates a surface expression into comp's algebra, resolving
// EParam against comp's "param" source-name scope. An unresolved name is a
// user error (spec §7); lowering substitutes Concrete(0) so
// the caller can keep going and collect further errors.
func (l *lowerer) lowerExpr(c *ir.Component, e ast.Expr) ir.ExprIdx {
	switch v := e.(type) {
	case ast.EConcrete:
		return c.Algebra.Exprs.Concrete(v.Value)
	case ast.EParam:
		if raw, ok := c.LookupSourceName("param", v.Name); ok {
			return c.Algebra.Exprs.Param(ir.IndexFromRaw[ir.Param](raw))
		}
		l.diags.Error(phase, c.Name, fmt.Sprintf("undefined parameter %q", v.Name), ir.ReasonMisc, nil, nil)
		return c.Algebra.Exprs.Concrete(0)
	case ast.EBin:
		return c.Algebra.Exprs.Bin(lowerOp(v.Op), l.lowerExpr(c, v.Lhs), l.lowerExpr(c, v.Rhs))
	case ast.EFn:
		op := lowerFn(v.Op)
		args := make([]ir.ExprIdx, len(v.Args))
		for i, a := range v.Args {
			args[i] = l.lowerExpr(c, a)
		}
		if len(args) != op.Arity() {
			l.diags.Error(phase, c.Name, fmt.Sprintf("%s expects %d argument(s), got %d", op, op.Arity(), len(args)), ir.ReasonMisc, nil, nil)
			for len(args) < op.Arity() {
				args = append(args, c.Algebra.Exprs.Concrete(0))
			}
			args = args[:op.Arity()]
		}
		return c.Algebra.Exprs.Fn(op, args...)
	case ast.EIf:
		cond := l.lowerProp(c, v.Cond)
		return c.Algebra.Exprs.If(cond, l.lowerExpr(c, v.Then), l.lowerExpr(c, v.Else))
	default:
		l.diags.Error(phase, c.Name, "unrecognised expression node", ir.ReasonMisc, nil, nil)
		return c.Algebra.Exprs.Concrete(0)
	}
}

func (l *lowerer) lowerProp(c *ir.Component, p ast.Prop) ir.PropIdx {
	switch v := p.(type) {
	case ast.PTrue:
		return c.Algebra.Props.True()
	case ast.PFalse:
		return c.Algebra.Props.False()
	case ast.PCmp:
		return c.Algebra.Props.Cmp(lowerCmp(v.Op), l.lowerExpr(c, v.Lhs), l.lowerExpr(c, v.Rhs))
	case ast.PNot:
		return c.Algebra.Props.Not(l.lowerProp(c, v.Operand))
	case ast.PAnd:
		return c.Algebra.Props.And(l.lowerProp(c, v.Lhs), l.lowerProp(c, v.Rhs))
	case ast.POr:
		return c.Algebra.Props.Or(l.lowerProp(c, v.Lhs), l.lowerProp(c, v.Rhs))
	case ast.PImplies:
		return c.Algebra.Props.Implies(l.lowerProp(c, v.Lhs), l.lowerProp(c, v.Rhs))
	default:
		l.diags.Error(phase, c.Name, "unrecognised proposition node", ir.ReasonMisc, nil, nil)
		return c.Algebra.Props.True()
	}
}

// lowerTime resolves a surface time point against comp's "event" scope.
func (l *lowerer) lowerTime(c *ir.Component, t ast.Time) ir.TimeIdx {
	ev, ok := c.LookupSourceName("event", t.Event)
	if !ok {
		l.diags.Error(phase, c.Name, fmt.Sprintf("undefined event %q", t.Event), ir.ReasonMisc, nil, nil)
		ev = 0
	}
	offset := l.lowerExpr(c, t.Offset)
	return c.Algebra.Times.Time(ir.IndexFromRaw[ir.Event](ev), offset)
}

func (l *lowerer) lowerRange(c *ir.Component, r ast.Range) ir.Range {
	return ir.Range{Start: l.lowerTime(c, r.Start), End: l.lowerTime(c, r.End)}
}

func lowerOp(op ast.Op) ir.BinOp {
	switch op {
	case ast.OpAdd:
		return ir.Add
	case ast.OpSub:
		return ir.Sub
	case ast.OpMul:
		return ir.Mul
	case ast.OpDiv:
		return ir.Div
	default:
		return ir.Mod
	}
}

func lowerFn(fn ast.Fn) ir.FnOp {
	switch fn {
	case ast.FnPow2:
		return ir.Pow2
	case ast.FnLog2:
		return ir.Log2
	default:
		return ir.BitRev
	}
}

func lowerCmp(op ast.CmpOp) ir.CmpOp {
	switch op {
	case ast.CmpGt:
		return ir.Gt
	case ast.CmpGte:
		return ir.Gte
	default:
		return ir.Eq
	}
}
