// Package propsimplify re-derives every fact's proposition through the
// algebra's own smart constructors one more time before scheduling. Every
// node already gets folded at construction time (spec §4.A), but a
// proposition built up through nested substitutions (foreign transfer,
// monomorphization) can still end up with an un-folded shape if an
// intermediate step interned a raw Prop value directly; renormalizing
// bottom-up folds the And/Or/Implies/Not layer and any Cmp over concrete
// expressions. Time comparisons (TimeCmp, TimeSubCmp) are re-interned
// without folding, so a liveness mismatch between two times is not reduced
// to a literal `false` here.
package propsimplify

import "github.com/sunholo/chronoc/internal/ir"

// Run renormalizes every checked/assumed fact's proposition in every
// component, in place.
func Run(ctx *ir.Context) {
	for _, idx := range ctx.Components.Indices() {
		ctx.MutComp(idx, func(c *ir.Component) {
			for i, f := range c.ParamAsserts {
				c.ParamAsserts[i].Prop = Renormalize(c.Algebra, f.Prop)
			}
			for i, f := range c.EventAsserts {
				c.EventAsserts[i].Prop = Renormalize(c.Algebra, f.Prop)
			}
			for i, f := range c.ExistentialAssumes {
				c.ExistentialAssumes[i].Prop = Renormalize(c.Algebra, f.Prop)
			}
			c.Body = simplifyCommands(c.Algebra, c.Body)
		})
	}
}

func simplifyCommands(alg *ir.Algebra, cmds []ir.Command) []ir.Command {
	for i := range cmds {
		switch cmds[i].Kind {
		case ir.CmdFact:
			cmds[i].TheFact.Prop = Renormalize(alg, cmds[i].TheFact.Prop)
		case ir.CmdForLoop:
			cmds[i].Body = simplifyCommands(alg, cmds[i].Body)
		case ir.CmdIf:
			cmds[i].IfCond = Renormalize(alg, cmds[i].IfCond)
			cmds[i].Then = simplifyCommands(alg, cmds[i].Then)
			cmds[i].Alt = simplifyCommands(alg, cmds[i].Alt)
		}
	}
	return cmds
}

// Renormalize rebuilds p bottom-up through alg's smart constructors,
// re-interning every node. Expr operands are left as-is: Bin/Fn/If already
// fold maximally on their own construction path (spec §4.A), so only the
// proposition layer (And/Or/Implies/Not/Cmp short-circuiting) benefits from
// a second pass.
func Renormalize(alg *ir.Algebra, p ir.PropIdx) ir.PropIdx {
	v := alg.Props.Get(p)
	switch v.Kind {
	case ir.PropTrueKind:
		return alg.Props.True()
	case ir.PropFalseKind:
		return alg.Props.False()
	case ir.PropCmpKind:
		return alg.Props.Cmp(v.CmpOp, v.CmpLhs, v.CmpRhs)
	case ir.PropTimeCmpKind:
		return alg.Props.TimeCmp(v.CmpOp, v.TimeLhs, v.TimeRhs)
	case ir.PropTimeSubCmpKind:
		return alg.Props.TimeSubCmp(v.CmpOp, v.TSubLhs, v.TSubRhs)
	case ir.PropNotKind:
		return alg.Props.Not(Renormalize(alg, v.Operand))
	case ir.PropAndKind:
		return alg.Props.And(Renormalize(alg, v.Lhs), Renormalize(alg, v.Rhs))
	case ir.PropOrKind:
		return alg.Props.Or(Renormalize(alg, v.Lhs), Renormalize(alg, v.Rhs))
	case ir.PropImpliesKind:
		return alg.Props.Implies(Renormalize(alg, v.Lhs), Renormalize(alg, v.Rhs))
	default:
		return p
	}
}
