// Package inferassume recognises catalogue function equalities already
// present in a component's algebra and synthesizes the canonical algebraic
// assumptions the interval checker may lean on for pow2/log2/bitrev terms
// (spec §4.D). It runs once per component, after lowering has interned
// every expression the surface program mentions and before the interval
// checker needs the facts.
package inferassume

import (
	"github.com/sunholo/chronoc/internal/catalogue"
	"github.com/sunholo/chronoc/internal/ir"
)

// Run scans every component's interned propositions for an `L = fn(R)`
// equality and appends fn's canonical assumptions to ExistentialAssumes,
// deduplicated by proposition identity — interning already guarantees
// structurally-equal terms share a handle, so a seen-set keyed on PropIdx
// is sufficient.
func Run(ctx *ir.Context) {
	for _, idx := range ctx.Components.Indices() {
		ctx.MutComp(idx, func(c *ir.Component) {
			seen := make(map[ir.PropIdx]bool, len(c.ExistentialAssumes))
			for _, already := range c.ExistentialAssumes {
				seen[already.Prop] = true
			}

			candidates := c.Algebra.Props.Indices()
			for _, pIdx := range candidates {
				fn, l, r, ok := matchCatalogueEquality(c.Algebra, pIdx)
				if !ok {
					continue
				}
				info := c.AddInfo(ir.Info{Kind: ir.InfoAssume, Note: "catalogue function assumption"})
				for _, assumed := range catalogue.CanonicalAssumptions(c.Algebra, fn, l, r) {
					if seen[assumed] {
						continue
					}
					seen[assumed] = true
					c.ExistentialAssumes = append(c.ExistentialAssumes, ir.Assume(assumed, info))
				}
			}
		})
	}
}

// matchCatalogueEquality recognises `L = fn(R)` or `fn(R) = L` and returns
// fn's operand pair as (L, R) in the order catalogue.CanonicalAssumptions
// expects.
func matchCatalogueEquality(alg *ir.Algebra, pIdx ir.PropIdx) (fn ir.FnOp, l, r ir.ExprIdx, ok bool) {
	p := alg.Props.Get(pIdx)
	if p.Kind != ir.PropCmpKind || p.CmpOp != ir.Eq {
		return 0, ir.ExprIdx{}, ir.ExprIdx{}, false
	}
	lhs, rhs := alg.Exprs.Get(p.CmpLhs), alg.Exprs.Get(p.CmpRhs)
	switch {
	case rhs.Kind == ir.ExprFnKind && rhs.ArgCount >= 1:
		return rhs.FnOp, p.CmpLhs, rhs.Arg0, true
	case lhs.Kind == ir.ExprFnKind && lhs.ArgCount >= 1:
		return lhs.FnOp, p.CmpRhs, lhs.Arg0, true
	default:
		return 0, ir.ExprIdx{}, ir.ExprIdx{}, false
	}
}
