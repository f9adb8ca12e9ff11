// Package desugarcond rewrites a signature's conditional parameter
// constraints into plain, always-checked assertions (spec §2 "desugar
// conditionals"): each `Cond => Constraint` entry is folded into the
// ordinary ParamAsserts list via the algebra's own Implies constructor, so
// every later pass sees one uniform kind of signature assertion.
package desugarcond

import "github.com/sunholo/chronoc/internal/ir"

// Run desugars every component's ConditionalParamAsserts in place and
// clears the list, since nothing downstream consumes it once this pass has
// run.
func Run(ctx *ir.Context) {
	for _, idx := range ctx.Components.Indices() {
		ctx.MutComp(idx, func(c *ir.Component) {
			if len(c.ConditionalParamAsserts) == 0 {
				return
			}
			for _, cf := range c.ConditionalParamAsserts {
				prop := c.Algebra.Props.Implies(cf.Cond, cf.Prop)
				c.ParamAsserts = append(c.ParamAsserts, ir.Assert(prop, cf.Info, ir.ReasonParamConstraint))
			}
			c.ConditionalParamAsserts = nil
		})
	}
}
