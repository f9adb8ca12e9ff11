// Package assume synthesizes the assumptions and call-site assertions the
// interval checker relies on (spec §4.D "Assumption synthesis"): bundle
// index bounds, for-loop bounds, and the translation of a callee's
// signature-level constraints into assertions at every instance/invoke
// site. It runs as a single in-place pass over every component's body,
// built on the mutating visitor framework (spec §4.C) so each obligation is
// inserted immediately before the command that introduces it.
package assume

import (
	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/visitor"
)

// Run walks every component, inserting the assumptions/assertions
// described in the package doc.
func Run(ctx *ir.Context) {
	p := &pass{ctx: ctx}
	for _, idx := range ctx.Components.Indices() {
		visitor.Walk(p, ctx, idx)
	}
}

type pass struct {
	visitor.Base
	ctx *ir.Context
}

func (p *pass) ClearData() {}

// BundleDef assumes every bundle index parameter stays within its
// dimension's length, `0 <= idx < len` expressed via the algebra's
// restricted comparison set as `len > idx` (spec §3 restricts Cmp to
// {>, >=, =}; lower bound is implicit since idx params range over uint64).
func (p *pass) BundleDef(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	port := c.Ports.Get(cmd.BundlePort)

	var facts []ir.Command
	for i, idxParam := range port.Live.Idxs {
		if i >= len(port.Live.Lens) {
			break
		}
		lenExpr := port.Live.Lens[i]
		idxExpr := c.Algebra.Exprs.Param(idxParam)
		prop := c.Algebra.Props.Cmp(ir.Gt, lenExpr, idxExpr)
		info := c.AddInfo(ir.Info{Kind: ir.InfoAssume, Note: "bundle index in range"})
		facts = append(facts, ir.FactCmd(ir.Assume(prop, info), info))
	}
	p.ctx.Components.Set(data.Comp, c)

	if len(facts) == 0 {
		return visitor.ContinueAction()
	}
	return visitor.AddBeforeAction(facts...)
}

// StartLoop assumes the loop variable stays within `[start, end)`. It is
// inserted as the loop body's own first command (rather than before the
// loop) since StartLoop is an observation hook, not a rewrite point (spec
// §4.C) — cmd.Body is mutated directly through the pointer descend() holds,
// so the walk that follows sees the synthesized fact along with the
// original body.
func (p *pass) StartLoop(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	idxExpr := c.Algebra.Exprs.Param(cmd.LoopParam)
	lower := c.Algebra.Props.Cmp(ir.Gte, idxExpr, cmd.LoopStart)
	upper := c.Algebra.Props.Cmp(ir.Gt, cmd.LoopEnd, idxExpr)
	prop := c.Algebra.Props.And(lower, upper)
	info := c.AddInfo(ir.Info{Kind: ir.InfoAssume, Note: "loop variable in range"})
	p.ctx.Components.Set(data.Comp, c)

	cmd.Body = append([]ir.Command{ir.FactCmd(ir.Assume(prop, info), info)}, cmd.Body...)
	return visitor.ContinueAction()
}

// Instance re-checks the target component's own signature param
// constraints against the arguments actually supplied, via a Bindings table
// built from the instance's Args (spec §4.D: "a callee's precondition
// becomes the caller's obligation at the call site").
func (p *pass) Instance(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	inst := c.Instances.Get(cmd.Inst)
	if !p.ctx.Components.Valid(inst.Comp) {
		return visitor.ContinueAction()
	}
	target := p.ctx.Comp(inst.Comp)

	bind := ir.NewBindings()
	for i, sigParam := range target.ParamArgs {
		if i < len(inst.Args) {
			bind.Params[ir.NewForeign(sigParam, inst.Comp)] = inst.Args[i]
		}
	}

	var facts []ir.Command
	for _, fact := range target.ParamAsserts {
		prop := ir.TransferProp(c.Algebra, target.Algebra, fact.Prop, inst.Comp, bind)
		info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "param constraint of " + target.Name + " at instantiation"})
		facts = append(facts, ir.FactCmd(ir.Assert(prop, info, ir.ReasonParamConstraint), info))
	}
	// The target's existential outputs become local assumptions at the call
	// site, not assertions: the callee already proved them, so the caller
	// only needs to know they hold, translated through the same bindings.
	for _, fact := range target.ExistentialAssumes {
		prop := ir.TransferProp(c.Algebra, target.Algebra, fact.Prop, inst.Comp, bind)
		info := c.AddInfo(ir.Info{Kind: ir.InfoAssume, Note: "existential assumption of " + target.Name + " at instantiation"})
		facts = append(facts, ir.FactCmd(ir.Assume(prop, info), info))
	}
	p.ctx.Components.Set(data.Comp, c)

	if len(facts) == 0 {
		return visitor.ContinueAction()
	}
	return visitor.AddBeforeAction(facts...)
}

// Invoke re-checks the target component's event constraints against the
// event arguments this invocation supplies, via a Bindings table that
// extends the owning instance's param bindings with this invoke's own
// event bindings.
func (p *pass) Invoke(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	inv := c.Invokes.Get(cmd.Inv)
	inst := c.Instances.Get(inv.Inst)
	if !p.ctx.Components.Valid(inst.Comp) {
		return visitor.ContinueAction()
	}
	target := p.ctx.Comp(inst.Comp)

	bind := ir.NewBindings()
	for i, sigParam := range target.ParamArgs {
		if i < len(inst.Args) {
			bind.Params[ir.NewForeign(sigParam, inst.Comp)] = inst.Args[i]
		}
	}
	for _, eb := range inv.Events {
		bind.Events[eb.Base] = eb.Arg
	}

	var facts []ir.Command
	for _, fact := range target.EventAsserts {
		prop := ir.TransferProp(c.Algebra, target.Algebra, fact.Prop, inst.Comp, bind)
		info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "event constraint of " + target.Name + " at invocation"})
		facts = append(facts, ir.FactCmd(ir.Assert(prop, info, ir.ReasonEventConstraint), info))
	}
	p.ctx.Components.Set(data.Comp, c)

	if len(facts) == 0 {
		return visitor.ContinueAction()
	}
	return visitor.AddBeforeAction(facts...)
}
