// Package interval implements the interval checker (spec §4.E): it emits,
// but never solves, the seven verification conditions every component must
// satisfy for its timing intervals to be well-formed. Each VC is appended
// as a Checked Fact, tagged with a structured ir.Reason so an external
// renderer can reconstruct a diagnostic without the core understanding
// source syntax (spec §6).
package interval

import (
	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/visitor"
)

// Run emits every VC for every component: the four signature-level VCs
// (range well-formedness, delay positivity, bundle liveness vs. event
// delay, instance liveness vs. event delay) up front, then the three
// command-site VCs (event binding frequency, invoke-within-instance-live,
// connect dataflow) via a traversal over each component's body.
func Run(ctx *ir.Context) {
	for _, idx := range ctx.Components.Indices() {
		emitStructuralVCs(ctx, idx)
	}
	p := &pass{ctx: ctx}
	for _, idx := range ctx.Components.Indices() {
		visitor.Walk(p, ctx, idx)
	}
}

// emitStructuralVCs covers VC1 (range well-formedness), VC2 (delay
// positivity), VC3 (bundle liveness ≤ event delay) and VC5 (instance
// liveness inside event) — obligations that only need signature-level data
// (ports, events, instances), independent of where in the body they're
// used, so they're prepended once rather than threaded through the visitor.
func emitStructuralVCs(ctx *ir.Context, idx ir.CompIdx) {
	ctx.MutComp(idx, func(c *ir.Component) {
		var facts []ir.Fact
		assumes := assumesConjunction(c)

		zero := c.Algebra.Times.UnitSub(c.Algebra.Exprs.Concrete(0))
		for _, eIdx := range c.Events.Indices() {
			ev := c.Events.Get(eIdx)
			info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "event delay positivity"})
			prop := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeSubCmp(ir.Gt, ev.Delay, zero))
			facts = append(facts, ir.Assert(prop, info, ir.ReasonBundleDelay))
		}

		for _, pIdx := range c.Ports.Indices() {
			port := c.Ports.Get(pIdx)
			if port.Unannotated {
				continue
			}
			rng := port.Live.Range
			wfInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "liveness range well-formed"})
			wfProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeCmp(ir.Gt, rng.End, rng.Start))
			facts = append(facts, ir.Assert(wfProp, wfInfo, ir.ReasonWellFormedInterval))

			if port.Owner.Kind == ir.PortOwnerInv {
				continue // VC3 applies to non-invoke ports only
			}
			startEvent := c.Algebra.Times.GetTime(rng.Start).Event
			if !c.Events.Valid(startEvent) {
				continue
			}
			delay := c.Events.Get(startEvent).Delay
			length := c.Algebra.Times.SymSub(rng.End, rng.Start)
			lenInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "bundle liveness within event delay"})
			lenProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeSubCmp(ir.Gte, delay, length))
			facts = append(facts, ir.Assert(lenProp, lenInfo, ir.ReasonBundleDelay))
		}

		for _, instIdx := range c.Instances.Indices() {
			inst := c.Instances.Get(instIdx)
			for _, rng := range inst.Lives {
				startEvent := c.Algebra.Times.GetTime(rng.Start).Event
				if !c.Events.Valid(startEvent) {
					continue
				}
				delay := c.Events.Get(startEvent).Delay
				length := c.Algebra.Times.SymSub(rng.End, rng.Start)
				info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "instance liveness within event delay"})
				prop := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeSubCmp(ir.Gte, delay, length))
				facts = append(facts, ir.Assert(prop, info, ir.ReasonLiveness))
			}
		}

		if len(facts) == 0 {
			return
		}
		cmds := make([]ir.Command, len(facts))
		for i, f := range facts {
			cmds[i] = ir.FactCmd(f, f.Reason)
		}
		c.Body = append(cmds, c.Body...)
	})
}

// assumesConjunction folds a component's existential assumptions into one
// proposition (spec §4.E: every VC is gated by "the conjunction of
// existential assumptions"), so a VC that only holds given some
// existential parameter's value doesn't over-obligate the checker with an
// unconditional claim. Folds to True when there are none, under which
// Implies(assumes, prop) reduces to prop exactly.
func assumesConjunction(c *ir.Component) ir.PropIdx {
	conj := c.Algebra.Props.True()
	for _, f := range c.ExistentialAssumes {
		conj = c.Algebra.Props.And(conj, f.Prop)
	}
	return conj
}

type pass struct {
	visitor.Base
	ctx *ir.Context
}

func (p *pass) ClearData() {}

// Invoke emits VC4 (event binding frequency) and VC6 (invoke within
// instance liveness).
func (p *pass) Invoke(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	inv := c.Invokes.Get(cmd.Inv)
	inst := c.Instances.Get(inv.Inst)
	assumes := assumesConjunction(&c)

	var facts []ir.Command
	for i, eb := range inv.Events {
		if argEvent := c.Algebra.Times.GetTime(eb.Arg).Event; c.Events.Valid(argEvent) {
			argDelay := c.Events.Get(argEvent).Delay
			info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "event binding frequency"})
			prop := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeSubCmp(ir.Gte, argDelay, eb.Delay))
			facts = append(facts, ir.FactCmd(ir.Assert(prop, info, ir.ReasonEventTrig), info))
		}

		if i < len(inst.Lives) {
			live := inst.Lives[i]
			lowInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "invoke at/after instance liveness start"})
			lowProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeCmp(ir.Gte, eb.Arg, live.Start))
			facts = append(facts, ir.FactCmd(ir.Assert(lowProp, lowInfo, ir.ReasonLiveness), lowInfo))

			remaining := c.Algebra.Times.SymSub(live.End, eb.Arg)
			highInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "invoke ends within instance liveness"})
			highProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.TimeSubCmp(ir.Gte, remaining, eb.Delay))
			facts = append(facts, ir.FactCmd(ir.Assert(highProp, highInfo, ir.ReasonLiveness), highInfo))
		}
	}
	p.ctx.Components.Set(data.Comp, c)

	if len(facts) == 0 {
		return visitor.ContinueAction()
	}
	return visitor.AddBeforeAction(facts...)
}

// Connect emits VC7 (connect dataflow): the source range must contain the
// destination range in every shared dimension, and the destination indices
// must lie in bounds (the `in_range(live)` macro of spec §4.E).
func (p *pass) Connect(cmd *ir.Command, data *visitor.Data) visitor.Action {
	c := p.ctx.Components.Get(data.Comp)
	dst := c.Ports.Get(cmd.Dst.Port)
	assumes := assumesConjunction(&c)

	n := len(cmd.Dst.Ranges)
	if len(cmd.Src.Ranges) < n {
		n = len(cmd.Src.Ranges)
	}

	var facts []ir.Command
	for i := 0; i < n; i++ {
		dr, sr := cmd.Dst.Ranges[i], cmd.Src.Ranges[i]

		containLow := c.Algebra.Props.Cmp(ir.Gte, dr.Start, sr.Start)
		containHigh := c.Algebra.Props.Cmp(ir.Gte, sr.End, dr.End)
		containInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "source range contains destination range"})
		containProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.And(containLow, containHigh))
		facts = append(facts, ir.FactCmd(ir.Assert(containProp, containInfo, ir.ReasonInBoundsAccess), containInfo))

		if i < len(dst.Live.Lens) {
			lowBound := c.Algebra.Props.Cmp(ir.Gte, dr.Start, c.Algebra.Exprs.Concrete(0))
			highBound := c.Algebra.Props.Cmp(ir.Gte, dst.Live.Lens[i], dr.End)
			boundInfo := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "destination index in bounds"})
			boundProp := c.Algebra.Props.Implies(assumes, c.Algebra.Props.And(lowBound, highBound))
			facts = append(facts, ir.FactCmd(ir.Assert(boundProp, boundInfo, ir.ReasonInBoundsAccess), boundInfo))
		}
	}
	p.ctx.Components.Set(data.Comp, c)

	if len(facts) == 0 {
		return visitor.ContinueAction()
	}
	return visitor.AddBeforeAction(facts...)
}
