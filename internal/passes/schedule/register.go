// Package schedule assigns concrete start times to every signature-level
// event interface and concrete cycle counts to every unsolved `let = ?`
// parameter by delegating to an external SMT solver (spec §4.H
// "Scheduler"), then retimes the program by inserting delay registers
// wherever a connection's destination liveness ends after its source's
// does.
package schedule

import "github.com/sunholo/chronoc/internal/ir"

// delayRegisterName is the fixed identifier the scheduler looks for (and,
// failing that, builds once) in a Context's component store; every
// retimed connection instantiates this same external signature.
const delayRegisterName = "__SchedulingDelayRegister"

// delayRegisterSV is the fixed implementation file the register's extern
// declaration is recorded under, mirroring how an ordinary `extern`
// component's signature names the file that implements it (spec §6).
const delayRegisterSV = "register.sv"

// findOrAddDelayRegister returns the component index of the pre-authored
// retiming register, building it on first use. Grounded on the scheduling
// pass's own pre-authored register component: parameters WIDTH, DELAY,
// LIVE; a single interface event G whose re-trigger delay equals LIVE (so
// the output bundle's liveness length matches the event delay exactly,
// the tightest interval the checker's VC3 allows); an input port live for
// one cycle starting at the event, and an output port live for LIVE
// cycles starting DELAY cycles later.
//
// The upstream register component names its cycle-count port "in" while
// giving it an Out direction; that looks like a mislabel rather than a
// deliberate inversion, so this port instead uses ordinary in/out
// direction semantics (an actual input on the left, a delayed echo of it
// on the right) to keep PortOwner.Dir self-consistent with how every
// other pass in this tree reads it (see DESIGN.md).
func findOrAddDelayRegister(ctx *ir.Context) ir.CompIdx {
	for _, idx := range ctx.Components.Indices() {
		if ctx.Components.Get(idx).Name == delayRegisterName {
			return idx
		}
	}
	idx := ctx.AddComponent(newDelayRegister())
	ctx.Externs[idx] = delayRegisterSV
	return idx
}

func newDelayRegister() *ir.Component {
	c := ir.NewComponent(delayRegisterName, ir.CompExternal)
	alg := c.Algebra

	widthInfo := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: "WIDTH"})
	width := c.AddParam(ir.Param{Owner: ir.SigOwner(), Info: widthInfo})
	delayInfo := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: "DELAY"})
	delay := c.AddParam(ir.Param{Owner: ir.SigOwner(), Info: delayInfo})
	liveInfo := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: "LIVE"})
	live := c.AddParam(ir.Param{Owner: ir.SigOwner(), Info: liveInfo})
	c.ParamArgs = []ir.ParamIdx{width, delay, live}
	c.BindSourceName("param", "WIDTH", width.Int())
	c.BindSourceName("param", "DELAY", delay.Int())
	c.BindSourceName("param", "LIVE", live.Int())

	widthE := alg.Exprs.Param(width)
	delayE := alg.Exprs.Param(delay)
	liveE := alg.Exprs.Param(live)
	zero := alg.Exprs.Concrete(0)
	one := alg.Exprs.Concrete(1)

	liveProp := alg.Props.Cmp(ir.Gte, liveE, one)
	liveAssertInfo := c.AddInfo(ir.Info{
		Kind: ir.InfoAssert,
		Note: "register liveness is at least one cycle",
	})
	c.ParamAsserts = append(c.ParamAsserts, ir.Assert(liveProp, liveAssertInfo, ir.ReasonParamConstraint))

	eventInfo := c.AddInfo(ir.Info{Kind: ir.InfoEvent, Name: "G"})
	event := c.AddEvent(ir.Event{Delay: alg.Times.UnitSub(liveE), Info: eventInfo, HasInterface: true})
	c.EventArgs = []ir.EventIdx{event}
	c.BindSourceName("event", "G", event.Int())

	delayEnd := alg.Exprs.Bin(ir.Add, delayE, liveE)

	// Scalar ports (empty Idxs/Lens): the register is synthesized during
	// scheduling, which runs after bundle elimination has already reduced
	// every surviving port in the program to this shape (spec §8
	// property 3), so it is built directly in post-elimination form
	// rather than as a bundle that would never actually get eliminated.
	inInfo := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: "in"})
	in := c.AddPort(ir.Port{
		Owner: ir.SigPortOwner(ir.DirIn),
		Width: widthE,
		Live: ir.Liveness{
			Range: ir.Range{
				Start: alg.Times.Time(event, zero),
				End:   alg.Times.Time(event, one),
			},
		},
		Info: inInfo,
	})
	c.BindSourceName("port", "in", in.Int())

	outInfo := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: "out"})
	out := c.AddPort(ir.Port{
		Owner: ir.SigPortOwner(ir.DirOut),
		Width: widthE,
		Live: ir.Liveness{
			Range: ir.Range{
				Start: alg.Times.Time(event, delayE),
				End:   alg.Times.Time(event, delayEnd),
			},
		},
		Info: outInfo,
	})
	c.BindSourceName("port", "out", out.Int())

	return c
}
