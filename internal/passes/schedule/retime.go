package schedule

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/ir"
)

// retime rewrites comp's body once its schedule is known: every Connect
// whose destination liveness ends after the source's does is routed through a freshly instanced delay register, so the gap
// between the two becomes something an RTL emitter can realize as storage
// rather than an impossible same-cycle wire (spec §4.H "the retiming
// sub-pass reads the schedule ... rewrite the connect into two connects
// through the register's input and output ports").
func retime(ctx *ir.Context, idx ir.CompIdx, res *schedResult) error {
	regIdx := findOrAddDelayRegister(ctx)

	var retimeErr error
	ctx.MutComp(idx, func(c *ir.Component) {
		reg := ctx.Comp(regIdx)
		regIn, regOut := registerPorts(reg)

		out := make([]ir.Command, 0, len(c.Body))
		for _, cmd := range c.Body {
			if cmd.Kind != ir.CmdConnect {
				out = append(out, cmd)
				continue
			}
			replacement, err := retimeConnect(ctx, c, regIdx, &reg, regIn, regOut, res, cmd)
			if err != nil {
				retimeErr = err
				return
			}
			out = append(out, replacement...)
		}
		c.Body = out
	})
	return retimeErr
}

func registerPorts(reg ir.Component) (in, out ir.PortIdx) {
	inID, _ := reg.LookupSourceName("port", "in")
	outID, _ := reg.LookupSourceName("port", "out")
	return ir.IndexFromRaw[ir.Port](inID), ir.IndexFromRaw[ir.Port](outID)
}

func retimeConnect(ctx *ir.Context, c *ir.Component, regIdx ir.CompIdx, reg *ir.Component, regIn, regOut ir.PortIdx, res *schedResult, cmd ir.Command) ([]ir.Command, error) {
	srcStart, srcEnd, err := concretePortRange(ctx, c, res.invokes, cmd.Src.Port)
	if err != nil {
		return nil, err
	}
	dstStart, dstEnd, err := concretePortRange(ctx, c, res.invokes, cmd.Dst.Port)
	if err != nil {
		return nil, err
	}
	if dstStart < srcStart {
		return nil, fmt.Errorf("schedule: component %s scheduled a connect with dst starting before src", c.Name)
	}
	if dstEnd <= srcEnd {
		return []ir.Command{cmd}, nil
	}

	width, err := evalConcrete(c, c.Ports.Get(cmd.Src.Port).Width)
	if err != nil {
		return nil, err
	}
	delay := dstStart - srcStart
	live := dstEnd - dstStart

	alg := c.Algebra
	widthE := alg.Exprs.Concrete(width)
	delayE := alg.Exprs.Concrete(delay)
	liveE := alg.Exprs.Concrete(live)

	instInfo := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming delay register"})
	inst := c.AddInstance(ir.Instance{
		Comp: regIdx,
		Args: []ir.ExprIdx{widthE, delayE, liveE},
		Info: instInfo,
	})

	regEvent := reg.EventArgs[0]
	invInfo := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming delay register invocation"})
	invIdx := c.AddInvoke(ir.Invoke{
		Inst: inst,
		Events: []ir.EventBind{{
			Delay: alg.Times.UnitSub(liveE),
			Arg:   alg.Times.Time(invokeReferenceEvent(c), alg.Exprs.Concrete(srcEnd-1)),
			Info:  invInfo,
			Base:  ir.NewForeign(regEvent, regIdx),
		}},
		Info: invInfo,
	})

	inPortInfo := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming register input"})
	inPort := c.AddPort(ir.Port{
		Owner: ir.InvPortOwner(invIdx, ir.DirIn, ir.NewForeign(regIn, regIdx)),
		Width: widthE,
		Live: ir.Liveness{
			Range: ir.Range{
				Start: alg.Times.Time(invokeReferenceEvent(c), alg.Exprs.Concrete(srcEnd-1)),
				End:   alg.Times.Time(invokeReferenceEvent(c), alg.Exprs.Concrete(srcEnd)),
			},
		},
		Info: inPortInfo,
	})

	outPortInfo := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming register output"})
	outPort := c.AddPort(ir.Port{
		Owner: ir.InvPortOwner(invIdx, ir.DirOut, ir.NewForeign(regOut, regIdx)),
		Width: widthE,
		Live: ir.Liveness{
			Range: ir.Range{
				Start: alg.Times.Time(invokeReferenceEvent(c), alg.Exprs.Concrete(dstStart)),
				End:   alg.Times.Time(invokeReferenceEvent(c), alg.Exprs.Concrete(dstEnd)),
			},
		},
		Info: outPortInfo,
	})

	invoke := c.Invokes.Get(invIdx)
	invoke.Ports = []ir.PortIdx{inPort, outPort}
	c.Invokes.Set(invIdx, invoke)

	connInfo1 := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming connect into register"})
	connInfo2 := c.AddInfo(ir.Info{Kind: ir.InfoGenerated, Note: "retiming connect out of register"})

	return []ir.Command{
		ir.InstanceCmd(inst, instInfo),
		ir.InvokeCmd(invIdx, invInfo),
		ir.ConnectCmd(ir.Access{Port: inPort}, cmd.Src, connInfo1),
		ir.ConnectCmd(cmd.Dst, ir.Access{Port: outPort}, connInfo2),
	}, nil
}

// invokeReferenceEvent returns c's own single interface event — the
// timeline scheduling assigns every local start/end symbol against
// (spec §4.H requires scheduling to run on a single-event component).
func invokeReferenceEvent(c *ir.Component) ir.EventIdx {
	return c.EventArgs[0]
}

func concretePortRange(ctx *ir.Context, comp *ir.Component, invokeTimes map[int]uint64, p ir.PortIdx) (start, end uint64, err error) {
	port := comp.Ports.Get(p)
	switch port.Owner.Kind {
	case ir.PortOwnerSig, ir.PortOwnerLocal:
		start, err = evalConcreteTime(comp, port.Live.Range.Start)
		if err != nil {
			return 0, 0, err
		}
		end, err = evalConcreteTime(comp, port.Live.Range.End)
		return start, end, err
	case ir.PortOwnerInv:
		tI, ok := invokeTimes[port.Owner.Inv.Int()]
		if !ok {
			return 0, 0, fmt.Errorf("schedule: port references an invoke outside its component's own schedule")
		}
		target := ctx.Comp(comp.Instances.Get(comp.Invokes.Get(port.Owner.Inv).Inst).Comp)
		basePort := target.Ports.Get(port.Owner.Base.Idx)
		bStart, err := evalConcreteTime(&target, basePort.Live.Range.Start)
		if err != nil {
			return 0, 0, err
		}
		bEnd, err := evalConcreteTime(&target, basePort.Live.Range.End)
		if err != nil {
			return 0, 0, err
		}
		return tI + bStart, tI + bEnd, nil
	}
	return 0, 0, fmt.Errorf("schedule: unknown port owner kind")
}
