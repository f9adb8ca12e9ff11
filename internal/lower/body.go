package lower

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/ir"
)

// lowerBody translates d's command list into comp's Body (spec §3
// "Commands"). Instance/invoke surface names are scoped to the whole
// component, matching the front end's own name resolution.
func (l *lowerer) lowerBody(idx ir.CompIdx, d ast.Component) {
	l.localInst = make(map[string]ir.InstanceIdx)
	l.localInv = make(map[string]ir.InvokeIdx)
	l.ctx.MutComp(idx, func(c *ir.Component) {
		c.Body = l.lowerCommands(idx, c, d.Body)
	})
}

func (l *lowerer) lowerCommands(idx ir.CompIdx, c *ir.Component, cmds []ast.Command) []ir.Command {
	out := make([]ir.Command, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, l.lowerCommand(idx, c, cmd))
	}
	return out
}

func (l *lowerer) lowerCommand(idx ir.CompIdx, c *ir.Component, cmd ast.Command) ir.Command {
	switch v := cmd.(type) {
	case ast.CInstance:
		return l.lowerInstance(c, v)
	case ast.CInvoke:
		return l.lowerInvoke(c, v)
	case ast.CBundleDef:
		info := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: v.Port.Name, Pos: toSourcePos(v.Port.Pos)})
		portIdx := l.lowerPortDeclWithOwner(c, v.Port, ir.LocalPortOwner())
		return ir.BundleDefCmd(portIdx, info)
	case ast.CConnect:
		info := c.AddInfo(ir.Info{Pos: toSourcePos(v.Pos)})
		dst := l.lowerAccess(c, v.DstName, v.DstIndices)
		src := l.lowerAccess(c, v.SrcName, v.SrcIndices)
		return ir.ConnectCmd(dst, src, info)
	case ast.CLet:
		info := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: v.Name, Pos: toSourcePos(v.Pos)})
		var (
			exprIdx ir.ExprIdx
			hasExpr bool
			owner   ir.ParamOwner
		)
		if v.Expr != nil {
			exprIdx = l.lowerExpr(c, v.Expr)
			hasExpr = true
			owner = ir.BoundLetOwner(exprIdx)
		} else {
			owner = ir.UnsolvedLetOwner()
		}
		paramIdx := c.AddParam(ir.Param{Owner: owner, Info: info})
		c.BindSourceName("param", v.Name, paramIdx.Int())
		return ir.LetCmd(paramIdx, exprIdx, hasExpr, info)
	case ast.CForLoop:
		info := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: v.Var, Pos: toSourcePos(v.Pos)})
		start := l.lowerExpr(c, v.Start)
		end := l.lowerExpr(c, v.End)
		paramIdx := c.AddParam(ir.Param{Owner: ir.LoopOwner(), Info: info})
		c.BindSourceName("param", v.Var, paramIdx.Int())
		body := l.lowerCommands(idx, c, v.Body)
		return ir.ForLoopCmd(paramIdx, start, end, body, info)
	case ast.CIf:
		info := c.AddInfo(ir.Info{Pos: toSourcePos(v.Pos)})
		cond := l.lowerProp(c, v.Cond)
		then := l.lowerCommands(idx, c, v.Then)
		alt := l.lowerCommands(idx, c, v.Alt)
		return ir.IfCmd(cond, then, alt, info)
	case ast.CFact:
		info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Pos: toSourcePos(v.Pos)})
		prop := l.lowerProp(c, v.Prop)
		var fact ir.Fact
		if v.Checked {
			fact = ir.Assert(prop, info, ir.ReasonMisc)
		} else {
			fact = ir.Assume(prop, info)
		}
		return ir.FactCmd(fact, info)
	case ast.CExists:
		info := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: v.Name, Pos: toSourcePos(v.Pos)})
		paramIdx := c.AddParam(ir.Param{Owner: ir.ExistsOwner(), Info: info})
		c.BindSourceName("param", v.Name, paramIdx.Int())
		return ir.ExistsCmd(paramIdx, info)
	default:
		l.diags.Error(phase, c.Name, "unrecognised command node", ir.ReasonMisc, nil, nil)
		info := c.AddInfo(ir.Info{})
		return ir.FactCmd(ir.Assume(c.Algebra.Props.True(), info), info)
	}
}

// lowerInstance records a new sub-component use (spec §3 "Instances").
func (l *lowerer) lowerInstance(c *ir.Component, v ast.CInstance) ir.Command {
	info := c.AddInfo(ir.Info{Kind: ir.InfoInstance, Name: v.Name, Pos: toSourcePos(v.Pos)})
	targetIdx, ok := l.compIdx[v.Target]
	if !ok {
		l.diags.Error(phase, c.Name, fmt.Sprintf("undefined component %q", v.Target), ir.ReasonMisc, nil, nil)
		return ir.FactCmd(ir.Assume(c.Algebra.Props.True(), info), info)
	}
	if target := l.ctx.Comp(targetIdx); len(v.Args) != len(target.ParamArgs) {
		l.diags.Error(phase, c.Name, fmt.Sprintf("instance %q of %q supplies %d argument(s) but %q has %d parameter(s)",
			v.Name, v.Target, len(v.Args), v.Target, len(target.ParamArgs)), ir.ReasonMisc, nil, nil)
	}
	args := make([]ir.ExprIdx, len(v.Args))
	for i, a := range v.Args {
		args[i] = l.lowerExpr(c, a)
	}
	instIdx := c.AddInstance(ir.Instance{Comp: targetIdx, Args: args, Info: info})
	l.localInst[v.Name] = instIdx
	return ir.InstanceCmd(instIdx, info)
}

// lowerInvoke activates an instance over a set of event arguments, mirroring
// the target's signature ports into comp as freshly owned ports (spec §3
// "Invokes"). Every foreign term the target's signature mentions (port
// widths/liveness, event delays) is rebuilt in comp's own algebra via
// ir.TransferExpr/TransferTime, substituting this invoke's instance args and
// event args for the target's signature params/events.
func (l *lowerer) lowerInvoke(c *ir.Component, v ast.CInvoke) ir.Command {
	info := c.AddInfo(ir.Info{Kind: ir.InfoInvoke, Name: v.Name, Pos: toSourcePos(v.Pos)})

	instIdx, ok := l.localInst[v.Inst]
	if !ok {
		l.diags.Error(phase, c.Name, fmt.Sprintf("undefined instance %q", v.Inst), ir.ReasonMisc, nil, nil)
		return ir.FactCmd(ir.Assume(c.Algebra.Props.True(), info), info)
	}
	inst := c.Instances.Get(instIdx)
	if !l.ctx.Components.Valid(inst.Comp) {
		return ir.FactCmd(ir.Assume(c.Algebra.Props.True(), info), info)
	}
	target := l.ctx.Comp(inst.Comp)

	bind := ir.NewBindings()
	for i, sigParam := range target.ParamArgs {
		if i < len(inst.Args) {
			bind.Params[ir.NewForeign(sigParam, inst.Comp)] = inst.Args[i]
		}
	}

	events := make([]ir.EventBind, 0, len(v.Events))
	for _, ea := range v.Events {
		raw, ok := target.LookupSourceName("event", ea.Event)
		if !ok {
			l.diags.Error(phase, c.Name, fmt.Sprintf("component %q has no event %q", target.Name, ea.Event), ir.ReasonMisc, nil, nil)
			continue
		}
		targetEvent := ir.IndexFromRaw[ir.Event](raw)
		arg := l.lowerTime(c, ea.Arg)
		bind.Events[ir.NewForeign(targetEvent, inst.Comp)] = arg
		delay := ir.TransferTimeSub(c.Algebra, target.Algebra, target.Events.Get(targetEvent).Delay, inst.Comp, bind)
		eInfo := c.AddInfo(ir.Info{Kind: ir.InfoEvent, Note: "invoke event arg"})
		events = append(events, ir.EventBind{
			Delay: delay,
			Arg:   arg,
			Info:  eInfo,
			Base:  ir.NewForeign(targetEvent, inst.Comp),
		})
	}

	invIdx := c.AddInvoke(ir.Invoke{Inst: instIdx, Events: events, Info: info})

	var ports []ir.PortIdx
	for _, tpIdx := range target.SigPortsOrdered() {
		tp := target.Ports.Get(tpIdx)
		width := ir.TransferExpr(c.Algebra, target.Algebra, tp.Width, inst.Comp, bind)
		liveRange := ir.Range{
			Start: ir.TransferTime(c.Algebra, target.Algebra, tp.Live.Range.Start, inst.Comp, bind),
			End:   ir.TransferTime(c.Algebra, target.Algebra, tp.Live.Range.End, inst.Comp, bind),
		}
		lens := make([]ir.ExprIdx, len(tp.Live.Lens))
		for i, lenExpr := range tp.Live.Lens {
			lens[i] = ir.TransferExpr(c.Algebra, target.Algebra, lenExpr, inst.Comp, bind)
		}
		portName := target.Infos.Get(tp.Info).Name

		pInfo := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: portName, Note: "mirrored from " + target.Name})
		newPortIdx := c.AddPort(ir.Port{
			Owner:       ir.InvPortOwner(invIdx, tp.Owner.Dir, ir.NewForeign(tpIdx, inst.Comp)),
			Width:       width,
			Live:        ir.Liveness{Range: liveRange, Lens: lens},
			Info:        pInfo,
			Unannotated: tp.Unannotated,
		})

		idxs := make([]ir.ParamIdx, len(tp.Live.Idxs))
		for i := range tp.Live.Idxs {
			idxs[i] = c.AddParam(ir.Param{Owner: ir.BundleOwner(newPortIdx)})
		}
		port := c.Ports.Get(newPortIdx)
		port.Live.Idxs = idxs
		c.Ports.Set(newPortIdx, port)

		ports = append(ports, newPortIdx)
		if portName != "" {
			c.BindSourceName("port", v.Name+"."+portName, newPortIdx.Int())
		}
	}

	inv := c.Invokes.Get(invIdx)
	inv.Ports = ports
	c.Invokes.Set(invIdx, inv)

	l.localInv[v.Name] = invIdx
	return ir.InvokeCmd(invIdx, info)
}

// lowerAccess resolves a surface access name — either "invokeName.portName"
// (a port produced by an invocation) or a bare name (one of comp's own
// signature ports, or a locally bundle-defined port) — into an ir.Access.
func (l *lowerer) lowerAccess(c *ir.Component, name string, ranges []ast.ExprRange) ir.Access {
	raw, ok := c.LookupSourceName("port", name)
	if !ok {
		l.diags.Error(phase, c.Name, fmt.Sprintf("undefined port %q", name), ir.ReasonMisc, nil, nil)
		return ir.Access{Port: ir.Unknown[ir.Port]()}
	}
	portIdx := ir.IndexFromRaw[ir.Port](raw)
	out := make([]ir.ExprRange, len(ranges))
	for i, r := range ranges {
		out[i] = ir.ExprRange{Start: l.lowerExpr(c, r.Start), End: l.lowerExpr(c, r.End)}
	}
	return ir.Access{Port: portIdx, Ranges: out}
}
