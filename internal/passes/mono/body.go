package mono

import (
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

// instResult is what CmdInstance records for a later CmdInvoke against the
// same instance to find its specialized target.
type instResult struct {
	idx    ir.InstanceIdx
	target ir.CompIdx
	exp    *expansion
}

// walker drives spec §4.G step 4's body walk for one source-component
// specialization. It owns the evolving binding (concrete sig-param values,
// plus whatever Let/ForLoop/Exists adds along the way) and a running map
// from every original port index this component's body can still name
// (signature ports, invoke-mirrored ports, locally bundle-defined ports) to
// its freshly specialized counterpart.
type walker struct {
	e      *Engine
	src    ir.CompIdx
	orig   *ir.Component
	dstIdx ir.CompIdx
	bind   *ir.Bindings
	ports  map[int]ir.PortIdx
	insts  map[int]instResult
}

// mutate fetches the live specialized component, lets fn extend it, and
// writes the result back — the Get/mutate/Set round trip every in-place
// pass in this compiler uses instead of holding a pointer into the arena.
func (w *walker) mutate(fn func(c *ir.Component)) {
	c := w.e.ctx.Components.Get(w.dstIdx)
	fn(&c)
	w.e.ctx.Components.Set(w.dstIdx, c)
}

func (w *walker) copyInfoCmd(orig ir.InfoIdx) ir.InfoIdx {
	var info ir.InfoIdx
	w.mutate(func(c *ir.Component) {
		info = c.AddInfo(copyInfo(w.orig, orig))
	})
	return info
}

func (w *walker) walk(cmds []ir.Command) []ir.Command {
	var out []ir.Command
	for _, cmd := range cmds {
		out = append(out, w.walkOne(cmd)...)
	}
	return out
}

// walkOne lowers a single source command, returning zero or more commands
// (a ForLoop/If unrolls into its chosen branch's commands directly, never
// surviving as ForLoop/If itself — spec §4.G step 4 makes every loop bound
// and branch condition concrete by this point).
func (w *walker) walkOne(cmd ir.Command) []ir.Command {
	switch cmd.Kind {
	case ir.CmdLet:
		return w.walkLet(cmd)
	case ir.CmdForLoop:
		return w.walkForLoop(cmd)
	case ir.CmdIf:
		return w.walkIf(cmd)
	case ir.CmdExists:
		return w.walkExists(cmd)
	case ir.CmdInstance:
		return w.walkInstance(cmd)
	case ir.CmdInvoke:
		return w.walkInvoke(cmd)
	case ir.CmdBundleDef:
		return w.walkBundleDef(cmd)
	case ir.CmdConnect:
		return w.walkConnect(cmd)
	case ir.CmdFact:
		return w.walkFact(cmd)
	}
	diagnostics.Panic(phase, "unrecognised command kind in %q", w.orig.Name)
	return nil
}

func (w *walker) walkLet(cmd ir.Command) []ir.Command {
	if !cmd.LetHasExpr {
		var info ir.InfoIdx
		var newParam ir.ParamIdx
		w.mutate(func(c *ir.Component) {
			info = c.AddInfo(copyInfo(w.orig, cmd.Info))
			newParam = c.AddParam(ir.Param{Owner: ir.UnsolvedLetOwner(), Info: info})
		})
		w.bind.Params[ir.NewForeign(cmd.LetParam, w.src)] = w.e.ctx.Comp(w.dstIdx).Algebra.Exprs.Param(newParam)
		return []ir.Command{ir.LetCmd(newParam, ir.Unknown[ir.Expr](), false, info)}
	}

	var (
		info     ir.InfoIdx
		newExpr  ir.ExprIdx
		newParam ir.ParamIdx
		concrete bool
	)
	w.mutate(func(c *ir.Component) {
		newExpr = ir.TransferExpr(c.Algebra, w.orig.Algebra, cmd.LetExpr, w.src, w.bind)
		if v, ok := c.Algebra.Exprs.AsConcrete(newExpr); ok {
			concrete = true
			w.bind.Params[ir.NewForeign(cmd.LetParam, w.src)] = c.Algebra.Exprs.Concrete(v)
			return
		}
		info = c.AddInfo(copyInfo(w.orig, cmd.Info))
		newParam = c.AddParam(ir.Param{Owner: ir.BoundLetOwner(newExpr), Info: info})
		w.bind.Params[ir.NewForeign(cmd.LetParam, w.src)] = c.Algebra.Exprs.Param(newParam)
	})
	if concrete {
		return nil // fully inlined into the binding, spec §4.G step 4 "Let x = e"
	}
	return []ir.Command{ir.LetCmd(newParam, newExpr, true, info)}
}

func (w *walker) walkForLoop(cmd ir.Command) []ir.Command {
	var start, end uint64
	var sok, eok bool
	w.mutate(func(c *ir.Component) {
		s := ir.TransferExpr(c.Algebra, w.orig.Algebra, cmd.LoopStart, w.src, w.bind)
		en := ir.TransferExpr(c.Algebra, w.orig.Algebra, cmd.LoopEnd, w.src, w.bind)
		start, sok = c.Algebra.Exprs.AsConcrete(s)
		end, eok = c.Algebra.Exprs.AsConcrete(en)
	})
	if !sok || !eok {
		diagnostics.Panic(phase, "for-loop bounds not concrete after monomorphization in %q", w.orig.Name)
	}

	key := ir.NewForeign(cmd.LoopParam, w.src)
	var out []ir.Command
	for v := start; v < end; v++ {
		w.bind.Params[key] = w.e.ctx.Comp(w.dstIdx).Algebra.Exprs.Concrete(v)
		out = append(out, w.walk(cmd.Body)...)
	}
	delete(w.bind.Params, key)
	return out
}

func (w *walker) walkIf(cmd ir.Command) []ir.Command {
	var kind ir.PropKind
	w.mutate(func(c *ir.Component) {
		cond := ir.TransferProp(c.Algebra, w.orig.Algebra, cmd.IfCond, w.src, w.bind)
		kind = c.Algebra.Props.Get(cond).Kind
	})
	switch kind {
	case ir.PropTrueKind:
		return w.walk(cmd.Then)
	case ir.PropFalseKind:
		return w.walk(cmd.Alt)
	default:
		diagnostics.Panic(phase, "if-condition not concrete after monomorphization in %q", w.orig.Name)
		return nil
	}
}

func (w *walker) walkExists(cmd ir.Command) []ir.Command {
	var info ir.InfoIdx
	var newParam ir.ParamIdx
	w.mutate(func(c *ir.Component) {
		info = c.AddInfo(copyInfo(w.orig, cmd.Info))
		newParam = c.AddParam(ir.Param{Owner: ir.ExistsOwner(), Info: info})
	})
	w.bind.Params[ir.NewForeign(cmd.ExistsParam, w.src)] = w.e.ctx.Comp(w.dstIdx).Algebra.Exprs.Param(newParam)
	return []ir.Command{ir.ExistsCmd(newParam, info)}
}

// walkInstance evaluates the instance's arguments to concrete values,
// recursively monomorphizes the target, and records every existential
// parameter the target discovered so later commands (Connects, other
// invokes) can reference them through a caller-local Param (spec §4.G step
// 4 "Instance").
func (w *walker) walkInstance(cmd ir.Command) []ir.Command {
	inst := w.orig.Instances.Get(cmd.Inst)

	var concreteArgs []uint64
	w.mutate(func(c *ir.Component) {
		for _, a := range inst.Args {
			te := ir.TransferExpr(c.Algebra, w.orig.Algebra, a, w.src, w.bind)
			v, ok := c.Algebra.Exprs.AsConcrete(te)
			if !ok {
				diagnostics.Panic(phase, "instance argument not concrete after monomorphization in %q", w.orig.Name)
			}
			concreteArgs = append(concreteArgs, v)
		}
	})

	exp := w.e.monomorphize(inst.Comp, concreteArgs)
	target := w.e.ctx.Comp(exp.specialized)

	var info ir.InfoIdx
	var newInstIdx ir.InstanceIdx
	w.mutate(func(c *ir.Component) {
		lives := make([]ir.Range, len(inst.Lives))
		for i, r := range inst.Lives {
			lives[i] = ir.Range{
				Start: ir.TransferTime(c.Algebra, w.orig.Algebra, r.Start, w.src, w.bind),
				End:   ir.TransferTime(c.Algebra, w.orig.Algebra, r.End, w.src, w.bind),
			}
		}
		info = c.AddInfo(copyInfo(w.orig, inst.Info))
		// Args is left empty: the specialized target carries no signature
		// params left to bind (spec §3's instance/target arity invariant
		// holds against the *post-mono* target, which has zero of them).
		newInstIdx = c.AddInstance(ir.Instance{Comp: exp.specialized, Lives: lives, Info: info})
	})

	var existParams []ir.ParamIdx
	w.mutate(func(c *ir.Component) {
		for _, tp := range target.Params.Indices() {
			pv := target.Params.Get(tp)
			if pv.Owner.Kind != ir.OwnerExists {
				continue
			}
			pInfo := c.AddInfo(ir.Info{Kind: ir.InfoParam, Note: "existential exported by instance"})
			np := c.AddParam(ir.Param{
				Owner: ir.InstanceOwner(ir.NewForeign(newInstIdx, w.dstIdx), ir.NewForeign(tp, exp.specialized)),
				Info:  pInfo,
			})
			existParams = append(existParams, np)
		}
		if len(existParams) > 0 {
			in := c.Instances.Get(newInstIdx)
			in.Params = existParams
			c.Instances.Set(newInstIdx, in)
		}
	})

	w.insts[cmd.Inst.Int()] = instResult{idx: newInstIdx, target: exp.specialized, exp: exp}
	return []ir.Command{ir.InstanceCmd(newInstIdx, info)}
}

// walkInvoke rewrites event args and mirrors the (already monomorphized)
// target's signature ports, looking the specialization up in the insts map
// populated by walkInstance (spec §4.G step 4 "Invoke": "the target's
// specialized signature is looked up in inst_info"). Every term mirrored
// from the target is foreign-free by construction — monomorphizing the
// target already substituted every one of its own signature params to a
// concrete value — so no further binding is needed beyond retargeting event
// identity through exp.events.
func (w *walker) walkInvoke(cmd ir.Command) []ir.Command {
	inv := w.orig.Invokes.Get(cmd.Inv)
	res, ok := w.insts[inv.Inst.Int()]
	if !ok {
		diagnostics.Panic(phase, "invoke references an instance not yet monomorphized in %q", w.orig.Name)
	}
	target := w.e.ctx.Comp(res.target)
	empty := ir.NewBindings()

	var info ir.InfoIdx
	var newEvents []ir.EventBind
	w.mutate(func(c *ir.Component) {
		for _, eb := range inv.Events {
			arg := ir.TransferTime(c.Algebra, w.orig.Algebra, eb.Arg, w.src, w.bind)
			newBaseIdx, ok := res.exp.events[eb.Base.Idx.Int()]
			if !ok {
				diagnostics.Panic(phase, "invoke event has no specialized counterpart in %q", w.orig.Name)
			}
			delay := ir.TransferTimeSub(c.Algebra, target.Algebra, target.Events.Get(newBaseIdx).Delay, res.target, empty)
			eInfo := c.AddInfo(ir.Info{Kind: ir.InfoEvent, Note: "invoke event arg"})
			newEvents = append(newEvents, ir.EventBind{
				Delay: delay,
				Arg:   arg,
				Info:  eInfo,
				Base:  ir.NewForeign(newBaseIdx, res.target),
			})
		}
		info = c.AddInfo(copyInfo(w.orig, inv.Info))
	})

	var newInvIdx ir.InvokeIdx
	w.mutate(func(c *ir.Component) {
		newInvIdx = c.AddInvoke(ir.Invoke{Inst: res.idx, Events: newEvents, Info: info})
	})

	var ports []ir.PortIdx
	for i, tpIdx := range target.SigPortsOrdered() {
		tp := target.Ports.Get(tpIdx)
		var newPortIdx ir.PortIdx
		w.mutate(func(c *ir.Component) {
			width := ir.TransferExpr(c.Algebra, target.Algebra, tp.Width, res.target, empty)
			liveRange := ir.Range{
				Start: ir.TransferTime(c.Algebra, target.Algebra, tp.Live.Range.Start, res.target, empty),
				End:   ir.TransferTime(c.Algebra, target.Algebra, tp.Live.Range.End, res.target, empty),
			}
			lens := make([]ir.ExprIdx, len(tp.Live.Lens))
			for i, l := range tp.Live.Lens {
				lens[i] = ir.TransferExpr(c.Algebra, target.Algebra, l, res.target, empty)
			}
			portName := target.Infos.Get(tp.Info).Name
			pInfo := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: portName, Note: "mirrored from " + target.Name})
			newPortIdx = c.AddPort(ir.Port{
				Owner:       ir.InvPortOwner(newInvIdx, tp.Owner.Dir, ir.NewForeign(tpIdx, res.target)),
				Width:       width,
				Live:        ir.Liveness{Range: liveRange, Lens: lens},
				Info:        pInfo,
				Unannotated: tp.Unannotated,
			})
			idxs := make([]ir.ParamIdx, len(tp.Live.Idxs))
			for i := range tp.Live.Idxs {
				idxs[i] = c.AddParam(ir.Param{Owner: ir.BundleOwner(newPortIdx)})
			}
			if len(idxs) > 0 {
				port := c.Ports.Get(newPortIdx)
				port.Live.Idxs = idxs
				c.Ports.Set(newPortIdx, port)
			}
			if portName != "" {
				c.BindSourceName("port", portName+"@"+newInvIdx.String(), newPortIdx.Int())
			}
		})
		ports = append(ports, newPortIdx)
		if i < len(inv.Ports) {
			w.ports[inv.Ports[i].Int()] = newPortIdx
		}
	}

	w.mutate(func(c *ir.Component) {
		in := c.Invokes.Get(newInvIdx)
		in.Ports = ports
		c.Invokes.Set(newInvIdx, in)
	})

	return []ir.Command{ir.InvokeCmd(newInvIdx, info)}
}

func (w *walker) walkBundleDef(cmd ir.Command) []ir.Command {
	port := w.orig.Ports.Get(cmd.BundlePort)
	var newPort ir.PortIdx
	w.mutate(func(c *ir.Component) {
		newPort = specializePort(c, w.src, w.orig, port, w.bind)
	})
	w.ports[cmd.BundlePort.Int()] = newPort
	info := w.copyInfoCmd(cmd.Info)
	return []ir.Command{ir.BundleDefCmd(newPort, info)}
}

func (w *walker) walkConnect(cmd ir.Command) []ir.Command {
	dstPort, ok := w.ports[cmd.Dst.Port.Int()]
	if !ok {
		diagnostics.Panic(phase, "connect destination port not found in %q", w.orig.Name)
	}
	srcPort, ok := w.ports[cmd.Src.Port.Int()]
	if !ok {
		diagnostics.Panic(phase, "connect source port not found in %q", w.orig.Name)
	}

	var dstRanges, srcRanges []ir.ExprRange
	w.mutate(func(c *ir.Component) {
		for _, r := range cmd.Dst.Ranges {
			dstRanges = append(dstRanges, ir.ExprRange{
				Start: ir.TransferExpr(c.Algebra, w.orig.Algebra, r.Start, w.src, w.bind),
				End:   ir.TransferExpr(c.Algebra, w.orig.Algebra, r.End, w.src, w.bind),
			})
		}
		for _, r := range cmd.Src.Ranges {
			srcRanges = append(srcRanges, ir.ExprRange{
				Start: ir.TransferExpr(c.Algebra, w.orig.Algebra, r.Start, w.src, w.bind),
				End:   ir.TransferExpr(c.Algebra, w.orig.Algebra, r.End, w.src, w.bind),
			})
		}
	})

	info := w.copyInfoCmd(cmd.Info)
	return []ir.Command{ir.ConnectCmd(
		ir.Access{Port: dstPort, Ranges: dstRanges},
		ir.Access{Port: srcPort, Ranges: srcRanges},
		info,
	)}
}

func (w *walker) walkFact(cmd ir.Command) []ir.Command {
	var newProp ir.PropIdx
	w.mutate(func(c *ir.Component) {
		newProp = ir.TransferProp(c.Algebra, w.orig.Algebra, cmd.TheFact.Prop, w.src, w.bind)
	})
	info := w.copyInfoCmd(cmd.Info)
	fact := ir.Fact{Prop: newProp, Reason: info, Checked: cmd.TheFact.Checked, Kind: cmd.TheFact.Kind}
	return []ir.Command{ir.FactCmd(fact, info)}
}
