// Package mono implements monomorphization (spec §4.G), the
// highest-structural pass: every component is specialized against a
// concrete tuple of signature-parameter values, producing a fresh
// component whose remaining symbolic content is only what the scheduler is
// meant to solve (unsolved `let`s and invoke event times). A global table
// keyed on (source component, concrete args) guarantees at most one
// specialization per distinct tuple, so two instances of the same
// polymorphic component with the same arguments collapse onto one
// monomorphized component (spec §8 property 2, "sharing").
package mono

import (
	"strconv"
	"strings"

	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/gen"
	"github.com/sunholo/chronoc/internal/ir"
)

const phase = "mono"

// CompKey pairs a source component with the concrete values bound to its
// signature parameters.
type CompKey struct {
	Comp ir.CompIdx
	vals string
}

func makeKey(comp ir.CompIdx, args []uint64) CompKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.FormatUint(a, 10)
	}
	return CompKey{Comp: comp, vals: strings.Join(parts, ",")}
}

// expansion records, for an external or generated component, how its
// specialized signature maps back onto the original port/event slots so a
// caller that only knows the original index can retarget a foreign
// reference onto the specialized component (spec §4.G step 2).
type expansion struct {
	specialized ir.CompIdx
	ports       map[int]ir.PortIdx
	events      map[int]ir.EventIdx
}

// Engine drives monomorphization over a whole program.
type Engine struct {
	ctx       *ir.Context
	gen       gen.Generator
	diags     *diagnostics.Buffer
	processed map[CompKey]*expansion
}

// Run monomorphizes the program's entrypoint (and transitively everything
// it instantiates) and returns the index of the specialized entrypoint.
// The original (polymorphic) components are left in ctx, unreferenced by
// the new instance graph, exactly as the teacher's own passes leave
// superseded state behind rather than compacting the arena mid-pipeline.
func Run(ctx *ir.Context, generator gen.Generator, diags *diagnostics.Buffer) ir.CompIdx {
	e := &Engine{ctx: ctx, gen: generator, diags: diags, processed: make(map[CompKey]*expansion)}
	if !ctx.HasEntry {
		return ir.Unknown[ir.Component]()
	}
	exp := e.monomorphize(ctx.Entrypoint, nil)
	return exp.specialized
}

// monomorphize implements spec §4.G's algorithm for one (comp, args) key.
func (e *Engine) monomorphize(src ir.CompIdx, args []uint64) *expansion {
	key := makeKey(src, args)
	if exp, ok := e.processed[key]; ok {
		return exp
	}

	orig := e.ctx.Comp(src)
	switch orig.Kind {
	case ir.CompExternal:
		return e.monomorphizeExternal(key, src, &orig, args)
	case ir.CompGenerated:
		return e.monomorphizeGenerated(key, src, &orig, args)
	default:
		return e.monomorphizeSource(key, src, &orig, args)
	}
}

// bindConcreteArgs creates the writer-side Bindings translating every
// signature param of orig to the concrete value supplied in args.
func bindConcreteArgs(writer *ir.Algebra, src ir.CompIdx, orig *ir.Component, args []uint64) *ir.Bindings {
	bind := ir.NewBindings()
	for i, p := range orig.ParamArgs {
		if i >= len(args) {
			break
		}
		bind.Params[ir.NewForeign(p, src)] = writer.Exprs.Concrete(args[i])
	}
	return bind
}

// specializeSignature clones orig's events and signature ports into dst
// under bind, returning per-slot maps from the original index to the new
// one (used by both the external/generated short paths and by the source
// path before it descends into the body).
func specializeSignature(dst *ir.Component, src ir.CompIdx, orig *ir.Component, bind *ir.Bindings) (portMap map[int]ir.PortIdx, eventMap map[int]ir.EventIdx) {
	portMap = make(map[int]ir.PortIdx)
	eventMap = make(map[int]ir.EventIdx)

	for _, eIdx := range orig.Events.Indices() {
		ev := orig.Events.Get(eIdx)
		delay := ir.TransferTimeSub(dst.Algebra, orig.Algebra, ev.Delay, src, bind)
		info := dst.AddInfo(copyInfo(orig, ev.Info))
		newIdx := dst.AddEvent(ir.Event{Delay: delay, Info: info, HasInterface: ev.HasInterface})
		eventMap[eIdx.Int()] = newIdx
		bind.Events[ir.NewForeign(eIdx, src)] = dst.Algebra.Times.Time(newIdx, dst.Algebra.Exprs.Concrete(0))
	}

	for _, pIdx := range orig.SigPortsOrdered() {
		port := orig.Ports.Get(pIdx)
		newIdx := specializePort(dst, src, orig, port, bind)
		portMap[pIdx.Int()] = newIdx
	}
	return portMap, eventMap
}

// specializePort transfers one port's width/liveness into dst under bind,
// creating fresh bundle-index params owned by the new port when the
// original port is still a bundle (bundle elimination, run after
// monomorphization, is what finally removes those dimensions).
func specializePort(dst *ir.Component, src ir.CompIdx, orig *ir.Component, port ir.Port, bind *ir.Bindings) ir.PortIdx {
	width := ir.TransferExpr(dst.Algebra, orig.Algebra, port.Width, src, bind)
	start := ir.TransferTime(dst.Algebra, orig.Algebra, port.Live.Range.Start, src, bind)
	end := ir.TransferTime(dst.Algebra, orig.Algebra, port.Live.Range.End, src, bind)
	lens := make([]ir.ExprIdx, len(port.Live.Lens))
	for i, l := range port.Live.Lens {
		lens[i] = ir.TransferExpr(dst.Algebra, orig.Algebra, l, src, bind)
	}

	info := dst.AddInfo(copyInfo(orig, port.Info))
	newIdx := dst.AddPort(ir.Port{
		Owner:       port.Owner,
		Width:       width,
		Live:        ir.Liveness{Range: ir.Range{Start: start, End: end}, Lens: lens},
		Info:        info,
		Unannotated: port.Unannotated,
	})

	idxs := make([]ir.ParamIdx, len(port.Live.Idxs))
	for i := range port.Live.Idxs {
		pInfo := dst.AddInfo(ir.Info{Kind: ir.InfoParam, Note: "bundle index"})
		idxs[i] = dst.AddParam(ir.Param{Owner: ir.BundleOwner(newIdx), Info: pInfo})
	}
	if len(idxs) > 0 {
		p := dst.Ports.Get(newIdx)
		p.Live.Idxs = idxs
		dst.Ports.Set(newIdx, p)
	}
	return newIdx
}

func copyInfo(orig *ir.Component, idx ir.InfoIdx) ir.Info {
	if !orig.Infos.Valid(idx) {
		return ir.Info{Kind: ir.InfoGenerated, Note: "monomorphized"}
	}
	return orig.Infos.Get(idx)
}

// monomorphizeExternal clones a non-generated external's signature only
// (spec §4.G step 2): no body exists to specialize, so every caller of this
// external with the same arguments shares one specialized declaration.
func (e *Engine) monomorphizeExternal(key CompKey, src ir.CompIdx, orig *ir.Component, args []uint64) *expansion {
	dst := ir.NewComponent(orig.Name, ir.CompExternal)
	bind := bindConcreteArgs(dst.Algebra, src, orig, args)
	portMap, eventMap := specializeSignature(dst, src, orig, bind)
	dst.ParamArgs = nil
	dst.EventArgs = nil
	for k, v := range orig.SourceNames {
		dst.SourceNames[k] = v
	}

	newIdx := e.ctx.AddComponent(dst)
	exp := &expansion{specialized: newIdx, ports: portMap, events: eventMap}
	e.processed[key] = exp
	return exp
}

// monomorphizeGenerated invokes the external generator interface (spec §6),
// pushes the existential values it returns into the specialization binding,
// then specializes the signature exactly like an external (spec §4.G
// step 3).
func (e *Engine) monomorphizeGenerated(key CompKey, src ir.CompIdx, orig *ir.Component, args []uint64) *expansion {
	tool := e.ctx.Externs[src]
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = strconv.FormatUint(a, 10)
	}

	out, err := e.gen.GenInstance(tool, gen.Instance{Name: orig.Name, Parameters: params})
	if err != nil {
		diagnostics.Panic(phase, "generator failed for %q: %v", orig.Name, err)
	}

	dst := ir.NewComponent(orig.Name, ir.CompGenerated)
	bind := bindConcreteArgs(dst.Algebra, src, orig, args)
	for _, ev := range out.ExistParams {
		if raw, ok := orig.LookupSourceName("param", ev.Name); ok {
			if n, perr := strconv.ParseUint(ev.Value, 10, 64); perr == nil {
				bind.Params[ir.NewForeign(ir.IndexFromRaw[ir.Param](raw), src)] = dst.Algebra.Exprs.Concrete(n)
			}
		}
	}

	portMap, eventMap := specializeSignature(dst, src, orig, bind)
	for k, v := range orig.SourceNames {
		dst.SourceNames[k] = v
	}
	newIdx := e.ctx.AddComponent(dst)
	e.ctx.Externs[newIdx] = out.File

	exp := &expansion{specialized: newIdx, ports: portMap, events: eventMap}
	e.processed[key] = exp
	return exp
}

// monomorphizeSource is spec §4.G step 4: the full body-walking
// specialization for a component defined with source.
func (e *Engine) monomorphizeSource(key CompKey, src ir.CompIdx, orig *ir.Component, args []uint64) *expansion {
	dst := ir.NewComponent(orig.Name, ir.CompSource)
	bind := bindConcreteArgs(dst.Algebra, src, orig, args)
	portMap, eventMap := specializeSignature(dst, src, orig, bind)
	dst.ParamArgs = nil
	dst.EventArgs = nil

	newIdx := e.ctx.AddComponent(dst)
	exp := &expansion{specialized: newIdx, ports: portMap, events: eventMap}
	e.processed[key] = exp

	w := &walker{
		e:      e,
		src:    src,
		orig:   orig,
		dstIdx: newIdx,
		bind:   bind,
		ports:  portMap,
		insts:  make(map[int]instResult),
	}
	body := w.walk(orig.Body)

	e.ctx.MutComp(newIdx, func(c *ir.Component) {
		c.Body = body
		for _, f := range orig.ParamAsserts {
			c.ParamAsserts = append(c.ParamAsserts, ir.Assert(
				ir.TransferProp(c.Algebra, orig.Algebra, f.Prop, src, bind), f.Reason, f.Kind))
		}
		for _, f := range orig.EventAsserts {
			c.EventAsserts = append(c.EventAsserts, ir.Assert(
				ir.TransferProp(c.Algebra, orig.Algebra, f.Prop, src, bind), f.Reason, f.Kind))
		}
		for _, f := range orig.ExistentialAssumes {
			c.ExistentialAssumes = append(c.ExistentialAssumes, ir.Assume(
				ir.TransferProp(c.Algebra, orig.Algebra, f.Prop, src, bind), f.Reason))
		}
	})

	return exp
}
