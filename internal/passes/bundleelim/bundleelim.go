// Package bundleelim implements bundle elimination (spec §4.F): every
// parameter-indexed port array is expanded into its constituent scalar
// ports, local bundle-defined ports are resolved away into direct
// forwarding links, and every Connect over a range is expanded into one
// scalar Connect per element. It runs after monomorphization, which is
// what guarantees every bundle dimension length is a concrete integer by
// the time this pass inspects it (spec §4.F "edge-case policy").
package bundleelim

import (
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

const phase = "bundleelim"

// sigExpansion records how one bundle port was scalarized: its concrete
// per-dimension lengths and the flat list of scalar replacement ports in
// row-major multi-index order. A non-bundle port expands to itself, with a
// nil lens (the empty product has exactly one "element").
type sigExpansion struct {
	lens  []uint64
	ports []ir.PortIdx
}

func (e *sigExpansion) at(idx []uint64) ir.PortIdx {
	flat := flatIndex(idx, e.lens)
	if flat >= uint64(len(e.ports)) {
		diagnostics.Panic(phase, "bundle index out of range during expansion")
	}
	return e.ports[flat]
}

func flatIndex(idx, lens []uint64) uint64 {
	var flat uint64
	for i, v := range idx {
		flat = flat*lens[i] + v
	}
	return flat
}

// Run eliminates bundles from every component reachable from root, visiting
// targets before instantiators so that a caller's invoke-pass expansion can
// look up its target's already-published signature table (spec §4.F step
// 2).
func Run(ctx *ir.Context, root ir.CompIdx) {
	tables := make(map[int][]*sigExpansion)
	for _, idx := range reachableTopoOrder(ctx, root) {
		tables[idx.Int()] = elimComponent(ctx, idx, tables)
	}
}

func reachableTopoOrder(ctx *ir.Context, root ir.CompIdx) []ir.CompIdx {
	visited := make(map[int]bool)
	var order []ir.CompIdx
	var visit func(idx ir.CompIdx)
	visit = func(idx ir.CompIdx) {
		if visited[idx.Int()] {
			return
		}
		visited[idx.Int()] = true
		c := ctx.Comp(idx)
		for _, instIdx := range c.Instances.Indices() {
			inst := c.Instances.Get(instIdx)
			if ctx.Components.Valid(inst.Comp) {
				visit(inst.Comp)
			}
		}
		order = append(order, idx)
	}
	visit(root)
	return order
}

// portFlat names one scalar element of a (possibly still-bundled) port
// reference, the unit the local-port forwarding map and the final Connect
// expansion both operate over.
type portFlat struct {
	port int
	flat uint64
}

// elimComponent runs all five steps of spec §4.F over one component and
// returns the published expansion table for its signature ports, in
// declaration order, for use by any caller that later invokes it.
func elimComponent(ctx *ir.Context, idx ir.CompIdx, tables map[int][]*sigExpansion) []*sigExpansion {
	c := ctx.Comp(idx)

	local := make(map[int]*sigExpansion) // every port this component owns, by original raw id
	deletedParams := make(map[int]bool)

	// Step 1: signature pass.
	sigOrder := c.SigPortsOrdered()
	sigTable := make([]*sigExpansion, len(sigOrder))
	for i, pIdx := range sigOrder {
		exp := expandPort(&c, pIdx, nil, deletedParams)
		sigTable[i] = exp
		local[pIdx.Int()] = exp
	}

	// Step 2: invoke pass.
	for _, invIdx := range c.Invokes.Indices() {
		inv := c.Invokes.Get(invIdx)
		inst := c.Instances.Get(inv.Inst)
		targetTable := tables[inst.Comp.Int()]

		var flattened []ir.PortIdx
		for i, pIdx := range inv.Ports {
			var retarget *sigExpansion
			if i < len(targetTable) {
				retarget = targetTable[i]
			}
			exp := expandPort(&c, pIdx, retarget, deletedParams)
			local[pIdx.Int()] = exp
			flattened = append(flattened, exp.ports...)
		}
		inv.Ports = flattened
		c.Invokes.Set(invIdx, inv)
	}

	// Local bundle-def ports never materialize scalar replacement ports:
	// they are pure aliases, resolved away by step 3's forwarding map, so
	// only their shape (lens) and deleted index params are recorded here.
	localLens := make(map[int][]uint64)
	for _, cmd := range c.Body {
		if cmd.Kind != ir.CmdBundleDef {
			continue
		}
		port := c.Ports.Get(cmd.BundlePort)
		lens := concreteLens(&c, port.Live.Lens)
		localLens[cmd.BundlePort.Int()] = lens
		for _, p := range port.Live.Idxs {
			deletedParams[p.Int()] = true
		}
	}
	for rawPort := range localLens {
		pIdx := ir.IndexFromRaw[ir.Port](rawPort)
		port := c.Ports.Get(pIdx)
		for _, p := range port.Live.Idxs {
			c.Params.Delete(p)
		}
		c.Ports.Delete(pIdx)
	}

	// Step 3: local-port forwarding.
	forward := make(map[portFlat]portFlat)
	var surviving []ir.Command
	for _, cmd := range c.Body {
		switch cmd.Kind {
		case ir.CmdBundleDef:
			continue // dropped, step 5
		case ir.CmdConnect:
			if lens, ok := localLens[cmd.Dst.Port.Int()]; ok {
				recordForwarding(&c, forward, cmd, cmd.Dst.Port.Int(), lens)
				continue
			}
			surviving = append(surviving, cmd)
		default:
			surviving = append(surviving, cmd)
		}
	}

	// Step 4: connect expansion; step 5's "facts mentioning deleted params
	// are dropped" is applied as the final filter below.
	var out []ir.Command
	for _, cmd := range surviving {
		if cmd.Kind != ir.CmdConnect {
			if cmd.Kind == ir.CmdFact && mentionsDeletedParam(c.Algebra, cmd.TheFact.Prop, deletedParams) {
				continue
			}
			out = append(out, cmd)
			continue
		}
		out = append(out, expandConnect(&c, cmd, local, forward)...)
	}
	c.Body = out

	ctx.Components.Set(idx, c)
	return sigTable
}

func concreteLens(c *ir.Component, lens []ir.ExprIdx) []uint64 {
	out := make([]uint64, len(lens))
	for i, l := range lens {
		v, ok := c.Algebra.Exprs.AsConcrete(l)
		if !ok {
			diagnostics.Panic(phase, "bundle dimension length not concrete in %q (monomorphization must run first)", c.Name)
		}
		out[i] = v
	}
	return out
}

// expandPort scalarizes one bundle port into the product of its dimension
// lengths, substituting each dimension's index parameter for its concrete
// value in Width and the liveness range (spec §4.F step 1). When retarget
// is non-nil (the invoke pass, step 2) each replica's Owner.Base is
// rewritten to address the corresponding scalar port of the target's own
// expansion table instead of the target's original (now-deleted) port.
func expandPort(c *ir.Component, portIdx ir.PortIdx, retarget *sigExpansion, deletedParams map[int]bool) *sigExpansion {
	port := c.Ports.Get(portIdx)
	if len(port.Live.Lens) == 0 {
		if retarget != nil {
			p := port
			p.Owner.Base = ir.NewForeign(retarget.at(nil), p.Owner.Base.Owner)
			c.Ports.Set(portIdx, p)
		}
		return &sigExpansion{ports: []ir.PortIdx{portIdx}}
	}

	lens := concreteLens(c, port.Live.Lens)
	var scalarPorts []ir.PortIdx
	multi := make([]uint64, len(lens))

	var emit func(dim int)
	emit = func(dim int) {
		if dim == len(lens) {
			sub := ir.NewSubst()
			for j, p := range port.Live.Idxs {
				v := multi[j]
				sub.BindParam(p, c.Algebra.Exprs.Concrete(v))
			}
			width := sub.FoldExpr(c.Algebra, port.Width)
			start := sub.FoldTime(c.Algebra, port.Live.Range.Start)
			end := sub.FoldTime(c.Algebra, port.Live.Range.End)

			owner := port.Owner
			if retarget != nil {
				idx := make([]uint64, len(multi))
				copy(idx, multi)
				owner.Base = ir.NewForeign(retarget.at(idx), owner.Base.Owner)
			}

			info := c.AddInfo(ir.Info{Kind: ir.InfoPort, Note: "scalarized by bundle elimination"})
			newIdx := c.AddPort(ir.Port{
				Owner:       owner,
				Width:       width,
				Live:        ir.Liveness{Range: ir.Range{Start: start, End: end}},
				Info:        info,
				Unannotated: port.Unannotated,
			})
			scalarPorts = append(scalarPorts, newIdx)
			return
		}
		for v := uint64(0); v < lens[dim]; v++ {
			multi[dim] = v
			emit(dim + 1)
		}
	}
	emit(0)

	for _, p := range port.Live.Idxs {
		deletedParams[p.Int()] = true
		c.Params.Delete(p)
	}
	c.Ports.Delete(portIdx)

	return &sigExpansion{lens: lens, ports: scalarPorts}
}

// recordForwarding enumerates a Connect whose destination is a local
// bundle-defined port, mapping each destination flat index to the
// corresponding source (port, flat index) pair — not yet resolved through
// any further forwarding, which happens lazily when the mapping is chased
// (spec §4.F step 3, "tie-breaking ... is first write wins").
func recordForwarding(c *ir.Component, forward map[portFlat]portFlat, cmd ir.Command, dstRaw int, portLens []uint64) {
	dstLens := accessLens(c, cmd.Dst.Ranges, portLens)
	srcLens := accessLens(c, cmd.Src.Ranges, nil)
	if !lensEqual(dstLens, srcLens) {
		diagnostics.Panic(phase, "local-port forward length mismatch in %q", c.Name)
	}
	dstStarts := accessStarts(c, cmd.Dst.Ranges, len(dstLens))
	srcStarts := accessStarts(c, cmd.Src.Ranges, len(srcLens))
	srcRaw := cmd.Src.Port.Int()

	forEachMultiIndex(srcLens, func(rel []uint64) {
		dstAbs := addOffset(rel, dstStarts)
		srcAbs := addOffset(rel, srcStarts)
		key := portFlat{port: dstRaw, flat: flatIndex(dstAbs, dstLens)}
		if _, exists := forward[key]; exists {
			return // first write wins
		}
		forward[key] = portFlat{port: srcRaw, flat: flatIndex(srcAbs, srcLens)}
	})
}

// expandConnect enumerates the cartesian product of a surviving Connect's
// ranges and emits one scalar Connect per element, chasing the source
// through the local-port forwarding map (potentially multi-hop) to find
// the ultimate signature/invoke scalar port (spec §4.F step 4).
func expandConnect(c *ir.Component, cmd ir.Command, local map[int]*sigExpansion, forward map[portFlat]portFlat) []ir.Command {
	dstExp, ok := local[cmd.Dst.Port.Int()]
	if !ok {
		diagnostics.Panic(phase, "connect destination port has no expansion entry in %q", c.Name)
	}
	srcExp, hasSrcExp := local[cmd.Src.Port.Int()]
	var srcPortLens []uint64
	if hasSrcExp {
		srcPortLens = srcExp.lens
	}

	dstLens := accessLens(c, cmd.Dst.Ranges, dstExp.lens)
	srcLens := accessLens(c, cmd.Src.Ranges, srcPortLens)
	if !lensEqual(dstLens, srcLens) {
		diagnostics.Panic(phase, "connect dimension lengths do not match in %q", c.Name)
	}

	dstStarts := accessStarts(c, cmd.Dst.Ranges, len(dstLens))
	srcStarts := accessStarts(c, cmd.Src.Ranges, len(srcLens))
	dstRaw := cmd.Dst.Port.Int()
	srcRaw := cmd.Src.Port.Int()

	var out []ir.Command
	forEachMultiIndex(dstLens, func(rel []uint64) {
		dstAbs := addOffset(rel, dstStarts)
		dstPort := dstExp.at(dstAbs)

		var srcPort ir.PortIdx
		if hasSrcExp {
			srcAbs := addOffset(rel, srcStarts)
			srcPort = srcExp.at(srcAbs)
		} else {
			srcAbs := addOffset(rel, srcStarts)
			resolved := chase(forward, portFlat{port: srcRaw, flat: flatIndex(srcAbs, srcLens)})
			exp, ok := local[resolved.port]
			if !ok {
				diagnostics.Panic(phase, "forwarded connect source has no expansion entry in %q", c.Name)
			}
			srcPort = exp.ports[resolved.flat]
		}

		info := c.AddInfo(ir.Info{Note: "scalarized by bundle elimination"})
		out = append(out, ir.ConnectCmd(ir.Access{Port: dstPort}, ir.Access{Port: srcPort}, info))
	})
	return out
}

func chase(forward map[portFlat]portFlat, key portFlat) portFlat {
	seen := make(map[portFlat]bool)
	for {
		next, ok := forward[key]
		if !ok {
			return key
		}
		if seen[key] {
			diagnostics.Panic(phase, "cyclic local-port forwarding")
		}
		seen[key] = true
		key = next
	}
}

// accessLens returns the shape an Access actually enumerates: the connect's
// own explicit per-dimension ranges when given (a sliced sub-access), or
// else the full declared shape of the port being accessed (an un-sliced
// reference to the whole, possibly scalar, port).
func accessLens(c *ir.Component, ranges []ir.ExprRange, fullPortLens []uint64) []uint64 {
	if len(ranges) > 0 {
		return rangeLens(c, ranges)
	}
	return fullPortLens
}

// accessStarts mirrors accessLens: explicit per-dimension range offsets
// when given, or an all-zero origin for an un-sliced whole-port reference.
func accessStarts(c *ir.Component, ranges []ir.ExprRange, dims int) []uint64 {
	if len(ranges) > 0 {
		return rangeStarts(c, ranges)
	}
	return make([]uint64, dims)
}

func rangeLens(c *ir.Component, ranges []ir.ExprRange) []uint64 {
	lens := make([]uint64, len(ranges))
	for i, r := range ranges {
		s, sok := c.Algebra.Exprs.AsConcrete(r.Start)
		e, eok := c.Algebra.Exprs.AsConcrete(r.End)
		if !sok || !eok {
			diagnostics.Panic(phase, "connect range bound not concrete in %q", c.Name)
		}
		if e < s {
			diagnostics.Panic(phase, "connect range end precedes start in %q", c.Name)
		}
		lens[i] = e - s
	}
	return lens
}

func rangeStarts(c *ir.Component, ranges []ir.ExprRange) []uint64 {
	starts := make([]uint64, len(ranges))
	for i, r := range ranges {
		s, _ := c.Algebra.Exprs.AsConcrete(r.Start)
		starts[i] = s
	}
	return starts
}

func lensEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func addOffset(rel, starts []uint64) []uint64 {
	out := make([]uint64, len(rel))
	for i, v := range rel {
		out[i] = v + starts[i]
	}
	return out
}

func forEachMultiIndex(lens []uint64, fn func(idx []uint64)) {
	idx := make([]uint64, len(lens))
	var rec func(dim int)
	rec = func(dim int) {
		if dim == len(lens) {
			cp := make([]uint64, len(idx))
			copy(cp, idx)
			fn(cp)
			return
		}
		for v := uint64(0); v < lens[dim]; v++ {
			idx[dim] = v
			rec(dim + 1)
		}
	}
	rec(0)
}

func mentionsDeletedParam(alg *ir.Algebra, p ir.PropIdx, deleted map[int]bool) bool {
	v := alg.Props.Get(p)
	switch v.Kind {
	case ir.PropCmpKind:
		return exprMentions(alg, v.CmpLhs, deleted) || exprMentions(alg, v.CmpRhs, deleted)
	case ir.PropTimeCmpKind:
		return timeMentions(alg, v.TimeLhs, deleted) || timeMentions(alg, v.TimeRhs, deleted)
	case ir.PropTimeSubCmpKind:
		return timeSubMentions(alg, v.TSubLhs, deleted) || timeSubMentions(alg, v.TSubRhs, deleted)
	case ir.PropNotKind:
		return mentionsDeletedParam(alg, v.Operand, deleted)
	case ir.PropAndKind, ir.PropOrKind, ir.PropImpliesKind:
		return mentionsDeletedParam(alg, v.Lhs, deleted) || mentionsDeletedParam(alg, v.Rhs, deleted)
	default:
		return false
	}
}

func exprMentions(alg *ir.Algebra, e ir.ExprIdx, deleted map[int]bool) bool {
	v := alg.Exprs.Get(e)
	switch v.Kind {
	case ir.ExprParamKind:
		return deleted[v.Param.Int()]
	case ir.ExprBinKind:
		return exprMentions(alg, v.Lhs, deleted) || exprMentions(alg, v.Rhs, deleted)
	case ir.ExprFnKind:
		for _, a := range alg.Exprs.FnArgs(v) {
			if exprMentions(alg, a, deleted) {
				return true
			}
		}
		return false
	case ir.ExprIfKind:
		return mentionsDeletedParam(alg, v.Cond, deleted) || exprMentions(alg, v.Then, deleted) || exprMentions(alg, v.Else, deleted)
	default:
		return false
	}
}

func timeMentions(alg *ir.Algebra, t ir.TimeIdx, deleted map[int]bool) bool {
	return exprMentions(alg, alg.Times.GetTime(t).Offset, deleted)
}

func timeSubMentions(alg *ir.Algebra, ts ir.TimeSubIdx, deleted map[int]bool) bool {
	v := alg.Times.GetTimeSub(ts)
	switch v.Kind {
	case ir.TimeSubUnitKind:
		return exprMentions(alg, v.Unit, deleted)
	case ir.TimeSubSymKind:
		return timeMentions(alg, v.A, deleted) || timeMentions(alg, v.B, deleted)
	default:
		return false
	}
}
