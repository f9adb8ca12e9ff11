// Package phantom checks for signature parameters that are never actually
// used by a component — they appear in no port width, no liveness range,
// no assertion, and no instance argument — which almost always indicates a
// typo or a leftover parameter from a refactor. Unlike the interval
// checker, this is a pure lint: it reports through the diagnostics buffer
// as a warning rather than emitting an SMT-discharged VC (spec §7:
// "Warnings ... do not fail compilation").
package phantom

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

const phase = "phantom"

// Run reports, via diags, every signature parameter of every component that
// is never referenced anywhere reachable from that component's own algebra,
// ports, asserts, or instance args.
func Run(ctx *ir.Context, diags *diagnostics.Buffer) {
	for _, idx := range ctx.Components.Indices() {
		comp := ctx.Comp(idx)
		check(comp, diags)
	}
}

func check(c ir.Component, diags *diagnostics.Buffer) {
	if len(c.ParamArgs) == 0 {
		return
	}
	used := make(map[int]bool, len(c.ParamArgs))
	mark := func(p ir.ParamIdx) { used[p.Int()] = true }

	for _, e := range c.Algebra.Exprs.Indices() {
		v := c.Algebra.Exprs.Get(e)
		if v.Kind == ir.ExprParamKind {
			mark(v.Param)
		}
	}
	for _, pIdx := range c.Ports.Indices() {
		for _, dim := range c.Ports.Get(pIdx).Live.Idxs {
			mark(dim)
		}
	}
	for _, instIdx := range c.Instances.Indices() {
		inst := c.Instances.Get(instIdx)
		if inst.Params != nil {
			for _, p := range inst.Params {
				mark(p)
			}
		}
	}

	for _, sigParam := range c.ParamArgs {
		if used[sigParam.Int()] {
			continue
		}
		info := c.Params.Get(sigParam).Info
		name := "<unnamed>"
		pos := ir.SourcePos{}
		if c.Infos.Valid(info) {
			in := c.Infos.Get(info)
			if in.Name != "" {
				name = in.Name
			}
			pos = in.Pos
		}
		diags.Warn(phase, c.Name, fmt.Sprintf("parameter %q is never used", name), diagnostics.FromSourcePos(pos))
	}
}

