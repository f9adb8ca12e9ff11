// Package lower translates the external ast.Namespace into an ir.Context
// (spec §2 "AST→IR lowering"). It is a structural translation: every
// surface construct maps onto exactly one IR construct, with identifiers
// resolved against each component's own param/event/port scope (recorded
// via ir.Component.SourceNames so later passes and diagnostics can still
// recover the user's original name).
package lower

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

const phase = "lower"

// lowerer carries the whole-namespace state threaded through lowering.
type lowerer struct {
	ctx     *ir.Context
	diags   *diagnostics.Buffer
	compIdx map[string]ir.CompIdx
	// localInst/localInv map a component's own instance/invoke surface
	// names to their indices, populated while lowering that component's
	// body and consulted immediately after (connects, further invokes).
	localInst map[string]ir.InstanceIdx
	localInv  map[string]ir.InvokeIdx
}

// Lower translates ns into a fresh ir.Context. User errors (undefined
// component/identifier, arity mismatches) are appended to diags; lowering
// continues past them on a best-effort basis so multiple errors surface in
// one run (spec §7).
func Lower(ns *ast.Namespace, diags *diagnostics.Buffer) *ir.Context {
	l := &lowerer{
		ctx:     ir.NewContext(),
		diags:   diags,
		compIdx: make(map[string]ir.CompIdx),
	}

	// Phase 1: allocate a stub component per decl so forward references
	// (an instance naming a component declared later) resolve.
	decls := l.allDecls(ns)
	for _, d := range decls {
		kind := astKind(d.Kind)
		comp := ir.NewComponent(d.Name, kind)
		idx := l.ctx.AddComponent(comp)
		l.compIdx[d.Name] = idx
	}
	for _, ext := range ns.Externs {
		l.ctx.Externs[l.compIdx[ext.Component.Name]] = ext.Path
	}

	// Phase 2: lower every signature so cross-component arity checks during
	// body lowering have something to check against.
	for _, d := range decls {
		l.lowerSignature(l.compIdx[d.Name], d)
	}

	// Phase 3: lower bodies for source components.
	for _, d := range decls {
		if d.Kind == ast.KindSource {
			l.lowerBody(l.compIdx[d.Name], d)
		}
		if d.Kind == ast.KindGenerated {
			l.ctx.MutComp(l.compIdx[d.Name], func(c *ir.Component) {
				// GenTool is stashed in the component name mapping table so
				// the monomorphization pass's generator call (spec §4.G
				// step 3) knows which tool to invoke.
				c.BindSourceName("gentool", d.GenTool, 0)
			})
		}
	}

	if ns.Entrypoint != "" {
		if idx, ok := l.compIdx[ns.Entrypoint]; ok {
			l.ctx.Entrypoint = idx
			l.ctx.HasEntry = true
		} else {
			l.diags.Error(phase, "", fmt.Sprintf("entrypoint %q is not a declared component", ns.Entrypoint), ir.ReasonMisc, nil, nil)
		}
	}

	return l.ctx
}

// allDecls flattens externs + top-level components into one list, in
// order, since both need a stub component.
func (l *lowerer) allDecls(ns *ast.Namespace) []ast.Component {
	var out []ast.Component
	for _, e := range ns.Externs {
		out = append(out, e.Component)
	}
	out = append(out, ns.Components...)
	return out
}

func astKind(k ast.ComponentKind) ir.CompKind {
	switch k {
	case ast.KindExternal:
		return ir.CompExternal
	case ast.KindGenerated:
		return ir.CompGenerated
	default:
		return ir.CompSource
	}
}

func toSourcePos(p ast.Pos) ir.SourcePos {
	return ir.SourcePos{File: p.File, Line: p.Line, Col: p.Col}
}
