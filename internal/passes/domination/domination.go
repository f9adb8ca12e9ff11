// Package domination rewrites each component's command list so that every
// definition dominates its uses (spec §2 "build domination"), grounded on
// the original implementation's build_domination pass: within each scope,
// instances and let-bound parameters are hoisted to the front (ordered so a
// parameter's defining instance/let precedes every command that reads it),
// followed by invocations, followed by every other command in its original
// relative order. Loop bodies and if-branches are scopes of their own and
// are hoisted independently, recursively.
//
// This guarantees the scheduler (spec §4.H) can assign a port's start/end
// symbol and an invoke's `t_I` exactly once, before any connect or later
// invoke reads it — the schedule pass's solver encodes Connect edges in
// body order and assumes defs already dominate uses.
package domination

import (
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

const phase = "domination"

// Run hoists every component's body in ctx.
func Run(ctx *ir.Context) {
	for _, idx := range ctx.Components.Indices() {
		ctx.MutComp(idx, func(c *ir.Component) {
			c.Body = sortScope(c, c.Body)
		})
	}
}

// sortScope hoists insts/lets/invokes to the front of cmds, recursing into
// nested loop/if scopes first so the whole tree is dominated bottom-up.
func sortScope(c *ir.Component, cmds []ir.Command) []ir.Command {
	var insts, lets, invs, rest []ir.Command
	for _, cmd := range cmds {
		switch cmd.Kind {
		case ir.CmdInstance:
			insts = append(insts, cmd)
		case ir.CmdLet:
			lets = append(lets, cmd)
		case ir.CmdInvoke:
			invs = append(invs, cmd)
		case ir.CmdForLoop:
			cmd.Body = sortScope(c, cmd.Body)
			rest = append(rest, cmd)
		case ir.CmdIf:
			cmd.Then = sortScope(c, cmd.Then)
			cmd.Alt = sortScope(c, cmd.Alt)
			rest = append(rest, cmd)
		default:
			rest = append(rest, cmd)
		}
	}

	out := make([]ir.Command, 0, len(cmds))
	out = append(out, sortInstsLets(c, insts, lets)...)
	out = append(out, invs...)
	out = append(out, rest...)
	return out
}

// sortInstsLets topologically sorts insts and lets of one scope so that a
// parameter's defining command always precedes every command whose
// expression reads that parameter (an instance's existential-export params,
// or a let's own bound param). Ties keep the original relative order,
// matching a stable topological sort without needing a third-party
// topo-sort library (none in the pack speaks Go).
func sortInstsLets(c *ir.Component, insts, lets []ir.Command) []ir.Command {
	cmds := make([]ir.Command, 0, len(insts)+len(lets))
	cmds = append(cmds, insts...)
	cmds = append(cmds, lets...)
	if len(cmds) <= 1 {
		return cmds
	}

	paramOwner := make(map[int]int, len(cmds))
	for id, cmd := range cmds {
		switch cmd.Kind {
		case ir.CmdInstance:
			inst := c.Instances.Get(cmd.Inst)
			for _, p := range inst.Params {
				paramOwner[p.Int()] = id
			}
		case ir.CmdLet:
			paramOwner[cmd.LetParam.Int()] = id
		}
	}

	deps := make([][]int, len(cmds))
	for id, cmd := range cmds {
		var used []ir.ParamIdx
		switch cmd.Kind {
		case ir.CmdInstance:
			inst := c.Instances.Get(cmd.Inst)
			for _, a := range inst.Args {
				used = append(used, exprParams(c.Algebra, a)...)
			}
		case ir.CmdLet:
			if cmd.LetHasExpr {
				used = append(used, exprParams(c.Algebra, cmd.LetExpr)...)
			}
		}
		for _, p := range used {
			if owner, ok := paramOwner[p.Int()]; ok && owner != id {
				deps[id] = append(deps[id], owner)
			}
		}
	}

	return kahn(cmds, deps)
}

// kahn runs a stable topological sort: at every round it emits, in original
// index order, every not-yet-emitted command whose dependencies are all
// already emitted. O(n^2) in the scope size, which is small (one
// component's single scope of instances/lets), and deterministic.
func kahn(cmds []ir.Command, deps [][]int) []ir.Command {
	n := len(cmds)
	done := make([]bool, n)
	out := make([]ir.Command, 0, n)
	for len(out) < n {
		progressed := false
		for id := 0; id < n; id++ {
			if done[id] {
				continue
			}
			ready := true
			for _, d := range deps[id] {
				if !done[d] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			out = append(out, cmds[id])
			done[id] = true
			progressed = true
		}
		if !progressed {
			diagnostics.Panic(phase, "cyclic parameter dependency among instances/lets in one scope")
		}
	}
	return out
}

func exprParams(alg *ir.Algebra, e ir.ExprIdx) []ir.ParamIdx {
	v := alg.Exprs.Get(e)
	switch v.Kind {
	case ir.ExprParamKind:
		return []ir.ParamIdx{v.Param}
	case ir.ExprBinKind:
		out := exprParams(alg, v.Lhs)
		return append(out, exprParams(alg, v.Rhs)...)
	case ir.ExprFnKind:
		var out []ir.ParamIdx
		for _, a := range alg.Exprs.FnArgs(v) {
			out = append(out, exprParams(alg, a)...)
		}
		return out
	case ir.ExprIfKind:
		out := propParams(alg, v.Cond)
		out = append(out, exprParams(alg, v.Then)...)
		out = append(out, exprParams(alg, v.Else)...)
		return out
	}
	return nil
}

func propParams(alg *ir.Algebra, p ir.PropIdx) []ir.ParamIdx {
	v := alg.Props.Get(p)
	switch v.Kind {
	case ir.PropCmpKind:
		out := exprParams(alg, v.CmpLhs)
		return append(out, exprParams(alg, v.CmpRhs)...)
	case ir.PropTimeCmpKind:
		out := timeParams(alg, v.TimeLhs)
		return append(out, timeParams(alg, v.TimeRhs)...)
	case ir.PropTimeSubCmpKind:
		out := timeSubParams(alg, v.TSubLhs)
		return append(out, timeSubParams(alg, v.TSubRhs)...)
	case ir.PropNotKind:
		return propParams(alg, v.Operand)
	case ir.PropAndKind, ir.PropOrKind, ir.PropImpliesKind:
		out := propParams(alg, v.Lhs)
		return append(out, propParams(alg, v.Rhs)...)
	}
	return nil
}

func timeParams(alg *ir.Algebra, t ir.TimeIdx) []ir.ParamIdx {
	return exprParams(alg, alg.Times.GetTime(t).Offset)
}

func timeSubParams(alg *ir.Algebra, ts ir.TimeSubIdx) []ir.ParamIdx {
	v := alg.Times.GetTimeSub(ts)
	if v.Kind == ir.TimeSubUnitKind {
		return exprParams(alg, v.Unit)
	}
	out := timeParams(alg, v.A)
	return append(out, timeParams(alg, v.B)...)
}
