// Package schedule is the SMT-backed pass of spec §4.H: it assigns
// concrete values to every unsolved `let` parameter and every invoke's
// start time in a single-event component, then retimes the component's
// connects so that every destination's liveness starts no earlier than
// its source's storage can actually supply it.
//
// This is the only pass that shells out to an external solver (spec §5);
// one subprocess is spawned and torn down per scheduled component.
package schedule

import (
	"fmt"
	"io"

	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/smt"
)

// Options configures the solver subprocess and the scheduling objective.
type Options struct {
	Goal       Goal
	SolverPath string
	SolverArgs []string
	// Replay, if non-nil, receives every line sent to every spawned
	// solver subprocess across the whole run (config.Options.ReplayFile).
	Replay io.Writer
}

// Run schedules every eligible component in ctx, in the topological
// (leaves-first) order every other whole-program pass uses, so that by
// the time a caller is scheduled, every component it instances already
// has fully concrete signature timing (spec §5 "iteration order is
// topological").
//
// Only CompSource components declaring exactly one interface event are
// eligible (spec §4.H "a single-event component"); externs and
// multi-event components carry no body for the scheduler to encode and
// are left untouched.
func Run(ctx *ir.Context, opts Options) error {
	for _, idx := range ctx.TopoOrder() {
		comp := ctx.Comp(idx)
		if comp.Kind != ir.CompSource || len(comp.EventArgs) != 1 {
			continue
		}

		sc, err := smt.NewContext(opts.SolverPath, opts.SolverArgs)
		if err != nil {
			return fmt.Errorf("schedule: spawning solver for %s: %w", comp.Name, err)
		}
		sc.Replay = opts.Replay

		sv := newSolver(ctx, comp, opts.Goal, sc)
		res, err := sv.run()
		closeErr := sc.Close()
		if err != nil {
			return fmt.Errorf("schedule: %s: %w", comp.Name, err)
		}
		if closeErr != nil {
			return fmt.Errorf("schedule: closing solver for %s: %w", comp.Name, closeErr)
		}

		applyBinding(ctx, idx, res.lets)
		if err := retime(ctx, idx, res); err != nil {
			return fmt.Errorf("schedule: retiming %s: %w", comp.Name, err)
		}
	}
	return nil
}

// applyBinding rewrites every solved let parameter's owner from "to be
// solved" to a concrete bound expression, the way any other pass that
// discovers a parameter's value records it (spec §3 "Params"). Every
// later fold through evalConcrete sees these as ordinary bound lets.
func applyBinding(ctx *ir.Context, idx ir.CompIdx, lets map[int]uint64) {
	if len(lets) == 0 {
		return
	}
	ctx.MutComp(idx, func(c *ir.Component) {
		for raw, val := range lets {
			p := ir.IndexFromRaw[ir.Param](raw)
			param := c.Params.Get(p)
			param.Owner = ir.BoundLetOwner(c.Algebra.Exprs.Concrete(val))
			c.Params.Set(p, param)
		}
	})
}
