// Package pipeline drives the whole pass order over an ir.Context (spec
// §2 "SYSTEM OVERVIEW"), from a freshly lowered namespace down to a
// monomorphic, scalar-ported, scheduled program ready for an RTL emitter.
package pipeline

import (
	"fmt"
	"os"

	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/config"
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/gen"
	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/lower"
	"github.com/sunholo/chronoc/internal/passes/assume"
	"github.com/sunholo/chronoc/internal/passes/bundleelim"
	"github.com/sunholo/chronoc/internal/passes/desugarcond"
	"github.com/sunholo/chronoc/internal/passes/domination"
	"github.com/sunholo/chronoc/internal/passes/inferassume"
	"github.com/sunholo/chronoc/internal/passes/interval"
	"github.com/sunholo/chronoc/internal/passes/mono"
	"github.com/sunholo/chronoc/internal/passes/phantom"
	"github.com/sunholo/chronoc/internal/passes/propsimplify"
	"github.com/sunholo/chronoc/internal/passes/schedule"
)

// Result is everything a completed run hands back to its caller.
type Result struct {
	Ctx        *ir.Context
	Entrypoint ir.CompIdx
	Diags      *diagnostics.Buffer
}

// Run lowers ns and drives it through every pass in order, validating the
// program's invariants after each one (spec §8 property 5: "Validate
// after every pass"). Monomorphization runs before bundle elimination,
// reversing the pipeline diagram's literal left-to-right order, because
// bundle elimination needs every loop already unrolled and every
// signature argument already concrete — exactly what monomorphization
// produces (see DESIGN.md, mono decision 4).
func Run(ns *ast.Namespace, generator gen.Generator, opts *config.Options) (*Result, error) {
	diags := diagnostics.NewBuffer()
	ctx := lower.Lower(ns, diags)
	if diags.HasErrors() {
		return &Result{Ctx: ctx, Diags: diags}, nil
	}

	validateAll(ctx, "lower")

	desugarcond.Run(ctx)
	validateAll(ctx, "desugarcond")

	inferassume.Run(ctx)
	validateAll(ctx, "inferassume")

	assume.Run(ctx)
	validateAll(ctx, "assume")

	interval.Run(ctx)
	validateAll(ctx, "interval")

	phantom.Run(ctx, diags)
	if diags.HasErrors() {
		return &Result{Ctx: ctx, Diags: diags}, nil
	}
	validateAll(ctx, "phantom")

	propsimplify.Run(ctx)
	validateAll(ctx, "propsimplify")

	entry := mono.Run(ctx, generator, diags)
	if diags.HasErrors() {
		return &Result{Ctx: ctx, Diags: diags}, nil
	}
	if entry.IsUnknown() {
		return &Result{Ctx: ctx, Diags: diags}, fmt.Errorf("pipeline: namespace declares no entrypoint")
	}
	validateAll(ctx, "mono")

	bundleelim.Run(ctx, entry)
	validateAll(ctx, "bundleelim")

	domination.Run(ctx)
	validateAll(ctx, "domination")

	schedOpts := schedule.Options{
		Goal:       opts.Goal(),
		SolverPath: opts.SolverPath,
		SolverArgs: opts.SolverArgs,
	}
	if opts.ReplayFile != "" {
		f, err := os.Create(opts.ReplayFile)
		if err != nil {
			return &Result{Ctx: ctx, Diags: diags}, fmt.Errorf("pipeline: opening replay file: %w", err)
		}
		defer f.Close()
		schedOpts.Replay = f
	}
	if err := schedule.Run(ctx, schedOpts); err != nil {
		return &Result{Ctx: ctx, Diags: diags}, err
	}
	validateAll(ctx, "schedule")

	return &Result{Ctx: ctx, Entrypoint: entry, Diags: diags}, nil
}

// validateAll runs ir.Validate over every live component and panics with
// an InternalError on the first violation found (spec §7: invariant
// violations caught by Validate are fatal, with no recovery attempt).
func validateAll(ctx *ir.Context, phase string) {
	for _, idx := range ctx.Components.Indices() {
		for _, err := range ir.Validate(ctx, idx) {
			diagnostics.Panic(phase, "validation failed: %v", err)
		}
	}
}
