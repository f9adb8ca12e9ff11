package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/fixtures"
	"github.com/sunholo/chronoc/internal/gen"
	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/lower"
	"github.com/sunholo/chronoc/internal/passes/assume"
	"github.com/sunholo/chronoc/internal/passes/desugarcond"
	"github.com/sunholo/chronoc/internal/passes/inferassume"
	"github.com/sunholo/chronoc/internal/passes/interval"
	"github.com/sunholo/chronoc/internal/passes/phantom"
	"github.com/sunholo/chronoc/internal/passes/propsimplify"
)

func lowerAndPrepare(t *testing.T, fixture string) (*ir.Context, *diagnostics.Buffer) {
	t.Helper()
	diags := diagnostics.NewBuffer()
	ctx := lower.Lower(fixtures.Get(fixture), diags)
	require.False(t, diags.HasErrors(), "lowering %q produced errors", fixture)

	desugarcond.Run(ctx)
	inferassume.Run(ctx)
	assume.Run(ctx)
	interval.Run(ctx)
	phantom.Run(ctx, diags)
	require.False(t, diags.HasErrors(), "phantom pass over %q produced errors", fixture)
	propsimplify.Run(ctx)
	return ctx, diags
}

func TestMakeKeyDistinguishesAndDedupsArgs(t *testing.T) {
	c := ir.IndexFromRaw[ir.Component](0)
	k1 := makeKey(c, []uint64{1, 2})
	k2 := makeKey(c, []uint64{1, 3})
	k3 := makeKey(c, []uint64{1, 2})
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, k3)
}

func TestRunReturnsUnknownWithNoEntrypoint(t *testing.T) {
	ctx := ir.NewContext()
	diags := diagnostics.NewBuffer()
	entry := Run(ctx, gen.NewFake(), diags)
	assert.True(t, entry.IsUnknown())
}

func TestRunSpecializesEntrypointAndSharesIdenticalInstances(t *testing.T) {
	ctx, diags := lowerAndPrepare(t, "buffered")

	entry := Run(ctx, gen.NewFake(), diags)
	require.False(t, diags.HasErrors())
	require.False(t, entry.IsUnknown())

	entryComp := ctx.Comp(entry)
	assert.Equal(t, "Buffered", entryComp.Name)
	assert.Equal(t, ir.CompSource, entryComp.Kind)
	assert.Nil(t, entryComp.ParamArgs, "a specialized component carries no further signature params")
	assert.NotEmpty(t, entryComp.Body)

	// buffered instances Passthrough twice with identical WIDTH args, so
	// monomorphization must collapse both onto a single specialization:
	// the original plus exactly one specialized copy should exist.
	passthroughCount := 0
	for _, idx := range ctx.Components.Indices() {
		if ctx.Comp(idx).Name == "Passthrough" {
			passthroughCount++
		}
	}
	assert.Equal(t, 2, passthroughCount, "original Passthrough plus one shared specialization")
}
