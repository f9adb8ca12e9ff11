package bundleelim

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
	"github.com/sunholo/chronoc/internal/passes/domination"
	"github.com/sunholo/chronoc/internal/passes/inferassume"
	"github.com/sunholo/chronoc/internal/passes/interval"
	"github.com/sunholo/chronoc/internal/passes/mono"
	"github.com/sunholo/chronoc/internal/passes/phantom"
	"github.com/sunholo/chronoc/internal/passes/propsimplify"
)

func TestFlatIndexRowMajor(t *testing.T) {
	lens := []uint64{2, 3}
	assert.Equal(t, uint64(0), flatIndex([]uint64{0, 0}, lens))
	assert.Equal(t, uint64(1), flatIndex([]uint64{0, 1}, lens))
	assert.Equal(t, uint64(3), flatIndex([]uint64{1, 0}, lens))
	assert.Equal(t, uint64(5), flatIndex([]uint64{1, 2}, lens))
}

func TestLensEqual(t *testing.T) {
	assert.True(t, lensEqual([]uint64{1, 2}, []uint64{1, 2}))
	assert.False(t, lensEqual([]uint64{1, 2}, []uint64{1, 3}))
	assert.False(t, lensEqual([]uint64{1}, []uint64{1, 2}))
}

func TestAddOffset(t *testing.T) {
	assert.Equal(t, []uint64{3, 5}, addOffset([]uint64{1, 2}, []uint64{2, 3}))
}

func TestForEachMultiIndexEnumeratesCartesianProduct(t *testing.T) {
	var got [][]uint64
	forEachMultiIndex([]uint64{2, 2}, func(idx []uint64) {
		cp := make([]uint64, len(idx))
		copy(cp, idx)
		got = append(got, cp)
	})
	assert.Equal(t, [][]uint64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, got)
}

func TestChaseFollowsMultiHopForwarding(t *testing.T) {
	forward := map[portFlat]portFlat{
		{port: 1, flat: 0}: {port: 2, flat: 0},
		{port: 2, flat: 0}: {port: 3, flat: 0},
	}
	got := chase(forward, portFlat{port: 1, flat: 0})
	assert.Equal(t, portFlat{port: 3, flat: 0}, got)
}

func TestChaseReturnsKeyUnchangedWhenUnforwarded(t *testing.T) {
	forward := map[portFlat]portFlat{}
	got := chase(forward, portFlat{port: 5, flat: 2})
	assert.Equal(t, portFlat{port: 5, flat: 2}, got)
}

func TestChasePanicsOnCycle(t *testing.T) {
	forward := map[portFlat]portFlat{
		{port: 1, flat: 0}: {port: 2, flat: 0},
		{port: 2, flat: 0}: {port: 1, flat: 0},
	}
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected chase to panic on a cyclic forwarding map")
		ierr, ok := r.(*diagnostics.InternalError)
		require.True(t, ok, "expected a *diagnostics.InternalError panic, got %T", r)
		assert.Contains(t, ierr.Message, "cyclic")
	}()
	chase(forward, portFlat{port: 1, flat: 0})
}

// TestRunOverScalarOnlyProgramIsANoOp exercises the full prior pipeline
// (lower through domination) over the bundle-free fixtures, confirming
// bundle elimination leaves an already-scalar program's connects intact.
func TestRunOverScalarOnlyProgramIsANoOp(t *testing.T) {
	diags := diagnostics.NewBuffer()
	ctx := lower.Lower(fixtures.Get("buffered"), diags)
	require.False(t, diags.HasErrors())

	desugarcond.Run(ctx)
	inferassume.Run(ctx)
	assume.Run(ctx)
	interval.Run(ctx)
	phantom.Run(ctx, diags)
	require.False(t, diags.HasErrors())
	propsimplify.Run(ctx)

	entry := mono.Run(ctx, gen.NewFake(), diags)
	require.False(t, diags.HasErrors())
	require.False(t, entry.IsUnknown())

	Run(ctx, entry)
	domination.Run(ctx)

	entryComp := ctx.Comp(entry)
	connects := 0
	for _, cmd := range entryComp.Body {
		if cmd.Kind == ir.CmdConnect {
			connects++
		}
	}
	assert.Equal(t, 3, connects, "a{->i1.a, i1.z->i2.a, i2.z->z, none of which are bundles")
}
