package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExprFoldingTable(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra
	p := comp.AddParam(Param{Owner: SigOwner()})
	pe := alg.Exprs.Param(p)

	t.Run("0+x = x", func(t *testing.T) {
		zero := alg.Exprs.Concrete(0)
		require.Equal(t, pe, alg.Exprs.Bin(Add, zero, pe))
		require.Equal(t, pe, alg.Exprs.Bin(Add, pe, zero))
	})

	t.Run("concrete add folds", func(t *testing.T) {
		a := alg.Exprs.Concrete(3)
		b := alg.Exprs.Concrete(4)
		got := alg.Exprs.Bin(Add, a, b)
		v, ok := alg.Exprs.AsConcrete(got)
		require.True(t, ok)
		require.Equal(t, uint64(7), v)
	})

	t.Run("x-0 = x, concrete sub folds", func(t *testing.T) {
		zero := alg.Exprs.Concrete(0)
		require.Equal(t, pe, alg.Exprs.Bin(Sub, pe, zero))

		a := alg.Exprs.Concrete(10)
		b := alg.Exprs.Concrete(4)
		got := alg.Exprs.Bin(Sub, a, b)
		v, ok := alg.Exprs.AsConcrete(got)
		require.True(t, ok)
		require.Equal(t, uint64(6), v)
	})

	t.Run("0*x = 0, 1*x = x", func(t *testing.T) {
		zero := alg.Exprs.Concrete(0)
		one := alg.Exprs.Concrete(1)
		got := alg.Exprs.Bin(Mul, zero, pe)
		v, ok := alg.Exprs.AsConcrete(got)
		require.True(t, ok)
		require.Equal(t, uint64(0), v)
		require.Equal(t, pe, alg.Exprs.Bin(Mul, one, pe))
		require.Equal(t, pe, alg.Exprs.Bin(Mul, pe, one))
	})

	t.Run("0/x = 0, x/1 = x, x%1 = 0", func(t *testing.T) {
		zero := alg.Exprs.Concrete(0)
		one := alg.Exprs.Concrete(1)
		got := alg.Exprs.Bin(Div, zero, pe)
		v, ok := alg.Exprs.AsConcrete(got)
		require.True(t, ok)
		require.Equal(t, uint64(0), v)
		require.Equal(t, pe, alg.Exprs.Bin(Div, pe, one))

		modGot := alg.Exprs.Bin(Mod, pe, one)
		v, ok = alg.Exprs.AsConcrete(modGot)
		require.True(t, ok)
		require.Equal(t, uint64(0), v)
	})

	t.Run("pow2 and log2 of a concrete fold", func(t *testing.T) {
		three := alg.Exprs.Concrete(3)
		got := alg.Exprs.Fn(Pow2, three)
		v, ok := alg.Exprs.AsConcrete(got)
		require.True(t, ok)
		require.Equal(t, uint64(8), v)

		eight := alg.Exprs.Concrete(8)
		got2 := alg.Exprs.Fn(Log2, eight)
		v2, ok2 := alg.Exprs.AsConcrete(got2)
		require.True(t, ok2)
		require.Equal(t, uint64(3), v2)
	})
}

// TestE1Fold is spec §8 scenario E1: add_expr(Bin(+, Concrete(0), Param(p)))
// returns the same handle as add_expr(Param(p)).
func TestE1Fold(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra
	p := comp.AddParam(Param{Owner: SigOwner()})

	bare := alg.Exprs.Param(p)
	zero := alg.Exprs.Concrete(0)
	folded := alg.Exprs.Bin(Add, zero, bare)

	require.Equal(t, bare, folded)
}

func TestInterningCanonicality(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra
	p := comp.AddParam(Param{Owner: SigOwner()})

	a1 := alg.Exprs.Bin(Add, alg.Exprs.Param(p), alg.Exprs.Concrete(1))
	a2 := alg.Exprs.Bin(Add, alg.Exprs.Param(p), alg.Exprs.Concrete(1))
	require.Equal(t, a1, a2, "structurally equal expressions must share a handle")

	// Concrete(3) interned twice still shares a handle.
	c1 := alg.Exprs.Concrete(3)
	c2 := alg.Exprs.Concrete(3)
	require.Equal(t, c1, c2)
}

func TestPropBooleanFolding(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra

	require.Equal(t, alg.Props.True(), alg.Props.Not(alg.Props.False()))
	require.Equal(t, alg.Props.False(), alg.Props.And(alg.Props.True(), alg.Props.False()))

	p := comp.AddParam(Param{Owner: SigOwner()})
	pe := alg.Exprs.Param(p)
	prop := alg.Props.Cmp(Gt, pe, alg.Exprs.Concrete(0))
	require.Equal(t, prop, alg.Props.And(alg.Props.True(), prop))
	require.Equal(t, prop, alg.Props.Or(alg.Props.False(), prop))
}
