package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSubstCommutesWithInterning checks spec §8 property 2: for a binding B
// and term t, add(subst(B, t)) == subst(B, add(t)) interpreted over handles
// — i.e. folding a substitution through an already-interned term produces
// the same handle as building the substituted term directly.
func TestSubstCommutesWithInterning(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra
	p := comp.AddParam(Param{Owner: SigOwner()})

	// t = p + 1
	t1 := alg.Exprs.Bin(Add, alg.Exprs.Param(p), alg.Exprs.Concrete(1))

	s := NewSubst().BindParam(p, alg.Exprs.Concrete(41))

	viaFold := s.FoldExpr(alg, t1)

	// Building "41 + 1" directly must fold to the same concrete handle the
	// substitution driver produces.
	direct := alg.Exprs.Bin(Add, alg.Exprs.Concrete(41), alg.Exprs.Concrete(1))

	require.Equal(t, direct, viaFold)
	v, ok := alg.Exprs.AsConcrete(viaFold)
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
}

func TestSubstEventAddsOffsets(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	alg := comp.Algebra

	g := comp.AddEvent(Event{})
	h := comp.AddEvent(Event{})

	x := alg.Exprs.Concrete(3)
	gPlusX := alg.Times.Time(g, x)

	y := alg.Exprs.Concrete(5)
	hPlusY := alg.Times.Time(h, y)

	s := NewSubst().BindEvent(g, hPlusY)
	got := s.FoldTime(alg, gPlusX)

	gotVal := alg.Times.GetTime(got)
	require.Equal(t, h, gotVal.Event)
	v, ok := alg.Exprs.AsConcrete(gotVal.Offset)
	require.True(t, ok)
	require.Equal(t, uint64(8), v) // (x=3) + (y=5)
}

func TestValidateCatchesBundleParamMisuse(t *testing.T) {
	comp := NewComponent("Foo", CompSource)
	port := comp.AddPort(Port{Owner: SigPortOwner(DirOut)})
	badIdx := comp.AddParam(Param{Owner: BundleOwner(port)})
	// Intentionally do NOT register badIdx in port.Live.Idxs.

	ctx := NewContext()
	idx := ctx.AddComponent(comp)

	errs := Validate(ctx, idx)
	require.NotEmpty(t, errs)
	_ = badIdx
}
