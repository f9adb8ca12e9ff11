package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/ir"
)

func unsolvedParam(comp *ir.Component) ir.ParamIdx {
	return comp.AddParam(ir.Param{Owner: ir.UnsolvedLetOwner()})
}

func bindParam(comp *ir.Component, p ir.ParamIdx, val uint64) {
	param := comp.Params.Get(p)
	param.Owner = ir.BoundLetOwner(comp.Algebra.Exprs.Concrete(val))
	comp.Params.Set(p, param)
}

func TestEvalConcreteLiteralAndParam(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	lit := comp.Algebra.Exprs.Concrete(9)
	v, err := evalConcrete(comp, lit)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v)

	p := unsolvedParam(comp)
	pe := comp.Algebra.Exprs.Param(p)
	_, err = evalConcrete(comp, pe)
	assert.Error(t, err, "unbound let parameter must not reduce")

	bindParam(comp, p, 42)
	v, err = evalConcrete(comp, pe)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestEvalConcreteBinOps(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	e := comp.Algebra.Exprs

	cases := []struct {
		name string
		expr ir.ExprIdx
		want uint64
	}{
		{"add", e.Bin(ir.Add, e.Concrete(3), e.Concrete(4)), 7},
		{"sub", e.Bin(ir.Sub, e.Concrete(10), e.Concrete(4)), 6},
		{"mul", e.Bin(ir.Mul, e.Concrete(3), e.Concrete(4)), 12},
		{"div", e.Bin(ir.Div, e.Concrete(12), e.Concrete(4)), 3},
		{"mod", e.Bin(ir.Mod, e.Concrete(13), e.Concrete(4)), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evalConcrete(comp, tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalConcreteBinOpGuards(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	e := comp.Algebra.Exprs

	_, err := evalConcrete(comp, e.Bin(ir.Sub, e.Concrete(2), e.Concrete(5)))
	assert.Error(t, err, "subtraction underflow must not reduce to a literal")

	_, err = evalConcrete(comp, e.Bin(ir.Div, e.Concrete(5), e.Concrete(0)))
	assert.Error(t, err, "division by zero must not reduce")

	_, err = evalConcrete(comp, e.Bin(ir.Mod, e.Concrete(5), e.Concrete(0)))
	assert.Error(t, err, "modulo by zero must not reduce")
}

func TestEvalConcreteFnOps(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	e := comp.Algebra.Exprs

	v, err := evalConcrete(comp, e.Fn(ir.Pow2, e.Concrete(5)))
	require.NoError(t, err)
	assert.Equal(t, uint64(32), v)

	v, err = evalConcrete(comp, e.Fn(ir.Log2, e.Concrete(9)))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v, "ceilLog2(9) rounds up to the next power")

	v, err = evalConcrete(comp, e.Fn(ir.Log2, e.Concrete(1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	v, err = evalConcrete(comp, e.Fn(ir.BitRev, e.Concrete(0b001), e.Concrete(3)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0b100), v)
}

func TestEvalConcreteIf(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	e := comp.Algebra.Exprs
	pr := comp.Algebra.Props

	ifExpr := e.If(pr.True(), e.Concrete(1), e.Concrete(2))
	v, err := evalConcrete(comp, ifExpr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	ifExpr = e.If(pr.False(), e.Concrete(1), e.Concrete(2))
	v, err = evalConcrete(comp, ifExpr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
}

func TestEvalConcretePropConnectives(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	pr := comp.Algebra.Props

	p := unsolvedParam(comp)
	pe := comp.Algebra.Exprs.Param(p)
	cmp := pr.Cmp(ir.Gte, pe, comp.Algebra.Exprs.Concrete(10))

	_, err := evalConcreteProp(comp, cmp)
	assert.Error(t, err, "comparison over an unbound param must not reduce")

	bindParam(comp, p, 10)
	b, err := evalConcreteProp(comp, cmp)
	require.NoError(t, err)
	assert.True(t, b)

	bindParam(comp, p, 4)
	b, err = evalConcreteProp(comp, cmp)
	require.NoError(t, err)
	assert.False(t, b)

	notProp := pr.Not(cmp)
	b, err = evalConcreteProp(comp, notProp)
	require.NoError(t, err)
	assert.True(t, b)

	bindParam(comp, p, 10)
	andProp := pr.And(cmp, pr.True())
	b, err = evalConcreteProp(comp, andProp)
	require.NoError(t, err)
	assert.True(t, b)

	orProp := pr.Or(pr.False(), cmp)
	b, err = evalConcreteProp(comp, orProp)
	require.NoError(t, err)
	assert.True(t, b)

	impliesProp := pr.Implies(pr.False(), cmp)
	b, err = evalConcreteProp(comp, impliesProp)
	require.NoError(t, err)
	assert.True(t, b, "a false antecedent makes the implication vacuously true")
}

func TestEvalConcreteTime(t *testing.T) {
	comp := ir.NewComponent("C", ir.CompSource)
	ev := comp.AddEvent(ir.Event{})
	offset := comp.Algebra.Exprs.Concrete(3)
	tm := comp.Algebra.Times.Time(ev, offset)

	v, err := evalConcreteTime(comp, tm)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestCeilLog2(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		assert.Equal(t, want, ceilLog2(n), "ceilLog2(%d)", n)
	}
}

func TestBitRev(t *testing.T) {
	assert.Equal(t, uint64(0b100), bitRev(0b001, 3))
	assert.Equal(t, uint64(0b011), bitRev(0b110, 3))
	assert.Equal(t, uint64(0), bitRev(0, 4))
}
