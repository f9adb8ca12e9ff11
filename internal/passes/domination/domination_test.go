package domination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/ir"
)

func TestRunHoistsLetsIntoDependencyOrder(t *testing.T) {
	ctx := ir.NewContext()
	comp := ir.NewComponent("C", ir.CompSource)
	info := comp.AddInfo(ir.Info{})

	exprA := comp.Algebra.Exprs.Concrete(5)
	pA := comp.AddParam(ir.Param{Owner: ir.BoundLetOwner(exprA)})
	cmdA := ir.LetCmd(pA, exprA, true, info)

	exprB := comp.Algebra.Exprs.Bin(ir.Add, comp.Algebra.Exprs.Param(pA), comp.Algebra.Exprs.Concrete(1))
	pB := comp.AddParam(ir.Param{Owner: ir.BoundLetOwner(exprB)})
	cmdB := ir.LetCmd(pB, exprB, true, info)

	factInfo := comp.AddInfo(ir.Info{})
	cmdFact := ir.FactCmd(ir.Assume(comp.Algebra.Props.True(), factInfo), factInfo)

	// B (which reads A) is declared before A, and an unrelated fact sits
	// between them; both must end up hoisted ahead of the fact, in
	// dependency order.
	comp.Body = []ir.Command{cmdB, cmdFact, cmdA}

	idx := ctx.AddComponent(comp)
	Run(ctx)

	body := ctx.Comp(idx).Body
	require.Len(t, body, 3)
	assert.Equal(t, ir.CmdLet, body[0].Kind)
	assert.Equal(t, pA, body[0].LetParam)
	assert.Equal(t, ir.CmdLet, body[1].Kind)
	assert.Equal(t, pB, body[1].LetParam)
	assert.Equal(t, ir.CmdFact, body[2].Kind)
}

func TestRunRecursesIntoNestedScopes(t *testing.T) {
	ctx := ir.NewContext()
	comp := ir.NewComponent("C", ir.CompSource)
	info := comp.AddInfo(ir.Info{})

	exprA := comp.Algebra.Exprs.Concrete(1)
	pA := comp.AddParam(ir.Param{Owner: ir.BoundLetOwner(exprA)})
	cmdA := ir.LetCmd(pA, exprA, true, info)

	exprB := comp.Algebra.Exprs.Bin(ir.Add, comp.Algebra.Exprs.Param(pA), comp.Algebra.Exprs.Concrete(1))
	pB := comp.AddParam(ir.Param{Owner: ir.BoundLetOwner(exprB)})
	cmdB := ir.LetCmd(pB, exprB, true, info)

	loopParam := comp.AddParam(ir.Param{Owner: ir.LoopOwner()})
	loop := ir.ForLoopCmd(loopParam, comp.Algebra.Exprs.Concrete(0), comp.Algebra.Exprs.Concrete(4),
		[]ir.Command{cmdB, cmdA}, info)

	comp.Body = []ir.Command{loop}
	idx := ctx.AddComponent(comp)
	Run(ctx)

	nested := ctx.Comp(idx).Body[0].Body
	require.Len(t, nested, 2)
	assert.Equal(t, pA, nested[0].LetParam)
	assert.Equal(t, pB, nested[1].LetParam)
}

func TestRunPanicsOnCyclicDependency(t *testing.T) {
	ctx := ir.NewContext()
	comp := ir.NewComponent("C", ir.CompSource)
	info := comp.AddInfo(ir.Info{})

	// Allocate both params up front so each let's expression can reference
	// the other's param index, manufacturing a cycle that cannot occur via
	// ordinary lowering but must still be caught defensively.
	pA := comp.AddParam(ir.Param{Owner: ir.UnsolvedLetOwner()})
	pB := comp.AddParam(ir.Param{Owner: ir.UnsolvedLetOwner()})

	exprA := comp.Algebra.Exprs.Param(pB)
	exprB := comp.Algebra.Exprs.Param(pA)
	cmdA := ir.LetCmd(pA, exprA, true, info)
	cmdB := ir.LetCmd(pB, exprB, true, info)
	comp.Body = []ir.Command{cmdA, cmdB}

	ctx.AddComponent(comp)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected Run to panic on cyclic let dependency")
		ierr, ok := r.(*diagnostics.InternalError)
		require.True(t, ok, "expected a *diagnostics.InternalError panic, got %T", r)
		assert.Contains(t, ierr.Message, "cyclic")
	}()
	Run(ctx)
}
