// Package catalogue holds the fixed list of uninterpreted functions the
// core knows about (spec §1 "pow2, log2, bitrev, etc.") together with the
// canonical algebraic assumptions each one contributes when a proposition
// of the shape `L = f(R)` is recognised (spec §4.D).
package catalogue

import "github.com/sunholo/chronoc/internal/ir"

// CanonicalAssumptions returns the fixed list of implications assumption
// synthesis should add when it recognises `L = fn(R)` (spec §4.D). Every
// entry is itself a proposition (possibly an implication) to be added as an
// *assumption*, never an assertion — the catalogue only ever produces facts
// the checker may rely on, it never needs to be proven.
func CanonicalAssumptions(alg *ir.Algebra, fn ir.FnOp, l, r ir.ExprIdx) []ir.PropIdx {
	switch fn {
	case ir.Pow2:
		return pow2Assumptions(alg, l, r)
	case ir.Log2:
		return log2Assumptions(alg, l, r)
	case ir.BitRev:
		return nil
	default:
		return nil
	}
}

// pow2Assumptions encodes, for `L = pow2(R)`:
//   L*2 = pow2(R+1)
//   R >= 1 => L = pow2(R-1)*2
//   L = 1 <=> R = 0
// exactly as listed in spec §4.D.
func pow2Assumptions(alg *ir.Algebra, l, r ir.ExprIdx) []ir.PropIdx {
	e, p := alg.Exprs, alg.Props
	one := e.Concrete(1)
	two := e.Concrete(2)

	lTimes2 := e.Bin(ir.Mul, l, two)
	rPlus1 := e.Bin(ir.Add, r, one)
	rule1 := p.Cmp(ir.Eq, lTimes2, e.Fn(ir.Pow2, rPlus1))

	rMinus1 := e.Bin(ir.Sub, r, one)
	rGte1 := p.Cmp(ir.Gte, r, one)
	lEqPow2TimesTwo := p.Cmp(ir.Eq, l, e.Bin(ir.Mul, e.Fn(ir.Pow2, rMinus1), two))
	rule2 := p.Implies(rGte1, lEqPow2TimesTwo)

	lEq1 := p.Cmp(ir.Eq, l, one)
	rEq0 := p.Cmp(ir.Eq, r, e.Concrete(0))
	rule3 := p.And(p.Implies(lEq1, rEq0), p.Implies(rEq0, lEq1))

	return []ir.PropIdx{rule1, rule2, rule3}
}

// log2Assumptions encodes, for `L = log2(R)`:
//   L+1 = log2(R*2)
//   L >= 1 => L-1 = log2(R/2)
//   L = 0 <=> R = 1
// ported directly from the same triad shape as pow2Assumptions.
func log2Assumptions(alg *ir.Algebra, l, r ir.ExprIdx) []ir.PropIdx {
	e, p := alg.Exprs, alg.Props
	one := e.Concrete(1)
	two := e.Concrete(2)

	lPlus1 := e.Bin(ir.Add, l, one)
	rTimes2 := e.Bin(ir.Mul, r, two)
	rule1 := p.Cmp(ir.Eq, lPlus1, e.Fn(ir.Log2, rTimes2))

	lMinus1 := e.Bin(ir.Sub, l, one)
	lGte1 := p.Cmp(ir.Gte, l, one)
	rDiv2 := e.Bin(ir.Div, r, two)
	lMinus1EqLog2 := p.Cmp(ir.Eq, lMinus1, e.Fn(ir.Log2, rDiv2))
	rule2 := p.Implies(lGte1, lMinus1EqLog2)

	lEq0 := p.Cmp(ir.Eq, l, e.Concrete(0))
	rEq1 := p.Cmp(ir.Eq, r, one)
	rule3 := p.And(p.Implies(lEq0, rEq1), p.Implies(rEq1, lEq0))

	return []ir.PropIdx{rule1, rule2, rule3}
}

// bitRevAssumptions would encode that bit-reversal is an involution:
// bitrev(bitrev(R, w), w) = R. Stating it precisely needs the width operand,
// which matchCatalogueEquality (internal/passes/inferassume) doesn't thread
// through — it only recovers the single-expression side of an `L = fn(R)`
// equality, dropping BitRev's second argument. Rather than emit a fact that
// doesn't actually capture the involution, CanonicalAssumptions returns no
// facts for BitRev until that plumbing carries the width through.
