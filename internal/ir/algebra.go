package ir

// Algebra bundles the three hash-consed stores (spec §3 "Interned
// algebra") owned by a single component. Expr folding needs to consult
// Prop (to fold `If` on a literal condition) and Prop folding needs to
// consult Expr (to fold two concrete comparison operands), so the stores
// are wired to each other at construction time.
type Algebra struct {
	Exprs *ExprStore
	Props *PropStore
	Times *TimeStore
}

func newAlgebra() *Algebra {
	exprs := newExprStore()
	props := newPropStore()
	props.exprs = exprs
	exprs.props = props
	return &Algebra{
		Exprs: exprs,
		Props: props,
		Times: newTimeStore(),
	}
}
