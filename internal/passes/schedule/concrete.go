package schedule

import "github.com/sunholo/chronoc/internal/ir"

// evalConcrete folds e to a literal value, resolving any `let`-bound
// parameter through its owner's Bind (set once the scheduler has solved
// that parameter — see applyBinding in schedule.go). By the time a
// component is scheduled every width, and every signature port's
// liveness of every component it instances, must already reduce this
// way: monomorphization has substituted concrete signature arguments and
// bundle elimination has removed every loop, so the only thing standing
// between an expression and a literal is an as-yet-unsolved let, and
// those are solved component-by-component in topological (leaves-first)
// order before any caller needs to read them.
func evalConcrete(comp *ir.Component, e ir.ExprIdx) (uint64, error) {
	alg := comp.Algebra
	v := alg.Exprs.Get(e)
	switch v.Kind {
	case ir.ExprConcreteKind:
		return v.Value, nil
	case ir.ExprParamKind:
		p := comp.Params.Get(v.Param)
		if p.Owner.Kind == ir.OwnerLet && p.Owner.HasBind {
			return evalConcrete(comp, p.Owner.Bind)
		}
		return 0, errNotConcrete(comp.Name)
	case ir.ExprBinKind:
		l, err := evalConcrete(comp, v.Lhs)
		if err != nil {
			return 0, err
		}
		r, err := evalConcrete(comp, v.Rhs)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ir.Add:
			return l + r, nil
		case ir.Sub:
			if l < r {
				return 0, errNotConcrete(comp.Name)
			}
			return l - r, nil
		case ir.Mul:
			return l * r, nil
		case ir.Div:
			if r == 0 {
				return 0, errNotConcrete(comp.Name)
			}
			return l / r, nil
		case ir.Mod:
			if r == 0 {
				return 0, errNotConcrete(comp.Name)
			}
			return l % r, nil
		}
		return 0, errNotConcrete(comp.Name)
	case ir.ExprFnKind:
		args := make([]uint64, 0, v.ArgCount)
		for _, a := range alg.Exprs.FnArgs(v) {
			n, err := evalConcrete(comp, a)
			if err != nil {
				return 0, err
			}
			args = append(args, n)
		}
		switch v.FnOp {
		case ir.Pow2:
			return 1 << args[0], nil
		case ir.Log2:
			return ceilLog2(args[0]), nil
		case ir.BitRev:
			return bitRev(args[0], args[1]), nil
		}
		return 0, errNotConcrete(comp.Name)
	case ir.ExprIfKind:
		cond, err := evalConcreteProp(comp, v.Cond)
		if err != nil {
			return 0, err
		}
		if cond {
			return evalConcrete(comp, v.Then)
		}
		return evalConcrete(comp, v.Else)
	}
	return 0, errNotConcrete(comp.Name)
}

func evalConcreteProp(comp *ir.Component, p ir.PropIdx) (bool, error) {
	v := comp.Algebra.Props.Get(p)
	switch v.Kind {
	case ir.PropTrueKind:
		return true, nil
	case ir.PropFalseKind:
		return false, nil
	case ir.PropCmpKind:
		l, err := evalConcrete(comp, v.CmpLhs)
		if err != nil {
			return false, err
		}
		r, err := evalConcrete(comp, v.CmpRhs)
		if err != nil {
			return false, err
		}
		return compareConcrete(v.CmpOp, l, r), nil
	case ir.PropTimeCmpKind:
		l, err := evalConcreteTime(comp, v.TimeLhs)
		if err != nil {
			return false, err
		}
		r, err := evalConcreteTime(comp, v.TimeRhs)
		if err != nil {
			return false, err
		}
		return compareConcrete(v.CmpOp, l, r), nil
	case ir.PropNotKind:
		b, err := evalConcreteProp(comp, v.Operand)
		return !b, err
	case ir.PropAndKind:
		l, err := evalConcreteProp(comp, v.Lhs)
		if err != nil || !l {
			return false, err
		}
		return evalConcreteProp(comp, v.Rhs)
	case ir.PropOrKind:
		l, err := evalConcreteProp(comp, v.Lhs)
		if err != nil || l {
			return l, err
		}
		return evalConcreteProp(comp, v.Rhs)
	case ir.PropImpliesKind:
		l, err := evalConcreteProp(comp, v.Lhs)
		if err != nil || !l {
			return true, err
		}
		return evalConcreteProp(comp, v.Rhs)
	}
	return false, errNotConcrete(comp.Name)
}

func compareConcrete(op ir.CmpOp, l, r uint64) bool {
	switch op {
	case ir.Gt:
		return l > r
	case ir.Gte:
		return l >= r
	case ir.Eq:
		return l == r
	case ir.Lt:
		return l < r
	case ir.Lte:
		return l <= r
	}
	return false
}

// evalConcreteTime folds a Time to the literal offset relative to its own
// event; the event itself is not compared here since every caller folds
// times that are already known to share a reference point (a single
// port's own start/end, or two sides of a time comparison local to one
// component).
func evalConcreteTime(comp *ir.Component, t ir.TimeIdx) (uint64, error) {
	return evalConcrete(comp, comp.Algebra.Times.GetTime(t).Offset)
}

func ceilLog2(n uint64) uint64 {
	if n <= 1 {
		return 0
	}
	var r uint64
	v := n - 1
	for v > 0 {
		v >>= 1
		r++
	}
	return r
}

// bitRev reverses the low width bits of n.
func bitRev(n, width uint64) uint64 {
	var r uint64
	for i := uint64(0); i < width; i++ {
		r <<= 1
		r |= (n >> i) & 1
	}
	return r
}

type notConcreteError struct{ comp string }

func (e *notConcreteError) Error() string {
	return "schedule: expression in component " + e.comp + " did not reduce to a concrete value at scheduling time"
}

func errNotConcrete(comp string) error { return &notConcreteError{comp: comp} }
