package ir

// ExprKind tags the variant of an Expr (spec §3 "Expression").
type ExprKind uint8

const (
	ExprParamKind ExprKind = iota
	ExprConcreteKind
	ExprBinKind
	ExprFnKind
	ExprIfKind
)

// Expr is a hash-consed arithmetic term. It is a flat, comparable struct (not
// an interface) so that an ExprStore can use it directly as a map key for
// interning; FnKind arguments are capped at two because every catalogue
// function (pow2, log2, bitrev) is unary or binary (spec §1, §4.D).
type Expr struct {
	Kind ExprKind

	Param ParamIdx // ExprParamKind
	Value uint64   // ExprConcreteKind

	Op       BinOp // ExprBinKind
	Lhs, Rhs ExprIdx

	FnOp     FnOp // ExprFnKind
	ArgCount int
	Arg0     ExprIdx
	Arg1     ExprIdx

	Cond       PropIdx // ExprIfKind
	Then, Else ExprIdx
}

func ParamExpr(p ParamIdx) Expr { return Expr{Kind: ExprParamKind, Param: p} }
func ConcreteExpr(v uint64) Expr {
	return Expr{Kind: ExprConcreteKind, Value: v}
}

// ExprStore interns Expr values and applies the folding table of spec §4.A
// before interning, so that structurally-equal-after-folding terms always
// share a handle (spec §8 property 1).
type ExprStore struct {
	*InternStore[Expr]
	props *PropStore // needed to fold If-conditions that reduce to True/False
}

func newExprStore() *ExprStore {
	return &ExprStore{InternStore: newInternStore[Expr]()}
}

// AsConcrete returns the constant value of e, if any.
func (s *ExprStore) AsConcrete(e ExprIdx) (uint64, bool) {
	v := s.Get(e)
	if v.Kind == ExprConcreteKind {
		return v.Value, true
	}
	return 0, false
}

// AsParam returns the parameter e refers to, if it is a bare Param node.
func (s *ExprStore) AsParam(e ExprIdx) (ParamIdx, bool) {
	v := s.Get(e)
	if v.Kind == ExprParamKind {
		return v.Param, true
	}
	return ParamIdx{}, false
}

// Param interns a Param(p) expression.
func (s *ExprStore) Param(p ParamIdx) ExprIdx {
	return s.Intern(ParamExpr(p))
}

// Concrete interns a Concrete(v) expression.
func (s *ExprStore) Concrete(v uint64) ExprIdx {
	return s.Intern(ConcreteExpr(v))
}

// Bin applies the constant-folding table of spec §4.A and interns the
// (possibly simplified) result.
func (s *ExprStore) Bin(op BinOp, lhs, rhs ExprIdx) ExprIdx {
	lv, lok := s.AsConcrete(lhs)
	rv, rok := s.AsConcrete(rhs)

	switch op {
	case Add:
		if lok && lv == 0 {
			return rhs
		}
		if rok && rv == 0 {
			return lhs
		}
		if lok && rok {
			return s.Concrete(lv + rv)
		}
	case Sub:
		if rok && rv == 0 {
			return lhs
		}
		if lok && rok && lv >= rv {
			return s.Concrete(lv - rv)
		}
	case Mul:
		if (lok && lv == 0) || (rok && rv == 0) {
			return s.Concrete(0)
		}
		if lok && lv == 1 {
			return rhs
		}
		if rok && rv == 1 {
			return lhs
		}
		if lok && rok {
			return s.Concrete(lv * rv)
		}
	case Div:
		if lok && lv == 0 {
			return s.Concrete(0)
		}
		if rok && rv == 1 {
			return lhs
		}
		if lok && rok && rv != 0 {
			return s.Concrete(lv / rv)
		}
	case Mod:
		if rok && rv == 1 {
			return s.Concrete(0)
		}
		if lok && rok && rv != 0 {
			return s.Concrete(lv % rv)
		}
	}

	return s.Intern(Expr{Kind: ExprBinKind, Op: op, Lhs: lhs, Rhs: rhs})
}

// Fn applies the catalogue folding rules (pow2/log2 of a concrete argument)
// and interns the result.
func (s *ExprStore) Fn(op FnOp, args ...ExprIdx) ExprIdx {
	if len(args) != op.Arity() {
		panic("ir: wrong arity for catalogue function")
	}
	if op.Arity() == 1 {
		if n, ok := s.AsConcrete(args[0]); ok {
			switch op {
			case Pow2:
				return s.Concrete(1 << n)
			case Log2:
				return s.Concrete(ceilLog2(n))
			}
		}
	}
	e := Expr{Kind: ExprFnKind, FnOp: op, ArgCount: len(args)}
	if len(args) > 0 {
		e.Arg0 = args[0]
	}
	if len(args) > 1 {
		e.Arg1 = args[1]
	}
	return s.Intern(e)
}

// FnArgs returns the (up to two) arguments of an ExprFnKind term.
func (s *ExprStore) FnArgs(e Expr) []ExprIdx {
	switch e.ArgCount {
	case 0:
		return nil
	case 1:
		return []ExprIdx{e.Arg0}
	default:
		return []ExprIdx{e.Arg0, e.Arg1}
	}
}

// If interns a conditional expression, folding away the branch when cond is
// a literal True/False after proposition simplification has run; prior to
// that it is preserved structurally.
func (s *ExprStore) If(cond PropIdx, then, alt ExprIdx) ExprIdx {
	if s.props != nil {
		switch s.props.Get(cond).Kind {
		case PropTrueKind:
			return then
		case PropFalseKind:
			return alt
		}
	}
	return s.Intern(Expr{Kind: ExprIfKind, Cond: cond, Then: then, Else: alt})
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
