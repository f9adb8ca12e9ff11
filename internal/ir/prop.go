package ir

// PropKind tags the variant of a Prop (spec §3 "Proposition").
type PropKind uint8

const (
	PropTrueKind PropKind = iota
	PropFalseKind
	PropCmpKind
	PropTimeCmpKind
	PropTimeSubCmpKind
	PropNotKind
	PropAndKind
	PropOrKind
	PropImpliesKind
)

// Prop is a hash-consed proposition. Like Expr it is a flat comparable
// struct so PropStore can intern it directly.
type Prop struct {
	Kind PropKind

	CmpOp    CmpOp
	CmpLhs   ExprIdx
	CmpRhs   ExprIdx
	TimeLhs  TimeIdx
	TimeRhs  TimeIdx
	TSubLhs  TimeSubIdx
	TSubRhs  TimeSubIdx

	Operand PropIdx // PropNotKind
	Lhs, Rhs PropIdx // PropAndKind, PropOrKind, PropImpliesKind
}

// PropStore interns propositions, applying boolean constant folding
// (De Morgan short-circuits on True/False) before interning.
type PropStore struct {
	*InternStore[Prop]
	exprs *ExprStore
}

func newPropStore() *PropStore {
	return &PropStore{InternStore: newInternStore[Prop]()}
}

var truth = Prop{Kind: PropTrueKind}
var falsity = Prop{Kind: PropFalseKind}

func (s *PropStore) True() PropIdx  { return s.Intern(truth) }
func (s *PropStore) False() PropIdx { return s.Intern(falsity) }

func (s *PropStore) isTrue(p PropIdx) bool  { return s.Get(p).Kind == PropTrueKind }
func (s *PropStore) isFalse(p PropIdx) bool { return s.Get(p).Kind == PropFalseKind }

// Cmp interns `lhs op rhs`, canonicalizing Lt/Lte (not primitive, spec §3
// restricts Cmp to {>, >=, =}) by flipping operands, and folding two
// concrete operands directly to True/False.
func (s *PropStore) Cmp(op CmpOp, lhs, rhs ExprIdx) PropIdx {
	if op == Lt {
		return s.Cmp(Gt, rhs, lhs)
	}
	if op == Lte {
		return s.Cmp(Gte, rhs, lhs)
	}
	if s.exprs != nil {
		lv, lok := s.exprs.AsConcrete(lhs)
		rv, rok := s.exprs.AsConcrete(rhs)
		if lok && rok {
			var ok bool
			switch op {
			case Gt:
				ok = lv > rv
			case Gte:
				ok = lv >= rv
			case Eq:
				ok = lv == rv
			}
			if ok {
				return s.True()
			}
			return s.False()
		}
	}
	return s.Intern(Prop{Kind: PropCmpKind, CmpOp: op, CmpLhs: lhs, CmpRhs: rhs})
}

func (s *PropStore) TimeCmp(op CmpOp, lhs, rhs TimeIdx) PropIdx {
	if op == Lt {
		return s.TimeCmp(Gt, rhs, lhs)
	}
	if op == Lte {
		return s.TimeCmp(Gte, rhs, lhs)
	}
	return s.Intern(Prop{Kind: PropTimeCmpKind, CmpOp: op, TimeLhs: lhs, TimeRhs: rhs})
}

func (s *PropStore) TimeSubCmp(op CmpOp, lhs, rhs TimeSubIdx) PropIdx {
	return s.Intern(Prop{Kind: PropTimeSubCmpKind, CmpOp: op, TSubLhs: lhs, TSubRhs: rhs})
}

// Not interns ¬p, folding double negation and True/False directly.
func (s *PropStore) Not(p PropIdx) PropIdx {
	v := s.Get(p)
	switch v.Kind {
	case PropTrueKind:
		return s.False()
	case PropFalseKind:
		return s.True()
	case PropNotKind:
		return v.Operand
	}
	return s.Intern(Prop{Kind: PropNotKind, Operand: p})
}

// And interns p ∧ q with identity/annihilator folding.
func (s *PropStore) And(p, q PropIdx) PropIdx {
	if s.isTrue(p) {
		return q
	}
	if s.isTrue(q) {
		return p
	}
	if s.isFalse(p) || s.isFalse(q) {
		return s.False()
	}
	return s.Intern(Prop{Kind: PropAndKind, Lhs: p, Rhs: q})
}

// Or interns p ∨ q with identity/annihilator folding.
func (s *PropStore) Or(p, q PropIdx) PropIdx {
	if s.isFalse(p) {
		return q
	}
	if s.isFalse(q) {
		return p
	}
	if s.isTrue(p) || s.isTrue(q) {
		return s.True()
	}
	return s.Intern(Prop{Kind: PropOrKind, Lhs: p, Rhs: q})
}

// Implies interns p ⇒ q, folding the vacuous and tautological cases.
func (s *PropStore) Implies(p, q PropIdx) PropIdx {
	if s.isFalse(p) {
		return s.True()
	}
	if s.isTrue(p) {
		return q
	}
	if s.isTrue(q) {
		return s.True()
	}
	return s.Intern(Prop{Kind: PropImpliesKind, Lhs: p, Rhs: q})
}
