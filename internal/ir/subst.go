package ir

// Subst is a substitution map used within a single component's algebra
// (spec §4.A "A substitution is a map K→V with an explicit fold_with
// driver"). Unlike the Transfer* functions, Subst never crosses a component boundary:
// it rewrites and re-interns terms in place in the same Algebra.
type Subst struct {
	Params map[ParamIdx]ExprIdx
	Events map[EventIdx]TimeIdx
}

func NewSubst() *Subst {
	return &Subst{
		Params: make(map[ParamIdx]ExprIdx),
		Events: make(map[EventIdx]TimeIdx),
	}
}

func (s *Subst) BindParam(p ParamIdx, e ExprIdx) *Subst {
	s.Params[p] = e
	return s
}

func (s *Subst) BindEvent(ev EventIdx, t TimeIdx) *Subst {
	s.Events[ev] = t
	return s
}

// FoldExpr rewrites e under s, re-interning the result.
func (s *Subst) FoldExpr(alg *Algebra, e ExprIdx) ExprIdx {
	v := alg.Exprs.Get(e)
	switch v.Kind {
	case ExprParamKind:
		if repl, ok := s.Params[v.Param]; ok {
			return repl
		}
		return e
	case ExprConcreteKind:
		return e
	case ExprBinKind:
		lhs := s.FoldExpr(alg, v.Lhs)
		rhs := s.FoldExpr(alg, v.Rhs)
		if lhs == v.Lhs && rhs == v.Rhs {
			return e
		}
		return alg.Exprs.Bin(v.Op, lhs, rhs)
	case ExprFnKind:
		args := alg.Exprs.FnArgs(v)
		changed := false
		newArgs := make([]ExprIdx, len(args))
		for i, a := range args {
			newArgs[i] = s.FoldExpr(alg, a)
			if newArgs[i] != a {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return alg.Exprs.Fn(v.FnOp, newArgs...)
	case ExprIfKind:
		cond := s.FoldProp(alg, v.Cond)
		then := s.FoldExpr(alg, v.Then)
		alt := s.FoldExpr(alg, v.Else)
		if cond == v.Cond && then == v.Then && alt == v.Else {
			return e
		}
		return alg.Exprs.If(cond, then, alt)
	}
	panic("ir: unreachable expr kind")
}

// FoldProp rewrites p under s.
func (s *Subst) FoldProp(alg *Algebra, p PropIdx) PropIdx {
	v := alg.Props.Get(p)
	switch v.Kind {
	case PropTrueKind, PropFalseKind:
		return p
	case PropCmpKind:
		return alg.Props.Cmp(v.CmpOp, s.FoldExpr(alg, v.CmpLhs), s.FoldExpr(alg, v.CmpRhs))
	case PropTimeCmpKind:
		return alg.Props.TimeCmp(v.CmpOp, s.FoldTime(alg, v.TimeLhs), s.FoldTime(alg, v.TimeRhs))
	case PropTimeSubCmpKind:
		return alg.Props.TimeSubCmp(v.CmpOp, s.FoldTimeSub(alg, v.TSubLhs), s.FoldTimeSub(alg, v.TSubRhs))
	case PropNotKind:
		return alg.Props.Not(s.FoldProp(alg, v.Operand))
	case PropAndKind:
		return alg.Props.And(s.FoldProp(alg, v.Lhs), s.FoldProp(alg, v.Rhs))
	case PropOrKind:
		return alg.Props.Or(s.FoldProp(alg, v.Lhs), s.FoldProp(alg, v.Rhs))
	case PropImpliesKind:
		return alg.Props.Implies(s.FoldProp(alg, v.Lhs), s.FoldProp(alg, v.Rhs))
	}
	panic("ir: unreachable prop kind")
}

// FoldTime rewrites a Time under s, adding the substituted event's offset
// to the existing one when the event itself is rebound (spec §4.A).
func (s *Subst) FoldTime(alg *Algebra, t TimeIdx) TimeIdx {
	v := alg.Times.GetTime(t)
	offset := s.FoldExpr(alg, v.Offset)
	if repl, ok := s.Events[v.Event]; ok {
		rv := alg.Times.GetTime(repl)
		return alg.Times.Time(rv.Event, alg.Exprs.Bin(Add, rv.Offset, offset))
	}
	if offset == v.Offset {
		return t
	}
	return alg.Times.Time(v.Event, offset)
}

// FoldTimeSub rewrites a TimeSub under s.
func (s *Subst) FoldTimeSub(alg *Algebra, ts TimeSubIdx) TimeSubIdx {
	v := alg.Times.GetTimeSub(ts)
	switch v.Kind {
	case TimeSubUnitKind:
		return alg.Times.UnitSub(s.FoldExpr(alg, v.Unit))
	case TimeSubSymKind:
		return alg.Times.SymSub(s.FoldTime(alg, v.A), s.FoldTime(alg, v.B))
	}
	panic("ir: unreachable timesub kind")
}
