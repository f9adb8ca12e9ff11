package ir

// Foreign pairs an index into another component's store with that
// component's identity (spec §3 "Foreign references"). It is the only
// legal way for one component to refer to an entity owned by another; every
// cross-component traversal goes through the Transfer* functions
// (TransferExpr, TransferProp, TransferTime, TransferTimeSub) and a Bindings
// table.
type Foreign[T any] struct {
	Idx   Index[T]
	Owner CompIdx
}

func NewForeign[T any](idx Index[T], owner CompIdx) Foreign[T] {
	return Foreign[T]{Idx: idx, Owner: owner}
}

func (f Foreign[T]) IsUnknown() bool { return f.Idx.IsUnknown() }

// Bindings maps a reader component's foreign params/events to terms already
// interned in the writer component, for use by the Transfer* functions.
type Bindings struct {
	Params map[Foreign[Param]]ExprIdx
	Events map[Foreign[Event]]TimeIdx
}

func NewBindings() *Bindings {
	return &Bindings{
		Params: make(map[Foreign[Param]]ExprIdx),
		Events: make(map[Foreign[Event]]TimeIdx),
	}
}

// TransferExpr walks expression e *in reader* and rebuilds it *in writer*,
// translating every foreign param it finds through bind.Params. Unbound
// params are assumed local to the writer already (same index space) and are
// copied through Writer's interning as-is; this is the common case when
// transferring a term that only mentions the calling component's own
// params (e.g. instance arguments already expressed in the caller).
func TransferExpr(writer *Algebra, reader *Algebra, e ExprIdx, readerComp CompIdx, bind *Bindings) ExprIdx {
	v := reader.Exprs.Get(e)
	switch v.Kind {
	case ExprParamKind:
		if dst, ok := bind.Params[NewForeign(v.Param, readerComp)]; ok {
			return dst
		}
		return writer.Exprs.Param(v.Param)
	case ExprConcreteKind:
		return writer.Exprs.Concrete(v.Value)
	case ExprBinKind:
		lhs := TransferExpr(writer, reader, v.Lhs, readerComp, bind)
		rhs := TransferExpr(writer, reader, v.Rhs, readerComp, bind)
		return writer.Exprs.Bin(v.Op, lhs, rhs)
	case ExprFnKind:
		args := make([]ExprIdx, 0, v.ArgCount)
		for _, a := range reader.Exprs.FnArgs(v) {
			args = append(args, TransferExpr(writer, reader, a, readerComp, bind))
		}
		return writer.Exprs.Fn(v.FnOp, args...)
	case ExprIfKind:
		cond := TransferProp(writer, reader, v.Cond, readerComp, bind)
		then := TransferExpr(writer, reader, v.Then, readerComp, bind)
		alt := TransferExpr(writer, reader, v.Else, readerComp, bind)
		return writer.Exprs.If(cond, then, alt)
	}
	panic("ir: unreachable expr kind")
}

// TransferProp is TransferExpr's proposition counterpart.
func TransferProp(writer *Algebra, reader *Algebra, p PropIdx, readerComp CompIdx, bind *Bindings) PropIdx {
	v := reader.Props.Get(p)
	switch v.Kind {
	case PropTrueKind:
		return writer.Props.True()
	case PropFalseKind:
		return writer.Props.False()
	case PropCmpKind:
		lhs := TransferExpr(writer, reader, v.CmpLhs, readerComp, bind)
		rhs := TransferExpr(writer, reader, v.CmpRhs, readerComp, bind)
		return writer.Props.Cmp(v.CmpOp, lhs, rhs)
	case PropTimeCmpKind:
		lhs := TransferTime(writer, reader, v.TimeLhs, readerComp, bind)
		rhs := TransferTime(writer, reader, v.TimeRhs, readerComp, bind)
		return writer.Props.TimeCmp(v.CmpOp, lhs, rhs)
	case PropTimeSubCmpKind:
		lhs := TransferTimeSub(writer, reader, v.TSubLhs, readerComp, bind)
		rhs := TransferTimeSub(writer, reader, v.TSubRhs, readerComp, bind)
		return writer.Props.TimeSubCmp(v.CmpOp, lhs, rhs)
	case PropNotKind:
		return writer.Props.Not(TransferProp(writer, reader, v.Operand, readerComp, bind))
	case PropAndKind:
		return writer.Props.And(
			TransferProp(writer, reader, v.Lhs, readerComp, bind),
			TransferProp(writer, reader, v.Rhs, readerComp, bind),
		)
	case PropOrKind:
		return writer.Props.Or(
			TransferProp(writer, reader, v.Lhs, readerComp, bind),
			TransferProp(writer, reader, v.Rhs, readerComp, bind),
		)
	case PropImpliesKind:
		return writer.Props.Implies(
			TransferProp(writer, reader, v.Lhs, readerComp, bind),
			TransferProp(writer, reader, v.Rhs, readerComp, bind),
		)
	}
	panic("ir: unreachable prop kind")
}

// TransferTime rebuilds a Time in writer, translating a bound foreign event
// by adding the new time's offset to the old one: `'G+x` with `'G ↦ 'H+y`
// folds to `'H+(x+y)` (spec §4.A).
func TransferTime(writer *Algebra, reader *Algebra, t TimeIdx, readerComp CompIdx, bind *Bindings) TimeIdx {
	v := reader.Times.GetTime(t)
	offset := TransferExpr(writer, reader, v.Offset, readerComp, bind)
	if dst, ok := bind.Events[NewForeign(v.Event, readerComp)]; ok {
		dv := writer.Times.GetTime(dst)
		newOffset := writer.Exprs.Bin(Add, dv.Offset, offset)
		return writer.Times.Time(dv.Event, newOffset)
	}
	return writer.Times.Time(v.Event, offset)
}

// TransferTimeSub is TransferExpr's TimeSub counterpart.
func TransferTimeSub(writer *Algebra, reader *Algebra, ts TimeSubIdx, readerComp CompIdx, bind *Bindings) TimeSubIdx {
	v := reader.Times.GetTimeSub(ts)
	switch v.Kind {
	case TimeSubUnitKind:
		return writer.Times.UnitSub(TransferExpr(writer, reader, v.Unit, readerComp, bind))
	case TimeSubSymKind:
		a := TransferTime(writer, reader, v.A, readerComp, bind)
		b := TransferTime(writer, reader, v.B, readerComp, bind)
		return writer.Times.SymSub(a, b)
	}
	panic("ir: unreachable timesub kind")
}
