package ir

// Fact is a proposition tagged with why it holds (spec §3 "Facts"). When
// Checked is true the fact is an *assertion* — a verification condition the
// core emits for an external SMT engine to discharge (spec §1 Non-goals);
// when false it is an *assumption* the checker may rely on without proof.
type Fact struct {
	Prop    PropIdx
	Reason  InfoIdx
	Checked bool
	Kind    Reason // classification used to reconstruct a diagnostic (spec §6)
}

func Assume(prop PropIdx, reason InfoIdx) Fact {
	return Fact{Prop: prop, Reason: reason, Checked: false}
}

func Assert(prop PropIdx, reason InfoIdx, kind Reason) Fact {
	return Fact{Prop: prop, Reason: reason, Checked: true, Kind: kind}
}

// CondFact is a parameter/event constraint only in force under Cond (spec
// §2 "desugar conditionals"); the desugarcond pass rewrites each into a
// plain Fact of `Cond => Prop` and moves it into the component's ordinary
// ParamAsserts/EventAsserts list.
type CondFact struct {
	Cond PropIdx
	Prop PropIdx
	Info InfoIdx
}
