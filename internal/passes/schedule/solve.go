package schedule

import (
	"fmt"

	"github.com/sunholo/chronoc/internal/ir"
	"github.com/sunholo/chronoc/internal/smt"
)

// Goal selects what the scheduler's objective minimizes (spec §4.H).
type Goal uint8

const (
	// GoalRegisters minimizes the total retiming register cost (width
	// times cycles held) a later retime pass would have to insert.
	GoalRegisters Goal = iota
	// GoalLatency minimizes the width-weighted sum of the end times of the
	// component's signature output ports, ignoring how many registers that
	// requires.
	GoalLatency
)

// solver builds one SMT instance for a single component, encoding its
// dataflow graph (ports as nodes, Connect as edges) the way the
// scheduler's solving step does (spec §4.H).
type solver struct {
	ctx  *ir.Context
	comp ir.Component // the component being scheduled, snapshotted
	goal Goal
	sc   *smt.Context

	// paramConst maps an unresolved-or-bound local let parameter to the
	// Int const declared for it; every ExprParamKind this component's own
	// expressions can still mention at scheduling time resolves through
	// this map (spec's own solver assumes no other kind of free parameter
	// survives this late).
	paramConst map[int]smt.Expr
	// unsolved remembers, in declaration order, which params in
	// paramConst still need a value read back out of the model.
	unsolved []ir.ParamIdx

	invokeStart map[int]smt.Expr // invoke index -> its fresh t_I symbol
	portCache   map[int]portTimes

	objective    smt.Expr
	hasObjective bool
}

type portTimes struct {
	start, end smt.Expr
}

func newSolver(ctx *ir.Context, comp ir.Component, goal Goal, sc *smt.Context) *solver {
	return &solver{
		ctx:         ctx,
		comp:        comp,
		goal:        goal,
		sc:          sc,
		paramConst:  make(map[int]smt.Expr),
		invokeStart: make(map[int]smt.Expr),
		portCache:   make(map[int]portTimes),
	}
}

// schedResult is everything a solved schedule hands to the retiming pass:
// concrete values for every previously-unsolved let parameter, and the
// concrete invoke start time (`t_I`) of every invoke in the component, so
// port start/end times can be recomputed without re-consulting the solver.
type schedResult struct {
	lets    map[int]uint64
	invokes map[int]uint64
}

// run encodes comp's body, solves it, and returns the concrete values
// found for every unsolved let parameter and every invoke's start time.
func (sv *solver) run() (*schedResult, error) {
	for _, cmd := range sv.comp.Body {
		var err error
		switch cmd.Kind {
		case ir.CmdLet:
			err = sv.declareLet(cmd)
		case ir.CmdInvoke:
			err = sv.declareInvoke(cmd.Inv)
		case ir.CmdFact:
			err = sv.assertFact(cmd.TheFact)
		case ir.CmdConnect:
			err = sv.assertConnect(cmd.Dst, cmd.Src)
		}
		if err != nil {
			return nil, err
		}
	}

	// A component's own interface outputs contribute to a Latency
	// objective regardless of whether they happen to appear as a
	// Connect destination (spec §4.H "otherwise latency sums over
	// output ends").
	if sv.goal == GoalLatency {
		for _, p := range sv.comp.SigPortsOrdered() {
			port := sv.comp.Ports.Get(p)
			if port.Owner.Dir != ir.DirOut {
				continue
			}
			if _, err := sv.port(p); err != nil {
				return nil, err
			}
		}
	}

	objective := sv.objective
	if !sv.hasObjective {
		objective = smt.Numeral(0)
	}
	if err := sv.sc.Minimize(objective); err != nil {
		return nil, err
	}
	sat, err := sv.sc.CheckSat()
	if err != nil {
		return nil, err
	}
	if !sat {
		return nil, fmt.Errorf("schedule: component %s has no feasible schedule (unsat)", sv.comp.Name)
	}
	model, err := sv.sc.GetModel()
	if err != nil {
		return nil, err
	}

	res := &schedResult{
		lets:    make(map[int]uint64, len(sv.unsolved)),
		invokes: make(map[int]uint64, len(sv.invokeStart)),
	}
	for _, p := range sv.unsolved {
		name := letConstName(p)
		val, ok := model[name]
		if !ok {
			return nil, fmt.Errorf("schedule: solver model is missing a value for %s", name)
		}
		if val < 0 {
			return nil, fmt.Errorf("schedule: solver assigned a negative cycle count to %s", name)
		}
		res.lets[p.Int()] = uint64(val)
	}
	for id := range sv.invokeStart {
		val, ok := model[invokeConstName(ir.IndexFromRaw[ir.Invoke](id))]
		if !ok {
			return nil, fmt.Errorf("schedule: solver model is missing an invoke start time")
		}
		if val < 0 {
			return nil, fmt.Errorf("schedule: solver assigned a negative invoke start time")
		}
		res.invokes[id] = uint64(val)
	}
	return res, nil
}

func letConstName(p ir.ParamIdx) string {
	return fmt.Sprintf("let@param%d", p.Int())
}

func invokeConstName(i ir.InvokeIdx) string {
	return fmt.Sprintf("t@invoke%d", i.Int())
}

func (sv *solver) declareLet(cmd ir.Command) error {
	name := letConstName(cmd.LetParam)
	c, err := sv.sc.DeclareConst(name)
	if err != nil {
		return err
	}
	sv.paramConst[cmd.LetParam.Int()] = c
	if !cmd.LetHasExpr {
		sv.unsolved = append(sv.unsolved, cmd.LetParam)
		return nil
	}
	rhs, err := sv.expr(cmd.LetExpr)
	if err != nil {
		return err
	}
	return sv.sc.Assert(smt.Eq(c, rhs))
}

func (sv *solver) declareInvoke(idx ir.InvokeIdx) error {
	c, err := sv.sc.DeclareConst(invokeConstName(idx))
	if err != nil {
		return err
	}
	if err := sv.sc.Assert(smt.Gte(c, smt.Numeral(0))); err != nil {
		return err
	}
	sv.invokeStart[idx.Int()] = c
	return nil
}

func (sv *solver) assertFact(f ir.Fact) error {
	p, err := sv.prop(f.Prop)
	if err != nil {
		return err
	}
	return sv.sc.Assert(p)
}

// assertConnect asserts `start(src) <= start(dst)` and folds the edge
// into the running minimization objective (spec §4.H).
func (sv *solver) assertConnect(dst, src ir.Access) error {
	srcT, err := sv.port(src.Port)
	if err != nil {
		return err
	}
	dstT, err := sv.port(dst.Port)
	if err != nil {
		return err
	}
	if err := sv.sc.Assert(smt.Lte(srcT.start, dstT.start)); err != nil {
		return err
	}

	if sv.goal == GoalRegisters {
		width, err := evalConcrete(&sv.comp, sv.comp.Ports.Get(src.Port).Width)
		if err != nil {
			return err
		}
		diff := smt.Sub(dstT.end, srcT.end)
		cost := smt.Times(smt.Ite(smt.Gt(diff, smt.Numeral(0)), diff, smt.Numeral(0)), smt.Numeral(int64(width)))
		sv.addObjective(cost)
	}
	return nil
}

func (sv *solver) addObjective(term smt.Expr) {
	if !sv.hasObjective {
		sv.objective = term
		sv.hasObjective = true
		return
	}
	sv.objective = smt.Plus(sv.objective, term)
}

// port returns (and memoizes) the start/end symbols for a port local to
// the component being scheduled.
func (sv *solver) port(p ir.PortIdx) (portTimes, error) {
	if pt, ok := sv.portCache[p.Int()]; ok {
		return pt, nil
	}
	port := sv.comp.Ports.Get(p)

	var pt portTimes
	var err error
	switch port.Owner.Kind {
	case ir.PortOwnerSig, ir.PortOwnerLocal:
		pt.start, err = sv.expr(sv.comp.Algebra.Times.GetTime(port.Live.Range.Start).Offset)
		if err != nil {
			return portTimes{}, err
		}
		pt.end, err = sv.expr(sv.comp.Algebra.Times.GetTime(port.Live.Range.End).Offset)
		if err != nil {
			return portTimes{}, err
		}
	case ir.PortOwnerInv:
		tI, ok := sv.invokeStart[port.Owner.Inv.Int()]
		if !ok {
			return portTimes{}, fmt.Errorf("schedule: invoke port references an invoke not yet seen in body order")
		}
		target := sv.ctx.Comp(sv.comp.Instances.Get(sv.comp.Invokes.Get(port.Owner.Inv).Inst).Comp)
		basePort := target.Ports.Get(port.Owner.Base.Idx)
		baseStart, err := evalConcreteTime(&target, basePort.Live.Range.Start)
		if err != nil {
			return portTimes{}, err
		}
		baseEnd, err := evalConcreteTime(&target, basePort.Live.Range.End)
		if err != nil {
			return portTimes{}, err
		}
		pt.start = smt.Plus(tI, smt.Numeral(int64(baseStart)))
		pt.end = smt.Plus(tI, smt.Numeral(int64(baseEnd)))
	}

	if sv.goal == GoalLatency && port.Owner.Kind == ir.PortOwnerSig && port.Owner.Dir == ir.DirOut {
		width, werr := evalConcrete(&sv.comp, port.Width)
		if werr != nil {
			return portTimes{}, werr
		}
		sv.addObjective(smt.Times(pt.end, smt.Numeral(int64(width))))
	}

	sv.portCache[p.Int()] = pt
	return pt, nil
}

// expr folds e into an SMT-LIB expression local to the component being
// scheduled. Every Param node it can still encounter here is a let bound
// by a CmdLet already seen earlier in (domination-sorted) body order;
// anything else surviving this late — a loop index, an uninstantiated
// existential — is an internal error, since monomorphization and bundle
// elimination should already have removed it (spec §4.H).
func (sv *solver) expr(e ir.ExprIdx) (smt.Expr, error) {
	alg := sv.comp.Algebra
	v := alg.Exprs.Get(e)
	switch v.Kind {
	case ir.ExprConcreteKind:
		return smt.Numeral(int64(v.Value)), nil
	case ir.ExprParamKind:
		c, ok := sv.paramConst[v.Param.Int()]
		if !ok {
			return "", fmt.Errorf("schedule: component %s reads parameter %s before its let binding", sv.comp.Name, v.Param)
		}
		return c, nil
	case ir.ExprBinKind:
		lhs, err := sv.expr(v.Lhs)
		if err != nil {
			return "", err
		}
		rhs, err := sv.expr(v.Rhs)
		if err != nil {
			return "", err
		}
		switch v.Op {
		case ir.Add:
			return smt.Plus(lhs, rhs), nil
		case ir.Sub:
			return smt.Sub(lhs, rhs), nil
		case ir.Mul:
			return smt.Times(lhs, rhs), nil
		case ir.Div:
			return smt.Div(lhs, rhs), nil
		case ir.Mod:
			return smt.Mod(lhs, rhs), nil
		}
		return "", fmt.Errorf("schedule: unreachable binary operator")
	case ir.ExprFnKind:
		return "", fmt.Errorf("schedule: catalogue function %s should have been folded away before scheduling", v.FnOp)
	case ir.ExprIfKind:
		cond, err := sv.prop(v.Cond)
		if err != nil {
			return "", err
		}
		then, err := sv.expr(v.Then)
		if err != nil {
			return "", err
		}
		alt, err := sv.expr(v.Else)
		if err != nil {
			return "", err
		}
		return smt.Ite(cond, then, alt), nil
	}
	return "", fmt.Errorf("schedule: unreachable expr kind")
}

func (sv *solver) prop(p ir.PropIdx) (smt.Expr, error) {
	alg := sv.comp.Algebra
	v := alg.Props.Get(p)
	switch v.Kind {
	case ir.PropTrueKind:
		return smt.Atom("true"), nil
	case ir.PropFalseKind:
		return smt.Atom("false"), nil
	case ir.PropCmpKind:
		lhs, err := sv.expr(v.CmpLhs)
		if err != nil {
			return "", err
		}
		rhs, err := sv.expr(v.CmpRhs)
		if err != nil {
			return "", err
		}
		return cmpExpr(v.CmpOp, lhs, rhs), nil
	case ir.PropTimeCmpKind:
		lhs, err := sv.expr(alg.Times.GetTime(v.TimeLhs).Offset)
		if err != nil {
			return "", err
		}
		rhs, err := sv.expr(alg.Times.GetTime(v.TimeRhs).Offset)
		if err != nil {
			return "", err
		}
		return cmpExpr(v.CmpOp, lhs, rhs), nil
	case ir.PropTimeSubCmpKind:
		lhs, err := sv.timeSub(v.TSubLhs)
		if err != nil {
			return "", err
		}
		rhs, err := sv.timeSub(v.TSubRhs)
		if err != nil {
			return "", err
		}
		return cmpExpr(v.CmpOp, lhs, rhs), nil
	case ir.PropNotKind:
		inner, err := sv.prop(v.Operand)
		if err != nil {
			return "", err
		}
		return smt.Not(inner), nil
	case ir.PropAndKind:
		l, err := sv.prop(v.Lhs)
		if err != nil {
			return "", err
		}
		r, err := sv.prop(v.Rhs)
		if err != nil {
			return "", err
		}
		return smt.And(l, r), nil
	case ir.PropOrKind:
		l, err := sv.prop(v.Lhs)
		if err != nil {
			return "", err
		}
		r, err := sv.prop(v.Rhs)
		if err != nil {
			return "", err
		}
		return smt.Or(l, r), nil
	case ir.PropImpliesKind:
		l, err := sv.prop(v.Lhs)
		if err != nil {
			return "", err
		}
		r, err := sv.prop(v.Rhs)
		if err != nil {
			return "", err
		}
		return smt.Imp(l, r), nil
	}
	return "", fmt.Errorf("schedule: unreachable prop kind")
}

// timeSub folds a TimeSub to an expr over this component's own event
// offsets; Sym(a,b) is a-b since both times share the same reference
// event once bundle elimination has removed every foreign traversal.
func (sv *solver) timeSub(ts ir.TimeSubIdx) (smt.Expr, error) {
	v := sv.comp.Algebra.Times.GetTimeSub(ts)
	if v.Kind == ir.TimeSubUnitKind {
		return sv.expr(v.Unit)
	}
	a, err := sv.expr(sv.comp.Algebra.Times.GetTime(v.A).Offset)
	if err != nil {
		return "", err
	}
	b, err := sv.expr(sv.comp.Algebra.Times.GetTime(v.B).Offset)
	if err != nil {
		return "", err
	}
	return smt.Sub(a, b), nil
}

func cmpExpr(op ir.CmpOp, a, b smt.Expr) smt.Expr {
	switch op {
	case ir.Gt:
		return smt.Gt(a, b)
	case ir.Gte:
		return smt.Gte(a, b)
	case ir.Eq:
		return smt.Eq(a, b)
	case ir.Lt:
		return smt.Gt(b, a)
	case ir.Lte:
		return smt.Gte(b, a)
	}
	return smt.Atom("true")
}
