package ir

import (
	"fmt"
	"strings"
)

// precedence tracks the surrounding operator context so the printer can
// insert the minimal necessary parentheses (spec §4.A "precedence-context
// enum (Add < Mul < Fn)").
type precedence int

const (
	precTop precedence = iota
	precAdd
	precMul
	precFn
)

func (op BinOp) precedence() precedence {
	switch op {
	case Add, Sub:
		return precAdd
	default:
		return precMul
	}
}

// PrintExpr renders e using alg's interning for sub-terms, adding
// parentheses only where the child's precedence is lower than ctx demands.
func PrintExpr(alg *Algebra, e ExprIdx) string {
	return printExpr(alg, e, precTop)
}

func printExpr(alg *Algebra, e ExprIdx, ctx precedence) string {
	v := alg.Exprs.Get(e)
	var s string
	var own precedence
	switch v.Kind {
	case ExprParamKind:
		return fmt.Sprintf("p%s", v.Param)
	case ExprConcreteKind:
		return fmt.Sprintf("%d", v.Value)
	case ExprBinKind:
		own = v.Op.precedence()
		s = fmt.Sprintf("%s %s %s",
			printExpr(alg, v.Lhs, own),
			v.Op,
			printExpr(alg, v.Rhs, own+1))
	case ExprFnKind:
		own = precFn
		args := alg.Exprs.FnArgs(v)
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = printExpr(alg, a, precTop)
		}
		s = fmt.Sprintf("%s(%s)", v.FnOp, strings.Join(parts, ", "))
	case ExprIfKind:
		own = precTop
		s = fmt.Sprintf("if %s then %s else %s",
			PrintProp(alg, v.Cond),
			printExpr(alg, v.Then, precTop),
			printExpr(alg, v.Else, precTop))
	}
	if own < ctx {
		return "(" + s + ")"
	}
	return s
}

// PrintProp renders a proposition.
func PrintProp(alg *Algebra, p PropIdx) string {
	v := alg.Props.Get(p)
	switch v.Kind {
	case PropTrueKind:
		return "true"
	case PropFalseKind:
		return "false"
	case PropCmpKind:
		return fmt.Sprintf("%s %s %s", printExpr(alg, v.CmpLhs, precTop), v.CmpOp, printExpr(alg, v.CmpRhs, precTop))
	case PropTimeCmpKind:
		return fmt.Sprintf("%s %s %s", PrintTime(alg, v.TimeLhs), v.CmpOp, PrintTime(alg, v.TimeRhs))
	case PropTimeSubCmpKind:
		return fmt.Sprintf("%s %s %s", PrintTimeSub(alg, v.TSubLhs), v.CmpOp, PrintTimeSub(alg, v.TSubRhs))
	case PropNotKind:
		return fmt.Sprintf("!(%s)", PrintProp(alg, v.Operand))
	case PropAndKind:
		return fmt.Sprintf("(%s & %s)", PrintProp(alg, v.Lhs), PrintProp(alg, v.Rhs))
	case PropOrKind:
		return fmt.Sprintf("(%s | %s)", PrintProp(alg, v.Lhs), PrintProp(alg, v.Rhs))
	case PropImpliesKind:
		return fmt.Sprintf("(%s => %s)", PrintProp(alg, v.Lhs), PrintProp(alg, v.Rhs))
	}
	return "?"
}

// PrintTime renders a time point as `'event+offset`.
func PrintTime(alg *Algebra, t TimeIdx) string {
	v := alg.Times.GetTime(t)
	return fmt.Sprintf("'%s+%s", v.Event, printExpr(alg, v.Offset, precTop))
}

// PrintTimeSub renders a TimeSub.
func PrintTimeSub(alg *Algebra, ts TimeSubIdx) string {
	v := alg.Times.GetTimeSub(ts)
	switch v.Kind {
	case TimeSubUnitKind:
		return printExpr(alg, v.Unit, precTop)
	case TimeSubSymKind:
		return fmt.Sprintf("(%s - %s)", PrintTime(alg, v.A), PrintTime(alg, v.B))
	}
	return "?"
}
