package ir

// ExprRange is a half-open `[Start, End)` index range over one bundle
// dimension of a port access.
type ExprRange struct {
	Start ExprIdx
	End   ExprIdx
}

// Access names a port together with the (possibly empty, for a scalar
// port) per-dimension ranges being accessed, e.g. `out{0..4}`.
type Access struct {
	Port   PortIdx
	Ranges []ExprRange
}

// CommandKind tags the variant of a body Command (spec §3 "Commands").
type CommandKind uint8

const (
	CmdInstance CommandKind = iota
	CmdInvoke
	CmdBundleDef
	CmdConnect
	CmdLet
	CmdForLoop
	CmdIf
	CmdFact
	CmdExists
)

// Command is a single statement in a component's body. Nested scopes
// (ForLoop body, If branches) are represented as literal []Command slices
// rather than indirected through a store, since the visitor recurses into
// them structurally (spec §4.C) and nothing else needs to address a command
// by stable identity.
type Command struct {
	Kind CommandKind
	Info InfoIdx

	Inst InstanceIdx // CmdInstance
	Inv  InvokeIdx   // CmdInvoke

	BundlePort PortIdx // CmdBundleDef

	Dst Access // CmdConnect
	Src Access // CmdConnect

	LetParam ParamIdx // CmdLet
	LetHasExpr bool
	LetExpr  ExprIdx // CmdLet, only meaningful if LetHasExpr

	LoopParam ParamIdx // CmdForLoop
	LoopStart ExprIdx
	LoopEnd   ExprIdx
	Body      []Command // CmdForLoop

	IfCond PropIdx   // CmdIf
	Then   []Command // CmdIf
	Alt    []Command // CmdIf

	TheFact Fact // CmdFact

	ExistsParam ParamIdx // CmdExists
}

func InstanceCmd(inst InstanceIdx, info InfoIdx) Command {
	return Command{Kind: CmdInstance, Inst: inst, Info: info}
}

func InvokeCmd(inv InvokeIdx, info InfoIdx) Command {
	return Command{Kind: CmdInvoke, Inv: inv, Info: info}
}

func BundleDefCmd(port PortIdx, info InfoIdx) Command {
	return Command{Kind: CmdBundleDef, BundlePort: port, Info: info}
}

func ConnectCmd(dst, src Access, info InfoIdx) Command {
	return Command{Kind: CmdConnect, Dst: dst, Src: src, Info: info}
}

func LetCmd(param ParamIdx, expr ExprIdx, hasExpr bool, info InfoIdx) Command {
	return Command{Kind: CmdLet, LetParam: param, LetExpr: expr, LetHasExpr: hasExpr, Info: info}
}

func ForLoopCmd(idx ParamIdx, start, end ExprIdx, body []Command, info InfoIdx) Command {
	return Command{Kind: CmdForLoop, LoopParam: idx, LoopStart: start, LoopEnd: end, Body: body, Info: info}
}

func IfCmd(cond PropIdx, then, alt []Command, info InfoIdx) Command {
	return Command{Kind: CmdIf, IfCond: cond, Then: then, Alt: alt, Info: info}
}

func FactCmd(f Fact, info InfoIdx) Command {
	return Command{Kind: CmdFact, TheFact: f, Info: info}
}

func ExistsCmd(param ParamIdx, info InfoIdx) Command {
	return Command{Kind: CmdExists, ExistsParam: param, Info: info}
}
