package ir

// ParamOwnerKind tags which binding site introduced a Param (spec §3 "Params").
type ParamOwnerKind uint8

const (
	OwnerSig ParamOwnerKind = iota
	OwnerLoop
	OwnerExists
	OwnerLet
	OwnerInstance
	OwnerBundle
)

// ParamOwner records where a Param comes from.
type ParamOwner struct {
	Kind ParamOwnerKind

	// OwnerLet: Bind is the bound expression; HasBind is false when the
	// param is "to be solved for" (`let x = ?`), which the scheduler fills in.
	HasBind bool
	Bind    ExprIdx

	// OwnerInstance: the foreign param of the instanced component that this
	// local param exports.
	Inst Foreign[Instance]
	Base Foreign[Param]

	// OwnerBundle: the bundle port this index parameter belongs to.
	Port PortIdx
}

func SigOwner() ParamOwner   { return ParamOwner{Kind: OwnerSig} }
func LoopOwner() ParamOwner  { return ParamOwner{Kind: OwnerLoop} }
func ExistsOwner() ParamOwner {
	return ParamOwner{Kind: OwnerExists}
}
func UnsolvedLetOwner() ParamOwner {
	return ParamOwner{Kind: OwnerLet, HasBind: false}
}
func BoundLetOwner(bind ExprIdx) ParamOwner {
	return ParamOwner{Kind: OwnerLet, HasBind: true, Bind: bind}
}
func InstanceOwner(inst Foreign[Instance], base Foreign[Param]) ParamOwner {
	return ParamOwner{Kind: OwnerInstance, Inst: inst, Base: base}
}
func BundleOwner(port PortIdx) ParamOwner {
	return ParamOwner{Kind: OwnerBundle, Port: port}
}

// Param is a bound symbolic quantity (spec §3 "Params").
type Param struct {
	Owner ParamOwner
	Info  InfoIdx
}
