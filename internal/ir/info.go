package ir

// SourcePos is a line/column position in the surface program that produced
// this entity, threaded through from AST lowering so that VCs and internal
// errors can be reconstructed into user-visible diagnostics by an external
// renderer (spec §6 "Diagnostic records").
type SourcePos struct {
	File string
	Line int
	Col  int
}

// InfoKind distinguishes why an Info block exists.
type InfoKind uint8

const (
	InfoParam InfoKind = iota
	InfoEvent
	InfoPort
	InfoInstance
	InfoInvoke
	InfoAssert
	InfoAssume
	InfoGenerated // synthesized by a pass, no direct surface origin
)

// Info is a component-owned record pairing a surface name (if any) with a
// source position, referenced by InfoIdx from params/events/ports/instances
// /invokes/facts (spec §3 "optional source-name information").
type Info struct {
	Kind InfoKind
	Name string // empty when the entity has no surface name
	Pos  SourcePos
	Note string // human-readable context, e.g. "inserted by bundle elimination"
}
