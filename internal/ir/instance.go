package ir

// Instance is a use of another component as a sub-component (spec §3
// "Instances"). Args supplies concrete/symbolic values for the target's
// signature params; Lives records the active ranges used by sharing
// checks; Params lists the fresh params this instance exports to its
// owner (used for existentials discovered during monomorphization).
type Instance struct {
	Comp   CompIdx
	Args   []ExprIdx
	Lives  []Range
	Params []ParamIdx
	Info   InfoIdx
}

// EventBind binds an invoke's abstract time argument to one of the
// invoked instance's interface events (spec §3 "Invokes").
type EventBind struct {
	Delay TimeSubIdx
	Arg   TimeIdx
	Info  InfoIdx
	Base  Foreign[Event]
}

// Invoke is a use of an instance at a set of event bindings, producing a
// fresh set of ports (spec §3 "Invokes"; GLOSSARY "Invocation").
type Invoke struct {
	Inst   InstanceIdx
	Events []EventBind
	Ports  []PortIdx
	Info   InfoIdx
}
