// Package ir defines the interned expression/proposition/time algebra and
// the per-component data model (params, events, ports, instances, invokes,
// commands, facts) that the rest of the compiler's passes operate over.
package ir

import "fmt"

// Index is a typed, opaque handle into a Store[T]. Indices are stable for
// the lifetime of a component; deleting a slot invalidates it without
// renumbering its siblings.
type Index[T any] struct {
	id int
}

// Unknown returns the distinguished sentinel index used for error recovery.
func Unknown[T any]() Index[T] {
	return Index[T]{id: -1}
}

// IsUnknown reports whether idx is the UNKNOWN sentinel.
func (idx Index[T]) IsUnknown() bool {
	return idx.id < 0
}

func (idx Index[T]) String() string {
	if idx.IsUnknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("%%%d", idx.id)
}

// raw exposes the backing slot number; only Store[T] and tests should need it.
func (idx Index[T]) raw() int { return idx.id }

// Int exposes the backing slot number to callers (notably lowering, via
// Component.SourceNames) that stash it in an untyped map keyed by name
// rather than threading a typed Index around.
func (idx Index[T]) Int() int { return idx.id }

// IndexFromRaw reconstructs an Index[T] from a raw slot number, the inverse
// of Int, for the same untyped-map callers.
func IndexFromRaw[T any](id int) Index[T] {
	return Index[T]{id: id}
}

func indexOf[T any](id int) Index[T] {
	return Index[T]{id: id}
}

type (
	ExprIdx     = Index[Expr]
	PropIdx     = Index[Prop]
	TimeIdx     = Index[Time]
	TimeSubIdx  = Index[TimeSub]
	ParamIdx    = Index[Param]
	EventIdx    = Index[Event]
	PortIdx     = Index[Port]
	InstanceIdx = Index[Instance]
	InvokeIdx   = Index[Invoke]
	InfoIdx     = Index[Info]
	CompIdx     = Index[Component]
)
