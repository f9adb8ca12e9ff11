package visitor

import "github.com/sunholo/chronoc/internal/ir"

// Rebuilder is the second visitor flavour of spec §4.C: instead of mutating
// a component in place, a pass constructs a fresh "base" component and
// threads side maps so every underlying index resolves to a freshly added
// base index. No pass in this tree constructs one: monomorphization and
// bundle elimination each rewrite components with their own code. The
// helpers here cover Info copying and EventBind re-parenting; translating
// params, ports, instances and invokes is left to the caller.
type Rebuilder struct {
	Ctx           *ir.Context
	UnderlyingIdx ir.CompIdx
	Underlying    ir.Component
	Base          *ir.Component

	Params    *ir.SparseMap[ir.Param]
	Events    *ir.SparseMap[ir.Event]
	Ports     *ir.SparseMap[ir.Port]
	Instances *ir.SparseMap[ir.Instance]
	Invokes   *ir.SparseMap[ir.Invoke]
	Infos     *ir.SparseMap[ir.Info]
}

// NewRebuilder snapshots the underlying component and allocates an empty
// base of the given name/kind plus empty side maps.
func NewRebuilder(ctx *ir.Context, underlyingIdx ir.CompIdx, baseName string, kind ir.CompKind) *Rebuilder {
	return &Rebuilder{
		Ctx:           ctx,
		UnderlyingIdx: underlyingIdx,
		Underlying:    ctx.Components.Get(underlyingIdx),
		Base:          ir.NewComponent(baseName, kind),
		Params:        ir.NewSparseMap[ir.Param](),
		Events:        ir.NewSparseMap[ir.Event](),
		Ports:         ir.NewSparseMap[ir.Port](),
		Instances:     ir.NewSparseMap[ir.Instance](),
		Invokes:       ir.NewSparseMap[ir.Invoke](),
		Infos:         ir.NewSparseMap[ir.Info](),
	}
}

// CopyInfo copies an underlying Info block into Base (or returns the
// already-copied handle) and returns the base index.
func (r *Rebuilder) CopyInfo(underlying ir.InfoIdx) ir.InfoIdx {
	if underlying.IsUnknown() {
		return underlying
	}
	if base, ok := r.Infos.Get(underlying); ok {
		return base
	}
	info := r.Underlying.Infos.Get(underlying)
	base := r.Base.AddInfo(info)
	r.Infos.Set(underlying, base)
	return base
}

// TranslateEventBind rewrites an EventBind's delay/arg/base through Base's
// algebra given that the arg Time has already been translated by the
// caller (delay is component-local and can be copied via subst elsewhere);
// this just re-parents the Info and Base foreign reference.
func (r *Rebuilder) TranslateEventBind(eb ir.EventBind, newDelay ir.TimeSubIdx, newArg ir.TimeIdx) ir.EventBind {
	return ir.EventBind{
		Delay: newDelay,
		Arg:   newArg,
		Info:  r.CopyInfo(eb.Info),
		Base:  eb.Base,
	}
}

// Finish installs Base into Ctx and returns its fresh index.
func (r *Rebuilder) Finish() ir.CompIdx {
	return r.Ctx.AddComponent(r.Base)
}
