package ir

// Context is the whole-program IR produced by AST lowering and threaded
// through the pass pipeline (spec §2).
type Context struct {
	Components Store[Component]
	Entrypoint CompIdx
	HasEntry   bool

	// Externs mirrors the namespace consumed from the AST front-end (spec
	// §6): a path an extern component signature was declared under, used
	// by the generator interface to resolve where a generated component's
	// output file should be recorded.
	Externs map[CompIdx]string
}

func NewContext() *Context {
	return &Context{
		Externs: make(map[CompIdx]string),
	}
}

// AddComponent registers comp and returns its index.
func (ctx *Context) AddComponent(comp *Component) CompIdx {
	return ctx.Components.Add(*comp)
}

// Comp returns a pointer-safe accessor: since Store stores values, callers
// that need to mutate a component in place should use MutComp.
func (ctx *Context) Comp(idx CompIdx) Component {
	return ctx.Components.Get(idx)
}

// MutComp applies fn to the live component at idx and writes the result
// back, the pattern every in-place-mutating pass (assumption synthesis,
// interval check, monomorphization of externs) uses instead of juggling
// pointers into the arena directly.
func (ctx *Context) MutComp(idx CompIdx, fn func(*Component)) {
	c := ctx.Components.Get(idx)
	fn(&c)
	ctx.Components.Set(idx, c)
}

// TopoOrder returns component indices leaves-first: a component with no
// instances of other source components comes before any component that
// instantiates it (spec §5, §9 "Cyclic and aliased graphs"). Cycles cannot
// arise in a well-formed program because monomorphization's instance graph
// is acyclic by construction (every instance statically names a concrete
// target component); a cycle here is an internal error.
func (ctx *Context) TopoOrder() []CompIdx {
	all := ctx.Components.Indices()
	visited := make(map[int]bool, len(all))
	visiting := make(map[int]bool, len(all))
	var order []CompIdx

	var visit func(idx CompIdx)
	visit = func(idx CompIdx) {
		id := idx.raw()
		if visited[id] {
			return
		}
		if visiting[id] {
			panic("ir: cyclic instance graph")
		}
		visiting[id] = true
		comp := ctx.Components.Get(idx)
		for _, instIdx := range comp.Instances.Indices() {
			inst := comp.Instances.Get(instIdx)
			if ctx.Components.Valid(inst.Comp) {
				visit(inst.Comp)
			}
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, idx)
	}

	for _, idx := range all {
		visit(idx)
	}
	return order
}
