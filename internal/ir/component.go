package ir

// CompKind tags where a component's body comes from (spec §3 "Component").
type CompKind uint8

const (
	CompSource    CompKind = iota // defined with a body in this program
	CompExternal                  // declared signature only, implemented elsewhere
	CompGenerated                  // signature produced by an external generator tool
)

// Component is the unit of compilation: it owns dense stores for every
// entity kind and a command list forming its body (spec §3 "Component").
type Component struct {
	Name string
	Kind CompKind

	// Ordered signature binders, in declaration order.
	ParamArgs []ParamIdx
	EventArgs []EventIdx

	Algebra *Algebra

	Ports     Store[Port]
	Params    Store[Param]
	Events    Store[Event]
	Instances Store[Instance]
	Invokes   Store[Invoke]
	Infos     Store[Info]

	Body []Command

	// Facts that apply regardless of where in the body they're checked:
	// signature-level event/param asserts (translated into asserts at every
	// call site, spec §4.D) and per-existential assumptions gating VCs
	// (spec §4.E).
	EventAsserts       []Fact
	ParamAsserts       []Fact
	ExistentialAssumes []Fact

	// ConditionalParamAsserts are signature parameter constraints only in
	// force under a condition (spec §2 "desugar conditionals"); the
	// desugarcond pass consumes and clears this list.
	ConditionalParamAsserts []CondFact

	// SourceNames maps a surface identifier to the index that denotes it,
	// when such a mapping survives (spec §3 "optional source-name
	// information"). Keyed by a small discriminated name so one map can
	// hold params/events/ports without clashing.
	SourceNames map[SourceName]int
}

// SourceName is a lookup key into Component.SourceNames.
type SourceName struct {
	Space string // "param" | "event" | "port"
	Name  string
}

func NewComponent(name string, kind CompKind) *Component {
	return &Component{
		Name:        name,
		Kind:        kind,
		Algebra:     newAlgebra(),
		SourceNames: make(map[SourceName]int),
	}
}

// AddParam appends a new parameter and returns its index.
func (c *Component) AddParam(p Param) ParamIdx {
	return c.Params.Add(p)
}

// AddEvent appends a new event and returns its index.
func (c *Component) AddEvent(e Event) EventIdx {
	return c.Events.Add(e)
}

// AddPort appends a new port and returns its index.
func (c *Component) AddPort(p Port) PortIdx {
	return c.Ports.Add(p)
}

// AddInstance appends a new instance and returns its index.
func (c *Component) AddInstance(i Instance) InstanceIdx {
	return c.Instances.Add(i)
}

// AddInvoke appends a new invoke and returns its index.
func (c *Component) AddInvoke(i Invoke) InvokeIdx {
	return c.Invokes.Add(i)
}

// AddInfo appends a new info block and returns its index.
func (c *Component) AddInfo(i Info) InfoIdx {
	return c.Infos.Add(i)
}

// BindSourceName records that `name` in namespace `space` denotes idx.
func (c *Component) BindSourceName(space, name string, idx int) {
	c.SourceNames[SourceName{Space: space, Name: name}] = idx
}

// LookupSourceName resolves a surface identifier back to its index, or
// reports ok=false if no mapping survives (e.g. it was compiled away).
func (c *Component) LookupSourceName(space, name string) (int, bool) {
	idx, ok := c.SourceNames[SourceName{Space: space, Name: name}]
	return idx, ok
}

// SigPortsOrdered returns the component's signature ports in declaration
// (store) order — the order bundle elimination and monomorphization rely on
// when specializing a signature.
func (c *Component) SigPortsOrdered() []PortIdx {
	var out []PortIdx
	for _, idx := range c.Ports.Indices() {
		if c.Ports.Get(idx).Owner.Kind == PortOwnerSig {
			out = append(out, idx)
		}
	}
	return out
}
