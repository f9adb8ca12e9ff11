package lower

import (
	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/ir"
)

// lowerSignature populates comp's signature-level params, events, ports and
// constraints (spec §3 "Params"/"Events"/"Ports"). Defaults (ParamBinder.
// Default, EventBinder.Default) are resolved upstream by the AST front end
// at every call site, so nothing in ir.Param/ir.Event carries them.
func (l *lowerer) lowerSignature(idx ir.CompIdx, d ast.Component) {
	if d.Kind != ast.KindSource && d.Kind != ast.KindExternal && d.Kind != ast.KindGenerated {
		return
	}
	l.ctx.MutComp(idx, func(c *ir.Component) {
		sig := d.Signature

		for _, pb := range sig.Params {
			info := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: pb.Name, Pos: toSourcePos(pb.Pos)})
			pIdx := c.AddParam(ir.Param{Owner: ir.SigOwner(), Info: info})
			c.BindSourceName("param", pb.Name, pIdx.Int())
			c.ParamArgs = append(c.ParamArgs, pIdx)
		}

		interfaceEvents := make(map[string]bool, len(sig.InterfacePorts))
		for _, name := range sig.InterfacePorts {
			interfaceEvents[name] = true
		}
		for _, eb := range sig.Events {
			info := c.AddInfo(ir.Info{Kind: ir.InfoEvent, Name: eb.Name, Pos: toSourcePos(eb.Pos)})
			delay := l.lowerExpr(c, eb.Delay)
			eIdx := c.AddEvent(ir.Event{
				Delay:        c.Algebra.Times.UnitSub(delay),
				Info:         info,
				HasInterface: interfaceEvents[eb.Name],
			})
			c.BindSourceName("event", eb.Name, eIdx.Int())
			c.EventArgs = append(c.EventArgs, eIdx)
		}

		for _, io := range sig.UnannotatedIO {
			info := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: io.Name, Pos: toSourcePos(io.Pos)})
			pIdx := c.AddPort(ir.Port{
				Owner:       ir.SigPortOwner(dirOf(io.Dir)),
				Width:       c.Algebra.Exprs.Concrete(1),
				Info:        info,
				Unannotated: true,
			})
			c.BindSourceName("port", io.Name, pIdx.Int())
		}

		for _, pd := range sig.Ports {
			l.lowerPortDecl(c, pd)
		}

		for _, cc := range sig.EventConstraints {
			prop := l.lowerProp(c, cc)
			info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "signature event constraint"})
			c.EventAsserts = append(c.EventAsserts, ir.Assert(prop, info, ir.ReasonEventConstraint))
		}
		for _, cc := range sig.ParamConstraints {
			prop := l.lowerProp(c, cc)
			info := c.AddInfo(ir.Info{Kind: ir.InfoAssert, Note: "signature param constraint"})
			c.ParamAsserts = append(c.ParamAsserts, ir.Assert(prop, info, ir.ReasonParamConstraint))
		}
		for _, cond := range sig.ConditionalConstraints {
			c.ConditionalParamAsserts = append(c.ConditionalParamAsserts, ir.CondFact{
				Cond: l.lowerProp(c, cond.Cond),
				Prop: l.lowerProp(c, cond.Constraint),
				Info: c.AddInfo(ir.Info{Kind: ir.InfoAssert, Pos: toSourcePos(cond.Pos), Note: "conditional param constraint"}),
			})
		}
	})
}

// lowerPortDecl lowers one signature port.
func (l *lowerer) lowerPortDecl(c *ir.Component, pd ast.PortDecl) ir.PortIdx {
	return l.lowerPortDeclWithOwner(c, pd, ir.SigPortOwner(dirOf(pd.Dir)))
}

// lowerPortDeclWithOwner lowers a port declaration under an explicit owner,
// including any bundle index params it introduces. A bundle's index params
// are allocated only after the port's own slot exists, since ir.BundleOwner
// needs the owning port's index (spec §3 "Params": "OwnerBundle ... the
// bundle port this index parameter belongs to").
func (l *lowerer) lowerPortDeclWithOwner(c *ir.Component, pd ast.PortDecl, owner ir.PortOwner) ir.PortIdx {
	width := l.lowerExpr(c, pd.Width)
	liveRange := l.lowerRange(c, pd.Live)

	info := c.AddInfo(ir.Info{Kind: ir.InfoPort, Name: pd.Name, Pos: toSourcePos(pd.Pos)})
	portIdx := c.AddPort(ir.Port{
		Owner: owner,
		Width: width,
		Live:  ir.Liveness{Range: liveRange},
		Info:  info,
	})

	idxs := make([]ir.ParamIdx, len(pd.Idxs))
	lens := make([]ir.ExprIdx, len(pd.Lens))
	for i, name := range pd.Idxs {
		dimInfo := c.AddInfo(ir.Info{Kind: ir.InfoParam, Name: name, Pos: toSourcePos(pd.Pos)})
		pIdx := c.AddParam(ir.Param{Owner: ir.BundleOwner(portIdx), Info: dimInfo})
		c.BindSourceName("param", name, pIdx.Int())
		idxs[i] = pIdx
	}
	for i, lenExpr := range pd.Lens {
		lens[i] = l.lowerExpr(c, lenExpr)
	}

	port := c.Ports.Get(portIdx)
	port.Live.Idxs = idxs
	port.Live.Lens = lens
	c.Ports.Set(portIdx, port)

	c.BindSourceName("port", pd.Name, portIdx.Int())
	return portIdx
}

func dirOf(d ast.Direction) ir.Direction {
	switch d {
	case ast.DirOut:
		return ir.DirOut
	case ast.DirInOut:
		return ir.DirInOut
	default:
		return ir.DirIn
	}
}
