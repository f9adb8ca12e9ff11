// Package visitor implements the generic component-visitor framework (spec
// §4.C): a single-threaded, pre-order traversal of a component's command
// list with well-defined rewrite actions, used to unify every IR pass.
package visitor

import "github.com/sunholo/chronoc/internal/ir"

// ActionKind tags the variant of Action a hook returns.
type ActionKind uint8

const (
	Continue ActionKind = iota
	Stop
	AddBefore
	Change
)

// Action is the driver instruction a visitor hook returns after inspecting
// one command (spec §4.C).
type Action struct {
	Kind     ActionKind
	Commands []ir.Command // AddBefore, Change
}

func ContinueAction() Action { return Action{Kind: Continue} }
func StopAction() Action     { return Action{Kind: Stop} }
func AddBeforeAction(cmds ...ir.Command) Action {
	return Action{Kind: AddBefore, Commands: cmds}
}
func ChangeAction(cmds ...ir.Command) Action {
	return Action{Kind: Change, Commands: cmds}
}

// Visitor is implemented by passes that mutate a component's body in place
// (as opposed to Rebuilder, which constructs a fresh component). Every
// hook defaults to Continue when embedded via Base, so a pass only
// overrides the commands it cares about.
type Visitor interface {
	Start(data *Data) Action
	End(data *Data) Action
	Instance(cmd *ir.Command, data *Data) Action
	Invoke(cmd *ir.Command, data *Data) Action
	Connect(cmd *ir.Command, data *Data) Action
	BundleDef(cmd *ir.Command, data *Data) Action
	ParamLet(cmd *ir.Command, data *Data) Action
	Fact(cmd *ir.Command, data *Data) Action
	StartLoop(cmd *ir.Command, data *Data) Action
	EndLoop(cmd *ir.Command, data *Data) Action
	StartIf(cmd *ir.Command, data *Data) Action
	EndIf(cmd *ir.Command, data *Data) Action
	// ClearData is called between components so per-pass accumulators
	// don't leak across component boundaries (spec §4.C).
	ClearData()
}

// Data is per-pass, per-component state threaded through every hook.
type Data struct {
	Ctx  *ir.Context
	Comp ir.CompIdx
}

// Base gives every hook a Continue default; passes embed it and override
// only the hooks they need.
type Base struct{}

func (Base) Start(*Data) Action                      { return ContinueAction() }
func (Base) End(*Data) Action                        { return ContinueAction() }
func (Base) Instance(*ir.Command, *Data) Action       { return ContinueAction() }
func (Base) Invoke(*ir.Command, *Data) Action         { return ContinueAction() }
func (Base) Connect(*ir.Command, *Data) Action        { return ContinueAction() }
func (Base) BundleDef(*ir.Command, *Data) Action      { return ContinueAction() }
func (Base) ParamLet(*ir.Command, *Data) Action       { return ContinueAction() }
func (Base) Fact(*ir.Command, *Data) Action           { return ContinueAction() }
func (Base) StartLoop(*ir.Command, *Data) Action      { return ContinueAction() }
func (Base) EndLoop(*ir.Command, *Data) Action        { return ContinueAction() }
func (Base) StartIf(*ir.Command, *Data) Action        { return ContinueAction() }
func (Base) EndIf(*ir.Command, *Data) Action          { return ContinueAction() }
func (Base) ClearData()                               {}

// Walk drives v pre-order over comp's body, applying rewrite actions, and
// writes the (possibly rewritten) body back into the component. Traversal
// is single-threaded; the only recursion is into `then`/`alt`/loop `body`
// (spec §4.C, §5).
func Walk(v Visitor, ctx *ir.Context, idx ir.CompIdx) {
	data := &Data{Ctx: ctx, Comp: idx}
	v.ClearData()

	if v.Start(data).Kind == Stop {
		return
	}

	// Body is read before the walk and written back after, but the walk
	// itself runs in between: hooks are free to call ctx.Components.Set to
	// persist other field changes (new Infos, new asserts) as they go, so
	// the component is re-fetched immediately before the Body write-back
	// rather than reusing the pre-walk snapshot, or such changes would be
	// silently lost.
	body := ctx.Components.Get(idx).Body
	newBody := walkCommands(v, data, body)

	comp := ctx.Components.Get(idx)
	comp.Body = newBody
	ctx.Components.Set(idx, comp)

	v.End(data)
}

func walkCommands(v Visitor, data *Data, cmds []ir.Command) []ir.Command {
	out := make([]ir.Command, 0, len(cmds))
	for i := 0; i < len(cmds); i++ {
		cmd := cmds[i]
		action := dispatch(v, &cmd, data)
		switch action.Kind {
		case Continue:
			out = append(out, descend(v, data, cmd))
		case Stop:
			out = append(out, cmd)
			return out
		case AddBefore:
			out = append(out, action.Commands...)
			out = append(out, descend(v, data, cmd))
		case Change:
			out = append(out, action.Commands...)
		}
	}
	return out
}

// descend recurses into a command's nested scopes, invoking the matching
// start/end hook pair for loops and ifs.
func descend(v Visitor, data *Data, cmd ir.Command) ir.Command {
	switch cmd.Kind {
	case ir.CmdForLoop:
		v.StartLoop(&cmd, data)
		cmd.Body = walkCommands(v, data, cmd.Body)
		v.EndLoop(&cmd, data)
	case ir.CmdIf:
		v.StartIf(&cmd, data)
		cmd.Then = walkCommands(v, data, cmd.Then)
		cmd.Alt = walkCommands(v, data, cmd.Alt)
		v.EndIf(&cmd, data)
	}
	return cmd
}

func dispatch(v Visitor, cmd *ir.Command, data *Data) Action {
	switch cmd.Kind {
	case ir.CmdInstance:
		return v.Instance(cmd, data)
	case ir.CmdInvoke:
		return v.Invoke(cmd, data)
	case ir.CmdConnect:
		return v.Connect(cmd, data)
	case ir.CmdBundleDef:
		return v.BundleDef(cmd, data)
	case ir.CmdLet:
		return v.ParamLet(cmd, data)
	case ir.CmdFact:
		return v.Fact(cmd, data)
	case ir.CmdForLoop, ir.CmdIf:
		return ContinueAction()
	case ir.CmdExists:
		return ContinueAction()
	}
	return ContinueAction()
}
