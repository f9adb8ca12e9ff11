package ir

import "fmt"

// ValidationError reports a broken structural invariant (spec §3
// "Invariants"). These never originate from user input — they indicate a
// pass bug — so callers should treat a non-empty result as an internal
// error (spec §7), not something to recover from.
type ValidationError struct {
	Component string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid IR in component %q: %s", e.Component, e.Message)
}

// Validate checks every invariant of spec §3 against comp, run after every
// pass terminates (spec §8 property 5).
func Validate(ctx *Context, idx CompIdx) []error {
	comp := ctx.Components.Get(idx)
	var errs []error

	fail := func(format string, args ...any) {
		errs = append(errs, &ValidationError{Component: comp.Name, Message: fmt.Sprintf(format, args...)})
	}

	// Any Param with owner Bundle(p) is referenced by p.live.idxs and by no
	// other port.
	bundleOwners := make(map[int][]PortIdx) // param raw id -> ports referencing it as an idx dim
	for _, pIdx := range comp.Ports.Indices() {
		port := comp.Ports.Get(pIdx)
		for _, dimParam := range port.Live.Idxs {
			bundleOwners[dimParam.raw()] = append(bundleOwners[dimParam.raw()], pIdx)
		}
	}
	for _, paramIdx := range comp.Params.Indices() {
		param := comp.Params.Get(paramIdx)
		if param.Owner.Kind != OwnerBundle {
			continue
		}
		refs := bundleOwners[paramIdx.raw()]
		if len(refs) != 1 || refs[0] != param.Owner.Port {
			fail("bundle param %s must be referenced by exactly its owning port's Live.Idxs, found %v", paramIdx, refs)
		}
	}

	// An Invoke's port list contains exactly the ports whose owner is
	// Inv{inv = self}.
	portsOwnedByInvoke := make(map[int][]PortIdx)
	for _, pIdx := range comp.Ports.Indices() {
		port := comp.Ports.Get(pIdx)
		if port.Owner.Kind == PortOwnerInv {
			portsOwnedByInvoke[port.Owner.Inv.raw()] = append(portsOwnedByInvoke[port.Owner.Inv.raw()], pIdx)
		}
	}
	for _, invIdx := range comp.Invokes.Indices() {
		inv := comp.Invokes.Get(invIdx)
		owned := portsOwnedByInvoke[invIdx.raw()]
		if !samePortSet(inv.Ports, owned) {
			fail("invoke %s port list does not match ports owned by it", invIdx)
		}
	}

	// A Let{bind = Some(e)} param appears as the param field of some Let
	// command whose expr equals Some(e).
	letCmdBindings := make(map[int]ExprIdx)
	var walkLet func(cmds []Command)
	walkLet = func(cmds []Command) {
		for _, cmd := range cmds {
			switch cmd.Kind {
			case CmdLet:
				if cmd.LetHasExpr {
					letCmdBindings[cmd.LetParam.raw()] = cmd.LetExpr
				}
			case CmdForLoop:
				walkLet(cmd.Body)
			case CmdIf:
				walkLet(cmd.Then)
				walkLet(cmd.Alt)
			}
		}
	}
	walkLet(comp.Body)
	for _, paramIdx := range comp.Params.Indices() {
		param := comp.Params.Get(paramIdx)
		if param.Owner.Kind != OwnerLet || !param.Owner.HasBind {
			continue
		}
		bound, ok := letCmdBindings[paramIdx.raw()]
		if !ok || bound != param.Owner.Bind {
			fail("let-bound param %s has no matching Let command with the same expr", paramIdx)
		}
	}

	// An instance's args.len() equals the number of sig-owned params of its
	// target component.
	for _, instIdx := range comp.Instances.Indices() {
		inst := comp.Instances.Get(instIdx)
		if !ctx.Components.Valid(inst.Comp) {
			continue // target may have been collapsed away by a rebuilding pass
		}
		target := ctx.Components.Get(inst.Comp)
		if len(inst.Args) != len(target.ParamArgs) {
			fail("instance %s supplies %d args but target %q has %d signature params",
				instIdx, len(inst.Args), target.Name, len(target.ParamArgs))
		}
	}

	// An Exists binding refers to a param whose owner is Exists in the
	// enclosing signature.
	var walkExists func(cmds []Command)
	walkExists = func(cmds []Command) {
		for _, cmd := range cmds {
			switch cmd.Kind {
			case CmdExists:
				if !comp.Params.Valid(cmd.ExistsParam) || comp.Params.Get(cmd.ExistsParam).Owner.Kind != OwnerExists {
					fail("exists command %s does not refer to an Exists-owned param", cmd.ExistsParam)
				}
			case CmdForLoop:
				walkExists(cmd.Body)
			case CmdIf:
				walkExists(cmd.Then)
				walkExists(cmd.Alt)
			}
		}
	}
	walkExists(comp.Body)

	return errs
}

func samePortSet(a, b []PortIdx) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]bool, len(a))
	for _, p := range a {
		seen[p.raw()] = true
	}
	for _, p := range b {
		if !seen[p.raw()] {
			return false
		}
	}
	return true
}
