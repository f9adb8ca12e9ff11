// Package fixtures builds small, hand-written ast.Namespace values for
// exercising the pipeline without a surface-syntax front end, which is
// out of scope for this compiler (spec §1). cmd/chronoc's `run`/`check`
// subcommands select one of these by name the way a real driver would
// select a source file.
package fixtures

import "github.com/sunholo/chronoc/internal/ast"

// Names lists every fixture registered below, in a stable order for
// `chronoc list-fixtures`.
var Names = []string{"passthrough", "buffered"}

// Get returns the named fixture, or nil if name isn't registered.
func Get(name string) *ast.Namespace {
	switch name {
	case "passthrough":
		return passthrough()
	case "buffered":
		return buffered()
	default:
		return nil
	}
}

// passthrough is the smallest legal program: one source component with a
// single interface event, a scalar in/out port pair sharing one liveness
// range, and a body that connects them directly. It exercises lowering,
// every whole-program pass, and scheduling's degenerate zero-delay case
// without needing any instances.
func passthrough() *ast.Namespace {
	widthParam := ast.ParamBinder{Name: "WIDTH"}
	gEvent := ast.EventBinder{Name: "G", Delay: ast.EConcrete{Value: 1}}
	gTime := func(offset uint64) ast.Time {
		return ast.Time{Event: "G", Offset: ast.EConcrete{Value: offset}}
	}
	live := ast.Range{Start: gTime(0), End: gTime(1)}

	comp := ast.Component{
		Name: "Passthrough",
		Kind: ast.KindSource,
		Signature: ast.Signature{
			Params:         []ast.ParamBinder{widthParam},
			Events:         []ast.EventBinder{gEvent},
			InterfacePorts: []string{"G"},
			Ports: []ast.PortDecl{
				{Name: "a", Dir: ast.DirIn, Width: ast.EParam{Name: "WIDTH"}, Live: live},
				{Name: "z", Dir: ast.DirOut, Width: ast.EParam{Name: "WIDTH"}, Live: live},
			},
		},
		Body: []ast.Command{
			ast.CConnect{DstName: "z", SrcName: "a"},
		},
	}

	return &ast.Namespace{
		Components: []ast.Component{comp},
		Entrypoint: "Passthrough",
	}
}

// buffered instances Passthrough twice in series through a top-level
// component whose own interface event offsets the second connect by a
// cycle, forcing the scheduler to insert a delay register (spec §4.H) on
// the connect between the two invokes' mismatched liveness windows.
func buffered() *ast.Namespace {
	passthrough := passthrough().Components[0]

	gEvent := ast.EventBinder{Name: "G", Delay: ast.EConcrete{Value: 1}}
	gTime := func(offset uint64) ast.Time {
		return ast.Time{Event: "G", Offset: ast.EConcrete{Value: offset}}
	}

	top := ast.Component{
		Name: "Buffered",
		Kind: ast.KindSource,
		Signature: ast.Signature{
			Params:         []ast.ParamBinder{{Name: "WIDTH"}},
			Events:         []ast.EventBinder{gEvent},
			InterfacePorts: []string{"G"},
			Ports: []ast.PortDecl{
				{Name: "a", Dir: ast.DirIn, Width: ast.EParam{Name: "WIDTH"}, Live: ast.Range{Start: gTime(0), End: gTime(1)}},
				{Name: "z", Dir: ast.DirOut, Width: ast.EParam{Name: "WIDTH"}, Live: ast.Range{Start: gTime(1), End: gTime(2)}},
			},
		},
		Body: []ast.Command{
			ast.CInstance{Name: "s1", Target: "Passthrough", Args: []ast.Expr{ast.EParam{Name: "WIDTH"}}},
			ast.CInstance{Name: "s2", Target: "Passthrough", Args: []ast.Expr{ast.EParam{Name: "WIDTH"}}},
			ast.CInvoke{Name: "i1", Inst: "s1", Events: []ast.EventArg{{Event: "G", Arg: gTime(0)}}},
			ast.CInvoke{Name: "i2", Inst: "s2", Events: []ast.EventArg{{Event: "G", Arg: gTime(1)}}},
			ast.CConnect{DstName: "i1.a", SrcName: "a"},
			ast.CConnect{DstName: "i2.a", SrcName: "i1.z"},
			ast.CConnect{DstName: "z", SrcName: "i2.z"},
		},
	}

	return &ast.Namespace{
		Components: []ast.Component{passthrough, top},
		Entrypoint: "Buffered",
	}
}
