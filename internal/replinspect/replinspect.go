// Package replinspect is a read-only interactive explorer over a
// compiled ir.Context, grounded on the teacher's internal/repl package:
// same liner-backed line editor, same history file, same colon-command
// shape, same color palette. Unlike that REPL it never evaluates or
// mutates anything — every command is a pure read against the already-
// built IR, meant for poking at a program between pipeline stages (spec
// §9 "Open question — developer inspection tooling", resolved in
// DESIGN.md as: build a small inspector, not a stepper).
package replinspect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/chronoc/internal/ir"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

const historyFileName = ".chronoc_inspect_history"

var commands = []string{
	":help", ":quit", ":exit", ":list", ":show", ":body", ":ports",
	":asserts", ":assumes", ":externs", ":entry",
}

// Inspector holds the program being explored and the REPL's own state.
type Inspector struct {
	ctx     *ir.Context
	current ir.CompIdx
	hasCur  bool
	history string
}

// New returns an inspector over ctx, initially focused on its entrypoint
// if one was set.
func New(ctx *ir.Context) *Inspector {
	insp := &Inspector{ctx: ctx}
	if ctx.HasEntry {
		insp.current = ctx.Entrypoint
		insp.hasCur = true
	}
	return insp
}

// Start runs the interactive loop against in/out until the user quits or
// in reaches EOF, mirroring the teacher's internal/repl.Start shape:
// liner line editing, a persisted history file, and a colored prompt.
func (insp *Inspector) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	histPath := filepath.Join(os.TempDir(), historyFileName)
	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f) // history is optional
		f.Close()
	}

	line.SetCompleter(func(in string) (c []string) {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintln(out, bold(cyan("chronoc inspect")), dim("— read-only IR explorer, :help for commands"))

	for {
		input, err := line.Prompt(insp.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, dim("goodbye"))
			break
		}
		if err != nil {
			fmt.Fprintln(out, red(err.Error()))
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == ":quit" || input == ":q" || input == ":exit" {
			break
		}
		insp.dispatch(input, out)
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = line.WriteHistory(f) // history is optional
		f.Close()
	}
}

func (insp *Inspector) prompt() string {
	if !insp.hasCur {
		return cyan("chronoc> ")
	}
	return cyan(fmt.Sprintf("chronoc[%s]> ", insp.ctx.Comp(insp.current).Name))
}

func (insp *Inspector) dispatch(input string, out io.Writer) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":help":
		insp.help(out)
	case ":list":
		insp.list(out)
	case ":show":
		insp.show(fields[1:], out)
	case ":body":
		insp.body(out)
	case ":ports":
		insp.ports(out)
	case ":asserts":
		insp.asserts(out)
	case ":assumes":
		insp.assumes(out)
	case ":externs":
		insp.externs(out)
	case ":entry":
		insp.entry(out)
	default:
		fmt.Fprintln(out, red("unknown command:"), input, dim("(:help for a list)"))
	}
}

func (insp *Inspector) help(out io.Writer) {
	fmt.Fprintln(out, bold("commands:"))
	fmt.Fprintln(out, "  :list              list every component")
	fmt.Fprintln(out, "  :show <name>       focus a component by name")
	fmt.Fprintln(out, "  :body              print the focused component's body")
	fmt.Fprintln(out, "  :ports             print the focused component's signature ports")
	fmt.Fprintln(out, "  :asserts           print the focused component's param/event asserts")
	fmt.Fprintln(out, "  :assumes           print the focused component's existential assumptions")
	fmt.Fprintln(out, "  :externs           list every extern component and its generator tag")
	fmt.Fprintln(out, "  :entry             focus the program's entrypoint")
	fmt.Fprintln(out, "  :quit, :q, :exit   leave")
}

func (insp *Inspector) list(out io.Writer) {
	idxs := insp.ctx.Components.Indices()
	names := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		names = append(names, fmt.Sprintf("%s  %s", kindTag(insp.ctx.Comp(idx).Kind), insp.ctx.Comp(idx).Name))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
}

func kindTag(k ir.CompKind) string {
	switch k {
	case ir.CompSource:
		return green("src")
	case ir.CompExternal:
		return yellow("ext")
	case ir.CompGenerated:
		return cyan("gen")
	default:
		return "?"
	}
}

func (insp *Inspector) show(args []string, out io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(out, red("usage: :show <name>"))
		return
	}
	idx, ok := insp.find(args[0])
	if !ok {
		fmt.Fprintln(out, red("no such component:"), args[0])
		return
	}
	insp.current = idx
	insp.hasCur = true
	comp := insp.ctx.Comp(idx)
	fmt.Fprintf(out, "%s %s  (%d params, %d events, %d ports, %d instances, %d invokes)\n",
		kindTag(comp.Kind), bold(comp.Name),
		len(comp.Params.Indices()), len(comp.Events.Indices()),
		len(comp.Ports.Indices()), len(comp.Instances.Indices()), len(comp.Invokes.Indices()))
}

func (insp *Inspector) find(name string) (ir.CompIdx, bool) {
	for _, idx := range insp.ctx.Components.Indices() {
		if insp.ctx.Comp(idx).Name == name {
			return idx, true
		}
	}
	return ir.Unknown[ir.Component](), false
}

func (insp *Inspector) requireFocus(out io.Writer) (ir.Component, bool) {
	if !insp.hasCur {
		fmt.Fprintln(out, red("no component focused — use :show <name> first"))
		return ir.Component{}, false
	}
	return insp.ctx.Comp(insp.current), true
}

func (insp *Inspector) body(out io.Writer) {
	comp, ok := insp.requireFocus(out)
	if !ok {
		return
	}
	printCommands(out, &comp, comp.Body, 0)
}

func printCommands(out io.Writer, comp *ir.Component, body []ir.Command, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, cmd := range body {
		switch cmd.Kind {
		case ir.CmdInstance:
			inst := comp.Instances.Get(cmd.Inst)
			fmt.Fprintf(out, "%sinstance %s\n", pad, dim(fmt.Sprintf("#%d -> comp#%d", cmd.Inst.Int(), inst.Comp.Int())))
		case ir.CmdInvoke:
			fmt.Fprintf(out, "%sinvoke %s\n", pad, dim(fmt.Sprintf("#%d", cmd.Inv.Int())))
		case ir.CmdBundleDef:
			fmt.Fprintf(out, "%sbundle-def port#%d\n", pad, cmd.BundlePort.Int())
		case ir.CmdConnect:
			fmt.Fprintf(out, "%sconnect port#%d <- port#%d\n", pad, cmd.Dst.Port.Int(), cmd.Src.Port.Int())
		case ir.CmdLet:
			if cmd.LetHasExpr {
				fmt.Fprintf(out, "%slet p%d = %s\n", pad, cmd.LetParam.Int(), ir.PrintExpr(comp.Algebra, cmd.LetExpr))
			} else {
				fmt.Fprintf(out, "%slet p%d = ?\n", pad, cmd.LetParam.Int())
			}
		case ir.CmdForLoop:
			fmt.Fprintf(out, "%sfor p%d in %s..%s {\n", pad, cmd.LoopParam.Int(),
				ir.PrintExpr(comp.Algebra, cmd.LoopStart), ir.PrintExpr(comp.Algebra, cmd.LoopEnd))
			printCommands(out, comp, cmd.Body, depth+1)
			fmt.Fprintf(out, "%s}\n", pad)
		case ir.CmdIf:
			fmt.Fprintf(out, "%sif %s {\n", pad, ir.PrintProp(comp.Algebra, cmd.IfCond))
			printCommands(out, comp, cmd.Then, depth+1)
			fmt.Fprintf(out, "%s} else {\n", pad)
			printCommands(out, comp, cmd.Alt, depth+1)
			fmt.Fprintf(out, "%s}\n", pad)
		case ir.CmdFact:
			fmt.Fprintf(out, "%s%s %s\n", pad, factVerb(cmd.TheFact), ir.PrintProp(comp.Algebra, cmd.TheFact.Prop))
		case ir.CmdExists:
			fmt.Fprintf(out, "%sexists p%d\n", pad, cmd.ExistsParam.Int())
		}
	}
}

func factVerb(f ir.Fact) string {
	if f.Checked {
		return yellow("assert")
	}
	return dim("assume")
}

func (insp *Inspector) ports(out io.Writer) {
	comp, ok := insp.requireFocus(out)
	if !ok {
		return
	}
	for _, p := range comp.SigPortsOrdered() {
		port := comp.Ports.Get(p)
		dirS := dirString(port.Owner.Dir)
		width := ir.PrintExpr(comp.Algebra, port.Width)
		shape := "scalar"
		if port.IsBundle() {
			shape = fmt.Sprintf("bundle[%d]", len(port.Live.Lens))
		}
		fmt.Fprintf(out, "%s port#%d  width=%s  %s  [%s, %s)\n",
			dirS, p.Int(), width, shape,
			ir.PrintTime(comp.Algebra, port.Live.Range.Start),
			ir.PrintTime(comp.Algebra, port.Live.Range.End))
	}
}

func dirString(d ir.Direction) string {
	switch d {
	case ir.DirIn:
		return green("in ")
	case ir.DirOut:
		return red("out")
	default:
		return yellow("i/o")
	}
}

func (insp *Inspector) asserts(out io.Writer) {
	comp, ok := insp.requireFocus(out)
	if !ok {
		return
	}
	fmt.Fprintln(out, bold("param asserts:"))
	for _, f := range comp.ParamAsserts {
		fmt.Fprintf(out, "  [%s] %s\n", f.Kind, ir.PrintProp(comp.Algebra, f.Prop))
	}
	fmt.Fprintln(out, bold("event asserts:"))
	for _, f := range comp.EventAsserts {
		fmt.Fprintf(out, "  [%s] %s\n", f.Kind, ir.PrintProp(comp.Algebra, f.Prop))
	}
}

func (insp *Inspector) assumes(out io.Writer) {
	comp, ok := insp.requireFocus(out)
	if !ok {
		return
	}
	for _, f := range comp.ExistentialAssumes {
		fmt.Fprintf(out, "  %s\n", ir.PrintProp(comp.Algebra, f.Prop))
	}
}

func (insp *Inspector) externs(out io.Writer) {
	names := make([]string, 0, len(insp.ctx.Externs))
	tags := make(map[string]string, len(insp.ctx.Externs))
	for idx, tool := range insp.ctx.Externs {
		name := insp.ctx.Comp(idx).Name
		names = append(names, name)
		tags[name] = tool
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "%s -> %s\n", n, tags[n])
	}
}

func (insp *Inspector) entry(out io.Writer) {
	if !insp.ctx.HasEntry {
		fmt.Fprintln(out, yellow("no entrypoint recorded"))
		return
	}
	insp.current = insp.ctx.Entrypoint
	insp.hasCur = true
	fmt.Fprintln(out, "focused on entrypoint", bold(insp.ctx.Comp(insp.current).Name))
}
