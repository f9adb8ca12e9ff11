// Command chronoc is the compiler driver: it loads options, feeds a
// namespace through internal/pipeline, and reports diagnostics. Surface
// syntax parsing is out of scope (spec §1), so `run`/`check` select a
// pre-built fixture namespace rather than reading a source file — the
// role a real front end's output would otherwise fill.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sunholo/chronoc/internal/config"
	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/fixtures"
	"github.com/sunholo/chronoc/internal/gen"
	"github.com/sunholo/chronoc/internal/lower"
	"github.com/sunholo/chronoc/internal/pipeline"
	"github.com/sunholo/chronoc/internal/replinspect"
)

var (
	// Version info, set by ldflags during build.
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func init() {
	message.Set(language.English, "%d error(s)",
		plural.Selectf(1, "%d",
			plural.One, "1 error", plural.Other, "%d errors"))
	message.Set(language.English, "%d warning(s)",
		plural.Selectf(1, "%d",
			plural.One, "1 warning", plural.Other, "%d warnings"))
}

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		configFlag  = flag.String("config", "", "Path to a config YAML file (defaults applied if omitted)")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	opts, err := loadOptions(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	command := flag.Arg(0)
	switch command {
	case "run":
		runFixture(fixtureArg(), opts, false)
	case "check":
		runFixture(fixtureArg(), opts, true)
	case "inspect":
		inspectFixture(fixtureArg())
	case "list-fixtures":
		for _, n := range fixtures.Names {
			fmt.Println(n)
		}
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func fixtureArg() string {
	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "%s: missing fixture name\n", red("Error"))
		fmt.Println("Usage: chronoc run|check|inspect <fixture>")
		fmt.Println("Run 'chronoc list-fixtures' to see what's available.")
		os.Exit(1)
	}
	return flag.Arg(1)
}

func loadOptions(path string) (*config.Options, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func printVersion() {
	fmt.Printf("chronoc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printHelp() {
	fmt.Println(bold("chronoc — timing-interval HDL middle-end compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  chronoc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <fixture>      Compile a fixture namespace end to end\n", cyan("run"))
	fmt.Printf("  %s <fixture>    Compile and report diagnostics without dumping anything\n", cyan("check"))
	fmt.Printf("  %s <fixture>  Lower a fixture and open the read-only IR inspector\n", cyan("inspect"))
	fmt.Printf("  %s     List the built-in fixture namespaces\n", cyan("list-fixtures"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --config <path>  Load scheduler/solver options from a YAML file")
}

// runFixture drives a fixture namespace through the whole pipeline,
// printing accumulated diagnostics with fatih/color and a pluralized
// pass/fail summary, and recovering a diagnostics.InternalError panic the
// way the only place allowed to observe one is expected to (spec §7:
// internal errors are never recovered inside a pass, but the driver at
// the edge of the system still needs to exit cleanly instead of crashing
// with a raw stack trace).
func runFixture(name string, opts *config.Options, checkOnly bool) {
	ns := fixtures.Get(name)
	if ns == nil {
		fmt.Fprintf(os.Stderr, "%s: no such fixture %q\n", red("Error"), name)
		os.Exit(1)
	}

	var result *pipeline.Result
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if ie, ok := r.(*diagnostics.InternalError); ok {
					runErr = ie
					return
				}
				panic(r)
			}
		}()
		result, runErr = pipeline.Run(ns, gen.NewFake(), opts)
	}()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Internal error"), runErr)
		os.Exit(1)
	}

	printDiagnostics(result.Diags)
	if result.Diags.HasErrors() {
		os.Exit(1)
	}
	if checkOnly {
		fmt.Printf("%s no errors\n", green("✓"))
		return
	}
	fmt.Printf("%s compiled %s (entry: %s)\n", green("✓"), name, result.Ctx.Comp(result.Entrypoint).Name)
}

func inspectFixture(name string) {
	ns := fixtures.Get(name)
	if ns == nil {
		fmt.Fprintf(os.Stderr, "%s: no such fixture %q\n", red("Error"), name)
		os.Exit(1)
	}
	diags := diagnostics.NewBuffer()
	ctx := lower.Lower(ns, diags)
	printDiagnostics(diags)
	replinspect.New(ctx).Start(os.Stdin, os.Stdout)
}

func printDiagnostics(diags *diagnostics.Buffer) {
	p := message.NewPrinter(language.English)
	var errs, warns int
	for _, d := range diags.Items() {
		line := fmt.Sprintf("[%s] %s: %s", d.Phase, d.Component, d.Message)
		if d.Pos != nil {
			line = fmt.Sprintf("%s (%s)", line, posString(*d.Pos))
		}
		if d.Severity == diagnostics.SeverityWarning {
			warns++
			fmt.Println(yellow("warning"), line)
		} else {
			errs++
			fmt.Println(red("error"), line)
		}
	}
	if errs > 0 || warns > 0 {
		fmt.Println(strings.TrimSpace(p.Sprintf("%d error(s)", errs) + ", " + p.Sprintf("%d warning(s)", warns)))
	}
}

func posString(p diagnostics.Pos) string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}
