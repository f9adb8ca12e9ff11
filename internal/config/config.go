// Package config loads the compiler driver's options from a YAML file
// (spec_full §A.2). Everything here is plain data — the pipeline and CLI
// layers interpret it, this package only parses and defaults it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/chronoc/internal/passes/schedule"
)

// Options is the full set of knobs a run of the compiler accepts, beyond
// the namespace/IR being compiled itself.
type Options struct {
	// SchedulingGoal selects the scheduler's minimization objective (spec
	// §4.H): "registers" or "latency".
	SchedulingGoal string `yaml:"scheduling_goal"`

	// SolverPath is the executable the scheduler spawns to speak
	// SMT-LIB2 over stdio (spec §6 "SMT interface").
	SolverPath string `yaml:"solver_path"`
	// SolverArgs are passed to SolverPath verbatim, in order.
	SolverArgs []string `yaml:"solver_args"`

	// DumpIR names a directory for per-pass IR snapshots. It is loaded
	// from the YAML file, but neither the pipeline nor cmd/chronoc reads
	// it, so no snapshots are written.
	DumpIR string `yaml:"dump_ir"`

	// ReplayFile, when set, mirrors every command sent to the SMT
	// solver so a scheduling run can be replayed without a live solver.
	ReplayFile string `yaml:"replay_file"`

	// MaxDiagnostics is loaded from the YAML file, but cmd/chronoc does
	// not read it: every diagnostic is printed whatever its value.
	MaxDiagnostics int `yaml:"max_diagnostics"`
}

// Default returns the options a bare invocation runs with: minimize
// registers, and look for "z3" on $PATH speaking the standard
// non-interactive SMT-LIB2-over-stdio mode.
func Default() *Options {
	return &Options{
		SchedulingGoal: "registers",
		SolverPath:     "z3",
		SolverArgs:     []string{"-smt2", "-in"},
	}
}

// Load reads and parses path, filling in Default()'s values for anything
// the file leaves unset.
func Load(path string) (*Options, error) {
	opts := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, opts); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if opts.SchedulingGoal != "registers" && opts.SchedulingGoal != "latency" {
		return nil, fmt.Errorf("config: scheduling_goal must be %q or %q, got %q", "registers", "latency", opts.SchedulingGoal)
	}
	return opts, nil
}

// Goal translates the textual scheduling_goal into the scheduler's own
// enum.
func (o *Options) Goal() schedule.Goal {
	if o.SchedulingGoal == "latency" {
		return schedule.GoalLatency
	}
	return schedule.GoalRegisters
}
