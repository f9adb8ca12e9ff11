package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/passes/schedule"
)

func TestDefault(t *testing.T) {
	opts := Default()
	assert.Equal(t, "registers", opts.SchedulingGoal)
	assert.Equal(t, "z3", opts.SolverPath)
	assert.Equal(t, []string{"-smt2", "-in"}, opts.SolverArgs)
	assert.Equal(t, schedule.GoalRegisters, opts.Goal())
}

func TestLoadFillsDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronoc.yaml")
	writeYAML(t, path, "solver_path: myz3\n")

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myz3", opts.SolverPath)
	assert.Equal(t, "registers", opts.SchedulingGoal, "unset fields keep Default()'s values")
}

func TestLoadGoalMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronoc.yaml")
	writeYAML(t, path, "scheduling_goal: latency\n")

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, schedule.GoalLatency, opts.Goal())
}

func TestLoadRejectsUnknownGoal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronoc.yaml")
	writeYAML(t, path, "scheduling_goal: fastest\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func writeYAML(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
