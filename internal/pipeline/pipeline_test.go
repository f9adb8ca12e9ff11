package pipeline

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/ast"
	"github.com/sunholo/chronoc/internal/config"
	"github.com/sunholo/chronoc/internal/fixtures"
	"github.com/sunholo/chronoc/internal/gen"
)

func TestRunNoEntrypointReportsError(t *testing.T) {
	ns := &ast.Namespace{}
	res, err := Run(ns, gen.NewFake(), config.Default())
	require.Error(t, err, "a namespace with no entrypoint must surface an error rather than silently produce nothing")
	assert.Contains(t, err.Error(), "no entrypoint")
	assert.NotNil(t, res)
}

func TestRunFullPipelineOverBufferedFixture(t *testing.T) {
	if _, err := exec.LookPath("z3"); err != nil {
		t.Skip("no z3 binary on PATH")
	}

	opts := config.Default()
	opts.ReplayFile = filepath.Join(t.TempDir(), "replay.smt2")

	ns := fixtures.Get("buffered")
	res, err := Run(ns, gen.NewFake(), opts)
	require.NoError(t, err)
	require.False(t, res.Diags.HasErrors())
	require.False(t, res.Entrypoint.IsUnknown())

	entry := res.Ctx.Comp(res.Entrypoint)
	assert.Equal(t, "Buffered", entry.Name)
	assert.NotEmpty(t, entry.Body)
}
