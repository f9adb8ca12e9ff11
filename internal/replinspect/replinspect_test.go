package replinspect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/diagnostics"
	"github.com/sunholo/chronoc/internal/fixtures"
	"github.com/sunholo/chronoc/internal/lower"
)

func buildInspector(t *testing.T, fixture string) *Inspector {
	t.Helper()
	ns := fixtures.Get(fixture)
	require.NotNil(t, ns)
	diags := diagnostics.NewBuffer()
	ctx := lower.Lower(ns, diags)
	require.False(t, diags.HasErrors(), "lowering fixture %q produced errors", fixture)
	return New(ctx)
}

func TestNewFocusesEntrypoint(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	assert.True(t, insp.hasCur)
	assert.Equal(t, "Passthrough", insp.ctx.Comp(insp.current).Name)
}

func TestListShowsEveryComponent(t *testing.T) {
	insp := buildInspector(t, "buffered")
	var buf bytes.Buffer
	insp.dispatch(":list", &buf)
	out := buf.String()
	assert.Contains(t, out, "Passthrough")
	assert.Contains(t, out, "Buffered")
}

func TestShowFocusesByName(t *testing.T) {
	insp := buildInspector(t, "buffered")
	var buf bytes.Buffer
	insp.dispatch(":show Passthrough", &buf)
	assert.Contains(t, buf.String(), "Passthrough")
	assert.Equal(t, "Passthrough", insp.ctx.Comp(insp.current).Name)
}

func TestShowUnknownComponent(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	var buf bytes.Buffer
	insp.dispatch(":show NoSuchThing", &buf)
	assert.Contains(t, buf.String(), "no such component")
}

func TestPortsPrintsDirectionAndWidth(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	var buf bytes.Buffer
	insp.dispatch(":ports", &buf)
	out := buf.String()
	assert.Contains(t, out, "port#")
	assert.Contains(t, out, "width=")
}

func TestBodyPrintsConnect(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	var buf bytes.Buffer
	insp.dispatch(":body", &buf)
	assert.Contains(t, buf.String(), "connect")
}

func TestPortsRequiresFocus(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	insp.hasCur = false
	var buf bytes.Buffer
	insp.dispatch(":ports", &buf)
	assert.Contains(t, buf.String(), "no component focused")
}

func TestEntryFocusesEntrypoint(t *testing.T) {
	insp := buildInspector(t, "buffered")
	insp.hasCur = false
	var buf bytes.Buffer
	insp.dispatch(":entry", &buf)
	assert.True(t, insp.hasCur)
	assert.Contains(t, buf.String(), "Buffered")
}

func TestUnknownCommand(t *testing.T) {
	insp := buildInspector(t, "passthrough")
	var buf bytes.Buffer
	insp.dispatch(":bogus", &buf)
	assert.Contains(t, buf.String(), "unknown command")
}
