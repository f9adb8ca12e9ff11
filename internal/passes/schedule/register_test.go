package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/ir"
)

func TestFindOrAddDelayRegisterIsMemoized(t *testing.T) {
	ctx := ir.NewContext()
	first := findOrAddDelayRegister(ctx)
	second := findOrAddDelayRegister(ctx)
	assert.Equal(t, first, second)

	count := 0
	for _, idx := range ctx.Components.Indices() {
		if ctx.Comp(idx).Name == delayRegisterName {
			count++
		}
	}
	assert.Equal(t, 1, count, "a second call must reuse the existing register component")
}

func TestDelayRegisterShape(t *testing.T) {
	ctx := ir.NewContext()
	idx := findOrAddDelayRegister(ctx)
	comp := ctx.Comp(idx)

	assert.Equal(t, ir.CompExternal, comp.Kind)
	assert.Equal(t, delayRegisterSV, ctx.Externs[idx])
	require.Len(t, comp.ParamArgs, 3)
	require.Len(t, comp.EventArgs, 1)
	assert.Equal(t, 2, comp.Ports.Len(), "one in port, one out port")

	_, ok := comp.LookupSourceName("param", "WIDTH")
	assert.True(t, ok)
	_, ok = comp.LookupSourceName("param", "DELAY")
	assert.True(t, ok)
	_, ok = comp.LookupSourceName("param", "LIVE")
	assert.True(t, ok)
}
