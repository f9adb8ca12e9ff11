package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/chronoc/internal/ast"
)

func TestGetKnownNames(t *testing.T) {
	for _, name := range Names {
		ns := Get(name)
		require.NotNil(t, ns, "fixture %q listed in Names but Get returned nil", name)
		assert.NotEmpty(t, ns.Components)
		assert.NotEmpty(t, ns.Entrypoint)
	}
}

func TestGetUnknownNameReturnsNil(t *testing.T) {
	assert.Nil(t, Get("not-a-real-fixture"))
}

func TestPassthroughShape(t *testing.T) {
	ns := Get("passthrough")
	require.NotNil(t, ns)
	require.Len(t, ns.Components, 1)
	assert.Equal(t, "Passthrough", ns.Entrypoint)
	assert.Equal(t, "Passthrough", ns.Components[0].Name)
	assert.Len(t, ns.Components[0].Signature.Ports, 2)
}

func TestBufferedInstancesPassthroughTwice(t *testing.T) {
	ns := Get("buffered")
	require.NotNil(t, ns)
	require.Len(t, ns.Components, 2)
	assert.Equal(t, "Buffered", ns.Entrypoint)

	names := []string{ns.Components[0].Name, ns.Components[1].Name}
	assert.Contains(t, names, "Passthrough")
	assert.Contains(t, names, "Buffered")

	var top ast.Component
	for _, c := range ns.Components {
		if c.Name == "Buffered" {
			top = c
		}
	}
	assert.Len(t, top.Body, 7, "two instances, two invokes, three connects")
}
