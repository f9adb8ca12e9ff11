package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeSynthesizesDefaultOutput(t *testing.T) {
	f := NewFake()
	out, err := f.GenInstance("memgen", Instance{Name: "fifo8", Parameters: []string{"8", "32"}})
	require.NoError(t, err)
	assert.Equal(t, "fifo8", out.Name)
	assert.Equal(t, "generated/memgen/fifo8.v", out.File)
	assert.Empty(t, out.ExistParams)
}

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake()
	_, _ = f.GenInstance("memgen", Instance{Name: "a"})
	_, _ = f.GenInstance("memgen", Instance{Name: "b", Parameters: []string{"4"}})
	require.Len(t, f.Calls, 2)
	assert.Equal(t, "a", f.Calls[0].Name)
	assert.Equal(t, []string{"4"}, f.Calls[1].Parameters)
}

func TestFakeReturnsSeededResponse(t *testing.T) {
	f := NewFake()
	f.Responses["memgen/fifo8"] = ToolOutput{
		Name: "fifo8",
		File: "custom/fifo8.v",
		ExistParams: []ExistParam{
			{Name: "PIPE_DEPTH", Value: "3"},
		},
	}

	out, err := f.GenInstance("memgen", Instance{Name: "fifo8"})
	require.NoError(t, err)
	assert.Equal(t, "custom/fifo8.v", out.File)
	require.Len(t, out.ExistParams, 1)
	assert.Equal(t, "PIPE_DEPTH", out.ExistParams[0].Name)
	assert.Equal(t, "3", out.ExistParams[0].Value)
}

func TestFakeResponsesAreKeyedByToolAndName(t *testing.T) {
	f := NewFake()
	f.Responses["toolA/x"] = ToolOutput{Name: "x", File: "a.v"}

	out, err := f.GenInstance("toolB", Instance{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "generated/toolB/x.v", out.File, "a response seeded for a different tool must not match")
}
