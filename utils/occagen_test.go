package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavelane/groupcheck/runtime"
)

func TestChunkCrosscheckKernelSource(t *testing.T) {
	source := ChunkCrosscheckKernelSource(16, 4)

	assert.Contains(t, source, "#define WIDTH 16")
	assert.Contains(t, source, "#define CHUNK 4")
	assert.Contains(t, source, "@kernel void "+ChunkCrosscheckKernelName)
	assert.Contains(t, source, "@outer")
	assert.Contains(t, source, "@inner")

	// One @outer block: the @inner lanes fold into res serially.
	assert.Equal(t, 1, strings.Count(source, "@outer"))
}

func TestCreateHostDevice(t *testing.T) {
	d := CreateHostDevice(runtime.Config{WorkGroupSize: 8, SubGroupSize: 4})
	assert.Equal(t, "host", d.Name())
	assert.Equal(t, 8, d.MaxWorkGroupSize())
	assert.Equal(t, 4, d.SubGroupSize())
}
