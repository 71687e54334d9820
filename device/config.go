package device

import (
	"github.com/gogpu/d3d8/arb"
	"github.com/gogpu/d3d8/vertex"
)

// Config configures a Device.
type Config struct {
	// VertexConstants is the size of the vertex constant bank. Defaults to
	// 96 if zero.
	VertexConstants int

	// PixelConstants is the size of the pixel constant bank. Defaults to 32
	// if zero.
	PixelConstants int

	// SoftwareVertexProcessing runs vertex shaders in the interpreter
	// instead of compiling them to native programs.
	SoftwareVertexProcessing bool

	// ARB configures native program generation. Its bank sizes are taken
	// from VertexConstants and PixelConstants.
	ARB arb.Options

	// Vertex configures draw dispatch.
	Vertex vertex.Options
}

// DefaultConfig returns a configuration with D3D8 bank sizes and hardware
// vertex processing.
func DefaultConfig() Config {
	return Config{
		VertexConstants: 96,
		PixelConstants:  32,
		ARB:             arb.DefaultOptions(),
		Vertex:          vertex.DefaultOptions(),
	}
}

func (c Config) withDefaults() Config {
	if c.VertexConstants <= 0 {
		c.VertexConstants = 96
	}
	if c.PixelConstants <= 0 {
		c.PixelConstants = 32
	}
	c.ARB.VertexConstants = c.VertexConstants
	c.ARB.PixelConstants = c.PixelConstants
	return c
}
