package vertex

import (
	"math"
	"math/bits"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/decl"
)

// load reads a little-endian unsigned integer of T's width.
func load[T uint16 | uint32](b []byte) T {
	var v T
	for i := bits.Len64(uint64(^T(0)))/8 - 1; i >= 0; i-- {
		v = v<<8 | T(b[i])
	}
	return v
}

func loadFloat(b []byte) float32 {
	return math.Float32frombits(load[uint32](b))
}

// Color converts a packed D3DCOLOR (0xAARRGGBB) to RGBA in [0, 1].
func Color(c uint32) [4]float32 {
	return [4]float32{
		float32(c>>16&0xFF) / 255,
		float32(c>>8&0xFF) / 255,
		float32(c&0xFF) / 255,
		float32(c>>24) / 255,
	}
}

// Fetch reads vertex i of the attribute. Components the type does not
// supply default to (0, 0, 0, 1). D3DColor data is returned as normalized
// RGBA; the other integer types are converted without normalizing.
func (a *Attribute) Fetch(i int) [4]float32 {
	v := [4]float32{0, 0, 0, 1}
	b := a.Data[i*a.Stride:]
	switch a.Type {
	case decl.Float1, decl.Float2, decl.Float3, decl.Float4:
		for c := 0; c < a.Type.Components(); c++ {
			v[c] = loadFloat(b[4*c:])
		}
	case decl.D3DColor:
		v = Color(load[uint32](b))
	case decl.UByte4:
		for c := 0; c < 4; c++ {
			v[c] = float32(b[c])
		}
	case decl.Short2, decl.Short4:
		for c := 0; c < a.Type.Components(); c++ {
			v[c] = float32(int16(load[uint16](b[2*c:])))
		}
	}
	return v
}

// Index returns entry i of index data in the given format.
func Index(indices []byte, format gputypes.IndexFormat, i int) int {
	if format == gputypes.IndexFormatUint32 {
		return int(load[uint32](indices[4*i:]))
	}
	return int(load[uint16](indices[2*i:]))
}
