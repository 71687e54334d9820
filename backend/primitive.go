package backend

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Primitive is a D3DPRIMITIVETYPE value.
type Primitive uint8

const (
	PointList     Primitive = 1
	LineList      Primitive = 2
	LineStrip     Primitive = 3
	TriangleList  Primitive = 4
	TriangleStrip Primitive = 5
	TriangleFan   Primitive = 6
)

var primitiveNames = [...]string{
	PointList:     "POINTLIST",
	LineList:      "LINELIST",
	LineStrip:     "LINESTRIP",
	TriangleList:  "TRIANGLELIST",
	TriangleStrip: "TRIANGLESTRIP",
	TriangleFan:   "TRIANGLEFAN",
}

// Valid reports whether p is a known primitive type.
func (p Primitive) Valid() bool {
	return p >= PointList && p <= TriangleFan
}

func (p Primitive) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Primitive(%d)", uint8(p))
	}
	return primitiveNames[p]
}

// Topology returns the equivalent primitive topology. Triangle fans have none
// and report false.
func (p Primitive) Topology() (gputypes.PrimitiveTopology, bool) {
	switch p {
	case PointList:
		return gputypes.PrimitiveTopologyPointList, true
	case LineList:
		return gputypes.PrimitiveTopologyLineList, true
	case LineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case TriangleList:
		return gputypes.PrimitiveTopologyTriangleList, true
	case TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	}
	return 0, false
}
