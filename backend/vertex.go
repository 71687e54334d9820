package backend

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/decl"
)

// ArrayBinding describes one strided attribute array.
type ArrayBinding struct {
	// Register is the fixed-function semantic, or the generic attribute
	// index when Generic is set.
	Register decl.Register
	Generic  bool
	Type     decl.DataType
	Stride   int
	// Data starts at the attribute of the first vertex.
	Data []byte
}

// Format returns the vertex format of the array.
func (a ArrayBinding) Format() gputypes.VertexFormat {
	return a.Type.Format()
}

func (a ArrayBinding) String() string {
	name := a.Register.String()
	if a.Generic {
		name = fmt.Sprintf("attrib[%d]", a.Register)
	}
	return fmt.Sprintf("%s %s/%d", name, a.Type, a.Stride)
}

// Attr flags the optional attributes of an ImmediateVertex.
type Attr uint8

const (
	AttrNormal Attr = 1 << iota
	AttrDiffuse
	AttrSpecular
	AttrPointSize
	AttrFog
	AttrWeights
)

// ImmediateVertex is one vertex submitted between Begin and End.
type ImmediateVertex struct {
	// Position is homogeneous. Pre-transformed positions are already divided
	// by their reciprocal w.
	Position [4]float32
	Normal   [3]float32
	// Colors are RGBA in [0, 1].
	Diffuse  [4]float32
	Specular [4]float32
	Weights  [4]float32
	// TexCoordSizes holds the component count of each set; zero marks a set
	// that is not supplied.
	TexCoords     [8][4]float32
	TexCoordSizes [8]uint8
	PointSize     float32
	Fog           float32
	Has           Attr
}

func (v *ImmediateVertex) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pos(%g %g %g %g)", v.Position[0], v.Position[1], v.Position[2], v.Position[3])
	if v.Has&AttrNormal != 0 {
		fmt.Fprintf(&sb, " n(%g %g %g)", v.Normal[0], v.Normal[1], v.Normal[2])
	}
	if v.Has&AttrDiffuse != 0 {
		fmt.Fprintf(&sb, " d(%g %g %g %g)", v.Diffuse[0], v.Diffuse[1], v.Diffuse[2], v.Diffuse[3])
	}
	if v.Has&AttrSpecular != 0 {
		fmt.Fprintf(&sb, " s(%g %g %g %g)", v.Specular[0], v.Specular[1], v.Specular[2], v.Specular[3])
	}
	for i, n := range v.TexCoordSizes {
		if n > 0 {
			fmt.Fprintf(&sb, " t%d%v", i, v.TexCoords[i][:n])
		}
	}
	if v.Has&AttrPointSize != 0 {
		fmt.Fprintf(&sb, " psize(%g)", v.PointSize)
	}
	if v.Has&AttrFog != 0 {
		fmt.Fprintf(&sb, " fog(%g)", v.Fog)
	}
	return sb.String()
}
