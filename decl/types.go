package decl

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DataType is the D3DVSDT attribute type.
type DataType uint8

const (
	Float1   DataType = 0
	Float2   DataType = 1
	Float3   DataType = 2
	Float4   DataType = 3
	D3DColor DataType = 4 // packed BGRA bytes
	UByte4   DataType = 5
	Short2   DataType = 6
	Short4   DataType = 7
)

var dataTypeInfo = [...]struct {
	name       string
	size       int
	components int
	format     gputypes.VertexFormat
}{
	Float1:   {"FLOAT1", 4, 1, gputypes.VertexFormatFloat32},
	Float2:   {"FLOAT2", 8, 2, gputypes.VertexFormatFloat32x2},
	Float3:   {"FLOAT3", 12, 3, gputypes.VertexFormatFloat32x3},
	Float4:   {"FLOAT4", 16, 4, gputypes.VertexFormatFloat32x4},
	D3DColor: {"D3DCOLOR", 4, 4, gputypes.VertexFormatUnorm8x4},
	UByte4:   {"UBYTE4", 4, 4, gputypes.VertexFormatUint8x4},
	Short2:   {"SHORT2", 4, 2, gputypes.VertexFormatSint16x2},
	Short4:   {"SHORT4", 8, 4, gputypes.VertexFormatSint16x4},
}

// Valid reports whether t is a known type.
func (t DataType) Valid() bool {
	return int(t) < len(dataTypeInfo)
}

// Size returns the byte size of one attribute of type t.
func (t DataType) Size() int {
	if !t.Valid() {
		return 0
	}
	return dataTypeInfo[t].size
}

// Components returns the number of vector components t supplies.
func (t DataType) Components() int {
	if !t.Valid() {
		return 0
	}
	return dataTypeInfo[t].components
}

// Format returns the equivalent vertex format. D3DColor maps to Unorm8x4 and
// still has its bytes in BGRA order.
func (t DataType) Format() gputypes.VertexFormat {
	if !t.Valid() {
		return gputypes.VertexFormatUndefined
	}
	return dataTypeInfo[t].format
}

// IsFloat reports whether t is one of Float1..Float4.
func (t DataType) IsFloat() bool {
	return t <= Float4
}

func (t DataType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
	return dataTypeInfo[t].name
}

// FloatN returns the float type with n components, n in 1..4.
func FloatN(n int) DataType {
	return Float1 + DataType(n-1)
}

// Register is a vertex input register. In D3D8 the input register number is
// also the fixed-function semantic.
type Register uint8

const (
	Position     Register = 0
	BlendWeight  Register = 1
	BlendIndices Register = 2
	Normal       Register = 3
	PointSize    Register = 4
	Diffuse      Register = 5
	Specular     Register = 6
	TexCoord0    Register = 7
	Position2    Register = 15
	Normal2      Register = 16

	// MaxRegisters is the number of input registers.
	MaxRegisters = 17
)

// TexCoord returns the register of texture coordinate set n.
func TexCoord(n int) Register {
	return TexCoord0 + Register(n)
}

// TexCoordSet returns the coordinate set of r and whether r is a texture
// coordinate register.
func (r Register) TexCoordSet() (int, bool) {
	if r >= TexCoord0 && r < TexCoord0+8 {
		return int(r - TexCoord0), true
	}
	return 0, false
}

var registerNames = [...]string{
	Position:     "POSITION",
	BlendWeight:  "BLENDWEIGHT",
	BlendIndices: "BLENDINDICES",
	Normal:       "NORMAL",
	PointSize:    "PSIZE",
	Diffuse:      "DIFFUSE",
	Specular:     "SPECULAR",
}

func (r Register) String() string {
	if n, ok := r.TexCoordSet(); ok {
		return fmt.Sprintf("TEXCOORD%d", n)
	}
	switch r {
	case Position2:
		return "POSITION2"
	case Normal2:
		return "NORMAL2"
	}
	if int(r) < len(registerNames) && registerNames[r] != "" {
		return registerNames[r]
	}
	return fmt.Sprintf("REG%d", uint8(r))
}
