package ir

import "fmt"

// Kind is the program type encoded in the version token.
type Kind uint8

const (
	// KindVertex marks vertex programs (version token 0xFFFExxxx).
	KindVertex Kind = 1 << iota
	// KindPixel marks pixel programs (version token 0xFFFFxxxx).
	KindPixel
)

// KindAny matches both program types in opcode table rows.
const KindAny = KindVertex | KindPixel

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindPixel:
		return "pixel"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Version identifies the program type and shader model version.
type Version struct {
	Kind  Kind
	Major uint8
	Minor uint8
}

// Common versions.
var (
	VS10 = Version{Kind: KindVertex, Major: 1, Minor: 0}
	VS11 = Version{Kind: KindVertex, Major: 1, Minor: 1}
	VS20 = Version{Kind: KindVertex, Major: 2, Minor: 0}
	VS2X = Version{Kind: KindVertex, Major: 2, Minor: 1}
	VS30 = Version{Kind: KindVertex, Major: 3, Minor: 0}

	PS10 = Version{Kind: KindPixel, Major: 1, Minor: 0}
	PS11 = Version{Kind: KindPixel, Major: 1, Minor: 1}
	PS12 = Version{Kind: KindPixel, Major: 1, Minor: 2}
	PS13 = Version{Kind: KindPixel, Major: 1, Minor: 3}
	PS14 = Version{Kind: KindPixel, Major: 1, Minor: 4}
	PS20 = Version{Kind: KindPixel, Major: 2, Minor: 0}
	PS2X = Version{Kind: KindPixel, Major: 2, Minor: 1}
	PS30 = Version{Kind: KindPixel, Major: 3, Minor: 0}
)

// V packs a major/minor pair the way version bounds are stored in the opcode
// table.
func V(major, minor uint8) uint16 {
	return uint16(major)<<8 | uint16(minor)
}

// Packed returns major<<8 | minor.
func (v Version) Packed() uint16 {
	return V(v.Major, v.Minor)
}

// Token returns the version token that encodes v.
func (v Version) Token() uint32 {
	hi := uint32(0xFFFE0000)
	if v.Kind == KindPixel {
		hi = 0xFFFF0000
	}
	return hi | uint32(v.Major)<<8 | uint32(v.Minor)
}

// AtLeast reports whether v is major.minor or later.
func (v Version) AtLeast(major, minor uint8) bool {
	return v.Packed() >= V(major, minor)
}

// String returns the assembler directive for v, e.g. "vs.1.1" or "ps_2_0".
func (v Version) String() string {
	prefix := "vs"
	if v.Kind == KindPixel {
		prefix = "ps"
	}
	if v.Major < 2 {
		return fmt.Sprintf("%s.%d.%d", prefix, v.Major, v.Minor)
	}
	if v.Minor == 1 {
		return fmt.Sprintf("%s_%d_x", prefix, v.Major)
	}
	return fmt.Sprintf("%s_%d_%d", prefix, v.Major, v.Minor)
}

// Limits are the register file sizes of one version.
type Limits struct {
	Temps     int
	Constants int
	Inputs    int
	Textures  int // t# registers of pixel programs
	TexCoords int // oT# outputs of vertex programs
	Colors    int // oD# outputs of vertex programs
	Address   int
}

// Limits returns the register limits of v.
func (v Version) Limits() Limits {
	if v.Kind == KindPixel {
		if v.Major < 2 {
			return Limits{Temps: 6, Constants: 8, Inputs: 2, Textures: 8}
		}
		return Limits{Temps: 32, Constants: 32, Inputs: 10, Textures: 8}
	}
	if v.Major < 2 {
		return Limits{Temps: 12, Constants: 96, Inputs: 16, TexCoords: 8, Colors: 2, Address: 1}
	}
	return Limits{Temps: 32, Constants: 256, Inputs: 16, TexCoords: 8, Colors: 2, Address: 1}
}
