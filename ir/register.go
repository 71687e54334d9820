package ir

import (
	"fmt"
	"math"
	"strings"
)

// RegisterType is the register file an operand refers to (D3DSPR numbering).
type RegisterType uint8

const (
	RegTemp        RegisterType = 0
	RegInput       RegisterType = 1
	RegConst       RegisterType = 2
	RegAddress     RegisterType = 3 // a# in vertex programs
	RegRastOut     RegisterType = 4
	RegAttrOut     RegisterType = 5
	RegTexCrdOut   RegisterType = 6 // o# in vs_3_0
	RegConstInt    RegisterType = 7
	RegColorOut    RegisterType = 8
	RegDepthOut    RegisterType = 9
	RegSampler     RegisterType = 10
	RegConst2      RegisterType = 11
	RegConst3      RegisterType = 12
	RegConst4      RegisterType = 13
	RegConstBool   RegisterType = 14
	RegLoop        RegisterType = 15
	RegTempFloat16 RegisterType = 16
	RegMiscType    RegisterType = 17
	RegLabel       RegisterType = 18
	RegPredicate   RegisterType = 19
)

// RegTexture shares its encoding with RegAddress; pixel programs read it as
// the t# texture register file.
const RegTexture = RegAddress

// Indices of RegRastOut registers.
const (
	RastPosition  = 0
	RastFog       = 1
	RastPointSize = 2
)

// Register names one register, optionally addressed relative to an address
// register component.
type Register struct {
	Type     RegisterType
	Index    int
	Relative bool
	// RelAddr is the address register used when Relative is set. Version 1.x
	// programs always use a0.x.
	RelAddr RelAddress
}

// RelAddress is the register component supplying a relative offset.
type RelAddress struct {
	Type      RegisterType
	Index     int
	Component uint8
}

// Offset returns the register shifted by n rows. Macro expansion uses it to
// step through matrix rows.
func (r Register) Offset(n int) Register {
	r.Index += n
	return r
}

// Name returns the assembler spelling of r in a program of kind k.
func (r Register) Name(k Kind) string {
	idx := fmt.Sprint(r.Index)
	if r.Relative {
		comp := string(componentNames[r.RelAddr.Component&3])
		base := "a0." + comp
		if r.RelAddr.Type == RegLoop {
			base = "aL"
		}
		if r.Index == 0 {
			idx = "[" + base + "]"
		} else {
			idx = fmt.Sprintf("[%s + %d]", base, r.Index)
		}
	}
	switch r.Type {
	case RegTemp:
		return "r" + idx
	case RegInput:
		return "v" + idx
	case RegConst:
		return "c" + idx
	case RegAddress:
		if k == KindPixel {
			return "t" + idx
		}
		return "a" + idx
	case RegRastOut:
		switch r.Index {
		case RastPosition:
			return "oPos"
		case RastFog:
			return "oFog"
		case RastPointSize:
			return "oPts"
		}
		return "oRast" + idx
	case RegAttrOut:
		return "oD" + idx
	case RegTexCrdOut:
		return "oT" + idx
	case RegConstInt:
		return "i" + idx
	case RegColorOut:
		return "oC" + idx
	case RegDepthOut:
		return "oDepth"
	case RegSampler:
		return "s" + idx
	case RegConstBool:
		return "b" + idx
	case RegLoop:
		return "aL"
	case RegPredicate:
		return "p" + idx
	case RegLabel:
		return "l" + idx
	default:
		return fmt.Sprintf("reg%d_%s", r.Type, idx)
	}
}

var componentNames = [4]byte{'x', 'y', 'z', 'w'}

// Swizzle holds four 2-bit component selectors, component i in bits 2i..2i+1.
type Swizzle uint8

// SwizzleIdentity selects x, y, z, w in order.
const SwizzleIdentity Swizzle = 0xE4

// NewSwizzle builds a swizzle from four component indices.
func NewSwizzle(x, y, z, w uint8) Swizzle {
	return Swizzle(x&3 | (y&3)<<2 | (z&3)<<4 | (w&3)<<6)
}

// Replicate returns the swizzle that broadcasts component c.
func Replicate(c uint8) Swizzle {
	return NewSwizzle(c, c, c, c)
}

// Component returns the source component read into slot i.
func (s Swizzle) Component(i int) uint8 {
	return uint8(s>>(2*uint(i))) & 3
}

// IsReplicate reports whether all four selectors are equal.
func (s Swizzle) IsReplicate() bool {
	c := s.Component(0)
	return s.Component(1) == c && s.Component(2) == c && s.Component(3) == c
}

// String returns "" for the identity, ".x" for replicates and ".xyzw" style
// otherwise.
func (s Swizzle) String() string {
	if s == SwizzleIdentity {
		return ""
	}
	if s.IsReplicate() {
		return "." + string(componentNames[s.Component(0)])
	}
	var b [5]byte
	b[0] = '.'
	for i := 0; i < 4; i++ {
		b[i+1] = componentNames[s.Component(i)]
	}
	return string(b[:])
}

// WriteMask selects destination components: x=1, y=2, z=4, w=8.
type WriteMask uint8

const (
	MaskX   WriteMask = 1
	MaskY   WriteMask = 2
	MaskZ   WriteMask = 4
	MaskW   WriteMask = 8
	MaskAll WriteMask = 0xF
)

// Has reports whether component i is written.
func (m WriteMask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

// String returns "" for a full mask and ".xz" style otherwise.
func (m WriteMask) String() string {
	m &= MaskAll
	if m == MaskAll {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('.')
	for i := 0; i < 4; i++ {
		if m.Has(i) {
			sb.WriteByte(componentNames[i])
		}
	}
	return sb.String()
}

// SourceModifier is the D3DSPSM source modifier.
type SourceModifier uint8

const (
	ModNone SourceModifier = iota
	ModNeg
	ModBias
	ModBiasNeg
	ModSign
	ModSignNeg
	ModComp
	ModX2
	ModX2Neg
	ModDZ
	ModDW
	ModAbs
	ModAbsNeg
	ModNot
)

var modifierNames = [...]string{
	ModNone:    "none",
	ModNeg:     "neg",
	ModBias:    "bias",
	ModBiasNeg: "biasneg",
	ModSign:    "bx2",
	ModSignNeg: "bx2neg",
	ModComp:    "comp",
	ModX2:      "x2",
	ModX2Neg:   "x2neg",
	ModDZ:      "dz",
	ModDW:      "dw",
	ModAbs:     "abs",
	ModAbsNeg:  "absneg",
	ModNot:     "not",
}

func (m SourceModifier) String() string {
	if int(m) < len(modifierNames) {
		return modifierNames[m]
	}
	return fmt.Sprintf("SourceModifier(%d)", uint8(m))
}

// Negated reports whether the modifier negates the transformed value.
func (m SourceModifier) Negated() bool {
	switch m {
	case ModNeg, ModBiasNeg, ModSignNeg, ModX2Neg, ModAbsNeg:
		return true
	}
	return false
}

// DstOperand is a decoded destination parameter.
type DstOperand struct {
	Reg              Register
	Mask             WriteMask
	Saturate         bool
	PartialPrecision bool
	Centroid         bool
	// Shift is the signed result shift: 1..3 scale by 2, 4, 8 and -1..-4
	// divide by 2, 4, 8, 16.
	Shift int8
}

// Scale returns the factor implied by Shift.
func (d DstOperand) Scale() float32 {
	return float32(math.Ldexp(1, int(d.Shift)))
}

// SrcOperand is a decoded source parameter.
type SrcOperand struct {
	Reg      Register
	Swizzle  Swizzle
	Modifier SourceModifier
}

// LiteralFloat reinterprets a literal word embedded in a token stream as an
// IEEE-754 single. It is the one place where integer words become floats.
func LiteralFloat(w uint32) float32 {
	return math.Float32frombits(w)
}
