package decl

import (
	"fmt"
	"strings"
)

// FVF is a D3DFVF flexible vertex format bitmask.
type FVF uint32

const (
	FVFXYZ    FVF = 0x002
	FVFXYZRHW FVF = 0x004
	FVFXYZB1  FVF = 0x006
	FVFXYZB2  FVF = 0x008
	FVFXYZB3  FVF = 0x00A
	FVFXYZB4  FVF = 0x00C
	FVFXYZB5  FVF = 0x00E

	FVFPositionMask FVF = 0x00E

	FVFNormal   FVF = 0x010
	FVFPSize    FVF = 0x020
	FVFDiffuse  FVF = 0x040
	FVFSpecular FVF = 0x080

	FVFTexCountMask  FVF = 0xF00
	FVFTexCountShift     = 8

	FVFLastBetaUByte4 FVF = 0x1000

	fvfTexSizeShift = 16
)

// FVFXYZB returns the position field for a position followed by n blend
// betas, n in 1..5.
func FVFXYZB(n int) FVF {
	return FVF(4 + 2*n)
}

// FVFTex returns the texture-count field for n coordinate sets.
func FVFTex(n int) FVF {
	return FVF(n) << FVFTexCountShift & FVFTexCountMask
}

// FVFTexCoordSize returns the size bits of coordinate set i with the given
// number of components. Two components encode as zero.
func FVFTexCoordSize(i, components int) FVF {
	var code FVF
	switch components {
	case 1:
		code = 3
	case 3:
		code = 1
	case 4:
		code = 2
	}
	return code << (fvfTexSizeShift + 2*i)
}

// TexCount returns the number of texture coordinate sets.
func (f FVF) TexCount() int {
	return int(f&FVFTexCountMask) >> FVFTexCountShift
}

// TexCoordType returns the type of coordinate set i.
func (f FVF) TexCoordType(i int) DataType {
	switch f >> (fvfTexSizeShift + 2*i) & 3 {
	case 1:
		return Float3
	case 2:
		return Float4
	case 3:
		return Float1
	}
	return Float2
}

// Betas returns the number of blend betas that follow the position, zero
// when the position field is not an XYZB form.
func (f FVF) Betas() int {
	pos := f & FVFPositionMask
	if pos < FVFXYZB1 {
		return 0
	}
	return int(pos-4) / 2
}

// Elements expands f into its attribute list in FVF order.
func (f FVF) Elements() []Element {
	return f.layout().elements
}

func (f FVF) layout() layout {
	var l layout
	switch pos := f & FVFPositionMask; {
	case pos == FVFXYZ:
		l.add(Position, Float3)
	case pos == FVFXYZRHW:
		l.add(Position, Float4)
	case pos >= FVFXYZB1:
		l.add(Position, Float3)
		betas := f.Betas()
		switch {
		case f&FVFLastBetaUByte4 != 0:
			if betas > 1 {
				l.add(BlendWeight, FloatN(betas-1))
			}
			l.add(BlendIndices, UByte4)
		case betas == 5:
			// The fifth beta carries the indices as a float.
			l.add(BlendWeight, Float4)
			l.add(BlendIndices, Float1)
		default:
			l.add(BlendWeight, FloatN(betas))
		}
	}
	if f&FVFNormal != 0 {
		l.add(Normal, Float3)
	}
	if f&FVFPSize != 0 {
		l.add(PointSize, Float1)
	}
	if f&FVFDiffuse != 0 {
		l.add(Diffuse, D3DColor)
	}
	if f&FVFSpecular != 0 {
		l.add(Specular, D3DColor)
	}
	for i := 0; i < f.TexCount() && i < 8; i++ {
		l.add(TexCoord(i), f.TexCoordType(i))
	}
	return l
}

// Stride returns the vertex size in bytes implied by f.
func (f FVF) Stride() int {
	return f.Stream(0).Stride
}

// Stream returns the stream description of an FVF-declared buffer bound at
// index.
func (f FVF) Stream(index int) Stream {
	l := f.layout()
	return Stream{
		Index:         index,
		FVF:           f,
		Representable: true,
		Elements:      l.elements,
		Stride:        l.offset,
	}
}

// FromFVF expands f into its attribute list. It is the same as f.Elements.
func FromFVF(f FVF) []Element {
	return f.Elements()
}

// Declaration returns the single-stream declaration equivalent to f.
func (f FVF) Declaration() *Declaration {
	return &Declaration{
		Streams:       []Stream{f.Stream(0)},
		Combined:      f,
		Representable: true,
	}
}

func (f FVF) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	switch pos := f & FVFPositionMask; {
	case pos == FVFXYZ:
		parts = append(parts, "XYZ")
	case pos == FVFXYZRHW:
		parts = append(parts, "XYZRHW")
	case pos >= FVFXYZB1:
		parts = append(parts, fmt.Sprintf("XYZB%d", f.Betas()))
	}
	for _, b := range []struct {
		bit  FVF
		name string
	}{
		{FVFNormal, "NORMAL"},
		{FVFPSize, "PSIZE"},
		{FVFDiffuse, "DIFFUSE"},
		{FVFSpecular, "SPECULAR"},
	} {
		if f&b.bit != 0 {
			parts = append(parts, b.name)
		}
	}
	if n := f.TexCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("TEX%d", n))
		for i := 0; i < n && i < 8; i++ {
			if t := f.TexCoordType(i); t != Float2 {
				parts = append(parts, fmt.Sprintf("TEXCOORDSIZE%d(%d)", t.Components(), i))
			}
		}
	}
	if f&FVFLastBetaUByte4 != 0 {
		parts = append(parts, "LASTBETA_UBYTE4")
	}
	return strings.Join(parts, "|")
}
