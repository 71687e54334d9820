package bytecode

import (
	"math"

	"github.com/gogpu/d3d8/ir"
)

// Builder assembles a token stream word by word. It is used by tests and
// tools that need bytecode without an assembler.
type Builder struct {
	version ir.Version
	words   []uint32
}

// NewBuilder starts a stream with the version token of v.
func NewBuilder(v ir.Version) *Builder {
	return &Builder{version: v, words: []uint32{v.Token()}}
}

// Emit appends an instruction token followed by its parameter words. The
// length field is filled in for version 2.0+ streams.
func (b *Builder) Emit(code ir.Op, params ...uint32) *Builder {
	tok := uint32(code) & opcodeMask
	if b.version.Major >= 2 {
		tok |= uint32(len(params)) << lengthShift & lengthMask
	}
	b.words = append(b.words, tok)
	b.words = append(b.words, params...)
	return b
}

// Def appends a def instruction loading c<index>.
func (b *Builder) Def(index int, x, y, z, w float32) *Builder {
	return b.Emit(ir.OpDef, Dst(ir.RegConst, index, ir.MaskAll),
		math.Float32bits(x), math.Float32bits(y), math.Float32bits(z), math.Float32bits(w))
}

// Comment appends a comment block carrying payload.
func (b *Builder) Comment(payload ...uint32) *Builder {
	b.words = append(b.words, Comment(len(payload)))
	b.words = append(b.words, payload...)
	return b
}

// Raw appends words verbatim.
func (b *Builder) Raw(words ...uint32) *Builder {
	b.words = append(b.words, words...)
	return b
}

// End appends the end token and returns the stream.
func (b *Builder) End() []uint32 {
	out := make([]uint32, len(b.words)+1)
	copy(out, b.words)
	out[len(b.words)] = EndToken
	return out
}

func regBits(t ir.RegisterType, index int) uint32 {
	typ := uint32(t)
	return ParamBit |
		(typ&7)<<regTypeShift |
		(typ&0x18)<<regTypeShift2 |
		uint32(index)&regNumMask
}

// Dst encodes a destination parameter.
func Dst(t ir.RegisterType, index int, mask ir.WriteMask) uint32 {
	return regBits(t, index) | uint32(mask)<<writeMaskShift&writeMaskMask
}

// DstMod encodes a destination parameter with result modifiers.
func DstMod(t ir.RegisterType, index int, mask ir.WriteMask, saturate bool, shift int8) uint32 {
	p := Dst(t, index, mask)
	if saturate {
		p |= 1 << dstModShift
	}
	return p | uint32(shift)<<dstShiftShift&dstShiftMask
}

// Src encodes a source parameter with the identity swizzle.
func Src(t ir.RegisterType, index int) uint32 {
	return SrcMod(t, index, ir.SwizzleIdentity, ir.ModNone)
}

// SrcMod encodes a source parameter with a swizzle and a modifier.
func SrcMod(t ir.RegisterType, index int, swz ir.Swizzle, mod ir.SourceModifier) uint32 {
	return regBits(t, index) |
		uint32(swz)<<swizzleShift&swizzleMask |
		uint32(mod)<<srcModShift&srcModMask
}

// Relative marks a parameter as addressed through the address register.
// Version 2.0+ streams must follow it with an AddressToken.
func Relative(param uint32) uint32 {
	return param | relativeBit
}

// AddressToken encodes a0.<component> for relative addressing in version
// 2.0+ streams.
func AddressToken(component uint8) uint32 {
	return SrcMod(ir.RegAddress, 0, ir.Replicate(component), ir.ModNone)
}
