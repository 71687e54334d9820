package bytecode

import (
	"fmt"

	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// maxSources is the largest source count an instruction can carry.
const maxSources = 4

// Decode decodes a complete token stream.
//
// The only fatal problems are an empty stream and a first word that is not a
// version token. Everything else is recorded in Program.Warnings and skipped.
func Decode(words []uint32) (*ir.Program, error) {
	if len(words) == 0 {
		return nil, &DecodeError{Message: "empty token stream"}
	}
	if Classify(words[0]) != TokenVersion {
		return nil, &DecodeError{Message: fmt.Sprintf("first token %#08x is not a version token", words[0])}
	}

	r := NewReader(words)
	p := &ir.Program{}
	d := decoder{program: p}
	for {
		tok, ok := r.Next()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokenVersion:
			if tok.Offset != 0 {
				d.warnf("version token repeated at word %d", tok.Offset)
				continue
			}
			p.Version = r.Version()
			if p.Version.Major == 0 || p.Version.Major > 3 {
				d.warnf("unsupported version %s, decoding with nearest rules", p.Version)
			}
		case TokenComment:
			p.Comments++
			p.CommentWords += len(tok.Words)
		case TokenEnd:
			p.Ended = true
		case TokenInstruction:
			p.Instructions = append(p.Instructions, d.instruction(tok))
		}
	}
	p.Words = r.Pos()
	if !p.Ended {
		d.warnf("stream of %d words has no end token", len(words))
	} else if r.Pos() < len(words) {
		d.warnf("%d words after end token ignored", len(words)-r.Pos())
	}
	p.Warnings = append(r.Warnings(), p.Warnings...)

	logging.Logger().Debug("decoded program",
		"version", p.Version.String(),
		"instructions", len(p.Instructions),
		"warnings", len(p.Warnings))
	return p, nil
}

type decoder struct {
	program *ir.Program
}

func (d *decoder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.program.Warnings = append(d.program.Warnings, msg)
	logging.Logger().Warn("bytecode: " + msg)
}

func (d *decoder) instruction(tok Token) ir.Instruction {
	word := tok.Words[0]
	version := d.program.Version
	in := ir.Instruction{
		Code:       ir.Op(word & opcodeMask),
		Offset:     tok.Offset,
		Length:     len(tok.Words),
		Control:    uint8((word & controlMask) >> controlShift),
		Coissue:    word&coissueBit != 0,
		Predicated: word&predicatedBit != 0,
	}
	in.Info = ir.Lookup(version, in.Code)
	if in.Info == nil {
		d.warnf("unknown opcode %d at word %d, skipped %d words", in.Code, tok.Offset, len(tok.Words))
		return in
	}

	params := tok.Words[1:]
	switch in.Code {
	case ir.OpDcl:
		d.decodeDcl(&in, params)
		return in
	case ir.OpDef, ir.OpDefI, ir.OpDefB:
		d.decodeDef(&in, params)
		return in
	}

	i := 0
	if in.Info.HasDst && i < len(params) {
		var n int
		in.HasDst = true
		in.Dst, n = decodeDst(params[i:], version)
		i += n
	}
	if in.Predicated && i < len(params) {
		// The predicate register precedes the sources; it is kept out of Src.
		_, n := decodeSrc(params[i:], version)
		i += n
	}
	for i < len(params) {
		if len(in.Src) == maxSources {
			d.warnf("%s at word %d has more than %d sources", in.Info.Name, tok.Offset, maxSources)
			break
		}
		src, n := decodeSrc(params[i:], version)
		in.Src = append(in.Src, src)
		i += n
	}
	return in
}

func (d *decoder) decodeDcl(in *ir.Instruction, params []uint32) {
	if len(params) < 2 {
		d.warnf("dcl at word %d is truncated", in.Offset)
		return
	}
	usage := params[0]
	in.Usage = ir.DeclUsage{
		Usage:       uint8(usage & 0x1F),
		UsageIndex:  uint8((usage >> 16) & 0xF),
		TextureType: uint8((usage >> 27) & 0xF),
	}
	in.HasDst = true
	in.Dst, _ = decodeDst(params[1:], d.program.Version)
}

func (d *decoder) decodeDef(in *ir.Instruction, params []uint32) {
	want := in.Info.NumParams
	if len(params) < want {
		d.warnf("%s at word %d is truncated", in.Info.Name, in.Offset)
		return
	}
	in.HasDst = true
	in.Dst, _ = decodeDst(params[:1], d.program.Version)
	for i, w := range params[1:want] {
		switch in.Code {
		case ir.OpDef:
			in.Literal[i] = ir.LiteralFloat(w)
		case ir.OpDefI:
			in.Literal[i] = float32(int32(w))
		case ir.OpDefB:
			if w != 0 {
				in.Literal[i] = 1
			}
		}
	}
}

// register decodes the register fields shared by all parameter tokens.
func register(param uint32) ir.Register {
	typ := (param&regTypeMask)>>regTypeShift | (param&regTypeMask2)>>regTypeShift2
	return ir.Register{
		Type:  ir.RegisterType(typ),
		Index: int(param & regNumMask),
	}
}

// relative fills in the address register of a relatively addressed
// parameter and returns the number of extra words consumed.
func relative(reg *ir.Register, words []uint32, version ir.Version) int {
	reg.Relative = true
	if version.Major >= 2 && len(words) > 1 {
		addr := words[1]
		a := register(addr)
		reg.RelAddr = ir.RelAddress{
			Type:      a.Type,
			Index:     a.Index,
			Component: uint8((addr & swizzleMask) >> swizzleShift & 3),
		}
		return 1
	}
	// Version 1.x streams always address through a0.x.
	reg.RelAddr = ir.RelAddress{Type: ir.RegAddress}
	return 0
}

func decodeDst(words []uint32, version ir.Version) (ir.DstOperand, int) {
	param := words[0]
	dst := ir.DstOperand{
		Reg:  register(param),
		Mask: ir.WriteMask((param & writeMaskMask) >> writeMaskShift),
	}
	mods := (param & dstModMask) >> dstModShift
	dst.Saturate = mods&1 != 0
	dst.PartialPrecision = mods&2 != 0
	dst.Centroid = mods&4 != 0

	shift := int8((param & dstShiftMask) >> dstShiftShift)
	if shift >= 8 {
		shift -= 16
	}
	dst.Shift = shift

	n := 1
	if param&relativeBit != 0 {
		n += relative(&dst.Reg, words, version)
	}
	return dst, n
}

func decodeSrc(words []uint32, version ir.Version) (ir.SrcOperand, int) {
	param := words[0]
	src := ir.SrcOperand{
		Reg:      register(param),
		Swizzle:  ir.Swizzle((param & swizzleMask) >> swizzleShift),
		Modifier: ir.SourceModifier((param & srcModMask) >> srcModShift),
	}
	n := 1
	if param&relativeBit != 0 {
		n += relative(&src.Reg, words, version)
	}
	return src, n
}
