package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/d3d8/ir"
)

var declUsageNames = [...]string{
	"position", "blendweight", "blendindices", "normal", "psize", "texcoord",
	"tangent", "binormal", "tessfactor", "positiont", "color", "fog", "depth",
	"sample",
}

var textureTypeNames = map[uint8]string{2: "2d", 3: "cube", 4: "volume"}

// Disassemble prints p in assembler syntax, one instruction per line.
func Disassemble(p *ir.Program) string {
	var sb strings.Builder
	sb.WriteString(p.Version.String())
	sb.WriteByte('\n')
	for i := range p.Instructions {
		sb.WriteString(FormatInstruction(p.Version, &p.Instructions[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatInstruction prints one instruction of a program of version v.
func FormatInstruction(v ir.Version, in *ir.Instruction) string {
	if !in.Known() {
		return fmt.Sprintf("// unknown opcode %d (%d words)", in.Code, in.Length)
	}

	var sb strings.Builder
	if in.Coissue {
		sb.WriteByte('+')
	}
	sb.WriteString(mnemonic(v, in))

	var operands []string
	if in.HasDst {
		operands = append(operands, formatDst(v.Kind, in.Dst))
	}
	switch in.Code {
	case ir.OpDef:
		for _, f := range in.Literal {
			operands = append(operands, strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
	case ir.OpDefI:
		for _, f := range in.Literal {
			operands = append(operands, strconv.Itoa(int(f)))
		}
	case ir.OpDefB:
		operands = append(operands, strconv.FormatBool(in.Literal[0] != 0))
	}
	for _, s := range in.Src {
		operands = append(operands, formatSrc(v.Kind, s))
	}
	if len(operands) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(operands, ", "))
	}
	return sb.String()
}

func mnemonic(v ir.Version, in *ir.Instruction) string {
	name := in.Info.Name
	if in.Code == ir.OpDcl {
		switch {
		case in.Dst.Reg.Type == ir.RegSampler:
			if t, ok := textureTypeNames[in.Usage.TextureType]; ok {
				name += "_" + t
			}
		case v.Kind == ir.KindVertex || v.AtLeast(3, 0):
			if int(in.Usage.Usage) < len(declUsageNames) {
				name += "_" + declUsageNames[in.Usage.Usage]
			}
			if in.Usage.UsageIndex > 0 {
				name += strconv.Itoa(int(in.Usage.UsageIndex))
			}
		}
		return name
	}
	if !in.HasDst {
		return name
	}
	switch in.Dst.Shift {
	case 1:
		name += "_x2"
	case 2:
		name += "_x4"
	case 3:
		name += "_x8"
	case -1:
		name += "_d2"
	case -2:
		name += "_d4"
	case -3:
		name += "_d8"
	case -4:
		name += "_d16"
	}
	if in.Dst.Saturate {
		name += "_sat"
	}
	if in.Dst.PartialPrecision {
		name += "_pp"
	}
	if in.Dst.Centroid {
		name += "_centroid"
	}
	return name
}

func formatDst(k ir.Kind, d ir.DstOperand) string {
	return d.Reg.Name(k) + d.Mask.String()
}

func formatSrc(k ir.Kind, s ir.SrcOperand) string {
	reg := s.Reg.Name(k)
	swz := s.Swizzle.String()
	switch s.Modifier {
	case ir.ModNeg:
		return "-" + reg + swz
	case ir.ModBias:
		return reg + "_bias" + swz
	case ir.ModBiasNeg:
		return "-" + reg + "_bias" + swz
	case ir.ModSign:
		return reg + "_bx2" + swz
	case ir.ModSignNeg:
		return "-" + reg + "_bx2" + swz
	case ir.ModComp:
		return "1-" + reg + swz
	case ir.ModX2:
		return reg + "_x2" + swz
	case ir.ModX2Neg:
		return "-" + reg + "_x2" + swz
	case ir.ModDZ:
		return reg + "_dz" + swz
	case ir.ModDW:
		return reg + "_dw" + swz
	case ir.ModAbs:
		return reg + "_abs" + swz
	case ir.ModAbsNeg:
		return "-" + reg + "_abs" + swz
	case ir.ModNot:
		return "!" + reg + swz
	default:
		return reg + swz
	}
}
