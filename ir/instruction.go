package ir

// Instruction is one decoded opcode token with its parameters.
type Instruction struct {
	// Code is the raw opcode number; Info is nil when the table has no row
	// for it in the program's version.
	Code Op
	Info *OpcodeInfo

	// Offset is the word index of the opcode token, Length the number of
	// words the instruction occupies including the opcode token.
	Offset int
	Length int

	HasDst bool
	Dst    DstOperand
	Src    []SrcOperand

	Control    uint8 // opcode-specific control bits 16..23
	Coissue    bool
	Predicated bool

	// Literal holds the four values of def (floats) and defi (integers
	// stored as floats). defb stores its value in Literal[0].
	Literal [4]float32
	// Usage holds the dcl usage token.
	Usage DeclUsage
}

// Known reports whether the opcode was found in the table.
func (in *Instruction) Known() bool {
	return in.Info != nil
}

// Name returns the mnemonic, or "unknown" for skipped opcodes.
func (in *Instruction) Name() string {
	if in.Info == nil {
		return "unknown"
	}
	return in.Info.Name
}

// DeclUsage is the semantic carried by a dcl instruction.
type DeclUsage struct {
	Usage      uint8 // D3DDECLUSAGE
	UsageIndex uint8
	// TextureType is set for sampler declarations (2D=2, cube=3, volume=4).
	TextureType uint8
}

// Program is a decoded bytecode stream.
type Program struct {
	Version      Version
	Instructions []Instruction
	// Comments counts comment blocks; CommentWords their size including
	// the comment tokens themselves.
	Comments     int
	CommentWords int
	// Words is the total size of the stream including the end token.
	Words int
	// Ended is false if the stream ran out before an end token.
	Ended bool
	// Warnings lists recoverable problems found while decoding.
	Warnings []string
}

// macroShape returns the row count and dot-product opcode of a matrix macro.
func macroShape(code Op) (rows int, dot Op) {
	switch code {
	case OpM4x4:
		return 4, OpDp4
	case OpM4x3:
		return 3, OpDp4
	case OpM3x4:
		return 4, OpDp3
	case OpM3x3:
		return 3, OpDp3
	case OpM3x2:
		return 2, OpDp3
	}
	return 0, 0
}

// Expand returns the sequence the instruction executes as. Matrix macros become one
// dot product per row: row i writes component i of the destination and reads
// row index+i of the second source. Everything else is returned unchanged.
func (in *Instruction) Expand() []Instruction {
	rows, dot := macroShape(in.Code)
	if in.Info == nil || rows == 0 || len(in.Src) < 2 {
		return []Instruction{*in}
	}
	dotInfo := Info(dot)
	out := make([]Instruction, rows)
	for i := 0; i < rows; i++ {
		e := *in
		e.Code = dot
		e.Info = dotInfo
		e.Dst.Mask = MaskX << uint(i)
		e.Src = []SrcOperand{in.Src[0], in.Src[1]}
		e.Src[1].Reg = in.Src[1].Reg.Offset(i)
		out[i] = e
	}
	return out
}
