package bytecode

import "fmt"

// TokenKind classifies one word of a token stream.
type TokenKind uint8

const (
	TokenInstruction TokenKind = iota
	TokenVersion
	TokenComment
	TokenEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenInstruction:
		return "instruction"
	case TokenVersion:
		return "version"
	case TokenComment:
		return "comment"
	case TokenEnd:
		return "end"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// Bit fields of instruction and parameter tokens.
const (
	opcodeMask    = 0x0000FFFF
	controlMask   = 0x00FF0000
	controlShift  = 16
	lengthMask    = 0x0F000000
	lengthShift   = 24
	predicatedBit = 1 << 28
	coissueBit    = 1 << 30
	// ParamBit is set on every parameter token; unknown instructions are
	// skipped while it is set on the following word.
	ParamBit = 1 << 31

	regNumMask     = 0x000007FF
	regTypeMask    = 0x70000000
	regTypeShift   = 28
	regTypeMask2   = 0x00001800
	regTypeShift2  = 8
	relativeBit    = 1 << 13
	writeMaskMask  = 0x000F0000
	writeMaskShift = 16
	dstModMask     = 0x00F00000
	dstModShift    = 20
	dstShiftMask   = 0x0F000000
	dstShiftShift  = 24
	swizzleMask    = 0x00FF0000
	swizzleShift   = 16
	srcModMask     = 0x0F000000
	srcModShift    = 24

	commentOpcode    = 0xFFFE
	commentSizeMask  = 0x7FFF0000
	commentSizeShift = 16

	// EndToken terminates every stream.
	EndToken = 0x0000FFFF

	vertexVersionPrefix = 0xFFFE0000
	pixelVersionPrefix  = 0xFFFF0000
)

// Classify returns the kind of a word read at a token boundary.
func Classify(word uint32) TokenKind {
	switch {
	case word == EndToken:
		return TokenEnd
	case word&ParamBit == 0 && word&opcodeMask == commentOpcode:
		return TokenComment
	case word&0xFFFF0000 == vertexVersionPrefix, word&0xFFFF0000 == pixelVersionPrefix:
		return TokenVersion
	default:
		return TokenInstruction
	}
}

// CommentLength returns the number of words following a comment token.
func CommentLength(word uint32) int {
	return int((word & commentSizeMask) >> commentSizeShift)
}

// InstructionLength returns the parameter count stored in bits 24..27 of an
// instruction token. Only version 2.0+ streams fill it in.
func InstructionLength(word uint32) int {
	return int((word & lengthMask) >> lengthShift)
}

// Comment builds a comment token announcing n words.
func Comment(n int) uint32 {
	return uint32(n)<<commentSizeShift&commentSizeMask | commentOpcode
}
