package bytecode

import (
	"fmt"

	"github.com/gogpu/d3d8/ir"
)

// Token is one classified unit of a stream: a version word, a comment block
// with its payload, an end word, or an instruction with its parameters.
type Token struct {
	Kind   TokenKind
	Offset int
	// Words holds every word of the token, the leading token word included.
	Words []uint32
}

// Reader splits a word stream into tokens. It never looks further ahead
// than the lengths declared by comment and instruction tokens.
type Reader struct {
	words    []uint32
	pos      int
	version  ir.Version
	ended    bool
	warnings []string
}

// NewReader returns a reader positioned at the first word of words.
func NewReader(words []uint32) *Reader {
	return &Reader{words: words}
}

// Version returns the version announced by the stream, or the zero value
// before the version token has been read.
func (r *Reader) Version() ir.Version {
	return r.version
}

// Warnings returns the recoverable problems seen so far.
func (r *Reader) Warnings() []string {
	return r.warnings
}

// Pos returns the index of the next unread word.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Next returns the next token. It reports false after the end token or when
// the words run out.
func (r *Reader) Next() (Token, bool) {
	if r.ended || r.pos >= len(r.words) {
		return Token{}, false
	}
	start := r.pos
	word := r.words[start]
	kind := Classify(word)

	n := 1
	switch kind {
	case TokenEnd:
		r.ended = true
	case TokenVersion:
		r.version = versionOf(word)
	case TokenComment:
		n += CommentLength(word)
	case TokenInstruction:
		n += r.paramCount(word, start)
	}

	if start+n > len(r.words) {
		r.warnf("%s at word %d needs %d words, only %d remain", kind, start, n, len(r.words)-start)
		n = len(r.words) - start
	}
	r.pos = start + n
	return Token{Kind: kind, Offset: start, Words: r.words[start:r.pos]}, true
}

// Tokenize reads every remaining token.
func (r *Reader) Tokenize() []Token {
	var tokens []Token
	for {
		tok, ok := r.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// paramCount returns how many parameter words follow the instruction token
// at index at.
func (r *Reader) paramCount(word uint32, at int) int {
	if r.version.Major >= 2 {
		if n := InstructionLength(word); n > 0 {
			return n
		}
	}
	code := ir.Op(word & opcodeMask)
	if info := ir.Lookup(r.version, code); info != nil && r.version.Major < 2 {
		return info.NumParams
	}
	// Unknown opcode, or a parameterless 2.0+ instruction: consume words
	// while they carry the parameter bit.
	n := 0
	for i := at + 1; i < len(r.words) && r.words[i]&ParamBit != 0; i++ {
		n++
	}
	return n
}

func versionOf(word uint32) ir.Version {
	v := ir.Version{
		Kind:  ir.KindVertex,
		Major: uint8(word >> 8),
		Minor: uint8(word),
	}
	if word&0xFFFF0000 == pixelVersionPrefix {
		v.Kind = ir.KindPixel
	}
	return v
}
