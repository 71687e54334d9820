package decl

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// TokenType is the D3DVSD token type held in bits 29..31.
type TokenType uint8

const (
	TokenNop         TokenType = 0
	TokenStream      TokenType = 1
	TokenStreamData  TokenType = 2
	TokenTessellator TokenType = 3
	TokenConstMem    TokenType = 4
	TokenExt         TokenType = 5
	TokenEnd         TokenType = 7
)

const (
	tokenTypeShift = 29
	dataLoadBit    = 1 << 28
	streamTessBit  = 1 << 28

	regMask       = 0x1F
	dataTypeShift = 16
	dataTypeMask  = 0xF
	streamMask    = 0xF

	constAddrMask   = 0x7F
	constCountShift = 25
	constCountMask  = 0xF

	extCountShift = 24
	extCountMask  = 0x1F
)

// EndToken terminates a declaration.
const EndToken uint32 = 0xFFFFFFFF

// Type returns the token type of tok.
func Type(tok uint32) TokenType {
	return TokenType(tok >> tokenTypeShift)
}

// StreamToken selects stream n for the data tokens that follow.
func StreamToken(n int) uint32 {
	return uint32(TokenStream)<<tokenTypeShift | uint32(n)&streamMask
}

// RegToken loads register r from the current stream as type t.
func RegToken(r Register, t DataType) uint32 {
	return uint32(TokenStreamData)<<tokenTypeShift |
		uint32(t)&dataTypeMask<<dataTypeShift |
		uint32(r)&regMask
}

// SkipToken skips n DWORDs of the current stream.
func SkipToken(n int) uint32 {
	return uint32(TokenStreamData)<<tokenTypeShift | dataLoadBit |
		uint32(n)&dataTypeMask<<dataTypeShift
}

// ConstToken loads count constant rows starting at c<address>. It must be
// followed by count*4 float words.
func ConstToken(address, count int) uint32 {
	return uint32(TokenConstMem)<<tokenTypeShift |
		uint32(count)&constCountMask<<constCountShift |
		uint32(address)&constAddrMask
}

// ExtToken starts an extension block of count words.
func ExtToken(count int) uint32 {
	return uint32(TokenExt)<<tokenTypeShift | uint32(count)&extCountMask<<extCountShift
}

var (
	// ErrMissingEnd is returned when the tokens run out before EndToken.
	ErrMissingEnd = errors.New("decl: missing end token")
	// ErrTruncated is returned when a token's payload runs past the end.
	ErrTruncated = errors.New("decl: truncated token payload")
	// ErrInvalidToken is returned for malformed data tokens.
	ErrInvalidToken = errors.New("decl: invalid token")
)

// ConstantWriter receives the constant rows a declaration loads.
type ConstantWriter interface {
	SetConstants(start int, rows [][4]float32) error
}

// Element is one attribute of a stream.
type Element struct {
	Register Register
	Type     DataType
	Offset   int
}

// Stream describes the vertex layout of one bound stream.
type Stream struct {
	Index int
	// FVF is zero when Representable is false.
	FVF           FVF
	Representable bool
	Elements      []Element
	Stride        int
}

// Layout returns the stream as a vertex buffer layout. Shader locations are
// the input register numbers.
func (s *Stream) Layout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(s.Elements))
	for i, e := range s.Elements {
		attrs[i] = gputypes.VertexAttribute{
			Format:         e.Type.Format(),
			Offset:         uint64(e.Offset),
			ShaderLocation: uint32(e.Register),
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(s.Stride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// ConstantLoad records constant rows loaded by a declaration.
type ConstantLoad struct {
	Start int
	Rows  [][4]float32
}

// Declaration is a compiled vertex declaration.
type Declaration struct {
	Streams []Stream
	// Combined is the OR of the formats of the representable streams.
	Combined FVF
	// Representable is true when every stream has an FVF.
	Representable bool
	Constants     []ConstantLoad
	Tessellator   bool
	// Length is the number of tokens consumed, end token included.
	Length int
}

// Stream returns the stream bound at index.
func (d *Declaration) Stream(index int) (*Stream, bool) {
	for i := range d.Streams {
		if d.Streams[i].Index == index {
			return &d.Streams[i], true
		}
	}
	return nil, false
}

// Find returns the stream and element that load register r.
func (d *Declaration) Find(r Register) (*Stream, Element, bool) {
	for i := range d.Streams {
		for _, e := range d.Streams[i].Elements {
			if e.Register == r {
				return &d.Streams[i], e, true
			}
		}
	}
	return nil, Element{}, false
}

// Registers returns a bitmask of the input registers the declaration loads.
func (d *Declaration) Registers() uint32 {
	var m uint32
	for i := range d.Streams {
		for _, e := range d.Streams[i].Elements {
			m |= 1 << e.Register
		}
	}
	return m
}

// Layouts returns one vertex buffer layout per stream.
func (d *Declaration) Layouts() []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, len(d.Streams))
	for i := range d.Streams {
		out[i] = d.Streams[i].Layout()
	}
	return out
}

// layout assigns offsets with a running byte cursor.
type layout struct {
	elements []Element
	offset   int
}

func (l *layout) add(r Register, t DataType) {
	l.elements = append(l.elements, Element{Register: r, Type: t, Offset: l.offset})
	l.offset += t.Size()
}

func (l *layout) skip(words int) {
	l.offset += 4 * words
}

// streamFormat accumulates the FVF of one stream.
type streamFormat struct {
	layout
	index         int
	representable bool
	position      DataType
	hasPosition   bool
	weights       int
	indices       bool
	bits          FVF
	maxTex        int
	texSize       [8]int
}

func newStreamFormat(index int) *streamFormat {
	return &streamFormat{index: index, representable: true, maxTex: -1}
}

func (s *streamFormat) load(r Register, t DataType) {
	s.add(r, t)

	legal := false
	switch r {
	case Position:
		if t == Float3 || t == Float4 {
			s.position, s.hasPosition, legal = t, true, true
		}
	case BlendWeight:
		if t.IsFloat() {
			s.weights, legal = t.Components(), true
		}
	case BlendIndices:
		s.indices, legal = true, t == UByte4
	case Normal:
		s.bits, legal = s.bits|FVFNormal, t == Float3
	case PointSize:
		s.bits, legal = s.bits|FVFPSize, t == Float1
	case Diffuse:
		s.bits, legal = s.bits|FVFDiffuse, t == D3DColor
	case Specular:
		s.bits, legal = s.bits|FVFSpecular, t == D3DColor
	default:
		if n, ok := r.TexCoordSet(); ok && t.IsFloat() {
			s.texSize[n] = t.Components()
			s.maxTex = max(s.maxTex, n)
			legal = true
		}
	}
	if !legal {
		s.representable = false
	}
}

func (s *streamFormat) fvf() FVF {
	if !s.representable {
		return 0
	}
	f := s.bits
	blend := s.weights
	if s.indices {
		blend++
	}
	switch {
	case blend > 0:
		if !s.hasPosition || s.position != Float3 || blend > 5 {
			s.representable = false
			return 0
		}
		f |= FVFXYZB(blend)
		if s.indices {
			f |= FVFLastBetaUByte4
		}
	case s.hasPosition && s.position == Float3:
		f |= FVFXYZ
	case s.hasPosition:
		f |= FVFXYZRHW
	}
	if s.maxTex >= 0 {
		f |= FVFTex(s.maxTex + 1)
		for i := 0; i <= s.maxTex; i++ {
			if s.texSize[i] > 0 {
				f |= FVFTexCoordSize(i, s.texSize[i])
			}
		}
	}
	return f
}

func (s *streamFormat) stream() Stream {
	f := s.fvf()
	return Stream{
		Index:         s.index,
		FVF:           f,
		Representable: s.representable,
		Elements:      s.elements,
		Stride:        s.offset,
	}
}

// Compile compiles declaration tokens. Constant rows loaded by the
// declaration are written to bank when it is not nil.
//
// A stream whose attributes have no FVF equivalent is still laid out; its
// FVF is zero and Representable is false.
func Compile(tokens []uint32, bank ConstantWriter) (*Declaration, error) {
	d := &Declaration{}
	var (
		streams []*streamFormat
		cur     *streamFormat
	)
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch Type(tok) {
		case TokenNop:
			i++
		case TokenStream:
			if tok&streamTessBit != 0 {
				d.Tessellator = true
			}
			cur = newStreamFormat(int(tok & streamMask))
			streams = append(streams, cur)
			i++
		case TokenStreamData:
			if cur == nil {
				return nil, fmt.Errorf("%w: stream data at token %d before any stream", ErrInvalidToken, i)
			}
			if tok&dataLoadBit != 0 {
				cur.skip(int(tok >> dataTypeShift & dataTypeMask))
			} else {
				t := DataType(tok >> dataTypeShift & dataTypeMask)
				if !t.Valid() {
					return nil, fmt.Errorf("%w: unknown data type %d at token %d", ErrInvalidToken, t, i)
				}
				r := Register(tok & regMask)
				if r >= MaxRegisters {
					return nil, fmt.Errorf("%w: input register %d at token %d", ErrInvalidToken, r, i)
				}
				cur.load(r, t)
			}
			i++
		case TokenTessellator:
			d.Tessellator = true
			i++
		case TokenConstMem:
			start := int(tok & constAddrMask)
			count := int(tok >> constCountShift & constCountMask)
			if i+1+4*count > len(tokens) {
				return nil, fmt.Errorf("%w: constant load at token %d", ErrTruncated, i)
			}
			rows := make([][4]float32, count)
			for r := range rows {
				for c := 0; c < 4; c++ {
					rows[r][c] = ir.LiteralFloat(tokens[i+1+4*r+c])
				}
			}
			if bank != nil {
				if err := bank.SetConstants(start, rows); err != nil {
					return nil, fmt.Errorf("decl: constant load at c%d: %w", start, err)
				}
			}
			d.Constants = append(d.Constants, ConstantLoad{Start: start, Rows: rows})
			i += 1 + 4*count
		case TokenExt:
			count := int(tok >> extCountShift & extCountMask)
			if i+1+count > len(tokens) {
				return nil, fmt.Errorf("%w: extension at token %d", ErrTruncated, i)
			}
			i += 1 + count
		case TokenEnd:
			d.Length = i + 1
			d.finish(streams)
			return d, nil
		default:
			logging.Logger().Warn("decl: skipping unknown token", "index", i, "token", fmt.Sprintf("%#08x", tok))
			i++
		}
	}
	return nil, ErrMissingEnd
}

func (d *Declaration) finish(streams []*streamFormat) {
	d.Representable = true
	maxTex := 0
	for _, s := range streams {
		st := s.stream()
		d.Streams = append(d.Streams, st)
		if !st.Representable {
			d.Representable = false
			continue
		}
		d.Combined |= st.FVF &^ FVFTexCountMask
		maxTex = max(maxTex, st.FVF.TexCount())
	}
	d.Combined |= FVFTex(maxTex)
}
