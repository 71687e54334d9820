package vertex

import (
	"errors"
	"fmt"

	"github.com/gogpu/d3d8/decl"
)

// MaxStreams is the number of vertex streams.
const MaxStreams = 16

var (
	// ErrStreamNotBound is returned when a declaration reads a stream that
	// has no buffer.
	ErrStreamNotBound = errors.New("vertex: stream not bound")
	// ErrNoPosition is returned for fixed-function draws without positions.
	ErrNoPosition = errors.New("vertex: no position attribute")
	// ErrOutOfBounds is returned when a draw reads past the end of a buffer.
	ErrOutOfBounds = errors.New("vertex: read past end of buffer")
)

// StreamSource reports the buffer bound to a stream.
type StreamSource interface {
	Stream(index int) (data []byte, stride int, ok bool)
}

// Binding is one bound stream.
type Binding struct {
	Data   []byte
	Stride int
}

// Streams is a StreamSource over a fixed table of bindings.
type Streams [MaxStreams]Binding

// Bind sets stream index. A nil data slice unbinds it.
func (s *Streams) Bind(index int, data []byte, stride int) {
	s[index] = Binding{Data: data, Stride: stride}
}

func (s *Streams) Stream(index int) ([]byte, int, bool) {
	if index < 0 || index >= MaxStreams || s[index].Data == nil {
		return nil, 0, false
	}
	return s[index].Data, s[index].Stride, true
}

// Attribute is one strided vertex attribute.
type Attribute struct {
	// Data starts at this attribute of the base vertex. It is nil when the
	// attribute is absent.
	Data   []byte
	Stride int
	Type   decl.DataType
	Stream int
}

// Present reports whether the attribute is supplied.
func (a *Attribute) Present() bool {
	return a.Data != nil
}

// StridedData holds the attributes of a draw, indexed by input register.
type StridedData struct {
	Attributes [decl.MaxRegisters]Attribute
	// FVF is the combined format of the declaration, zero when it is not
	// representable.
	FVF decl.FVF
}

// Has reports whether register r is supplied.
func (sd *StridedData) Has(r decl.Register) bool {
	return sd.Attributes[r].Present()
}

// Attr returns the attribute of register r.
func (sd *StridedData) Attr(r decl.Register) *Attribute {
	return &sd.Attributes[r]
}

// Registers returns a bitmask of the supplied registers.
func (sd *StridedData) Registers() uint32 {
	var m uint32
	for r := range sd.Attributes {
		if sd.Attributes[r].Present() {
			m |= 1 << r
		}
	}
	return m
}

// Prepare resolves the attributes of d against the bound streams, starting
// at baseVertex. A stream stride of zero falls back to the stride the
// declaration computed.
func Prepare(source StreamSource, d *decl.Declaration, baseVertex int) (*StridedData, error) {
	sd := &StridedData{}
	if d.Representable {
		sd.FVF = d.Combined
	}
	for i := range d.Streams {
		s := &d.Streams[i]
		data, stride, ok := source.Stream(s.Index)
		if !ok {
			return nil, fmt.Errorf("%w: stream %d", ErrStreamNotBound, s.Index)
		}
		if stride == 0 {
			stride = s.Stride
		}
		base := baseVertex * stride
		for _, e := range s.Elements {
			off := base + e.Offset
			if off < 0 || off+e.Type.Size() > len(data) {
				return nil, fmt.Errorf("%w: stream %d %s at byte %d", ErrOutOfBounds, s.Index, e.Register, off)
			}
			sd.Attributes[e.Register] = Attribute{
				Data:   data[off:],
				Stride: stride,
				Type:   e.Type,
				Stream: s.Index,
			}
		}
	}
	return sd, nil
}

// check reports whether vertex maxVertex can be read from every attribute.
func (sd *StridedData) check(maxVertex int) error {
	for r := range sd.Attributes {
		a := &sd.Attributes[r]
		if !a.Present() {
			continue
		}
		if end := maxVertex*a.Stride + a.Type.Size(); end > len(a.Data) {
			return fmt.Errorf("%w: vertex %d of %s in stream %d", ErrOutOfBounds, maxVertex, decl.Register(r), a.Stream)
		}
	}
	return nil
}
