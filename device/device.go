package device

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/decl"
	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/internal/slots"
	"github.com/gogpu/d3d8/ir"
	"github.com/gogpu/d3d8/vertex"
)

// Device is the shader and draw state of one rendering context.
type Device struct {
	cfg        Config
	backend    backend.Backend
	dispatcher vertex.Dispatcher

	vertexShaders slots.Arena[uint32, *vertexShader]
	pixelShaders  slots.Arena[uint32, *pixelShader]
	vertexConsts  *bank
	pixelConsts   *bank

	// vsHandle is the SetVertexShader argument: an FVF code or a tagged
	// shader handle. fvfDecl is set for the former, vs for the latter.
	vsHandle uint32
	vs       *vertexShader
	fvfDecl  *decl.Declaration
	psHandle uint32
	ps       *pixelShader

	streams     vertex.Streams
	indices     []byte
	indexFormat gputypes.IndexFormat
	baseVertex  int
}

// New returns a device drawing through b.
func New(b backend.Backend, cfg Config) *Device {
	cfg = cfg.withDefaults()
	return &Device{
		cfg:          cfg,
		backend:      b,
		dispatcher:   vertex.Dispatcher{Backend: b, Options: cfg.Vertex},
		vertexConsts: newBank(ir.KindVertex, cfg.VertexConstants),
		pixelConsts:  newBank(ir.KindPixel, cfg.PixelConstants),
	}
}

// Config returns the configuration with defaults applied.
func (d *Device) Config() Config {
	return d.cfg
}

// CreateDeclaration compiles a vertex declaration. Constants it loads are
// written to the vertex bank.
func (d *Device) CreateDeclaration(tokens []uint32) (*decl.Declaration, error) {
	dc, err := decl.Compile(tokens, d.vertexConsts)
	if err != nil {
		return nil, fmt.Errorf("device: declaration: %w", err)
	}
	return dc, nil
}

// SetVertexShader selects the vertex processing for following draws: an FVF
// code for fixed-function processing, or a handle from CreateVertexShader.
// Binding a shader whose native program failed to compile returns
// ErrInvalidProgram; the shader stays current and draws fail the same way.
func (d *Device) SetVertexShader(h uint32) error {
	if !IsShaderHandle(h) {
		d.vsHandle, d.vs = h, nil
		d.fvfDecl = decl.FVF(h).Declaration()
		return nil
	}
	vs, err := d.lookupVertexShader(h)
	if err != nil {
		return err
	}
	d.vsHandle, d.vs, d.fvfDecl = h, vs, nil
	if vs.native != nil {
		if err := vs.native.Bind(d.backend); err != nil {
			return fmt.Errorf("device: vertex shader %#x: %w", h, err)
		}
	}
	return nil
}

// VertexShader returns the current SetVertexShader argument.
func (d *Device) VertexShader() uint32 {
	return d.vsHandle
}

// SetPixelShader binds a pixel shader. Zero unbinds the current one.
func (d *Device) SetPixelShader(h uint32) error {
	if h == 0 {
		d.psHandle, d.ps = 0, nil
		d.backend.BindProgram(ir.KindPixel, 0)
		return nil
	}
	ps, err := d.lookupPixelShader(h)
	if err != nil {
		return err
	}
	d.psHandle, d.ps = h, ps
	if err := ps.native.Bind(d.backend); err != nil {
		return fmt.Errorf("device: pixel shader %#x: %w", h, err)
	}
	return nil
}

// PixelShader returns the current pixel shader handle, zero if none.
func (d *Device) PixelShader() uint32 {
	return d.psHandle
}

// SetStreamSource binds data to stream index. A nil data slice unbinds it.
// A zero stride uses the stride the current declaration computes.
func (d *Device) SetStreamSource(index int, data []byte, stride int) error {
	if index < 0 || index >= vertex.MaxStreams || stride < 0 {
		return fmt.Errorf("%w: stream %d stride %d", ErrInvalidCall, index, stride)
	}
	d.streams.Bind(index, data, stride)
	return nil
}

// SetIndices binds the index buffer used by DrawIndexedPrimitive. Indices
// are offset by baseVertex.
func (d *Device) SetIndices(data []byte, format gputypes.IndexFormat, baseVertex int) error {
	if data != nil && format.Size() == 0 {
		return fmt.Errorf("%w: index format %s", ErrInvalidCall, format)
	}
	if baseVertex < 0 {
		return fmt.Errorf("%w: base vertex %d", ErrInvalidCall, baseVertex)
	}
	d.indices, d.indexFormat, d.baseVertex = data, format, baseVertex
	return nil
}

// DrawPrimitive draws count primitives from the bound streams, starting at
// vertex start.
func (d *Device) DrawPrimitive(prim backend.Primitive, start, count int) error {
	if start < 0 {
		return fmt.Errorf("%w: start vertex %d", ErrInvalidCall, start)
	}
	return d.draw(prim, count, start, nil, gputypes.IndexFormatUndefined)
}

// DrawIndexedPrimitive draws count primitives through the bound index
// buffer, starting at index startIndex. minIndex and numVertices describe the
// range of vertices the indices reference and are only used as hints.
func (d *Device) DrawIndexedPrimitive(prim backend.Primitive, minIndex, numVertices, startIndex, count int) error {
	if d.indices == nil {
		return fmt.Errorf("%w: no index buffer", ErrInvalidCall)
	}
	off := startIndex * int(d.indexFormat.Size())
	if startIndex < 0 || off > len(d.indices) {
		return fmt.Errorf("%w: start index %d", ErrInvalidCall, startIndex)
	}
	logging.Logger().Debug("device: indexed draw",
		"minIndex", minIndex, "numVertices", numVertices, "startIndex", startIndex)
	return d.draw(prim, count, d.baseVertex, d.indices[off:], d.indexFormat)
}

// DrawPrimitiveUP draws count primitives from data, which is bound to stream
// 0 for the duration of the draw. Stream 0 is unbound afterwards.
func (d *Device) DrawPrimitiveUP(prim backend.Primitive, count int, data []byte, stride int) error {
	if data == nil {
		return fmt.Errorf("%w: nil vertex data", ErrInvalidCall)
	}
	d.streams.Bind(0, data, stride)
	defer d.streams.Bind(0, nil, 0)
	return d.draw(prim, count, 0, nil, gputypes.IndexFormatUndefined)
}

// DrawIndexedPrimitiveUP draws count primitives from user index and vertex
// data. Stream 0 and the index buffer are unbound afterwards.
func (d *Device) DrawIndexedPrimitiveUP(prim backend.Primitive, minIndex, numVertices, count int,
	indices []byte, format gputypes.IndexFormat, data []byte, stride int) error {
	if data == nil || indices == nil {
		return fmt.Errorf("%w: nil user data", ErrInvalidCall)
	}
	if format.Size() == 0 {
		return fmt.Errorf("%w: index format %s", ErrInvalidCall, format)
	}
	d.streams.Bind(0, data, stride)
	defer func() {
		d.streams.Bind(0, nil, 0)
		d.indices, d.indexFormat, d.baseVertex = nil, gputypes.IndexFormatUndefined, 0
	}()
	logging.Logger().Debug("device: indexed draw",
		"minIndex", minIndex, "numVertices", numVertices, "startIndex", 0)
	return d.draw(prim, count, 0, indices, format)
}

func (d *Device) draw(prim backend.Primitive, count, base int, indices []byte, format gputypes.IndexFormat) error {
	if !prim.Valid() || count < 0 {
		return fmt.Errorf("%w: %s x %d", ErrInvalidCall, prim, count)
	}

	call := &vertex.DrawCall{
		Primitive:   prim,
		Primitives:  count,
		Indices:     indices,
		IndexFormat: format,
	}
	var layout *decl.Declaration
	switch vs := d.vs; {
	case vs != nil:
		layout = vs.decl
		switch {
		case vs.software != nil:
			call.Software = vs.software
			call.Constants = d.vertexConsts.rows
		case vs.native != nil:
			if !vs.native.Valid() {
				return fmt.Errorf("device: draw: %w", vs.native.Bind(d.backend))
			}
			d.vertexConsts.upload(d.backend)
			call.Program = true
		}
	case d.fvfDecl != nil:
		layout = d.fvfDecl
	default:
		return fmt.Errorf("%w: no vertex shader", ErrInvalidCall)
	}

	if d.ps != nil {
		if !d.ps.native.Valid() {
			return fmt.Errorf("device: draw: %w", d.ps.native.Bind(d.backend))
		}
		d.pixelConsts.upload(d.backend)
	}

	sd, err := vertex.Prepare(&d.streams, layout, base)
	if err != nil {
		return fmt.Errorf("device: draw: %w", err)
	}
	call.Data = sd
	if _, err := d.dispatcher.Draw(call); err != nil {
		return fmt.Errorf("device: draw: %w", err)
	}
	return nil
}
