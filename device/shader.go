package device

import (
	"fmt"
	"slices"

	"honnef.co/go/safeish"

	"github.com/gogpu/d3d8/arb"
	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/bytecode"
	"github.com/gogpu/d3d8/decl"
	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/interp"
	"github.com/gogpu/d3d8/ir"
)

// vertexShader is a created vertex shader. function and program are nil for
// declaration-only shaders, which draw through the fixed-function paths.
type vertexShader struct {
	declTokens []uint32
	decl       *decl.Declaration

	function []uint32
	program  *ir.Program

	// Exactly one of software and native is set when program is.
	software *interp.Interpreter
	native   *backend.Program
}

type pixelShader struct {
	function []uint32
	program  *ir.Program
	native   *backend.Program
}

// vertexHandle tags an arena handle so it cannot be mistaken for an FVF.
func vertexHandle(h uint32) uint32 { return h<<1 | 1 }

// IsShaderHandle reports whether a SetVertexShader argument names a created
// shader rather than an FVF code.
func IsShaderHandle(h uint32) bool { return h&1 != 0 }

// decodeFunction decodes function and checks that it is a program of kind.
// It returns the program and a copy of its words up to the end token.
func decodeFunction(function []uint32, kind ir.Kind) (*ir.Program, []uint32, error) {
	p, err := bytecode.Decode(function)
	if err != nil {
		return nil, nil, fmt.Errorf("device: %s function: %w", kind, err)
	}
	if p.Version.Kind != kind {
		return nil, nil, fmt.Errorf("%w: %s function passed as %s", ErrInvalidCall, p.Version.Kind, kind)
	}
	n := min(p.Words, len(function))
	return p, slices.Clone(function[:n]), nil
}

// compile turns p into a native program. Failures yield an invalid program
// rather than an error.
func (d *Device) compile(p *ir.Program) *backend.Program {
	kind := p.Version.Kind
	text, info, err := arb.Compile(p, d.cfg.ARB)
	if err != nil {
		logging.Logger().Warn("device: program translation failed",
			"version", p.Version.String(), "err", err)
		return backend.Invalid(kind, err)
	}
	prog := backend.Load(d.backend, kind, text)
	logging.Logger().Debug("device: program created",
		"version", p.Version.String(), "id", prog.ID, "valid", prog.Valid(),
		"instructions", info.Instructions, "constants", info.Constants)
	return prog
}

// CreateVertexShader creates a vertex shader from a declaration and an
// optional function. Constants the declaration loads are written to the
// vertex bank. A function whose native program fails to compile still
// yields a handle; binding it returns ErrInvalidProgram.
func (d *Device) CreateVertexShader(declaration, function []uint32) (uint32, error) {
	if declaration == nil {
		return 0, fmt.Errorf("%w: nil declaration", ErrInvalidCall)
	}
	dc, err := decl.Compile(declaration, d.vertexConsts)
	if err != nil {
		return 0, fmt.Errorf("device: vertex declaration: %w", err)
	}
	vs := &vertexShader{
		declTokens: slices.Clone(declaration[:dc.Length]),
		decl:       dc,
	}

	if function != nil {
		vs.program, vs.function, err = decodeFunction(function, ir.KindVertex)
		if err != nil {
			return 0, err
		}
		if d.cfg.SoftwareVertexProcessing {
			if vs.software, err = interp.New(vs.program); err != nil {
				return 0, fmt.Errorf("device: vertex function: %w", err)
			}
		} else {
			vs.native = d.compile(vs.program)
		}
	}

	h, err := d.vertexShaders.Insert(vs)
	if err != nil {
		vs.native.Release(d.backend)
		return 0, fmt.Errorf("device: vertex shader: %w", err)
	}
	return vertexHandle(h), nil
}

func (d *Device) lookupVertexShader(h uint32) (*vertexShader, error) {
	if !IsShaderHandle(h) {
		return nil, fmt.Errorf("%w: %#x is an FVF code", ErrInvalidCall, h)
	}
	vs, ok := d.vertexShaders.Get(h >> 1)
	if !ok {
		return nil, fmt.Errorf("%w: vertex shader %#x", ErrInvalidHandle, h)
	}
	return vs, nil
}

// DeleteVertexShader deletes a vertex shader and its native program. If it
// is current, the device is left without a vertex shader.
func (d *Device) DeleteVertexShader(h uint32) error {
	if _, err := d.lookupVertexShader(h); err != nil {
		return err
	}
	vs, _ := d.vertexShaders.Remove(h >> 1)
	vs.native.Release(d.backend)
	if d.vsHandle == h {
		d.vsHandle = 0
		d.vs = nil
	}
	return nil
}

// GetVertexShaderFunction returns the bytecode a vertex shader was created
// from, up to and including its end token.
func (d *Device) GetVertexShaderFunction(h uint32) ([]byte, error) {
	vs, err := d.lookupVertexShader(h)
	if err != nil {
		return nil, err
	}
	if vs.function == nil {
		return nil, fmt.Errorf("%w: vertex shader %#x has no function", ErrNotAvailable, h)
	}
	return wordBytes(vs.function), nil
}

// GetVertexShaderDeclaration returns the declaration tokens a vertex shader
// was created from, up to and including the end token.
func (d *Device) GetVertexShaderDeclaration(h uint32) ([]byte, error) {
	vs, err := d.lookupVertexShader(h)
	if err != nil {
		return nil, err
	}
	return wordBytes(vs.declTokens), nil
}

// CreatePixelShader creates a pixel shader. A function whose native program
// fails to compile still yields a handle; binding it returns
// ErrInvalidProgram.
func (d *Device) CreatePixelShader(function []uint32) (uint32, error) {
	if function == nil {
		return 0, fmt.Errorf("%w: nil function", ErrInvalidCall)
	}
	p, words, err := decodeFunction(function, ir.KindPixel)
	if err != nil {
		return 0, err
	}
	ps := &pixelShader{function: words, program: p, native: d.compile(p)}
	h, err := d.pixelShaders.Insert(ps)
	if err != nil {
		ps.native.Release(d.backend)
		return 0, fmt.Errorf("device: pixel shader: %w", err)
	}
	return h, nil
}

func (d *Device) lookupPixelShader(h uint32) (*pixelShader, error) {
	ps, ok := d.pixelShaders.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: pixel shader %#x", ErrInvalidHandle, h)
	}
	return ps, nil
}

// DeletePixelShader deletes a pixel shader and its native program.
func (d *Device) DeletePixelShader(h uint32) error {
	ps, ok := d.pixelShaders.Remove(h)
	if !ok {
		return fmt.Errorf("%w: pixel shader %#x", ErrInvalidHandle, h)
	}
	ps.native.Release(d.backend)
	if d.psHandle == h {
		d.psHandle = 0
		d.ps = nil
	}
	return nil
}

// GetPixelShaderFunction returns the bytecode a pixel shader was created
// from, up to and including its end token.
func (d *Device) GetPixelShaderFunction(h uint32) ([]byte, error) {
	ps, err := d.lookupPixelShader(h)
	if err != nil {
		return nil, err
	}
	return wordBytes(ps.function), nil
}

func wordBytes(words []uint32) []byte {
	if len(words) == 0 {
		return []byte{}
	}
	return slices.Clone(safeish.SliceCast[[]byte](words))
}
