package vertex

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/decl"
	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/interp"
)

// ErrIndexBuffer is returned when index data is missing or too short.
var ErrIndexBuffer = errors.New("vertex: bad index buffer")

// Options configures a Dispatcher.
type Options struct {
	// BGRAColorArrays reports that the backend reads packed BGRA colors from
	// arrays, so diffuse colors do not force the slow path.
	BGRAColorArrays bool
}

// DefaultOptions returns the options of a backend without BGRA arrays.
func DefaultOptions() Options {
	return Options{}
}

// Path is the strategy a draw was submitted with.
type Path uint8

const (
	PathFast Path = iota
	PathSlow
	PathSoftware
	PathProgram
)

func (p Path) String() string {
	switch p {
	case PathFast:
		return "fast"
	case PathSlow:
		return "slow"
	case PathSoftware:
		return "software"
	case PathProgram:
		return "program"
	}
	return fmt.Sprintf("Path(%d)", uint8(p))
}

// DrawCall describes one draw.
type DrawCall struct {
	Primitive backend.Primitive
	// Primitives is the primitive count; VertexCount converts it.
	Primitives int
	Data       *StridedData

	// Indices starts at the first index to draw; nil draws vertices in
	// order.
	Indices     []byte
	IndexFormat gputypes.IndexFormat

	// Software runs the vertex program on the CPU with Constants as its
	// constant bank.
	Software  *interp.Interpreter
	Constants []interp.Vec4

	// Program marks that a native vertex program is bound.
	Program bool
}

// Dispatcher submits draws to a backend.
type Dispatcher struct {
	Backend backend.Backend
	Options Options
}

// fixedOrder is the order fixed-function arrays are bound in.
var fixedOrder = []decl.Register{
	decl.Position, decl.BlendWeight, decl.BlendIndices, decl.Normal,
	decl.PointSize, decl.Diffuse, decl.Specular,
	decl.TexCoord(0), decl.TexCoord(1), decl.TexCoord(2), decl.TexCoord(3),
	decl.TexCoord(4), decl.TexCoord(5), decl.TexCoord(6), decl.TexCoord(7),
}

// Select returns the path call would be drawn with.
func (d *Dispatcher) Select(call *DrawCall) Path {
	sd := call.Data
	switch {
	case call.Software != nil:
		return PathSoftware
	case call.Program:
		return PathProgram
	case sd.Has(decl.PointSize),
		sd.Has(decl.BlendWeight),
		sd.Has(decl.BlendIndices),
		sd.Has(decl.Diffuse) && !d.Options.BGRAColorArrays:
		return PathSlow
	}
	return PathFast
}

// Draw submits call and returns the path it took.
func (d *Dispatcher) Draw(call *DrawCall) (Path, error) {
	path := d.Select(call)
	n := VertexCount(call.Primitive, call.Primitives)
	if n <= 0 {
		return path, nil
	}

	maxVertex := n - 1
	if call.Indices != nil {
		size := int(call.IndexFormat.Size())
		if size == 0 {
			return path, fmt.Errorf("%w: index format %s", ErrIndexBuffer, call.IndexFormat)
		}
		if len(call.Indices) < n*size {
			return path, fmt.Errorf("%w: %d bytes for %d indices", ErrIndexBuffer, len(call.Indices), n)
		}
		maxVertex = 0
		for i := 0; i < n; i++ {
			maxVertex = max(maxVertex, Index(call.Indices, call.IndexFormat, i))
		}
	}
	if err := call.Data.check(maxVertex); err != nil {
		return path, err
	}
	if (path == PathFast || path == PathSlow) && !call.Data.Has(decl.Position) {
		return path, ErrNoPosition
	}

	logging.Logger().Debug("vertex: draw",
		"path", path.String(), "primitive", call.Primitive.String(), "vertices", n, "indexed", call.Indices != nil)

	switch path {
	case PathFast:
		d.drawArrays(call, n, fixedArrays(call.Data))
	case PathProgram:
		d.drawArrays(call, n, genericArrays(call.Data))
	case PathSlow:
		d.drawImmediate(call, n, slowVertex)
	case PathSoftware:
		d.drawImmediate(call, n, softwareVertex(call.Software, call.Constants))
	}
	return path, nil
}

func fixedArrays(sd *StridedData) []backend.ArrayBinding {
	var arrays []backend.ArrayBinding
	for _, r := range fixedOrder {
		a := sd.Attr(r)
		if !a.Present() {
			continue
		}
		arrays = append(arrays, backend.ArrayBinding{
			Register: r,
			Type:     a.Type,
			Stride:   a.Stride,
			Data:     a.Data,
		})
	}
	return arrays
}

func genericArrays(sd *StridedData) []backend.ArrayBinding {
	var arrays []backend.ArrayBinding
	for r := range sd.Attributes {
		a := &sd.Attributes[r]
		if !a.Present() {
			continue
		}
		arrays = append(arrays, backend.ArrayBinding{
			Register: decl.Register(r),
			Generic:  true,
			Type:     a.Type,
			Stride:   a.Stride,
			Data:     a.Data,
		})
	}
	return arrays
}

func (d *Dispatcher) drawArrays(call *DrawCall, n int, arrays []backend.ArrayBinding) {
	d.Backend.SetArrays(arrays)
	if call.Indices != nil {
		d.Backend.DrawElements(call.Primitive, n, call.IndexFormat, call.Indices)
		return
	}
	d.Backend.DrawArrays(call.Primitive, 0, n)
}

func (d *Dispatcher) drawImmediate(call *DrawCall, n int, build func(sd *StridedData, i int, v *backend.ImmediateVertex)) {
	d.Backend.Begin(call.Primitive)
	var v backend.ImmediateVertex
	for k := 0; k < n; k++ {
		i := k
		if call.Indices != nil {
			i = Index(call.Indices, call.IndexFormat, k)
		}
		v = backend.ImmediateVertex{}
		build(call.Data, i, &v)
		d.Backend.Vertex(&v)
	}
	d.Backend.End()
}

// rhwThreshold is the smallest reciprocal w that is divided out.
const rhwThreshold = 0.01

var white = [4]float32{1, 1, 1, 1}

func slowVertex(sd *StridedData, i int, v *backend.ImmediateVertex) {
	pos := sd.Attr(decl.Position)
	p := pos.Fetch(i)
	if pos.Type == decl.Float4 {
		if rhw := p[3]; rhw != 1 && rhw >= rhwThreshold {
			p = [4]float32{p[0] / rhw, p[1] / rhw, p[2] / rhw, 1 / rhw}
		} else {
			p[3] = 1
		}
	}
	v.Position = p

	if a := sd.Attr(decl.Normal); a.Present() {
		n := a.Fetch(i)
		v.Normal = [3]float32{n[0], n[1], n[2]}
		v.Has |= backend.AttrNormal
	}
	if a := sd.Attr(decl.BlendWeight); a.Present() {
		w := a.Fetch(i)
		for c := a.Type.Components(); c < 4; c++ {
			w[c] = 0
		}
		v.Weights = w
		v.Has |= backend.AttrWeights
	}
	if a := sd.Attr(decl.PointSize); a.Present() {
		v.PointSize = a.Fetch(i)[0]
		v.Has |= backend.AttrPointSize
	}
	v.Diffuse = white
	if a := sd.Attr(decl.Diffuse); a.Present() {
		v.Diffuse = a.Fetch(i)
		v.Has |= backend.AttrDiffuse
	}
	if a := sd.Attr(decl.Specular); a.Present() {
		v.Specular = a.Fetch(i)
		v.Has |= backend.AttrSpecular
	}
	for t := 0; t < 8; t++ {
		a := sd.Attr(decl.TexCoord(t))
		if !a.Present() {
			continue
		}
		v.TexCoords[t] = a.Fetch(i)
		v.TexCoordSizes[t] = uint8(a.Type.Components())
	}
}

func softwareVertex(it *interp.Interpreter, consts []interp.Vec4) func(*StridedData, int, *backend.ImmediateVertex) {
	usage := it.Usage()
	return func(sd *StridedData, i int, v *backend.ImmediateVertex) {
		var in interp.Inputs
		for r := range in {
			if a := &sd.Attributes[r]; a.Present() {
				in[r] = a.Fetch(i)
			}
		}
		out := it.Execute(&in, consts)

		v.Position = out.Position
		v.Diffuse = out.Colors[0]
		v.Specular = out.Colors[1]
		v.Has = backend.AttrDiffuse | backend.AttrSpecular
		for t := range out.TexCoords {
			if usage.TexCoords&(1<<t) != 0 {
				v.TexCoords[t] = out.TexCoords[t]
				v.TexCoordSizes[t] = 4
			}
		}
		if usage.Fog {
			v.Fog = out.Fog
			v.Has |= backend.AttrFog
		}
		if usage.PointSize {
			v.PointSize = out.PointSize
			v.Has |= backend.AttrPointSize
		}
	}
}
