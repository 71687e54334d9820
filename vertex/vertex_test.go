package vertex

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/backend/recorder"
	"github.com/gogpu/d3d8/bytecode"
	"github.com/gogpu/d3d8/decl"
	"github.com/gogpu/d3d8/interp"
	"github.com/gogpu/d3d8/ir"
)

// vertexBuffer packs words (float32 or uint32) little-endian, padding each
// vertex to stride bytes.
func vertexBuffer(stride int, vertices ...[]any) []byte {
	var buf []byte
	for _, vert := range vertices {
		start := len(buf)
		for _, w := range vert {
			switch w := w.(type) {
			case float32:
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(w))
			case int:
				buf = binary.LittleEndian.AppendUint32(buf, uint32(w))
			case uint32:
				buf = binary.LittleEndian.AppendUint32(buf, w)
			}
		}
		for len(buf)-start < stride {
			buf = append(buf, 0)
		}
	}
	return buf
}

func indices16(idx ...uint16) []byte {
	var buf []byte
	for _, i := range idx {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return buf
}

func mustPrepare(t *testing.T, fvf decl.FVF, data []byte, stride, base int) *StridedData {
	t.Helper()
	var s Streams
	s.Bind(0, data, stride)
	sd, err := Prepare(&s, fvf.Declaration(), base)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return sd
}

func offsetOf(buf []byte, a *Attribute) int {
	return len(buf) - len(a.Data)
}

// =============================================================================
// Count Tests
// =============================================================================

func TestVertexCount(t *testing.T) {
	tests := []struct {
		prim backend.Primitive
		n    int
		want int
	}{
		{backend.PointList, 4, 4},
		{backend.LineList, 3, 6},
		{backend.LineStrip, 3, 4},
		{backend.TriangleList, 2, 6},
		{backend.TriangleStrip, 5, 7},
		{backend.TriangleFan, 4, 6},
		{backend.Primitive(0), 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.prim.String(), func(t *testing.T) {
			if got := VertexCount(tt.prim, tt.n); got != tt.want {
				t.Errorf("VertexCount(%v, %d) = %d, want %d", tt.prim, tt.n, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Prepare Tests
// =============================================================================

func TestPrepare_CursorIndependentOfStride(t *testing.T) {
	fvf := decl.FVFXYZ | decl.FVFNormal | decl.FVFDiffuse
	for _, stride := range []int{28, 32, 64} {
		buf := make([]byte, 3*stride)
		sd := mustPrepare(t, fvf, buf, stride, 0)
		if got := offsetOf(buf, sd.Attr(decl.Normal)); got != 12 {
			t.Errorf("stride %d: normal offset = %d, want 12", stride, got)
		}
		if got := offsetOf(buf, sd.Attr(decl.Diffuse)); got != 24 {
			t.Errorf("stride %d: diffuse offset = %d, want 24", stride, got)
		}
		if sd.Attr(decl.Diffuse).Stride != stride {
			t.Errorf("stride %d: attribute stride = %d", stride, sd.Attr(decl.Diffuse).Stride)
		}
	}
}

func TestPrepare_BaseVertex(t *testing.T) {
	buf := make([]byte, 5*28)
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFNormal|decl.FVFDiffuse, buf, 28, 2)
	if got := offsetOf(buf, sd.Attr(decl.Position)); got != 56 {
		t.Errorf("position offset = %d, want 56", got)
	}
	if got := offsetOf(buf, sd.Attr(decl.Diffuse)); got != 80 {
		t.Errorf("diffuse offset = %d, want 80", got)
	}
	if sd.FVF != decl.FVFXYZ|decl.FVFNormal|decl.FVFDiffuse {
		t.Errorf("FVF = %v", sd.FVF)
	}
}

func TestPrepare_ZeroStrideUsesDeclaration(t *testing.T) {
	buf := make([]byte, 64)
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFTex(1), buf, 0, 1)
	if got := offsetOf(buf, sd.Attr(decl.Position)); got != 20 {
		t.Errorf("position offset = %d, want 20", got)
	}
}

func TestPrepare_MultipleStreams(t *testing.T) {
	d, err := decl.Compile([]uint32{
		decl.StreamToken(0), decl.RegToken(decl.Position, decl.Float3),
		decl.StreamToken(3), decl.RegToken(decl.TexCoord(0), decl.Float2),
		decl.EndToken,
	}, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	var s Streams
	s.Bind(0, make([]byte, 36), 12)
	s.Bind(3, make([]byte, 24), 8)
	sd, err := Prepare(&s, d, 0)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if a := sd.Attr(decl.TexCoord(0)); a.Stream != 3 || a.Stride != 8 {
		t.Errorf("texcoord0 = stream %d stride %d, want 3, 8", a.Stream, a.Stride)
	}
	if got := sd.Registers(); got != 1<<decl.Position|1<<decl.TexCoord0 {
		t.Errorf("Registers() = %#x", got)
	}

	s.Bind(3, nil, 0)
	if _, err := Prepare(&s, d, 0); !errors.Is(err, ErrStreamNotBound) {
		t.Errorf("Prepare() error = %v, want ErrStreamNotBound", err)
	}
}

func TestPrepare_BaseVertexPastEnd(t *testing.T) {
	var s Streams
	s.Bind(0, make([]byte, 24), 12)
	if _, err := Prepare(&s, decl.FVFXYZ.Declaration(), 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Prepare() error = %v, want ErrOutOfBounds", err)
	}
}

// =============================================================================
// Fetch Tests
// =============================================================================

func TestAttribute_Fetch(t *testing.T) {
	tests := []struct {
		name string
		typ  decl.DataType
		data []byte
		want [4]float32
	}{
		{
			name: "float2 defaults",
			typ:  decl.Float2,
			data: vertexBuffer(8, []any{float32(3), float32(-1)}),
			want: [4]float32{3, -1, 0, 1},
		},
		{
			name: "float4",
			typ:  decl.Float4,
			data: vertexBuffer(16, []any{float32(1), float32(2), float32(3), float32(4)}),
			want: [4]float32{1, 2, 3, 4},
		},
		{
			name: "d3dcolor is bgra",
			typ:  decl.D3DColor,
			data: vertexBuffer(4, []any{uint32(0xFFFF0000)}),
			want: [4]float32{1, 0, 0, 1},
		},
		{
			name: "ubyte4",
			typ:  decl.UByte4,
			data: []byte{1, 2, 3, 250},
			want: [4]float32{1, 2, 3, 250},
		},
		{
			name: "short2 signed",
			typ:  decl.Short2,
			data: []byte{0xFF, 0xFF, 0x10, 0x00},
			want: [4]float32{-1, 16, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attribute{Data: tt.data, Stride: len(tt.data), Type: tt.typ}
			if got := a.Fetch(0); got != tt.want {
				t.Errorf("Fetch(0) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	got := Color(0x80000000 | 0x00FF00)
	if got[0] != 0 || got[1] != 1 || got[2] != 0 || math.Abs(float64(got[3])-128.0/255) > 1e-6 {
		t.Errorf("Color() = %v", got)
	}
}

func TestIndex(t *testing.T) {
	b16 := indices16(7, 65535)
	if got := Index(b16, gputypes.IndexFormatUint16, 1); got != 65535 {
		t.Errorf("Index(uint16, 1) = %d, want 65535", got)
	}
	b32 := binary.LittleEndian.AppendUint32(nil, 70000)
	if got := Index(b32, gputypes.IndexFormatUint32, 0); got != 70000 {
		t.Errorf("Index(uint32, 0) = %d, want 70000", got)
	}
}

// =============================================================================
// Dispatch Tests
// =============================================================================

func TestDispatcher_FastPath(t *testing.T) {
	buf := make([]byte, 3*24)
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFNormal, buf, 24, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}

	path, err := d.Draw(&DrawCall{Primitive: backend.TriangleList, Primitives: 1, Data: sd})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if path != PathFast {
		t.Errorf("path = %v, want fast", path)
	}
	want := "SetArrays(POSITION FLOAT3/24, NORMAL FLOAT3/24)\nDrawArrays(TRIANGLELIST, 0, 3)\n"
	if got := rec.Log(); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}
}

func TestDispatcher_FastIndexed(t *testing.T) {
	buf := make([]byte, 4*12)
	sd := mustPrepare(t, decl.FVFXYZ, buf, 12, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}

	call := &DrawCall{
		Primitive:   backend.TriangleStrip,
		Primitives:  2,
		Data:        sd,
		Indices:     indices16(0, 1, 3, 2),
		IndexFormat: gputypes.IndexFormatUint16,
	}
	if _, err := d.Draw(call); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := rec.Calls[1].String(); got != "DrawElements(TRIANGLESTRIP, 4, Uint16)" {
		t.Errorf("Calls[1] = %q", got)
	}
}

func TestDispatcher_Select(t *testing.T) {
	tests := []struct {
		name string
		fvf  decl.FVF
		opts Options
		want Path
	}{
		{"xyz", decl.FVFXYZ, Options{}, PathFast},
		{"specular", decl.FVFXYZ | decl.FVFSpecular, Options{}, PathFast},
		{"diffuse", decl.FVFXYZ | decl.FVFDiffuse, Options{}, PathSlow},
		{"diffuse bgra arrays", decl.FVFXYZ | decl.FVFDiffuse, Options{BGRAColorArrays: true}, PathFast},
		{"psize", decl.FVFXYZ | decl.FVFPSize, Options{BGRAColorArrays: true}, PathSlow},
		{"weights", decl.FVFXYZB2, Options{}, PathSlow},
		{"indices only", decl.FVFXYZB1 | decl.FVFLastBetaUByte4, Options{}, PathSlow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := mustPrepare(t, tt.fvf, make([]byte, 64), 0, 0)
			d := Dispatcher{Options: tt.opts}
			if got := d.Select(&DrawCall{Data: sd}); got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatcher_SlowPath(t *testing.T) {
	fvf := decl.FVFXYZRHW | decl.FVFDiffuse | decl.FVFTex(1)
	buf := vertexBuffer(28,
		[]any{float32(10), float32(20), float32(0.5), float32(2), uint32(0xFF0000FF), float32(0.25), float32(0.75)},
		[]any{float32(1), float32(2), float32(3), float32(1), uint32(0x00FF0000), float32(0), float32(0)},
		[]any{float32(4), float32(5), float32(6), float32(0.001), uint32(0), float32(0), float32(0)},
	)
	sd := mustPrepare(t, fvf, buf, 28, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}

	path, err := d.Draw(&DrawCall{Primitive: backend.TriangleList, Primitives: 1, Data: sd})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if path != PathSlow {
		t.Fatalf("path = %v, want slow", path)
	}
	if rec.Count(recorder.CallBegin) != 1 || rec.Count(recorder.CallVertex) != 3 || rec.Count(recorder.CallEnd) != 1 {
		t.Fatalf("Log() = %q", rec.Log())
	}

	tests := []struct {
		pos     [4]float32
		diffuse [4]float32
	}{
		{[4]float32{5, 10, 0.25, 0.5}, [4]float32{0, 0, 1, 1}},
		{[4]float32{1, 2, 3, 1}, [4]float32{1, 0, 0, 0}},
		{[4]float32{4, 5, 6, 1}, [4]float32{0, 0, 0, 0}},
	}
	for i, tt := range tests {
		v := rec.Vertices[i]
		if v.Position != tt.pos {
			t.Errorf("vertex %d position = %v, want %v", i, v.Position, tt.pos)
		}
		if v.Diffuse != tt.diffuse {
			t.Errorf("vertex %d diffuse = %v, want %v", i, v.Diffuse, tt.diffuse)
		}
	}
	v := rec.Vertices[0]
	if v.TexCoordSizes[0] != 2 || v.TexCoords[0][0] != 0.25 || v.TexCoords[0][1] != 0.75 {
		t.Errorf("texcoord0 = %v size %d", v.TexCoords[0], v.TexCoordSizes[0])
	}
}

func TestDispatcher_SlowDefaultDiffuse(t *testing.T) {
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFPSize, vertexBuffer(16, []any{float32(1), float32(2), float32(3), float32(8)}), 16, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}
	if _, err := d.Draw(&DrawCall{Primitive: backend.PointList, Primitives: 1, Data: sd}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	v := rec.Vertices[0]
	if v.Diffuse != [4]float32{1, 1, 1, 1} || v.Has&backend.AttrDiffuse != 0 {
		t.Errorf("diffuse = %v has %v, want white without AttrDiffuse", v.Diffuse, v.Has)
	}
	if v.PointSize != 8 || v.Has&backend.AttrPointSize == 0 {
		t.Errorf("point size = %v", v.PointSize)
	}
}

func TestDispatcher_SlowIndexed(t *testing.T) {
	buf := vertexBuffer(16,
		[]any{float32(0), float32(0), float32(0), uint32(0xFFFFFFFF)},
		[]any{float32(1), float32(0), float32(0), uint32(0xFFFFFFFF)},
		[]any{float32(2), float32(0), float32(0), uint32(0xFFFFFFFF)},
	)
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFDiffuse, buf, 16, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}
	call := &DrawCall{
		Primitive:   backend.LineStrip,
		Primitives:  2,
		Data:        sd,
		Indices:     indices16(2, 0, 1),
		IndexFormat: gputypes.IndexFormatUint16,
	}
	if _, err := d.Draw(call); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	for i, want := range []float32{2, 0, 1} {
		if got := rec.Vertices[i].Position[0]; got != want {
			t.Errorf("vertex %d x = %v, want %v", i, got, want)
		}
	}
}

func TestDispatcher_SoftwarePath(t *testing.T) {
	words := bytecode.NewBuilder(ir.VS11).
		Emit(ir.OpMov, bytecode.Dst(ir.RegRastOut, ir.RastPosition, ir.MaskAll), bytecode.Src(ir.RegInput, 0)).
		Emit(ir.OpMul, bytecode.Dst(ir.RegAttrOut, 0, ir.MaskAll), bytecode.Src(ir.RegInput, 5), bytecode.Src(ir.RegConst, 0)).
		Emit(ir.OpMov, bytecode.Dst(ir.RegTexCrdOut, 1, ir.MaskAll), bytecode.Src(ir.RegInput, 7)).
		End()
	p, err := bytecode.Decode(words)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	it, err := interp.New(p)
	if err != nil {
		t.Fatalf("interp.New() error = %v", err)
	}

	buf := vertexBuffer(24,
		[]any{float32(1), float32(2), float32(3), uint32(0xFFFFFFFF), float32(0.5), float32(0.5)},
	)
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFDiffuse|decl.FVFTex(1), buf, 24, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}
	call := &DrawCall{
		Primitive:  backend.PointList,
		Primitives: 1,
		Data:       sd,
		Software:   it,
		Constants:  []interp.Vec4{{0.5, 0.5, 0.5, 1}},
	}
	path, err := d.Draw(call)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if path != PathSoftware {
		t.Errorf("path = %v, want software", path)
	}
	v := rec.Vertices[0]
	if v.Position != [4]float32{1, 2, 3, 1} {
		t.Errorf("position = %v", v.Position)
	}
	if v.Diffuse != [4]float32{0.5, 0.5, 0.5, 1} {
		t.Errorf("diffuse = %v", v.Diffuse)
	}
	if v.TexCoordSizes[1] != 4 || v.TexCoords[1] != [4]float32{0.5, 0.5, 0, 1} {
		t.Errorf("texcoord1 = %v size %d", v.TexCoords[1], v.TexCoordSizes[1])
	}
	if v.TexCoordSizes[0] != 0 || v.Has&backend.AttrFog != 0 {
		t.Errorf("unwritten outputs submitted: sizes %v has %v", v.TexCoordSizes, v.Has)
	}
}

func TestDispatcher_ProgramPath(t *testing.T) {
	sd := mustPrepare(t, decl.FVFXYZ|decl.FVFDiffuse, make([]byte, 48), 16, 0)
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}
	path, err := d.Draw(&DrawCall{Primitive: backend.PointList, Primitives: 3, Data: sd, Program: true})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if path != PathProgram {
		t.Errorf("path = %v, want program", path)
	}
	want := "SetArrays(attrib[0] FLOAT3/16, attrib[5] D3DCOLOR/16)\nDrawArrays(POINTLIST, 0, 3)\n"
	if got := rec.Log(); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}
}

func TestDispatcher_Errors(t *testing.T) {
	rec := recorder.New(recorder.Options{})
	d := Dispatcher{Backend: rec}
	xyz := mustPrepare(t, decl.FVFXYZ, make([]byte, 36), 12, 0)
	normalOnly := mustPrepare(t, decl.FVFNormal, make([]byte, 36), 12, 0)

	tests := []struct {
		name string
		call DrawCall
		want error
	}{
		{
			name: "no position",
			call: DrawCall{Primitive: backend.TriangleList, Primitives: 1, Data: normalOnly},
			want: ErrNoPosition,
		},
		{
			name: "too many vertices",
			call: DrawCall{Primitive: backend.TriangleList, Primitives: 2, Data: xyz},
			want: ErrOutOfBounds,
		},
		{
			name: "index past buffer",
			call: DrawCall{Primitive: backend.PointList, Primitives: 1, Data: xyz,
				Indices: indices16(3), IndexFormat: gputypes.IndexFormatUint16},
			want: ErrOutOfBounds,
		},
		{
			name: "short index buffer",
			call: DrawCall{Primitive: backend.LineList, Primitives: 1, Data: xyz,
				Indices: indices16(0), IndexFormat: gputypes.IndexFormatUint16},
			want: ErrIndexBuffer,
		},
		{
			name: "undefined index format",
			call: DrawCall{Primitive: backend.PointList, Primitives: 1, Data: xyz, Indices: indices16(0)},
			want: ErrIndexBuffer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Draw(&tt.call); !errors.Is(err, tt.want) {
				t.Errorf("Draw() error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(rec.Calls) != 0 {
		t.Errorf("failed draws reached the backend: %q", rec.Log())
	}
}
