package recorder

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/arb"
	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/decl"
	"github.com/gogpu/d3d8/ir"
)

const validText = "!!ARBvp1.0\nTEMP R0;\nMOV R0, vertex.position;\nMOV result.position, R0;\nEND\n"

// =============================================================================
// Program Tests
// =============================================================================

func TestRecorder_CompileAndBind(t *testing.T) {
	r := New(Options{Validate: true})
	p := backend.Load(r, ir.KindVertex, validText)
	if !p.Valid() {
		t.Fatalf("Load() invalid: %v", p.Err())
	}
	if err := p.Bind(r); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if got := r.Bound[ir.KindVertex]; got != p.ID {
		t.Errorf("Bound[vertex] = %d, want %d", got, p.ID)
	}
	if r.Programs[p.ID] != validText {
		t.Errorf("Programs[%d] = %q", p.ID, r.Programs[p.ID])
	}
	want := "GenProgram(1)\nCompileProgram(vertex, 1)\nBindProgram(vertex, 1)\n"
	if got := r.Log(); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}

	p.Release(r)
	if r.Bound[ir.KindVertex] != 0 {
		t.Errorf("Bound[vertex] = %d after Release, want 0", r.Bound[ir.KindVertex])
	}
	if _, ok := r.Programs[1]; ok {
		t.Error("program text kept after Release")
	}
}

func TestRecorder_ForcedFailure(t *testing.T) {
	r := New(Options{FailCompile: true})
	p := backend.Load(r, ir.KindVertex, validText)
	if p.Valid() {
		t.Fatal("Load() valid, want invalid")
	}
	if p.ID == 0 {
		t.Error("failed program has no name, want one allocated")
	}
	err := p.Bind(r)
	if !errors.Is(err, backend.ErrInvalidProgram) || !errors.Is(err, ErrForcedFailure) {
		t.Errorf("Bind() error = %v, want ErrInvalidProgram wrapping ErrForcedFailure", err)
	}
	if r.Count(CallBindProgram) != 0 {
		t.Error("invalid program reached BindProgram")
	}
}

func TestRecorder_ValidateRejects(t *testing.T) {
	r := New(Options{Validate: true})
	p := backend.Load(r, ir.KindVertex, "!!ARBvp1.0\nMOV R9, R8;\nEND\n")
	if p.Valid() {
		t.Fatal("Load() valid, want invalid")
	}
	if got := r.Calls[1].String(); got != "CompileProgram(vertex, 1, failed)" {
		t.Errorf("Calls[1] = %q", got)
	}
	var arbErr *arb.Error
	if !errors.As(p.Err(), &arbErr) || !arbErr.IsInvalidText() {
		t.Errorf("Err() = %v, want an arb InvalidText error", p.Err())
	}
}

func TestProgram_InvalidWithoutBackend(t *testing.T) {
	cause := errors.New("unsupported")
	p := backend.Invalid(ir.KindPixel, cause)
	r := New(Options{})
	if err := p.Bind(r); !errors.Is(err, cause) {
		t.Errorf("Bind() error = %v, want %v", err, cause)
	}
	p.Release(r)
	if len(r.Calls) != 0 {
		t.Errorf("Calls = %v, want none", r.Calls)
	}
}

// =============================================================================
// Draw Tests
// =============================================================================

func TestRecorder_Env(t *testing.T) {
	r := New(Options{})
	r.SetProgramEnv(ir.KindVertex, 2, []float32{1, 2, 3, 4, 5, 6, 7, 8})
	if got := r.EnvRow(ir.KindVertex, 3); got != [4]float32{5, 6, 7, 8} {
		t.Errorf("EnvRow(3) = %v", got)
	}
	if got := r.EnvRow(ir.KindVertex, 0); got != [4]float32{} {
		t.Errorf("EnvRow(0) = %v, want zero", got)
	}
	if got := r.Calls[0].String(); got != "SetProgramEnv(vertex, 2, 2)" {
		t.Errorf("Calls[0] = %q", got)
	}
}

func TestRecorder_Draws(t *testing.T) {
	r := New(Options{})
	arrays := []backend.ArrayBinding{{Register: decl.Position, Type: decl.Float3, Stride: 12}}
	r.SetArrays(arrays)
	arrays[0].Stride = 99
	r.DrawArrays(backend.TriangleList, 0, 3)
	r.DrawElements(backend.TriangleStrip, 4, gputypes.IndexFormatUint16, make([]byte, 8))
	r.Begin(backend.PointList)
	r.Vertex(&backend.ImmediateVertex{Position: [4]float32{1, 2, 3, 1}})
	r.End()

	want := "SetArrays(POSITION FLOAT3/12)\n" +
		"DrawArrays(TRIANGLELIST, 0, 3)\n" +
		"DrawElements(TRIANGLESTRIP, 4, Uint16)\n" +
		"Begin(POINTLIST)\n" +
		"Vertex()\n" +
		"End()\n"
	if got := r.Log(); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}
	if len(r.Vertices) != 1 || r.Vertices[0].Position[2] != 3 {
		t.Errorf("Vertices = %v", r.Vertices)
	}
}

func TestRecorder_VertexOutsideBatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Vertex() outside Begin did not panic")
		}
	}()
	New(Options{}).Vertex(&backend.ImmediateVertex{})
}
