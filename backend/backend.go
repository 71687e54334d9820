// Package backend defines the GL-like graphics API the d3d8 pipeline draws
// through.
//
// The pipeline never talks to a real graphics library directly. Programs are
// compiled from ARB assembly text, vertex data is either described as
// strided arrays or pushed vertex by vertex between Begin and End. Package
// backend/recorder provides an implementation that logs every call.
package backend

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/ir"
)

// Backend is the interface a graphics implementation provides.
//
// Calls are made from a single goroutine. Slices passed in are only valid
// for the duration of the call.
type Backend interface {
	// Program methods

	// GenProgram allocates a program name. Zero is never returned.
	GenProgram() uint32

	// CompileProgram loads assembly text into program id. The returned error
	// carries the implementation's diagnostic.
	CompileProgram(kind ir.Kind, id uint32, text string) error

	// BindProgram makes id the current program of its kind. Zero unbinds and
	// restores fixed-function processing.
	BindProgram(kind ir.Kind, id uint32)

	// DeleteProgram releases program id.
	DeleteProgram(id uint32)

	// SetProgramEnv uploads environment parameters starting at row start.
	// values holds four floats per row.
	SetProgramEnv(kind ir.Kind, start int, values []float32)

	// Array drawing methods

	// SetArrays replaces the bound attribute arrays.
	SetArrays(arrays []ArrayBinding)

	// DrawArrays draws count vertices starting at first from the bound
	// arrays.
	DrawArrays(prim Primitive, first, count int)

	// DrawElements draws count indexed vertices. indices holds the index
	// data starting at the first index to draw.
	DrawElements(prim Primitive, count int, format gputypes.IndexFormat, indices []byte)

	// Immediate methods

	// Begin starts a primitive batch submitted with Vertex.
	Begin(prim Primitive)

	// Vertex submits one vertex of the current batch.
	Vertex(v *ImmediateVertex)

	// End finishes the current batch.
	End()
}
