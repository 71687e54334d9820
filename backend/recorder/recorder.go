// Package recorder implements backend.Backend by recording every call.
//
// A Recorder keeps the compiled program text, the bound programs, the
// uploaded environment parameters, the last array bindings and every
// immediate vertex, so tests and tools can inspect what a draw produced.
//
//	rec := recorder.New(recorder.Options{Validate: true})
//	dev := device.New(rec, device.DefaultConfig())
//	...
//	for _, c := range rec.Calls {
//	    fmt.Println(c)
//	}
package recorder

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/d3d8/arb"
	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/ir"
)

// CallType identifies a recorded backend call.
type CallType uint8

const (
	CallGenProgram CallType = iota
	CallCompileProgram
	CallBindProgram
	CallDeleteProgram
	CallSetProgramEnv
	CallSetArrays
	CallDrawArrays
	CallDrawElements
	CallBegin
	CallVertex
	CallEnd
)

var callTypeNames = [...]string{
	CallGenProgram:     "GenProgram",
	CallCompileProgram: "CompileProgram",
	CallBindProgram:    "BindProgram",
	CallDeleteProgram:  "DeleteProgram",
	CallSetProgramEnv:  "SetProgramEnv",
	CallSetArrays:      "SetArrays",
	CallDrawArrays:     "DrawArrays",
	CallDrawElements:   "DrawElements",
	CallBegin:          "Begin",
	CallVertex:         "Vertex",
	CallEnd:            "End",
}

func (t CallType) String() string {
	if int(t) < len(callTypeNames) {
		return callTypeNames[t]
	}
	return fmt.Sprintf("CallType(%d)", uint8(t))
}

// Call is one recorded backend call. Only the fields relevant to Type are
// set.
type Call struct {
	Type      CallType
	Kind      ir.Kind
	Program   uint32
	Primitive backend.Primitive
	First     int
	Count     int
	Format    gputypes.IndexFormat
	Arrays    []backend.ArrayBinding
	Err       error
}

func (c Call) String() string {
	var args string
	switch c.Type {
	case CallGenProgram, CallDeleteProgram:
		args = fmt.Sprint(c.Program)
	case CallCompileProgram:
		args = fmt.Sprintf("%s, %d", c.Kind, c.Program)
		if c.Err != nil {
			args += ", failed"
		}
	case CallBindProgram:
		args = fmt.Sprintf("%s, %d", c.Kind, c.Program)
	case CallSetProgramEnv:
		args = fmt.Sprintf("%s, %d, %d", c.Kind, c.First, c.Count)
	case CallSetArrays:
		parts := make([]string, len(c.Arrays))
		for i, a := range c.Arrays {
			parts[i] = a.String()
		}
		args = strings.Join(parts, ", ")
	case CallDrawArrays:
		args = fmt.Sprintf("%s, %d, %d", c.Primitive, c.First, c.Count)
	case CallDrawElements:
		args = fmt.Sprintf("%s, %d, %s", c.Primitive, c.Count, c.Format)
	case CallBegin:
		args = c.Primitive.String()
	}
	return c.Type.String() + "(" + args + ")"
}

// ErrForcedFailure is the compile error reported when Options.FailCompile is
// set.
var ErrForcedFailure = errors.New("recorder: forced compile failure")

// Options configures a Recorder.
type Options struct {
	// FailCompile makes every CompileProgram call fail.
	FailCompile bool
	// Validate rejects program text that does not pass arb.Validate.
	Validate bool
}

// Recorder is a backend.Backend that records calls instead of drawing.
type Recorder struct {
	opts Options

	Calls []Call
	// Programs holds the text of every compiled program by name.
	Programs map[uint32]string
	// Bound holds the current program name per kind.
	Bound map[ir.Kind]uint32
	// Env holds the environment parameters per kind, four floats per row.
	Env map[ir.Kind][]float32
	// Arrays holds the last array bindings.
	Arrays []backend.ArrayBinding
	// Vertices holds every immediate vertex in submission order.
	Vertices []backend.ImmediateVertex

	next    uint32
	inBatch bool
}

var _ backend.Backend = (*Recorder)(nil)

// New returns an empty recorder.
func New(opts Options) *Recorder {
	return &Recorder{
		opts:     opts,
		Programs: make(map[uint32]string),
		Bound:    make(map[ir.Kind]uint32),
		Env:      make(map[ir.Kind][]float32),
	}
}

// Reset forgets recorded calls and vertices but keeps programs and bindings.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Vertices = nil
}

// Count returns the number of recorded calls of type t.
func (r *Recorder) Count(t CallType) int {
	n := 0
	for _, c := range r.Calls {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Log returns the recorded calls, one per line.
func (r *Recorder) Log() string {
	var sb strings.Builder
	for _, c := range r.Calls {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Recorder) record(c Call) {
	r.Calls = append(r.Calls, c)
}

func (r *Recorder) GenProgram() uint32 {
	r.next++
	r.record(Call{Type: CallGenProgram, Program: r.next})
	return r.next
}

func (r *Recorder) CompileProgram(kind ir.Kind, id uint32, text string) error {
	var err error
	switch {
	case r.opts.FailCompile:
		err = ErrForcedFailure
	case r.opts.Validate:
		err = arb.Validate(text)
	}
	r.record(Call{Type: CallCompileProgram, Kind: kind, Program: id, Err: err})
	if err != nil {
		return err
	}
	r.Programs[id] = text
	return nil
}

func (r *Recorder) BindProgram(kind ir.Kind, id uint32) {
	r.Bound[kind] = id
	r.record(Call{Type: CallBindProgram, Kind: kind, Program: id})
}

func (r *Recorder) DeleteProgram(id uint32) {
	delete(r.Programs, id)
	for k, bound := range r.Bound {
		if bound == id {
			r.Bound[k] = 0
		}
	}
	r.record(Call{Type: CallDeleteProgram, Program: id})
}

func (r *Recorder) SetProgramEnv(kind ir.Kind, start int, values []float32) {
	env := r.Env[kind]
	if need := start*4 + len(values); need > len(env) {
		env = append(env, make([]float32, need-len(env))...)
	}
	copy(env[start*4:], values)
	r.Env[kind] = env
	r.record(Call{Type: CallSetProgramEnv, Kind: kind, First: start, Count: len(values) / 4})
}

// EnvRow returns environment row i of kind.
func (r *Recorder) EnvRow(kind ir.Kind, i int) [4]float32 {
	var row [4]float32
	env := r.Env[kind]
	if (i+1)*4 <= len(env) {
		copy(row[:], env[i*4:])
	}
	return row
}

func (r *Recorder) SetArrays(arrays []backend.ArrayBinding) {
	r.Arrays = slices.Clone(arrays)
	r.record(Call{Type: CallSetArrays, Arrays: r.Arrays})
}

func (r *Recorder) DrawArrays(prim backend.Primitive, first, count int) {
	r.record(Call{Type: CallDrawArrays, Primitive: prim, First: first, Count: count})
}

func (r *Recorder) DrawElements(prim backend.Primitive, count int, format gputypes.IndexFormat, indices []byte) {
	r.record(Call{Type: CallDrawElements, Primitive: prim, Count: count, Format: format})
}

func (r *Recorder) Begin(prim backend.Primitive) {
	if r.inBatch {
		panic("recorder: Begin inside Begin/End")
	}
	r.inBatch = true
	r.record(Call{Type: CallBegin, Primitive: prim})
}

func (r *Recorder) Vertex(v *backend.ImmediateVertex) {
	if !r.inBatch {
		panic("recorder: Vertex outside Begin/End")
	}
	r.Vertices = append(r.Vertices, *v)
	r.record(Call{Type: CallVertex})
}

func (r *Recorder) End() {
	if !r.inBatch {
		panic("recorder: End without Begin")
	}
	r.inBatch = false
	r.record(Call{Type: CallEnd})
}
