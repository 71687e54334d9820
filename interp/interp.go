package interp

import (
	"errors"
	"math"
	"sort"

	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// Vec4 is one four-component register.
type Vec4 [4]float32

// MaxInputs is the number of vertex input registers.
const MaxInputs = 16

// Inputs holds the vertex input registers v0..v15.
type Inputs [MaxInputs]Vec4

// Outputs holds what a vertex program produced for one vertex.
type Outputs struct {
	Position  Vec4
	Colors    [2]Vec4
	TexCoords [8]Vec4
	Fog       float32
	PointSize float32
}

// ErrNotVertexProgram is returned by New for pixel programs.
var ErrNotVertexProgram = errors.New("interp: not a vertex program")

// Interpreter runs one prepared vertex program.
type Interpreter struct {
	program *ir.Program
	code    []ir.Instruction
	locals  map[int]Vec4
	usage   ir.Usage
}

// New prepares p for execution: matrix macros are expanded and def constants
// collected.
func New(p *ir.Program) (*Interpreter, error) {
	if p == nil {
		return nil, errors.New("interp: program is nil")
	}
	if p.Version.Kind != ir.KindVertex {
		return nil, ErrNotVertexProgram
	}

	it := &Interpreter{
		program: p,
		usage:   ir.Scan(p),
	}
	if len(it.usage.Locals) > 0 {
		it.locals = make(map[int]Vec4, len(it.usage.Locals))
		for idx, v := range it.usage.Locals {
			it.locals[idx] = Vec4(v)
		}
	}

	stubs := map[string]struct{}{}
	for i := range p.Instructions {
		in := &p.Instructions[i]
		if !in.Known() {
			continue
		}
		switch in.Code {
		case ir.OpDef, ir.OpDefI, ir.OpDefB, ir.OpDcl, ir.OpNop:
			continue
		}
		for _, ex := range in.Expand() {
			if _, ok := ops[ex.Code]; !ok {
				stubs[in.Info.Name] = struct{}{}
				continue
			}
			it.code = append(it.code, ex)
		}
	}
	if len(stubs) > 0 {
		names := make([]string, 0, len(stubs))
		for n := range stubs {
			names = append(names, n)
		}
		sort.Strings(names)
		logging.Logger().Warn("interp: opcodes without software execution are skipped",
			"version", p.Version.String(), "opcodes", names)
	}
	return it, nil
}

// Program returns the program the interpreter was prepared from.
func (it *Interpreter) Program() *ir.Program {
	return it.program
}

// Usage returns the register usage of the program.
func (it *Interpreter) Usage() ir.Usage {
	return it.usage
}

// Execute runs the program for one vertex. consts is the constant bank; it
// is only read.
//
// A relatively addressed constant whose final index falls outside consts is
// a caller error and panics with an index out of range.
func (it *Interpreter) Execute(in *Inputs, consts []Vec4) Outputs {
	r := registers{
		inputs: in,
		consts: consts,
		locals: it.locals,
	}
	var src [4]Vec4
	for i := range it.code {
		ins := &it.code[i]
		for j, s := range ins.Src {
			src[j] = r.fetch(s)
		}
		res := ops[ins.Code](&src)
		if ins.HasDst {
			r.write(ins.Dst, res)
		}
	}
	r.out.Fog = r.fog[0]
	r.out.PointSize = r.pointSize[0]
	return r.out
}

// registers is the per-vertex register file.
type registers struct {
	temps     [32]Vec4
	addr      Vec4
	inputs    *Inputs
	consts    []Vec4
	locals    map[int]Vec4
	fog       Vec4
	pointSize Vec4
	out       Outputs
}

func (r *registers) offset(reg ir.Register) int {
	if !reg.Relative {
		return reg.Index
	}
	// Address values are truncated toward zero.
	return reg.Index + int(r.addr[reg.RelAddr.Component&3])
}

func (r *registers) read(reg ir.Register) Vec4 {
	switch reg.Type {
	case ir.RegTemp:
		return r.temps[reg.Index&31]
	case ir.RegInput:
		idx := r.offset(reg)
		if r.inputs == nil || idx < 0 || idx >= MaxInputs {
			return Vec4{}
		}
		return r.inputs[idx]
	case ir.RegConst:
		idx := r.offset(reg)
		if v, ok := r.locals[idx]; ok {
			return v
		}
		if !reg.Relative && idx >= len(r.consts) {
			return Vec4{}
		}
		return r.consts[idx]
	case ir.RegAddress:
		return r.addr
	}
	return Vec4{}
}

func (r *registers) fetch(s ir.SrcOperand) Vec4 {
	raw := r.read(s.Reg)
	var v Vec4
	for i := 0; i < 4; i++ {
		v[i] = raw[s.Swizzle.Component(i)]
	}
	return applyModifier(v, s.Modifier)
}

func (r *registers) target(reg ir.Register) *Vec4 {
	switch reg.Type {
	case ir.RegTemp:
		return &r.temps[reg.Index&31]
	case ir.RegAddress:
		return &r.addr
	case ir.RegRastOut:
		switch reg.Index {
		case ir.RastPosition:
			return &r.out.Position
		case ir.RastFog:
			return &r.fog
		case ir.RastPointSize:
			return &r.pointSize
		}
	case ir.RegAttrOut:
		if reg.Index < len(r.out.Colors) {
			return &r.out.Colors[reg.Index]
		}
	case ir.RegTexCrdOut:
		if reg.Index < len(r.out.TexCoords) {
			return &r.out.TexCoords[reg.Index]
		}
	}
	return nil
}

// write stores v through the write mask, after saturate and then shift.
func (r *registers) write(d ir.DstOperand, v Vec4) {
	dst := r.target(d.Reg)
	if dst == nil {
		return
	}
	if d.Saturate {
		for i := range v {
			v[i] = clamp(v[i], 0, 1)
		}
	}
	if d.Shift != 0 {
		scale := d.Scale()
		for i := range v {
			v[i] *= scale
		}
	}
	for i := 0; i < 4; i++ {
		if d.Mask.Has(i) {
			dst[i] = v[i]
		}
	}
}

func applyModifier(v Vec4, m ir.SourceModifier) Vec4 {
	switch m {
	case ir.ModBias, ir.ModBiasNeg:
		for i := range v {
			v[i] -= 0.5
		}
	case ir.ModSign, ir.ModSignNeg:
		for i := range v {
			v[i] = 2 * (v[i] - 0.5)
		}
	case ir.ModComp:
		for i := range v {
			v[i] = 1 - v[i]
		}
	case ir.ModX2, ir.ModX2Neg:
		for i := range v {
			v[i] *= 2
		}
	case ir.ModDZ:
		v[0] /= v[2]
		v[1] /= v[2]
	case ir.ModDW:
		v[0] /= v[3]
		v[1] /= v[3]
	case ir.ModAbs, ir.ModAbsNeg:
		for i := range v {
			v[i] = float32(math.Abs(float64(v[i])))
		}
	}
	if m.Negated() {
		for i := range v {
			v[i] = -v[i]
		}
	}
	return v
}
