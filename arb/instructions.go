// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package arb

import (
	"fmt"
	"strings"

	"github.com/gogpu/d3d8/ir"
)

// bindingClass groups operands for the ARB_vertex_program rule that one
// instruction may read at most one program parameter and one vertex
// attribute.
type bindingClass uint8

const (
	bindTemp bindingClass = iota
	bindParam
	bindAttrib
)

type operand struct {
	name  string
	swz   ir.Swizzle
	neg   bool
	class bindingClass
}

func (o operand) String() string {
	s := o.name + o.swz.String()
	if o.neg {
		return "-" + s
	}
	return s
}

// scalar selects the component the swizzle reads into slot i.
func (o operand) scalar(i int) operand {
	o.swz = ir.Replicate(o.swz.Component(i))
	return o
}

func (o operand) negate() operand {
	o.neg = !o.neg
	return o
}

func temp(name string) operand {
	return operand{name: name, swz: ir.SwizzleIdentity}
}

// raw is a non-register argument such as texture[0] or 2D.
func raw(text string) operand {
	return operand{name: text, swz: ir.SwizzleIdentity}
}

// scalarOps read a single component from each source.
var scalarOps = map[string]bool{
	"RCP": true, "RSQ": true, "EX2": true, "LG2": true,
	"EXP": true, "LOG": true, "POW": true, "SCS": true,
}

// scratch hands out TMP# registers within one source instruction.
type scratch struct {
	w    *Writer
	next int
}

func (s *scratch) take() string {
	name := fmt.Sprintf("TMP%d", s.next)
	s.next++
	if s.next > s.w.scratch {
		s.w.scratch = s.next
	}
	return name
}

func (w *Writer) helper(c uint8) operand {
	w.needHelper = true
	return operand{name: "helper", swz: ir.Replicate(c), class: bindParam}
}

func (w *Writer) shift(k int8) operand {
	w.needShift = true
	return operand{name: fmt.Sprintf("SHIFT[%d]", uint8(k)&15), swz: ir.SwizzleIdentity, class: bindParam}
}

// emit writes one ARB instruction. Vertex programs first copy extra
// parameter and attribute operands into TMP_P# temporaries.
func (w *Writer) emit(op, dst string, srcs ...operand) {
	if !w.pixel {
		srcs = w.legalize(srcs)
	}
	w.statement(op, dst, srcs)
}

func (w *Writer) statement(op, dst string, srcs []operand) {
	var sb strings.Builder
	sb.WriteString(op)
	sep := " "
	if dst != "" {
		sb.WriteString(sep)
		sb.WriteString(dst)
		sep = ", "
	}
	for _, s := range srcs {
		sb.WriteString(sep)
		sb.WriteString(s.String())
		sep = ", "
	}
	sb.WriteString(";\n")
	w.body.WriteString(sb.String())
	w.instructions++
}

func (w *Writer) legalize(srcs []operand) []operand {
	var first [3]string
	var copies map[string]string
	out := srcs
	for i, s := range srcs {
		if s.class == bindTemp {
			continue
		}
		if first[s.class] == "" || first[s.class] == s.name {
			first[s.class] = s.name
			continue
		}
		if copies == nil {
			copies = make(map[string]string)
			out = append([]operand(nil), srcs...)
		}
		tmp, ok := copies[s.name]
		if !ok {
			tmp = fmt.Sprintf("TMP_P%d", len(copies))
			copies[s.name] = tmp
			if len(copies) > w.paramTemps {
				w.paramTemps = len(copies)
			}
			w.statement("MOV", tmp, []operand{{name: s.name, swz: ir.SwizzleIdentity, class: s.class}})
		}
		out[i] = operand{name: tmp, swz: s.swz, neg: s.neg}
	}
	return out
}

// srcName resolves a source register to its ARB binding.
func (w *Writer) srcName(in *ir.Instruction, r ir.Register) (operand, error) {
	op := operand{swz: ir.SwizzleIdentity}
	switch r.Type {
	case ir.RegTemp:
		op.name = fmt.Sprintf("R%d", r.Index)
	case ir.RegInput:
		op.name = fmt.Sprintf("v%d", r.Index)
		op.class = bindAttrib
	case ir.RegConst:
		op.class = bindParam
		if r.Relative {
			if w.pixel {
				return op, w.unsupported(in, "relative addressing in a fragment program")
			}
			if r.RelAddr.Type != ir.RegAddress || r.RelAddr.Component != 0 {
				return op, w.unsupported(in, "relative addressing through a register other than a0.x")
			}
			w.bankUsed = true
			if r.Index == 0 {
				op.name = "C[A0.x]"
			} else {
				op.name = fmt.Sprintf("C[A0.x + %d]", r.Index)
			}
			return op, nil
		}
		if _, ok := w.usage.Locals[r.Index]; ok {
			op.name = fmt.Sprintf("L%d", r.Index)
			return op, nil
		}
		if r.Index >= w.bank {
			return op, NewErrorWithSpan(ErrInvalidProgram,
				fmt.Sprintf("constant c%d outside a bank of %d", r.Index, w.bank),
				uint32(in.Offset), uint32(in.Offset+in.Length))
		}
		w.bankUsed = true
		op.name = fmt.Sprintf("C[%d]", r.Index)
	case ir.RegAddress:
		if !w.pixel {
			return op, w.unsupported(in, "reading the address register")
		}
		op.name = fmt.Sprintf("T%d", r.Index)
		if !w.texturesAreTemps() {
			op.class = bindAttrib
		}
	default:
		return op, w.unsupported(in, fmt.Sprintf("source register %s", r.Name(w.program.Version.Kind)))
	}
	if r.Relative {
		return op, w.unsupported(in, "relative addressing of a non-constant register")
	}
	return op, nil
}

// dstName resolves a destination register to its ARB binding.
func (w *Writer) dstName(in *ir.Instruction, r ir.Register) (string, error) {
	if r.Relative {
		return "", w.unsupported(in, "relative destination")
	}
	switch r.Type {
	case ir.RegTemp:
		return fmt.Sprintf("R%d", r.Index), nil
	case ir.RegAddress:
		if w.texturesAreTemps() {
			return fmt.Sprintf("T%d", r.Index), nil
		}
	case ir.RegRastOut:
		switch r.Index {
		case ir.RastPosition:
			return "result.position", nil
		case ir.RastFog:
			return "result.fogcoord", nil
		case ir.RastPointSize:
			return "result.pointsize", nil
		}
	case ir.RegAttrOut:
		switch r.Index {
		case 0:
			return "result.color.primary", nil
		case 1:
			return "result.color.secondary", nil
		}
	case ir.RegTexCrdOut:
		return fmt.Sprintf("result.texcoord[%d]", r.Index), nil
	case ir.RegColorOut:
		if r.Index == 0 {
			return "result.color", nil
		}
	case ir.RegDepthOut:
		return "result.depth", nil
	}
	return "", w.unsupported(in, fmt.Sprintf("destination register %s", r.Name(w.program.Version.Kind)))
}

// source fetches one source operand, evaluating modifiers ARB lacks into a
// scratch temporary.
func (w *Writer) source(in *ir.Instruction, s ir.SrcOperand, sc *scratch) (operand, error) {
	op, err := w.srcName(in, s.Reg)
	if err != nil {
		return op, err
	}
	op.swz = s.Swizzle

	switch s.Modifier {
	case ir.ModNone:
		return op, nil
	case ir.ModNeg:
		return op.negate(), nil
	case ir.ModNot:
		w.warnf("%s: boolean not modifier at word %d ignored", in.Name(), in.Offset)
		return op, nil
	}

	name := sc.take()
	t := temp(name)
	switch s.Modifier {
	case ir.ModBias:
		w.emit("SUB", name, op, w.helper(2))
	case ir.ModBiasNeg:
		w.emit("SUB", name, w.helper(2), op)
	case ir.ModSign:
		w.emit("MAD", name, op, w.helper(3), w.helper(1).negate())
	case ir.ModSignNeg:
		w.emit("MAD", name, op, w.helper(3).negate(), w.helper(1))
	case ir.ModComp:
		w.emit("SUB", name, w.helper(1), op)
	case ir.ModX2:
		w.emit("MUL", name, op, w.helper(3))
	case ir.ModX2Neg:
		w.emit("MUL", name, op, w.helper(3).negate())
	case ir.ModDZ, ir.ModDW:
		c := 2
		if s.Modifier == ir.ModDW {
			c = 3
		}
		w.emit("RCP", name+".x", op.scalar(c))
		w.emit("MUL", name+".xy", op, t.scalar(0))
		w.emit("MOV", name+".zw", op)
	case ir.ModAbs:
		w.emit("ABS", name, op)
	case ir.ModAbsNeg:
		w.emit("ABS", name, op)
		t = t.negate()
	default:
		return op, w.unsupported(in, fmt.Sprintf("source modifier %s", s.Modifier))
	}
	return t, nil
}

func (w *Writer) sources(in *ir.Instruction, sc *scratch) ([]operand, error) {
	srcs := make([]operand, len(in.Src))
	for i, s := range in.Src {
		op, err := w.source(in, s, sc)
		if err != nil {
			return nil, err
		}
		srcs[i] = op
	}
	return srcs, nil
}

// writeResult emits op into the destination of in. Saturate and shift go
// through TMP_OUT; fragment programs saturate with the _SAT suffix instead.
func (w *Writer) writeResult(in *ir.Instruction, op string, srcs []operand) error {
	d := in.Dst
	name, err := w.dstName(in, d.Reg)
	if err != nil {
		return err
	}
	mask := d.Mask.String()
	if d.Saturate && w.pixel {
		op += "_SAT"
	}
	if d.Shift == 0 && (!d.Saturate || w.pixel) {
		w.emit(op, name+mask, srcs...)
		return nil
	}

	w.needOut = true
	out := temp("TMP_OUT")
	w.emit(op, "TMP_OUT"+mask, srcs...)
	if d.Saturate && !w.pixel {
		w.emit("MAX", "TMP_OUT"+mask, out, w.helper(0))
		w.emit("MIN", "TMP_OUT"+mask, out, w.helper(1))
	}
	if d.Shift != 0 {
		w.emit("MUL", name+mask, out, w.shift(d.Shift))
	} else {
		w.emit("MOV", name+mask, out)
	}
	return nil
}

func (w *Writer) translate(in *ir.Instruction) error {
	if in.Info.IsMacro() {
		for _, row := range in.Expand() {
			if err := w.simple(&row, row.Info.Native); err != nil {
				return err
			}
		}
		return nil
	}

	switch in.Code {
	case ir.OpMov, ir.OpMova:
		if !w.pixel && in.Dst.Reg.Type == ir.RegAddress {
			return w.loadAddress(in)
		}
		if in.Code == ir.OpMov {
			return w.simple(in, "MOV")
		}
		return w.unsupported(in, "mova into a non-address register")
	case ir.OpLrp:
		if !w.pixel {
			return w.lerp(in)
		}
	case ir.OpExpp:
		if w.pixel {
			return w.simple(in, "EX2")
		}
	case ir.OpLogp:
		if w.pixel {
			return w.simple(in, "LG2")
		}
	case ir.OpNrm:
		return w.normalize(in)
	case ir.OpSgn:
		return w.sign(in)
	case ir.OpSinCos:
		if !w.pixel {
			return w.unsupported(in, "sincos in a vertex program")
		}
		return w.simple(in, "SCS")
	case ir.OpCmp:
		return w.compare(in)
	case ir.OpCnd:
		return w.condition(in)
	case ir.OpTex:
		return w.texture(in)
	case ir.OpTexCoord:
		return w.texcoord(in)
	case ir.OpTexKill:
		return w.kill(in)
	}

	if in.Info.Native == "" {
		return w.unsupported(in, "no ARB equivalent")
	}
	return w.simple(in, in.Info.Native)
}

// simple translates an instruction with a one-to-one ARB opcode.
func (w *Writer) simple(in *ir.Instruction, op string) error {
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if scalarOps[op] {
		for i := range srcs {
			srcs[i] = srcs[i].scalar(3)
		}
	}
	return w.writeResult(in, op, srcs)
}

// loadAddress turns a write to a0.x into ARL. ARL floors where the
// interpreter truncates; the two agree for non-negative indices.
func (w *Writer) loadAddress(in *ir.Instruction) error {
	if in.Dst.Mask != ir.MaskX {
		return w.unsupported(in, "address components other than x")
	}
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if len(srcs) != 1 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("%s at word %d has %d sources", in.Name(), in.Offset, len(srcs)))
	}
	w.emit("ARL", "A0.x", srcs[0].scalar(0))
	return nil
}

// lerp expands lrp for vertex programs: s0*(s1-s2) + s2.
func (w *Writer) lerp(in *ir.Instruction) error {
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if len(srcs) != 3 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("lrp at word %d has %d sources", in.Offset, len(srcs)))
	}
	t := sc.take()
	w.emit("SUB", t, srcs[1], srcs[2])
	return w.writeResult(in, "MAD", []operand{srcs[0], temp(t), srcs[2]})
}

func (w *Writer) normalize(in *ir.Instruction) error {
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if len(srcs) < 1 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("nrm at word %d has no source", in.Offset))
	}
	t := sc.take()
	tw := temp(t).scalar(3)
	w.emit("DP3", t+".w", srcs[0], srcs[0])
	w.emit("RSQ", t+".w", tw)
	return w.writeResult(in, "MUL", []operand{srcs[0], tw})
}

// sign computes (0 < x) - (x < 0). The two helper temporaries of the
// source instruction are not needed.
func (w *Writer) sign(in *ir.Instruction) error {
	sc := &scratch{w: w}
	if len(in.Src) < 1 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("sgn at word %d has no source", in.Offset))
	}
	s, err := w.source(in, in.Src[0], sc)
	if err != nil {
		return err
	}
	pos, neg := sc.take(), sc.take()
	w.emit("SLT", pos, w.helper(0), s)
	w.emit("SLT", neg, s, w.helper(0))
	return w.writeResult(in, "SUB", []operand{temp(pos), temp(neg)})
}

// compare maps cmp (s0 >= 0 ? s1 : s2) onto CMP (s0 < 0 ? a : b).
func (w *Writer) compare(in *ir.Instruction) error {
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if len(srcs) != 3 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("cmp at word %d has %d sources", in.Offset, len(srcs)))
	}
	return w.writeResult(in, "CMP", []operand{srcs[0], srcs[2], srcs[1]})
}

// condition maps cnd (s0 > 0.5 ? s1 : s2) onto CMP of 0.5 - s0.
func (w *Writer) condition(in *ir.Instruction) error {
	sc := &scratch{w: w}
	srcs, err := w.sources(in, sc)
	if err != nil {
		return err
	}
	if len(srcs) != 3 {
		return NewError(ErrInvalidProgram, fmt.Sprintf("cnd at word %d has %d sources", in.Offset, len(srcs)))
	}
	t := sc.take()
	w.emit("SUB", t, w.helper(2), srcs[0])
	return w.writeResult(in, "CMP", []operand{temp(t), srcs[1], srcs[2]})
}

var textureTargets = map[uint8]string{2: "2D", 3: "CUBE", 4: "3D"}

func (w *Writer) target(unit int) string {
	if t, ok := textureTargets[w.samplers[unit]]; ok {
		return t
	}
	return "2D"
}

func texcoordAttrib(n int) operand {
	return operand{name: fmt.Sprintf("fragment.texcoord[%d]", n), swz: ir.SwizzleIdentity, class: bindAttrib}
}

// texture translates tex (ps 1.0-1.3), texld r#, t# (ps 1.4) and
// texld r#, t#, s# (ps 2.0).
func (w *Writer) texture(in *ir.Instruction) error {
	sc := &scratch{w: w}
	v := w.program.Version
	var coord operand
	var unit int
	switch {
	case !v.AtLeast(1, 4):
		unit = in.Dst.Reg.Index
		coord = texcoordAttrib(unit)
	case !v.AtLeast(2, 0):
		if len(in.Src) < 1 {
			return NewError(ErrInvalidProgram, fmt.Sprintf("texld at word %d has no source", in.Offset))
		}
		unit = in.Dst.Reg.Index
		c, err := w.source(in, in.Src[0], sc)
		if err != nil {
			return err
		}
		coord = c
	default:
		if len(in.Src) < 2 {
			return NewError(ErrInvalidProgram, fmt.Sprintf("texld at word %d has no sampler", in.Offset))
		}
		unit = in.Src[1].Reg.Index
		c, err := w.source(in, in.Src[0], sc)
		if err != nil {
			return err
		}
		coord = c
	}

	op := "TEX"
	if v.AtLeast(2, 0) {
		switch in.Control {
		case 1:
			op = "TXP"
		case 2:
			op = "TXB"
		}
	}
	return w.writeResult(in, op, []operand{coord, raw(fmt.Sprintf("texture[%d]", unit)), raw(w.target(unit))})
}

// texcoord copies a texture coordinate set. The ps 1.0-1.3 form clamps
// to [0, 1].
func (w *Writer) texcoord(in *ir.Instruction) error {
	if !w.program.Version.AtLeast(1, 4) {
		clamped := *in
		clamped.Dst.Saturate = true
		return w.writeResult(&clamped, "MOV", []operand{texcoordAttrib(in.Dst.Reg.Index)})
	}
	return w.simple(in, "MOV")
}

// kill discards the fragment when any of x, y, z is negative.
func (w *Writer) kill(in *ir.Instruction) error {
	xyz := ir.NewSwizzle(0, 1, 2, 2)
	if !w.program.Version.AtLeast(1, 4) {
		src := texcoordAttrib(in.Dst.Reg.Index)
		src.swz = xyz
		w.emit("KIL", "", src)
		return nil
	}
	src, err := w.srcName(in, in.Dst.Reg)
	if err != nil {
		return err
	}
	src.swz = xyz
	w.emit("KIL", "", src)
	return nil
}
