// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package arb

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/d3d8/bytecode"
	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// Writer generates ARB program text from a decoded program.
type Writer struct {
	program *ir.Program
	options *Options
	usage   ir.Usage
	pixel   bool
	bank    int

	// Output buffer; body is generated first because the declarations
	// depend on what the instructions needed.
	out  strings.Builder
	body strings.Builder

	temps      uint32
	bankUsed   bool
	needHelper bool
	needShift  bool
	needOut    bool
	scratch    int
	paramTemps int

	// samplers maps s# to the texture type from its dcl.
	samplers map[int]uint8

	instructions int
	warnings     []string
}

func newWriter(p *ir.Program, options *Options) (*Writer, error) {
	v := p.Version
	switch {
	case v.Kind != ir.KindVertex && v.Kind != ir.KindPixel:
		return nil, NewError(ErrInvalidProgram, "program has no version token")
	case v.Major == 0 || v.Major > 2:
		return nil, NewError(ErrUnsupportedVersion, fmt.Sprintf("no ARB target for %s", v))
	}
	w := &Writer{
		program:  p,
		options:  options,
		usage:    ir.Scan(p),
		pixel:    v.Kind == ir.KindPixel,
		bank:     options.VertexConstants,
		samplers: make(map[int]uint8),
	}
	if w.pixel {
		w.bank = options.PixelConstants
	}
	w.temps = w.usage.Temps
	return w, nil
}

// String returns the generated program text.
func (w *Writer) String() string {
	return w.out.String()
}

func (w *Writer) info() TranslationInfo {
	info := TranslationInfo{
		Header:       w.header(),
		Temps:        bits(w.temps),
		Inputs:       w.usage.InputList(),
		Locals:       w.localList(),
		ScratchTemps: w.scratch,
		UsesAddress:  !w.pixel && w.usage.Address,
		Instructions: w.instructions,
		Warnings:     w.warnings,
	}
	if w.bankUsed {
		info.Constants = w.bank
	}
	return info
}

func (w *Writer) header() string {
	if w.pixel {
		return FragmentHeader
	}
	return VertexHeader
}

// texturesAreTemps reports whether t# registers are written by tex and
// texcoord (ps 1.0 to 1.3) rather than bound to texture coordinates.
func (w *Writer) texturesAreTemps() bool {
	return w.pixel && !w.program.Version.AtLeast(1, 4)
}

func (w *Writer) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.warnings = append(w.warnings, msg)
	logging.Logger().Warn("arb: " + msg)
}

// writeProgram translates every instruction and then assembles the header,
// declarations and body.
func (w *Writer) writeProgram() error {
	for i := range w.program.Instructions {
		if err := w.writeInstruction(&w.program.Instructions[i]); err != nil {
			return err
		}
	}
	// ps 1.x leaves its result in r0.
	if w.pixel && !w.program.Version.AtLeast(2, 0) {
		w.temps |= 1
		w.emit("MOV", "result.color", temp("R0"))
	}

	w.out.WriteString(w.header())
	w.out.WriteByte('\n')
	fmt.Fprintf(&w.out, "# %s\n", w.program.Version)
	w.writeDeclarations()
	w.out.WriteString(w.body.String())
	w.out.WriteString("END\n")
	return nil
}

func (w *Writer) writeInstruction(in *ir.Instruction) error {
	if !in.Known() {
		w.warnf("unknown opcode %d at word %d skipped", in.Code, in.Offset)
		return nil
	}
	switch in.Code {
	case ir.OpNop, ir.OpDef, ir.OpDefI, ir.OpDefB, ir.OpPhase:
		return nil
	case ir.OpDcl:
		if in.Dst.Reg.Type == ir.RegSampler {
			w.samplers[in.Dst.Reg.Index] = in.Usage.TextureType
		}
		return nil
	}
	if in.Predicated {
		return w.unsupported(in, "predicated execution")
	}
	if w.options.EmitComments {
		fmt.Fprintf(&w.body, "# %s\n", bytecode.FormatInstruction(w.program.Version, in))
	}
	return w.translate(in)
}

func (w *Writer) unsupported(in *ir.Instruction, what string) error {
	return NewErrorWithSpan(ErrUnsupportedFeature,
		fmt.Sprintf("%s: %s", in.Name(), what),
		uint32(in.Offset), uint32(in.Offset+in.Length))
}

func (w *Writer) writeDeclarations() {
	for _, n := range bits(w.temps) {
		fmt.Fprintf(&w.out, "TEMP R%d;\n", n)
	}
	if w.pixel {
		for _, n := range bits(uint32(w.usage.Textures)) {
			if w.texturesAreTemps() {
				fmt.Fprintf(&w.out, "TEMP T%d;\n", n)
			} else {
				fmt.Fprintf(&w.out, "ATTRIB T%d = fragment.texcoord[%d];\n", n, n)
			}
		}
	}
	for i := 0; i < w.scratch; i++ {
		fmt.Fprintf(&w.out, "TEMP TMP%d;\n", i)
	}
	if w.needOut {
		w.out.WriteString("TEMP TMP_OUT;\n")
	}
	for i := 0; i < w.paramTemps; i++ {
		fmt.Fprintf(&w.out, "TEMP TMP_P%d;\n", i)
	}
	if !w.pixel && w.usage.Address {
		w.out.WriteString("ADDRESS A0;\n")
	}
	if w.bankUsed {
		fmt.Fprintf(&w.out, "PARAM C[%d] = { program.env[0..%d] };\n", w.bank, w.bank-1)
	}
	for _, n := range w.localList() {
		v := w.usage.Locals[n]
		fmt.Fprintf(&w.out, "PARAM L%d = %s;\n", n, vector(v[0], v[1], v[2], v[3]))
	}
	if w.needHelper {
		fmt.Fprintf(&w.out, "PARAM helper = %s;\n", vector(0, 1, 0.5, 2))
	}
	if w.needShift {
		w.out.WriteString("PARAM SHIFT[16] = {")
		for i := 0; i < 16; i++ {
			if i > 0 {
				w.out.WriteByte(',')
			}
			s := shiftScale(i)
			fmt.Fprintf(&w.out, " %s", vector(s, s, s, s))
		}
		w.out.WriteString(" };\n")
	}
	for _, n := range w.usage.InputList() {
		if w.pixel {
			fmt.Fprintf(&w.out, "ATTRIB v%d = %s;\n", n, fragmentColor(n))
		} else {
			fmt.Fprintf(&w.out, "ATTRIB v%d = vertex.attrib[%d];\n", n, n)
		}
	}
}

func (w *Writer) localList() []int {
	list := make([]int, 0, len(w.usage.Locals))
	for n := range w.usage.Locals {
		list = append(list, n)
	}
	sort.Ints(list)
	return list
}

func fragmentColor(n int) string {
	if n == 0 {
		return "fragment.color.primary"
	}
	return "fragment.color.secondary"
}

// shiftScale is the multiplier for a 4-bit destination shift field.
func shiftScale(field int) float32 {
	if field < 8 {
		return float32(math.Ldexp(1, field))
	}
	return float32(math.Ldexp(1, field-16))
}

func vector(x, y, z, w float32) string {
	return fmt.Sprintf("{ %s, %s, %s, %s }", formatFloat(x), formatFloat(y), formatFloat(z), formatFloat(w))
}

func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func bits(mask uint32) []int {
	var out []int
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}
