package ir

import (
	"fmt"
)

// ValidationError describes one register that is out of range or used in a
// way the program version does not allow.
type ValidationError struct {
	Message string
	// Offset is the word index of the offending instruction.
	Offset int
	// Instruction is its mnemonic.
	Instruction string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Instruction != "" {
		return fmt.Sprintf("word %d (%s): %s", e.Offset, e.Instruction, e.Message)
	}
	return fmt.Sprintf("word %d: %s", e.Offset, e.Message)
}

// Validator checks register indices against version limits.
type Validator struct {
	program *Program
	limits  Limits
	errors  []ValidationError
}

// Validate checks the program for correctness.
// Returns validation errors if any, or nil if the program is valid.
// Unknown opcodes are not errors: decoding already skipped them.
func Validate(p *Program) ([]ValidationError, error) {
	if p == nil {
		return nil, fmt.Errorf("program is nil")
	}
	v := &Validator{
		program: p,
		limits:  p.Version.Limits(),
	}
	for i := range p.Instructions {
		v.validateInstruction(&p.Instructions[i])
	}
	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) addError(in *Instruction, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:     fmt.Sprintf(format, args...),
		Offset:      in.Offset,
		Instruction: in.Name(),
	})
}

func (v *Validator) validateInstruction(in *Instruction) {
	if !in.Known() {
		return
	}
	if in.HasDst {
		v.validateRegister(in, in.Dst.Reg, true)
		if in.Dst.Mask&MaskAll == 0 && in.Code != OpDef && in.Code != OpDefI && in.Code != OpDefB {
			v.addError(in, "empty write mask")
		}
	}
	for _, s := range in.Src {
		v.validateRegister(in, s.Reg, false)
	}
	if in.Info.IsMacro() && len(in.Src) == 2 {
		rows, _ := macroShape(in.Code)
		last := in.Src[1].Reg.Offset(rows - 1)
		if !last.Relative {
			v.validateRegister(in, last, false)
		}
	}
}

func (v *Validator) validateRegister(in *Instruction, r Register, dst bool) {
	kind := v.program.Version.Kind
	lim := v.limits
	check := func(what string, max int) {
		if r.Index < 0 || r.Index >= max {
			v.addError(in, "%s index %d out of range [0, %d)", what, r.Index, max)
		}
	}

	if r.Relative {
		if r.Type != RegConst && !(r.Type == RegInput && v.program.Version.AtLeast(3, 0)) {
			v.addError(in, "relative addressing on %s", r.Name(kind))
		}
		if kind == KindPixel && !v.program.Version.AtLeast(3, 0) {
			v.addError(in, "relative addressing is not available in %s", v.program.Version)
		}
		// The base index of a relative access may be anything the address
		// register offsets back into range.
		return
	}

	switch r.Type {
	case RegTemp:
		check("temporary", lim.Temps)
	case RegInput:
		if dst && kind == KindVertex {
			v.addError(in, "input register written")
		}
		check("input", lim.Inputs)
	case RegConst:
		if dst {
			if in.Code != OpDef {
				v.addError(in, "constant register written")
			}
		}
		check("constant", lim.Constants)
	case RegAddress:
		if kind == KindPixel {
			check("texture", lim.Textures)
		} else {
			check("address", lim.Address)
		}
	case RegRastOut:
		check("rasterizer output", 3)
	case RegAttrOut:
		check("color output", lim.Colors)
	case RegTexCrdOut:
		check("texture coordinate output", lim.TexCoords)
	}
}
