// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package arb

import (
	"fmt"
	"strings"
)

var vertexOpcodes = map[string]bool{
	"ABS": true, "ADD": true, "ARL": true, "DP3": true, "DP4": true, "DPH": true,
	"DST": true, "EX2": true, "EXP": true, "FLR": true, "FRC": true, "LG2": true,
	"LIT": true, "LOG": true, "MAD": true, "MAX": true, "MIN": true, "MOV": true,
	"MUL": true, "POW": true, "RCP": true, "RSQ": true, "SGE": true, "SLT": true,
	"SUB": true, "SWZ": true, "XPD": true,
}

var fragmentOpcodes = map[string]bool{
	"ABS": true, "ADD": true, "CMP": true, "COS": true, "DP3": true, "DP4": true,
	"DPH": true, "DST": true, "EX2": true, "FLR": true, "FRC": true, "KIL": true,
	"LG2": true, "LIT": true, "LRP": true, "MAD": true, "MAX": true, "MIN": true,
	"MOV": true, "MUL": true, "POW": true, "RCP": true, "RSQ": true, "SCS": true,
	"SGE": true, "SIN": true, "SLT": true, "SUB": true, "SWZ": true, "TEX": true,
	"TXB": true, "TXP": true, "XPD": true,
}

var builtinBindings = map[string]bool{
	"result": true, "vertex": true, "fragment": true, "program": true,
	"state": true, "texture": true,
	"1D": true, "2D": true, "3D": true, "CUBE": true, "RECT": true,
}

// Validate performs a structural check of ARB program text: the header,
// statement termination, known opcodes, and that every register an
// instruction names was declared. It does not check resource limits.
func Validate(text string) error {
	lines := strings.Split(text, "\n")
	v := validator{declared: make(map[string]bool)}

	header := false
	ended := false
	for i, line := range lines {
		lineNo := uint32(i + 1)
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if ended {
			return v.errorf(lineNo, "text after END")
		}
		if !header {
			switch line {
			case VertexHeader:
				v.opcodes = vertexOpcodes
			case FragmentHeader:
				v.opcodes = fragmentOpcodes
				v.fragment = true
			default:
				return v.errorf(lineNo, "missing program header, got %q", line)
			}
			header = true
			continue
		}
		if line == "END" {
			ended = true
			continue
		}
		if err := v.statement(lineNo, line); err != nil {
			return err
		}
	}
	if !header {
		return NewError(ErrInvalidText, "empty program")
	}
	if !ended {
		return NewError(ErrInvalidText, "missing END")
	}
	return nil
}

type validator struct {
	opcodes  map[string]bool
	fragment bool
	declared map[string]bool
}

func (v *validator) errorf(line uint32, format string, args ...any) error {
	return NewErrorWithSpan(ErrInvalidText, fmt.Sprintf(format, args...), line, line)
}

func (v *validator) statement(line uint32, s string) error {
	if !strings.HasSuffix(s, ";") {
		return v.errorf(line, "statement not terminated: %q", s)
	}
	s = strings.TrimSuffix(s, ";")
	op, rest, _ := strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)

	switch op {
	case "TEMP", "ADDRESS", "OUTPUT":
		for _, name := range strings.Split(rest, ",") {
			v.declared[strings.TrimSpace(name)] = true
		}
		return nil
	case "PARAM", "ATTRIB", "ALIAS":
		name, _, ok := strings.Cut(rest, "=")
		if !ok {
			return v.errorf(line, "%s without a binding", op)
		}
		name = strings.TrimSpace(name)
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		v.declared[name] = true
		return nil
	case "OPTION":
		return nil
	}

	base := op
	if v.fragment {
		base = strings.TrimSuffix(op, "_SAT")
	}
	if !v.opcodes[base] {
		return v.errorf(line, "unknown opcode %s", op)
	}
	for _, arg := range strings.Split(rest, ",") {
		if err := v.operand(line, strings.TrimSpace(arg)); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) operand(line uint32, arg string) error {
	arg = strings.TrimPrefix(arg, "-")
	if arg == "" {
		return v.errorf(line, "empty operand")
	}
	if c := arg[0]; c == '{' || c == '.' || (c >= '0' && c <= '9' && !builtinBindings[arg]) {
		return nil
	}
	name := arg
	if i := strings.IndexAny(name, ".["); i >= 0 {
		name = name[:i]
	}
	if !v.declared[name] && !builtinBindings[name] {
		return v.errorf(line, "undeclared register %s", name)
	}
	return nil
}
