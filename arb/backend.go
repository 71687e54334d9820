// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package arb

import (
	"fmt"

	"github.com/gogpu/d3d8/ir"
)

// Program headers.
const (
	VertexHeader   = "!!ARBvp1.0"
	FragmentHeader = "!!ARBfp1.0"
)

// Options configures ARB code generation.
type Options struct {
	// VertexConstants is the size of the C[] array declared by vertex
	// programs. Defaults to 96 if zero.
	VertexConstants int

	// PixelConstants is the size of the C[] array declared by fragment
	// programs. Defaults to 32 if zero.
	PixelConstants int

	// EmitComments writes each source instruction in assembler syntax as a
	// comment before its translation.
	EmitComments bool
}

// DefaultOptions returns the options matching the D3D8 constant banks.
func DefaultOptions() Options {
	return Options{
		VertexConstants: 96,
		PixelConstants:  32,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// Header is the program header, VertexHeader or FragmentHeader.
	Header string

	// Temps lists the r# registers declared as R#.
	Temps []int

	// Inputs lists the v# registers bound as attributes.
	Inputs []int

	// Locals lists constants defined in the program with def. They are
	// emitted as L# parameters and not read from the environment.
	Locals []int

	// Constants is the size of the declared C[] array, 0 when the program
	// reads no constants.
	Constants int

	// ScratchTemps is the number of TMP# temporaries used for modifier
	// decomposition.
	ScratchTemps int

	// UsesAddress is set when the program loads A0.
	UsesAddress bool

	// Instructions counts emitted ARB instructions.
	Instructions int

	// Warnings lists source constructs that were dropped.
	Warnings []string
}

// Compile generates ARB program text from a decoded program.
// Returns the text, translation info, or an error.
func Compile(p *ir.Program, options Options) (string, TranslationInfo, error) {
	if p == nil {
		return "", TranslationInfo{}, NewError(ErrInvalidProgram, "program is nil")
	}
	if options.VertexConstants <= 0 {
		options.VertexConstants = 96
	}
	if options.PixelConstants <= 0 {
		options.PixelConstants = 32
	}

	w, err := newWriter(p, &options)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("arb: %w", err)
	}
	if err := w.writeProgram(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("arb: %w", err)
	}
	return w.String(), w.info(), nil
}
