// Package d3d8 translates Direct3D 8 shader bytecode and vertex formats.
//
// d3d8 decodes vs/ps 1.x–2.x token streams and turns them into:
//   - ARB assembly: ARB_vertex_program and ARB_fragment_program text
//   - software execution: per-vertex interpretation of vertex programs
//
// The package provides a simple, high-level API for the common case as well
// as lower-level access to the individual stages in its sub-packages:
// bytecode (reader, decoder, disassembler), interp, arb, decl (vertex
// declarations and FVF codes), vertex (strided extraction and draw
// dispatch), and device (handle tables, constant banks, draw entry points).
//
// Example usage:
//
//	text, err := d3d8.Compile(words)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control, decode once and pick a stage:
//
//	program, _ := d3d8.Decode(words)
//	fmt.Print(d3d8.Disassemble(program))
//	text, info, err := arb.Compile(program, arb.DefaultOptions())
package d3d8

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/gogpu/d3d8/arb"
	"github.com/gogpu/d3d8/bytecode"
	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// ARB configures the generated program text.
	ARB arb.Options

	// Validate checks register indices against the version limits before
	// generating code.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		ARB:      arb.DefaultOptions(),
		Validate: true,
	}
}

// Compile translates a token stream to ARB program text using default
// options.
func Compile(words []uint32) (string, error) {
	return CompileWithOptions(words, DefaultOptions())
}

// CompileWithOptions translates a token stream to ARB program text.
//
// The pipeline is:
//  1. Decode the token stream
//  2. Validate register usage (if enabled)
//  3. Generate ARB text
func CompileWithOptions(words []uint32, opts CompileOptions) (string, error) {
	program, err := Decode(words)
	if err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}

	if opts.Validate {
		validationErrors, err := Validate(program)
		if err != nil {
			return "", fmt.Errorf("validation error: %w", err)
		}
		if len(validationErrors) > 0 {
			return "", fmt.Errorf("validation failed: %w", validationErrors[0])
		}
	}

	text, _, err := arb.Compile(program, opts.ARB)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Decode decodes a token stream into a program. Unknown opcodes and other
// recoverable problems are skipped and listed in the program's Warnings.
func Decode(words []uint32) (*ir.Program, error) {
	return bytecode.Decode(words)
}

// Validate checks register indices and register kinds against the limits of
// the program version.
//
// Returns a slice of validation errors. If the slice is empty, validation
// passed.
func Validate(program *ir.Program) ([]ir.ValidationError, error) {
	return ir.Validate(program)
}

// Disassemble prints a program in assembler syntax.
func Disassemble(program *ir.Program) string {
	return bytecode.Disassemble(program)
}

// Words converts little-endian bytes, as stored in compiled shader files, to
// a token stream.
func Words(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("d3d8: %d bytes is not a whole number of words", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return words, nil
}

// SetLogger sets the logger used by every d3d8 package. By default nothing
// is logged. Passing nil restores the default.
//
// Warnings report skipped opcodes, interpreter stubs and program compile
// failures; debug records trace program creation and draw path selection.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
