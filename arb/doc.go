// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package arb translates decoded D3D8 shader programs into
// ARB_vertex_program and ARB_fragment_program assembly text.
//
// Translation is a single pass over the instruction list after a register
// usage scan. Most instructions map to one ARB instruction. Source modifiers
// without an ARB equivalent (bias, sign scaling, complement, x2, divide by
// z/w) are evaluated into scratch temporaries first, and destination shifts
// become a trailing multiply against a power-of-two table.
//
// # Vertex programs
//
// The constant bank is exposed as
//
//	PARAM C[96] = { program.env[0..95] };
//
// so constants are uploaded with glProgramEnvParameter4fvARB. Inputs are
// generic attributes: v3 reads vertex.attrib[3].
//
// # Fragment programs
//
// Pixel shader versions 1.0 to 2.0 are accepted. For 1.0 to 1.3 the texture
// registers t# are temporaries filled by tex and texcoord, and the final
// value of r0 is written to result.color.
//
// # Example
//
//	prog, _ := bytecode.Decode(words)
//	text, info, err := arb.Compile(prog, arb.DefaultOptions())
package arb
