// Package ir defines the decoded form of Direct3D 8 shader bytecode.
//
// A Program is produced by the bytecode package and consumed by the
// interpreter (interp) and the ARB text backend (arb). It keeps the shape of
// the token stream: one Instruction per opcode token, with operands already
// split into register, swizzle, write mask and modifiers.
//
// # Structure
//
//   - Version: program kind (vertex or pixel) and major/minor version
//   - Instruction: opcode descriptor, destination, up to four sources
//   - OpcodeInfo: one row of the static opcode table
//
// # Opcode lookup
//
// The opcode table is ordered by priority. Lookup returns the first row whose
// code matches and whose version range contains the program version. Rows are
// indexed once at init by (kind, version, code) for every version the table
// knows about; other versions fall back to a linear scan with the same
// first-match rule.
//
// # Analysis
//
// Scan computes register usage, the pre-pass needed by code generation.
// Validate checks register indices against the limits of the program version.
package ir
