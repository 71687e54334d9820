// Package bytecode reads Direct3D 8 shader token streams.
//
// A token stream is a flat sequence of 32-bit words: a version token, then
// instructions and comment blocks, then an end token. The Reader classifies
// and splits words into tokens; Decode turns the tokens into an ir.Program.
// Disassemble prints a program in assembler syntax.
//
// Decoding is forgiving. Unknown opcodes, forward versions and truncated
// streams are recorded as warnings on the program and skipped; only a stream
// without a version token is rejected.
package bytecode
