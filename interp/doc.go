// Package interp executes decoded vertex programs on the CPU.
//
// An Interpreter is prepared once per program and then run once per vertex.
// Execute is a pure function of its inputs and the constant bank: every call
// starts from a fresh register file, so a prepared Interpreter may be shared
// by successive draws.
//
// Texture-addressing and flow-control opcodes decode but do not execute; they
// leave their destination untouched.
package interp
