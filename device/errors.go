package device

import (
	"errors"

	"github.com/gogpu/d3d8/backend"
)

var (
	// ErrInvalidCall is returned for arguments outside the API contract,
	// such as constant ranges past the end of a bank.
	ErrInvalidCall = errors.New("device: invalid call")

	// ErrInvalidHandle is returned for shader handles that were never
	// created or were deleted.
	ErrInvalidHandle = errors.New("device: invalid handle")

	// ErrInvalidProgram is returned when binding or drawing with a shader
	// whose native program failed to compile.
	ErrInvalidProgram = backend.ErrInvalidProgram

	// ErrNotAvailable is returned when introspecting data a shader does not
	// have, such as the function of a declaration-only vertex shader.
	ErrNotAvailable = errors.New("device: not available")
)
