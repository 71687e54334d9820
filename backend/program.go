package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/d3d8/internal/logging"
	"github.com/gogpu/d3d8/ir"
)

// ErrInvalidProgram is returned when binding a program that failed to
// compile.
var ErrInvalidProgram = errors.New("invalid program")

// Program is a native program handle. Its validity is fixed when it is
// created.
type Program struct {
	ID   uint32
	Kind ir.Kind

	valid bool
	err   error
}

// Load allocates a program and compiles text into it. A compile failure does
// not return an error: the program is kept and reports it through Err.
func Load(b Backend, kind ir.Kind, text string) *Program {
	p := &Program{ID: b.GenProgram(), Kind: kind}
	if err := b.CompileProgram(kind, p.ID, text); err != nil {
		p.err = err
		logging.Logger().Warn("backend: program failed to compile",
			"kind", kind.String(), "id", p.ID, "err", err)
		return p
	}
	p.valid = true
	return p
}

// Invalid returns a program that failed before it reached the backend.
func Invalid(kind ir.Kind, err error) *Program {
	return &Program{Kind: kind, err: err}
}

// Valid reports whether the program compiled.
func (p *Program) Valid() bool {
	return p != nil && p.valid
}

// Err returns the compile failure, or nil for a valid program.
func (p *Program) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

// Bind makes p the current program of its kind.
func (p *Program) Bind(b Backend) error {
	if !p.Valid() {
		if err := p.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProgram, err)
		}
		return ErrInvalidProgram
	}
	b.BindProgram(p.Kind, p.ID)
	return nil
}

// Release deletes the backend program, if one was allocated.
func (p *Program) Release(b Backend) {
	if p != nil && p.ID != 0 {
		b.DeleteProgram(p.ID)
		p.ID = 0
		p.valid = false
	}
}
