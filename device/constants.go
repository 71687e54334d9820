package device

import (
	"fmt"

	"honnef.co/go/safeish"

	"github.com/gogpu/d3d8/backend"
	"github.com/gogpu/d3d8/interp"
	"github.com/gogpu/d3d8/ir"
)

// bank is one constant bank. Rows written since the last upload mark the
// whole bank dirty.
type bank struct {
	kind  ir.Kind
	rows  []interp.Vec4
	dirty bool
}

func newBank(kind ir.Kind, size int) *bank {
	return &bank{kind: kind, rows: make([]interp.Vec4, size), dirty: true}
}

func (b *bank) check(start, count int) error {
	if start < 0 || count < 0 || start+count > len(b.rows) {
		return fmt.Errorf("%w: %s constants [%d, %d) outside bank of %d",
			ErrInvalidCall, b.kind, start, start+count, len(b.rows))
	}
	return nil
}

// SetConstants copies rows into the bank starting at row start. It lets a
// vertex declaration load constants into the vertex bank.
func (b *bank) SetConstants(start int, rows [][4]float32) error {
	if err := b.check(start, len(rows)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	copy(b.rows[start:], safeish.SliceCast[[]interp.Vec4](rows))
	b.dirty = true
	return nil
}

func (b *bank) getConstants(start int, out [][4]float32) error {
	if err := b.check(start, len(out)); err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	copy(safeish.SliceCast[[]interp.Vec4](out), b.rows[start:])
	return nil
}

// upload writes the bank to the program environment of its kind if it
// changed since the last upload.
func (b *bank) upload(be backend.Backend) {
	if !b.dirty {
		return
	}
	be.SetProgramEnv(b.kind, 0, safeish.SliceCast[[]float32](b.rows))
	b.dirty = false
}

// SetVertexShaderConstant sets vertex constants c[start] through
// c[start+len(rows)-1].
func (d *Device) SetVertexShaderConstant(start int, rows [][4]float32) error {
	return d.vertexConsts.SetConstants(start, rows)
}

// GetVertexShaderConstant reads len(out) vertex constants starting at
// c[start].
func (d *Device) GetVertexShaderConstant(start int, out [][4]float32) error {
	return d.vertexConsts.getConstants(start, out)
}

// SetPixelShaderConstant sets pixel constants c[start] through
// c[start+len(rows)-1].
func (d *Device) SetPixelShaderConstant(start int, rows [][4]float32) error {
	return d.pixelConsts.SetConstants(start, rows)
}

// GetPixelShaderConstant reads len(out) pixel constants starting at
// c[start].
func (d *Device) GetPixelShaderConstant(start int, out [][4]float32) error {
	return d.pixelConsts.getConstants(start, out)
}
