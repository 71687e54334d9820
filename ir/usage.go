package ir

// Usage records which registers a program touches.
type Usage struct {
	Temps    uint32 // bit n set when r<n> is referenced
	Inputs   uint32 // bit n set when v<n> is read
	Textures uint8  // pixel t<n> registers
	Samplers uint16
	Address  bool

	// MaxConstant is the highest constant index read with absolute
	// addressing, -1 when none.
	MaxConstant       int
	RelativeConstants bool

	Position  bool
	Fog       bool
	PointSize bool
	Colors    uint8 // oD<n> written
	TexCoords uint8 // oT<n> written
	ColorOut  uint8 // pixel oC<n> written
	Depth     bool

	// Locals maps constant indices defined inside the program with def.
	Locals map[int][4]float32
}

// Scan walks the program once and collects register usage.
func Scan(p *Program) Usage {
	u := Usage{MaxConstant: -1}
	for i := range p.Instructions {
		in := &p.Instructions[i]
		if !in.Known() {
			continue
		}
		switch in.Code {
		case OpDef:
			if u.Locals == nil {
				u.Locals = make(map[int][4]float32)
			}
			u.Locals[in.Dst.Reg.Index] = in.Literal
			continue
		case OpDefI, OpDefB, OpDcl:
			continue
		}
		for _, ex := range in.Expand() {
			if ex.HasDst {
				u.markDst(ex.Dst.Reg)
			}
			for _, s := range ex.Src {
				u.markSrc(s.Reg)
			}
		}
	}
	// RegAddress is a0 in vertex programs and t# in pixel programs.
	if p.Version.Kind == KindPixel {
		u.Address = false
	} else {
		u.Textures = 0
	}
	return u
}

func (u *Usage) markDst(r Register) {
	switch r.Type {
	case RegTemp:
		u.Temps |= 1 << uint(r.Index&31)
	case RegAddress:
		u.Address = true
		u.Textures |= 1 << uint(r.Index&7)
	case RegRastOut:
		switch r.Index {
		case RastPosition:
			u.Position = true
		case RastFog:
			u.Fog = true
		case RastPointSize:
			u.PointSize = true
		}
	case RegAttrOut:
		u.Colors |= 1 << uint(r.Index&7)
	case RegTexCrdOut:
		u.TexCoords |= 1 << uint(r.Index&7)
	case RegColorOut:
		u.ColorOut |= 1 << uint(r.Index&7)
	case RegDepthOut:
		u.Depth = true
	}
	if r.Relative {
		u.Address = true
	}
}

func (u *Usage) markSrc(r Register) {
	switch r.Type {
	case RegTemp:
		u.Temps |= 1 << uint(r.Index&31)
	case RegInput:
		u.Inputs |= 1 << uint(r.Index&31)
	case RegConst:
		if r.Relative {
			u.RelativeConstants = true
		} else if r.Index > u.MaxConstant {
			u.MaxConstant = r.Index
		}
	case RegAddress:
		u.Address = true
		u.Textures |= 1 << uint(r.Index&7)
	case RegSampler:
		u.Samplers |= 1 << uint(r.Index&15)
	}
	if r.Relative {
		u.Address = true
	}
}

// TempList returns the referenced temporary indices in ascending order.
func (u Usage) TempList() []int {
	return bitList(u.Temps)
}

// InputList returns the referenced input indices in ascending order.
func (u Usage) InputList() []int {
	return bitList(u.Inputs)
}

func bitList(bits uint32) []int {
	var out []int
	for i := 0; i < 32; i++ {
		if bits&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}
