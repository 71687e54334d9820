package ir

import (
	"testing"
)

// =============================================================================
// Version Tests
// =============================================================================

func TestVersion_String(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{VS11, "vs.1.1"},
		{VS20, "vs_2_0"},
		{VS2X, "vs_2_x"},
		{VS30, "vs_3_0"},
		{PS14, "ps.1.4"},
		{PS20, "ps_2_0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.version.String(); got != tt.want {
				t.Errorf("Version.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion_Token(t *testing.T) {
	if got := VS11.Token(); got != 0xFFFE0101 {
		t.Errorf("VS11.Token() = %#x, want 0xfffe0101", got)
	}
	if got := PS14.Token(); got != 0xFFFF0104 {
		t.Errorf("PS14.Token() = %#x, want 0xffff0104", got)
	}
}

func TestVersion_Limits(t *testing.T) {
	tests := []struct {
		version Version
		temps   int
		consts  int
	}{
		{VS11, 12, 96},
		{VS20, 32, 256},
		{PS11, 6, 8},
		{PS20, 32, 32},
	}
	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			lim := tt.version.Limits()
			if lim.Temps != tt.temps {
				t.Errorf("Limits().Temps = %d, want %d", lim.Temps, tt.temps)
			}
			if lim.Constants != tt.consts {
				t.Errorf("Limits().Constants = %d, want %d", lim.Constants, tt.consts)
			}
		})
	}
}

// =============================================================================
// Opcode Table Tests
// =============================================================================

func TestLookup_VersionDependentArity(t *testing.T) {
	tests := []struct {
		version Version
		params  int
	}{
		{VS20, 4},
		{VS2X, 4},
		{VS30, 2},
	}
	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			info := Lookup(tt.version, OpSinCos)
			if info == nil {
				t.Fatal("Lookup(sincos) = nil")
			}
			if info.NumParams != tt.params {
				t.Errorf("sincos NumParams = %d, want %d", info.NumParams, tt.params)
			}
		})
	}
}

func TestLookup_KindAndRange(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		code    Op
		want    string // "" means no row
	}{
		{"mov vs", VS11, OpMov, "mov"},
		{"lit vs", VS11, OpLit, "lit"},
		{"lit ps", PS14, OpLit, ""},
		{"tex ps11", PS11, OpTex, "tex"},
		{"texld ps14", PS14, OpTex, "texld"},
		{"texld ps20", PS20, OpTex, "texld"},
		{"tex vs", VS11, OpTex, ""},
		{"pow vs11", VS11, OpPow, ""},
		{"pow vs20", VS20, OpPow, "pow"},
		{"unknown code", VS11, Op(63), ""},
		{"future version", Version{Kind: KindVertex, Major: 4}, OpDp4, "dp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Lookup(tt.version, tt.code)
			got := ""
			if info != nil {
				got = info.Name
			}
			if got != tt.want {
				t.Errorf("Lookup(%s, %d) = %q, want %q", tt.version, tt.code, got, tt.want)
			}
		})
	}
}

func TestLookup_FirstMatchWins(t *testing.T) {
	// The index and the linear scan must agree for every indexed version.
	for _, v := range knownVersions {
		for i := range opcodeTable {
			code := opcodeTable[i].Code
			indexed := Lookup(v, code)
			var scanned *OpcodeInfo
			for j := range opcodeTable {
				if opcodeTable[j].Matches(v, code) {
					scanned = &opcodeTable[j]
					break
				}
			}
			if indexed != scanned {
				t.Errorf("Lookup(%s, %s) disagrees with linear scan", v, opcodeTable[i].Name)
			}
		}
	}
}

// =============================================================================
// Operand Tests
// =============================================================================

func TestSwizzle_String(t *testing.T) {
	tests := []struct {
		swz  Swizzle
		want string
	}{
		{SwizzleIdentity, ""},
		{Replicate(0), ".x"},
		{Replicate(3), ".w"},
		{NewSwizzle(2, 1, 0, 3), ".zyxw"},
	}
	for _, tt := range tests {
		if got := tt.swz.String(); got != tt.want {
			t.Errorf("Swizzle(%#x).String() = %q, want %q", uint8(tt.swz), got, tt.want)
		}
	}
}

func TestWriteMask_String(t *testing.T) {
	tests := []struct {
		mask WriteMask
		want string
	}{
		{MaskAll, ""},
		{MaskX, ".x"},
		{MaskX | MaskZ, ".xz"},
		{MaskY | MaskZ | MaskW, ".yzw"},
	}
	for _, tt := range tests {
		if got := tt.mask.String(); got != tt.want {
			t.Errorf("WriteMask(%d).String() = %q, want %q", tt.mask, got, tt.want)
		}
	}
}

func TestDstOperand_Scale(t *testing.T) {
	tests := []struct {
		shift int8
		want  float32
	}{
		{0, 1}, {1, 2}, {2, 4}, {3, 8}, {-1, 0.5}, {-2, 0.25}, {-3, 0.125}, {-4, 0.0625},
	}
	for _, tt := range tests {
		d := DstOperand{Shift: tt.shift}
		if got := d.Scale(); got != tt.want {
			t.Errorf("Scale() with shift %d = %v, want %v", tt.shift, got, tt.want)
		}
	}
}

func TestRegister_Name(t *testing.T) {
	tests := []struct {
		reg  Register
		kind Kind
		want string
	}{
		{Register{Type: RegTemp, Index: 3}, KindVertex, "r3"},
		{Register{Type: RegConst, Index: 4, Relative: true}, KindVertex, "c[a0.x + 4]"},
		{Register{Type: RegConst, Relative: true}, KindVertex, "c[a0.x]"},
		{Register{Type: RegRastOut, Index: RastPosition}, KindVertex, "oPos"},
		{Register{Type: RegAddress, Index: 1}, KindPixel, "t1"},
		{Register{Type: RegTexCrdOut, Index: 2}, KindVertex, "oT2"},
	}
	for _, tt := range tests {
		if got := tt.reg.Name(tt.kind); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestLiteralFloat(t *testing.T) {
	if got := LiteralFloat(0x3F800000); got != 1 {
		t.Errorf("LiteralFloat(0x3f800000) = %v, want 1", got)
	}
	if got := LiteralFloat(0xC0000000); got != -2 {
		t.Errorf("LiteralFloat(0xc0000000) = %v, want -2", got)
	}
}

// =============================================================================
// Macro Expansion Tests
// =============================================================================

func macro(code Op, dst Register, src0, src1 Register) Instruction {
	return Instruction{
		Code:   code,
		Info:   Lookup(VS11, code),
		HasDst: true,
		Dst:    DstOperand{Reg: dst, Mask: MaskAll},
		Src: []SrcOperand{
			{Reg: src0, Swizzle: SwizzleIdentity},
			{Reg: src1, Swizzle: SwizzleIdentity},
		},
	}
}

func TestExpand_M3x3(t *testing.T) {
	in := macro(OpM3x3, Register{Type: RegTemp, Index: 1},
		Register{Type: RegInput, Index: 3}, Register{Type: RegConst, Index: 8})
	out := in.Expand()
	if len(out) != 3 {
		t.Fatalf("Expand() produced %d instructions, want 3", len(out))
	}
	masks := []WriteMask{MaskX, MaskY, MaskZ}
	for i, ex := range out {
		if ex.Code != OpDp3 {
			t.Errorf("[%d] Code = %d, want dp3", i, ex.Code)
		}
		if ex.Dst.Mask != masks[i] {
			t.Errorf("[%d] Mask = %v, want %v", i, ex.Dst.Mask, masks[i])
		}
		if ex.Src[1].Reg.Index != 8+i {
			t.Errorf("[%d] row = c%d, want c%d", i, ex.Src[1].Reg.Index, 8+i)
		}
		if ex.Src[0].Reg.Index != 3 {
			t.Errorf("[%d] vector = v%d, want v3", i, ex.Src[0].Reg.Index)
		}
	}
	// The macro itself must be left untouched.
	if in.Src[1].Reg.Index != 8 || in.Code != OpM3x3 {
		t.Error("Expand() modified the original instruction")
	}
}

func TestExpand_Counts(t *testing.T) {
	tests := []struct {
		code Op
		rows int
		dot  Op
	}{
		{OpM4x4, 4, OpDp4},
		{OpM4x3, 3, OpDp4},
		{OpM3x4, 4, OpDp3},
		{OpM3x3, 3, OpDp3},
		{OpM3x2, 2, OpDp3},
		{OpMov, 1, OpMov},
	}
	for _, tt := range tests {
		in := macro(tt.code, Register{Type: RegTemp}, Register{Type: RegInput}, Register{Type: RegConst})
		out := in.Expand()
		if len(out) != tt.rows {
			t.Errorf("Expand(%d) = %d instructions, want %d", tt.code, len(out), tt.rows)
			continue
		}
		for _, ex := range out {
			if ex.Code != tt.dot {
				t.Errorf("Expand(%d) produced opcode %d, want %d", tt.code, ex.Code, tt.dot)
			}
		}
	}
}

func TestExpand_RelativeRows(t *testing.T) {
	in := macro(OpM4x4, Register{Type: RegRastOut},
		Register{Type: RegInput}, Register{Type: RegConst, Index: 2, Relative: true})
	out := in.Expand()
	for i, ex := range out {
		if !ex.Src[1].Reg.Relative || ex.Src[1].Reg.Index != 2+i {
			t.Errorf("[%d] row = %+v, want relative base %d", i, ex.Src[1].Reg, 2+i)
		}
	}
}

// =============================================================================
// Scan and Validate Tests
// =============================================================================

func TestScan(t *testing.T) {
	p := &Program{Version: VS11}
	p.Instructions = []Instruction{
		macro(OpM4x4, Register{Type: RegRastOut, Index: RastPosition},
			Register{Type: RegInput, Index: 0}, Register{Type: RegConst, Index: 0}),
		{
			Code: OpMov, Info: Lookup(VS11, OpMov), HasDst: true,
			Dst: DstOperand{Reg: Register{Type: RegTexCrdOut, Index: 1}, Mask: MaskAll},
			Src: []SrcOperand{{Reg: Register{Type: RegConst, Index: 5, Relative: true}, Swizzle: SwizzleIdentity}},
		},
		{
			Code: OpMov, Info: Lookup(VS11, OpMov), HasDst: true,
			Dst: DstOperand{Reg: Register{Type: RegTemp, Index: 4}, Mask: MaskAll},
			Src: []SrcOperand{{Reg: Register{Type: RegInput, Index: 3}, Swizzle: SwizzleIdentity}},
		},
	}
	u := Scan(p)
	if !u.Position {
		t.Error("Position = false, want true")
	}
	if u.MaxConstant != 3 {
		t.Errorf("MaxConstant = %d, want 3", u.MaxConstant)
	}
	if !u.RelativeConstants || !u.Address {
		t.Error("relative constant access not recorded")
	}
	if u.TexCoords != 1<<1 {
		t.Errorf("TexCoords = %b, want 10", u.TexCoords)
	}
	if got := u.TempList(); len(got) != 1 || got[0] != 4 {
		t.Errorf("TempList() = %v, want [4]", got)
	}
	if got := u.InputList(); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("InputList() = %v, want [0 3]", got)
	}
}

func TestValidate(t *testing.T) {
	mov := func(dst, src Register) Instruction {
		return Instruction{
			Code: OpMov, Info: Lookup(VS11, OpMov), HasDst: true,
			Dst: DstOperand{Reg: dst, Mask: MaskAll},
			Src: []SrcOperand{{Reg: src, Swizzle: SwizzleIdentity}},
		}
	}
	tests := []struct {
		name   string
		in     Instruction
		errors int
	}{
		{"valid", mov(Register{Type: RegTemp, Index: 11}, Register{Type: RegConst, Index: 95}), 0},
		{"temp out of range", mov(Register{Type: RegTemp, Index: 12}, Register{Type: RegInput}), 1},
		{"constant out of range", mov(Register{Type: RegTemp}, Register{Type: RegConst, Index: 96}), 1},
		{"relative constant", mov(Register{Type: RegTemp}, Register{Type: RegConst, Index: 200, Relative: true}), 0},
		{"relative temp", mov(Register{Type: RegTemp}, Register{Type: RegTemp, Relative: true}), 1},
		{"write constant", mov(Register{Type: RegConst}, Register{Type: RegTemp}), 1},
		{"matrix rows past bank", macro(OpM4x4, Register{Type: RegTemp},
			Register{Type: RegInput}, Register{Type: RegConst, Index: 93}), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Program{Version: VS11, Instructions: []Instruction{tt.in}}
			errs, err := Validate(p)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if len(errs) != tt.errors {
				t.Errorf("Validate() = %v, want %d errors", errs, tt.errors)
			}
		})
	}
}

func TestValidate_NilProgram(t *testing.T) {
	if _, err := Validate(nil); err == nil {
		t.Error("Validate(nil) error = nil, want error")
	}
}
