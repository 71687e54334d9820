package ir

import "fmt"

// Op is a bytecode opcode number (D3DSIO numbering).
type Op uint16

const (
	OpNop          Op = 0
	OpMov          Op = 1
	OpAdd          Op = 2
	OpSub          Op = 3
	OpMad          Op = 4
	OpMul          Op = 5
	OpRcp          Op = 6
	OpRsq          Op = 7
	OpDp3          Op = 8
	OpDp4          Op = 9
	OpMin          Op = 10
	OpMax          Op = 11
	OpSlt          Op = 12
	OpSge          Op = 13
	OpExp          Op = 14
	OpLog          Op = 15
	OpLit          Op = 16
	OpDst          Op = 17
	OpLrp          Op = 18
	OpFrc          Op = 19
	OpM4x4         Op = 20
	OpM4x3         Op = 21
	OpM3x4         Op = 22
	OpM3x3         Op = 23
	OpM3x2         Op = 24
	OpCall         Op = 25
	OpCallNz       Op = 26
	OpLoop         Op = 27
	OpRet          Op = 28
	OpEndLoop      Op = 29
	OpLabel        Op = 30
	OpDcl          Op = 31
	OpPow          Op = 32
	OpCrs          Op = 33
	OpSgn          Op = 34
	OpAbs          Op = 35
	OpNrm          Op = 36
	OpSinCos       Op = 37
	OpRep          Op = 38
	OpEndRep       Op = 39
	OpIf           Op = 40
	OpIfc          Op = 41
	OpElse         Op = 42
	OpEndIf        Op = 43
	OpBreak        Op = 44
	OpBreakc       Op = 45
	OpMova         Op = 46
	OpDefB         Op = 47
	OpDefI         Op = 48
	OpTexCoord     Op = 64
	OpTexKill      Op = 65
	OpTex          Op = 66
	OpTexBem       Op = 67
	OpTexBemL      Op = 68
	OpTexReg2AR    Op = 69
	OpTexReg2GB    Op = 70
	OpTexM3x2Pad   Op = 71
	OpTexM3x2Tex   Op = 72
	OpTexM3x3Pad   Op = 73
	OpTexM3x3Tex   Op = 74
	OpTexM3x3Diff  Op = 75
	OpTexM3x3Spec  Op = 76
	OpTexM3x3VSpec Op = 77
	OpExpp         Op = 78
	OpLogp         Op = 79
	OpCnd          Op = 80
	OpDef          Op = 81
	OpTexReg2RGB   Op = 82
	OpTexDp3Tex    Op = 83
	OpTexM3x2Depth Op = 84
	OpTexDp3       Op = 85
	OpTexM3x3      Op = 86
	OpTexDepth     Op = 87
	OpCmp          Op = 88
	OpBem          Op = 89
	OpDp2Add       Op = 90
	OpDsx          Op = 91
	OpDsy          Op = 92
	OpTexLdd       Op = 93
	OpSetp         Op = 94
	OpTexLdl       Op = 95
	OpBreakp       Op = 96
	OpPhase        Op = 0xFFFD
	OpComment      Op = 0xFFFE
	OpEnd          Op = 0xFFFF
)

// OpcodeInfo is one row of the opcode table.
type OpcodeInfo struct {
	Code Op
	Name string
	// NumParams counts parameter tokens for version 1.x streams, destination
	// included. Version 2.0+ streams carry their own length.
	NumParams int
	HasDst    bool
	Kinds     Kind
	// MinVersion and MaxVersion bound the row, packed as major<<8|minor.
	// MaxVersion 0 means no upper bound.
	MinVersion uint16
	MaxVersion uint16
	// Native is the ARB program mnemonic for a one-to-one translation, empty
	// when the backend needs a sequence or has no equivalent.
	Native string
}

// Matches reports whether the row applies to code in a program of version v.
func (o *OpcodeInfo) Matches(v Version, code Op) bool {
	if o.Code != code || o.Kinds&v.Kind == 0 {
		return false
	}
	p := v.Packed()
	return p >= o.MinVersion && (o.MaxVersion == 0 || p <= o.MaxVersion)
}

// IsMacro reports whether the opcode expands into several dot products.
func (o *OpcodeInfo) IsMacro() bool {
	switch o.Code {
	case OpM4x4, OpM4x3, OpM3x4, OpM3x3, OpM3x2:
		return true
	}
	return false
}

func (o *OpcodeInfo) String() string {
	return fmt.Sprintf("%s (%d)", o.Name, o.Code)
}

const (
	vs = KindVertex
	ps = KindPixel
	xs = KindAny
)

// opcodeTable is ordered by priority: Lookup returns the first matching row.
var opcodeTable = []OpcodeInfo{
	{OpNop, "nop", 0, false, xs, V(1, 0), 0, "NOP"},
	{OpMov, "mov", 2, true, xs, V(1, 0), 0, "MOV"},
	{OpAdd, "add", 3, true, xs, V(1, 0), 0, "ADD"},
	{OpSub, "sub", 3, true, xs, V(1, 0), 0, "SUB"},
	{OpMad, "mad", 4, true, xs, V(1, 0), 0, "MAD"},
	{OpMul, "mul", 3, true, xs, V(1, 0), 0, "MUL"},
	{OpRcp, "rcp", 2, true, vs, V(1, 0), 0, "RCP"},
	{OpRcp, "rcp", 2, true, ps, V(2, 0), 0, "RCP"},
	{OpRsq, "rsq", 2, true, vs, V(1, 0), 0, "RSQ"},
	{OpRsq, "rsq", 2, true, ps, V(2, 0), 0, "RSQ"},
	{OpDp3, "dp3", 3, true, xs, V(1, 0), 0, "DP3"},
	{OpDp4, "dp4", 3, true, xs, V(1, 0), 0, "DP4"},
	{OpMin, "min", 3, true, vs, V(1, 0), 0, "MIN"},
	{OpMin, "min", 3, true, ps, V(2, 0), 0, "MIN"},
	{OpMax, "max", 3, true, vs, V(1, 0), 0, "MAX"},
	{OpMax, "max", 3, true, ps, V(2, 0), 0, "MAX"},
	{OpSlt, "slt", 3, true, vs, V(1, 0), 0, "SLT"},
	{OpSge, "sge", 3, true, vs, V(1, 0), 0, "SGE"},
	{OpExp, "exp", 2, true, vs, V(1, 0), 0, "EX2"},
	{OpExp, "exp", 2, true, ps, V(2, 0), 0, "EX2"},
	{OpLog, "log", 2, true, vs, V(1, 0), 0, "LG2"},
	{OpLog, "log", 2, true, ps, V(2, 0), 0, "LG2"},
	{OpLit, "lit", 2, true, vs, V(1, 0), 0, "LIT"},
	{OpDst, "dst", 3, true, vs, V(1, 0), 0, "DST"},
	{OpLrp, "lrp", 4, true, xs, V(1, 0), 0, "LRP"},
	{OpFrc, "frc", 2, true, vs, V(1, 0), 0, "FRC"},
	{OpFrc, "frc", 2, true, ps, V(2, 0), 0, "FRC"},
	{OpM4x4, "m4x4", 3, true, vs, V(1, 0), 0, "DP4"},
	{OpM4x3, "m4x3", 3, true, vs, V(1, 0), 0, "DP4"},
	{OpM3x4, "m3x4", 3, true, vs, V(1, 0), 0, "DP3"},
	{OpM3x3, "m3x3", 3, true, vs, V(1, 0), 0, "DP3"},
	{OpM3x2, "m3x2", 3, true, vs, V(1, 0), 0, "DP3"},
	{OpM4x4, "m4x4", 3, true, ps, V(2, 0), 0, "DP4"},
	{OpM4x3, "m4x3", 3, true, ps, V(2, 0), 0, "DP4"},
	{OpM3x4, "m3x4", 3, true, ps, V(2, 0), 0, "DP3"},
	{OpM3x3, "m3x3", 3, true, ps, V(2, 0), 0, "DP3"},
	{OpM3x2, "m3x2", 3, true, ps, V(2, 0), 0, "DP3"},

	{OpCall, "call", 1, false, xs, V(2, 0), 0, ""},
	{OpCallNz, "callnz", 2, false, xs, V(2, 0), 0, ""},
	{OpLoop, "loop", 2, false, xs, V(2, 0), 0, ""},
	{OpRet, "ret", 0, false, xs, V(2, 0), 0, ""},
	{OpEndLoop, "endloop", 0, false, xs, V(2, 0), 0, ""},
	{OpLabel, "label", 1, false, xs, V(2, 0), 0, ""},
	{OpDcl, "dcl", 2, true, xs, V(2, 0), 0, ""},
	{OpPow, "pow", 3, true, xs, V(2, 0), 0, "POW"},
	{OpCrs, "crs", 3, true, xs, V(2, 0), 0, "XPD"},
	{OpSgn, "sgn", 4, true, vs, V(2, 0), 0, ""},
	{OpAbs, "abs", 2, true, xs, V(2, 0), 0, "ABS"},
	{OpNrm, "nrm", 2, true, xs, V(2, 0), 0, ""},
	// sincos takes two helper constants before vs_3_0 and none after.
	{OpSinCos, "sincos", 4, true, xs, V(2, 0), V(2, 1), ""},
	{OpSinCos, "sincos", 2, true, xs, V(3, 0), 0, ""},
	{OpRep, "rep", 1, false, xs, V(2, 0), 0, ""},
	{OpEndRep, "endrep", 0, false, xs, V(2, 0), 0, ""},
	{OpIf, "if", 1, false, xs, V(2, 0), 0, ""},
	{OpIfc, "ifc", 2, false, xs, V(2, 1), 0, ""},
	{OpElse, "else", 0, false, xs, V(2, 0), 0, ""},
	{OpEndIf, "endif", 0, false, xs, V(2, 0), 0, ""},
	{OpBreak, "break", 0, false, xs, V(2, 1), 0, ""},
	{OpBreakc, "breakc", 2, false, xs, V(2, 1), 0, ""},
	{OpMova, "mova", 2, true, vs, V(2, 0), 0, "ARL"},
	{OpDefB, "defb", 2, true, xs, V(2, 0), 0, ""},
	{OpDefI, "defi", 5, true, xs, V(2, 0), 0, ""},

	{OpTexCoord, "texcoord", 1, true, ps, V(1, 0), V(1, 3), "MOV"},
	{OpTexCoord, "texcrd", 2, true, ps, V(1, 4), V(1, 4), "MOV"},
	{OpTexKill, "texkill", 1, true, ps, V(1, 0), 0, "KIL"},
	{OpTex, "tex", 1, true, ps, V(1, 0), V(1, 3), "TEX"},
	{OpTex, "texld", 2, true, ps, V(1, 4), V(1, 4), "TEX"},
	{OpTex, "texld", 3, true, ps, V(2, 0), 0, "TEX"},
	{OpTexBem, "texbem", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexBemL, "texbeml", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexReg2AR, "texreg2ar", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexReg2GB, "texreg2gb", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x2Pad, "texm3x2pad", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x2Tex, "texm3x2tex", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x3Pad, "texm3x3pad", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x3Tex, "texm3x3tex", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x3Spec, "texm3x3spec", 3, true, ps, V(1, 0), V(1, 3), ""},
	{OpTexM3x3VSpec, "texm3x3vspec", 2, true, ps, V(1, 0), V(1, 3), ""},
	{OpExpp, "expp", 2, true, vs, V(1, 0), 0, "EXP"},
	{OpExpp, "expp", 2, true, ps, V(2, 0), V(2, 1), "EXP"},
	{OpLogp, "logp", 2, true, vs, V(1, 0), 0, "LOG"},
	{OpLogp, "logp", 2, true, ps, V(2, 0), V(2, 1), "LOG"},
	{OpCnd, "cnd", 4, true, ps, V(1, 0), V(1, 4), ""},
	{OpDef, "def", 5, true, xs, V(1, 0), 0, ""},
	{OpTexReg2RGB, "texreg2rgb", 2, true, ps, V(1, 2), V(1, 3), ""},
	{OpTexDp3Tex, "texdp3tex", 2, true, ps, V(1, 2), V(1, 3), ""},
	{OpTexM3x2Depth, "texm3x2depth", 2, true, ps, V(1, 3), V(1, 3), ""},
	{OpTexDp3, "texdp3", 2, true, ps, V(1, 2), V(1, 3), ""},
	{OpTexM3x3, "texm3x3", 2, true, ps, V(1, 2), V(1, 3), ""},
	{OpTexDepth, "texdepth", 1, true, ps, V(1, 4), V(1, 4), ""},
	{OpCmp, "cmp", 4, true, ps, V(1, 2), 0, "CMP"},
	{OpBem, "bem", 3, true, ps, V(1, 4), V(1, 4), ""},
	{OpDp2Add, "dp2add", 4, true, ps, V(2, 0), 0, ""},
	{OpDsx, "dsx", 2, true, ps, V(2, 1), 0, ""},
	{OpDsy, "dsy", 2, true, ps, V(2, 1), 0, ""},
	{OpTexLdd, "texldd", 5, true, ps, V(2, 1), 0, ""},
	{OpSetp, "setp", 3, true, xs, V(2, 1), 0, ""},
	{OpTexLdl, "texldl", 3, true, xs, V(3, 0), 0, ""},
	{OpBreakp, "breakp", 1, false, xs, V(2, 1), 0, ""},
	{OpPhase, "phase", 0, false, ps, V(1, 4), V(1, 4), ""},
}

type lookupKey struct {
	kind    Kind
	version uint16
	code    Op
}

// knownVersions are the version buckets indexed at init.
var knownVersions = []Version{
	VS10, VS11, VS20, VS2X, VS30,
	PS10, PS11, PS12, PS13, PS14, PS20, PS2X, PS30,
}

var opcodeIndex = buildIndex()

func buildIndex() map[lookupKey]*OpcodeInfo {
	index := make(map[lookupKey]*OpcodeInfo, len(opcodeTable)*4)
	for _, v := range knownVersions {
		for i := range opcodeTable {
			row := &opcodeTable[i]
			if !row.Matches(v, row.Code) {
				continue
			}
			key := lookupKey{kind: v.Kind, version: v.Packed(), code: row.Code}
			if _, taken := index[key]; !taken {
				index[key] = row
			}
		}
	}
	return index
}

// Lookup returns the descriptor for code in a program of version v, or nil
// when no row applies.
func Lookup(v Version, code Op) *OpcodeInfo {
	if info, ok := opcodeIndex[lookupKey{kind: v.Kind, version: v.Packed(), code: code}]; ok {
		return info
	}
	for i := range opcodeTable {
		if opcodeTable[i].Matches(v, code) {
			return &opcodeTable[i]
		}
	}
	return nil
}

// Info returns the first table row for code regardless of version. Macro
// expansion uses it to fetch the DP3/DP4 descriptors.
func Info(code Op) *OpcodeInfo {
	for i := range opcodeTable {
		if opcodeTable[i].Code == code {
			return &opcodeTable[i]
		}
	}
	return nil
}
