package interp

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/d3d8/ir"
)

// opFunc computes an instruction result from its fetched sources. The caller
// applies the destination write mask.
type opFunc func(s *[4]Vec4) Vec4

// ops maps opcodes to their software implementation. Opcodes missing here
// are skipped.
var ops = map[ir.Op]opFunc{
	ir.OpMov:    func(s *[4]Vec4) Vec4 { return s[0] },
	ir.OpAdd:    componentwise2(func(a, b float32) float32 { return a + b }),
	ir.OpSub:    componentwise2(func(a, b float32) float32 { return a - b }),
	ir.OpMul:    componentwise2(func(a, b float32) float32 { return a * b }),
	ir.OpMin:    componentwise2(func(a, b float32) float32 { return min(a, b) }),
	ir.OpMax:    componentwise2(func(a, b float32) float32 { return max(a, b) }),
	ir.OpSlt:    componentwise2(func(a, b float32) float32 { return bool32(a < b) }),
	ir.OpSge:    componentwise2(func(a, b float32) float32 { return bool32(a >= b) }),
	ir.OpMad:    mad,
	ir.OpRcp:    func(s *[4]Vec4) Vec4 { return broadcast(rcp(s[0][3])) },
	ir.OpRsq:    func(s *[4]Vec4) Vec4 { return broadcast(rsq(s[0][3])) },
	ir.OpDp3:    func(s *[4]Vec4) Vec4 { return broadcast(dot3(s[0], s[1])) },
	ir.OpDp4:    func(s *[4]Vec4) Vec4 { return broadcast(dot4(s[0], s[1])) },
	ir.OpExp:    func(s *[4]Vec4) Vec4 { return broadcast(exp2(s[0][3])) },
	ir.OpExpp:   func(s *[4]Vec4) Vec4 { return expp(s[0][3]) },
	ir.OpLog:    func(s *[4]Vec4) Vec4 { return broadcast(log2(s[0][3])) },
	ir.OpLogp:   func(s *[4]Vec4) Vec4 { return logp(s[0][3]) },
	ir.OpLit:    func(s *[4]Vec4) Vec4 { return lit(s[0]) },
	ir.OpDst:    dst,
	ir.OpLrp:    lrp,
	ir.OpFrc:    componentwise1(func(a float32) float32 { return a - floor(a) }),
	ir.OpMova:   componentwise1(func(a float32) float32 { return floor(a + 0.5) }),
	ir.OpAbs:    componentwise1(func(a float32) float32 { return float32(math.Abs(float64(a))) }),
	ir.OpSgn:    componentwise1(sign),
	ir.OpPow:    pow,
	ir.OpCrs:    cross,
	ir.OpNrm:    normalize,
	ir.OpSinCos: sincos,
}

func broadcast(v float32) Vec4 {
	return Vec4{v, v, v, v}
}

func bool32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func componentwise1(f func(a float32) float32) opFunc {
	return func(s *[4]Vec4) Vec4 {
		var r Vec4
		for i := range r {
			r[i] = f(s[0][i])
		}
		return r
	}
}

func componentwise2(f func(a, b float32) float32) opFunc {
	return func(s *[4]Vec4) Vec4 {
		var r Vec4
		for i := range r {
			r[i] = f(s[0][i], s[1][i])
		}
		return r
	}
}

func mad(s *[4]Vec4) Vec4 {
	var r Vec4
	for i := range r {
		r[i] = s[0][i]*s[1][i] + s[2][i]
	}
	return r
}

func lrp(s *[4]Vec4) Vec4 {
	var r Vec4
	for i := range r {
		r[i] = s[2][i] + s[0][i]*(s[1][i]-s[2][i])
	}
	return r
}

func dot3(a, b Vec4) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func dot4(a, b Vec4) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// dst builds a distance vector (1, d², d, 1/d) from (_, d², d², _) and
// (_, 1/d, _, 1/d).
func dst(s *[4]Vec4) Vec4 {
	return Vec4{1, s[0][1] * s[1][1], s[0][2], s[1][3]}
}

// maxLitPower bounds the specular exponent of lit.
const maxLitPower = 127.9961

func lit(s Vec4) Vec4 {
	r := Vec4{1, 0, 0, 1}
	power := clamp(s[3], -maxLitPower, maxLitPower)
	if s[0] > 0 {
		r[1] = s[0]
		if s[1] > 0 {
			r[2] = float32(math.Pow(float64(s[1]), float64(power)))
		}
	}
	return r
}

func pow(s *[4]Vec4) Vec4 {
	base := math.Abs(float64(s[0][3]))
	return broadcast(float32(math.Pow(base, float64(s[1][3]))))
}

func cross(s *[4]Vec4) Vec4 {
	a, b := s[0], s[1]
	return Vec4{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
		0,
	}
}

func normalize(s *[4]Vec4) Vec4 {
	f := rsq(dot3(s[0], s[0]))
	v := s[0]
	for i := range v {
		v[i] *= f
	}
	return v
}

func sincos(s *[4]Vec4) Vec4 {
	a := float64(s[0][3])
	return Vec4{float32(math.Cos(a)), float32(math.Sin(a)), 0, 0}
}

func sign(a float32) float32 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

func floor(a float32) float32 {
	return float32(math.Floor(float64(a)))
}

func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
