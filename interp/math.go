package interp

import "math"

// rcp returns 1/a. An exact 1 is returned unchanged.
func rcp(a float32) float32 {
	if a == 1 {
		return 1
	}
	if a == 0 {
		return float32(math.Inf(1))
	}
	return 1 / a
}

// rsq returns 1/sqrt(|a|).
func rsq(a float32) float32 {
	abs := math.Abs(float64(a))
	if abs == 1 {
		return 1
	}
	if abs == 0 {
		return float32(math.Inf(1))
	}
	return float32(1 / math.Sqrt(abs))
}

func exp2(a float32) float32 {
	return float32(math.Exp2(float64(a)))
}

// log2 returns log2(|a|), -Inf for zero.
func log2(a float32) float32 {
	abs := math.Abs(float64(a))
	if abs == 0 {
		return float32(math.Inf(-1))
	}
	return float32(math.Log2(abs))
}

// expp is the partial precision exponential of vs.1.x: (2^floor(a),
// fract(a), 2^a with the low mantissa bits cleared, 1).
func expp(a float32) Vec4 {
	whole := floor(a)
	approx := math.Float32frombits(math.Float32bits(exp2(a)) & 0xFFFFFF00)
	return Vec4{exp2(whole), a - whole, approx, 1}
}

// logp is the partial precision logarithm of vs.1.x: (exponent, mantissa in
// [1,2), exponent+log2(mantissa), 1).
func logp(a float32) Vec4 {
	abs := float32(math.Abs(float64(a)))
	if abs == 0 {
		return Vec4{-math.MaxFloat32, 1, -math.MaxFloat32, 1}
	}
	bits := math.Float32bits(abs)
	exponent := float32(int32(bits>>23&0xFF) - 127)
	mantissa := math.Float32frombits(bits&0x007FFFFF | 0x3F800000)
	return Vec4{exponent, mantissa, exponent + log2(mantissa), 1}
}
