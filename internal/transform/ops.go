package transform

import "math/big"

// ModSq returns io squared mod 2^E-1, optionally fused with a ×3
// multiply (§4.3 "modSq").
func (e *Engine) ModSq(io []int64, mul3 bool) []int64 {
	buf := e.forwardFull(io)
	e.square(buf)
	return e.inverseFull(buf, mul3)
}

// ModMul returns a*io mod 2^E-1, optionally fused with a ×3 multiply
// (§4.3 "modMul": two independent forward transforms feeding one
// shared inverse path).
func (e *Engine) ModMul(a, io []int64, mul3 bool) []int64 {
	fa := e.forwardFull(a)
	fb := e.forwardFull(io)
	p := e.multiply(fa, fb)
	return e.inverseFull(p, mul3)
}

// ModSqLoop runs reps consecutive squarings, fusing the ×3 multiply
// (when requested) into the final iteration only — the PRP driver's
// main per-block work loop (§4.3 "modSqLoop", §4.4).
//
// The reference engine additionally tracks leadIn/leadOut flags to
// fuse the carry step of one iteration with the next iteration's
// forward transform, skipping a round trip through the balanced-word
// domain. That fusion is a GPU memory-bandwidth optimization with no
// effect on the values produced (each iteration still starts and ends
// a complete squaring); this engine always takes the unfused path and
// records UseLongCarry purely as the configured carry-width policy,
// not a per-iteration control flag (DESIGN.md).
func (e *Engine) ModSqLoop(io []int64, reps uint32, mul3 bool) []int64 {
	for i := uint32(0); i < reps; i++ {
		io = e.ModSq(io, mul3 && i == reps-1)
	}
	return io
}

// Exponentiate computes base**exp mod 2^E-1 via left-to-right binary
// exponentiation over expBitsMSB, base's own exponent's bits,
// most-significant first, with an implicit leading 1 (§4.3
// "exponentiate", used by the P−1 stage-2 SquaringSet).
func (e *Engine) Exponentiate(base []int64, expBitsMSB []bool) []int64 {
	if len(expBitsMSB) == 0 {
		one := make([]int64, len(base))
		one[0] = 1
		return one
	}
	out := append([]int64(nil), base...)
	for _, bit := range expBitsMSB[1:] {
		out = e.ModSq(out, false)
		if bit {
			out = e.ModMul(base, out, false)
		}
	}
	return out
}

// MultiplyLow is ModMul without the ×3 fusion, named to match the P−1
// stage-2 SquaringSet's use of the reference engine's multiplyLow.
func (e *Engine) MultiplyLow(a, io []int64) []int64 {
	return e.ModMul(a, io, false)
}

// Sub returns (a - b) mod 2^E-1 at the integer level, the piece
// tailFusedMulDelta needs that a pure convolution step can't provide.
func (e *Engine) Sub(a, b []int64) []int64 {
	pa := packedToInt(e.ReadData(a))
	pb := packedToInt(e.ReadData(b))

	m := new(big.Int).Lsh(big.NewInt(1), uint(e.E))
	m.Sub(m, big.NewInt(1))

	d := new(big.Int).Sub(pa, pb)
	d.Mod(d, m)

	return e.WriteData(intToPacked(d, e.E))
}

// TailFusedMulDelta computes (a-b)*tmp mod 2^E-1, the stage-2 sweep's
// way of covering two primes per D-block via the (A+B)(A-B) identity
// (§4.5, §9 design notes). The reference engine fuses the subtraction
// into the inverse sub-FFT of the preceding squaring step; here it is
// an explicit Sub followed by MultiplyLow, which is the same value
// without the kernel-level fusion (DESIGN.md).
func (e *Engine) TailFusedMulDelta(a, b, tmp []int64) []int64 {
	diff := e.Sub(a, b)
	return e.MultiplyLow(diff, tmp)
}

func packedToInt(words []uint32) *big.Int {
	v := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		v.Lsh(v, 32)
		v.Or(v, new(big.Int).SetUint64(uint64(words[i])))
	}
	return v
}

func intToPacked(v *big.Int, e uint32) []uint32 {
	n := (e + 31) / 32
	out := make([]uint32, n)
	tmp := new(big.Int).Set(v)
	mask := big.NewInt(0xFFFFFFFF)
	for i := uint32(0); i < n; i++ {
		w := new(big.Int).And(tmp, mask)
		out[i] = uint32(w.Uint64())
		tmp.Rsh(tmp, 32)
	}
	return out
}
