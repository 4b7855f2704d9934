package transform

import (
	"math"

	"github.com/mersenne-go/prptool/internal/residue"
)

// fftP packs io's balanced words into weighted complex pairs and runs
// the width-direction forward sub-FFT over each of H rows (§4.3 step
// "fftP: weight + forward width FFT"). The result is laid out
// row-major, H rows of W complex values.
func (e *Engine) fftP(io []int64) []complex128 {
	hN := e.W * e.H
	buf := make([]complex128, hN)
	for i := uint32(0); i < hN; i++ {
		buf[i] = complex(
			float64(io[2*i])*e.tab.ATab[2*i],
			float64(io[2*i+1])*e.tab.ATab[2*i+1],
		)
	}
	for line := uint32(0); line < e.H; line++ {
		row := buf[line*e.W : (line+1)*e.W]
		e.run("fftP", func() { fftRadix2(row, false) })
	}
	return buf
}

// transposeW swaps the engine's H-rows-of-W layout into W-rows-of-H,
// the step that makes the height sub-FFT operate on contiguous memory
// (§4.3 "transposeW").
func (e *Engine) transposeW(buf []complex128) []complex128 {
	out := make([]complex128, len(buf))
	for line := uint32(0); line < e.H; line++ {
		for col := uint32(0); col < e.W; col++ {
			out[col*e.H+line] = buf[line*e.W+col]
		}
	}
	return out
}

// transposeH is transposeW's mirror on the way back: W-rows-of-H into
// H-rows-of-W (§4.3 "transposeH").
func (e *Engine) transposeH(buf []complex128) []complex128 {
	out := make([]complex128, len(buf))
	for col := uint32(0); col < e.W; col++ {
		for line := uint32(0); line < e.H; line++ {
			out[line*e.W+col] = buf[col*e.H+line]
		}
	}
	return out
}

// fftMiddleIn and fftMiddleOut are the MIDDLE-direction sub-FFT and
// its inverse. Every shape this registry enumerates has MIDDLE == 1,
// and New rejects any other, so both are identities; they are kept as
// named stages of the forward/inverse pipeline (spec §4.1
// Config.Middle, §9 design notes).
func (e *Engine) fftMiddleIn(buf []complex128) []complex128  { return buf }
func (e *Engine) fftMiddleOut(buf []complex128) []complex128 { return buf }

// fftH runs the height-direction sub-FFT over each of W contiguous
// blocks of H complex values. Called once forward (before the
// pointwise step) and once inverse (after it); unlike the reference
// engine's single self-inverse kernel, this is an honest forward/
// inverse pair.
func (e *Engine) fftH(buf []complex128, inverse bool) []complex128 {
	name := "fftH"
	if inverse {
		name = "fftH-inverse"
	}
	for col := uint32(0); col < e.W; col++ {
		block := buf[col*e.H : (col+1)*e.H]
		e.run(name, func() { fftRadix2(block, inverse) })
	}
	return buf
}

// fftW runs the width-direction inverse sub-FFT over each of the H
// rows, the companion to fftP on the way back to real space (§4.3
// "fftW"). The complex result still needs unweighting and rounding,
// done by carryA/carryM.
func (e *Engine) fftW(buf []complex128) []complex128 {
	for line := uint32(0); line < e.H; line++ {
		row := buf[line*e.W : (line+1)*e.W]
		e.run("fftW", func() { fftRadix2(row, true) })
	}
	return buf
}

// square computes the pointwise complex square of buf in place, the
// convolution step for a self-multiply (§4.3 "square").
func (e *Engine) square(buf []complex128) {
	for i := range buf {
		buf[i] = buf[i] * buf[i]
	}
}

// multiply returns the pointwise complex product of a and b, the
// convolution step for modMul (§4.3 "multiply").
func (e *Engine) multiply(a, b []complex128) []complex128 {
	out := make([]complex128, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

// carryResult is the provisional output of carryA/carryM: the
// rounded, locally-carried words plus the per-word carry chain's
// final overflow, which wraps around mod 2^E-1 and must be folded
// back in by carryB (§4.3 "carryA/carryB split").
type carryResult struct {
	words   []int64
	wrapped int64
}

// carryA unweights buf with ITab, rounds to the nearest integer, and
// propagates a single linear carry chain across all N words, letting
// the final overflow wrap around (§4.3 "carryA").
func (e *Engine) carryA(buf []complex128) carryResult {
	return e.carryPass(buf, false)
}

// carryM is carryA fused with a ×3 multiply of the unweighted value
// before rounding, used by P−1 stage 1 to fold in the ×3 for each set
// exponent bit (§4.3 "carryM", §4.5).
func (e *Engine) carryM(buf []complex128) carryResult {
	return e.carryPass(buf, true)
}

func (e *Engine) carryPass(buf []complex128, mul3 bool) carryResult {
	words := make([]int64, e.N)
	var carry int64
	for i := uint32(0); i < e.W*e.H; i++ {
		re := real(buf[i]) * e.tab.ITab[2*i]
		im := imag(buf[i]) * e.tab.ITab[2*i+1]
		if mul3 {
			re *= 3
			im *= 3
		}
		words[2*i], carry = normalizeWord(re, carry, residue.WordBits(e.N, e.E, 2*i))
		words[2*i+1], carry = normalizeWord(im, carry, residue.WordBits(e.N, e.E, 2*i+1))
	}
	return carryResult{words: words, wrapped: carry}
}

// carryB folds carryA/carryM's wraparound overflow back into word 0
// and re-propagates until it settles (§4.3 "carryB", the negacyclic
// sign flip on wraparound is not modeled separately here since this
// engine represents the modulus 2^E-1, not 2^E+1).
func (e *Engine) carryB(r carryResult) []int64 {
	words := r.words
	carry := r.wrapped
	for i := uint32(0); carry != 0; i++ {
		idx := i % e.N
		v, c := normalizeWord(float64(words[idx]), carry, residue.WordBits(e.N, e.E, idx))
		words[idx] = v
		carry = c
		if i > 2*e.N {
			break
		}
	}
	return words
}

// normalizeWord rounds v+carryIn to the nearest integer, reduces it
// into the balanced range [-base/2, base/2) for a `bits`-wide word,
// and returns the word value plus the carry to propagate onward.
func normalizeWord(v float64, carryIn int64, bits uint32) (int64, int64) {
	iv := int64(math.Round(v)) + carryIn
	base := int64(1) << bits
	half := base / 2
	m := iv % base
	if m < -half {
		m += base
	} else if m >= half {
		m -= base
	}
	return m, (iv - m) / base
}

// forwardFull runs the full forward pipeline — fftP, transposeW,
// fftMiddleIn, fftH — turning a balanced-word vector into the
// transform's frequency-domain ("low position") representation.
func (e *Engine) forwardFull(io []int64) []complex128 {
	buf := e.fftP(io)
	buf = e.transposeW(buf)
	buf = e.fftMiddleIn(buf)
	buf = e.fftH(buf, false)
	return buf
}

// inverseFull runs the full inverse pipeline — fftH, fftMiddleOut,
// transposeH, fftW, carryA/carryM, carryB — turning a frequency-domain
// buffer back into a normalized balanced-word vector.
func (e *Engine) inverseFull(buf []complex128, mul3 bool) []int64 {
	buf = e.fftH(buf, true)
	buf = e.fftMiddleOut(buf)
	buf = e.transposeH(buf)
	buf = e.fftW(buf)

	var r carryResult
	if mul3 {
		r = e.carryM(buf)
	} else {
		r = e.carryA(buf)
	}
	return e.carryB(r)
}
