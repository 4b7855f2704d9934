// Package gcdutil provides the arbitrary-precision integer helpers the
// P−1 driver needs: the powersmooth stage-1 exponent and the final
// GCD against the Mersenne modulus. It is the Go stdlib math/big
// equivalent of the engine's GMP-backed GmpUtil.cpp — see DESIGN.md
// for why math/big, not a third-party bignum package, is used here.
package gcdutil

import "math/big"

// primorial returns the product of all primes <= p.
func primorial(p uint32) *big.Int {
	result := big.NewInt(1)
	sieve := make([]bool, p+1)
	for i := uint32(2); i <= p; i++ {
		if sieve[i] {
			continue
		}
		result.Mul(result, big.NewInt(int64(i)))
		for j := 2 * i; j <= p; j += i {
			sieve[j] = true
		}
	}
	return result
}

// PowerSmooth builds K = 256 * exp * Π_{k=1..floor(log2 B1)} primorial(B1^(1/k)),
// the Suyama-embedded stage-1 exponent (§4.5).
func PowerSmooth(exp, b1 uint32) *big.Int {
	a := new(big.Int).SetUint64(uint64(exp))
	a.Mul(a, big.NewInt(256))

	logB1 := 0
	for v := b1; v > 1; v >>= 1 {
		logB1++
	}
	for k := logB1; k >= 1; k-- {
		root := nthRoot(b1, k)
		a.Mul(a, primorial(root))
	}
	return a
}

// nthRoot returns floor(n^(1/k)) via integer search, matching the
// pow(B1, 1.0/k) cast to an integer primorial bound in the reference.
func nthRoot(n uint32, k int) uint32 {
	if k <= 1 {
		return n
	}
	lo, hi := uint32(1), n
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		p := uint64(1)
		overflow := false
		for i := 0; i < k; i++ {
			p *= uint64(mid)
			if p > uint64(n) {
				overflow = true
				break
			}
		}
		if !overflow && p <= uint64(n) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// BitsMSB returns the bits of a, most-significant bit first.
func BitsMSB(a *big.Int) []bool {
	nBits := a.BitLen()
	bits := make([]bool, nBits)
	for i := 0; i < nBits; i++ {
		bits[i] = a.Bit(nBits-1-i) == 1
	}
	return bits
}

// PowerSmoothBitsMSB is PowerSmooth(exp, B1) rendered as MSB-first bits,
// used directly by the stage-1 bit-exponentiation loop.
func PowerSmoothBitsMSB(exp, b1 uint32) []bool {
	return BitsMSB(PowerSmooth(exp, b1))
}

// wordsToInt interprets a little-endian u32 slice as a non-negative
// big.Int, matching GmpUtil.cpp's mpz_import(..., -1 /*LSWord first*/).
func wordsToInt(words []uint32) *big.Int {
	v := new(big.Int)
	bitsPer := uint(32)
	for i := len(words) - 1; i >= 0; i-- {
		v.Lsh(v, bitsPer)
		v.Or(v, new(big.Int).SetUint64(uint64(words[i])))
	}
	return v
}

// GCD returns GCD(2^exp - 1, wordsToInt(words) - sub) as a decimal
// string, or "" when the GCD is 1 (no factor found) — the Go
// equivalent of GmpUtil.cpp's GCD().
func GCD(exp uint32, words []uint32, sub uint32) string {
	mersenne := new(big.Int).Lsh(big.NewInt(1), uint(exp))
	mersenne.Sub(mersenne, big.NewInt(1))

	x := wordsToInt(words)
	x.Sub(x, big.NewInt(int64(sub)))

	g := new(big.Int).GCD(nil, nil, mersenne, new(big.Int).Abs(x))
	if g.Cmp(big.NewInt(1)) == 0 {
		return ""
	}
	return g.String()
}
