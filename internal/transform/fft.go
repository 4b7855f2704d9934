// Package transform implements the IBDWT-based squaring/multiplication
// engine: the weighted forward transform, pointwise convolution step,
// and inverse transform with carry propagation that both the PRP and
// P−1 drivers reduce to (spec §4.3). The reference engine dispatches
// this pipeline as a fixed sequence of OpenCL kernels; here the same
// named stages run as ordinary Go functions over in-process slices, a
// substitution recorded in DESIGN.md (kernel source itself is treated
// as an external, unported artifact).
package transform

import "math"

// fftRadix2 computes the in-place iterative Cooley-Tukey FFT of a,
// whose length must be a power of two. inverse selects the conjugate
// transform; it does not scale by 1/len(a) — callers fold that scaling
// into the IBDWT inverse weights (ITab), matching how the reference
// engine absorbs the 1/N factor into its weight tables rather than a
// separate normalization pass.
func fftRadix2(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := 2 * math.Pi / float64(length)
		if !inverse {
			angle = -angle
		}
		wLen := complex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			half := length / 2
			for k := 0; k < half; k++ {
				u := a[start+k]
				v := a[start+k+half] * w
				a[start+k] = u + v
				a[start+k+half] = u - v
				w *= wLen
			}
		}
	}
}
