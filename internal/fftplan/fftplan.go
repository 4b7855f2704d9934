// Package fftplan enumerates the valid IBDWT transform shapes for a
// Mersenne exponent and picks one, following the FFTConfig registry of
// the engine this module is modeled on.
package fftplan

import (
	"fmt"
	"sort"
)

// sizes are the power-of-two widths and heights the transform engine
// knows how to decompose into a radix-4/radix-8 sub-FFT.
var sizes = []uint32{256, 512, 1024, 2048, 4096}

// Config describes one candidate transform shape: a WIDTH x SMALL_HEIGHT
// x MIDDLE x 2 decomposition of the FFT length N (§3, §4.1). Middle is
// always 1 for the shapes this registry currently enumerates, and
// transform.New rejects any shape with Middle != 1.
type Config struct {
	Width  uint32
	Height uint32
	Middle uint32
}

// FFTSize returns N, the total transform length (the factor of 2 is the
// negacyclic real/complex split, §3).
func (c Config) FFTSize() uint32 { return c.Width * c.Height * c.Middle * 2 }

// MaxExp returns the largest exponent this shape can safely carry,
// using the empirical 30-bits-per-complex-point budget (§4.1).
func (c Config) MaxExp() uint32 { return c.Width * c.Height * c.Middle * 30 }

// Spec renders the shape the way the CLI and logs refer to it.
func (c Config) Spec() string {
	if c.Middle == 1 {
		return fmt.Sprintf("%dx%d", c.Width, c.Height)
	}
	return fmt.Sprintf("%dx%dx%d", c.Width, c.Middle, c.Height)
}

// NW is the inner transform radix used to decompose the width FFT into
// thread-local work; §4.1 fixes it at 4 for widths {256, 1024} and 8
// otherwise so the sub-group width stays divisible by the carry group.
func NW(width uint32) uint32 {
	if width == 256 || width == 1024 {
		return 4
	}
	return 8
}

// NH is the same choice for the height/SMALL_HEIGHT sub-FFT.
func NH(height uint32) uint32 {
	if height == 256 || height == 1024 {
		return 4
	}
	return 8
}

// GenConfigs enumerates every (width, height) pair over the permitted
// power-of-two set, sorted ascending by FFT size (ties broken by width
// then height) so callers can do a linear scan for the first shape that
// fits an exponent.
func GenConfigs() []Config {
	configs := make([]Config, 0, len(sizes)*len(sizes))
	for _, w := range sizes {
		for _, h := range sizes {
			configs = append(configs, Config{Width: w, Height: h, Middle: 1})
		}
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].FFTSize() != configs[j].FFTSize() {
			return configs[i].FFTSize() < configs[j].FFTSize()
		}
		if configs[i].Width != configs[j].Width {
			return configs[i].Width < configs[j].Width
		}
		return configs[i].Height < configs[j].Height
	})
	return configs
}

// Select picks the transform shape for exponent E given an optional
// user hint, per §4.1:
//
//   - argsFFTSize < 10 is treated as a signed delta from the default:
//     starting from the smallest config whose MaxExp >= E, the delta is
//     applied and the result clamped to [0, n-1].
//   - otherwise the first config whose FFTSize >= argsFFTSize is used.
func Select(configs []Config, e uint32, argsFFTSize int32) (Config, error) {
	n := len(configs)
	if n == 0 {
		return Config{}, fmt.Errorf("fftplan: empty config registry")
	}

	i := 0
	if argsFFTSize < 10 {
		for i < n-1 && configs[i].MaxExp() < e {
			i++
		}
		i += int(argsFFTSize)
		if i < 0 {
			i = 0
		}
		if i > n-1 {
			i = n - 1
		}
	} else {
		want := uint32(argsFFTSize)
		for i < n-1 && want > configs[i].FFTSize() {
			i++
		}
	}
	return configs[i], nil
}

// BitsPerWord reports the average word width for exponent E under
// shape c; the engine rejects shapes outside [1.5, 20.0] (§3).
func BitsPerWord(e uint32, c Config) float64 {
	return float64(e) / float64(c.FFTSize())
}

// ValidateBitsPerWord enforces the §3 band, returning a descriptive
// configuration error (fatal at startup per §7) when violated.
func ValidateBitsPerWord(e uint32, c Config) error {
	bpw := BitsPerWord(e, c)
	if bpw > 20.0 {
		return fmt.Errorf("fftplan: FFT size %s too small for exponent %d (%.2f bits/word)", c.Spec(), e, bpw)
	}
	if bpw < 1.5 {
		return fmt.Errorf("fftplan: FFT size %s too large for exponent %d (%.2f bits/word)", c.Spec(), e, bpw)
	}
	return nil
}
