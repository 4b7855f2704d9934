package weights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoot1IsUnitMagnitude(t *testing.T) {
	for k := uint32(0); k < 8; k++ {
		r := root1(8, k)
		mag := math.Hypot(real(r), imag(r))
		require.InDelta(t, 1.0, mag, 1e-9)
	}
}

func TestRoot1AtZeroIsOne(t *testing.T) {
	r := root1(8, 0)
	require.InDelta(t, 1.0, real(r), 1e-9)
	require.InDelta(t, 0.0, imag(r), 1e-9)
}

func TestRoot1WrapsModuloN(t *testing.T) {
	a := root1(8, 3)
	b := root1(8, 11) // 11 mod 8 == 3
	require.InDelta(t, real(a), real(b), 1e-9)
	require.InDelta(t, imag(a), imag(b), 1e-9)
}

func TestGenSmallTrigLeadingEntriesAreZero(t *testing.T) {
	tab := GenSmallTrig(64, 4)
	require.Len(t, tab, 64)
	for i := uint32(0); i < 4; i++ {
		require.Zero(t, tab[i])
	}
}

func TestGenSmallTrigFillsRemainingEntries(t *testing.T) {
	tab := GenSmallTrig(16, 4)
	nonZero := 0
	for _, v := range tab[4:] {
		if v != 0 {
			nonZero++
		}
	}
	require.Greater(t, nonZero, 0)
}
