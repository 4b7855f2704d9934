package gcdutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimorial(t *testing.T) {
	require.Equal(t, "1", primorial(1).String())
	require.Equal(t, "2", primorial(2).String())
	require.Equal(t, "30", primorial(5).String())  // 2*3*5
	require.Equal(t, "210", primorial(7).String()) // 2*3*5*7
}

func TestNthRoot(t *testing.T) {
	require.EqualValues(t, 1000, nthRoot(1000, 1))
	require.EqualValues(t, 31, nthRoot(1000, 2)) // 31^2=961 <= 1000 < 32^2=1024
	require.EqualValues(t, 10, nthRoot(1000, 3)) // 10^3=1000
}

func TestBitsMSB(t *testing.T) {
	v := big.NewInt(0b1011)
	require.Equal(t, []bool{true, false, true, true}, BitsMSB(v))

	require.Equal(t, []bool{true}, BitsMSB(big.NewInt(1)))
}

func TestPowerSmoothIsDivisibleByExpAnd256(t *testing.T) {
	k := PowerSmooth(127, 1000)
	divisor := new(big.Int).Mul(big.NewInt(127), big.NewInt(256))
	mod := new(big.Int).Mod(k, divisor)
	require.True(t, mod.Sign() == 0, "PowerSmooth(127, 1000) must be divisible by 256*exp")
}

// GCD(2^exp-1, words-sub) must find a known small factor: M11 = 2047 =
// 23 * 89, so feeding 23 itself as "words" (sub=0) must yield 23.
func TestGCDFindsKnownFactor(t *testing.T) {
	// gcd(2^11-1, 23) == 23, since 23 | 2047.
	got := GCD(11, []uint32{23}, 0)
	require.Equal(t, "23", got)
}

func TestGCDReturnsEmptyWhenCoprime(t *testing.T) {
	got := GCD(11, []uint32{2}, 0)
	require.Empty(t, got)
}

func TestGCDSubtractsBeforeComparing(t *testing.T) {
	// words=24, sub=1 -> 23, same as the known-factor case above.
	got := GCD(11, []uint32{24}, 1)
	require.Equal(t, "23", got)
}
