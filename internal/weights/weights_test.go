package weights

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtraIsModularMultiple(t *testing.T) {
	require.EqualValues(t, 0, Extra(100, 7, 0))
	require.EqualValues(t, (7*13)%100, Extra(100, 7, 13))
}

// Exactly E mod N of the N words must carry an extra bit (the
// defining property of the IBDWT big/small word split, §4.2).
func TestIsBigWordCountMatchesEModN(t *testing.T) {
	const n, e = 64, 607
	count := 0
	for k := uint32(0); k < n; k++ {
		if IsBigWord(n, e, k) {
			count++
		}
	}
	require.EqualValues(t, e%n, count)
}

// Weight and InvWeight at the same index must be exact reciprocals.
func TestWeightInvWeightAreReciprocal(t *testing.T) {
	const n, e, w = 32, 607, 4
	for line := uint32(0); line < 2; line++ {
		for col := uint32(0); col < w; col++ {
			a := Weight(n, e, w, line, col, 0)
			ia := InvWeight(n, e, w, line, col, 0)
			require.InDelta(t, 1.0, a*ia, 1e-9)
		}
	}
}

func TestGenerateTableLengths(t *testing.T) {
	const e, w, h, nW = 607, 4, 4, 8
	tab := Generate(e, w, h, nW)

	n := 2 * w * h
	require.Len(t, tab.ATab, int(n))
	require.Len(t, tab.ITab, int(n))
	require.Len(t, tab.GroupWeights, int(2*h))
}

// kAt must be injective over the (line, col, rep) index space it's
// meant to flatten, for a representative width.
func TestKAtIsInjective(t *testing.T) {
	const w = 8
	seen := make(map[uint32]bool)
	for line := uint32(0); line < 8; line++ {
		for col := uint32(0); col < w; col++ {
			for rep := uint32(0); rep < 2; rep++ {
				k := kAt(w, line, col, rep)
				require.False(t, seen[k], "duplicate flat index %d", k)
				seen[k] = true
			}
		}
	}
}
