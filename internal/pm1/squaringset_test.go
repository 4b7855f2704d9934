package pm1

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/queue"
	"github.com/mersenne-go/prptool/internal/transform"
)

// c_n for a squaringSet seeded with (c0Exp, bStepExp, aStepExp) must
// equal base^(c0Exp + n*bStepExp + C(n,2)*aStepExp) mod 2^E-1, the
// closed form of the second-difference recurrence value()/step()
// implement.
func TestSquaringSetMatchesClosedForm(t *testing.T) {
	const e = 521
	cfg := fftplan.Config{Width: 4, Height: 4, Middle: 1}
	eng, err := transform.New(e, cfg, transform.CarryAuto, queue.New(false, false))
	require.NoError(t, err)

	nWords := (e + 31) / 32
	seed := make([]uint32, nWords)
	seed[0] = 3
	base := eng.WriteData(seed)

	const c0Exp, bStepExp, aStepExp = 5, 3, 2
	ss := newSquaringSet(eng, base, c0Exp, bStepExp, aStepExp)

	m := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), e), big.NewInt(1))

	for n := int64(0); n < 6; n++ {
		exp := big.NewInt(c0Exp)
		exp.Add(exp, new(big.Int).Mul(big.NewInt(n), big.NewInt(bStepExp)))
		exp.Add(exp, new(big.Int).Mul(big.NewInt(n*(n-1)/2), big.NewInt(aStepExp)))

		want := new(big.Int).Exp(big.NewInt(3), exp, m)
		got := packedWordsToInt(eng.ReadData(ss.value()))
		require.Equal(t, want.String(), got.String(), "n=%d", n)

		ss.step()
	}
}

func packedWordsToInt(words []uint32) *big.Int {
	v := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		v.Lsh(v, 32)
		v.Or(v, new(big.Int).SetUint64(uint64(words[i])))
	}
	return v
}

func TestExpOfZeroIsIdentity(t *testing.T) {
	const e = 127
	cfg := fftplan.Config{Width: 4, Height: 4, Middle: 1}
	eng, err := transform.New(e, cfg, transform.CarryAuto, queue.New(false, false))
	require.NoError(t, err)

	nWords := (e + 31) / 32
	seed := make([]uint32, nWords)
	seed[0] = 3
	base := eng.WriteData(seed)

	got := expOf(eng, base, 0)
	packed := eng.ReadData(got)
	require.EqualValues(t, 1, packed[0])
	for _, w := range packed[1:] {
		require.Zero(t, w)
	}
}
