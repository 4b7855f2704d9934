package pm1

import (
	"math/big"

	"github.com/mersenne-go/prptool/internal/gcdutil"
	"github.com/mersenne-go/prptool/internal/transform"
)

// squaringSet generates base^(f(n)) for a quadratic f advancing at a
// fixed step, via the standard second-difference trick: C holds the
// current value, B holds base raised to the current first difference,
// and A holds base raised to the constant second difference. Each
// Step applies C:=C*B; B:=B*A (§4.5 "little"/"big" generators).
type squaringSet struct {
	eng     *transform.Engine
	a, b, c []int64
}

func expOf(eng *transform.Engine, base []int64, exp uint64) []int64 {
	if exp == 0 {
		one := make([]int64, len(base))
		one[0] = 1
		return one
	}
	return eng.Exponentiate(base, gcdutil.BitsMSB(new(big.Int).SetUint64(exp)))
}

// newSquaringSet builds a generator whose current value is
// base^(c0Exp), with first difference base^(bStepExp) and constant
// second difference base^(aStepExp).
func newSquaringSet(eng *transform.Engine, base []int64, c0Exp, bStepExp, aStepExp uint64) *squaringSet {
	return &squaringSet{
		eng: eng,
		a:   expOf(eng, base, aStepExp),
		b:   expOf(eng, base, bStepExp),
		c:   expOf(eng, base, c0Exp),
	}
}

// value returns the generator's current term.
func (s *squaringSet) value() []int64 { return s.c }

// step advances the generator to its next term.
func (s *squaringSet) step() {
	s.c = s.eng.ModMul(s.b, s.c, false)
	s.b = s.eng.ModMul(s.a, s.b, false)
}
