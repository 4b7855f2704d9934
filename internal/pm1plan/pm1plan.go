// Package pm1plan produces the P−1 stage-2 sparse prime-pair cover:
// the fixed J-set and the per-(B1, B2) block selection bitmap that
// Make (makePm1Plan) produces (spec §4.5, §4.6).
package pm1plan

import "math/big"

// D is both the block spacing used in p = D·B ± j and the modulus the
// J-set's coprimality is computed against (Gpu.cpp's getJset/the
// "big"/"little" squaring-set seeds all key off the same 2·3·5·7·11·13
// value — see DESIGN.md for why this module previously split the two
// and why that was wrong).
const D = 2 * 3 * 5 * 7 * 11 * 13

// jsetLimit is the half-width of D, the upper bound on J.
const jsetLimit = D / 2

// JSet is the sorted list of the 2880 integers in [1, jsetLimit]
// coprime to D (§4.5, §4.6, GLOSSARY).
var JSet = buildJSet()

func buildJSet() []uint32 {
	js := make([]uint32, 0, 2880)
	for j := uint32(1); j <= jsetLimit; j++ {
		if gcdU32(j, D) == 1 {
			js = append(js, j)
		}
	}
	return js
}

func gcdU32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// sieve returns the primes in (lo, hi] via a simple Eratosthenes sieve
// up to hi.
func sieve(lo, hi uint32) []uint32 {
	if hi < 2 {
		return nil
	}
	isComposite := make([]bool, hi+1)
	var primes []uint32
	for i := uint32(2); i <= hi; i++ {
		if isComposite[i] {
			continue
		}
		if i > lo {
			primes = append(primes, i)
		}
		if i <= hi/i {
			for j := i * i; j <= hi; j += i {
				isComposite[j] = true
			}
		}
	}
	return primes
}

// Plan is the result of makePm1Plan: the range of D-blocks to sweep
// and, for each block (relative to StartBlock), which J-set positions
// are needed to cover a target prime (§4.6).
type Plan struct {
	StartBlock   uint32
	NBlocks      uint32
	NPrimes      uint32
	AllSelected  [][]bool // AllSelected[block-StartBlock][j-position]
}

// nearestBlock returns the block B nearest p, i.e. round(p/D).
func nearestBlock(p uint32) uint32 {
	return (p + D/2) / D
}

// Make builds the stage-2 plan covering every prime in (B1, B2],
// following §4.6: each prime p is assigned to the block nearest it,
// p = D·B ± j for some j in JSet. Block assignment is monotonic in p,
// so the blocks nearest B1+1 and B2 bound every block a prime in
// (B1, B2] can land in.
func Make(b1, b2 uint32) Plan {
	startBlock := nearestBlock(b1 + 1)
	endBlock := nearestBlock(b2)
	if endBlock < startBlock {
		endBlock = startBlock
	}
	nBlocks := endBlock - startBlock + 1

	jPos := make(map[uint32]int, len(JSet))
	for i, j := range JSet {
		jPos[j] = i
	}

	selected := make([][]bool, nBlocks)
	for i := range selected {
		selected[i] = make([]bool, len(JSet))
	}

	var nPrimes uint32
	for _, p := range sieve(b1, b2) {
		block := nearestBlock(p)
		diff := int64(p) - int64(block)*D
		absDiff := uint32(abs64(diff))
		if block < startBlock || absDiff == 0 || absDiff > jsetLimit {
			continue
		}
		pos, ok := jPos[absDiff]
		if !ok {
			continue
		}
		selected[block-startBlock][pos] = true
		nPrimes++
	}

	return Plan{
		StartBlock:  startBlock,
		NBlocks:     nBlocks,
		NPrimes:     nPrimes,
		AllSelected: selected,
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// IsProbablePrime is a small convenience wrapper over math/big's
// Miller-Rabin test, used by tests that need to sanity-check a stage-2
// plan's prime coverage against a ground truth.
func IsProbablePrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(20)
}
