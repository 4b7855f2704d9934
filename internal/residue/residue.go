// Package residue converts between the engine's balanced-word vectors
// and the plain packed integer representation used for residue
// reporting, checkpoints, and the strong-3-PRP final check (§3, §6,
// §9 "doDiv9").
package residue

import "math/big"

// WordOffset returns floor(E*i/N), the starting bit position of word i
// in the represented integer (§3).
func WordOffset(n, e uint32, i uint32) uint64 {
	return (uint64(e) * uint64(i)) / uint64(n)
}

// WordBits returns the bit width of word i: floor(E(i+1)/N) - floor(Ei/N).
func WordBits(n, e uint32, i uint32) uint32 {
	return uint32(WordOffset(n, e, i+1) - WordOffset(n, e, i))
}

// mersenne returns 2^e - 1.
func mersenne(e uint32) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(e))
	return m.Sub(m, big.NewInt(1))
}

// CompactBits folds a balanced-word vector (length N, representing an
// integer mod 2^E-1 per the §3 invariant) into its canonical
// non-negative value, reduced mod 2^E-1 and packed little-endian into
// ceil(E/32) 32-bit words — the readData()/readCheck() conversion.
func CompactBits(words []int64, n, e uint32) []uint32 {
	acc := new(big.Int)
	for i, w := range words {
		if w == 0 {
			continue
		}
		term := new(big.Int).Lsh(big.NewInt(w), uint(WordOffset(n, e, uint32(i))))
		acc.Add(acc, term)
	}
	acc.Mod(acc, mersenne(e))

	nWords := (e + 31) / 32
	return repack64to32(acc, nWords)
}

// repack64to32 derives the little-endian u32 packing of acc,
// independent of the host's big.Word size.
func repack64to32(acc *big.Int, nWords uint32) []uint32 {
	out := make([]uint32, nWords)
	tmp := new(big.Int).Set(acc)
	mask := big.NewInt(0xFFFFFFFF)
	for i := uint32(0); i < nWords; i++ {
		word := new(big.Int).And(tmp, mask)
		out[i] = uint32(word.Uint64())
		tmp.Rsh(tmp, 32)
	}
	return out
}

// ExpandBits is the inverse of CompactBits: it slices a packed u32
// vector into N balanced words (each in [-base/2, base/2) for its own
// base), the format the transform engine's forward path consumes.
func ExpandBits(packed []uint32, n, e uint32) []int64 {
	value := new(big.Int)
	for i := len(packed) - 1; i >= 0; i-- {
		value.Lsh(value, 32)
		value.Or(value, new(big.Int).SetUint64(uint64(packed[i])))
	}

	words := make([]int64, n)
	var carry int64
	for i := uint32(0); i < n; i++ {
		bits := WordBits(n, e, i)
		off := WordOffset(n, e, i)
		chunk := new(big.Int).Rsh(value, uint(off))
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
		chunk.And(chunk, mask)
		raw := chunk.Int64() + carry
		base := int64(1) << bits
		carry = 0
		if raw >= base/2 {
			raw -= base
			carry = 1
		}
		words[i] = raw
	}
	// A borrow out of the top word wraps to word 0, since 2^E == 1 mod 2^E-1.
	for i := uint32(0); carry != 0 && i < n; i++ {
		base := int64(1) << WordBits(n, e, i)
		words[i] += carry
		carry = 0
		if words[i] >= base/2 {
			words[i] -= base
			carry = 1
		}
	}
	return words
}

// Res64 truncates a big-endian-folded residue value to its low 64 bits
// (the res64 reported in checkpoints and log lines, §6).
func Res64(words []int64, n, e uint32) uint64 {
	packed := CompactBits(words, n, e)
	var r uint64
	for i := 0; i < 2 && i < len(packed); i++ {
		r |= uint64(packed[i]) << (32 * i)
	}
	return r
}

// ResidueFromPacked reads the low 64 bits directly out of a
// little-endian packed u32 vector (used after DivNine for the final
// post-division res64, §8 scenario 1).
func ResidueFromPacked(words []uint32) uint64 {
	var r uint64
	for i := 0; i < 2 && i < len(words); i++ {
		r |= uint64(words[i]) << (32 * i)
	}
	return r
}

// Equals9 reports whether the packed integer equals the literal value
// 9 (word[0]==9, every other word zero) — the strong-3-PRP signal
// (§4.4, GLOSSARY).
func Equals9(words []uint32) bool {
	if len(words) == 0 || words[0] != 9 {
		return false
	}
	for _, w := range words[1:] {
		if w != 0 {
			return false
		}
	}
	return true
}

// mod3 reduces a little-endian u32 vector mod 3, using 2^32 mod 3 == 1.
func mod3(words []uint32) uint32 {
	var r uint32
	for _, w := range words {
		r += w % 3
	}
	return r % 3
}

// divThree divides the packed integer (E bits, little-endian u32
// words) by 3 in place. E must not be a multiple of 32 in the last
// word's bit count sense handled below.
func divThree(e uint32, words []uint32) {
	r := (3 - mod3(words)) % 3
	topBits := e % 32
	last := len(words) - 1
	w := (uint64(r) << topBits) + uint64(words[last])
	words[last] = uint32(w / 3)
	r = uint32(w % 3)
	for i := last - 1; i >= 0; i-- {
		w := (uint64(r) << 32) + uint64(words[i])
		words[i] = uint32(w / 3)
		r = uint32(w % 3)
	}
}

// DivNine divides the packed residue by 9 (two divisions by 3),
// converting the strong-3-PRP "is 9" residue into the standard res64
// per GLOSSARY / §4.4.
func DivNine(e uint32, words []uint32) {
	divThree(e, words)
	divThree(e, words)
}
