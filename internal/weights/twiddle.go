package weights

import "math"

// root1 returns the primitive N-th root of unity raised to the k-th
// power, e^(-2*pi*i*k/N), matching the engine's root1() helper.
func root1(n, k uint32) complex128 {
	kk := k % n
	angle := -2 * math.Pi * float64(kk) / float64(n)
	return complex(math.Cos(angle), math.Sin(angle))
}

// writeSmallTrigBlock fills one radix block of a twiddle table
// starting at tab[pos]: for each line in [1, h) and column in [0, w),
// root1(w*h, line*col). Returns the next free position.
func writeSmallTrigBlock(tab []complex128, pos, w, h uint32) uint32 {
	for line := uint32(1); line < h; line++ {
		for col := uint32(0); col < w; col++ {
			tab[pos] = root1(w*h, line*col)
			pos++
		}
	}
	return pos
}

// GenSmallTrig builds the twiddle table for a size-`size` sub-FFT
// decomposed with radix `radix`, recursively growing blocks of size
// radix^(i+1) (§4.2). The first `radix` entries are left zero — they
// are never read by the mixed-radix kernels, matching the reference
// table layout.
func GenSmallTrig(size, radix uint32) []complex128 {
	tab := make([]complex128, size)
	pos := radix
	for w := radix; w < size; w *= radix {
		h := radix
		if size/w < h {
			h = size / w
		}
		pos = writeSmallTrigBlock(tab, pos, w, h)
	}
	return tab
}
