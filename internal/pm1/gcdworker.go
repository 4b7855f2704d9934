package pm1

import "github.com/mersenne-go/prptool/internal/gcdutil"

// dispatchGCD runs gcdutil.GCD on a copy of words on its own
// goroutine and reports the result on the returned channel: the
// reference engine's "asynchronous GCD" host compute thread (§4.5,
// §9 "Asynchronous GCD"). The caller owns words; dispatchGCD takes
// a private copy so the caller is free to keep mutating its buffers.
func dispatchGCD(exp uint32, words []uint32, sub uint32) <-chan string {
	cp := append([]uint32(nil), words...)
	ch := make(chan string, 1)
	go func() { ch <- gcdutil.GCD(exp, cp, sub) }()
	return ch
}

// pollGCD does a non-blocking check of an in-flight GCD result,
// reporting (factor, true) if it is ready.
func pollGCD(ch <-chan string) (string, bool) {
	select {
	case factor := <-ch:
		return factor, true
	default:
		return "", false
	}
}
