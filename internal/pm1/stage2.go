package pm1

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/mersenne-go/prptool/internal/checkpoint"
	"github.com/mersenne-go/prptool/internal/gcdutil"
	"github.com/mersenne-go/prptool/internal/pm1plan"
	"github.com/mersenne-go/prptool/internal/statlog"
	"github.com/mersenne-go/prptool/internal/transform"
)

// runStage2 sweeps the sparse prime-pair cover over blocks of width D
// (§4.5, §4.6), accumulating (base^((D*B)^2) - base^(j^2)) products
// into bufAcc via the (A+B)(A-B) identity that covers two primes per
// block, then GCDs the result against the Mersenne modulus. The
// "little" generator advances base^(j^2) per J-set position directly
// off base; the "big" generator advances base^((D*B)^2) per block,
// which it gets by seeding its recurrence from baseDsq = base^(D^2)
// rather than base itself (§4.5), so that big.value() at block index n
// equals baseDsq^((startBlock+n)^2) = base^((D*(startBlock+n))^2) —
// the quantity the ±j pairing identity needs.
// stage1GCD is polled every block for the stage-1 factor so a
// nontrivial result found concurrently with the stage-2 sweep ends
// the job early (§4.5 "poll the async stage-1 GCD").
func runStage2(eng *transform.Engine, e, b1, b2 uint32, base []int64, stage1GCD <-chan string, opts Options) (string, error) {
	plan := pm1plan.Make(b1, b2)
	if plan.NPrimes == 0 {
		return "", nil
	}

	nWords := (e + 31) / 32
	ckPath := checkpoint.P2Path(opts.CheckpointDir, e)

	var bufAcc []int64
	var blockIdx uint32

	if checkpoint.Exists(ckPath) {
		st, err := checkpoint.LoadP2(ckPath, nWords, eng.W, eng.H)
		if err != nil {
			return "", errors.Wrap(err, "pm1: loading stage-2 checkpoint")
		}
		if st.E != e || st.B1 != b1 || st.B2 != b2 {
			return "", errors.Errorf("pm1: stage-2 checkpoint %s does not match E=%d B1=%d B2=%d", ckPath, e, b1, b2)
		}
		bufAcc = eng.WriteData(rawToPacked(st.Raw))
		blockIdx = st.K
		log.Printf("%d P2 resumed at block %d/%d", e, blockIdx, plan.NBlocks)
	} else {
		bufAcc = append([]int64(nil), base...)
	}

	j0 := pm1plan.JSet[0]
	little := newSquaringSet(eng, base, uint64(j0)*uint64(j0), uint64(4*(j0+1)), 8)
	littleVals := make([][]int64, len(pm1plan.JSet))
	ptr := 0
	for n := uint32(1); ptr < len(pm1plan.JSet); n += 2 {
		if n == pm1plan.JSet[ptr] {
			littleVals[ptr] = little.value()
			ptr++
		}
		little.step()
	}

	startBlock := plan.StartBlock
	baseDsq := expOf(eng, base, uint64(pm1plan.D)*uint64(pm1plan.D))
	big := newSquaringSet(eng, baseDsq, uint64(startBlock)*uint64(startBlock), uint64(2*startBlock+1), 2)
	for i := uint32(0); i < blockIdx; i++ {
		big.step()
	}

	lastSave := time.Now()
	for ; blockIdx < plan.NBlocks; blockIdx++ {
		bigVal := big.value()
		for pos, selected := range plan.AllSelected[blockIdx] {
			if selected {
				bufAcc = eng.TailFusedMulDelta(bigVal, littleVals[pos], bufAcc)
			}
		}
		big.step()

		if opts.Stats != nil {
			opts.Stats.Store(statlog.Snapshot{K: blockIdx})
		}

		if factor, ready := pollGCD(stage1GCD); ready && factor != "" {
			return factor, nil
		}

		final := blockIdx == plan.NBlocks-1
		if opts.Stop.IsSet() || time.Since(lastSave) >= saveInterval || final {
			st := checkpoint.P2State{E: e, B1: b1, B2: b2, K: blockIdx + 1, Width: eng.W, Height: eng.H, Raw: packedToRaw(eng.ReadData(bufAcc))}
			if err := checkpoint.SaveP2(ckPath, st); err != nil {
				return "", errors.Wrap(err, "pm1: saving stage-2 checkpoint")
			}
			lastSave = time.Now()
			log.Printf("%d P2 %d/%d blocks", e, blockIdx+1, plan.NBlocks)
			if opts.Stop.IsSet() && !final {
				return "", errStopped
			}
		}
	}

	return gcdutil.GCD(e, eng.ReadData(bufAcc), 1), nil
}

// packedToRaw/rawToPacked round-trip the packed residue through the
// P2 checkpoint's float64 slot: this host engine keeps bufAcc in
// balanced-word form throughout the sweep rather than leaving it
// resident in frequency domain between blocks (DESIGN.md), so the
// "frequency-domain accumulator" the reference engine persists is,
// here, just the packed residue reinterpreted word-for-word.
func packedToRaw(words []uint32) []float64 {
	raw := make([]float64, len(words))
	for i, w := range words {
		raw[i] = float64(w)
	}
	return raw
}

func rawToPacked(raw []float64) []uint32 {
	words := make([]uint32, len(raw))
	for i, v := range raw {
		words[i] = uint32(v)
	}
	return words
}
