package pm1

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/mersenne-go/prptool/internal/checkpoint"
	"github.com/mersenne-go/prptool/internal/gcdutil"
	"github.com/mersenne-go/prptool/internal/statlog"
	"github.com/mersenne-go/prptool/internal/transform"
)

// saveInterval is how often stage 1 checkpoints on wall-clock time,
// besides at shutdown and on the final bit (§4.5).
const saveInterval = 300 * time.Second

// runStage1 computes B = 3^K mod Mp where K is the powersmooth,
// Suyama-embedded exponent for B1 (§4.5), resuming from a P1
// checkpoint when present. It returns the resulting residue (the
// "base" stage 2 builds its squaring sets from) plus an in-flight GCD
// check against that residue.
func runStage1(eng *transform.Engine, e, b1 uint32, opts Options) ([]int64, <-chan string, error) {
	bits := gcdutil.PowerSmoothBitsMSB(e, b1)
	nBits := uint32(len(bits))
	nWords := (e + 31) / 32

	ckPath := checkpoint.P1Path(opts.CheckpointDir, e)

	var data []int64
	var k uint32

	if checkpoint.Exists(ckPath) {
		st, err := checkpoint.LoadP1(ckPath, nWords)
		if err != nil {
			return nil, nil, errors.Wrap(err, "pm1: loading stage-1 checkpoint")
		}
		if st.E != e || st.B1 != b1 || st.NBits != nBits {
			return nil, nil, errors.Errorf("pm1: stage-1 checkpoint %s does not match E=%d B1=%d", ckPath, e, b1)
		}
		data = eng.WriteData(st.Data)
		k = st.K
		log.Printf("%d P1 resumed at bit %d/%d", e, k, nBits)
	} else {
		data = eng.WriteData(seedPacked(3, nWords))
		k = 1 // bit 0 (the guaranteed leading 1) is consumed by the initial seed value
	}

	lastSave := time.Now()
	for ; k < nBits; k++ {
		data = eng.ModSq(data, bits[k])

		if opts.Stats != nil {
			opts.Stats.Store(statlog.Snapshot{K: k, Res64: eng.DataResidue(data)})
		}

		final := k == nBits-1
		if opts.Stop.IsSet() || time.Since(lastSave) >= saveInterval || final {
			st := checkpoint.P1State{E: e, B1: b1, K: k + 1, NBits: nBits, Data: eng.ReadData(data)}
			if err := checkpoint.SaveP1(ckPath, st); err != nil {
				return nil, nil, errors.Wrap(err, "pm1: saving stage-1 checkpoint")
			}
			lastSave = time.Now()
			log.Printf("%d P1 %d/%d", e, k+1, nBits)
			if opts.Stop.IsSet() && !final {
				return nil, nil, errStopped
			}
		}
	}

	packed := eng.ReadData(data)
	gcdCh := dispatchGCD(e, packed, 1)
	return data, gcdCh, nil
}
