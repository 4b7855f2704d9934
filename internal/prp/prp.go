// Package prp implements the Gerbicz-checked PRP (probable prime)
// test driver (spec §4.4): it runs E modular squarings of the seed 3
// mod 2^E-1, verifies the computation with a Gerbicz check every
// blockSize^2 iterations, checkpoints on success, and rolls back on
// mismatch.
package prp

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/mersenne-go/prptool/internal/checkpoint"
	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/queue"
	"github.com/mersenne-go/prptool/internal/residue"
	"github.com/mersenne-go/prptool/internal/statlog"
	"github.com/mersenne-go/prptool/internal/stopflag"
	"github.com/mersenne-go/prptool/internal/transform"
)

// defaultBlockSize is the block length used when the caller doesn't
// set one; 10000 must be evenly divisible by it (§6 CLI surface).
const defaultBlockSize = 1000

// maxConsecutiveErrors is the number of back-to-back Gerbicz
// mismatches that turn a recoverable transient error into a fatal one
// (§7 "fatal after 3 consecutive failures").
const maxConsecutiveErrors = 3

// Options configures one PRP run.
type Options struct {
	FFTSizeHint   int32
	BlockSize     uint32
	Carry         transform.CarryMode
	CheckpointDir string
	LogStep       uint32
	Iters         uint32 // bounded benchmark run when nonzero; stop after this many squarings without deciding primality
	Profile       bool
	CudaYield     bool
	Stop          *stopflag.Flag
	Stats         *statlog.Live // updated every block, read by the -statlog ticker goroutine

	// fftOverride bypasses the production shape registry; it exists so
	// tests can drive the engine at exponents far below any registry
	// shape's floor (the floor is tuned for real Mersenne-sized work).
	// transform.New still enforces the bits-per-word band (§3) on the
	// override shape. Not settable from the CLI.
	fftOverride *fftplan.Config
}

// Result is isPrimePRP's return value.
type Result struct {
	IsPrime bool
	Res64   uint64
	NErrors uint32
	K       uint32
	Bounded bool // true when the run stopped at Options.Iters without reaching kEnd
}

// Run is the PRP driver entry point, isPrimePRP(E, args) from §4.4.
func Run(e uint32, opts Options) (Result, error) {
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = defaultBlockSize
	}
	if 10000%blockSize != 0 {
		return Result{}, errors.Errorf("prp: block size %d does not divide 10000", blockSize)
	}

	var cfg fftplan.Config
	if opts.fftOverride != nil {
		cfg = *opts.fftOverride
	} else {
		configs := fftplan.GenConfigs()
		var err error
		cfg, err = fftplan.Select(configs, e, opts.FFTSizeHint)
		if err != nil {
			return Result{}, errors.Wrap(err, "prp: selecting FFT shape")
		}
		if err := fftplan.ValidateBitsPerWord(e, cfg); err != nil {
			return Result{}, err
		}
	}

	q := queue.New(opts.Profile, opts.CudaYield)
	eng, err := transform.New(e, cfg, opts.Carry, q)
	if err != nil {
		return Result{}, errors.Wrap(err, "prp: building transform engine")
	}

	stop := opts.Stop
	if stop == nil {
		stop = stopflag.New()
	}

	nWords := (e + 31) / 32
	ckPath := checkpoint.PRPPath(opts.CheckpointDir, e)

	var data, check, base []int64
	var k, nErrors uint32

	base = eng.WriteData(seedPacked(3, nWords))

	if checkpoint.Exists(ckPath) {
		st, err := checkpoint.LoadPRP(ckPath, nWords)
		if err != nil {
			return Result{}, errors.Wrap(err, "prp: loading checkpoint")
		}
		if st.E != e {
			return Result{}, errors.Errorf("prp: checkpoint %s is for E=%d, requested E=%d", ckPath, st.E, e)
		}
		data = eng.WriteData(st.Data)
		check = eng.WriteData(st.Check)
		k = st.K
		blockSize = st.BlockSize
		nErrors = st.NErrors
		if got := eng.DataResidue(data); got != st.Res64 {
			return Result{}, errors.Errorf("prp: checkpoint %s residue mismatch: file says %016x, recomputed %016x", ckPath, st.Res64, got)
		}
		log.Printf("%d loaded checkpoint at k=%d, %d errors so far", e, k, nErrors)
	} else {
		data = append([]int64(nil), base...)
		check = append([]int64(nil), base...)
	}

	kEnd := e
	start := time.Now()
	startK := k
	lastLog := time.Now()
	blocksSinceCheck := uint32(0)
	nSeqErrors := 0

	for k < kEnd {
		thisBlock := blockSize
		if kEnd-k < thisBlock {
			thisBlock = kEnd - k
		}

		prevCheck := append([]int64(nil), check...)
		data = eng.ModSqLoop(data, thisBlock, false)
		k += thisBlock
		check = eng.ModMul(data, check, false)
		blocksSinceCheck++

		if opts.Stats != nil {
			elapsed := time.Since(start)
			var usPerSq float64
			if k > startK {
				usPerSq = float64(elapsed.Microseconds()) / float64(k-startK)
			}
			opts.Stats.Store(statlog.Snapshot{K: k, Res64: eng.DataResidue(data), USPerSq: usPerSq, NErrors: nErrors})
		}

		if opts.Iters != 0 && k-startK >= opts.Iters {
			res64 := eng.DataResidue(data)
			logLine(e, "", k, kEnd, start, res64)
			return Result{Res64: res64, K: k, NErrors: nErrors, Bounded: true}, nil
		}

		final := k == kEnd
		shouldVerify := blocksSinceCheck >= blockSize || final || blocksSinceCheck == 2 || stop.IsSet()

		if shouldVerify {
			aux := eng.ModSqLoop(prevCheck, thisBlock, false)
			longPath := eng.ModMul(base, aux, false)
			ok := eng.EqualNotZero(longPath, check)

			if ok {
				nSeqErrors = 0
				packedData := eng.ReadData(data)
				packedCheck := eng.ReadData(check)
				res64 := residue.ResidueFromPacked(packedData)
				st := checkpoint.PRPState{E: e, K: k, BlockSize: blockSize, Res64: res64, NErrors: nErrors, Data: packedData, Check: packedCheck}
				if err := checkpoint.SavePRP(ckPath, st); err != nil {
					return Result{}, errors.Wrap(err, "prp: saving checkpoint")
				}
				logLine(e, "OK", k, kEnd, start, res64)
			} else {
				nErrors++
				nSeqErrors++
				logLine(e, "EE", k, kEnd, start, eng.DataResidue(data))
				if nSeqErrors >= maxConsecutiveErrors {
					return Result{}, errors.Errorf("prp: %d consecutive Gerbicz check failures at k=%d, aborting", nSeqErrors, k)
				}
				st, err := checkpoint.LoadPRP(ckPath, nWords)
				if err != nil {
					return Result{}, errors.Wrap(err, "prp: no checkpoint to roll back to after check failure")
				}
				data = eng.WriteData(st.Data)
				check = eng.WriteData(st.Check)
				k = st.K
				blocksSinceCheck = 0
				continue
			}
			blocksSinceCheck = 0
		}

		if stop.IsSet() {
			log.Printf("%d stop requested at k=%d, checkpoint saved", e, k)
			return Result{K: k, NErrors: nErrors}, errStopped
		}

		if opts.LogStep != 0 && time.Since(lastLog) > 0 && k%opts.LogStep < thisBlock {
			logLine(e, "", k, kEnd, start, eng.DataResidue(data))
			lastLog = time.Now()
		}
	}

	isPrime := eng.IsEqual9(data)
	packed := eng.ReadData(data)
	if isPrime {
		residue.DivNine(e, packed)
	}
	res64 := residue.ResidueFromPacked(packed)
	status := "CC"
	if isPrime {
		status = "PP"
	}
	logLine(e, status, k, kEnd, start, res64)

	return Result{IsPrime: isPrime, Res64: res64, NErrors: nErrors, K: k}, nil
}

// errStopped is returned when a run exits cleanly because the caller
// requested a stop (§5 "Cancellation"); main treats it as a
// controlled, non-fatal shutdown.
var errStopped = errors.New("prp: stopped by request")

// ErrStopped reports whether err is the sentinel Run returns after an
// honored stop request.
func ErrStopped(err error) bool { return errors.Is(err, errStopped) }

// seedPacked builds the little-endian packed-word representation of a
// small integer seed (the PRP seed is 3, GLOSSARY).
func seedPacked(seed uint32, nWords uint32) []uint32 {
	packed := make([]uint32, nWords)
	packed[0] = seed
	return packed
}

// logLine renders one progress line in the §6 format: "<E> <status-2ch>
// <k> <pct>%; <us>/sq; ETA <d hh:mm>; <res64-hex>".
func logLine(e uint32, status string, k, kEnd uint32, start time.Time, res64 uint64) {
	elapsed := time.Since(start)
	pct := 100 * float64(k) / float64(kEnd)
	var usPerSq float64
	if k > 0 {
		usPerSq = float64(elapsed.Microseconds()) / float64(k)
	}
	remaining := time.Duration(usPerSq*float64(kEnd-k)) * time.Microsecond
	days := int(remaining.Hours()) / 24
	hh := int(remaining.Hours()) % 24
	mm := int(remaining.Minutes()) % 60
	log.Printf("%d %2s %d %.2f%%; %.0fus/sq; ETA %dd %02d:%02d; %016x",
		e, status, k, pct, usPerSq, days, hh, mm, res64)
}
