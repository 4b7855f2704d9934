// Package pm1 implements the P-1 factorization driver: stage 1
// (powersmooth exponentiation) and stage 2 (sparse prime-pair sweep),
// producing a GCD factor candidate (spec §4.5).
package pm1

import (
	"log"

	"github.com/pkg/errors"

	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/queue"
	"github.com/mersenne-go/prptool/internal/statlog"
	"github.com/mersenne-go/prptool/internal/stopflag"
	"github.com/mersenne-go/prptool/internal/transform"
)

// Options configures one P-1 run.
type Options struct {
	B1, B2        uint32
	FFTSizeHint   int32
	Carry         transform.CarryMode
	CheckpointDir string
	Profile       bool
	CudaYield     bool
	Stop          *stopflag.Flag
	Stats         *statlog.Live // updated every stage-1 bit / stage-2 group, read by the -statlog ticker goroutine

	// fftOverride bypasses the production shape registry, the same
	// test-only escape hatch prp.Options uses.
	fftOverride *fftplan.Config
}

// Result is the P-1 driver's outcome: Factor is the decimal factor
// found, or "" if none.
type Result struct {
	Factor string
}

// errStopped mirrors prp.errStopped: a controlled shutdown after a
// stop request, not a fatal error.
var errStopped = errors.New("pm1: stopped by request")

// ErrStopped reports whether err is the sentinel Run returns after an
// honored stop request.
func ErrStopped(err error) bool { return errors.Is(err, errStopped) }

// Run is the P-1 driver entry point (§4.5): stage 1 builds B =
// 3^K mod Mp and dispatches an async GCD against it; stage 2 sweeps
// the pair-cover plan over (B1, B2] accumulating into the stage-1
// residue, polling the stage-1 GCD every block.
func Run(e uint32, opts Options) (Result, error) {
	if opts.B2 < opts.B1 {
		return Result{}, errors.Errorf("pm1: B2 (%d) must be >= B1 (%d)", opts.B2, opts.B1)
	}

	if opts.Stop == nil {
		opts.Stop = stopflag.New()
	}

	var cfg fftplan.Config
	if opts.fftOverride != nil {
		cfg = *opts.fftOverride
	} else {
		configs := fftplan.GenConfigs()
		var err error
		cfg, err = fftplan.Select(configs, e, opts.FFTSizeHint)
		if err != nil {
			return Result{}, errors.Wrap(err, "pm1: selecting FFT shape")
		}
	}

	q := queue.New(opts.Profile, opts.CudaYield)
	eng, err := transform.New(e, cfg, opts.Carry, q)
	if err != nil {
		return Result{}, errors.Wrap(err, "pm1: building transform engine")
	}

	log.Printf("%d P1 starting B1=%d", e, opts.B1)
	base, gcdCh, err := runStage1(eng, e, opts.B1, opts)
	if err != nil {
		return Result{}, err
	}

	if opts.B2 <= opts.B1 {
		select {
		case factor := <-gcdCh:
			return Result{Factor: factor}, nil
		default:
			return Result{}, nil
		}
	}

	log.Printf("%d P2 starting B2=%d", e, opts.B2)
	factor, err := runStage2(eng, e, opts.B1, opts.B2, base, gcdCh, opts)
	if err != nil {
		return Result{}, err
	}
	if factor != "" {
		return Result{Factor: factor}, nil
	}

	select {
	case factor := <-gcdCh:
		return Result{Factor: factor}, nil
	default:
		return Result{}, nil
	}
}

// seedPacked builds the little-endian packed-word representation of a
// small integer seed.
func seedPacked(seed uint32, nWords uint32) []uint32 {
	packed := make([]uint32, nWords)
	packed[0] = seed
	return packed
}
