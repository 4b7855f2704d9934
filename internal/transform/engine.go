package transform

import (
	"fmt"

	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/queue"
	"github.com/mersenne-go/prptool/internal/residue"
	"github.com/mersenne-go/prptool/internal/weights"
)

// CarryMode selects how the engine budgets carry propagation headroom,
// mirroring the -carry {auto,short,long} CLI flag (§6).
type CarryMode int

const (
	CarryAuto CarryMode = iota
	CarryShort
	CarryLong
)

// Engine holds one exponent's transform plan, weight tables, and the
// command queue its kernels are submitted through (spec §4.3, the
// "Transform engine" component). A driver (PRP or P−1) owns one Engine
// per run and threads its own work buffers through the engine's
// methods; the engine itself carries no per-iteration state.
type Engine struct {
	E uint32
	N uint32 // 2*W*H, total balanced-word vector length
	W uint32
	H uint32
	NW uint32

	UseLongCarry bool

	tab weights.Tables
	q   *queue.Queue
}

// New builds an Engine for exponent e under FFT shape cfg, validating
// the bits-per-word band before doing any table generation (§4.1, §7
// "fatal at startup").
func New(e uint32, cfg fftplan.Config, mode CarryMode, q *queue.Queue) (*Engine, error) {
	if cfg.Middle != 1 {
		return nil, fmt.Errorf("transform: MIDDLE != 1 shapes are not supported by this host engine")
	}
	if err := fftplan.ValidateBitsPerWord(e, cfg); err != nil {
		return nil, err
	}

	bpw := fftplan.BitsPerWord(e, cfg)
	useLong := mode == CarryLong || (mode == CarryAuto && (bpw < 14.5 || cfg.Width >= 2048))

	return &Engine{
		E:            e,
		N:            cfg.FFTSize(),
		W:            cfg.Width,
		H:            cfg.Height,
		NW:           fftplan.NW(cfg.Width),
		UseLongCarry: useLong,
		tab:          weights.Generate(e, cfg.Width, cfg.Height, fftplan.NW(cfg.Width)),
		q:            q,
	}, nil
}

// WriteData expands a packed residue into a fresh balanced-word
// vector ready for the transform pipeline (the writeData() path).
func (e *Engine) WriteData(packed []uint32) []int64 {
	return residue.ExpandBits(packed, e.N, e.E)
}

// ReadData compacts a balanced-word vector back into its packed
// residue form (the readData()/readCheck() path).
func (e *Engine) ReadData(io []int64) []uint32 {
	return residue.CompactBits(io, e.N, e.E)
}

// DataResidue returns the low 64 bits of io's represented integer,
// the value every periodic progress log line reports (§7).
func (e *Engine) DataResidue(io []int64) uint64 {
	return residue.Res64(io, e.N, e.E)
}

// EqualNotZero reports whether a and b represent the same nonzero
// integer mod 2^E-1 — the Gerbicz check's "bufCheck == bufAux and the
// result didn't collapse to zero" comparison (§4.4, §8 invariant 1).
func (e *Engine) EqualNotZero(a, b []int64) bool {
	pa, pb := e.ReadData(a), e.ReadData(b)
	zero := true
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
		if pa[i] != 0 {
			zero = false
		}
	}
	return !zero
}

// IsEqual9 reports whether io represents the literal value 9 (§4.4
// "equals9", the strong Fermat base-3 PRP success condition).
func (e *Engine) IsEqual9(io []int64) bool {
	return residue.Equals9(e.ReadData(io))
}

// run submits one named pipeline stage through the engine's queue,
// so Queue.Profile() reports per-stage timings exactly as it does for
// the reference engine's OpenCL kernels.
func (e *Engine) run(name string, fn func()) {
	e.q.Run(name, fn)
}
