package prp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/transform"
)

// M127 = 2^127-1 is prime: the PRP test must report PP with the
// well-known pre/post-div9 residues (§8 end-to-end scenario 1). The
// production FFT registry only enumerates shapes far larger than this
// toy exponent needs, so the test drives the engine directly under a
// small custom shape via the unexported fftOverride hook — the final
// residue is a pure number-theoretic quantity and does not depend on
// which valid FFT size computed it.
func TestPRPKnownPrimeM127(t *testing.T) {
	result, err := Run(127, Options{
		BlockSize:     50,
		Carry:         transform.CarryAuto,
		CheckpointDir: t.TempDir(),
		fftOverride:   &fftplan.Config{Width: 4, Height: 4, Middle: 1},
	})
	require.NoError(t, err)
	require.True(t, result.IsPrime)
	require.EqualValues(t, 1, result.Res64)
	require.Zero(t, result.NErrors)
	require.EqualValues(t, 127, result.K)
}

// E=241 is composite (§8 scenario 3); the run must report CC with no
// Gerbicz errors.
func TestPRPKnownCompositeM241(t *testing.T) {
	result, err := Run(241, Options{
		Carry:         transform.CarryAuto,
		CheckpointDir: t.TempDir(),
		fftOverride:   &fftplan.Config{Width: 8, Height: 8, Middle: 1},
	})
	require.NoError(t, err)
	require.False(t, result.IsPrime)
	require.Zero(t, result.NErrors)
}

// A run interrupted mid-flight by the -iters bound, then resumed from
// its last checkpoint, must reach the same final residue as an
// uninterrupted run (§8 "Laws": checkpoint/reload determinism).
func TestPRPResumeMatchesUninterrupted(t *testing.T) {
	shape := &fftplan.Config{Width: 4, Height: 4, Middle: 1}

	full, err := Run(127, Options{BlockSize: 10, Carry: transform.CarryAuto, CheckpointDir: t.TempDir(), fftOverride: shape})
	require.NoError(t, err)

	resumeDir := t.TempDir()
	partial, err := Run(127, Options{BlockSize: 10, Carry: transform.CarryAuto, CheckpointDir: resumeDir, fftOverride: shape, Iters: 60})
	require.NoError(t, err)
	require.True(t, partial.Bounded)
	require.Less(t, partial.K, uint32(127))

	resumed, err := Run(127, Options{BlockSize: 10, Carry: transform.CarryAuto, CheckpointDir: resumeDir, fftOverride: shape})
	require.NoError(t, err)

	require.Equal(t, full.Res64, resumed.Res64)
	require.Equal(t, full.IsPrime, resumed.IsPrime)
}
