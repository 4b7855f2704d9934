package fftplan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenConfigsSortedAscendingBySize(t *testing.T) {
	configs := GenConfigs()
	require.Len(t, configs, 25) // 5 widths x 5 heights

	for i := 1; i < len(configs); i++ {
		require.LessOrEqual(t, configs[i-1].FFTSize(), configs[i].FFTSize())
	}
}

func TestSelectDefaultPicksSmallestThatFits(t *testing.T) {
	configs := GenConfigs()
	cfg, err := Select(configs, 80000000, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, cfg.MaxExp(), uint32(80000000))

	// the immediately smaller config (by FFTSize, in the sorted order)
	// must NOT fit this exponent, otherwise Select didn't pick the
	// smallest one.
	idx := -1
	for i, c := range configs {
		if c == cfg {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	if idx > 0 {
		require.Less(t, configs[idx-1].MaxExp(), uint32(80000000))
	}
}

func TestSelectDeltaShiftsFromDefault(t *testing.T) {
	configs := GenConfigs()
	base, err := Select(configs, 80000000, 0)
	require.NoError(t, err)
	plusOne, err := Select(configs, 80000000, 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, plusOne.FFTSize(), base.FFTSize())

	minusOne, err := Select(configs, 80000000, -1)
	require.NoError(t, err)
	require.Less(t, minusOne.FFTSize(), base.FFTSize())
}

func TestSelectExplicitSizePicksFirstThatFits(t *testing.T) {
	configs := GenConfigs()
	cfg, err := Select(configs, 1, 1048576) // 1M
	require.NoError(t, err)
	require.GreaterOrEqual(t, cfg.FFTSize(), uint32(1048576))
}

func TestSelectClampsDeltaAtRegistryBounds(t *testing.T) {
	configs := GenConfigs()
	cfg, err := Select(configs, 1, -100)
	require.NoError(t, err)
	require.Equal(t, configs[0], cfg)

	cfg, err = Select(configs, configs[len(configs)-1].MaxExp(), 9)
	require.NoError(t, err)
	require.Equal(t, configs[len(configs)-1], cfg)
}

func TestValidateBitsPerWordBand(t *testing.T) {
	cfg := Config{Width: 4096, Height: 4096, Middle: 1} // N = 33,554,432

	require.NoError(t, ValidateBitsPerWord(cfg.FFTSize()*2, cfg))   // bpw=2, in band
	require.Error(t, ValidateBitsPerWord(1, cfg))                   // far too many words, bpw << 1.5
	require.Error(t, ValidateBitsPerWord(cfg.FFTSize()*30, cfg))    // bpw=30, over 20
}

func TestNWFixedForBigPowerShapes(t *testing.T) {
	require.EqualValues(t, 4, NW(256))
	require.EqualValues(t, 4, NW(1024))
	require.EqualValues(t, 8, NW(512))
	require.EqualValues(t, 8, NW(2048))
}

func TestSpecFormatting(t *testing.T) {
	require.Equal(t, "512x1024", Config{Width: 512, Height: 1024, Middle: 1}.Spec())
	require.Equal(t, "512x2x1024", Config{Width: 512, Height: 1024, Middle: 2}.Spec())
}
