package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mersenne-go/prptool/internal/transform"
)

func TestParseCarryMode(t *testing.T) {
	require.Equal(t, transform.CarryLong, parseCarryMode("long"))
	require.Equal(t, transform.CarryShort, parseCarryMode("short"))
	require.Equal(t, transform.CarryAuto, parseCarryMode("auto"))
	require.Equal(t, transform.CarryAuto, parseCarryMode(""))
	require.Equal(t, transform.CarryAuto, parseCarryMode("bogus"))
}

func TestMin(t *testing.T) {
	require.Equal(t, 3, min(3, 5))
	require.Equal(t, 3, min(5, 3))
	require.Equal(t, 3, min(3, 3))
}
