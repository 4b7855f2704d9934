package stopflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagStartsCleared(t *testing.T) {
	require.False(t, New().IsSet())
}

func TestSetRaisesFlag(t *testing.T) {
	f := New()
	f.Set()
	require.True(t, f.IsSet())
}
