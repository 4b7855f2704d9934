package pm1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollGCDNotReadyThenReady(t *testing.T) {
	ch := dispatchGCD(11, []uint32{23}, 0)

	factor, ready := "", false
	for i := 0; i < 1000 && !ready; i++ {
		factor, ready = pollGCD(ch)
		if !ready {
			time.Sleep(time.Millisecond)
		}
	}
	require.True(t, ready)
	require.Equal(t, "23", factor)
}

func TestPollGCDNonBlockingOnEmptyChannel(t *testing.T) {
	ch := make(chan string)
	factor, ready := pollGCD(ch)
	require.False(t, ready)
	require.Empty(t, factor)
}
