package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunExecutesWorkSynchronously(t *testing.T) {
	q := New(false, false)
	ran := false
	q.Run("stage", func() { ran = true })
	require.True(t, ran)
	require.Empty(t, q.Profile())
}

func TestRunAccumulatesProfileWhenEnabled(t *testing.T) {
	q := New(true, false)
	q.Run("square", func() { time.Sleep(time.Millisecond) })
	q.Run("square", func() { time.Sleep(time.Millisecond) })
	q.Run("carry", func() {})

	entries := q.Profile()
	require.Len(t, entries, 2)

	byName := map[string]ProfileEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	require.EqualValues(t, 2, byName["square"].Info.N)
	require.EqualValues(t, 1, byName["carry"].Info.N)
	require.Greater(t, byName["square"].Info.Total, time.Duration(0))
}

func TestProfileSortedDescendingByTotal(t *testing.T) {
	q := New(true, false)
	q.Run("slow", func() { time.Sleep(3 * time.Millisecond) })
	q.Run("fast", func() { time.Sleep(time.Millisecond) })

	entries := q.Profile()
	require.Len(t, entries, 2)
	require.Equal(t, "slow", entries[0].Name)
	require.Equal(t, "fast", entries[1].Name)
}

func TestClearProfile(t *testing.T) {
	q := New(true, false)
	q.Run("stage", func() {})
	require.NotEmpty(t, q.Profile())

	q.ClearProfile()
	require.Empty(t, q.Profile())
}

func TestFinishIsNoopWithoutCudaYield(t *testing.T) {
	q := New(false, false)
	q.Finish() // must not block or panic
}

func TestFinishPollsWithCudaYield(t *testing.T) {
	q := New(false, true)
	done := make(chan struct{})
	go func() {
		q.Finish()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Finish with CudaYield did not return")
	}
}
