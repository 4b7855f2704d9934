package statlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunAppendsRowsUntilStopped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	stop := make(chan struct{})

	calls := 0
	snapshot := func() Snapshot {
		calls++
		return Snapshot{K: uint32(calls), Res64: 0x1, USPerSq: 12.5, NErrors: 0}
	}

	done := make(chan struct{})
	go func() {
		Run(path, 5*time.Millisecond, snapshot, stop)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2) // header + at least one data row
	require.Equal(t, Header, rows[0])
}

func TestRunNoopWithoutPathOrInterval(t *testing.T) {
	stop := make(chan struct{})
	close(stop)
	Run("", time.Second, func() Snapshot { return Snapshot{} }, stop)
	Run("/tmp/should-not-be-created-by-this-test.csv", 0, func() Snapshot { return Snapshot{} }, stop)
}

func TestLiveStoreLoad(t *testing.T) {
	live := NewLive()
	require.Equal(t, Snapshot{}, live.Load())

	live.Store(Snapshot{K: 7, Res64: 0xBEEF, USPerSq: 1.5, NErrors: 2})
	require.Equal(t, Snapshot{K: 7, Res64: 0xBEEF, USPerSq: 1.5, NErrors: 2}, live.Load())

	var nilLive *Live
	require.Equal(t, Snapshot{}, nilLive.Load())
}

func TestSnapshotToRowFormatting(t *testing.T) {
	row := Snapshot{K: 42, Res64: 0xABCD, USPerSq: 3.14159, NErrors: 7}.toRow()
	require.Len(t, row, 5)
	require.Equal(t, "42", row[1])
	require.Equal(t, "000000000000abcd", row[2])
	require.Equal(t, "3.1", row[3])
	require.Equal(t, "7", row[4])
}
