// Package statlog is a periodic CSV stats logger, a direct
// generalization of the teacher's std/snmp.go SnmpLogger: instead of
// kcp.DefaultSnmp counters it appends a row of PRP/P-1 iteration
// counters every tick (SPEC_FULL §1 "Periodic stats log").
package statlog

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Snapshot is one row's worth of driver counters.
type Snapshot struct {
	K       uint32
	Res64   uint64
	USPerSq float64
	NErrors uint32
}

// Header is the CSV header row, matching Snapshot's field order.
var Header = []string{"Unix", "K", "Res64", "USPerSq", "NErrors"}

func (s Snapshot) toRow() []string {
	return []string{
		fmt.Sprint(time.Now().Unix()),
		fmt.Sprint(s.K),
		fmt.Sprintf("%016x", s.Res64),
		fmt.Sprintf("%.1f", s.USPerSq),
		fmt.Sprint(s.NErrors),
	}
}

// Run starts a ticker that, every interval, asks snapshot for the
// current counters and appends them as a CSV row to path (time-
// formatted exactly like the teacher's SnmpLogger). Run blocks until
// stop is closed; callers run it in its own goroutine.
func Run(path string, interval time.Duration, snapshot func() Snapshot, stop <-chan struct{}) {
	if path == "" || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := appendRow(path, snapshot()); err != nil {
				log.Println(err)
			}
		}
	}
}

// Live is a concurrency-safe holder a driver updates every block and
// the stats-log goroutine reads every tick, mirroring stopflag.Flag's
// single-field atomic-holder shape (internal/stopflag).
type Live struct {
	v atomic.Value // holds Snapshot
}

// NewLive returns a Live holder seeded with the zero Snapshot.
func NewLive() *Live {
	l := &Live{}
	l.v.Store(Snapshot{})
	return l
}

// Store records the driver's current counters. Safe to call from the
// driver's loop goroutine while Run's ticker goroutine reads Load.
func (l *Live) Store(s Snapshot) { l.v.Store(s) }

// Load returns the most recently stored Snapshot, or the zero value if
// Store has never been called.
func (l *Live) Load() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	s, _ := l.v.Load().(Snapshot)
	return s
}

func appendRow(path string, snap Snapshot) error {
	logdir, logfile := filepath.Split(path)
	f, err := os.OpenFile(logdir+time.Now().Format(logfile), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write(snap.toRow()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
