// Package queue models the single in-order command queue the engine
// submits transform kernels to (§5). This module's transform engine
// runs on the host CPU rather than a GPU, so Queue executes work
// synchronously; it still carries the per-kernel profiling and
// cuYield-finish hooks from the reference design so a GPU-backed
// implementation of the same interface has a defined place to plug in
// (SPEC_FULL §1, Design Notes).
package queue

import (
	"sort"
	"time"
)

// TimeInfo accumulates total wall time and call count for one kernel
// name, mirroring the reference Queue's TimeInfo.
type TimeInfo struct {
	Total time.Duration
	N     uint32
}

func (t *TimeInfo) add(d time.Duration, n uint32) {
	t.Total += d
	t.N += n
}

func (t *TimeInfo) clear() { *t = TimeInfo{} }

// ProfileEntry is one row of a Queue.Profile() report.
type ProfileEntry struct {
	Name string
	Info TimeInfo
}

// Queue serializes kernel invocations and optionally times them.
// CudaYield selects the finish() strategy: when true, Finish polls
// completion with a short sleep instead of blocking outright — the
// NVIDIA OpenCL driver workaround from the reference implementation
// (§5 "cuYield mode").
type Queue struct {
	Profiling bool
	CudaYield bool

	timeMap map[string]*TimeInfo
	pending int // outstanding "events" since the last Finish
}

// New creates a Queue with the given profiling and cuYield settings.
func New(profiling, cudaYield bool) *Queue {
	return &Queue{
		Profiling: profiling,
		CudaYield: cudaYield,
		timeMap:   make(map[string]*TimeInfo),
	}
}

// Run submits one named unit of kernel work and executes it. Kernel
// submission and execution are the same step in this CPU-backed
// queue; Profiling, when enabled, records the wall time spent.
func (q *Queue) Run(name string, fn func()) {
	if !q.Profiling {
		fn()
		return
	}
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	ti, ok := q.timeMap[name]
	if !ok {
		ti = &TimeInfo{}
		q.timeMap[name] = ti
	}
	ti.add(elapsed, 1)
	q.pending++
}

// allEventsCompleted reports whether the queue has outstanding async
// work. This backend executes synchronously inside Run, so it is
// always true; CudaYield's poll loop below degenerates to a single
// check, preserving the shape of the reference finish() for a future
// asynchronous backend.
func (q *Queue) allEventsCompleted() bool { return true }

// Finish fences the queue. With CudaYield set it polls
// allEventsCompleted with a 500us sleep between checks instead of
// blocking outright (§5); otherwise it is a no-op, since Run already
// executed all submitted work synchronously.
func (q *Queue) Finish() {
	if !q.CudaYield {
		return
	}
	for !q.allEventsCompleted() {
		time.Sleep(500 * time.Microsecond)
	}
	q.pending = 0
}

// Profile returns the accumulated per-kernel timings sorted by total
// time descending, matching Queue::getProfile/TimeInfo::operator<.
func (q *Queue) Profile() []ProfileEntry {
	entries := make([]ProfileEntry, 0, len(q.timeMap))
	for name, ti := range q.timeMap {
		entries = append(entries, ProfileEntry{Name: name, Info: *ti})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Info.Total > entries[j].Info.Total
	})
	return entries
}

// ClearProfile drops all accumulated timing data.
func (q *Queue) ClearProfile() {
	q.timeMap = make(map[string]*TimeInfo)
	q.pending = 0
}
