// Package stopflag provides the small process-wide stop-flag
// abstraction spec §9 maps the reference engine's SIGINT handler and
// singleton logger patterns onto: "explicit context passed into
// drivers plus a small process-wide stop-flag abstraction."
package stopflag

import "sync/atomic"

// Flag is a concurrency-safe boolean a signal handler sets and driver
// loops poll at block boundaries (§5 "Cancellation").
type Flag struct {
	v atomic.Bool
}

// New returns a cleared Flag.
func New() *Flag { return &Flag{} }

// Set raises the flag. Safe to call from a signal handler goroutine.
func (f *Flag) Set() { f.v.Store(true) }

// IsSet reports whether the flag has been raised.
func (f *Flag) IsSet() bool { return f.v.Load() }
