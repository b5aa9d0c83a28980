// Package avclock implements the media clock described in §4.2: a single
// scalar in seconds, written by exactly one stage and read by the sync
// controller without a lock. The value is stored through an atomic, so a
// read never tears and never blocks the writer, though it may be one
// update stale; the type exists mainly to name the concept and keep call
// sites uniform.
package avclock

import (
	"math"
	"sync/atomic"
)

// Clock holds a monotonically-intended "stream time in seconds". Only the
// stage that owns a given Clock (e.g. audio presentation owns the audio
// clock, video decode owns the video clock) calls Set.
type Clock struct {
	bits atomic.Uint64
}

// New creates a Clock reset to zero.
func New() *Clock {
	return &Clock{}
}

// Get returns the current value in seconds.
func (c *Clock) Get() float64 {
	return math.Float64frombits(c.bits.Load())
}

// Set stores pts (seconds) as the new clock value.
func (c *Clock) Set(pts float64) {
	c.bits.Store(math.Float64bits(pts))
}

// Reset sets the clock back to zero.
func (c *Clock) Reset() {
	c.Set(0)
}
