// Package avsync implements the A/V sync controller (C10): §4.8's delay
// shaping algorithm, given a decoded video frame's pts, the previous
// frame's pts (to derive the frame's own display duration), and the
// current master clock reading.
//
// There is no teacher code for this: e1z0-QAnotherRTSP has no audio/video
// sync at all (video free-runs off decode, audio plays whenever a packet
// decodes). The threshold-clamp/keep-long/double-short shaping and the
// video-only wall-clock pacemaker fallback are grounded on
// rinbarpen/multimedia's AVSync/AVClock pairing in
// _examples/original_source, adapted into the teacher's idiom: a small
// exported type returning a duration to sleep rather than sleeping
// itself, so the presentation loop (player's videoPresentLoop) stays in
// control of actually blocking.
package avsync

import (
	"math"
	"time"
)

// minDelay/maxDelay bound the per-frame delay threshold per §4.8:
// thr := clamp(delay, 0.04, 0.10) seconds.
const (
	minDelay = 0.04
	maxDelay = 0.10

	// giveUpDiff is §4.8's "|diff| >= 10s -> no correction" cutoff: once
	// the clocks have drifted this far apart (e.g. right after a seek
	// that hasn't settled yet), stop trying to chase it per-frame.
	giveUpDiff = 10.0

	// fallbackDelay is used when the gap between this frame's pts and
	// the previous one can't produce a sane base delay (first frame,
	// or a pts regression right after a seek).
	fallbackDelay = 1.0 / 25.0
)

// Controller holds the pacemaker state §4.8's video-only fallback needs
// (wall-clock elapsed time since the last call).
type Controller struct {
	lastPaceCall time.Time
	hasPaceCall  bool
}

// New returns a ready Controller.
func New() *Controller {
	return &Controller{}
}

// Evaluate implements §4.8's audio-master sync delay shaping:
//
//	delay := last_frame_duration_pts * tb   (derived from framePTS-prevFramePTS)
//	thr := clamp(delay, 0.04, 0.10)
//	diff := framePTS - masterClock
//	if |diff| < 10s:
//	  diff <= -thr                  -> delay := max(0, delay+diff)   (late: shorten)
//	  diff >= thr && delay > 0.10   -> delay := delay+diff           (early, already long: keep long)
//	  diff >= thr                   -> delay := 2*delay              (early, short: double)
//	else: no correction (give up chasing)
//
// The returned duration is how long the presentation loop should sleep
// before showing the frame.
func (c *Controller) Evaluate(framePTS, prevFramePTS, masterClock float64) time.Duration {
	delay := baseDelay(framePTS, prevFramePTS)
	diff := framePTS - masterClock

	if absFloat(diff) < giveUpDiff {
		thr := clamp(delay, minDelay, maxDelay)
		switch {
		case diff <= -thr:
			delay = maxFloat(0, delay+diff)
		case diff >= thr && delay > maxDelay:
			delay += diff
		case diff >= thr:
			delay *= 2
		}
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(math.Round(delay * float64(time.Second)))
}

// Pace is the video-only fallback (§4.8: no audio stream selected):
// delay := 1/frame_rate/speed - monotonic_elapsed_since_last_call,
// clamped to [0, +inf).
func (c *Controller) Pace(frameRate, speed float64) time.Duration {
	now := time.Now()
	var elapsed time.Duration
	if c.hasPaceCall {
		elapsed = now.Sub(c.lastPaceCall)
	}
	c.lastPaceCall = now
	c.hasPaceCall = true

	if frameRate <= 0 {
		frameRate = 1.0 / fallbackDelay
	}
	if speed <= 0 {
		speed = 1
	}

	target := time.Duration((1 / frameRate / speed) * float64(time.Second))
	delay := target - elapsed
	if delay < 0 {
		delay = 0
	}
	return delay
}

// baseDelay derives §4.8's last_frame_duration_pts * tb from the gap
// between this frame's pts and the previous one's, falling back to a
// sane constant when that gap is non-positive or implausibly large
// (first frame of a session, or right after a seek).
func baseDelay(framePTS, prevFramePTS float64) float64 {
	d := framePTS - prevFramePTS
	if d <= 0 || d > 1 {
		return fallbackDelay
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
