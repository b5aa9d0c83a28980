package player

import (
	"math"
	"sync/atomic"
)

// VideoSizeMode selects how resolveSize derives an output size from
// the decoded frame's native dimensions, supplementing the spec from
// rinbarpen/multimedia's Player.hpp sizing knobs.
type VideoSizeMode int

const (
	// VideoSizeKeepRawRatio scales to the requested box while preserving
	// the source's aspect ratio (letterboxing any mismatch).
	VideoSizeKeepRawRatio VideoSizeMode = iota
	// VideoSizeAutoFit stretches to exactly fill the requested box,
	// ignoring the source aspect ratio.
	VideoSizeAutoFit
	// VideoSizeSourceAspect keeps the requested width and derives height
	// from the SAR-adjusted source ratio so pixels are displayed square.
	VideoSizeSourceAspect
)

// VideoSize is the user-requested output box plus the derivation mode.
type VideoSize struct {
	Width  int
	Height int
	Mode   VideoSizeMode
}

// Config holds the playback knobs §4.9 describes as runtime-adjustable
// without tearing down the session: volume, mute, loop, speed, and the
// output video size. Each field uses an atomic-flavored store so any
// goroutine may call a setter while the decode/present loops read the
// live value without taking a lock, mirroring avclock's "racy by
// design, made safe with atomics" scalar clock. VideoSize is the
// exception: it is stored and resolveSize can apply it, but the video
// present loop converts every frame at its native size and does not
// read it.
type Config struct {
	volumeBits   atomic.Uint64
	speedBits    atomic.Uint64
	seekStepBits atomic.Uint64
	muted        atomic.Bool
	loop         atomic.Bool
	trackMode    atomic.Bool
	autoNext     atomic.Bool
	videoSize    atomic.Value // VideoSize
}

// NewConfig returns a Config at unity volume/speed, unmuted, not looping,
// with a 10s seek step and auto_read_next_media on (§6's defaults for a
// single-source/playlist session; track mode defaults off since it only
// applies to live sources).
func NewConfig() *Config {
	c := &Config{}
	c.volumeBits.Store(math.Float64bits(1.0))
	c.speedBits.Store(math.Float64bits(1.0))
	c.seekStepBits.Store(math.Float64bits(10.0))
	c.autoNext.Store(true)
	c.videoSize.Store(VideoSize{Mode: VideoSizeKeepRawRatio})
	return c
}

// Volume returns the current playback gain (unclamped; see SetVolume).
func (c *Config) Volume() float64 {
	return math.Float64frombits(c.volumeBits.Load())
}

// SetVolume sets playback gain. Per §4.9, values are not clamped here;
// audiosink.Sink clamps at the sample level when mixing.
func (c *Config) SetVolume(v float64) {
	c.volumeBits.Store(math.Float64bits(v))
}

// Speed returns the current playback speed multiplier (1.0 = normal).
func (c *Config) Speed() float64 {
	return math.Float64frombits(c.speedBits.Load())
}

// SetSpeed sets the playback speed multiplier.
func (c *Config) SetSpeed(v float64) {
	c.speedBits.Store(math.Float64bits(v))
}

// Muted reports whether audio output is currently silenced.
func (c *Config) Muted() bool {
	return c.muted.Load()
}

// SetMuted toggles audio silencing without discarding Volume.
func (c *Config) SetMuted(muted bool) {
	c.muted.Store(muted)
}

// Loop reports whether playback should restart at EOF instead of
// finishing (single-source loop, distinct from playlist looping).
func (c *Config) Loop() bool {
	return c.loop.Load()
}

// SetLoop toggles single-source looping.
func (c *Config) SetLoop(loop bool) {
	c.loop.Store(loop)
}

// SeekStep returns the relative-seek increment §6's LEFT/RIGHT events
// apply: seek(current -+ seek_step).
func (c *Config) SeekStep() float64 {
	return math.Float64frombits(c.seekStepBits.Load())
}

// SetSeekStep changes the relative-seek increment.
func (c *Config) SetSeekStep(v float64) {
	c.seekStepBits.Store(math.Float64bits(v))
}

// TrackMode reports whether live drop-to-latest framing (§4.8's "Track
// mode (live)") is enabled. Only meaningful for network/device sources.
func (c *Config) TrackMode() bool {
	return c.trackMode.Load()
}

// SetTrackMode toggles track mode.
func (c *Config) SetTrackMode(v bool) {
	c.trackMode.Store(v)
}

// AutoReadNext reports whether reaching FINISHED should automatically
// advance to the next playlist item (§6's auto_read_next_media).
func (c *Config) AutoReadNext() bool {
	return c.autoNext.Load()
}

// SetAutoReadNext toggles automatic playlist advancement.
func (c *Config) SetAutoReadNext(v bool) {
	c.autoNext.Store(v)
}

// VideoSize returns the current output size request.
func (c *Config) VideoSize() VideoSize {
	return c.videoSize.Load().(VideoSize)
}

// SetVideoSize updates the output size request.
func (c *Config) SetVideoSize(size VideoSize) {
	c.videoSize.Store(size)
}

// resolveSize derives the actual output width/height from a decoded
// frame's native size and sample aspect ratio, per the requested
// VideoSize's mode. sarNum/sarDen of 0 is treated as 1:1 (square
// pixels), matching ffmpeg's own convention for an absent SAR.
func resolveSize(size VideoSize, nativeW, nativeH, sarNum, sarDen int) (int, int) {
	if size.Width <= 0 || size.Height <= 0 {
		return adjustForSAR(nativeW, nativeH, sarNum, sarDen)
	}

	switch size.Mode {
	case VideoSizeAutoFit:
		return size.Width, size.Height
	case VideoSizeSourceAspect:
		w, h := adjustForSAR(nativeW, nativeH, sarNum, sarDen)
		if w == 0 || h == 0 {
			return size.Width, size.Height
		}
		scale := float64(size.Width) / float64(w)
		return size.Width, int(float64(h) * scale)
	default: // VideoSizeKeepRawRatio
		w, h := adjustForSAR(nativeW, nativeH, sarNum, sarDen)
		if w == 0 || h == 0 {
			return size.Width, size.Height
		}
		wf := float64(size.Width) / float64(w)
		hf := float64(size.Height) / float64(h)
		scale := wf
		if hf < wf {
			scale = hf
		}
		return int(float64(w) * scale), int(float64(h) * scale)
	}
}

// adjustForSAR stretches width by the stream's sample aspect ratio so
// non-square pixels (common in broadcast/DVD sources) display correctly.
func adjustForSAR(w, h, sarNum, sarDen int) (int, int) {
	if sarNum <= 0 || sarDen <= 0 || sarNum == sarDen {
		return w, h
	}
	return int(float64(w) * float64(sarNum) / float64(sarDen)), h
}
