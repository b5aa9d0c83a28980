// Package audiosink implements the audio presentation stage (C8, §4.7):
// a pull sink that an audio API's callback thread drains through
// io.Reader, backed by internal/ringbuffer, applying volume/mute mixing
// on the way in and advancing the audio clock on the way out.
//
// Grounded on e1z0-QAnotherRTSP/src/audio.go's global oto.Context plus
// the per-camera io.Pipe wiring in video.go's decode loop: the teacher
// writes decoded PCM straight into an io.PipeWriter feeding one
// oto.Player. Sink generalizes that into a single long-lived player per
// stream, fed through a RingBuffer instead of an unbounded pipe so a
// stalled decoder degrades to silence instead of an ever-growing buffer,
// and adds the volume/mute mixing and clock bookkeeping the teacher
// (a silent camera viewer) never needed.
package audiosink

import (
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/dvorak-labs/avplayer/internal/avclock"
	"github.com/dvorak-labs/avplayer/internal/ringbuffer"
)

// bytesPerSample16 is the frame size of a single S16LE sample on one
// channel; the sink only ever presents signed 16-bit PCM, matching the
// teacher's oto.FormatSignedInt16LE context and §6's audio API contract.
const bytesPerSample16 = 2

// Sink is a pull-model audio presenter: Push appends decoded PCM (after
// volume/mute mixing), and the audio API's own callback thread drains it
// through Read. It implements io.Reader for exactly that reason.
type Sink struct {
	mu sync.Mutex

	rb         *ringbuffer.RingBuffer
	clock      *avclock.Clock
	sampleRate int
	channels   int

	volume float64
	muted  bool

	bytesConsumed int64

	// anchorPTS/anchorBytes pin the clock to the most recently pushed
	// frame's presentation timestamp, per §4.7: audio_clock :=
	// frame.pts*time_base + nb_samples/sample_rate. anchorBytes is the
	// bytesConsumed count as of that Push, so Read can derive "how many
	// seconds of this frame (and anything pushed after it) have since
	// been pulled" from bytes alone.
	anchorPTS   float64
	anchorBytes int64
}

// New creates a Sink backed by a ring buffer sized for bufferSeconds of
// audio at sampleRate/channels, reporting presented playback position
// into clock.
func New(clock *avclock.Clock, sampleRate, channels int, bufferSeconds float64) *Sink {
	capacity := int(float64(sampleRate*channels*bytesPerSample16) * bufferSeconds)
	if capacity < bytesPerSample16 {
		capacity = bytesPerSample16
	}
	return &Sink{
		rb:         ringbuffer.New(capacity),
		clock:      clock,
		sampleRate: sampleRate,
		channels:   channels,
		volume:     1.0,
	}
}

// NewPlayer wires this Sink as the io.Reader behind a single oto.Player,
// the same pattern the teacher uses per camera (ctx.NewPlayer(pipeReader))
// except the Sink itself is the reader, not a pipe.
func (s *Sink) NewPlayer(ctx *oto.Context) oto.Player {
	return ctx.NewPlayer(s)
}

// SetVolume sets playback gain in [0, 2]; 1.0 is unity. Values above 1.0
// amplify and may clip, matching §4.9's "volume is an unclamped scalar"
// note.
func (s *Sink) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

// SetMuted toggles silence without discarding the configured volume, so
// unmuting restores the prior level.
func (s *Sink) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// Push mixes pcm (signed 16-bit little-endian, interleaved) by the
// current volume/mute state and appends it to the ring buffer. framePTS
// is the presentation timestamp, in seconds, of the first sample in pcm.
//
// Per §4.7: at unity volume and unmuted, no mixing touches the bytes at
// all (a straight copy), matching the teacher's direct pipe write; any
// other volume/mute state requires a sample-aware scale pass.
func (s *Sink) Push(pcm []byte, framePTS float64) {
	s.mu.Lock()
	volume, muted := s.volume, s.muted
	s.anchorPTS = framePTS
	s.anchorBytes = s.bytesConsumed
	s.mu.Unlock()

	if muted {
		silence := make([]byte, len(pcm))
		s.rb.Fill(silence)
		return
	}
	if volume == 1.0 {
		s.rb.Fill(pcm)
		return
	}
	s.rb.Fill(scaleS16(pcm, volume))
}

// scaleS16 multiplies every signed 16-bit little-endian sample in pcm by
// factor, clamping to the format's range.
func scaleS16(pcm []byte, factor float64) []byte {
	out := make([]byte, len(pcm))
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		scaled := float64(sample) * factor
		switch {
		case scaled > 32767:
			scaled = 32767
		case scaled < -32768:
			scaled = -32768
		}
		v := uint16(int16(scaled))
		out[i] = byte(v)
		out[i+1] = byte(v >> 8)
	}
	return out
}

// Read implements io.Reader for the audio API's pull callback. When the
// ring buffer underruns (decode fell behind), the remainder of p is
// filled with silence rather than blocking the callback thread, which
// would otherwise stall the whole presentation pipeline.
func (s *Sink) Read(p []byte) (int, error) {
	n := s.rb.Extract(p, len(p))
	if n < len(p) {
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
	}

	s.mu.Lock()
	s.bytesConsumed += int64(len(p))
	consumed := s.bytesConsumed
	buffered := s.rb.Readable()
	anchorPTS := s.anchorPTS
	anchorBytes := s.anchorBytes
	s.mu.Unlock()

	bytesPerSec := float64(s.sampleRate * s.channels * bytesPerSample16)
	if bytesPerSec <= 0 {
		return len(p), nil
	}

	// Anchor on the last pushed frame's pts and add how many bytes of it
	// (and anything pushed after it) have since been pulled, per §4.7's
	// frame.pts + nb_samples/sample_rate. The presented position still
	// lags the bytes we've handed the audio API by whatever it and our
	// own ring buffer are still holding onto; we only observe our own
	// buffered bytes, so that correction is applied twice (once for us,
	// once as a stand-in for the audio API's internal buffer) as a
	// deliberately approximate fudge; see the audio clock accuracy note
	// in the design ledger.
	presentedSeconds := anchorPTS + float64(consumed-anchorBytes)/bytesPerSec - 2*float64(buffered)/bytesPerSec
	if presentedSeconds < 0 {
		presentedSeconds = 0
	}
	s.clock.Set(presentedSeconds)

	return len(p), nil
}

// Buffered returns how many PCM bytes are queued but not yet pulled.
func (s *Sink) Buffered() int {
	return s.rb.Readable()
}
