// Package pipeline implements the demux and decode stages (§4.5-§4.7):
// one goroutine reading packets out of a mediaio.Source and routing them
// by stream index into per-kind packet queues, and one decode worker per
// selected stream draining its packet queue into a frame queue.
//
// Grounded on e1z0-QAnotherRTSP/src/video.go's openAndDecode read loop:
// the ReadFrame/errors.Is(io.EOF)/stall-watchdog shape is kept, but
// generalized from "one hardcoded video+audio pair wired straight to a
// frame buffer and an Oto pipe" into queue-fed stages so the sync
// controller (avsync) can sit between decode and presentation.
package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	astiav "github.com/asticode/go-astiav"

	"github.com/dvorak-labs/avplayer/internal/avlog"
	"github.com/dvorak-labs/avplayer/internal/avqueue"
	"github.com/dvorak-labs/avplayer/internal/mediaio"
)

// stallCutoff mirrors the teacher's openAndDecode watchdog: if no packet
// has been read in this long, the demuxer gives up and reports an error
// rather than spinning on a dead connection forever.
const stallCutoff = 10 * time.Second

// Demuxer owns the read side of one Source: it pulls packets and routes
// them into the video/audio packet queues by stream index (§4.5 step 6).
// Either queue may be nil if that kind was not selected on Open.
type Demuxer struct {
	src        *mediaio.Source
	videoQueue *avqueue.Queue[*astiav.Packet]
	audioQueue *avqueue.Queue[*astiav.Packet]

	seekRequests chan float64
	stop         chan struct{}

	atEOF atomic.Bool
}

// NewDemuxer builds a Demuxer over src, routing into videoQueue/audioQueue.
func NewDemuxer(src *mediaio.Source, videoQueue, audioQueue *avqueue.Queue[*astiav.Packet]) *Demuxer {
	return &Demuxer{
		src:          src,
		videoQueue:   videoQueue,
		audioQueue:   audioQueue,
		seekRequests: make(chan float64, 1),
		stop:         make(chan struct{}),
	}
}

// RequestSeek schedules a seek to targetSeconds, coalescing with any
// pending seek not yet serviced (§4.5 step 2: "a later seek overrides an
// earlier unserviced one").
func (d *Demuxer) RequestSeek(targetSeconds float64) {
	for {
		select {
		case d.seekRequests <- targetSeconds:
			return
		default:
		}
		select {
		case <-d.seekRequests:
		default:
		}
	}
}

// Stop signals Run to return at the next opportunity.
func (d *Demuxer) Stop() {
	close(d.stop)
}

// AtEOF reports whether the demuxer has hit a clean end-of-stream and is
// currently parked waiting for a seek or Stop, per §4.5 step 4. The
// video presentation loop polls this to decide when "not streaming" in
// §4.8's abort check holds.
func (d *Demuxer) AtEOF() bool {
	return d.atEOF.Load()
}

// Run reads packets until a stop signal or an unrecoverable read error,
// routing each to the matching queue and discarding any packet belonging
// to a stream neither queue cares about. At a clean EOF it parks until a
// seek or Stop arrives.
func (d *Demuxer) Run() error {
	pkt := astiav.AllocPacket()
	defer pkt.Free()

	lastProgress := time.Now()

	for {
		select {
		case <-d.stop:
			return nil
		case target := <-d.seekRequests:
			d.atEOF.Store(false)
			if err := d.doSeek(target); err != nil {
				avlog.Warnf("pipeline: seek to %.3fs failed: %v", target, err)
			}
			lastProgress = time.Now()
			continue
		default:
		}

		ok, err := d.src.ReadPacket(pkt)
		if err != nil {
			if time.Since(lastProgress) > stallCutoff {
				return fmt.Errorf("pipeline: stalled (no progress for %s): %w", stallCutoff, err)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if !ok {
			// Clean EOF: park until a seek (replay) or Stop arrives,
			// per §4.9's replay/seek-after-finish semantics.
			d.atEOF.Store(true)
			select {
			case <-d.stop:
				return nil
			case target := <-d.seekRequests:
				d.atEOF.Store(false)
				if err := d.doSeek(target); err != nil {
					avlog.Warnf("pipeline: seek to %.3fs failed: %v", target, err)
				}
				lastProgress = time.Now()
				continue
			}
		}

		d.route(pkt)
		pkt.Unref()
		lastProgress = time.Now()
	}
}

// route pushes a new reference to pkt's data onto the matching output
// queue; the consumer owns that new packet and must Unref+Free it after
// decode. It returns false if the packet's stream has no destination
// queue. pkt keeps its own reference either way, which the caller drops.
func (d *Demuxer) route(pkt *astiav.Packet) bool {
	si := pkt.StreamIndex()
	switch {
	case d.videoQueue != nil && si == d.src.VideoStreamIndex():
		owned := astiav.AllocPacket()
		if err := owned.Ref(pkt); err != nil {
			owned.Free()
			return false
		}
		if !d.videoQueue.Push(owned) {
			owned.Unref()
			owned.Free()
		}
		return true
	case d.audioQueue != nil && si == d.src.AudioStreamIndex():
		owned := astiav.AllocPacket()
		if err := owned.Ref(pkt); err != nil {
			owned.Free()
			return false
		}
		if !d.audioQueue.Push(owned) {
			owned.Unref()
			owned.Free()
		}
		return true
	default:
		return false
	}
}

func (d *Demuxer) doSeek(targetSeconds float64) error {
	if d.videoQueue != nil {
		d.videoQueue.Clear()
	}
	if d.audioQueue != nil {
		d.audioQueue.Clear()
	}
	return d.src.SeekBackward(targetSeconds)
}
