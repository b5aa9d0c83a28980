package pipeline

import (
	"errors"
	"time"

	astiav "github.com/asticode/go-astiav"

	"github.com/dvorak-labs/avplayer/internal/avqueue"
)

// emptyQueuePoll mirrors the teacher's retry-on-transient-error sleep in
// openAndDecode: avqueue.Pop never blocks (§4.1), so a worker finding its
// input queue empty but still open waits this long before trying again
// rather than spinning.
const emptyQueuePoll = 2 * time.Millisecond

// DecodeWorker drains one packet queue through a codec context into a
// frame queue. One instance runs per selected stream (§4.6 video, §4.7
// audio); the two are symmetric enough that a single type covers both.
type DecodeWorker struct {
	Kind     string // "video" or "audio", used only for logging/errors
	CodecCtx *astiav.CodecContext
	In       *avqueue.Queue[*astiav.Packet]
	Out      *avqueue.Queue[*astiav.Frame]

	stop chan struct{}
}

// NewDecodeWorker builds a worker over an already-open codec context.
func NewDecodeWorker(kind string, codecCtx *astiav.CodecContext, in *avqueue.Queue[*astiav.Packet], out *avqueue.Queue[*astiav.Frame]) *DecodeWorker {
	return &DecodeWorker{
		Kind:     kind,
		CodecCtx: codecCtx,
		In:       in,
		Out:      out,
		stop:     make(chan struct{}),
	}
}

// Stop signals Run to return once its current packet finishes draining.
func (w *DecodeWorker) Stop() {
	close(w.stop)
}

// Run feeds packets to the decoder and pushes every resulting frame to
// Out until In closes, a hard decode error occurs, or Stop is called.
func (w *DecodeWorker) Run() error {
	for {
		select {
		case <-w.stop:
			return nil
		default:
		}

		pkt, ok := w.In.Pop()
		if !ok {
			if !w.In.IsOpen() {
				return w.flush()
			}
			time.Sleep(emptyQueuePoll)
			continue
		}

		err := w.CodecCtx.SendPacket(pkt)
		pkt.Unref()
		pkt.Free()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			return err
		}

		if err := w.drainFrames(); err != nil {
			return err
		}
	}
}

// drainFrames repeatedly calls ReceiveFrame until the decoder reports it
// has nothing more for the packet(s) sent so far (EAGAIN) or is done
// (EOF), pushing each produced frame onward.
func (w *DecodeWorker) drainFrames() error {
	for {
		frame := astiav.AllocFrame()
		if err := w.CodecCtx.ReceiveFrame(frame); err != nil {
			frame.Free()
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return err
		}
		if !w.Out.Push(frame) {
			frame.Unref()
			frame.Free()
		}
	}
}

// flush sends a nil packet to drain any frames buffered inside the
// decoder (B-frame reordering, etc.) once the input queue has closed,
// matching the teacher's trailing "flush" loop at the end of
// openAndDecode.
func (w *DecodeWorker) flush() error {
	if err := w.CodecCtx.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return err
	}
	if err := w.drainFrames(); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return err
	}
	return nil
}
