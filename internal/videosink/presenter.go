// Package videosink implements the video presentation stage (C9, §4.8):
// a thread-safe holder for the latest decoded frame, and an ebiten-backed
// presenter that uploads it to a GPU texture and draws it letterboxed
// into whatever viewport the host window gives it.
//
// The thread-safe latest-frame holder is grounded on
// e1z0-QAnotherRTSP/src/video.go's frameBuf: a versioned (seq-numbered)
// byte buffer guarded by an RWMutex, read by the UI thread and written by
// the decode thread, generalized from BGRA-for-Qt to RGBA-for-ebiten.
// The letterbox/aspect-fit projection is grounded on erparts-go-avebi's
// draw.go (CalcProjection): scale to fit, center the remainder, switch to
// linear filtering only when actually scaling.
package videosink

import (
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameBuffer holds the most recently decoded, already-RGBA-converted
// video frame. Exactly one decode-side writer and one presentation-side
// reader are expected; both directions are safe to call concurrently.
type FrameBuffer struct {
	mu  sync.RWMutex
	seq uint64
	w   int
	h   int
	pts float64
	b   []byte
}

// NewFrameBuffer returns an empty FrameBuffer (seq 0 means "no frame yet").
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Put stores a new frame, tightly packed RGBA, at presentation timestamp
// pts seconds. It returns the new sequence number.
func (f *FrameBuffer) Put(w, h int, pts float64, src []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	// A fresh slice per frame: Get hands its slice to the reader, so it
	// must never be overwritten in place by a later Put.
	n := w * h * 4
	f.b = make([]byte, n)
	copy(f.b, src)
	f.w, f.h, f.pts = w, h, pts
	return atomic.AddUint64(&f.seq, 1)
}

// Get returns the current sequence number, dimensions, pts, and pixel
// data. seq == 0 means no frame has been put yet.
func (f *FrameBuffer) Get() (seq uint64, w, h int, pts float64, data []byte) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return atomic.LoadUint64(&f.seq), f.w, f.h, f.pts, f.b
}

// Presenter uploads FrameBuffer contents to a GPU texture and draws it
// letterboxed into a viewport. It is not an ebiten.Game by itself; the
// CLI entry point's Game wraps a Presenter and calls Draw from its own
// Draw method, keeping window/input concerns (cmd/avplayer) separate
// from pixel upload concerns (here).
type Presenter struct {
	frames *FrameBuffer

	lastSeq uint64
	tex     *ebiten.Image
	texW    int
	texH    int
}

// NewPresenter returns a Presenter that reads frames from frames.
func NewPresenter(frames *FrameBuffer) *Presenter {
	return &Presenter{frames: frames}
}

// Draw uploads the latest frame (if changed since the last Draw call)
// and blits it into screen, scaled to fit while preserving aspect ratio.
// If no frame has arrived yet, it leaves screen untouched.
func (p *Presenter) Draw(screen *ebiten.Image) {
	seq, w, h, _, data := p.frames.Get()
	if seq == 0 {
		return
	}
	if seq != p.lastSeq || p.tex == nil || p.texW != w || p.texH != h {
		if p.tex == nil || p.texW != w || p.texH != h {
			p.tex = ebiten.NewImage(w, h)
			p.texW, p.texH = w, h
		}
		p.tex.WritePixels(data)
		p.lastSeq = seq
	}

	bounds := screen.Bounds()
	geom, filter := calcProjection(bounds.Dx(), bounds.Dy(), w, h, p.texW, p.texH)
	opts := &ebiten.DrawImageOptions{GeoM: geom, Filter: filter}
	screen.DrawImage(p.tex, opts)
}

// LatestPTS returns the presentation timestamp, in seconds, of the most
// recently buffered frame.
func (p *Presenter) LatestPTS() float64 {
	_, _, _, pts, _ := p.frames.Get()
	return pts
}

// calcProjection scales a frWidth x frHeight source into a vw x vh
// viewport, preserving aspect ratio and centering any leftover space,
// switching to linear filtering only when the frame is actually being
// scaled.
func calcProjection(vw, vh, frWidth, frHeight, texW, texH int) (ebiten.GeoM, ebiten.Filter) {
	var geom ebiten.GeoM
	filter := ebiten.FilterLinear

	if vw <= 0 || vh <= 0 || frWidth <= 0 || frHeight <= 0 {
		return geom, filter
	}

	wf := float64(vw) / float64(frWidth)
	hf := float64(vh) / float64(frHeight)
	sf := wf
	if hf < wf {
		sf = hf
	}

	if sf == 1.0 {
		offX := (float64(vw) - float64(texW)) / 2
		offY := (float64(vh) - float64(texH)) / 2
		geom.Translate(offX, offY)
		filter = ebiten.FilterNearest
	} else {
		scaledW := float64(texW) * sf
		scaledH := float64(texH) * sf
		geom.Scale(sf, sf)
		geom.Translate((float64(vw)-scaledW)/2, (float64(vh)-scaledH)/2)
	}
	return geom, filter
}
