// Package ringbuffer implements the audio callback's byte buffer, grounded
// on rinbarpen/multimedia's AudioBuffer: a flat byte slice with read/write
// offsets, auto-reset when fully drained, and size queries expressed as
// "readable"/"writable" byte counts (§4.3).
package ringbuffer

// RingBuffer is a byte buffer feeding PCM chunks to the audio sink
// callback. It is not safe for concurrent use by multiple goroutines; the
// audio presentation stage is its only owner, mirroring the original's
// single-threaded-within-the-callback design.
type RingBuffer struct {
	buf      []byte
	readOff  int
	writeOff int
	capacity int
}

// New creates a RingBuffer with the given byte capacity.
func New(capacity int) *RingBuffer {
	return &RingBuffer{
		buf:      make([]byte, capacity),
		capacity: capacity,
	}
}

// Writable returns how many bytes can still be appended before the
// buffer needs to be drained or reset.
func (r *RingBuffer) Writable() int {
	return r.capacity - r.writeOff
}

// Readable returns how many unread bytes are currently buffered.
func (r *RingBuffer) Readable() int {
	return r.writeOff - r.readOff
}

// Fill appends up to len(data) bytes, clamped to Writable(). It returns
// the number of bytes actually copied in.
func (r *RingBuffer) Fill(data []byte) int {
	n := len(data)
	if w := r.Writable(); n > w {
		n = w
	}
	copy(r.buf[r.writeOff:r.writeOff+n], data[:n])
	r.writeOff += n
	return n
}

// Extract advances the read pointer by up to n bytes (clamped to
// Readable()), optionally copying the consumed bytes into dst (dst may be
// nil to just discard). It returns the number of bytes consumed. When the
// buffer becomes fully drained (read caught up to write), both offsets
// reset to zero so future Fill calls reuse the full capacity.
func (r *RingBuffer) Extract(dst []byte, n int) int {
	if avail := r.Readable(); n > avail {
		n = avail
	}
	if n <= 0 {
		return 0
	}
	if dst != nil {
		copy(dst, r.buf[r.readOff:r.readOff+n])
	}
	r.readOff += n
	if r.readOff >= r.writeOff {
		r.readOff = 0
		r.writeOff = 0
	}
	return n
}

// Peek returns a slice view onto the currently-readable bytes without
// consuming them. The slice is only valid until the next Fill/Extract.
func (r *RingBuffer) Peek() []byte {
	return r.buf[r.readOff:r.writeOff]
}

// Reset discards all buffered data, equivalent to extracting everything.
func (r *RingBuffer) Reset() {
	r.readOff = 0
	r.writeOff = 0
}

// Capacity returns the buffer's total byte capacity.
func (r *RingBuffer) Capacity() int {
	return r.capacity
}
