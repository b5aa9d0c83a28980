package ringbuffer

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestFillExtractRoundTrip(t *testing.T) {
	r := New(64)
	in := []byte("hello, ring buffer")
	n := r.Fill(in)
	if n != len(in) {
		t.Fatalf("fill = %d, want %d", n, len(in))
	}

	out := make([]byte, len(in))
	got := r.Extract(out, len(out))
	if got != len(in) {
		t.Fatalf("extract = %d, want %d", got, len(in))
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("extract = %q, want %q", out, in)
	}
}

func TestFillClampsToWritable(t *testing.T) {
	r := New(8)
	n := r.Fill([]byte("0123456789"))
	if n != 8 {
		t.Fatalf("fill = %d, want 8 (clamped)", n)
	}
	if r.Writable() != 0 {
		t.Fatalf("writable = %d, want 0", r.Writable())
	}
}

func TestAutoResetOnFullDrain(t *testing.T) {
	r := New(8)
	r.Fill([]byte("abcd"))
	r.Extract(nil, 4)
	if r.Readable() != 0 {
		t.Fatalf("readable = %d, want 0", r.Readable())
	}
	if r.Writable() != 8 {
		t.Fatalf("writable after auto-reset = %d, want 8 (capacity reclaimed)", r.Writable())
	}
}

func TestRandomFillExtractSequencePreservesBytes(t *testing.T) {
	r := New(256)
	var written, read []byte
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		if rng.Intn(2) == 0 && r.Writable() > 0 {
			n := rng.Intn(r.Writable()) + 1
			chunk := make([]byte, n)
			rng.Read(chunk)
			got := r.Fill(chunk)
			written = append(written, chunk[:got]...)
		} else if r.Readable() > 0 {
			n := rng.Intn(r.Readable()) + 1
			out := make([]byte, n)
			got := r.Extract(out, n)
			read = append(read, out[:got]...)
		}
	}
	// drain whatever remains
	if r.Readable() > 0 {
		out := make([]byte, r.Readable())
		r.Extract(out, len(out))
		read = append(read, out...)
	}

	if !bytes.Equal(written, read) {
		t.Fatalf("bytes read do not match bytes written (wrote %d, read %d)", len(written), len(read))
	}
}
