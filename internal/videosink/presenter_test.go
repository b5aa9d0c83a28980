package videosink

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestFrameBufferGetBeforePutReportsNoFrame(t *testing.T) {
	fb := NewFrameBuffer()
	seq, _, _, _, _ := fb.Get()
	if seq != 0 {
		t.Fatalf("seq = %d, want 0 before any Put", seq)
	}
}

func TestFrameBufferPutAdvancesSequence(t *testing.T) {
	fb := NewFrameBuffer()
	data := make([]byte, 2*2*4)
	seq1 := fb.Put(2, 2, 1.0, data)
	seq2 := fb.Put(2, 2, 2.0, data)
	if seq2 <= seq1 {
		t.Fatalf("seq2 (%d) should be greater than seq1 (%d)", seq2, seq1)
	}
	seq, w, h, pts, got := fb.Get()
	if seq != seq2 || w != 2 || h != 2 || pts != 2.0 || len(got) != len(data) {
		t.Fatalf("Get() = (%d, %d, %d, %v, len %d), want (%d, 2, 2, 2.0, len %d)",
			seq, w, h, pts, len(got), seq2, len(data))
	}
}

func TestCalcProjectionCentersWhenExactFit(t *testing.T) {
	geom, filter := calcProjection(100, 50, 100, 50, 100, 50)
	x, y := geom.Apply(0, 0)
	if x != 0 || y != 0 {
		t.Fatalf("exact-fit projection should not translate, got (%v, %v)", x, y)
	}
	if filter != ebiten.FilterNearest {
		t.Fatalf("exact-fit projection should use nearest filtering")
	}
}

func TestCalcProjectionCentersAndScalesWhenLetterboxed(t *testing.T) {
	// viewport is wider than the 4:3 frame scaled to fit height
	geom, filter := calcProjection(200, 100, 400, 300, 400, 300)
	x, y := geom.Apply(0, 0)
	if x <= 0 {
		t.Fatalf("expected horizontal letterbox offset > 0, got %v", x)
	}
	if y != 0 {
		t.Fatalf("expected no vertical offset when height is the constraint, got %v", y)
	}
	if filter != ebiten.FilterLinear {
		t.Fatalf("scaled projection should use linear filtering")
	}
}
