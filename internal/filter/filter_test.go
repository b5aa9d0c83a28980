package filter

import (
	"testing"

	astiav "github.com/asticode/go-astiav"
)

func TestVideoDescriptorEqual(t *testing.T) {
	a := VideoDescriptor{Width: 1280, Height: 720, PixelFormat: astiav.PixelFormatYuv420P}
	b := VideoDescriptor{Width: 1280, Height: 720, PixelFormat: astiav.PixelFormatYuv420P}
	c := VideoDescriptor{Width: 1920, Height: 1080, PixelFormat: astiav.PixelFormatYuv420P}

	if !a.equal(b) {
		t.Fatalf("expected identical descriptors to be equal")
	}
	if a.equal(c) {
		t.Fatalf("expected differing descriptors to be unequal")
	}
}

func TestScalerStartsWithNoContext(t *testing.T) {
	s := NewScaler()
	if s.ctx != nil {
		t.Fatalf("expected a freshly constructed Scaler to have no context")
	}
	if s.hasLast {
		t.Fatalf("expected a freshly constructed Scaler to report no prior descriptor")
	}
}

func TestResamplerStartsWithNoContext(t *testing.T) {
	r := NewResampler()
	if r.ctx != nil {
		t.Fatalf("expected a freshly constructed Resampler to have no context")
	}
	if r.hasLast {
		t.Fatalf("expected a freshly constructed Resampler to report no prior descriptor")
	}
}
