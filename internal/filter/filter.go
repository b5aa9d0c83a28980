// Package filter wraps astiav's software scale/resample contexts behind
// the idempotent init(in, out) contract of §4.4: reinitialize only when
// the input or output descriptor changes, or when the underlying context
// does not exist yet.
//
// Grounded on e1z0-QAnotherRTSP/src/video.go's bgraScaler, whose ensure()
// re-creates the SoftwareScaleContext whenever the source frame's
// width/height/pixel format stop matching the last one it was built for.
// That type only ever scaled to a fixed BGRA output; Scaler here
// generalizes it to an arbitrary target descriptor, and Resampler mirrors
// the same pattern for astiav.SoftwareResampleContext since rinbarpen's
// AVQueue-fed pipeline resamples audio the same way it rescales video.
package filter

import (
	"fmt"

	astiav "github.com/asticode/go-astiav"
)

// VideoDescriptor names everything a SoftwareScaleContext needs to know
// about one side (source or destination) of a conversion.
type VideoDescriptor struct {
	Width      int
	Height     int
	PixelFormat astiav.PixelFormat
}

func (d VideoDescriptor) equal(o VideoDescriptor) bool {
	return d.Width == o.Width && d.Height == o.Height && d.PixelFormat == o.PixelFormat
}

// Scaler converts video frames between pixel formats/sizes. It is not
// safe for concurrent use; the video decode stage owns one Scaler per
// stream.
//
// The §9 "potential bug" this preserves: reinit fires when
// out != lastOut OR in != lastIn OR ctx == nil, never only on the
// negation of equality,
// so a freshly-zero-valued Scaler with a never-changing descriptor still
// builds its context on the very first call.
type Scaler struct {
	ctx     *astiav.SoftwareScaleContext
	lastIn  VideoDescriptor
	lastOut VideoDescriptor
	hasLast bool
}

// NewScaler returns an unconfigured Scaler; its context is built lazily
// on the first Convert call.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Convert scales src (whose own descriptor is read off the frame) into
// dst, which must already be allocated at out's dimensions/format.
// Reinitializes the internal context only when in or out differs from
// the descriptors used to build the current context, or none exists yet.
func (s *Scaler) Convert(src *astiav.Frame, in, out VideoDescriptor, dst *astiav.Frame) error {
	if s.ctx == nil || !s.hasLast || !out.equal(s.lastOut) || !in.equal(s.lastIn) {
		if err := s.reinit(in, out); err != nil {
			return err
		}
	}
	if err := s.ctx.ScaleFrame(src, dst); err != nil {
		return fmt.Errorf("filter: ScaleFrame: %w", err)
	}
	return nil
}

func (s *Scaler) reinit(in, out VideoDescriptor) error {
	if s.ctx != nil {
		s.ctx.Free()
		s.ctx = nil
	}
	ctx, err := astiav.CreateSoftwareScaleContext(
		in.Width, in.Height, in.PixelFormat,
		out.Width, out.Height, out.PixelFormat,
		astiav.SoftwareScaleContextFlagBilinear,
	)
	if err != nil {
		return fmt.Errorf("filter: CreateSoftwareScaleContext: %w", err)
	}
	s.ctx = ctx
	s.lastIn = in
	s.lastOut = out
	s.hasLast = true
	return nil
}

// Close releases the underlying context, if any.
func (s *Scaler) Close() {
	if s.ctx != nil {
		s.ctx.Free()
		s.ctx = nil
	}
	s.hasLast = false
}

// AudioDescriptor names everything a SoftwareResampleContext needs about
// one side of a conversion.
type AudioDescriptor struct {
	SampleRate    int
	ChannelLayout astiav.ChannelLayout
	SampleFormat  astiav.SampleFormat
}

func (d AudioDescriptor) equal(o AudioDescriptor) bool {
	return d.SampleRate == o.SampleRate &&
		d.ChannelLayout.String() == o.ChannelLayout.String() &&
		d.SampleFormat == o.SampleFormat
}

// Resampler converts audio frames between sample rates, layouts, and
// formats, following the same idempotent-reinit contract as Scaler.
type Resampler struct {
	ctx     *astiav.SoftwareResampleContext
	lastIn  AudioDescriptor
	lastOut AudioDescriptor
	hasLast bool
}

// NewResampler returns an unconfigured Resampler.
func NewResampler() *Resampler {
	return &Resampler{}
}

// Convert resamples src into dst, rebuilding the context only when in/out
// differ from the last conversion or no context exists yet.
func (r *Resampler) Convert(src *astiav.Frame, in, out AudioDescriptor, dst *astiav.Frame) error {
	if r.ctx == nil || !r.hasLast || !out.equal(r.lastOut) || !in.equal(r.lastIn) {
		if err := r.reinit(in, out); err != nil {
			return err
		}
	}
	if err := r.ctx.ConvertFrame(src, dst); err != nil {
		return fmt.Errorf("filter: ConvertFrame: %w", err)
	}
	return nil
}

func (r *Resampler) reinit(in, out AudioDescriptor) error {
	if r.ctx != nil {
		r.ctx.Free()
		r.ctx = nil
	}
	ctx, err := astiav.CreateSoftwareResampleContext(
		out.ChannelLayout, out.SampleFormat, out.SampleRate,
		in.ChannelLayout, in.SampleFormat, in.SampleRate,
	)
	if err != nil {
		return fmt.Errorf("filter: CreateSoftwareResampleContext: %w", err)
	}
	r.ctx = ctx
	r.lastIn = in
	r.lastOut = out
	r.hasLast = true
	return nil
}

// Close releases the underlying context, if any.
func (r *Resampler) Close() {
	if r.ctx != nil {
		r.ctx.Free()
		r.ctx = nil
	}
	r.hasLast = false
}
