// Package recorder implements the Recorder Sidecar (C13, §4.11): a
// video-only tee that feeds each decoded video frame through an H.264
// encoder (YUV420P, 25 fps, preset=ultrafast) and writes the resulting
// packets into a standalone container alongside playback, per §1's
// Non-goal "no remuxing/transcoding other than the single H.264 video
// tee" — there is deliberately no audio path here.
//
// Grounded on e1z0-QAnotherRTSP/src/video.go's startRecorder/closeRecorder
// for the container lifecycle shape (AllocOutputFormatContext +
// OpenIOContext, WriteHeader/WriteInterleavedFrame/WriteTrailer,
// abort-deletes-partial-file semantics generalized from "stop on camera
// close" into an explicit Abort method) and on go-astiav's own encode
// examples for the SendFrame/ReceivePacket encoder loop. The output
// directory/filename convention and max_clip_duration rotation are
// supplemented from rinbarpen/multimedia's richer RecordConfig (see the
// design ledger).
package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	astiav "github.com/asticode/go-astiav"

	"github.com/dvorak-labs/avplayer/internal/avlog"
	"github.com/dvorak-labs/avplayer/internal/filter"
)

// §4.11/§6 fix the recording cadence and packet timestamp scale:
// pts := dts := seq * (100_000/framerate), duration := 100_000/framerate.
const (
	recordFramerate   = 25
	recordTimeBaseDen = 100_000
	recordPtsScale    = recordTimeBaseDen / recordFramerate
)

// Config names where recordings land and how long a single clip file may
// run before being rotated into a new one.
type Config struct {
	OutputDir       string
	FilenamePrefix  string
	MaxClipDuration time.Duration // 0 disables rotation
}

// Recorder owns one active output file's H.264 encode/mux state. It is
// armed by Start and driven by Feed, which lazily opens the output
// container and encoder on the first frame, per §4.11's "on first
// write() after open()" contract.
type Recorder struct {
	cfg Config

	armed   bool
	running bool

	outCtx  *astiav.FormatContext
	ioCtx   *astiav.IOContext
	stream  *astiav.Stream
	outPath string
	started time.Time

	encCtx *astiav.CodecContext
	scaler *filter.Scaler
	scaled *astiav.Frame

	seq int64
}

// New returns an unarmed Recorder; call Start to arm it, then feed
// decoded video frames through Feed.
func New(cfg Config) *Recorder {
	return &Recorder{cfg: cfg}
}

// IsRecording reports whether a clip file is currently open.
func (r *Recorder) IsRecording() bool {
	return r.running
}

// ClipPath returns the path of the currently-open clip, or "" if none.
func (r *Recorder) ClipPath() string {
	return r.outPath
}

// Start arms the recorder. The output container and H.264 encoder are
// not opened yet; Feed opens them lazily from the first frame it sees,
// since only a decoded frame carries the width/height/pixel format the
// encoder needs.
func (r *Recorder) Start() error {
	if r.armed {
		return nil
	}
	r.armed = true
	r.seq = 0
	return nil
}

// Feed encodes one decoded video frame and writes any packets the
// encoder emits. A no-op once neither armed nor running (Stop/Abort
// already ran, or Start was never called).
func (r *Recorder) Feed(frame *astiav.Frame) error {
	if !r.armed {
		return nil
	}
	if !r.running {
		if err := r.open(frame); err != nil {
			r.armed = false
			avlog.Warnf("recorder: failed to open output, recording disabled: %v", err)
			return err
		}
	}
	return r.encode(frame)
}

func (r *Recorder) open(frame *astiav.Frame) error {
	started := time.Now()
	outPath, err := r.clipPath(started)
	if err != nil {
		return fmt.Errorf("build output path: %w", err)
	}

	// Container chosen from the output extension (mp4 here), falling
	// back to the muxer's own default when the extension is unknown.
	oc, err := astiav.AllocOutputFormatContext(nil, "", outPath)
	if err != nil || oc == nil {
		return fmt.Errorf("AllocOutputFormatContext: %w", err)
	}

	enc := astiav.FindEncoder(astiav.CodecIDH264)
	if enc == nil {
		oc.Free()
		return errors.New("H.264 encoder not available")
	}
	encCtx := astiav.AllocCodecContext(enc)
	if encCtx == nil {
		oc.Free()
		return errors.New("AllocCodecContext for H264 failed")
	}
	encCtx.SetWidth(frame.Width())
	encCtx.SetHeight(frame.Height())
	encCtx.SetPixelFormat(astiav.PixelFormatYuv420P)
	encCtx.SetTimeBase(astiav.NewRational(1, recordFramerate))
	encCtx.SetFramerate(astiav.NewRational(recordFramerate, 1))

	dict := astiav.NewDictionary()
	defer dict.Free()
	_ = dict.Set("preset", "ultrafast", 0)
	if err := encCtx.Open(enc, dict); err != nil {
		encCtx.Free()
		oc.Free()
		return fmt.Errorf("H264 encoder open: %w", err)
	}

	os := oc.NewStream(enc)
	if os == nil {
		encCtx.Free()
		oc.Free()
		return errors.New("NewStream for H264 failed")
	}
	if err := encCtx.ToCodecParameters(os.CodecParameters()); err != nil {
		encCtx.Free()
		oc.Free()
		return fmt.Errorf("ToCodecParameters: %w", err)
	}
	os.SetTimeBase(astiav.NewRational(1, recordTimeBaseDen))

	pb, err := astiav.OpenIOContext(outPath, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
	if err != nil {
		encCtx.Free()
		oc.Free()
		return fmt.Errorf("OpenIOContext: %w", err)
	}
	oc.SetPb(pb)

	if err := oc.WriteHeader(nil); err != nil {
		_ = pb.Close()
		pb.Free()
		encCtx.Free()
		oc.Free()
		return fmt.Errorf("WriteHeader: %w", err)
	}

	if frame.PixelFormat() != astiav.PixelFormatYuv420P {
		r.scaler = filter.NewScaler()
		r.scaled = astiav.AllocFrame()
		r.scaled.SetWidth(frame.Width())
		r.scaled.SetHeight(frame.Height())
		r.scaled.SetPixelFormat(astiav.PixelFormatYuv420P)
		if err := r.scaled.AllocBuffer(1); err != nil {
			_ = pb.Close()
			pb.Free()
			encCtx.Free()
			oc.Free()
			return fmt.Errorf("scaled frame AllocBuffer: %w", err)
		}
	}

	r.outCtx = oc
	r.ioCtx = pb
	r.encCtx = encCtx
	r.stream = os
	r.outPath = outPath
	r.started = started
	r.running = true
	r.seq = 0
	avlog.Warnf("recorder: started -> %s", outPath)
	return nil
}

func (r *Recorder) encode(frame *astiav.Frame) error {
	src := frame
	if r.scaler != nil {
		in := filter.VideoDescriptor{Width: frame.Width(), Height: frame.Height(), PixelFormat: frame.PixelFormat()}
		out := filter.VideoDescriptor{Width: frame.Width(), Height: frame.Height(), PixelFormat: astiav.PixelFormatYuv420P}
		if err := r.scaler.Convert(frame, in, out, r.scaled); err != nil {
			return fmt.Errorf("recorder: scale to YUV420P: %w", err)
		}
		src = r.scaled
	}
	src.SetPts(r.seq)

	if err := r.encCtx.SendFrame(src); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return fmt.Errorf("recorder: H264 SendFrame: %w", err)
	}
	return r.drainPackets()
}

// drainPackets stamps each emitted packet per §4.11/§6's timestamp
// scheme (pts := dts := seq*(100_000/framerate), duration := same) and
// advances seq once per packet, giving the strictly-increasing,
// constant-step cadence property #7 requires.
func (r *Recorder) drainPackets() error {
	for {
		pkt := astiav.AllocPacket()
		if err := r.encCtx.ReceivePacket(pkt); err != nil {
			pkt.Free()
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("recorder: ReceivePacket: %w", err)
		}

		stamp := r.seq * recordPtsScale
		pkt.SetPts(stamp)
		pkt.SetDts(stamp)
		pkt.SetDuration(recordPtsScale)
		pkt.SetStreamIndex(r.stream.Index())
		if err := r.outCtx.WriteInterleavedFrame(pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
			avlog.Warnf("recorder: write packet: %v", err)
		}
		pkt.Unref()
		pkt.Free()
		r.seq++
	}
}

// ShouldRotate reports whether the current clip has run past
// MaxClipDuration and should be closed and reopened as a fresh file.
// The player drives rotation explicitly (Stop then Start again) since
// rotation is a scheduling decision, not something Feed alone can see.
func (r *Recorder) ShouldRotate() bool {
	return r.running && r.cfg.MaxClipDuration > 0 && time.Since(r.started) > r.cfg.MaxClipDuration
}

// Stop flushes the encoder, writes the trailer, and closes the output
// file normally, per §4.11's RECORDING -> READY transition.
func (r *Recorder) Stop() error {
	defer func() { r.armed = false }()
	if !r.running {
		return nil
	}
	_ = r.encCtx.SendFrame(nil)
	_ = r.drainPackets()
	err := r.outCtx.WriteTrailer()
	r.closeFiles()
	avlog.Warnf("recorder: stopped -> %s", r.outPath)
	return err
}

// Abort tears down the recorder without writing a trailer and deletes
// the partial file, matching §4.11's "on abort: delete the partial
// output file" rule and §7 kind 9.
func (r *Recorder) Abort() {
	defer func() { r.armed = false }()
	if !r.running {
		return
	}
	path := r.outPath
	r.closeFiles()
	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			avlog.Warnf("recorder: failed to remove partial clip %s: %v", path, err)
		}
	}
}

func (r *Recorder) closeFiles() {
	if r.scaler != nil {
		r.scaler.Close()
		r.scaler = nil
	}
	if r.scaled != nil {
		r.scaled.Free()
		r.scaled = nil
	}
	if r.encCtx != nil {
		r.encCtx.Free()
		r.encCtx = nil
	}
	if r.ioCtx != nil {
		_ = r.ioCtx.Close()
		r.ioCtx.Free()
		r.ioCtx = nil
	}
	if r.outCtx != nil {
		r.outCtx.Free()
		r.outCtx = nil
	}
	r.stream = nil
	r.running = false
}

func (r *Recorder) clipPath(started time.Time) (string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	prefix := r.cfg.FilenamePrefix
	if prefix == "" {
		prefix = "clip"
	}
	name := fmt.Sprintf("%s_%s.mp4", prefix, started.Format("2006-01-02_15-04-05"))
	return filepath.Join(r.cfg.OutputDir, name), nil
}
