package player

import (
	"fmt"
	"sync"
	"time"

	astiav "github.com/asticode/go-astiav"
	"github.com/hajimehoshi/oto/v2"

	"github.com/dvorak-labs/avplayer/internal/audiosink"
	"github.com/dvorak-labs/avplayer/internal/avclock"
	"github.com/dvorak-labs/avplayer/internal/avlog"
	"github.com/dvorak-labs/avplayer/internal/avqueue"
	"github.com/dvorak-labs/avplayer/internal/avsync"
	"github.com/dvorak-labs/avplayer/internal/filter"
	"github.com/dvorak-labs/avplayer/internal/mediaio"
	"github.com/dvorak-labs/avplayer/internal/pipeline"
	"github.com/dvorak-labs/avplayer/internal/playlist"
	"github.com/dvorak-labs/avplayer/internal/recorder"
	"github.com/dvorak-labs/avplayer/internal/videosink"
)

// Queue sizing mirrors §4.1's guidance: enough packets/frames to absorb
// jitter without growing unbounded. These capacities are fixed; Options
// has no field to override them.
const (
	defaultPacketQueueCapacity = 256
	defaultFrameQueueCapacity  = 32
	audioBufferSeconds         = 0.5
)

// Options configures a new Player. DeviceOptions/InputFormatHint are
// forwarded to mediaio.Open for grabber/device sources.
type Options struct {
	AudioContext    *oto.Context
	InputFormatHint string
	DeviceOptions   mediaio.DeviceOptions
	RecorderConfig  recorder.Config
}

// Player is the C11 state machine: it owns one open mediaio.Source at a
// time, the demux/decode pipeline stages feeding it, the audio/video
// presentation sinks, and an optional recorder sidecar. Lifecycle
// discipline (a stop/done pair per active session, waiting for the old
// session to finish before starting a new one) is grounded on
// e1z0-QAnotherRTSP/src/camera.go's CamWindow.restartDecoder.
type Player struct {
	mu    sync.Mutex
	state State
	opts  Options
	Cfg   *Config

	src *mediaio.Source

	videoPktQ   *avqueue.Queue[*astiav.Packet]
	audioPktQ   *avqueue.Queue[*astiav.Packet]
	videoFrameQ *avqueue.Queue[*astiav.Frame]
	audioFrameQ *avqueue.Queue[*astiav.Frame]

	demuxer     *pipeline.Demuxer
	videoWorker *pipeline.DecodeWorker
	audioWorker *pipeline.DecodeWorker

	audioClock *avclock.Clock
	videoClock *avclock.Clock
	sync       *avsync.Controller

	sink      *audiosink.Sink
	audioPlay oto.Player
	frames    *videosink.FrameBuffer
	scaler    *filter.Scaler
	resampler *filter.Resampler

	rec *recorder.Recorder

	playlist *playlist.Playlist

	wg       sync.WaitGroup
	stopPump chan struct{}

	prevVideoPTS float64
}

// currentTime returns the presented position of the master clock: the
// audio clock when an audio stream is selected (§4.7's audio-master
// policy), else the video clock.
func (p *Player) currentTime() float64 {
	if p.src != nil && p.src.HasAudio() {
		return p.audioClock.Get()
	}
	if p.videoClock != nil {
		return p.videoClock.Get()
	}
	return 0
}

// CurrentTime exposes currentTime for callers that need to compute a
// relative seek target (§6's seek(current -+ seek_step)).
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime()
}

// checkFinished implements §4.8's loop-tail abort check: once the
// demuxer has parked at a clean EOF and the master clock has caught up
// to within 0.3s of the container's total duration, transition
// PLAYING -> FINISHED (§7 kind 4, scenario S1). Live/network sources
// (Duration() == 0) never finish this way. Returns true if the
// transition was taken, so callers can stop presenting further frames.
func (p *Player) checkFinished() bool {
	if p.src == nil || p.src.IsNetwork() || p.demuxer == nil || !p.demuxer.AtEOF() {
		return false
	}
	total := p.src.Duration()
	if total <= 0 {
		return false
	}
	if total-p.currentTime() >= 0.3 {
		return false
	}

	if p.Cfg.Loop() {
		// Single-source loop: rewind to the start instead of finishing.
		p.mu.Lock()
		p.demuxer.RequestSeek(0)
		p.audioClock.Reset()
		p.videoClock.Reset()
		p.mu.Unlock()
		return false
	}

	p.mu.Lock()
	err := p.setState(StateFinished)
	p.mu.Unlock()
	if err != nil {
		return false
	}
	avlog.Warnf("player: reached end of stream")

	if p.Cfg.AutoReadNext() {
		go p.advanceAfterFinish()
	}
	return true
}

// advanceAfterFinish runs PlayNext on its own goroutine once FINISHED is
// reached, so the present loop that detected EOF can return without
// deadlocking against Close's wg.Wait.
func (p *Player) advanceAfterFinish() {
	if err := p.PlayNext(); err != nil {
		avlog.Warnf("player: auto-advance to next playlist item: %v", err)
	}
}

// New creates an idle Player in StateNone.
func New(opts Options) *Player {
	return &Player{
		state:    StateNone,
		opts:     opts,
		Cfg:      NewConfig(),
		playlist: playlist.New(),
		sync:     avsync.New(),
	}
}

// Playlist exposes the owned playlist for Add/Clear/SetLoopMode calls.
func (p *Player) Playlist() *playlist.Playlist {
	return p.playlist
}

// OpenPlaylist implements C11's play(list): append every url to the
// owned playlist, open the first one, and start playback. Further items
// advance automatically at end-of-stream when Cfg.AutoReadNext is set,
// or on demand via PlayNext/PlayPrev (§4.9, scenario S4).
func (p *Player) OpenPlaylist(urls []string) error {
	for _, u := range urls {
		p.playlist.Add(u)
	}
	first, ok := p.playlist.Current()
	if !ok {
		return fmt.Errorf("player: empty playlist")
	}
	if err := p.Open(first); err != nil {
		return err
	}
	return p.Play()
}

// PlayNext implements C11's play_next(): advance the playlist cursor,
// tear down the current session, and open/play the new item.
func (p *Player) PlayNext() error {
	return p.playlistAdvance(p.playlist.Next)
}

// PlayPrev implements C11's play_prev(), mirroring PlayNext at the
// opposite end of the list.
func (p *Player) PlayPrev() error {
	return p.playlistAdvance(p.playlist.Prev)
}

func (p *Player) playlistAdvance(step func() (string, bool)) error {
	url, ok := step()
	if !ok {
		return fmt.Errorf("player: no further playlist item")
	}
	if err := p.Close(); err != nil {
		return err
	}
	if err := p.Open(url); err != nil {
		return err
	}
	return p.Play()
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) setState(to State) error {
	if !canTransition(p.state, to) {
		return &errInvalidTransition{from: p.state, to: to}
	}
	p.state = to
	return nil
}

// Open opens url as the current media source and wires the pipeline,
// moving NONE/FINISHED -> READY -> READY_TO_PLAY. Playback does not
// start until Play is called.
func (p *Player) Open(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateNone && p.state != StateFinished && p.state != StateReady {
		return fmt.Errorf("player: cannot open while in state %s", p.state)
	}

	src, err := mediaio.Open(url, p.opts.InputFormatHint, p.opts.DeviceOptions)
	if err != nil {
		return fmt.Errorf("player: open %q: %w", url, err)
	}
	p.src = src

	if err := p.setState(StateReady); err != nil {
		src.Close()
		return err
	}

	p.wireQueues()
	p.audioClock = avclock.New()
	p.videoClock = avclock.New()
	p.frames = videosink.NewFrameBuffer()
	p.scaler = filter.NewScaler()

	if src.HasAudio() {
		p.resampler = filter.NewResampler()
		p.sink = audiosink.New(p.audioClock, src.AudioCodecContext().SampleRate(), src.AudioCodecContext().ChannelLayout().Channels(), audioBufferSeconds)
		if p.opts.AudioContext != nil {
			p.audioPlay = p.sink.NewPlayer(p.opts.AudioContext)
		}
	}

	return p.setState(StateReadyToPlay)
}

func (p *Player) wireQueues() {
	if p.src.HasVideo() {
		p.videoPktQ = avqueue.New[*astiav.Packet](defaultPacketQueueCapacity)
		p.videoFrameQ = avqueue.New[*astiav.Frame](defaultFrameQueueCapacity)
		p.videoPktQ.Open()
		p.videoFrameQ.Open()
	}
	if p.src.HasAudio() {
		p.audioPktQ = avqueue.New[*astiav.Packet](defaultPacketQueueCapacity)
		p.audioFrameQ = avqueue.New[*astiav.Frame](defaultFrameQueueCapacity)
		p.audioPktQ.Open()
		p.audioFrameQ.Open()
	}
}

// Play starts (or resumes) playback: READY_TO_PLAY/PAUSED -> PLAYING.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wasPaused := p.state == StatePaused
	if err := p.setState(StatePlaying); err != nil {
		return err
	}

	if wasPaused {
		_ = p.src.ReadPlay()
		if p.audioPlay != nil {
			p.audioPlay.Play()
		}
		return nil
	}

	p.startPipeline()
	return nil
}

func (p *Player) startPipeline() {
	p.demuxer = pipeline.NewDemuxer(p.src, p.videoPktQ, p.audioPktQ)
	p.stopPump = make(chan struct{})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.demuxer.Run(); err != nil {
			avlog.Errorf("player: demuxer: %v", err)
		}
	}()

	if p.src.HasVideo() {
		p.videoWorker = pipeline.NewDecodeWorker("video", p.src.VideoCodecContext(), p.videoPktQ, p.videoFrameQ)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := p.videoWorker.Run(); err != nil {
				avlog.Errorf("player: video decode: %v", err)
			}
		}()
		p.wg.Add(1)
		go p.videoPresentLoop()
	}

	if p.src.HasAudio() {
		p.audioWorker = pipeline.NewDecodeWorker("audio", p.src.AudioCodecContext(), p.audioPktQ, p.audioFrameQ)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := p.audioWorker.Run(); err != nil {
				avlog.Errorf("player: audio decode: %v", err)
			}
		}()
		p.wg.Add(1)
		go p.audioPresentLoop()
		if p.audioPlay != nil {
			p.audioPlay.Play()
		}
	}
}

// videoPresentLoop drains decoded video frames, converts them to RGBA,
// paces them against the audio clock (or free-runs if audio-less) per
// §4.8, tees each frame into the recorder sidecar if one is armed, and
// publishes the result into the FrameBuffer for videosink to pick up on
// its own schedule. In track mode it drops to the freshest frame instead
// of pacing, and it watches for the EOF-abort -> FINISHED transition.
func (p *Player) videoPresentLoop() {
	defer p.wg.Done()
	vst := p.src.VideoStream()
	tb := vst.TimeBase()

	for {
		select {
		case <-p.stopPump:
			return
		default:
		}

		if p.checkFinished() {
			return
		}

		trackMode := p.Cfg.TrackMode() && p.src.IsNetwork()
		if trackMode {
			p.dropStaleFrames(tb)
		}

		frame, ok := p.videoFrameQ.Pop()
		if !ok {
			if !p.videoFrameQ.IsOpen() {
				return
			}
			time.Sleep(2 * time.Millisecond)
			continue
		}

		pts := float64(frame.Pts()) * float64(tb.Num()) / float64(tb.Den())

		if trackMode {
			// Track mode skips the sync sleep entirely: the goal is
			// showing the freshest frame, not pacing against a clock.
		} else if p.src.HasAudio() {
			if delay := p.sync.Evaluate(pts, p.prevVideoPTS, p.audioClock.Get()); delay > 0 {
				time.Sleep(delay)
			}
		} else {
			if delay := p.sync.Pace(p.src.VideoFrameRate(), p.Cfg.Speed()); delay > 0 {
				time.Sleep(delay)
			}
		}
		p.prevVideoPTS = pts
		p.videoClock.Set(pts)

		in := filter.VideoDescriptor{Width: frame.Width(), Height: frame.Height(), PixelFormat: frame.PixelFormat()}
		out := filter.VideoDescriptor{Width: frame.Width(), Height: frame.Height(), PixelFormat: astiav.PixelFormatRgba}
		dst := astiav.AllocFrame()
		dst.SetWidth(out.Width)
		dst.SetHeight(out.Height)
		dst.SetPixelFormat(out.PixelFormat)
		if err := dst.AllocBuffer(1); err == nil {
			if err := p.scaler.Convert(frame, in, out, dst); err == nil {
				if n, err := dst.ImageBufferSize(1); err == nil {
					buf := make([]byte, n)
					if _, err := dst.ImageCopyToBuffer(buf, 1); err == nil {
						p.frames.Put(out.Width, out.Height, pts, buf)
					}
				}
			}
		}
		dst.Free()

		if p.rec != nil {
			if err := p.rec.Feed(frame); err != nil {
				avlog.Warnf("player: recorder video feed: %v", err)
			}
		}

		frame.Unref()
		frame.Free()
	}
}

// dropStaleFrames implements §4.8's track-mode (live) drop-to-latest:
// while the gap between the oldest and newest queued frame is at least
// 3s, discard the oldest instead of presenting it, per property #10 and
// scenario S6.
func (p *Player) dropStaleFrames(tb astiav.Rational) {
	for {
		first, ok := p.videoFrameQ.Peek()
		if !ok {
			return
		}
		latest, ok := p.videoFrameQ.PeekLatest()
		if !ok {
			return
		}
		gap := float64(latest.Pts()-first.Pts()) * float64(tb.Num()) / float64(tb.Den())
		if gap < 3.0 {
			return
		}
		dropped, ok := p.videoFrameQ.Pop()
		if !ok {
			return
		}
		dropped.Unref()
		dropped.Free()
	}
}

// audioPresentLoop drains decoded audio frames and pushes the first data
// plane of each one, as-is, into the Sink's ring buffer, applying the
// live volume/mute settings from Cfg. It does not resample: the bytes are
// taken to already be interleaved signed 16-bit PCM. The recorder
// sidecar is video-only (§4.11); audio frames are not tapped here.
func (p *Player) audioPresentLoop() {
	defer p.wg.Done()
	ast := p.src.AudioStream()
	tb := ast.TimeBase()

	for {
		select {
		case <-p.stopPump:
			return
		default:
		}

		frame, ok := p.audioFrameQ.Pop()
		if !ok {
			if !p.audioFrameQ.IsOpen() {
				return
			}
			time.Sleep(2 * time.Millisecond)
			continue
		}

		pts := float64(frame.Pts()) * float64(tb.Num()) / float64(tb.Den())

		if data, err := frame.Data().Bytes(0); err == nil && len(data) > 0 {
			need := frame.NbSamples() * 2 * frame.ChannelLayout().Channels()
			if need > len(data) {
				need = len(data)
			}
			p.sink.SetVolume(p.Cfg.Volume())
			p.sink.SetMuted(p.Cfg.Muted())
			p.sink.Push(data[:need], pts)
		}

		frame.Unref()
		frame.Free()
	}
}

// Pause stops advancing without tearing down the pipeline: PLAYING ->
// PAUSED. Network sources get read_pause; the audio player stops pulling.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.setState(StatePaused); err != nil {
		return err
	}
	if p.audioPlay != nil {
		p.audioPlay.Pause()
	}
	return p.src.ReadPause()
}

// Seek requests a demuxer seek to targetSeconds, clamped to
// [0, total duration] per §4.9, and sets both clocks to the clamped
// target. It works once Play has started the pipeline; before that it
// returns an error.
func (p *Player) Seek(targetSeconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.demuxer == nil {
		return fmt.Errorf("player: cannot seek before playback has started")
	}
	if targetSeconds < 0 {
		targetSeconds = 0
	}
	if total := p.src.Duration(); total > 0 && targetSeconds > total {
		targetSeconds = total
	}
	p.demuxer.RequestSeek(targetSeconds)
	p.audioClock.Set(targetSeconds)
	p.videoClock.Set(targetSeconds)
	return nil
}

// Replay restarts the current source from the beginning: FINISHED/
// PLAYING/PAUSED -> READY_TO_PLAY, then the caller calls Play again.
func (p *Player) Replay() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.setState(StateReadyToPlay); err != nil {
		return err
	}
	if p.demuxer != nil {
		p.demuxer.RequestSeek(0)
	}
	p.audioClock.Reset()
	p.videoClock.Reset()
	return nil
}

// StartRecording arms rec, which the caller constructs with
// recorder.New using p.opts.RecorderConfig. Recording is a video-only
// tee (§4.11); rec opens its own output container lazily from the first
// decoded video frame videoPresentLoop feeds it.
func (p *Player) StartRecording(rec *recorder.Recorder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := rec.Start(); err != nil {
		return err
	}
	p.rec = rec
	return nil
}

// StopRecording finalizes and closes the active recorder, if any.
func (p *Player) StopRecording() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rec == nil {
		return nil
	}
	err := p.rec.Stop()
	p.rec = nil
	return err
}

// Close tears the whole session down unconditionally (ABORT from any
// state), mirroring CamWindow.Close: signal stop, wait for workers,
// then release the source and any open recorder.
func (p *Player) Close() error {
	p.mu.Lock()
	_ = p.setState(StateAbort)

	if p.stopPump != nil {
		close(p.stopPump)
	}
	if p.demuxer != nil {
		p.demuxer.Stop()
	}
	if p.videoWorker != nil {
		p.videoWorker.Stop()
	}
	if p.audioWorker != nil {
		p.audioWorker.Stop()
	}
	if p.videoPktQ != nil {
		p.videoPktQ.Close()
	}
	if p.audioPktQ != nil {
		p.audioPktQ.Close()
	}
	if p.videoFrameQ != nil {
		p.videoFrameQ.Close()
	}
	if p.audioFrameQ != nil {
		p.audioFrameQ.Close()
	}
	p.mu.Unlock()

	// Wait unlocked: the present loops being drained may themselves need
	// p.mu (checkFinished's FINISHED transition), so holding it here
	// would deadlock against them.
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rec != nil {
		p.rec.Abort()
		p.rec = nil
	}
	if p.audioPlay != nil {
		_ = p.audioPlay.Close()
		p.audioPlay = nil
	}
	if p.scaler != nil {
		p.scaler.Close()
	}
	if p.resampler != nil {
		p.resampler.Close()
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}

	// Teardown complete: reset to NONE so a subsequent Open (directly,
	// or via PlayNext/PlayPrev/OpenPlaylist) is legal again.
	p.state = StateNone
	return nil
}

// Frames exposes the FrameBuffer a videosink.Presenter reads from.
func (p *Player) Frames() *videosink.FrameBuffer {
	return p.frames
}
