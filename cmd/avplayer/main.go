// Command avplayer is the CLI entry point: it wires logging, on-disk
// config, the audio API context, a Player, and an ebiten window together
// and runs the presentation loop until the window closes.
//
// Grounded on e1z0-QAnotherRTSP/src/main.go for the flag/log-init shape
// (flag.Bool for a debug switch, log.SetFlags, astiav.SetLogCallback
// piping ffmpeg's own log into ours) and on erparts-go-avebi's
// examples/mediaplayer/main.go for the ebiten.Game wiring
// (Update/Draw/Layout, inpututil key handling for play/pause/seek).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	astiav "github.com/asticode/go-astiav"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/oto/v2"

	"github.com/dvorak-labs/avplayer/internal/avlog"
	"github.com/dvorak-labs/avplayer/internal/config"
	"github.com/dvorak-labs/avplayer/internal/player"
	"github.com/dvorak-labs/avplayer/internal/recorder"
	"github.com/dvorak-labs/avplayer/internal/syswatch"
	"github.com/dvorak-labs/avplayer/internal/videosink"
)

func main() {
	debugFFmpeg := flag.Bool("debugstreams", false, "log ffmpeg's own internal log output")
	inputFormatHint := flag.String("format", "", "input format hint for device/grabber sources (e.g. x11grab)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url-or-path>\n", os.Args[0])
		os.Exit(1)
	}
	url := flag.Arg(0)

	if *debugFFmpeg {
		astiav.SetLogLevel(astiav.LogLevelDebug)
		astiav.SetLogCallback(func(c astiav.Classer, l astiav.LogLevel, format, msg string) {
			log.Printf("ffmpeg: %s (level %d)", strings.TrimSpace(msg), l)
		})
	}

	settingsPath, err := config.DefaultPath()
	if err != nil {
		log.Fatalf("resolve settings path: %v", err)
	}
	store := config.NewStore(settingsPath)
	fileCfg, err := store.Load()
	if err != nil {
		log.Printf("config: failed to load settings, starting with defaults: %v", err)
		fileCfg = config.Default()
	}

	audioCtx, ready, err := oto.NewContext(44100, 2, oto.FormatSignedInt16LE)
	if err != nil {
		log.Fatalf("audio: init oto context: %v", err)
	}
	go func() {
		<-ready
		avlog.Warnf("audio: context ready")
	}()

	outDir := fileCfg.Recording.OutputDir
	if outDir == "" {
		home, _ := os.UserHomeDir()
		outDir = home + "/avplayer-recordings"
	}
	recCfg := recorder.Config{
		OutputDir:       outDir,
		FilenamePrefix:  fileCfg.Recording.FilenamePrefix,
		MaxClipDuration: time.Duration(fileCfg.Recording.MaxClipMinutes) * time.Minute,
	}

	p := player.New(player.Options{
		AudioContext:    audioCtx,
		InputFormatHint: *inputFormatHint,
		RecorderConfig:  recCfg,
	})
	p.Cfg.SetVolume(fileCfg.Volume)
	p.Cfg.SetMuted(fileCfg.Muted)
	p.Cfg.SetLoop(fileCfg.Loop)

	if err := p.Open(url); err != nil {
		log.Fatalf("open %q: %v", url, err)
	}
	if err := p.Play(); err != nil {
		log.Fatalf("play: %v", err)
	}

	watcher := syswatch.New()
	watcher.Register(p)
	watcher.Start()

	fileCfg.LastURL = url
	if err := store.Save(fileCfg); err != nil {
		log.Printf("config: failed to save settings: %v", err)
	}

	ebiten.SetWindowTitle("avplayer - " + url)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)

	game := &game{player: p, presenter: videosink.NewPresenter(p.Frames())}
	if err := ebiten.RunGame(game); err != nil {
		log.Printf("run game: %v", err)
	}

	watcher.Unregister(p)
	if err := p.Close(); err != nil {
		log.Printf("close: %v", err)
	}
}

// game adapts a player.Player + videosink.Presenter pair to ebiten's
// Game interface, translating keyboard input into player operations.
type game struct {
	player    *player.Player
	presenter *videosink.Presenter
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.player.State() == player.StatePlaying {
			return g.player.Pause()
		}
		return g.player.Play()
	}
	cfg := g.player.Cfg
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		return g.player.Seek(g.player.CurrentTime() - cfg.SeekStep())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		return g.player.Seek(g.player.CurrentTime() + cfg.SeekStep())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		cfg.SetVolume(clampVolume(cfg.Volume() + 0.1))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		cfg.SetVolume(clampVolume(cfg.Volume() - 0.1))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		cfg.SetMuted(!cfg.Muted())
	}
	return nil
}

// clampVolume bounds §6's volume adjustment to [0, 1.0].
func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1.0:
		return 1.0
	default:
		return v
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.presenter.Draw(screen)
	ebitenutil.DebugPrintAt(screen, "space: play/pause  left/right: seek  up/down: volume  m: mute  esc: quit", 8, 8)
}
