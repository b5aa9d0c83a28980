//go:build darwin

package syswatch

import (
	"github.com/prashantgupta24/mac-sleep-notifier/notifier"

	"github.com/dvorak-labs/avplayer/internal/avlog"
)

// Start begins listening for macOS sleep/wake notifications on a new
// goroutine, dispatching to onSleep/onWake. It does not block; call it
// once per process.
func (w *Watcher) Start() {
	ch := notifier.GetInstance().Start()
	go func() {
		for activity := range ch {
			switch activity.Type {
			case notifier.Awake:
				avlog.Warnf("syswatch: system woke, resuming registered players")
				w.onWake()
			case notifier.Sleep:
				avlog.Warnf("syswatch: system sleeping, pausing registered players")
				w.onSleep()
			}
		}
	}()
}
