package syswatch

import "testing"

type fakePlayer struct {
	paused int
	played int
}

func (f *fakePlayer) Pause() error { f.paused++; return nil }
func (f *fakePlayer) Play() error  { f.played++; return nil }

func TestOnSleepPausesAllRegistered(t *testing.T) {
	w := New()
	a, b := &fakePlayer{}, &fakePlayer{}
	w.Register(a)
	w.Register(b)

	w.onSleep()

	if a.paused != 1 || b.paused != 1 {
		t.Fatalf("expected both players paused once, got a=%d b=%d", a.paused, b.paused)
	}
}

func TestOnWakeResumesAllRegistered(t *testing.T) {
	w := New()
	a := &fakePlayer{}
	w.Register(a)

	w.onWake()

	if a.played != 1 {
		t.Fatalf("expected player resumed once, got %d", a.played)
	}
}

func TestUnregisterStopsFutureNotifications(t *testing.T) {
	w := New()
	a := &fakePlayer{}
	w.Register(a)
	w.Unregister(a)

	w.onSleep()
	w.onWake()

	if a.paused != 0 || a.played != 0 {
		t.Fatalf("unregistered player should not be notified, got paused=%d played=%d", a.paused, a.played)
	}
}
