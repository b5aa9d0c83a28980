package player

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	steps := []State{StateNone, StateReady, StateReadyToPlay, StatePlaying, StatePaused, StatePlaying, StateFinished}
	for i := 1; i < len(steps); i++ {
		if !canTransition(steps[i-1], steps[i]) {
			t.Fatalf("expected %s -> %s to be legal", steps[i-1], steps[i])
		}
	}
}

func TestCanTransitionRejectsSkippingReadyToPlay(t *testing.T) {
	if canTransition(StateReady, StatePlaying) {
		t.Fatalf("READY -> PLAYING should not be legal without passing through READY_TO_PLAY")
	}
}

func TestAbortIsAlwaysLegal(t *testing.T) {
	for _, s := range []State{StateNone, StateReady, StateReadyToPlay, StatePlaying, StatePaused, StateFinished} {
		if !canTransition(s, StateAbort) {
			t.Fatalf("expected %s -> ABORT to always be legal", s)
		}
	}
}

func TestFinishedCanReplayOrReopen(t *testing.T) {
	if !canTransition(StateFinished, StateReadyToPlay) {
		t.Fatalf("FINISHED -> READY_TO_PLAY (replay) should be legal")
	}
	if !canTransition(StateFinished, StateReady) {
		t.Fatalf("FINISHED -> READY (open next) should be legal")
	}
}

func TestStateStringKnownValues(t *testing.T) {
	cases := map[State]string{
		StateNone:        "NONE",
		StatePlaying:     "PLAYING",
		StateAbort:       "ABORT",
		State(99):        "State(99)",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
