// Package player implements the Player state machine (C11, §4.9):
// NONE -> READY -> READY_TO_PLAY -> PLAYING <-> PAUSED -> FINISHED, with
// ABORT reachable from any state. Threading/lifecycle discipline (a
// stop/done channel pair per active decode session, a restart sequence
// that waits for the old session to fully drain before starting a new
// one) is grounded on e1z0-QAnotherRTSP/src/camera.go's CamWindow:
// Close/restartDecoder/StopCamera/StartCamera, generalized from "one Qt
// camera window" to a headless, UI-agnostic playback engine.
package player

import (
	"fmt"
)

// State is one node of the playback state machine described in §4.9.
// rinbarpen/multimedia's PlayerState enum (NONE, INITED, READY, PLAYING,
// PAUSED, ABORT) was resolved per the design ledger into this slightly
// richer set, splitting INITED's "configured but not yet opened" meaning
// from READY's "opened, decode contexts live" meaning, and adding
// READY_TO_PLAY/FINISHED as the distinct points §4.9 names between "can
// start" and "ran out of stream".
type State int

const (
	StateNone State = iota
	StateReady
	StateReadyToPlay
	StatePlaying
	StatePaused
	StateFinished
	StateAbort
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateReady:
		return "READY"
	case StateReadyToPlay:
		return "READY_TO_PLAY"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateFinished:
		return "FINISHED"
	case StateAbort:
		return "ABORT"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions enumerates every legal edge. ABORT is reachable from any
// state (added separately below) since it models a hard teardown request
// rather than a normal lifecycle step.
var transitions = map[State][]State{
	StateNone:        {StateReady},
	StateReady:        {StateReadyToPlay},
	StateReadyToPlay: {StatePlaying},
	StatePlaying:     {StatePaused, StateFinished, StateReadyToPlay},
	StatePaused:      {StatePlaying, StateReadyToPlay},
	StateFinished:    {StateReadyToPlay, StateReady},
}

// canTransition reports whether moving from -> to is a legal edge.
// StateAbort is always a legal destination; closing down is always
// allowed regardless of where playback currently stands.
func canTransition(from, to State) bool {
	if to == StateAbort {
		return true
	}
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// errInvalidTransition names the states involved so callers/logs can
// report exactly what move was rejected.
type errInvalidTransition struct {
	from, to State
}

func (e *errInvalidTransition) Error() string {
	return fmt.Sprintf("player: illegal state transition %s -> %s", e.from, e.to)
}
