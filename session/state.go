package session

import "github.com/yhkl-dev/zencli/domain"

// State is the lifecycle position of the current session
type State int

const (
	StateIdle     State = iota // selected (or nothing selected) and not counting
	StateLoading               // acquiring the audio handle for the selected track
	StateRunning               // counting down with playback
	StatePaused                // countdown frozen, playback halted
	StateFinished              // countdown reached zero
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the session as seen from outside the controller
type Snapshot struct {
	SessionID        string
	State            State
	RemainingSeconds int
	Track            *domain.Track // nil when nothing is selected
	HasAudio         bool
}

// StatusLabel is the short word shown under the countdown
func (s Snapshot) StatusLabel() string {
	switch s.State {
	case StateLoading:
		return "LOADING..."
	case StateRunning:
		return "MEDITATING"
	case StatePaused:
		return "PAUSED"
	case StateFinished:
		return "COMPLETE"
	default:
		return "READY"
	}
}

// ControlsEnabled reports whether the start/pause control does anything
func (s Snapshot) ControlsEnabled() bool {
	return s.Track != nil && s.State != StateLoading && s.State != StateFinished
}

// ResetEnabled reports whether reset has anything to undo
func (s Snapshot) ResetEnabled() bool {
	return s.Track != nil && s.State != StateLoading && s.State != StateIdle
}
