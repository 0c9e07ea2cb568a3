package session

import (
	"testing"

	"github.com/yhkl-dev/zencli/domain"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateLoading, "loading"},
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{StateFinished, "finished"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSnapshotGates(t *testing.T) {
	track := &domain.Track{ID: "a", DurationSeconds: 60}

	tests := []struct {
		name     string
		snap     Snapshot
		label    string
		controls bool
		reset    bool
	}{
		{"nothing selected", Snapshot{State: StateIdle}, "READY", false, false},
		{"ready", Snapshot{State: StateIdle, Track: track}, "READY", true, false},
		{"loading", Snapshot{State: StateLoading, Track: track}, "LOADING...", false, false},
		{"running", Snapshot{State: StateRunning, Track: track}, "MEDITATING", true, true},
		{"paused", Snapshot{State: StatePaused, Track: track}, "PAUSED", true, true},
		{"finished", Snapshot{State: StateFinished, Track: track}, "COMPLETE", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.StatusLabel(); got != tt.label {
				t.Errorf("StatusLabel() = %q, want %q", got, tt.label)
			}
			if got := tt.snap.ControlsEnabled(); got != tt.controls {
				t.Errorf("ControlsEnabled() = %v, want %v", got, tt.controls)
			}
			if got := tt.snap.ResetEnabled(); got != tt.reset {
				t.Errorf("ResetEnabled() = %v, want %v", got, tt.reset)
			}
		})
	}
}

func TestNotificationKindString(t *testing.T) {
	if NotifyLoadFailed.String() != "load_failed" || NotifyCompleted.String() != "completed" {
		t.Fatal("unexpected notification kind names")
	}
}
