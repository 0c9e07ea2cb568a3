package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/yhkl-dev/zencli/domain"
	"github.com/yhkl-dev/zencli/session"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{600, "10:00"},
		{5999, "99:59"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(domain.Track{DurationSeconds: 300}); got != "5 min" {
		t.Errorf("FormatMinutes(300s) = %q", got)
	}
	if got := FormatMinutes(domain.Track{DurationSeconds: 90}); got != "1.5 min" {
		t.Errorf("FormatMinutes(90s) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Relaxing Waves", 40); got != "Relaxing Waves" {
		t.Errorf("short name changed: %q", got)
	}
	if got := Truncate("Relaxing Waves", 8); got != "Relaxi…" && got != "Relaxin…" {
		t.Errorf("Truncate() = %q", got)
	}
	// wide runes take two cells each
	if got := Truncate("瞑想の時間です", 6); !strings.HasSuffix(got, "…") {
		t.Errorf("wide name not truncated: %q", got)
	}
}

func TestSubtitle(t *testing.T) {
	if got := Subtitle(session.Snapshot{}); got != "Time: --:--" {
		t.Errorf("Subtitle(no track) = %q", got)
	}
	snap := session.Snapshot{Track: &domain.Track{ID: "a", DurationSeconds: 600}}
	if got := Subtitle(snap); got != "Duration: 10 min" {
		t.Errorf("Subtitle(track) = %q", got)
	}
	if got := TrackTitle(session.Snapshot{}); got != "Select a track" {
		t.Errorf("TrackTitle(no track) = %q", got)
	}
}

func TestControlHints(t *testing.T) {
	track := &domain.Track{ID: "a", DurationSeconds: 60}

	running := ControlHints(session.Snapshot{State: session.StateRunning, Track: track})
	if !strings.Contains(running, "[white]SPACE [gray]pause") || !strings.Contains(running, "[white]r [gray]reset") {
		t.Errorf("running hints = %q", running)
	}

	loading := ControlHints(session.Snapshot{State: session.StateLoading, Track: track})
	if !strings.Contains(loading, "[darkgray]SPACE start") || !strings.Contains(loading, "[darkgray]r reset") {
		t.Errorf("loading hints should be greyed out: %q", loading)
	}

	finished := ControlHints(session.Snapshot{State: session.StateFinished, Track: track})
	if !strings.Contains(finished, "[darkgray]SPACE done") || !strings.Contains(finished, "[white]r [gray]reset") {
		t.Errorf("finished hints = %q", finished)
	}
}

func TestFormatNotification(t *testing.T) {
	track := domain.Track{ID: "a", Name: "Waves"}

	done := FormatNotification(session.Notification{Kind: session.NotifyCompleted, Track: track})
	if !strings.Contains(done, "complete") || !strings.Contains(done, "Waves") {
		t.Errorf("completion text = %q", done)
	}

	failed := FormatNotification(session.Notification{
		Kind:  session.NotifyLoadFailed,
		Track: track,
		Err:   errors.New("404"),
	})
	if !strings.Contains(failed, "Could not load Waves") || !strings.Contains(failed, "404") {
		t.Errorf("failure text = %q", failed)
	}
}

func TestFormatSessionEscapesNames(t *testing.T) {
	snap := session.Snapshot{
		State:            session.StateRunning,
		RemainingSeconds: 61,
		Track:            &domain.Track{ID: "a", Name: "[red]Rain", DurationSeconds: 120},
	}
	got := FormatSession(snap, "")
	if !strings.Contains(got, "01:01") || !strings.Contains(got, "MEDITATING") {
		t.Errorf("session text = %q", got)
	}
	if strings.Contains(got, "[red]Rain") {
		t.Errorf("track name was not escaped: %q", got)
	}
}
