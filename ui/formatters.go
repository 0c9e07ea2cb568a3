package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/zencli/domain"
	"github.com/yhkl-dev/zencli/session"
)

// FormatDuration converts seconds to MM:SS format
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatMinutes renders a track length the way the selector lists it
func FormatMinutes(t domain.Track) string {
	return strconv.FormatFloat(t.Minutes(), 'f', -1, 64) + " min"
}

// Truncate shortens s to width terminal cells, counting wide runes twice
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// TrackTitle is the heading of the session panel
func TrackTitle(s session.Snapshot) string {
	if s.Track == nil {
		return "Select a track"
	}
	return s.Track.DisplayName()
}

// Subtitle shows the track length, or a blank timer when nothing is selected
func Subtitle(s session.Snapshot) string {
	if s.Track == nil {
		return "Time: --:--"
	}
	return "Duration: " + FormatMinutes(*s.Track)
}

func statusColor(s session.Snapshot) string {
	switch s.State {
	case session.StateRunning:
		return "lightgreen"
	case session.StatePaused:
		return "yellow"
	case session.StateLoading:
		return "darkgray"
	case session.StateFinished:
		return "lightblue"
	default:
		return "white"
	}
}

// FormatSession builds the left panel text
func FormatSession(s session.Snapshot, artwork string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[white::b]%s[-:-:-]\n", tview.Escape(TrackTitle(s)))
	fmt.Fprintf(&b, "[gray]%s\n\n", Subtitle(s))
	fmt.Fprintf(&b, "[%s::b]   %s[-:-:-]\n", statusColor(s), FormatDuration(s.RemainingSeconds))
	fmt.Fprintf(&b, "[%s]   %s\n", statusColor(s), s.StatusLabel())
	if artwork != "" {
		b.WriteString("\n")
		b.WriteString(artwork)
	}
	return b.String()
}

// primaryLabel names what the start/pause control would do
func primaryLabel(s session.Snapshot) string {
	switch s.State {
	case session.StateRunning:
		return "pause"
	case session.StateFinished:
		return "done"
	default:
		return "start"
	}
}

func hint(key, label string, enabled bool) string {
	if !enabled {
		return fmt.Sprintf("[darkgray]%s %s", key, label)
	}
	return fmt.Sprintf("[white]%s [gray]%s", key, label)
}

// ControlHints renders the bottom bar, greying out controls that are off
func ControlHints(s session.Snapshot) string {
	return strings.Join([]string{
		hint("SPACE", primaryLabel(s), s.ControlsEnabled()),
		hint("r", "reset", s.ResetEnabled()),
		hint("ENTER", "select", true),
		hint("/", "search", true),
		hint("?", "help", true),
		hint("ESC", "quit", true),
	}, "[darkgray] | ")
}

// FormatNotification is the text of the modal shown for n
func FormatNotification(n session.Notification) string {
	switch n.Kind {
	case session.NotifyCompleted:
		return fmt.Sprintf("Meditation complete!\n\nYou finished %s.", n.Track.DisplayName())
	case session.NotifyLoadFailed:
		return fmt.Sprintf("Audio error\n\nCould not load %s.\n%v", n.Track.DisplayName(), n.Err)
	default:
		return ""
	}
}
