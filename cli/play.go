package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yhkl-dev/zencli/audio"
	"github.com/yhkl-dev/zencli/domain"
	"github.com/yhkl-dev/zencli/session"
	"github.com/yhkl-dev/zencli/ui"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <track-id>",
	Short: "Run one session without the TUI",
	Long: `Play a track and count down its length on a single line. The session
ends when the countdown reaches zero; Ctrl+C stops it early.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// newAudioService builds the playback backend; tests swap it
var newAudioService = audio.New

func runPlay(cmd *cobra.Command, args []string) error {
	rt, err := setup("", os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	track, ok := rt.catalog.Find(args[0])
	if !ok {
		return errors.Errorf("unknown track %q (see zencli list)", args[0])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newAudioService(ctx, rt.cfg, rt.logger)
	if err != nil {
		return errors.Wrap(err, "failed to start audio backend")
	}
	defer svc.Close()

	return rt.play(ctx, svc, track, cmd.OutOrStdout())
}

// play runs one session to completion. Cancelling ctx stops it and returns
// nil; a load failure returns the *session.LoadError. No output guard:
// a headless session has no way to resume after a pause.
func (rt *runtime) play(ctx context.Context, svc audio.Service, track domain.Track, w io.Writer) error {
	snaps := make(chan session.Snapshot, 64)
	notes := make(chan session.Notification, 4)

	opts := rt.controllerOptions(svc)
	opts.OnChange = func(s session.Snapshot) {
		select {
		case snaps <- s:
		case <-ctx.Done():
		}
	}
	opts.Notifier = session.NotifierFunc(func(n session.Notification) {
		select {
		case notes <- n:
		default:
		}
	})

	ctrl, err := session.NewController(ctx, opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	out := newLinePrinter(w)
	if err := ctrl.SelectTrack(ctx, track); err != nil {
		if ctx.Err() != nil {
			out.finish("stopped")
			return nil
		}
		return err
	}

	started := false
	for {
		select {
		case <-ctx.Done():
			out.finish("stopped")
			return nil
		case n := <-notes:
			if n.Kind == session.NotifyLoadFailed {
				out.finish("")
				return n.Err
			}
		case s := <-snaps:
			out.render(s)
			if s.State == session.StateFinished && s.Track != nil {
				out.finish(fmt.Sprintf("%s complete", s.Track.DisplayName()))
				return nil
			}
			if !started && s.State == session.StateIdle && s.HasAudio {
				started = true
				if err := ctrl.Start(ctx); err != nil && ctx.Err() == nil {
					return err
				}
			}
		}
	}
}

var (
	playTimeStyle   = lipgloss.NewStyle().Bold(true)
	playStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
)

// linePrinter redraws one status line on a terminal and prints one line
// per state change anywhere else
type linePrinter struct {
	w           io.Writer
	interactive bool
	last        session.State
	printed     bool
}

func newLinePrinter(w io.Writer) *linePrinter {
	p := &linePrinter{w: w}
	if f, ok := w.(*os.File); ok {
		p.interactive = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *linePrinter) render(s session.Snapshot) {
	name := ui.TrackTitle(s)
	if p.interactive {
		fmt.Fprintf(p.w, "\r\033[K%s  %s  %s",
			playTimeStyle.Render(ui.FormatDuration(s.RemainingSeconds)),
			playStatusStyle.Render(s.StatusLabel()),
			name)
		p.printed = true
		return
	}
	if p.printed && s.State == p.last {
		return
	}
	p.last, p.printed = s.State, true
	fmt.Fprintf(p.w, "%s %s %s\n", ui.FormatDuration(s.RemainingSeconds), s.StatusLabel(), name)
}

func (p *linePrinter) finish(msg string) {
	if p.interactive && p.printed {
		fmt.Fprintln(p.w)
	}
	if msg != "" {
		fmt.Fprintln(p.w, msg)
	}
}
