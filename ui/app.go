// Package ui is the terminal front end: a track selector, the session
// countdown and its controls, drawn with tview.
package ui

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/rivo/tview"
	"github.com/yhkl-dev/zencli/catalog"
	"github.com/yhkl-dev/zencli/config"
	"github.com/yhkl-dev/zencli/coverart"
	"github.com/yhkl-dev/zencli/domain"
	"github.com/yhkl-dev/zencli/session"
)

// Controller is the part of the session controller the UI drives
type Controller interface {
	SelectTrack(ctx context.Context, t domain.Track) error
	Toggle(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (session.Snapshot, error)
}

// command is one queued controller call
type command struct {
	name string
	fn   func(context.Context) error
}

// App represents the TUI application
type App struct {
	tviewApp *tview.Application
	cfg      *config.Config
	catalog  catalog.Catalog
	ctrl     Controller
	ctx      context.Context
	logger   *slog.Logger
	commands chan command

	// fields below are touched only on the tview goroutine
	snap       session.Snapshot
	visible    []domain.Track
	artwork    string
	artworkFor string

	pages          *tview.Pages
	rootFlex       *tview.Flex
	sessionView    *tview.TextView
	trackTable     *tview.Table
	controlBar     *tview.TextView
	searchView     *SearchView
	helpView       *HelpView
	notice         *tview.Modal
	keys           *KeyBindingManager
	coverConverter *coverart.Converter
}

// NewApp builds the widgets. SetController must be called before Run.
func NewApp(ctx context.Context, cfg *config.Config, cat catalog.Catalog, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{
		tviewApp:       tview.NewApplication(),
		cfg:            cfg,
		catalog:        cat,
		ctx:            ctx,
		logger:         logger.With("component", "ui"),
		commands:       make(chan command, 32),
		visible:        cat.Tracks(),
		coverConverter: coverart.NewConverter(25, 12),
	}
	a.createHomepage()
	go a.runCommands()
	return a
}

// SetController attaches the session controller the keys act on
func (a *App) SetController(ctrl Controller) {
	a.ctrl = ctrl
}

// Run starts the application and blocks until it quits
func (a *App) Run() error {
	if a.ctrl == nil {
		return errors.New("ui: no session controller")
	}
	if snap, err := a.ctrl.Snapshot(a.ctx); err == nil {
		a.applySnapshot(snap)
	}

	go func() {
		<-a.ctx.Done()
		a.tviewApp.Stop()
	}()

	a.logger.Info("start zencli")
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// OnChange receives controller snapshots. It is called on the controller
// goroutine, so the work is queued onto the tview goroutine.
func (a *App) OnChange(s session.Snapshot) {
	a.tviewApp.QueueUpdateDraw(func() {
		a.applySnapshot(s)
	})
}

// Notify shows a session notification in a modal
func (a *App) Notify(n session.Notification) {
	a.tviewApp.QueueUpdateDraw(func() {
		a.showNotice(FormatNotification(n))
	})
}

// WatchConfig reloads the track list when the config file changes
func (a *App) WatchConfig(loader *config.Loader) {
	loader.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			a.logger.Warn("config reload rejected", "error", err)
			return
		}
		cat, err := catalog.FromConfig(cfg)
		if err != nil {
			a.logger.Warn("catalog reload rejected", "error", err)
			return
		}
		a.logger.Info("catalog reloaded", "tracks", len(cat.Tracks()))
		a.tviewApp.QueueUpdateDraw(func() {
			a.setCatalog(cat)
		})
	})
}

func (a *App) setCatalog(cat catalog.Catalog) {
	a.catalog = cat
	a.applySearch(a.searchView.Query())
}

func (a *App) applySnapshot(s session.Snapshot) {
	prevID := trackID(a.snap.Track)
	a.snap = s
	if id := trackID(s.Track); id != prevID {
		a.artwork = ""
		a.loadArtwork(s.Track)
		a.renderTrackTable()
	}
	a.renderSession()
}

func trackID(t *domain.Track) string {
	if t == nil {
		return ""
	}
	return t.ID
}

// loadArtwork renders artwork off the UI goroutine and drops the result
// if the selection moved on meanwhile
func (a *App) loadArtwork(t *domain.Track) {
	if t == nil || !a.cfg.UI.ShowArtwork {
		return
	}
	track := *t
	a.artworkFor = track.ID
	go func() {
		ascii, err := a.coverConverter.Render(a.ctx, track.Artwork)
		if err != nil {
			a.logger.Debug("artwork unavailable", "track_id", track.ID, "error", err)
		}
		a.tviewApp.QueueUpdateDraw(func() {
			if a.artworkFor != track.ID {
				return
			}
			a.artwork = ascii
			a.renderSession()
		})
	}()
}

func (a *App) renderSession() {
	a.sessionView.SetText(FormatSession(a.snap, a.artwork))
	a.controlBar.SetText(ControlHints(a.snap))
}

// dispatch queues a controller call for the command worker. Calls run
// one at a time in key-press order; the controller reports back through
// OnChange.
func (a *App) dispatch(name string, fn func(context.Context) error) {
	if a.ctrl == nil {
		return
	}
	select {
	case a.commands <- command{name: name, fn: fn}:
	default:
		a.logger.Warn("session command dropped", "command", name)
	}
}

// runCommands executes queued controller calls off the UI goroutine until
// the app context ends
func (a *App) runCommands() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case cmd := <-a.commands:
			if err := cmd.fn(a.ctx); err != nil && !errors.Is(err, session.ErrClosed) && !errors.Is(err, context.Canceled) {
				a.logger.Warn("session command failed", "command", cmd.name, "error", err)
			}
		}
	}
}

func (a *App) selectTrack(t domain.Track) {
	a.logger.Debug("track chosen", "track_id", t.ID)
	a.dispatch("select", func(ctx context.Context) error { return a.ctrl.SelectTrack(ctx, t) })
}

func (a *App) toggle() {
	if !a.snap.ControlsEnabled() {
		return
	}
	a.dispatch("toggle", func(ctx context.Context) error { return a.ctrl.Toggle(ctx) })
}

func (a *App) reset() {
	if !a.snap.ResetEnabled() {
		return
	}
	a.dispatch("reset", func(ctx context.Context) error { return a.ctrl.Reset(ctx) })
}

// handleExit stops the UI; the caller closes the controller once Run returns
func (a *App) handleExit() {
	a.logger.Info("quit requested")
	a.tviewApp.Stop()
}
