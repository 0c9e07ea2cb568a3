// Package session implements the meditation session controller: one
// selected track, its audio handle and a countdown, driven through the
// states idle, loading, running, paused and finished.
//
// All session fields are owned by a single goroutine. Public methods post
// work to it and wait, so callers never observe a half-applied transition.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/zencli/audio"
	"github.com/yhkl-dev/zencli/catalog"
	"github.com/yhkl-dev/zencli/domain"
	"go.uber.org/atomic"
)

// tickInterval is one countdown second; every tick takes one second off
// the remaining time.
const tickInterval = time.Second

// Options configures a Controller. Only Audio is required.
type Options struct {
	Audio    audio.Service
	Catalog  catalog.Catalog // its default track is selected on start
	Notifier Notifier
	Clock    Clock
	Logger   *slog.Logger

	// OnChange receives a snapshot after every visible change. It runs on
	// the controller goroutine and must not call back into the controller.
	OnChange func(Snapshot)

	LoadTimeout     time.Duration
	TeardownTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 30 * time.Second
	}
	if o.TeardownTimeout <= 0 {
		o.TeardownTimeout = 3 * time.Second
	}
}

// Controller runs one session at a time
type Controller struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan func()
	loaded chan loadResult
	done   chan struct{}
	closed atomic.Bool
	loads  conc.WaitGroup

	// fields below are touched only by the run goroutine
	logger     *slog.Logger
	sessionID  string
	track      *domain.Track
	remaining  int
	state      State
	handle     audio.Handle
	ticker     Ticker
	tickC      <-chan time.Time
	gen        uint64
	loadCancel context.CancelFunc
	settled    chan struct{}
}

// NewController starts the controller goroutine. Cancelling ctx has the
// same effect as Close, except that it does not wait.
func NewController(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Audio == nil {
		return nil, errors.New("session: audio service is required")
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		cmds:   make(chan func()),
		loaded: make(chan loadResult),
		done:   make(chan struct{}),
		logger: opts.Logger,
		state:  StateIdle,
	}
	go c.run()
	return c, nil
}

func (c *Controller) run() {
	defer close(c.done)

	if c.opts.Catalog != nil {
		if t, ok := c.opts.Catalog.Default(); ok {
			c.selectTrack(t)
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			c.teardown()
			c.logger.Info("session controller stopped")
			return
		case cmd := <-c.cmds:
			cmd()
		case res := <-c.loaded:
			c.finishLoad(res)
		case <-c.tickC:
			c.tick()
		}
	}
}

// do runs fn on the controller goroutine and waits for it
func (c *Controller) do(ctx context.Context, fn func()) error {
	if c.closed.Load() {
		return ErrClosed
	}
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// once accepted, a command always runs to completion
	<-finished
	return nil
}

// SelectTrack tears the current session down and starts loading t.
// Selecting the track that is already selected reloads it.
func (c *Controller) SelectTrack(ctx context.Context, t domain.Track) error {
	return c.do(ctx, func() { c.selectTrack(t) })
}

// Start begins or resumes the countdown. It is ignored while loading,
// after the session finished or when nothing is selected.
func (c *Controller) Start(ctx context.Context) error {
	return c.do(ctx, c.start)
}

// Pause freezes a running countdown; ignored in any other state
func (c *Controller) Pause(ctx context.Context) error {
	return c.do(ctx, c.pause)
}

// Toggle pauses a running session and starts any other
func (c *Controller) Toggle(ctx context.Context) error {
	return c.do(ctx, func() {
		if c.state == StateRunning {
			c.pause()
			return
		}
		c.start()
	})
}

// Reset returns to idle with the full duration restored. Ignored while
// loading.
func (c *Controller) Reset(ctx context.Context) error {
	return c.do(ctx, c.reset)
}

// Snapshot returns the current session state
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.do(ctx, func() { snap = c.snapshot() })
	return snap, err
}

// Close stops the timer, releases the audio handle and waits for any
// acquisition still in flight to give its handle back.
func (c *Controller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()
	<-c.done
	c.loads.Wait()
	return nil
}

func (c *Controller) selectTrack(t domain.Track) {
	c.teardown()

	c.sessionID = uuid.NewString()
	c.logger = c.opts.Logger.With("session_id", c.sessionID, "track_id", t.ID)
	c.track = &t
	c.remaining = t.DurationSeconds
	c.state = StateLoading
	c.logger.Info("track selected", "name", t.Name, "duration", t.DurationSeconds)

	c.acquire()
	c.publish()
}

func (c *Controller) start() {
	if c.track == nil {
		return
	}
	switch c.state {
	case StateIdle, StatePaused:
	default:
		return
	}

	if c.handle != nil {
		c.bestEffort("play", c.opts.Audio.Play, c.handle)
	} else if c.loadCancel == nil {
		// the handle was released by a reset; fetch it again and let the
		// countdown run meanwhile
		c.acquire()
	}

	c.state = StateRunning
	c.startTimer()
	c.logger.Debug("session running", "remaining", c.remaining)
	c.publish()
}

func (c *Controller) pause() {
	if c.state != StateRunning {
		return
	}
	c.stopTimer()
	if c.handle != nil {
		c.bestEffort("pause", c.opts.Audio.Pause, c.handle)
	}
	c.state = StatePaused
	c.logger.Debug("session paused", "remaining", c.remaining)
	c.publish()
}

func (c *Controller) reset() {
	if c.state == StateLoading {
		return
	}
	c.teardown()

	c.remaining = 0
	if c.track != nil {
		c.remaining = c.track.DurationSeconds
	}
	c.state = StateIdle
	c.logger.Debug("session reset")
	c.publish()
}

func (c *Controller) tick() {
	if c.state != StateRunning {
		return
	}

	// finish on the last second so "00:00" is never shown as running
	if c.remaining <= 1 {
		c.remaining = 0
		c.state = StateFinished
		c.teardown()
		c.logger.Info("session complete")
		c.notify(Notification{Kind: NotifyCompleted, Track: *c.track})
		c.publish()
		return
	}

	c.remaining--
	c.publish()
}

func (c *Controller) startTimer() {
	c.stopTimer()
	c.ticker = c.opts.Clock.NewTicker(tickInterval)
	c.tickC = c.ticker.C()
}

func (c *Controller) stopTimer() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.tickC = nil
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:        c.sessionID,
		State:            c.state,
		RemainingSeconds: c.remaining,
		HasAudio:         c.handle != nil,
	}
	if c.track != nil {
		t := *c.track
		snap.Track = &t
	}
	return snap
}

func (c *Controller) publish() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.snapshot())
	}
}

func (c *Controller) notify(n Notification) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Notify(n)
	}
}
