package session

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/zencli/audio"
	"github.com/yhkl-dev/zencli/domain"
	"go.uber.org/multierr"
)

// loadResult is what an acquisition goroutine hands back. settled is
// closed once the handle has been stored or released, which is what the
// next acquisition waits for.
type loadResult struct {
	gen     uint64
	track   domain.Track
	handle  audio.Handle
	err     error
	settled chan struct{}
}

// acquire starts loading the selected track under the current generation
func (c *Controller) acquire() {
	track := *c.track
	gen := c.gen
	prev := c.settled
	settled := make(chan struct{})
	c.settled = settled

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.LoadTimeout)
	c.loadCancel = cancel
	logger := c.logger

	c.loads.Go(func() {
		defer cancel()

		// never hold two handles: wait until the previous acquisition has
		// stored or released whatever it got
		if prev != nil {
			<-prev
			if ctx.Err() != nil {
				close(settled)
				return
			}
		}

		h, err := c.opts.Audio.Load(ctx, track.Locator)
		res := loadResult{gen: gen, track: track, handle: h, err: err, settled: settled}

		select {
		case c.loaded <- res:
		case <-c.ctx.Done():
			// the controller is gone; nobody will store this handle
			if err == nil {
				logger.Debug("releasing handle loaded after teardown")
				c.release(logger, h)
			}
			close(settled)
		}
	})
}

func (c *Controller) finishLoad(res loadResult) {
	defer close(res.settled)

	if res.gen != c.gen {
		// superseded by a switch, reset, finish or close
		if res.err == nil {
			c.logger.Debug("releasing stale handle", "locator", res.handle.Locator())
			c.release(c.logger, res.handle)
		}
		return
	}
	c.loadCancel = nil

	if res.err != nil {
		lerr := &LoadError{Track: res.track, Err: res.err}
		c.logger.Warn("audio load failed", "error", res.err)
		if c.state == StateLoading {
			c.track = nil
			c.remaining = 0
			c.state = StateIdle
		}
		c.notify(Notification{Kind: NotifyLoadFailed, Track: res.track, Err: lerr})
		c.publish()
		return
	}

	c.handle = res.handle
	switch c.state {
	case StateLoading:
		c.state = StateIdle
		c.logger.Info("track ready")
	case StateRunning:
		c.bestEffort("play", c.opts.Audio.Play, c.handle)
	}
	c.publish()
}

// teardown ends the current session epoch: the timer stops, any
// acquisition in flight is cancelled and the handle is released. Results
// of older acquisitions are discarded from here on.
func (c *Controller) teardown() {
	c.stopTimer()
	c.gen++

	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
	if c.handle != nil {
		c.release(c.logger, c.handle)
		c.handle = nil
	}
}

// release stops, rewinds and unloads h. Failures are logged, never
// returned, so a misbehaving backend cannot block a track switch.
func (c *Controller) release(logger *slog.Logger, h audio.Handle) {
	var err error
	for _, step := range []struct {
		name string
		fn   func(context.Context, audio.Handle) error
	}{
		{"stop", c.opts.Audio.Stop},
		{"seek", c.opts.Audio.SeekToStart},
		{"unload", c.opts.Audio.Unload},
	} {
		ctx, cancel := c.teardownContext()
		err = multierr.Append(err, errors.Wrap(step.fn(ctx, h), step.name))
		cancel()
	}
	if err != nil {
		logger.Warn("audio teardown incomplete", "locator", h.Locator(), "error", err)
	}
}

func (c *Controller) bestEffort(name string, fn func(context.Context, audio.Handle) error, h audio.Handle) {
	ctx, cancel := c.teardownContext()
	defer cancel()
	if err := fn(ctx, h); err != nil {
		c.logger.Warn("audio call failed", "call", name, "error", err)
	}
}

// teardownContext survives the controller's own cancellation so the last
// release during Close still gets its full timeout
func (c *Controller) teardownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.ctx), c.opts.TeardownTimeout)
}
