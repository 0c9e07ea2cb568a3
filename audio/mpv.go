package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/wildeyedskies/go-mpv/mpv"
	"go.uber.org/atomic"
)

type mpvHandle struct {
	id      uint64
	locator string
}

func (h *mpvHandle) Locator() string { return h.locator }

// MPVService drives a single embedded mpv instance. Handles are logical:
// only the most recently loaded one is live.
type MPVService struct {
	mpv    *mpv.Mpv
	logger *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}

	seq    atomic.Uint64
	loadMu sync.Mutex

	mu      sync.Mutex
	current *mpvHandle
	waiter  chan *mpv.Event
}

// NewMPVService creates and initialises the mpv instance
func NewMPVService(ctx context.Context, logger *slog.Logger) (*MPVService, error) {
	m, err := createMPVInstance()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MPV instance")
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &MPVService{
		mpv:    m,
		logger: logger.With("backend", "mpv"),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.dispatchEvents(ctx)
	return s, nil
}

func createMPVInstance() (*mpv.Mpv, error) {
	m := mpv.Create()

	m.SetOptionString("audio-display", "no")
	m.SetOptionString("video", "no")
	m.SetOptionString("idle", "yes")
	// the session timer decides when a track is over
	m.SetOptionString("keep-open", "yes")

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, err
	}
	return m, nil
}

// dispatchEvents forwards mpv events to a pending Load and drops the rest
func (s *MPVService) dispatchEvents(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e := s.mpv.WaitEvent(1)
		if e == nil || e.Event_Id == mpv.EVENT_NONE {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if e.Event_Id == mpv.EVENT_SHUTDOWN {
			return
		}

		s.mu.Lock()
		w := s.waiter
		s.mu.Unlock()
		if w == nil {
			continue
		}
		select {
		case w <- e:
		default:
			s.logger.Debug("dropped mpv event", "event", e.Event_Id)
		}
	}
}

// awaitLoad waits for the outcome of a loadfile command. Events that
// precede START_FILE belong to the previous file and are ignored.
func awaitLoad(ctx context.Context, events <-chan *mpv.Event) error {
	started := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-events:
			switch e.Event_Id {
			case mpv.EVENT_START_FILE:
				started = true
			case mpv.EVENT_FILE_LOADED:
				if started {
					return nil
				}
			case mpv.EVENT_END_FILE:
				if started {
					return errors.New("mpv could not open the file")
				}
			}
		}
	}
}

func (s *MPVService) command(args ...string) error {
	if err := s.mpv.Command(args); err != nil {
		return errors.Wrapf(err, "mpv %v", args)
	}
	return nil
}

// Load implements Service
func (s *MPVService) Load(ctx context.Context, locator string) (Handle, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	events := make(chan *mpv.Event, 16)
	s.mu.Lock()
	s.waiter = events
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.waiter = nil
		s.mu.Unlock()
	}()

	if err := s.command("set", "pause", "yes"); err != nil {
		return nil, err
	}
	if err := s.command("loadfile", locator, "replace"); err != nil {
		return nil, err
	}
	if err := awaitLoad(ctx, events); err != nil {
		s.command("stop")
		return nil, errors.Wrapf(err, "load %s", locator)
	}

	h := &mpvHandle{id: s.seq.Inc(), locator: locator}
	s.mu.Lock()
	s.current = h
	s.mu.Unlock()

	s.logger.Debug("track loaded", "locator", locator, "handle", h.id)
	return h, nil
}

func (s *MPVService) live(h Handle) error {
	mh, ok := h.(*mpvHandle)
	if !ok {
		return ErrStaleHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != mh {
		return ErrStaleHandle
	}
	return nil
}

// Play implements Service
func (s *MPVService) Play(_ context.Context, h Handle) error {
	if err := s.live(h); err != nil {
		return err
	}
	return s.command("set", "pause", "no")
}

// Pause implements Service
func (s *MPVService) Pause(_ context.Context, h Handle) error {
	if err := s.live(h); err != nil {
		return err
	}
	return s.command("set", "pause", "yes")
}

// Stop pauses and rewinds but keeps the file loaded
func (s *MPVService) Stop(ctx context.Context, h Handle) error {
	if err := s.Pause(ctx, h); err != nil {
		return err
	}
	return s.SeekToStart(ctx, h)
}

// SeekToStart implements Service
func (s *MPVService) SeekToStart(_ context.Context, h Handle) error {
	if err := s.live(h); err != nil {
		return err
	}
	return s.command("seek", "0", "absolute")
}

// Unload implements Service
func (s *MPVService) Unload(_ context.Context, h Handle) error {
	if err := s.live(h); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.command("stop")
}

// Close terminates mpv once the event loop has let go of it
func (s *MPVService) Close() error {
	err := s.command("quit")
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(3 * time.Second):
		s.logger.Warn("mpv event loop did not stop")
	}
	s.mpv.TerminateDestroy()
	return err
}
