package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// OutputSampleRate is the rate the speaker is opened with; tracks with a
// different rate are resampled.
const OutputSampleRate beep.SampleRate = 44100

// speakerDriver is the part of beep/speaker the service uses
type speakerDriver interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type systemSpeaker struct{}

func (systemSpeaker) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (systemSpeaker) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (systemSpeaker) Lock()                   { speaker.Lock() }
func (systemSpeaker) Unlock()                 { speaker.Unlock() }

type beepHandle struct {
	id      uint64
	locator string
	src     *Source
	stream  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
}

func (h *beepHandle) Locator() string { return h.locator }

// BeepService plays decoded files through the beep speaker mixer. Every
// handle owns its decoder and a paused control inside the mixer.
type BeepService struct {
	fetcher *Fetcher
	logger  *slog.Logger
	driver  speakerDriver

	seq      atomic.Uint64
	initOnce sync.Once
	initErr  error

	mu      sync.Mutex
	handles map[uint64]*beepHandle
}

// NewBeepService creates the default backend
func NewBeepService(fetcher *Fetcher, logger *slog.Logger) (*BeepService, error) {
	return newBeepService(fetcher, systemSpeaker{}, logger), nil
}

func newBeepService(fetcher *Fetcher, driver speakerDriver, logger *slog.Logger) *BeepService {
	return &BeepService{
		fetcher: fetcher,
		logger:  logger.With("backend", "beep"),
		driver:  driver,
		handles: make(map[uint64]*beepHandle),
	}
}

func (s *BeepService) initSpeaker() error {
	s.initOnce.Do(func() {
		s.initErr = s.driver.Init(OutputSampleRate, OutputSampleRate.N(100*time.Millisecond))
		if s.initErr != nil {
			s.initErr = errors.Wrap(s.initErr, "init speaker")
		}
	})
	return s.initErr
}

func decode(src *Source) (beep.StreamSeekCloser, beep.Format, error) {
	switch src.Ext {
	case ".mp3":
		return mp3.Decode(src)
	case ".ogg", ".oga":
		return vorbis.Decode(src)
	case ".wav":
		return wav.Decode(src)
	default:
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "extension %q", src.Ext)
	}
}

// Load implements Service
func (s *BeepService) Load(ctx context.Context, locator string) (Handle, error) {
	if err := s.initSpeaker(); err != nil {
		return nil, err
	}

	src, err := s.fetcher.Open(ctx, locator)
	if err != nil {
		return nil, err
	}

	stream, format, err := decode(src)
	if err != nil {
		src.Close()
		return nil, errors.Wrapf(err, "decode %s", locator)
	}

	if err := ctx.Err(); err != nil {
		stream.Close()
		src.Close()
		return nil, err
	}

	var out beep.Streamer = stream
	if format.SampleRate != OutputSampleRate {
		out = beep.Resample(4, format.SampleRate, OutputSampleRate, stream)
	}

	h := &beepHandle{
		id:      s.seq.Inc(),
		locator: locator,
		src:     src,
		stream:  stream,
		ctrl:    &beep.Ctrl{Streamer: out, Paused: true},
	}

	s.mu.Lock()
	s.handles[h.id] = h
	s.mu.Unlock()

	s.driver.Play(h.ctrl)
	s.logger.Debug("track loaded", "locator", locator, "handle", h.id, "sample_rate", int(format.SampleRate))
	return h, nil
}

func (s *BeepService) lookup(h Handle) (*beepHandle, error) {
	bh, ok := h.(*beepHandle)
	if !ok {
		return nil, ErrStaleHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles[bh.id] != bh {
		return nil, ErrStaleHandle
	}
	return bh, nil
}

func (s *BeepService) setPaused(h Handle, paused bool) error {
	bh, err := s.lookup(h)
	if err != nil {
		return err
	}
	s.driver.Lock()
	bh.ctrl.Paused = paused
	s.driver.Unlock()
	return nil
}

// Play implements Service
func (s *BeepService) Play(_ context.Context, h Handle) error {
	return s.setPaused(h, false)
}

// Pause implements Service
func (s *BeepService) Pause(_ context.Context, h Handle) error {
	return s.setPaused(h, true)
}

// Stop pauses and rewinds, like a tape deck's stop button
func (s *BeepService) Stop(ctx context.Context, h Handle) error {
	if err := s.setPaused(h, true); err != nil {
		return err
	}
	return s.SeekToStart(ctx, h)
}

// SeekToStart implements Service
func (s *BeepService) SeekToStart(_ context.Context, h Handle) error {
	bh, err := s.lookup(h)
	if err != nil {
		return err
	}
	s.driver.Lock()
	err = bh.stream.Seek(0)
	s.driver.Unlock()
	return errors.Wrap(err, "seek")
}

// Unload detaches the control from the mixer and closes the decoder
func (s *BeepService) Unload(_ context.Context, h Handle) error {
	bh, err := s.lookup(h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.handles, bh.id)
	s.mu.Unlock()

	// A Ctrl without a streamer reports itself drained and the mixer drops it
	s.driver.Lock()
	bh.ctrl.Paused = false
	bh.ctrl.Streamer = nil
	s.driver.Unlock()

	err = bh.stream.Close()
	// not every decoder closes its reader
	bh.src.Close()
	s.logger.Debug("track unloaded", "locator", bh.locator, "handle", bh.id)
	return errors.Wrap(err, "close decoder")
}

// Close unloads whatever is still loaded
func (s *BeepService) Close() error {
	s.mu.Lock()
	handles := make([]*beepHandle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	var err error
	for _, h := range handles {
		err = multierr.Append(err, s.Unload(context.Background(), h))
	}
	return err
}
