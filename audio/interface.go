package audio

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/zencli/config"
)

var (
	// ErrStaleHandle is returned for a handle the backend no longer owns
	ErrStaleHandle = errors.New("audio handle is no longer loaded")

	// ErrUnsupportedFormat is returned when no decoder matches a locator
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Handle is an opaque loaded resource. Callers never look inside it; they
// pass it back to the Service that produced it.
type Handle interface {
	Locator() string
}

// Service defines the audio playback operations a session needs.
// Every call may block on I/O and honours its context.
type Service interface {
	// Load acquires a playable resource; it starts paused at position zero
	Load(ctx context.Context, locator string) (Handle, error)

	// Play starts or resumes playback
	Play(ctx context.Context, h Handle) error

	// Pause halts playback, keeping the position
	Pause(ctx context.Context, h Handle) error

	// Stop halts playback
	Stop(ctx context.Context, h Handle) error

	// SeekToStart rewinds to position zero
	SeekToStart(ctx context.Context, h Handle) error

	// Unload releases the resource; the handle is unusable afterwards
	Unload(ctx context.Context, h Handle) error

	// Close shuts the backend down
	Close() error
}

// New creates the backend named by cfg.Player.Backend
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Service, error) {
	switch cfg.Player.Backend {
	case "mpv":
		return NewMPVService(ctx, logger)
	case "beep", "":
		return NewBeepService(NewFetcher(cfg.Player.GetHTTPTimeout()), logger)
	default:
		return nil, errors.Errorf("unknown audio backend %q", cfg.Player.Backend)
	}
}
