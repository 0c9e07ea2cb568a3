package session

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/zencli/domain"
)

// ErrClosed is returned by every operation once the controller is torn down
var ErrClosed = errors.New("session controller closed")

// LoadError reports that the audio for a track could not be acquired
type LoadError struct {
	Track domain.Track
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load audio for %q: %v", e.Track.ID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
