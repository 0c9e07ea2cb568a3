package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/yhkl-dev/zencli/config"
	"github.com/yhkl-dev/zencli/domain"
)

// Builtin is served when the config lists no tracks.
var Builtin = []domain.Track{
	{
		ID:              "1",
		Name:            "Relaxing Waves (5 min)",
		Locator:         "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
		DurationSeconds: 5 * 60,
	},
	{
		ID:              "2",
		Name:            "Tibetan Bell (10 min)",
		Locator:         "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
		DurationSeconds: 10 * 60,
	},
	{
		ID:              "3",
		Name:            "Deep Sound (15 min)",
		Locator:         "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
		DurationSeconds: 15 * 60,
	},
	{
		ID:              "4",
		Name:            "Deep Silence (3 min)",
		Locator:         "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3",
		DurationSeconds: 3 * 60,
	},
}

// Static is an immutable in-memory catalog
type Static struct {
	tracks []domain.Track
	byID   map[string]int
}

// NewStatic validates tracks and keeps their order
func NewStatic(tracks []domain.Track) (*Static, error) {
	s := &Static{
		tracks: make([]domain.Track, 0, len(tracks)),
		byID:   make(map[string]int, len(tracks)),
	}
	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate track id %q", t.ID)
		}
		s.byID[t.ID] = len(s.tracks)
		s.tracks = append(s.tracks, t)
	}
	return s, nil
}

// FromConfig builds the catalog from [[tracks]], falling back to Builtin
func FromConfig(cfg *config.Config) (*Static, error) {
	if len(cfg.Tracks) == 0 {
		return NewStatic(Builtin)
	}

	tracks := make([]domain.Track, len(cfg.Tracks))
	for i, tc := range cfg.Tracks {
		seconds, err := parseSeconds(tc.Duration)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", tc.ID, err)
		}
		tracks[i] = domain.Track{
			ID:              tc.ID,
			Name:            tc.Name,
			Locator:         tc.URI,
			DurationSeconds: seconds,
			Artwork:         tc.Artwork,
		}
	}
	return NewStatic(tracks)
}

// parseSeconds accepts whole seconds (300, "300") or a duration ("5m")
func parseSeconds(raw any) (int, error) {
	if s, ok := raw.(string); ok && strings.IndexFunc(s, isUnit) >= 0 {
		d, err := cast.ToDurationE(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if d%time.Second != 0 {
			return 0, fmt.Errorf("duration %q is not a whole number of seconds", s)
		}
		return int(d / time.Second), nil
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %v: %w", raw, err)
	}
	return n, nil
}

func isUnit(r rune) bool {
	return r == 'h' || r == 'm' || r == 's'
}

// Tracks returns a copy of the ordered track list
func (s *Static) Tracks() []domain.Track {
	out := make([]domain.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Default returns the first track
func (s *Static) Default() (domain.Track, bool) {
	if len(s.tracks) == 0 {
		return domain.Track{}, false
	}
	return s.tracks[0], true
}

func (s *Static) Find(id string) (domain.Track, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Track{}, false
	}
	return s.tracks[i], true
}

// Search matches query against names and ids, case-insensitively.
// An empty query returns every track.
func (s *Static) Search(query string) []domain.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Tracks()
	}

	var out []domain.Track
	for _, t := range s.tracks {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.ID), q) {
			out = append(out, t)
		}
	}
	return out
}
