package domain

import (
	"fmt"
	"time"
)

// Track is one meditation recording offered by the catalog. Tracks are
// immutable once built; copy them freely.
type Track struct {
	ID              string
	Name            string
	Locator         string // file path or http(s) URL of the playable resource
	DurationSeconds int    // whole seconds, always positive
	Artwork         string // optional image path or URL
}

// Duration returns the track length as a time.Duration
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// Minutes returns the track length in minutes, as shown next to its name
func (t Track) Minutes() float64 {
	return float64(t.DurationSeconds) / 60
}

// Validate checks the fields a session relies on
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track has no id")
	}
	if t.Locator == "" {
		return fmt.Errorf("track %q has no locator", t.ID)
	}
	if t.DurationSeconds <= 0 {
		return fmt.Errorf("track %q has non-positive duration %d", t.ID, t.DurationSeconds)
	}
	return nil
}

// DisplayName falls back to the ID when a track carries no name
func (t Track) DisplayName() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}
