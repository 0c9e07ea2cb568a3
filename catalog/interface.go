package catalog

import "github.com/yhkl-dev/zencli/domain"

// Catalog is the ordered list of tracks a session can be started from.
type Catalog interface {
	Tracks() []domain.Track
	Default() (domain.Track, bool)
	Find(id string) (domain.Track, bool)
	Search(query string) []domain.Track
}
