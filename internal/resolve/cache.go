package resolve

import (
	"sync"

	"github.com/llehouerou/liner/internal/musicbrainz"
)

// DetailCache memoizes per-release detail lookups so the second scoring
// phase and the attempt loop never fetch the same release twice. It may
// be shared between resolvers to carry memoization across queries.
// Bounded by dropping everything once the limit is reached; a single run
// never comes close.
type DetailCache struct {
	mu      sync.Mutex
	entries map[string]*musicbrainz.ReleaseDetails
	limit   int
}

// NewDetailCache creates a cache holding up to limit entries; limit <= 0
// selects the default bound.
func NewDetailCache(limit int) *DetailCache {
	if limit <= 0 {
		limit = 256
	}
	return &DetailCache{
		entries: make(map[string]*musicbrainz.ReleaseDetails),
		limit:   limit,
	}
}

func (c *DetailCache) get(id string) (*musicbrainz.ReleaseDetails, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[id]
	return d, ok
}

func (c *DetailCache) put(id string, d *musicbrainz.ReleaseDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.limit {
		c.entries = make(map[string]*musicbrainz.ReleaseDetails)
	}
	c.entries[id] = d
}
