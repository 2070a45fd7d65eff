// Package resolve implements the cross-source release resolution engine:
// candidate generation from MusicBrainz searches, composite scoring,
// aggregation and ranking, and the attempt pipeline with its exact-title
// fallback and failure log.
package resolve

import "time"

// Source names recorded in candidate provenance.
const (
	SourceReleaseGroup  = "release-group"
	SourceReleaseSearch = "release-search"
)

// Artwork states learned from the detail phase. The empty string means
// the archive was never consulted for this candidate.
const (
	ArtworkFront = "front"
	ArtworkSome  = "some"
	ArtworkNone  = "none"
)

// Fan-out bounds. Release-group expansion and the final candidate set are
// capped so a single resolution performs a bounded number of lookups.
const (
	maxReleaseGroups      = 6
	maxReleasesPerGroup   = 6
	maxTotalCandidates    = 14
	maxSnapshotCandidates = 10
)

// Query is a human-entered resolution request. Album may be empty for
// title-based operations.
type Query struct {
	Artist string `json:"artist"`
	Title  string `json:"title,omitempty"`
	Album  string `json:"album,omitempty"`
	// Target is the caller's side-effect destination (an audio file path
	// for artwork embedding). Recorded in the failure log only.
	Target string `json:"target,omitempty"`
}

// Candidate is the provider-neutral view of one release proposed as an
// answer to a query. ID is the provider-native release identity and is
// never empty past aggregation.
type Candidate struct {
	ID                string
	Title             string
	Artist            string
	Status            string // Official, Promotion, Bootleg, ...
	PrimaryType       string
	SecondaryTypes    []string
	Disambiguation    string
	Date              string // Raw date text, varying precision
	Country           string
	Artwork           string // Tri-state, see the Artwork constants
	ReleaseGroupID    string
	ReleaseGroupTitle string
	Sources           []string // Provenance: adapters that produced this candidate
}

// ScoredCandidate pairs a candidate with its preliminary (cross-adapter)
// and final (detail-augmented) scores. The scores drive ranking; the rest
// is diagnostics for logging.
type ScoredCandidate struct {
	Candidate
	BaseScore float64
	Score     float64
}

// releaseDate parses the candidate's raw date text. Missing or
// unparseable dates sort last.
func (c *Candidate) releaseDate() time.Time {
	return parseReleaseDate(c.Date)
}

// hasSource reports whether the named adapter contributed this candidate.
func (c *Candidate) hasSource(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}

// addSource records provenance, keeping the source list duplicate-free.
func (c *Candidate) addSource(name string) {
	if !c.hasSource(name) {
		c.Sources = append(c.Sources, name)
	}
}
