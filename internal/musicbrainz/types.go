// Package musicbrainz provides a client for the MusicBrainz API.
package musicbrainz

// ReleaseGroup represents a MusicBrainz release group (album concept)
// as returned by the release-group search.
type ReleaseGroup struct {
	ID             string
	Title          string
	Artist         string   // Joined artist-credit phrase
	ArtistCredits  []string // Individual credited artist names
	PrimaryType    string   // Album, Single, EP, etc.
	SecondaryTypes []string // Compilation, Live, Soundtrack, etc.
	Disambiguation string
	FirstRelease   string // first-release-date, varying precision
	Score          int    // Search relevance score (0-100)
}

// Release represents a MusicBrainz release as returned by release search
// or release-group browsing.
type Release struct {
	ID             string
	Title          string
	Artist         string   // Joined artist-credit phrase
	ArtistCredits  []string // Individual credited artist names
	Date           string   // Raw date string, varying precision
	Country        string
	Status         string // Official, Promotion, Bootleg, ...
	Disambiguation string
	PrimaryType    string // From the owning release group
	SecondaryTypes []string
	Score          int // Search relevance score (0-100)
}

// CoverArtInfo carries the Cover Art Archive flags from a release lookup.
// Present distinguishes "archive reports no artwork" from "no information".
type CoverArtInfo struct {
	Present bool
	Front   bool
	Artwork bool
}

// ReleaseDetails contains the full record for a single release, fetched
// once per candidate during second-phase scoring.
type ReleaseDetails struct {
	Release
	Packaging     string
	Barcode       string
	Label         string
	CatalogNumber string
	CoverArt      CoverArtInfo
}

// RecordingRelease is a release associated with a recording search hit.
type RecordingRelease struct {
	ID          string
	Title       string
	Date        string
	Status      string
	PrimaryType string
}

// Recording represents a recording search hit with its parent releases.
type Recording struct {
	ID       string
	Title    string
	Artists  []string // Credited artist names
	Score    int      // Search relevance score (0-100)
	Releases []RecordingRelease
}

// artistCredit represents an artist contribution.
type artistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		SortName string `json:"sort-name"`
	} `json:"artist"`
	JoinPhrase string `json:"joinphrase"`
}

// releaseGroupRef is the release-group block embedded in release results.
type releaseGroupRef struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}

// releaseResult is a single release from search or browse results.
type releaseResult struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Score          int              `json:"score"`
	Date           string           `json:"date"`
	Country        string           `json:"country"`
	Status         string           `json:"status"`
	Disambiguation string           `json:"disambiguation"`
	ArtistCredit   []artistCredit   `json:"artist-credit"`
	ReleaseGroup   *releaseGroupRef `json:"release-group"`
}

// releaseSearchResponse is the raw response from a release search or browse.
type releaseSearchResponse struct {
	Releases []releaseResult `json:"releases"`
}

// releaseGroupResult is a single release group from search results.
type releaseGroupResult struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Score          int            `json:"score"`
	PrimaryType    string         `json:"primary-type"`
	SecondaryTypes []string       `json:"secondary-types"`
	Disambiguation string         `json:"disambiguation"`
	FirstRelease   string         `json:"first-release-date"`
	ArtistCredit   []artistCredit `json:"artist-credit"`
}

// releaseGroupSearchResponse is the raw response from release-group search.
type releaseGroupSearchResponse struct {
	ReleaseGroups []releaseGroupResult `json:"release-groups"`
}

// coverArtArchiveBlock carries the archive flags on a release lookup.
type coverArtArchiveBlock struct {
	Artwork bool `json:"artwork"`
	Front   bool `json:"front"`
	Back    bool `json:"back"`
	Count   int  `json:"count"`
}

// labelInfo contains label and catalog number for a release.
type labelInfo struct {
	CatalogNumber string `json:"catalog-number"`
	Label         *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"label"`
}

// releaseDetailsResponse is the response when fetching a single release.
type releaseDetailsResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Date            string                `json:"date"`
	Country         string                `json:"country"`
	Status          string                `json:"status"`
	Disambiguation  string                `json:"disambiguation"`
	Packaging       string                `json:"packaging"`
	Barcode         string                `json:"barcode"`
	ArtistCredit    []artistCredit        `json:"artist-credit"`
	ReleaseGroup    *releaseGroupRef      `json:"release-group"`
	LabelInfo       []labelInfo           `json:"label-info"`
	CoverArtArchive *coverArtArchiveBlock `json:"cover-art-archive"`
	ReleaseEvents   []releaseEvent        `json:"release-events"`
}

// releaseEvent carries per-country date information on a release lookup.
type releaseEvent struct {
	Date string `json:"date"`
	Area *struct {
		Name     string   `json:"name"`
		ISOCodes []string `json:"iso-3166-1-codes"`
	} `json:"area"`
}

// recordingResult is a single recording from search results.
type recordingResult struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Score        int             `json:"score"`
	ArtistCredit []artistCredit  `json:"artist-credit"`
	Releases     []releaseResult `json:"releases"`
}

// recordingSearchResponse is the raw response from recording search.
type recordingSearchResponse struct {
	Count      int               `json:"count"`
	Recordings []recordingResult `json:"recordings"`
}
