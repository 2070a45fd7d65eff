package resolve

import "time"

// farFuture is the sort key for candidates without a usable date so they
// rank after every dated candidate.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// parseReleaseDate parses MusicBrainz date text, which comes in year,
// year-month or full precision depending on the release.
func parseReleaseDate(s string) time.Time {
	if s == "" {
		return farFuture
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return farFuture
}
