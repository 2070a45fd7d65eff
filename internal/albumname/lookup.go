// Package albumname guesses the parent album of a track from its artist
// and title. iTunes is consulted first; MusicBrainz recordings fill in
// when iTunes has no confident answer.
package albumname

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/llehouerou/liner/internal/itunes"
	"github.com/llehouerou/liner/internal/musicbrainz"
	"github.com/llehouerou/liner/internal/textnorm"
)

// DefaultMinConfidence is the floor below which a guess is discarded.
const DefaultMinConfidence = 0.5

// Thresholds for admitting raw hits as candidates.
const (
	itunesTitleFloor = 0.6
	mbTitleFloor     = 0.55
	artistFloor      = 0.45
)

// Penalty and bonus constants applied to candidate confidence.
const (
	typeRankPenalty  = 0.08
	reissuePenalty   = 0.1
	liveTrackPenalty = 0.3  // iTunes: live rendition of a studio track
	mbLiveTrack      = 0.25 // MusicBrainz live recordings are tagged less noisily
	liveAlbumPenalty = 0.2
	exactTitleBonus  = 0.05
	inexactPenalty   = 0.05
)

// Match is one album guess with its confidence and provenance.
type Match struct {
	Album       string
	Artist      string
	ReleaseType string // album, ep or single
	Source      string // itunes or musicbrainz
	Confidence  float64
}

// ITunesSearcher is the iTunes surface the lookup depends on.
type ITunesSearcher interface {
	SearchTracks(ctx context.Context, term string, limit int) ([]itunes.Track, error)
}

// RecordingSearcher is the MusicBrainz surface the lookup depends on.
type RecordingSearcher interface {
	SearchRecordings(ctx context.Context, artist, title string, limit int) ([]musicbrainz.Recording, error)
}

// Lookup guesses albums with per-session memoization.
type Lookup struct {
	itunes        ITunesSearcher
	mb            RecordingSearcher
	minConfidence float64
	logger        *log.Logger

	mu    sync.Mutex
	cache map[string]*Match
}

// New creates a lookup over both sources. Either client may be nil; the
// remaining source is used alone.
func New(it ITunesSearcher, mb RecordingSearcher) *Lookup {
	return &Lookup{
		itunes:        it,
		mb:            mb,
		minConfidence: DefaultMinConfidence,
		cache:         make(map[string]*Match),
	}
}

// SetMinConfidence overrides the confidence floor.
func (l *Lookup) SetMinConfidence(floor float64) { l.minConfidence = floor }

// SetLogger sets the diagnostic logger.
func (l *Lookup) SetLogger(lg *log.Logger) { l.logger = lg }

// GuessAlbum returns the best album guess for a track, or nil when no
// source yields a confident one. iTunes answers short-circuit the
// MusicBrainz query.
func (l *Lookup) GuessAlbum(ctx context.Context, artist, title string) (*Match, error) {
	key := textnorm.Normalize(artist) + "\x00" + textnorm.Normalize(title)
	l.mu.Lock()
	if m, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	cleanTitle := textnorm.CleanTitle(title)
	aliases := textnorm.SplitArtistAliases(artist)

	var (
		candidates []Match
		itErr      error
		mbErr      error
	)

	if l.itunes != nil {
		itCandidates, err := l.itunesCandidates(ctx, artist, cleanTitle, aliases)
		if err != nil {
			itErr = err
			l.logf("albumname: itunes lookup for %q / %q: %v", artist, title, err)
		} else if best := bestMatch(itCandidates); best != nil && best.Confidence >= l.minConfidence {
			l.memoize(key, best)
			return best, nil
		} else {
			candidates = append(candidates, itCandidates...)
		}
	}

	if l.mb != nil {
		mbCandidates, err := l.mbCandidates(ctx, artist, cleanTitle, aliases)
		if err != nil {
			mbErr = err
			l.logf("albumname: musicbrainz lookup for %q / %q: %v", artist, title, err)
		} else {
			candidates = append(candidates, mbCandidates...)
		}
	}

	if itErr != nil && mbErr != nil {
		return nil, fmt.Errorf("itunes lookup: %w", itErr)
	}

	best := bestMatch(candidates)
	if best == nil || best.Confidence < l.minConfidence {
		l.memoize(key, nil)
		return nil, nil
	}
	l.memoize(key, best)
	return best, nil
}

func (l *Lookup) memoize(key string, m *Match) {
	l.mu.Lock()
	l.cache[key] = m
	l.mu.Unlock()
}

func (l *Lookup) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Printf(format, args...)
	}
}

// itunesCandidates converts iTunes track hits into scored album guesses.
func (l *Lookup) itunesCandidates(ctx context.Context, artist, cleanTitle string, aliases []string) ([]Match, error) {
	tracks, err := l.itunes.SearchTracks(ctx, artist+" "+cleanTitle, 25)
	if err != nil {
		return nil, err
	}

	queryLive := textnorm.HasLiveIndicator(cleanTitle)

	var matches []Match
	for _, t := range tracks {
		if t.Kind != "" && t.Kind != "song" {
			continue
		}
		if t.Album == "" {
			continue
		}

		trackTitle := textnorm.CleanTitle(t.Name)
		titleScore := similarity(trackTitle, cleanTitle)
		if titleScore < itunesTitleFloor {
			continue
		}

		artistScore, artistOK := artistAffinity(t.Artist, aliases)
		if !artistOK {
			continue
		}

		album, releaseType := splitITunesAlbum(t.Album)

		confidence := 0.7*titleScore + 0.3*artistScore
		confidence -= typeRankPenalty * typeRank(releaseType)
		if textnorm.IsReissue(t.Album) {
			confidence -= reissuePenalty
		}
		if !queryLive && textnorm.HasLiveIndicator(t.Name) {
			confidence -= liveTrackPenalty
		}
		if !queryLive && textnorm.HasLiveIndicator(album) {
			confidence -= liveAlbumPenalty
		}
		if textnorm.Normalize(trackTitle) == textnorm.Normalize(cleanTitle) {
			confidence += exactTitleBonus
		} else {
			confidence -= inexactPenalty
		}

		matches = append(matches, Match{
			Album:       album,
			Artist:      t.Artist,
			ReleaseType: releaseType,
			Source:      "itunes",
			Confidence:  clamp(confidence),
		})
	}
	return matches, nil
}

// mbCandidates converts MusicBrainz recording hits into scored guesses.
// Each recording contributes its best parent release, officials first.
func (l *Lookup) mbCandidates(ctx context.Context, artist, cleanTitle string, aliases []string) ([]Match, error) {
	recordings, err := l.mb.SearchRecordings(ctx, artist, cleanTitle, 25)
	if err != nil {
		return nil, err
	}

	queryLive := textnorm.HasLiveIndicator(cleanTitle)

	var matches []Match
	for _, rec := range recordings {
		titleScore := similarity(textnorm.CleanTitle(rec.Title), cleanTitle)
		if titleScore < mbTitleFloor {
			continue
		}

		artistScore := 0.0
		artistOK := false
		for _, credited := range rec.Artists {
			if s, ok := artistAffinity(credited, aliases); ok {
				artistOK = true
				if s > artistScore {
					artistScore = s
				}
			}
		}
		if !artistOK {
			continue
		}

		release := preferredRelease(rec.Releases)
		if release == nil {
			continue
		}

		album := textnorm.CleanAlbumName(release.Title)
		releaseType := strings.ToLower(release.PrimaryType)

		confidence := 0.6*titleScore + 0.4*artistScore
		// A strong provider relevance score can vouch for a hit whose
		// string similarity alone undersells it.
		if s := float64(rec.Score) / 100 * titleScore; s > confidence {
			confidence = s
		}
		confidence -= typeRankPenalty * typeRank(releaseType)
		if textnorm.IsReissue(release.Title) {
			confidence -= reissuePenalty
		}
		if !queryLive && textnorm.HasLiveIndicator(rec.Title) {
			confidence -= mbLiveTrack
		}
		if !queryLive && textnorm.HasLiveIndicator(album) {
			confidence -= liveAlbumPenalty
		}

		matches = append(matches, Match{
			Album:       album,
			Artist:      artist,
			ReleaseType: releaseType,
			Source:      "musicbrainz",
			Confidence:  clamp(confidence),
		})
	}
	return matches, nil
}

// preferredRelease picks the release most likely to be the canonical
// home of a recording: official albums, then any official release, then
// whatever is left, earliest first within each class.
func preferredRelease(releases []musicbrainz.RecordingRelease) *musicbrainz.RecordingRelease {
	classes := [][]musicbrainz.RecordingRelease{nil, nil, nil}
	for _, r := range releases {
		switch {
		case r.Status == "Official" && (r.PrimaryType == "" || r.PrimaryType == "Album"):
			classes[0] = append(classes[0], r)
		case r.Status == "Official":
			classes[1] = append(classes[1], r)
		default:
			classes[2] = append(classes[2], r)
		}
	}
	for _, class := range classes {
		if len(class) == 0 {
			continue
		}
		best := class[0]
		for _, r := range class[1:] {
			if releaseDateKey(r.Date) < releaseDateKey(best.Date) {
				best = r
			}
		}
		return &best
	}
	return nil
}

// releaseDateKey turns a raw date into a sortable key; missing dates
// sort last.
func releaseDateKey(date string) string {
	if date == "" {
		return "9999-99-99"
	}
	return date
}

// splitITunesAlbum strips the iTunes release-type suffix from a
// collection name and reports the implied type.
func splitITunesAlbum(album string) (name, releaseType string) {
	switch {
	case strings.HasSuffix(album, " - Single"):
		return textnorm.CleanAlbumName(strings.TrimSuffix(album, " - Single")), "single"
	case strings.HasSuffix(album, " - EP"):
		return textnorm.CleanAlbumName(strings.TrimSuffix(album, " - EP")), "ep"
	default:
		return textnorm.CleanAlbumName(album), "album"
	}
}

// typeRank orders release types by how canonical a home they are for a
// track: albums first, then EPs, then singles.
func typeRank(releaseType string) float64 {
	switch releaseType {
	case "album", "":
		return 0
	case "ep":
		return 1
	default:
		return 2
	}
}

// artistAffinity scores a credited artist against the query aliases.
// Containment (collaboration credits) passes with a reduced score.
func artistAffinity(credited string, aliases []string) (float64, bool) {
	cn := textnorm.Normalize(credited)
	if cn == "" {
		return 0, false
	}
	best := 0.0
	for _, alias := range aliases {
		an := textnorm.Normalize(textnorm.CleanArtistToken(alias))
		if an == "" {
			continue
		}
		s := textnorm.Similarity(an, cn)
		if s > best {
			best = s
		}
		if s < artistFloor && (strings.Contains(cn, an) || strings.Contains(an, cn)) {
			if 0.6 > best {
				best = 0.6
			}
		}
	}
	return best, best >= artistFloor
}

func similarity(a, b string) float64 {
	return textnorm.Similarity(textnorm.Normalize(a), textnorm.Normalize(b))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bestMatch picks the highest-confidence candidate; ties prefer more
// canonical release types, then the lexically first album name.
func bestMatch(matches []Match) *Match {
	if len(matches) == 0 {
		return nil
	}
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		ri, rj := typeRank(sorted[i].ReleaseType), typeRank(sorted[j].ReleaseType)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Album < sorted[j].Album
	})
	return &sorted[0]
}
