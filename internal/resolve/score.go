package resolve

import (
	"strings"

	"github.com/llehouerou/liner/internal/musicbrainz"
	"github.com/llehouerou/liner/internal/textnorm"
)

// Weights holds every tunable constant of the composite scorer. The
// defaults were tuned against a corpus of tagged libraries; overriding
// individual weights from the config file is supported but rarely needed.
type Weights struct {
	// Release-group phase.
	GroupTitleSim     float64 `koanf:"group_title_sim"`
	GroupArtistSim    float64 `koanf:"group_artist_sim"`
	GroupAlbumBonus   float64 `koanf:"group_album_bonus"`
	GroupTypePenalty  float64 `koanf:"group_type_penalty"`
	GroupSecondary    float64 `koanf:"group_secondary_penalty"`
	GroupDisambig     float64 `koanf:"group_disambig_penalty"`
	GroupSoftDisambig float64 `koanf:"group_soft_disambig_penalty"`
	GroupFloor        float64 `koanf:"group_floor"`

	// Flat release-search phase.
	SearchTitleSim    float64 `koanf:"search_title_sim"`
	SearchArtistSim   float64 `koanf:"search_artist_sim"`
	SearchAlbumBonus  float64 `koanf:"search_album_bonus"`
	SearchSecondary   float64 `koanf:"search_secondary_penalty"`
	SearchOfficial    float64 `koanf:"search_official_bonus"`
	SearchDisambig    float64 `koanf:"search_disambig_penalty"`
	SearchPosition    float64 `koanf:"search_position_penalty"`

	// Rank decay for group-derived candidates.
	GroupRankDecay   float64 `koanf:"group_rank_decay"`
	ReleaseRankDecay float64 `koanf:"release_rank_decay"`

	// Detail (second-phase) adjustments.
	DetailOfficial       float64 `koanf:"detail_official_bonus"`
	DetailNonOfficial    float64 `koanf:"detail_non_official_penalty"`
	DetailTitleSim       float64 `koanf:"detail_title_sim"`
	DetailArtistMatch    float64 `koanf:"detail_artist_match_bonus"`
	DetailArtistSim      float64 `koanf:"detail_artist_sim"`
	DetailFrontCover     float64 `koanf:"detail_front_cover_bonus"`
	DetailAnyArtwork     float64 `koanf:"detail_any_artwork_bonus"`
	DetailNoArtwork      float64 `koanf:"detail_no_artwork_penalty"`
	DetailUnknownArtwork float64 `koanf:"detail_unknown_artwork_penalty"`
	DetailHardDisambig   float64 `koanf:"detail_hard_disambig_penalty"`
	DetailSoftDisambig   float64 `koanf:"detail_soft_disambig_penalty"`
	DetailPromoPackaging float64 `koanf:"detail_promo_packaging_penalty"`

	// Eligibility. Candidates scoring below ConfidenceFloor are attempted
	// only as a top-N fallback when nothing clears the floor.
	ConfidenceFloor float64 `koanf:"confidence_floor"`
	FallbackTopN    int     `koanf:"fallback_top_n"`

	// Artist identity thresholds shared by all phases.
	ArtistMatchSim  float64 `koanf:"artist_match_sim"`
	ArtistPhraseSim float64 `koanf:"artist_phrase_sim"`
}

// DefaultWeights returns the tuned default weight set.
func DefaultWeights() Weights {
	return Weights{
		GroupTitleSim:     35,
		GroupArtistSim:    25,
		GroupAlbumBonus:   8,
		GroupTypePenalty:  4,
		GroupSecondary:    12,
		GroupDisambig:     10,
		GroupSoftDisambig: 5,
		GroupFloor:        55,

		SearchTitleSim:   30,
		SearchArtistSim:  20,
		SearchAlbumBonus: 6,
		SearchSecondary:  8,
		SearchOfficial:   8,
		SearchDisambig:   10,
		SearchPosition:   1.5,

		GroupRankDecay:   5,
		ReleaseRankDecay: 2,

		DetailOfficial:       25,
		DetailNonOfficial:    10,
		DetailTitleSim:       40,
		DetailArtistMatch:    25,
		DetailArtistSim:      15,
		DetailFrontCover:     15,
		DetailAnyArtwork:     8,
		DetailNoArtwork:      5,
		DetailUnknownArtwork: 10,
		DetailHardDisambig:   18,
		DetailSoftDisambig:   6,
		DetailPromoPackaging: 5,

		ConfidenceFloor: 60,
		FallbackTopN:    2,

		ArtistMatchSim:  0.82,
		ArtistPhraseSim: 0.8,
	}
}

// Secondary release-group types that almost never carry the canonical
// cover for a studio album.
var badSecondaryTypes = map[string]bool{
	"Compilation": true,
	"Interview":   true,
	"Audiobook":   true,
	"Spokenword":  true,
	"DJ-mix":      true,
}

var searchBadSecondaryTypes = map[string]bool{
	"Compilation": true,
	"Interview":   true,
}

var groupDisambigTerms = []string{"tribute", "karaoke", "cover", "instrumental", "demo"}

var groupSoftDisambigTerms = []string{"remix", "live"}

var searchDisambigTerms = []string{"karaoke", "tribute", "cover"}

var detailHardDisambigTerms = []string{"karaoke", "tribute", "backing track"}

var detailSoftDisambigTerms = []string{"demo", "remix", "instrumental", "live"}

func containsAnyTerm(s string, terms []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// artistMatches reports whether a credited artist refers to the queried
// one: high normalized similarity, or one normalized name containing the
// other (covers "Tyler, The Creator" vs "Tyler The Creator" and
// collaboration credits).
func (w Weights) artistMatches(query, credited string) bool {
	qn := textnorm.Normalize(query)
	cn := textnorm.Normalize(credited)
	if qn == "" || cn == "" {
		return false
	}
	if textnorm.Similarity(qn, cn) >= w.ArtistMatchSim {
		return true
	}
	return strings.Contains(qn, cn) || strings.Contains(cn, qn)
}

// artistAffinity scores how well a release-group's credits match the
// queried artist. The joined credit phrase is compared first; when the
// phrase itself is a weak match (collaboration credits dilute it), the
// best individual credit wins instead.
func (w Weights) artistAffinity(query, phrase string, credits []string) float64 {
	qn := textnorm.Normalize(query)
	best := textnorm.Similarity(qn, textnorm.Normalize(phrase))
	if best >= w.ArtistPhraseSim {
		return best
	}
	for _, credit := range credits {
		if sim := textnorm.Similarity(qn, textnorm.Normalize(credit)); sim > best {
			best = sim
		}
	}
	return best
}

// scoreReleaseGroup computes the first-phase score of a release group for
// an (artist, album) query. The provider's own search score is the base.
func (w Weights) scoreReleaseGroup(q Query, g musicbrainz.ReleaseGroup) float64 {
	score := float64(g.Score)

	titleSim := textnorm.Similarity(textnorm.Normalize(q.Album), textnorm.Normalize(g.Title))
	score += titleSim * w.GroupTitleSim

	score += w.artistAffinity(q.Artist, g.Artist, g.ArtistCredits) * w.GroupArtistSim

	if g.PrimaryType == "Album" {
		score += w.GroupAlbumBonus
	} else if g.PrimaryType != "" {
		score -= w.GroupTypePenalty
	}

	for _, st := range g.SecondaryTypes {
		if badSecondaryTypes[st] {
			score -= w.GroupSecondary
			break
		}
	}

	if containsAnyTerm(g.Disambiguation, groupDisambigTerms) {
		score -= w.GroupDisambig
	} else if containsAnyTerm(g.Disambiguation, groupSoftDisambigTerms) {
		score -= w.GroupSoftDisambig
	}

	return score
}

// scoreReleaseSearch computes the first-phase score of a flat
// release-search hit. position is the zero-based rank within the search
// response; later hits decay slightly so provider ordering is preserved
// between otherwise equal candidates.
func (w Weights) scoreReleaseSearch(q Query, r musicbrainz.Release, position int) float64 {
	score := float64(r.Score)

	titleSim := textnorm.Similarity(textnorm.Normalize(q.Album), textnorm.Normalize(r.Title))
	score += titleSim * w.SearchTitleSim

	artistSim := textnorm.Similarity(textnorm.Normalize(q.Artist), textnorm.Normalize(r.Artist))
	score += artistSim * w.SearchArtistSim

	if r.PrimaryType == "Album" {
		score += w.SearchAlbumBonus
	}

	for _, st := range r.SecondaryTypes {
		if searchBadSecondaryTypes[st] {
			score -= w.SearchSecondary
			break
		}
	}

	if r.Status == "Official" {
		score += w.SearchOfficial
	}

	if containsAnyTerm(r.Disambiguation, searchDisambigTerms) {
		score -= w.SearchDisambig
	}

	score -= float64(position) * w.SearchPosition

	return score
}

// scoreDetail computes the second-phase adjustment from a full release
// lookup: status, per-release title and artist, cover art presence,
// disambiguation and packaging. Added on top of the candidate's base
// score.
func (w Weights) scoreDetail(q Query, d *musicbrainz.ReleaseDetails) float64 {
	var score float64

	switch d.Status {
	case "Official":
		score += w.DetailOfficial
	case "Promotion", "Bootleg":
		score -= w.DetailNonOfficial
	}

	titleSim := textnorm.Similarity(textnorm.Normalize(q.Album), textnorm.Normalize(d.Title))
	score += titleSim * w.DetailTitleSim

	if w.artistMatches(q.Artist, d.Artist) {
		score += w.DetailArtistMatch
	} else {
		sim := textnorm.Similarity(textnorm.Normalize(q.Artist), textnorm.Normalize(d.Artist))
		score += sim * w.DetailArtistSim
	}

	switch {
	case !d.CoverArt.Present:
		score -= w.DetailUnknownArtwork
	case d.CoverArt.Front:
		score += w.DetailFrontCover
	case d.CoverArt.Artwork:
		score += w.DetailAnyArtwork
	default:
		score -= w.DetailNoArtwork
	}

	if containsAnyTerm(d.Disambiguation, detailHardDisambigTerms) {
		score -= w.DetailHardDisambig
	} else if containsAnyTerm(d.Disambiguation, detailSoftDisambigTerms) {
		score -= w.DetailSoftDisambig
	}

	if strings.Contains(strings.ToLower(d.Packaging), "promo") {
		score -= w.DetailPromoPackaging
	}

	return score
}
