package textnorm

import (
	"regexp"
	"strings"
)

var (
	featureRe   = regexp.MustCompile(`(?i)\s+(feat|featuring|ft|with)\.? .*$`)
	parensRe    = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	suffixRe    = regexp.MustCompile(`(?i)\s*-\s*(live.*|acoustic.*|remaster.*|version.*|radio edit.*|mono|stereo)$`)
	nonAlnumRe  = regexp.MustCompile(`[^0-9a-z]+`)
	multiSpace  = regexp.MustCompile(`\s+`)
	artistSplit = regexp.MustCompile(`(?i),|&|/| x | and `)

	cleanParensRe = regexp.MustCompile(`\s*[(\[]([^)\]]+)[)\]]`)
	cleanSuffixRe = regexp.MustCompile(`(?i)\s*[-–—:,]\s*((\d{4}\s+)?.*?(remaster(ed)?|remix(es)?|deluxe|expanded|anniversary|special\s+edition|bonus\s+tracks?|bonus\s+disc|tour\s+edition|collector'?s\s+edition|super\s+deluxe|live(\s+.*)?|versions?(\s+.*)?|editions?(\s+.*)?))$`)
)

// reissueTerms mark album names that are re-releases rather than the
// original commercial release.
var reissueTerms = []string{
	"deluxe",
	"expanded",
	"remaster",
	"remastered",
	"live",
	"anniversary",
	"bonus track",
	"special edition",
	"super deluxe",
	"karaoke",
}

// cleanKeywordFragments flag parenthetical or trailing sections that carry
// edition noise rather than part of the album name proper.
var cleanKeywordFragments = []string{
	"remaster",
	"remastered",
	"remix",
	"remixes",
	"deluxe",
	"expanded",
	"anniversary",
	"special edition",
	"bonus track",
	"bonus tracks",
	"bonus disc",
	"bonus edition",
	"tour edition",
	"collector's edition",
	"collectors edition",
	"super deluxe",
	"live",
	"version",
	"versions",
	"edition",
	"editions",
}

// liveAlbumHints are phrases that indicate a live recording when they occur
// in a track or album title.
var liveAlbumHints = []string{
	" live ",
	" live!",
	" live?",
	" live:",
	" live -",
	"- live",
	"(live",
	"[live",
	" live)",
	" live]",
	" live @",
	" live at ",
	" live in ",
	" live on ",
	" live from ",
	" live recording",
	" live version",
	" in concert",
	" on the road",
	" world tour",
	" tour edition",
	" tour live",
}

// CleanTitle reduces a track title to its comparable core: lower-cased,
// featuring credits, parentheticals and version suffixes stripped,
// punctuation collapsed to spaces.
func CleanTitle(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = featureRe.ReplaceAllString(lowered, "")
	lowered = parensRe.ReplaceAllString(lowered, "")
	lowered = suffixRe.ReplaceAllString(lowered, "")
	lowered = nonAlnumRe.ReplaceAllString(lowered, " ")
	lowered = multiSpace.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(lowered)
}

// CleanArtistToken reduces an artist name to a comparable token. Unlike
// CleanTitle it keeps parentheticals, since artist names rarely carry
// edition noise.
func CleanArtistToken(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = featureRe.ReplaceAllString(lowered, "")
	lowered = nonAlnumRe.ReplaceAllString(lowered, " ")
	lowered = multiSpace.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(lowered)
}

// SplitArtistAliases splits a credit string like "A & B feat. C" into the
// individual artist tokens plus the token for the whole credit. Duplicates
// and empty tokens are dropped; order is stable.
func SplitArtistAliases(s string) []string {
	if s == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tokens []string
	add := func(raw string) {
		token := CleanArtistToken(raw)
		if token == "" || seen[token] {
			return
		}
		seen[token] = true
		tokens = append(tokens, token)
	}

	for _, part := range artistSplit.Split(s, -1) {
		if strings.TrimSpace(part) != "" {
			add(part)
		}
	}
	add(s)

	return tokens
}

// HasLiveIndicator reports whether a title carries a live-recording hint.
func HasLiveIndicator(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, " live") {
		return true
	}
	for _, marker := range liveAlbumHints {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsReissue reports whether an album name looks like a re-release
// (deluxe, remaster, anniversary edition and similar).
func IsReissue(name string) bool {
	lowered := strings.ToLower(name)
	for _, term := range reissueTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// CleanAlbumName strips edition descriptors from an album name while
// keeping meaningful parentheticals: "Rumours (2004 Remaster)" becomes
// "Rumours", but "(What's the Story) Morning Glory?" is left alone.
// Falls back to the trimmed input when stripping would empty the name.
func CleanAlbumName(name string) string {
	if name == "" {
		return name
	}

	cleaned := cleanParensRe.ReplaceAllStringFunc(name, func(match string) string {
		sub := cleanParensRe.FindStringSubmatch(match)
		if len(sub) > 1 && shouldStripSection(sub[1]) {
			return ""
		}
		return match
	})

	// Trailing descriptors like "- 2015 Remaster" or ": Deluxe Edition"
	cleaned = cleanSuffixRe.ReplaceAllString(cleaned, "")

	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " -–—:,")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return strings.TrimSpace(name)
	}
	return cleaned
}

func shouldStripSection(section string) bool {
	lowered := strings.ToLower(section)
	for _, fragment := range cleanKeywordFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}
