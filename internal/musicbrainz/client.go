package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	baseURL      = "https://musicbrainz.org/ws/2"
	userAgent    = "Liner/0.1 (https://github.com/llehouerou/liner)"
	rateLimitDur = time.Second // MusicBrainz requires 1 request per second

	searchLimit = 25

	// Retry configuration
	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// Client provides access to the MusicBrainz API.
type Client struct {
	httpClient  *http.Client
	lastRequest time.Time
	mu          sync.Mutex
}

// NewClient creates a new MusicBrainz API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchReleaseGroups searches release groups by artist and album title,
// restricted to albums. This is the grouped-release entry point: hits must
// be expanded into concrete releases via GetReleaseGroupReleases.
func (c *Client) SearchReleaseGroups(ctx context.Context, artist, album string) ([]ReleaseGroup, error) {
	query := fmt.Sprintf(`artist:%s AND releasegroup:%s AND primarytype:album`,
		luceneQuote(artist), luceneQuote(album))

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprint(searchLimit))

	var result releaseGroupSearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/release-group?%s", baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	return convertReleaseGroups(result.ReleaseGroups), nil
}

// GetReleaseGroupReleases returns the releases of a release group, in API
// order. Callers sort; the engine prefers earliest-dated siblings.
func (c *Client) GetReleaseGroupReleases(ctx context.Context, releaseGroupID string) ([]Release, error) {
	params := url.Values{}
	params.Set("release-group", releaseGroupID)
	params.Set("fmt", "json")
	params.Set("limit", "100")

	var result releaseSearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/release?%s", baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	return convertReleases(result.Releases), nil
}

// SearchReleases searches releases directly by artist and album title.
// Results are already concrete releases carrying status and type info.
func (c *Client) SearchReleases(ctx context.Context, artist, album string) ([]Release, error) {
	query := fmt.Sprintf(`artist:%s AND release:%s`, luceneQuote(artist), luceneQuote(album))

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprint(searchLimit))

	var result releaseSearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/release?%s", baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	return convertReleases(result.Releases), nil
}

// SearchRecordings searches recordings by artist and track title. Each hit
// carries its parent releases, which is what album lookup is after.
func (c *Client) SearchRecordings(ctx context.Context, artist, title string, limit int) ([]Recording, error) {
	if limit <= 0 {
		limit = searchLimit
	}
	query := fmt.Sprintf(`recording:%s AND artist:%s`, luceneQuote(title), luceneQuote(artist))

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprint(limit))

	var result recordingSearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/recording?%s", baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}

	return convertRecordings(result.Recordings), nil
}

// RecordingExists reports whether any recording matches the fielded
// artist/title query, with an optional album restriction.
func (c *Client) RecordingExists(ctx context.Context, artist, title, album string) (bool, error) {
	query := fmt.Sprintf(`recording:%s AND artist:%s`, luceneQuote(title), luceneQuote(artist))
	if album != "" {
		query += fmt.Sprintf(` AND release:%s`, luceneQuote(album))
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", "1")

	var result recordingSearchResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/recording?%s", baseURL, params.Encode()), &result); err != nil {
		return false, err
	}

	return result.Count > 0, nil
}

// GetRelease fetches the full record for a release, including artist
// credits, release group types, labels and Cover Art Archive flags.
func (c *Client) GetRelease(ctx context.Context, releaseID string) (*ReleaseDetails, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "artist-credits+release-groups+labels")

	var result releaseDetailsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/release/%s?%s", baseURL, releaseID, params.Encode()), &result); err != nil {
		return nil, err
	}

	return convertReleaseDetails(result), nil
}

// getJSON performs a rate-limited GET request and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	c.waitForRateLimit()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// waitForRateLimit ensures we don't exceed MusicBrainz rate limits.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		time.Sleep(rateLimitDur - elapsed)
	}
	c.lastRequest = time.Now()
}

// doRequestWithRetry executes an HTTP request with exponential backoff retry.
// Retries on 5xx errors and network errors.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
			delay = min(delay*2, maxDelay)
			c.waitForRateLimit() // Re-apply rate limit after retry delay
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		// Success or client error (4xx) - don't retry
		if resp.StatusCode < 500 {
			return resp, nil
		}

		// Server error (5xx) - retry
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}

// luceneQuote wraps a value in double quotes for a fielded Lucene query,
// escaping embedded quotes and backslashes.
func luceneQuote(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

// extractArtist extracts the joined artist name from artist credits.
func extractArtist(credits []artistCredit) string {
	if len(credits) == 0 {
		return ""
	}

	parts := make([]string, 0, len(credits))
	for _, c := range credits {
		name := c.Name
		if name == "" {
			name = c.Artist.Name
		}
		parts = append(parts, name+c.JoinPhrase)
	}
	return strings.Join(parts, "")
}

// extractArtistNames extracts the individual credited artist names.
func extractArtistNames(credits []artistCredit) []string {
	if len(credits) == 0 {
		return nil
	}

	names := make([]string, 0, len(credits))
	for _, c := range credits {
		name := c.Name
		if name == "" {
			name = c.Artist.Name
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// convertReleaseGroups converts raw API results to ReleaseGroup structs.
func convertReleaseGroups(results []releaseGroupResult) []ReleaseGroup {
	groups := make([]ReleaseGroup, 0, len(results))
	for i := range results {
		r := &results[i]
		groups = append(groups, ReleaseGroup{
			ID:             r.ID,
			Title:          r.Title,
			Artist:         extractArtist(r.ArtistCredit),
			ArtistCredits:  extractArtistNames(r.ArtistCredit),
			PrimaryType:    r.PrimaryType,
			SecondaryTypes: r.SecondaryTypes,
			Disambiguation: r.Disambiguation,
			FirstRelease:   r.FirstRelease,
			Score:          r.Score,
		})
	}
	return groups
}

// convertReleases converts raw API results to Release structs.
func convertReleases(results []releaseResult) []Release {
	releases := make([]Release, 0, len(results))
	for i := range results {
		r := &results[i]
		release := Release{
			ID:             r.ID,
			Title:          r.Title,
			Artist:         extractArtist(r.ArtistCredit),
			ArtistCredits:  extractArtistNames(r.ArtistCredit),
			Date:           r.Date,
			Country:        r.Country,
			Status:         r.Status,
			Disambiguation: r.Disambiguation,
			Score:          r.Score,
		}
		if r.ReleaseGroup != nil {
			release.PrimaryType = r.ReleaseGroup.PrimaryType
			release.SecondaryTypes = r.ReleaseGroup.SecondaryTypes
		}
		releases = append(releases, release)
	}
	return releases
}

// convertRecordings converts raw API results to Recording structs.
func convertRecordings(results []recordingResult) []Recording {
	recordings := make([]Recording, 0, len(results))
	for i := range results {
		r := &results[i]
		rec := Recording{
			ID:      r.ID,
			Title:   r.Title,
			Artists: extractArtistNames(r.ArtistCredit),
			Score:   r.Score,
		}
		for j := range r.Releases {
			rel := &r.Releases[j]
			rr := RecordingRelease{
				ID:     rel.ID,
				Title:  rel.Title,
				Date:   rel.Date,
				Status: rel.Status,
			}
			if rel.ReleaseGroup != nil {
				rr.PrimaryType = rel.ReleaseGroup.PrimaryType
			}
			rec.Releases = append(rec.Releases, rr)
		}
		recordings = append(recordings, rec)
	}
	return recordings
}

// convertReleaseDetails converts a raw release details response. Date and
// country fall back to the first release event when the top-level fields
// are absent.
func convertReleaseDetails(r releaseDetailsResponse) *ReleaseDetails {
	details := &ReleaseDetails{
		Release: Release{
			ID:             r.ID,
			Title:          r.Title,
			Artist:         extractArtist(r.ArtistCredit),
			ArtistCredits:  extractArtistNames(r.ArtistCredit),
			Date:           r.Date,
			Country:        r.Country,
			Status:         r.Status,
			Disambiguation: r.Disambiguation,
		},
		Packaging: r.Packaging,
		Barcode:   r.Barcode,
	}

	if r.ReleaseGroup != nil {
		details.PrimaryType = r.ReleaseGroup.PrimaryType
		details.SecondaryTypes = r.ReleaseGroup.SecondaryTypes
	}

	for _, event := range r.ReleaseEvents {
		if details.Date == "" && event.Date != "" {
			details.Date = event.Date
		}
		if details.Country == "" && event.Area != nil {
			if event.Area.Name != "" {
				details.Country = event.Area.Name
			} else if len(event.Area.ISOCodes) > 0 {
				details.Country = event.Area.ISOCodes[0]
			}
		}
	}

	for _, li := range r.LabelInfo {
		if details.CatalogNumber == "" && li.CatalogNumber != "" {
			details.CatalogNumber = li.CatalogNumber
		}
		if details.Label == "" && li.Label != nil {
			details.Label = li.Label.Name
		}
	}

	if r.CoverArtArchive != nil {
		details.CoverArt = CoverArtInfo{
			Present: true,
			Front:   r.CoverArtArchive.Front,
			Artwork: r.CoverArtArchive.Artwork,
		}
	}

	return details
}
