// Package itunes provides a client for the iTunes Search API.
// The API needs no authentication and serves as the cheap, fast provider
// for track search and existence checks.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://itunes.apple.com/search"

// Client provides access to the iTunes Search API.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new iTunes Search API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchTracks searches the song catalog with a free-text term.
// Returns an empty slice when nothing matches.
func (c *Client) SearchTracks(ctx context.Context, term string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 25
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "song")
	params.Set("limit", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tracks := make([]Track, 0, len(result.Results))
	for _, r := range result.Results {
		tracks = append(tracks, Track{
			ID:          r.TrackID,
			Name:        r.TrackName,
			Artist:      r.ArtistName,
			Album:       r.CollectionName,
			ReleaseDate: r.ReleaseDate,
			Genre:       r.PrimaryGenreName,
			Kind:        r.Kind,
		})
	}

	return tracks, nil
}
