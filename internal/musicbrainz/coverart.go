package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const coverArtBaseURL = "https://coverartarchive.org"

// CoverImage is one image from the Cover Art Archive listing for a release.
type CoverImage struct {
	ID         json.Number `json:"id"`
	Approved   bool        `json:"approved"`
	Front      bool        `json:"front"`
	Types      []string    `json:"types"`
	Comment    string      `json:"comment"`
	Image      string      `json:"image"`
	Thumbnails struct {
		Large string `json:"large"`
		Small string `json:"small"`
	} `json:"thumbnails"`
}

type coverImageList struct {
	Images []CoverImage `json:"images"`
}

// GetImageList returns the Cover Art Archive image listing for a release.
// A 404 means the archive has no artwork for the release; that is reported
// as an empty list, not an error.
func (c *Client) GetImageList(ctx context.Context, releaseID string) ([]CoverImage, error) {
	c.waitForRateLimit()

	reqURL := fmt.Sprintf("%s/release/%s", coverArtBaseURL, releaseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result coverImageList
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Images, nil
}

// FrontCoverURL is the direct front-cover endpoint for a release, used as a
// last resort when the image listing is unavailable.
func FrontCoverURL(releaseID string) string {
	return fmt.Sprintf("%s/release/%s/front", coverArtBaseURL, releaseID)
}

// FetchImage downloads an image and returns its bytes and MIME type.
// Returns nil data (no error) when the archive has nothing at the URL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	c.waitForRateLimit()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return data, mimeType, nil
}
