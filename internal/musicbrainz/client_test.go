//nolint:bodyclose // Test file uses http.NoBody which doesn't require closing
package musicbrainz

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"testing/synctest"
	"time"
)

func TestClient_WaitForRateLimit_FirstRequest(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &Client{}

		start := time.Now()
		c.waitForRateLimit()
		elapsed := time.Since(start)

		// First request should not wait
		if elapsed > 10*time.Millisecond {
			t.Errorf("first request waited %v, expected no wait", elapsed)
		}
	})
}

func TestClient_WaitForRateLimit_EnforcesRateLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &Client{}

		// First request
		c.waitForRateLimit()

		// Immediate second request should wait ~1 second
		start := time.Now()
		c.waitForRateLimit()
		elapsed := time.Since(start)

		if elapsed < 900*time.Millisecond {
			t.Errorf("second request only waited %v, expected ~1s", elapsed)
		}
	})
}

// mockTransport is a mock http.RoundTripper for testing.
type mockTransport struct {
	responses []*http.Response
	errors    []error
	callCount int
}

func (m *mockTransport) RoundTrip(*http.Request) (*http.Response, error) {
	idx := m.callCount
	m.callCount++

	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return nil, errors.New("no more responses configured")
}

func newMockResponse(statusCode int) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       http.NoBody,
	}
}

func newJSONResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestClient_DoRequestWithRetry_RetriesOn500(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mock := &mockTransport{
			responses: []*http.Response{
				newMockResponse(http.StatusInternalServerError),
				newMockResponse(http.StatusInternalServerError),
				newMockResponse(http.StatusOK), // Success on 3rd attempt
			},
		}
		c := &Client{
			httpClient: &http.Client{Transport: mock},
		}

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
		resp, err := c.doRequestWithRetry(req)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if mock.callCount != 3 {
			t.Errorf("callCount = %d, want 3", mock.callCount)
		}
	})
}

func TestClient_DoRequestWithRetry_NoRetryOn4xx(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mock := &mockTransport{
			responses: []*http.Response{newMockResponse(http.StatusNotFound)},
		}
		c := &Client{
			httpClient: &http.Client{Transport: mock},
		}

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", http.NoBody)
		resp, err := c.doRequestWithRetry(req)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		if mock.callCount != 1 {
			t.Errorf("callCount = %d, want 1 (no retry on 4xx)", mock.callCount)
		}
	})
}

func TestClient_SearchReleases_DecodesResults(t *testing.T) {
	body := `{
		"releases": [
			{
				"id": "rel-1",
				"title": "Back in Black",
				"score": 100,
				"date": "1980-07-25",
				"country": "AU",
				"status": "Official",
				"artist-credit": [{"name": "AC/DC"}],
				"release-group": {"id": "rg-1", "primary-type": "Album", "secondary-types": ["Compilation"]}
			}
		]
	}`
	mock := &mockTransport{responses: []*http.Response{newJSONResponse(body)}}
	c := &Client{httpClient: &http.Client{Transport: mock}}

	releases, err := c.SearchReleases(context.Background(), "AC/DC", "Back in Black")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("got %d releases, want 1", len(releases))
	}

	r := releases[0]
	if r.ID != "rel-1" || r.Title != "Back in Black" || r.Artist != "AC/DC" {
		t.Errorf("unexpected release: %+v", r)
	}
	if r.Status != "Official" || r.PrimaryType != "Album" {
		t.Errorf("status/type not decoded: %+v", r)
	}
	if len(r.SecondaryTypes) != 1 || r.SecondaryTypes[0] != "Compilation" {
		t.Errorf("secondary types not decoded: %v", r.SecondaryTypes)
	}
}

func TestClient_GetRelease_CoverArtAndEventFallbacks(t *testing.T) {
	body := `{
		"id": "rel-2",
		"title": "Powerage",
		"status": "Official",
		"artist-credit": [{"name": "AC/DC"}],
		"release-events": [{"date": "1978-05-05", "area": {"name": "Australia"}}],
		"cover-art-archive": {"artwork": true, "front": true, "count": 2},
		"label-info": [{"catalog-number": "ATL 50483", "label": {"id": "l1", "name": "Atlantic"}}]
	}`
	mock := &mockTransport{responses: []*http.Response{newJSONResponse(body)}}
	c := &Client{httpClient: &http.Client{Transport: mock}}

	details, err := c.GetRelease(context.Background(), "rel-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.Date != "1978-05-05" {
		t.Errorf("Date = %q, want fallback from release event", details.Date)
	}
	if details.Country != "Australia" {
		t.Errorf("Country = %q, want fallback from release event", details.Country)
	}
	if !details.CoverArt.Present || !details.CoverArt.Front {
		t.Errorf("cover art flags not decoded: %+v", details.CoverArt)
	}
	if details.Label != "Atlantic" || details.CatalogNumber != "ATL 50483" {
		t.Errorf("label info not decoded: %+v", details)
	}
}

func TestLuceneQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AC/DC", `"AC/DC"`},
		{`The "Best" Of`, `"The \"Best\" Of"`},
		{`back\slash`, `"back\\slash"`},
		{"", `""`},
	}

	for _, tt := range tests {
		if got := luceneQuote(tt.input); got != tt.want {
			t.Errorf("luceneQuote(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestExtractArtist(t *testing.T) {
	credits := []artistCredit{
		{Name: "Queen", JoinPhrase: " & "},
		{Name: "David Bowie"},
	}

	if got := extractArtist(credits); got != "Queen & David Bowie" {
		t.Errorf("extractArtist = %q", got)
	}

	names := extractArtistNames(credits)
	if len(names) != 2 || names[0] != "Queen" || names[1] != "David Bowie" {
		t.Errorf("extractArtistNames = %v", names)
	}
}
