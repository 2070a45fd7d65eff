package itunes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClient_SearchTracks(t *testing.T) {
	body := `{
		"resultCount": 1,
		"results": [
			{
				"trackId": 42,
				"trackName": "Bohemian Rhapsody",
				"artistName": "Queen",
				"collectionName": "A Night at the Opera",
				"releaseDate": "1975-10-31T08:00:00Z",
				"primaryGenreName": "Rock",
				"kind": "song"
			}
		]
	}`

	var gotURL string
	c := &Client{httpClient: &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			gotURL = req.URL.String()
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			}, nil
		}),
	}}

	tracks, err := c.SearchTracks(context.Background(), "Queen Bohemian Rhapsody", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}

	tr := tracks[0]
	if tr.Name != "Bohemian Rhapsody" || tr.Artist != "Queen" || tr.Album != "A Night at the Opera" {
		t.Errorf("unexpected track: %+v", tr)
	}

	req, err := http.NewRequest(http.MethodGet, gotURL, http.NoBody)
	if err != nil {
		t.Fatalf("recorded URL invalid: %v", err)
	}
	q := req.URL.Query()
	if q.Get("entity") != "song" || q.Get("limit") != "5" {
		t.Errorf("unexpected query params: %v", q)
	}
}

func TestClient_SearchTracks_ErrorStatus(t *testing.T) {
	c := &Client{httpClient: &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusServiceUnavailable, Body: http.NoBody}, nil
		}),
	}}

	if _, err := c.SearchTracks(context.Background(), "anything", 1); err == nil {
		t.Fatal("expected error on 503")
	}
}
