// Package lastfm wraps the Last.fm API for track metadata lookups.
// It is the slowest of the configured providers and is queried last.
package lastfm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("lastfm: api key not configured")

// TrackInfo is the subset of track.getInfo the engine consumes.
type TrackInfo struct {
	Name   string
	Artist string
	Album  string // Parent album title, empty when Last.fm has none
}

// Client wraps the Last.fm API for metadata lookups.
type Client struct {
	api *lastfm.Api
}

// New creates a new Last.fm client. The API secret is only needed for
// authenticated flows and may be empty for read-only lookups.
func New(apiKey, apiSecret string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	return &Client{api: lastfm.New(apiKey, apiSecret)}
}

// Configured reports whether the client can make API calls.
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// TrackGetInfo looks up a track by artist and title. A lookup miss is
// returned as an error by the Last.fm API; callers treat any error as
// "not confirmed by this provider".
func (c *Client) TrackGetInfo(artist, title string) (*TrackInfo, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	result, err := c.api.Track.GetInfo(lastfm.P{
		"artist":      artist,
		"track":       title,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("track get info: %w", err)
	}

	info := &TrackInfo{
		Name:   result.Name,
		Artist: result.Artist.Name,
		Album:  result.Album.Title,
	}
	if strings.TrimSpace(info.Name) == "" {
		return nil, errors.New("track get info: empty result")
	}

	return info, nil
}

// AlbumInfo is the subset of album.getInfo the engine consumes.
type AlbumInfo struct {
	Name   string
	Artist string
}

// AlbumGetInfo looks up an album by artist and title.
func (c *Client) AlbumGetInfo(artist, album string) (*AlbumInfo, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	result, err := c.api.Album.GetInfo(lastfm.P{
		"artist":      artist,
		"album":       album,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("album get info: %w", err)
	}

	info := &AlbumInfo{
		Name:   result.Name,
		Artist: result.Artist,
	}
	if strings.TrimSpace(info.Name) == "" {
		return nil, errors.New("album get info: empty result")
	}

	return info, nil
}
