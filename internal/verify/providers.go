package verify

import (
	"context"

	"github.com/llehouerou/liner/internal/itunes"
	"github.com/llehouerou/liner/internal/lastfm"
	"github.com/llehouerou/liner/internal/musicbrainz"
)

const trackSearchLimit = 10

// ITunesSearcher is the iTunes surface the provider depends on.
type ITunesSearcher interface {
	SearchTracks(ctx context.Context, term string, limit int) ([]itunes.Track, error)
}

// ITunesProvider confirms records against the iTunes Search API. It is
// unauthenticated and fast, so it goes first in the chain.
type ITunesProvider struct {
	Client ITunesSearcher
}

func (p *ITunesProvider) Name() string { return "itunes" }

func (p *ITunesProvider) VerifySong(ctx context.Context, artist, title string) (bool, error) {
	tracks, err := p.Client.SearchTracks(ctx, artist+" "+title, trackSearchLimit)
	if err != nil {
		return false, err
	}
	for _, t := range tracks {
		if similarEnough(t.Artist, artist) && titlesMatch(t.Name, title) {
			return true, nil
		}
	}
	return false, nil
}

func (p *ITunesProvider) VerifyAlbum(ctx context.Context, artist, album string) (bool, error) {
	tracks, err := p.Client.SearchTracks(ctx, artist+" "+album, trackSearchLimit)
	if err != nil {
		return false, err
	}
	for _, t := range tracks {
		if similarEnough(t.Artist, artist) && albumsMatch(t.Album, album) {
			return true, nil
		}
	}
	return false, nil
}

// MusicBrainzSearcher is the MusicBrainz surface the provider depends on.
type MusicBrainzSearcher interface {
	RecordingExists(ctx context.Context, artist, title, album string) (bool, error)
	SearchReleases(ctx context.Context, artist, album string) ([]musicbrainz.Release, error)
}

// MusicBrainzProvider confirms records against the MusicBrainz database.
type MusicBrainzProvider struct {
	Client MusicBrainzSearcher
}

func (p *MusicBrainzProvider) Name() string { return "musicbrainz" }

func (p *MusicBrainzProvider) VerifySong(ctx context.Context, artist, title string) (bool, error) {
	return p.Client.RecordingExists(ctx, artist, title, "")
}

func (p *MusicBrainzProvider) VerifyAlbum(ctx context.Context, artist, album string) (bool, error) {
	releases, err := p.Client.SearchReleases(ctx, artist, album)
	if err != nil {
		return false, err
	}
	for _, r := range releases {
		if similarEnough(r.Artist, artist) && albumsMatch(r.Title, album) {
			return true, nil
		}
	}
	return false, nil
}

// LastFMLookup is the Last.fm surface the provider depends on.
type LastFMLookup interface {
	Configured() bool
	TrackGetInfo(artist, title string) (*lastfm.TrackInfo, error)
	AlbumGetInfo(artist, album string) (*lastfm.AlbumInfo, error)
}

// LastFMProvider confirms records against Last.fm. It needs an API key
// and is the slowest backend, so it closes the chain.
type LastFMProvider struct {
	Client LastFMLookup
}

func (p *LastFMProvider) Name() string { return "lastfm" }

func (p *LastFMProvider) VerifySong(_ context.Context, artist, title string) (bool, error) {
	info, err := p.Client.TrackGetInfo(artist, title)
	if err != nil {
		return false, err
	}
	return titlesMatch(info.Name, title), nil
}

func (p *LastFMProvider) VerifyAlbum(_ context.Context, artist, album string) (bool, error) {
	info, err := p.Client.AlbumGetInfo(artist, album)
	if err != nil {
		return false, err
	}
	return albumsMatch(info.Name, album), nil
}
