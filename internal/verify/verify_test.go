package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/llehouerou/liner/internal/itunes"
)

// stubProvider counts calls and returns canned answers.
type stubProvider struct {
	name  string
	song  bool
	album bool
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) VerifySong(context.Context, string, string) (bool, error) {
	s.calls++
	return s.song, s.err
}

func (s *stubProvider) VerifyAlbum(context.Context, string, string) (bool, error) {
	s.calls++
	return s.album, s.err
}

func TestVerifier_ShortCircuits(t *testing.T) {
	a := &stubProvider{name: "a"}
	b := &stubProvider{name: "b", song: true}
	c := &stubProvider{name: "c", song: true}
	v := New(a, b, c)

	r := v.Song(context.Background(), "Queen", "Bohemian Rhapsody")
	if !r.Exists || r.ConfirmedBy != "b" {
		t.Fatalf("result = %+v, want confirmed by b", r)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("a=%d b=%d calls, want 1 each", a.calls, b.calls)
	}
	if c.calls != 0 {
		t.Errorf("provider after the confirming one was queried %d times", c.calls)
	}
}

func TestVerifier_ErrorMeansUnconfirmed(t *testing.T) {
	failing := &stubProvider{name: "a", err: errors.New("rate limited")}
	confirming := &stubProvider{name: "b", song: true}
	v := New(failing, confirming)

	r := v.Song(context.Background(), "Queen", "Bohemian Rhapsody")
	if !r.Exists || r.ConfirmedBy != "b" {
		t.Fatalf("result = %+v, want fall through to b", r)
	}
}

func TestVerifier_AllDecline(t *testing.T) {
	a := &stubProvider{name: "a"}
	b := &stubProvider{name: "b", err: errors.New("down")}
	v := New(a, b)

	r := v.Album(context.Background(), "Queen", "Imaginary Album")
	if r.Exists || r.ConfirmedBy != "" {
		t.Fatalf("result = %+v, want unconfirmed", r)
	}
}

func TestVerifier_EmptyFieldsNeverConfirm(t *testing.T) {
	p := &stubProvider{name: "a", song: true, album: true}
	v := New(p)

	if r := v.Song(context.Background(), "", "Bohemian Rhapsody"); r.Exists {
		t.Errorf("song with empty artist confirmed: %+v", r)
	}
	if r := v.Album(context.Background(), "Queen", ""); r.Exists {
		t.Errorf("album with empty title confirmed: %+v", r)
	}
	if p.calls != 0 {
		t.Errorf("provider queried %d times for empty fields", p.calls)
	}
}

func TestVerifier_Memoizes(t *testing.T) {
	p := &stubProvider{name: "a", song: true}
	v := New(p)

	v.Song(context.Background(), "Queen", "Bohemian Rhapsody")
	// Same query modulo case and punctuation hits the cache.
	v.Song(context.Background(), "queen", "bohemian rhapsody!")
	if p.calls != 1 {
		t.Errorf("provider queried %d times, want 1", p.calls)
	}

	v.Album(context.Background(), "Queen", "Bohemian Rhapsody")
	if p.calls != 2 {
		t.Errorf("album query should not share the song cache entry")
	}
}

type stubITunes struct {
	tracks []itunes.Track
	err    error
}

func (s *stubITunes) SearchTracks(context.Context, string, int) ([]itunes.Track, error) {
	return s.tracks, s.err
}

func TestITunesProvider_VerifySong(t *testing.T) {
	p := &ITunesProvider{Client: &stubITunes{tracks: []itunes.Track{
		{Name: "Bohemian Rhapsody (Remastered 2011)", Artist: "Queen", Album: "A Night at the Opera"},
	}}}

	ok, err := p.VerifySong(context.Background(), "Queen", "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("remastered title should still confirm the song")
	}

	ok, err = p.VerifySong(context.Background(), "Queen", "Stairway to Heaven")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("unrelated title confirmed")
	}
}

func TestITunesProvider_VerifyAlbum(t *testing.T) {
	p := &ITunesProvider{Client: &stubITunes{tracks: []itunes.Track{
		{Name: "Love of My Life", Artist: "Queen", Album: "A Night at the Opera"},
	}}}

	ok, err := p.VerifyAlbum(context.Background(), "Queen", "A Night at the Opera")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("album not confirmed from its own track listing")
	}
}
