// Package verify answers existence questions about songs and albums by
// asking a chain of providers. Providers are ordered cheapest-first and
// the chain short-circuits on the first confirmation: a single provider
// knowing the record is enough.
package verify

import (
	"context"
	"log"
	"sync"

	"github.com/llehouerou/liner/internal/textnorm"
)

// matchThreshold is the minimum normalized similarity for a provider hit
// to count as the queried record.
const matchThreshold = 0.7

// Provider is one backend able to confirm that a song or album exists.
// Errors mean "this provider could not confirm", never "does not exist".
type Provider interface {
	Name() string
	VerifySong(ctx context.Context, artist, title string) (bool, error)
	VerifyAlbum(ctx context.Context, artist, album string) (bool, error)
}

// Result reports whether a record exists and which provider confirmed it.
type Result struct {
	Exists      bool
	ConfirmedBy string // Provider name, empty when not confirmed
}

// Verifier runs the provider chain with per-query memoization, so
// repeated questions within a session cost one pass at most.
type Verifier struct {
	providers []Provider
	logger    *log.Logger

	mu    sync.Mutex
	cache map[string]Result
}

// New creates a verifier over the given providers, queried in order.
func New(providers ...Provider) *Verifier {
	return &Verifier{
		providers: providers,
		cache:     make(map[string]Result),
	}
}

// SetLogger sets the diagnostic logger.
func (v *Verifier) SetLogger(l *log.Logger) { v.logger = l }

// Song reports whether any provider knows a song by artist and title.
func (v *Verifier) Song(ctx context.Context, artist, title string) Result {
	return v.run(ctx, "song", artist, title, func(p Provider) (bool, error) {
		return p.VerifySong(ctx, artist, title)
	})
}

// Album reports whether any provider knows an album by artist and title.
func (v *Verifier) Album(ctx context.Context, artist, album string) Result {
	return v.run(ctx, "album", artist, album, func(p Provider) (bool, error) {
		return p.VerifyAlbum(ctx, artist, album)
	})
}

func (v *Verifier) run(ctx context.Context, kind, artist, name string, query func(Provider) (bool, error)) Result {
	if artist == "" || name == "" {
		return Result{}
	}

	key := kind + "\x00" + textnorm.Normalize(artist) + "\x00" + textnorm.Normalize(name)

	v.mu.Lock()
	if r, ok := v.cache[key]; ok {
		v.mu.Unlock()
		return r
	}
	v.mu.Unlock()

	var result Result
	for _, p := range v.providers {
		if ctx.Err() != nil {
			return result // not cached: the chain did not finish
		}
		ok, err := query(p)
		if err != nil {
			v.logf("verify: %s %q / %q via %s: %v", kind, artist, name, p.Name(), err)
			continue
		}
		if ok {
			result = Result{Exists: true, ConfirmedBy: p.Name()}
			break
		}
	}

	v.mu.Lock()
	v.cache[key] = result
	v.mu.Unlock()
	return result
}

func (v *Verifier) logf(format string, args ...any) {
	if v.logger != nil {
		v.logger.Printf(format, args...)
	}
}

// similarEnough reports whether two names refer to the same record.
func similarEnough(a, b string) bool {
	return textnorm.Similarity(textnorm.Normalize(a), textnorm.Normalize(b)) > matchThreshold
}

// titlesMatch compares track titles with edition noise (parentheticals,
// feature credits, remaster suffixes) stripped from both sides.
func titlesMatch(got, want string) bool {
	return similarEnough(textnorm.CleanTitle(got), textnorm.CleanTitle(want))
}

// albumsMatch compares album titles with edition suffixes stripped.
func albumsMatch(got, want string) bool {
	return similarEnough(textnorm.CleanAlbumName(got), textnorm.CleanAlbumName(want))
}
