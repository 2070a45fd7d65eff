package resolve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

// ErrNoArtwork is returned by an AttemptFunc when the candidate simply
// has no usable artwork. Any other error is treated as an attempt
// failure of its own kind and surfaces in the closed reason.
var ErrNoArtwork = errors.New("no artwork available")

// AttemptFunc performs the side effect of a resolution (fetching and
// embedding cover art) for one candidate. Returning nil ends the
// pipeline successfully.
type AttemptFunc func(ctx context.Context, c ScoredCandidate) error

// Closed reasons recorded in the failure log when a resolution ends
// without success.
const (
	ReasonNoReleases      = "no_releases"
	ReasonNoExactMatch    = "no_exact_case_insensitive_match"
	ReasonNoArtExactTitle = "no_cover_art_found_for_exact_title"
	ReasonNoArtAnyRelease = "no_cover_art_found_for_any_matching_release"
	ReasonProviderError   = "provider_error"
	ReasonUnexpectedError = "unexpected_error"
)

// Outcome is the result of one resolution run.
type Outcome struct {
	Resolved  bool
	Candidate *ScoredCandidate // The winning candidate when Resolved
	Reason    string           // Closed reason when not Resolved
	Attempted []string         // Candidate IDs attempted, in order
}

// Attempts is the number of candidates actually attempted.
func (o *Outcome) Attempts() int { return len(o.Attempted) }

// Summary is a human-readable account of the run for callers that do
// not read the failure log.
func (o *Outcome) Summary() string {
	if o.Resolved {
		return fmt.Sprintf("resolved via release %s after %d attempt(s)",
			o.Candidate.ID, o.Attempts())
	}
	if o.Attempts() == 0 {
		return fmt.Sprintf("unresolved (%s), no candidate attempted", o.Reason)
	}
	return fmt.Sprintf("unresolved (%s) after %d attempt(s)", o.Reason, o.Attempts())
}

// Resolver drives the full resolution pipeline: candidate generation,
// ranked attempts and the exact-title fallback, with failures recorded
// to an append-only log.
type Resolver struct {
	source   MetadataSource
	weights  Weights
	cache    *DetailCache
	failures *FailureLog
	logger   *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFailureLog records unresolved queries to the given log.
func WithFailureLog(fl *FailureLog) Option {
	return func(r *Resolver) { r.failures = fl }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithDetailCache shares a release detail cache between resolvers so
// memoization carries across queries.
func WithDetailCache(c *DetailCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// NewResolver creates a resolver over the given metadata source.
func NewResolver(source MetadataSource, weights Weights, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		weights: weights,
		cache:   NewDetailCache(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

// ResolveArt runs the pipeline for one query: generate and rank
// candidates, attempt them best-first, and fall back to exact-title
// matching before giving up. Unresolved runs are recorded in the failure
// log exactly once.
func (r *Resolver) ResolveArt(ctx context.Context, q Query, attempt AttemptFunc) (*Outcome, error) {
	candidates, err := r.Candidates(ctx, q)
	if err != nil {
		out := &Outcome{Reason: ReasonProviderError}
		r.recordFailure(q, out, nil, err.Error())
		return out, err
	}

	if len(candidates) == 0 {
		out, err := r.legacyResolve(ctx, q, attempt, nil)
		if !out.Resolved {
			detail := ""
			if err != nil {
				detail = err.Error()
			}
			r.recordFailure(q, out, nil, detail)
		}
		return out, err
	}

	eligible := eligibleCandidates(candidates, r.weights)
	r.logf("resolve: %q / %q: %d candidates, %d eligible",
		q.Artist, q.Album, len(candidates), len(eligible))

	out := &Outcome{}
	attempted := make(map[string]bool)
	var attemptErr error

	for i := range eligible {
		c := eligible[i]
		attempted[c.ID] = true
		out.Attempted = append(out.Attempted, c.ID)

		err := attempt(ctx, c)
		if err == nil {
			out.Resolved = true
			out.Candidate = &c
			return out, nil
		}
		if ctx.Err() != nil {
			out.Reason = ReasonProviderError
			r.recordFailure(q, out, candidates, ctx.Err().Error())
			return out, ctx.Err()
		}
		if !errors.Is(err, ErrNoArtwork) {
			attemptErr = err
			r.logf("resolve: attempt %s failed: %v", c.ID, err)
		}
	}

	// Exact-title fallback rescues queries where fuzzy scoring favored
	// the wrong edition but a literally-titled release exists.
	fbOut, fbErr := r.legacyResolve(ctx, q, attempt, attempted)
	out.Attempted = append(out.Attempted, fbOut.Attempted...)
	if fbOut.Resolved {
		out.Resolved = true
		out.Candidate = fbOut.Candidate
		return out, nil
	}

	// The closed reason comes from the last strategy that ran.
	out.Reason = fbOut.Reason
	switch {
	case out.Reason != "":
	case attemptErr != nil:
		out.Reason = ReasonUnexpectedError
	default:
		out.Reason = ReasonNoArtAnyRelease
	}

	detail := ""
	switch {
	case fbErr != nil:
		detail = fbErr.Error()
	case attemptErr != nil:
		detail = attemptErr.Error()
	}
	r.recordFailure(q, out, candidates, detail)
	return out, fbErr
}

// eligibleCandidates keeps candidates at or above the confidence floor;
// when nothing clears it, the top few are attempted anyway rather than
// closing the query untried.
func eligibleCandidates(candidates []ScoredCandidate, w Weights) []ScoredCandidate {
	eligible := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= w.ConfidenceFloor {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) > 0 {
		return eligible
	}
	n := min(len(candidates), w.FallbackTopN)
	return candidates[:n]
}

// legacyResolve is the exact-title path: search releases, keep
// case-insensitive title matches, and attempt them official-albums-first
// then earliest-first. skip holds release IDs already attempted.
func (r *Resolver) legacyResolve(ctx context.Context, q Query, attempt AttemptFunc, skip map[string]bool) (*Outcome, error) {
	out := &Outcome{}

	releases, err := r.source.SearchReleases(ctx, q.Artist, q.Album)
	if err != nil {
		out.Reason = ReasonProviderError
		return out, err
	}
	if len(releases) == 0 {
		out.Reason = ReasonNoReleases
		return out, nil
	}

	matches := make([]ScoredCandidate, 0, len(releases))
	for _, rel := range releases {
		if !strings.EqualFold(strings.TrimSpace(rel.Title), strings.TrimSpace(q.Album)) {
			continue
		}
		matches = append(matches, ScoredCandidate{Candidate: releaseCandidate(rel)})
	}
	if len(matches) == 0 {
		out.Reason = ReasonNoExactMatch
		return out, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		oi, oj := isOfficialAlbum(&matches[i].Candidate), isOfficialAlbum(&matches[j].Candidate)
		if oi != oj {
			return oi
		}
		di, dj := matches[i].releaseDate(), matches[j].releaseDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return matches[i].ID < matches[j].ID
	})

	// Exact matches already tried by the scored phase are skipped, but
	// their existence still makes this the deciding strategy.
	for i := range matches {
		if skip[matches[i].ID] {
			continue
		}
		out.Attempted = append(out.Attempted, matches[i].ID)
		err := attempt(ctx, matches[i])
		if err == nil {
			out.Resolved = true
			out.Candidate = &matches[i]
			return out, nil
		}
		if ctx.Err() != nil {
			out.Reason = ReasonProviderError
			return out, ctx.Err()
		}
	}

	out.Reason = ReasonNoArtExactTitle
	return out, nil
}

func isOfficialAlbum(c *Candidate) bool {
	return c.Status == "Official" && (c.PrimaryType == "" || c.PrimaryType == "Album")
}

// recordFailure writes one failure-log line for an unresolved run.
func (r *Resolver) recordFailure(q Query, out *Outcome, candidates []ScoredCandidate, detail string) {
	if r.failures == nil {
		return
	}
	r.failures.Record(q, out.Reason, detail, out.Attempted, candidates)
}
