package resolve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/llehouerou/liner/internal/musicbrainz"
)

// stubSource is an in-memory MetadataSource for pipeline tests.
type stubSource struct {
	mu sync.Mutex

	groups        []musicbrainz.ReleaseGroup
	groupErr      error
	groupReleases map[string][]musicbrainz.Release
	searchResults []musicbrainz.Release
	searchErr     error
	details       map[string]*musicbrainz.ReleaseDetails

	searchCalls int
	detailCalls int
}

func (s *stubSource) SearchReleaseGroups(context.Context, string, string) ([]musicbrainz.ReleaseGroup, error) {
	return s.groups, s.groupErr
}

func (s *stubSource) GetReleaseGroupReleases(_ context.Context, id string) ([]musicbrainz.Release, error) {
	releases, ok := s.groupReleases[id]
	if !ok {
		return nil, errors.New("unknown release group")
	}
	return releases, nil
}

func (s *stubSource) SearchReleases(context.Context, string, string) ([]musicbrainz.Release, error) {
	s.mu.Lock()
	s.searchCalls++
	s.mu.Unlock()
	return s.searchResults, s.searchErr
}

func (s *stubSource) GetRelease(_ context.Context, id string) (*musicbrainz.ReleaseDetails, error) {
	s.mu.Lock()
	s.detailCalls++
	s.mu.Unlock()
	d, ok := s.details[id]
	if !ok {
		return nil, errors.New("unknown release")
	}
	return d, nil
}

func officialDetails(id, title, artist string) *musicbrainz.ReleaseDetails {
	return &musicbrainz.ReleaseDetails{
		Release: musicbrainz.Release{
			ID:     id,
			Title:  title,
			Artist: artist,
			Status: "Official",
		},
		CoverArt: musicbrainz.CoverArtInfo{Present: true, Front: true, Artwork: true},
	}
}

func queenSource() *stubSource {
	return &stubSource{
		groups: []musicbrainz.ReleaseGroup{
			{
				ID: "g1", Title: "A Night at the Opera", Artist: "Queen",
				PrimaryType: "Album", Score: 100,
			},
		},
		groupReleases: map[string][]musicbrainz.Release{
			"g1": {
				{ID: "r1", Title: "A Night at the Opera", Artist: "Queen", Status: "Official", Date: "1975-11-21"},
				{ID: "r2", Title: "A Night at the Opera", Artist: "Queen", Status: "Official", Date: "1991-09-03"},
			},
		},
		searchResults: []musicbrainz.Release{
			{ID: "r1", Title: "A Night at the Opera", Artist: "Queen", Status: "Official", Date: "1975-11-21", Score: 100},
		},
		details: map[string]*musicbrainz.ReleaseDetails{
			"r1": officialDetails("r1", "A Night at the Opera", "Queen"),
			"r2": officialDetails("r2", "A Night at the Opera", "Queen"),
		},
	}
}

var queenQuery = Query{Artist: "Queen", Album: "A Night at the Opera"}

func TestCandidates_MergesSources(t *testing.T) {
	r := NewResolver(queenSource(), DefaultWeights())

	candidates, err := r.Candidates(context.Background(), queenQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	top := candidates[0]
	if top.ID != "r1" {
		t.Fatalf("top candidate = %s, want r1", top.ID)
	}
	if !top.hasSource(SourceReleaseGroup) || !top.hasSource(SourceReleaseSearch) {
		t.Errorf("r1 sources = %v, want both strategies", top.Sources)
	}
	if candidates[1].ID != "r2" {
		t.Errorf("second candidate = %s, want r2", candidates[1].ID)
	}
	if top.Score <= top.BaseScore {
		t.Errorf("detail phase should have raised the score: base=%v final=%v", top.BaseScore, top.Score)
	}
}

func TestCandidates_Deterministic(t *testing.T) {
	q := queenQuery

	first, err := NewResolver(queenSource(), DefaultWeights()).Candidates(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewResolver(queenSource(), DefaultWeights()).Candidates(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over identical data disagree:\n%+v\n%+v", first, second)
	}
}

func TestCandidates_DetailLookupsCached(t *testing.T) {
	src := queenSource()
	r := NewResolver(src, DefaultWeights())

	if _, err := r.Candidates(context.Background(), queenQuery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := src.detailCalls
	if _, err := r.Candidates(context.Background(), queenQuery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.detailCalls != calls {
		t.Errorf("second run fetched details again: %d -> %d calls", calls, src.detailCalls)
	}
}

func TestResolveArt_FirstCandidateWins(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.ndjson")
	r := NewResolver(queenSource(), DefaultWeights(),
		WithFailureLog(NewFailureLog(logPath, nil)))

	var attempted []string
	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(_ context.Context, c ScoredCandidate) error {
			attempted = append(attempted, c.ID)
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Resolved || out.Candidate == nil || out.Candidate.ID != "r1" {
		t.Fatalf("outcome = %+v, want resolved with r1", out)
	}
	if len(attempted) != 1 {
		t.Errorf("attempted %v, want exactly one attempt", attempted)
	}
	if _, err := os.Stat(logPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failure log written on success")
	}
}

func TestResolveArt_ExhaustionLogsOnce(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.ndjson")
	src := queenSource()
	r := NewResolver(src, DefaultWeights(),
		WithFailureLog(NewFailureLog(logPath, nil)))

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(context.Context, ScoredCandidate) error { return ErrNoArtwork })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Resolved {
		t.Fatal("outcome resolved, want exhaustion")
	}
	// The exact-title pass decides the reason: it found matches, but all
	// of them had already been attempted.
	if out.Reason != ReasonNoArtExactTitle {
		t.Errorf("reason = %q, want %q", out.Reason, ReasonNoArtExactTitle)
	}

	entries := readFailureLog(t, logPath)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Reason != ReasonNoArtExactTitle || e.Query.Artist != "Queen" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if len(e.Candidates) == 0 {
		t.Error("entry carries no candidate snapshot")
	}
	if len(e.Attempted) == 0 {
		t.Error("entry records no attempted candidates")
	}
}

func TestResolveArt_ExactTitleFallbackRescues(t *testing.T) {
	src := queenSource()
	// A release only the flat search knows about, scoring too low to be
	// eligible but exactly matching the queried title.
	src.searchResults = append(src.searchResults, musicbrainz.Release{
		ID: "r9", Title: "A Night at the Opera", Artist: "Queen",
		Date: "2002-05-01", Score: 10,
	})

	r := NewResolver(src, DefaultWeights())

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(_ context.Context, c ScoredCandidate) error {
			if c.ID == "r9" {
				return nil
			}
			return ErrNoArtwork
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Resolved || out.Candidate == nil || out.Candidate.ID != "r9" {
		t.Fatalf("outcome = %+v, want rescue via r9", out)
	}
	if n := len(out.Attempted); n < 2 || out.Attempted[n-1] != "r9" {
		t.Errorf("attempted = %v, want scored candidates first and r9 last", out.Attempted)
	}
}

func TestResolveArt_NoReleases(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.ndjson")
	src := &stubSource{}
	r := NewResolver(src, DefaultWeights(),
		WithFailureLog(NewFailureLog(logPath, nil)))

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(context.Context, ScoredCandidate) error {
			t.Fatal("attempt called with no candidates")
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Resolved || out.Reason != ReasonNoReleases {
		t.Fatalf("outcome = %+v, want %s", out, ReasonNoReleases)
	}

	entries := readFailureLog(t, logPath)
	if len(entries) != 1 || entries[0].Reason != ReasonNoReleases {
		t.Errorf("unexpected log entries: %+v", entries)
	}
}

func TestResolveArt_NoExactMatch(t *testing.T) {
	src := &stubSource{
		searchResults: []musicbrainz.Release{
			{ID: "r1", Title: "A Day at the Races", Artist: "Queen", Status: "Official", Score: 5},
		},
	}
	// The lone fuzzy hit is attempted via the top-N fallback and fails;
	// the exact-title pass finds nothing and its reason closes the run.
	r := NewResolver(src, DefaultWeights())

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(context.Context, ScoredCandidate) error { return ErrNoArtwork })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Resolved || out.Reason != ReasonNoExactMatch {
		t.Fatalf("outcome = %+v, want %s", out, ReasonNoExactMatch)
	}
}

func TestResolveArt_NoArtForExactTitle(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.ndjson")
	src := queenSource()
	// An exact-title release the scored phase never attempts: only the
	// flat search knows it, and it scores below the confidence floor.
	src.searchResults = append(src.searchResults, musicbrainz.Release{
		ID: "r9", Title: "A Night at the Opera", Artist: "Queen",
		Date: "2002-05-01", Score: 10,
	})
	r := NewResolver(src, DefaultWeights(),
		WithFailureLog(NewFailureLog(logPath, nil)))

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(context.Context, ScoredCandidate) error { return ErrNoArtwork })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Resolved || out.Reason != ReasonNoArtExactTitle {
		t.Fatalf("outcome = %+v, want %s", out, ReasonNoArtExactTitle)
	}
	if n := len(out.Attempted); n == 0 || out.Attempted[n-1] != "r9" {
		t.Errorf("attempted = %v, want the exact-title pass to try r9 last", out.Attempted)
	}

	entries := readFailureLog(t, logPath)
	if len(entries) != 1 || entries[0].Reason != ReasonNoArtExactTitle {
		t.Errorf("unexpected log entries: %+v", entries)
	}
}

func TestResolveArt_ProviderError(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "failures.ndjson")
	src := &stubSource{
		groupErr:  errors.New("boom"),
		searchErr: errors.New("boom"),
	}
	r := NewResolver(src, DefaultWeights(),
		WithFailureLog(NewFailureLog(logPath, nil)))

	out, err := r.ResolveArt(context.Background(), queenQuery,
		func(context.Context, ScoredCandidate) error { return nil })
	if err == nil {
		t.Fatal("expected error when both searches fail")
	}
	if out.Reason != ReasonProviderError {
		t.Errorf("reason = %q, want %q", out.Reason, ReasonProviderError)
	}

	entries := readFailureLog(t, logPath)
	if len(entries) != 1 || entries[0].Reason != ReasonProviderError {
		t.Errorf("unexpected log entries: %+v", entries)
	}
}

func TestEligibleCandidates_TopNFallback(t *testing.T) {
	w := DefaultWeights()
	low := []ScoredCandidate{
		{Candidate: Candidate{ID: "a"}, Score: 30},
		{Candidate: Candidate{ID: "b"}, Score: 20},
		{Candidate: Candidate{ID: "c"}, Score: 10},
	}

	got := eligibleCandidates(low, w)
	if len(got) != w.FallbackTopN {
		t.Fatalf("got %d candidates, want top %d", len(got), w.FallbackTopN)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("fallback picked %v, want best two", got)
	}

	mixed := append([]ScoredCandidate{{Candidate: Candidate{ID: "z"}, Score: 75}}, low...)
	got = eligibleCandidates(mixed, w)
	if len(got) != 1 || got[0].ID != "z" {
		t.Errorf("floor filter picked %v, want only z", got)
	}
}

func TestFailureLog_Record(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sub", "failures.ndjson")
	var hookErr error
	fl := NewFailureLog(logPath, func(err error) { hookErr = err })

	fl.Record(queenQuery, ReasonNoReleases, "", nil, nil)
	fl.Record(queenQuery, ReasonNoArtAnyRelease, "detail", []string{"r1", "r2", "r9"}, []ScoredCandidate{
		{Candidate: Candidate{ID: "r1", Title: "T"}, Score: 61.5},
	})

	if hookErr != nil {
		t.Fatalf("error hook fired: %v", hookErr)
	}

	entries := readFailureLog(t, logPath)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Detail != "detail" || len(entries[1].Attempted) != 3 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if len(entries[1].Candidates) != 1 || entries[1].Candidates[0].Score != 61.5 {
		t.Errorf("unexpected snapshot: %+v", entries[1].Candidates)
	}
}

func TestFailureLog_ErrorHook(t *testing.T) {
	dir := t.TempDir()
	// Point the log at a path whose parent is a regular file so the
	// append fails.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var hookErr error
	fl := NewFailureLog(filepath.Join(blocker, "failures.ndjson"), func(err error) { hookErr = err })
	fl.Record(queenQuery, ReasonNoReleases, "", nil, nil)

	if hookErr == nil {
		t.Fatal("error hook not fired for unwritable path")
	}
}

func readFailureLog(t *testing.T, path string) []FailureEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failure log: %v", err)
	}
	defer f.Close()

	var entries []FailureEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e FailureEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan failure log: %v", err)
	}
	return entries
}
