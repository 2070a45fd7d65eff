package resolve

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/llehouerou/liner/internal/musicbrainz"
)

// MetadataSource is the provider surface candidate generation depends on.
// *musicbrainz.Client satisfies it; tests substitute a stub.
type MetadataSource interface {
	SearchReleaseGroups(ctx context.Context, artist, album string) ([]musicbrainz.ReleaseGroup, error)
	GetReleaseGroupReleases(ctx context.Context, releaseGroupID string) ([]musicbrainz.Release, error)
	SearchReleases(ctx context.Context, artist, album string) ([]musicbrainz.Release, error)
	GetRelease(ctx context.Context, releaseID string) (*musicbrainz.ReleaseDetails, error)
}

type scoredGroup struct {
	group musicbrainz.ReleaseGroup
	score float64
}

// Candidates generates, scores, aggregates and ranks release candidates
// for a query. The two search strategies run concurrently; one failing is
// tolerated as long as the other produced results.
func (r *Resolver) Candidates(ctx context.Context, q Query) ([]ScoredCandidate, error) {
	var (
		wg        sync.WaitGroup
		groups    []musicbrainz.ReleaseGroup
		groupErr  error
		releases  []musicbrainz.Release
		searchErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		groups, groupErr = r.source.SearchReleaseGroups(ctx, q.Artist, q.Album)
	}()
	go func() {
		defer wg.Done()
		releases, searchErr = r.source.SearchReleases(ctx, q.Artist, q.Album)
	}()
	wg.Wait()

	if groupErr != nil && searchErr != nil {
		return nil, fmt.Errorf("search release groups: %w", groupErr)
	}

	merged := make(map[string]*ScoredCandidate)

	r.expandGroups(ctx, q, groups, merged)

	for i, rel := range releases {
		score := r.weights.scoreReleaseSearch(q, rel, i)
		mergeCandidate(merged, releaseCandidate(rel), score, SourceReleaseSearch)
	}

	candidates := make([]ScoredCandidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, *c)
	}
	sortCandidates(candidates)

	// Second phase: re-score a shortlist with full release details. The
	// shortlist is wider than the final cut so detail adjustments can
	// promote candidates from just below the line.
	shortlist := min(len(candidates), 2*maxTotalCandidates)
	for i := 0; i < shortlist; i++ {
		d, err := r.details(ctx, candidates[i].ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue // keep the base score
		}
		candidates[i].Score = candidates[i].BaseScore + r.weights.scoreDetail(q, d)
		fillFromDetails(&candidates[i].Candidate, d)
	}

	sortCandidates(candidates)
	if len(candidates) > maxTotalCandidates {
		candidates = candidates[:maxTotalCandidates]
	}
	return candidates, nil
}

// expandGroups scores release groups, expands the best ones into their
// earliest releases and merges the results. Group and release ranks decay
// the score so the original ordering survives ties.
func (r *Resolver) expandGroups(ctx context.Context, q Query, groups []musicbrainz.ReleaseGroup, merged map[string]*ScoredCandidate) {
	scored := make([]scoredGroup, 0, len(groups))
	for _, g := range groups {
		if s := r.weights.scoreReleaseGroup(q, g); s >= r.weights.GroupFloor {
			scored = append(scored, scoredGroup{group: g, score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > maxReleaseGroups {
		scored = scored[:maxReleaseGroups]
	}

	for groupRank, sg := range scored {
		releases, err := r.source.GetReleaseGroupReleases(ctx, sg.group.ID)
		if err != nil {
			continue
		}

		sort.SliceStable(releases, func(i, j int) bool {
			return parseReleaseDate(releases[i].Date).Before(parseReleaseDate(releases[j].Date))
		})
		if len(releases) > maxReleasesPerGroup {
			releases = releases[:maxReleasesPerGroup]
		}

		for releaseRank, rel := range releases {
			c := releaseCandidate(rel)
			c.ReleaseGroupID = sg.group.ID
			c.ReleaseGroupTitle = sg.group.Title
			if c.PrimaryType == "" {
				c.PrimaryType = sg.group.PrimaryType
			}
			if len(c.SecondaryTypes) == 0 {
				c.SecondaryTypes = sg.group.SecondaryTypes
			}
			if c.Artist == "" {
				c.Artist = sg.group.Artist
			}

			score := sg.score -
				float64(groupRank)*r.weights.GroupRankDecay -
				float64(releaseRank)*r.weights.ReleaseRankDecay
			mergeCandidate(merged, c, score, SourceReleaseGroup)
		}
	}
}

// details fetches a release record through the per-resolver cache.
func (r *Resolver) details(ctx context.Context, releaseID string) (*musicbrainz.ReleaseDetails, error) {
	if d, ok := r.cache.get(releaseID); ok {
		return d, nil
	}
	d, err := r.source.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	r.cache.put(releaseID, d)
	return d, nil
}

func releaseCandidate(rel musicbrainz.Release) Candidate {
	return Candidate{
		ID:             rel.ID,
		Title:          rel.Title,
		Artist:         rel.Artist,
		Status:         rel.Status,
		PrimaryType:    rel.PrimaryType,
		SecondaryTypes: rel.SecondaryTypes,
		Disambiguation: rel.Disambiguation,
		Date:           rel.Date,
		Country:        rel.Country,
	}
}

// mergeCandidate folds a candidate into the aggregation map keyed by
// release ID: the best score wins, provenance accumulates, and empty
// metadata fields are filled from later sightings.
func mergeCandidate(merged map[string]*ScoredCandidate, c Candidate, score float64, source string) {
	if c.ID == "" {
		return
	}

	existing, ok := merged[c.ID]
	if !ok {
		sc := &ScoredCandidate{Candidate: c, BaseScore: score, Score: score}
		sc.addSource(source)
		merged[c.ID] = sc
		return
	}

	if score > existing.BaseScore {
		existing.BaseScore = score
		existing.Score = score
	}
	existing.addSource(source)

	fillEmpty(&existing.Title, c.Title)
	fillEmpty(&existing.Artist, c.Artist)
	fillEmpty(&existing.Status, c.Status)
	fillEmpty(&existing.PrimaryType, c.PrimaryType)
	fillEmpty(&existing.Disambiguation, c.Disambiguation)
	fillEmpty(&existing.Date, c.Date)
	fillEmpty(&existing.Country, c.Country)
	fillEmpty(&existing.ReleaseGroupID, c.ReleaseGroupID)
	fillEmpty(&existing.ReleaseGroupTitle, c.ReleaseGroupTitle)
	if len(existing.SecondaryTypes) == 0 {
		existing.SecondaryTypes = c.SecondaryTypes
	}
}

func fillEmpty(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// fillFromDetails backfills candidate metadata from a full release lookup.
func fillFromDetails(c *Candidate, d *musicbrainz.ReleaseDetails) {
	fillEmpty(&c.Title, d.Title)
	fillEmpty(&c.Artist, d.Artist)
	fillEmpty(&c.Status, d.Status)
	fillEmpty(&c.PrimaryType, d.PrimaryType)
	fillEmpty(&c.Disambiguation, d.Disambiguation)
	fillEmpty(&c.Date, d.Date)
	fillEmpty(&c.Country, d.Country)

	switch {
	case !d.CoverArt.Present:
		// unknown, leave empty
	case d.CoverArt.Front:
		c.Artwork = ArtworkFront
	case d.CoverArt.Artwork:
		c.Artwork = ArtworkSome
	default:
		c.Artwork = ArtworkNone
	}
}

// sortCandidates orders by score descending, then earliest release, then
// ID so equal-scoring runs are deterministic.
func sortCandidates(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		di, dj := candidates[i].releaseDate(), candidates[j].releaseDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return candidates[i].ID < candidates[j].ID
	})
}
