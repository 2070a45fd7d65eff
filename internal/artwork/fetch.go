// Package artwork fetches release cover art from the Cover Art Archive
// and prepares it for embedding into audio files.
package artwork

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/llehouerou/liner/internal/musicbrainz"
)

// ErrNoImage is returned when a release has no usable cover image.
var ErrNoImage = errors.New("no cover image available")

// suspectComments mark images that are usually not the real cover.
var suspectComments = []string{"promo", "placeholder", "temp"}

// ArchiveClient is the Cover Art Archive surface the fetcher depends on.
type ArchiveClient interface {
	GetImageList(ctx context.Context, releaseID string) ([]musicbrainz.CoverImage, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

// Fetcher downloads the best cover image for a release.
type Fetcher struct {
	archive ArchiveClient
}

// NewFetcher creates a fetcher over the given archive client.
func NewFetcher(archive ArchiveClient) *Fetcher {
	return &Fetcher{archive: archive}
}

// FrontCover returns the best front cover image for a release. The image
// listing is consulted first; when it is empty or unavailable, the
// archive's direct front-cover endpoint is the last resort.
func (f *Fetcher) FrontCover(ctx context.Context, releaseID string) ([]byte, string, error) {
	images, err := f.archive.GetImageList(ctx, releaseID)
	if err != nil {
		return nil, "", err
	}

	for _, img := range rankImages(images) {
		data, mime, err := f.archive.FetchImage(ctx, img.Image)
		if err != nil {
			return nil, "", err
		}
		if len(data) > 0 {
			return data, mime, nil
		}
	}

	// No listing, or every listed URL came back empty.
	data, mime, err := f.archive.FetchImage(ctx, musicbrainz.FrontCoverURL(releaseID))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", ErrNoImage
	}
	return data, mime, nil
}

// rankImages orders candidate images best-first: approved before
// pending, front covers before everything else, images with suspect
// comments last, ties broken by archive ID so the oldest upload wins.
func rankImages(images []musicbrainz.CoverImage) []musicbrainz.CoverImage {
	ranked := make([]musicbrainz.CoverImage, 0, len(images))
	for _, img := range images {
		if img.Image == "" {
			continue
		}
		ranked = append(ranked, img)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Approved != b.Approved {
			return a.Approved
		}
		if a.Front != b.Front {
			return a.Front
		}
		sa, sb := hasSuspectComment(a.Comment), hasSuspectComment(b.Comment)
		if sa != sb {
			return !sa
		}
		ai, aerr := a.ID.Int64()
		bi, berr := b.ID.Int64()
		if aerr == nil && berr == nil && ai != bi {
			return ai < bi
		}
		return a.ID.String() < b.ID.String()
	})
	return ranked
}

func hasSuspectComment(comment string) bool {
	lowered := strings.ToLower(comment)
	for _, s := range suspectComments {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}
