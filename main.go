package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/llehouerou/liner/internal/albumname"
	"github.com/llehouerou/liner/internal/artwork"
	"github.com/llehouerou/liner/internal/config"
	"github.com/llehouerou/liner/internal/errmsg"
	"github.com/llehouerou/liner/internal/itunes"
	"github.com/llehouerou/liner/internal/lastfm"
	"github.com/llehouerou/liner/internal/musicbrainz"
	"github.com/llehouerou/liner/internal/resolve"
	"github.com/llehouerou/liner/internal/tags"
	"github.com/llehouerou/liner/internal/verify"
)

const usageText = `Usage: liner <command> [flags]

Commands:
  art     resolve and embed cover art for a release
  album   guess the parent album of a track
  verify  check that a song or album exists

Run 'liner <command> -h' for command flags.`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(errmsg.Format(errmsg.OpLoadConfig, err))
	}

	var runErr error
	var op errmsg.Op
	switch os.Args[1] {
	case "art":
		op, runErr = runArt(cfg, os.Args[2:])
	case "album":
		op, runErr = runAlbum(cfg, os.Args[2:])
	case "verify":
		op, runErr = runVerify(cfg, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usageText)
		os.Exit(2)
	}
	if runErr != nil {
		log.Fatal(errmsg.Format(op, runErr))
	}
}

func runArt(cfg *config.Config, args []string) (errmsg.Op, error) {
	fs := flag.NewFlagSet("art", flag.ExitOnError)
	artist := fs.String("artist", "", "artist name (read from file tags when omitted)")
	album := fs.String("album", "", "album title (read from file tags when omitted)")
	filePath := fs.String("file", "", "audio file to embed the cover into")
	outPath := fs.String("out", "", "write the cover image to this path instead of embedding")
	timeout := fs.Duration("timeout", 2*time.Minute, "overall resolution timeout")
	fs.Parse(args)

	q := resolve.Query{
		Artist: strings.TrimSpace(*artist),
		Album:  strings.TrimSpace(*album),
		Target: *filePath,
	}
	if *filePath != "" && (q.Artist == "" || q.Album == "") {
		tg, err := tags.Read(*filePath)
		if err != nil {
			return errmsg.OpReadTags, fmt.Errorf("%s: %w", *filePath, err)
		}
		if q.Artist == "" {
			q.Artist = tg.Artist
		}
		if q.Album == "" {
			q.Album = tg.Album
		}
	}
	if q.Artist == "" || q.Album == "" {
		return errmsg.OpResolveArt, errors.New("artist and album are required (flags or file tags)")
	}
	if *filePath == "" && *outPath == "" {
		return errmsg.OpResolveArt, errors.New("one of -file or -out is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	mb := musicbrainz.NewClient()
	fetcher := artwork.NewFetcher(mb)

	failures := resolve.NewFailureLog(cfg.FailureLog, func(err error) {
		log.Printf("warning: %s", errmsg.FormatWith(errmsg.OpRecordFailure, cfg.FailureLog, err))
	})
	resolver := resolve.NewResolver(mb, cfg.Scoring,
		resolve.WithFailureLog(failures),
		resolve.WithLogger(log.Default()))

	attempt := func(ctx context.Context, c resolve.ScoredCandidate) error {
		data, _, err := fetcher.FrontCover(ctx, c.ID)
		if errors.Is(err, artwork.ErrNoImage) {
			return resolve.ErrNoArtwork
		}
		if err != nil {
			return err
		}

		prepared, err := artwork.Prepare(data)
		if err != nil {
			return fmt.Errorf("prepare image: %w", err)
		}

		if *filePath != "" {
			if err := tags.EmbedCover(*filePath, prepared); err != nil {
				return fmt.Errorf("embed cover: %w", err)
			}
		}
		if *outPath != "" {
			if err := os.WriteFile(*outPath, prepared, 0o644); err != nil {
				return fmt.Errorf("write cover: %w", err)
			}
		}
		return nil
	}

	out, err := resolver.ResolveArt(ctx, q, attempt)
	if err != nil {
		return errmsg.OpResolveArt, err
	}
	if !out.Resolved {
		return errmsg.OpResolveArt, fmt.Errorf("no cover art found: %s", out.Summary())
	}

	c := out.Candidate
	log.Printf("embedded cover from %s - %s (%s, %s) release %s",
		c.Artist, c.Title, c.Status, c.Date, c.ID)
	return errmsg.OpResolveArt, nil
}

func runAlbum(cfg *config.Config, args []string) (errmsg.Op, error) {
	fs := flag.NewFlagSet("album", flag.ExitOnError)
	artist := fs.String("artist", "", "artist name (read from file tags when omitted)")
	title := fs.String("title", "", "track title (read from file tags when omitted)")
	filePath := fs.String("file", "", "audio file to read the query from")
	write := fs.Bool("write", false, "write the guessed album into the file's tags")
	timeout := fs.Duration("timeout", time.Minute, "lookup timeout")
	fs.Parse(args)

	a, t := *artist, *title
	if *filePath != "" {
		tg, err := tags.Read(*filePath)
		if err != nil {
			return errmsg.OpReadTags, fmt.Errorf("%s: %w", *filePath, err)
		}
		if a == "" {
			a = tg.Artist
		}
		if t == "" {
			t = tg.Title
		}
	}
	if a == "" || t == "" {
		return errmsg.OpGuessAlbum, errors.New("artist and title are required (flags or file tags)")
	}
	if *write && *filePath == "" {
		return errmsg.OpGuessAlbum, errors.New("-write needs -file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	lookup := albumname.New(itunes.NewClient(), musicbrainz.NewClient())
	lookup.SetMinConfidence(cfg.Lookup.MinConfidence)
	lookup.SetLogger(log.Default())

	m, err := lookup.GuessAlbum(ctx, a, t)
	if err != nil {
		return errmsg.OpGuessAlbum, err
	}
	if m == nil {
		return errmsg.OpGuessAlbum, fmt.Errorf("no confident album guess for %s - %s", a, t)
	}

	log.Printf("%s - %s: %s (%s via %s, confidence %.2f)",
		a, t, m.Album, m.ReleaseType, m.Source, m.Confidence)

	if *write {
		if err := tags.WriteAlbum(*filePath, m.Album); err != nil {
			return errmsg.OpWriteTags, fmt.Errorf("%s: %w", *filePath, err)
		}
		log.Printf("wrote album tag to %s", *filePath)
	}
	return errmsg.OpGuessAlbum, nil
}

func runVerify(cfg *config.Config, args []string) (errmsg.Op, error) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	artist := fs.String("artist", "", "artist name")
	title := fs.String("title", "", "song title to verify")
	album := fs.String("album", "", "album title to verify")
	timeout := fs.Duration("timeout", time.Minute, "verification timeout")
	fs.Parse(args)

	if *artist == "" || (*title == "" && *album == "") {
		return errmsg.OpVerifyRecord, errors.New("-artist plus one of -title or -album is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	providers := []verify.Provider{
		&verify.ITunesProvider{Client: itunes.NewClient()},
		&verify.MusicBrainzProvider{Client: musicbrainz.NewClient()},
	}
	if cfg.HasLastfmConfig() {
		providers = append(providers, &verify.LastFMProvider{
			Client: lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret),
		})
	}

	v := verify.New(providers...)
	v.SetLogger(log.Default())

	var r verify.Result
	var what string
	if *title != "" {
		r = v.Song(ctx, *artist, *title)
		what = fmt.Sprintf("song %s - %s", *artist, *title)
	} else {
		r = v.Album(ctx, *artist, *album)
		what = fmt.Sprintf("album %s - %s", *artist, *album)
	}

	if !r.Exists {
		log.Printf("%s: not found", what)
		os.Exit(1)
	}
	log.Printf("%s: confirmed by %s", what, r.ConfirmedBy)
	return errmsg.OpVerifyRecord, nil
}
