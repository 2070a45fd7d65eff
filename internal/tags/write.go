package tags

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

const mimeJPEG = "image/jpeg"

// ErrUnsupportedFormat is returned for files whose format has no writer.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// WriteAlbum sets the album tag of a file, leaving every other field
// untouched.
func WriteAlbum(path, album string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		return writeMP3Album(path, album)
	case ExtFLAC:
		return writeFLACAlbum(path, album)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// EmbedCover replaces the front cover image of a file with the given
// image data.
func EmbedCover(path string, image []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		return embedMP3Cover(path, image)
	case ExtFLAC:
		return embedFLACCover(path, image)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func writeMP3Album(path, album string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetAlbum(album)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

func embedMP3Cover(path string, image []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	// Drop existing pictures so the new front cover is the only one.
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    detectMimeType(image),
		PictureType: id3v2.PTFrontCover,
		Description: "Front Cover",
		Picture:     image,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

func writeFLACAlbum(path, album string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	cmts := flacvorbis.New()
	cmtIdx := -1
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			existing, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("parse vorbis comment: %w", err)
			}
			cmts = existing
			cmtIdx = i
			break
		}
	}

	// Rebuild the comment list without any previous ALBUM field.
	kept := make([]string, 0, len(cmts.Comments))
	for _, c := range cmts.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), "ALBUM=") {
			kept = append(kept, c)
		}
	}
	cmts.Comments = kept
	if err := cmts.Add(flacvorbis.FIELD_ALBUM, album); err != nil {
		return fmt.Errorf("add album: %w", err)
	}

	cmtBlock := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtBlock
	} else {
		f.Meta = append(f.Meta, &cmtBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

func embedFLACCover(path string, image []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	newMeta := make([]*flac.MetaDataBlock, 0, len(f.Meta))
	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			newMeta = append(newMeta, meta)
		}
	}
	f.Meta = newMeta

	pic, err := flacpicture.NewFromImageData(
		flacpicture.PictureTypeFrontCover,
		"Front Cover",
		image,
		detectMimeType(image),
	)
	if err != nil {
		return fmt.Errorf("create picture: %w", err)
	}
	picBlock := pic.Marshal()
	f.Meta = append(f.Meta, &picBlock)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// detectMimeType detects the MIME type of image data, normalized to the
// types tag containers commonly carry.
func detectMimeType(data []byte) string {
	if len(data) == 0 {
		return mimeJPEG
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return "image/png"
	default:
		return mimeJPEG
	}
}
