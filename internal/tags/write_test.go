package tags

import (
	"errors"
	"testing"
)

func TestWriteAlbum_UnsupportedFormat(t *testing.T) {
	err := WriteAlbum("song.ogg", "Some Album")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEmbedCover_UnsupportedFormat(t *testing.T) {
	err := EmbedCover("song.wav", []byte{0xff})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46}

	if got := detectMimeType(png); got != "image/png" {
		t.Errorf("png detected as %q", got)
	}
	if got := detectMimeType(jpeg); got != mimeJPEG {
		t.Errorf("jpeg detected as %q", got)
	}
	if got := detectMimeType(nil); got != mimeJPEG {
		t.Errorf("empty data detected as %q, want jpeg default", got)
	}
	if got := detectMimeType([]byte("plain text")); got != mimeJPEG {
		t.Errorf("unknown data detected as %q, want jpeg default", got)
	}
}
