// Package tags reads and writes metadata in audio files. Reading goes
// through dhowden/tag, which understands every format we care about;
// writing is format-specific (ID3v2 for MP3, Vorbis comments for FLAC).
package tags

// Supported file extensions (lowercase, with dot).
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
)

// Tag holds the metadata fields the resolution engine consumes.
type Tag struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Year   int
}
