package tags

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// Read reads tag metadata from a music file. The title falls back to the
// file name when the tag is empty so queries can still be built.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	title := m.Title()
	if title == "" {
		title = trimExt(filepath.Base(path))
	}

	return &Tag{
		Path:   path,
		Title:  title,
		Artist: m.Artist(),
		Album:  m.Album(),
		Year:   m.Year(),
	}, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
