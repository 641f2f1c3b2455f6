package covers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// coverExtensions are the cover image extensions we will write or look up,
// in lookup order.
var coverExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Store writes cover images next to the book files they belong to. A cover
// for /library/foo.epub lives at /library/foo.cover.jpg, so the cover follows
// the book when the directory is moved.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// SaveCoverImage writes the image bytes next to the book file and returns the
// cover path. The content is sniffed, not trusted: non-image data is rejected
// and any previous cover with a different extension is removed so a book never
// has two covers.
func (s *Store) SaveCoverImage(bookPath string, data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", errors.Errorf("cover for %s is %s, not an image", bookPath, mtype.String())
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = ".jpg"
	}

	coverPath := coverBase(bookPath) + ext
	for _, other := range coverExtensions {
		p := coverBase(bookPath) + other
		if p != coverPath {
			os.Remove(p)
		}
	}

	err := os.WriteFile(coverPath, data, 0o644)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return coverPath, nil
}

// FindCover returns the path of the book's cover image, or "" when none
// exists.
func (s *Store) FindCover(bookPath string) string {
	for _, ext := range coverExtensions {
		p := coverBase(bookPath) + ext
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// RemoveCover deletes any cover image stored for the book.
func (s *Store) RemoveCover(bookPath string) {
	for _, ext := range coverExtensions {
		os.Remove(coverBase(bookPath) + ext)
	}
}

func coverBase(bookPath string) string {
	return strings.TrimSuffix(bookPath, filepath.Ext(bookPath)) + ".cover"
}
