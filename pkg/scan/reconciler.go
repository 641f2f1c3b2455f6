package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/models"
	"github.com/pkg/errors"
)

// LibraryFile is one e-book file found on disk.
type LibraryFile struct {
	Path string
	Name string
	Type string
	Size int64
}

// Result partitions a library scan: files on disk but not in the catalog,
// books in the catalog whose file is gone, and the overlap left untouched.
type Result struct {
	NewFiles  []LibraryFile
	Removed   []*models.Book
	Unchanged int
}

// Reconciler diffs a library's directories against its cataloged books.
type Reconciler struct {
	bookService *books.Service
}

func NewReconciler(bookService *books.Service) *Reconciler {
	return &Reconciler{bookService: bookService}
}

// Scan walks every library path and partitions what it finds against the
// catalog. Any walk error aborts the scan: an unreadable directory must not
// be mistaken for an empty one, or every book under it would be flagged as
// removed.
func (r *Reconciler) Scan(ctx context.Context, library *models.Library) (*Result, error) {
	known, err := r.bookService.ListKnownPaths(ctx, library.ID)
	if err != nil {
		return nil, err
	}

	found := map[string]LibraryFile{}
	for _, lp := range library.LibraryPaths {
		err := filepath.WalkDir(lp.Filepath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return errors.WithStack(err)
			}
			if d.IsDir() {
				return nil
			}

			fileType := bookFileType(path)
			if fileType == "" {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return errors.WithStack(err)
			}

			found[path] = LibraryFile{
				Path: path,
				Name: d.Name(),
				Type: fileType,
				Size: info.Size(),
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scanning library path %s", lp.Filepath)
		}
	}

	result := &Result{}
	for path, file := range found {
		if _, ok := known[path]; ok {
			result.Unchanged++
		} else {
			result.NewFiles = append(result.NewFiles, file)
		}
	}
	for path, book := range known {
		if _, ok := found[path]; !ok {
			result.Removed = append(result.Removed, book)
		}
	}

	// Map iteration order is random; sort so scans are reproducible.
	sort.Slice(result.NewFiles, func(i, j int) bool {
		return result.NewFiles[i].Path < result.NewFiles[j].Path
	})
	sort.Slice(result.Removed, func(i, j int) bool {
		return result.Removed[i].Filepath < result.Removed[j].Filepath
	})

	return result, nil
}

// bookFileType returns the catalog file type for the path, or "" when the
// file is not a supported e-book. The extension check is case-insensitive.
func bookFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.FileTypePDF
	case ".epub":
		return models.FileTypeEPUB
	}
	return ""
}
