package books

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/folioreads/folio/pkg/errcodes"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/folioreads/folio/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID        *int
	Filepath  *string
	LibraryID *int
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	IDs       []int
	LibraryID *int

	// OrderByFileName sorts by file name instead of insertion order. Refresh
	// jobs rely on this for a stable processing order.
	OrderByFileName bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts the book together with an empty metadata row, so every
// book always has exactly one metadata row to merge into.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if book.Metadata == nil {
			book.Metadata = &models.Metadata{}
		}
		book.Metadata.BookID = book.ID
		book.Metadata.CreatedAt = book.CreatedAt
		book.Metadata.UpdatedAt = book.UpdatedAt
		if err := book.Metadata.MarshalLists(); err != nil {
			return err
		}

		_, err = tx.
			NewInsert().
			Model(book.Metadata).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Metadata")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Filepath != nil {
		q = q.Where("b.filepath = ?", *opts.Filepath)
	}
	if opts.LibraryID != nil {
		q = q.Where("b.library_id = ?", *opts.LibraryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	if book.Metadata != nil {
		if err := book.Metadata.UnmarshalLists(); err != nil {
			return nil, err
		}
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books, _, err := svc.listBooksWithTotal(ctx, opts)
	return books, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Metadata")

	if opts.OrderByFileName {
		q = q.OrderExpr("b.file_name IS NULL, b.file_name ASC, b.id ASC")
	} else {
		q = q.Order("b.created_at ASC").Order("b.id ASC")
	}

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.IDs != nil {
		q = q.Where("b.id IN (?)", bun.In(opts.IDs))
	}
	if opts.LibraryID != nil {
		q = q.Where("b.library_id = ?", *opts.LibraryID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	for _, book := range books {
		if book.Metadata != nil {
			if err := book.Metadata.UnmarshalLists(); err != nil {
				return nil, 0, err
			}
		}
	}

	return books, total, nil
}

// ListKnownPaths returns every cataloged file path in the library, keyed to
// its book. Reconciliation diffs the filesystem against this set.
func (svc *Service) ListKnownPaths(ctx context.Context, libraryID int) (map[string]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Where("b.library_id = ?", libraryID).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	known := make(map[string]*models.Book, len(books))
	for _, book := range books {
		known[book.Filepath] = book
	}
	return known, nil
}

// SaveMetadata rewrites the metadata row's value columns with merge output.
// Lock columns are never touched here, so a concurrent lock toggle can't be
// clobbered by a running refresh.
func (svc *Service) SaveMetadata(ctx context.Context, md *models.Metadata) error {
	if err := md.MarshalLists(); err != nil {
		return err
	}
	md.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(md).
		Column(models.MetadataValueColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Metadata")
	}

	return nil
}

// SetFieldLock flips a single metadata field lock for a book.
func (svc *Service) SetFieldLock(ctx context.Context, bookID int, field string, locked bool) (*models.Metadata, error) {
	if !metadata.KnownField(field) {
		return nil, errcodes.ValidationError(fmt.Sprintf("%q is not a lockable metadata field.", field))
	}

	md, err := svc.retrieveMetadata(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := md.SetLock(field, locked); err != nil {
		return nil, err
	}
	md.UpdatedAt = time.Now()

	_, err = svc.db.
		NewUpdate().
		Model(md).
		Column(models.LockColumn(field), "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return md, nil
}

// SetAllLocked flips the lock that overrides every field lock.
func (svc *Service) SetAllLocked(ctx context.Context, bookID int, locked bool) (*models.Metadata, error) {
	md, err := svc.retrieveMetadata(ctx, bookID)
	if err != nil {
		return nil, err
	}
	md.AllFieldsLocked = locked
	md.UpdatedAt = time.Now()

	_, err = svc.db.
		NewUpdate().
		Model(md).
		Column("all_fields_locked", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return md, nil
}

func (svc *Service) retrieveMetadata(ctx context.Context, bookID int) (*models.Metadata, error) {
	md := &models.Metadata{}

	err := svc.db.
		NewSelect().
		Model(md).
		Where("bm.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	if err := md.UnmarshalLists(); err != nil {
		return nil, err
	}
	return md, nil
}

// DeleteBooks removes books and their metadata rows.
func (svc *Service) DeleteBooks(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.Metadata)(nil)).
			Where("bm.book_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("b.id IN (?)", bun.In(ids)).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}
