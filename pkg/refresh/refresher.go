package refresh

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/covers"
	"github.com/folioreads/folio/pkg/htmlutil"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/folioreads/folio/pkg/models"
	"github.com/folioreads/folio/pkg/notify"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// maxCoverBytes caps cover downloads. Providers occasionally serve huge
// originals where a thumbnail was expected.
const maxCoverBytes = 10 << 20

// Refresher executes metadata refresh jobs: for each book in scope it asks
// one provider for its best candidate, merges it into the stored record under
// the book's field locks, and saves the result.
type Refresher struct {
	bookService  *books.Service
	orchestrator *metadata.Orchestrator
	coverStore   *covers.Store
	broker       *notify.Broker
	throttle     ThrottlePolicy
	httpClient   *http.Client
}

func NewRefresher(bookService *books.Service, orchestrator *metadata.Orchestrator, coverStore *covers.Store, broker *notify.Broker, throttle ThrottlePolicy) *Refresher {
	return &Refresher{
		bookService:  bookService,
		orchestrator: orchestrator,
		coverStore:   coverStore,
		broker:       broker,
		throttle:     throttle,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Execute runs one refresh job. Books are processed in file name order so two
// runs over the same scope visit books identically. A provider failure skips
// the book and moves on; a database failure fails the whole job, since at
// that point results are being lost, not merely missed.
func (r *Refresher) Execute(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	if job.DataParsed == nil {
		if err := job.UnmarshalData(); err != nil {
			return err
		}
	}
	data, ok := job.DataParsed.(*models.JobRefreshData)
	if !ok {
		return errors.Errorf("job %d is not a metadata refresh job", job.ID)
	}

	scope, err := r.resolveScope(ctx, data)
	if err != nil {
		return err
	}

	log.Info("starting metadata refresh", logger.Data{
		"books":    len(scope),
		"provider": data.Provider,
	})

	for _, book := range scope {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		err := r.refreshBook(ctx, book, data)
		if err != nil {
			return err
		}

		r.throttle.Wait(ctx, data.Provider)
	}

	return nil
}

func (r *Refresher) resolveScope(ctx context.Context, data *models.JobRefreshData) ([]*models.Book, error) {
	opts := books.ListBooksOptions{OrderByFileName: true}
	switch {
	case len(data.BookIDs) > 0:
		opts.IDs = data.BookIDs
	case data.LibraryID != nil:
		opts.LibraryID = data.LibraryID
	default:
		return nil, errors.New("refresh job has no books or library in scope")
	}
	return r.bookService.ListBooks(ctx, opts)
}

func (r *Refresher) refreshBook(ctx context.Context, book *models.Book, data *models.JobRefreshData) error {
	log := logger.FromContext(ctx)

	md := book.Metadata
	if md == nil {
		return errors.Errorf("book %d has no metadata row", book.ID)
	}
	existing := md.Record()

	candidate, err := r.orchestrator.FetchTop(ctx, queryForBook(book, existing), data.Provider)
	if err != nil {
		// The provider being down or misbehaving only skips this book. The
		// rest of the batch may still succeed.
		log.Err(err).Warn("metadata fetch failed", logger.Data{
			"book_id":  book.ID,
			"provider": data.Provider,
		})
		r.broker.Publish(notify.TopicLog, map[string]interface{}{
			"message":  "Metadata fetch failed.",
			"book_id":  book.ID,
			"provider": data.Provider,
		})
		return nil
	}
	if candidate == nil {
		log.Info("no metadata candidate", logger.Data{"book_id": book.ID, "provider": data.Provider})
		return nil
	}

	if candidate.Description != nil {
		clean := htmlutil.StripTags(*candidate.Description)
		candidate.Description = &clean
	}

	merged, replaceCover := metadata.Merge(existing, *candidate, md.Locks(), data.ReplaceCover)

	if replaceCover && candidate.ThumbnailURL != nil {
		// Cover failures are cosmetic; the merged text fields still land.
		err := r.replaceCover(ctx, book, *candidate.ThumbnailURL, &merged)
		if err != nil {
			log.Err(err).Warn("cover replace failed", logger.Data{"book_id": book.ID})
		}
	}

	if err := md.SetRecord(merged); err != nil {
		return err
	}
	if err := r.bookService.SaveMetadata(ctx, md); err != nil {
		return err
	}

	log.Info("metadata refreshed", logger.Data{"book_id": book.ID, "provider": data.Provider})
	r.broker.Publish(notify.TopicMetadataUpdate, map[string]interface{}{
		"book_id":  book.ID,
		"provider": data.Provider,
	})

	return nil
}

func (r *Refresher) replaceCover(ctx context.Context, book *models.Book, thumbnailURL string, merged *metadata.Record) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cover download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = r.coverStore.SaveCoverImage(book.Filepath, data)
	if err != nil {
		return err
	}

	now := time.Now()
	merged.CoverUpdatedOn = &now
	return nil
}

// queryForBook builds the provider query from what is already known about the
// book. The file name is the fallback key for books with no usable metadata.
func queryForBook(book *models.Book, existing metadata.Record) metadata.Query {
	q := metadata.Query{FileName: book.FileName}
	if existing.Title != nil {
		q.Title = *existing.Title
	}
	if len(existing.Authors) > 0 {
		q.Author = existing.Authors[0]
	}
	if existing.ISBN13 != nil {
		q.ISBN = *existing.ISBN13
	} else if existing.ISBN10 != nil {
		q.ISBN = *existing.ISBN10
	}
	return q
}
