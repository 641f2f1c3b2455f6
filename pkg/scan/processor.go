package scan

import (
	"context"
	"strings"

	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/covers"
	"github.com/folioreads/folio/pkg/jobs"
	"github.com/folioreads/folio/pkg/models"
	"github.com/folioreads/folio/pkg/notify"
	"github.com/gabriel-vasile/mimetype"
	"github.com/robinjoseph08/golib/logger"
)

// Processor turns reconciliation results into catalog changes. A scan only
// ingests new files; a refresh additionally drops books whose files are gone.
// Removal is destructive, so it never happens implicitly.
type Processor struct {
	reconciler  *Reconciler
	bookService *books.Service
	jobService  *jobs.Service
	coverStore  *covers.Store
	broker      *notify.Broker
}

func NewProcessor(bookService *books.Service, jobService *jobs.Service, coverStore *covers.Store, broker *notify.Broker) *Processor {
	return &Processor{
		reconciler:  NewReconciler(bookService),
		bookService: bookService,
		jobService:  jobService,
		coverStore:  coverStore,
		broker:      broker,
	}
}

// ProcessLibrary ingests files that are on disk but not yet cataloged.
func (p *Processor) ProcessLibrary(ctx context.Context, library *models.Library) (*Result, error) {
	result, err := p.reconciler.Scan(ctx, library)
	if err != nil {
		return nil, err
	}

	err = p.ingest(ctx, library, result.NewFiles)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RefreshLibrary ingests new files and removes books whose files are gone.
func (p *Processor) RefreshLibrary(ctx context.Context, library *models.Library) (*Result, error) {
	log := logger.FromContext(ctx)

	result, err := p.reconciler.Scan(ctx, library)
	if err != nil {
		return nil, err
	}

	err = p.ingest(ctx, library, result.NewFiles)
	if err != nil {
		return nil, err
	}

	if len(result.Removed) > 0 {
		ids := make([]int, len(result.Removed))
		for i, book := range result.Removed {
			ids[i] = book.ID
		}

		err = p.bookService.DeleteBooks(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, book := range result.Removed {
			p.coverStore.RemoveCover(book.Filepath)
		}

		log.Info("removed missing books", logger.Data{"library_id": library.ID, "count": len(ids)})
		p.broker.Publish(notify.TopicBooksRemove, map[string]interface{}{
			"library_id": library.ID,
			"book_ids":   ids,
		})
	}

	return result, nil
}

func (p *Processor) ingest(ctx context.Context, library *models.Library, files []LibraryFile) error {
	log := logger.FromContext(ctx)

	for _, file := range files {
		// Sanity-check the content; an extension can lie. A mismatch is only
		// logged, since plenty of real e-books have odd containers.
		if mtype, err := mimetype.DetectFile(file.Path); err == nil {
			if !strings.Contains(mtype.String(), file.Type) && !mtype.Is("application/zip") {
				log.Warn("file content does not match extension", logger.Data{
					"path": file.Path,
					"mime": mtype.String(),
				})
			}
		}

		book := &models.Book{
			LibraryID:     library.ID,
			Filepath:      file.Path,
			FileName:      file.Name,
			FileType:      file.Type,
			FilesizeBytes: file.Size,
		}
		err := p.bookService.CreateBook(ctx, book)
		if err != nil {
			return err
		}

		log.Info("cataloged book", logger.Data{"book_id": book.ID, "path": file.Path})
		p.broker.Publish(notify.TopicBookAdd, map[string]interface{}{
			"book_id":    book.ID,
			"library_id": library.ID,
			"file_name":  file.Name,
		})
	}

	return nil
}

// RunJob wraps a scan or refresh in a job row so progress is visible through
// the jobs API. Handlers and the scheduler run this in its own goroutine.
func (p *Processor) RunJob(ctx context.Context, library *models.Library, jobType string) {
	log := logger.FromContext(ctx)

	job := &models.Job{
		Type:       jobType,
		Status:     models.JobStatusRunning,
		DataParsed: &models.JobScanData{},
		LibraryID:  &library.ID,
	}
	err := p.jobService.CreateJob(ctx, job)
	if err != nil {
		log.Err(err).Error("create job error")
		return
	}

	var result *Result
	if jobType == models.JobTypeLibraryRefresh {
		result, err = p.RefreshLibrary(ctx, library)
	} else {
		result, err = p.ProcessLibrary(ctx, library)
	}
	if err != nil {
		log.Err(err).Error("library scan failed")
		msg := err.Error()
		job.Status = models.JobStatusFailed
		job.Error = &msg
		uerr := p.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"status", "error"}})
		if uerr != nil {
			log.Err(uerr).Error("update job error")
		}
		return
	}

	job.Status = models.JobStatusCompleted
	job.DataParsed = &models.JobScanData{
		Added:   len(result.NewFiles),
		Removed: len(result.Removed),
	}
	err = job.MarshalData()
	if err != nil {
		log.Err(err).Error("marshal job data error")
		return
	}
	err = p.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"status", "data"}})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}
