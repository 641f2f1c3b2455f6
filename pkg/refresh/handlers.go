package refresh

import (
	"net/http"
	"strconv"

	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/errcodes"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/folioreads/folio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService  *books.Service
	orchestrator *metadata.Orchestrator
	queue        *Queue
}

// enqueue accepts a refresh request and queues it. The response is the queued
// job row; clients poll the jobs API for progress.
func (h *handler) enqueue(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := RefreshPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	job, err := h.queue.Enqueue(ctx, &models.JobRefreshData{
		BookIDs:      params.BookIDs,
		LibraryID:    params.LibraryID,
		Provider:     params.Provider,
		ReplaceCover: params.ReplaceCover,
	})
	if err != nil {
		if errors.Is(err, ErrQueueStopped) || errors.Is(err, ErrQueueFull) {
			return errcodes.SchedulingFailure("Refresh could not be scheduled. Try again later.")
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

// candidates fans a single book's query out to the requested providers and
// returns every candidate record, interleaved. Nothing is persisted.
func (h *handler) candidates(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := CandidatesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	var existing metadata.Record
	if book.Metadata != nil {
		existing = book.Metadata.Record()
	}
	q := queryForBook(book, existing)
	if params.Title != nil {
		q.Title = *params.Title
	}
	if params.Author != nil {
		q.Author = *params.Author
	}
	if params.ISBN != nil {
		q.ISBN = *params.ISBN
	}

	records := h.orchestrator.FetchAll(ctx, q, params.Providers)

	resp := struct {
		Candidates []metadata.Record `json:"candidates"`
		Total      int               `json:"total"`
	}{records, len(records)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
