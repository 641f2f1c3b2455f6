package books

import (
	"net/http"
	"strconv"

	"github.com/folioreads/folio/pkg/covers"
	"github.com/folioreads/folio/pkg/errcodes"
	"github.com/folioreads/folio/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
	coverStore  *covers.Store
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) cover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	coverPath := h.coverStore.FindCover(book.Filepath)
	if coverPath == "" {
		return errcodes.NotFound("Cover")
	}

	return errors.WithStack(c.File(coverPath))
}

func (h *handler) updateLocks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := UpdateLockPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var md *models.Metadata
	if params.All != nil && *params.All {
		md, err = h.bookService.SetAllLocked(ctx, id, params.Locked)
	} else if params.Field != nil {
		md, err = h.bookService.SetFieldLock(ctx, id, *params.Field, params.Locked)
	} else {
		return errcodes.ValidationError("Either field or all must be provided.")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, md))
}
