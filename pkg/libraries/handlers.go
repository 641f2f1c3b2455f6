package libraries

import (
	"context"
	"net/http"
	"strconv"

	"github.com/folioreads/folio/pkg/errcodes"
	"github.com/folioreads/folio/pkg/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Scanner triggers library scans. The scan package implements it; the
// indirection keeps route registration free of an import cycle.
type Scanner interface {
	RunJob(ctx context.Context, library *models.Library, jobType string)
}

type handler struct {
	libraryService *Service
	scanner        Scanner
	log            logger.Logger
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library := &models.Library{Name: params.Name}
	for _, path := range params.LibraryPaths {
		library.LibraryPaths = append(library.LibraryPaths, &models.LibraryPath{Filepath: path})
	}

	err := h.libraryService.CreateLibrary(ctx, library)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, ListLibrariesOptions{
		Limit:          &params.Limit,
		Offset:         &params.Offset,
		IncludeDeleted: params.Deleted,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Libraries []*models.Library `json:"libraries"`
		Total     int               `json:"total"`
	}{libraries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// scan ingests new files found under the library's paths.
func (h *handler) scan(c echo.Context) error {
	return h.triggerScan(c, models.JobTypeLibraryScan)
}

// refresh ingests new files and removes books whose files are gone.
func (h *handler) refresh(c echo.Context) error {
	return h.triggerScan(c, models.JobTypeLibraryRefresh)
}

func (h *handler) triggerScan(c echo.Context, jobType string) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// The scan outlives the request; give it its own context and logger.
	logID, err := uuid.NewRandom()
	if err != nil {
		return errors.WithStack(err)
	}
	log := h.log.ID(logID.String()).Root(logger.Data{"library_id": library.ID, "type": jobType})
	go h.scanner.RunJob(log.WithContext(context.Background()), library, jobType)

	return errors.WithStack(c.NoContent(http.StatusAccepted))
}
