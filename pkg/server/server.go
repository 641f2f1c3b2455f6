package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/folioreads/folio/pkg/binder"
	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/config"
	"github.com/folioreads/folio/pkg/covers"
	"github.com/folioreads/folio/pkg/errcodes"
	"github.com/folioreads/folio/pkg/jobs"
	"github.com/folioreads/folio/pkg/libraries"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/folioreads/folio/pkg/notify"
	"github.com/folioreads/folio/pkg/refresh"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// Dependencies are the long-lived collaborators the HTTP layer exposes.
type Dependencies struct {
	Orchestrator *metadata.Orchestrator
	Queue        *refresh.Queue
	Scanner      libraries.Scanner
	Broker       *notify.Broker
	CoverStore   *covers.Store
}

func New(cfg *config.Config, db *bun.DB, deps Dependencies) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	books.RegisterRoutesWithGroup(e.Group("/books"), db, deps.CoverStore)
	libraries.RegisterRoutesWithGroup(e.Group("/libraries"), db, deps.Scanner)
	jobs.RegisterRoutesWithGroup(e.Group("/jobs"), db)
	refresh.RegisterRoutesWithGroup(e.Group("/metadata"), db, deps.Orchestrator, deps.Queue)
	notify.RegisterRoutesWithGroup(e.Group("/events"), deps.Broker)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
