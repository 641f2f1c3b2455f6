package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers library routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, scanner Scanner) {
	libraryService := NewService(db)

	h := &handler{
		libraryService: libraryService,
		scanner:        scanner,
		log:            logger.New(),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.POST("/:id/scan", h.scan)
	g.POST("/:id/refresh", h.refresh)
}
