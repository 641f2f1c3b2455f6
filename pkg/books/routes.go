package books

import (
	"github.com/folioreads/folio/pkg/covers"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, coverStore *covers.Store) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		coverStore:  coverStore,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/cover", h.cover)
	g.PUT("/:id/metadata/locks", h.updateLocks)
}
