package refresh

import (
	"github.com/folioreads/folio/pkg/books"
	"github.com/folioreads/folio/pkg/metadata"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers metadata refresh routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, orchestrator *metadata.Orchestrator, queue *Queue) {
	bookService := books.NewService(db)

	h := &handler{
		bookService:  bookService,
		orchestrator: orchestrator,
		queue:        queue,
	}

	g.POST("/refresh", h.enqueue)
	g.POST("/books/:id/candidates", h.candidates)
}
