package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/murmur/backend/internal/search"
	"github.com/labstack/echo/v4"
)

// Searcher is the query side of the search bridge.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []search.Result
	ReindexAll(ctx context.Context) (*search.ReindexStats, error)
}

// SearchHandler handles search queries and operator reindexing
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// RegisterSearchRoutes registers search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// RegisterAdminRoutes registers operator routes
func (h *SearchHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/reindex", h.Reindex)
}

// Search queries accounts and posts. Backend failures yield an empty list.
func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	results := h.searcher.Search(c.Request().Context(), query, queryInt(c, "limit"))
	return respondWithMeta(c, http.StatusOK,
		echo.Map{"results": results},
		echo.Map{"query": query, "count": len(results)},
	)
}

// Reindex rebuilds the search index from the database
func (h *SearchHandler) Reindex(c echo.Context) error {
	// A full rebuild is not bound by the per-request timeout.
	stats, err := h.searcher.ReindexAll(context.WithoutCancel(c.Request().Context()))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, stats)
}
