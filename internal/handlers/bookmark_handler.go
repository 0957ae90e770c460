package handlers

import (
	"net/http"

	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles saved post HTTP requests
type BookmarkHandler struct {
	bookmarks *services.BookmarkService
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(bookmarks *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.POST("/posts/:id/bookmark", h.ToggleBookmark)
	g.GET("/posts/:id/bookmark-status", h.GetBookmarkStatus)
	g.GET("/posts/bookmark-status", h.GetBatchBookmarkStatus)
	g.GET("/bookmarks", h.GetBookmarks)
}

// ToggleBookmark saves the post, or removes it when already saved
func (h *BookmarkHandler) ToggleBookmark(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	status, err := h.bookmarks.ToggleBookmark(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, status)
}

func (h *BookmarkHandler) GetBookmarkStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	saved, err := h.bookmarks.IsBookmarked(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"bookmarked": saved})
}

func (h *BookmarkHandler) GetBatchBookmarkStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.bookmarks.BatchBookmarkStatus(c.Request().Context(), accountID, queryIDs(c)))
}

// GetBookmarks returns the caller's saved posts, most recently saved first
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	page, err := h.bookmarks.ListBookmarks(c.Request().Context(), accountID, queryInt(c, "limit"), c.QueryParam("cursor"))
	if err != nil {
		return serviceError(err)
	}
	return renderPage(c, page)
}
