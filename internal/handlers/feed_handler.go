package handlers

import (
	"net/http"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the cursor-paginated timelines
type FeedHandler struct {
	timeline *services.TimelineService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(timeline *services.TimelineService) *FeedHandler {
	return &FeedHandler{timeline: timeline}
}

// RegisterPublicRoutes registers routes readable without authentication
func (h *FeedHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/timeline", h.GetTimeline)
	g.GET("/accounts/:id/posts", h.GetAuthorPosts)
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

func renderPage(c echo.Context, page *models.TimelinePage) error {
	return respondWithMeta(c, http.StatusOK,
		echo.Map{"posts": page.Posts},
		echo.Map{
			"nextCursor":  page.NextCursor,
			"hasNextPage": page.HasMore,
			"count":       len(page.Posts),
		},
	)
}

// GetTimeline returns every post, newest first
func (h *FeedHandler) GetTimeline(c echo.Context) error {
	page, err := h.timeline.GlobalTimeline(c.Request().Context(), queryInt(c, "limit"), c.QueryParam("cursor"))
	if err != nil {
		return serviceError(err)
	}
	return renderPage(c, page)
}

// GetAuthorPosts returns one account's posts
func (h *FeedHandler) GetAuthorPosts(c echo.Context) error {
	page, err := h.timeline.AuthorTimeline(c.Request().Context(), c.Param("id"), queryInt(c, "limit"), c.QueryParam("cursor"))
	if err != nil {
		return serviceError(err)
	}
	return renderPage(c, page)
}

// GetFeed returns the caller's home feed
func (h *FeedHandler) GetFeed(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	page, err := h.timeline.HomeFeed(c.Request().Context(), accountID, queryInt(c, "limit"), c.QueryParam("cursor"))
	if err != nil {
		return serviceError(err)
	}
	return renderPage(c, page)
}
