package handlers

import (
	"net/http"

	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles and like status lookups
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/posts/:id/like-status", h.GetLikeStatus)
	g.GET("/posts/like-status", h.GetBatchLikeStatus)
}

// ToggleLike likes the post, or unlikes it when already liked
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	status, err := h.engagement.ToggleLike(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, status)
}

func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	liked, err := h.engagement.IsLiked(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"liked": liked})
}

// GetBatchLikeStatus reports the like state of up to 100 posts
func (h *LikeHandler) GetBatchLikeStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	status := h.engagement.BatchLikeStatus(c.Request().Context(), accountID, queryIDs(c))
	return respond(c, http.StatusOK, status)
}
