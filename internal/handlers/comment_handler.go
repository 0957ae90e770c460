package handlers

import (
	"net/http"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterPublicRoutes registers routes readable without authentication
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetComments)
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.engagement.AddComment(c.Request().Context(), accountID, c.Param("id"), req.Content)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusCreated, echo.Map{"comment": comment})
}

// GetComments lists a post's comments, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	limit := services.ClampLimit(queryInt(c, "limit"), services.DefaultCommentLimit, services.MaxCommentLimit)
	offset := queryInt(c, "offset")
	if offset < 0 {
		offset = 0
	}
	comments, err := h.engagement.ListComments(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return respondWithMeta(c, http.StatusOK,
		echo.Map{"comments": comments},
		echo.Map{"limit": limit, "offset": offset, "count": len(comments)},
	)
}

// DeleteComment deletes a comment written by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.engagement.DeleteComment(c.Request().Context(), c.Param("id"), accountID); err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}
