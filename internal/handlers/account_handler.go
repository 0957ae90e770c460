package handlers

import (
	"net/http"

	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AccountHandler serves public account profiles
type AccountHandler struct {
	graph *services.SocialGraph
	posts *services.PostService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(graph *services.SocialGraph, posts *services.PostService) *AccountHandler {
	return &AccountHandler{graph: graph, posts: posts}
}

// RegisterPublicRoutes registers routes readable without authentication
func (h *AccountHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/accounts/:id", h.GetAccount)
}

// GetAccount returns an account with its counters and post count
func (h *AccountHandler) GetAccount(c echo.Context) error {
	ctx := c.Request().Context()
	account, err := h.graph.Profile(ctx, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	postCount, err := h.posts.CountByAuthor(ctx, account.ID)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"account":    account,
		"post_count": postCount,
	})
}
