package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/murmur/backend/internal/models"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow toggles and follower listings
type FollowHandler struct {
	graph *services.SocialGraph
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.SocialGraph) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterPublicRoutes registers routes readable without authentication
func (h *FollowHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/accounts/:id/followers", h.GetFollowers)
	g.GET("/accounts/:id/following", h.GetFollowing)
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/accounts/:id/follow", h.ToggleFollow)
	g.GET("/accounts/:id/follow-status", h.GetFollowStatus)
	g.GET("/accounts/follow-status", h.GetBatchFollowStatus)
}

// ToggleFollow follows the account, or unfollows it when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	status, err := h.graph.ToggleFollow(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, status)
}

func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	following, err := h.graph.IsFollowing(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, models.FollowStatus{Following: following})
}

// GetBatchFollowStatus reports the follow state of up to 100 accounts
func (h *FollowHandler) GetBatchFollowStatus(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.graph.BatchFollowStatus(c.Request().Context(), accountID, queryIDs(c)))
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.list(c, h.graph.ListFollowers)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.list(c, h.graph.ListFollowing)
}

func (h *FollowHandler) list(c echo.Context, fetch func(ctx context.Context, accountID string, limit, offset int) ([]models.AccountSummary, error)) error {
	limit := services.ClampLimit(queryInt(c, "limit"), services.DefaultListLimit, services.MaxListLimit)
	offset := queryInt(c, "offset")
	if offset < 0 {
		offset = 0
	}
	accounts, err := fetch(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return respondWithMeta(c, http.StatusOK,
		echo.Map{"accounts": accounts},
		echo.Map{"limit": limit, "offset": offset, "count": len(accounts)},
	)
}
