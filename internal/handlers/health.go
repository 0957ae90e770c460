package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// QueueStats reports the search write queue's loss counters.
type QueueStats interface {
	Dropped() int64
	Failed() int64
}

// HealthHandler reports service liveness, database reachability and,
// when stats is set, how many search index writes were lost.
type HealthHandler struct {
	db    *gorm.DB
	stats QueueStats
}

func NewHealthHandler(db *gorm.DB, stats QueueStats) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	body := echo.Map{
		"status":  status,
		"service": "murmur-api",
	}
	if h.stats != nil {
		body["search_dropped"] = h.stats.Dropped()
		body["search_failed"] = h.stats.Failed()
	}
	return c.JSON(code, body)
}
