package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/murmur/backend/internal/middleware"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// getAccountIDFromContext returns the authenticated caller's account id.
func getAccountIDFromContext(c echo.Context) (string, error) {
	id, ok := c.Get(middleware.AccountIDKey).(string)
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return id, nil
}

// serviceError maps service sentinels to HTTP errors.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidContent):
		return echo.NewHTTPError(http.StatusBadRequest, "Content is empty or too long")
	case errors.Is(err, services.ErrInvalidCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	log.Printf("request failed: %+v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// queryIDs collects ids from repeated and comma-separated "ids" parameters.
func queryIDs(c echo.Context) []string {
	var ids []string
	for _, v := range c.QueryParams()["ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondWithMeta(c echo.Context, status int, data, meta interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "meta": meta})
}

// ErrorHandler renders errors in the response envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var message interface{} = "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = he.Message
	} else {
		log.Printf("unhandled error: %+v", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"success": false, "error": message})
	}
	if err != nil {
		log.Printf("writing error response: %v", err)
	}
}
