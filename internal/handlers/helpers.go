package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// paginationParams reads limit/offset query params with a default and cap.
func paginationParams(c echo.Context, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}
