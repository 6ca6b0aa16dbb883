package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/RegaWeng/riseUp/api/http/presenter"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	limit = defLimit
	offset = 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageLimit {
			limit = n
		}
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// paginate applies ?limit=&offset= to an in-memory list.
func paginate[T any](c *fiber.Ctx, all []T) presenter.Page[T] {
	limit, offset := parseLimitOffset(c, defaultPageLimit)
	return presenter.NewPage(all, limit, offset)
}
