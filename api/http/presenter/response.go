package presenter

import "github.com/gofiber/fiber/v2"

type ErrorResponse struct {
	Message string `json:"message"`
}

// Page is the envelope of list endpoints. Items is never null.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPage cuts the [offset, offset+limit) window out of all.
func NewPage[T any](all []T, limit, offset int) Page[T] {
	p := Page[T]{Items: []T{}, Total: len(all), Limit: limit, Offset: offset}
	if offset >= len(all) || limit <= 0 {
		return p
	}
	p.Items = all[offset:min(offset+limit, len(all))]
	return p
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}
