package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RegaWeng/riseUp/api/http/presenter"
	"github.com/RegaWeng/riseUp/pkg/catalog"
)

// TrainingHandler serves the read-only training catalog.
type TrainingHandler struct {
	catalog *catalog.Catalog
}

func NewTrainingHandler(cat *catalog.Catalog) *TrainingHandler { return &TrainingHandler{catalog: cat} }

// List returns training videos in catalog order.
// @Summary List training videos
// @Tags    training
// @Produce json
// @Param   limit  query int false "page size (1..200)"
// @Param   offset query int false "offset"
// @Success 200 {object} map[string]any
// @Router  /training [get]
func (h *TrainingHandler) List(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, paginate(c, h.catalog.Videos()))
}

// Get returns one training video.
// @Summary Get training video
// @Tags    training
// @Produce json
// @Param   id path string true "video id"
// @Success 200 {object} catalog.Video
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /training/{id} [get]
func (h *TrainingHandler) Get(c *fiber.Ctx) error {
	v, ok := h.catalog.Find(c.Params("id"))
	if !ok {
		return presenter.Error(c, http.StatusNotFound, "training video not found")
	}
	return presenter.JSON(c, http.StatusOK, v)
}
