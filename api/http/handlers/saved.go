package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RegaWeng/riseUp/api/http/presenter"
	"github.com/RegaWeng/riseUp/pkg/catalog"
	"github.com/RegaWeng/riseUp/pkg/role"
	"github.com/RegaWeng/riseUp/pkg/saved"
	"github.com/RegaWeng/riseUp/pkg/security/jwt"
)

const (
	localRole    = "role"
	localManager = "savedManager"
)

// savedDateLayout matches JavaScript's Date.toISOString.
const savedDateLayout = "2006-01-02T15:04:05.000Z07:00"

// SavedHandler exposes the saved/applied/completed state of the caller.
// Every route lives under /roles/:role; RoleContext must run first.
type SavedHandler struct {
	registry *saved.Registry
	catalog  *catalog.Catalog
	logger   *slog.Logger
	now      func() time.Time
}

func NewSavedHandler(registry *saved.Registry, cat *catalog.Catalog, logger *slog.Logger) *SavedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SavedHandler{
		registry: registry,
		catalog:  cat,
		logger:   logger.With("component", "saved_handler"),
		now:      time.Now,
	}
}

// RoleContext parses :role, checks that the caller's account may act in it
// and holds the caller's Manager for the rest of the request.
func (h *SavedHandler) RoleContext(c *fiber.Ctx) error {
	userID, _ := c.Locals(jwt.LocalUserID).(string)
	if strings.TrimSpace(userID) == "" {
		return presenter.Error(c, http.StatusUnauthorized, "failed to identify user")
	}
	r, err := role.Parse(strings.Clone(c.Params("role")))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "role must be user or employer")
	}
	accountType, _ := c.Locals(jwt.LocalAccountType).(role.AccountType)
	if err := role.Authorize(accountType, r); err != nil {
		if errors.Is(err, role.ErrForbidden) {
			return presenter.Error(c, http.StatusForbidden, "account cannot act in this role")
		}
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	m, release := h.registry.Acquire(userID)
	defer release()
	c.Locals(localRole, r)
	c.Locals(localManager, m)
	return c.Next()
}

func (h *SavedHandler) target(c *fiber.Ctx) (*saved.Manager, role.Role, error) {
	m, ok := c.Locals(localManager).(*saved.Manager)
	if !ok {
		return nil, "", presenter.Error(c, http.StatusUnauthorized, "failed to identify user")
	}
	r, ok := c.Locals(localRole).(role.Role)
	if !ok {
		return nil, "", presenter.Error(c, http.StatusBadRequest, "role context missing")
	}
	return m, r, nil
}

func (h *SavedHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, role.ErrInvalid):
		return presenter.Error(c, http.StatusBadRequest, "role must be user or employer")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("saved state unavailable", "path", c.Path(), "err", err)
		return presenter.Error(c, http.StatusServiceUnavailable, "saved state unavailable")
	default:
		h.logger.Error("saved state request failed", "path", c.Path(), "err", err)
		return presenter.Error(c, http.StatusInternalServerError, "failed to process request")
	}
}

// @Summary  Saved state of a role-context
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Security BearerAuth
// @Success  200 {object} saved.Snapshot
// @Failure  403 {object} presenter.ErrorResponse
// @Router   /roles/{role}/state [get]
func (h *SavedHandler) State(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	snap, err := m.Snapshot(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, snap)
}

// @Summary  Clear every collection of a role-context
// @Tags     saved
// @Param    role path string true "user or employer"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/state [delete]
func (h *SavedHandler) Clear(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.Clear(c.Context(), r); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary  Saved jobs and videos, jobs first
// @Tags     saved
// @Produce  json
// @Param    role   path  string true  "user or employer"
// @Param    limit  query int    false "page size (1..200)"
// @Param    offset query int    false "offset"
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /roles/{role}/items [get]
func (h *SavedHandler) Items(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	items, err := m.Items(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, paginate(c, items))
}

// @Summary  Skills and achievements
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Security BearerAuth
// @Success  200 {object} saved.Progress
// @Router   /roles/{role}/progress [get]
func (h *SavedHandler) Progress(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	p, err := m.Progress(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

type saveJobRequest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Salary    string   `json:"salary"`
	Skills    []string `json:"skills"`
	SavedDate string   `json:"savedDate"`
}

// @Summary  List saved jobs
// @Tags     saved
// @Produce  json
// @Param    role   path  string true  "user or employer"
// @Param    limit  query int    false "page size (1..200)"
// @Param    offset query int    false "offset"
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /roles/{role}/saved-jobs [get]
func (h *SavedHandler) ListSavedJobs(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	jobs, err := m.SavedJobs(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, paginate(c, jobs))
}

// @Summary  Save a job
// @Tags     saved
// @Accept   json
// @Produce  json
// @Param    role  path string         true "user or employer"
// @Param    input body saveJobRequest true "job"
// @Security BearerAuth
// @Success  201 {object} saved.SavedJob
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /roles/{role}/saved-jobs [post]
func (h *SavedHandler) SaveJob(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	var req saveJobRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.ID) == "" {
		return presenter.Error(c, http.StatusBadRequest, "id is required")
	}
	job := saved.SavedJob{
		ID:        strings.TrimSpace(req.ID),
		Title:     req.Title,
		Company:   req.Company,
		Location:  req.Location,
		Salary:    req.Salary,
		Skills:    req.Skills,
		SavedDate: h.savedDate(req.SavedDate),
		Type:      saved.KindJob,
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if err := m.SaveJob(c.Context(), r, job); err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, job)
}

// @Summary  Is the job saved
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Param    id   path string true "job id"
// @Security BearerAuth
// @Success  200 {object} map[string]bool
// @Router   /roles/{role}/saved-jobs/{id} [get]
func (h *SavedHandler) IsJobSaved(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	ok, err := m.IsJobSaved(c.Context(), r, pathID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"id": pathID(c), "saved": ok})
}

// @Summary  Unsave a job
// @Tags     saved
// @Param    role path string true "user or employer"
// @Param    id   path string true "job id"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/saved-jobs/{id} [delete]
func (h *SavedHandler) UnsaveJob(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.UnsaveJob(c.Context(), r, pathID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

type saveVideoRequest struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	SkillsGained []string `json:"skillsGained"`
	SavedDate    string   `json:"savedDate"`
}

// @Summary  List saved videos
// @Tags     saved
// @Produce  json
// @Param    role   path  string true  "user or employer"
// @Param    limit  query int    false "page size (1..200)"
// @Param    offset query int    false "offset"
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /roles/{role}/saved-videos [get]
func (h *SavedHandler) ListSavedVideos(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	videos, err := m.SavedVideos(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, paginate(c, videos))
}

// SaveVideo bookmarks a video. Fields left empty are filled from the
// training catalog when the id is known.
// @Summary  Save a video
// @Tags     saved
// @Accept   json
// @Produce  json
// @Param    role  path string           true "user or employer"
// @Param    input body saveVideoRequest true "video"
// @Security BearerAuth
// @Success  201 {object} saved.SavedVideo
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /roles/{role}/saved-videos [post]
func (h *SavedHandler) SaveVideo(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	var req saveVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.ID) == "" {
		return presenter.Error(c, http.StatusBadRequest, "id is required")
	}
	video := saved.SavedVideo{
		ID:           strings.TrimSpace(req.ID),
		Title:        req.Title,
		Category:     req.Category,
		Duration:     req.Duration,
		Description:  req.Description,
		SkillsGained: req.SkillsGained,
		SavedDate:    h.savedDate(req.SavedDate),
		Type:         saved.KindVideo,
	}
	if v, ok := h.catalog.Find(video.ID); ok {
		video = fillFromCatalog(video, v)
	}
	if video.SkillsGained == nil {
		video.SkillsGained = []string{}
	}
	if err := m.SaveVideo(c.Context(), r, video); err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, video)
}

// @Summary  Is the video saved
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Param    id   path string true "video id"
// @Security BearerAuth
// @Success  200 {object} map[string]bool
// @Router   /roles/{role}/saved-videos/{id} [get]
func (h *SavedHandler) IsVideoSaved(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	ok, err := m.IsVideoSaved(c.Context(), r, pathID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"id": pathID(c), "saved": ok})
}

// @Summary  Unsave a video
// @Tags     saved
// @Param    role path string true "user or employer"
// @Param    id   path string true "video id"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/saved-videos/{id} [delete]
func (h *SavedHandler) UnsaveVideo(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.UnsaveVideo(c.Context(), r, pathID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary  Completed training videos with catalog details
// @Tags     saved
// @Produce  json
// @Param    role   path  string true  "user or employer"
// @Param    limit  query int    false "page size (1..200)"
// @Param    offset query int    false "offset"
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /roles/{role}/completed-videos [get]
func (h *SavedHandler) ListCompletedVideos(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	videos, err := m.CompletedVideosWithDetails(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, paginate(c, videos))
}

// @Summary  Is the video completed
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Param    id   path string true "video id"
// @Security BearerAuth
// @Success  200 {object} map[string]bool
// @Router   /roles/{role}/completed-videos/{id} [get]
func (h *SavedHandler) IsVideoCompleted(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	ok, err := m.IsVideoCompleted(c.Context(), r, pathID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"id": pathID(c), "completed": ok})
}

// @Summary  Mark a video as completed
// @Tags     saved
// @Param    role path string true "user or employer"
// @Param    id   path string true "video id"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/completed-videos/{id} [put]
func (h *SavedHandler) CompleteVideo(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.CompleteVideo(c.Context(), r, pathID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary  List applied job ids
// @Tags     saved
// @Produce  json
// @Param    role   path  string true  "user or employer"
// @Param    limit  query int    false "page size (1..200)"
// @Param    offset query int    false "offset"
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Router   /roles/{role}/applied-jobs [get]
func (h *SavedHandler) ListAppliedJobs(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	ids, err := m.AppliedJobs(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, paginate(c, ids))
}

// @Summary  Has the caller applied to the job
// @Tags     saved
// @Produce  json
// @Param    role path string true "user or employer"
// @Param    id   path string true "job id"
// @Security BearerAuth
// @Success  200 {object} map[string]bool
// @Router   /roles/{role}/applied-jobs/{id} [get]
func (h *SavedHandler) IsJobApplied(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	ok, err := m.IsJobApplied(c.Context(), r, pathID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"id": pathID(c), "applied": ok})
}

// @Summary  Apply to a job
// @Tags     saved
// @Param    role path string true "user or employer"
// @Param    id   path string true "job id"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/applied-jobs/{id} [put]
func (h *SavedHandler) ApplyToJob(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.ApplyToJob(c.Context(), r, pathID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary  Withdraw a job application
// @Tags     saved
// @Param    role path string true "user or employer"
// @Param    id   path string true "job id"
// @Security BearerAuth
// @Success  204
// @Router   /roles/{role}/applied-jobs/{id} [delete]
func (h *SavedHandler) WithdrawJobApplication(c *fiber.Ctx) error {
	m, r, err := h.target(c)
	if m == nil {
		return err
	}
	if err := m.WithdrawJobApplication(c.Context(), r, pathID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// pathID copies :id out of the request buffer, which fasthttp reuses.
func pathID(c *fiber.Ctx) string {
	return strings.Clone(c.Params("id"))
}

func (h *SavedHandler) savedDate(in string) string {
	if s := strings.TrimSpace(in); s != "" {
		return s
	}
	return h.now().UTC().Format(savedDateLayout)
}

func fillFromCatalog(v saved.SavedVideo, from catalog.Video) saved.SavedVideo {
	if v.Title == "" {
		v.Title = from.Title
	}
	if v.Category == "" {
		v.Category = from.Category
	}
	if v.Duration == "" {
		v.Duration = from.Duration
	}
	if v.Description == "" {
		v.Description = from.Description
	}
	if len(v.SkillsGained) == 0 {
		v.SkillsGained = from.SkillsGained
	}
	return v
}
