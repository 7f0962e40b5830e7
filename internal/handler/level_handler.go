package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/qappio/qappio-api/internal/model"
)

// LevelServiceInterface defines the interface for level business logic.
type LevelServiceInterface interface {
	List(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error)
	GetActive(ctx context.Context) ([]*model.Level, error)
	GetByID(ctx context.Context, id string) (*model.Level, error)
	GetByPoints(ctx context.Context, points int) (*model.LevelByPointsResponse, error)
	Create(ctx context.Context, req *model.CreateLevelRequest) (*model.Level, error)
	Update(ctx context.Context, id string, req *model.UpdateLevelRequest) (*model.Level, error)
	Delete(ctx context.Context, id string) (*model.Level, error)
	ToggleActive(ctx context.Context, id string) (*model.Level, error)
	Reorder(ctx context.Context, req *model.ReorderLevelsRequest) (*model.ReorderResult, error)
}

// LevelHandler handles HTTP requests for level operations.
type LevelHandler struct {
	service   LevelServiceInterface
	validator *validator.Validate
}

// NewLevelHandler creates a new LevelHandler with the given service and validator.
func NewLevelHandler(svc LevelServiceInterface, v *validator.Validate) *LevelHandler {
	return &LevelHandler{service: svc, validator: v}
}

// Register mounts the level routes on the given router.
func (h *LevelHandler) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Get("/active", h.GetActive)
	r.Post("/reorder", h.Reorder)
	r.Get("/by-points/:points", h.GetByPoints)
	r.Get("/:id", h.GetByID)
	r.Post("/", h.Create)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
	r.Patch("/:id/toggle", h.Toggle)
}

// List handles GET /api/levels.
func (h *LevelHandler) List(c *fiber.Ctx) error {
	active := queryBoolPtr(c, "active")
	sortBy := c.Query("sortBy", "order")
	desc := c.Query("sortOrder") == "desc"

	levels, err := h.service.List(c.Context(), active, sortBy, desc)
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondList(c, levels, len(levels))
}

// GetActive handles GET /api/levels/active.
func (h *LevelHandler) GetActive(c *fiber.Ctx) error {
	levels, err := h.service.GetActive(c.Context())
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondList(c, levels, len(levels))
}

// GetByID handles GET /api/levels/:id.
func (h *LevelHandler) GetByID(c *fiber.Ctx) error {
	level, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondData(c, level)
}

// GetByPoints handles GET /api/levels/by-points/:points.
func (h *LevelHandler) GetByPoints(c *fiber.Ctx) error {
	points, err := strconv.Atoi(c.Params("points"))
	if err != nil || points < 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid points value")
	}

	resp, err := h.service.GetByPoints(c.Context(), points)
	if err != nil {
		return respondServiceError(c, err, "No level found for these points")
	}
	return respondData(c, resp)
}

// Create handles POST /api/levels.
func (h *LevelHandler) Create(c *fiber.Ctx) error {
	var req model.CreateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	level, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondMessage(c, fiber.StatusCreated, level, "Level created successfully")
}

// Update handles PUT /api/levels/:id.
func (h *LevelHandler) Update(c *fiber.Ctx) error {
	var req model.UpdateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	level, err := h.service.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondMessage(c, fiber.StatusOK, level, "Level updated successfully")
}

// Delete handles DELETE /api/levels/:id.
func (h *LevelHandler) Delete(c *fiber.Ctx) error {
	level, err := h.service.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondMessage(c, fiber.StatusOK, level, "Level deleted successfully")
}

// Toggle handles PATCH /api/levels/:id/toggle.
func (h *LevelHandler) Toggle(c *fiber.Ctx) error {
	level, err := h.service.ToggleActive(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	message := "Level deactivated successfully"
	if level.IsActive {
		message = "Level activated successfully"
	}
	return respondMessage(c, fiber.StatusOK, level, message)
}

// Reorder handles POST /api/levels/reorder.
func (h *LevelHandler) Reorder(c *fiber.Ctx) error {
	var req model.ReorderLevelsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	result, err := h.service.Reorder(c.Context(), &req)
	if err != nil {
		return respondServiceError(c, err, "Level not found")
	}
	return respondMessage(c, fiber.StatusOK, result, "Levels reordered successfully")
}
