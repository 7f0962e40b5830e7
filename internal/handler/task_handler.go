package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/qappio/qappio-api/internal/model"
)

// TaskServiceInterface defines the interface for task business logic.
type TaskServiceInterface interface {
	List(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.TaskView, int64, error)
	GetActive(ctx context.Context, limit int) ([]*model.TaskView, error)
	GetWeeklyFeatured(ctx context.Context) (*model.TaskView, error)
	GetByID(ctx context.Context, id string) (*model.TaskView, error)
	Create(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error)
	Update(ctx context.Context, id string, req *model.UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id string) (*model.Task, error)
	Participate(ctx context.Context, id string) (*model.Task, error)
}

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service   TaskServiceInterface
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given service and validator.
func NewTaskHandler(svc TaskServiceInterface, v *validator.Validate) *TaskHandler {
	return &TaskHandler{service: svc, validator: v}
}

// Register mounts the task routes on the given router.
func (h *TaskHandler) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Get("/active", h.GetActive)
	r.Get("/weekly/featured", h.GetWeeklyFeatured)
	r.Get("/:id", h.GetByID)
	r.Post("/", h.Create)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
	r.Post("/:id/participate", h.Participate)
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	filter := model.TaskFilter{
		Status:      c.Query("status"),
		Brand:       c.Query("brand"),
		Category:    c.Query("category"),
		IsWeekly:    queryBoolPtr(c, "isWeekly"),
		IsSponsored: queryBoolPtr(c, "isSponsored"),
		Featured:    queryBoolPtr(c, "featured"),
	}
	page, limit, offset := pageWindow(c, 10)
	opts := model.ListOptions{
		SortBy:   c.Query("sortBy", "createdAt"),
		SortDesc: c.Query("sortOrder", "desc") == "desc",
		Offset:   offset,
		Limit:    limit,
	}

	tasks, total, err := h.service.List(c.Context(), filter, opts)
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondPage(c, tasks, model.NewPagination(page, limit, total))
}

// GetActive handles GET /api/tasks/active.
func (h *TaskHandler) GetActive(c *fiber.Ctx) error {
	tasks, err := h.service.GetActive(c.Context(), 20)
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondList(c, tasks, len(tasks))
}

// GetWeeklyFeatured handles GET /api/tasks/weekly/featured.
// A missing weekly task is not an error: the response carries null data.
func (h *TaskHandler) GetWeeklyFeatured(c *fiber.Ctx) error {
	task, err := h.service.GetWeeklyFeatured(c.Context())
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	if task == nil {
		return respondMessage(c, fiber.StatusOK, nil, "No weekly task found")
	}
	return respondMessage(c, fiber.StatusOK, task, "Weekly task found")
}

// GetByID handles GET /api/tasks/:id.
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	task, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondData(c, task)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req model.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	task, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondMessage(c, fiber.StatusCreated, task, "Task created successfully")
}

// Update handles PUT /api/tasks/:id.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var req model.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	task, err := h.service.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondMessage(c, fiber.StatusOK, task, "Task updated successfully")
}

// Delete handles DELETE /api/tasks/:id.
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	task, err := h.service.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondMessage(c, fiber.StatusOK, task, "Task deleted successfully")
}

// Participate handles POST /api/tasks/:id/participate.
func (h *TaskHandler) Participate(c *fiber.Ctx) error {
	task, err := h.service.Participate(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Task not found")
	}
	return respondMessage(c, fiber.StatusOK, task, "Successfully joined the task")
}
