package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qappio/qappio-api/internal/model"
)

// BrandServiceInterface defines the interface for the brand directory.
type BrandServiceInterface interface {
	List(status, search string) []model.Brand
	GetByID(id string) *model.Brand
}

// BrandHandler handles HTTP requests for the read-only brand directory.
type BrandHandler struct {
	service BrandServiceInterface
}

// NewBrandHandler creates a new BrandHandler with the given service.
func NewBrandHandler(svc BrandServiceInterface) *BrandHandler {
	return &BrandHandler{service: svc}
}

// Register mounts the brand routes on the given router.
func (h *BrandHandler) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Get("/:id", h.GetByID)
}

// List handles GET /api/brands.
func (h *BrandHandler) List(c *fiber.Ctx) error {
	brands := h.service.List(c.Query("status"), c.Query("search"))
	return respondList(c, brands, len(brands))
}

// GetByID handles GET /api/brands/:id.
func (h *BrandHandler) GetByID(c *fiber.Ctx) error {
	brand := h.service.GetByID(c.Params("id"))
	if brand == nil {
		return respondError(c, fiber.StatusNotFound, "Brand not found")
	}
	return respondData(c, brand)
}
