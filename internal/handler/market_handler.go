package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/qappio/qappio-api/internal/model"
)

// MarketServiceInterface defines the interface for market business logic.
type MarketServiceInterface interface {
	List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItemView, int64, error)
	GetFeatured(ctx context.Context, limit int) ([]*model.MarketItemView, error)
	Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItemView, error)
	Categories(ctx context.Context) ([]*model.CategorySummary, error)
	GetByID(ctx context.Context, id string) (*model.MarketItemView, error)
	Create(ctx context.Context, req *model.CreateMarketItemRequest) (*model.MarketItem, error)
	Update(ctx context.Context, id string, req *model.UpdateMarketItemRequest) (*model.MarketItem, error)
	Delete(ctx context.Context, id string) (*model.MarketItem, error)
	ToggleFeatured(ctx context.Context, id string) (*model.MarketItemView, error)
	Purchase(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error)
}

// MarketHandler handles HTTP requests for market item operations.
type MarketHandler struct {
	service   MarketServiceInterface
	validator *validator.Validate
}

// NewMarketHandler creates a new MarketHandler with the given service and validator.
func NewMarketHandler(svc MarketServiceInterface, v *validator.Validate) *MarketHandler {
	return &MarketHandler{service: svc, validator: v}
}

// Register mounts the market routes on the given router.
func (h *MarketHandler) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Get("/featured", h.GetFeatured)
	r.Get("/categories", h.Categories)
	r.Get("/search/:query", h.Search)
	r.Get("/:id", h.GetByID)
	r.Post("/", h.Create)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
	r.Post("/:id/purchase", h.Purchase)
	r.Patch("/:id/toggle-featured", h.ToggleFeatured)
}

// List handles GET /api/market.
func (h *MarketHandler) List(c *fiber.Ctx) error {
	filter := model.MarketFilter{
		Category:    c.Query("category"),
		Brand:       c.Query("brand"),
		Status:      c.Query("status"),
		LevelAccess: c.Query("levelAccess"),
		Featured:    queryBoolPtr(c, "featured"),
		Search:      c.Query("search"),
		MinPrice:    queryIntPtr(c, "minPrice"),
		MaxPrice:    queryIntPtr(c, "maxPrice"),
		InStock:     c.Query("inStock") == "true",
	}
	page, limit, offset := pageWindow(c, 12)
	opts := model.ListOptions{
		SortBy:   c.Query("sortBy", "createdAt"),
		SortDesc: c.Query("sortOrder", "desc") == "desc",
		Offset:   offset,
		Limit:    limit,
	}

	items, total, err := h.service.List(c.Context(), filter, opts)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondPage(c, items, model.NewPagination(page, limit, total))
}

// GetFeatured handles GET /api/market/featured.
func (h *MarketHandler) GetFeatured(c *fiber.Ctx) error {
	limit := queryIntDefault(c, "limit", 8)
	items, err := h.service.GetFeatured(c.Context(), limit)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondList(c, items, len(items))
}

// Categories handles GET /api/market/categories.
func (h *MarketHandler) Categories(c *fiber.Ctx) error {
	summaries, err := h.service.Categories(c.Context())
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondList(c, summaries, len(summaries))
}

// Search handles GET /api/market/search/:query.
func (h *MarketHandler) Search(c *fiber.Ctx) error {
	filter := model.SearchFilter{
		Category:    c.Query("category"),
		Brand:       c.Query("brand"),
		MaxPrice:    queryIntPtr(c, "maxPrice"),
		LevelAccess: c.Query("levelAccess"),
	}
	limit := queryIntDefault(c, "limit", 20)

	items, err := h.service.Search(c.Context(), c.Params("query"), filter, limit)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondList(c, items, len(items))
}

// GetByID handles GET /api/market/:id.
func (h *MarketHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondData(c, item)
}

// Create handles POST /api/market.
func (h *MarketHandler) Create(c *fiber.Ctx) error {
	var req model.CreateMarketItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	item, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondMessage(c, fiber.StatusCreated, item, "Market item created successfully")
}

// Update handles PUT /api/market/:id.
func (h *MarketHandler) Update(c *fiber.Ctx) error {
	var req model.UpdateMarketItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	item, err := h.service.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondMessage(c, fiber.StatusOK, item, "Market item updated successfully")
}

// Delete handles DELETE /api/market/:id.
func (h *MarketHandler) Delete(c *fiber.Ctx) error {
	item, err := h.service.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondMessage(c, fiber.StatusOK, item, "Market item deleted successfully")
}

// Purchase handles POST /api/market/:id/purchase.
func (h *MarketHandler) Purchase(c *fiber.Ctx) error {
	var req model.PurchaseRequest
	// Body is optional: a bare POST purchases a single unit.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := h.validator.Struct(req); err != nil {
		return respondValidation(c, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	result, err := h.service.Purchase(c.Context(), c.Params("id"), quantity)
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	return respondMessage(c, fiber.StatusOK, result, "Purchase successful")
}

// ToggleFeatured handles PATCH /api/market/:id/toggle-featured.
func (h *MarketHandler) ToggleFeatured(c *fiber.Ctx) error {
	item, err := h.service.ToggleFeatured(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err, "Market item not found")
	}
	message := "Item unfeatured successfully"
	if item.Featured {
		message = "Item featured successfully"
	}
	return respondMessage(c, fiber.StatusOK, item, message)
}
