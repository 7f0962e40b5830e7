package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/service"
	"github.com/qappio/qappio-api/internal/validator"
)

// mockMarketService is a mock implementation of MarketServiceInterface.
type mockMarketService struct {
	listFn           func(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItemView, int64, error)
	getFeaturedFn    func(ctx context.Context, limit int) ([]*model.MarketItemView, error)
	searchFn         func(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItemView, error)
	categoriesFn     func(ctx context.Context) ([]*model.CategorySummary, error)
	getByIDFn        func(ctx context.Context, id string) (*model.MarketItemView, error)
	createFn         func(ctx context.Context, req *model.CreateMarketItemRequest) (*model.MarketItem, error)
	updateFn         func(ctx context.Context, id string, req *model.UpdateMarketItemRequest) (*model.MarketItem, error)
	deleteFn         func(ctx context.Context, id string) (*model.MarketItem, error)
	toggleFeaturedFn func(ctx context.Context, id string) (*model.MarketItemView, error)
	purchaseFn       func(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error)
}

func (m *mockMarketService) List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItemView, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, opts)
	}
	return []*model.MarketItemView{}, 0, nil
}

func (m *mockMarketService) GetFeatured(ctx context.Context, limit int) ([]*model.MarketItemView, error) {
	if m.getFeaturedFn != nil {
		return m.getFeaturedFn(ctx, limit)
	}
	return []*model.MarketItemView{}, nil
}

func (m *mockMarketService) Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItemView, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, f, limit)
	}
	return []*model.MarketItemView{}, nil
}

func (m *mockMarketService) Categories(ctx context.Context) ([]*model.CategorySummary, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return []*model.CategorySummary{}, nil
}

func (m *mockMarketService) GetByID(ctx context.Context, id string) (*model.MarketItemView, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, service.ErrItemNotFound
}

func (m *mockMarketService) Create(ctx context.Context, req *model.CreateMarketItemRequest) (*model.MarketItem, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return req.Item(), nil
}

func (m *mockMarketService) Update(ctx context.Context, id string, req *model.UpdateMarketItemRequest) (*model.MarketItem, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, service.ErrItemNotFound
}

func (m *mockMarketService) Delete(ctx context.Context, id string) (*model.MarketItem, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, service.ErrItemNotFound
}

func (m *mockMarketService) ToggleFeatured(ctx context.Context, id string) (*model.MarketItemView, error) {
	if m.toggleFeaturedFn != nil {
		return m.toggleFeaturedFn(ctx, id)
	}
	return nil, service.ErrItemNotFound
}

func (m *mockMarketService) Purchase(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, id, quantity)
	}
	return nil, service.ErrItemNotFound
}

func setupMarketApp(svc *mockMarketService) *fiber.App {
	app := fiber.New()
	NewMarketHandler(svc, validator.New()).Register(app.Group("/api/market"))
	return app
}

func TestMarketHandler_List_Filters(t *testing.T) {
	var got model.MarketFilter
	svc := &mockMarketService{
		listFn: func(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItemView, int64, error) {
			got = f
			return []*model.MarketItemView{}, 0, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/market?category=Elektronik&minPrice=100&maxPrice=5000&inStock=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Elektronik", got.Category)
	require.NotNil(t, got.MinPrice)
	assert.Equal(t, 100, *got.MinPrice)
	require.NotNil(t, got.MaxPrice)
	assert.Equal(t, 5000, *got.MaxPrice)
	assert.True(t, got.InStock)
}

func TestMarketHandler_GetFeatured_DefaultLimit(t *testing.T) {
	var gotLimit int
	svc := &mockMarketService{
		getFeaturedFn: func(ctx context.Context, limit int) ([]*model.MarketItemView, error) {
			gotLimit = limit
			return []*model.MarketItemView{}, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/market/featured", nil)
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, 8, gotLimit)
}

func TestMarketHandler_Search(t *testing.T) {
	svc := &mockMarketService{
		searchFn: func(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItemView, error) {
			assert.Equal(t, "nike", query)
			assert.Equal(t, 20, limit)
			item := &model.MarketItem{Name: "Nike Air Max 270", Status: model.ItemStatusActive, Stock: 15}
			return []*model.MarketItemView{{MarketItem: item, IsAvailable: true, DiscountedPrice: 8000}}, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/market/search/nike", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	assert.Equal(t, float64(1), result["count"])
}

func TestMarketHandler_Categories(t *testing.T) {
	svc := &mockMarketService{
		categoriesFn: func(ctx context.Context) ([]*model.CategorySummary, error) {
			return []*model.CategorySummary{
				{Category: "Elektronik", Count: 5, AvgPrice: 12000, MinPrice: 1000, MaxPrice: 25000},
			}, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/market/categories", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	data, ok := result["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	first, ok := data[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Elektronik", first["category"])
	assert.Equal(t, float64(5), first["count"])
}

func TestMarketHandler_Create_MissingLevelAccess(t *testing.T) {
	app := setupMarketApp(&mockMarketService{})

	body := `{"name": "Kart", "description": "Hediye kartı", "brand": "Starbucks", "qpPrice": 1000, "realPrice": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/market", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	errs, ok := result["errors"].([]any)
	require.True(t, ok)
	assert.Contains(t, errs, "levelAccess is required")
}

func TestMarketHandler_Purchase_NoBodyDefaultsToOne(t *testing.T) {
	var gotQuantity int
	svc := &mockMarketService{
		purchaseFn: func(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error) {
			gotQuantity = quantity
			item := &model.MarketItem{ID: id, QPPrice: 1000, Stock: 4, Status: model.ItemStatusActive}
			return &model.PurchaseResult{
				Item:       &model.MarketItemView{MarketItem: item, IsAvailable: true, DiscountedPrice: 1000},
				Quantity:   quantity,
				TotalPrice: 1000,
			}, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/market/item-1/purchase", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, gotQuantity, "a bare POST purchases a single unit")
	result := decodeEnvelope(t, resp)
	assert.Equal(t, "Purchase successful", result["message"])
}

func TestMarketHandler_Purchase_WithQuantity(t *testing.T) {
	var gotQuantity int
	svc := &mockMarketService{
		purchaseFn: func(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error) {
			gotQuantity = quantity
			item := &model.MarketItem{ID: id, QPPrice: 1000, Stock: 2, Status: model.ItemStatusActive}
			return &model.PurchaseResult{
				Item:       &model.MarketItemView{MarketItem: item, IsAvailable: true, DiscountedPrice: 1000},
				Quantity:   quantity,
				TotalPrice: 3000,
			}, nil
		},
	}
	app := setupMarketApp(svc)

	body := `{"quantity": 3}`
	req := httptest.NewRequest(http.MethodPost, "/api/market/item-1/purchase", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, gotQuantity)
	result := decodeEnvelope(t, resp)
	data, ok := result["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3000), data["totalPrice"])
}

func TestMarketHandler_Purchase_InvalidQuantity(t *testing.T) {
	app := setupMarketApp(&mockMarketService{})

	body := `{"quantity": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/market/item-1/purchase", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMarketHandler_Purchase_OutOfStock(t *testing.T) {
	svc := &mockMarketService{
		purchaseFn: func(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error) {
			return nil, service.ErrOutOfStock
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/market/item-1/purchase", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	assert.Equal(t, "insufficient stock", result["message"])
}

func TestMarketHandler_Purchase_NotFound(t *testing.T) {
	app := setupMarketApp(&mockMarketService{})

	req := httptest.NewRequest(http.MethodPost, "/api/market/missing/purchase", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	assert.Equal(t, "Market item not found", result["message"])
}

func TestMarketHandler_ToggleFeatured(t *testing.T) {
	svc := &mockMarketService{
		toggleFeaturedFn: func(ctx context.Context, id string) (*model.MarketItemView, error) {
			item := &model.MarketItem{ID: id, Featured: true, Status: model.ItemStatusActive, Stock: 1}
			return &model.MarketItemView{MarketItem: item, IsAvailable: true}, nil
		},
	}
	app := setupMarketApp(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/market/item-1/toggle-featured", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decodeEnvelope(t, resp)
	assert.Equal(t, "Item featured successfully", result["message"])
}
