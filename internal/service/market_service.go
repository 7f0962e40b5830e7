package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/pkg/database"
)

// MarketRepositoryInterface defines the interface for market item data access.
type MarketRepositoryInterface interface {
	List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItem, error)
	Count(ctx context.Context, f model.MarketFilter) (int64, error)
	GetFeatured(ctx context.Context, limit int) ([]*model.MarketItem, error)
	Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItem, error)
	CategorySummaries(ctx context.Context) ([]*model.CategorySummary, error)
	GetByID(ctx context.Context, id string) (*model.MarketItem, error)
	Insert(ctx context.Context, m *model.MarketItem) error
	Update(ctx context.Context, m *model.MarketItem) error
	Delete(ctx context.Context, id string) (*model.MarketItem, error)
	ToggleFeatured(ctx context.Context, id string) (*model.MarketItem, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.MarketItem, error)
	ApplyPurchase(ctx context.Context, tx database.TxQuerier, m *model.MarketItem) error
}

// MarketService provides business logic for market item operations.
type MarketService struct {
	pool TxBeginner
	repo MarketRepositoryInterface
	now  func() time.Time
}

// NewMarketService creates a new MarketService with the given pool and repository.
func NewMarketService(pool *pgxpool.Pool, repo MarketRepositoryInterface) *MarketService {
	return &MarketService{pool: pool, repo: repo, now: time.Now}
}

// NewMarketServiceWithTxBeginner creates a MarketService with a custom
// TxBeginner and clock. Primarily used for testing.
func NewMarketServiceWithTxBeginner(pool TxBeginner, repo MarketRepositoryInterface, now func() time.Time) *MarketService {
	if now == nil {
		now = time.Now
	}
	return &MarketService{pool: pool, repo: repo, now: now}
}

func (s *MarketService) views(items []*model.MarketItem) []*model.MarketItemView {
	now := s.now()
	views := make([]*model.MarketItemView, len(items))
	for i, m := range items {
		views[i] = m.View(now)
	}
	return views
}

// List retrieves market items matching the filter, decorated with
// availability and discount pricing, plus the total for pagination.
func (s *MarketService) List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItemView, int64, error) {
	items, err := s.repo.List(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list market items: %w", err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count market items: %w", err)
	}
	return s.views(items), total, nil
}

// GetFeatured retrieves featured, active, in-stock items, newest first.
func (s *MarketService) GetFeatured(ctx context.Context, limit int) ([]*model.MarketItemView, error) {
	items, err := s.repo.GetFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get featured items: %w", err)
	}
	return s.views(items), nil
}

// Search retrieves active, in-stock items matching the query and
// filters, best sellers first.
func (s *MarketService) Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItemView, error) {
	items, err := s.repo.Search(ctx, query, f, limit)
	if err != nil {
		return nil, fmt.Errorf("search market items: %w", err)
	}
	return s.views(items), nil
}

// Categories aggregates active items per category with price statistics.
func (s *MarketService) Categories(ctx context.Context) ([]*model.CategorySummary, error) {
	summaries, err := s.repo.CategorySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	return summaries, nil
}

// GetByID retrieves a market item by id with derived fields.
// Returns ErrItemNotFound if the id doesn't resolve to an item.
func (s *MarketService) GetByID(ctx context.Context, id string) (*model.MarketItemView, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get market item: %w", err)
	}
	if m == nil {
		return nil, ErrItemNotFound
	}
	return m.View(s.now()), nil
}

// Create validates and persists a new market item.
func (s *MarketService) Create(ctx context.Context, req *model.CreateMarketItemRequest) (*model.MarketItem, error) {
	if req == nil || req.QPPrice == nil || req.RealPrice == nil {
		return nil, ErrInvalidRequest
	}
	m := req.Item()
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update applies a partial update to a market item.
// Returns ErrItemNotFound if the id doesn't resolve to an item.
func (s *MarketService) Update(ctx context.Context, id string, req *model.UpdateMarketItemRequest) (*model.MarketItem, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get market item: %w", err)
	}
	if m == nil {
		return nil, ErrItemNotFound
	}

	req.ApplyTo(m)
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a market item by id.
// Returns ErrItemNotFound if the id doesn't resolve to an item.
func (s *MarketService) Delete(ctx context.Context, id string) (*model.MarketItem, error) {
	m, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete market item: %w", err)
	}
	if m == nil {
		return nil, ErrItemNotFound
	}
	return m, nil
}

// ToggleFeatured flips an item's featured flag.
// Returns ErrItemNotFound if the id doesn't resolve to an item.
func (s *MarketService) ToggleFeatured(ctx context.Context, id string) (*model.MarketItemView, error) {
	m, err := s.repo.ToggleFeatured(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle featured: %w", err)
	}
	if m == nil {
		return nil, ErrItemNotFound
	}
	return m.View(s.now()), nil
}

// Purchase atomically buys a quantity of an item.
// Uses SELECT FOR UPDATE to lock the item row during the transaction:
// the stock check, the price snapshot and the counter updates all see
// the same locked row, so stock never goes below zero and revenue is
// priced with the discount in effect at execution time.
// Returns:
//   - ErrItemNotFound if the item doesn't exist
//   - ErrOutOfStock if remaining stock cannot cover the quantity
//   - ErrItemUnavailable if the item is not in active status
func (s *MarketService) Purchase(ctx context.Context, id string, quantity int) (*model.PurchaseResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	m, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !m.IsInStock(quantity) {
		return nil, ErrOutOfStock
	}
	if m.Status != model.ItemStatusActive {
		return nil, ErrItemUnavailable
	}

	now := s.now()
	total := m.ReduceStock(quantity, now)

	if err := s.repo.ApplyPurchase(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.PurchaseResult{
		Item:       m.View(now),
		Quantity:   quantity,
		TotalPrice: total,
	}, nil
}
