package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/service"
	"github.com/qappio/qappio-api/pkg/database"
)

const marketColumns = `id::text, name, description, brand, category, qp_price, real_price,
	currency, stock, level_access, min_level_points, images, status, featured,
	discount, specifications, tags, sales, revenue, rating, delivery_info,
	created_at, updated_at`

var marketSortColumns = map[string]string{
	"createdAt": "created_at",
	"qpPrice":   "qp_price",
	"realPrice": "real_price",
	"sales":     "sales",
	"name":      "name",
	"stock":     "stock",
}

// in-stock predicate shared by listing, featured and search queries
const inStockClause = `(stock > 0 OR stock = -1)`

// MarketRepository provides data access for market items using pgx.
type MarketRepository struct {
	pool database.TxQuerier
}

// NewMarketRepository creates a new MarketRepository with the given pool.
func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

// NewMarketRepositoryWithPool creates a MarketRepository with a custom querier.
// This is primarily used for testing.
func NewMarketRepositoryWithPool(pool database.TxQuerier) *MarketRepository {
	return &MarketRepository{pool: pool}
}

func scanItem(row pgx.Row) (*model.MarketItem, error) {
	var m model.MarketItem
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Brand, &m.Category, &m.QPPrice, &m.RealPrice,
		&m.Currency, &m.Stock, &m.LevelAccess, &m.MinLevelPoints, &m.Images, &m.Status, &m.Featured,
		&m.Discount, &m.Specifications, &m.Tags, &m.Sales, &m.Revenue, &m.Rating, &m.DeliveryInfo,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Images == nil {
		m.Images = []model.ItemImage{}
	}
	if m.Specifications == nil {
		m.Specifications = []model.Specification{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return &m, nil
}

func collectItems(rows pgx.Rows) ([]*model.MarketItem, error) {
	defer rows.Close()
	items := []*model.MarketItem{}
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market item: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market item rows: %w", err)
	}
	return items, nil
}

func marketWhere(f model.MarketFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	add := func(clause string, clauseArgs ...any) {
		args = append(args, clauseArgs...)
		clauses = append(clauses, clause)
	}
	next := func() int { return len(args) + 1 }

	if f.Category != "" {
		add(fmt.Sprintf("category = $%d", next()), f.Category)
	}
	if f.Brand != "" {
		add(fmt.Sprintf("brand ILIKE $%d", next()), "%"+f.Brand+"%")
	}
	if f.Status != "" {
		add(fmt.Sprintf("status = $%d", next()), f.Status)
	}
	if f.LevelAccess != "" {
		add(fmt.Sprintf("level_access = $%d", next()), f.LevelAccess)
	}
	if f.Featured != nil {
		add(fmt.Sprintf("featured = $%d", next()), *f.Featured)
	}
	if f.MinPrice != nil {
		add(fmt.Sprintf("qp_price >= $%d", next()), *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(fmt.Sprintf("qp_price <= $%d", next()), *f.MaxPrice)
	}
	if f.InStock {
		add(inStockClause)
	}
	if f.Search != "" {
		n := next()
		add(fmt.Sprintf(
			`(name ILIKE $%d OR description ILIKE $%d OR brand ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))`,
			n, n, n, n), "%"+f.Search+"%")
	}

	if len(clauses) == 0 {
		return "", args
	}
	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

// List retrieves market items matching the filter with sorting and pagination.
func (r *MarketRepository) List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItem, error) {
	col, ok := marketSortColumns[opts.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}

	where, args := marketWhere(f)
	query := fmt.Sprintf(`SELECT %s FROM market_items%s ORDER BY %s %s OFFSET $%d LIMIT $%d`,
		marketColumns, where, col, dir, len(args)+1, len(args)+2)
	args = append(args, opts.Offset, opts.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list market items: %w", err)
	}
	return collectItems(rows)
}

// Count returns the number of market items matching the filter.
func (r *MarketRepository) Count(ctx context.Context, f model.MarketFilter) (int64, error) {
	where, args := marketWhere(f)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM market_items`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count market items: %w", err)
	}
	return n, nil
}

// GetFeatured retrieves featured, active, in-stock items, newest first.
func (r *MarketRepository) GetFeatured(ctx context.Context, limit int) ([]*model.MarketItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM market_items
		WHERE featured AND status = $1 AND %s
		ORDER BY created_at DESC LIMIT $2`, marketColumns, inStockClause)
	rows, err := r.pool.Query(ctx, query, model.ItemStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("get featured items: %w", err)
	}
	return collectItems(rows)
}

// Search retrieves active, in-stock items matching the query across
// name, description, brand and tags, with additional filters ANDed on
// top. Results are ordered by sales then recency.
func (r *MarketRepository) Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItem, error) {
	sql := fmt.Sprintf(`SELECT %s FROM market_items WHERE status = $1 AND %s`,
		marketColumns, inStockClause)
	args := []any{model.ItemStatusActive}

	if query != "" {
		args = append(args, "%"+query+"%")
		n := len(args)
		sql += fmt.Sprintf(
			` AND (name ILIKE $%d OR description ILIKE $%d OR brand ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))`,
			n, n, n, n)
	}
	if f.Category != "" {
		args = append(args, f.Category)
		sql += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Brand != "" {
		args = append(args, f.Brand)
		sql += fmt.Sprintf(` AND brand = $%d`, len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		sql += fmt.Sprintf(` AND qp_price <= $%d`, len(args))
	}
	if f.LevelAccess != "" {
		args = append(args, f.LevelAccess)
		sql += fmt.Sprintf(` AND level_access = $%d`, len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY sales DESC, created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search market items: %w", err)
	}
	return collectItems(rows)
}

// CategorySummaries groups active items by category with count and QP
// price statistics, most populated category first.
func (r *MarketRepository) CategorySummaries(ctx context.Context) ([]*model.CategorySummary, error) {
	query := `SELECT category, COUNT(*), AVG(qp_price), MIN(qp_price), MAX(qp_price)
		FROM market_items WHERE status = $1
		GROUP BY category ORDER BY COUNT(*) DESC`
	rows, err := r.pool.Query(ctx, query, model.ItemStatusActive)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer rows.Close()

	summaries := []*model.CategorySummary{}
	for rows.Next() {
		var s model.CategorySummary
		if err := rows.Scan(&s.Category, &s.Count, &s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return summaries, nil
}

// GetByID retrieves a market item by id.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *MarketRepository) GetByID(ctx context.Context, id string) (*model.MarketItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM market_items WHERE id = $1`, marketColumns)
	m, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get market item %s: %w", id, err)
	}
	return m, nil
}

// Insert persists a new market item and fills in its generated id and
// timestamps.
func (r *MarketRepository) Insert(ctx context.Context, m *model.MarketItem) error {
	query := `INSERT INTO market_items
		(name, description, brand, category, qp_price, real_price, currency, stock,
		 level_access, min_level_points, images, status, featured, discount,
		 specifications, tags, sales, revenue, rating, delivery_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id::text, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		m.Name, m.Description, m.Brand, m.Category, m.QPPrice, m.RealPrice, m.Currency, m.Stock,
		m.LevelAccess, m.MinLevelPoints, m.Images, m.Status, m.Featured, m.Discount,
		m.Specifications, m.Tags, m.Sales, m.Revenue, m.Rating, m.DeliveryInfo,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert market item: %w", err)
	}
	return nil
}

// Update persists the full state of an existing market item.
// Returns service.ErrItemNotFound when the row is gone.
func (r *MarketRepository) Update(ctx context.Context, m *model.MarketItem) error {
	query := `UPDATE market_items SET
		name = $2, description = $3, brand = $4, category = $5, qp_price = $6, real_price = $7,
		currency = $8, stock = $9, level_access = $10, min_level_points = $11, images = $12,
		status = $13, featured = $14, discount = $15, specifications = $16, tags = $17,
		sales = $18, revenue = $19, rating = $20, delivery_info = $21, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.Brand, m.Category, m.QPPrice, m.RealPrice,
		m.Currency, m.Stock, m.LevelAccess, m.MinLevelPoints, m.Images,
		m.Status, m.Featured, m.Discount, m.Specifications, m.Tags,
		m.Sales, m.Revenue, m.Rating, m.DeliveryInfo,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrItemNotFound
		}
		return fmt.Errorf("update market item %s: %w", m.ID, err)
	}
	return nil
}

// Delete removes a market item and returns the deleted record.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *MarketRepository) Delete(ctx context.Context, id string) (*model.MarketItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`DELETE FROM market_items WHERE id = $1 RETURNING %s`, marketColumns)
	m, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete market item %s: %w", id, err)
	}
	return m, nil
}

// ToggleFeatured flips the featured flag atomically and returns the
// updated record. Returns nil, nil when the id resolves to nothing.
func (r *MarketRepository) ToggleFeatured(ctx context.Context, id string) (*model.MarketItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(
		`UPDATE market_items SET featured = NOT featured, updated_at = now() WHERE id = $1 RETURNING %s`,
		marketColumns)
	m, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("toggle featured %s: %w", id, err)
	}
	return m, nil
}

// GetForUpdate retrieves a market item with a row lock (SELECT FOR
// UPDATE). The lock is held until the transaction completes, which
// serializes concurrent purchases against the same item.
// Returns service.ErrItemNotFound when the id resolves to nothing.
func (r *MarketRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.MarketItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, service.ErrItemNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM market_items WHERE id = $1 FOR UPDATE`, marketColumns)
	m, err := scanItem(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrItemNotFound
		}
		return nil, fmt.Errorf("get market item for update %s: %w", id, err)
	}
	return m, nil
}

// ApplyPurchase persists the stock/status/sales/revenue outcome of a
// purchase. Must be called within a transaction after locking the row.
func (r *MarketRepository) ApplyPurchase(ctx context.Context, tx database.TxQuerier, m *model.MarketItem) error {
	query := `UPDATE market_items SET
		stock = $2, status = $3, sales = $4, revenue = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := tx.QueryRow(ctx, query, m.ID, m.Stock, m.Status, m.Sales, m.Revenue).Scan(&m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("apply purchase for %s: %w", m.ID, err)
	}
	return nil
}
