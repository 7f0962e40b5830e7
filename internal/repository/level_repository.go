package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/service"
	"github.com/qappio/qappio-api/pkg/database"
)

const levelColumns = `id::text, name, color, min_points, max_points, display_order,
	benefits, market_access, special_perks, icon, is_active, created_at, updated_at`

// levelSortColumns whitelists the sortable fields of the list endpoint.
var levelSortColumns = map[string]string{
	"order":     "display_order",
	"name":      "name",
	"minPoints": "min_points",
	"maxPoints": "max_points",
	"createdAt": "created_at",
}

// LevelRepository provides data access for levels using pgx.
type LevelRepository struct {
	pool database.TxQuerier
}

// NewLevelRepository creates a new LevelRepository with the given pool.
func NewLevelRepository(pool *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{pool: pool}
}

// NewLevelRepositoryWithPool creates a LevelRepository with a custom querier.
// This is primarily used for testing.
func NewLevelRepositoryWithPool(pool database.TxQuerier) *LevelRepository {
	return &LevelRepository{pool: pool}
}

func scanLevel(row pgx.Row) (*model.Level, error) {
	var l model.Level
	err := row.Scan(
		&l.ID, &l.Name, &l.Color, &l.MinPoints, &l.MaxPoints, &l.Order,
		&l.Benefits, &l.MarketAccess, &l.SpecialPerks, &l.Icon, &l.IsActive,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Benefits == nil {
		l.Benefits = []string{}
	}
	if l.SpecialPerks == nil {
		l.SpecialPerks = []model.SpecialPerk{}
	}
	return &l, nil
}

func collectLevels(rows pgx.Rows) ([]*model.Level, error) {
	defer rows.Close()
	levels := []*model.Level{}
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level rows: %w", err)
	}
	return levels, nil
}

// List retrieves levels, optionally filtered by active flag, sorted by
// the requested field (display order ascending by default).
func (r *LevelRepository) List(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error) {
	col, ok := levelSortColumns[sortBy]
	if !ok {
		col = "display_order"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM levels`, levelColumns)
	args := []any{}
	if active != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *active)
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, col, dir)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return collectLevels(rows)
}

// GetActive retrieves all active levels ordered by display order.
func (r *LevelRepository) GetActive(ctx context.Context) ([]*model.Level, error) {
	active := true
	return r.List(ctx, &active, "order", false)
}

// GetByID retrieves a level by id.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *LevelRepository) GetByID(ctx context.Context, id string) (*model.Level, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM levels WHERE id = $1`, levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get level %s: %w", id, err)
	}
	return l, nil
}

// FindByPoints retrieves the active level whose range contains the
// point total. Returns nil, nil when no range matches.
func (r *LevelRepository) FindByPoints(ctx context.Context, points int) (*model.Level, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM levels WHERE min_points <= $1 AND max_points >= $1 AND is_active`,
		levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, points))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find level by points %d: %w", points, err)
	}
	return l, nil
}

// NextLevel retrieves the active level with the smallest min_points
// strictly above the point total. Returns nil, nil when none exists.
func (r *LevelRepository) NextLevel(ctx context.Context, points int) (*model.Level, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM levels WHERE min_points > $1 AND is_active ORDER BY min_points ASC LIMIT 1`,
		levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, points))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("next level after %d: %w", points, err)
	}
	return l, nil
}

// CountOverlapping counts active levels whose point range intersects
// [min, max], excluding the level being written (pass "" on create).
func (r *LevelRepository) CountOverlapping(ctx context.Context, q database.TxQuerier, excludeID string, min, max int) (int, error) {
	query := `SELECT COUNT(*) FROM levels
		WHERE is_active AND min_points <= $1 AND max_points >= $2`
	args := []any{max, min}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count overlapping levels: %w", err)
	}
	return n, nil
}

// CountByOrder counts levels holding the given display order,
// excluding the level being written.
func (r *LevelRepository) CountByOrder(ctx context.Context, q database.TxQuerier, excludeID string, order int) (int, error) {
	query := `SELECT COUNT(*) FROM levels WHERE display_order = $1`
	args := []any{order}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count levels by order: %w", err)
	}
	return n, nil
}

// Insert persists a new level and fills in its generated id and
// timestamps. Returns service.ErrDuplicateName on a name collision and
// service.ErrLevelOverlap when the active range exclusion fires.
func (r *LevelRepository) Insert(ctx context.Context, q database.TxQuerier, l *model.Level) error {
	query := `INSERT INTO levels
		(name, color, min_points, max_points, display_order, benefits, market_access, special_perks, icon, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text, created_at, updated_at`
	err := q.QueryRow(ctx, query,
		l.Name, l.Color, l.MinPoints, l.MaxPoints, l.Order,
		l.Benefits, l.MarketAccess, l.SpecialPerks, l.Icon, l.IsActive,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if mapped := mapLevelConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert level: %w", err)
	}
	return nil
}

// mapLevelConstraintError translates the pg constraint violations of the
// levels table onto service sentinels: 23505 is the name unique index,
// 23P01 the active range exclusion constraint.
func mapLevelConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23505":
		return service.ErrDuplicateName
	case "23P01":
		return service.ErrLevelOverlap
	}
	return nil
}

// Update persists the full state of an existing level.
// Returns service.ErrLevelNotFound when the row is gone,
// service.ErrDuplicateName on a name collision and
// service.ErrLevelOverlap when the active range exclusion fires.
func (r *LevelRepository) Update(ctx context.Context, q database.TxQuerier, l *model.Level) error {
	query := `UPDATE levels SET
		name = $2, color = $3, min_points = $4, max_points = $5, display_order = $6,
		benefits = $7, market_access = $8, special_perks = $9, icon = $10, is_active = $11,
		updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := q.QueryRow(ctx, query,
		l.ID, l.Name, l.Color, l.MinPoints, l.MaxPoints, l.Order,
		l.Benefits, l.MarketAccess, l.SpecialPerks, l.Icon, l.IsActive,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrLevelNotFound
		}
		if mapped := mapLevelConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update level %s: %w", l.ID, err)
	}
	return nil
}

// Delete removes a level and returns the deleted record.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *LevelRepository) Delete(ctx context.Context, id string) (*model.Level, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`DELETE FROM levels WHERE id = $1 RETURNING %s`, levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete level %s: %w", id, err)
	}
	return l, nil
}

// ToggleActive flips the is_active flag atomically and returns the
// updated record. Returns nil, nil when the id resolves to nothing.
// Activating a level whose range intersects another active level hits
// the exclusion constraint and returns service.ErrLevelOverlap.
func (r *LevelRepository) ToggleActive(ctx context.Context, id string) (*model.Level, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(
		`UPDATE levels SET is_active = NOT is_active, updated_at = now() WHERE id = $1 RETURNING %s`,
		levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if mapped := mapLevelConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("toggle level %s: %w", id, err)
	}
	return l, nil
}

// UpdateOrder sets the display order of a single level and returns the
// updated record. Returns nil, nil when the id is malformed or
// resolves to nothing, so bulk reorder can report it as failed.
func (r *LevelRepository) UpdateOrder(ctx context.Context, id string, order int) (*model.Level, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(
		`UPDATE levels SET display_order = $2, updated_at = now() WHERE id = $1 RETURNING %s`,
		levelColumns)
	l, err := scanLevel(r.pool.QueryRow(ctx, query, id, order))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reorder level %s: %w", id, err)
	}
	return l, nil
}
