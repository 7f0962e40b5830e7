package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/pkg/database"
)

// LevelRepositoryInterface defines the interface for level data access.
type LevelRepositoryInterface interface {
	List(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error)
	GetActive(ctx context.Context) ([]*model.Level, error)
	GetByID(ctx context.Context, id string) (*model.Level, error)
	FindByPoints(ctx context.Context, points int) (*model.Level, error)
	NextLevel(ctx context.Context, points int) (*model.Level, error)
	CountOverlapping(ctx context.Context, q database.TxQuerier, excludeID string, min, max int) (int, error)
	CountByOrder(ctx context.Context, q database.TxQuerier, excludeID string, order int) (int, error)
	Insert(ctx context.Context, q database.TxQuerier, l *model.Level) error
	Update(ctx context.Context, q database.TxQuerier, l *model.Level) error
	Delete(ctx context.Context, id string) (*model.Level, error)
	ToggleActive(ctx context.Context, id string) (*model.Level, error)
	UpdateOrder(ctx context.Context, id string, order int) (*model.Level, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LevelService provides business logic for level operations.
type LevelService struct {
	pool TxBeginner
	repo LevelRepositoryInterface
}

// NewLevelService creates a new LevelService with the given pool and repository.
func NewLevelService(pool *pgxpool.Pool, repo LevelRepositoryInterface) *LevelService {
	return &LevelService{pool: pool, repo: repo}
}

// NewLevelServiceWithTxBeginner creates a LevelService with a custom TxBeginner.
// Primarily used for testing.
func NewLevelServiceWithTxBeginner(pool TxBeginner, repo LevelRepositoryInterface) *LevelService {
	return &LevelService{pool: pool, repo: repo}
}

// List retrieves levels with an optional active filter and sort.
func (s *LevelService) List(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error) {
	return s.repo.List(ctx, active, sortBy, desc)
}

// GetActive retrieves all active levels ordered by display order.
func (s *LevelService) GetActive(ctx context.Context) ([]*model.Level, error) {
	return s.repo.GetActive(ctx)
}

// GetByID retrieves a level by id.
// Returns ErrLevelNotFound if the id doesn't resolve to a level.
func (s *LevelService) GetByID(ctx context.Context, id string) (*model.Level, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}
	if l == nil {
		return nil, ErrLevelNotFound
	}
	return l, nil
}

// GetByPoints resolves a point total to its level, the next tier above
// it, and the gap to that tier.
// Returns ErrLevelNotFound if no active level's range contains points.
func (s *LevelService) GetByPoints(ctx context.Context, points int) (*model.LevelByPointsResponse, error) {
	current, err := s.repo.FindByPoints(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("find level by points: %w", err)
	}
	if current == nil {
		return nil, ErrLevelNotFound
	}

	next, err := s.repo.NextLevel(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("get next level: %w", err)
	}

	resp := &model.LevelByPointsResponse{CurrentLevel: current, NextLevel: next}
	if next != nil {
		toNext := next.MinPoints - points
		resp.PointsToNext = &toNext
	}
	return resp, nil
}

// checkInvariants verifies the duplicate-order and range-overlap rules
// for the level being written, excluding itself on update. The counts
// run under read committed and can miss a concurrent writer; the
// levels_active_range_excl constraint is the overlap backstop, surfaced
// as ErrLevelOverlap by the repository.
func (s *LevelService) checkInvariants(ctx context.Context, tx database.TxQuerier, l *model.Level) error {
	n, err := s.repo.CountByOrder(ctx, tx, l.ID, l.Order)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateOrder
	}

	if l.IsActive {
		n, err = s.repo.CountOverlapping(ctx, tx, l.ID, l.MinPoints, l.MaxPoints)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrLevelOverlap
		}
	}
	return nil
}

// Create validates and persists a new level.
// Returns ErrInvalidRequest on bad range bounds, ErrDuplicateOrder,
// ErrDuplicateName or ErrLevelOverlap on invariant violations.
func (s *LevelService) Create(ctx context.Context, req *model.CreateLevelRequest) (*model.Level, error) {
	if req == nil || req.MinPoints == nil || req.MaxPoints == nil || req.Order == nil {
		return nil, ErrInvalidRequest
	}
	l := req.Level()
	if l.MaxPoints <= l.MinPoints {
		return nil, fmt.Errorf("%w: maximum points must be greater than minimum points", ErrInvalidRequest)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.checkInvariants(ctx, tx, l); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, tx, l); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return l, nil
}

// Update applies a partial update to a level, re-checking the range
// invariants whenever the effective range or order changed.
func (s *LevelService) Update(ctx context.Context, id string, req *model.UpdateLevelRequest) (*model.Level, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(l)
	if l.MaxPoints <= l.MinPoints {
		return nil, fmt.Errorf("%w: maximum points must be greater than minimum points", ErrInvalidRequest)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.checkInvariants(ctx, tx, l); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tx, l); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return l, nil
}

// Delete removes a level by id.
// Returns ErrLevelNotFound if the id doesn't resolve to a level.
func (s *LevelService) Delete(ctx context.Context, id string) (*model.Level, error) {
	l, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete level: %w", err)
	}
	if l == nil {
		return nil, ErrLevelNotFound
	}
	return l, nil
}

// ToggleActive flips a level's active flag.
// Returns ErrLevelNotFound if the id doesn't resolve to a level and
// ErrLevelOverlap when activating would intersect another active range.
func (s *LevelService) ToggleActive(ctx context.Context, id string) (*model.Level, error) {
	l, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle level: %w", err)
	}
	if l == nil {
		return nil, ErrLevelNotFound
	}
	return l, nil
}

// Reorder applies each order update independently and reports the ids
// that did not resolve to a level instead of dropping them silently.
func (s *LevelService) Reorder(ctx context.Context, req *model.ReorderLevelsRequest) (*model.ReorderResult, error) {
	if req == nil || req.LevelOrders == nil {
		return nil, ErrInvalidRequest
	}

	result := &model.ReorderResult{Updated: []*model.Level{}, FailedIDs: []string{}}
	for _, entry := range req.LevelOrders {
		l, err := s.repo.UpdateOrder(ctx, entry.ID, entry.Order)
		if err != nil {
			return nil, fmt.Errorf("reorder levels: %w", err)
		}
		if l == nil {
			result.FailedIDs = append(result.FailedIDs, entry.ID)
			continue
		}
		result.Updated = append(result.Updated, l)
	}
	return result, nil
}
