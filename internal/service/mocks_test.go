package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/pkg/database"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// mockLevelRepository is a mock implementation of LevelRepositoryInterface.
type mockLevelRepository struct {
	listFn             func(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error)
	getActiveFn        func(ctx context.Context) ([]*model.Level, error)
	getByIDFn          func(ctx context.Context, id string) (*model.Level, error)
	findByPointsFn     func(ctx context.Context, points int) (*model.Level, error)
	nextLevelFn        func(ctx context.Context, points int) (*model.Level, error)
	countOverlappingFn func(ctx context.Context, q database.TxQuerier, excludeID string, min, max int) (int, error)
	countByOrderFn     func(ctx context.Context, q database.TxQuerier, excludeID string, order int) (int, error)
	insertFn           func(ctx context.Context, q database.TxQuerier, l *model.Level) error
	updateFn           func(ctx context.Context, q database.TxQuerier, l *model.Level) error
	deleteFn           func(ctx context.Context, id string) (*model.Level, error)
	toggleActiveFn     func(ctx context.Context, id string) (*model.Level, error)
	updateOrderFn      func(ctx context.Context, id string, order int) (*model.Level, error)
}

func (m *mockLevelRepository) List(ctx context.Context, active *bool, sortBy string, desc bool) ([]*model.Level, error) {
	if m.listFn != nil {
		return m.listFn(ctx, active, sortBy, desc)
	}
	return []*model.Level{}, nil
}

func (m *mockLevelRepository) GetActive(ctx context.Context) ([]*model.Level, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx)
	}
	return []*model.Level{}, nil
}

func (m *mockLevelRepository) GetByID(ctx context.Context, id string) (*model.Level, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLevelRepository) FindByPoints(ctx context.Context, points int) (*model.Level, error) {
	if m.findByPointsFn != nil {
		return m.findByPointsFn(ctx, points)
	}
	return nil, nil
}

func (m *mockLevelRepository) NextLevel(ctx context.Context, points int) (*model.Level, error) {
	if m.nextLevelFn != nil {
		return m.nextLevelFn(ctx, points)
	}
	return nil, nil
}

func (m *mockLevelRepository) CountOverlapping(ctx context.Context, q database.TxQuerier, excludeID string, min, max int) (int, error) {
	if m.countOverlappingFn != nil {
		return m.countOverlappingFn(ctx, q, excludeID, min, max)
	}
	return 0, nil
}

func (m *mockLevelRepository) CountByOrder(ctx context.Context, q database.TxQuerier, excludeID string, order int) (int, error) {
	if m.countByOrderFn != nil {
		return m.countByOrderFn(ctx, q, excludeID, order)
	}
	return 0, nil
}

func (m *mockLevelRepository) Insert(ctx context.Context, q database.TxQuerier, l *model.Level) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, q, l)
	}
	return nil
}

func (m *mockLevelRepository) Update(ctx context.Context, q database.TxQuerier, l *model.Level) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, q, l)
	}
	return nil
}

func (m *mockLevelRepository) Delete(ctx context.Context, id string) (*model.Level, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLevelRepository) ToggleActive(ctx context.Context, id string) (*model.Level, error) {
	if m.toggleActiveFn != nil {
		return m.toggleActiveFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLevelRepository) UpdateOrder(ctx context.Context, id string, order int) (*model.Level, error) {
	if m.updateOrderFn != nil {
		return m.updateOrderFn(ctx, id, order)
	}
	return nil, nil
}

// mockTaskRepository is a mock implementation of TaskRepositoryInterface.
type mockTaskRepository struct {
	listFn                  func(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.Task, error)
	countFn                 func(ctx context.Context, f model.TaskFilter) (int64, error)
	getActiveFn             func(ctx context.Context, now time.Time, limit int) ([]*model.Task, error)
	getWeeklyFeaturedFn     func(ctx context.Context, now time.Time) (*model.Task, error)
	getByIDFn               func(ctx context.Context, id string) (*model.Task, error)
	insertFn                func(ctx context.Context, t *model.Task) error
	updateFn                func(ctx context.Context, t *model.Task) error
	deleteFn                func(ctx context.Context, id string) (*model.Task, error)
	getForUpdateFn          func(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error)
	incrementParticipantsFn func(ctx context.Context, tx database.TxQuerier, id string) (int, error)
}

func (m *mockTaskRepository) List(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, opts)
	}
	return []*model.Task{}, nil
}

func (m *mockTaskRepository) Count(ctx context.Context, f model.TaskFilter) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, f)
	}
	return 0, nil
}

func (m *mockTaskRepository) GetActive(ctx context.Context, now time.Time, limit int) ([]*model.Task, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx, now, limit)
	}
	return []*model.Task{}, nil
}

func (m *mockTaskRepository) GetWeeklyFeatured(ctx context.Context, now time.Time) (*model.Task, error) {
	if m.getWeeklyFeaturedFn != nil {
		return m.getWeeklyFeaturedFn(ctx, now)
	}
	return nil, nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepository) Insert(ctx context.Context, t *model.Task) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, t)
	}
	return nil
}

func (m *mockTaskRepository) Update(ctx context.Context, t *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, id string) (*model.Task, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrTaskNotFound
}

func (m *mockTaskRepository) IncrementParticipants(ctx context.Context, tx database.TxQuerier, id string) (int, error) {
	if m.incrementParticipantsFn != nil {
		return m.incrementParticipantsFn(ctx, tx, id)
	}
	return 0, nil
}

// mockMarketRepository is a mock implementation of MarketRepositoryInterface.
type mockMarketRepository struct {
	listFn              func(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItem, error)
	countFn             func(ctx context.Context, f model.MarketFilter) (int64, error)
	getFeaturedFn       func(ctx context.Context, limit int) ([]*model.MarketItem, error)
	searchFn            func(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItem, error)
	categorySummariesFn func(ctx context.Context) ([]*model.CategorySummary, error)
	getByIDFn           func(ctx context.Context, id string) (*model.MarketItem, error)
	insertFn            func(ctx context.Context, m *model.MarketItem) error
	updateFn            func(ctx context.Context, m *model.MarketItem) error
	deleteFn            func(ctx context.Context, id string) (*model.MarketItem, error)
	toggleFeaturedFn    func(ctx context.Context, id string) (*model.MarketItem, error)
	getForUpdateFn      func(ctx context.Context, tx database.TxQuerier, id string) (*model.MarketItem, error)
	applyPurchaseFn     func(ctx context.Context, tx database.TxQuerier, m *model.MarketItem) error
}

func (m *mockMarketRepository) List(ctx context.Context, f model.MarketFilter, opts model.ListOptions) ([]*model.MarketItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, opts)
	}
	return []*model.MarketItem{}, nil
}

func (m *mockMarketRepository) Count(ctx context.Context, f model.MarketFilter) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, f)
	}
	return 0, nil
}

func (m *mockMarketRepository) GetFeatured(ctx context.Context, limit int) ([]*model.MarketItem, error) {
	if m.getFeaturedFn != nil {
		return m.getFeaturedFn(ctx, limit)
	}
	return []*model.MarketItem{}, nil
}

func (m *mockMarketRepository) Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]*model.MarketItem, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, f, limit)
	}
	return []*model.MarketItem{}, nil
}

func (m *mockMarketRepository) CategorySummaries(ctx context.Context) ([]*model.CategorySummary, error) {
	if m.categorySummariesFn != nil {
		return m.categorySummariesFn(ctx)
	}
	return []*model.CategorySummary{}, nil
}

func (m *mockMarketRepository) GetByID(ctx context.Context, id string) (*model.MarketItem, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMarketRepository) Insert(ctx context.Context, item *model.MarketItem) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, item)
	}
	return nil
}

func (m *mockMarketRepository) Update(ctx context.Context, item *model.MarketItem) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, item)
	}
	return nil
}

func (m *mockMarketRepository) Delete(ctx context.Context, id string) (*model.MarketItem, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMarketRepository) ToggleFeatured(ctx context.Context, id string) (*model.MarketItem, error) {
	if m.toggleFeaturedFn != nil {
		return m.toggleFeaturedFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMarketRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.MarketItem, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrItemNotFound
}

func (m *mockMarketRepository) ApplyPurchase(ctx context.Context, tx database.TxQuerier, item *model.MarketItem) error {
	if m.applyPurchaseFn != nil {
		return m.applyPurchaseFn(ctx, tx, item)
	}
	return nil
}

func intPtr(i int) *int {
	return &i
}

func float64Ptr(f float64) *float64 {
	return &f
}

func timePtr(t time.Time) *time.Time {
	return &t
}
