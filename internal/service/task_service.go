package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/pkg/database"
)

// TaskRepositoryInterface defines the interface for task data access.
type TaskRepositoryInterface interface {
	List(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.Task, error)
	Count(ctx context.Context, f model.TaskFilter) (int64, error)
	GetActive(ctx context.Context, now time.Time, limit int) ([]*model.Task, error)
	GetWeeklyFeatured(ctx context.Context, now time.Time) (*model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) (*model.Task, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error)
	IncrementParticipants(ctx context.Context, tx database.TxQuerier, id string) (int, error)
}

// TaskService provides business logic for task operations.
type TaskService struct {
	pool TxBeginner
	repo TaskRepositoryInterface
	now  func() time.Time
}

// NewTaskService creates a new TaskService with the given pool and repository.
func NewTaskService(pool *pgxpool.Pool, repo TaskRepositoryInterface) *TaskService {
	return &TaskService{pool: pool, repo: repo, now: time.Now}
}

// NewTaskServiceWithTxBeginner creates a TaskService with a custom TxBeginner
// and clock. Primarily used for testing.
func NewTaskServiceWithTxBeginner(pool TxBeginner, repo TaskRepositoryInterface, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{pool: pool, repo: repo, now: now}
}

// List retrieves tasks matching the filter, each decorated with its
// derived deadline fields, plus the total count for pagination.
func (s *TaskService) List(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.TaskView, int64, error) {
	tasks, err := s.repo.List(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	now := s.now()
	views := make([]*model.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = t.View(now)
	}
	return views, total, nil
}

// GetActive retrieves currently running active-status tasks, newest
// first. Participant capacity is not part of this filter.
func (s *TaskService) GetActive(ctx context.Context, limit int) ([]*model.TaskView, error) {
	tasks, err := s.repo.GetActive(ctx, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("get active tasks: %w", err)
	}
	now := s.now()
	views := make([]*model.TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = t.View(now)
	}
	return views, nil
}

// GetWeeklyFeatured retrieves the newest running weekly task, or nil
// when no weekly task is live.
func (s *TaskService) GetWeeklyFeatured(ctx context.Context) (*model.TaskView, error) {
	t, err := s.repo.GetWeeklyFeatured(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("get weekly task: %w", err)
	}
	if t == nil {
		return nil, nil
	}
	return t.View(s.now()), nil
}

// GetByID retrieves a task by id with derived fields.
// Returns ErrTaskNotFound if the id doesn't resolve to a task.
func (s *TaskService) GetByID(ctx context.Context, id string) (*model.TaskView, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t.View(s.now()), nil
}

// Create validates and persists a new task. The date-order rule is
// enforced here for both create and update so the two paths cannot
// drift apart.
func (s *TaskService) Create(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	if req == nil || req.Budget == nil || req.Reward == nil || req.StartDate == nil || req.EndDate == nil {
		return nil, ErrInvalidRequest
	}
	t := req.Task()
	if !t.EndDate.After(t.StartDate) {
		return nil, ErrDateOrder
	}

	t.Normalize()
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a partial update to a task. A payload that sets
// isWeekly also forces featured through Normalize, and the effective
// date pair is re-validated.
func (s *TaskService) Update(ctx context.Context, id string, req *model.UpdateTaskRequest) (*model.Task, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}

	req.ApplyTo(t)
	if !t.EndDate.After(t.StartDate) {
		return nil, ErrDateOrder
	}

	t.Normalize()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task by id.
// Returns ErrTaskNotFound if the id doesn't resolve to a task.
func (s *TaskService) Delete(ctx context.Context, id string) (*model.Task, error) {
	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// Participate atomically claims a participation slot on a task.
// Uses SELECT FOR UPDATE to lock the task row during the transaction,
// so concurrent calls cannot push participants past maxParticipants.
// Returns:
//   - ErrTaskNotFound if the task doesn't exist
//   - ErrTaskFull if participants already reached maxParticipants
//   - ErrTaskExpired if the task's end date has passed
func (s *TaskService) Participate(ctx context.Context, id string) (*model.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	t, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if t.Participants >= t.MaxParticipants {
		return nil, ErrTaskFull
	}
	if t.IsExpired(s.now()) {
		return nil, ErrTaskExpired
	}

	participants, err := s.repo.IncrementParticipants(ctx, tx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	t.Participants = participants
	return t, nil
}
