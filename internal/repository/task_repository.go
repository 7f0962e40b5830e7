package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/service"
	"github.com/qappio/qappio-api/pkg/database"
)

const taskColumns = `id::text, title, description, brand, category, status, budget,
	participants, max_participants, reward, start_date, end_date,
	is_weekly, is_sponsored, sponsor_brand, requirements, tags, featured,
	created_at, updated_at`

var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"startDate": "start_date",
	"endDate":   "end_date",
	"reward":    "reward",
	"budget":    "budget",
	"title":     "title",
}

// TaskRepository provides data access for tasks using pgx.
type TaskRepository struct {
	pool database.TxQuerier
}

// NewTaskRepository creates a new TaskRepository with the given pool.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// NewTaskRepositoryWithPool creates a TaskRepository with a custom querier.
// This is primarily used for testing.
func NewTaskRepositoryWithPool(pool database.TxQuerier) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Brand, &t.Category, &t.Status, &t.Budget,
		&t.Participants, &t.MaxParticipants, &t.Reward, &t.StartDate, &t.EndDate,
		&t.IsWeekly, &t.IsSponsored, &t.SponsorBrand, &t.Requirements, &t.Tags, &t.Featured,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Requirements == nil {
		t.Requirements = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]*model.Task, error) {
	defer rows.Close()
	tasks := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return tasks, nil
}

func taskWhere(f model.TaskFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Brand != "" {
		add("brand ILIKE $%d", "%"+f.Brand+"%")
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.IsWeekly != nil {
		add("is_weekly = $%d", *f.IsWeekly)
	}
	if f.IsSponsored != nil {
		add("is_sponsored = $%d", *f.IsSponsored)
	}
	if f.Featured != nil {
		add("featured = $%d", *f.Featured)
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

// List retrieves tasks matching the filter with sorting and pagination.
func (r *TaskRepository) List(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.Task, error) {
	col, ok := taskSortColumns[opts.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}

	where, args := taskWhere(f)
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY %s %s OFFSET $%d LIMIT $%d`,
		taskColumns, where, col, dir, len(args)+1, len(args)+2)
	args = append(args, opts.Offset, opts.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

// Count returns the number of tasks matching the filter.
func (r *TaskRepository) Count(ctx context.Context, f model.TaskFilter) (int64, error) {
	where, args := taskWhere(f)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// GetActive retrieves tasks that are active by status and inside their
// date window, newest first. Capacity is not part of this query.
func (r *TaskRepository) GetActive(ctx context.Context, now time.Time, limit int) ([]*model.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC LIMIT $3`, taskColumns)
	rows, err := r.pool.Query(ctx, query, model.TaskStatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get active tasks: %w", err)
	}
	return collectTasks(rows)
}

// GetWeeklyFeatured retrieves the newest weekly task that is currently
// running. Returns nil, nil when there is none.
func (r *TaskRepository) GetWeeklyFeatured(ctx context.Context, now time.Time) (*model.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks
		WHERE is_weekly AND status = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC LIMIT 1`, taskColumns)
	t, err := scanTask(r.pool.QueryRow(ctx, query, model.TaskStatusActive, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get weekly task: %w", err)
	}
	return t, nil
}

// GetByID retrieves a task by id.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// Insert persists a new task and fills in its generated id and timestamps.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks
		(title, description, brand, category, status, budget, participants, max_participants,
		 reward, start_date, end_date, is_weekly, is_sponsored, sponsor_brand, requirements, tags, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id::text, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		t.Title, t.Description, t.Brand, t.Category, t.Status, t.Budget,
		t.Participants, t.MaxParticipants, t.Reward, t.StartDate, t.EndDate,
		t.IsWeekly, t.IsSponsored, t.SponsorBrand, t.Requirements, t.Tags, t.Featured,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update persists the full state of an existing task.
// Returns service.ErrTaskNotFound when the row is gone.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `UPDATE tasks SET
		title = $2, description = $3, brand = $4, category = $5, status = $6, budget = $7,
		participants = $8, max_participants = $9, reward = $10, start_date = $11, end_date = $12,
		is_weekly = $13, is_sponsored = $14, sponsor_brand = $15, requirements = $16, tags = $17,
		featured = $18, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Brand, t.Category, t.Status, t.Budget,
		t.Participants, t.MaxParticipants, t.Reward, t.StartDate, t.EndDate,
		t.IsWeekly, t.IsSponsored, t.SponsorBrand, t.Requirements, t.Tags, t.Featured,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrTaskNotFound
		}
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a task and returns the deleted record.
// Returns nil, nil when the id is malformed or resolves to nothing.
func (r *TaskRepository) Delete(ctx context.Context, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := fmt.Sprintf(`DELETE FROM tasks WHERE id = $1 RETURNING %s`, taskColumns)
	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	return t, nil
}

// GetForUpdate retrieves a task with a row lock (SELECT FOR UPDATE).
// The lock is held until the transaction completes, which serializes
// concurrent participation against the same task.
// Returns service.ErrTaskNotFound when the id resolves to nothing.
func (r *TaskRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, service.ErrTaskNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 FOR UPDATE`, taskColumns)
	t, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task for update %s: %w", id, err)
	}
	return t, nil
}

// IncrementParticipants adds one participant to a task.
// Must be called within a transaction after locking the row; the
// capacity precondition makes the increment a no-op if a concurrent
// writer already filled the task.
func (r *TaskRepository) IncrementParticipants(ctx context.Context, tx database.TxQuerier, id string) (int, error) {
	query := `UPDATE tasks SET participants = participants + 1, updated_at = now()
		WHERE id = $1 AND participants < max_participants
		RETURNING participants`
	var participants int
	err := tx.QueryRow(ctx, query, id).Scan(&participants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrTaskFull
		}
		return 0, fmt.Errorf("increment participants for %s: %w", id, err)
	}
	return participants, nil
}
