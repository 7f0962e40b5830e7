package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/pkg/database"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testNow
}

func validCreateTaskRequest() *model.CreateTaskRequest {
	return &model.CreateTaskRequest{
		Title:       "Nike Ayakkabı Fotoğrafı",
		Description: "Yeni Nike ayakkabınızın fotoğrafını çekip paylaşın.",
		Brand:       "Nike",
		Budget:      float64Ptr(5000),
		Reward:      intPtr(50),
		StartDate:   timePtr(testNow.AddDate(0, 0, -1)),
		EndDate:     timePtr(testNow.AddDate(0, 1, 0)),
	}
}

func TestTaskService_Create_Success(t *testing.T) {
	var captured *model.Task
	repo := &mockTaskRepository{
		insertFn: func(ctx context.Context, task *model.Task) error {
			captured = task
			return nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)
	task, err := svc.Create(context.Background(), validCreateTaskRequest())

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, model.TaskStatusActive, captured.Status)
	assert.Equal(t, "Fotoğraf", captured.Category)
	assert.Equal(t, 100, captured.MaxParticipants)
}

func TestTaskService_Create_DateOrder(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	req := validCreateTaskRequest()
	req.EndDate = timePtr(testNow.AddDate(0, 0, -2))

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDateOrder))
}

func TestTaskService_Create_EqualDatesRejected(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	req := validCreateTaskRequest()
	req.EndDate = req.StartDate

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDateOrder))
}

func TestTaskService_Create_WeeklyForcesFeatured(t *testing.T) {
	var captured *model.Task
	repo := &mockTaskRepository{
		insertFn: func(ctx context.Context, task *model.Task) error {
			captured = task
			return nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)
	req := validCreateTaskRequest()
	req.IsWeekly = true

	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, captured.Featured)
}

func TestTaskService_Update_DateOrderAcrossFields(t *testing.T) {
	existing := &model.Task{
		ID:        "task-1",
		StartDate: testNow.AddDate(0, 0, -10),
		EndDate:   testNow.AddDate(0, 0, 10),
	}
	repo := &mockTaskRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Task, error) {
			return existing, nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)

	// Moving only the start date past the existing end date must fail
	_, err := svc.Update(context.Background(), "task-1", &model.UpdateTaskRequest{
		StartDate: timePtr(testNow.AddDate(0, 0, 20)),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDateOrder))
}

func TestTaskService_Update_NotFound(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	_, err := svc.Update(context.Background(), "missing", &model.UpdateTaskRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestTaskService_GetByID_NotFound(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	_, err := svc.GetByID(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestTaskService_List_DecoratesViews(t *testing.T) {
	repo := &mockTaskRepository{
		listFn: func(ctx context.Context, f model.TaskFilter, opts model.ListOptions) ([]*model.Task, error) {
			return []*model.Task{
				{
					ID:              "task-1",
					Status:          model.TaskStatusActive,
					StartDate:       testNow.AddDate(0, 0, -1),
					EndDate:         testNow.AddDate(0, 0, 1),
					MaxParticipants: 100,
				},
			}, nil
		},
		countFn: func(ctx context.Context, f model.TaskFilter) (int64, error) {
			return 42, nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)
	views, total, err := svc.List(context.Background(), model.TaskFilter{}, model.ListOptions{})

	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsActive)
	assert.Equal(t, "active", views[0].DeadlineStatus.Status)
}

func TestTaskService_GetWeeklyFeatured_None(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	view, err := svc.GetWeeklyFeatured(context.Background())

	require.NoError(t, err)
	assert.Nil(t, view, "no live weekly task yields nil, not an error")
}

func TestTaskService_Participate_Success(t *testing.T) {
	committed := false
	tx := &mockTx{commitFn: func(ctx context.Context) error {
		committed = true
		return nil
	}}
	pool := &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) {
		return tx, nil
	}}
	repo := &mockTaskRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
			return &model.Task{
				ID:              id,
				Participants:    23,
				MaxParticipants: 100,
				EndDate:         testNow.AddDate(0, 1, 0),
			}, nil
		},
		incrementParticipantsFn: func(ctx context.Context, tx database.TxQuerier, id string) (int, error) {
			return 24, nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(pool, repo, fixedNow)
	task, err := svc.Participate(context.Background(), "task-1")

	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 24, task.Participants)
}

func TestTaskService_Participate_Full(t *testing.T) {
	rolledBack := false
	tx := &mockTx{rollbackFn: func(ctx context.Context) error {
		rolledBack = true
		return nil
	}}
	pool := &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) {
		return tx, nil
	}}
	repo := &mockTaskRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
			return &model.Task{
				ID:              id,
				Participants:    100,
				MaxParticipants: 100,
				EndDate:         testNow.AddDate(0, 1, 0),
			}, nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(pool, repo, fixedNow)
	_, err := svc.Participate(context.Background(), "task-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskFull))
	assert.True(t, rolledBack)
}

func TestTaskService_Participate_Expired(t *testing.T) {
	repo := &mockTaskRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
			return &model.Task{
				ID:              id,
				Participants:    10,
				MaxParticipants: 100,
				EndDate:         testNow.AddDate(0, 0, -1),
			}, nil
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)
	_, err := svc.Participate(context.Background(), "task-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskExpired))
}

func TestTaskService_Participate_NotFound(t *testing.T) {
	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, &mockTaskRepository{}, fixedNow)

	_, err := svc.Participate(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestTaskService_Participate_IncrementFails(t *testing.T) {
	// The precondition in the UPDATE catches a capacity race even after
	// the in-memory check passed.
	repo := &mockTaskRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, id string) (*model.Task, error) {
			return &model.Task{
				ID:              id,
				Participants:    99,
				MaxParticipants: 100,
				EndDate:         testNow.AddDate(0, 1, 0),
			}, nil
		},
		incrementParticipantsFn: func(ctx context.Context, tx database.TxQuerier, id string) (int, error) {
			return 0, ErrTaskFull
		},
	}

	svc := NewTaskServiceWithTxBeginner(&mockTxBeginner{}, repo, fixedNow)
	_, err := svc.Participate(context.Background(), "task-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskFull))
}
