package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
)

var taskRowColumns = []string{"id", "user_id", "title", "description", "status", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func strPtr(s string) *string { return &s }

func TestTaskRepo_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	ctx := context.Background()
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "owner").
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(id, "owner", "buy milk", strPtr("2l"), "IN_PROGRESS", now, now))

	task, err := repo.GetByID(ctx, "owner", id)
	require.NoError(t, err)
	require.Equal(t, "buy milk", task.Title)
	require.Equal(t, domain.TaskInProgress, task.Status)
	require.Equal(t, "2l", *task.Description)

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "intruder").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(ctx, "intruder", id)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepo_GetByID_MalformedIDNeverQueries(t *testing.T) {
	repo := NewTaskRepository(newMock(t))

	_, err := repo.GetByID(context.Background(), "owner", "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskRepo_ListAndCount(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	ctx := context.Background()
	now := time.Now()

	q := domain.TaskQuery{UserID: "owner", Page: 2, Limit: 2, Status: domain.TaskPending, Search: "milk"}

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE user_id = \$1 (.+) ORDER BY created_at DESC, id DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("owner", "PENDING", "milk", 2, 2).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(uuid.NewString(), "owner", "milk 3", strPtr(""), "PENDING", now, now).
			AddRow(uuid.NewString(), "owner", "milk 4", strPtr(""), "PENDING", now, now))

	tasks, err := repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "milk 3", tasks[0].Title)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE user_id = \$1`).
		WithArgs("owner", "PENDING", "milk").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.Count(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 4, total)
}

func TestTaskRepo_ListEmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)

	mock.ExpectQuery(`FROM tasks WHERE user_id = \$1`).
		WithArgs("owner", "", "", 10, 0).
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background(), domain.TaskQuery{UserID: "owner", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, tasks)
	require.Empty(t, tasks)
}

func TestTaskRepo_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO tasks \(id, user_id, title, description, status\)`).
		WithArgs(pgxmock.AnyArg(), "owner", "buy milk", pgxmock.AnyArg(), "PENDING").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	task, err := repo.Create(context.Background(), &domain.Task{UserID: "owner", Title: "buy milk", Status: domain.TaskPending})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, now, task.CreatedAt)
}

func TestTaskRepo_UpdateScopedToOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`UPDATE tasks SET (.+) WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "owner", "t", pgxmock.AnyArg(), "COMPLETED").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	task := &domain.Task{ID: id, UserID: "owner", Title: "t", Status: domain.TaskCompleted}
	require.NoError(t, repo.Update(context.Background(), task))
	require.Equal(t, now, task.UpdatedAt)

	mock.ExpectQuery(`UPDATE tasks SET (.+) WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "other", "t", pgxmock.AnyArg(), "COMPLETED").
		WillReturnError(pgx.ErrNoRows)

	task.UserID = "other"
	require.ErrorIs(t, repo.Update(context.Background(), task), domain.ErrTaskNotFound)
}

func TestTaskRepo_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewTaskRepository(mock)
	id := uuid.NewString()

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "owner").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), "owner", id))

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, "other").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "other", id), domain.ErrTaskNotFound)

	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(id, "owner").
		WillReturnError(errors.New("connection reset"))
	err := repo.Delete(context.Background(), "owner", id)
	require.Error(t, err)
	require.False(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
