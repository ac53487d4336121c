package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
)

func TestTaskRepository_ListNewestFirstAndPaged(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := repo.Create(ctx, &domain.Task{UserID: "a", Title: fmt.Sprintf("task %d", i), Status: domain.TaskPending})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Task{UserID: "b", Title: "task b", Status: domain.TaskPending})
	require.NoError(t, err)

	page, err := repo.List(ctx, domain.TaskQuery{UserID: "a", Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "task 5", page[0].Title)
	assert.Equal(t, "task 4", page[1].Title)

	page, err = repo.List(ctx, domain.TaskQuery{UserID: "a", Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "task 1", page[0].Title)

	page, err = repo.List(ctx, domain.TaskQuery{UserID: "a", Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)

	total, err := repo.Count(ctx, domain.TaskQuery{UserID: "a", Search: "task"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	total, err = repo.Count(ctx, domain.TaskQuery{UserID: "a", Search: "Task"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTaskRepository_OwnershipScoping(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()

	task, err := repo.Create(ctx, &domain.Task{UserID: "a", Title: "mine", Status: domain.TaskPending})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "b", task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = repo.Update(ctx, &domain.Task{ID: task.ID, UserID: "b", Title: "stolen", Status: domain.TaskCompleted})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "b", task.ID), domain.ErrTaskNotFound)

	got, err := repo.GetByID(ctx, "a", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "a@x.com", PasswordHash: "h"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Email: "a@x.com", PasswordHash: "h"}), domain.ErrUserExists)
	require.NoError(t, repo.Create(ctx, &domain.User{Email: "A@x.com", PasswordHash: "h"}))

	user, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", fetched.Email)
}
