package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// TaskRepository persists tasks. Every lookup and mutation is scoped to the
// owner; a task owned by someone else yields domain.ErrTaskNotFound.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error)
	Count(ctx context.Context, query domain.TaskQuery) (int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
}
