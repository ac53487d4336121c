package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

// CreateInput is a new task as supplied by the caller.
type CreateInput struct {
	Title       string
	Description *string
	Status      string
}

// UseCase serves a single user's tasks. Every operation takes the caller's
// user id and never touches another user's rows.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns one page of the user's tasks, newest first.
func (uc *UseCase) ListTasks(ctx context.Context, query domain.TaskQuery) (*domain.TaskPage, error) {
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}

	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := uc.tasks.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	return &domain.TaskPage{
		Tasks:      tasks,
		Pagination: domain.NewPagination(total, query.Page, query.Limit),
	}, nil
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, userID, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, userID string, input CreateInput) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title, input.Description, input.Status)
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task created",
		zap.String("user_id", userID),
		zap.String("task_id", created.ID),
	)
	return created, nil
}

// UpdateTask applies the supplied fields. Ownership is checked before the
// patch is looked at, and the patch is validated as a whole before anything
// is written.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	patch.Apply(task)
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleStatus flips COMPLETED to PENDING and anything else to COMPLETED.
func (uc *UseCase) ToggleStatus(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Toggle()
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task deleted",
		zap.String("user_id", userID),
		zap.String("task_id", id),
	)
	return nil
}
