package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	// seq breaks created_at ties so ordering stays stable within one clock tick.
	seq   map[string]int64
	next  int64
	clock func() time.Time
}

// NewTaskRepository returns an empty in-memory task store.
func NewTaskRepository() repository.TaskRepository {
	return &taskRepository{
		tasks: make(map[string]domain.Task),
		seq:   make(map[string]int64),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (r *taskRepository) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok || !task.OwnedBy(userID) {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *taskRepository) List(_ context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(q)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})

	out := make([]domain.Task, 0, q.Limit)
	for i := q.Offset(); i < len(matched) && len(out) < q.Limit; i++ {
		out = append(out, *cloneTask(matched[i]))
	}
	return out, nil
}

func (r *taskRepository) Count(_ context.Context, q domain.TaskQuery) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filter(q)), nil
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.clock()
	task.CreatedAt, task.UpdatedAt = now, now
	r.next++
	r.seq[task.ID] = r.next
	r.tasks[task.ID] = *cloneTask(*task)
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[task.ID]
	if !ok || !stored.OwnedBy(task.UserID) {
		return domain.ErrTaskNotFound
	}
	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = r.clock()
	r.tasks[task.ID] = *cloneTask(*task)
	return nil
}

func (r *taskRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[id]
	if !ok || !stored.OwnedBy(userID) {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	delete(r.seq, id)
	return nil
}

func (r *taskRepository) filter(q domain.TaskQuery) []domain.Task {
	var matched []domain.Task
	for _, task := range r.tasks {
		if !task.OwnedBy(q.UserID) {
			continue
		}
		if q.Status != "" && task.Status != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(task.Title, q.Search) {
			continue
		}
		matched = append(matched, task)
	}
	return matched
}

func cloneTask(task domain.Task) *domain.Task {
	if task.Description != nil {
		desc := *task.Description
		task.Description = &desc
	}
	return &task
}
