package domain

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// ParseTaskStatus validates a client supplied status.
func ParseTaskStatus(value string) (TaskStatus, error) {
	status := TaskStatus(value)
	if !status.Valid() {
		return "", NewValidationError("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	return status, nil
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskCompleted
}

// Toggle flips COMPLETED back to PENDING and anything else to COMPLETED.
// IN_PROGRESS is not remembered: two toggles from IN_PROGRESS land on PENDING.
func (t *Task) Toggle() {
	if t.IsCompleted() {
		t.Status = TaskPending
		return
	}
	t.Status = TaskCompleted
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// NewTask validates a creation request. An empty status means PENDING.
func NewTask(userID, title string, description *string, status string) (*Task, error) {
	title, err := parseTitle(title)
	if err != nil {
		return nil, err
	}
	parsed := TaskPending
	if status != "" {
		if parsed, err = ParseTaskStatus(status); err != nil {
			return nil, err
		}
	}
	return &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      parsed,
	}, nil
}

// TaskPatch carries the fields supplied to a partial update; nil means untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
}

// Validate checks every supplied field without applying anything.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if _, err := parseTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if _, err := ParseTaskStatus(*p.Status); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the supplied fields onto t. Call Validate first.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.Status != nil {
		t.Status = TaskStatus(*p.Status)
	}
}

func parseTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", NewValidationError("title", "must not be empty")
	}
	return trimmed, nil
}
