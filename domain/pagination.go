package domain

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskQuery selects one page of a user's tasks.
type TaskQuery struct {
	UserID string
	Page   int
	Limit  int
	// Status is applied only when it is a known TaskStatus.
	Status TaskStatus
	// Search is a case-sensitive substring of the title.
	Search string
}

// Normalize fills defaults, clamps the limit and drops unknown status filters.
func (q TaskQuery) Normalize() (TaskQuery, error) {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Page < 1 {
		return q, NewValidationError("page", "must be a positive integer")
	}
	if q.Limit < 1 {
		return q, NewValidationError("limit", "must be a positive integer")
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if !q.Status.Valid() {
		q.Status = ""
	}
	return q, nil
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing, so a huge page is simply past the end.
func (q TaskQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// TaskPage is one page of tasks plus its pagination metadata.
type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
