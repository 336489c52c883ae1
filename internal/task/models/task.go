package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority orders work within a board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work scoped to one organization, optionally assigned to
// a user.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	DueDate        *time.Time   `json:"dueDate,omitempty"`
	AssigneeID     *uuid.UUID   `json:"assigneeId,omitempty"`
	OrganizationID uuid.UUID    `json:"organizationId"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	OrganizationID string        `json:"organizationId"`
	AssigneeID     *string       `json:"assigneeId"`
	Status         *TaskStatus   `json:"status"`
	Priority       *TaskPriority `json:"priority"`
	DueDate        *time.Time    `json:"dueDate"`
}

// UpdateTaskRequest carries optional field updates; nil means unchanged.
type UpdateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *time.Time    `json:"dueDate"`
	AssigneeID  *string       `json:"assigneeId"`
}
