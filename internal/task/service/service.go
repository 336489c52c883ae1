package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/task/models"
	dErrors "taskhub/pkg/domain-errors"
	"taskhub/pkg/platform/sentinel"
	"taskhub/pkg/requestcontext"
)

// Store abstracts task persistence.
type Store interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.Task, error)
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages the task lifecycle. The assignee reference is not checked
// against the organization boundary: assignment consistency is the caller's
// concern.
type Service struct {
	tasks Store
}

func New(tasks Store) *Service {
	return &Service{tasks: tasks}
}

func (s *Service) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	orgID, err := uuid.Parse(strings.TrimSpace(req.OrganizationID))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "valid organizationId is required")
	}

	now := requestcontext.Now(ctx)
	task := &models.Task{
		ID:             uuid.New(),
		Title:          title,
		Description:    strings.TrimSpace(req.Description),
		Status:         models.StatusTodo,
		Priority:       models.PriorityMedium,
		DueDate:        req.DueDate,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown priority %q", *req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil && strings.TrimSpace(*req.AssigneeID) != "" {
		assigneeID, err := uuid.Parse(strings.TrimSpace(*req.AssigneeID))
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "valid assigneeId is required")
		}
		task.AssigneeID = &assigneeID
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}
	return task, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapTaskErr(err)
	}
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

func (s *Service) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

func (s *Service) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, assigneeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, wrapTaskErr(err)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown priority %q", *req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		// An explicit empty string clears the assignment.
		if strings.TrimSpace(*req.AssigneeID) == "" {
			task.AssigneeID = nil
		} else {
			assigneeID, err := uuid.Parse(strings.TrimSpace(*req.AssigneeID))
			if err != nil {
				return nil, dErrors.New(dErrors.CodeBadRequest, "valid assigneeId is required")
			}
			task.AssigneeID = &assigneeID
		}
	}
	task.UpdatedAt = requestcontext.Now(ctx)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, wrapTaskErr(err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return wrapTaskErr(err)
	}
	return nil
}

func wrapTaskErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "task store failure")
}
