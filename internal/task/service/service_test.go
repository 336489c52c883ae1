package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/task/models"
	"taskhub/internal/task/store"
	dErrors "taskhub/pkg/domain-errors"
)

func validRequest() models.CreateTaskRequest {
	return models.CreateTaskRequest{
		Title:          "ship the release",
		Description:    "cut and tag",
		OrganizationID: uuid.New().String(),
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults status and priority", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		task, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, models.StatusTodo, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Nil(t, task.AssigneeID)
		assert.Nil(t, task.DueDate)
	})

	t.Run("honors explicit status, priority, assignee, and due date", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		req := validRequest()
		status := models.StatusInProgress
		priority := models.PriorityHigh
		assignee := uuid.New().String()
		due := time.Now().Add(48 * time.Hour).UTC()
		req.Status = &status
		req.Priority = &priority
		req.AssigneeID = &assignee
		req.DueDate = &due

		task, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, task.Status)
		assert.Equal(t, models.PriorityHigh, task.Priority)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, assignee, task.AssigneeID.String())
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(due))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		badStatus := models.TaskStatus("archived")
		badPriority := models.TaskPriority("urgent")
		badAssignee := "not-a-uuid"
		mutations := map[string]func(*models.CreateTaskRequest){
			"missing title":    func(r *models.CreateTaskRequest) { r.Title = "  " },
			"bad organization": func(r *models.CreateTaskRequest) { r.OrganizationID = "nope" },
			"unknown status":   func(r *models.CreateTaskRequest) { r.Status = &badStatus },
			"unknown priority": func(r *models.CreateTaskRequest) { r.Priority = &badPriority },
			"bad assignee":     func(r *models.CreateTaskRequest) { r.AssigneeID = &badAssignee },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				svc := New(store.NewInMemoryStore())
				req := validRequest()
				mutate(&req)
				_, err := svc.Create(ctx, req)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			})
		}
	})
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the provided fields", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		task, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)

		done := models.StatusDone
		updated, err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Status: &done})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDone, updated.Status)
		assert.Equal(t, task.Title, updated.Title)
		assert.Equal(t, task.Priority, updated.Priority)
	})

	t.Run("empty assignee clears the assignment", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		req := validRequest()
		assignee := uuid.New().String()
		req.AssigneeID = &assignee
		task, err := svc.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, task.AssigneeID)

		empty := ""
		updated, err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{AssigneeID: &empty})
		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		title := "ghost"
		_, err := svc.Update(ctx, uuid.New(), models.UpdateTaskRequest{Title: &title})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemoryStore())

	orgA := uuid.New()
	assignee := uuid.New()

	for i := 0; i < 3; i++ {
		req := validRequest()
		if i < 2 {
			req.OrganizationID = orgA.String()
		}
		if i == 0 {
			id := assignee.String()
			req.AssigneeID = &id
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byOrg, err := svc.ListByOrganization(ctx, orgA)
	require.NoError(t, err)
	assert.Len(t, byOrg, 2)

	byAssignee, err := svc.ListByAssignee(ctx, assignee)
	require.NoError(t, err)
	assert.Len(t, byAssignee, 1)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemoryStore())

	task, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, task.ID))

	err = svc.Delete(ctx, task.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
