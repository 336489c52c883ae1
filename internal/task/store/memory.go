package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"taskhub/internal/task/models"
	"taskhub/pkg/platform/sentinel"
)

// InMemoryStore backs development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*models.Task
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[uuid.UUID]*models.Task)}
}

func (s *InMemoryStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Task) bool { return true }), nil
}

func (s *InMemoryStore) ListByOrganization(_ context.Context, organizationID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(t *models.Task) bool { return t.OrganizationID == organizationID }), nil
}

func (s *InMemoryStore) ListByAssignee(_ context.Context, assigneeID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(t *models.Task) bool {
		return t.AssigneeID != nil && *t.AssigneeID == assigneeID
	}), nil
}

func (s *InMemoryStore) Update(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *InMemoryStore) collect(keep func(*models.Task) bool) []*models.Task {
	var out []*models.Task
	for _, task := range s.tasks {
		if keep(task) {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
