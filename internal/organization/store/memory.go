package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskhub/internal/organization/models"
	"taskhub/pkg/platform/sentinel"
)

// InMemoryStore backs development and tests. Name uniqueness is enforced
// case-insensitively.
type InMemoryStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]*models.Organization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orgs: make(map[uuid.UUID]*models.Organization)}
}

func (s *InMemoryStore) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orgs {
		if strings.EqualFold(existing.Name, org.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *org
	s.orgs[org.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		cp := *org
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.orgs {
		if existing.ID != org.ID && strings.EqualFold(existing.Name, org.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *org
	s.orgs[org.ID] = &cp
	return nil
}
