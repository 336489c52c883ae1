package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskhub/internal/audit"
)

// Store keeps audit entries in memory, newest last. Intended for tests and
// single-node development runs.
type Store struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) ListByOrganization(_ context.Context, organizationID uuid.UUID, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterNewestFirst(s.entries, limit, func(e audit.Entry) bool {
		return e.OrganizationID == organizationID.String()
	}), nil
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterNewestFirst(s.entries, limit, func(e audit.Entry) bool {
		return e.UserID == userID.String()
	}), nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterNewestFirst(s.entries, limit, func(audit.Entry) bool { return true }), nil
}

// All returns every stored entry in insertion order. Test helper.
func (s *Store) All() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry{}, s.entries...)
}

func filterNewestFirst(entries []audit.Entry, limit int, keep func(audit.Entry) bool) []audit.Entry {
	var out []audit.Entry
	for i := len(entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if keep(entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}
