// Package memory provides in-memory store implementations used by tests
// and by ephemeral deployments that do not need persistence.
package memory

import (
	"context"
	"sync"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		records: make(map[string]domain.DocumentRecord),
	}
}

// Lookup retrieves a record by document id.
func (s *DocumentStore) Lookup(_ context.Context, documentID string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// Upsert stores or replaces a record.
func (s *DocumentStore) Upsert(_ context.Context, rec *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.DocumentID] = *rec
	return nil
}

// ListByTenant returns all records owned by a tenant.
func (s *DocumentStore) ListByTenant(_ context.Context, tenantID string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DocumentRecord
	for _, rec := range s.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	return out, nil
}
