package memory

import (
	"context"
	"sync"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure TenantStore implements the interface.
var _ driven.TenantStore = (*TenantStore)(nil)

// TenantStore is an in-memory implementation of driven.TenantStore.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
}

// NewTenantStore creates a new in-memory tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{
		tenants: make(map[string]domain.Tenant),
	}
}

// Lookup retrieves a tenant by id.
func (s *TenantStore) Lookup(_ context.Context, tenantID string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tenant, nil
}

// Save stores a tenant record.
func (s *TenantStore) Save(_ context.Context, tenant *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.TenantID] = *tenant
	return nil
}
