package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// Ensure RegistrationService implements the interface.
var _ driving.RegistrationService = (*RegistrationService)(nil)

// RegistrationService adds documents to the monitored set. Registration is
// metadata-only and cheap: the expensive fetch-and-upload work is deferred
// to the first sync.
type RegistrationService struct {
	meta    driven.MetadataFetcher
	docs    driven.DocumentStore
	tenants driven.TenantStore
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(
	meta driven.MetadataFetcher,
	docs driven.DocumentStore,
	tenants driven.TenantStore,
) *RegistrationService {
	return &RegistrationService{
		meta:    meta,
		docs:    docs,
		tenants: tenants,
	}
}

// Register validates the document is reachable and creates its initial
// registry row with an empty fingerprint.
func (s *RegistrationService) Register(ctx context.Context, documentID, tenantID string) error {
	if documentID == "" || tenantID == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.tenants.Lookup(ctx, tenantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrTenantNotFound, tenantID)
		}
		return fmt.Errorf("lookup tenant: %w", err)
	}

	// Reachability check. No registry write on failure.
	meta, err := s.meta.Metadata(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInaccessible, documentID, err)
	}

	if existing, err := s.docs.Lookup(ctx, documentID); err == nil {
		logger.Info("Document already registered: %s", existing.DisplayName)
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, documentID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup document: %w", err)
	}

	now := time.Now().UTC()
	rec := &domain.DocumentRecord{
		DocumentID:   documentID,
		TenantID:     tenantID,
		DisplayName:  meta.Name,
		Fingerprint:  "",
		LastModified: meta.ModifiedTime,
		Content:      "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.docs.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("create document record: %w", err)
	}

	logger.Info("Registered document for monitoring: %s", meta.Name)
	return nil
}
