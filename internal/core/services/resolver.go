package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// resolveBackend looks up a tenant, decrypts its credential, and returns an
// authenticated backend session plus the assistant id. Missing pieces are
// configuration errors, distinct from data errors: they mean tenant setup
// is incomplete, not that a document changed.
func resolveBackend(
	ctx context.Context,
	tenants driven.TenantStore,
	cipher driven.CredentialCipher,
	backends driven.BackendFactory,
	tenantID string,
) (driven.MemoryBackend, string, error) {
	tenant, err := tenants.Lookup(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, tenantID)
		}
		return nil, "", fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant.EncryptedCredential == "" {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, tenantID)
	}
	if tenant.AssistantID == "" {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrMissingAssistant, tenantID)
	}

	apiKey, err := cipher.Decrypt(tenant.EncryptedCredential)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decrypt: %w", domain.ErrMissingCredential, err)
	}

	return backends.Client(apiKey), tenant.AssistantID, nil
}
