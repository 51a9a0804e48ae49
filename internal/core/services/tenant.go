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

// Ensure TenantService implements the interface.
var _ driving.TenantService = (*TenantService)(nil)

// Defaults for the assistant provisioned at tenant onboarding.
const (
	assistantName        = "Onboarding Assistant"
	assistantDescription = "An assistant that answers questions using your team's onboarding context"
)

// TenantService onboards tenants and relays questions to their assistants.
// One credential and one assistant per tenant.
type TenantService struct {
	tenants  driven.TenantStore
	cipher   driven.CredentialCipher
	backends driven.BackendFactory
}

// NewTenantService creates a tenant service.
func NewTenantService(
	tenants driven.TenantStore,
	cipher driven.CredentialCipher,
	backends driven.BackendFactory,
) *TenantService {
	return &TenantService{
		tenants:  tenants,
		cipher:   cipher,
		backends: backends,
	}
}

// Onboard provisions an assistant for a new tenant and persists the tenant
// record with the encrypted API key.
func (s *TenantService) Onboard(ctx context.Context, tenantID, apiKey string) (*domain.Tenant, error) {
	if tenantID == "" || apiKey == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.tenants.Lookup(ctx, tenantID); err == nil {
		return nil, fmt.Errorf("%w: tenant %s", domain.ErrAlreadyExists, tenantID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}

	assistantID, err := s.backends.Client(apiKey).CreateAssistant(ctx, assistantName, assistantDescription)
	if err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt credential: %w", err)
	}

	tenant := &domain.Tenant{
		TenantID:            tenantID,
		EncryptedCredential: encrypted,
		AssistantID:         assistantID,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.tenants.Save(ctx, tenant); err != nil {
		return nil, fmt.Errorf("save tenant: %w", err)
	}

	logger.Info("Onboarded tenant %s with assistant %s", tenantID, assistantID)
	return tenant, nil
}

// Ask threads a question to the tenant's assistant and returns the answer
// with the retrieved memories it drew on.
func (s *TenantService) Ask(ctx context.Context, tenantID, content string) (*domain.Answer, error) {
	if content == "" {
		return nil, domain.ErrInvalidInput
	}

	tenant, err := s.tenants.Lookup(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTenantNotFound, tenantID)
		}
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant.AssistantID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingAssistant, tenantID)
	}

	apiKey, err := s.cipher.Decrypt(tenant.EncryptedCredential)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %w", domain.ErrMissingCredential, err)
	}

	answer, err := s.backends.Client(apiKey).Ask(ctx, tenant.AssistantID, content)
	if err != nil {
		return nil, fmt.Errorf("ask assistant: %w", err)
	}
	return answer, nil
}
