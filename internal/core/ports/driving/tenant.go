package driving

import (
	"context"

	"github.com/harborist/contextd/internal/core/domain"
)

// TenantService manages tenant onboarding and assistant interaction.
type TenantService interface {
	// Onboard creates a tenant: provisions an assistant on the memory
	// backend, encrypts the API key, and persists the record. Returns
	// domain.ErrAlreadyExists if the tenant id is taken.
	Onboard(ctx context.Context, tenantID, apiKey string) (*domain.Tenant, error)

	// Ask threads a question to the tenant's assistant.
	Ask(ctx context.Context, tenantID, content string) (*domain.Answer, error)
}

// PushResult summarises one handled push event.
type PushResult struct {
	// FilesIngested is how many files were fetched and forwarded.
	FilesIngested int

	// FilesSkipped is how many surviving paths failed to fetch.
	FilesSkipped int
}

// PushService turns repository push events into forwarded file content.
type PushService interface {
	// HandlePush deduplicates and filters the pushed paths, fetches the
	// survivors, and forwards them to the tenant's assistant. Returns
	// domain.ErrPushIgnored when nothing survives.
	HandlePush(ctx context.Context, tenantID string, event *domain.PushEvent) (*PushResult, error)
}
