package driven

import (
	"context"

	"github.com/harborist/contextd/internal/core/domain"
)

// DocumentStore persists the registry of monitored documents.
// Lookup misses return domain.ErrNotFound.
type DocumentStore interface {
	// Lookup retrieves a record by external document id.
	Lookup(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// Upsert stores or replaces a record in one logical write.
	Upsert(ctx context.Context, rec *domain.DocumentRecord) error

	// ListByTenant returns all records owned by a tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.DocumentRecord, error)
}

// TenantStore persists tenant credential records.
// Lookup misses return domain.ErrNotFound.
type TenantStore interface {
	// Lookup retrieves a tenant by id.
	Lookup(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// Save stores a tenant record.
	Save(ctx context.Context, tenant *domain.Tenant) error
}

// ChatStore persists relayed chat messages.
type ChatStore interface {
	// Append stores one chat message.
	Append(ctx context.Context, msg *domain.ChatMessage) error

	// List returns stored messages for a chat, oldest first.
	List(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
}
