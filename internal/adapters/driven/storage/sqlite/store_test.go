package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborist/contextd/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStoreCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "contextd.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs migrate again over the applied schema.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()
}

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	rec := &domain.DocumentRecord{
		DocumentID:   "doc-1",
		TenantID:     "tenant-1",
		DisplayName:  "Onboarding Plan",
		Fingerprint:  "abc123",
		LastModified: "2026-08-01T10:00:00Z",
		Content:      "week one: meet the team",
		CreatedAt:    now,
	}
	require.NoError(t, docs.Upsert(ctx, rec))

	got, err := docs.Lookup(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", got.TenantID)
	assert.Equal(t, "Onboarding Plan", got.DisplayName)
	assert.Equal(t, "abc123", got.Fingerprint)
	assert.Equal(t, "2026-08-01T10:00:00Z", got.LastModified)
	assert.Equal(t, "week one: meet the team", got.Content)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestDocumentStoreLookupMiss(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStoreUpsertReplaces(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.Upsert(ctx, &domain.DocumentRecord{
		DocumentID: "doc-1",
		TenantID:   "tenant-1",
	}))
	require.NoError(t, docs.Upsert(ctx, &domain.DocumentRecord{
		DocumentID:  "doc-1",
		TenantID:    "tenant-1",
		Fingerprint: "v2",
		Content:     "new content",
	}))

	got, err := docs.Lookup(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Fingerprint)
	assert.Equal(t, "new content", got.Content)

	all, err := docs.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocumentStoreListByTenant(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	for _, id := range []string{"doc-1", "doc-2"} {
		require.NoError(t, docs.Upsert(ctx, &domain.DocumentRecord{
			DocumentID: id,
			TenantID:   "tenant-1",
		}))
	}
	require.NoError(t, docs.Upsert(ctx, &domain.DocumentRecord{
		DocumentID: "doc-other",
		TenantID:   "tenant-2",
	}))

	records, err := docs.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "doc-1", records[0].DocumentID)
	assert.Equal(t, "doc-2", records[1].DocumentID)

	empty, err := docs.ListByTenant(ctx, "tenant-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTenantStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	tenants := store.TenantStore()
	ctx := context.Background()

	require.NoError(t, tenants.Save(ctx, &domain.Tenant{
		TenantID:            "tenant-1",
		EncryptedCredential: "ciphertext",
		AssistantID:         "asst-1",
	}))

	got, err := tenants.Lookup(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", got.EncryptedCredential)
	assert.Equal(t, "asst-1", got.AssistantID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = tenants.Lookup(ctx, "tenant-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenantStoreSaveUpdates(t *testing.T) {
	store := setupTestStore(t)
	tenants := store.TenantStore()
	ctx := context.Background()

	require.NoError(t, tenants.Save(ctx, &domain.Tenant{
		TenantID:            "tenant-1",
		EncryptedCredential: "old",
	}))
	require.NoError(t, tenants.Save(ctx, &domain.Tenant{
		TenantID:            "tenant-1",
		EncryptedCredential: "new",
		AssistantID:         "asst-1",
	}))

	got, err := tenants.Lookup(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.EncryptedCredential)
	assert.Equal(t, "asst-1", got.AssistantID)
}

func TestChatStoreAppendAndList(t *testing.T) {
	store := setupTestStore(t)
	chats := store.ChatStore()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, chats.Append(ctx, &domain.ChatMessage{
			ID:          string(rune('a' + i)),
			ChatID:      "chat-1",
			ChannelName: "team-onboarding",
			Sender:      "casey",
			Text:        text,
			LoggedAt:    base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, chats.Append(ctx, &domain.ChatMessage{
		ID:     "z",
		ChatID: "chat-2",
		Text:   "elsewhere",
	}))

	messages, err := chats.List(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "third", messages[2].Text)
	assert.Equal(t, "team-onboarding", messages[0].ChannelName)
}
