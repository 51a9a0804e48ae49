package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborist/contextd/internal/adapters/driven/storage/memory"
	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driving"
)

// syncFixture bundles a sync service with its mock collaborators.
type syncFixture struct {
	svc     *SyncService
	meta    *mockMetadataFetcher
	content *mockContentFetcher
	docs    *memory.DocumentStore
	tenants *memory.TenantStore
	backend *mockBackend
	factory *mockFactory
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		meta:    fixedMetadata("Plan", "t0"),
		content: fixedContent("v1"),
		docs:    memory.NewDocumentStore(),
		tenants: memory.NewTenantStore(),
		backend: newMockBackend(),
	}
	f.factory = &mockFactory{backend: f.backend}
	f.svc = NewSyncService(f.meta, f.content, f.docs, f.tenants, plainCipher{}, f.factory)
	f.svc.SetIndexWait(200*time.Millisecond, time.Millisecond)
	return f
}

// withTenant onboards a well-formed tenant record.
func (f *syncFixture) withTenant(t *testing.T, tenantID string) {
	t.Helper()
	require.NoError(t, f.tenants.Save(context.Background(), &domain.Tenant{
		TenantID:            tenantID,
		EncryptedCredential: "enc:api-key",
		AssistantID:         "asst-1",
	}))
}

// withRegistered creates a registry row with the given fingerprint state.
func (f *syncFixture) withRegistered(t *testing.T, documentID, tenantID, fingerprint, content string) {
	t.Helper()
	require.NoError(t, f.docs.Upsert(context.Background(), &domain.DocumentRecord{
		DocumentID:  documentID,
		TenantID:    tenantID,
		DisplayName: "Plan",
		Fingerprint: fingerprint,
		Content:     content,
	}))
}

func TestSyncNewDocumentRunsFullPipeline(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	res, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSynced, res.Outcome)
	assert.Equal(t, domain.Fingerprint("v1"), res.Fingerprint)

	// Exactly one upload, addressed to the tenant's assistant, carrying
	// the provenance header and the content.
	require.Equal(t, 1, f.backend.uploadCount())
	up := f.backend.uploads[0]
	assert.Equal(t, "asst-1", up.assistantID)
	assert.Equal(t, "Plan", up.title)
	assert.Contains(t, up.body, "Document: Plan")
	assert.Contains(t, up.body, "Source: Google Drive")
	assert.Contains(t, up.body, "v1")

	// The credential was decrypted before handing it to the factory.
	assert.Equal(t, []string{"api-key"}, f.factory.keys)

	rec, err := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint("v1"), rec.Fingerprint)
	assert.Equal(t, "v1", rec.Content)
	assert.Equal(t, "t0", rec.LastModified)
	assert.True(t, rec.Synced())
}

func TestSyncUnchangedContentIsNoOp(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", domain.Fingerprint("v1"), "v1")

	res, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeUnchanged, res.Outcome)

	// Zero uploads, zero status polls, registry untouched.
	assert.Equal(t, 0, f.backend.uploadCount())
	assert.Equal(t, 0, f.backend.statusCalls)
}

func TestSyncWaitsThroughPendingStatuses(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")
	f.backend.statusSeq = []domain.IndexStatus{
		{State: domain.IndexPending},
		{State: domain.IndexPending},
		{State: domain.IndexIndexed},
	}

	res, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSynced, res.Outcome)
	assert.Equal(t, 3, f.backend.statusCalls)
}

func TestSyncNotRegistered(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")

	_, err := f.svc.Sync(context.Background(), "doc-unknown", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
	assert.Equal(t, 0, f.backend.uploadCount())
}

func TestSyncInaccessibleMetadata(t *testing.T) {
	f := newSyncFixture(t)
	f.meta.fn = func(string) (*domain.DocumentMetadata, error) {
		return nil, errors.New("permission revoked")
	}
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrInaccessible)

	// No registry mutation on the abort path.
	rec, lookupErr := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, lookupErr)
	assert.Empty(t, rec.Fingerprint)
}

func TestSyncUnreadableContent(t *testing.T) {
	f := newSyncFixture(t)
	f.content.set(func(string) (string, error) {
		return "", errors.New("export failed")
	})
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrUnreadable)
}

func TestSyncMissingCredential(t *testing.T) {
	f := newSyncFixture(t)
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	// No tenant record at all.
	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestSyncMissingAssistant(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.tenants.Save(context.Background(), &domain.Tenant{
		TenantID:            "tenant-1",
		EncryptedCredential: "enc:api-key",
	}))
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrMissingAssistant)
}

func TestSyncUploadRejected(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")
	f.backend.uploadErr = errors.New("quota exceeded")

	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrUploadRejected)

	rec, lookupErr := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, lookupErr)
	assert.Empty(t, rec.Fingerprint)
}

func TestSyncIndexingFailedLeavesRegistry(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")
	f.backend.statusSeq = []domain.IndexStatus{
		{State: domain.IndexFailed, Message: "unsupported encoding"},
	}

	_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, err, domain.ErrIndexingFailed)
	assert.ErrorContains(t, err, "unsupported encoding")

	rec, lookupErr := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, lookupErr)
	assert.Empty(t, rec.Fingerprint)
}

func TestSyncIndexingTimeoutLeavesRecordIdentical(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")
	f.backend.statusSeq = []domain.IndexStatus{{State: domain.IndexPending}}
	f.svc.SetIndexWait(20*time.Millisecond, 5*time.Millisecond)

	before, err := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, err)

	_, syncErr := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
	assert.ErrorIs(t, syncErr, domain.ErrIndexingTimeout)

	after, err := f.docs.Lookup(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncConcurrentTriggersUploadOnce(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	f.withRegistered(t, "doc-1", "tenant-1", "", "")

	// A manual trigger racing a scheduled cycle: the single-flight guard
	// serialises them, and the loser re-reads the updated registry and
	// decides "unchanged".
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sync(context.Background(), "doc-1", "tenant-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.backend.uploadCount())
}

func TestSyncEndToEndScenario(t *testing.T) {
	f := newSyncFixture(t)
	f.withTenant(t, "tenant-1")
	ctx := context.Background()

	// Register: row exists with empty fingerprint, nothing fetched.
	reg := NewRegistrationService(f.meta, f.docs, f.tenants)
	require.NoError(t, reg.Register(ctx, "doc-1", "tenant-1"))

	rec, err := f.docs.Lookup(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, rec.Fingerprint)
	assert.Empty(t, rec.Content)
	assert.Equal(t, "Plan", rec.DisplayName)

	// First sync ingests v1.
	res, err := f.svc.Sync(ctx, "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSynced, res.Outcome)

	h1 := domain.Fingerprint("v1")
	rec, err = f.docs.Lookup(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, h1, rec.Fingerprint)
	assert.Equal(t, "v1", rec.Content)
	assert.Equal(t, 1, f.backend.uploadCount())

	// Second sync with unchanged content: zero further uploads.
	res, err = f.svc.Sync(ctx, "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeUnchanged, res.Outcome)
	assert.Equal(t, 1, f.backend.uploadCount())

	// Content changes to v2: one more upload, registry follows.
	f.content.set(func(string) (string, error) { return "v2", nil })

	res, err = f.svc.Sync(ctx, "doc-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSynced, res.Outcome)

	h2 := domain.Fingerprint("v2")
	assert.NotEqual(t, h1, h2)
	rec, err = f.docs.Lookup(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, h2, rec.Fingerprint)
	assert.Equal(t, "v2", rec.Content)
	assert.Equal(t, 2, f.backend.uploadCount())
}
