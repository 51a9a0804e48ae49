package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// Default bounds for the indexing wait.
const (
	// DefaultIndexWait is the ceiling on waiting for the backend to reach
	// a terminal indexing state.
	DefaultIndexWait = 60 * time.Second

	// DefaultPollSpacing is the gap between indexing status checks.
	DefaultPollSpacing = 2 * time.Second
)

// driveSourceName labels Drive-originated artifacts in the provenance header.
const driveSourceName = "Google Drive"

// SyncService decides, for a single document, whether it is new, unchanged,
// or changed, and runs the fetch, fingerprint, compare, upload, index-wait,
// persist pipeline. The registry is mutated only after the backend confirms
// indexing, so every failure leaves a clean retry for the next cycle.
type SyncService struct {
	meta     driven.MetadataFetcher
	content  driven.ContentFetcher
	docs     driven.DocumentStore
	tenants  driven.TenantStore
	cipher   driven.CredentialCipher
	backends driven.BackendFactory

	indexWait   time.Duration
	pollSpacing time.Duration

	// Per-(tenant, document) single-flight guard. A manual trigger and a
	// scheduled cycle racing on the same document would otherwise both
	// decide "changed" and both upload.
	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewSyncService creates a sync service with the default indexing bounds.
func NewSyncService(
	meta driven.MetadataFetcher,
	content driven.ContentFetcher,
	docs driven.DocumentStore,
	tenants driven.TenantStore,
	cipher driven.CredentialCipher,
	backends driven.BackendFactory,
) *SyncService {
	return &SyncService{
		meta:        meta,
		content:     content,
		docs:        docs,
		tenants:     tenants,
		cipher:      cipher,
		backends:    backends,
		indexWait:   DefaultIndexWait,
		pollSpacing: DefaultPollSpacing,
		inflight:    make(map[string]*sync.Mutex),
	}
}

// SetIndexWait overrides the indexing wait bounds. Used by tests and by
// deployments with slower indexing pipelines.
func (s *SyncService) SetIndexWait(ceiling, spacing time.Duration) {
	s.indexWait = ceiling
	s.pollSpacing = spacing
}

// Sync brings one document's registry entry into agreement with its live
// source state.
func (s *SyncService) Sync(ctx context.Context, documentID, tenantID string) (*driving.SyncResult, error) {
	unlock := s.acquire(tenantID, documentID)
	defer unlock()

	// 1. Metadata fetch. Failure means inaccessible: no registry mutation.
	meta, err := s.meta.Metadata(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInaccessible, documentID, err)
	}

	// 2. Content fetch.
	content, err := s.content.Content(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnreadable, documentID, err)
	}

	// 3. Fingerprint the live content.
	fingerprint := domain.Fingerprint(content)

	// 4. Compare against the registry. Sync never creates rows: absence is
	// a first-class error, not an implicit registration.
	rec, err := s.docs.Lookup(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotRegistered, documentID)
		}
		return nil, fmt.Errorf("lookup document: %w", err)
	}

	if rec.Fingerprint == fingerprint {
		logger.Debug("No changes detected in %s", meta.Name)
		return &driving.SyncResult{
			DocumentID:  documentID,
			Outcome:     driving.OutcomeUnchanged,
			DisplayName: meta.Name,
			Fingerprint: fingerprint,
		}, nil
	}

	if rec.Synced() {
		logger.Info("Changes detected in %s", meta.Name)
	} else {
		logger.Info("Processing new document: %s", meta.Name)
	}

	// 5. Resolve the tenant credential and assistant.
	backend, assistantID, err := resolveBackend(ctx, s.tenants, s.cipher, s.backends, tenantID)
	if err != nil {
		return nil, err
	}

	// 6. Upload the composed blob.
	logger.Info("Uploading %s to memory backend", meta.Name)
	artifactID, err := backend.UploadDocument(ctx, assistantID, meta.Name, composeArtifact(driveSourceName, meta, content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadRejected, err)
	}

	// 7. Wait for a terminal indexing state within the bounded window.
	if err := s.awaitIndexed(ctx, backend, artifactID, meta.Name); err != nil {
		return nil, err
	}

	// 8. The only registry mutation, and only after confirmed indexing.
	now := time.Now().UTC()
	rec.DisplayName = meta.Name
	rec.Fingerprint = fingerprint
	rec.LastModified = meta.ModifiedTime
	rec.Content = content
	rec.UpdatedAt = now
	if err := s.docs.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}

	logger.Info("Document synced: %s", meta.Name)
	return &driving.SyncResult{
		DocumentID:  documentID,
		Outcome:     driving.OutcomeSynced,
		DisplayName: meta.Name,
		Fingerprint: fingerprint,
	}, nil
}

// awaitIndexed polls the backend's indexing status at a fixed spacing until
// the artifact reaches a terminal state or the bounded wait elapses. The
// sleep is context-aware so shutdown is not held up by the wait.
func (s *SyncService) awaitIndexed(ctx context.Context, backend driven.MemoryBackend, artifactID, name string) error {
	deadline := time.Now().Add(s.indexWait)

	for {
		status, err := backend.IndexStatus(ctx, artifactID)
		if err != nil {
			return fmt.Errorf("%w: status check: %w", domain.ErrUploadRejected, err)
		}

		switch status.State {
		case domain.IndexIndexed:
			logger.Info("Document indexed: %s", name)
			return nil
		case domain.IndexFailed:
			return fmt.Errorf("%w: %s", domain.ErrIndexingFailed, status.Message)
		}

		if time.Now().Add(s.pollSpacing).After(deadline) {
			logger.Warn("Indexing timeout for %s", name)
			return fmt.Errorf("%w: %s", domain.ErrIndexingTimeout, name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollSpacing):
		}
	}
}

// acquire takes the single-flight lock for one (tenant, document) pair and
// returns the release function. Lock entries are kept for the process
// lifetime; the monitored set is small and stable.
func (s *SyncService) acquire(tenantID, documentID string) func() {
	key := tenantID + "/" + documentID

	s.mu.Lock()
	m, ok := s.inflight[key]
	if !ok {
		m = &sync.Mutex{}
		s.inflight[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
