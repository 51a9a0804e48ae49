package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// Ensure PushService implements the interface.
var _ driving.PushService = (*PushService)(nil)

// githubSourceName labels push-originated artifacts in the provenance header.
const githubSourceName = "GitHub"

// PushService turns push events into forwarded file content. Push-triggered
// content bypasses the document registry: it is not change-hash-tracked and
// is delivered every time a push touches a file.
type PushService struct {
	files    driven.RepoFileFetcher
	tenants  driven.TenantStore
	cipher   driven.CredentialCipher
	backends driven.BackendFactory
}

// NewPushService creates a push ingestion service.
func NewPushService(
	files driven.RepoFileFetcher,
	tenants driven.TenantStore,
	cipher driven.CredentialCipher,
	backends driven.BackendFactory,
) *PushService {
	return &PushService{
		files:    files,
		tenants:  tenants,
		cipher:   cipher,
		backends: backends,
	}
}

// HandlePush deduplicates the pushed paths, filters them through the skip
// lists, fetches the survivors, and forwards each to the tenant's
// assistant. Individual fetch failures are skipped, not fatal. A push with
// zero surviving files is reported as ignored.
func (s *PushService) HandlePush(ctx context.Context, tenantID string, event *domain.PushEvent) (*driving.PushResult, error) {
	if event == nil || event.Owner == "" || event.Repo == "" {
		return nil, domain.ErrInvalidInput
	}

	var paths []string
	for _, p := range event.ChangedPaths() {
		if domain.ShouldIngestPath(p) {
			paths = append(paths, p)
		} else {
			logger.Debug("Skipping filtered path: %s", p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no ingestable paths in push to %s/%s",
			domain.ErrPushIgnored, event.Owner, event.Repo)
	}

	files := s.fetchFiles(ctx, event, paths)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files fetched from push to %s/%s",
			domain.ErrPushIgnored, event.Owner, event.Repo)
	}

	backend, assistantID, err := resolveBackend(ctx, s.tenants, s.cipher, s.backends, tenantID)
	if err != nil {
		return nil, err
	}

	ingested := 0
	for _, f := range files {
		meta := &domain.DocumentMetadata{
			Name:         f.Path,
			ModifiedTime: time.Now().UTC().Format(time.RFC3339),
			AccessLink: fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s",
				event.Owner, event.Repo, event.Branch, f.Path),
		}
		if _, err := backend.UploadDocument(ctx, assistantID, f.Path,
			composeArtifact(githubSourceName, meta, f.Content)); err != nil {
			logger.Warn("Upload failed for %s: %v", f.Path, err)
			continue
		}
		ingested++
	}
	if ingested == 0 {
		return nil, fmt.Errorf("%w: all uploads failed", domain.ErrUploadRejected)
	}

	logger.Info("Ingested %d of %d pushed files from %s/%s",
		ingested, len(paths), event.Owner, event.Repo)
	return &driving.PushResult{
		FilesIngested: ingested,
		FilesSkipped:  len(paths) - ingested,
	}, nil
}

// fetchFiles retrieves each surviving path, skipping individual failures.
func (s *PushService) fetchFiles(ctx context.Context, event *domain.PushEvent, paths []string) []domain.PushFile {
	files := make([]domain.PushFile, 0, len(paths))
	for _, p := range paths {
		content, err := s.files.FetchFile(ctx, event.Owner, event.Repo, event.Branch, p)
		if err != nil {
			logger.Warn("Fetch failed for %s: %v", p, err)
			continue
		}
		files = append(files, domain.PushFile{Path: p, Content: content})
	}
	return files
}
