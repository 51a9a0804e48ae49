// Package drive fetches document metadata and content from Google Drive.
package drive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure Service implements the fetcher interfaces.
var (
	_ driven.MetadataFetcher = (*Service)(nil)
	_ driven.ContentFetcher  = (*Service)(nil)
)

// Google Workspace MIME types that must be exported rather than downloaded.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxContentSize is the maximum size for fetched content (5MB).
const MaxContentSize = 5 * 1024 * 1024

// metadataFields is the field mask requested on metadata reads.
const metadataFields = "id, name, modifiedTime, mimeType, webViewLink"

// Service fetches Drive file metadata and text content.
type Service struct {
	svc *drive.Service
}

// NewService creates a Drive fetcher using the provided TokenSource.
func NewService(ctx context.Context, ts oauth2.TokenSource) (*Service, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Service{svc: svc}, nil
}

// NewServiceFromAPI wraps an already-constructed Drive API service.
func NewServiceFromAPI(svc *drive.Service) *Service {
	return &Service{svc: svc}
}

// Metadata retrieves a file's metadata by id.
func (s *Service) Metadata(ctx context.Context, documentID string) (*domain.DocumentMetadata, error) {
	file, err := s.svc.Files.Get(documentID).
		Fields(metadataFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get file metadata: %w", err)
	}

	return &domain.DocumentMetadata{
		ID:           file.Id,
		Name:         file.Name,
		ModifiedTime: file.ModifiedTime,
		AccessLink:   file.WebViewLink,
	}, nil
}

// Content retrieves a file's text content. Google Workspace files are
// exported to a text format; regular files are downloaded as-is.
func (s *Service) Content(ctx context.Context, documentID string) (string, error) {
	file, err := s.svc.Files.Get(documentID).
		Fields("id, mimeType").
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	switch file.MimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSlides:
		return s.export(ctx, documentID, ExportMimeText)
	case MimeTypeGoogleSheet:
		return s.export(ctx, documentID, ExportMimeCSV)
	}

	resp, err := s.svc.Files.Get(documentID).
		SupportsAllDrives(true).
		Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize))
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}
	return string(data), nil
}

// export converts a Google Workspace file to the given format.
func (s *Service) export(ctx context.Context, fileID, exportMime string) (string, error) {
	resp, err := s.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(data), nil
}
