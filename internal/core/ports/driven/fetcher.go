package driven

import (
	"context"

	"github.com/harborist/contextd/internal/core/domain"
)

// MetadataFetcher returns the current source-side metadata for a document.
// Any failure means the document is inaccessible.
type MetadataFetcher interface {
	Metadata(ctx context.Context, documentID string) (*domain.DocumentMetadata, error)
}

// ContentFetcher returns the current textual content of a document.
// Any failure means the document is unreadable.
type ContentFetcher interface {
	Content(ctx context.Context, documentID string) (string, error)
}

// RepoFileFetcher retrieves one file's raw content from a repository at a
// given ref.
type RepoFileFetcher interface {
	FetchFile(ctx context.Context, owner, repo, ref, path string) (string, error)
}
