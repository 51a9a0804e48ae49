package domain

import "time"

// DocumentRecord is the local mirror of one monitored external document.
// It tracks what was last successfully ingested so repeated syncs can detect
// change by content fingerprint alone.
type DocumentRecord struct {
	// DocumentID is the stable external identifier (Drive file id).
	DocumentID string

	// TenantID is the owning tenant.
	TenantID string

	// DisplayName is the source-reported title, refreshed on every
	// successful sync.
	DisplayName string

	// Fingerprint is the digest of the last successfully ingested content.
	// Empty string means registered but never ingested.
	Fingerprint string

	// LastModified is the source-reported modification time. Informational
	// only: change detection uses the content fingerprint, never this.
	LastModified string

	// Content is the last successfully ingested raw text.
	Content string

	// CreatedAt is when the record was registered.
	CreatedAt time.Time

	// UpdatedAt is when the record was last mutated.
	UpdatedAt time.Time
}

// Synced reports whether at least one successful sync has occurred.
func (r *DocumentRecord) Synced() bool {
	return r.Fingerprint != ""
}

// DocumentMetadata is the current source-side state of a document, as
// returned by a metadata fetch.
type DocumentMetadata struct {
	// ID is the external document identifier.
	ID string

	// Name is the current document title.
	Name string

	// ModifiedTime is the source-reported modification timestamp.
	ModifiedTime string

	// AccessLink is a browser-openable link to the document.
	AccessLink string
}
