package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Every sync abort path has
// its own sentinel so callers can tell access problems, registry problems,
// tenant configuration problems, and backend problems apart.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Registration errors.

	// ErrTenantNotFound indicates the referenced tenant has not been onboarded.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrAlreadyRegistered indicates the document is already being monitored.
	// Registration is idempotent, so this is informational, not fatal.
	ErrAlreadyRegistered = errors.New("document already registered")

	// ErrNotRegistered indicates a sync was requested for a document that has
	// no registry row. Sync never creates rows implicitly.
	ErrNotRegistered = errors.New("document not registered")

	// Access errors. Transient and permanent causes are deliberately not
	// distinguished: both abort a single document's sync and both are
	// retried on the next poll cycle.

	// ErrInaccessible indicates document metadata could not be fetched
	// (deleted, permission revoked, or source unavailable).
	ErrInaccessible = errors.New("document metadata inaccessible")

	// ErrUnreadable indicates document content could not be fetched.
	ErrUnreadable = errors.New("document content unreadable")

	// Tenant configuration errors. These mean tenant setup is incomplete,
	// not that the document changed.

	// ErrMissingCredential indicates the tenant has no stored API credential.
	ErrMissingCredential = errors.New("tenant credential missing")

	// ErrMissingAssistant indicates the tenant has no assistant on the
	// memory backend.
	ErrMissingAssistant = errors.New("tenant assistant missing")

	// Memory backend errors. The registry is left untouched on all of these
	// so the next attempt is a clean retry.

	// ErrUploadRejected indicates the backend refused the uploaded artifact.
	ErrUploadRejected = errors.New("upload rejected")

	// ErrIndexingFailed indicates the backend reported terminal failure while
	// indexing the uploaded artifact.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrIndexingTimeout indicates indexing did not reach a terminal state
	// within the bounded wait.
	ErrIndexingTimeout = errors.New("indexing timed out")

	// Push ingestion errors.

	// ErrPushIgnored indicates no file in the push survived filtering and
	// fetching. Reported as a non-event rather than a failure.
	ErrPushIgnored = errors.New("push ignored")
)
