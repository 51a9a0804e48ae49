package driving

import "context"

// SyncOutcome classifies a completed sync.
type SyncOutcome string

// Sync outcomes. Failures are reported as errors, not outcomes.
const (
	// OutcomeUnchanged means the stored fingerprint matched the live
	// content; nothing was uploaded or written.
	OutcomeUnchanged SyncOutcome = "unchanged"

	// OutcomeSynced means changed content was uploaded, confirmed indexed,
	// and the registry updated.
	OutcomeSynced SyncOutcome = "synced"
)

// SyncResult describes a successful sync invocation.
type SyncResult struct {
	// DocumentID is the synced document.
	DocumentID string

	// Outcome is what the sync decided.
	Outcome SyncOutcome

	// DisplayName is the current source-reported title.
	DisplayName string

	// Fingerprint is the registry fingerprint after the call.
	Fingerprint string
}

// SyncService brings one document's registry entry into agreement with its
// live source state and propagates changes to the memory backend.
type SyncService interface {
	// Sync runs the fetch, fingerprint, compare, upload, index-wait,
	// persist pipeline for one document. The registry is mutated only
	// after the backend confirms indexing. Every abort path returns a
	// distinct domain sentinel error.
	Sync(ctx context.Context, documentID, tenantID string) (*SyncResult, error)
}

// RegistrationService adds documents to the monitored set.
type RegistrationService interface {
	// Register validates reachability and creates the initial registry row
	// with an empty fingerprint. Idempotent: re-registering an existing
	// document returns domain.ErrAlreadyRegistered and mutates nothing.
	// Registration never fetches content.
	Register(ctx context.Context, documentID, tenantID string) error
}
