package domain

import "time"

// Tenant is one isolated customer account. Each tenant maps to exactly one
// encrypted API credential and one assistant on the memory backend.
type Tenant struct {
	// TenantID is the unique tenant identifier.
	TenantID string

	// EncryptedCredential is the opaque encrypted API key for the memory
	// backend. Decrypted only at call sites that talk to the backend.
	EncryptedCredential string

	// AssistantID identifies the tenant's assistant on the memory backend.
	AssistantID string

	// CreatedAt is when the tenant was onboarded.
	CreatedAt time.Time
}

// IndexState is the backend-reported indexing state of an uploaded artifact.
type IndexState string

// Terminal and non-terminal indexing states.
const (
	IndexPending IndexState = "pending"
	IndexIndexed IndexState = "indexed"
	IndexFailed  IndexState = "failed"
)

// Terminal reports whether the state is final.
func (s IndexState) Terminal() bool {
	return s == IndexIndexed || s == IndexFailed
}

// IndexStatus is the status of one uploaded artifact on the memory backend.
type IndexStatus struct {
	// State is the current indexing state.
	State IndexState

	// Message carries backend detail, populated on failure.
	Message string
}

// Answer is the memory backend's response to a question, with the memories
// it retrieved to produce it.
type Answer struct {
	// Text is the assistant's reply.
	Text string

	// Sources are the retrieved memories the reply drew on.
	Sources []string
}
