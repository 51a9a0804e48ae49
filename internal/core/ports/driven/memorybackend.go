package driven

import (
	"context"

	"github.com/harborist/contextd/internal/core/domain"
)

// MemoryBackend is one tenant's authenticated session with the hosted
// memory service. Network and API errors propagate to the caller.
type MemoryBackend interface {
	// CreateAssistant provisions a new assistant and returns its id.
	CreateAssistant(ctx context.Context, name, description string) (string, error)

	// UploadDocument uploads a text artifact to an assistant and returns
	// the artifact id. Indexing is asynchronous.
	UploadDocument(ctx context.Context, assistantID, title, body string) (string, error)

	// IndexStatus reports the indexing state of an uploaded artifact.
	IndexStatus(ctx context.Context, artifactID string) (*domain.IndexStatus, error)

	// Ask threads a question to an assistant and returns the answer with
	// the retrieved memories it drew on.
	Ask(ctx context.Context, assistantID, content string) (*domain.Answer, error)
}

// BackendFactory constructs a MemoryBackend session for one API credential.
// Credentials are per tenant, so callers decrypt and hand over the key at
// the call site rather than holding a shared authenticated client.
type BackendFactory interface {
	Client(apiKey string) MemoryBackend
}

// CredentialCipher is the opaque encrypt/decrypt of a credential string.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
