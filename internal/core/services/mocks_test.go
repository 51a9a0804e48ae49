package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// --- Mock collaborators shared by the service tests ---

// mockMetadataFetcher implements driven.MetadataFetcher.
type mockMetadataFetcher struct {
	fn func(documentID string) (*domain.DocumentMetadata, error)
}

func (m *mockMetadataFetcher) Metadata(_ context.Context, documentID string) (*domain.DocumentMetadata, error) {
	return m.fn(documentID)
}

// fixedMetadata returns the same metadata for every document.
func fixedMetadata(name, modified string) *mockMetadataFetcher {
	return &mockMetadataFetcher{fn: func(id string) (*domain.DocumentMetadata, error) {
		return &domain.DocumentMetadata{
			ID:           id,
			Name:         name,
			ModifiedTime: modified,
			AccessLink:   "https://docs.example.com/d/" + id,
		}, nil
	}}
}

// mockContentFetcher implements driven.ContentFetcher.
type mockContentFetcher struct {
	mu sync.Mutex
	fn func(documentID string) (string, error)
}

func (m *mockContentFetcher) Content(_ context.Context, documentID string) (string, error) {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	return fn(documentID)
}

func (m *mockContentFetcher) set(fn func(string) (string, error)) {
	m.mu.Lock()
	m.fn = fn
	m.mu.Unlock()
}

func fixedContent(content string) *mockContentFetcher {
	return &mockContentFetcher{fn: func(string) (string, error) {
		return content, nil
	}}
}

// uploadCall records one UploadDocument invocation.
type uploadCall struct {
	assistantID string
	title       string
	body        string
}

// mockBackend implements driven.MemoryBackend.
type mockBackend struct {
	mu sync.Mutex

	uploads     []uploadCall
	uploadErr   error
	nextArtifct string

	// statusSeq is consumed one entry per IndexStatus call; the last entry
	// repeats once exhausted.
	statusSeq   []domain.IndexStatus
	statusCalls int
	statusErr   error

	assistantID  string
	createCalled int

	answer *domain.Answer
	askErr error
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		nextArtifct: "artifact-1",
		assistantID: "asst-1",
		statusSeq:   []domain.IndexStatus{{State: domain.IndexIndexed}},
		answer:      &domain.Answer{Text: "answer"},
	}
}

func (m *mockBackend) CreateAssistant(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalled++
	return m.assistantID, nil
}

func (m *mockBackend) UploadDocument(_ context.Context, assistantID, title, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, uploadCall{assistantID: assistantID, title: title, body: body})
	return m.nextArtifct, nil
}

func (m *mockBackend) IndexStatus(_ context.Context, _ string) (*domain.IndexStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	idx := m.statusCalls
	if idx >= len(m.statusSeq) {
		idx = len(m.statusSeq) - 1
	}
	m.statusCalls++
	status := m.statusSeq[idx]
	return &status, nil
}

func (m *mockBackend) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	if m.askErr != nil {
		return nil, m.askErr
	}
	return m.answer, nil
}

func (m *mockBackend) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

// mockFactory implements driven.BackendFactory, handing out one shared
// backend and recording the API keys it was asked for.
type mockFactory struct {
	mu      sync.Mutex
	backend *mockBackend
	keys    []string
}

func (f *mockFactory) Client(apiKey string) driven.MemoryBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, apiKey)
	return f.backend
}

// plainCipher is a reversible stand-in for the real credential cipher.
type plainCipher struct{}

func (plainCipher) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (plainCipher) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", errors.New("not an encrypted value")
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

// mockRepoFetcher implements driven.RepoFileFetcher, recording every
// requested path.
type mockRepoFetcher struct {
	mu      sync.Mutex
	files   map[string]string
	failOn  map[string]error
	fetched []string
}

func newMockRepoFetcher() *mockRepoFetcher {
	return &mockRepoFetcher{
		files:  make(map[string]string),
		failOn: make(map[string]error),
	}
}

func (m *mockRepoFetcher) FetchFile(_ context.Context, _, _, _, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, path)
	if err, ok := m.failOn[path]; ok {
		return "", err
	}
	if content, ok := m.files[path]; ok {
		return content, nil
	}
	return "", errors.New("no such file")
}
