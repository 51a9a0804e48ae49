// Package httpapi exposes the context services over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	ghconn "github.com/harborist/contextd/internal/connectors/github"
	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// DefaultPollInterval is used when a start-polling request omits one.
const DefaultPollInterval = 5 * time.Minute

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server routes HTTP requests to the context services. It is a thin shim:
// parse, delegate, map errors to status codes.
type Server struct {
	tenants      driving.TenantService
	registration driving.RegistrationService
	sync         driving.SyncService
	poller       driving.Poller
	push         driving.PushService
	docs         driven.DocumentStore
}

// NewServer creates the HTTP API server.
func NewServer(
	tenants driving.TenantService,
	registration driving.RegistrationService,
	syncSvc driving.SyncService,
	poller driving.Poller,
	push driving.PushService,
	docs driven.DocumentStore,
) *Server {
	return &Server{
		tenants:      tenants,
		registration: registration,
		sync:         syncSvc,
		poller:       poller,
		push:         push,
		docs:         docs,
	}
}

// ServeHTTP dispatches requests by path and method.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS allow-all for browser clients.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch {
	case r.URL.Path == "/healthz" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.URL.Path == "/tenants" && r.Method == http.MethodPost:
		s.handleCreateTenant(w, r)
	case r.URL.Path == "/messages/query" && r.Method == http.MethodPost:
		s.handleQuery(w, r)
	case r.URL.Path == "/drive/register" && r.Method == http.MethodPost:
		s.handleDriveRegister(w, r)
	case r.URL.Path == "/drive/process" && r.Method == http.MethodPost:
		s.handleDriveProcess(w, r)
	case r.URL.Path == "/drive/start-polling" && r.Method == http.MethodPost:
		s.handleStartPolling(w, r)
	case r.URL.Path == "/drive/documents" && r.Method == http.MethodGet:
		s.handleListDocuments(w, r)
	case r.URL.Path == "/github/push" && r.Method == http.MethodPost:
		s.handleGithubPush(w, r)
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

type createTenantRequest struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tenant, err := s.tenants.Onboard(r.Context(), req.TenantID, req.APIKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":       "created",
		"tenant_id":    tenant.TenantID,
		"assistant_id": tenant.AssistantID,
	})
}

type queryRequest struct {
	TenantID string `json:"tenant_id"`
	Content  string `json:"content"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := s.tenants.Ask(r.Context(), req.TenantID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  answer.Text,
		"sources": sources,
	})
}

type driveRegisterRequest struct {
	TenantID string `json:"tenant_id"`
	Document string `json:"document"`
}

func (s *Server) handleDriveRegister(w http.ResponseWriter, r *http.Request) {
	var req driveRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Accept either a share URL or a bare file id.
	documentID := req.Document
	if strings.Contains(documentID, "http") {
		documentID = domain.ExtractFileID(documentID)
	}
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "invalid Drive URL or file id")
		return
	}

	if err := s.registration.Register(r.Context(), documentID, req.TenantID); err != nil {
		// Re-registering is a no-op, not a failure.
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":      "already_registered",
				"document_id": documentID,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":      "registered",
		"document_id": documentID,
	})
}

type driveProcessRequest struct {
	TenantID   string `json:"tenant_id"`
	DocumentID string `json:"document_id"`
}

func (s *Server) handleDriveProcess(w http.ResponseWriter, r *http.Request) {
	var req driveProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.sync.Sync(r.Context(), req.DocumentID, req.TenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "processed",
		"document_id":  result.DocumentID,
		"outcome":      string(result.Outcome),
		"display_name": result.DisplayName,
	})
}

type startPollingRequest struct {
	TenantID        string `json:"tenant_id"`
	IntervalSeconds int    `json:"interval_seconds"`
}

func (s *Server) handleStartPolling(w http.ResponseWriter, r *http.Request) {
	var req startPollingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	interval := DefaultPollInterval
	if req.IntervalSeconds > 0 {
		interval = time.Duration(req.IntervalSeconds) * time.Second
	}

	records, err := s.docs.ListByTenant(r.Context(), req.TenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound,
			"no documents registered for this tenant; register documents first")
		return
	}

	documentIDs := make([]string, len(records))
	for i, rec := range records {
		documentIDs[i] = rec.DocumentID
	}

	// The loop must outlive this request.
	s.poller.Start(context.WithoutCancel(r.Context()), req.TenantID, documentIDs, interval)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":           "polling_started",
		"tenant_id":        req.TenantID,
		"document_count":   len(documentIDs),
		"interval_seconds": int(interval.Seconds()),
	})
}

// documentView is the list representation of a registry record.
type documentView struct {
	DocumentID   string `json:"document_id"`
	DisplayName  string `json:"display_name"`
	LastModified string `json:"last_modified"`
	Synced       bool   `json:"synced"`
	UpdatedAt    string `json:"updated_at"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	records, err := s.docs.ListByTenant(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]documentView, len(records))
	for i, rec := range records {
		views[i] = documentView{
			DocumentID:   rec.DocumentID,
			DisplayName:  rec.DisplayName,
			LastModified: rec.LastModified,
			Synced:       rec.Synced(),
			UpdatedAt:    rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_id":      tenantID,
		"document_count": len(views),
		"documents":      views,
	})
}

func (s *Server) handleGithubPush(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := ghconn.DecodePushEvent(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid push payload")
		return
	}

	result, err := s.push.HandlePush(r.Context(), tenantID, event)
	if err != nil {
		if errors.Is(err, domain.ErrPushIgnored) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":         "ignored",
				"files_ingested": 0,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ingested",
		"files_ingested": result.FilesIngested,
		"files_skipped":  result.FilesSkipped,
	})
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps domain sentinels to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTenantNotFound),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrInaccessible),
		errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrMissingCredential),
		errors.Is(err, domain.ErrMissingAssistant):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnreadable),
		errors.Is(err, domain.ErrUploadRejected),
		errors.Is(err, domain.ErrIndexingFailed),
		errors.Is(err, domain.ErrIndexingTimeout):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Warn("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
