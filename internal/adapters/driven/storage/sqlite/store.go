package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/harborist/contextd/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// registry store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.contextd/data/contextd.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".contextd", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "contextd.db")

	// WAL mode for better concurrency between the poller and the API.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// TenantStore returns a TenantStore interface backed by this store.
func (s *Store) TenantStore() driven.TenantStore {
	return &tenantStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1).
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Lookup retrieves a record by external document id.
func (s *documentStore) Lookup(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, tenant_id, display_name, fingerprint, last_modified, content, created_at, updated_at
		FROM documents WHERE document_id = ?
	`, documentID)

	rec, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return rec, nil
}

// Upsert stores or replaces a record in one logical write.
func (s *documentStore) Upsert(ctx context.Context, rec *domain.DocumentRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (document_id, tenant_id, display_name, fingerprint, last_modified, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			display_name = excluded.display_name,
			fingerprint = excluded.fingerprint,
			last_modified = excluded.last_modified,
			content = excluded.content,
			updated_at = excluded.updated_at
	`, rec.DocumentID, rec.TenantID, rec.DisplayName, rec.Fingerprint,
		rec.LastModified, rec.Content, rec.CreatedAt, rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ListByTenant returns all records owned by a tenant.
func (s *documentStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.DocumentRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, tenant_id, display_name, fingerprint, last_modified, content, created_at, updated_at
		FROM documents WHERE tenant_id = ? ORDER BY created_at, document_id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return records, nil
}

// scanDocument reads one documents row through the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	var createdAt, updatedAt sql.NullTime
	if err := scan(&rec.DocumentID, &rec.TenantID, &rec.DisplayName, &rec.Fingerprint,
		&rec.LastModified, &rec.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	return &rec, nil
}

// ==================== Tenant Store ====================

// tenantStore implements driven.TenantStore.
type tenantStore struct {
	store *Store
}

var _ driven.TenantStore = (*tenantStore)(nil)

// Lookup retrieves a tenant by id.
func (s *tenantStore) Lookup(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT tenant_id, encrypted_credential, assistant_id, created_at
		FROM tenants WHERE tenant_id = ?
	`, tenantID)

	var tenant domain.Tenant
	var createdAt sql.NullTime
	if err := row.Scan(&tenant.TenantID, &tenant.EncryptedCredential,
		&tenant.AssistantID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning tenant: %w", err)
	}
	if createdAt.Valid {
		tenant.CreatedAt = createdAt.Time
	}
	return &tenant, nil
}

// Save stores a tenant record.
func (s *tenantStore) Save(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant_id, encrypted_credential, assistant_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			encrypted_credential = excluded.encrypted_credential,
			assistant_id = excluded.assistant_id
	`, tenant.TenantID, tenant.EncryptedCredential, tenant.AssistantID, tenant.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving tenant: %w", err)
	}
	return nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// Append stores one chat message.
func (s *chatStore) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.LoggedAt.IsZero() {
		msg.LoggedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, chat_id, channel_name, sender, text, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ChatID, msg.ChannelName, msg.Sender, msg.Text, msg.LoggedAt)

	if err != nil {
		return fmt.Errorf("saving chat message: %w", err)
	}
	return nil
}

// List returns stored messages for a chat, oldest first.
func (s *chatStore) List(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chat_id, channel_name, sender, text, logged_at
		FROM chat_messages WHERE chat_id = ? ORDER BY logged_at, id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.ChatMessage
		var loggedAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.ChannelName,
			&msg.Sender, &msg.Text, &loggedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		if loggedAt.Valid {
			msg.LoggedAt = loggedAt.Time
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat messages: %w", err)
	}

	return messages, nil
}
