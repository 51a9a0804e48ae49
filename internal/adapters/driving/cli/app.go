package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/harborist/contextd/internal/adapters/driven/backboard"
	"github.com/harborist/contextd/internal/adapters/driven/config/file"
	"github.com/harborist/contextd/internal/adapters/driven/secrets"
	"github.com/harborist/contextd/internal/adapters/driven/storage/sqlite"
	driveconn "github.com/harborist/contextd/internal/connectors/drive"
	ghconn "github.com/harborist/contextd/internal/connectors/github"
	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/services"
	"github.com/harborist/contextd/internal/logger"
)

// app holds the wired service graph shared by all commands.
type app struct {
	config       *file.ConfigStore
	store        *sqlite.Store
	sync         *services.SyncService
	registration *services.RegistrationService
	poller       *services.Poller
	tenants      *services.TenantService
	push         *services.PushService
	docs         driven.DocumentStore
	chats        driven.ChatStore
}

var (
	appOnce     sync.Once
	appInstance *app
	appErr      error
)

// getApp builds the service graph once per process.
func getApp(ctx context.Context) (*app, error) {
	appOnce.Do(func() {
		appInstance, appErr = buildApp(ctx)
	})
	return appInstance, appErr
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString(file.KeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cipher, err := buildCipher(cfg)
	if err != nil {
		return nil, err
	}

	backends := backboard.NewFactory(cfg.GetString(file.KeyBackboardBaseURL), 0)

	meta, content := buildDriveFetchers(ctx, cfg)
	files := ghconn.NewFetcher(ctx, cfg.GetString(file.KeyGithubToken))

	docs := store.DocumentStore()
	tenants := store.TenantStore()

	syncSvc := services.NewSyncService(meta, content, docs, tenants, cipher, backends)

	return &app{
		config:       cfg,
		store:        store,
		sync:         syncSvc,
		registration: services.NewRegistrationService(meta, docs, tenants),
		poller:       services.NewPoller(syncSvc),
		tenants:      services.NewTenantService(tenants, cipher, backends),
		push:         services.NewPushService(files, tenants, cipher, backends),
		docs:         docs,
		chats:        store.ChatStore(),
	}, nil
}

// buildCipher derives the credential cipher from the configured passphrase.
// The salt is generated on first use and persisted so stored credentials
// stay decryptable.
func buildCipher(cfg *file.ConfigStore) (driven.CredentialCipher, error) {
	passphrase := cfg.GetString(file.KeyEncryptionPassphrase)
	if passphrase == "" {
		return nil, fmt.Errorf("config key %q is required", file.KeyEncryptionPassphrase)
	}

	encodedSalt := cfg.GetString(file.KeyEncryptionSalt)
	if encodedSalt == "" {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		encodedSalt = base64.StdEncoding.EncodeToString(raw)
		if err := cfg.Set(file.KeyEncryptionSalt, encodedSalt); err != nil {
			return nil, fmt.Errorf("persist salt: %w", err)
		}
	}
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	return secrets.New(passphrase, salt)
}

// buildDriveFetchers constructs the Drive connector when credentials are
// configured, and an erroring placeholder otherwise so Drive-independent
// commands keep working.
func buildDriveFetchers(ctx context.Context, cfg *file.ConfigStore) (driven.MetadataFetcher, driven.ContentFetcher) {
	credentialsPath := cfg.GetString(file.KeyDriveCredentials)
	tokenPath := cfg.GetString(file.KeyDriveToken)
	if credentialsPath == "" || tokenPath == "" {
		logger.Debug("Drive credentials not configured; Drive operations disabled")
		unavailable := driveUnavailable{}
		return unavailable, unavailable
	}

	ts, err := driveconn.TokenSourceFromFiles(ctx, credentialsPath, tokenPath)
	if err != nil {
		logger.Warn("Drive auth failed: %v", err)
		unavailable := driveUnavailable{}
		return unavailable, unavailable
	}

	svc, err := driveconn.NewService(ctx, ts)
	if err != nil {
		logger.Warn("Drive service init failed: %v", err)
		unavailable := driveUnavailable{}
		return unavailable, unavailable
	}
	return svc, svc
}

// driveUnavailable reports missing Drive configuration on every call.
type driveUnavailable struct{}

func (driveUnavailable) Metadata(context.Context, string) (*domain.DocumentMetadata, error) {
	return nil, fmt.Errorf("google drive is not configured: set %q and %q",
		file.KeyDriveCredentials, file.KeyDriveToken)
}

func (driveUnavailable) Content(context.Context, string) (string, error) {
	return "", fmt.Errorf("google drive is not configured: set %q and %q",
		file.KeyDriveCredentials, file.KeyDriveToken)
}
