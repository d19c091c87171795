// Package app wires the bridge components from configuration. It is shared by
// the bridge process and the login tool so both use the same session file.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/smartrent-bridge/accessories"
	"github.com/jrsteele09/smartrent-bridge/accessories/filecache"
	"github.com/jrsteele09/smartrent-bridge/auth"
	"github.com/jrsteele09/smartrent-bridge/devices"
	"github.com/jrsteele09/smartrent-bridge/internal/config"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
	"github.com/jrsteele09/smartrent-bridge/sessions/filestore"
	"github.com/jrsteele09/smartrent-bridge/token"
)

type App struct {
	Config       config.Config
	Logger       zerolog.Logger
	SessionStore *filestore.Store
	Sessions     *auth.SessionManager
	Devices      *devices.Client
	Accessories  *accessories.Registry
}

// New builds the component graph. ctx bounds token acquisition triggered by
// device requests.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	store := filestore.New(cfg.GetStoragePath())
	exchanger := token.NewClient(cfg.GetAPIBaseURL(), logger, token.WithTimeout(cfg.GetRequestTimeout()))

	manager, err := auth.NewSessionManager(store, exchanger, logger,
		auth.WithDiscardCorruptSession(cfg.GetDiscardCorruptSession()),
	)
	if err != nil {
		return nil, fmt.Errorf("[app New] %w", err)
	}

	deviceClient := devices.NewClient(cfg.GetAPIBaseURL(), manager.TokenSource(ctx, Credentials(cfg)), logger,
		devices.WithTimeout(cfg.GetRequestTimeout()),
	)

	registry, err := accessories.NewRegistry(deviceClient, logger,
		accessories.WithUnitName(cfg.GetUnitName()),
		accessories.WithCache(filecache.New(cfg.GetStoragePath())),
	)
	if err != nil {
		return nil, fmt.Errorf("[app New] %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		SessionStore: store,
		Sessions:     manager,
		Devices:      deviceClient,
		Accessories:  registry,
	}, nil
}

// Credentials returns the configured SmartRent credentials.
func Credentials(cfg config.SmartRentConfig) auth.Credentials {
	return auth.Credentials{
		Login:         oauthmodel.LoginCredentials{Email: cfg.GetEmail(), Password: cfg.GetPassword()},
		TwoFactorCode: cfg.GetTfaCode(),
	}
}

// Start obtains an access token and, when that succeeds, publishes the
// accessories found by discovery. A token that could not be saved is still
// good enough to start with.
func (a *App) Start(ctx context.Context) error {
	if err := a.Accessories.Restore(); err != nil {
		a.Logger.Warn().Err(err).Msg("Ignoring accessory cache")
	}

	if _, err := a.Sessions.GetAccessToken(ctx, Credentials(a.Config)); err != nil {
		if !errors.Is(err, errors.ErrPersistence) {
			return fmt.Errorf("get access token: %w", err)
		}
		a.Logger.Warn().Err(err).Msg("Continuing with an unsaved session")
	}

	result, err := a.Accessories.Reconcile(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Int("added", len(result.Added)).
		Int("restored", len(result.Restored)).
		Int("removed", len(result.Removed)).
		Int("skipped", len(result.Skipped)).
		Msg("Accessories ready")
	return nil
}
