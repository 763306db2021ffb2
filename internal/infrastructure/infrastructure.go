// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, browser automation, notification
// delivery) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caesb-automation/baixa/internal/config"
	"github.com/caesb-automation/baixa/internal/notify"
	"github.com/caesb-automation/baixa/pkg/browser"
	"github.com/caesb-automation/baixa/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, browser launching, and notification delivery.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Browser   browser.Launcher
	Notifier  notify.Notifier

	skipInstall bool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	launcher := browser.NewPlaywright(browser.Config{
		Headless: !cfg.Portal.ShowBrowser,
		SlowMo:   cfg.Runner.SlowMoDuration(),
	})

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Email.Enabled {
		notifier = notify.NewSendGrid(notify.Config{
			Enabled:    cfg.Email.Enabled,
			From:       cfg.Email.From,
			FromName:   cfg.Email.FromName,
			Recipients: cfg.Email.Recipients,
			APIKey:     cfg.Email.SendGridAPIKey,
		}, logger)
	}

	return &Infrastructure{
		Lifecycle:   lc,
		Logger:      logger,
		Browser:     launcher,
		Notifier:    notifier,
		skipInstall: cfg.Portal.SkipInstall,
	}, nil
}

// Start prepares the browser runtime. Driver and browser installation is a
// no-op when the binaries are already present; skip_install avoids the check
// entirely in air-gapped deployments.
func (i *Infrastructure) Start() error {
	if i.skipInstall {
		i.Logger.Info("browser install check skipped")
		return nil
	}
	if err := browser.Install(); err != nil {
		return fmt.Errorf("browser install failed: %w", err)
	}
	return nil
}
