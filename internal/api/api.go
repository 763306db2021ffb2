// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"errors"
	"net/http"

	"github.com/caesb-automation/baixa/internal/config"
	"github.com/caesb-automation/baixa/internal/infrastructure"
	"github.com/caesb-automation/baixa/internal/runner"
	"github.com/caesb-automation/baixa/pkg/middleware"
	"github.com/caesb-automation/baixa/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// An active run is stopped as part of coordinated shutdown.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	infra.Lifecycle.OnShutdown(func() {
		<-infra.Lifecycle.Context().Done()
		if err := domain.Runner.Stop(); err != nil && !errors.Is(err, runner.ErrNotRunning) {
			runtime.Logger.Warn("stopping run on shutdown failed", "error", err)
		}
	})

	return m, nil
}
