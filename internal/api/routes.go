package api

import (
	"net/http"

	"github.com/caesb-automation/baixa/internal/runner"
	"github.com/caesb-automation/baixa/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		runner.NewHandler(domain.Runner, runtime.Logger).Routes(),
	)
}
