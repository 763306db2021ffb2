package runner

import (
	"log/slog"
	"net/http"

	"github.com/caesb-automation/baixa/pkg/handlers"
	"github.com/caesb-automation/baixa/pkg/routes"
)

// Handler provides HTTP endpoints for run control and order listing.
type Handler struct {
	controller *Controller
	logger     *slog.Logger
}

// StartResponse is the JSON body returned when a run is accepted.
type StartResponse struct {
	JobID string `json:"job_id"`
}

// ListResponse is the JSON body returned by the listing endpoint.
type ListResponse struct {
	Orders []string `json:"orders"`
	Count  int      `json:"count"`
}

// NewHandler creates a Handler with the given controller and logger.
func NewHandler(controller *Controller, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		logger:     logger.With("handler", "runner"),
	}
}

// Routes returns the route group definition for run control endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/os",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/baixar", Handler: h.Start},
			{Method: "POST", Pattern: "/baixar/parar", Handler: h.Stop},
			{Method: "GET", Pattern: "/baixar/status", Handler: h.Status},
		},
	}
}

// List performs a one-off login and listing poll and returns the pending
// order numbers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.controller.ListOnce(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadGateway, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ListResponse{Orders: orders, Count: len(orders)})
}

// Start launches a background run and returns its job id with 202 Accepted.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	jobID, err := h.controller.Start()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, StartResponse{JobID: jobID})
}

// Stop requests cancellation of the active run.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Stop(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.controller.Status())
}

// Status returns the current controller state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.controller.Status())
}
