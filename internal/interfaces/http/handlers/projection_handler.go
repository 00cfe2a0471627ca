package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	app "github.com/civitas-ai/opinionspace/internal/application/opinionspace"
	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

// ProjectionHandler serves computed opinion-space projections.
type ProjectionHandler struct {
	service app.ProjectionService
	logger  logging.Logger
}

// NewProjectionHandler creates a projection handler.
func NewProjectionHandler(service app.ProjectionService, log logging.Logger) *ProjectionHandler {
	return &ProjectionHandler{service: service, logger: log}
}

// Get handles GET /api/v1/simulations/{simulationID}/opinion-space.
// The include_bridges query parameter adds the persuasion-bridge edge list.
func (h *ProjectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "simulationID")
	if id == "" {
		writeAppError(w, errors.NewValidation("simulation ID required"))
		return
	}

	opts := domain.Options{IncludeBridges: parseBoolParam(r, "include_bridges")}
	proj, err := h.service.GetProjection(r.Context(), id, opts)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, proj)
}

// Invalidate handles DELETE /api/v1/simulations/{simulationID}/opinion-space,
// dropping cached projections so the next read recomputes.
func (h *ProjectionHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "simulationID")
	if id == "" {
		writeAppError(w, errors.NewValidation("simulation ID required"))
		return
	}

	if err := h.service.InvalidateProjection(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
