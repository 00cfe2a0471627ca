package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	app "github.com/civitas-ai/opinionspace/internal/application/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// SimulationHandler serves read access to stored simulations.
type SimulationHandler struct {
	service app.ProjectionService
	logger  logging.Logger
}

// NewSimulationHandler creates a simulation handler.
func NewSimulationHandler(service app.ProjectionService, log logging.Logger) *SimulationHandler {
	return &SimulationHandler{service: service, logger: log}
}

// simulationListItem is the trimmed listing view; result payloads stay out of
// list responses.
type simulationListItem struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Status       simulation.Status `json:"status"`
	ClusterCount int               `json:"cluster_count"`
	CreatedAt    common.Timestamp  `json:"created_at"`
}

// List handles GET /api/v1/simulations.
func (h *SimulationHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	sims, total, err := h.service.ListSimulations(r.Context(), p)
	if err != nil {
		writeAppError(w, err)
		return
	}

	items := make([]simulationListItem, 0, len(sims))
	for _, sim := range sims {
		items = append(items, simulationListItem{
			ID:           sim.ID,
			Title:        sim.Title,
			Status:       sim.Status,
			ClusterCount: len(sim.Clusters),
			CreatedAt:    common.Timestamp(sim.CreatedAt),
		})
	}

	p.Total = total
	resp := common.NewSuccessResponse(items)
	resp.Pagination = &p
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/simulations/{simulationID}.
func (h *SimulationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "simulationID")
	if id == "" {
		writeAppError(w, errors.NewValidation("simulation ID required"))
		return
	}

	sim, err := h.service.GetSimulation(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, sim)
}
