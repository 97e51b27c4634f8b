package handlers

import (
	"net/http"

	"github.com/fleetcmd/fleet-command/internal/config"
)

// ParamsHandler exposes the scoring reference tables for introspection.
// The tables are process-lifetime constants; the update verb exists in the
// API surface but is intentionally not implemented.
type ParamsHandler struct {
	cfg config.Scoring
}

// NewParamsHandler creates a new params handler
func NewParamsHandler(cfg config.Scoring) *ParamsHandler {
	return &ParamsHandler{cfg: cfg}
}

// Params handles GET and PUT /api/params.
func (h *ParamsHandler) Params(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"reference_km":         h.cfg.ReferenceKM,
			"default_reference_km": h.cfg.DefaultReferenceKM,
			"maintenance_cap":      h.cfg.MaintenanceCap,
			"area_factors":         h.cfg.AreaFactors,
			"km_weight":            h.cfg.KMWeight,
			"maintenance_weight":   h.cfg.MaintenanceWeight,
		})
	case http.MethodPut:
		http.Error(w, "Parameter updates are not implemented", http.StatusNotImplemented)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
