package handlers

import (
	"net/http"
	"sort"

	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// LookupHandler serves the distinct-value endpoints behind the filter
// dropdowns: municipalities, neighborhoods and categories.
type LookupHandler struct {
	vehicles db.VehicleCollection
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(vehicles db.VehicleCollection) *LookupHandler {
	return &LookupHandler{vehicles: vehicles}
}

// Municipalities handles GET /api/municipalities.
func (h *LookupHandler) Municipalities(w http.ResponseWriter, r *http.Request) {
	h.distinct(w, r, func(v models.Vehicle) (string, bool) {
		return v.Municipality, true
	})
}

// Neighborhoods handles GET /api/neighborhoods with an optional
// ?municipality= restriction (exact match).
func (h *LookupHandler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	municipality := r.URL.Query().Get("municipality")
	h.distinct(w, r, func(v models.Vehicle) (string, bool) {
		if municipality != "" && v.Municipality != municipality {
			return "", false
		}
		return v.Neighborhood, true
	})
}

// Categories handles GET /api/categories.
func (h *LookupHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.distinct(w, r, func(v models.Vehicle) (string, bool) {
		return v.Category, true
	})
}

func (h *LookupHandler) distinct(w http.ResponseWriter, r *http.Request, pick func(models.Vehicle) (string, bool)) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		http.Error(w, "Failed to load vehicles", http.StatusInternalServerError)
		return
	}
	seen := make(map[string]bool)
	values := []string{}
	for _, v := range vehicles {
		value, ok := pick(v)
		if !ok || value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	sort.Strings(values)
	respondJSON(w, http.StatusOK, values)
}
