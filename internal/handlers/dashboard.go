package handlers

import (
	"errors"
	"net/http"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// DashboardHandler serves the fleet-wide aggregation endpoints.
type DashboardHandler struct {
	vehicles    db.VehicleCollection
	orgs        db.OrganizationCollection
	reporter    *analytics.Reporter
	recommender *analytics.Recommender
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(vehicles db.VehicleCollection, orgs db.OrganizationCollection, reporter *analytics.Reporter, recommender *analytics.Recommender) *DashboardHandler {
	return &DashboardHandler{vehicles: vehicles, orgs: orgs, reporter: reporter, recommender: recommender}
}

// KPIs handles GET /api/dashboard/kpis.
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	vehicles, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.reporter.KPIs(vehicles))
}

// Categories handles GET /api/dashboard/categories.
func (h *DashboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	vehicles, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.reporter.ByCategory(vehicles))
}

// Values handles GET /api/dashboard/values.
func (h *DashboardHandler) Values(w http.ResponseWriter, r *http.Request) {
	vehicles, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.reporter.ValueByCategory(vehicles))
}

// TopOdometer handles GET /api/dashboard/top_odometer.
func (h *DashboardHandler) TopOdometer(w http.ResponseWriter, r *http.Request) {
	h.topN(w, r, h.reporter.TopByOdometer)
}

// TopHours handles GET /api/dashboard/top_hours.
func (h *DashboardHandler) TopHours(w http.ResponseWriter, r *http.Request) {
	h.topN(w, r, h.reporter.TopByMonthHours)
}

// TopMaintenance handles GET /api/dashboard/top_maintenance.
func (h *DashboardHandler) TopMaintenance(w http.ResponseWriter, r *http.Request) {
	h.topN(w, r, h.reporter.TopByMaintenance)
}

// Recommendations handles GET /api/recommendations.
func (h *DashboardHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	vehicles, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	index, ok := h.orgIndex(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.recommender.Disposals(vehicles, index))
}

type rankFunc func([]models.Vehicle, *analytics.OrgIndex, int) ([]analytics.RankedVehicle, error)

func (h *DashboardHandler) topN(w http.ResponseWriter, r *http.Request, rank rankFunc) {
	vehicles, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	index, ok := h.orgIndex(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	ranked, err := rank(vehicles, index, limit)
	if err != nil {
		if errors.Is(err, analytics.ErrLimitOutOfRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to rank vehicles", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

func (h *DashboardHandler) snapshot(w http.ResponseWriter, r *http.Request) ([]models.Vehicle, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		http.Error(w, "Failed to load vehicles", http.StatusInternalServerError)
		return nil, false
	}
	return vehicles, true
}

func (h *DashboardHandler) orgIndex(w http.ResponseWriter, r *http.Request) (*analytics.OrgIndex, bool) {
	orgs, err := h.orgs.FindOrganizations(r.Context(), "")
	if err != nil {
		http.Error(w, "Failed to load organizations", http.StatusInternalServerError)
		return nil, false
	}
	return analytics.NewOrgIndex(orgs), true
}
