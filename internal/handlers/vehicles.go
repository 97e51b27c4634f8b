package handlers

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// VehicleHandler serves the vehicle listing and detail endpoints. Each
// request loads a fresh snapshot, runs the engine's filters over it and
// attaches computed scores before responding.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	orgs     db.OrganizationCollection
	maint    db.MaintenanceCollection
	hours    db.HoursCollection
	scorer   *analytics.Scorer
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, orgs db.OrganizationCollection, maint db.MaintenanceCollection, hours db.HoursCollection, scorer *analytics.Scorer) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, orgs: orgs, maint: maint, hours: hours, scorer: scorer}
}

// VehicleView is a vehicle with its computed score attached.
type VehicleView struct {
	models.Vehicle
	Organization string         `json:"organization"`
	WearScore    int            `json:"wear_score"`
	Band         analytics.Band `json:"band"`
}

// VehicleDetail adds the per-vehicle history records.
type VehicleDetail struct {
	VehicleView
	Maintenance []models.Maintenance `json:"maintenance"`
	HoursUsage  []models.HoursUsage  `json:"hours_usage"`
}

// ScoreView is the standalone score response.
type ScoreView struct {
	WearScore int            `json:"wear_score"`
	Band      analytics.Band `json:"band"`
}

// List handles GET /api/vehicles with the shared filter parameters.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vehicles, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		http.Error(w, "Failed to load vehicles", http.StatusInternalServerError)
		return
	}
	orgs, err := h.orgs.FindOrganizations(r.Context(), "")
	if err != nil {
		http.Error(w, "Failed to load organizations", http.StatusInternalServerError)
		return
	}

	index := analytics.NewOrgIndex(orgs)
	matched := analytics.FilterVehicles(vehicles, index, filterFromQuery(r.URL.Query()))

	out := make([]VehicleView, len(matched))
	for i, v := range matched {
		out[i] = h.view(v, index)
	}
	respondJSON(w, http.StatusOK, out)
}

// Detail handles GET /api/vehicles/{id} and GET /api/vehicles/{id}/score.
func (h *VehicleHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	if len(parts) == 2 && parts[1] == "score" {
		score, band := h.scorer.Score(*vehicle)
		respondJSON(w, http.StatusOK, ScoreView{WearScore: score, Band: band})
		return
	}
	if len(parts) > 1 {
		http.NotFound(w, r)
		return
	}

	orgs, err := h.orgs.FindOrganizations(r.Context(), "")
	if err != nil {
		http.Error(w, "Failed to load organizations", http.StatusInternalServerError)
		return
	}
	index := analytics.NewOrgIndex(orgs)

	maint, err := h.maint.FindMaintenanceByVehicle(r.Context(), id)
	if err != nil {
		log.WithError(err).WithField("vehicle_id", id).Error("Failed to load maintenance history")
		maint = []models.Maintenance{}
	}
	hours, err := h.hours.FindHoursByVehicle(r.Context(), id)
	if err != nil {
		log.WithError(err).WithField("vehicle_id", id).Error("Failed to load hours history")
		hours = []models.HoursUsage{}
	}

	respondJSON(w, http.StatusOK, VehicleDetail{
		VehicleView: h.view(*vehicle, index),
		Maintenance: maint,
		HoursUsage:  hours,
	})
}

func (h *VehicleHandler) view(v models.Vehicle, index *analytics.OrgIndex) VehicleView {
	score, band := h.scorer.Score(v)
	return VehicleView{
		Vehicle:      v,
		Organization: index.Name(v.OrganizationID.Hex()),
		WearScore:    score,
		Band:         band,
	}
}
