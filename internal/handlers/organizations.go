package handlers

import (
	"net/http"
	"strings"

	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// OrganizationHandler serves the command hierarchy endpoints.
type OrganizationHandler struct {
	orgs db.OrganizationCollection
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgs db.OrganizationCollection) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

// List handles GET /api/organizations with an optional ?type= level filter.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	orgType := models.OrgType(r.URL.Query().Get("type"))
	switch orgType {
	case "", models.OrgCommand, models.OrgUnit, models.OrgBattalion:
	default:
		http.Error(w, "Invalid organization type", http.StatusBadRequest)
		return
	}
	orgs, err := h.orgs.FindOrganizations(r.Context(), orgType)
	if err != nil {
		http.Error(w, "Failed to load organizations", http.StatusInternalServerError)
		return
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	respondJSON(w, http.StatusOK, orgs)
}

// Children handles GET /api/organizations/{id}/children.
func (h *OrganizationHandler) Children(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/organizations/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "children" || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	children, err := h.orgs.FindChildren(r.Context(), parts[0])
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return
	}
	if children == nil {
		children = []models.Organization{}
	}
	respondJSON(w, http.StatusOK, children)
}
