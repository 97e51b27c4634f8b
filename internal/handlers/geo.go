package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/db"
	"github.com/fleetcmd/fleet-command/internal/models"
)

// Upload size cap for GeoJSON files.
const maxUploadBytes = 10 << 20

// GeoHandler serves the map layer endpoints.
type GeoHandler struct {
	vehicles   db.VehicleCollection
	orgs       db.OrganizationCollection
	battalions db.GeoCollection
	bases      db.GeoCollection
	assembler  *analytics.Assembler
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(vehicles db.VehicleCollection, orgs db.OrganizationCollection, battalions, bases db.GeoCollection, assembler *analytics.Assembler) *GeoHandler {
	return &GeoHandler{vehicles: vehicles, orgs: orgs, battalions: battalions, bases: bases, assembler: assembler}
}

// Battalions handles GET /api/geo/battalions.
func (h *GeoHandler) Battalions(w http.ResponseWriter, r *http.Request) {
	h.storedLayer(w, r, h.battalions, h.assembler.BattalionPolygons)
}

// Bases handles GET /api/geo/bases.
func (h *GeoHandler) Bases(w http.ResponseWriter, r *http.Request) {
	h.storedLayer(w, r, h.bases, h.assembler.BasePoints)
}

type assembleFunc func([]models.StoredFeature, string) (models.FeatureCollection, []error)

// storedLayer serves an enriched stored layer. Features that fail
// enrichment are dropped and logged; the remainder is served as a partial
// success.
func (h *GeoHandler) storedLayer(w http.ResponseWriter, r *http.Request, store db.GeoCollection, assemble assembleFunc) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	municipality := r.URL.Query().Get("municipality")
	stored, err := store.FindFeatures(r.Context(), municipality)
	if err != nil {
		http.Error(w, "Failed to load features", http.StatusInternalServerError)
		return
	}
	fc, errs := assemble(stored, municipality)
	for _, err := range errs {
		log.WithError(err).Warn("Skipping unenrichable feature")
	}
	respondJSON(w, http.StatusOK, fc)
}

// Vehicles handles GET /api/geo/vehicles with the shared filter parameters.
func (h *GeoHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, h.assembler.VehiclePoints(vehicles, index, filterFromQuery(r.URL.Query())))
}

// Upload handles POST /api/geo/upload?kind=battalions|bases with a
// multipart .geojson file. Each feature of the collection is stored with
// municipality and battalion pulled from its properties.
func (h *GeoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var store db.GeoCollection
	switch kind := r.URL.Query().Get("kind"); kind {
	case "battalions":
		store = h.battalions
	case "bases":
		store = h.bases
	default:
		http.Error(w, "kind must be battalions or bases", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".geojson") {
		http.Error(w, "File must be .geojson", http.StatusBadRequest)
		return
	}

	var collection struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry   interface{}            `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(file).Decode(&collection); err != nil {
		http.Error(w, "Invalid GeoJSON file", http.StatusBadRequest)
		return
	}
	if collection.Type != "FeatureCollection" {
		http.Error(w, "GeoJSON must be a FeatureCollection", http.StatusBadRequest)
		return
	}

	inserted := 0
	for _, f := range collection.Features {
		sf := models.StoredFeature{
			Municipality: stringProp(f.Properties, "municipality"),
			Battalion:    stringProp(f.Properties, "battalion"),
			GeoJSON: map[string]interface{}{
				"geometry":   f.Geometry,
				"properties": f.Properties,
			},
		}
		if err := store.InsertFeature(r.Context(), sf); err != nil {
			log.WithError(err).Error("Failed to store uploaded feature")
			continue
		}
		inserted++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "upload processed",
		"features": inserted,
	})
}

func stringProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	s, _ := props[key].(string)
	return s
}
