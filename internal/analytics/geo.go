package analytics

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// Assembler builds map-ready GeoJSON feature collections.
type Assembler struct {
	scorer *Scorer
}

// NewAssembler builds an assembler on top of a scorer.
func NewAssembler(scorer *Scorer) *Assembler {
	return &Assembler{scorer: scorer}
}

// BattalionPolygons enriches stored battalion-area polygons, optionally
// restricted to one municipality (exact match, as stored). A feature whose
// payload cannot be enriched is skipped and reported in the error slice;
// the rest of the collection still succeeds.
func (a *Assembler) BattalionPolygons(stored []models.StoredFeature, municipality string) (models.FeatureCollection, []error) {
	return enrichStored(stored, municipality)
}

// BasePoints enriches stored base-point features, same contract as
// BattalionPolygons.
func (a *Assembler) BasePoints(stored []models.StoredFeature, municipality string) (models.FeatureCollection, []error) {
	return enrichStored(stored, municipality)
}

func enrichStored(stored []models.StoredFeature, municipality string) (models.FeatureCollection, []error) {
	features := make([]models.Feature, 0, len(stored))
	var errs []error
	for _, sf := range stored {
		if municipality != "" && sf.Municipality != municipality {
			continue
		}
		f, err := enrichFeature(sf)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		features = append(features, f)
	}
	return models.NewFeatureCollection(features), errs
}

// enrichFeature copies the stored payload and overlays the computed
// municipality and battalion properties. Computed values win on key
// collision; that precedence is load-bearing for downstream map layers.
func enrichFeature(sf models.StoredFeature) (models.Feature, error) {
	geometry, ok := sf.GeoJSON["geometry"]
	if !ok || geometry == nil {
		return models.Feature{}, fmt.Errorf("feature %s: missing geometry", sf.ID.Hex())
	}

	props := map[string]interface{}{}
	if raw, ok := sf.GeoJSON["properties"]; ok && raw != nil {
		m, err := asPropertyMap(raw)
		if err != nil {
			return models.Feature{}, fmt.Errorf("feature %s: %w", sf.ID.Hex(), err)
		}
		for k, v := range m {
			props[k] = v
		}
	}
	props["municipality"] = sf.Municipality
	props["battalion"] = sf.Battalion

	return models.Feature{Type: "Feature", Geometry: geometry, Properties: props}, nil
}

// asPropertyMap accepts the map shapes the payload can arrive in: plain
// maps from JSON decoding and primitive.M/D from BSON decoding.
func asPropertyMap(raw interface{}) (map[string]interface{}, error) {
	switch m := raw.(type) {
	case map[string]interface{}:
		return m, nil
	case primitive.M:
		return m, nil
	case primitive.D:
		return m.Map(), nil
	default:
		return nil, fmt.Errorf("properties are not an object (got %T)", raw)
	}
}

// VehiclePoints selects vehicles through the full filter set and emits one
// point feature per vehicle with a complete position. Vehicles missing
// either coordinate are excluded. The wear score is computed inline here;
// this is the one place geo assembly scores vehicles itself.
func (a *Assembler) VehiclePoints(vehicles []models.Vehicle, orgs *OrgIndex, f VehicleFilter) models.FeatureCollection {
	matched := FilterVehicles(vehicles, orgs, f)
	features := make([]models.Feature, 0, len(matched))
	for _, v := range matched {
		if !v.HasCoordinates() {
			continue
		}
		score, band := a.scorer.Score(v)
		features = append(features, models.Feature{
			Type: "Feature",
			Geometry: map[string]interface{}{
				"type":        "Point",
				"coordinates": []float64{*v.Longitude, *v.Latitude},
			},
			Properties: map[string]interface{}{
				"vehicle_id":     v.ID.Hex(),
				"prefix":         v.Prefix,
				"plate":          v.Plate,
				"category":       v.Category,
				"organization":   orgs.Name(v.OrganizationID.Hex()),
				"municipality":   v.Municipality,
				"neighborhood":   v.Neighborhood,
				"area_type":      v.AreaType,
				"odometer_km":    v.OdometerKM,
				"month_hours":    v.MonthHours,
				"maintenance_6m": v.Maintenance6M,
				"wear_score":     score,
				"band":           string(band),
				"active":         v.Active,
			},
		})
	}
	return models.NewFeatureCollection(features)
}
