package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// StoredFeature is a geographic feature persisted independently of
// vehicles: a battalion-area polygon or a base point. GeoJSON holds the
// raw {"geometry": ..., "properties": ...} payload as uploaded; geometry
// is never validated or reprojected.
type StoredFeature struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Municipality string                 `bson:"municipality" json:"municipality"`
	Battalion    string                 `bson:"battalion" json:"battalion"`
	GeoJSON      map[string]interface{} `bson:"geojson" json:"geojson"`
}

// Feature is a GeoJSON Feature. Geometry is carried opaquely.
type Feature struct {
	Type       string                 `bson:"type" json:"type"`
	Geometry   interface{}            `bson:"geometry" json:"geometry"`
	Properties map[string]interface{} `bson:"properties" json:"properties"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a collection. Features is never
// nil so the JSON form always carries an array.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
