package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetcmd/fleet-command/internal/analytics"
	"github.com/fleetcmd/fleet-command/internal/models"
)

func newGeoHandler(f *fixture, battalions, bases *fakeGeo) *GeoHandler {
	return NewGeoHandler(f.vehicles, f.orgs, battalions, bases, analytics.NewAssembler(f.scorer))
}

func storedTestFeature(municipality, battalion string) models.StoredFeature {
	return models.StoredFeature{
		ID:           primitive.NewObjectID(),
		Municipality: municipality,
		Battalion:    battalion,
		GeoJSON: map[string]interface{}{
			"geometry": map[string]interface{}{
				"type":        "Point",
				"coordinates": []float64{-54.62, -20.47},
			},
			"properties": map[string]interface{}{"name": "hq"},
		},
	}
}

func TestGeoBattalions(t *testing.T) {
	f := newFixture(t)
	battalions := &fakeGeo{features: []models.StoredFeature{
		storedTestFeature("Campo Grande", "1st Battalion"),
		storedTestFeature("Dourados", "2nd Battalion"),
	}}
	h := newGeoHandler(f, battalions, &fakeGeo{})

	req := httptest.NewRequest(http.MethodGet, "/api/geo/battalions?municipality=Dourados", nil)
	rec := httptest.NewRecorder()
	h.Battalions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fc models.FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "2nd Battalion", fc.Features[0].Properties["battalion"])
}

func TestGeoBases_PartialSuccessOnBadFeature(t *testing.T) {
	f := newFixture(t)
	broken := models.StoredFeature{
		ID:           primitive.NewObjectID(),
		Municipality: "Campo Grande",
		GeoJSON:      map[string]interface{}{"properties": map[string]interface{}{}},
	}
	bases := &fakeGeo{features: []models.StoredFeature{broken, storedTestFeature("Campo Grande", "1st Battalion")}}
	h := newGeoHandler(f, &fakeGeo{}, bases)

	req := httptest.NewRequest(http.MethodGet, "/api/geo/bases", nil)
	rec := httptest.NewRecorder()
	h.Bases(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fc models.FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Len(t, fc.Features, 1)
}

func TestGeoVehicles(t *testing.T) {
	f := newFixture(t)
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := httptest.NewRequest(http.MethodGet, "/api/geo/vehicles", nil)
	rec := httptest.NewRecorder()
	h.Vehicles(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fc models.FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	// Only the SUV has coordinates.
	require.Len(t, fc.Features, 1)
	props := fc.Features[0].Properties
	assert.Equal(t, "FC-0001", props["prefix"])
	assert.Equal(t, "1st Battalion", props["organization"])
	assert.Equal(t, "Critical", props["band"])
}

func TestGeoVehicles_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.orgs.fail = true
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := httptest.NewRequest(http.MethodGet, "/api/geo/vehicles", nil)
	rec := httptest.NewRecorder()
	h.Vehicles(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func uploadRequest(t *testing.T, url, filename string, payload interface{}) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(part).Encode(payload))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestGeoUpload(t *testing.T) {
	f := newFixture(t)
	battalions := &fakeGeo{}
	h := newGeoHandler(f, battalions, &fakeGeo{})

	payload := map[string]interface{}{
		"type": "FeatureCollection",
		"features": []map[string]interface{}{
			{
				"geometry": map[string]interface{}{"type": "Point", "coordinates": []float64{-54.6, -20.4}},
				"properties": map[string]interface{}{
					"municipality": "Campo Grande",
					"battalion":    "1st Battalion",
				},
			},
		},
	}
	req := uploadRequest(t, "/api/geo/upload?kind=battalions", "areas.geojson", payload)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, battalions.features, 1)
	assert.Equal(t, "Campo Grande", battalions.features[0].Municipality)
	assert.Equal(t, "1st Battalion", battalions.features[0].Battalion)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(1), out["features"])
}

func TestGeoUpload_InvalidKind(t *testing.T) {
	f := newFixture(t)
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := uploadRequest(t, "/api/geo/upload?kind=roads", "areas.geojson", map[string]interface{}{"type": "FeatureCollection"})
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeoUpload_RequiresGeojsonExtension(t *testing.T) {
	f := newFixture(t)
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := uploadRequest(t, "/api/geo/upload?kind=bases", "areas.json", map[string]interface{}{"type": "FeatureCollection"})
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeoUpload_RejectsNonFeatureCollection(t *testing.T) {
	f := newFixture(t)
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := uploadRequest(t, "/api/geo/upload?kind=bases", "point.geojson", map[string]interface{}{"type": "Feature"})
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeoUpload_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	h := newGeoHandler(f, &fakeGeo{}, &fakeGeo{})

	req := httptest.NewRequest(http.MethodGet, "/api/geo/upload?kind=bases", nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
