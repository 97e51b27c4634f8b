package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureCollection(t *testing.T) {
	fc := NewFeatureCollection(nil)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.NotNil(t, fc.Features)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	// An empty collection serializes with an empty array, never null.
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}
