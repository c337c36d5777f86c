package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_Validate(t *testing.T) {
	lat, lon := 10.0, 20.0
	bad := LocationType("satellite")

	tests := []struct {
		name    string
		sample  Sample
		message string
	}{
		{name: "valid", sample: Sample{Latitude: &lat, Longitude: &lon}},
		{name: "missing latitude", sample: Sample{Longitude: &lon}, message: "latitude and longitude are required"},
		{name: "missing longitude", sample: Sample{Latitude: &lat}, message: "latitude and longitude are required"},
		{name: "unknown type", sample: Sample{Latitude: &lat, Longitude: &lon, LocationType: &bad}, message: "locationType must be manual or gps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sample.Validate()
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.message, validationErr.Message)
		})
	}
}

func TestResolveLocationType(t *testing.T) {
	manual, gps := LocationTypeManual, LocationTypeGPS
	name := "Дом"

	assert.Equal(t, LocationTypeGPS, ResolveLocationType(nil, nil))
	assert.Equal(t, LocationTypeManual, ResolveLocationType(nil, &name))
	assert.Equal(t, LocationTypeGPS, ResolveLocationType(&gps, &name))
	assert.Equal(t, LocationTypeManual, ResolveLocationType(&manual, nil))
}

func TestNormalizeName(t *testing.T) {
	empty, name := "", "Дом"
	assert.Nil(t, NormalizeName(nil))
	assert.Nil(t, NormalizeName(&empty))
	assert.Equal(t, &name, NormalizeName(&name))
}

func TestLocationType_JSON(t *testing.T) {
	var lt LocationType
	require.NoError(t, json.Unmarshal([]byte(`"manual"`), &lt))
	assert.Equal(t, LocationTypeManual, lt)

	assert.Error(t, json.Unmarshal([]byte(`"satellite"`), &lt))
	assert.Error(t, json.Unmarshal([]byte(`5`), &lt))

	var scanned LocationType
	require.NoError(t, scanned.Scan([]byte("gps")))
	assert.Equal(t, LocationTypeGPS, scanned)
	assert.Error(t, scanned.Scan(42))
}
