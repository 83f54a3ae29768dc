package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReading_EnglishKeys(t *testing.T) {
	raw := []byte(`{"nitrogen": 85, "phosphorus": 45, "potassium": 150, "ph": 6.5,
		"humidity": 75, "temperature": 24, "sunlight": 90, "timestamp": "2025-06-01T10:00:00Z"}`)

	r, err := NormalizeReading(raw)
	require.NoError(t, err)

	assert.Equal(t, SensorReading{
		Nitrogen: 85, Phosphorus: 45, Potassium: 150, PH: 6.5,
		Humidity: 75, Temperature: 24, Sunlight: 90,
		Timestamp: "2025-06-01T10:00:00Z",
	}, r)
}

func TestNormalizeReading_LocalizedKeysInArray(t *testing.T) {
	raw := []byte(`[
		{"nitrogeno": 35, "fosforo": 15, "potasio": 70, "pH": 5.2, "humedad": 65,
		 "temperatura": 25, "luz_solar": 80, "fecha": "2025-06-01"},
		{"nitrogeno": 99}
	]`)

	r, err := NormalizeReading(raw)
	require.NoError(t, err)

	assert.Equal(t, 35.0, r.Nitrogen)
	assert.Equal(t, 15.0, r.Phosphorus)
	assert.Equal(t, 70.0, r.Potassium)
	assert.Equal(t, 5.2, r.PH)
	assert.Equal(t, 65.0, r.Humidity)
	assert.Equal(t, 25.0, r.Temperature)
	assert.Equal(t, 80.0, r.Sunlight)
	assert.Equal(t, "2025-06-01", r.Timestamp)
}

func TestNormalizeReading_ShortKeysAndStrings(t *testing.T) {
	raw := []byte(`{"n": "61.5", "p": 31, "k": 101, "h": 70, "temp": 20, "luz": 75}`)

	r, err := NormalizeReading(raw)
	require.NoError(t, err)

	assert.Equal(t, 61.5, r.Nitrogen)
	assert.Equal(t, 31.0, r.Phosphorus)
	assert.Equal(t, 101.0, r.Potassium)
	assert.Equal(t, 70.0, r.Humidity)
	assert.Equal(t, 20.0, r.Temperature)
	assert.Equal(t, 75.0, r.Sunlight)
}

func TestNormalizeReading_FirstPresentNonNullWins(t *testing.T) {
	raw := []byte(`{"nitrogen": null, "nitrogeno": 0, "n": 50}`)

	r, err := NormalizeReading(raw)
	require.NoError(t, err)

	// nitrogeno is present and non-null, so zero is a real value
	assert.Equal(t, 0.0, r.Nitrogen)
}

func TestNormalizeReading_Defaults(t *testing.T) {
	r, err := NormalizeReading([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.Nitrogen)
	assert.Equal(t, 0.0, r.Sunlight)
	assert.Equal(t, DefaultPH, r.PH)
	_, perr := time.Parse(time.RFC3339, r.Timestamp)
	assert.NoError(t, perr)
	assert.False(t, r.Synthetic)
}

func TestNormalizeReading_Errors(t *testing.T) {
	_, err := NormalizeReading([]byte(`[]`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = NormalizeReading([]byte(`null`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = NormalizeReading([]byte(`<html>`))
	assert.Error(t, err)

	_, err = NormalizeReading([]byte(`"text"`))
	assert.Error(t, err)
}
