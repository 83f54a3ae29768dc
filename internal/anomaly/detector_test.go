package anomaly

import (
	"testing"

	"github.com/PMacajol/Agro-MAGU/internal/config"
	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalReading() data.SensorReading {
	return data.SensorReading{
		Nitrogen: 85, Phosphorus: 45, Potassium: 150, PH: 6.5,
		Humidity: 75, Temperature: 24, Sunlight: 90,
	}
}

func TestEvaluate_NormalReading(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyCore)
	assert.False(t, d.Evaluate(normalReading()))
	assert.Empty(t, d.Breaches(normalReading()))
}

func TestEvaluate_CriticalScenario(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyCore)
	r := data.SensorReading{Nitrogen: 35, Phosphorus: 15, Potassium: 70, PH: 5.2, Temperature: 25}

	assert.True(t, d.Evaluate(r))

	breaches := d.Breaches(r)
	require.NotEmpty(t, breaches)
	assert.Equal(t, "nitrogen", breaches[0].Field)
	assert.Equal(t, data.SeverityCritical, breaches[0].Severity)
	assert.True(t, breaches[0].Below)
}

func TestEvaluate_SingleFieldOutsideBand(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyCore)

	tests := []struct {
		name   string
		mutate func(*data.SensorReading)
	}{
		{"nitrogen low warning", func(r *data.SensorReading) { r.Nitrogen = 59 }},
		{"nitrogen high warning", func(r *data.SensorReading) { r.Nitrogen = 121 }},
		{"nitrogen critical", func(r *data.SensorReading) { r.Nitrogen = 39 }},
		{"phosphorus low", func(r *data.SensorReading) { r.Phosphorus = 29 }},
		{"phosphorus high", func(r *data.SensorReading) { r.Phosphorus = 61 }},
		{"potassium low", func(r *data.SensorReading) { r.Potassium = 99 }},
		{"potassium high", func(r *data.SensorReading) { r.Potassium = 201 }},
		{"ph acid warning", func(r *data.SensorReading) { r.PH = 5.4 }},
		{"ph alkaline warning", func(r *data.SensorReading) { r.PH = 7.1 }},
		{"ph critical", func(r *data.SensorReading) { r.PH = 7.6 }},
		{"temperature critical low", func(r *data.SensorReading) { r.Temperature = 11 }},
		{"temperature critical high", func(r *data.SensorReading) { r.Temperature = 36 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := normalReading()
			tc.mutate(&r)
			assert.True(t, d.Evaluate(r))
			assert.NotEmpty(t, d.Breaches(r))
		})
	}
}

func TestEvaluate_BoundsAreInclusive(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyCore)
	r := data.SensorReading{Nitrogen: 60, Phosphorus: 60, Potassium: 200, PH: 5.5, Temperature: 35}
	assert.False(t, d.Evaluate(r))
}

func TestEvaluate_CorePolicyIgnoresHumidityAndSunlight(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyCore)
	r := normalReading()
	r.Humidity = 10
	r.Sunlight = 10
	r.Temperature = 32 // outside warning band, inside critical band

	assert.False(t, d.Evaluate(r))
}

func TestEvaluate_AllPolicy(t *testing.T) {
	d := NewDetector(config.DefaultThresholds(), config.PolicyAll)

	r := normalReading()
	r.Humidity = 55
	assert.True(t, d.Evaluate(r))
	assert.Equal(t, []data.Breach{{Field: "humidity", Value: 55, Bound: 60, Below: true, Severity: data.SeverityWarn}}, d.Breaches(r))

	r = normalReading()
	r.Sunlight = 50
	breaches := d.Breaches(r)
	require.Len(t, breaches, 2)
	assert.Equal(t, data.SeverityCritical, breaches[0].Severity)
	assert.Equal(t, data.SeverityWarn, breaches[1].Severity)

	r = normalReading()
	r.Temperature = 32
	assert.True(t, d.Evaluate(r))

	assert.False(t, d.Evaluate(normalReading()))
}
