// internal/anomaly/detector.go
package anomaly

import (
	"github.com/PMacajol/Agro-MAGU/internal/config"
	"github.com/PMacajol/Agro-MAGU/internal/data"
)

// check is one bound test in evaluation order.
type check struct {
	field    string
	severity string
	value    func(data.SensorReading) float64
	bounds   func(config.Rule) (low, high *float64)
}

// Detector evaluates readings against a fixed threshold table.
type Detector struct {
	thresholds config.ThresholdSet
	policy     string
	checks     []check
}

func NewDetector(thresholds config.ThresholdSet, policy string) *Detector {
	d := &Detector{thresholds: thresholds, policy: policy}
	d.checks = buildChecks(policy)
	return d
}

func (d *Detector) Thresholds() config.ThresholdSet { return d.thresholds }
func (d *Detector) Policy() string                  { return d.policy }

// Evaluate reports whether any checked bound is breached. It stops at the first
// breach, so only the presence of a breach is observable.
func (d *Detector) Evaluate(r data.SensorReading) bool {
	for _, c := range d.checks {
		if _, breached := d.test(c, r); breached {
			return true
		}
	}
	return false
}

// Breaches lists every violated bound in evaluation order. It does not affect
// the alert decision.
func (d *Detector) Breaches(r data.SensorReading) []data.Breach {
	var out []data.Breach
	for _, c := range d.checks {
		if b, breached := d.test(c, r); breached {
			out = append(out, b)
		}
	}
	return out
}

func (d *Detector) test(c check, r data.SensorReading) (data.Breach, bool) {
	rule := d.rule(c.field)
	low, high := c.bounds(rule)
	v := c.value(r)

	if low != nil && v < *low {
		return data.Breach{Field: c.field, Value: v, Bound: *low, Below: true, Severity: c.severity}, true
	}
	if high != nil && v > *high {
		return data.Breach{Field: c.field, Value: v, Bound: *high, Severity: c.severity}, true
	}
	return data.Breach{}, false
}

func (d *Detector) rule(field string) config.Rule {
	t := d.thresholds
	switch field {
	case "nitrogen":
		return t.Nitrogen
	case "phosphorus":
		return t.Phosphorus
	case "potassium":
		return t.Potassium
	case "ph":
		return t.PH
	case "humidity":
		return t.Humidity
	case "temperature":
		return t.Temperature
	case "sunlight":
		return t.Sunlight
	}
	return config.Rule{}
}

func criticalBounds(r config.Rule) (*float64, *float64) {
	if r.Critical != nil {
		return r.Critical, nil
	}
	return r.CriticalLow, r.CriticalHigh
}

func warningBounds(r config.Rule) (*float64, *float64) {
	low, high := r.Min, r.Max
	return &low, &high
}

var fieldValues = map[string]func(data.SensorReading) float64{
	"nitrogen":    func(r data.SensorReading) float64 { return r.Nitrogen },
	"phosphorus":  func(r data.SensorReading) float64 { return r.Phosphorus },
	"potassium":   func(r data.SensorReading) float64 { return r.Potassium },
	"ph":          func(r data.SensorReading) float64 { return r.PH },
	"humidity":    func(r data.SensorReading) float64 { return r.Humidity },
	"temperature": func(r data.SensorReading) float64 { return r.Temperature },
	"sunlight":    func(r data.SensorReading) float64 { return r.Sunlight },
}

func buildChecks(policy string) []check {
	critical := []string{"nitrogen", "phosphorus", "potassium", "ph", "temperature"}
	warning := []string{"nitrogen", "phosphorus", "potassium", "ph"}
	if policy == config.PolicyAll {
		critical = append(critical, "humidity", "sunlight")
		warning = append(warning, "temperature", "humidity", "sunlight")
	}

	checks := make([]check, 0, len(critical)+len(warning))
	for _, f := range critical {
		checks = append(checks, check{field: f, severity: data.SeverityCritical, value: fieldValues[f], bounds: criticalBounds})
	}
	for _, f := range warning {
		checks = append(checks, check{field: f, severity: data.SeverityWarn, value: fieldValues[f], bounds: warningBounds})
	}
	return checks
}
