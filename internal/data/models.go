// internal/data/models.go
package data

import "time"

// SensorReading is one snapshot of the seven monitored soil and environment
// parameters. It is built fresh every cycle and never mutated.
type SensorReading struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"ph"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
	Sunlight    float64 `json:"sunlight"`
	Timestamp   string  `json:"timestamp"`
	Synthetic   bool    `json:"is_mock_data,omitempty"` // true when drawn from the fallback scenarios
}

// Recommendation is a fertilizer recommendation as produced by the language
// model or the local templates. JSON names follow the model's response schema.
type Recommendation struct {
	Diagnosis     string   `json:"diagnostico"`
	Name          string   `json:"nombre_recomendacion"`
	Dose          string   `json:"dosis_manzana"`
	Product       string   `json:"producto_sugerido"`
	Price         string   `json:"precio_aproximado"`
	Schedule      string   `json:"esquema_aplicacion"`
	Effectiveness string   `json:"eficacia_esperada,omitempty"`
	Benefits      []string `json:"beneficios_tecnicos,omitempty"`
	Precautions   []string `json:"precauciones,omitempty"`
	Complementary []string `json:"recomendaciones_complementarias,omitempty"`
	Source        string   `json:"source"` // "provider" or "fallback"
}

const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// Severity of a threshold breach.
const (
	SeverityWarn     = "WARN"
	SeverityCritical = "CRITICAL"
)

// Breach describes one violated bound.
type Breach struct {
	Field    string  `json:"field"`
	Value    float64 `json:"value"`
	Bound    float64 `json:"bound"`
	Below    bool    `json:"below"`
	Severity string  `json:"severity"`
}

// AlertRecord is kept in the poller's history for every cycle that alerted.
type AlertRecord struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Reading        SensorReading  `json:"sensor_data"`
	Breaches       []Breach       `json:"breaches,omitempty"`
	Recommendation Recommendation `json:"fertilizer_recommendation"`
	Notified       bool           `json:"notified"`
	NotifyError    string         `json:"notify_error,omitempty"`
}
