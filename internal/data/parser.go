// internal/data/parser.go
package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyPayload is returned when the provider sent an empty array or null.
var ErrEmptyPayload = errors.New("sensor payload has no readings")

// DefaultPH is used when the payload carries no pH value.
const DefaultPH = 6.5

// Accepted spellings per field, in priority order.
var (
	nitrogenKeys    = []string{"nitrogen", "nitrogeno", "n"}
	phosphorusKeys  = []string{"phosphorus", "fosforo", "p"}
	potassiumKeys   = []string{"potassium", "potasio", "k"}
	phKeys          = []string{"ph", "pH"}
	humidityKeys    = []string{"humidity", "humedad", "h"}
	temperatureKeys = []string{"temperature", "temperatura", "temp"}
	sunlightKeys    = []string{"sunlight", "luz_solar", "luz"}
	timestampKeys   = []string{"timestamp", "fecha"}
)

// NormalizeReading maps a provider payload (an object, or an array whose first
// element is used) onto a SensorReading, defaulting every absent field.
func NormalizeReading(raw []byte) (SensorReading, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return SensorReading{}, ErrEmptyPayload
	}

	var obj map[string]any
	if raw[0] == '[' {
		var list []map[string]any
		if err := json.Unmarshal(raw, &list); err != nil {
			return SensorReading{}, fmt.Errorf("decode sensor array: %w", err)
		}
		if len(list) == 0 || list[0] == nil {
			return SensorReading{}, ErrEmptyPayload
		}
		obj = list[0]
	} else if err := json.Unmarshal(raw, &obj); err != nil {
		return SensorReading{}, fmt.Errorf("decode sensor object: %w", err)
	}
	if obj == nil {
		return SensorReading{}, ErrEmptyPayload
	}

	return FromMap(obj), nil
}

// FromMap builds a reading from an already decoded payload.
func FromMap(obj map[string]any) SensorReading {
	r := SensorReading{
		Nitrogen:    pickFloat(obj, nitrogenKeys, 0),
		Phosphorus:  pickFloat(obj, phosphorusKeys, 0),
		Potassium:   pickFloat(obj, potassiumKeys, 0),
		PH:          pickFloat(obj, phKeys, DefaultPH),
		Humidity:    pickFloat(obj, humidityKeys, 0),
		Temperature: pickFloat(obj, temperatureKeys, 0),
		Sunlight:    pickFloat(obj, sunlightKeys, 0),
		Timestamp:   pickString(obj, timestampKeys),
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return r
}

// pickFloat returns the first alias that is present, non-null and numeric.
func pickFloat(obj map[string]any, keys []string, def float64) float64 {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f
			}
		}
	}
	return def
}

func pickString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			// epoch seconds
			return time.Unix(int64(s), 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}
