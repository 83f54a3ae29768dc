package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxRecorder writes every fetched reading as a point for the dashboard's
// historical charts.
type InfluxRecorder struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	client := influxdb2.NewClient(url, token)
	return &InfluxRecorder{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
	}
}

// RecordReading writes one reading. Synthetic readings are tagged so charts can
// exclude them.
func (r *InfluxRecorder) RecordReading(ctx context.Context, reading data.SensorReading) error {
	p := influxdb2.NewPoint(
		"soil_reading",
		map[string]string{
			"crop":      "frijol",
			"synthetic": fmt.Sprintf("%t", reading.Synthetic),
		},
		ReadingFields(reading),
		readingTime(reading),
	)
	if err := r.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write reading point: %w", err)
	}
	return nil
}

func (r *InfluxRecorder) Close() {
	r.client.Close()
}

// ReadingFields is the field set written per reading.
func ReadingFields(reading data.SensorReading) map[string]interface{} {
	return map[string]interface{}{
		"nitrogen":    reading.Nitrogen,
		"phosphorus":  reading.Phosphorus,
		"potassium":   reading.Potassium,
		"ph":          reading.PH,
		"humidity":    reading.Humidity,
		"temperature": reading.Temperature,
		"sunlight":    reading.Sunlight,
	}
}

func readingTime(reading data.SensorReading) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, reading.Timestamp); err == nil {
			return t
		}
	}
	log.Printf("Unparseable reading timestamp %q, using server time", reading.Timestamp)
	return time.Now()
}
