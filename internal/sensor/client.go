package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/go-resty/resty/v2"
)

// Client reads the latest soil reading from the field sensor API.
type Client struct {
	url  string
	http *resty.Client
	pick func(n int) int
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: resty.New().SetTimeout(timeout),
		pick: rand.Intn,
	}
}

// Scenarios are the representative readings served when the sensor API is
// unreachable: multiple deficiency, acid pH warning and normal.
var Scenarios = []data.SensorReading{
	{Nitrogen: 35, Phosphorus: 15, Potassium: 70, PH: 5.2, Humidity: 65, Temperature: 25, Sunlight: 80},
	{Nitrogen: 75, Phosphorus: 35, Potassium: 120, PH: 5.4, Humidity: 70, Temperature: 22, Sunlight: 85},
	{Nitrogen: 85, Phosphorus: 45, Potassium: 150, PH: 6.5, Humidity: 75, Temperature: 24, Sunlight: 90},
}

// Fetch never fails: any transport, status or decoding problem yields a
// synthetic reading instead.
func (c *Client) Fetch(ctx context.Context) data.SensorReading {
	const op = "sensor.Fetch"
	log := slog.With("operation", op, "url", c.url)

	reading, err := c.fetchLive(ctx)
	if err != nil {
		log.Warn("Sensor unavailable, using synthetic reading", "error", err)
		return c.Synthetic()
	}
	log.Info("Sensor reading received",
		"nitrogen", reading.Nitrogen,
		"phosphorus", reading.Phosphorus,
		"potassium", reading.Potassium,
		"ph", reading.PH,
		"timestamp", reading.Timestamp,
	)
	return reading
}

func (c *Client) fetchLive(ctx context.Context) (data.SensorReading, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		Get(c.url)
	if err != nil {
		return data.SensorReading{}, fmt.Errorf("request sensor: %w", err)
	}
	if !resp.IsSuccess() {
		return data.SensorReading{}, fmt.Errorf("sensor returned HTTP %d", resp.StatusCode())
	}
	return data.NormalizeReading(resp.Body())
}

// Synthetic returns one of the fixed scenarios, stamped now and tagged.
func (c *Client) Synthetic() data.SensorReading {
	r := Scenarios[c.pick(len(Scenarios))]
	r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	r.Synthetic = true
	return r
}
