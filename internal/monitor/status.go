package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/PMacajol/Agro-MAGU/internal/notify"
)

type Status struct {
	Running         bool              `json:"is_running"`
	TotalAlerts     int               `json:"total_alerts"`
	LastAlert       *data.AlertRecord `json:"last_alert"`
	LastCheck       *time.Time        `json:"last_check"`
	NextRun         *time.Time        `json:"next_run,omitempty"`
	IntervalSeconds float64           `json:"interval_seconds,omitempty"`
	ThresholdPolicy string            `json:"threshold_policy"`
}

// Status is a pure read of the poller state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	s := Status{
		Running:         p.running,
		ThresholdPolicy: p.detector.Policy(),
	}
	if !p.lastCheck.IsZero() {
		t := p.lastCheck
		s.LastCheck = &t
	}
	if p.running {
		next := p.nextRun
		s.NextRun = &next
		s.IntervalSeconds = p.interval.Seconds()
	}
	p.mu.Unlock()

	s.TotalAlerts = p.history.Len()
	if last, ok := p.history.Latest(); ok {
		s.LastAlert = &last
	}
	return s
}

// History returns up to limit alert records, newest first. A non-positive
// limit returns the whole buffer.
func (p *Poller) History(limit int) []data.AlertRecord {
	return p.history.Recent(limit)
}

type TestReport struct {
	Bot            string              `json:"bot,omitempty"`
	Reading        data.SensorReading  `json:"sensor_data"`
	Recommendation data.Recommendation `json:"fertilizer_recommendation"`
	Notified       bool                `json:"notified"`
}

// TestSystem checks the notification channel, then pushes a synthetic
// reading through recommendation and notification. Nothing is recorded.
func (p *Poller) TestSystem(ctx context.Context) (TestReport, error) {
	log.Println("Running system test")
	var report TestReport

	if p.notifier == nil {
		return report, notify.ErrNotConfigured
	}
	if tester, ok := p.notifier.(notify.ConnectionTester); ok {
		bot, err := tester.TestConnection(ctx)
		if err != nil {
			return report, fmt.Errorf("notification channel check: %w", err)
		}
		report.Bot = bot
	}

	report.Reading = p.sensor.Synthetic()
	report.Recommendation = p.advisor.Recommend(ctx, report.Reading)
	if err := p.sendNotification(ctx, report.Recommendation, p.now()); err != nil {
		return report, fmt.Errorf("test notification: %w", err)
	}
	report.Notified = true

	log.Println("System test completed")
	return report, nil
}

// IsNotConfigured reports whether err stems from missing channel credentials.
func IsNotConfigured(err error) bool {
	return errors.Is(err, notify.ErrNotConfigured)
}
