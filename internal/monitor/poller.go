// Package monitor runs the periodic soil monitoring cycle: fetch a reading,
// evaluate it, and when it breaches a threshold obtain a recommendation,
// notify the operator and record the alert.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PMacajol/Agro-MAGU/internal/anomaly"
	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/PMacajol/Agro-MAGU/internal/metrics"
	"github.com/PMacajol/Agro-MAGU/internal/notify"
	"github.com/PMacajol/Agro-MAGU/internal/storage"
)

const (
	DefaultInterval     = 5 * time.Minute
	DefaultCycleTimeout = 2 * time.Minute
)

// ErrCycleInProgress is returned by a manual run while another cycle is
// still executing.
var ErrCycleInProgress = errors.New("monitoring cycle already in progress")

// SensorSource supplies readings. Fetch must not fail; it degrades to
// synthetic data instead.
type SensorSource interface {
	Fetch(ctx context.Context) data.SensorReading
	Synthetic() data.SensorReading
}

// Recommender always returns a recommendation for a reading.
type Recommender interface {
	Recommend(ctx context.Context, reading data.SensorReading) data.Recommendation
}

// ReadingRecorder persists every fetched reading.
type ReadingRecorder interface {
	RecordReading(ctx context.Context, reading data.SensorReading) error
}

// AlertPublisher receives every recorded alert.
type AlertPublisher interface {
	Publish(ctx context.Context, rec data.AlertRecord)
}

type Options struct {
	AnnounceStart bool
	CycleTimeout  time.Duration
	HistorySize   int
	Recorder      ReadingRecorder
	Publisher     AlertPublisher
}

// Poller owns the schedule and the alert history. It is safe for concurrent
// use; at most one cycle executes at a time.
type Poller struct {
	sensor   SensorSource
	detector *anomaly.Detector
	advisor  Recommender
	notifier notify.Notifier
	history  *storage.AlertHistory
	opts     Options
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	gen       uint64
	cancel    context.CancelFunc
	interval  time.Duration
	lastCheck time.Time
	nextRun   time.Time

	// cycleSem holds one token while a cycle executes.
	cycleSem chan struct{}
}

func NewPoller(sensor SensorSource, detector *anomaly.Detector, advisor Recommender, notifier notify.Notifier, opts Options) *Poller {
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = DefaultCycleTimeout
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = storage.DefaultHistorySize
	}
	return &Poller{
		sensor:   sensor,
		detector: detector,
		advisor:  advisor,
		notifier: notifier,
		history:  storage.NewAlertHistory(opts.HistorySize),
		opts:     opts,
		now:      time.Now,
		cycleSem: make(chan struct{}, 1),
	}
}

// Start begins periodic monitoring with an immediate first cycle. It returns
// false, doing nothing, when monitoring is already running.
func (p *Poller) Start(interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		log.Printf("Monitoring already running every %s, start ignored", p.interval)
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.gen++
	gen := p.gen
	p.cancel = cancel
	p.interval = interval
	p.nextRun = p.now()
	p.mu.Unlock()

	metrics.MonitorRunning.Set(1)
	log.Printf("Starting automatic monitoring every %s", interval)

	go p.loop(ctx, gen, interval)
	if p.opts.AnnounceStart {
		go p.announce(interval)
	}
	return true
}

// Stop cancels all future cycles. A cycle already in flight finishes on its
// own deadline. Returns false when monitoring was not running.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return false
	}
	p.running = false
	p.cancel()
	p.cancel = nil
	p.nextRun = time.Time{}

	metrics.MonitorRunning.Set(0)
	log.Println("Automatic monitoring stopped")
	return true
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// loop re-arms a one-shot timer after each cycle so a slow cycle delays the
// next one instead of overlapping it. The first tick waits for a cycle left
// over from a previous schedule; later ticks skip when one is busy.
func (p *Poller) loop(ctx context.Context, gen uint64, interval time.Duration) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !p.tick(ctx, gen, first) {
			return
		}
		first = false

		p.mu.Lock()
		if p.running && p.gen == gen {
			p.nextRun = p.now().Add(interval)
		}
		p.mu.Unlock()
		timer.Reset(interval)
	}
}

// tick runs one scheduled cycle. It reports false once the schedule that
// launched it has been stopped.
func (p *Poller) tick(ctx context.Context, gen uint64, wait bool) bool {
	if wait {
		select {
		case p.cycleSem <- struct{}{}:
		case <-ctx.Done():
			return false
		}
	} else if !p.tryAcquire() {
		log.Println("Previous monitoring cycle still running, skipping tick")
		return true
	}
	defer p.release()

	p.mu.Lock()
	live := p.running && p.gen == gen
	p.mu.Unlock()
	if !live {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.CycleTimeout)
	defer cancel()
	p.executeCycle(ctx)
	return true
}

// CycleResult summarizes one executed cycle.
type CycleResult struct {
	Reading  data.SensorReading `json:"sensor_data"`
	Alert    bool               `json:"alert"`
	Breaches []data.Breach      `json:"breaches,omitempty"`
	Record   *data.AlertRecord  `json:"record,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// ExecuteCycle runs one cycle immediately, outside the schedule.
func (p *Poller) ExecuteCycle(ctx context.Context) (CycleResult, error) {
	if !p.tryAcquire() {
		return CycleResult{}, ErrCycleInProgress
	}
	defer p.release()
	return p.executeCycle(ctx), nil
}

func (p *Poller) tryAcquire() bool {
	select {
	case p.cycleSem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (p *Poller) release() { <-p.cycleSem }

// executeCycle never propagates a failure; a panic anywhere ends the cycle
// and is reported in the result.
func (p *Poller) executeCycle(ctx context.Context) (res CycleResult) {
	start := time.Now()
	outcome := "normal"
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Monitoring cycle failed: %v", r)
			outcome = "error"
			res.Error = fmt.Sprint(r)
		}
		metrics.CyclesTotal.WithLabelValues(outcome).Inc()
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	log.Println("Executing monitoring cycle")
	reading := p.sensor.Fetch(ctx)
	res.Reading = reading

	p.mu.Lock()
	p.lastCheck = p.now()
	p.mu.Unlock()
	p.observe(ctx, reading)

	if !p.detector.Evaluate(reading) {
		log.Printf("Parameters within normal ranges (N=%g P=%g K=%g pH=%g)",
			reading.Nitrogen, reading.Phosphorus, reading.Potassium, reading.PH)
		return res
	}

	outcome = "alert"
	res.Alert = true
	res.Breaches = p.detector.Breaches(reading)
	for _, b := range res.Breaches {
		metrics.ThresholdBreaches.WithLabelValues(b.Field, b.Severity).Inc()
		log.Printf("Threshold breach: %s=%g (bound %g, %s)", b.Field, b.Value, b.Bound, b.Severity)
	}

	rec := p.advisor.Recommend(ctx, reading)
	metrics.RecommendationsTotal.WithLabelValues(rec.Source).Inc()

	record := data.AlertRecord{
		ID:             uuid.NewString(),
		Timestamp:      p.now(),
		Reading:        reading,
		Breaches:       res.Breaches,
		Recommendation: rec,
	}
	if err := p.sendNotification(ctx, rec, record.Timestamp); err != nil {
		log.Printf("Alert notification failed: %v", err)
		record.NotifyError = err.Error()
	} else {
		record.Notified = true
	}

	p.history.Add(record)
	metrics.AlertsTotal.Inc()
	if p.opts.Publisher != nil {
		p.opts.Publisher.Publish(ctx, record)
	}
	res.Record = &record
	return res
}

func (p *Poller) observe(ctx context.Context, reading data.SensorReading) {
	source := "live"
	if reading.Synthetic {
		source = "synthetic"
	}
	metrics.SensorReadingsTotal.WithLabelValues(source).Inc()
	for field, v := range map[string]float64{
		"nitrogen":    reading.Nitrogen,
		"phosphorus":  reading.Phosphorus,
		"potassium":   reading.Potassium,
		"ph":          reading.PH,
		"humidity":    reading.Humidity,
		"temperature": reading.Temperature,
		"sunlight":    reading.Sunlight,
	} {
		metrics.SensorValue.WithLabelValues(field).Set(v)
	}

	if p.opts.Recorder == nil {
		return
	}
	if err := p.opts.Recorder.RecordReading(ctx, reading); err != nil {
		log.Printf("Failed to record reading: %v", err)
	}
}

func (p *Poller) sendNotification(ctx context.Context, rec data.Recommendation, at time.Time) error {
	if p.notifier == nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return notify.ErrNotConfigured
	}
	if err := p.notifier.Send(ctx, notify.FormatRecommendation(rec, at)); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

func (p *Poller) announce(interval time.Duration) {
	if p.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.CycleTimeout)
	defer cancel()
	if err := p.notifier.Send(ctx, notify.FormatActivation(interval, p.now())); err != nil {
		log.Printf("Failed to announce monitoring start: %v", err)
	}
}
