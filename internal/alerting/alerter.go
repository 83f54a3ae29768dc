// internal/alerting/alerter.go
package alerting

import (
	"context"
	"log"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/PMacajol/Agro-MAGU/internal/metrics"
)

// Broadcaster pushes alerts to live dashboards.
type Broadcaster interface {
	BroadcastAlert(alert interface{})
}

// Archive keeps alerts beyond the in-memory history.
type Archive interface {
	Store(ctx context.Context, rec data.AlertRecord) error
}

// Alerter fans a recorded alert out to every configured channel. Either
// channel may be nil.
type Alerter struct {
	hub     Broadcaster
	archive Archive
}

func NewAlerter(hub Broadcaster, archive Archive) *Alerter {
	return &Alerter{hub: hub, archive: archive}
}

// Publish never fails; channel errors are logged.
func (a *Alerter) Publish(ctx context.Context, rec data.AlertRecord) {
	if a.hub != nil {
		a.hub.BroadcastAlert(rec)
	}

	if a.archive == nil {
		return
	}
	if err := a.archive.Store(ctx, rec); err != nil {
		metrics.RedisOperations.WithLabelValues("store", "error").Inc()
		log.Printf("Failed to archive alert %s: %v", rec.ID, err)
		return
	}
	metrics.RedisOperations.WithLabelValues("store", "ok").Inc()
}
