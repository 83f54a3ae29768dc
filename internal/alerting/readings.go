package alerting

import (
	"context"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

type ReadingBroadcaster interface {
	BroadcastReading(reading interface{})
}

type ReadingStore interface {
	RecordReading(ctx context.Context, reading data.SensorReading) error
}

// ReadingFeed forwards every fetched reading to dashboards and the time
// series store.
type ReadingFeed struct {
	hub   ReadingBroadcaster
	store ReadingStore
}

func NewReadingFeed(hub ReadingBroadcaster, store ReadingStore) *ReadingFeed {
	return &ReadingFeed{hub: hub, store: store}
}

func (f *ReadingFeed) RecordReading(ctx context.Context, reading data.SensorReading) error {
	if f.hub != nil {
		f.hub.BroadcastReading(reading)
	}
	if f.store == nil {
		return nil
	}
	return f.store.RecordReading(ctx, reading)
}
