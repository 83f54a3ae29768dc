package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

type fakeHub struct{ alerts []interface{} }

func (h *fakeHub) BroadcastAlert(alert interface{}) { h.alerts = append(h.alerts, alert) }

type fakeArchive struct {
	stored []data.AlertRecord
	err    error
}

func (a *fakeArchive) Store(ctx context.Context, rec data.AlertRecord) error {
	a.stored = append(a.stored, rec)
	return a.err
}

func TestAlerter_Publish(t *testing.T) {
	hub := &fakeHub{}
	archive := &fakeArchive{}
	rec := data.AlertRecord{ID: "a1"}

	NewAlerter(hub, archive).Publish(context.Background(), rec)

	assert.Len(t, hub.alerts, 1)
	assert.Equal(t, []data.AlertRecord{rec}, archive.stored)
}

func TestAlerter_ArchiveFailureStillBroadcasts(t *testing.T) {
	hub := &fakeHub{}
	archive := &fakeArchive{err: errors.New("redis down")}

	NewAlerter(hub, archive).Publish(context.Background(), data.AlertRecord{ID: "a2"})
	assert.Len(t, hub.alerts, 1)
	assert.Len(t, archive.stored, 1)
}

func TestAlerter_NilChannels(t *testing.T) {
	assert.NotPanics(t, func() {
		NewAlerter(nil, nil).Publish(context.Background(), data.AlertRecord{ID: "a3"})
	})
}

type fakeReadingHub struct{ readings []interface{} }

func (h *fakeReadingHub) BroadcastReading(r interface{}) { h.readings = append(h.readings, r) }

type fakeStore struct{ err error }

func (s *fakeStore) RecordReading(ctx context.Context, r data.SensorReading) error { return s.err }

func TestReadingFeed(t *testing.T) {
	hub := &fakeReadingHub{}
	feed := NewReadingFeed(hub, &fakeStore{err: errors.New("influx down")})

	err := feed.RecordReading(context.Background(), data.SensorReading{Nitrogen: 80})
	assert.EqualError(t, err, "influx down")
	assert.Len(t, hub.readings, 1)

	assert.NoError(t, NewReadingFeed(hub, nil).RecordReading(context.Background(), data.SensorReading{}))
	assert.Len(t, hub.readings, 2)
}
