package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/PMacajol/Agro-MAGU/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(i int) data.AlertRecord {
	return data.AlertRecord{ID: fmt.Sprintf("alert-%d", i)}
}

func TestAlertHistory_NewestFirst(t *testing.T) {
	h := NewAlertHistory(DefaultHistorySize)
	h.Add(record(1))
	h.Add(record(2))
	h.Add(record(3))

	got := h.Recent(0)
	require.Len(t, got, 3)
	assert.Equal(t, "alert-3", got[0].ID)
	assert.Equal(t, "alert-1", got[2].ID)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "alert-3", latest.ID)
}

func TestAlertHistory_CapsAtFifty(t *testing.T) {
	h := NewAlertHistory(DefaultHistorySize)
	for i := 1; i <= 51; i++ {
		h.Add(record(i))
		assert.LessOrEqual(t, h.Len(), 50)
	}

	got := h.Recent(0)
	require.Len(t, got, 50)
	assert.Equal(t, "alert-51", got[0].ID)
	assert.Equal(t, "alert-2", got[49].ID)
	for i := range got {
		assert.Equal(t, fmt.Sprintf("alert-%d", 51-i), got[i].ID)
	}
}

func TestAlertHistory_RecentLimitAndCopy(t *testing.T) {
	h := NewAlertHistory(5)
	for i := 1; i <= 4; i++ {
		h.Add(record(i))
	}

	got := h.Recent(2)
	require.Len(t, got, 2)
	assert.Equal(t, "alert-4", got[0].ID)

	got[0].ID = "mutated"
	latest, _ := h.Latest()
	assert.Equal(t, "alert-4", latest.ID)

	assert.Len(t, h.Recent(100), 4)
}

func TestAlertHistory_Empty(t *testing.T) {
	h := NewAlertHistory(0)
	assert.Equal(t, DefaultHistorySize, h.Capacity())
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Empty(t, h.Recent(10))
}

func TestAlertHistory_ConcurrentAdd(t *testing.T) {
	h := NewAlertHistory(DefaultHistorySize)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Add(record(i))
			_ = h.Recent(5)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, h.Len())
}
