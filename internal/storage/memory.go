// internal/storage/memory.go
package storage

import (
	"sync"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

const DefaultHistorySize = 50 // keep the last 50 alerts

// AlertHistory is a capped in-memory list of alert records, newest first.
type AlertHistory struct {
	mu       sync.RWMutex
	records  []data.AlertRecord
	capacity int
}

func NewAlertHistory(capacity int) *AlertHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &AlertHistory{
		records:  make([]data.AlertRecord, 0, capacity),
		capacity: capacity,
	}
}

// Add prepends a record and drops the oldest entries beyond capacity.
func (h *AlertHistory) Add(rec data.AlertRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, data.AlertRecord{})
	copy(h.records[1:], h.records)
	h.records[0] = rec
	if len(h.records) > h.capacity {
		h.records = h.records[:h.capacity]
	}
}

// Recent returns up to count records, newest first. count <= 0 returns all.
func (h *AlertHistory) Recent(count int) []data.AlertRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if count <= 0 || count > len(h.records) {
		count = len(h.records)
	}
	// Return a copy so callers cannot touch the buffer
	result := make([]data.AlertRecord, count)
	copy(result, h.records[:count])
	return result
}

// Latest returns the newest record, if any.
func (h *AlertHistory) Latest() (data.AlertRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.records) == 0 {
		return data.AlertRecord{}, false
	}
	return h.records[0], true
}

func (h *AlertHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

func (h *AlertHistory) Capacity() int { return h.capacity }
