package services

import (
	"sync"
	"time"

	"smart-trolley-backend/models"
)

// Heartbeat staleness thresholds.
const (
	heartbeatOnlineWindow = 60 * time.Second
	heartbeatIdleWindow   = 300 * time.Second
)

// HeartbeatTracker keeps the transient liveness entry for the single active
// trolley session. Entirely in-memory; a restart loses it, which is fine
// for a UX/alerting signal.
type HeartbeatTracker struct {
	mu            sync.Mutex
	sessionID     string
	customerLabel string
	entry         *models.Heartbeat
	nowFunc       func() time.Time
}

// NewHeartbeatTracker creates a tracker for the fixed trolley session.
func NewHeartbeatTracker(sessionID, customerLabel string) *HeartbeatTracker {
	return &HeartbeatTracker{
		sessionID:     sessionID,
		customerLabel: customerLabel,
		nowFunc:       time.Now,
	}
}

// Touch overwrites the entry with the latest cart observation. Last write
// wins; it never fails.
func (t *HeartbeatTracker) Touch(view *models.CartView) {
	if view == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry = &models.Heartbeat{
		SessionID:     t.sessionID,
		LastBeat:      t.nowFunc(),
		ItemCount:     view.ItemCount(),
		Total:         view.Total,
		CustomerLabel: t.customerLabel,
	}
}

// Reset deletes the entry. Used on checkout and emergency cart reset.
func (t *HeartbeatTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry = nil
}

// Snapshot returns a copy of the current entry, or nil when none exists.
func (t *HeartbeatTracker) Snapshot() *models.Heartbeat {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entry == nil {
		return nil
	}
	entry := *t.entry
	return &entry
}

// Status classifies the session by heartbeat age. With no entry recorded
// the session reports abandoned with no last_beat.
func (t *HeartbeatTracker) Status() models.TrolleyStatusReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := models.TrolleyStatusReport{
		SessionID: t.sessionID,
		Status:    models.TrolleyStatusAbandoned,
	}
	if t.entry == nil {
		return report
	}

	age := t.nowFunc().Sub(t.entry.LastBeat)
	switch {
	case age < heartbeatOnlineWindow:
		report.Status = models.TrolleyStatusOnline
	case age < heartbeatIdleWindow:
		report.Status = models.TrolleyStatusIdle
	}

	lastBeat := t.entry.LastBeat
	report.AgeSeconds = age.Seconds()
	report.ItemCount = t.entry.ItemCount
	report.Total = t.entry.Total
	report.LastBeat = &lastBeat
	return report
}
