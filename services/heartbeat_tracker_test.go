package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smart-trolley-backend/models"
)

func sampleView() *models.CartView {
	return &models.CartView{
		Items: map[string]models.CartViewItem{
			"P1": {ID: "P1", Qty: 3, FinalPrice: 90},
		},
		Total: 270,
	}
}

func TestHeartbeatStatus_NoEntry(t *testing.T) {
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")

	report := tracker.Status()
	assert.Equal(t, models.TrolleyStatusAbandoned, report.Status)
	assert.Nil(t, report.LastBeat)
	assert.Equal(t, 0, report.ItemCount)
}

func TestHeartbeatStatus_AgeThresholds(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	tracker.nowFunc = func() time.Time { return base }
	tracker.Touch(sampleView())

	cases := []struct {
		age  time.Duration
		want models.TrolleyStatus
	}{
		{0, models.TrolleyStatusOnline},
		{59 * time.Second, models.TrolleyStatusOnline},
		{60 * time.Second, models.TrolleyStatusIdle},
		{299 * time.Second, models.TrolleyStatusIdle},
		{300 * time.Second, models.TrolleyStatusAbandoned},
		{2 * time.Hour, models.TrolleyStatusAbandoned},
	}
	for _, tc := range cases {
		tracker.nowFunc = func() time.Time { return base.Add(tc.age) }
		report := tracker.Status()
		assert.Equal(t, tc.want, report.Status, "age %v", tc.age)
		assert.Equal(t, tc.age.Seconds(), report.AgeSeconds)
	}
}

func TestHeartbeatTouch_LastWriteWins(t *testing.T) {
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	tracker.Touch(sampleView())

	later := &models.CartView{
		Items: map[string]models.CartViewItem{"P1": {ID: "P1", Qty: 1}},
		Total: 90,
	}
	tracker.Touch(later)

	entry := tracker.Snapshot()
	assert.Equal(t, 1, entry.ItemCount)
	assert.Equal(t, 90.0, entry.Total)
	assert.Equal(t, "TROLLEY-01", entry.SessionID)
	assert.Equal(t, "Walk-in Customer", entry.CustomerLabel)
}

func TestHeartbeatTouch_NilViewIgnored(t *testing.T) {
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	tracker.Touch(sampleView())
	tracker.Touch(nil)

	assert.NotNil(t, tracker.Snapshot())
}

func TestHeartbeatReset(t *testing.T) {
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	tracker.Touch(sampleView())
	tracker.Reset()

	assert.Nil(t, tracker.Snapshot())
	assert.Equal(t, models.TrolleyStatusAbandoned, tracker.Status().Status)
}

func TestHeartbeatSnapshot_ReturnsCopy(t *testing.T) {
	tracker := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	tracker.Touch(sampleView())

	entry := tracker.Snapshot()
	entry.ItemCount = 99

	assert.Equal(t, 3, tracker.Snapshot().ItemCount)
}
