package models

import "time"

// TrolleyStatus classifies how recently the trolley was observed.
type TrolleyStatus string

const (
	TrolleyStatusOnline    TrolleyStatus = "online"
	TrolleyStatusIdle      TrolleyStatus = "idle"
	TrolleyStatusAbandoned TrolleyStatus = "abandoned"
)

// Heartbeat is the transient liveness entry for the active cart session.
// Last write wins; a process restart loses it, which is acceptable because
// it is an alerting signal, not a record of truth.
type Heartbeat struct {
	SessionID     string    `json:"session_id"`
	LastBeat      time.Time `json:"last_beat"`
	ItemCount     int       `json:"item_count"`
	Total         float64   `json:"total"`
	CustomerLabel string    `json:"customer_label"`
}

// TrolleyStatusReport is the dashboard view of the heartbeat.
type TrolleyStatusReport struct {
	SessionID  string        `json:"session_id"`
	Status     TrolleyStatus `json:"status"`
	AgeSeconds float64       `json:"age_seconds"`
	ItemCount  int           `json:"item_count"`
	Total      float64       `json:"total"`
	LastBeat   *time.Time    `json:"last_beat,omitempty"`
}
