package pipeline

import "time"

// EventType identifies a progress event of a run
type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventAssetScreened EventType = "asset_screened"
	EventAssetSkipped  EventType = "asset_skipped"
	EventListingsFound EventType = "listings_found"
	EventAssetScored   EventType = "asset_scored"
	EventRunCompleted  EventType = "run_completed"
)

// Event is one progress notification, streamed to API clients
type Event struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"run_id"`
	Ticker  string    `json:"ticker,omitempty"`
	Message string    `json:"message,omitempty"`
	Count   int       `json:"count,omitempty"`
	Score   float64   `json:"score,omitempty"`
	Time    time.Time `json:"time"`
}

// EventSink receives events synchronously; it must not block
type EventSink func(Event)
