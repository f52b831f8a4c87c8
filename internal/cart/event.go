package cart

import "time"

// Event is the envelope of a broadcast signal. It carries no cart contents; observers
// re-read the persisted cart. The session id travels as the message key.
type Event struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}
