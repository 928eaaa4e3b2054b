package watch

import (
	"time"

	"github.com/google/uuid"
)

// Direction marks which way a numeric fact moved.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Event is one emitted change record. Events are ephemeral: constructed,
// handed to the sinks, discarded.
type Event struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Watch   string `json:"watch"`
	Subject string `json:"subject,omitempty"`

	// Current and Previous are formatted values; Previous is nil on a
	// first observation that still emits (price updates, price epochs).
	Current  string  `json:"current"`
	Previous *string `json:"previous,omitempty"`

	Direction Direction `json:"direction,omitempty"`
	Delta     string    `json:"delta,omitempty"`

	// Details carries kind-specific fields: tx hashes, epoch ids, wei
	// amounts, claimable totals.
	Details map[string]any `json:"details,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

func (e *Engine) newEvent(subject, current string, previous *string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      e.cfg.Kind,
		Watch:     e.cfg.InstanceID,
		Subject:   subject,
		Current:   current,
		Previous:  previous,
		Timestamp: time.Now().UTC(),
	}
}

func strPtr(s string) *string {
	return &s
}
