package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANSWER_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeAnswerCompleted = "ANSWER_COMPLETED"
	TypeAnswerRated     = "ANSWER_RATED"
)

// NewAnswerCompleted is the outbound record emitted once per completed
// request, grounded answer or fallback alike.
func NewAnswerCompleted(question, route string, cacheHit bool, validationOutcome string, latencyMs int64, confidence float64) Event {
	return BaseEvent{
		Type: TypeAnswerCompleted,
		Data: map[string]interface{}{
			"question":           question,
			"route":              route,
			"cache_hit":          cacheHit,
			"validation_outcome": validationOutcome,
			"latency_ms":         latencyMs,
			"confidence":         confidence,
		},
		OccurredAt: time.Now(),
	}
}

// NewAnswerRated carries a user rating for a previously returned answer.
func NewAnswerRated(requestID string, rating int, comment string) Event {
	return BaseEvent{
		Type: TypeAnswerRated,
		Data: map[string]interface{}{
			"request_id": requestID,
			"rating":     rating,
			"comment":    comment,
		},
		OccurredAt: time.Now(),
	}
}
