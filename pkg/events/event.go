package events

import "time"

// Event defines the contract for all quiz lifecycle events.
type Event interface {
	// EventType returns the subject suffix for this event (e.g. "session.started").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeSessionStarted  = "session.started"
	TypeSessionFinished = "session.finished"
	TypeAnswerRecorded  = "answer.recorded"
	TypeDataReset       = "data.reset"
)

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

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func SessionStarted(sessionID, mode string, total int, source string) BaseEvent {
	return New(TypeSessionStarted, map[string]interface{}{
		"session_id":  sessionID,
		"mode":        mode,
		"total_count": total,
		"source":      source,
	})
}

func SessionFinished(sessionID string, answered, correct, total int) BaseEvent {
	return New(TypeSessionFinished, map[string]interface{}{
		"session_id":     sessionID,
		"answered_count": answered,
		"correct_count":  correct,
		"total_count":    total,
	})
}

func AnswerRecorded(sessionID, identifier string, correct bool) BaseEvent {
	return New(TypeAnswerRecorded, map[string]interface{}{
		"session_id": sessionID,
		"identifier": identifier,
		"is_correct": correct,
	})
}

func DataReset() BaseEvent {
	return New(TypeDataReset, map[string]interface{}{})
}
