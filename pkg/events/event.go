package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation the publishers work with.
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

// Domain event types emitted by the research backend.
const (
	TypeDocumentIngested  = "document.ingested"
	TypeResearchCompleted = "research.completed"
)

// NewDocumentIngested fires after a legal document is embedded and stored.
func NewDocumentIngested(documentID, collection string) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"collection":  collection,
		},
		OccurredAt: time.Now(),
	}
}

// NewResearchCompleted fires after a pipeline run finishes, whether or not
// the answer passed verification.
func NewResearchCompleted(runID, query string, confidence float64, passed bool) Event {
	return BaseEvent{
		Type: TypeResearchCompleted,
		Data: map[string]interface{}{
			"run_id":     runID,
			"query":      query,
			"confidence": confidence,
			"passed":     passed,
		},
		OccurredAt: time.Now(),
	}
}
