package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityChanged        EventType = "identity_changed"
	EventAppointmentBooked      EventType = "appointment_booked"
	EventAppointmentCancelled   EventType = "appointment_cancelled"
	EventAppointmentRescheduled EventType = "appointment_rescheduled"
	EventCatalogSeeded          EventType = "catalog_seeded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// IdentityChangedPayload carries the new identity, or nil on sign-out.
type IdentityChangedPayload struct {
	Identity *domain.Identity `json:"identity"`
	Reason   string           `json:"reason"`
}

// AppointmentPayload describes the appointment after the change.
type AppointmentPayload struct {
	Appointment domain.Appointment `json:"appointment"`
}

// CatalogSeededPayload counts the inserted reference records.
type CatalogSeededPayload struct {
	Treatments int `json:"treatments"`
	Dentists   int `json:"dentists"`
}
