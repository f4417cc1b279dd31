package domain

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus enumerates appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusAttended  AppointmentStatus = "attended"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// legacy values written by earlier clients of the same collections
var statusAliases = map[string]AppointmentStatus{
	"reservada": AppointmentStatusBooked,
	"atendida":  AppointmentStatusAttended,
	"cancelada": AppointmentStatusCancelled,
}

// ParseAppointmentStatus coerces a stored status value.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch AppointmentStatus(v) {
	case AppointmentStatusBooked, AppointmentStatusAttended, AppointmentStatusCancelled:
		return AppointmentStatus(v), nil
	}
	if alias, ok := statusAliases[v]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusAttended || s == AppointmentStatusCancelled
}

// CanTransitionTo reports whether s may move to next. Re-cancelling is accepted as a no-op.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusBooked:
		return next == AppointmentStatusAttended || next == AppointmentStatusCancelled
	case AppointmentStatusCancelled:
		return next == AppointmentStatusCancelled
	}
	return false
}

// Appointment is a booked visit owned by a single user.
type Appointment struct {
	ID           string            `json:"id"`
	OwnerUserID  string            `json:"ownerUserId"`
	TreatmentID  string            `json:"treatmentId"`
	DentistID    string            `json:"dentistId"`
	PatientName  string            `json:"patientName,omitempty"`
	PatientEmail string            `json:"patientEmail,omitempty"`
	Date         Date              `json:"date"`
	Time         string            `json:"time"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// AppointmentDraft is an appointment before the store assigns its id and timestamps.
type AppointmentDraft struct {
	OwnerUserID  string
	TreatmentID  string
	DentistID    string
	PatientName  string
	PatientEmail string
	Date         Date
	Time         string
}

// AppointmentSchedule is the part of a booked appointment that can be changed after booking.
type AppointmentSchedule struct {
	TreatmentID string
	DentistID   string
	Date        Date
	Time        string
}

// NewAppointment materializes a draft as a booked appointment.
func NewAppointment(id string, draft AppointmentDraft, now time.Time) Appointment {
	return Appointment{
		ID:           id,
		OwnerUserID:  draft.OwnerUserID,
		TreatmentID:  draft.TreatmentID,
		DentistID:    draft.DentistID,
		PatientName:  draft.PatientName,
		PatientEmail: draft.PatientEmail,
		Date:         draft.Date,
		Time:         draft.Time,
		Status:       AppointmentStatusBooked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewerFirst orders appointments by date descending, then time, then creation, all descending.
func NewerFirst(a, b Appointment) int {
	switch {
	case a.Date.After(b.Date):
		return -1
	case a.Date.Before(b.Date):
		return 1
	}
	if c := strings.Compare(b.Time, a.Time); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}
