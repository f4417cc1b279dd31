package dto

import "github.com/spec-kit/clinic-booking/internal/domain"

// CreateAppointmentRequest payload for booking. Presence and calendar rules are
// checked by the booking workflow, which reports per-field reasons.
type CreateAppointmentRequest struct {
	TreatmentID string `json:"treatmentId" validate:"max=64"`
	DentistID   string `json:"dentistId" validate:"max=64"`
	Date        string `json:"date" validate:"max=10"`
	Time        string `json:"time" validate:"max=5"`
}

// DraftInput converts the payload for the workflow.
func (r CreateAppointmentRequest) DraftInput() domain.DraftInput {
	return domain.DraftInput{
		TreatmentID: r.TreatmentID,
		DentistID:   r.DentistID,
		Date:        r.Date,
		Time:        r.Time,
	}
}

// DentistsQuery filters the dentist listing.
type DentistsQuery struct {
	Available bool `query:"available"`
}
