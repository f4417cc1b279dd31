package service

import (
	"time"

	"github.com/spec-kit/clinic-booking/internal/domain"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// Dashboard states.
const (
	DashboardReady                 = "ready"
	DashboardCatalogNotInitialized = "catalog_not_initialized"
	DashboardDegraded              = "degraded"
)

// DashboardEntry is an appointment with its catalog names resolved.
type DashboardEntry struct {
	domain.Appointment
	TreatmentName string `json:"treatmentName"`
	DentistName   string `json:"dentistName"`
}

// SectionError describes why one part of the dashboard could not be loaded.
type SectionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusCounts tallies the listing by status.
type StatusCounts struct {
	Total     int `json:"total"`
	Booked    int `json:"booked"`
	Attended  int `json:"attended"`
	Cancelled int `json:"cancelled"`
}

// Dashboard is the joined result of the appointment and catalog reads. Sections that
// failed carry an error while the others keep their data.
type Dashboard struct {
	Appointments          []DashboardEntry   `json:"appointments"`
	Treatments            []domain.Treatment `json:"treatments"`
	Dentists              []domain.Dentist   `json:"dentists"`
	Counts                StatusCounts       `json:"counts"`
	CatalogNotInitialized bool               `json:"catalogNotInitialized"`
	AppointmentsError     *SectionError      `json:"appointmentsError,omitempty"`
	CatalogError          *SectionError      `json:"catalogError,omitempty"`
}

// State summarizes the dashboard for clients and metrics.
func (d *Dashboard) State() string {
	switch {
	case d.AppointmentsError != nil || d.CatalogError != nil:
		return DashboardDegraded
	case d.CatalogNotInitialized:
		return DashboardCatalogNotInitialized
	}
	return DashboardReady
}

// ApplyCancellation flips the listed appointment to cancelled without reloading.
// It reports whether the appointment was present.
func (d *Dashboard) ApplyCancellation(id string, at time.Time) bool {
	for i := range d.Appointments {
		if d.Appointments[i].ID != id {
			continue
		}
		d.Appointments[i].Status = domain.AppointmentStatusCancelled
		d.Appointments[i].UpdatedAt = at
		d.recount()
		return true
	}
	return false
}

func (d *Dashboard) recount() {
	c := StatusCounts{Total: len(d.Appointments)}
	for _, a := range d.Appointments {
		switch a.Status {
		case domain.AppointmentStatusBooked:
			c.Booked++
		case domain.AppointmentStatusAttended:
			c.Attended++
		case domain.AppointmentStatusCancelled:
			c.Cancelled++
		}
	}
	d.Counts = c
}

func buildEntries(appts []domain.Appointment, treatments []domain.Treatment, dentists []domain.Dentist) []DashboardEntry {
	treatmentNames := make(map[string]string, len(treatments))
	for _, t := range treatments {
		treatmentNames[t.ID] = t.Name
	}
	dentistNames := make(map[string]string, len(dentists))
	for _, d := range dentists {
		dentistNames[d.ID] = d.Name
	}

	out := make([]DashboardEntry, 0, len(appts))
	for _, a := range appts {
		e := DashboardEntry{Appointment: a, TreatmentName: a.TreatmentID, DentistName: a.DentistID}
		if name, ok := treatmentNames[a.TreatmentID]; ok {
			e.TreatmentName = name
		}
		if name, ok := dentistNames[a.DentistID]; ok {
			e.DentistName = name
		}
		out = append(out, e)
	}
	return out
}

func sectionError(err error) *SectionError {
	if err == nil {
		return nil
	}
	de := apperrors.ToDomainError(err)
	return &SectionError{Code: de.Code, Message: de.Message}
}
