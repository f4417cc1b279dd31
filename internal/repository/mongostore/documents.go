package mongostore

import (
	"fmt"
	"time"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash,omitempty"`
	Disabled     bool      `bson:"disabled,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Name:         u.DisplayName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Disabled:     u.Disabled,
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		DisplayName:  d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Disabled:     d.Disabled,
		CreatedAt:    d.CreatedAt,
	}
}

type treatmentDocument struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Duration    string   `bson:"duration"`
	Price       *float64 `bson:"price,omitempty"`
	Description string   `bson:"description,omitempty"`
	Category    string   `bson:"category,omitempty"`
}

func newTreatmentDocument(t domain.Treatment) treatmentDocument {
	return treatmentDocument{
		ID:          t.ID,
		Name:        t.Name,
		Duration:    t.DurationLabel,
		Price:       t.PriceAmount,
		Description: t.Description,
		Category:    t.Category,
	}
}

func (d treatmentDocument) toDomain() domain.Treatment {
	return domain.Treatment{
		ID:            d.ID,
		Name:          d.Name,
		DurationLabel: d.Duration,
		PriceAmount:   d.Price,
		Description:   d.Description,
		Category:      d.Category,
	}
}

type dentistDocument struct {
	ID         string   `bson:"_id"`
	Name       string   `bson:"name"`
	Specialty  string   `bson:"specialty"`
	Available  bool     `bson:"available"`
	Schedule   []string `bson:"schedule,omitempty"`
	Experience string   `bson:"experience,omitempty"`
}

func newDentistDocument(d domain.Dentist) dentistDocument {
	return dentistDocument{
		ID:         d.ID,
		Name:       d.Name,
		Specialty:  d.Specialty,
		Available:  d.Available,
		Schedule:   d.Schedule,
		Experience: d.ExperienceLabel,
	}
}

func (d dentistDocument) toDomain() domain.Dentist {
	return domain.Dentist{
		ID:              d.ID,
		Name:            d.Name,
		Specialty:       d.Specialty,
		Available:       d.Available,
		Schedule:        d.Schedule,
		ExperienceLabel: d.Experience,
	}
}

type appointmentDocument struct {
	ID           string    `bson:"_id"`
	OwnerUserID  string    `bson:"ownerUserId"`
	TreatmentID  string    `bson:"treatmentId"`
	DentistID    string    `bson:"dentistId"`
	PatientName  string    `bson:"patientName,omitempty"`
	PatientEmail string    `bson:"patientEmail,omitempty"`
	Date         string    `bson:"date"`
	Time         string    `bson:"time"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newAppointmentDocument(a domain.Appointment) appointmentDocument {
	return appointmentDocument{
		ID:           a.ID,
		OwnerUserID:  a.OwnerUserID,
		TreatmentID:  a.TreatmentID,
		DentistID:    a.DentistID,
		PatientName:  a.PatientName,
		PatientEmail: a.PatientEmail,
		Date:         a.Date.String(),
		Time:         a.Time,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// toDomain validates the stored shape before building the typed record.
func (d appointmentDocument) toDomain() (domain.Appointment, error) {
	date, err := domain.ParseDate(d.Date)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("%w: appointment %s: %v", repository.ErrCorrupt, d.ID, err)
	}
	status, err := domain.ParseAppointmentStatus(d.Status)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("%w: appointment %s: %v", repository.ErrCorrupt, d.ID, err)
	}
	return domain.Appointment{
		ID:           d.ID,
		OwnerUserID:  d.OwnerUserID,
		TreatmentID:  d.TreatmentID,
		DentistID:    d.DentistID,
		PatientName:  d.PatientName,
		PatientEmail: d.PatientEmail,
		Date:         date,
		Time:         d.Time,
		Status:       status,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
