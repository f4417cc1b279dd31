package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (user email) is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable is returned when the store cannot be reached or the breaker is open.
	ErrUnavailable = errors.New("store unavailable")
	// ErrCorrupt is returned when a stored record cannot be decoded into its domain type.
	ErrCorrupt = errors.New("corrupt record")
)

// UserRepository defines persistence access for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CatalogRepository reads and seeds treatments and dentists.
type CatalogRepository interface {
	ListTreatments(ctx context.Context) ([]domain.Treatment, error)
	ListDentists(ctx context.Context) ([]domain.Dentist, error)
	InsertTreatments(ctx context.Context, treatments []domain.Treatment) error
	InsertDentists(ctx context.Context, dentists []domain.Dentist) error
}

// AppointmentRepository persists appointments scoped by owning user.
type AppointmentRepository interface {
	Create(ctx context.Context, draft domain.AppointmentDraft) (string, error)
	Get(ctx context.Context, id string) (*domain.Appointment, error)
	// ListByOwner returns every appointment of the owner, newest date first.
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Appointment, error)
	// Cancel sets the status to cancelled. Cancelling twice succeeds.
	Cancel(ctx context.Context, id string) error
	MarkAttended(ctx context.Context, id string) error
	// Reschedule replaces treatment, dentist, date and time. Status is left untouched.
	Reschedule(ctx context.Context, id string, sched domain.AppointmentSchedule) error
	Delete(ctx context.Context, id string) error
}

// Pinger reports store connectivity for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users        UserRepository
	Catalog      CatalogRepository
	Appointments AppointmentRepository
	Health       Pinger
	Close        func()
}

// SortNewestFirst orders appointments by date descending in place. Stores do not
// guarantee this order, so every backend sorts before returning.
func SortNewestFirst(appts []domain.Appointment) {
	slices.SortStableFunc(appts, domain.NewerFirst)
}
