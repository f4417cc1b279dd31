package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/repository/memory"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// Tuesday 2025-01-07, 10:00 UTC.
var fixedNow = time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
		Identity: config.IdentityConfig{Provider: config.IdentityProviderLocal, Locale: "es"},
		Booking:  config.BookingConfig{Timezone: "UTC", WindowDays: 90, ClosedWeekday: time.Sunday},
	}
}

type failingCatalog struct {
	repository.CatalogRepository
	treatmentsErr error
	dentistsErr   error
}

func (f failingCatalog) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	if f.treatmentsErr != nil {
		return nil, f.treatmentsErr
	}
	return f.CatalogRepository.ListTreatments(ctx)
}

func (f failingCatalog) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	if f.dentistsErr != nil {
		return nil, f.dentistsErr
	}
	return f.CatalogRepository.ListDentists(ctx)
}

type failingAppointments struct {
	repository.AppointmentRepository
	err error
}

func (f failingAppointments) ListByOwner(context.Context, string) ([]domain.Appointment, error) {
	return nil, f.err
}

func (f failingAppointments) Cancel(context.Context, string) error {
	return f.err
}

type bookingFixture struct {
	store      *repository.Store
	dispatcher events.Dispatcher
	svc        *BookingService
}

func newBookingFixture(t *testing.T, seeded bool) *bookingFixture {
	t.Helper()
	store := memory.NewStore(memory.WithClock(func() time.Time { return fixedNow })).Repositories()
	return newBookingFixtureWith(t, store, seeded)
}

func newBookingFixtureWith(t *testing.T, store *repository.Store, seeded bool) *bookingFixture {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher(nil)
	seeder := NewSeeder(store.Catalog, dispatcher)
	if seeded {
		if _, err := seeder.Seed(context.Background()); err != nil {
			t.Fatalf("Seed() error = %v", err)
		}
	}
	svc := NewBookingService(testConfig(), BookingDependencies{
		Appointments: store.Appointments,
		Catalog:      NewCatalogService(store.Catalog),
		Seeder:       seeder,
		Dispatcher:   dispatcher,
		Now:          func() time.Time { return fixedNow },
	})
	return &bookingFixture{store: store, dispatcher: dispatcher, svc: svc}
}

func (f *bookingFixture) validInput(t *testing.T) domain.DraftInput {
	t.Helper()
	treatments, err := f.store.Catalog.ListTreatments(context.Background())
	if err != nil || len(treatments) == 0 {
		t.Fatalf("no treatments: %v", err)
	}
	dentists, err := f.store.Catalog.ListDentists(context.Background())
	if err != nil || len(dentists) == 0 {
		t.Fatalf("no dentists: %v", err)
	}
	return domain.DraftInput{
		TreatmentID: treatments[0].ID,
		DentistID:   dentists[0].ID,
		Date:        "2025-01-08",
		Time:        "09:30",
	}
}

func session(userID string) *domain.Session {
	return &domain.Session{Identity: domain.Identity{UserID: userID, DisplayName: "Paciente " + userID, Email: userID + "@example.com"}}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

var errBoom = errors.Join(repository.ErrUnavailable, errors.New("connection refused"))
