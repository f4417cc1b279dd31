package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/persistence"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

type flakyCatalog struct {
	err   error
	calls int
}

func (f *flakyCatalog) ListTreatments(context.Context) ([]domain.Treatment, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyCatalog) ListDentists(context.Context) ([]domain.Dentist, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyCatalog) InsertTreatments(context.Context, []domain.Treatment) error { return f.err }
func (f *flakyCatalog) InsertDentists(context.Context, []domain.Dentist) error     { return f.err }

func TestGuardOpensAfterConsecutiveFailures(t *testing.T) {
	flaky := &flakyCatalog{err: errors.New("connection refused")}
	cb := persistence.NewCircuitBreaker("test", config.BreakerConfig{MaxConsecutiveFailures: 3, OpenTimeoutSeconds: 60}, zap.NewNop(), repository.IsExpected)
	store := repository.Guard(&repository.Store{Catalog: flaky}, cb)

	for i := 0; i < 3; i++ {
		if _, err := store.Catalog.ListTreatments(context.Background()); errors.Is(err, repository.ErrUnavailable) {
			t.Fatalf("call %d failed fast before the breaker opened", i+1)
		}
	}

	_, err := store.Catalog.ListDentists(context.Background())
	if !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if flaky.calls != 3 {
		t.Errorf("underlying calls = %d, want 3", flaky.calls)
	}
}

func TestGuardIgnoresExpectedErrors(t *testing.T) {
	flaky := &flakyCatalog{err: repository.ErrNotFound}
	cb := persistence.NewCircuitBreaker("test", config.BreakerConfig{MaxConsecutiveFailures: 1, OpenTimeoutSeconds: 60}, zap.NewNop(), repository.IsExpected)
	store := repository.Guard(&repository.Store{Catalog: flaky}, cb)

	for i := 0; i < 5; i++ {
		_, err := store.Catalog.ListTreatments(context.Background())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("call %d error = %v, want ErrNotFound", i+1, err)
		}
	}
	if flaky.calls != 5 {
		t.Errorf("underlying calls = %d, want 5", flaky.calls)
	}
}

type corruptAppointments struct {
	repository.AppointmentRepository
	calls int
}

func (c *corruptAppointments) ListByOwner(context.Context, string) ([]domain.Appointment, error) {
	c.calls++
	return nil, fmt.Errorf("%w: appointment a-1: unknown status", repository.ErrCorrupt)
}

func TestGuardDoesNotTripOnCorruptRecords(t *testing.T) {
	corrupt := &corruptAppointments{}
	cb := persistence.NewCircuitBreaker("test", config.BreakerConfig{MaxConsecutiveFailures: 2, OpenTimeoutSeconds: 60}, zap.NewNop(), repository.IsExpected)
	store := repository.Guard(&repository.Store{Appointments: corrupt}, cb)

	for i := 0; i < 4; i++ {
		_, err := store.Appointments.ListByOwner(context.Background(), "owner-1")
		if !errors.Is(err, repository.ErrCorrupt) {
			t.Fatalf("call %d error = %v, want ErrCorrupt", i+1, err)
		}
	}
	if corrupt.calls != 4 {
		t.Errorf("underlying calls = %d, want 4", corrupt.calls)
	}
}
