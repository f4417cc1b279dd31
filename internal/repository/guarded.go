package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

// IsExpected reports errors that describe data rather than store health.
func IsExpected(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrCorrupt)
}

// Guard wraps every repository of the store with the circuit breaker.
func Guard(store *Store, cb *gobreaker.CircuitBreaker) *Store {
	if store == nil || cb == nil {
		return store
	}
	return &Store{
		Users:        &guardedUsers{next: store.Users, cb: cb},
		Catalog:      &guardedCatalog{next: store.Catalog, cb: cb},
		Appointments: &guardedAppointments{next: store.Appointments, cb: cb},
		Health:       store.Health,
		Close:        store.Close,
	}
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func executeErr(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := execute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

type guardedUsers struct {
	next UserRepository
	cb   *gobreaker.CircuitBreaker
}

func (g *guardedUsers) Create(ctx context.Context, user *domain.User) error {
	return executeErr(g.cb, func() error { return g.next.Create(ctx, user) })
}

func (g *guardedUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return execute(g.cb, func() (*domain.User, error) { return g.next.GetByID(ctx, id) })
}

func (g *guardedUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return execute(g.cb, func() (*domain.User, error) { return g.next.GetByEmail(ctx, email) })
}

type guardedCatalog struct {
	next CatalogRepository
	cb   *gobreaker.CircuitBreaker
}

func (g *guardedCatalog) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	return execute(g.cb, func() ([]domain.Treatment, error) { return g.next.ListTreatments(ctx) })
}

func (g *guardedCatalog) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	return execute(g.cb, func() ([]domain.Dentist, error) { return g.next.ListDentists(ctx) })
}

func (g *guardedCatalog) InsertTreatments(ctx context.Context, treatments []domain.Treatment) error {
	return executeErr(g.cb, func() error { return g.next.InsertTreatments(ctx, treatments) })
}

func (g *guardedCatalog) InsertDentists(ctx context.Context, dentists []domain.Dentist) error {
	return executeErr(g.cb, func() error { return g.next.InsertDentists(ctx, dentists) })
}

type guardedAppointments struct {
	next AppointmentRepository
	cb   *gobreaker.CircuitBreaker
}

func (g *guardedAppointments) Create(ctx context.Context, draft domain.AppointmentDraft) (string, error) {
	return execute(g.cb, func() (string, error) { return g.next.Create(ctx, draft) })
}

func (g *guardedAppointments) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	return execute(g.cb, func() (*domain.Appointment, error) { return g.next.Get(ctx, id) })
}

func (g *guardedAppointments) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Appointment, error) {
	return execute(g.cb, func() ([]domain.Appointment, error) { return g.next.ListByOwner(ctx, ownerUserID) })
}

func (g *guardedAppointments) Cancel(ctx context.Context, id string) error {
	return executeErr(g.cb, func() error { return g.next.Cancel(ctx, id) })
}

func (g *guardedAppointments) MarkAttended(ctx context.Context, id string) error {
	return executeErr(g.cb, func() error { return g.next.MarkAttended(ctx, id) })
}

func (g *guardedAppointments) Reschedule(ctx context.Context, id string, sched domain.AppointmentSchedule) error {
	return executeErr(g.cb, func() error { return g.next.Reschedule(ctx, id, sched) })
}

func (g *guardedAppointments) Delete(ctx context.Context, id string) error {
	return executeErr(g.cb, func() error { return g.next.Delete(ctx, id) })
}
