// Package memory provides an in-process store used for local development and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]domain.User
	treatments   []domain.Treatment
	dentists     []domain.Dentist
	appointments map[string]domain.Appointment
}

// Option customizes the store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]domain.User),
		appointments: make(map[string]domain.Appointment),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:        userRepo{s},
		Catalog:      catalogRepo{s},
		Appointments: appointmentRepo{s},
		Health:       s,
		Close:        func() {},
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type userRepo struct{ s *Store }

var _ repository.UserRepository = userRepo{}

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	} else if _, exists := r.s.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type catalogRepo struct{ s *Store }

var _ repository.CatalogRepository = catalogRepo{}

func (r catalogRepo) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Treatment(nil), r.s.treatments...), nil
}

func (r catalogRepo) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Dentist, 0, len(r.s.dentists))
	for _, d := range r.s.dentists {
		d.Schedule = append([]string(nil), d.Schedule...)
		out = append(out, d)
	}
	return out, nil
}

func (r catalogRepo) InsertTreatments(ctx context.Context, treatments []domain.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range treatments {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		r.s.treatments = append(r.s.treatments, t)
	}
	return nil
}

func (r catalogRepo) InsertDentists(ctx context.Context, dentists []domain.Dentist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range dentists {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		r.s.dentists = append(r.s.dentists, d)
	}
	return nil
}

type appointmentRepo struct{ s *Store }

var _ repository.AppointmentRepository = appointmentRepo{}

func (r appointmentRepo) Create(ctx context.Context, draft domain.AppointmentDraft) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := uuid.NewString()
	r.s.appointments[id] = domain.NewAppointment(id, draft, r.s.now())
	return id, nil
}

func (r appointmentRepo) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r appointmentRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Appointment, error) {
	r.s.mu.RLock()
	out := make([]domain.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.OwnerUserID == ownerUserID {
			out = append(out, a)
		}
	}
	r.s.mu.RUnlock()

	repository.SortNewestFirst(out)
	return out, nil
}

func (r appointmentRepo) Cancel(ctx context.Context, id string) error {
	return r.setStatus(id, domain.AppointmentStatusCancelled)
}

func (r appointmentRepo) MarkAttended(ctx context.Context, id string) error {
	return r.setStatus(id, domain.AppointmentStatusAttended)
}

func (r appointmentRepo) setStatus(id string, status domain.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = r.s.now()
	r.s.appointments[id] = a
	return nil
}

func (r appointmentRepo) Reschedule(ctx context.Context, id string, sched domain.AppointmentSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.TreatmentID = sched.TreatmentID
	a.DentistID = sched.DentistID
	a.Date = sched.Date
	a.Time = sched.Time
	a.UpdatedAt = r.s.now()
	r.s.appointments[id] = a
	return nil
}

func (r appointmentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}
