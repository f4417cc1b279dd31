package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/observability"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/timezone"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// BookingOptions describes what a booking form may offer.
type BookingOptions struct {
	Slots         []string    `json:"slots"`
	MinDate       domain.Date `json:"minDate"`
	MaxDate       domain.Date `json:"maxDate"`
	WindowDays    int         `json:"windowDays"`
	ClosedWeekday string      `json:"closedWeekday"`
	Timezone      string      `json:"timezone"`
}

// BookingService is the booking workflow: it validates and creates appointments and
// lists and cancels the ones owned by the session's user.
type BookingService struct {
	appointments repository.AppointmentRepository
	catalog      *CatalogService
	seeder       *Seeder
	dispatcher   events.Dispatcher
	rules        domain.BookingRules
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// BookingDependencies encapsulates the collaborators of the booking workflow.
type BookingDependencies struct {
	Appointments repository.AppointmentRepository
	Catalog      *CatalogService
	Seeder       *Seeder
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Now          func() time.Time
}

// NewBookingService builds the workflow.
func NewBookingService(cfg config.Config, deps BookingDependencies) *BookingService {
	rules := domain.DefaultBookingRules()
	rules.WindowDays = cfg.Booking.WindowDays
	rules.ClosedDay = cfg.Booking.ClosedWeekday

	loc := timezone.Location(cfg.Booking.Timezone)
	now := deps.Now
	if now == nil {
		now = timezone.Clock(loc)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		appointments: deps.Appointments,
		catalog:      deps.Catalog,
		seeder:       deps.Seeder,
		dispatcher:   deps.Dispatcher,
		rules:        rules,
		loc:          loc,
		now:          now,
		logger:       logger,
		metrics:      deps.Metrics,
	}
}

// Today returns the current date in the clinic timezone.
func (s *BookingService) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// Options returns the slots and date bounds for today.
func (s *BookingService) Options() BookingOptions {
	today := s.Today()
	return BookingOptions{
		Slots:         append([]string(nil), s.rules.Slots...),
		MinDate:       today,
		MaxDate:       s.rules.LastBookableDay(today),
		WindowDays:    s.rules.WindowDays,
		ClosedWeekday: strings.ToLower(s.rules.ClosedDay.String()),
		Timezone:      s.loc.String(),
	}
}

// NewForm returns an empty booking form bound to the clinic rules.
func (s *BookingService) NewForm() *BookingForm {
	return newBookingForm(s.rules, s.Today)
}

// Submit creates the appointment held by form. The form ends in Succeeded or Failed;
// a form that is not Complete is rejected without any store call.
func (s *BookingService) Submit(ctx context.Context, sess *domain.Session, form *BookingForm) (domain.Appointment, error) {
	if sess == nil {
		return domain.Appointment{}, apperrors.NewUnauthorized("no active session")
	}
	in, err := form.begin()
	if err != nil {
		s.metrics.RecordBooking("rejected")
		return domain.Appointment{}, err
	}
	appt, err := s.Create(ctx, sess, in)
	if err != nil {
		form.fail(err)
		return domain.Appointment{}, err
	}
	form.succeed(appt.ID)
	return appt, nil
}

// Create validates the draft, checks it against the catalog and stores it for the session's user.
func (s *BookingService) Create(ctx context.Context, sess *domain.Session, in domain.DraftInput) (domain.Appointment, error) {
	if sess == nil {
		return domain.Appointment{}, apperrors.NewUnauthorized("no active session")
	}
	date, errs := s.rules.ValidateDraft(in, s.Today())
	if len(errs) > 0 {
		s.metrics.RecordBooking("rejected")
		return domain.Appointment{}, apperrors.NewValidationRejected("appointment draft rejected", errs.Details())
	}
	if err := s.checkCatalog(ctx, in); err != nil {
		s.metrics.RecordBooking("rejected")
		return domain.Appointment{}, err
	}

	draft := domain.AppointmentDraft{
		OwnerUserID:  sess.UserID,
		TreatmentID:  strings.TrimSpace(in.TreatmentID),
		DentistID:    strings.TrimSpace(in.DentistID),
		PatientName:  sess.DisplayName,
		PatientEmail: sess.Email,
		Date:         date,
		Time:         strings.TrimSpace(in.Time),
	}
	id, err := s.appointments.Create(ctx, draft)
	if err != nil {
		s.metrics.RecordBooking("failed")
		s.logger.Error("create appointment", zap.String("user_id", sess.UserID), zap.Error(err))
		return domain.Appointment{}, storeError(err, "appointment")
	}

	appt := domain.NewAppointment(id, draft, s.now().UTC())
	s.publish(ctx, events.EventAppointmentBooked, sess.UserID, appt)
	s.metrics.RecordBooking("success")
	s.logger.Info("appointment booked",
		zap.String("appointment_id", id),
		zap.String("user_id", sess.UserID),
		zap.String("date", appt.Date.String()),
		zap.String("time", appt.Time),
	)
	return appt, nil
}

// checkCatalog verifies that the treatment exists and the dentist exists and is available.
func (s *BookingService) checkCatalog(ctx context.Context, in domain.DraftInput) error {
	var (
		treatments []domain.Treatment
		dentists   []domain.Dentist
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		treatments, err = s.catalog.ListTreatments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dentists, err = s.catalog.ListDentists(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	errs := domain.FieldErrors{}
	treatmentID := strings.TrimSpace(in.TreatmentID)
	found := false
	for _, t := range treatments {
		if t.ID == treatmentID {
			found = true
			break
		}
	}
	if !found {
		errs[domain.FieldTreatment] = domain.ReasonUnknown
	}

	dentistID := strings.TrimSpace(in.DentistID)
	errs[domain.FieldDentist] = domain.ReasonUnknown
	for _, d := range dentists {
		if d.ID != dentistID {
			continue
		}
		if d.Available {
			delete(errs, domain.FieldDentist)
		} else {
			errs[domain.FieldDentist] = domain.ReasonUnavailable
		}
		break
	}

	if len(errs) > 0 {
		return apperrors.NewValidationRejected("appointment draft rejected", errs.Details())
	}
	return nil
}

// ListAppointments returns the session user's appointments, newest date first.
func (s *BookingService) ListAppointments(ctx context.Context, sess *domain.Session) ([]domain.Appointment, error) {
	if sess == nil {
		return nil, apperrors.NewUnauthorized("no active session")
	}
	list, err := s.appointments.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, storeError(err, "appointment")
	}
	repository.SortNewestFirst(list)
	return list, nil
}

// Dashboard loads the appointments and both catalog lists concurrently. A failed read
// is reported on its section; the other sections keep their data. An error is returned
// only when every read failed.
func (s *BookingService) Dashboard(ctx context.Context, sess *domain.Session) (*Dashboard, error) {
	if sess == nil {
		return nil, apperrors.NewUnauthorized("no active session")
	}

	var (
		appts               []domain.Appointment
		treatments          []domain.Treatment
		dentists            []domain.Dentist
		apptErr, tErr, dErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		appts, apptErr = s.ListAppointments(ctx, sess)
		return nil
	})
	g.Go(func() error {
		treatments, tErr = s.catalog.ListTreatments(ctx)
		return nil
	})
	g.Go(func() error {
		dentists, dErr = s.catalog.ListDentists(ctx)
		return nil
	})
	_ = g.Wait()

	if apptErr != nil && tErr != nil && dErr != nil {
		s.metrics.RecordDashboard("unavailable")
		return nil, apptErr
	}

	catalogErr := tErr
	if catalogErr == nil {
		catalogErr = dErr
	}
	if treatments == nil {
		treatments = []domain.Treatment{}
	}
	if dentists == nil {
		dentists = []domain.Dentist{}
	}

	d := &Dashboard{
		Appointments:          buildEntries(appts, treatments, dentists),
		Treatments:            treatments,
		Dentists:              dentists,
		CatalogNotInitialized: catalogErr != nil || len(treatments) == 0 || len(dentists) == 0,
		AppointmentsError:     sectionError(apptErr),
		CatalogError:          sectionError(catalogErr),
	}
	d.recount()

	if apptErr != nil {
		s.logger.Warn("dashboard appointments unavailable", zap.String("user_id", sess.UserID), zap.Error(apptErr))
	}
	if catalogErr != nil {
		s.logger.Warn("dashboard catalog unavailable", zap.Error(catalogErr))
	}
	s.metrics.RecordDashboard(d.State())
	return d, nil
}

// Cancel sets the session user's appointment to cancelled. Cancelling an already cancelled
// appointment succeeds; appointments of other users are reported as not found.
func (s *BookingService) Cancel(ctx context.Context, sess *domain.Session, appointmentID string) (domain.Appointment, error) {
	if sess == nil {
		return domain.Appointment{}, apperrors.NewUnauthorized("no active session")
	}
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		s.metrics.RecordCancellation("failed")
		return domain.Appointment{}, storeError(err, "appointment")
	}
	if appt.OwnerUserID != sess.UserID {
		s.metrics.RecordCancellation("not_found")
		return domain.Appointment{}, apperrors.NewNotFound("appointment", nil)
	}
	if !appt.Status.CanTransitionTo(domain.AppointmentStatusCancelled) {
		s.metrics.RecordCancellation("rejected")
		return domain.Appointment{}, apperrors.NewValidationRejected("appointment can no longer be cancelled",
			map[string]any{"status": string(appt.Status)})
	}

	wasBooked := appt.Status == domain.AppointmentStatusBooked
	if err := s.appointments.Cancel(ctx, appointmentID); err != nil {
		s.metrics.RecordCancellation("failed")
		return domain.Appointment{}, storeError(err, "appointment")
	}
	if stored, err := s.appointments.Get(ctx, appointmentID); err == nil {
		appt = stored
	} else {
		s.logger.Warn("reload cancelled appointment", zap.String("appointment_id", appointmentID), zap.Error(err))
		appt.Status = domain.AppointmentStatusCancelled
		appt.UpdatedAt = s.now().UTC()
	}

	if wasBooked {
		s.publish(ctx, events.EventAppointmentCancelled, sess.UserID, *appt)
	}
	s.metrics.RecordCancellation("success")
	return *appt, nil
}

// Reschedule moves a booked appointment of the session's user to another treatment, dentist
// or slot. The new values go through the same checks as a new booking.
func (s *BookingService) Reschedule(ctx context.Context, sess *domain.Session, appointmentID string, in domain.DraftInput) (domain.Appointment, error) {
	if sess == nil {
		return domain.Appointment{}, apperrors.NewUnauthorized("no active session")
	}
	date, errs := s.rules.ValidateDraft(in, s.Today())
	if len(errs) > 0 {
		return domain.Appointment{}, apperrors.NewValidationRejected("appointment draft rejected", errs.Details())
	}

	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, storeError(err, "appointment")
	}
	if appt.OwnerUserID != sess.UserID {
		return domain.Appointment{}, apperrors.NewNotFound("appointment", nil)
	}
	if appt.Status != domain.AppointmentStatusBooked {
		return domain.Appointment{}, apperrors.NewValidationRejected("only booked appointments can be rescheduled",
			map[string]any{"status": string(appt.Status)})
	}
	if err := s.checkCatalog(ctx, in); err != nil {
		return domain.Appointment{}, err
	}

	sched := domain.AppointmentSchedule{
		TreatmentID: strings.TrimSpace(in.TreatmentID),
		DentistID:   strings.TrimSpace(in.DentistID),
		Date:        date,
		Time:        strings.TrimSpace(in.Time),
	}
	if err := s.appointments.Reschedule(ctx, appointmentID, sched); err != nil {
		s.logger.Error("reschedule appointment", zap.String("appointment_id", appointmentID), zap.Error(err))
		return domain.Appointment{}, storeError(err, "appointment")
	}
	updated, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, storeError(err, "appointment")
	}

	s.publish(ctx, events.EventAppointmentRescheduled, sess.UserID, *updated)
	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", appointmentID),
		zap.String("date", updated.Date.String()),
		zap.String("time", updated.Time))
	return *updated, nil
}

// MarkAttended records that a booked appointment took place. It is an administrative
// operation and is not scoped to a session.
func (s *BookingService) MarkAttended(ctx context.Context, appointmentID string) error {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return storeError(err, "appointment")
	}
	if !appt.Status.CanTransitionTo(domain.AppointmentStatusAttended) {
		return apperrors.NewValidationRejected("only booked appointments can be attended",
			map[string]any{"status": string(appt.Status)})
	}
	if err := s.appointments.MarkAttended(ctx, appointmentID); err != nil {
		return storeError(err, "appointment")
	}
	s.logger.Info("appointment attended", zap.String("appointment_id", appointmentID))
	return nil
}

// Delete permanently removes an appointment. The booking flow never calls it.
func (s *BookingService) Delete(ctx context.Context, appointmentID string) error {
	if err := s.appointments.Delete(ctx, appointmentID); err != nil {
		return storeError(err, "appointment")
	}
	s.logger.Info("appointment deleted", zap.String("appointment_id", appointmentID))
	return nil
}

// CancelFromDashboard cancels and, on success, updates the loaded dashboard in place.
// On failure the dashboard is left unchanged.
func (s *BookingService) CancelFromDashboard(ctx context.Context, sess *domain.Session, d *Dashboard, appointmentID string) error {
	appt, err := s.Cancel(ctx, sess, appointmentID)
	if err != nil {
		return err
	}
	d.ApplyCancellation(appt.ID, appt.UpdatedAt)
	return nil
}

// SeedCatalog inserts the reference lists that are missing. It refuses when both lists
// already have records, since seeding is not idempotent.
func (s *BookingService) SeedCatalog(ctx context.Context) (SeedResult, error) {
	var (
		treatments []domain.Treatment
		dentists   []domain.Dentist
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		treatments, err = s.catalog.ListTreatments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dentists, err = s.catalog.ListDentists(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return SeedResult{}, err
	}
	if len(treatments) > 0 && len(dentists) > 0 {
		return SeedResult{}, apperrors.NewConflict("catalog already initialized", map[string]any{
			"treatments": len(treatments),
			"dentists":   len(dentists),
		})
	}

	res, err := s.seeder.seed(ctx, len(treatments) == 0, len(dentists) == 0)
	if err != nil {
		return res, storeError(err, "catalog")
	}
	s.logger.Info("catalog seeded", zap.Int("treatments", res.Treatments), zap.Int("dentists", res.Dentists))
	return res, nil
}

func (s *BookingService) publish(ctx context.Context, eventType events.EventType, actorID string, appt domain.Appointment) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.NewEvent(eventType, appt.ID, actorID, events.AppointmentPayload{Appointment: appt})); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
