package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

const appointmentColumns = `id, owner_user_id, treatment_id, dentist_id, patient_name, patient_email,
        appointment_date, appointment_time, status, created_at, updated_at`

type appointmentRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresAppointmentRepository returns a Postgres-backed implementation.
func NewPostgresAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool, now: time.Now}
}

func (r *appointmentRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *appointmentRepository) Create(ctx context.Context, draft domain.AppointmentDraft) (string, error) {
	const query = `
        INSERT INTO appointments (` + appointmentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	appt := domain.NewAppointment(uuid.NewString(), draft, r.stamp())
	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.OwnerUserID,
		appt.TreatmentID,
		appt.DentistID,
		appt.PatientName,
		appt.PatientEmail,
		appt.Date.Time(),
		appt.Time,
		string(appt.Status),
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return "", mapPgError(err)
	}
	return appt.ID, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=$1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return &appt, nil
}

func (r *appointmentRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE owner_user_id=$1`

	rows, err := r.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	SortNewestFirst(out)
	return out, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.AppointmentStatusCancelled)
}

func (r *appointmentRepository) MarkAttended(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.AppointmentStatusAttended)
}

func (r *appointmentRepository) setStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	const query = `UPDATE appointments SET status=$1, updated_at=$2 WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, string(status), r.stamp(), id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id string, sched domain.AppointmentSchedule) error {
	const query = `
        UPDATE appointments
        SET treatment_id=$1, dentist_id=$2, appointment_date=$3, appointment_time=$4, updated_at=$5
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query, sched.TreatmentID, sched.DentistID, sched.Date.Time(), sched.Time, r.stamp(), id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (domain.Appointment, error) {
	var (
		appt   domain.Appointment
		date   time.Time
		status string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.OwnerUserID,
		&appt.TreatmentID,
		&appt.DentistID,
		&appt.PatientName,
		&appt.PatientEmail,
		&date,
		&appt.Time,
		&status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return domain.Appointment{}, err
	}

	parsed, err := domain.ParseAppointmentStatus(status)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("%w: appointment %s: %v", ErrCorrupt, appt.ID, err)
	}
	appt.Status = parsed
	appt.Date = domain.DateOf(date)
	return appt, nil
}

// NewPostgresStore bundles the Postgres repositories.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:        NewPostgresUserRepository(pool),
		Catalog:      NewPostgresCatalogRepository(pool),
		Appointments: NewPostgresAppointmentRepository(pool),
	}
}
