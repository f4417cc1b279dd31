package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-booking/internal/domain"
)

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogRepository returns a Postgres-backed implementation.
func NewPostgresCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	const query = `
        SELECT id, name, duration_label, price_amount, description, category
        FROM treatments ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]domain.Treatment, 0)
	for rows.Next() {
		var t domain.Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.DurationLabel, &t.PriceAmount, &t.Description, &t.Category); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, mapPgError(rows.Err())
}

func (r *catalogRepository) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	const query = `
        SELECT id, name, specialty, available, schedule, experience_label
        FROM dentists ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]domain.Dentist, 0)
	for rows.Next() {
		var d domain.Dentist
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Available, &d.Schedule, &d.ExperienceLabel); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, mapPgError(rows.Err())
}

func (r *catalogRepository) InsertTreatments(ctx context.Context, treatments []domain.Treatment) error {
	const query = `
        INSERT INTO treatments (id, name, duration_label, price_amount, description, category)
        VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for _, t := range treatments {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		batch.Queue(query, t.ID, t.Name, t.DurationLabel, t.PriceAmount, t.Description, t.Category)
	}
	return r.sendBatch(ctx, batch)
}

func (r *catalogRepository) InsertDentists(ctx context.Context, dentists []domain.Dentist) error {
	const query = `
        INSERT INTO dentists (id, name, specialty, available, schedule, experience_label)
        VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for _, d := range dentists {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		schedule := d.Schedule
		if schedule == nil {
			schedule = []string{}
		}
		batch.Queue(query, d.ID, d.Name, d.Specialty, d.Available, schedule, d.ExperienceLabel)
	}
	return r.sendBatch(ctx, batch)
}

func (r *catalogRepository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	return mapPgError(r.pool.SendBatch(ctx, batch).Close())
}
