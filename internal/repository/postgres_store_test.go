package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/persistence"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/repository/repotest"
)

func openPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := persistence.RunMigrations(context.Background(), pool, "../../migrations", zap.NewNop()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return pool
}

func TestPostgresAppointmentContract(t *testing.T) {
	store := repository.NewPostgresStore(openPostgres(t))
	repotest.RunAppointmentContract(t, store.Appointments, "owner-"+uuid.NewString())
}

func TestPostgresUserContract(t *testing.T) {
	store := repository.NewPostgresStore(openPostgres(t))
	repotest.RunUserContract(t, store.Users, uuid.NewString()+"@example.com")
}
