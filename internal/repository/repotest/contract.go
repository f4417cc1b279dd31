// Package repotest holds behaviour checks shared by every store backend.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

// RunAppointmentContract exercises an AppointmentRepository. owner must be unique per run.
func RunAppointmentContract(t *testing.T, repo repository.AppointmentRepository, owner string) {
	t.Helper()
	ctx := context.Background()

	draft := func(date domain.Date) domain.AppointmentDraft {
		return domain.AppointmentDraft{
			OwnerUserID: owner,
			TreatmentID: "treatment-1",
			DentistID:   "dentist-1",
			PatientName: "Ana Ruiz",
			Date:        date,
			Time:        "09:30",
		}
	}

	t.Run("create then list returns one booked record", func(t *testing.T) {
		id, err := repo.Create(ctx, draft(domain.NewDate(2025, time.January, 1)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		list, err := repo.ListByOwner(ctx, owner)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		matches := 0
		for _, a := range list {
			if a.ID == id {
				matches++
				if a.Status != domain.AppointmentStatusBooked {
					t.Errorf("status = %s, want booked", a.Status)
				}
				if a.CreatedAt.IsZero() || !a.CreatedAt.Equal(a.UpdatedAt) {
					t.Errorf("timestamps = %v / %v", a.CreatedAt, a.UpdatedAt)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("found %d records with id %s, want 1", matches, id)
		}
	})

	t.Run("list is sorted by date descending", func(t *testing.T) {
		for _, d := range []domain.Date{
			domain.NewDate(2025, time.March, 1),
			domain.NewDate(2025, time.February, 1),
		} {
			if _, err := repo.Create(ctx, draft(d)); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}
		list, err := repo.ListByOwner(ctx, owner)
		if err != nil {
			t.Fatalf("ListByOwner() error = %v", err)
		}
		want := []string{"2025-03-01", "2025-02-01", "2025-01-01"}
		if len(list) != len(want) {
			t.Fatalf("len = %d, want %d", len(list), len(want))
		}
		for i, w := range want {
			if got := list[i].Date.String(); got != w {
				t.Errorf("list[%d].Date = %s, want %s", i, got, w)
			}
		}
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		id, err := repo.Create(ctx, draft(domain.NewDate(2025, time.April, 2)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := repo.Cancel(ctx, id); err != nil {
				t.Fatalf("Cancel() #%d error = %v", i+1, err)
			}
			got, err := repo.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Status != domain.AppointmentStatusCancelled {
				t.Fatalf("status after cancel #%d = %s", i+1, got.Status)
			}
		}
	})

	t.Run("missing records report not found", func(t *testing.T) {
		missing := "00000000-0000-0000-0000-000000000000"
		if err := repo.Cancel(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("Cancel() error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
		if _, err := repo.Get(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("reschedule keeps status and owner", func(t *testing.T) {
		id, err := repo.Create(ctx, draft(domain.NewDate(2025, time.June, 2)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		sched := domain.AppointmentSchedule{
			TreatmentID: "treatment-2",
			DentistID:   "dentist-2",
			Date:        domain.NewDate(2025, time.June, 9),
			Time:        "16:00",
		}
		if err := repo.Reschedule(ctx, id, sched); err != nil {
			t.Fatalf("Reschedule() error = %v", err)
		}
		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.TreatmentID != sched.TreatmentID || got.DentistID != sched.DentistID ||
			got.Date.String() != sched.Date.String() || got.Time != sched.Time {
			t.Fatalf("Get() = %+v, want schedule %+v", got, sched)
		}
		if got.Status != domain.AppointmentStatusBooked || got.OwnerUserID != owner {
			t.Fatalf("status/owner = %s/%s", got.Status, got.OwnerUserID)
		}
		if err := repo.Reschedule(ctx, "00000000-0000-0000-0000-000000000000", sched); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("Reschedule() missing error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		id, err := repo.Create(ctx, draft(domain.NewDate(2025, time.May, 5)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
		}
	})
}

// RunUserContract exercises a UserRepository. email must be unique per run.
func RunUserContract(t *testing.T, repo repository.UserRepository, email string) {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{DisplayName: "Luis Herrera", Email: email, PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create() did not assign an id")
	}

	got, err := repo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != user.ID || got.DisplayName != "Luis Herrera" {
		t.Errorf("GetByEmail() = %+v", got)
	}

	dup := &domain.User{DisplayName: "Other", Email: email}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate Create() error = %v, want ErrDuplicate", err)
	}

	if _, err := repo.GetByID(ctx, "missing-user"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
