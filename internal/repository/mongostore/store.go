// Package mongostore implements the repositories on MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/clinic-booking/internal/repository"
)

// Collection names of the store boundary.
const (
	UsersCollection        = "users"
	AppointmentsCollection = "appointments"
	DentistsCollection     = "dentists"
	TreatmentsCollection   = "treatments"
)

// Open builds the repositories on db and ensures the required indexes exist.
func Open(ctx context.Context, db *mongo.Database, timeout time.Duration) (*repository.Store, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	users := &userRepo{coll: db.Collection(UsersCollection), timeout: timeout}
	appts := &appointmentRepo{coll: db.Collection(AppointmentsCollection), timeout: timeout, now: time.Now}
	catalog := &catalogRepo{
		treatments: db.Collection(TreatmentsCollection),
		dentists:   db.Collection(DentistsCollection),
		timeout:    timeout,
	}

	if err := ensureIndexes(ctx, users.coll, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if err := ensureIndexes(ctx, appts.coll, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerUserId", Value: 1}, {Key: "date", Value: -1}},
	}); err != nil {
		return nil, err
	}

	return &repository.Store{
		Users:        users,
		Catalog:      catalog,
		Appointments: appts,
	}, nil
}

// ensureIndexes creates indexes for fields frequently used in queries.
func ensureIndexes(ctx context.Context, coll *mongo.Collection, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
	}
	return nil
}

// newContext bounds a single store call.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}
