package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/clinic-booking/internal/domain"
	"github.com/spec-kit/clinic-booking/internal/repository"
)

type userRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := r.coll.InsertOne(ctx, newUserDocument(user))
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toDomain(), nil
}

type catalogRepo struct {
	treatments *mongo.Collection
	dentists   *mongo.Collection
	timeout    time.Duration
}

var _ repository.CatalogRepository = (*catalogRepo)(nil)

func (r *catalogRepo) ListTreatments(ctx context.Context) ([]domain.Treatment, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	var docs []treatmentDocument
	if err := findAll(ctx, r.treatments, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Treatment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *catalogRepo) ListDentists(ctx context.Context) ([]domain.Dentist, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	var docs []dentistDocument
	if err := findAll(ctx, r.dentists, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Dentist, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *catalogRepo) InsertTreatments(ctx context.Context, treatments []domain.Treatment) error {
	docs := make([]interface{}, 0, len(treatments))
	for _, t := range treatments {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		docs = append(docs, newTreatmentDocument(t))
	}
	return insertMany(ctx, r.treatments, docs, r.timeout)
}

func (r *catalogRepo) InsertDentists(ctx context.Context, dentists []domain.Dentist) error {
	docs := make([]interface{}, 0, len(dentists))
	for _, d := range dentists {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		docs = append(docs, newDentistDocument(d))
	}
	return insertMany(ctx, r.dentists, docs, r.timeout)
}

func findAll(ctx context.Context, coll *mongo.Collection, out interface{}) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return mapError(err)
	}
	defer cursor.Close(ctx)
	return mapError(cursor.All(ctx, out))
}

func insertMany(ctx context.Context, coll *mongo.Collection, docs []interface{}, timeout time.Duration) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, cancel := newContext(ctx, timeout)
	defer cancel()
	_, err := coll.InsertMany(ctx, docs)
	return mapError(err)
}

type appointmentRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

var _ repository.AppointmentRepository = (*appointmentRepo)(nil)

func (r *appointmentRepo) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *appointmentRepo) Create(ctx context.Context, draft domain.AppointmentDraft) (string, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	appt := domain.NewAppointment(uuid.NewString(), draft, r.stamp())
	if _, err := r.coll.InsertOne(ctx, newAppointmentDocument(appt)); err != nil {
		return "", mapError(err)
	}
	return appt.ID, nil
}

func (r *appointmentRepo) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	var doc appointmentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	appt, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Appointment, error) {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"ownerUserId": ownerUserID})
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var docs []appointmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err)
	}

	out := make([]domain.Appointment, 0, len(docs))
	for _, d := range docs {
		appt, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	repository.SortNewestFirst(out)
	return out, nil
}

func (r *appointmentRepo) Cancel(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.AppointmentStatusCancelled)
}

func (r *appointmentRepo) MarkAttended(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.AppointmentStatusAttended)
}

func (r *appointmentRepo) setStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	return r.update(ctx, id, bson.M{"status": string(status)})
}

func (r *appointmentRepo) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	set["updatedAt"] = r.stamp()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepo) Reschedule(ctx context.Context, id string, sched domain.AppointmentSchedule) error {
	return r.update(ctx, id, bson.M{
		"treatmentId": sched.TreatmentID,
		"dentistId":   sched.DentistID,
		"date":        sched.Date.String(),
		"time":        sched.Time,
	})
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
