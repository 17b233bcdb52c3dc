package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/domain"
)

func (s *Store) users() *mongo.Collection {
	return s.DB.Collection(domain.CollUsers)
}

func (s *Store) EnsureUserIndexes(ctx context.Context) error {
	// The unique constraint is what resolves duplicate-registration races;
	// there is deliberately no find-then-insert pre-check.
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// CreateUser inserts u, filling ID and CreatedAt. A duplicate email surfaces
// as apperr.Conflict.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert")
	defer sp.Finish()

	if len(u.Roles) == 0 {
		u.Roles = []domain.Role{domain.RoleUser}
	}
	u.CreatedAt = time.Now().UTC()
	res, err := s.users().InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("Email already registered").WithCause(err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_email")
	defer sp.Finish()
	return s.findUser(ctx, sp, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_id")
	defer sp.Finish()
	return s.findUser(ctx, sp, bson.M{"_id": id})
}

// FindUserByProvider looks a user up by federated identity.
func (s *Store) FindUserByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_provider",
		tracer.Tag("provider", provider))
	defer sp.Finish()
	return s.findUser(ctx, sp, bson.M{"provider": provider, "providerId": providerID})
}

// LinkProvider backfills federated identity fields onto an existing account.
func (s *Store) LinkProvider(ctx context.Context, id primitive.ObjectID, provider, providerID string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.link_provider",
		tracer.Tag("provider", provider))
	defer sp.Finish()

	_, err := s.users().UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"provider": provider, "providerId": providerID},
	})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) findUser(ctx context.Context, sp ddtrace.Span, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.users().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}
