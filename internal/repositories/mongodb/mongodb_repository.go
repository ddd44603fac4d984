package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/InternBridge/internship-service/internal/repositories"
)

// mongoRepository aggregates the collection repositories over one database
// handle. Connection lifecycle, server-selection timeouts and reconnect
// backoff are owned by the driver; this layer translates driver errors into
// the repository error kinds.
type mongoRepository struct {
	client *mongo.Client
	db     *mongo.Database

	users       *userMongo
	internships *internshipMongo
}

func NewRepository(client *mongo.Client, database string) repositories.Repository {
	db := client.Database(database)
	return &mongoRepository{
		client:      client,
		db:          db,
		users:       &userMongo{col: db.Collection("users")},
		internships: &internshipMongo{col: db.Collection("internships")},
	}
}

func (r *mongoRepository) User() repositories.UserRepository             { return r.users }
func (r *mongoRepository) Internship() repositories.InternshipRepository { return r.internships }

func (r *mongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrUnavailable, err)
	}
	return nil
}

func (r *mongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on: the unique
// email index backs duplicate-signup rejection and the provisioning race,
// and the applicant index backs the per-student application lookups.
func EnsureIndexes(ctx context.Context, client *mongo.Client, database string) error {
	db := client.Database(database)

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating users email index: %w", err)
	}

	_, err = db.Collection("internships").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "applicants.applicant", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating internships applicant index: %w", err)
	}

	return nil
}

// mapError translates driver errors into repository error kinds.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repositories.ErrDuplicate
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", repositories.ErrUnavailable, err)
	default:
		return err
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repositories.ErrNotFound
	}
	return oid, nil
}
