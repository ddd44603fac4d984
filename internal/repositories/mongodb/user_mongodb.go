package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
)

const maxStudentListing = 200

type userMongo struct {
	col *mongo.Collection
}

func (u *userMongo) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := u.col.InsertOne(ctx, user); err != nil {
		return mapError(err)
	}
	return nil
}

func (u *userMongo) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := u.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (u *userMongo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (u *userMongo) UpdateProfile(ctx context.Context, id string, profile models.Profile) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	return u.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"profile": profile, "updated_at": time.Now()},
	})
}

func (u *userMongo) SetVerified(ctx context.Context, id string, verified bool) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	return u.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"verified": verified, "updated_at": time.Now()},
	})
}

func (u *userMongo) SetRole(ctx context.Context, id string, role models.UserRole) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	return u.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now()},
	})
}

// AddApplicationReward bumps points and the streak in one $inc so concurrent
// submissions never lose an increment; the badge rides the same update.
func (u *userMongo) AddApplicationReward(ctx context.Context, id string, points int, badgeKey string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{
			"gamification.points":             points,
			"gamification.application_streak": 1,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}
	if badgeKey != "" {
		update["$push"] = bson.M{
			"gamification.badges": models.Badge{Key: badgeKey, AwardedAt: time.Now()},
		}
	}

	return u.updateOne(ctx, bson.M{"_id": oid}, update)
}

func (u *userMongo) ListStudents(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	filter := bson.M{"role": models.RoleStudent}
	if filters.Role != nil {
		filter["role"] = *filters.Role
	}
	if filters.Query != "" {
		filter["email"] = bson.M{"$regex": regexp.QuoteMeta(filters.Query), "$options": "i"}
	}

	limit := filters.Limit
	if limit <= 0 || limit > maxStudentListing {
		limit = maxStudentListing
	}
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(filters.Offset))

	return u.find(ctx, filter, opts)
}

func (u *userMongo) FindStudentsByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			normalized = append(normalized, e)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	return u.find(ctx, bson.M{
		"role":  models.RoleStudent,
		"email": bson.M{"$in": normalized},
	}, nil)
}

func (u *userMongo) FindStudentsByDomain(ctx context.Context, domain string) ([]*models.User, error) {
	domain = strings.TrimLeft(strings.TrimSpace(domain), "*@ ")
	if domain == "" {
		return nil, nil
	}

	pattern := fmt.Sprintf("@%s$", regexp.QuoteMeta(domain))
	return u.find(ctx, bson.M{
		"role":  models.RoleStudent,
		"email": bson.M{"$regex": pattern, "$options": "i"},
	}, nil)
}

func (u *userMongo) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := u.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (u *userMongo) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := u.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (u *userMongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = u.col.Find(ctx, filter, opts)
	} else {
		cursor, err = u.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}
