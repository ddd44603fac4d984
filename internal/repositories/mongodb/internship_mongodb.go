package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/InternBridge/internship-service/internal/models"
	"github.com/InternBridge/internship-service/internal/repositories"
)

type internshipMongo struct {
	col *mongo.Collection
}

func (i *internshipMongo) Create(ctx context.Context, internship *models.Internship) error {
	now := time.Now()
	internship.CreatedAt = now
	internship.UpdatedAt = now
	if internship.ID.IsZero() {
		internship.ID = primitive.NewObjectID()
	}
	if internship.Applicants == nil {
		internship.Applicants = []models.Application{}
	}

	if _, err := i.col.InsertOne(ctx, internship); err != nil {
		return mapError(err)
	}
	return nil
}

func (i *internshipMongo) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var internship models.Internship
	if err := i.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&internship); err != nil {
		return nil, mapError(err)
	}
	return &internship, nil
}

func (i *internshipMongo) List(ctx context.Context, filters repositories.InternshipFilters) ([]*models.Internship, error) {
	filter := bson.M{}
	if filters.Field != nil {
		filter["field"] = *filters.Field
	}
	if filters.Location != nil {
		filter["location"] = *filters.Location
	}
	if filters.Remote != nil {
		filter["remote"] = *filters.Remote
	}
	if filters.Paid != nil {
		filter["paid"] = *filters.Paid
	}
	if filters.Active != nil {
		filter["active"] = *filters.Active
	}
	if filters.PostedBy != nil {
		oid, err := parseObjectID(*filters.PostedBy)
		if err != nil {
			return nil, err
		}
		filter["posted_by"] = oid
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit)).SetSkip(int64(filters.Offset))
	}

	return i.find(ctx, filter, opts)
}

func (i *internshipMongo) Update(ctx context.Context, id string, update repositories.InternshipUpdate) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Company != nil {
		set["company"] = *update.Company
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Field != nil {
		set["field"] = *update.Field
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Remote != nil {
		set["remote"] = *update.Remote
	}
	if update.Paid != nil {
		set["paid"] = *update.Paid
	}
	if update.ApplicationForm != nil {
		set["application_form"] = *update.ApplicationForm
	}

	return i.updateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
}

func (i *internshipMongo) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := i.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (i *internshipMongo) SetActive(ctx context.Context, id string, active bool) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	// Only the flag moves; the applicants array is untouched.
	return i.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"active": active, "updated_at": time.Now()},
	})
}

// AddApplication pushes the application in one update whose filter excludes
// postings that already contain an entry for this applicant. Document-level
// atomicity makes exactly one of two racing submissions match; the loser is
// told apart from a missing posting by a follow-up existence check.
func (i *internshipMongo) AddApplication(ctx context.Context, postingID string, app *models.Application) error {
	oid, err := parseObjectID(postingID)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid}
	if app.Applicant != nil {
		filter["applicants.applicant"] = bson.M{"$ne": *app.Applicant}
	}

	res, err := i.col.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"applicants": app},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		count, err := i.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return mapError(err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrDuplicate
	}
	return nil
}

// UpdateApplicationStatus sets the status of one embedded application with a
// positional update keyed by (postingID, applicationID) - no read-modify-write
// round trip, so concurrent status clicks cannot clobber sibling entries.
func (i *internshipMongo) UpdateApplicationStatus(ctx context.Context, postingID, applicationID string, status models.ApplicationStatus) error {
	oid, err := parseObjectID(postingID)
	if err != nil {
		return err
	}

	return i.updateOne(ctx,
		bson.M{"_id": oid, "applicants.id": applicationID},
		bson.M{"$set": bson.M{
			"applicants.$.status": status,
			"updated_at":          time.Now(),
		}},
	)
}

func (i *internshipMongo) FindByApplicant(ctx context.Context, userID string) ([]*models.Internship, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	return i.find(ctx, bson.M{"applicants.applicant": oid}, nil)
}

func (i *internshipMongo) FindByApplicants(ctx context.Context, userIDs []string) ([]*models.Internship, error) {
	oids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		oid, err := parseObjectID(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	return i.find(ctx, bson.M{"applicants.applicant": bson.M{"$in": oids}}, nil)
}

func (i *internshipMongo) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := i.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (i *internshipMongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Internship, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = i.col.Find(ctx, filter, opts)
	} else {
		cursor, err = i.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, mapError(err)
	}
	defer cursor.Close(ctx)

	var internships []*models.Internship
	if err := cursor.All(ctx, &internships); err != nil {
		return nil, mapError(err)
	}
	return internships, nil
}
