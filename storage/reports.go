package storage

import (
	"context"
	"fmt"

	"github.com/nazar-zhcet26/Tenant-management/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository stores submitted reports. There is no update or delete.
type ReportRepository interface {
	Insert(ctx context.Context, r models.Report) error
	List(ctx context.Context) ([]models.Report, error)
	// HasAttachment reports whether a stored report references the attachment.
	HasAttachment(ctx context.Context, attachmentID string) (bool, error)
	// AttachmentIDs returns the ids of every attachment referenced by a report.
	AttachmentIDs(ctx context.Context) (map[string]struct{}, error)
}

type MongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{collection: db.Collection("reports")}
}

func (r *MongoReportRepository) Insert(ctx context.Context, report models.Report) error {
	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// List returns every report, newest first.
func (r *MongoReportRepository) List(ctx context.Context) ([]models.Report, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dateSubmitted", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	for i := range reports {
		if reports[i].Photos == nil {
			reports[i].Photos = []models.Attachment{}
		}
		if reports[i].Videos == nil {
			reports[i].Videos = []models.Attachment{}
		}
	}
	return reports, nil
}

func attachmentFilter(attachmentID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"photos.id": attachmentID},
		bson.M{"videos.id": attachmentID},
	}}
}

func (r *MongoReportRepository) HasAttachment(ctx context.Context, attachmentID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, attachmentFilter(attachmentID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up attachment: %w", err)
	}
	return count > 0, nil
}

func (r *MongoReportRepository) AttachmentIDs(ctx context.Context) (map[string]struct{}, error) {
	findOptions := options.Find().SetProjection(bson.M{"photos.id": 1, "videos.id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve report attachments: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make(map[string]struct{})
	for cursor.Next(ctx) {
		var report models.Report
		if err := cursor.Decode(&report); err != nil {
			return nil, fmt.Errorf("failed to decode report attachments: %w", err)
		}
		for _, a := range report.Photos {
			ids[a.ID] = struct{}{}
		}
		for _, a := range report.Videos {
			ids[a.ID] = struct{}{}
		}
	}
	return ids, cursor.Err()
}

// EnsureReportIndex indexes dateSubmitted for the newest-first listing and the
// attachment ids used for preview lookups.
func EnsureReportIndex(ctx context.Context, db *mongo.Database) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "dateSubmitted", Value: -1}},
	}
	indexModels := []mongo.IndexModel{
		indexModel,
		{Keys: bson.D{{Key: "photos.id", Value: 1}}},
		{Keys: bson.D{{Key: "videos.id", Value: 1}}},
	}
	_, err := db.Collection("reports").Indexes().CreateMany(ctx, indexModels)
	return err
}
