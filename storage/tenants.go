package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nazar-zhcet26/Tenant-management/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrEmailTaken     = errors.New("tenant with this email already exists")
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	FindByEmail(ctx context.Context, email string) (*models.Tenant, error)
	FindByID(ctx context.Context, id string) (*models.Tenant, error)
}

type MongoTenantRepository struct {
	collection *mongo.Collection
}

func NewMongoTenantRepository(db *mongo.Database) *MongoTenantRepository {
	return &MongoTenantRepository{collection: db.Collection("tenants")}
}

// EnsureTenantIndex creates a unique index on email.
func EnsureTenantIndex(ctx context.Context, db *mongo.Database) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := db.Collection("tenants").Indexes().CreateOne(ctx, indexModel)
	return err
}

func (r *MongoTenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": t.Email})
	if err != nil {
		return fmt.Errorf("failed to check existing tenant: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

func (r *MongoTenantRepository) FindByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoTenantRepository) FindByID(ctx context.Context, id string) (*models.Tenant, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrTenantNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MongoTenantRepository) findOne(ctx context.Context, filter bson.M) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.collection.FindOne(ctx, filter).Decode(&tenant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tenant: %w", err)
	}
	return &tenant, nil
}
