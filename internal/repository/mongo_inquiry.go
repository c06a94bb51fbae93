package repository

import (
	"context"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInquiryRepository implements domain.InquiryRepository
type MongoInquiryRepository struct {
	collection *mongo.Collection
}

// NewMongoInquiryRepository creates a new inquiry repository
func NewMongoInquiryRepository(db *mongo.Database) *MongoInquiryRepository {
	return &MongoInquiryRepository{
		collection: db.Collection("inquiries"),
	}
}

func (r *MongoInquiryRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	inq.CreatedAt = time.Now().UTC()

	res, err := r.collection.InsertOne(ctx, bson.M{
		"reference_id": inq.ReferenceID,
		"name":         inq.Name,
		"email":        inq.Email,
		"subject":      inq.Subject,
		"message":      inq.Message,
		"created_at":   inq.CreatedAt,
	})
	if err != nil {
		return wrapStoreErr("failed to create inquiry", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inq.ID = oid.Hex()
	}
	return nil
}

func (r *MongoInquiryRepository) List(ctx context.Context) ([]*domain.Inquiry, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapStoreErr("failed to list inquiries", err)
	}
	defer cursor.Close(ctx)

	inquiries := []*domain.Inquiry{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, mapDocToInquiry(raw))
	}
	return inquiries, cursor.Err()
}

func mapDocToInquiry(raw bson.M) *domain.Inquiry {
	inq := &domain.Inquiry{}

	if id, ok := raw["_id"].(primitive.ObjectID); ok {
		inq.ID = id.Hex()
	}
	if ref, ok := raw["reference_id"].(string); ok {
		inq.ReferenceID = ref
	}
	if name, ok := raw["name"].(string); ok {
		inq.Name = name
	}
	if email, ok := raw["email"].(string); ok {
		inq.Email = email
	}
	if subject, ok := raw["subject"].(string); ok {
		inq.Subject = subject
	}
	if message, ok := raw["message"].(string); ok {
		inq.Message = message
	}
	inq.CreatedAt = coerceTime(raw["created_at"])

	return inq
}
