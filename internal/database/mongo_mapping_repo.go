package database

import (
	"context"
	"fmt"
	"time"

	"support-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMappingRepository implements MappingRepository for MongoDB.
type MongoMappingRepository struct {
	collection *mongo.Collection
}

// NewMongoMappingRepository creates a new MongoDB message mapping repository.
func NewMongoMappingRepository(db *mongo.Database) *MongoMappingRepository {
	return &MongoMappingRepository{collection: db.Collection(mappingsCollectionName)}
}

// Save upserts the mapping keyed by messageID; last write wins.
func (r *MongoMappingRepository) Save(ctx context.Context, messageID string, userID int64, userName, questionText string) (*models.MessageMapping, error) {
	filter := bson.M{"message_id": messageID}
	update := bson.M{
		"$set": bson.M{
			"user_id":       userID,
			"user_name":     userName,
			"question_text": questionText,
		},
		"$setOnInsert": bson.M{
			"message_id": messageID,
			"created_at": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mapping models.MessageMapping
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("failed to upsert mapping %s: %w", messageID, err)
	}
	return &mapping, nil
}

// Get returns the mapping or ErrMappingNotFound.
func (r *MongoMappingRepository) Get(ctx context.Context, messageID string) (*models.MessageMapping, error) {
	var mapping models.MessageMapping
	err := r.collection.FindOne(ctx, bson.M{"message_id": messageID}).Decode(&mapping)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to find mapping %s: %w", messageID, err)
	}
	return &mapping, nil
}
