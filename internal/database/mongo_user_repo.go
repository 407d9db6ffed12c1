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

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollectionName)}
}

// Upsert creates the user on first contact or refreshes name and last-contact.
func (r *MongoUserRepository) Upsert(ctx context.Context, userID int64, name string) (*models.User, error) {
	now := time.Now()
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"name":         name,
			"last_contact": now,
		},
		"$setOnInsert": bson.M{
			"user_id":       userID,
			"first_contact": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return &user, nil
}

// SetPhone stores the user's phone number.
func (r *MongoUserRepository) SetPhone(ctx context.Context, userID int64, phone string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"phone_number": phone}},
	)
	if err != nil {
		return fmt.Errorf("failed to set phone for user %d: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Get returns the user or ErrUserNotFound.
func (r *MongoUserRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user %d: %w", userID, err)
	}
	return &user, nil
}

// All returns every known user ordered by first contact.
func (r *MongoUserRepository) All(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "first_contact", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// AllIDs returns the ids of every known user ordered by first contact.
func (r *MongoUserRepository) AllIDs(ctx context.Context) ([]int64, error) {
	users, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	return ids, nil
}
