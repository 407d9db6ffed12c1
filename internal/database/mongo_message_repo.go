package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"support-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageRepository implements MessageRepository for MongoDB.
//
// Every insert gets a process-monotonic seq in addition to its timestamp.
// Millisecond timestamps can collide when an operator replies fast; the
// (timestamp, seq) pair stays strictly ordered within one process, which is
// all the reply counter needs because the event loop is the only writer of
// a user's conversation and processes events in arrival order.
type MongoMessageRepository struct {
	collection *mongo.Collection
	seq        atomic.Int64
}

// NewMongoMessageRepository creates a new MongoDB message repository.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection(messagesCollectionName)}
}

// SaveUserMessage appends a user→support message.
func (r *MongoMessageRepository) SaveUserMessage(ctx context.Context, userID int64, text string) (*models.Message, error) {
	return r.save(ctx, &models.Message{
		UserID:    userID,
		Text:      text,
		Direction: models.DirectionFromUser,
	})
}

// SaveOperatorMessage appends an operator→user reply.
func (r *MongoMessageRepository) SaveOperatorMessage(ctx context.Context, userID int64, text, operatorName string) (*models.Message, error) {
	return r.save(ctx, &models.Message{
		UserID:       userID,
		Text:         text,
		Direction:    models.DirectionToUser,
		OperatorName: operatorName,
	})
}

func (r *MongoMessageRepository) save(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.ID = primitive.NewObjectID()
	msg.Timestamp = time.Now()
	msg.Seq = r.seq.Add(1)

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to insert message for user %d: %w", msg.UserID, err)
	}
	return msg, nil
}

// UserMessages returns the user's history, newest first, up to limit.
func (r *MongoMessageRepository) UserMessages(ctx context.Context, userID int64, limit int64) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages for user %d: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages for user %d: %w", userID, err)
	}
	return messages, nil
}

// LastUserMessage returns the most recent user→support message, or (nil, nil)
// when the user has not written yet.
func (r *MongoMessageRepository) LastUserMessage(ctx context.Context, userID int64) (*models.Message, error) {
	filter := bson.M{"user_id": userID, "direction": models.DirectionFromUser}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})

	var msg models.Message
	err := r.collection.FindOne(ctx, filter, opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last user message for user %d: %w", userID, err)
	}
	return &msg, nil
}

// CountOperatorRepliesAfter counts operator→user messages strictly after the
// (after, afterSeq) watermark. Equal timestamps fall back to seq order so a
// reply sharing the watermark's millisecond is neither dropped nor counted twice.
func (r *MongoMessageRepository) CountOperatorRepliesAfter(ctx context.Context, userID int64, after time.Time, afterSeq int64) (int64, error) {
	filter := bson.M{
		"user_id":   userID,
		"direction": models.DirectionToUser,
		"$or": bson.A{
			bson.M{"timestamp": bson.M{"$gt": after}},
			bson.M{"timestamp": after, "seq": bson.M{"$gt": afterSeq}},
		},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies for user %d: %w", userID, err)
	}
	return count, nil
}

// CountOperatorReplies counts all operator→user messages for the user.
func (r *MongoMessageRepository) CountOperatorReplies(ctx context.Context, userID int64) (int64, error) {
	filter := bson.M{"user_id": userID, "direction": models.DirectionToUser}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count operator replies for user %d: %w", userID, err)
	}
	return count, nil
}

// AllMessages returns the whole history across users, oldest first.
func (r *MongoMessageRepository) AllMessages(ctx context.Context) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
