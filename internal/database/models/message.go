package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Direction tells which way a message in the conversation history went.
type Direction string

const (
	// DirectionFromUser is a message the user sent to support.
	DirectionFromUser Direction = "from_user"
	// DirectionToUser is an operator reply delivered to the user.
	DirectionToUser Direction = "to_user"
)

// Message is one entry of a user's conversation history.
// Ordering is by (Timestamp, Seq): Seq is a process-monotonic insert
// counter that breaks ties when two writes land on the same millisecond.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       int64              `bson:"user_id"`
	Text         string             `bson:"text"`
	Direction    Direction          `bson:"direction"`
	OperatorName string             `bson:"operator_name,omitempty"`
	Timestamp    time.Time          `bson:"timestamp"`
	Seq          int64              `bson:"seq"`
}
