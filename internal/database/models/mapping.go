package models

import "time"

// MessageMapping associates a message forwarded into the support chat with
// the user whose question it carries. Operators reply to the forwarded
// message; the mapping is how the reply finds its way back.
type MessageMapping struct {
	MessageID    string    `bson:"message_id"`
	UserID       int64     `bson:"user_id"`
	UserName     string    `bson:"user_name"`
	QuestionText string    `bson:"question_text"`
	CreatedAt    time.Time `bson:"created_at"`
}
