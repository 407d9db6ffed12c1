package models

import "time"

// User is a bot user persisted in the users collection.
// Created on first contact; name and LastContact are refreshed on every
// subsequent contact. Users are never deleted by the bot.
type User struct {
	UserID       int64     `bson:"user_id"`
	Name         string    `bson:"name"`
	PhoneNumber  string    `bson:"phone_number,omitempty"`
	FirstContact time.Time `bson:"first_contact"`
	LastContact  time.Time `bson:"last_contact"`
}
