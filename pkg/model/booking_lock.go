package model

import "time"

// BookingLock is an advisory lock serializing booking creation per room.
// Held only for the duration of a conflict-check-plus-write and expired
// by TTL if a release is missed.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
