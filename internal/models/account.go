package models

import "time"

// Account represents an application account. Identity is a unique display
// name plus a 4-digit PIN; the PIN is stored as a bcrypt hash, never raw.
type Account struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	PINHash   string    `bson:"pinHash" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
