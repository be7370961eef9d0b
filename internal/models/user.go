package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered passenger account. Account management is owned
// by the auth layer; the reservation core only resolves user identities.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Gender        *string   `json:"gender,omitempty" db:"gender"`
	ContactNumber *string   `json:"contact_number,omitempty" db:"contact_number"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
