package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Identification string    `db:"identification" json:"identification"`
	Email          string    `db:"email" json:"email"`
	Role           string    `db:"role" json:"role"`
	RegisteredAt   time.Time `db:"registered_at,omitempty" json:"registered_at,omitempty"`
	LastLogin      time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}
