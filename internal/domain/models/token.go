package models

import "time"

// Token is the single persisted row of the refresh-token subsystem.
// At most one row exists per identification; every rotation overwrites
// RefreshToken in place.
type Token struct {
	Identification string    `db:"identification" json:"identification"`
	RefreshToken   string    `db:"refresh_token" json:"refresh_token"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenMeta struct {
	Identification string `json:"identification"`
	Role           string `json:"role"`
	IssuedAt       int64  `json:"issued_at"`
	ExpiresAt      int64  `json:"expires_at"`
}
