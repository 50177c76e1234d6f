package models

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	IsAdmin      bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshSession is the server-side record of an issued refresh token.
// Only the sha256 hash of the token is stored; the signed string itself
// never touches the database.
type RefreshSession struct {
	ID               string
	UserID           int64
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}
