// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash holds a bcrypt hash and is never
// serialized to clients.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
