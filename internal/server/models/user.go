// Package models defines the server-side storage models.
package models

import "time"

// User is a vault account. PasswordHash is a bcrypt hash with embedded salt
// and work factor; it is only ever checked via constant-time verification,
// never compared for equality.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
