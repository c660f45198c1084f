package user

import (
	"time"

	"github.com/movesmart/transit/internal/identity"
)

// User is a registered account. Email and Phone are independently unique;
// Email may be empty, Phone is required.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Role         identity.Role
	CreatedAt    time.Time
}

// Identifier returns the login identifier embedded in issued tokens: the
// email when present, otherwise the phone number.
func (u User) Identifier() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}
