package notification

import (
	"strings"
	"time"
)

// Type classifies a notification for client rendering.
type Type string

const (
	TypeInfo    Type = "INFO"
	TypeSuccess Type = "SUCCESS"
	TypeWarning Type = "WARNING"
	TypeError   Type = "ERROR"
)

// ParseType normalizes a type string, defaulting to INFO.
func ParseType(s string) Type {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeSuccess:
		return TypeSuccess
	case TypeWarning:
		return TypeWarning
	case TypeError:
		return TypeError
	default:
		return TypeInfo
	}
}

// Notification is a message for one user, or for everyone when UserID is
// empty (system-wide broadcast).
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      Type
	Read      bool
	CreatedAt time.Time
}
