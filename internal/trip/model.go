package trip

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks a trip through its lifecycle.
type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus normalizes and validates a status string.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusBooked, StatusOngoing, StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("invalid trip status: %s. Valid statuses: BOOKED, ONGOING, COMPLETED, CANCELLED", s)
}

// Trip is a passenger booking on a bus along a route. Passenger, route and
// bus are explicit foreign keys.
type Trip struct {
	ID           string
	PassengerID  string
	RouteID      string
	BusID        string
	StartStation string
	EndStation   string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
