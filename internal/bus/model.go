package bus

import "time"

// Bus is a vehicle in the fleet. DriverID is empty when no driver is
// assigned; a given driver appears on at most one bus at any time.
type Bus struct {
	ID             string
	PlateNumber    string
	Capacity       int
	RouteDesc      string
	OrganizationID string
	DriverID       string
	CreatedAt      time.Time
}

// Assigned reports whether the bus currently has a driver.
func (b Bus) Assigned() bool {
	return b.DriverID != ""
}
