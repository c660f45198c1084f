package route

import "time"

// Route is a transit line between two stations. BusIDs holds the buses
// serving the route as explicit foreign keys; there are no lazily loaded
// associations.
type Route struct {
	ID           string
	Code         string
	StartStation string
	EndStation   string
	DistanceKM   float64
	BusIDs       []string
	CreatedAt    time.Time
}

// Description renders the human-readable route label used on buses.
func (r Route) Description() string {
	return r.StartStation + " to " + r.EndStation
}
