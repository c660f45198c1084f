package location

import "time"

// BusLocation is a single GPS fix reported for a bus.
type BusLocation struct {
	ID         string
	BusID      string
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}

// PassengerLocation is a single GPS fix reported by a passenger.
type PassengerLocation struct {
	ID          string
	PassengerID string
	Latitude    float64
	Longitude   float64
	RecordedAt  time.Time
}
