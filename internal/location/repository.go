package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no location matches the lookup.
var ErrNotFound = errors.New("location not found")

// Repository persists bus and passenger location fixes.
type Repository interface {
	CreateBusLocation(ctx context.Context, loc BusLocation) error
	LatestBusLocation(ctx context.Context, busID string) (BusLocation, error)
	BusHistory(ctx context.Context, busID string, limit int) ([]BusLocation, error)

	CreatePassengerLocation(ctx context.Context, loc PassengerLocation) error
	LatestPassengerLocation(ctx context.Context, passengerID string) (PassengerLocation, error)
	PassengerHistory(ctx context.Context, passengerID string, limit int) ([]PassengerLocation, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed location repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateBusLocation(ctx context.Context, loc BusLocation) error {
	id, err := uuid.Parse(loc.ID)
	if err != nil {
		return err
	}
	busID, err := uuid.Parse(loc.BusID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO bus_locations (id, bus_id, latitude, longitude, recorded_at)
        VALUES ($1, $2, $3, $4, $5)`, id, busID, loc.Latitude, loc.Longitude, loc.RecordedAt.UTC())
	return err
}

func (r *PostgresRepository) LatestBusLocation(ctx context.Context, busID string) (BusLocation, error) {
	bID, err := uuid.Parse(busID)
	if err != nil {
		return BusLocation{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, bus_id, latitude, longitude, recorded_at
        FROM bus_locations WHERE bus_id = $1 ORDER BY recorded_at DESC LIMIT 1`, bID)
	return scanBusLocation(row)
}

func (r *PostgresRepository) BusHistory(ctx context.Context, busID string, limit int) ([]BusLocation, error) {
	bID, err := uuid.Parse(busID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, bus_id, latitude, longitude, recorded_at
        FROM bus_locations WHERE bus_id = $1 ORDER BY recorded_at DESC LIMIT $2`, bID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BusLocation
	for rows.Next() {
		loc, err := scanBusLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreatePassengerLocation(ctx context.Context, loc PassengerLocation) error {
	id, err := uuid.Parse(loc.ID)
	if err != nil {
		return err
	}
	passengerID, err := uuid.Parse(loc.PassengerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO passenger_locations (id, passenger_id, latitude, longitude, recorded_at)
        VALUES ($1, $2, $3, $4, $5)`, id, passengerID, loc.Latitude, loc.Longitude, loc.RecordedAt.UTC())
	return err
}

func (r *PostgresRepository) LatestPassengerLocation(ctx context.Context, passengerID string) (PassengerLocation, error) {
	pID, err := uuid.Parse(passengerID)
	if err != nil {
		return PassengerLocation{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, passenger_id, latitude, longitude, recorded_at
        FROM passenger_locations WHERE passenger_id = $1 ORDER BY recorded_at DESC LIMIT 1`, pID)
	return scanPassengerLocation(row)
}

func (r *PostgresRepository) PassengerHistory(ctx context.Context, passengerID string, limit int) ([]PassengerLocation, error) {
	pID, err := uuid.Parse(passengerID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, passenger_id, latitude, longitude, recorded_at
        FROM passenger_locations WHERE passenger_id = $1 ORDER BY recorded_at DESC LIMIT $2`, pID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PassengerLocation
	for rows.Next() {
		loc, err := scanPassengerLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func scanBusLocation(row interface{ Scan(dest ...any) error }) (BusLocation, error) {
	var (
		id         uuid.UUID
		busID      uuid.UUID
		recordedAt time.Time
		loc        BusLocation
	)
	if err := row.Scan(&id, &busID, &loc.Latitude, &loc.Longitude, &recordedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusLocation{}, ErrNotFound
		}
		return BusLocation{}, err
	}
	loc.ID = id.String()
	loc.BusID = busID.String()
	loc.RecordedAt = recordedAt.UTC()
	return loc, nil
}

func scanPassengerLocation(row interface{ Scan(dest ...any) error }) (PassengerLocation, error) {
	var (
		id          uuid.UUID
		passengerID uuid.UUID
		recordedAt  time.Time
		loc         PassengerLocation
	)
	if err := row.Scan(&id, &passengerID, &loc.Latitude, &loc.Longitude, &recordedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PassengerLocation{}, ErrNotFound
		}
		return PassengerLocation{}, err
	}
	loc.ID = id.String()
	loc.PassengerID = passengerID.String()
	loc.RecordedAt = recordedAt.UTC()
	return loc, nil
}
